package emulator

import (
	"encoding/xml"
	"io"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"

	"annoctl/internal/storage"
)

// storagePrefix is where the emulator answers path-style S3 requests.
const storagePrefix = "/storage"

type s3Error struct {
	XMLName  xml.Name `xml:"Error"`
	Code     string   `xml:"Code"`
	Message  string   `xml:"Message"`
	Resource string   `xml:"Resource"`
}

func writeS3Error(w http.ResponseWriter, status int, code, msg, resource string) {
	w.Header().Set("Content-Type", "application/xml")
	w.WriteHeader(status)
	_, _ = io.WriteString(w, xml.Header)
	_ = xml.NewEncoder(w).Encode(s3Error{Code: code, Message: msg, Resource: resource})
}

func objectKey(r *http.Request) string {
	key := chi.URLParam(r, "*")
	if r.URL.RawPath != "" {
		if k, err := url.PathUnescape(key); err == nil {
			key = k
		}
	}
	return key
}

// registerBlobs serves PutObject and GetObject from blobs. Signatures are not checked;
// the credentials handed out by the upload token endpoint only need to be well formed.
func registerBlobs(r chi.Router, blobs *storage.Memory) {
	r.Put(storagePrefix+"/{bucket}/*", func(w http.ResponseWriter, r *http.Request) {
		data, err := io.ReadAll(r.Body)
		if err != nil {
			writeS3Error(w, http.StatusBadRequest, "IncompleteBody", err.Error(), r.URL.Path)
			return
		}
		blobs.Put(chi.URLParam(r, "bucket"), objectKey(r), data)
		w.Header().Set("ETag", `"emulated"`)
		w.WriteHeader(http.StatusOK)
	})
	r.Get(storagePrefix+"/{bucket}/*", func(w http.ResponseWriter, r *http.Request) {
		data, ok := blobs.Get(chi.URLParam(r, "bucket"), objectKey(r))
		if !ok {
			writeS3Error(w, http.StatusNotFound, "NoSuchKey", "The specified key does not exist.", r.URL.Path)
			return
		}
		w.Header().Set("Content-Type", "application/octet-stream")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(data)
	})
}
