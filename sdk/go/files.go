package annotatesdk

import (
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"annoctl/internal/domain"
)

// DefaultImageExtensions are picked up by UploadImagesFromFolder when no extensions are given.
var DefaultImageExtensions = []string{"jpg", "jpeg", "png", "tif", "tiff", "webp", "bmp"}

const (
	vectorAnnotationSuffix = "___objects.json"
	pixelAnnotationSuffix  = "___pixel.json"
)

type FolderOptions struct {
	Extensions []string
	// Exclude drops files whose name contains any of these substrings.
	Exclude   []string
	Recursive bool
}

func (o FolderOptions) matches(name string) bool {
	exts := o.Extensions
	if len(exts) == 0 {
		exts = DefaultImageExtensions
	}
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(name), "."))
	if !slices.ContainsFunc(exts, func(e string) bool { return strings.EqualFold(strings.TrimPrefix(e, "."), ext) }) {
		return false
	}
	for _, pattern := range o.Exclude {
		if pattern != "" && strings.Contains(name, pattern) {
			return false
		}
	}
	return true
}

// ReadImageFolder loads the images under dir in lexical order. Only regular files
// matching opts are read.
func ReadImageFolder(dir string, opts FolderOptions) ([]domain.ImageSource, error) {
	var out []domain.ImageSource
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != dir && !opts.Recursive {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() || !opts.matches(d.Name()) {
			return nil
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		out = append(out, domain.ImageSource{Name: d.Name(), Data: data})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// ReadAnnotationFolder loads annotation JSON files from dir. A file named
// "<image>___objects.json", "<image>___pixel.json" or "<image>.json" annotates <image>.
func ReadAnnotationFolder(dir string) ([]domain.AnnotationFile, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var out []domain.AnnotationFile
	for _, e := range entries {
		if !e.Type().IsRegular() || !strings.EqualFold(filepath.Ext(e.Name()), ".json") {
			continue
		}
		image := annotatedImage(e.Name())
		if image == "" {
			continue
		}
		data, err := os.ReadFile(filepath.Join(dir, e.Name()))
		if err != nil {
			return nil, err
		}
		out = append(out, domain.AnnotationFile{ImageName: image, Data: data})
	}
	return out, nil
}

func annotatedImage(file string) string {
	for _, suffix := range []string{vectorAnnotationSuffix, pixelAnnotationSuffix} {
		if strings.HasSuffix(file, suffix) {
			return strings.TrimSuffix(file, suffix)
		}
	}
	return strings.TrimSuffix(file, filepath.Ext(file))
}
