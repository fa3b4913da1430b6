package annotatesdk

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/google/uuid"

	"annoctl/internal/domain"
)

// ReadAttachments parses a CSV with a header row naming "url" and optionally "name"
// columns. Rows without a url are dropped; rows without a name get a random one.
func ReadAttachments(r io.Reader) ([]domain.Attachment, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return []domain.Attachment{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read csv header: %w", err)
	}
	urlCol, nameCol := -1, -1
	for i, h := range header {
		switch strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))) {
		case "url":
			urlCol = i
		case "name":
			nameCol = i
		}
	}
	if urlCol < 0 {
		return nil, &domain.ValidationError{Message: `attachment csv has no "url" column`}
	}

	out := []domain.Attachment{}
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read csv: %w", err)
		}
		a := domain.Attachment{URL: column(rec, urlCol), Name: column(rec, nameCol)}
		if a.URL == "" {
			continue
		}
		if a.Name == "" {
			a.Name = uuid.NewString()
		}
		out = append(out, a)
	}
	return out, nil
}

func column(rec []string, i int) string {
	if i < 0 || i >= len(rec) {
		return ""
	}
	return strings.TrimSpace(rec[i])
}

func readAttachmentsFile(path string) ([]domain.Attachment, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ReadAttachments(f)
}
