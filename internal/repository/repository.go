// Package repository maps backend and storage calls onto typed entity gateways.
package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"annoctl/internal/condition"
)

// ReadOnly is a search gateway over one entity kind.
type ReadOnly[E any] interface {
	// GetOne returns the first match, or nil when nothing matches.
	GetOne(ctx context.Context, cond condition.Condition) (*E, error)
	// GetAll never returns a nil slice.
	GetAll(ctx context.Context, cond condition.Condition) ([]E, error)
}

type Manageable[E any] interface {
	ReadOnly[E]
	// Get returns the entity with id, or nil when there is none.
	Get(ctx context.Context, id int) (*E, error)
	Insert(ctx context.Context, entity E) (E, error)
	Update(ctx context.Context, entity E) (E, error)
	Delete(ctx context.Context, id int) error
	BulkDelete(ctx context.Context, entities []E) (bool, error)
}

// decodeList maps a JSON array of records with fromRecord. null decodes to an empty slice.
func decodeList[E any](raw json.RawMessage, fromRecord func(json.RawMessage) (E, error)) ([]E, error) {
	var records []json.RawMessage
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &records); err != nil {
			return nil, fmt.Errorf("decode list: %w", err)
		}
	}
	out := make([]E, 0, len(records))
	for _, rec := range records {
		e, err := fromRecord(rec)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, nil
}

// byID scans items for id. Used where the platform has no lookup by id.
func byID[E any](items []E, id int, idOf func(E) int) *E {
	for _, it := range items {
		if idOf(it) == id {
			return &it
		}
	}
	return nil
}

func first[E any](items []E) *E {
	if len(items) == 0 {
		return nil
	}
	e := items[0]
	return &e
}
