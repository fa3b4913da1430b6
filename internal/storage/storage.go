// Package storage puts and gets objects in the platform's bucket using temporary credentials.
package storage

import (
	"context"
	"errors"
)

var ErrObjectNotFound = errors.New("object not found")

type ObjectStore interface {
	Put(ctx context.Context, key string, data []byte) error
	Get(ctx context.Context, key string) ([]byte, error)
}

// Credentials is the temporary credential set issued by the backend for one upload session.
type Credentials struct {
	AccessKeyID     string
	SecretAccessKey string
	SessionToken    string
	Region          string
	Bucket          string
}

// Factory opens an ObjectStore scoped to the credentials' bucket.
type Factory func(ctx context.Context, creds Credentials) (ObjectStore, error)
