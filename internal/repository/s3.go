package repository

import (
	"context"
	"path"

	"annoctl/internal/domain"
	"annoctl/internal/storage"
)

// S3Repository reads and writes objects with one temporary credential set.
type S3Repository struct {
	store  storage.ObjectStore
	bucket string
}

// NewS3Repository opens a store from auth.
func NewS3Repository(ctx context.Context, factory storage.Factory, auth domain.UploadAuth) (*S3Repository, error) {
	store, err := factory(ctx, storage.Credentials{
		AccessKeyID:     auth.AccessKeyID,
		SecretAccessKey: auth.SecretAccessKey,
		SessionToken:    auth.SessionToken,
		Region:          auth.Region,
		Bucket:          auth.Bucket,
	})
	if err != nil {
		return nil, err
	}
	return &S3Repository{store: store, bucket: auth.Bucket}, nil
}

func (r *S3Repository) Bucket() string { return r.bucket }

// Key is the object key of an image file uploaded into folder.
func (r *S3Repository) Key(folder domain.Folder, name string) string {
	return path.Join(domain.FolderPath(folder), name)
}

func (r *S3Repository) Put(ctx context.Context, key string, data []byte) error {
	return r.store.Put(ctx, key, data)
}

func (r *S3Repository) Get(ctx context.Context, key string) ([]byte, error) {
	return r.store.Get(ctx, key)
}
