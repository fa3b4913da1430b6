package storage

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryFactoryScopesByBucket(t *testing.T) {
	ctx := context.Background()
	mem := NewMemory()
	factory := mem.Factory()

	a, err := factory(ctx, Credentials{Bucket: "a"})
	require.NoError(t, err)
	b, err := factory(ctx, Credentials{Bucket: "b"})
	require.NoError(t, err)

	require.NoError(t, a.Put(ctx, "k", []byte("v")))
	got, err := a.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, []byte("v"), got)

	_, err = b.Get(ctx, "k")
	assert.ErrorIs(t, err, ErrObjectNotFound)
	assert.Equal(t, []string{"k"}, mem.Keys("a"))
}

func TestNewS3RequiresBucket(t *testing.T) {
	_, err := NewS3(Credentials{AccessKeyID: "id", SecretAccessKey: "s"}, "")
	require.Error(t, err)

	s, err := NewS3(Credentials{AccessKeyID: "id", SecretAccessKey: "s", Bucket: "bkt"}, "http://127.0.0.1:9000")
	require.NoError(t, err)
	assert.Equal(t, "bkt", s.bucket)
}
