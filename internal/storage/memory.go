package storage

import (
	"context"
	"fmt"
	"sort"
	"sync"
)

// Memory is an in-process object store shared by every bucket it hands out.
// The emulator serves from it and tests inspect it.
type Memory struct {
	mu      sync.RWMutex
	buckets map[string]map[string][]byte
}

func NewMemory() *Memory {
	return &Memory{buckets: map[string]map[string][]byte{}}
}

// Factory ignores the credential keys and scopes by bucket only.
func (m *Memory) Factory() Factory {
	return func(_ context.Context, creds Credentials) (ObjectStore, error) {
		return m.Bucket(creds.Bucket), nil
	}
}

func (m *Memory) Bucket(name string) ObjectStore {
	return memoryBucket{m: m, bucket: name}
}

func (m *Memory) Put(bucket, key string, data []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.buckets[bucket]
	if !ok {
		b = map[string][]byte{}
		m.buckets[bucket] = b
	}
	b[key] = append([]byte(nil), data...)
}

func (m *Memory) Get(bucket, key string) ([]byte, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	data, ok := m.buckets[bucket][key]
	if !ok {
		return nil, false
	}
	return append([]byte(nil), data...), true
}

// Keys lists a bucket's keys in sorted order.
func (m *Memory) Keys(bucket string) []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	keys := make([]string, 0, len(m.buckets[bucket]))
	for k := range m.buckets[bucket] {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

type memoryBucket struct {
	m      *Memory
	bucket string
}

func (b memoryBucket) Put(_ context.Context, key string, data []byte) error {
	b.m.Put(b.bucket, key, data)
	return nil
}

func (b memoryBucket) Get(_ context.Context, key string) ([]byte, error) {
	data, ok := b.m.Get(b.bucket, key)
	if !ok {
		return nil, fmt.Errorf("%s/%s: %w", b.bucket, key, ErrObjectNotFound)
	}
	return data, nil
}
