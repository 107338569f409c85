package storage

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/fiscalhub/invoice-ingest/internal/common"
)

// MemoryStore is an in-process ObjectStore for tests and local runs. It is
// safe for concurrent use.
type MemoryStore struct {
	mu      sync.Mutex
	objects map[string][]byte

	// FailPut, FailCopy and FailDelete make the named operation fail when the
	// key (or destination key, for copy) contains the given substring. Empty
	// means never fail.
	FailPut    string
	FailCopy   string
	FailDelete string
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{objects: make(map[string][]byte)}
}

func (s *MemoryStore) path(bucket, key string) string {
	return bucket + "/" + key
}

func (s *MemoryStore) Put(ctx context.Context, bucket, key string, data []byte) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w: put %s: %v", common.ErrStore, key, err)
	}
	if s.FailPut != "" && strings.Contains(key, s.FailPut) {
		return fmt.Errorf("%w: put %s: injected failure", common.ErrStore, key)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	buf := make([]byte, len(data))
	copy(buf, data)
	s.objects[s.path(bucket, key)] = buf
	return nil
}

func (s *MemoryStore) Copy(ctx context.Context, bucket, srcKey, dstKey string) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w: copy %s: %v", common.ErrStore, srcKey, err)
	}
	if s.FailCopy != "" && strings.Contains(dstKey, s.FailCopy) {
		return fmt.Errorf("%w: copy to %s: injected failure", common.ErrStore, dstKey)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	data, ok := s.objects[s.path(bucket, srcKey)]
	if !ok {
		return fmt.Errorf("%w: copy: source %s not found", common.ErrStore, srcKey)
	}
	buf := make([]byte, len(data))
	copy(buf, data)
	s.objects[s.path(bucket, dstKey)] = buf
	return nil
}

func (s *MemoryStore) Delete(ctx context.Context, bucket, key string) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w: delete %s: %v", common.ErrStore, key, err)
	}
	if s.FailDelete != "" && strings.Contains(key, s.FailDelete) {
		return fmt.Errorf("%w: delete %s: injected failure", common.ErrStore, key)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.objects[s.path(bucket, key)]; !ok {
		return fmt.Errorf("%w: delete: %s not found", common.ErrStore, key)
	}
	delete(s.objects, s.path(bucket, key))
	return nil
}

// Get returns the stored bytes for bucket/key, for test assertions.
func (s *MemoryStore) Get(bucket, key string) ([]byte, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, ok := s.objects[s.path(bucket, key)]
	return data, ok
}

// Keys returns every stored path ("bucket/key"), for test assertions.
func (s *MemoryStore) Keys() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	keys := make([]string, 0, len(s.objects))
	for k := range s.objects {
		keys = append(keys, k)
	}
	return keys
}
