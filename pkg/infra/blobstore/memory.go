package blobstore

import (
	"context"
	"slices"
	"strings"
	"sync"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/repovault/pkg/domain/interfaces"
	"github.com/secmon-lab/repovault/pkg/domain/types"
)

// Memory keeps blobs in process memory.
type Memory struct {
	mu      sync.RWMutex
	objects map[types.BlobKey][]byte
}

var _ interfaces.BlobStore = (*Memory)(nil)

func NewMemory() *Memory {
	return &Memory{
		objects: make(map[types.BlobKey][]byte),
	}
}

func (x *Memory) Put(ctx context.Context, key types.BlobKey, data []byte) error {
	x.mu.Lock()
	defer x.mu.Unlock()
	x.objects[key] = slices.Clone(data)
	return nil
}

func (x *Memory) Get(ctx context.Context, key types.BlobKey) ([]byte, error) {
	x.mu.RLock()
	defer x.mu.RUnlock()

	data, ok := x.objects[key]
	if !ok {
		return nil, goerr.Wrap(types.ErrNotFound, "object not found", goerr.V("key", key))
	}
	return slices.Clone(data), nil
}

func (x *Memory) Delete(ctx context.Context, key types.BlobKey) error {
	x.mu.Lock()
	defer x.mu.Unlock()

	if _, ok := x.objects[key]; !ok {
		return goerr.Wrap(types.ErrNotFound, "object not found", goerr.V("key", key))
	}
	delete(x.objects, key)
	return nil
}

func (x *Memory) List(ctx context.Context, prefix string) ([]types.BlobKey, error) {
	x.mu.RLock()
	defer x.mu.RUnlock()

	var keys []types.BlobKey
	for key := range x.objects {
		if strings.HasPrefix(string(key), prefix) {
			keys = append(keys, key)
		}
	}
	slices.Sort(keys)
	return keys, nil
}

func (x *Memory) Close() error {
	return nil
}
