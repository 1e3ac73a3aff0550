package memory

import (
	"context"
	"strings"
	"sync"

	"github.com/mwantia/modexport/data"
	"github.com/mwantia/modexport/settings"
	"github.com/tidwall/btree"
)

// MemoryStore keeps settings in an ordered in-memory map keyed by "<scope>/<key>".
type MemoryStore struct {
	mu     sync.RWMutex
	closed bool

	values *btree.Map[string, settings.Value]
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		values: btree.NewMap[string, settings.Value](0),
	}
}

// Returns the identifier name defined for this store
func (*MemoryStore) Name() string {
	return "memory"
}

func (ms *MemoryStore) Open(ctx context.Context) error {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	ms.closed = false
	return nil
}

// Close drops every stored value.
func (ms *MemoryStore) Close(ctx context.Context) error {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	ms.values.Clear()
	ms.closed = true
	return nil
}

func (ms *MemoryStore) Get(ctx context.Context, scope, key string) (settings.Value, bool, error) {
	ms.mu.RLock()
	defer ms.mu.RUnlock()

	if ms.closed {
		return settings.Value{}, false, data.ErrClosed
	}

	value, ok := ms.values.Get(scopedKey(scope, key))
	return value, ok, nil
}

func (ms *MemoryStore) Set(ctx context.Context, scope, key string, value settings.Value) error {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	if ms.closed {
		return data.ErrClosed
	}

	ms.values.Set(scopedKey(scope, key), value)
	return nil
}

func (ms *MemoryStore) Delete(ctx context.Context, scope, key string) error {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	if ms.closed {
		return data.ErrClosed
	}

	ms.values.Delete(scopedKey(scope, key))
	return nil
}

func (ms *MemoryStore) List(ctx context.Context, scope string) (map[string]settings.Value, error) {
	ms.mu.RLock()
	defer ms.mu.RUnlock()

	if ms.closed {
		return nil, data.ErrClosed
	}

	prefix := scope + "/"
	result := make(map[string]settings.Value)

	ms.values.Ascend(prefix, func(key string, value settings.Value) bool {
		if !strings.HasPrefix(key, prefix) {
			return false
		}

		result[strings.TrimPrefix(key, prefix)] = value
		return true
	})

	return result, nil
}

func scopedKey(scope, key string) string {
	return scope + "/" + key
}
