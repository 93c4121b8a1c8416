package credstore

import "sync"

// Tier is a small key-value port over one persistence tier. The credential
// store is the only component that touches tiers directly; everything else
// goes through its typed accessors.
type Tier interface {
	Get(key string) (value string, ok bool, err error)
	Set(key, value string) error
	Delete(key string) error
	Clear() error
}

// MemoryTier is an in-process tier. It backs the volatile tier (scoped to
// the process lifetime, the way sessionStorage is scoped to a tab) and
// serves as the test fake for the durable tier.
type MemoryTier struct {
	mu     sync.RWMutex
	values map[string]string
}

// NewMemoryTier constructs an empty in-memory tier.
func NewMemoryTier() *MemoryTier {
	return &MemoryTier{values: make(map[string]string)}
}

func (t *MemoryTier) Get(key string) (string, bool, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	value, ok := t.values[key]
	return value, ok, nil
}

func (t *MemoryTier) Set(key, value string) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.values[key] = value
	return nil
}

func (t *MemoryTier) Delete(key string) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.values, key)
	return nil
}

func (t *MemoryTier) Clear() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.values = make(map[string]string)
	return nil
}
