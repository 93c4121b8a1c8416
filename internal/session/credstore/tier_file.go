package credstore

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// FileTier is the durable tier: a JSON file under a state directory that
// survives process restarts. Writes go through a temp file and rename so a
// crash mid-write never leaves a half-written credential file behind.
type FileTier struct {
	mu     sync.Mutex
	path   string
	values map[string]string
}

// NewFileTier opens (or creates) the tier file under dir.
func NewFileTier(dir string) (*FileTier, error) {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("create state dir: %w", err)
	}
	t := &FileTier{
		path:   filepath.Join(dir, "credentials.json"),
		values: make(map[string]string),
	}
	if err := t.load(); err != nil {
		return nil, err
	}
	return t, nil
}

func (t *FileTier) load() error {
	raw, err := os.ReadFile(t.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("read credential file: %w", err)
	}
	if len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, &t.values); err != nil {
		// A corrupt file is treated as empty rather than fatal; the worst
		// outcome is that the user has to log in again.
		t.values = make(map[string]string)
	}
	return nil
}

func (t *FileTier) flushLocked() error {
	raw, err := json.Marshal(t.values)
	if err != nil {
		return fmt.Errorf("marshal credential file: %w", err)
	}
	tmp := t.path + ".tmp"
	if err := os.WriteFile(tmp, raw, 0o600); err != nil {
		return fmt.Errorf("write credential file: %w", err)
	}
	if err := os.Rename(tmp, t.path); err != nil {
		return fmt.Errorf("replace credential file: %w", err)
	}
	return nil
}

func (t *FileTier) Get(key string) (string, bool, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	value, ok := t.values[key]
	return value, ok, nil
}

func (t *FileTier) Set(key, value string) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.values[key] = value
	return t.flushLocked()
}

func (t *FileTier) Delete(key string) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.values, key)
	return t.flushLocked()
}

func (t *FileTier) Clear() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.values = make(map[string]string)
	return t.flushLocked()
}
