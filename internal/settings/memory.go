package settings

import (
	"encoding/json"
	"fmt"
	"sync"
)

// MemoryStore is an in-memory store with the same contract as FileStore.
// Saves apply immediately.
type MemoryStore struct {
	mu    sync.Mutex
	doc   map[string]json.RawMessage
	saves int
}

// NewMemory returns an empty MemoryStore.
func NewMemory() *MemoryStore {
	return &MemoryStore{doc: make(map[string]json.RawMessage)}
}

func (m *MemoryStore) Load(key string, v any) (bool, error) {
	m.mu.Lock()
	raw, ok := m.doc[key]
	m.mu.Unlock()
	if !ok {
		return false, nil
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return true, fmt.Errorf("settings %q: %w", key, err)
	}
	return true, nil
}

func (m *MemoryStore) Save(key string, v any) {
	m.Update(key, func(json.RawMessage) (any, error) { return v, nil })
}

func (m *MemoryStore) Update(key string, fn func(current json.RawMessage) (any, error)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	raw, err := apply(m.doc[key], fn)
	if err != nil {
		return
	}
	m.doc[key] = raw
	m.saves++
}

// Seed stores v under key the way another process would. It is not counted
// by Saves.
func (m *MemoryStore) Seed(key string, v any) {
	raw, err := json.Marshal(v)
	if err != nil {
		panic(err)
	}
	m.mu.Lock()
	m.doc[key] = raw
	m.mu.Unlock()
}

// Saves returns how many times Save or Update has been called.
func (m *MemoryStore) Saves() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.saves
}

// Raw returns the JSON stored under key.
func (m *MemoryStore) Raw(key string) (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	raw, ok := m.doc[key]
	return string(raw), ok
}
