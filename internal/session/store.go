//go:generate mockgen -source ./store.go -destination=./mocks/store.go -package=session_mocks

// Package session persists whole session-state blobs. Stores expose
// read/replace semantics only; there is no field-level update.
package session

import (
	"context"
	"sync"

	"github.com/yexhin/cookie-customer-service/internal/ledger"
)

// Store loads and replaces a session's state as a unit. Get on an
// unknown key returns a fresh default state rather than an error, so a
// new conversation starts with an empty ledger.
type Store interface {
	Get(ctx context.Context, key string) (*ledger.State, error)
	Put(ctx context.Context, key string, st *ledger.State) error
	Delete(ctx context.Context, key string) error
}

// MemoryStore keeps states in a map. Used in tests and as the zero-
// configuration default.
type MemoryStore struct {
	mu     sync.Mutex
	states map[string]*ledger.State
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{states: make(map[string]*ledger.State)}
}

func (m *MemoryStore) Get(ctx context.Context, key string) (*ledger.State, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	st, ok := m.states[key]
	if !ok {
		return ledger.DefaultState(), nil
	}
	return cloneState(st)
}

func (m *MemoryStore) Put(ctx context.Context, key string, st *ledger.State) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	copied, err := cloneState(st)
	if err != nil {
		return err
	}
	m.states[key] = copied
	return nil
}

func (m *MemoryStore) Delete(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.states, key)
	return nil
}
