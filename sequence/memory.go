package sequence

import (
	"context"
	"sync"

	"github.com/avillegas/facturacr/clave"
)

// MemoryStore is an in-process Store backed by a mutex guarded map.
// Allocation is a critical section per store, so concurrent callers for
// the same scope always observe distinct values. State does not survive
// a restart; use the GORM store for anything beyond tests and
// single-shot CLI runs.
type MemoryStore struct {
	mu       sync.Mutex
	counters map[Scope]int64
	envs     map[string]Environment
	codes    map[string]string
}

// NewMemoryStore returns an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		counters: make(map[Scope]int64),
		envs:     make(map[string]Environment),
		codes:    make(map[string]string),
	}
}

// AllocateNext implements Store.
func (m *MemoryStore) AllocateNext(_ context.Context, scope Scope) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	next := m.counters[scope] + 1
	m.counters[scope] = next
	return next, nil
}

// ResetForEnvironment implements Store.
func (m *MemoryStore) ResetForEnvironment(_ context.Context, companyID string, env Environment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.envs[companyID] == env {
		return nil
	}
	m.envs[companyID] = env
	for scope := range m.counters {
		if scope.CompanyID == companyID {
			m.counters[scope] = 0
		}
	}
	return nil
}

// SecurityCode implements Store.
func (m *MemoryStore) SecurityCode(_ context.Context, companyID string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if code, ok := m.codes[companyID]; ok {
		return code, nil
	}
	code, err := clave.NewSecurityCode()
	if err != nil {
		return "", err
	}
	m.codes[companyID] = code
	return code, nil
}
