package store

import (
	"context"
	"sync"

	"stealthcompany.com/patients/internal/patient"
)

// MemoryStore keeps the collection in process memory. Load and Save copy the
// map so callers never share state with the store.
type MemoryStore struct {
	mu      sync.RWMutex
	records map[string]patient.Record
	saves   int
}

// NewMemoryStore creates a memory store seeded with records.
func NewMemoryStore(records map[string]patient.Record) *MemoryStore {
	return &MemoryStore{records: clone(records)}
}

func (ms *MemoryStore) Load(ctx context.Context) (map[string]patient.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	ms.mu.RLock()
	defer ms.mu.RUnlock()
	return clone(ms.records), nil
}

func (ms *MemoryStore) Save(ctx context.Context, records map[string]patient.Record) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	ms.mu.Lock()
	defer ms.mu.Unlock()
	ms.records = clone(records)
	ms.saves++
	return nil
}

// Saves returns how many times Save succeeded.
func (ms *MemoryStore) Saves() int {
	ms.mu.RLock()
	defer ms.mu.RUnlock()
	return ms.saves
}
