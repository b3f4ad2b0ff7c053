// Package store persists the whole patient collection as a mapping from
// patient ID to record.
package store

import (
	"context"

	"stealthcompany.com/patients/internal/patient"
)

// Store loads and saves the full collection. Implementations do not
// synchronize load/save pairs; callers serialize mutations.
type Store interface {
	Load(ctx context.Context) (map[string]patient.Record, error)
	Save(ctx context.Context, records map[string]patient.Record) error
}

func clone(records map[string]patient.Record) map[string]patient.Record {
	out := make(map[string]patient.Record, len(records))
	for id, rec := range records {
		out[id] = rec
	}
	return out
}
