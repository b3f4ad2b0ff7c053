// Package records runs every patient operation as a full load, mutate and
// save cycle against a store.
package records

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"stealthcompany.com/patients/internal/metrics"
	"stealthcompany.com/patients/internal/patient"
	"stealthcompany.com/patients/internal/store"
)

// Service serializes mutating operations with a single writer lock. Reads
// do not take the lock and may observe a collection that is about to change.
type Service struct {
	store store.Store
	mu    sync.Mutex
}

// NewService creates a record service over s.
func NewService(s store.Store) *Service {
	return &Service{store: s}
}

// List returns every patient keyed by ID.
func (s *Service) List(ctx context.Context) (patients map[string]patient.Patient, err error) {
	defer observe("list", time.Now(), &err)

	records, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	return patient.MaterializeAll(records), nil
}

// Get returns one patient.
func (s *Service) Get(ctx context.Context, id string) (p patient.Patient, err error) {
	defer observe("get", time.Now(), &err)

	records, err := s.load(ctx)
	if err != nil {
		return patient.Patient{}, err
	}
	rec, ok := records[id]
	if !ok {
		return patient.Patient{}, fmt.Errorf("%w: %s", patient.ErrNotFound, id)
	}
	return rec.Materialize(id), nil
}

// Sorted returns the whole collection ordered by sortBy. The query is checked
// before the store is touched.
func (s *Service) Sorted(ctx context.Context, sortBy, order string) (patients []patient.Patient, err error) {
	defer observe("sort", time.Now(), &err)

	field, err := patient.ParseSortField(sortBy)
	if err != nil {
		return nil, err
	}
	dir, err := patient.ParseSortOrder(order)
	if err != nil {
		return nil, err
	}

	records, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	return patient.Sort(patient.MaterializeAll(records), field, dir), nil
}

// Create stores a new patient. An existing ID fails with ErrConflict and
// leaves the stored record untouched.
func (s *Service) Create(ctx context.Context, np patient.NewPatient) (p patient.Patient, err error) {
	defer observe("create", time.Now(), &err)

	if err := np.Validate(); err != nil {
		return patient.Patient{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	records, err := s.load(ctx)
	if err != nil {
		return patient.Patient{}, err
	}
	if _, exists := records[np.ID]; exists {
		return patient.Patient{}, fmt.Errorf("%w: %s", patient.ErrConflict, np.ID)
	}

	records[np.ID] = np.Record
	if err := s.save(ctx, records); err != nil {
		return patient.Patient{}, err
	}

	log.Info().
		Str("id", np.ID).
		Msg("Patient created")
	return np.Record.Materialize(np.ID), nil
}

// Update applies a merge-patch to an existing patient. The merged record is
// validated as a whole; a failure rejects the update without writing.
func (s *Service) Update(ctx context.Context, id string, u patient.Update) (p patient.Patient, err error) {
	defer observe("update", time.Now(), &err)

	if err := u.Validate(); err != nil {
		return patient.Patient{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	records, err := s.load(ctx)
	if err != nil {
		return patient.Patient{}, err
	}
	existing, ok := records[id]
	if !ok {
		return patient.Patient{}, fmt.Errorf("%w: %s", patient.ErrNotFound, id)
	}

	merged := patient.Merge(existing, u)
	if err := merged.Validate(); err != nil {
		return patient.Patient{}, err
	}

	// Nothing changed, so the collection is not rewritten.
	if u.IsEmpty() {
		log.Debug().
			Str("id", id).
			Msg("Empty patch, skipping save")
		return merged.Materialize(id), nil
	}

	records[id] = merged
	if err := s.save(ctx, records); err != nil {
		return patient.Patient{}, err
	}

	log.Info().
		Str("id", id).
		Msg("Patient updated")
	return merged.Materialize(id), nil
}

// Delete removes a patient.
func (s *Service) Delete(ctx context.Context, id string) (err error) {
	defer observe("delete", time.Now(), &err)

	s.mu.Lock()
	defer s.mu.Unlock()

	records, err := s.load(ctx)
	if err != nil {
		return err
	}
	if _, ok := records[id]; !ok {
		return fmt.Errorf("%w: %s", patient.ErrNotFound, id)
	}

	delete(records, id)
	if err := s.save(ctx, records); err != nil {
		return err
	}

	log.Info().
		Str("id", id).
		Msg("Patient deleted")
	return nil
}

func (s *Service) load(ctx context.Context) (map[string]patient.Record, error) {
	records, err := s.store.Load(ctx)
	if err != nil {
		log.Error().Err(err).Msg("Failed to load patient collection")
		return nil, asStorageError(err)
	}
	metrics.SetRecordsStored(len(records))
	return records, nil
}

func (s *Service) save(ctx context.Context, records map[string]patient.Record) error {
	if err := s.store.Save(ctx, records); err != nil {
		log.Error().Err(err).Msg("Failed to save patient collection")
		return asStorageError(err)
	}
	metrics.SetRecordsStored(len(records))
	return nil
}

// asStorageError makes sure every store failure, including context
// cancellation, is reported as ErrStorageUnavailable.
func asStorageError(err error) error {
	if errors.Is(err, patient.ErrStorageUnavailable) {
		return err
	}
	return fmt.Errorf("%w: %w", patient.ErrStorageUnavailable, err)
}

func observe(operation string, start time.Time, errp *error) {
	metrics.RecordOperation(operation, Outcome(*errp), start)
}

// Outcome names the result label for an operation error.
func Outcome(err error) string {
	var verr *patient.ValidationError
	switch {
	case err == nil:
		return "success"
	case errors.As(err, &verr):
		return "validation_failed"
	case errors.Is(err, patient.ErrNotFound):
		return "not_found"
	case errors.Is(err, patient.ErrConflict):
		return "conflict"
	case errors.Is(err, patient.ErrBadQuery):
		return "bad_query"
	case errors.Is(err, patient.ErrStorageUnavailable):
		return "storage_unavailable"
	default:
		return "error"
	}
}
