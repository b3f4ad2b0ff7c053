package couchbase

import (
	"context"
	"errors"
	"fmt"

	"github.com/couchbase/gocb/v2"
	"github.com/rs/zerolog/log"
	"stealthcompany.com/patients/internal/patient"
)

// CollectionStore keeps the whole patient collection in one document of the
// bucket's default collection, using the same JSON shape as the data file.
type CollectionStore struct {
	collection *gocb.Collection
	docID      string
	locker     *DatabaseLocker
}

// NewCollectionStore creates a store over the document docID
func NewCollectionStore(collection *gocb.Collection, docID string, locker *DatabaseLocker) *CollectionStore {
	return &CollectionStore{
		collection: collection,
		docID:      docID,
		locker:     locker,
	}
}

// Load reads the collection document. A missing document is an empty collection.
func (s *CollectionStore) Load(ctx context.Context) (map[string]patient.Record, error) {
	res, err := s.collection.Get(s.docID, &gocb.GetOptions{Context: ctx})
	if errors.Is(err, gocb.ErrDocumentNotFound) {
		log.Info().
			Str("docID", s.docID).
			Msg("Collection document not found, starting with empty collection")
		return map[string]patient.Record{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: get document %s: %v", patient.ErrStorageUnavailable, s.docID, err)
	}

	records := map[string]patient.Record{}
	if err := res.Content(&records); err != nil {
		return nil, fmt.Errorf("%w: parse document %s: %v", patient.ErrStorageUnavailable, s.docID, err)
	}
	if records == nil {
		records = map[string]patient.Record{}
	}
	return records, nil
}

// Save replaces the collection document. Writes are refused while another
// process holds the migration lock.
func (s *CollectionStore) Save(ctx context.Context, records map[string]patient.Record) error {
	if !s.locker.Held() {
		locked, err := s.locker.RemoteLocked(ctx)
		if err != nil {
			return fmt.Errorf("%w: %v", patient.ErrStorageUnavailable, err)
		}
		if locked {
			return fmt.Errorf("%w: %w", patient.ErrStorageUnavailable, ErrLocked)
		}
	}

	if records == nil {
		records = map[string]patient.Record{}
	}

	_, err := s.collection.Upsert(s.docID, records, &gocb.UpsertOptions{Context: ctx})
	if err != nil {
		return fmt.Errorf("%w: upsert document %s: %v", patient.ErrStorageUnavailable, s.docID, err)
	}

	log.Debug().
		Str("docID", s.docID).
		Int("records", len(records)).
		Msg("Saved patient collection")
	return nil
}
