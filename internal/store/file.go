package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/rs/zerolog/log"
	"stealthcompany.com/patients/internal/patient"
)

// FileStore keeps the collection in a single JSON file.
type FileStore struct {
	path string
}

// NewFileStore creates a store backed by the JSON file at path.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Path returns the backing file path
func (s *FileStore) Path() string {
	return s.path
}

// Load reads the entire collection. A missing file is an empty collection;
// any other read or decode failure is ErrStorageUnavailable.
func (s *FileStore) Load(ctx context.Context) (map[string]patient.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		log.Info().
			Str("path", s.path).
			Msg("Data file not found, starting with empty collection")
		return map[string]patient.Record{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: read %s: %v", patient.ErrStorageUnavailable, s.path, err)
	}

	records := map[string]patient.Record{}
	if len(data) == 0 {
		return records, nil
	}
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("%w: decode %s: %v", patient.ErrStorageUnavailable, s.path, err)
	}
	if records == nil {
		records = map[string]patient.Record{}
	}

	return records, nil
}

// Save replaces the collection. Data goes to a temp file in the same
// directory which is synced and renamed over the target, so readers never see
// a partial file.
func (s *FileStore) Save(ctx context.Context, records map[string]patient.Record) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if records == nil {
		records = map[string]patient.Record{}
	}

	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("%w: encode: %v", patient.ErrStorageUnavailable, err)
	}

	if err := writeFileAtomic(s.path, data, 0o644); err != nil {
		return fmt.Errorf("%w: write %s: %v", patient.ErrStorageUnavailable, s.path, err)
	}

	log.Debug().
		Str("path", s.path).
		Int("records", len(records)).
		Msg("Saved patient collection")
	return nil
}

func writeFileAtomic(path string, data []byte, perm fs.FileMode) (err error) {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()

	defer func() {
		if err != nil {
			tmp.Close()
			os.Remove(tmpName)
		}
	}()

	if _, err = tmp.Write(data); err != nil {
		return err
	}
	if err = tmp.Sync(); err != nil {
		return err
	}
	if err = tmp.Chmod(perm); err != nil {
		return err
	}
	if err = tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmpName, path)
}
