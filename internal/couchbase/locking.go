package couchbase

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/couchbase/gocb/v2"
	"github.com/rs/zerolog/log"
)

const (
	lockDocumentID = "patients_migration_lock"
	lockTTL        = time.Hour
)

// ErrLocked is returned when another process holds the migration lock
var ErrLocked = errors.New("collection is locked for migration")

type lockDocument struct {
	Locked    bool      `json:"locked"`
	LockedAt  time.Time `json:"lockedAt"`
	LockedBy  string    `json:"lockedBy"`
	ExpiresAt time.Time `json:"expiresAt"`
}

func (d lockDocument) expired(now time.Time) bool {
	return !d.ExpiresAt.IsZero() && now.After(d.ExpiresAt)
}

// DatabaseLocker guards the collection document while a migration rewrites it
type DatabaseLocker struct {
	collection *gocb.Collection
	owner      string

	mu   sync.Mutex
	held bool
}

// NewDatabaseLocker creates a locker that identifies itself as owner
func NewDatabaseLocker(collection *gocb.Collection, owner string) *DatabaseLocker {
	return &DatabaseLocker{
		collection: collection,
		owner:      owner,
	}
}

// Lock takes the lock document. It fails with ErrLocked while another owner
// holds an unexpired lock.
func (l *DatabaseLocker) Lock(ctx context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.held {
		return fmt.Errorf("database is already locked")
	}

	// Clear an expired lock left behind by a crashed migration
	if _, err := l.RemoteLocked(ctx); err != nil {
		return err
	}

	now := time.Now().UTC()
	doc := lockDocument{
		Locked:    true,
		LockedAt:  now,
		LockedBy:  l.owner,
		ExpiresAt: now.Add(lockTTL),
	}

	_, err := l.collection.Insert(lockDocumentID, doc, &gocb.InsertOptions{Context: ctx})
	if errors.Is(err, gocb.ErrDocumentExists) {
		return ErrLocked
	}
	if err != nil {
		return fmt.Errorf("failed to create lock document: %w", err)
	}

	l.held = true
	log.Info().Str("owner", l.owner).Msg("Database locked successfully")
	return nil
}

// Unlock releases a lock taken by Lock
func (l *DatabaseLocker) Unlock(ctx context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if !l.held {
		return fmt.Errorf("database is not locked")
	}

	_, err := l.collection.Remove(lockDocumentID, &gocb.RemoveOptions{Context: ctx})
	if err != nil && !errors.Is(err, gocb.ErrDocumentNotFound) {
		return fmt.Errorf("failed to remove lock document: %w", err)
	}

	l.held = false
	log.Info().Str("owner", l.owner).Msg("Database unlocked successfully")
	return nil
}

// Held reports whether this locker owns the lock
func (l *DatabaseLocker) Held() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.held
}

// RemoteLocked checks the lock document. Expired locks are removed and
// reported as unlocked.
func (l *DatabaseLocker) RemoteLocked(ctx context.Context) (bool, error) {
	res, err := l.collection.Get(lockDocumentID, &gocb.GetOptions{Context: ctx})
	if errors.Is(err, gocb.ErrDocumentNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to check lock status: %w", err)
	}

	var doc lockDocument
	if err := res.Content(&doc); err != nil {
		return false, fmt.Errorf("failed to parse lock document: %w", err)
	}

	if doc.expired(time.Now().UTC()) {
		log.Warn().
			Str("lockedBy", doc.LockedBy).
			Time("expiresAt", doc.ExpiresAt).
			Msg("Removing expired lock document")
		_, err := l.collection.Remove(lockDocumentID, &gocb.RemoveOptions{Context: ctx})
		if err != nil && !errors.Is(err, gocb.ErrDocumentNotFound) {
			return false, fmt.Errorf("failed to remove expired lock: %w", err)
		}
		return false, nil
	}

	return doc.Locked, nil
}
