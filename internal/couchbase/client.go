// Package couchbase stores the patient collection in a Couchbase bucket.
package couchbase

import (
	"stealthcompany.com/patients/internal/config"
)

// Client wires the connection, the migration lock and the collection store
type Client struct {
	connManager *ConnectionManager
	locker      *DatabaseLocker
	store       *CollectionStore
}

// NewClient connects to Couchbase using cfg. owner names this process in
// the lock document.
func NewClient(cfg config.CouchbaseConfig, owner string) (*Client, error) {
	connManager, err := NewConnectionManager(cfg.URL, cfg.Username, cfg.Password, cfg.Bucket)
	if err != nil {
		return nil, err
	}

	collection := connManager.GetBucket().DefaultCollection()
	locker := NewDatabaseLocker(collection, owner)

	return &Client{
		connManager: connManager,
		locker:      locker,
		store:       NewCollectionStore(collection, cfg.DocumentID, locker),
	}, nil
}

// Close closes the Couchbase connection
func (c *Client) Close() error {
	return c.connManager.Close()
}

// GetLocker returns the migration lock
func (c *Client) GetLocker() *DatabaseLocker {
	return c.locker
}

// Store returns the record store backed by the collection document
func (c *Client) Store() *CollectionStore {
	return c.store
}
