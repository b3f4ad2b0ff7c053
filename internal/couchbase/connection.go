package couchbase

import (
	"fmt"
	"strings"
	"time"

	"github.com/couchbase/gocb/v2"
	"github.com/rs/zerolog/log"
)

// ConnectionManager handles Couchbase cluster and bucket connections
type ConnectionManager struct {
	cluster    *gocb.Cluster
	bucket     *gocb.Bucket
	bucketName string
}

// normalizeConnectionString turns http(s) URLs and bare hosts into
// couchbase(s):// connection strings.
func normalizeConnectionString(url string) string {
	switch {
	case strings.HasPrefix(url, "couchbase://"), strings.HasPrefix(url, "couchbases://"):
		return url
	case strings.HasPrefix(url, "http://"):
		return "couchbase://" + strings.TrimPrefix(url, "http://")
	case strings.HasPrefix(url, "https://"):
		return "couchbases://" + strings.TrimPrefix(url, "https://")
	default:
		return "couchbase://" + url
	}
}

// NewConnectionManager connects to the cluster and waits for the bucket
func NewConnectionManager(url, username, password, bucketName string) (*ConnectionManager, error) {
	connectionString := normalizeConnectionString(url)

	log.Info().
		Str("url", connectionString).
		Str("bucket", bucketName).
		Msg("Creating Couchbase connection")

	cluster, err := gocb.Connect(connectionString, gocb.ClusterOptions{
		Authenticator: gocb.PasswordAuthenticator{
			Username: username,
			Password: password,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to cluster: %w", err)
	}

	// Open bucket (assume it exists - don't try to create it)
	bucket := cluster.Bucket(bucketName)

	err = bucket.WaitUntilReady(30*time.Second, &gocb.WaitUntilReadyOptions{
		ServiceTypes: []gocb.ServiceType{gocb.ServiceTypeKeyValue},
	})
	if err != nil {
		cluster.Close(nil)
		return nil, fmt.Errorf("bucket '%s' is not accessible: %w", bucketName, err)
	}

	log.Info().Msg("Couchbase connection created successfully")
	return &ConnectionManager{
		cluster:    cluster,
		bucket:     bucket,
		bucketName: bucketName,
	}, nil
}

// Close closes the Couchbase connection
func (cm *ConnectionManager) Close() error {
	return cm.cluster.Close(nil)
}

// GetBucket returns the bucket instance
func (cm *ConnectionManager) GetBucket() *gocb.Bucket {
	return cm.bucket
}
