package kv

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	bolt "go.etcd.io/bbolt"

	"github.com/oshokin/usb-relay/internal/config"
)

// bucketValues holds every stored value.
//
//nolint:gochecknoglobals // bbolt takes bucket names as byte slices.
var bucketValues = []byte("values")

// boltOpenTimeout bounds how long Open waits for another process holding the file lock.
const boltOpenTimeout = 2 * time.Second

// errPathRequired is returned when no database path is configured.
var errPathRequired = errors.New("store path is required")

// BoltStore persists values in a bbolt database.
type BoltStore struct {
	// db is the open database handle.
	db *bolt.DB
}

// NewBoltStore opens (creating if needed) the database at path.
func NewBoltStore(path string) (*BoltStore, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, errPathRequired
	}

	if err := os.MkdirAll(filepath.Dir(path), config.DefaultDirPermissions); err != nil {
		return nil, fmt.Errorf("create store dir: %w", err)
	}

	db, err := bolt.Open(path, config.DefaultFilePermissions, &bolt.Options{Timeout: boltOpenTimeout})
	if err != nil {
		return nil, fmt.Errorf("open bolt store: %w", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketValues)
		return err
	})
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("init bolt store: %w", err)
	}

	return &BoltStore{db: db}, nil
}

// Read returns the value stored under key.
func (s *BoltStore) Read(_ context.Context, key string) (string, bool, error) {
	var (
		value string
		ok    bool
	)

	err := s.db.View(func(tx *bolt.Tx) error {
		raw := tx.Bucket(bucketValues).Get([]byte(key))
		if raw == nil {
			return nil
		}

		// raw is only valid inside the transaction.
		value, ok = string(raw), true

		return nil
	})
	if err != nil {
		return "", false, fmt.Errorf("read %q: %w", key, err)
	}

	return value, ok, nil
}

// Write replaces the value stored under key.
func (s *BoltStore) Write(_ context.Context, key, value string) error {
	err := s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketValues).Put([]byte(key), []byte(value))
	})
	if err != nil {
		return fmt.Errorf("write %q: %w", key, err)
	}

	return nil
}

// Close releases the database file lock.
func (s *BoltStore) Close() error {
	if s == nil || s.db == nil {
		return nil
	}

	return s.db.Close()
}
