package kv

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/oshokin/usb-relay/internal/config"
)

// Store reads and writes whole string values by key.
// A missing key is reported with ok=false and no error.
type Store interface {
	Read(ctx context.Context, key string) (value string, ok bool, err error)
	Write(ctx context.Context, key, value string) error
}

// ClosableStore is a Store holding an open resource.
type ClosableStore interface {
	Store
	Close() error
}

// errUnknownBackend is returned for a store backend name Open does not know.
var errUnknownBackend = errors.New("unknown store backend")

// Open creates the store selected by the settings.
//
//nolint:ireturn // Callers pick the backend at runtime.
func Open(settings *config.StoreConfig) (ClosableStore, error) {
	switch strings.ToLower(settings.Backend) {
	case config.StoreBackendFile, "":
		return NewFileStore(settings.Path), nil
	case config.StoreBackendBolt:
		store, err := NewBoltStore(settings.Path)
		if err != nil {
			return nil, err
		}

		return store, nil
	default:
		return nil, fmt.Errorf("%q: %w", settings.Backend, errUnknownBackend)
	}
}
