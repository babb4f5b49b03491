package kv

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/oshokin/usb-relay/internal/config"
)

// errNotString is returned when a stored field holds a non-string JSON value.
var errNotString = errors.New("stored value is not a string")

// FileStore persists values as one JSON object on disk.
// JSON is produced and consumed via protojson over a structpb.Struct so that
// non-string fields written by hand are rejected on read instead of being coerced.
type FileStore struct {
	// path is the filesystem location of the JSON document.
	path string
	// mu serializes access within one process; there is no cross-process lock.
	mu sync.Mutex
}

// NewFileStore creates a store that reads/writes JSON at the provided path.
func NewFileStore(path string) *FileStore {
	return &FileStore{
		path: filepath.Clean(path),
	}
}

// Read returns the value stored under key.
func (s *FileStore) Read(_ context.Context, key string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.load()
	if err != nil {
		return "", false, err
	}

	field, ok := doc.GetFields()[key]
	if !ok {
		return "", false, nil
	}

	if _, isString := field.GetKind().(*structpb.Value_StringValue); !isString {
		return "", false, fmt.Errorf("value %q: %w", key, errNotString)
	}

	return field.GetStringValue(), true, nil
}

// Write replaces the value stored under key and rewrites the whole document.
func (s *FileStore) Write(_ context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.load()
	if err != nil {
		return err
	}

	if doc.Fields == nil {
		doc.Fields = make(map[string]*structpb.Value, 1)
	}

	doc.Fields[key] = structpb.NewStringValue(value)

	marshalOptions := protojson.MarshalOptions{
		Multiline: true,
		Indent:    "  ",
	}

	data, err := marshalOptions.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encode store: %w", err)
	}

	if err = writeFileAtomic(s.path, data); err != nil {
		return fmt.Errorf("write store file: %w", err)
	}

	return nil
}

// Close is a no-op; the file is only open during Read and Write.
func (s *FileStore) Close() error {
	return nil
}

// load reads the document, treating a missing or empty file as an empty object.
func (s *FileStore) load() (*structpb.Struct, error) {
	contents, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return new(structpb.Struct), nil
		}

		return nil, fmt.Errorf("read store file: %w", err)
	}

	doc := new(structpb.Struct)
	if len(contents) == 0 {
		return doc, nil
	}

	if err = protojson.Unmarshal(contents, doc); err != nil {
		return nil, fmt.Errorf("decode store file: %w", err)
	}

	return doc, nil
}

// writeFileAtomic writes data next to path and renames it into place.
func writeFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, config.DefaultDirPermissions); err != nil {
		return err
	}

	file, err := os.CreateTemp(dir, ".tmp-*.json")
	if err != nil {
		return err
	}

	defer func() {
		_ = os.Remove(file.Name())
	}()

	if _, err = file.Write(data); err != nil {
		_ = file.Close()
		return err
	}

	if err = file.Chmod(config.DefaultFilePermissions); err != nil {
		_ = file.Close()
		return err
	}

	if err = file.Sync(); err != nil {
		_ = file.Close()
		return err
	}

	if err = file.Close(); err != nil {
		return err
	}

	return os.Rename(file.Name(), path)
}
