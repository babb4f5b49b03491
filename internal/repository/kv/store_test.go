package kv

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/oshokin/usb-relay/internal/config"
)

// openStores returns one instance of every backend rooted in a temp dir.
func openStores(t *testing.T) map[string]ClosableStore {
	t.Helper()

	dir := t.TempDir()

	bolt, err := NewBoltStore(filepath.Join(dir, "aliases.db"))
	require.NoError(t, err)

	t.Cleanup(func() {
		_ = bolt.Close()
	})

	return map[string]ClosableStore{
		"file": NewFileStore(filepath.Join(dir, "aliases.json")),
		"bolt": bolt,
	}
}

// TestStore_MissingKey verifies an absent value is not an error.
func TestStore_MissingKey(t *testing.T) {
	t.Parallel()

	for name, store := range openStores(t) {
		value, ok, err := store.Read(context.Background(), "Aliases")
		require.NoError(t, err, name)
		require.False(t, ok, name)
		require.Empty(t, value, name)
	}
}

// TestStore_WriteRead ensures writes replace the whole value and keys are independent.
func TestStore_WriteRead(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	for name, store := range openStores(t) {
		require.NoError(t, store.Write(ctx, "Aliases", "LAMP=ABCDE"), name)
		require.NoError(t, store.Write(ctx, "Aliases", "FAN=QWERT,LAMP=ABCDE"), name)
		require.NoError(t, store.Write(ctx, "Other", "X"), name)

		value, ok, err := store.Read(ctx, "Aliases")
		require.NoError(t, err, name)
		require.True(t, ok, name)
		require.Equal(t, "FAN=QWERT,LAMP=ABCDE", value, name)

		value, ok, err = store.Read(ctx, "Other")
		require.NoError(t, err, name)
		require.True(t, ok, name)
		require.Equal(t, "X", value, name)
	}
}

// TestFileStore_PersistsAcrossInstances reopens the document from disk.
func TestFileStore_PersistsAcrossInstances(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "aliases.json")

	require.NoError(t, NewFileStore(path).Write(ctx, "Aliases", "LAMP=ABCDE"))

	value, ok, err := NewFileStore(path).Read(ctx, "Aliases")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "LAMP=ABCDE", value)

	_, err = os.Stat(path)
	require.NoError(t, err)
}

// TestFileStore_RejectsNonString reports hand-edited values of the wrong type.
func TestFileStore_RejectsNonString(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "aliases.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"Aliases": 42}`), 0o600))

	_, _, err := NewFileStore(path).Read(context.Background(), "Aliases")
	require.Error(t, err)

	require.NoError(t, os.WriteFile(path, []byte(`not json`), 0o600))

	_, _, err = NewFileStore(path).Read(context.Background(), "Aliases")
	require.Error(t, err)
}

// TestOpen selects the backend by name.
func TestOpen(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	store, err := Open(&config.StoreConfig{Backend: "file", Path: filepath.Join(dir, "a.json")})
	require.NoError(t, err)
	require.IsType(t, &FileStore{}, store)
	require.NoError(t, store.Close())

	store, err = Open(&config.StoreConfig{Backend: "BOLT", Path: filepath.Join(dir, "a.db")})
	require.NoError(t, err)
	require.IsType(t, &BoltStore{}, store)
	require.NoError(t, store.Close())

	_, err = Open(&config.StoreConfig{Backend: "registry"})
	require.Error(t, err)
}
