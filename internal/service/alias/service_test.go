package alias

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/oshokin/usb-relay/internal/domain/relay"
)

var errTestStore = errors.New("test store error")

// memoryStore is a minimal in-memory kv.Store implementation for tests.
type memoryStore struct {
	// values holds persisted strings by key.
	values map[string]string
	// writes counts Write calls.
	writes int
	// readErr is returned from Read when set.
	readErr error
	// failWriteAfter makes every Write past this count fail when positive.
	failWriteAfter int
}

// newMemoryStore returns a store optionally seeded with the alias list.
func newMemoryStore(list string) *memoryStore {
	m := &memoryStore{values: map[string]string{}}
	if list != "" {
		m.values["Aliases"] = list
	}

	return m
}

// Read returns the stored value for key.
func (m *memoryStore) Read(_ context.Context, key string) (string, bool, error) {
	if m.readErr != nil {
		return "", false, m.readErr
	}

	v, ok := m.values[key]

	return v, ok, nil
}

// Write replaces the stored value for key.
func (m *memoryStore) Write(_ context.Context, key, value string) error {
	if m.failWriteAfter > 0 && m.writes >= m.failWriteAfter {
		return errTestStore
	}

	m.writes++
	m.values[key] = value

	return nil
}

// TestResolve covers alias hits, serial pass-through and unknown names.
func TestResolve(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s := NewService(newMemoryStore("LAMP=ABCDE,FAN:QWERT"), "Aliases")

	sn, err := s.Resolve(ctx, "lamp")
	require.NoError(t, err)
	require.Equal(t, "ABCDE", sn)

	sn, err = s.Resolve(ctx, "Fan")
	require.NoError(t, err)
	require.Equal(t, "QWERT", sn)

	// Serial-shaped tokens pass through upper-cased.
	sn, err = s.Resolve(ctx, "zx9y8")
	require.NoError(t, err)
	require.Equal(t, "ZX9Y8", sn)

	// Neither alias nor serial-shaped.
	sn, err = s.Resolve(ctx, "heater")
	require.NoError(t, err)
	require.Empty(t, sn)

	// Absent value means no aliases at all.
	sn, err = NewService(newMemoryStore(""), "Aliases").Resolve(ctx, "abcde")
	require.NoError(t, err)
	require.Equal(t, "ABCDE", sn)
}

// TestResolve_AliasShadowsSerial lets an alias named like a serial number win.
func TestResolve_AliasShadowsSerial(t *testing.T) {
	t.Parallel()

	s := NewService(newMemoryStore("ABCDE=QWERT"), "Aliases")

	sn, err := s.Resolve(context.Background(), "abcde")
	require.NoError(t, err)
	require.Equal(t, "QWERT", sn)
}

// TestAssign_ReplacesAndPrepends keeps one binding per name, newest first.
func TestAssign_ReplacesAndPrepends(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := newMemoryStore("")
	s := NewService(store, "Aliases")

	require.NoError(t, s.Assign(ctx, "lamp", "abcde"))
	require.NoError(t, s.Assign(ctx, "fan", "qwert"))
	require.NoError(t, s.Assign(ctx, "lamp", "zzzzz"))

	aliases, err := s.List(ctx)
	require.NoError(t, err)
	require.Equal(t, []relay.Alias{
		{Name: "LAMP", SerialNumber: "ZZZZZ"},
		{Name: "FAN", SerialNumber: "QWERT"},
	}, aliases)
	require.Equal(t, "LAMP=ZZZZZ,FAN=QWERT", store.values["Aliases"])
}

// TestAssign_RejectsBadShapes refuses names and serial numbers outside the grammar.
func TestAssign_RejectsBadShapes(t *testing.T) {
	t.Parallel()

	s := NewService(newMemoryStore(""), "Aliases")

	require.ErrorIs(t, s.Assign(context.Background(), "-lamp", "ABCDE"), relay.ErrSyntax)
	require.ErrorIs(t, s.Assign(context.Background(), "lamp", "ABC"), relay.ErrSyntax)
}

// TestRemove drops the binding and falls back to not-found semantics.
func TestRemove(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s := NewService(newMemoryStore(""), "Aliases")

	require.NoError(t, s.Assign(ctx, "lamp", "ABCDE"))
	require.NoError(t, s.Remove(ctx, "LAMP"))

	sn, err := s.Resolve(ctx, "lamp")
	require.NoError(t, err)
	require.Empty(t, sn)

	// A removed alias that is itself serial-shaped passes through.
	require.NoError(t, s.Assign(ctx, "QWERT", "ABCDE"))
	require.NoError(t, s.Remove(ctx, "qwert"))

	sn, err = s.Resolve(ctx, "qwert")
	require.NoError(t, err)
	require.Equal(t, "QWERT", sn)
}

// TestRemove_Idempotent leaves listing unchanged and skips the write.
func TestRemove_Idempotent(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := newMemoryStore("LAMP=ABCDE")
	s := NewService(store, "Aliases")

	before, err := s.List(ctx)
	require.NoError(t, err)

	require.NoError(t, s.Remove(ctx, "heater"))

	after, err := s.List(ctx)
	require.NoError(t, err)
	require.Equal(t, before, after)
	require.Zero(t, store.writes)
}

// TestList_Empty reports the distinct no-aliases condition.
func TestList_Empty(t *testing.T) {
	t.Parallel()

	_, err := NewService(newMemoryStore(""), "Aliases").List(context.Background())
	require.ErrorIs(t, err, ErrNoAliases)

	_, err = NewService(newMemoryStore("garbage,,=,"), "Aliases").List(context.Background())
	require.ErrorIs(t, err, ErrNoAliases)
}

// TestList_SkipsMalformedFragments mirrors the tolerant reader.
func TestList_SkipsMalformedFragments(t *testing.T) {
	t.Parallel()

	s := NewService(newMemoryStore("lamp=abcde,broken,FAN=QWE,-x=ABCDE, pump:12345 "), "Aliases")

	aliases, err := s.List(context.Background())
	require.NoError(t, err)
	require.Equal(t, []relay.Alias{
		{Name: "LAMP", SerialNumber: "ABCDE"},
		{Name: "PUMP", SerialNumber: "12345"},
	}, aliases)
}

// TestApply_Order applies edits in slice order and keeps earlier edits on failure.
func TestApply_Order(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := newMemoryStore("")
	s := NewService(store, "Aliases")

	edits := []relay.AliasEdit{
		{Remove: true, Alias: relay.Alias{Name: "LAMP"}},
		{Alias: relay.Alias{Name: "LAMP", SerialNumber: "ABCDE"}},
		{Alias: relay.Alias{Name: "FAN", SerialNumber: "QWERT"}},
	}
	require.NoError(t, s.Apply(ctx, edits))
	require.Equal(t, "FAN=QWERT,LAMP=ABCDE", store.values["Aliases"])

	store.failWriteAfter = store.writes + 1
	err := s.Apply(ctx, []relay.AliasEdit{
		{Alias: relay.Alias{Name: "PUMP", SerialNumber: "12345"}},
		{Remove: true, Alias: relay.Alias{Name: "FAN"}},
	})
	require.ErrorIs(t, err, errTestStore)
	require.Equal(t, "PUMP=12345,FAN=QWERT,LAMP=ABCDE", store.values["Aliases"])
}

// TestService_ReadError propagates storage failures.
func TestService_ReadError(t *testing.T) {
	t.Parallel()

	store := newMemoryStore("")
	store.readErr = errTestStore
	s := NewService(store, "Aliases")

	_, err := s.Resolve(context.Background(), "lamp")
	require.ErrorIs(t, err, errTestStore)

	require.ErrorIs(t, s.Assign(context.Background(), "lamp", "ABCDE"), errTestStore)
}
