package sim

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/oshokin/usb-relay/internal/config"
	"github.com/oshokin/usb-relay/internal/driver"
	"github.com/oshokin/usb-relay/internal/repository/kv"
)

// testModules is a small mixed bench.
func testModules() []config.SimModule {
	return []config.SimModule{
		{SerialNumber: "ABCDE", Channels: 4, Status: 0b0001},
		{SerialNumber: "QWERT", Channels: 8},
		{SerialNumber: "DEAD1", Channels: 2, Offline: true},
	}
}

// TestDriver_EnumerateAndOpen lists every module and refuses offline or unknown ones.
func TestDriver_EnumerateAndOpen(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	d := New(testModules(), nil)

	_, err := d.Open(ctx, "ABCDE")
	require.Error(t, err)

	require.NoError(t, d.Init(ctx))

	modules, err := d.Enumerate(ctx)
	require.NoError(t, err)
	require.Len(t, modules, 3)
	require.Equal(t, "DEAD1", modules[2].SerialNumber)

	_, err = d.Open(ctx, "dead1")
	require.ErrorIs(t, err, ErrOffline)

	_, err = d.Open(ctx, "ZZZZZ")
	require.ErrorIs(t, err, driver.ErrModuleNotFound)

	dev, err := d.Open(ctx, "abcde")
	require.NoError(t, err)
	require.NoError(t, dev.Close())
}

// TestDevice_Switching updates the bitmask per channel and for the whole module.
func TestDevice_Switching(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	d := New(testModules(), nil)
	require.NoError(t, d.Init(ctx))

	dev, err := d.Open(ctx, "ABCDE")
	require.NoError(t, err)

	status, err := dev.Status(ctx)
	require.NoError(t, err)
	require.Equal(t, uint8(0b0001), status)

	require.NoError(t, dev.SetChannel(ctx, 3, true))
	require.NoError(t, dev.SetChannel(ctx, 1, false))

	status, err = dev.Status(ctx)
	require.NoError(t, err)
	require.Equal(t, uint8(0b0100), status)

	require.ErrorIs(t, dev.SetChannel(ctx, 5, true), driver.ErrChannelOutOfRange)

	require.NoError(t, dev.SetAll(ctx, true))

	status, err = dev.Status(ctx)
	require.NoError(t, err)
	require.Equal(t, uint8(0b1111), status)

	require.NoError(t, dev.SetAll(ctx, false))

	status, err = dev.Status(ctx)
	require.NoError(t, err)
	require.Zero(t, status)
}

// TestDriver_PersistsStatus keeps channel states across driver instances.
func TestDriver_PersistsStatus(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := kv.NewFileStore(filepath.Join(t.TempDir(), "sim.json"))

	first := New(testModules(), store)
	require.NoError(t, first.Init(ctx))

	dev, err := first.Open(ctx, "QWERT")
	require.NoError(t, err)
	require.NoError(t, dev.SetChannel(ctx, 8, true))

	second := New(testModules(), store)
	require.NoError(t, second.Init(ctx))

	dev, err = second.Open(ctx, "QWERT")
	require.NoError(t, err)

	status, err := dev.Status(ctx)
	require.NoError(t, err)
	require.Equal(t, uint8(0b1000_0000), status)
}
