package integration

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/oshokin/usb-relay/internal/config"
	"github.com/oshokin/usb-relay/internal/service/relay"
)

// writeSettings saves sim settings with the given store backend into a temp dir.
func writeSettings(t *testing.T, backend string, modules ...config.SimModule) string {
	t.Helper()

	dir := t.TempDir()

	storePath := filepath.Join(dir, "aliases.json")
	if backend == config.StoreBackendBolt {
		storePath = filepath.Join(dir, "aliases.db")
	}

	cfgPath := filepath.Join(dir, "relay-settings.yaml")
	err := config.Save(cfgPath, &config.Config{
		Driver: config.DriverSim,
		Store: config.StoreConfig{
			Backend: backend,
			Path:    storePath,
		},
		Sim: config.SimConfig{Modules: modules},
	})
	require.NoError(t, err)

	return cfgPath
}

// defaultModules is a 4-channel and an 8-channel module, both off.
func defaultModules() []config.SimModule {
	return []config.SimModule{
		{SerialNumber: "ABCDE", Channels: 4},
		{SerialNumber: "QWERT", Channels: 8},
	}
}

// run executes one relay command and returns its stdout.
func run(t *testing.T, cfgPath string, args ...string) (string, error) {
	t.Helper()

	var out bytes.Buffer

	err := relay.Run(context.Background(), &relay.Options{
		ConfigPath: cfgPath,
		Args:       args,
		Stdout:     &out,
	})

	return out.String(), err
}

// mustRun executes one relay command that is expected to succeed.
func mustRun(t *testing.T, cfgPath string, args ...string) string {
	t.Helper()

	out, err := run(t, cfgPath, args...)
	require.NoError(t, err, args)

	return out
}
