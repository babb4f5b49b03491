// Package sim implements driver.Driver with simulated modules described in the settings.
//
// Channel states survive between invocations when a kv.Store is supplied: each
// module's bitmask is kept under "sim/<SERIAL>".
package sim

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"

	"github.com/oshokin/usb-relay/internal/config"
	"github.com/oshokin/usb-relay/internal/domain/relay"
	"github.com/oshokin/usb-relay/internal/driver"
	"github.com/oshokin/usb-relay/internal/repository/kv"
)

// statusKeyPrefix prefixes persisted module bitmasks.
const statusKeyPrefix = "sim/"

var (
	// ErrOffline is returned by Open for modules configured as offline.
	ErrOffline = errors.New("module is offline")
	// errNotInitialized is returned when the driver is used before Init.
	errNotInitialized = errors.New("sim driver is not initialized")
)

// Driver simulates relay modules.
type Driver struct {
	// modules is the configured hardware, in enumeration order.
	modules []config.SimModule
	// store persists bitmasks when not nil.
	store kv.Store

	// mu guards statuses.
	mu sync.Mutex
	// statuses caches the bitmask of every module.
	statuses map[string]uint8
}

// New creates a simulated driver. store may be nil for in-memory state only.
func New(modules []config.SimModule, store kv.Store) *Driver {
	return &Driver{
		modules: modules,
		store:   store,
	}
}

// Init loads persisted bitmasks, falling back to the configured initial status.
func (d *Driver) Init(ctx context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.statuses = make(map[string]uint8, len(d.modules))

	for _, m := range d.modules {
		status := m.Status

		if d.store != nil {
			value, ok, err := d.store.Read(ctx, statusKeyPrefix+m.SerialNumber)
			if err != nil {
				return fmt.Errorf("load sim status: %w", err)
			}

			if ok {
				parsed, err := strconv.ParseUint(value, 10, 8)
				if err != nil {
					return fmt.Errorf("parse sim status %q: %w", value, err)
				}

				status = uint8(parsed)
			}
		}

		d.statuses[relay.Normalize(m.SerialNumber)] = status
	}

	return nil
}

// Enumerate lists the configured modules, offline ones included.
func (d *Driver) Enumerate(context.Context) ([]relay.Module, error) {
	result := make([]relay.Module, 0, len(d.modules))
	for _, m := range d.modules {
		result = append(result, relay.Module{
			SerialNumber: relay.Normalize(m.SerialNumber),
			Channels:     m.Channels,
		})
	}

	return result, nil
}

// Open returns a handle to the module, failing for unknown or offline modules.
//
//nolint:ireturn // Satisfies driver.Driver.
func (d *Driver) Open(_ context.Context, serialNumber string) (driver.Device, error) {
	if d.statuses == nil {
		return nil, errNotInitialized
	}

	serialNumber = relay.Normalize(serialNumber)

	for _, m := range d.modules {
		if relay.Normalize(m.SerialNumber) != serialNumber {
			continue
		}

		if m.Offline {
			return nil, fmt.Errorf("open %s: %w", serialNumber, ErrOffline)
		}

		return &device{
			driver:       d,
			serialNumber: serialNumber,
			channels:     m.Channels,
		}, nil
	}

	return nil, fmt.Errorf("open %s: %w", serialNumber, driver.ErrModuleNotFound)
}

// Close is a no-op.
func (d *Driver) Close() error {
	return nil
}

// update applies fn to the module bitmask and persists the result.
func (d *Driver) update(ctx context.Context, serialNumber string, fn func(uint8) uint8) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	status := fn(d.statuses[serialNumber])
	d.statuses[serialNumber] = status

	if d.store == nil {
		return nil
	}

	if err := d.store.Write(ctx, statusKeyPrefix+serialNumber, strconv.FormatUint(uint64(status), 10)); err != nil {
		return fmt.Errorf("persist sim status: %w", err)
	}

	return nil
}

// status returns the cached bitmask.
func (d *Driver) status(serialNumber string) uint8 {
	d.mu.Lock()
	defer d.mu.Unlock()

	return d.statuses[serialNumber]
}

// device is an open simulated module.
type device struct {
	driver       *Driver
	serialNumber string
	channels     int
}

// SetAll switches every channel of the module.
func (dev *device) SetAll(ctx context.Context, on bool) error {
	mask := uint8(1<<dev.channels - 1)

	return dev.driver.update(ctx, dev.serialNumber, func(status uint8) uint8 {
		if on {
			return status | mask
		}

		return status &^ mask
	})
}

// SetChannel switches one channel.
func (dev *device) SetChannel(ctx context.Context, channel int, on bool) error {
	if channel < 1 || channel > dev.channels {
		return fmt.Errorf("channel %d: %w", channel, driver.ErrChannelOutOfRange)
	}

	bit := uint8(1) << (channel - 1)

	return dev.driver.update(ctx, dev.serialNumber, func(status uint8) uint8 {
		if on {
			return status | bit
		}

		return status &^ bit
	})
}

// Status returns the module bitmask.
func (dev *device) Status(context.Context) (uint8, error) {
	return dev.driver.status(dev.serialNumber), nil
}

// Close is a no-op.
func (dev *device) Close() error {
	return nil
}
