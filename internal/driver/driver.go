package driver

import (
	"context"
	"errors"

	"github.com/oshokin/usb-relay/internal/domain/relay"
)

// Driver enumerates and opens relay modules.
type Driver interface {
	// Init prepares the backend; failure means no hardware call can be made.
	Init(ctx context.Context) error
	// Enumerate lists attached modules. An empty list is not an error.
	Enumerate(ctx context.Context) ([]relay.Module, error)
	// Open returns a handle to the module with the given serial number.
	Open(ctx context.Context, serialNumber string) (Device, error)
	// Close releases backend resources acquired by Init.
	Close() error
}

// Device is an open handle to one module. Channels are numbered from 1.
type Device interface {
	// SetAll switches every channel on or off.
	SetAll(ctx context.Context, on bool) error
	// SetChannel switches one channel on or off.
	SetChannel(ctx context.Context, channel int, on bool) error
	// Status returns the channel bitmask, bit 0 being channel 1.
	Status(ctx context.Context) (uint8, error)
	// Close releases the handle.
	Close() error
}

var (
	// ErrModuleNotFound is returned by Open for a serial number the backend does not know.
	ErrModuleNotFound = errors.New("module not found")
	// ErrChannelOutOfRange is returned for a channel outside 1..channels.
	ErrChannelOutOfRange = errors.New("channel out of range")
)

// IsChannelOn reports whether channel is set in the status bitmask.
func IsChannelOn(status uint8, channel int) bool {
	if channel < 1 || channel > relay.MaxChannels {
		return false
	}

	return status&(1<<(channel-1)) != 0
}
