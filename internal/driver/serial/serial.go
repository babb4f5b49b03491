package serial

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	tarm "github.com/tarm/serial"

	"github.com/oshokin/usb-relay/internal/config"
	"github.com/oshokin/usb-relay/internal/domain/relay"
	"github.com/oshokin/usb-relay/internal/driver"
	"github.com/oshokin/usb-relay/internal/logger"
)

// Opener opens the serial line of a board.
type Opener func(port config.SerialPort, timeout time.Duration) (io.ReadWriteCloser, error)

// Option configures the driver.
type Option func(*Driver)

// WithOpener replaces the function used to open serial lines.
func WithOpener(opener Opener) Option {
	return func(d *Driver) {
		if opener != nil {
			d.open = opener
		}
	}
}

// reportBufferSize is enough for an 8-channel report.
const reportBufferSize = 128

// errNoPorts is returned by Init when no board is configured.
var errNoPorts = errors.New("no serial relay boards configured")

// Driver drives relay boards attached to serial ports.
type Driver struct {
	// ports lists configured boards.
	ports []config.SerialPort
	// timeout bounds status reads.
	timeout time.Duration
	// open opens one serial line.
	open Opener
}

// New creates a serial driver for the configured boards.
func New(ports []config.SerialPort, timeout time.Duration, opts ...Option) *Driver {
	d := &Driver{
		ports:   ports,
		timeout: timeout,
		open:    openPort,
	}

	for _, opt := range opts {
		opt(d)
	}

	return d
}

// Init fails when no board is configured.
func (d *Driver) Init(context.Context) error {
	if len(d.ports) == 0 {
		return errNoPorts
	}

	return nil
}

// Enumerate lists configured boards whose device node exists.
// Names that are not filesystem paths (COM3) are always listed.
func (d *Driver) Enumerate(ctx context.Context) ([]relay.Module, error) {
	result := make([]relay.Module, 0, len(d.ports))

	for _, p := range d.ports {
		if strings.HasPrefix(p.Port, "/") {
			if _, err := os.Stat(p.Port); err != nil {
				logger.DebugKV(ctx, "Serial port unavailable", "port", p.Port, "error", err)
				continue
			}
		}

		result = append(result, relay.Module{
			SerialNumber: relay.Normalize(p.SerialNumber),
			Channels:     p.Channels,
		})
	}

	return result, nil
}

// Open opens the serial line of the board with the given serial number.
//
//nolint:ireturn // Satisfies driver.Driver.
func (d *Driver) Open(_ context.Context, serialNumber string) (driver.Device, error) {
	serialNumber = relay.Normalize(serialNumber)

	for _, p := range d.ports {
		if relay.Normalize(p.SerialNumber) != serialNumber {
			continue
		}

		line, err := d.open(p, d.timeout)
		if err != nil {
			return nil, fmt.Errorf("open %s: %w", p.Port, err)
		}

		return &device{line: line, channels: p.Channels}, nil
	}

	return nil, fmt.Errorf("open %s: %w", serialNumber, driver.ErrModuleNotFound)
}

// Close is a no-op; lines are closed per device.
func (d *Driver) Close() error {
	return nil
}

// openPort opens a real serial line.
//
//nolint:ireturn // Opener returns the narrow interface.
func openPort(port config.SerialPort, timeout time.Duration) (io.ReadWriteCloser, error) {
	line, err := tarm.OpenPort(&tarm.Config{
		Name:        port.Port,
		Baud:        port.Baud,
		ReadTimeout: timeout,
	})
	if err != nil {
		return nil, err
	}

	return line, nil
}

// device is an open board.
type device struct {
	line     io.ReadWriteCloser
	channels int
}

// SetAll switches every channel one frame at a time; the boards have no group command.
func (dev *device) SetAll(ctx context.Context, on bool) error {
	for ch := 1; ch <= dev.channels; ch++ {
		if err := dev.SetChannel(ctx, ch, on); err != nil {
			return err
		}
	}

	return nil
}

// SetChannel writes one switching frame.
func (dev *device) SetChannel(ctx context.Context, channel int, on bool) error {
	if channel < 1 || channel > dev.channels {
		return fmt.Errorf("channel %d: %w", channel, driver.ErrChannelOutOfRange)
	}

	frame := switchFrame(channel, on)

	n, err := dev.line.Write(frame)
	if err != nil {
		return fmt.Errorf("write frame: %w", err)
	}

	if n != len(frame) {
		return fmt.Errorf("incomplete write % X: %w", frame[:n], io.ErrShortWrite)
	}

	logger.DebugKV(ctx, "Serial frame written", "frame", fmt.Sprintf("% X", frame))

	return nil
}

// Status requests and parses the channel report. Reading stops once every channel
// was reported or the line times out.
func (dev *device) Status(ctx context.Context) (uint8, error) {
	if _, err := dev.line.Write([]byte{statusRequest}); err != nil {
		return 0, fmt.Errorf("write status request: %w", err)
	}

	var (
		report strings.Builder
		buf    = make([]byte, reportBufferSize)
		want   = uint8(1<<dev.channels - 1)
	)

	for {
		n, err := dev.line.Read(buf)
		report.Write(buf[:n])

		status, seen := parseStatus(report.String())
		if seen&want == want {
			return status, nil
		}

		if n == 0 || err != nil {
			if err != nil && !errors.Is(err, io.EOF) {
				return 0, fmt.Errorf("read status: %w", err)
			}

			logger.DebugKV(ctx, "Partial serial status report", "report", report.String())

			return status, nil
		}
	}
}

// Close closes the serial line.
func (dev *device) Close() error {
	return dev.line.Close()
}
