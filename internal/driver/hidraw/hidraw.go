package hidraw

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/oshokin/usb-relay/internal/domain/relay"
	"github.com/oshokin/usb-relay/internal/driver"
	"github.com/oshokin/usb-relay/internal/logger"
)

// node is an open hidraw device exchanging feature reports.
type node interface {
	GetFeature(buf []byte) error
	SetFeature(buf []byte) error
	Close() error
}

// nodeOpener opens the hidraw device at path.
type nodeOpener func(path string) (node, error)

// Option configures the driver.
type Option func(*Driver)

// WithRoots overrides the sysfs class directory and the device directory.
func WithRoots(sysfsRoot, devRoot string) Option {
	return func(d *Driver) {
		d.sysfsRoot, d.devRoot = sysfsRoot, devRoot
	}
}

// withOpener replaces the node opener; tests use it to avoid real ioctls.
func withOpener(open nodeOpener) Option {
	return func(d *Driver) {
		d.open = open
	}
}

const (
	defaultSysfsRoot = "/sys/class/hidraw"
	defaultDevRoot   = "/dev"
)

// ErrUnsupported is returned by Init on platforms without hidraw.
var ErrUnsupported = errors.New("hidraw is only available on linux")

// Driver discovers and drives USB HID relay modules.
type Driver struct {
	sysfsRoot string
	devRoot   string
	open      nodeOpener

	// mu guards modules.
	mu sync.Mutex
	// modules maps serial numbers to discovered nodes.
	modules map[string]discovered
}

// discovered is one relay module found during enumeration.
type discovered struct {
	path     string
	channels int
}

// New creates a hidraw driver.
func New(opts ...Option) *Driver {
	d := &Driver{
		sysfsRoot: defaultSysfsRoot,
		devRoot:   defaultDevRoot,
		open:      openNode,
	}

	for _, opt := range opts {
		opt(d)
	}

	return d
}

// Init checks the platform and the hidraw class directory.
func (d *Driver) Init(context.Context) error {
	if d.open == nil {
		return ErrUnsupported
	}

	if _, err := os.Stat(d.sysfsRoot); err != nil {
		return fmt.Errorf("hidraw class: %w", err)
	}

	return nil
}

// Enumerate scans hidraw nodes for relay modules and reads their serial numbers.
// Nodes that cannot be opened (permissions, unplugged) are skipped.
func (d *Driver) Enumerate(ctx context.Context) ([]relay.Module, error) {
	uevents, err := filepath.Glob(filepath.Join(d.sysfsRoot, "hidraw*", "device", "uevent"))
	if err != nil {
		return nil, fmt.Errorf("scan hidraw nodes: %w", err)
	}

	found := make(map[string]discovered, len(uevents))
	result := make([]relay.Module, 0, len(uevents))

	for _, path := range uevents {
		contents, err := os.ReadFile(path)
		if err != nil {
			continue
		}

		ev, ok := parseUevent(string(contents))
		if !ok || !ev.isRelay() {
			continue
		}

		// sysfsRoot/hidrawN/device/uevent -> devRoot/hidrawN
		devPath := filepath.Join(d.devRoot, filepath.Base(filepath.Dir(filepath.Dir(path))))

		serialNumber, err := d.readSerial(devPath)
		if err != nil {
			logger.DebugKV(ctx, "Skipping hidraw node", "path", devPath, "error", err)
			continue
		}

		if _, dup := found[serialNumber]; dup {
			continue
		}

		found[serialNumber] = discovered{path: devPath, channels: ev.channels()}
		result = append(result, relay.Module{SerialNumber: serialNumber, Channels: ev.channels()})
	}

	d.mu.Lock()
	d.modules = found
	d.mu.Unlock()

	return result, nil
}

// Open opens the module with the given serial number, enumerating first if needed.
//
//nolint:ireturn // Satisfies driver.Driver.
func (d *Driver) Open(ctx context.Context, serialNumber string) (driver.Device, error) {
	d.mu.Lock()
	known := d.modules
	d.mu.Unlock()

	if known == nil {
		if _, err := d.Enumerate(ctx); err != nil {
			return nil, err
		}

		d.mu.Lock()
		known = d.modules
		d.mu.Unlock()
	}

	module, ok := known[relay.Normalize(serialNumber)]
	if !ok {
		return nil, fmt.Errorf("open %s: %w", serialNumber, driver.ErrModuleNotFound)
	}

	n, err := d.open(module.path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", module.path, err)
	}

	return &device{node: n, channels: module.channels}, nil
}

// Close forgets discovered modules.
func (d *Driver) Close() error {
	d.mu.Lock()
	d.modules = nil
	d.mu.Unlock()

	return nil
}

// readSerial opens devPath just long enough to read the status report.
func (d *Driver) readSerial(devPath string) (string, error) {
	n, err := d.open(devPath)
	if err != nil {
		return "", err
	}

	defer func() {
		_ = n.Close()
	}()

	buf := statusRequest()
	if err = n.GetFeature(buf); err != nil {
		return "", fmt.Errorf("read status report: %w", err)
	}

	return serialFromReport(buf), nil
}

// device is an open relay module.
type device struct {
	node     node
	channels int
}

// SetAll switches every channel with one report.
func (dev *device) SetAll(_ context.Context, on bool) error {
	if err := dev.node.SetFeature(allReport(on)); err != nil {
		return fmt.Errorf("switch all channels: %w", err)
	}

	return nil
}

// SetChannel switches one channel.
func (dev *device) SetChannel(_ context.Context, channel int, on bool) error {
	if channel < 1 || channel > dev.channels {
		return fmt.Errorf("channel %d: %w", channel, driver.ErrChannelOutOfRange)
	}

	if err := dev.node.SetFeature(channelReport(channel, on)); err != nil {
		return fmt.Errorf("switch channel %d: %w", channel, err)
	}

	return nil
}

// Status reads the channel bitmask.
func (dev *device) Status(context.Context) (uint8, error) {
	buf := statusRequest()
	if err := dev.node.GetFeature(buf); err != nil {
		return 0, fmt.Errorf("read status report: %w", err)
	}

	return statusFromReport(buf), nil
}

// Close closes the device node.
func (dev *device) Close() error {
	return dev.node.Close()
}
