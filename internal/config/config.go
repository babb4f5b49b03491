package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	toml "github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// Config holds the settings shared by every relay command.
type Config struct {
	// Driver selects the hardware backend: hidraw, serial or sim.
	Driver string `yaml:"driver" toml:"driver"`
	// Store configures where aliases are persisted.
	Store StoreConfig `yaml:"store" toml:"store"`
	// Timeout bounds driver reads such as serial status replies.
	Timeout time.Duration `yaml:"timeout" toml:"timeout"`
	// Log configures diagnostics.
	Log LogConfig `yaml:"log" toml:"log"`
	// Serial lists relay boards attached through serial ports.
	Serial SerialConfig `yaml:"serial" toml:"serial"`
	// Sim lists simulated modules for the sim driver.
	Sim SimConfig `yaml:"sim" toml:"sim"`
}

// StoreConfig selects the alias store backend.
type StoreConfig struct {
	// Backend is file (protojson document) or bolt (bbolt database).
	Backend string `yaml:"backend" toml:"backend"`
	// Path is the store location; defaults depend on the backend.
	Path string `yaml:"path" toml:"path"`
	// Key names the value holding the alias list.
	Key string `yaml:"key" toml:"key"`
}

// LogConfig configures the logger.
type LogConfig struct {
	// Level is one of debug, info, warn, error.
	Level string `yaml:"level" toml:"level"`
	// File, when set, additionally receives JSON log entries with rotation.
	File string `yaml:"file" toml:"file"`
	// MaxSizeMB is the size at which the log file is rotated.
	MaxSizeMB int `yaml:"max_size_mb" toml:"max_size_mb"`
	// MaxBackups is the number of rotated files kept.
	MaxBackups int `yaml:"max_backups" toml:"max_backups"`
	// MaxAgeDays is how long rotated files are kept.
	MaxAgeDays int `yaml:"max_age_days" toml:"max_age_days"`
}

// SerialConfig lists serial relay boards.
type SerialConfig struct {
	Ports []SerialPort `yaml:"ports" toml:"ports"`
}

// SerialPort describes one serial relay board. Such boards carry no serial number of
// their own, so one is assigned here.
type SerialPort struct {
	// Port is the device path, e.g. /dev/ttyUSB0 or COM3.
	Port string `yaml:"port" toml:"port"`
	// SerialNumber is the 5-character identifier used on the command line.
	SerialNumber string `yaml:"serial_number" toml:"serial_number"`
	// Channels is the number of relays on the board.
	Channels int `yaml:"channels" toml:"channels"`
	// Baud is the line speed, 9600 when zero.
	Baud int `yaml:"baud" toml:"baud"`
}

// SimConfig lists simulated modules.
type SimConfig struct {
	Modules []SimModule `yaml:"modules" toml:"modules"`
}

// SimModule describes one simulated relay module.
type SimModule struct {
	// SerialNumber is the 5-character identifier.
	SerialNumber string `yaml:"serial_number" toml:"serial_number"`
	// Channels is the number of relays.
	Channels int `yaml:"channels" toml:"channels"`
	// Status is the initial state bitmask, bit 0 being channel 1.
	Status uint8 `yaml:"status" toml:"status"`
	// Offline makes every open attempt fail while the module still enumerates.
	Offline bool `yaml:"offline" toml:"offline"`
}

const (
	// DefaultConfigFilename is the default filename for relay settings.
	DefaultConfigFilename = "relay-settings.yaml"

	// DriverHidraw talks to USB HID relay modules through Linux hidraw nodes.
	DriverHidraw = "hidraw"
	// DriverSerial talks to serial relay boards.
	DriverSerial = "serial"
	// DriverSim uses simulated modules from the settings.
	DriverSim = "sim"

	// StoreBackendFile keeps aliases in a JSON document.
	StoreBackendFile = "file"
	// StoreBackendBolt keeps aliases in a bbolt database.
	StoreBackendBolt = "bolt"

	// DefaultStoreKey names the persisted alias list.
	DefaultStoreKey = "Aliases"

	// DefaultTimeout bounds driver reads.
	DefaultTimeout = 500 * time.Millisecond

	// DefaultLogLevel keeps stderr quiet unless something went wrong.
	DefaultLogLevel = "warn"

	// DefaultSerialBaud is the line speed of common serial relay boards.
	DefaultSerialBaud = 9600

	// DefaultFilePermissions is the default file permission for settings and stores.
	DefaultFilePermissions = 0o600

	// DefaultDirPermissions is used when creating store directories.
	DefaultDirPermissions = 0o700

	// appDirName is the directory created under the user configuration directory.
	appDirName = "usb-relay"

	defaultLogMaxSizeMB  = 10
	defaultLogMaxBackups = 3
	defaultLogMaxAgeDays = 28
)

var (
	// errConfigIsNotSet is returned when a nil configuration is provided.
	errConfigIsNotSet = errors.New("configuration is not set")
	// errUnknownDriver is returned for an unsupported driver name.
	errUnknownDriver = errors.New("unknown driver")
	// errUnknownBackend is returned for an unsupported store backend.
	errUnknownBackend = errors.New("unknown store backend")
	// errBadSerialNumber is returned for a configured serial number of the wrong shape.
	errBadSerialNumber = errors.New("serial number must be 5 alphanumeric characters")
	// errBadChannels is returned for a channel count other than 1, 2, 4 or 8.
	errBadChannels = errors.New("channels must be 1, 2, 4 or 8")
	// errPortRequired is returned for a serial board without a device path.
	errPortRequired = errors.New("serial port must be provided")

	//nolint:gochecknoglobals // Compiled once, read-only.
	serialNumberPattern = regexp.MustCompile(`^[A-Z0-9]{5}$`)
)

// Default returns settings with every default applied.
func Default() *Config {
	cfg := new(Config)

	// Validation of an empty config only fills defaults and cannot fail.
	_ = Validate(cfg)

	return cfg
}

// Override adjusts loaded settings before validation fills in defaults.
type Override func(*Config)

// WithDriver selects the driver when name is not empty.
func WithDriver(name string) Override {
	return func(cfg *Config) {
		if name != "" {
			cfg.Driver = name
		}
	}
}

// WithStoreBackend selects the alias store backend when name is not empty.
func WithStoreBackend(name string) Override {
	return func(cfg *Config) {
		if name != "" {
			cfg.Store.Backend = name
		}
	}
}

// WithLogLevel sets the log level when level is not empty.
func WithLogLevel(level string) Override {
	return func(cfg *Config) {
		if level != "" {
			cfg.Log.Level = level
		}
	}
}

// Load reads configuration from the provided path, applies overrides and validates it.
// A missing file yields the defaults.
func Load(path string, overrides ...Override) (*Config, error) {
	if path == "" {
		path = DefaultConfigFilename
	}

	var cfg Config

	contents, err := os.ReadFile(filepath.Clean(path))
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("read settings: %w", err)
	}

	if err == nil {
		if err = unmarshal(path, contents, &cfg); err != nil {
			return nil, fmt.Errorf("unmarshal settings: %w", err)
		}
	}

	for _, override := range overrides {
		override(&cfg)
	}

	if err := Validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Save writes settings to the provided path, in TOML when the extension says so.
func Save(path string, cfg *Config) error {
	if cfg == nil {
		return errConfigIsNotSet
	}

	if path == "" {
		path = DefaultConfigFilename
	}

	if err := Validate(cfg); err != nil {
		return err
	}

	var (
		data []byte
		err  error
	)

	if isTOML(path) {
		data, err = toml.Marshal(cfg)
	} else {
		data, err = yaml.Marshal(cfg)
	}

	if err != nil {
		return fmt.Errorf("marshal settings: %w", err)
	}

	// Restrict permissions.
	if err := os.WriteFile(filepath.Clean(path), data, DefaultFilePermissions); err != nil {
		return fmt.Errorf("write settings: %w", err)
	}

	return nil
}

// Validate checks the provided settings and fills in defaults.
//
//nolint:cyclop // One flat pass over every section reads better than helpers.
func Validate(settings *Config) error {
	if settings == nil {
		return errConfigIsNotSet
	}

	settings.Driver = strings.ToLower(strings.TrimSpace(settings.Driver))
	switch settings.Driver {
	case "":
		settings.Driver = DriverHidraw
	case DriverHidraw, DriverSerial, DriverSim:
	default:
		return fmt.Errorf("%q: %w", settings.Driver, errUnknownDriver)
	}

	if err := validateStore(&settings.Store); err != nil {
		return err
	}

	if settings.Timeout <= 0 {
		settings.Timeout = DefaultTimeout
	}

	validateLog(&settings.Log)

	for i := range settings.Serial.Ports {
		port := &settings.Serial.Ports[i]
		if port.Port == "" {
			return errPortRequired
		}

		if err := validateModule(&port.SerialNumber, port.Channels); err != nil {
			return fmt.Errorf("serial port %s: %w", port.Port, err)
		}

		if port.Baud <= 0 {
			port.Baud = DefaultSerialBaud
		}
	}

	for i := range settings.Sim.Modules {
		module := &settings.Sim.Modules[i]
		if err := validateModule(&module.SerialNumber, module.Channels); err != nil {
			return fmt.Errorf("sim module %s: %w", module.SerialNumber, err)
		}
	}

	return nil
}

// validateStore normalizes the backend name and picks a default path.
func validateStore(store *StoreConfig) error {
	store.Backend = strings.ToLower(strings.TrimSpace(store.Backend))

	var defaultFile string

	switch store.Backend {
	case "", StoreBackendFile:
		store.Backend = StoreBackendFile
		defaultFile = "relay-aliases.json"
	case StoreBackendBolt:
		defaultFile = "relay-aliases.db"
	default:
		return fmt.Errorf("%q: %w", store.Backend, errUnknownBackend)
	}

	if store.Path == "" {
		store.Path = filepath.Join(defaultDir(), defaultFile)
	}

	if store.Key == "" {
		store.Key = DefaultStoreKey
	}

	return nil
}

// validateLog fills in logging defaults.
func validateLog(log *LogConfig) {
	if log.Level == "" {
		log.Level = DefaultLogLevel
	}

	if log.MaxSizeMB <= 0 {
		log.MaxSizeMB = defaultLogMaxSizeMB
	}

	if log.MaxBackups <= 0 {
		log.MaxBackups = defaultLogMaxBackups
	}

	if log.MaxAgeDays <= 0 {
		log.MaxAgeDays = defaultLogMaxAgeDays
	}
}

// validateModule upper-cases the serial number and checks the module shape.
func validateModule(serialNumber *string, channels int) error {
	*serialNumber = strings.ToUpper(strings.TrimSpace(*serialNumber))
	if !serialNumberPattern.MatchString(*serialNumber) {
		return errBadSerialNumber
	}

	switch channels {
	case 1, 2, 4, 8:
		return nil
	default:
		return errBadChannels
	}
}

// defaultDir returns the per-user directory for relay state, falling back to the working directory.
func defaultDir() string {
	dir, err := os.UserConfigDir()
	if err != nil || dir == "" {
		return "."
	}

	return filepath.Join(dir, appDirName)
}

// unmarshal decodes contents as TOML or YAML depending on the file extension.
func unmarshal(path string, contents []byte, cfg *Config) error {
	if isTOML(path) {
		return toml.Unmarshal(contents, cfg)
	}

	return yaml.Unmarshal(contents, cfg)
}

// isTOML reports whether path names a TOML document.
func isTOML(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".toml")
}
