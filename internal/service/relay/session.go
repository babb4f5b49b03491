package relay

import (
	"context"
	"fmt"

	"github.com/oshokin/usb-relay/internal/config"
	domain "github.com/oshokin/usb-relay/internal/domain/relay"
	"github.com/oshokin/usb-relay/internal/driver"
	"github.com/oshokin/usb-relay/internal/driver/hidraw"
	"github.com/oshokin/usb-relay/internal/driver/serial"
	"github.com/oshokin/usb-relay/internal/driver/sim"
	"github.com/oshokin/usb-relay/internal/logger"
	"github.com/oshokin/usb-relay/internal/repository/kv"
	"github.com/oshokin/usb-relay/internal/service/alias"
)

// session opens the alias store and the driver on first use and releases them in close.
type session struct {
	cfg *config.Config

	store   kv.ClosableStore
	aliases *alias.Service
	driver  driver.Driver
	catalog *domain.Catalog
}

func newSession(cfg *config.Config) *session {
	return &session{cfg: cfg}
}

// aliasService opens the store backing aliases.
func (s *session) aliasService() (*alias.Service, error) {
	if s.aliases != nil {
		return s.aliases, nil
	}

	if err := s.openStore(); err != nil {
		return nil, err
	}

	s.aliases = alias.NewService(s.store, s.cfg.Store.Key)

	return s.aliases, nil
}

func (s *session) openStore() error {
	if s.store != nil {
		return nil
	}

	store, err := kv.Open(&s.cfg.Store)
	if err != nil {
		return fmt.Errorf("open alias store: %w", err)
	}

	s.store = store

	return nil
}

// Resolve maps an alias or serial number to a serial number.
func (s *session) Resolve(ctx context.Context, token string) (string, error) {
	aliases, err := s.aliasService()
	if err != nil {
		return "", err
	}

	return aliases.Resolve(ctx, token)
}

// hardware builds and initializes the configured driver.
//
//nolint:ireturn // The backend is chosen by the settings.
func (s *session) hardware(ctx context.Context) (driver.Driver, error) {
	if s.driver != nil {
		return s.driver, nil
	}

	d, err := s.newDriver()
	if err != nil {
		return nil, err
	}

	if err = d.Init(ctx); err != nil {
		return nil, fmt.Errorf("init %s driver: %w: %w", s.cfg.Driver, domain.ErrNoDriverInit, err)
	}

	logger.DebugKV(ctx, "Driver initialized", "driver", s.cfg.Driver)

	s.driver = d

	return d, nil
}

//nolint:ireturn // The backend is chosen by the settings.
func (s *session) newDriver() (driver.Driver, error) {
	switch s.cfg.Driver {
	case config.DriverSerial:
		return serial.New(s.cfg.Serial.Ports, s.cfg.Timeout), nil
	case config.DriverSim:
		// Simulated channel states live next to the aliases.
		if err := s.openStore(); err != nil {
			return nil, err
		}

		return sim.New(s.cfg.Sim.Modules, s.store), nil
	default:
		return hidraw.New(), nil
	}
}

// modules enumerates the attached modules once per session.
func (s *session) modules(ctx context.Context) (*domain.Catalog, error) {
	if s.catalog != nil {
		return s.catalog, nil
	}

	d, err := s.hardware(ctx)
	if err != nil {
		return nil, err
	}

	found, err := d.Enumerate(ctx)
	if err != nil {
		return nil, fmt.Errorf("enumerate modules: %w: %w", domain.ErrNoDevices, err)
	}

	catalog := domain.NewCatalog(found)
	if catalog.Len() == 0 {
		return nil, domain.ErrNoDevices
	}

	logger.DebugKV(ctx, "Modules enumerated", "modules", catalog.String())

	s.catalog = catalog

	return catalog, nil
}

// close releases the driver and the store.
func (s *session) close(ctx context.Context) {
	if s.driver != nil {
		if err := s.driver.Close(); err != nil {
			logger.DebugKV(ctx, "Failed to close driver", "error", err)
		}
	}

	if s.store != nil {
		if err := s.store.Close(); err != nil {
			logger.WarnKV(ctx, "Failed to close alias store", "error", err)
		}
	}
}
