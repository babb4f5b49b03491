package alias

import (
	"context"
	"errors"
	"fmt"

	"github.com/oshokin/usb-relay/internal/domain/relay"
	"github.com/oshokin/usb-relay/internal/logger"
	"github.com/oshokin/usb-relay/internal/repository/kv"
)

// ErrNoAliases is returned by List when no binding is defined.
var ErrNoAliases = errors.New("no aliases defined")

// Service implements alias CRUD over a single persisted value.
type Service struct {
	// store holds the persisted alias list.
	store kv.Store
	// key names the value inside store.
	key string
}

// NewService creates a service persisting the list under key in store.
func NewService(store kv.Store, key string) *Service {
	return &Service{
		store: store,
		key:   key,
	}
}

// Resolve returns the serial number bound to token. When no alias matches, a token
// shaped like a serial number is returned upper-cased; otherwise the result is empty.
// Presence of the module on hardware is not checked here.
func (s *Service) Resolve(ctx context.Context, token string) (string, error) {
	token = relay.Normalize(token)

	aliases, err := s.load(ctx)
	if err != nil {
		return "", err
	}

	for _, a := range aliases {
		if a.Name == token {
			return a.SerialNumber, nil
		}
	}

	if relay.IsSerialNumber(token) {
		return token, nil
	}

	return "", nil
}

// Assign binds name to serialNumber, replacing any previous binding of name.
// The new binding is placed first in the list.
func (s *Service) Assign(ctx context.Context, name, serialNumber string) error {
	name, serialNumber = relay.Normalize(name), relay.Normalize(serialNumber)
	if !relay.IsAliasName(name) || !relay.IsSerialNumber(serialNumber) {
		return fmt.Errorf("assign %s=%s: %w", name, serialNumber, relay.ErrSyntax)
	}

	aliases, err := s.load(ctx)
	if err != nil {
		return err
	}

	aliases, _ = without(aliases, name)
	aliases = append([]relay.Alias{{Name: name, SerialNumber: serialNumber}}, aliases...)

	if err = s.save(ctx, aliases); err != nil {
		return err
	}

	logger.InfoKV(ctx, "Alias assigned", "alias", name, "serial_number", serialNumber)

	return nil
}

// Remove drops the binding for name. Removing an unknown name is not an error
// and leaves the store untouched.
func (s *Service) Remove(ctx context.Context, name string) error {
	name = relay.Normalize(name)

	aliases, err := s.load(ctx)
	if err != nil {
		return err
	}

	aliases, found := without(aliases, name)
	if !found {
		logger.DebugKV(ctx, "Alias not defined, nothing to remove", "alias", name)
		return nil
	}

	if err = s.save(ctx, aliases); err != nil {
		return err
	}

	logger.InfoKV(ctx, "Alias removed", "alias", name)

	return nil
}

// Apply runs the edits in slice order. An edit failing midway leaves earlier edits persisted.
func (s *Service) Apply(ctx context.Context, edits []relay.AliasEdit) error {
	for _, edit := range edits {
		var err error
		if edit.Remove {
			err = s.Remove(ctx, edit.Alias.Name)
		} else {
			err = s.Assign(ctx, edit.Alias.Name, edit.Alias.SerialNumber)
		}

		if err != nil {
			return fmt.Errorf("apply %s: %w", edit, err)
		}
	}

	return nil
}

// List returns all bindings in stored order, or ErrNoAliases when there are none.
func (s *Service) List(ctx context.Context) ([]relay.Alias, error) {
	aliases, err := s.load(ctx)
	if err != nil {
		return nil, err
	}

	if len(aliases) == 0 {
		return nil, ErrNoAliases
	}

	return aliases, nil
}

// load reads and decodes the persisted list; an absent value is an empty list.
func (s *Service) load(ctx context.Context) ([]relay.Alias, error) {
	value, ok, err := s.store.Read(ctx, s.key)
	if err != nil {
		return nil, fmt.Errorf("read aliases: %w", err)
	}

	if !ok {
		return nil, nil
	}

	return decode(value), nil
}

// save rewrites the whole list.
func (s *Service) save(ctx context.Context, aliases []relay.Alias) error {
	if err := s.store.Write(ctx, s.key, encode(aliases)); err != nil {
		return fmt.Errorf("write aliases: %w", err)
	}

	return nil
}
