// Package executor applies set plans and answers queries through a relay driver.
//
// Modules are opened right before use and closed right after. A module that
// cannot be opened is skipped with a warning and does not fail the command.
package executor

import (
	"context"
	"strings"

	"github.com/oshokin/usb-relay/internal/domain/relay"
	"github.com/oshokin/usb-relay/internal/driver"
	"github.com/oshokin/usb-relay/internal/logger"
)

// Executor drives modules through a driver.
type Executor struct {
	driver driver.Driver
}

// New creates an executor. d must be initialized.
func New(d driver.Driver) *Executor {
	return &Executor{driver: d}
}

// Set applies plan module by module. The wildcard key of a module is applied
// before its individual channels; NoChange entries make no hardware call.
func (e *Executor) Set(ctx context.Context, plan relay.SetPlan) error {
	for _, serialNumber := range plan.SerialNumbers() {
		if err := ctx.Err(); err != nil {
			return err
		}

		e.setModule(ctx, serialNumber, plan[serialNumber])
	}

	return nil
}

func (e *Executor) setModule(ctx context.Context, serialNumber string, states relay.ChannelStates) {
	ctx = logger.WithKV(ctx, "serial_number", serialNumber)

	dev, err := e.driver.Open(ctx, serialNumber)
	if err != nil {
		logger.WarnKV(ctx, "Skipping module that could not be opened", "error", err)
		return
	}

	defer func() {
		if err := dev.Close(); err != nil {
			logger.DebugKV(ctx, "Failed to close module", "error", err)
		}
	}()

	for _, key := range states.Keys() {
		state := states[key]
		if state == relay.NoChange {
			continue
		}

		on := state == relay.On

		if key == relay.AllChannels {
			err = dev.SetAll(ctx, on)
		} else {
			err = dev.SetChannel(ctx, int(key), on)
		}

		if err != nil {
			logger.WarnKV(ctx, "Failed to switch channel", "channel", int(key), "state", state, "error", err)
			continue
		}

		logger.DebugKV(ctx, "Switched channel", "channel", int(key), "state", state)
	}
}

// Query reads the status of every queried module and renders it as one "1"/"0"
// digit per requested channel. Modules are separated by a single space;
// modules that fail to open or report are left out.
func (e *Executor) Query(ctx context.Context, catalog *relay.Catalog, queries []relay.Query) (string, error) {
	parts := make([]string, 0, len(queries))

	for _, q := range queries {
		if err := ctx.Err(); err != nil {
			return "", err
		}

		module, ok := catalog.Lookup(q.SerialNumber)
		if !ok {
			return "", relay.NewBadSerialNumberError(q.SerialNumber)
		}

		if part, ok := e.queryModule(ctx, module, q); ok {
			parts = append(parts, part)
		}
	}

	return strings.Join(parts, " "), nil
}

func (e *Executor) queryModule(ctx context.Context, module relay.Module, q relay.Query) (string, bool) {
	ctx = logger.WithKV(ctx, "serial_number", module.SerialNumber)

	dev, err := e.driver.Open(ctx, module.SerialNumber)
	if err != nil {
		logger.WarnKV(ctx, "Skipping module that could not be opened", "error", err)
		return "", false
	}

	defer func() {
		if err := dev.Close(); err != nil {
			logger.DebugKV(ctx, "Failed to close module", "error", err)
		}
	}()

	status, err := dev.Status(ctx)
	if err != nil {
		logger.WarnKV(ctx, "Skipping module that did not report its status", "error", err)
		return "", false
	}

	var sb strings.Builder

	for _, ch := range q.ChannelList(module.Channels) {
		if driver.IsChannelOn(status, ch) {
			sb.WriteByte('1')
		} else {
			sb.WriteByte('0')
		}
	}

	return sb.String(), true
}
