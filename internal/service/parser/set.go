package parser

import (
	"context"
	"fmt"
	"strings"

	"github.com/oshokin/usb-relay/internal/domain/relay"
)

// setState is threaded through the set tokens.
type setState struct {
	plan relay.SetPlan
	// current is the module addressed by "CH=STATE" tokens; nil until a module is named.
	current *relay.Module
}

// parseSet folds the set tokens into a plan. The first invalid token aborts parsing.
//
//nolint:ireturn // Command is a closed set of variants.
func (p *Parser) parseSet(ctx context.Context, tokens []string) (Command, error) {
	if len(tokens) == 0 {
		return nil, fmt.Errorf("set needs a module: %w", relay.ErrSyntax)
	}

	catalog, err := p.catalog(ctx)
	if err != nil {
		return nil, err
	}

	state := setState{plan: make(relay.SetPlan)}

	for _, token := range tokens {
		if state, err = p.setStep(ctx, catalog, state, relay.Normalize(token)); err != nil {
			return nil, err
		}
	}

	return Set{Catalog: catalog, Plan: state.plan}, nil
}

// setStep applies one token: NAME, NAME:PATTERN or CH=STATE, tried in that order.
func (p *Parser) setStep(ctx context.Context, catalog *relay.Catalog, state setState, token string) (setState, error) {
	if relay.IsAliasName(token) {
		module, err := p.lookup(ctx, catalog, token)
		if err != nil {
			return state, err
		}

		state.current = &module

		return state, nil
	}

	if name, pattern, ok := strings.Cut(token, ":"); ok && relay.IsAliasName(name) && relay.IsPattern(pattern) {
		module, err := p.lookup(ctx, catalog, name)
		if err != nil {
			return state, err
		}

		if len(pattern) > module.Channels {
			return state, fmt.Errorf("pattern %s for %s: %w", pattern, module, relay.ErrInvalidChannel)
		}

		channels := make(relay.ChannelStates, len(pattern))
		for i, s := range relay.EncodePattern(pattern) {
			channels[relay.ChannelKey(i+1)] = s
		}

		state.plan[module.SerialNumber] = channels
		state.current = &module

		return state, nil
	}

	if ch, value, ok := strings.Cut(token, "="); ok && relay.IsStateToken(value) {
		key, ok := parseChannelKey(ch)
		if !ok {
			return state, fmt.Errorf("channel %q: %w", ch, relay.ErrSyntax)
		}

		if state.current == nil {
			return state, fmt.Errorf("%s before any module: %w", token, relay.ErrSyntax)
		}

		if int(key) > state.current.Channels {
			return state, fmt.Errorf("channel %d of %s: %w", key, state.current, relay.ErrInvalidChannel)
		}

		sn := state.current.SerialNumber
		if state.plan[sn] == nil {
			state.plan[sn] = make(relay.ChannelStates)
		}

		state.plan[sn][key] = relay.Encode(value)

		return state, nil
	}

	return state, fmt.Errorf("set token %q: %w", token, relay.ErrSyntax)
}

// parseChannelKey accepts "*" or a single digit 1..8.
func parseChannelKey(s string) (relay.ChannelKey, bool) {
	if s == "*" {
		return relay.AllChannels, true
	}

	if len(s) != 1 || s[0] < '1' || s[0] > '0'+relay.MaxChannels {
		return 0, false
	}

	return relay.ChannelKey(s[0] - '0'), true
}
