package parser

import (
	"context"
	"fmt"
	"strings"

	"github.com/oshokin/usb-relay/internal/domain/relay"
)

// parseQuery accepts NAME, NAME@CHLIST and NAME:CHLIST tokens.
//
//nolint:ireturn // Command is a closed set of variants.
func (p *Parser) parseQuery(ctx context.Context, tokens []string) (Command, error) {
	if len(tokens) == 0 {
		return nil, fmt.Errorf("query needs a module: %w", relay.ErrSyntax)
	}

	catalog, err := p.catalog(ctx)
	if err != nil {
		return nil, err
	}

	queries := make([]relay.Query, 0, len(tokens))

	for _, token := range tokens {
		q, err := p.queryToken(ctx, catalog, relay.Normalize(token))
		if err != nil {
			return nil, err
		}

		queries = append(queries, q)
	}

	return Query{Catalog: catalog, Queries: queries}, nil
}

func (p *Parser) queryToken(ctx context.Context, catalog *relay.Catalog, token string) (relay.Query, error) {
	if name, digits, ok := splitChannelList(token); ok {
		module, err := p.lookup(ctx, catalog, name)
		if err != nil {
			return relay.Query{}, err
		}

		if len(digits) > module.Channels {
			return relay.Query{}, fmt.Errorf("channel list %s for %s: %w", digits, module, relay.ErrInvalidChannel)
		}

		channels := make([]int, 0, len(digits))
		for _, d := range digits {
			ch := int(d - '0')
			if ch < 1 || ch > module.Channels {
				return relay.Query{}, fmt.Errorf("channel %d of %s: %w", ch, module, relay.ErrInvalidChannel)
			}

			channels = append(channels, ch)
		}

		return relay.Query{SerialNumber: module.SerialNumber, Channels: channels}, nil
	}

	if relay.IsAliasName(token) {
		module, err := p.lookup(ctx, catalog, token)
		if err != nil {
			return relay.Query{}, err
		}

		return relay.Query{SerialNumber: module.SerialNumber}, nil
	}

	return relay.Query{}, fmt.Errorf("query token %q: %w", token, relay.ErrSyntax)
}

// splitChannelList splits NAME@DIGITS or NAME:DIGITS at the last separator.
func splitChannelList(token string) (string, string, bool) {
	i := strings.LastIndexAny(token, "@:")
	if i < 0 {
		return "", "", false
	}

	name, digits := token[:i], token[i+1:]
	if digits == "" || !relay.IsAliasName(name) {
		return "", "", false
	}

	for _, d := range digits {
		if d < '0' || d > '9' {
			return "", "", false
		}
	}

	return name, digits, true
}
