package parser

import (
	"context"
	"fmt"
	"strings"

	"github.com/oshokin/usb-relay/internal/domain/relay"
)

// Resolver maps an alias or serial number token to a serial number.
// An empty result means the token is neither.
type Resolver interface {
	Resolve(ctx context.Context, token string) (string, error)
}

// CatalogFunc provides the attached modules. It fails with relay.ErrNoDevices
// when nothing is attached.
type CatalogFunc func(ctx context.Context) (*relay.Catalog, error)

// Parser builds commands from arguments.
type Parser struct {
	resolver Resolver
	catalog  CatalogFunc
}

// New creates a parser.
func New(resolver Resolver, catalog CatalogFunc) *Parser {
	return &Parser{
		resolver: resolver,
		catalog:  catalog,
	}
}

// word identifies a top-level command.
type word int

const (
	wordUnknown word = iota
	wordHelp
	wordEnumerate
	wordSet
	wordQuery
	wordAlias
)

//nolint:gochecknoglobals // Read-only lookup table.
var commandWords = map[string]word{
	"H":         wordHelp,
	"HELP":      wordHelp,
	"?":         wordHelp,
	"ENUM":      wordEnumerate,
	"ENUMERATE": wordEnumerate,
	"L":         wordEnumerate,
	"LIST":      wordEnumerate,
	"SET":       wordSet,
	"Q":         wordQuery,
	"QUERY":     wordQuery,
	"ALIAS":     wordAlias,
}

// lookupWord matches a command word case-insensitively.
// Help words may carry a '/' or '-' prefix.
func lookupWord(s string) word {
	s = relay.Normalize(s)

	if w := commandWords[s]; w != wordUnknown {
		return w
	}

	if trimmed := strings.TrimLeft(s, "/-"); len(s)-len(trimmed) == 1 && commandWords[trimmed] == wordHelp {
		return wordHelp
	}

	return wordUnknown
}

// IsHelpWord reports whether s asks for the usage text.
func IsHelpWord(s string) bool {
	return lookupWord(s) == wordHelp
}

// Parse validates args and returns the command they describe.
// No arguments at all is a request for help. An alias command with a bad token
// comes back with the edits to its right alongside the error.
//
//nolint:ireturn // Command is a closed set of variants.
func (p *Parser) Parse(ctx context.Context, args []string) (Command, error) {
	if len(args) == 0 {
		return Help{}, nil
	}

	rest := args[1:]

	switch lookupWord(args[0]) {
	case wordHelp:
		if len(rest) > 0 {
			return nil, fmt.Errorf("help takes no arguments: %w", relay.ErrSyntax)
		}

		return Help{}, nil
	case wordEnumerate:
		if len(rest) > 0 {
			return nil, fmt.Errorf("enumerate takes no arguments: %w", relay.ErrSyntax)
		}

		return Enumerate{}, nil
	case wordSet:
		return p.parseSet(ctx, rest)
	case wordQuery:
		return p.parseQuery(ctx, rest)
	case wordAlias:
		return parseAlias(rest)
	default:
		return nil, fmt.Errorf("unknown command %q: %w", args[0], relay.ErrSyntax)
	}
}

// lookup resolves name and finds its module in catalog.
func (p *Parser) lookup(ctx context.Context, catalog *relay.Catalog, name string) (relay.Module, error) {
	serialNumber, err := p.resolver.Resolve(ctx, name)
	if err != nil {
		return relay.Module{}, fmt.Errorf("resolve %s: %w", name, err)
	}

	module, ok := catalog.Lookup(serialNumber)
	if !ok {
		if serialNumber == "" {
			serialNumber = relay.Normalize(name)
		}

		return relay.Module{}, relay.NewBadSerialNumberError(serialNumber)
	}

	return module, nil
}
