package parser

import (
	"fmt"
	"strings"

	"github.com/oshokin/usb-relay/internal/domain/relay"
)

// parseAlias reads tokens right to left. On a bad token it returns the edits
// accepted so far together with the syntax error, so the caller can still apply them.
//
//nolint:ireturn // Command is a closed set of variants.
func parseAlias(tokens []string) (Command, error) {
	edits := make([]relay.AliasEdit, 0, len(tokens))

	for i := len(tokens) - 1; i >= 0; i-- {
		edit, ok := aliasEdit(relay.Normalize(tokens[i]))
		if !ok {
			return Alias{Edits: edits}, fmt.Errorf("alias token %q: %w", tokens[i], relay.ErrSyntax)
		}

		edits = append(edits, edit)
	}

	return Alias{Edits: edits}, nil
}

// aliasEdit parses [+]NAME=SN, [+]NAME:SN or -NAME.
func aliasEdit(token string) (relay.AliasEdit, bool) {
	if name, ok := strings.CutPrefix(token, "-"); ok {
		if !relay.IsAliasName(name) {
			return relay.AliasEdit{}, false
		}

		return relay.AliasEdit{Remove: true, Alias: relay.Alias{Name: name}}, true
	}

	token = strings.TrimPrefix(token, "+")

	i := strings.IndexAny(token, "=:")
	if i < 0 {
		return relay.AliasEdit{}, false
	}

	name, serialNumber := token[:i], token[i+1:]
	if !relay.IsAliasName(name) || !relay.IsSerialNumber(serialNumber) {
		return relay.AliasEdit{}, false
	}

	return relay.AliasEdit{Alias: relay.Alias{Name: name, SerialNumber: serialNumber}}, true
}
