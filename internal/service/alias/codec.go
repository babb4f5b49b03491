package alias

import (
	"strings"

	"github.com/oshokin/usb-relay/internal/domain/relay"
)

// decode parses a persisted alias list, skipping fragments that are not NAME=SN or NAME:SN.
func decode(list string) []relay.Alias {
	fragments := strings.Split(list, ",")
	result := make([]relay.Alias, 0, len(fragments))

	for _, fragment := range fragments {
		name, serialNumber, ok := strings.Cut(strings.TrimSpace(fragment), "=")
		if !ok {
			name, serialNumber, ok = strings.Cut(strings.TrimSpace(fragment), ":")
		}

		if !ok || !relay.IsAliasName(name) || !relay.IsSerialNumber(serialNumber) {
			continue
		}

		result = append(result, relay.Alias{
			Name:         relay.Normalize(name),
			SerialNumber: relay.Normalize(serialNumber),
		})
	}

	return result
}

// encode renders bindings in the persisted NAME=SN,NAME=SN form.
func encode(aliases []relay.Alias) string {
	parts := make([]string, 0, len(aliases))
	for _, a := range aliases {
		parts = append(parts, a.String())
	}

	return strings.Join(parts, ",")
}

// without returns aliases minus the binding named name, and whether one was dropped.
func without(aliases []relay.Alias, name string) ([]relay.Alias, bool) {
	result := make([]relay.Alias, 0, len(aliases))
	found := false

	for _, a := range aliases {
		if a.Name == name {
			found = true
			continue
		}

		result = append(result, a)
	}

	return result, found
}
