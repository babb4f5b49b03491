package relay

import (
	"regexp"
	"strings"
)

// SerialNumberLength is the fixed length of a module serial number.
const SerialNumberLength = 5

// Regular expression fragments for upper-cased tokens.
const (
	// SerialNumberExpr matches a serial number.
	SerialNumberExpr = `[A-Z0-9]{5}`
	// AliasNameExpr matches an alias name; '-' is reserved for removal and cannot lead.
	AliasNameExpr = `[_#~@A-Z0-9][-_#~@A-Z0-9]*`
)

//nolint:gochecknoglobals // Compiled once, read-only.
var (
	serialNumberPattern = regexp.MustCompile(`^` + SerialNumberExpr + `$`)
	aliasNamePattern    = regexp.MustCompile(`^` + AliasNameExpr + `$`)
)

// Normalize upper-cases an alias name or serial number.
func Normalize(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}

// IsSerialNumber reports whether s has the shape of a serial number (5 alphanumerics).
func IsSerialNumber(s string) bool {
	return serialNumberPattern.MatchString(strings.ToUpper(s))
}

// IsAliasName reports whether s is a syntactically valid alias name.
// Every serial number is also a valid alias name.
func IsAliasName(s string) bool {
	return aliasNamePattern.MatchString(strings.ToUpper(s))
}
