//go:build !linux

package hidraw

// openNode is unavailable; Init reports ErrUnsupported.
//
//nolint:gochecknoglobals // Platform switch.
var openNode nodeOpener
