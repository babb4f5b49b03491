package relay

import (
	"fmt"
	"strings"
)

// Module describes one attached relay unit.
type Module struct {
	// SerialNumber is the 5-character hardware identifier.
	SerialNumber string
	// Channels is the number of switchable contacts, normally 1, 2, 4 or 8.
	Channels int
}

// String renders the module as SN(channels), using '?' for unsupported channel counts.
func (m Module) String() string {
	if !IsValidChannelCount(m.Channels) {
		return m.SerialNumber + "(?)"
	}

	return fmt.Sprintf("%s(%d)", m.SerialNumber, m.Channels)
}

// IsValidChannelCount reports whether n is a channel count produced by supported hardware.
func IsValidChannelCount(n int) bool {
	switch n {
	case 1, 2, 4, 8:
		return true
	default:
		return false
	}
}

// Catalog is an immutable snapshot of the modules attached when the process started.
type Catalog struct {
	// modules keeps enumeration order for listing.
	modules []Module
	// index maps upper-cased serial numbers to positions in modules.
	index map[string]int
}

// NewCatalog builds a catalog from enumerated modules.
// Serial numbers are upper-cased; later duplicates are ignored.
func NewCatalog(modules []Module) *Catalog {
	c := &Catalog{
		modules: make([]Module, 0, len(modules)),
		index:   make(map[string]int, len(modules)),
	}

	for _, m := range modules {
		m.SerialNumber = Normalize(m.SerialNumber)
		if _, ok := c.index[m.SerialNumber]; ok {
			continue
		}

		c.index[m.SerialNumber] = len(c.modules)
		c.modules = append(c.modules, m)
	}

	return c
}

// Lookup returns the module with the given serial number.
func (c *Catalog) Lookup(serialNumber string) (Module, bool) {
	if c == nil || serialNumber == "" {
		return Module{}, false
	}

	i, ok := c.index[Normalize(serialNumber)]
	if !ok {
		return Module{}, false
	}

	return c.modules[i], true
}

// Modules returns a copy of the snapshot in enumeration order.
func (c *Catalog) Modules() []Module {
	if c == nil {
		return nil
	}

	result := make([]Module, len(c.modules))
	copy(result, c.modules)

	return result
}

// Len returns the number of modules in the snapshot.
func (c *Catalog) Len() int {
	if c == nil {
		return 0
	}

	return len(c.modules)
}

// String renders the catalog as SN(ch),SN(ch),...
func (c *Catalog) String() string {
	parts := make([]string, 0, c.Len())
	for _, m := range c.Modules() {
		parts = append(parts, m.String())
	}

	return strings.Join(parts, ",")
}
