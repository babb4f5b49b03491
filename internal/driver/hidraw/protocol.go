package hidraw

import (
	"bufio"
	"strconv"
	"strings"
)

const (
	// vendorID and productID identify the relay module family.
	vendorID  = 0x16C0
	productID = 0x05DF

	// reportSize is the length of every feature report exchanged with the module.
	reportSize = 9

	// productPrefix precedes the channel count in the HID product name.
	productPrefix = "USBRelay"

	// statusReportID selects the serial/status feature report.
	statusReportID byte = 0x01
	// statusByte is the offset of the channel bitmask in the status report.
	statusByte = 7

	cmdAllOn  byte = 0xFE
	cmdAllOff byte = 0xFC
	cmdOn     byte = 0xFF
	cmdOff    byte = 0xFD
)

// uevent holds the HID properties of one hidraw node.
type uevent struct {
	vendor  uint32
	product uint32
	name    string
}

// parseUevent reads HID_ID and HID_NAME from a sysfs uevent file.
func parseUevent(contents string) (uevent, bool) {
	var (
		ev      uevent
		foundID bool
	)

	scanner := bufio.NewScanner(strings.NewReader(contents))
	for scanner.Scan() {
		key, value, ok := strings.Cut(scanner.Text(), "=")
		if !ok {
			continue
		}

		switch key {
		case "HID_ID":
			// bus:vendor:product, all hex.
			parts := strings.Split(value, ":")
			if len(parts) != 3 {
				return uevent{}, false
			}

			vendor, err := strconv.ParseUint(parts[1], 16, 32)
			if err != nil {
				return uevent{}, false
			}

			product, err := strconv.ParseUint(parts[2], 16, 32)
			if err != nil {
				return uevent{}, false
			}

			ev.vendor, ev.product, foundID = uint32(vendor), uint32(product), true
		case "HID_NAME":
			ev.name = value
		}
	}

	return ev, foundID
}

// isRelay reports whether the node belongs to a relay module.
func (ev uevent) isRelay() bool {
	return ev.vendor == vendorID && ev.product == productID && strings.Contains(ev.name, productPrefix)
}

// channels derives the channel count from the product name suffix, e.g. "USBRelay4".
func (ev uevent) channels() int {
	i := strings.LastIndex(ev.name, productPrefix)
	if i < 0 {
		return 0
	}

	n, err := strconv.Atoi(strings.TrimSpace(ev.name[i+len(productPrefix):]))
	if err != nil {
		return 0
	}

	return n
}

// statusRequest returns a buffer prepared for reading the status report.
func statusRequest() []byte {
	buf := make([]byte, reportSize)
	buf[0] = statusReportID

	return buf
}

// serialFromReport extracts the 5-character serial number.
func serialFromReport(buf []byte) string {
	if len(buf) < 5 {
		return ""
	}

	return strings.ToUpper(strings.TrimRight(string(buf[:5]), "\x00 "))
}

// statusFromReport extracts the channel bitmask.
func statusFromReport(buf []byte) uint8 {
	if len(buf) <= statusByte {
		return 0
	}

	return buf[statusByte]
}

// channelReport builds the report switching one channel.
func channelReport(channel int, on bool) []byte {
	buf := make([]byte, reportSize)

	buf[1] = cmdOff
	if on {
		buf[1] = cmdOn
	}

	buf[2] = byte(channel)

	return buf
}

// allReport builds the report switching every channel.
func allReport(on bool) []byte {
	buf := make([]byte, reportSize)

	buf[1] = cmdAllOff
	if on {
		buf[1] = cmdAllOn
	}

	return buf
}
