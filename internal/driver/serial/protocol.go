package serial

import (
	"regexp"
	"strconv"
	"strings"
)

const (
	// frameStart opens every switching frame.
	frameStart byte = 0xA0
	// statusRequest asks the board for its channel report.
	statusRequest byte = 0xFF
)

//nolint:gochecknoglobals // Compiled once, read-only.
var statusLine = regexp.MustCompile(`(?i)CH\s*(\d)\s*:\s*(ON|OFF)`)

// switchFrame builds the frame that switches channel on or off.
func switchFrame(channel int, on bool) []byte {
	var state byte
	if on {
		state = 0x01
	}

	ch := byte(channel)

	return []byte{frameStart, ch, state, frameStart + ch + state}
}

// parseStatus converts a channel report into a bitmask and reports which channels were seen.
func parseStatus(report string) (status uint8, seen uint8) {
	for _, match := range statusLine.FindAllStringSubmatch(report, -1) {
		channel, err := strconv.Atoi(match[1])
		if err != nil || channel < 1 || channel > 8 {
			continue
		}

		bit := uint8(1) << (channel - 1)
		seen |= bit

		if strings.EqualFold(match[2], "ON") {
			status |= bit
		} else {
			status &^= bit
		}
	}

	return status, seen
}
