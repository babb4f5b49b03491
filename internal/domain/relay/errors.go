package relay

import (
	"errors"
	"fmt"
)

// Exit codes reported by the relay command.
const (
	ExitNone           = 0
	ExitSyntax         = -1
	ExitNoDevices      = -2
	ExitBadSerial      = -3
	ExitNoDriverInit   = -4
	ExitInvalidChannel = -5
)

var (
	// ErrSyntax marks malformed or out-of-grammar arguments.
	ErrSyntax = errors.New("syntax error")
	// ErrNoDevices is returned when no module is attached.
	ErrNoDevices = errors.New("no devices found")
	// ErrBadSerialNumber marks a module or alias that is not present in the catalog.
	ErrBadSerialNumber = errors.New("serial number not found")
	// ErrNoDriverInit is returned when the hardware driver cannot be initialized.
	ErrNoDriverInit = errors.New("driver did not initialize")
	// ErrInvalidChannel marks a channel index or pattern that exceeds module capability.
	ErrInvalidChannel = errors.New("invalid channel specified")
)

// BadSerialNumberError carries the offending value of a failed module lookup.
type BadSerialNumberError struct {
	// SerialNumber is the resolved value, empty when the token was neither alias nor serial number.
	SerialNumber string
}

// NewBadSerialNumberError wraps the offending serial number.
func NewBadSerialNumberError(serialNumber string) error {
	return &BadSerialNumberError{SerialNumber: serialNumber}
}

// Error implements error.
func (e *BadSerialNumberError) Error() string {
	return fmt.Sprintf("serial number %s not found", e.SerialNumber)
}

// Is lets errors.Is match ErrBadSerialNumber.
func (e *BadSerialNumberError) Is(target error) bool {
	return target == ErrBadSerialNumber
}

// ExitCode maps an error chain to the process exit code.
// Errors outside the taxonomy (config, storage) count as initialization failures.
func ExitCode(err error) int {
	switch {
	case err == nil:
		return ExitNone
	case errors.Is(err, ErrSyntax):
		return ExitSyntax
	case errors.Is(err, ErrNoDevices):
		return ExitNoDevices
	case errors.Is(err, ErrBadSerialNumber):
		return ExitBadSerial
	case errors.Is(err, ErrInvalidChannel):
		return ExitInvalidChannel
	default:
		return ExitNoDriverInit
	}
}

// Diagnostic renders the single-line message written to stderr for err.
func Diagnostic(err error) string {
	var badSerial *BadSerialNumberError

	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrSyntax):
		return "Syntax error"
	case errors.Is(err, ErrNoDevices):
		return "No devices found"
	case errors.As(err, &badSerial):
		return fmt.Sprintf("Serial number %s not found", badSerial.SerialNumber)
	case errors.Is(err, ErrInvalidChannel):
		return "Invalid channel specified"
	case errors.Is(err, ErrNoDriverInit):
		return "Driver did not initialize"
	default:
		return err.Error()
	}
}
