// Package driver defines the hardware capability the relay tool drives: enumerate
// attached modules, open one by serial number, switch channels and read the status
// bitmask.
//
// Implementations live in sub-packages: hidraw (USB HID relay modules on Linux),
// serial (serial relay boards) and sim (simulated modules for tests and dry runs).
package driver
