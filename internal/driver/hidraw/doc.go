// Package hidraw implements driver.Driver for USB HID relay modules (the dcttech
// "USBRelayN" family, VID 16C0 PID 05DF) through Linux hidraw device nodes.
//
// Modules are discovered from /sys/class/hidraw/*/device/uevent. The serial number and
// the channel bitmask are read with one 9-byte feature report; channels are switched
// by sending feature reports. Other platforms build but fail at Init.
package hidraw
