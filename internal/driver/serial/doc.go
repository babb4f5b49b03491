// Package serial implements driver.Driver for serial relay boards (CH340-based LCUS
// style boards) speaking the 4-byte A0 frame protocol.
//
// Each switching command is A0 <channel> <state> <checksum>, checksum being the low byte
// of the sum of the first three. Writing the single byte FF asks the board for a text
// report of the form "CH1: ON", one line per channel.
package serial
