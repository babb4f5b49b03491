// Package relay runs one relay command end to end: it loads the settings,
// configures logging, parses the arguments and then touches only what the
// command needs (the alias store, the hardware driver or both).
package relay
