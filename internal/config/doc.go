// Package config defines the relay tool settings and provides helpers to load,
// validate and save them in YAML or TOML format.
//
// Settings select the hardware driver, the alias store backend and logging. A missing
// settings file is not an error: defaults describe a local hidraw setup with a JSON
// alias store in the user configuration directory.
package config
