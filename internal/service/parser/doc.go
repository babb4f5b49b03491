// Package parser turns the relay command line into a validated Command.
//
// The first argument selects the command, the remaining ones are folded into
// the command's payload. Module references are resolved through a Resolver
// (aliases) and checked against the attached modules, which are only
// requested for the set and query commands.
package parser
