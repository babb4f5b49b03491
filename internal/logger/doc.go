// Package logger provides a small wrapper around zap to offer:
//   - a global sugared logger with a console encoder on stderr,
//   - context helpers (ToContext/FromContext/WithName/WithKV),
//   - level configuration and parsing utilities,
//   - an optional rotating JSON file sink backed by lumberjack,
//   - key-value helpers (DebugKV, InfoKV, WarnKV).
//
// Stdout is left to command output; every diagnostic goes through this package.
package logger
