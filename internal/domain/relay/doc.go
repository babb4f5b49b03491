// Package relay contains core domain types for controlling multi-channel relay modules.
//
// It defines LogicState (the per-channel tri-state and its token encoder), Module and
// the immutable Catalog snapshot of attached hardware, the SetPlan and Query shapes
// produced by the command parser, Alias bindings, and the typed errors that map to
// process exit codes.
package relay
