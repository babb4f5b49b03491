package parser

import "github.com/oshokin/usb-relay/internal/domain/relay"

// Command is one of Help, Enumerate, Set, Query or Alias.
type Command interface {
	command()
}

// Help asks for the usage text.
type Help struct{}

// Enumerate asks for the list of attached modules.
type Enumerate struct{}

// Set carries the channel states to apply.
type Set struct {
	// Catalog is the module snapshot the plan was validated against.
	Catalog *relay.Catalog
	// Plan maps every referenced module to its requested channel states.
	Plan relay.SetPlan
}

// Query carries the status requests in command line order.
type Query struct {
	// Catalog is the module snapshot the queries were validated against.
	Catalog *relay.Catalog
	// Queries lists one entry per reference.
	Queries []relay.Query
}

// Alias carries alias edits in application order. No edits means "list".
type Alias struct {
	Edits []relay.AliasEdit
}

func (Help) command()      {}
func (Enumerate) command() {}
func (Set) command()       {}
func (Query) command()     {}
func (Alias) command()     {}
