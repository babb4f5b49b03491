package relay

import "sort"

// ChannelKey addresses one channel (1..8) or, when AllChannels, the whole module.
type ChannelKey int

// AllChannels is the wildcard key.
const AllChannels ChannelKey = 0

// MaxChannels is the largest channel index any module supports.
const MaxChannels = 8

// ChannelStates maps channel keys of one module to desired states.
type ChannelStates map[ChannelKey]LogicState

// Keys returns the keys in application order: the wildcard first, then ascending channels.
func (cs ChannelStates) Keys() []ChannelKey {
	keys := make([]ChannelKey, 0, len(cs))
	for k := range cs {
		keys = append(keys, k)
	}

	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })

	return keys
}

// SetPlan maps serial numbers to the channel states requested for that module.
type SetPlan map[string]ChannelStates

// SerialNumbers returns the plan's modules in sorted order.
func (p SetPlan) SerialNumbers() []string {
	result := make([]string, 0, len(p))
	for sn := range p {
		result = append(result, sn)
	}

	sort.Strings(result)

	return result
}

// Query asks for the state of some channels of one module.
type Query struct {
	// SerialNumber identifies the module.
	SerialNumber string
	// Channels lists channels in print order; empty means all channels in module order.
	Channels []int
}

// ChannelList returns the channels to print for a module with the given channel count.
func (q Query) ChannelList(channels int) []int {
	if len(q.Channels) > 0 {
		return q.Channels
	}

	result := make([]int, 0, channels)
	for ch := 1; ch <= channels; ch++ {
		result = append(result, ch)
	}

	return result
}

// Alias binds a user-defined name to a serial number.
type Alias struct {
	// Name is the upper-cased alias.
	Name string
	// SerialNumber is the upper-cased module serial number.
	SerialNumber string
}

// String renders the binding as NAME=SN.
func (a Alias) String() string {
	return a.Name + "=" + a.SerialNumber
}

// AliasEdit is one step of an alias command: an assignment or a removal.
type AliasEdit struct {
	// Remove is true for "-NAME" tokens; Alias.SerialNumber is then empty.
	Remove bool
	// Alias is the binding to create, or whose name to drop.
	Alias Alias
}

// String renders the edit the way it is written on the command line.
func (e AliasEdit) String() string {
	if e.Remove {
		return "-" + e.Alias.Name
	}

	return e.Alias.String()
}
