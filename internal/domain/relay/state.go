package relay

import "strings"

// LogicState is the desired or observed state of a single relay channel.
type LogicState int

const (
	// NoChange leaves the channel as it is.
	NoChange LogicState = iota
	// On closes the contact.
	On
	// Off opens the contact.
	Off
)

// String returns the canonical token for the state.
func (s LogicState) String() string {
	switch s {
	case On:
		return "ON"
	case Off:
		return "OFF"
	default:
		return "X"
	}
}

// patternGlyphs is the alphabet allowed inside multi-channel pattern strings.
const patternGlyphs = "01HLX._"

//nolint:gochecknoglobals // Fixed vocabularies, never mutated.
var (
	onTokens = map[string]struct{}{
		"ON": {},
		"1":  {},
		"H":  {},
		"NO": {},
	}
	offTokens = map[string]struct{}{
		"OFF": {},
		"0":   {},
		"L":   {},
		"NC":  {},
	}
)

// Encode maps a state token to its logic state, case-insensitively.
// Anything outside the On and Off vocabularies resolves to NoChange; rejecting
// tokens that are not part of the grammar at all is the parser's job.
func Encode(token string) LogicState {
	token = strings.ToUpper(token)

	if _, ok := onTokens[token]; ok {
		return On
	}

	if _, ok := offTokens[token]; ok {
		return Off
	}

	return NoChange
}

// IsStateToken reports whether token belongs to the On or Off vocabulary.
// Only these tokens are accepted on the right-hand side of a channel=state assignment.
func IsStateToken(token string) bool {
	return Encode(token) != NoChange
}

// IsPattern reports whether every character of p is a pattern glyph.
func IsPattern(p string) bool {
	if p == "" {
		return false
	}

	for _, r := range strings.ToUpper(p) {
		if !strings.ContainsRune(patternGlyphs, r) {
			return false
		}
	}

	return true
}

// EncodePattern converts a pattern string into per-channel states, index 0 being channel 1.
func EncodePattern(p string) []LogicState {
	states := make([]LogicState, 0, len(p))
	for _, r := range p {
		states = append(states, Encode(string(r)))
	}

	return states
}
