package model

import "github.com/rotisserie/eris"

// MatchState records the outcome of identity resolution against one
// external source. The zero value means resolution has never been
// attempted; once an attempt is recorded the state only moves between
// Confirmed and Rejected, never back to Unknown.
type MatchState int

const (
	// MatchUnknown means no lookup has ever been attempted.
	MatchUnknown MatchState = iota
	// MatchConfirmed means a lookup found a name scoring at or above
	// the source's confidence threshold.
	MatchConfirmed
	// MatchRejected means a lookup completed but the best available
	// name scored below the threshold (or nothing was found at all).
	MatchRejected
)

// Attempted reports whether a lookup has ever been recorded.
func (m MatchState) Attempted() bool {
	return m != MatchUnknown
}

// String renders the state in the catalogue's tabular form. The
// true/false/empty encoding matches the historical dataset files.
func (m MatchState) String() string {
	switch m {
	case MatchConfirmed:
		return "true"
	case MatchRejected:
		return "false"
	default:
		return ""
	}
}

// ParseMatchState is the inverse of String.
func ParseMatchState(s string) (MatchState, error) {
	switch s {
	case "true", "True":
		return MatchConfirmed, nil
	case "false", "False":
		return MatchRejected, nil
	case "", "nan", "None", "<NA>":
		return MatchUnknown, nil
	}
	return MatchUnknown, eris.Errorf("model: invalid match state %q", s)
}
