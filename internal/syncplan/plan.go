// Package syncplan decides, per catalogue entity, whether a source
// pipeline must resolve it from scratch, refresh its volatile metrics,
// or leave it alone. Fuzzy resolution is network-bound and expensive;
// once an identity is confirmed only the numbers are expected to move,
// and only for a while after release.
package syncplan

import (
	"time"

	"github.com/gamedex/catalog-cli/internal/model"
)

// Action is the per-entity sync decision.
type Action int

const (
	// ActionNone: identity settled and metrics past their volatile window.
	ActionNone Action = iota
	// ActionFirstLookup: never attempted against this source; run the
	// full candidate-generation and fuzzy-matching pipeline.
	ActionFirstLookup
	// ActionRefresh: identity trusted, release recent enough that the
	// metrics are still moving; re-fetch by the known source id only.
	ActionRefresh
)

// Planner evaluates the sync policy for one source.
type Planner struct {
	// WindowMonths is the trailing refresh window after release during
	// which the source's metrics are considered volatile.
	WindowMonths int
	// CreateMode builds the catalogue from scratch: every entity gets
	// a first lookup and the window is not consulted.
	CreateMode bool
	// Now anchors the window; zero means time.Now.
	Now time.Time
}

// Decide returns the action for one entity. Precedence: an entity
// never attempted always gets a first lookup, regardless of its
// release date; a confirmed entity released inside the window (and not
// in the future) gets a refresh; everything else is left alone.
func (p Planner) Decide(state model.MatchState, released time.Time) Action {
	if p.CreateMode || state == model.MatchUnknown {
		return ActionFirstLookup
	}
	if state != model.MatchConfirmed {
		return ActionNone
	}
	now := p.Now
	if now.IsZero() {
		now = time.Now()
	}
	windowStart := now.AddDate(0, -p.WindowMonths, 0)
	if released.After(windowStart) && !released.After(now) {
		return ActionRefresh
	}
	return ActionNone
}
