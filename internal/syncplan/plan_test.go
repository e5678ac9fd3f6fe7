package syncplan

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/gamedex/catalog-cli/internal/model"
)

var now = time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)

func TestDecide_UnknownAlwaysFirstLookup(t *testing.T) {
	p := Planner{WindowMonths: 3, Now: now}

	// Release date is irrelevant for a never-attempted entity.
	assert.Equal(t, ActionFirstLookup, p.Decide(model.MatchUnknown, now.AddDate(-10, 0, 0)))
	assert.Equal(t, ActionFirstLookup, p.Decide(model.MatchUnknown, now.AddDate(0, 0, 30)))
	assert.Equal(t, ActionFirstLookup, p.Decide(model.MatchUnknown, time.Time{}))
}

func TestDecide_CreateModeIgnoresState(t *testing.T) {
	p := Planner{WindowMonths: 3, CreateMode: true, Now: now}

	assert.Equal(t, ActionFirstLookup, p.Decide(model.MatchConfirmed, now))
	assert.Equal(t, ActionFirstLookup, p.Decide(model.MatchRejected, now))
}

func TestDecide_ConfirmedInsideWindowRefreshes(t *testing.T) {
	p := Planner{WindowMonths: 3, Now: now}

	released := now.AddDate(0, -2, 0)
	assert.Equal(t, ActionRefresh, p.Decide(model.MatchConfirmed, released))
}

func TestDecide_ConfirmedOutsideWindowNone(t *testing.T) {
	p := Planner{WindowMonths: 3, Now: now}

	released := now.AddDate(0, -4, 0)
	assert.Equal(t, ActionNone, p.Decide(model.MatchConfirmed, released))
}

func TestDecide_WindowBoundaries(t *testing.T) {
	p := Planner{WindowMonths: 3, Now: now}

	// Exactly at the window start: not strictly after, no refresh.
	assert.Equal(t, ActionNone, p.Decide(model.MatchConfirmed, now.AddDate(0, -3, 0)))
	// One second inside.
	assert.Equal(t, ActionRefresh, p.Decide(model.MatchConfirmed, now.AddDate(0, -3, 0).Add(time.Second)))
	// Released exactly now counts as released.
	assert.Equal(t, ActionRefresh, p.Decide(model.MatchConfirmed, now))
}

func TestDecide_FutureReleaseNone(t *testing.T) {
	p := Planner{WindowMonths: 3, Now: now}

	assert.Equal(t, ActionNone, p.Decide(model.MatchConfirmed, now.Add(time.Hour)))
}

func TestDecide_RejectedNone(t *testing.T) {
	p := Planner{WindowMonths: 3, Now: now}

	assert.Equal(t, ActionNone, p.Decide(model.MatchRejected, now.AddDate(0, -1, 0)))
}

func TestDecide_WindowWidthPerSource(t *testing.T) {
	released := now.AddDate(0, -2, 0)

	// The same entity refreshes under a 3-month window and is left
	// alone under a 1-month window.
	threeMonths := Planner{WindowMonths: 3, Now: now}
	oneMonth := Planner{WindowMonths: 1, Now: now}

	assert.Equal(t, ActionRefresh, threeMonths.Decide(model.MatchConfirmed, released))
	assert.Equal(t, ActionNone, oneMonth.Decide(model.MatchConfirmed, released))
}
