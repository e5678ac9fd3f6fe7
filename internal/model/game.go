package model

import "time"

// Game is one row of the canonical catalogue: a single (IGDB id,
// platform) pair. The same id appears once per platform the game
// shipped on; the per-source linkage columns are id-level and are kept
// identical across a game's platform rows.
//
// Metric and linkage fields are pointers so that "no data yet" is
// distinguishable from a real zero; merges only ever write through
// non-nil values.
type Game struct {
	ID       int64
	Name     string
	Platform string
	Category string
	Status   string

	FirstReleaseDate time.Time
	ReleaseDate      time.Time // release date on this row's platform
	UpdatedAt        time.Time // IGDB last-modified; drives incremental pulls

	Genres     []string
	Themes     []string
	GameModes  []string
	Franchises []string
	Developers []string
	Publishers []string

	// HowLongToBeat completion times (hours).
	HLTBMatch     MatchState
	HLTBLink      *string
	HLTBName      *string
	MainDuration  *float64
	ExtraDuration *float64
	CompDuration  *float64

	// OpenCritic review aggregation.
	OCMatch   MatchState
	OCLink    *string
	OCName    *string
	OCRating  *int
	OCReviews *int

	// RAWG ratings.
	RAWGMatch        MatchState
	RAWGLink         *string
	RAWGName         *string
	MetacriticRating *int
	RAWGRating       *float64
	RAWGReviews      *int
	RAWGDevs         *string
}

// Key identifies a canonical row.
type Key struct {
	ID       int64
	Platform string
}

// Key returns the row's (id, platform) identity.
func (g *Game) Key() Key {
	return Key{ID: g.ID, Platform: g.Platform}
}

// RunStatus is the state of one sync run in the run log.
type RunStatus string

const (
	RunStatusRunning  RunStatus = "running"
	RunStatusComplete RunStatus = "complete"
	RunStatusFailed   RunStatus = "failed"
)

// Run is one entry in the run log: a create or update pass over the
// catalogue, recorded for auditing alongside the table snapshots.
type Run struct {
	ID          string     `json:"id"`
	Mode        string     `json:"mode"`
	Status      RunStatus  `json:"status"`
	StartedAt   time.Time  `json:"started_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	Rows        int64      `json:"rows"`
	Error       string     `json:"error,omitempty"`
}
