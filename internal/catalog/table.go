// Package catalog holds the in-memory canonical table and the
// conflict-aware merge used by every source pipeline.
package catalog

import (
	"sort"

	"github.com/gamedex/catalog-cli/internal/model"
)

// Table is the canonical catalogue: one row per (id, platform).
// It is single-writer within a run; stages mutate it in sequence.
type Table struct {
	Rows []*model.Game
}

// New returns a table over the given rows without copying them.
func New(rows []*model.Game) *Table {
	return &Table{Rows: rows}
}

// Len returns the number of rows.
func (t *Table) Len() int { return len(t.Rows) }

// Sort orders rows by (name, first release date, platform) ascending.
// Every pipeline stage re-sorts before handing the table on, so that
// incremental diffs and duplicate resolution stay deterministic.
func (t *Table) Sort() {
	sort.SliceStable(t.Rows, func(i, j int) bool {
		a, b := t.Rows[i], t.Rows[j]
		if a.Name != b.Name {
			return a.Name < b.Name
		}
		if !a.FirstReleaseDate.Equal(b.FirstReleaseDate) {
			return a.FirstReleaseDate.Before(b.FirstReleaseDate)
		}
		return a.Platform < b.Platform
	})
}

// DedupeKeepLast removes duplicate (id, platform) rows, keeping the
// last occurrence in the current order. Callers order rows so that the
// freshest version of a row comes last before deduping.
func (t *Table) DedupeKeepLast() {
	last := make(map[model.Key]int, len(t.Rows))
	for i, g := range t.Rows {
		last[g.Key()] = i
	}
	out := t.Rows[:0]
	for i, g := range t.Rows {
		if last[g.Key()] == i {
			out = append(out, g)
		}
	}
	t.Rows = out
}

// ByID groups rows by game id, preserving row order within each group.
func (t *Table) ByID() map[int64][]*model.Game {
	byID := make(map[int64][]*model.Game)
	for _, g := range t.Rows {
		byID[g.ID] = append(byID[g.ID], g)
	}
	return byID
}

// NameCounts returns, per game id, how many distinct games share that
// id's title. Recurring titles need platform disambiguation during
// fuzzy lookup.
func (t *Table) NameCounts() map[int64]int {
	seen := make(map[int64]string)
	for _, g := range t.Rows {
		if _, ok := seen[g.ID]; !ok {
			seen[g.ID] = g.Name
		}
	}
	perName := make(map[string]int)
	for _, name := range seen {
		perName[name]++
	}
	counts := make(map[int64]int, len(seen))
	for id, name := range seen {
		counts[id] = perName[name]
	}
	return counts
}

// FirstPerID returns one representative row per game id: the one with
// the earliest platform release date. Source lookups run once per game,
// not once per platform row.
func (t *Table) FirstPerID() []*model.Game {
	best := make(map[int64]*model.Game)
	var order []int64
	for _, g := range t.Rows {
		cur, ok := best[g.ID]
		if !ok {
			best[g.ID] = g
			order = append(order, g.ID)
			continue
		}
		if g.ReleaseDate.Before(cur.ReleaseDate) {
			best[g.ID] = g
		}
	}
	out := make([]*model.Game, 0, len(order))
	for _, id := range order {
		out = append(out, best[id])
	}
	return out
}
