package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gamedex/catalog-cli/internal/model"
)

func intp(v int) *int                             { return &v }
func strp(v string) *string                       { return &v }
func statep(v model.MatchState) *model.MatchState { return &v }

type reviewPatch struct {
	OCRating  *int
	OCReviews *int
}

func TestMerge_NonNilWins(t *testing.T) {
	g := &model.Game{ID: 1, Platform: "PC", OCRating: intp(85)}
	tbl := New([]*model.Game{g})

	Merge(tbl, KeyByID, []Patch{
		{Key: "1", Fields: reviewPatch{OCReviews: intp(120)}},
	})

	require.NotNil(t, g.OCRating)
	assert.Equal(t, 85, *g.OCRating, "nil patch field keeps the base value")
	require.NotNil(t, g.OCReviews)
	assert.Equal(t, 120, *g.OCReviews)
}

func TestMerge_PatchOverridesBase(t *testing.T) {
	g := &model.Game{ID: 1, Platform: "PC", OCRating: intp(70), OCReviews: intp(12)}
	tbl := New([]*model.Game{g})

	Merge(tbl, KeyByID, []Patch{
		{Key: "1", Fields: reviewPatch{OCRating: intp(83), OCReviews: intp(57)}},
	})

	assert.Equal(t, 83, *g.OCRating)
	assert.Equal(t, 57, *g.OCReviews)
}

func TestMerge_AppliesToEveryPlatformRow(t *testing.T) {
	pc := &model.Game{ID: 1, Platform: "PC"}
	sw := &model.Game{ID: 1, Platform: "Switch"}
	tbl := New([]*model.Game{pc, sw})

	Merge(tbl, KeyByID, []Patch{
		{Key: "1", Fields: reviewPatch{OCRating: intp(90)}},
	})

	assert.Equal(t, 90, *pc.OCRating)
	assert.Equal(t, 90, *sw.OCRating)
}

func TestMerge_UnmatchedPatchDropped(t *testing.T) {
	g := &model.Game{ID: 1, Platform: "PC"}
	tbl := New([]*model.Game{g})

	Merge(tbl, KeyByID, []Patch{
		{Key: "999", Fields: reviewPatch{OCRating: intp(90)}},
	})

	assert.Nil(t, g.OCRating)
}

func TestMerge_KeyByStringPtr(t *testing.T) {
	linked := &model.Game{ID: 1, Platform: "PC", HLTBLink: strp("1234")}
	unlinked := &model.Game{ID: 2, Platform: "PC"}
	tbl := New([]*model.Game{linked, unlinked})

	type durPatch struct {
		MainDuration *float64
	}
	d := 21.5
	Merge(tbl, KeyByStringPtr(func(g *model.Game) *string { return g.HLTBLink }), []Patch{
		{Key: "1234", Fields: durPatch{MainDuration: &d}},
	})

	require.NotNil(t, linked.MainDuration)
	assert.Equal(t, 21.5, *linked.MainDuration)
	assert.Nil(t, unlinked.MainDuration, "rows without the link column are unaddressable")
}

func TestMerge_Idempotent(t *testing.T) {
	g := &model.Game{ID: 1, Platform: "PC"}
	tbl := New([]*model.Game{g})
	patches := []Patch{{Key: "1", Fields: reviewPatch{OCRating: intp(88), OCReviews: intp(40)}}}

	Merge(tbl, KeyByID, patches)
	Merge(tbl, KeyByID, patches)

	assert.Equal(t, 88, *g.OCRating)
	assert.Equal(t, 40, *g.OCReviews)
}

func TestOverlay_MatchStateNeverResets(t *testing.T) {
	g := &model.Game{ID: 1, OCMatch: model.MatchConfirmed}

	Overlay(g, struct{ OCMatch *model.MatchState }{statep(model.MatchUnknown)})
	assert.Equal(t, model.MatchConfirmed, g.OCMatch, "unknown never overwrites an attempted state")

	Overlay(g, struct{ OCMatch *model.MatchState }{statep(model.MatchRejected)})
	assert.Equal(t, model.MatchRejected, g.OCMatch)
}

func TestOverlay_CopiesPointee(t *testing.T) {
	g := &model.Game{ID: 1}
	rating := 80
	Overlay(g, reviewPatch{OCRating: &rating})

	rating = 99
	assert.Equal(t, 80, *g.OCRating, "patch mutation must not alias into the table")
}

func TestOverlay_SliceFields(t *testing.T) {
	g := &model.Game{ID: 1, Genres: []string{"RPG"}}

	Overlay(g, struct{ Genres []string }{nil})
	assert.Equal(t, []string{"RPG"}, g.Genres, "nil slice means no new information")

	Overlay(g, struct{ Genres []string }{[]string{"Roguelike", "Action"}})
	assert.Equal(t, []string{"Roguelike", "Action"}, g.Genres)
}

func TestOverlay_ValueFromPointer(t *testing.T) {
	g := &model.Game{ID: 1}
	Overlay(g, struct{ Name *string }{strp("Hades")})
	assert.Equal(t, "Hades", g.Name)
}
