package store

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gamedex/catalog-cli/internal/model"
)

func intp(v int) *int           { return &v }
func floatp(v float64) *float64 { return &v }
func strp(v string) *string     { return &v }

func fullGame() *model.Game {
	return &model.Game{
		ID:               1942,
		Name:             "Hades",
		Platform:         "PC",
		Category:         "main_game",
		Status:           "released",
		FirstReleaseDate: time.Date(2020, 9, 17, 0, 0, 0, 0, time.UTC),
		ReleaseDate:      time.Date(2020, 9, 17, 0, 0, 0, 0, time.UTC),
		UpdatedAt:        time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC),
		Genres:           []string{"Roguelike", "Action RPG"},
		Developers:       []string{"Supergiant Games"},
		Publishers:       []string{"Supergiant Games"},
		HLTBMatch:        model.MatchConfirmed,
		HLTBLink:         strp("72589"),
		HLTBName:         strp("Hades"),
		MainDuration:     floatp(21.5),
		ExtraDuration:    floatp(43),
		CompDuration:     floatp(94.5),
		OCMatch:          model.MatchConfirmed,
		OCLink:           strp("hades/hades"),
		OCName:           strp("Hades"),
		OCRating:         intp(92),
		OCReviews:        intp(130),
		RAWGMatch:        model.MatchRejected,
		RAWGLink:         strp("hades-2018"),
		RAWGName:         strp("Hades"),
		MetacriticRating: intp(93),
		RAWGRating:       floatp(4.46),
		RAWGReviews:      intp(3500),
		RAWGDevs:         strp("Supergiant Games"),
	}
}

func TestEncodeGame_ColumnCount(t *testing.T) {
	assert.Len(t, EncodeGame(fullGame()), len(Columns))
	assert.Len(t, EncodeGame(&model.Game{}), len(Columns))
}

func TestEncodeDecode_RoundTrip(t *testing.T) {
	want := fullGame()
	got, err := DecodeGame(EncodeGame(want))
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestEncodeDecode_SparseRoundTrip(t *testing.T) {
	want := &model.Game{ID: 7, Name: "Celeste", Platform: "Switch"}
	got, err := DecodeGame(EncodeGame(want))
	require.NoError(t, err)
	assert.Equal(t, want, got)
	assert.Nil(t, got.OCRating)
	assert.Equal(t, model.MatchUnknown, got.HLTBMatch)
}

func TestEncodeGame_MatchStates(t *testing.T) {
	rec := EncodeGame(fullGame())
	assert.Equal(t, "true", rec[14], "hltb_equal_name")
	assert.Equal(t, "true", rec[20], "oc_equal_name")
	assert.Equal(t, "false", rec[25], "rawg_equal_name")
}

func TestEncodeGame_ListSeparator(t *testing.T) {
	rec := EncodeGame(fullGame())
	assert.Equal(t, "Roguelike|Action RPG", rec[8])
}

func TestDecodeGame_WrongWidth(t *testing.T) {
	_, err := DecodeGame([]string{"1", "Hades"})
	assert.Error(t, err)
}

func TestDecodeGame_BadFields(t *testing.T) {
	bad := func(col int, val string) []string {
		rec := EncodeGame(fullGame())
		rec[col] = val
		return rec
	}

	for col, val := range map[int]string{
		0:  "not-an-id",
		5:  "17 Sep 2020",
		14: "maybe",
		17: "21h30",
		23: "ninety",
	} {
		_, err := DecodeGame(bad(col, val))
		assert.Error(t, err, "column %d=%q", col, val)
	}
}

func TestDecodeGame_LegacyMatchSpellings(t *testing.T) {
	rec := EncodeGame(&model.Game{ID: 1, Name: "X", Platform: "PC"})
	rec[14] = "True"
	rec[20] = "nan"
	rec[25] = "<NA>"

	g, err := DecodeGame(rec)
	require.NoError(t, err)
	assert.Equal(t, model.MatchConfirmed, g.HLTBMatch)
	assert.Equal(t, model.MatchUnknown, g.OCMatch)
	assert.Equal(t, model.MatchUnknown, g.RAWGMatch)
}
