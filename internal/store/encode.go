package store

import (
	"strconv"
	"strings"
	"time"

	"github.com/rotisserie/eris"

	"github.com/gamedex/catalog-cli/internal/model"
)

// Columns is the column order every driver shares. The csv header,
// the sqlite schema and the postgres schema all follow it.
var Columns = []string{
	"id", "name", "platform", "category", "status",
	"first_release_date", "release_date", "updated_at",
	"genres", "themes", "game_modes", "franchises", "developers", "publishers",
	"hltb_equal_name", "hltb_link", "hltb_name",
	"main_duration", "extra_duration", "comp_duration",
	"oc_equal_name", "oc_link", "oc_name", "oc_rating", "oc_nreviews",
	"rawg_equal_name", "rawg_link", "rawg_name",
	"mc_rating", "rawg_rating", "rawg_nreviews", "rawg_devs",
}

// listSep joins multi-valued columns. Titles of genres and companies
// never carry it, unlike commas.
const listSep = "|"

func encodeDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}

func decodeDate(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	return time.Parse(time.RFC3339, s)
}

func encodeList(xs []string) string { return strings.Join(xs, listSep) }

func decodeList(s string) []string {
	if s == "" {
		return nil
	}
	return strings.Split(s, listSep)
}

func encodeIntPtr(p *int) string {
	if p == nil {
		return ""
	}
	return strconv.Itoa(*p)
}

func encodeFloatPtr(p *float64) string {
	if p == nil {
		return ""
	}
	return strconv.FormatFloat(*p, 'f', -1, 64)
}

func encodeStrPtr(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}

func decodeIntPtr(s string) (*int, error) {
	if s == "" {
		return nil, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return nil, err
	}
	return &n, nil
}

func decodeFloatPtr(s string) (*float64, error) {
	if s == "" {
		return nil, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil, err
	}
	return &f, nil
}

func decodeStrPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// EncodeGame renders a row in Columns order. Nil pointers and zero
// dates become empty strings.
func EncodeGame(g *model.Game) []string {
	return []string{
		strconv.FormatInt(g.ID, 10),
		g.Name,
		g.Platform,
		g.Category,
		g.Status,
		encodeDate(g.FirstReleaseDate),
		encodeDate(g.ReleaseDate),
		encodeDate(g.UpdatedAt),
		encodeList(g.Genres),
		encodeList(g.Themes),
		encodeList(g.GameModes),
		encodeList(g.Franchises),
		encodeList(g.Developers),
		encodeList(g.Publishers),
		g.HLTBMatch.String(),
		encodeStrPtr(g.HLTBLink),
		encodeStrPtr(g.HLTBName),
		encodeFloatPtr(g.MainDuration),
		encodeFloatPtr(g.ExtraDuration),
		encodeFloatPtr(g.CompDuration),
		g.OCMatch.String(),
		encodeStrPtr(g.OCLink),
		encodeStrPtr(g.OCName),
		encodeIntPtr(g.OCRating),
		encodeIntPtr(g.OCReviews),
		g.RAWGMatch.String(),
		encodeStrPtr(g.RAWGLink),
		encodeStrPtr(g.RAWGName),
		encodeIntPtr(g.MetacriticRating),
		encodeFloatPtr(g.RAWGRating),
		encodeIntPtr(g.RAWGReviews),
		encodeStrPtr(g.RAWGDevs),
	}
}

// DecodeGame parses a row in Columns order.
func DecodeGame(rec []string) (*model.Game, error) {
	if len(rec) != len(Columns) {
		return nil, eris.Errorf("store: row has %d columns, want %d", len(rec), len(Columns))
	}

	g := &model.Game{
		Name:     rec[1],
		Platform: rec[2],
		Category: rec[3],
		Status:   rec[4],
	}

	var err error
	if g.ID, err = strconv.ParseInt(rec[0], 10, 64); err != nil {
		return nil, eris.Wrapf(err, "store: bad id %q", rec[0])
	}
	if g.FirstReleaseDate, err = decodeDate(rec[5]); err != nil {
		return nil, eris.Wrapf(err, "store: bad first_release_date %q", rec[5])
	}
	if g.ReleaseDate, err = decodeDate(rec[6]); err != nil {
		return nil, eris.Wrapf(err, "store: bad release_date %q", rec[6])
	}
	if g.UpdatedAt, err = decodeDate(rec[7]); err != nil {
		return nil, eris.Wrapf(err, "store: bad updated_at %q", rec[7])
	}

	g.Genres = decodeList(rec[8])
	g.Themes = decodeList(rec[9])
	g.GameModes = decodeList(rec[10])
	g.Franchises = decodeList(rec[11])
	g.Developers = decodeList(rec[12])
	g.Publishers = decodeList(rec[13])

	if g.HLTBMatch, err = model.ParseMatchState(rec[14]); err != nil {
		return nil, eris.Wrap(err, "store: hltb_equal_name")
	}
	g.HLTBLink = decodeStrPtr(rec[15])
	g.HLTBName = decodeStrPtr(rec[16])
	if g.MainDuration, err = decodeFloatPtr(rec[17]); err != nil {
		return nil, eris.Wrapf(err, "store: bad main_duration %q", rec[17])
	}
	if g.ExtraDuration, err = decodeFloatPtr(rec[18]); err != nil {
		return nil, eris.Wrapf(err, "store: bad extra_duration %q", rec[18])
	}
	if g.CompDuration, err = decodeFloatPtr(rec[19]); err != nil {
		return nil, eris.Wrapf(err, "store: bad comp_duration %q", rec[19])
	}

	if g.OCMatch, err = model.ParseMatchState(rec[20]); err != nil {
		return nil, eris.Wrap(err, "store: oc_equal_name")
	}
	g.OCLink = decodeStrPtr(rec[21])
	g.OCName = decodeStrPtr(rec[22])
	if g.OCRating, err = decodeIntPtr(rec[23]); err != nil {
		return nil, eris.Wrapf(err, "store: bad oc_rating %q", rec[23])
	}
	if g.OCReviews, err = decodeIntPtr(rec[24]); err != nil {
		return nil, eris.Wrapf(err, "store: bad oc_nreviews %q", rec[24])
	}

	if g.RAWGMatch, err = model.ParseMatchState(rec[25]); err != nil {
		return nil, eris.Wrap(err, "store: rawg_equal_name")
	}
	g.RAWGLink = decodeStrPtr(rec[26])
	g.RAWGName = decodeStrPtr(rec[27])
	if g.MetacriticRating, err = decodeIntPtr(rec[28]); err != nil {
		return nil, eris.Wrapf(err, "store: bad mc_rating %q", rec[28])
	}
	if g.RAWGRating, err = decodeFloatPtr(rec[29]); err != nil {
		return nil, eris.Wrapf(err, "store: bad rawg_rating %q", rec[29])
	}
	if g.RAWGReviews, err = decodeIntPtr(rec[30]); err != nil {
		return nil, eris.Wrapf(err, "store: bad rawg_nreviews %q", rec[30])
	}
	g.RAWGDevs = decodeStrPtr(rec[31])

	return g, nil
}
