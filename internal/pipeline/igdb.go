package pipeline

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/gamedex/catalog-cli/internal/catalog"
	"github.com/gamedex/catalog-cli/internal/model"
)

// syncIGDB pulls the canonical game list. In create mode it fetches
// everything between startYear and endYear (0 means the current year);
// in update mode it fetches entries modified since the stored
// watermark and folds them over the existing table, carrying the
// enrichment columns of rows whose id was already linked so a metadata
// edit upstream never discards a resolved identity.
func (p *Pipeline) syncIGDB(ctx context.Context, base *catalog.Table, startYear, endYear int) (*catalog.Table, error) {
	if err := p.IGDB.Authenticate(ctx); err != nil {
		return nil, err
	}
	vocab, err := p.IGDB.LoadVocabulary(ctx)
	if err != nil {
		return nil, err
	}

	now := p.now()
	if endYear == 0 || endYear > now.Year() {
		endYear = now.Year()
	}
	var watermark time.Time
	if base != nil {
		// The year pages bound first_release_date, not updated_at: an
		// old release whose record changed upstream only comes back if
		// its release year is walked. The watermark alone narrows the
		// pull.
		startYear = now.Year()
		for _, g := range base.Rows {
			if g.UpdatedAt.After(watermark) {
				watermark = g.UpdatedAt
			}
			if !g.FirstReleaseDate.IsZero() && g.FirstReleaseDate.Year() < startYear {
				startYear = g.FirstReleaseDate.Year()
			}
		}
	}

	games, err := p.IGDB.GamesSince(ctx, watermark, startYear, endYear)
	if err != nil {
		return nil, err
	}
	rows, err := p.IGDB.Expand(ctx, games, vocab)
	if err != nil {
		return nil, err
	}
	zap.L().Info("igdb pull complete",
		zap.Int("games", len(games)),
		zap.Int("rows", len(rows)),
		zap.Time("watermark", watermark),
	)

	if base == nil {
		return catalog.New(rows), nil
	}

	// Fresh rows come back with empty enrichment columns. Linkage is
	// id-level, so any existing row with the same id donates them.
	byID := base.ByID()
	for _, g := range rows {
		if prev, ok := byID[g.ID]; ok {
			carryEnrichment(g, prev[0])
		}
	}

	// Existing rows first, fresh versions last: dedupe keeps the fresh
	// side of any (id, platform) collision.
	base.Rows = append(base.Rows, rows...)
	return base, nil
}

func carryEnrichment(dst, src *model.Game) {
	catalog.Overlay(dst, &struct {
		HLTBMatch     *model.MatchState
		HLTBLink      *string
		HLTBName      *string
		MainDuration  *float64
		ExtraDuration *float64
		CompDuration  *float64

		OCMatch   *model.MatchState
		OCLink    *string
		OCName    *string
		OCRating  *int
		OCReviews *int

		RAWGMatch        *model.MatchState
		RAWGLink         *string
		RAWGName         *string
		MetacriticRating *int
		RAWGRating       *float64
		RAWGReviews      *int
		RAWGDevs         *string
	}{
		HLTBMatch:     &src.HLTBMatch,
		HLTBLink:      src.HLTBLink,
		HLTBName:      src.HLTBName,
		MainDuration:  src.MainDuration,
		ExtraDuration: src.ExtraDuration,
		CompDuration:  src.CompDuration,

		OCMatch:   &src.OCMatch,
		OCLink:    src.OCLink,
		OCName:    src.OCName,
		OCRating:  src.OCRating,
		OCReviews: src.OCReviews,

		RAWGMatch:        &src.RAWGMatch,
		RAWGLink:         src.RAWGLink,
		RAWGName:         src.RAWGName,
		MetacriticRating: src.MetacriticRating,
		RAWGRating:       src.RAWGRating,
		RAWGReviews:      src.RAWGReviews,
		RAWGDevs:         src.RAWGDevs,
	})
}
