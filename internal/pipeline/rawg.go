package pipeline

import (
	"context"
	"sort"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/gamedex/catalog-cli/internal/catalog"
	"github.com/gamedex/catalog-cli/internal/model"
	"github.com/gamedex/catalog-cli/internal/platform"
	"github.com/gamedex/catalog-cli/internal/source/rawg"
	"github.com/gamedex/catalog-cli/internal/syncplan"
)

type rawgPatch struct {
	RAWGMatch        *model.MatchState
	RAWGLink         *string
	RAWGName         *string
	MetacriticRating *int
	RAWGRating       *float64
	RAWGReviews      *int
	RAWGDevs         *string
}

// syncRAWG resolves community ratings. RAWG's search is forgiving
// enough that only the top hit is scored, against the raw title; the
// platform filter uses RAWG's own vocabulary, resolved once per run.
func (p *Pipeline) syncRAWG(ctx context.Context, t *catalog.Table, createMode bool) error {
	planner := syncplan.Planner{
		WindowMonths: p.Cfg.Sync.RAWGWindowMonths,
		CreateMode:   createMode,
		Now:          p.now(),
	}

	platIDs, err := p.rawgPlatformIDs(ctx, t)
	if err != nil {
		return err
	}

	var firstLookups, refreshes []catalog.Patch
	lookups, misses := 0, 0

	for _, g := range t.FirstPerID() {
		switch planner.Decide(g.RAWGMatch, g.ReleaseDate) {
		case syncplan.ActionFirstLookup:
			firstLookups = append(firstLookups, catalog.Patch{
				Key:    strconv.FormatInt(g.ID, 10),
				Fields: p.rawgLookup(ctx, g, platIDs[g.Platform]),
			})
			lookups++

		case syncplan.ActionRefresh:
			if g.RAWGLink == nil {
				zap.L().Warn("rawg refresh skipped, confirmed row has no link",
					zap.Int64("id", g.ID),
					zap.String("name", g.Name),
				)
				continue
			}
			slug := *g.RAWGLink
			detail, err := p.RAWG.Fetch(ctx, slug)
			if err != nil {
				zap.L().Warn("rawg refresh failed",
					zap.Int64("id", g.ID),
					zap.String("slug", slug),
					zap.Error(err),
				)
				continue
			}
			patch := rawgPatch{
				MetacriticRating: detail.Metacritic,
				RAWGRating:       ptr(detail.Rating),
				RAWGReviews:      ptr(detail.ReviewCount()),
			}
			if devs, err := p.RAWG.DevTeam(ctx, slug); err == nil && len(devs) > 0 {
				patch.RAWGDevs = ptr(strings.Join(devs, ", "))
			}
			refreshes = append(refreshes, catalog.Patch{Key: slug, Fields: patch})
		}
	}

	for _, fl := range firstLookups {
		if fields, ok := fl.Fields.(rawgPatch); ok && fields.RAWGMatch != nil && *fields.RAWGMatch != model.MatchConfirmed {
			misses++
		}
	}

	catalog.Merge(t, catalog.KeyByID, firstLookups)
	catalog.Merge(t, catalog.KeyByStringPtr(func(g *model.Game) *string { return g.RAWGLink }), refreshes)

	zap.L().Info("rawg sync complete",
		zap.Int("lookups", lookups),
		zap.Int("misses", misses),
		zap.Int("refreshes", len(refreshes)),
	)
	return nil
}

func (p *Pipeline) rawgLookup(ctx context.Context, g *model.Game, platformID int64) rawgPatch {
	state := model.MatchRejected
	hit, found, err := p.RAWG.Search(ctx, g.Name, platformID)
	if err != nil {
		zap.L().Debug("rawg search failed",
			zap.Int64("id", g.ID),
			zap.String("name", g.Name),
			zap.Error(err),
		)
	}
	if !found {
		return rawgPatch{RAWGMatch: &state}
	}
	if rawg.EqualName(g.Name, hit.Name) {
		state = model.MatchConfirmed
	}
	patch := rawgPatch{
		RAWGMatch:        &state,
		RAWGName:         ptr(hit.Name),
		RAWGLink:         ptr(hit.Slug),
		MetacriticRating: hit.Metacritic,
		RAWGRating:       ptr(hit.Rating),
		RAWGReviews:      ptr(hit.ReviewCount()),
	}
	if state == model.MatchConfirmed {
		if devs, err := p.RAWG.DevTeam(ctx, hit.Slug); err == nil && len(devs) > 0 {
			patch.RAWGDevs = ptr(strings.Join(devs, ", "))
		}
	}
	return patch
}

// rawgPlatformIDs resolves every platform in the table onto a RAWG
// platform id. Unmappable platforms resolve to 0, which searches
// without a platform filter.
func (p *Pipeline) rawgPlatformIDs(ctx context.Context, t *catalog.Table) (map[string]int64, error) {
	vocab, err := p.RAWG.Platforms(ctx)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(vocab))
	for name := range vocab {
		names = append(names, name)
	}
	sort.Strings(names) // map order would make fuzzy tie-breaks flap
	canon := platform.New(platform.FromNames(names), rawg.PlatformOverrides)

	out := make(map[string]int64)
	for _, g := range t.Rows {
		if _, done := out[g.Platform]; done {
			continue
		}
		if rawg.PlatformSkips[g.Platform] {
			out[g.Platform] = 0
			continue
		}
		pl, ok := canon.Resolve(g.Platform)
		if !ok {
			out[g.Platform] = 0
			continue
		}
		out[g.Platform] = vocab[pl.Name]
	}
	return out, nil
}
