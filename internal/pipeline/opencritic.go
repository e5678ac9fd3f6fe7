package pipeline

import (
	"context"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/gamedex/catalog-cli/internal/catalog"
	"github.com/gamedex/catalog-cli/internal/match"
	"github.com/gamedex/catalog-cli/internal/model"
	"github.com/gamedex/catalog-cli/internal/source/opencritic"
	"github.com/gamedex/catalog-cli/internal/syncplan"
)

type ocPatch struct {
	OCMatch   *model.MatchState
	OCLink    *string
	OCName    *string
	OCRating  *int
	OCReviews *int
}

// syncOpenCritic resolves review aggregation. The site has no search
// API, so first lookups scrape the date-ordered browse listing back to
// the oldest release that needs one, then fuzzy-match within the
// game's platform bucket. Only platforms the aggregator covers, and
// only releases after its coverage start, are eligible.
func (p *Pipeline) syncOpenCritic(ctx context.Context, t *catalog.Table, createMode bool) error {
	planner := syncplan.Planner{
		WindowMonths: p.Cfg.Sync.OpenCriticWindowMonths,
		CreateMode:   createMode,
		Now:          p.now(),
	}

	var needLookup, needRefresh []*model.Game
	oldest := time.Time{}
	for _, g := range ocEligibleReps(t) {
		switch planner.Decide(g.OCMatch, g.ReleaseDate) {
		case syncplan.ActionFirstLookup:
			needLookup = append(needLookup, g)
			if oldest.IsZero() || g.FirstReleaseDate.Before(oldest) {
				oldest = g.FirstReleaseDate
			}
		case syncplan.ActionRefresh:
			needRefresh = append(needRefresh, g)
		}
	}

	var firstLookups []catalog.Patch
	if len(needLookup) > 0 {
		listings, err := p.OpenCritic.BrowseSince(ctx, oldest)
		if err != nil {
			return err
		}
		byPlat := opencritic.NamesByPlatform(listings)
		links := opencritic.LinkByName(listings)

		for _, g := range needLookup {
			firstLookups = append(firstLookups, catalog.Patch{
				Key:    strconv.FormatInt(g.ID, 10),
				Fields: p.ocLookup(ctx, g, byPlat, links),
			})
		}
	}

	var refreshes []catalog.Patch
	for _, g := range needRefresh {
		if g.OCLink == nil {
			zap.L().Warn("opencritic refresh skipped, confirmed row has no link",
				zap.Int64("id", g.ID),
				zap.String("name", g.Name),
			)
			continue
		}
		r, err := p.OpenCritic.Rating(ctx, *g.OCLink)
		if err != nil {
			zap.L().Warn("opencritic refresh failed",
				zap.Int64("id", g.ID),
				zap.String("link", *g.OCLink),
				zap.Error(err),
			)
			continue
		}
		refreshes = append(refreshes, catalog.Patch{
			Key: *g.OCLink,
			Fields: ocPatch{
				OCRating:  ptr(r.Score),
				OCReviews: ptr(r.Reviews),
			},
		})
	}

	catalog.Merge(t, catalog.KeyByID, firstLookups)
	catalog.Merge(t, catalog.KeyByStringPtr(func(g *model.Game) *string { return g.OCLink }), refreshes)

	zap.L().Info("opencritic sync complete",
		zap.Int("lookups", len(firstLookups)),
		zap.Int("refreshes", len(refreshes)),
	)
	return nil
}

func (p *Pipeline) ocLookup(ctx context.Context, g *model.Game, byPlat map[string][]string, links map[string]string) ocPatch {
	state := model.MatchRejected
	shortPlat := opencritic.PlatformMap[g.Platform]
	best, score, ok := match.ExtractOne(g.Name, byPlat[shortPlat])
	if !ok {
		return ocPatch{OCMatch: &state}
	}
	if score >= p.Cfg.OpenCritic.Threshold {
		state = model.MatchConfirmed
	}
	out := ocPatch{
		OCMatch: &state,
		OCName:  ptr(best),
	}
	link, linked := links[best]
	if !linked {
		return out
	}
	out.OCLink = ptr(link)
	r, err := p.OpenCritic.Rating(ctx, link)
	if err != nil {
		zap.L().Warn("opencritic rating fetch failed",
			zap.Int64("id", g.ID),
			zap.String("link", link),
			zap.Error(err),
		)
		return out
	}
	out.OCRating = ptr(r.Score)
	out.OCReviews = ptr(r.Reviews)
	return out
}

// ocEligibleReps picks, per game id, the earliest-released row whose
// platform the aggregator covers. Games released before coverage
// started never qualify.
func ocEligibleReps(t *catalog.Table) []*model.Game {
	best := make(map[int64]*model.Game)
	var order []int64
	for _, g := range t.Rows {
		if g.FirstReleaseDate.Before(opencritic.CoverageStart) {
			continue
		}
		if _, covered := opencritic.PlatformMap[g.Platform]; !covered {
			continue
		}
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
