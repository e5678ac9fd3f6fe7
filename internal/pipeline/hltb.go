package pipeline

import (
	"context"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/gamedex/catalog-cli/internal/catalog"
	"github.com/gamedex/catalog-cli/internal/match"
	"github.com/gamedex/catalog-cli/internal/model"
	"github.com/gamedex/catalog-cli/internal/namegen"
	"github.com/gamedex/catalog-cli/internal/platform"
	"github.com/gamedex/catalog-cli/internal/source/hltb"
	"github.com/gamedex/catalog-cli/internal/syncplan"
)

type hltbPatch struct {
	HLTBMatch     *model.MatchState
	HLTBLink      *string
	HLTBName      *string
	MainDuration  *float64
	ExtraDuration *float64
	CompDuration  *float64
}

// syncHLTB resolves completion times. First lookups run the full
// candidate pipeline; refreshes re-fetch by the stored id. Lookups run
// once per game id, and patches fan out to every platform row.
func (p *Pipeline) syncHLTB(ctx context.Context, t *catalog.Table, createMode bool) error {
	planner := syncplan.Planner{
		WindowMonths: p.Cfg.Sync.HLTBWindowMonths,
		CreateMode:   createMode,
		Now:          p.now(),
	}
	plats := platform.New(platform.FromNames(hltb.Platforms), hltb.PlatformOverrides)
	nameCounts := t.NameCounts()

	search := func(ctx context.Context, query, hint string) ([]hltb.Result, error) {
		return p.HLTB.Search(ctx, query, hint)
	}

	var firstLookups, refreshes []catalog.Patch
	lookups, misses := 0, 0

	for _, g := range t.FirstPerID() {
		switch planner.Decide(g.HLTBMatch, g.ReleaseDate) {
		case syncplan.ActionFirstLookup:
			hint := ""
			if hltbNeedsHint(g, nameCounts[g.ID]) {
				if pl, ok := plats.Resolve(g.Platform); ok {
					hint = pl.Name
				}
			}
			out := match.Resolve(ctx, search, func(r hltb.Result) string { return r.Name }, namegen.Candidates(g.Name), match.Options{
				Threshold:    p.Cfg.HLTB.Threshold,
				PlatformHint: hint,
			})
			firstLookups = append(firstLookups, catalog.Patch{
				Key:    strconv.FormatInt(g.ID, 10),
				Fields: hltbLookupPatch(out),
			})
			lookups++
			if !out.Matched {
				misses++
			}

		case syncplan.ActionRefresh:
			// Legacy imports can carry a confirmed state with an empty
			// link cell; nothing to re-fetch for those.
			if g.HLTBLink == nil {
				zap.L().Warn("hltb refresh skipped, confirmed row has no link",
					zap.Int64("id", g.ID),
					zap.String("name", g.Name),
				)
				continue
			}
			r, err := p.HLTB.FetchByID(ctx, derefOr(g.HLTBName, g.Name), *g.HLTBLink)
			if err != nil {
				zap.L().Warn("hltb refresh failed",
					zap.Int64("id", g.ID),
					zap.String("link", *g.HLTBLink),
					zap.Error(err),
				)
				continue
			}
			refreshes = append(refreshes, catalog.Patch{
				Key: *g.HLTBLink,
				Fields: hltbPatch{
					MainDuration:  ptr(r.MainHours()),
					ExtraDuration: ptr(r.ExtraHours()),
					CompDuration:  ptr(r.CompHours()),
				},
			})
		}
	}

	catalog.Merge(t, catalog.KeyByID, firstLookups)
	catalog.Merge(t, catalog.KeyByStringPtr(func(g *model.Game) *string { return g.HLTBLink }), refreshes)

	zap.L().Info("hltb sync complete",
		zap.Int("lookups", lookups),
		zap.Int("misses", misses),
		zap.Int("refreshes", len(refreshes)),
	)
	return nil
}

// hltbNeedsHint decides when to narrow the search by platform: titles
// reused across distinct games (but only for categories where reuse is
// common), and Pokémon titles, whose paired editions collide without
// it.
func hltbNeedsHint(g *model.Game, distinctTitleHolders int) bool {
	if strings.Contains(g.Name, "Pokémon") {
		return true
	}
	if distinctTitleHolders <= 1 {
		return false
	}
	return g.Category == "main_game" || g.Category == "remake"
}

func hltbLookupPatch(out match.Outcome[hltb.Result]) hltbPatch {
	state := model.MatchRejected
	if out.Matched {
		state = model.MatchConfirmed
	}
	p := hltbPatch{HLTBMatch: &state}
	if !out.Found {
		return p
	}
	// Below-threshold hits keep the best candidate's identity and
	// durations so a human confirming the match inherits real data.
	p.HLTBLink = ptr(strconv.FormatInt(out.Best.ID, 10))
	p.HLTBName = ptr(out.Best.Name)
	p.MainDuration = ptr(out.Best.MainHours())
	p.ExtraDuration = ptr(out.Best.ExtraHours())
	p.CompDuration = ptr(out.Best.CompHours())
	return p
}

func ptr[T any](v T) *T { return &v }

func derefOr(p *string, fallback string) string {
	if p != nil {
		return *p
	}
	return fallback
}
