// Package pipeline orchestrates catalogue sync runs. A run pulls the
// canonical game list from IGDB, then walks the enrichment stages in
// order (HowLongToBeat, OpenCritic, RAWG), merging each stage's
// patches into the table before the next stage sees it. The table is
// saved after every stage so an aborted run loses at most one stage's
// work.
package pipeline

import (
	"context"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/gamedex/catalog-cli/internal/catalog"
	"github.com/gamedex/catalog-cli/internal/config"
	"github.com/gamedex/catalog-cli/internal/model"
	"github.com/gamedex/catalog-cli/internal/source/hltb"
	"github.com/gamedex/catalog-cli/internal/source/igdb"
	"github.com/gamedex/catalog-cli/internal/source/opencritic"
	"github.com/gamedex/catalog-cli/internal/source/rawg"
	"github.com/gamedex/catalog-cli/internal/store"
)

// IGDBSource is the primary-source client surface the pipeline needs.
type IGDBSource interface {
	Authenticate(ctx context.Context) error
	LoadVocabulary(ctx context.Context) (*igdb.Vocabulary, error)
	GamesSince(ctx context.Context, watermark time.Time, startYear, endYear int) ([]igdb.Game, error)
	Expand(ctx context.Context, games []igdb.Game, vocab *igdb.Vocabulary) ([]*model.Game, error)
}

// HLTBSource resolves completion times.
type HLTBSource interface {
	Search(ctx context.Context, query, platformHint string) ([]hltb.Result, error)
	FetchByID(ctx context.Context, name, id string) (hltb.Result, error)
}

// OpenCriticSource resolves review aggregation.
type OpenCriticSource interface {
	BrowseSince(ctx context.Context, limit time.Time) ([]opencritic.Listing, error)
	Rating(ctx context.Context, link string) (opencritic.Rating, error)
}

// RAWGSource resolves community ratings and development teams.
type RAWGSource interface {
	Search(ctx context.Context, query string, platformID int64) (rawg.Game, bool, error)
	Fetch(ctx context.Context, slug string) (rawg.Game, error)
	DevTeam(ctx context.Context, slug string) ([]string, error)
	Platforms(ctx context.Context) (map[string]int64, error)
}

// Pipeline wires the store and the four source clients into sync runs.
type Pipeline struct {
	Store      store.Store
	IGDB       IGDBSource
	HLTB       HLTBSource
	OpenCritic OpenCriticSource
	RAWG       RAWGSource
	Cfg        *config.Config

	// Sources restricts which stages an update runs; empty means all.
	Sources []string

	// DryRun walks the stages but writes nothing: no run record, no
	// checkpoints, no final save or snapshot.
	DryRun bool

	// Now anchors refresh windows; zero means time.Now. Set by tests.
	Now time.Time
}

func (p *Pipeline) now() time.Time {
	if p.Now.IsZero() {
		return time.Now().UTC()
	}
	return p.Now
}

// Create builds the catalogue from scratch, pulling every IGDB release
// between startYear and endYear (0 means the current year) and running
// a first lookup against every enrichment source.
func (p *Pipeline) Create(ctx context.Context, startYear, endYear int) error {
	run, err := p.Store.CreateRun(ctx, "create")
	if err != nil {
		return err
	}
	t, err := p.sync(ctx, nil, startYear, endYear)
	if err != nil {
		p.failRun(ctx, run.ID, err)
		return err
	}
	return p.finish(ctx, run.ID, t)
}

// Update refreshes an existing catalogue: new and changed IGDB entries
// since the stored watermark, first lookups for never-attempted
// entities, and metric refreshes inside each source's window.
func (p *Pipeline) Update(ctx context.Context) error {
	var runID string
	if !p.DryRun {
		run, err := p.Store.CreateRun(ctx, "update")
		if err != nil {
			return err
		}
		runID = run.ID
	}
	base, err := p.Store.LoadTable(ctx)
	if err != nil {
		p.failRun(ctx, runID, err)
		return err
	}
	t, err := p.sync(ctx, base, 0, 0)
	if err != nil {
		p.failRun(ctx, runID, err)
		return err
	}
	if p.DryRun {
		t.DedupeKeepLast()
		t.Sort()
		zap.L().Info("dry run complete, nothing saved", zap.Int("rows", t.Len()))
		return nil
	}
	return p.finish(ctx, runID, t)
}

// sync runs the four stages. base == nil means create mode.
func (p *Pipeline) sync(ctx context.Context, base *catalog.Table, startYear, endYear int) (*catalog.Table, error) {
	createMode := base == nil

	t := base
	if p.stageEnabled("igdb") {
		var err error
		t, err = p.syncIGDB(ctx, base, startYear, endYear)
		if err != nil {
			return nil, eris.Wrap(err, "pipeline: igdb stage")
		}
		if err := p.checkpoint(ctx, t, "igdb"); err != nil {
			return nil, err
		}
	}

	if p.stageEnabled("hltb") {
		if err := p.syncHLTB(ctx, t, createMode); err != nil {
			return nil, eris.Wrap(err, "pipeline: hltb stage")
		}
		if err := p.checkpoint(ctx, t, "hltb"); err != nil {
			return nil, err
		}
	}

	if p.stageEnabled("opencritic") {
		if err := p.syncOpenCritic(ctx, t, createMode); err != nil {
			return nil, eris.Wrap(err, "pipeline: opencritic stage")
		}
		if err := p.checkpoint(ctx, t, "opencritic"); err != nil {
			return nil, err
		}
	}

	if p.stageEnabled("rawg") {
		if err := p.syncRAWG(ctx, t, createMode); err != nil {
			return nil, eris.Wrap(err, "pipeline: rawg stage")
		}
	}
	return t, nil
}

func (p *Pipeline) stageEnabled(name string) bool {
	if len(p.Sources) == 0 {
		return true
	}
	for _, s := range p.Sources {
		if strings.EqualFold(s, name) {
			return true
		}
	}
	return false
}

func (p *Pipeline) failRun(ctx context.Context, runID string, cause error) {
	if runID == "" {
		return
	}
	if err := p.Store.FailRun(ctx, runID, cause); err != nil {
		zap.L().Error("failed to record run failure", zap.Error(err))
	}
}

func (p *Pipeline) checkpoint(ctx context.Context, t *catalog.Table, stage string) error {
	// Dedupe before sorting: re-pulled rows are appended after their
	// stale versions, and DedupeKeepLast keeps the last occurrence.
	// Sorting first would reorder renamed rows and let the stale one win.
	t.DedupeKeepLast()
	t.Sort()
	if !p.DryRun {
		if err := p.Store.SaveTable(ctx, t); err != nil {
			return eris.Wrapf(err, "pipeline: save after %s", stage)
		}
	}
	zap.L().Info("stage complete", zap.String("stage", stage), zap.Int("rows", t.Len()))
	return nil
}

func (p *Pipeline) finish(ctx context.Context, runID string, t *catalog.Table) error {
	t.DedupeKeepLast()
	t.Sort()
	if err := p.Store.SaveTable(ctx, t); err != nil {
		p.failRun(ctx, runID, err)
		return err
	}
	if err := p.Store.Snapshot(ctx, p.now()); err != nil {
		return err
	}
	return p.Store.CompleteRun(ctx, runID, int64(t.Len()))
}
