package main

import (
	"context"

	"github.com/rotisserie/eris"

	"github.com/gamedex/catalog-cli/internal/fetcher"
	"github.com/gamedex/catalog-cli/internal/pipeline"
	"github.com/gamedex/catalog-cli/internal/source/hltb"
	"github.com/gamedex/catalog-cli/internal/source/igdb"
	"github.com/gamedex/catalog-cli/internal/source/opencritic"
	"github.com/gamedex/catalog-cli/internal/source/rawg"
	"github.com/gamedex/catalog-cli/internal/store"
)

// initPipeline wires the store and the four source clients.
func initPipeline(ctx context.Context) (*pipeline.Pipeline, store.Store, error) {
	if cfg.IGDB.ClientID == "" || cfg.IGDB.ClientSecret == "" {
		return nil, nil, eris.New("igdb credentials are required (CATALOG_IGDB_CLIENT_ID, CATALOG_IGDB_CLIENT_SECRET)")
	}
	if cfg.RAWG.SearchKey == "" {
		return nil, nil, eris.New("rawg api key is required (CATALOG_RAWG_SEARCH_KEY)")
	}

	st, err := initStore(ctx)
	if err != nil {
		return nil, nil, err
	}

	f := fetcher.NewHTTPFetcher(fetcher.HTTPOptions{
		RateLimiters: fetcher.DefaultRateLimiters(),
	})

	p := &pipeline.Pipeline{
		Store:      st,
		IGDB:       igdb.New(f, cfg.IGDB.ClientID, cfg.IGDB.ClientSecret),
		HLTB:       hltb.New(f),
		OpenCritic: opencritic.New(f),
		RAWG:       rawg.New(f, cfg.RAWG.SearchKey, cfg.RAWG.DetailKey),
		Cfg:        cfg,
	}
	return p, st, nil
}
