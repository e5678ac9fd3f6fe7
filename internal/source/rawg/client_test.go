package rawg

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gamedex/catalog-cli/internal/fetcher"
)

func newTestClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	f := fetcher.NewHTTPFetcher(fetcher.HTTPOptions{MaxRetries: 1})
	return NewWithBaseURL(f, "search-key", "detail-key", srv.URL)
}

func TestSearch_TopHit(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/games", r.URL.Path)
		assert.Equal(t, "search-key", r.URL.Query().Get("key"))
		assert.Equal(t, "hades", r.URL.Query().Get("search"))
		assert.Equal(t, "4", r.URL.Query().Get("platforms"))
		_, _ = w.Write([]byte(`{"results":[
			{"name":"Hades","slug":"hades-2018","metacritic":93,"rating":4.46,
			 "ratings":[{"title":"exceptional","count":2000},{"title":"recommended","count":1500}]},
			{"name":"Hades II","slug":"hades-ii"}
		]}`))
	}))

	g, ok, err := c.Search(context.Background(), "hades", 4)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "hades-2018", g.Slug)
	require.NotNil(t, g.Metacritic)
	assert.Equal(t, 93, *g.Metacritic)
	assert.Equal(t, 4.46, g.Rating)
	assert.Equal(t, 3500, g.ReviewCount())
}

func TestSearch_NoPlatformParamWhenZero(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.False(t, r.URL.Query().Has("platforms"))
		_, _ = w.Write([]byte(`{"results":[]}`))
	}))

	_, ok, err := c.Search(context.Background(), "hades", 0)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestFetch_UsesDetailKey(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/games/hades-2018", r.URL.Path)
		assert.Equal(t, "detail-key", r.URL.Query().Get("key"))
		_, _ = w.Write([]byte(`{"name":"Hades","slug":"hades-2018","metacritic":null,"rating":4.5}`))
	}))

	g, err := c.Fetch(context.Background(), "hades-2018")
	require.NoError(t, err)
	assert.Equal(t, "Hades", g.Name)
	assert.Nil(t, g.Metacritic)
}

func TestDevTeam(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/games/hades-2018/development-team", r.URL.Path)
		_, _ = w.Write([]byte(`{"results":[{"name":"Supergiant Games"},{"name":"Greg Kasavin"}]}`))
	}))

	devs, err := c.DevTeam(context.Background(), "hades-2018")
	require.NoError(t, err)
	assert.Equal(t, []string{"Supergiant Games", "Greg Kasavin"}, devs)
}

func TestPlatforms_TwoPages(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Query().Get("page") {
		case "1":
			_, _ = w.Write([]byte(`{"results":[{"id":4,"name":"PC"},{"id":18,"name":"PlayStation 4"}]}`))
		case "2":
			_, _ = w.Write([]byte(`{"results":[{"id":7,"name":"Nintendo Switch"}]}`))
		default:
			t.Errorf("unexpected page %q", r.URL.Query().Get("page"))
		}
	}))

	plats, err := c.Platforms(context.Background())
	require.NoError(t, err)
	assert.Equal(t, map[string]int64{
		"PC":              4,
		"PlayStation 4":   18,
		"Nintendo Switch": 7,
	}, plats)
}

func TestEqualName_Ratio(t *testing.T) {
	assert.True(t, EqualName("Hades", "Hades"))
	assert.True(t, EqualName("The Witcher 3: Wild Hunt", "The Witcher 3: Wild Hunt"))
	assert.False(t, EqualName("Hades", "Celeste"))
}

func TestEqualName_YearSuffixTrimmed(t *testing.T) {
	assert.True(t, EqualName("DOOM", "DOOM (2016)"))
}

func TestEqualName_PokemonWordContainment(t *testing.T) {
	// RAWG merges paired editions under one entry; every word of the
	// catalogue title must appear in the hit.
	assert.True(t, EqualName("Pokémon Red", "Pokémon Red, Blue, Yellow"))
	assert.False(t, EqualName("Pokémon Crystal", "Pokémon Gold, Silver"))
}

func TestPlatformSkips_DisjointFromOverrides(t *testing.T) {
	for p := range PlatformSkips {
		_, overridden := PlatformOverrides[p]
		assert.False(t, overridden, "%q both skipped and overridden", p)
	}
}
