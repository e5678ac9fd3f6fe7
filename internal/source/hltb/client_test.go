package hltb

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gamedex/catalog-cli/internal/fetcher"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	f := fetcher.NewHTTPFetcher(fetcher.HTTPOptions{MaxRetries: 1})
	return NewWithBaseURL(f, srv.URL)
}

func TestSearch_PayloadShape(t *testing.T) {
	var got searchPayload
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/search", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.NotEmpty(t, r.Header.Get("Referer"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte(`{"data":[]}`))
	})

	_, err := c.Search(context.Background(), "The Witcher 3", "PC")
	require.NoError(t, err)
	assert.Equal(t, "games", got.SearchType)
	assert.Equal(t, []string{"The", "Witcher", "3"}, got.SearchTerms)
	assert.Equal(t, "PC", got.SearchOptions.Games.Platform)
}

func TestSearch_Results(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"data":[
			{"game_id":10270,"game_name":"The Witcher 3: Wild Hunt","comp_main":185400,"comp_plus":371700,"comp_100":619200}
		]}`))
	})

	results, err := c.Search(context.Background(), "The Witcher 3", "")
	require.NoError(t, err)
	require.Len(t, results, 1)

	r := results[0]
	assert.Equal(t, int64(10270), r.ID)
	assert.Equal(t, "The Witcher 3: Wild Hunt", r.Name)
	assert.InDelta(t, 51.5, r.MainHours(), 0.001)
	assert.InDelta(t, 103.25, r.ExtraHours(), 0.001)
	assert.InDelta(t, 172.0, r.CompHours(), 0.001)
}

func TestSearch_EmptyIsNotError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"data":[]}`))
	})

	results, err := c.Search(context.Background(), "zzzz", "")
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestSecondsToHours_Rounding(t *testing.T) {
	assert.Equal(t, 0.0, secondsToHours(0))
	assert.Equal(t, 1.0, secondsToHours(3600))
	assert.Equal(t, 0.5, secondsToHours(1800))
	assert.Equal(t, 1.02, secondsToHours(3659)) // 1.0164 rounds to 2dp
}

func TestFetchByID(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"data":[
			{"game_id":1,"game_name":"Hades","comp_main":3600},
			{"game_id":72589,"game_name":"Hades","comp_main":77400}
		]}`))
	})

	r, err := c.FetchByID(context.Background(), "Hades", "72589")
	require.NoError(t, err)
	assert.Equal(t, int64(72589), r.ID)
	assert.InDelta(t, 21.5, r.MainHours(), 0.001)
}

func TestFetchByID_NotInResults(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"data":[{"game_id":1,"game_name":"Hades"}]}`))
	})

	_, err := c.FetchByID(context.Background(), "Hades", "72589")
	assert.Error(t, err)
}

func TestFetchByID_BadID(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"data":[]}`))
	})

	_, err := c.FetchByID(context.Background(), "Hades", "not-a-number")
	assert.Error(t, err)
}

func TestPlatformOverrides_TargetsInVocabulary(t *testing.T) {
	vocab := make(map[string]bool, len(Platforms))
	for _, p := range Platforms {
		vocab[p] = true
	}
	for src, dst := range PlatformOverrides {
		assert.True(t, vocab[dst], "override %q -> %q points outside the vocabulary", src, dst)
	}
}
