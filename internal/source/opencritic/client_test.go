package opencritic

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gamedex/catalog-cli/internal/fetcher"
)

func newTestClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	f := fetcher.NewHTTPFetcher(fetcher.HTTPOptions{MaxRetries: 1})
	return NewWithBaseURL(f, srv.URL)
}

func browseRow(link, name, platforms, released string) string {
	return fmt.Sprintf(`<div class="game-row">
		<div class="game-name"><a href="/game/%s">%s</a></div>
		<div class="platforms">%s</div>
		<div class="first-release-date">%s</div>
	</div>`, link, name, platforms, released)
}

func TestBrowseSince_SinglePage(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/browse/all/all-time/date", r.URL.Path)
		assert.Equal(t, "1", r.URL.Query().Get("page"))
		_, _ = fmt.Fprint(w, `<html><body>`+
			browseRow("1548/mario-kart-8-deluxe", "Mario Kart 8 Deluxe", "Switch", "Apr 28, 2017")+
			browseRow("7589/hades", "Hades", "PC, Switch", "Sep 17, 2020")+
			`</body></html>`)
	}))

	listings, err := c.BrowseSince(context.Background(), time.Date(2017, 1, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	require.Len(t, listings, 2)

	assert.Equal(t, "Mario Kart 8 Deluxe", listings[0].Name)
	assert.Equal(t, "1548/mario-kart-8-deluxe", listings[0].Link)
	assert.Equal(t, []string{"Switch"}, listings[0].Platforms)
	assert.Equal(t, time.Date(2017, 4, 28, 0, 0, 0, 0, time.UTC), listings[0].Released)
	assert.Equal(t, []string{"PC", "Switch"}, listings[1].Platforms)
}

func TestBrowseSince_StopsAtLimit(t *testing.T) {
	var pages int
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		pages++
		_, _ = fmt.Fprint(w, `<html><body>`+
			browseRow("1/new-game", "New Game", "PC", "Jun 1, 2024")+
			browseRow("2/old-game", "Old Game", "PC", "Mar 1, 2019")+
			`<a href="/browse/all/all-time/date?page=2">2</a>`+
			`<a href="/browse/all/all-time/date?page=99">99</a>`+
			`</body></html>`)
	}))

	listings, err := c.BrowseSince(context.Background(), time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)

	// The row older than the limit ends the walk without being kept,
	// even though the pager advertises more pages.
	require.Len(t, listings, 1)
	assert.Equal(t, "New Game", listings[0].Name)
	assert.Equal(t, 1, pages)
}

func TestBrowseSince_FollowsPager(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Query().Get("page") {
		case "1":
			_, _ = fmt.Fprint(w, `<html><body>`+
				browseRow("1/a", "A", "PC", "Jun 2, 2024")+
				`<a href="/browse/all/all-time/date?page=2">2</a>`+
				`</body></html>`)
		case "2":
			_, _ = fmt.Fprint(w, `<html><body>`+
				browseRow("2/b", "B", "PC", "Jun 1, 2024")+
				`</body></html>`)
		default:
			t.Errorf("unexpected page %q", r.URL.Query().Get("page"))
		}
	}))

	listings, err := c.BrowseSince(context.Background(), time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	require.Len(t, listings, 2)
	assert.Equal(t, "B", listings[1].Name)
}

func TestParseListingDate_Layouts(t *testing.T) {
	assert.Equal(t, time.Date(2020, 9, 17, 0, 0, 0, 0, time.UTC), parseListingDate("Sep 17, 2020"))
	assert.Equal(t, time.Date(2020, 9, 1, 0, 0, 0, 0, time.UTC), parseListingDate("Sep 2020"))
	assert.Equal(t, time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC), parseListingDate("2020"))
	assert.True(t, parseListingDate("TBA").IsZero())
}

func TestRating(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/game/7589/hades", r.URL.Path)
		_, _ = fmt.Fprint(w, `<html><body>
			<div class="inner-orb">93</div>
			<div class="inner-orb">97</div>
			<a href="/game/7589/hades/reviews">Based on 130 critic reviews</a>
		</body></html>`)
	}))

	r, err := c.Rating(context.Background(), "7589/hades")
	require.NoError(t, err)
	assert.Equal(t, 93, r.Score, "first orb is the aggregate score")
	assert.Equal(t, 130, r.Reviews)
}

func TestRating_Unreviewed(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = fmt.Fprint(w, `<html><body><div class="inner-orb">--</div></body></html>`)
	}))

	r, err := c.Rating(context.Background(), "1/early-access")
	require.NoError(t, err)
	assert.Equal(t, Rating{}, r)
}

func TestNamesByPlatform(t *testing.T) {
	listings := []Listing{
		{Name: "Hades", Platforms: []string{"PC", "Switch"}},
		{Name: "Celeste", Platforms: []string{"PC"}},
	}
	byPlat := NamesByPlatform(listings)
	assert.Equal(t, []string{"Hades", "Celeste"}, byPlat["PC"])
	assert.Equal(t, []string{"Hades"}, byPlat["Switch"])
}

func TestLinkByName_FirstSeenWins(t *testing.T) {
	listings := []Listing{
		{Name: "Hades", Link: "7589/hades"},
		{Name: "Hades", Link: "9999/hades-duplicate"},
	}
	links := LinkByName(listings)
	assert.Equal(t, "7589/hades", links["Hades"])
}
