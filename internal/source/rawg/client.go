// Package rawg is the client for the RAWG.io games database API.
package rawg

import (
	"context"
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/gamedex/catalog-cli/internal/fetcher"
	"github.com/gamedex/catalog-cli/internal/match"
)

const defaultBaseURL = "https://api.rawg.io/api"

// AcceptThreshold is the similarity at which a search hit counts as
// the same game. RAWG titles drift more than the other sources, so
// the bar sits lower.
const AcceptThreshold = 0.85

// Client talks to the RAWG API. Search and detail lookups may carry
// separate API keys so their quotas drain independently.
type Client struct {
	f         fetcher.Fetcher
	searchKey string
	detailKey string
	baseURL   string
}

// New creates a client. detailKey may equal searchKey.
func New(f fetcher.Fetcher, searchKey, detailKey string) *Client {
	if detailKey == "" {
		detailKey = searchKey
	}
	return &Client{f: f, searchKey: searchKey, detailKey: detailKey, baseURL: defaultBaseURL}
}

// NewWithBaseURL creates a client against a non-default endpoint; used
// by tests.
func NewWithBaseURL(f fetcher.Fetcher, searchKey, detailKey, baseURL string) *Client {
	c := New(f, searchKey, detailKey)
	c.baseURL = baseURL
	return c
}

type ratingBucket struct {
	Title string `json:"title"`
	Count int    `json:"count"`
}

// Game is the subset of the API's game object the catalogue keeps.
type Game struct {
	Name       string         `json:"name"`
	Slug       string         `json:"slug"`
	Metacritic *int           `json:"metacritic"`
	Rating     float64        `json:"rating"`
	Ratings    []ratingBucket `json:"ratings"`
}

// ReviewCount sums the per-bucket user rating counts.
func (g Game) ReviewCount() int {
	n := 0
	for _, b := range g.Ratings {
		n += b.Count
	}
	return n
}

type searchResponse struct {
	Results []Game `json:"results"`
}

// Search returns the top hit for query, optionally constrained to a
// RAWG platform id. ok is false when nothing matched.
func (c *Client) Search(ctx context.Context, query string, platformID int64) (Game, bool, error) {
	u := fmt.Sprintf("%s/games?key=%s&search=%s", c.baseURL, c.searchKey, url.QueryEscape(query))
	if platformID != 0 {
		u += fmt.Sprintf("&platforms=%d", platformID)
	}
	var resp searchResponse
	if err := c.f.GetJSON(ctx, u, nil, &resp); err != nil {
		return Game{}, false, eris.Wrapf(err, "rawg: search %q", query)
	}
	if len(resp.Results) == 0 {
		return Game{}, false, nil
	}
	return resp.Results[0], true, nil
}

// Fetch returns the current detail record for a known slug.
func (c *Client) Fetch(ctx context.Context, slug string) (Game, error) {
	var g Game
	u := fmt.Sprintf("%s/games/%s?key=%s", c.baseURL, url.PathEscape(slug), c.detailKey)
	if err := c.f.GetJSON(ctx, u, nil, &g); err != nil {
		return Game{}, eris.Wrapf(err, "rawg: fetch %s", slug)
	}
	return g, nil
}

type devEntry struct {
	Name string `json:"name"`
}

type devResponse struct {
	Results []devEntry `json:"results"`
}

// DevTeam returns the development-team member names for a slug.
func (c *Client) DevTeam(ctx context.Context, slug string) ([]string, error) {
	u := fmt.Sprintf("%s/games/%s/development-team?key=%s", c.baseURL, url.PathEscape(slug), c.detailKey)
	var resp devResponse
	if err := c.f.GetJSON(ctx, u, nil, &resp); err != nil {
		return nil, eris.Wrapf(err, "rawg: dev team %s", slug)
	}
	names := make([]string, 0, len(resp.Results))
	for _, d := range resp.Results {
		names = append(names, d.Name)
	}
	return names, nil
}

type platformEntry struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type platformResponse struct {
	Results []platformEntry `json:"results"`
}

// Platforms loads the platform vocabulary, name to RAWG id. The list
// fits in two pages of forty.
func (c *Client) Platforms(ctx context.Context) (map[string]int64, error) {
	out := make(map[string]int64)
	for page := 1; page <= 2; page++ {
		u := fmt.Sprintf("%s/platforms?key=%s&page_size=40&page=%d", c.baseURL, c.searchKey, page)
		var resp platformResponse
		if err := c.f.GetJSON(ctx, u, nil, &resp); err != nil {
			return nil, eris.Wrapf(err, "rawg: platforms page %d", page)
		}
		for _, p := range resp.Results {
			out[p.Name] = p.ID
		}
	}
	return out, nil
}

var (
	punctRe      = regexp.MustCompile(`[&:\-!?,.#]`)
	yearSuffixRe = regexp.MustCompile(`.*\(\d{4}\)$`)
)

// EqualName decides whether a search hit names the same game as the
// catalogue title. Pokémon titles get a word-containment check instead
// of a ratio, because RAWG merges paired editions under one entry.
// Re-releases carrying a "(YYYY)" suffix are compared without it.
func EqualName(title, hit string) bool {
	hitLower := strings.ToLower(hit)
	if strings.Contains(title, "Pokémon") {
		for _, word := range strings.Fields(punctRe.ReplaceAllString(title, "")) {
			if !strings.Contains(hitLower, strings.ToLower(word)) {
				return false
			}
		}
		return true
	}
	if yearSuffixRe.MatchString(hitLower) {
		hitLower = strings.TrimSpace(hitLower[:len(hitLower)-6])
	}
	return match.Ratio(strings.ToLower(title), hitLower) >= AcceptThreshold
}

// PlatformSkips are canonical platforms RAWG does not index; their
// rows are never searched.
var PlatformSkips = map[string]bool{
	"Arcade":               true,
	"Legacy Mobile Device": true,
	"Ouya":                 true,
	"Windows Phone":        true,
	"BlackBerry OS":        true,
	"N-Gage":               true,
}

// PlatformOverrides pins canonical platforms onto RAWG vocabulary
// names where the fuzzy match lands wrong. Values are RAWG names.
var PlatformOverrides = map[string]string{
	"MSX":                      "PC",
	"FM-7":                     "PC",
	"Sharp X1":                 "PC",
	"ZX Spectrum":              "PC",
	"DOS":                      "PC",
	"FM Towns":                 "PC",
	"Oculus Quest":             "PC",
	"Oculus Quest 2":           "PC",
	"Oculus Rift":              "PC",
	"SteamVR":                  "PC",
	"Windows Mixed Reality":    "PC",
	"Sharp X68000":             "PC",
	"TurboGrafx-16/PC Engine":  "PC",
	"Google Stadia":            "PC",
	"Intellivision":            "PC",
	"ColecoVision":             "PC",
	"BBC Microcomputer System": "PC",

	"Nintendo Entertainment System": "NES",
	"Family Computer":               "NES",
	"Family Computer Disk System":   "NES",

	"PlayStation VR": "PlayStation 4",

	"Super Nintendo Entertainment System": "SNES",
	"Super Famicom":                       "SNES",
	"Satellaview":                         "SNES",

	"PlayStation Portable":    "PSP",
	"Sega Mega Drive/Genesis": "Genesis",
}
