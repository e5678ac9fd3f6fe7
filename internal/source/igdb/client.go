// Package igdb is the client for the primary game database. IGDB sits
// behind Twitch OAuth and speaks a query DSL over POST: every request
// names its fields and constraints in the body. Games arrive keyed by
// integer id with their related rows (platforms, genres, companies,
// release dates) as id references that need separate lookups.
package igdb

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/gamedex/catalog-cli/internal/fetcher"
	"github.com/gamedex/catalog-cli/internal/platform"
)

const (
	defaultBaseURL  = "https://api.igdb.com/v4"
	defaultTokenURL = "https://id.twitch.tv/oauth2/token"

	// pageSize is IGDB's hard result cap per query.
	pageSize = 500
)

// Client talks to the IGDB API.
type Client struct {
	f            fetcher.Fetcher
	clientID     string
	clientSecret string
	baseURL      string
	tokenURL     string
	accessToken  string
}

// New creates an unauthenticated client. Call Authenticate before any
// query.
func New(f fetcher.Fetcher, clientID, clientSecret string) *Client {
	return &Client{
		f:            f,
		clientID:     clientID,
		clientSecret: clientSecret,
		baseURL:      defaultBaseURL,
		tokenURL:     defaultTokenURL,
	}
}

// NewWithBaseURL creates a client against a non-default endpoint; used
// by tests.
func NewWithBaseURL(f fetcher.Fetcher, clientID, clientSecret, baseURL, tokenURL string) *Client {
	c := New(f, clientID, clientSecret)
	c.baseURL = baseURL
	c.tokenURL = tokenURL
	return c
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int64  `json:"expires_in"`
}

// Authenticate exchanges the Twitch client credentials for a bearer
// token.
func (c *Client) Authenticate(ctx context.Context) error {
	q := url.Values{}
	q.Set("client_id", c.clientID)
	q.Set("client_secret", c.clientSecret)
	q.Set("grant_type", "client_credentials")

	var tok tokenResponse
	if err := c.f.PostJSON(ctx, c.tokenURL+"?"+q.Encode(), nil, nil, &tok); err != nil {
		return eris.Wrap(err, "igdb: token exchange")
	}
	if tok.AccessToken == "" {
		return eris.New("igdb: empty access token")
	}
	c.accessToken = tok.AccessToken
	return nil
}

func (c *Client) headers() map[string]string {
	return map[string]string{
		"Client-ID":     c.clientID,
		"Authorization": "Bearer " + c.accessToken,
	}
}

// query posts an APIcalypse body to an endpoint and decodes the JSON
// array response.
func (c *Client) query(ctx context.Context, endpoint, body string, v any) error {
	if err := c.f.PostJSON(ctx, c.baseURL+"/"+endpoint, c.headers(), []byte(body), v); err != nil {
		return eris.Wrapf(err, "igdb: query %s", endpoint)
	}
	return nil
}

// Game is one raw game row as returned by the games endpoint; related
// rows are id references.
type Game struct {
	ID                int64   `json:"id"`
	Name              string  `json:"name"`
	Category          int     `json:"category"`
	Status            int     `json:"status"`
	FirstReleaseDate  int64   `json:"first_release_date"`
	UpdatedAt         int64   `json:"updated_at"`
	Platforms         []int64 `json:"platforms"`
	Genres            []int64 `json:"genres"`
	Themes            []int64 `json:"themes"`
	GameModes         []int64 `json:"game_modes"`
	Franchises        []int64 `json:"franchises"`
	InvolvedCompanies []int64 `json:"involved_companies"`
	ReleaseDates      []int64 `json:"release_dates"`
}

const gameFields = "fields name, category, status, first_release_date, " +
	"updated_at, platforms, genres, themes, game_modes, franchises, " +
	"involved_companies, release_dates; "

// gameFilter restricts queries to rated, releasable entries: main
// games and their rereleases, not bundles or versioned editions.
const gameFilter = "total_rating_count > 1 & category = (0, 4, 8, 9, 10, 11) & " +
	"version_parent = null"

// GamesSince pulls games year by year, optionally restricted to rows
// modified after the watermark. Year-sized pages keep each query under
// the result cap.
func (c *Client) GamesSince(ctx context.Context, watermark time.Time, startYear, endYear int) ([]Game, error) {
	var all []Game
	for year := startYear; year <= endYear; year++ {
		from := time.Date(year, 1, 1, 0, 0, 0, 0, time.UTC).Unix()
		to := time.Date(year+1, 1, 1, 0, 0, 0, 0, time.UTC).Unix()

		body := gameFields +
			"sort total_rating_count desc; " +
			fmt.Sprintf("where %s & first_release_date >= %d & first_release_date < %d",
				gameFilter, from, to)
		if !watermark.IsZero() {
			body += fmt.Sprintf(" & updated_at > %d", watermark.Unix())
		}
		body += fmt.Sprintf("; limit %d;", pageSize)

		var page []Game
		if err := c.query(ctx, "games", body, &page); err != nil {
			return nil, err
		}
		all = append(all, page...)
		zap.L().Debug("igdb: fetched year",
			zap.Int("year", year),
			zap.Int("games", len(page)),
		)
	}
	return all, nil
}

type nameRef struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// lookupNames resolves a set of ids on a reference endpoint to their
// display names, batched at the result cap.
func (c *Client) lookupNames(ctx context.Context, endpoint string, ids []int64) (map[int64]string, error) {
	out := make(map[int64]string, len(ids))
	for _, batch := range batchIDs(ids, pageSize) {
		body := fmt.Sprintf("fields name; where id = (%s); limit %d;", joinIDs(batch), pageSize)
		var refs []nameRef
		if err := c.query(ctx, endpoint, body, &refs); err != nil {
			return nil, err
		}
		for _, r := range refs {
			out[r.ID] = r.Name
		}
	}
	return out, nil
}

// Vocabulary holds the per-run lookup dictionaries resolved once from
// the API and used to replace reference ids on game rows.
type Vocabulary struct {
	Platforms map[int64]string
	Genres    map[int64]string
	Themes    map[int64]string
	GameModes map[int64]string
}

// LoadVocabulary fetches the reference dictionaries consulted by every
// row transform. Called once per run by the orchestrator.
func (c *Client) LoadVocabulary(ctx context.Context) (*Vocabulary, error) {
	v := &Vocabulary{}
	type load struct {
		endpoint string
		dst      *map[int64]string
	}
	for _, l := range []load{
		{"platforms", &v.Platforms},
		{"genres", &v.Genres},
		{"themes", &v.Themes},
		{"game_modes", &v.GameModes},
	} {
		body := fmt.Sprintf("fields name; limit %d;", pageSize)
		var refs []nameRef
		if err := c.query(ctx, l.endpoint, body, &refs); err != nil {
			return nil, err
		}
		m := make(map[int64]string, len(refs))
		for _, r := range refs {
			m[r.ID] = r.Name
		}
		*l.dst = m
	}
	return v, nil
}

// ListPlatforms exposes the platform vocabulary in canonicalizer form.
func (v *Vocabulary) ListPlatforms() []platform.Platform {
	out := make([]platform.Platform, 0, len(v.Platforms))
	for id, name := range v.Platforms {
		out = append(out, platform.Platform{ID: fmt.Sprintf("%d", id), Name: name})
	}
	return out
}

func batchIDs(ids []int64, size int) [][]int64 {
	var out [][]int64
	for len(ids) > size {
		out = append(out, ids[:size])
		ids = ids[size:]
	}
	if len(ids) > 0 {
		out = append(out, ids)
	}
	return out
}

func joinIDs(ids []int64) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = fmt.Sprintf("%d", id)
	}
	return strings.Join(parts, ",")
}
