// Package hltb is the client for the completion-time database. The
// search endpoint is the one the site's own frontend uses: POST with
// the query split into terms and an optional platform filter.
package hltb

import (
	"context"
	"encoding/json"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/gamedex/catalog-cli/internal/fetcher"
)

const defaultBaseURL = "https://howlongtobeat.com"

// Client talks to the HowLongToBeat search API.
type Client struct {
	f       fetcher.Fetcher
	baseURL string
}

// New creates a client.
func New(f fetcher.Fetcher) *Client {
	return &Client{f: f, baseURL: defaultBaseURL}
}

// NewWithBaseURL creates a client against a non-default endpoint; used
// by tests.
func NewWithBaseURL(f fetcher.Fetcher, baseURL string) *Client {
	return &Client{f: f, baseURL: baseURL}
}

// Result is one search hit. Durations come back in seconds.
type Result struct {
	ID    int64  `json:"game_id"`
	Name  string `json:"game_name"`
	Main  int64  `json:"comp_main"`
	Extra int64  `json:"comp_plus"`
	Comp  int64  `json:"comp_100"`
}

// MainHours returns the main-story duration in hours, 2dp.
func (r Result) MainHours() float64 { return secondsToHours(r.Main) }

// ExtraHours returns the main-plus-extras duration in hours, 2dp.
func (r Result) ExtraHours() float64 { return secondsToHours(r.Extra) }

// CompHours returns the completionist duration in hours, 2dp.
func (r Result) CompHours() float64 { return secondsToHours(r.Comp) }

func secondsToHours(s int64) float64 {
	return float64(int64(float64(s)/3600*100+0.5)) / 100
}

type searchPayload struct {
	SearchType    string        `json:"searchType"`
	SearchTerms   []string      `json:"searchTerms"`
	SearchOptions searchOptions `json:"searchOptions"`
}

type searchOptions struct {
	Games gameOptions `json:"games"`
}

type gameOptions struct {
	Platform  string    `json:"platform"`
	RangeTime rangeTime `json:"rangeTime"`
}

type rangeTime struct {
	Min int `json:"min"`
	Max int `json:"max"`
}

type searchResponse struct {
	Data []Result `json:"data"`
}

// Search queries the search facility. platformHint may be empty. An
// empty result list is not an error.
func (c *Client) Search(ctx context.Context, query, platformHint string) ([]Result, error) {
	payload := searchPayload{
		SearchType:  "games",
		SearchTerms: strings.Fields(query),
		SearchOptions: searchOptions{
			Games: gameOptions{Platform: platformHint},
		},
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, eris.Wrap(err, "hltb: marshal search payload")
	}

	headers := map[string]string{
		"Content-Type": "application/json",
		"Accept":       "*/*",
		"Referer":      c.baseURL + "/",
	}
	var resp searchResponse
	if err := c.f.PostJSON(ctx, c.baseURL+"/api/search", headers, body, &resp); err != nil {
		return nil, eris.Wrapf(err, "hltb: search %q", query)
	}
	return resp.Data, nil
}

// FetchByID re-fetches a game whose identity is already trusted: it
// searches by the stored matched name and filters for the stored
// numeric id. The search API has no direct by-id endpoint.
func (c *Client) FetchByID(ctx context.Context, name, id string) (Result, error) {
	wantID, err := strconv.ParseInt(id, 10, 64)
	if err != nil {
		return Result{}, eris.Wrapf(err, "hltb: bad stored id %q", id)
	}
	results, err := c.Search(ctx, name, "")
	if err != nil {
		return Result{}, err
	}
	for _, r := range results {
		if r.ID == wantID {
			return r, nil
		}
	}
	return Result{}, eris.Errorf("hltb: id %s not in results for %q", id, name)
}

// Platforms is the search facility's platform vocabulary. The site
// has no endpoint for it; the list is fixed and maintained by hand.
var Platforms = []string{
	"3DO", "Acorn Archimedes", "Amazon Luna", "Amiga", "Amiga CD32",
	"Amstrad CPC", "Apple II", "Arcade", "Atari 2600", "Atari 5200",
	"Atari 7800", "Atari 8-bit Family", "Atari Jaguar", "Atari Jaguar CD",
	"Atari Lynx", "Atari ST", "BBC Micro", "Browser", "ColecoVision",
	"Commodore 64", "Commodore PET", "Commodore VIC-20", "Dreamcast",
	"FM Towns", "Game & Watch", "Game Boy", "Game Boy Advance",
	"Game Boy Color", "Gear VR", "Gizmondo", "Google Stadia", "Intellivision",
	"Interactive Movie", "Linux", "Mac", "Mobile", "MSX", "N-Gage",
	"NEC PC-88", "NEC PC-FX", "Neo Geo", "Neo Geo CD", "Neo Geo Pocket", "NES",
	"Nintendo 3DS", "Nintendo 64", "Nintendo DS", "Nintendo GameCube",
	"Nintendo Switch", "Oculus Go", "Oculus Quest", "Odyssey", "Odyssey 2",
	"OnLive", "Ouya", "PC", "Philips CD-i", "Playdate", "PlayStation",
	"PlayStation 2", "PlayStation 3", "PlayStation 4", "PlayStation 5",
	"PlayStation Mobile", "PlayStation Portable", "PlayStation Vita",
	"Plug & Play", "Sega 32X", "Sega CD", "Sega Game Gear",
	"Sega Master System", "Sega Mega Drive/Genesis", "Sega Pico",
	"Sega Saturn", "SG-1000", "Sharp X1", "Sharp X68000", "Super Nintendo",
	"Tiger Handheld", "TurboGrafx-16", "TurboGrafx-CD", "Virtual Boy", "Wii",
	"Wii U", "Windows Phone", "WonderSwan", "Xbox", "Xbox 360", "Xbox One",
	"Xbox Series X/S", "Zeebo", "ZX Spectrum", "ZX81",
}

// PlatformOverrides corrects automatic platform matches known to go
// wrong: legacy PC variants, console families and VR headsets all
// collapse onto the bucket the search facility actually uses.
var PlatformOverrides = map[string]string{
	"3DO Interactive Multiplayer": "PC",
	"DOS":                         "PC",
	"FM-7":                        "PC",
	"PC (Microsoft Windows)":      "PC",
	"SteamVR":                     "PC",
	"Windows Mixed Reality":       "PC",

	"Family Computer":               "NES",
	"Family Computer Disk System":   "NES",
	"Nintendo Entertainment System": "NES",

	"Android":       "Mobile",
	"BlackBerry OS": "Mobile",
	"iOS":           "Mobile",

	"PlayStation VR": "PlayStation 4",

	"Satellaview":   "Super Nintendo",
	"Super Famicom": "Super Nintendo",

	"Oculus Rift": "Oculus Quest",
	"Oculus VR":   "Oculus Quest",
}
