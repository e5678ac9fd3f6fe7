// Package opencritic scrapes the review aggregator's browse listings
// and game pages. There is no public API tier that covers bulk use,
// so the client reads the same HTML the site serves to browsers.
package opencritic

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/gamedex/catalog-cli/internal/fetcher"
)

const defaultBaseURL = "https://opencritic.com"

// Coverage starts with the site's launch window; older releases are
// never listed.
var CoverageStart = time.Date(2013, 11, 1, 0, 0, 0, 0, time.UTC)

// Client scrapes opencritic.com.
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

// Listing is one row of the date-ordered browse pages. Link is the
// path fragment after /game/, e.g. "1548/mario-kart-8-deluxe".
type Listing struct {
	Name      string
	Link      string
	Platforms []string
	Released  time.Time
}

// Rating is the scraped score of one game page.
type Rating struct {
	Score   int
	Reviews int
}

// BrowseSince walks the browse-by-date listing newest first and
// returns every row released on or after limit. The walk stops at the
// first row older than limit or when the pager runs out.
func (c *Client) BrowseSince(ctx context.Context, limit time.Time) ([]Listing, error) {
	var out []Listing
	for page := 1; ; page++ {
		doc, err := c.fetchDoc(ctx, fmt.Sprintf("%s/browse/all/all-time/date?page=%d", c.baseURL, page))
		if err != nil {
			return nil, eris.Wrapf(err, "opencritic: browse page %d", page)
		}

		reachedLimit := false
		doc.Find("div.game-row").Each(func(_ int, row *goquery.Selection) {
			nameDiv := row.Find("div.game-name")
			name := strings.TrimSpace(nameDiv.Text())
			href, _ := nameDiv.Find("a").Attr("href")
			released := parseListingDate(strings.TrimSpace(row.Find("div.first-release-date").Text()))
			if !released.IsZero() && released.Before(limit) {
				reachedLimit = true
				return
			}
			var plats []string
			for _, p := range strings.Split(strings.TrimSpace(row.Find("div.platforms").Text()), ", ") {
				if p != "" {
					plats = append(plats, p)
				}
			}
			out = append(out, Listing{
				Name:      name,
				Link:      strings.TrimPrefix(href, "/game/"),
				Platforms: plats,
				Released:  released,
			})
		})
		if reachedLimit {
			break
		}
		if maxPage(doc) < page+1 {
			break
		}
	}
	zap.L().Debug("opencritic browse complete", zap.Int("listings", len(out)))
	return out, nil
}

// Rating scrapes a game page for its aggregate score and review count.
// Pages without a score yield zeros rather than an error, matching
// unreviewed and early-access titles.
func (c *Client) Rating(ctx context.Context, link string) (Rating, error) {
	doc, err := c.fetchDoc(ctx, c.baseURL+"/game/"+link)
	if err != nil {
		return Rating{}, eris.Wrapf(err, "opencritic: game page %s", link)
	}

	var r Rating
	if n, err := strconv.Atoi(strings.TrimSpace(doc.Find("div.inner-orb").First().Text())); err == nil {
		r.Score = n
	}
	// The review count lives in the "Based on N critic reviews" link
	// that points back at the game's own path.
	id := link
	if i := strings.IndexByte(link, '/'); i >= 0 {
		id = link[:i]
	}
	doc.Find(`a[href^="/game/` + id + `"]`).EachWithBreak(func(_ int, a *goquery.Selection) bool {
		fields := strings.Fields(a.Text())
		if len(fields) >= 3 {
			if n, err := strconv.Atoi(fields[2]); err == nil {
				r.Reviews = n
				return false
			}
		}
		return true
	})
	return r, nil
}

func (c *Client) fetchDoc(ctx context.Context, url string) (*goquery.Document, error) {
	body, err := c.f.Download(ctx, url)
	if err != nil {
		return nil, err
	}
	defer body.Close()
	return goquery.NewDocumentFromReader(body)
}

func maxPage(doc *goquery.Document) int {
	max := 0
	doc.Find(`a[href^="/browse/all/all-time/date?page="]`).Each(func(_ int, a *goquery.Selection) {
		href, _ := a.Attr("href")
		n, err := strconv.Atoi(strings.TrimPrefix(href, "/browse/all/all-time/date?page="))
		if err == nil && n > max {
			max = n
		}
	})
	return max
}

var listingDateLayouts = []string{"Jan 2, 2006", "Jan 2006", "2006"}

func parseListingDate(s string) time.Time {
	for _, layout := range listingDateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}

// PlatformMap translates canonical platform names onto the review
// aggregator's short labels. Platforms absent from the map are not
// covered, so their rows are never looked up.
var PlatformMap = map[string]string{
	"PC (Microsoft Windows)": "PC",
	"Mac":                    "PC",
	"Linux":                  "PC",
	"Web browser":            "PC",
	"SteamVR":                "PC",
	"Windows Mixed Reality":  "PC",
	"Xbox One":               "XB1",
	"Xbox Series X|S":        "XBXS",
	"Nintendo Switch":        "Switch",
	"PlayStation 4":          "PS4",
	"PlayStation 5":          "PS5",
	"PlayStation Vita":       "Vita",
	"PlayStation VR":         "PSVR",
	"Nintendo 3DS":           "3DS",
	"New Nintendo 3DS":       "3DS",
	"Wii U":                  "Wii-U",
	"Oculus Quest":           "Oculus",
	"Oculus Quest 2":         "Oculus",
	"Oculus Rift":            "Oculus",
	"Oculus VR":              "Oculus",
	"Google Stadia":          "Stadia",
}

// NamesByPlatform indexes listing names under each short platform
// label, the shape the per-platform fuzzy lookup wants.
func NamesByPlatform(listings []Listing) map[string][]string {
	byPlat := make(map[string][]string)
	for _, l := range listings {
		for _, p := range l.Platforms {
			byPlat[p] = append(byPlat[p], l.Name)
		}
	}
	return byPlat
}

// LinkByName maps each listing name to its first seen link.
func LinkByName(listings []Listing) map[string]string {
	links := make(map[string]string, len(listings))
	for _, l := range listings {
		if _, ok := links[l.Name]; !ok {
			links[l.Name] = l.Link
		}
	}
	return links
}
