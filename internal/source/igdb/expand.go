package igdb

import (
	"context"
	"fmt"
	"time"

	"github.com/gamedex/catalog-cli/internal/model"
)

// categoryNames maps IGDB's numeric game category to the catalogue's
// vocabulary. Both flavors of DLC collapse into one bucket.
var categoryNames = map[int]string{
	0:  "main_game",
	1:  "dlc",
	2:  "dlc",
	3:  "bundle",
	4:  "standalone_expansion",
	6:  "episode",
	7:  "season",
	8:  "remake",
	9:  "remaster",
	10: "expanded_game",
	11: "port",
}

var statusNames = map[int]string{
	0: "released",
	2: "alpha",
	3: "beta",
	4: "early_access",
	5: "offline",
	6: "cancelled",
	7: "rumored",
	8: "delisted",
}

var regionNames = map[int]string{
	1: "europe",
	2: "north_america",
	5: "japan",
	8: "worldwide",
}

// regionPreference orders regions when picking a platform's release
// date from several regional entries.
var regionPreference = []string{"europe", "worldwide", "north_america", "japan"}

type releaseDate struct {
	ID       int64 `json:"id"`
	Date     int64 `json:"date"`
	Platform int64 `json:"platform"`
	Region   int   `json:"region"`
}

// releaseDates resolves release-date reference ids, batched.
func (c *Client) releaseDates(ctx context.Context, ids []int64) (map[int64]releaseDate, error) {
	out := make(map[int64]releaseDate, len(ids))
	for _, batch := range batchIDs(ids, pageSize) {
		body := fmt.Sprintf("fields date, platform, region; where id = (%s); limit %d;",
			joinIDs(batch), pageSize)
		var dates []releaseDate
		if err := c.query(ctx, "release_dates", body, &dates); err != nil {
			return nil, err
		}
		for _, d := range dates {
			out[d.ID] = d
		}
	}
	return out, nil
}

type involvedCompany struct {
	ID        int64 `json:"id"`
	Company   int64 `json:"company"`
	Developer bool  `json:"developer"`
	Publisher bool  `json:"publisher"`
}

// companyRoles resolves involved-company references to developer and
// publisher name lists per involvement id.
func (c *Client) companyRoles(ctx context.Context, ids []int64) (map[int64]involvedCompany, map[int64]string, error) {
	involved := make(map[int64]involvedCompany, len(ids))
	var companyIDs []int64
	for _, batch := range batchIDs(ids, pageSize) {
		body := fmt.Sprintf("fields company, developer, publisher; where id = (%s); limit %d;",
			joinIDs(batch), pageSize)
		var rows []involvedCompany
		if err := c.query(ctx, "involved_companies", body, &rows); err != nil {
			return nil, nil, err
		}
		for _, r := range rows {
			involved[r.ID] = r
			companyIDs = append(companyIDs, r.Company)
		}
	}
	names, err := c.lookupNames(ctx, "companies", companyIDs)
	if err != nil {
		return nil, nil, err
	}
	return involved, names, nil
}

// Expand turns raw game rows into canonical rows, one per (id,
// platform): reference ids become names, and each platform row gets
// its own release date by regional preference, falling back to the
// game's first release date.
func (c *Client) Expand(ctx context.Context, games []Game, vocab *Vocabulary) ([]*model.Game, error) {
	var dateIDs, involvedIDs, franchiseIDs []int64
	for _, g := range games {
		dateIDs = append(dateIDs, g.ReleaseDates...)
		involvedIDs = append(involvedIDs, g.InvolvedCompanies...)
		franchiseIDs = append(franchiseIDs, g.Franchises...)
	}

	dates, err := c.releaseDates(ctx, dateIDs)
	if err != nil {
		return nil, err
	}
	involved, companyNames, err := c.companyRoles(ctx, involvedIDs)
	if err != nil {
		return nil, err
	}
	franchiseNames, err := c.lookupNames(ctx, "franchises", franchiseIDs)
	if err != nil {
		return nil, err
	}

	var rows []*model.Game
	for _, g := range games {
		var devs, pubs []string
		for _, id := range g.InvolvedCompanies {
			ic, ok := involved[id]
			if !ok {
				continue
			}
			name := companyNames[ic.Company]
			if name == "" {
				continue
			}
			if ic.Developer {
				devs = append(devs, name)
			}
			if ic.Publisher {
				pubs = append(pubs, name)
			}
		}

		base := model.Game{
			ID:               g.ID,
			Name:             g.Name,
			Category:         categoryNames[g.Category],
			Status:           statusNames[g.Status],
			FirstReleaseDate: time.Unix(g.FirstReleaseDate, 0).UTC(),
			UpdatedAt:        time.Unix(g.UpdatedAt, 0).UTC(),
			Genres:           mapNames(g.Genres, vocab.Genres),
			Themes:           mapNames(g.Themes, vocab.Themes),
			GameModes:        mapNames(g.GameModes, vocab.GameModes),
			Franchises:       mapNames(g.Franchises, franchiseNames),
			Developers:       devs,
			Publishers:       pubs,
		}

		for _, pid := range g.Platforms {
			platName, ok := vocab.Platforms[pid]
			if !ok {
				continue
			}
			row := base
			row.Platform = platName
			row.ReleaseDate = platformDate(g, pid, dates, base.FirstReleaseDate)
			rows = append(rows, &row)
		}
	}
	return rows, nil
}

// platformDate picks the release date for one platform from the game's
// regional entries, preferring regions in regionPreference order.
func platformDate(g Game, platformID int64, dates map[int64]releaseDate, fallback time.Time) time.Time {
	byRegion := make(map[string]time.Time)
	for _, id := range g.ReleaseDates {
		d, ok := dates[id]
		if !ok || d.Platform != platformID || d.Date == 0 {
			continue
		}
		region := regionNames[d.Region]
		if _, seen := byRegion[region]; !seen {
			byRegion[region] = time.Unix(d.Date, 0).UTC()
		}
	}
	for _, region := range regionPreference {
		if t, ok := byRegion[region]; ok {
			return t
		}
	}
	return fallback
}

func mapNames(ids []int64, names map[int64]string) []string {
	var out []string
	for _, id := range ids {
		if n, ok := names[id]; ok && n != "" {
			out = append(out, n)
		}
	}
	return out
}
