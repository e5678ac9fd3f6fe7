// Package platform maps one source's platform vocabulary onto
// another's. Every source names platforms differently ("PC (Microsoft
// Windows)" vs "PC", "Super Famicom" vs "SNES"); cross-source queries
// need the target source's own identifier.
package platform

import (
	"github.com/gamedex/catalog-cli/internal/match"
)

// Platform is one entry of a source's platform vocabulary.
type Platform struct {
	ID   string
	Name string
}

// Canonicalizer resolves source platform names against one target
// source's vocabulary. Automatic resolution is a fuzzy best-match over
// the vocabulary names; a fixed override table corrects known-bad
// automatic matches (legacy PC variants, VR headsets, console
// families). Results are cached for the lifetime of the run.
type Canonicalizer struct {
	vocab     []Platform
	names     []string
	byName    map[string]Platform
	overrides map[string]string
	cache     map[string]resolved
}

type resolved struct {
	plat Platform
	ok   bool
}

// New builds a canonicalizer over the target vocabulary. overrides
// maps a source platform name directly to a target vocabulary name; an
// empty override value means the platform has no counterpart and must
// be skipped. With a nil vocabulary only overridden names resolve.
func New(vocab []Platform, overrides map[string]string) *Canonicalizer {
	c := &Canonicalizer{
		vocab:     vocab,
		byName:    make(map[string]Platform, len(vocab)),
		overrides: overrides,
		cache:     make(map[string]resolved),
	}
	for _, p := range vocab {
		c.names = append(c.names, p.Name)
		c.byName[p.Name] = p
	}
	return c
}

// Resolve maps a source platform name to the target source's platform.
// ok is false when the platform has no mapping; entities on such
// platforms are excluded from the target's pipeline for this run.
func (c *Canonicalizer) Resolve(sourceName string) (Platform, bool) {
	if r, hit := c.cache[sourceName]; hit {
		return r.plat, r.ok
	}
	plat, ok := c.resolve(sourceName)
	c.cache[sourceName] = resolved{plat: plat, ok: ok}
	return plat, ok
}

func (c *Canonicalizer) resolve(sourceName string) (Platform, bool) {
	if target, overridden := c.overrides[sourceName]; overridden {
		if target == "" {
			return Platform{}, false
		}
		if p, known := c.byName[target]; known {
			return p, true
		}
		return Platform{ID: target, Name: target}, true
	}
	best, _, ok := match.ExtractOne(sourceName, c.names)
	if !ok {
		return Platform{}, false
	}
	return c.byName[best], true
}

// FromNames builds a vocabulary whose ids are the names themselves,
// for sources that key their search facility on the display name.
func FromNames(names []string) []Platform {
	vocab := make([]Platform, 0, len(names))
	for _, n := range names {
		vocab = append(vocab, Platform{ID: n, Name: n})
	}
	return vocab
}
