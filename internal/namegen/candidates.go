// Package namegen produces alternate spellings of a game title to try
// against a source's search facility. Titles differ across sources in
// punctuation, numbering scheme (roman vs arabic), subtitles and
// encoding damage; the generator enumerates the plausible variants in
// cheapest-transform-first order.
package namegen

import (
	"regexp"
	"strings"
)

var (
	camelRe = regexp.MustCompile(`([a-z])([A-Z])`)
	// Edition/version markers and publisher prefixes that search
	// engines tend to drop from their own titles.
	noiseRe = regexp.MustCompile(
		`Disney's|Disney|HD|Classic|Version|Online|Remastered|Deluxe|Sid Meier's|Anthology`)
)

// ambiguousPrefixes are standalone subtitle prefixes too generic to be
// searched on their own: they name a franchise, not a game.
var ambiguousPrefixes = map[string]struct{}{
	"":          {},
	"Pokémon":   {},
	"Star Wars": {},
}

// Candidates returns the deduplicated, ordered list of spellings to
// try for a title. The first entry is always the trimmed original;
// roman/arabic numeral variants come last. The result is pure and
// order-stable for a given input.
func Candidates(title string) []string {
	var names []string
	add := func(s string) {
		names = append(names, strings.TrimSpace(s))
	}

	add(title)
	if camelRe.MatchString(title) {
		// Missing space after a lowercase/uppercase boundary is a
		// recurring encoding artifact in the primary source.
		add(camelRe.ReplaceAllString(title, "$1 $2"))
	}
	add(strings.ReplaceAll(title, "'", ""))
	add(strings.ReplaceAll(title, "â", "'"))
	add(strings.ReplaceAll(title, "#", ""))
	add(strings.ReplaceAll(title, "//", " "))
	add(strings.ReplaceAll(title, `"`, ""))
	add(strings.ReplaceAll(title, " and ", " & "))
	add(strings.ReplaceAll(title, "The", ""))
	add(strings.ReplaceAll(title, " & ", " and "))
	add(strings.ReplaceAll(title, "–", ""))
	add(strings.ReplaceAll(title, "​", ""))
	add(strings.ReplaceAll(title, "+", " plus"))
	add(noiseRe.ReplaceAllString(title, ""))
	add(strings.ReplaceAll(title, ":", ""))

	// Everything before the last colon as a standalone candidate,
	// unless that prefix is too ambiguous to search for.
	if parts := strings.Split(title, ":"); len(parts) > 1 {
		prefix := strings.TrimSpace(strings.Join(parts[:len(parts)-1], " "))
		if _, ambiguous := ambiguousPrefixes[prefix]; !ambiguous {
			names = append(names, prefix)
		}
	}

	add(strings.ReplaceAll(title, " - ", " "))

	// First hyphen-delimited segment, unless degenerate.
	if first := strings.TrimSpace(strings.SplitN(title, "-", 2)[0]); len([]rune(first)) > 1 {
		names = append(names, first)
	}

	add(strings.NewReplacer(":", "", "-", "").Replace(title))

	names = dedupe(names)

	// Numbering-scheme variants are appended after the base set:
	// arabic digits spelled as roman numerals and vice versa.
	var numeric, roman []string
	for _, name := range names {
		if digitRe.MatchString(name) {
			numeric = append(numeric, numericVariant(name))
		}
	}
	for _, name := range names {
		if romanCandidateRe.MatchString(name) {
			roman = append(roman, romanVariant(name))
		}
	}
	names = append(names, numeric...)
	names = append(names, roman...)

	return dedupe(names)
}

// dedupe removes duplicates keeping the first occurrence.
func dedupe(names []string) []string {
	seen := make(map[string]struct{}, len(names))
	out := names[:0]
	for _, n := range names {
		if _, ok := seen[n]; ok {
			continue
		}
		seen[n] = struct{}{}
		out = append(out, n)
	}
	return out
}
