// Package match scores candidate titles against source search results
// and decides whether a result can be trusted as the same game.
package match

import (
	"strings"
	"unicode"

	"github.com/agext/levenshtein"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// EarlyStopScore is the score above which scanning further candidates
// is pointless: the result is already a near-exact hit.
const EarlyStopScore = 0.9

var (
	levParams = levenshtein.NewParams()
	// foldAccents strips combining marks so that "Pokémon" and
	// "Pokemon" compare equal; sources disagree on localization.
	foldAccents = transform.Chain(
		norm.NFD,
		runes.Remove(runes.In(unicode.Mn)),
		norm.NFC,
	)
)

// Fold lowercases a title and strips diacritics for comparison.
func Fold(s string) string {
	folded, _, err := transform.String(foldAccents, s)
	if err != nil {
		folded = s
	}
	return strings.ToLower(folded)
}

// Ratio returns the normalized edit-similarity of two titles in
// [0, 1], case- and accent-insensitive.
func Ratio(a, b string) float64 {
	return levenshtein.Similarity(Fold(a), Fold(b), levParams)
}

// ExtractOne returns the choice most similar to name and its score.
// Ties keep the first-seen choice. ok is false for an empty choice
// list.
func ExtractOne(name string, choices []string) (best string, score float64, ok bool) {
	for _, c := range choices {
		if s := Ratio(name, c); s > score || !ok {
			best, score, ok = c, s, true
		}
	}
	return best, score, ok
}
