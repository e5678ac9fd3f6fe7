package match

import (
	"context"
	"strings"

	"go.uber.org/zap"
)

// SearchFunc queries one source's search facility. platformHint may be
// empty. Implementations surface transport failures as errors and an
// empty result set as (nil, nil).
type SearchFunc[R any] func(ctx context.Context, query, platformHint string) ([]R, error)

// Options tunes one resolution pass.
type Options struct {
	// Threshold is the minimum best score to confirm the identity.
	Threshold float64
	// PlatformHint narrows the search when the title is known to be
	// ambiguous; empty means unhinted.
	PlatformHint string
}

// Outcome is the result of resolving one title against one source.
type Outcome[R any] struct {
	// Found is false when every candidate was exhausted without any
	// search result at all; Best is then the zero value.
	Found bool
	// Matched is true when Score reached the caller's threshold.
	Matched bool
	Best    R
	// BestName is the result title Score was computed against.
	BestName string
	Score    float64
}

// Resolve tries each candidate spelling in order against search,
// scoring every returned result. Scanning stops as soon as any result
// scores above EarlyStopScore; otherwise the globally best result
// across all candidates wins, first seen breaking ties. Transport
// errors and empty result sets skip the candidate rather than failing
// the caller.
func Resolve[R any](
	ctx context.Context,
	search SearchFunc[R],
	nameOf func(R) string,
	candidates []string,
	opts Options,
) Outcome[R] {
	var out Outcome[R]
	for _, candidate := range candidates {
		if out.Found && out.Score > EarlyStopScore {
			break
		}
		results, err := search(ctx, candidate, opts.PlatformHint)
		if err != nil {
			zap.L().Debug("search failed, skipping candidate",
				zap.String("candidate", candidate),
				zap.Error(err),
			)
			continue
		}
		if len(results) == 0 {
			continue
		}
		for _, r := range results {
			name := nameOf(r)
			score := Ratio(candidate, name)
			if franchiseOverride(candidate, name) {
				score = 1.0
			}
			if !out.Found || score > out.Score {
				out.Found = true
				out.Best = r
				out.BestName = name
				out.Score = score
			}
			if score > EarlyStopScore {
				break
			}
		}
	}
	out.Matched = out.Found && out.Score >= opts.Threshold
	return out
}

// normalizeFranchise repairs the systematically mis-encoded (double
// UTF-8) form of the franchise name.
func normalizeFranchise(s string) string {
	return strings.ReplaceAll(s, "PokÃ©mon", "Pokémon")
}

// franchiseOverride raises a near-miss to an exact match for Pokémon
// titles. Paired releases ("Red and Blue", "Sword Version") score
// poorly against each other's names even when they identify the same
// entry; when the franchise token appears on both sides together with
// a disambiguating companion word, and the candidate's remainder is
// contained in the result, the pair is the same game.
func franchiseOverride(candidate, result string) bool {
	candidate = normalizeFranchise(candidate)
	result = normalizeFranchise(result)
	if !strings.Contains(candidate, "Pokémon") || !strings.Contains(result, "Pokémon") {
		return false
	}
	companion := func(s string) bool {
		return strings.Contains(s, "and") || strings.Contains(s, "Version")
	}
	if !companion(candidate) || !companion(result) {
		return false
	}
	rest := strings.TrimSpace(strings.ReplaceAll(candidate, "Pokémon", ""))
	if rest == "" {
		return false
	}
	return strings.Contains(Fold(result), Fold(rest))
}
