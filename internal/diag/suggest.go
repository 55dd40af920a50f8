package diag

import (
	"fmt"
	"sort"

	"github.com/lithammer/fuzzysearch/fuzzy"
)

// Closest returns the candidate nearest to target, or "" when nothing is
// close enough to be a plausible typo.
//
// Subsequence matches (ACT -> ACTIVE) are preferred; otherwise the
// candidate with the smallest edit distance wins if the distance is at most
// a third of the target length (minimum two edits).
func Closest(target string, candidates []string) string {
	if target == "" || len(candidates) == 0 {
		return ""
	}

	ranks := fuzzy.RankFindFold(target, candidates)
	if len(ranks) > 0 {
		sort.Sort(ranks)
		return ranks[0].Target
	}

	limit := len(target) / 3
	if limit < 2 {
		limit = 2
	}
	best, bestDist := "", limit+1
	for _, c := range candidates {
		if d := fuzzy.LevenshteinDistance(target, c); d < bestDist {
			best, bestDist = c, d
		}
	}
	return best
}

// Suggest formats a "did you mean" hint, or "" when Closest finds nothing.
func Suggest(target string, candidates []string) string {
	if best := Closest(target, candidates); best != "" {
		return fmt.Sprintf("did you mean %s?", best)
	}
	return ""
}
