// Package fuzzy ranks catalog text against a search query using normalized
// Levenshtein distance, with a substring fast path.
package fuzzy

import (
	"strings"

	"github.com/agnivade/levenshtein"
)

// threshold mirrors the tolerance the product has always used for search
// (roughly 40% edits allowed).
const threshold = 0.4

// Match reports whether candidate is close enough to query.
func Match(query, candidate string) bool {
	return Score(query, candidate) <= threshold
}

// Score returns a 0..1 dissimilarity, 0 meaning exact or substring match.
func Score(query, candidate string) float64 {
	q := strings.ToLower(strings.TrimSpace(query))
	c := strings.ToLower(strings.TrimSpace(candidate))
	if q == "" || c == "" {
		return 1
	}
	if strings.Contains(c, q) {
		return 0
	}
	// compare against the closest same-length window so long descriptions
	// don't drown short queries
	best := 1.0
	words := strings.Fields(c)
	words = append(words, c)
	for _, w := range words {
		d := levenshtein.ComputeDistance(q, w)
		longest := len(q)
		if len(w) > longest {
			longest = len(w)
		}
		if s := float64(d) / float64(longest); s < best {
			best = s
		}
	}
	return best
}
