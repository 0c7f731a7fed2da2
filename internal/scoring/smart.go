package scoring

import "lostfound/internal/model"

// Smart match defaults.
const (
	DefaultThreshold = 30
	DefaultTopN      = 10
)

// SmartMatches keeps items scoring strictly above threshold, ranks them and
// returns at most n. The input slice is not modified.
func SmartMatches(items []model.ScoredItem, threshold, n int) []model.ScoredItem {
	out := make([]model.ScoredItem, 0, len(items))
	for _, it := range items {
		if it.SimilarityScore > threshold {
			out = append(out, it)
		}
	}
	Rank(out)
	if n >= 0 && len(out) > n {
		out = out[:n]
	}
	return out
}
