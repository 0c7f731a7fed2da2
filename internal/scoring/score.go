package scoring

import (
	"sort"
	"strings"
	"time"

	"lostfound/internal/model"
)

// Weights for whole-query containment.
const (
	TitlePhraseWeight       = 100
	CategoryPhraseWeight    = 75
	DescriptionPhraseWeight = 50
)

// Weights for each query word longer than MinWordLen.
const (
	TitleWordWeight       = 25
	CategoryWordWeight    = 20
	DescriptionWordWeight = 15
	MinWordLen            = 2
)

const (
	// RecencyBonus is added when an item was posted within RecencyWindow.
	RecencyBonus  = 10
	RecencyWindow = 7 * 24 * time.Hour
	MaxScore      = 100
)

// Score returns the 0-100 relevance of item for query as of now.
//
// Whole-query and per-word matches are summed without deduplication, so a
// single-word query that appears in the title earns both weights.
func Score(item model.Item, query string, now time.Time) int {
	if query == "" {
		return 0
	}
	q := strings.ToLower(query)
	title := strings.ToLower(item.Title)
	desc := strings.ToLower(item.Description)
	cat := strings.ToLower(item.Category)

	score := 0
	if strings.Contains(title, q) {
		score += TitlePhraseWeight
	}
	if strings.Contains(desc, q) {
		score += DescriptionPhraseWeight
	}
	if strings.Contains(cat, q) {
		score += CategoryPhraseWeight
	}
	for _, w := range strings.Fields(q) {
		if len(w) <= MinWordLen {
			continue
		}
		if strings.Contains(title, w) {
			score += TitleWordWeight
		}
		if strings.Contains(desc, w) {
			score += DescriptionWordWeight
		}
		if strings.Contains(cat, w) {
			score += CategoryWordWeight
		}
	}
	if now.Sub(item.CreatedAt) < RecencyWindow {
		score += RecencyBonus
	}
	if score > MaxScore {
		score = MaxScore
	}
	return score
}

// Annotate scores every item against query without reordering.
func Annotate(items []model.Item, query string, now time.Time) []model.ScoredItem {
	out := make([]model.ScoredItem, 0, len(items))
	for _, it := range items {
		s := Score(it, query, now)
		out = append(out, model.ScoredItem{Item: it, SimilarityScore: s, StrongMatch: s > StrongMatchScore})
	}
	return out
}

// StrongMatchScore is the score above which a result is badged as a strong match.
const StrongMatchScore = 70

// Rank sorts items by descending score; ties keep their arrival order.
func Rank(items []model.ScoredItem) {
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].SimilarityScore > items[j].SimilarityScore
	})
}
