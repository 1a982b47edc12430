package search

import "math"

// scaleRelevance min-max scales the fused scores of a final result set onto
// [0, 100] with two-decimal rounding. When every score is equal (including a
// single-result set) all results scale to 100: they are each as relevant as
// the best candidate found.
func scaleRelevance(results []*SearchResult) {
	if len(results) == 0 {
		return
	}

	minScore, maxScore := results[0].Score, results[0].Score
	for _, r := range results[1:] {
		if r.Score < minScore {
			minScore = r.Score
		}
		if r.Score > maxScore {
			maxScore = r.Score
		}
	}

	span := maxScore - minScore
	for _, r := range results {
		if span == 0 {
			r.RelevancePercent = 100
			continue
		}
		r.RelevancePercent = roundPercent((r.Score - minScore) / span * 100)
	}
}

// scaleSnippetRelevance is scaleRelevance for snippet result sets.
func scaleSnippetRelevance(results []*SnippetResult) {
	if len(results) == 0 {
		return
	}

	minScore, maxScore := results[0].Score, results[0].Score
	for _, r := range results[1:] {
		if r.Score < minScore {
			minScore = r.Score
		}
		if r.Score > maxScore {
			maxScore = r.Score
		}
	}

	span := maxScore - minScore
	for _, r := range results {
		if span == 0 {
			r.RelevancePercent = 100
			continue
		}
		r.RelevancePercent = roundPercent((r.Score - minScore) / span * 100)
	}
}

func roundPercent(v float64) float64 {
	return math.Round(v*100) / 100
}
