package search

import (
	"sort"
)

// SubQueryResult pairs one decomposed sub-query with the hybrid results
// its execution produced.
type SubQueryResult struct {
	SubQuery SubQuery
	Results  []*FusedResult
}

// MultiFusedResult is a FusedResult plus the consensus signal from
// multi-query fusion: how many sub-queries surfaced this document.
type MultiFusedResult struct {
	FusedResult

	// SubQueryHits counts the sub-queries whose result lists contained
	// this document.
	SubQueryHits int
}

// MultiRRFFusion merges the result lists of several sub-queries into
// one ranking. Each list contributes weighted reciprocal-rank mass:
//
//	score(d) = Σ_i sub_weight_i / (K + rank_i)
//
// and documents that several differently-phrased sub-queries agree on
// get a multiplicative consensus boost on top — agreement across
// formulations is a stronger relevance signal than one high rank.
type MultiRRFFusion struct {
	K              int     // RRF smoothing constant
	ConsensusBoost float64 // multiplier step per extra sub-query hit
}

// NewMultiRRFFusion uses the shared RRF constant and a 10% boost per
// additional hit.
func NewMultiRRFFusion() *MultiRRFFusion {
	return &MultiRRFFusion{
		K:              DefaultRRFConstant,
		ConsensusBoost: 0.1,
	}
}

// NewMultiRRFFusionWithParams overrides the constants; non-positive k
// and negative boost fall back to the defaults.
func NewMultiRRFFusionWithParams(k int, consensusBoost float64) *MultiRRFFusion {
	if k <= 0 {
		k = DefaultRRFConstant
	}
	if consensusBoost < 0 {
		consensusBoost = 0.1
	}
	return &MultiRRFFusion{
		K:              k,
		ConsensusBoost: consensusBoost,
	}
}

// FuseMultiQuery aggregates sub-query result lists into one ranking:
// accumulate weighted RRF mass and per-source metadata, apply the
// consensus boost, sort deterministically, normalize to [0, 1].
func (f *MultiRRFFusion) FuseMultiQuery(subResults []SubQueryResult) []*MultiFusedResult {
	// Empty slice, not nil, so callers can range and slice uniformly.
	if len(subResults) == 0 {
		return []*MultiFusedResult{}
	}

	scores := make(map[string]*MultiFusedResult)

	for _, sr := range subResults {
		weight := sr.SubQuery.Weight
		if weight <= 0 {
			weight = 1.0
		}

		for rank, result := range sr.Results {
			mr, ok := scores[result.ChunkID]
			if !ok {
				mr = &MultiFusedResult{FusedResult: FusedResult{ChunkID: result.ChunkID}}
				scores[result.ChunkID] = mr
			}

			// rank is 0-based; RRF is defined over 1-based ranks.
			mr.RRFScore += weight / float64(f.K+rank+1)
			mr.SubQueryHits++

			// Keep the best per-source evidence seen across sub-queries.
			if result.BM25Score > mr.BM25Score {
				mr.BM25Score = result.BM25Score
				mr.MatchedTerms = result.MatchedTerms
			}
			if result.VecScore > mr.VecScore {
				mr.VecScore = result.VecScore
			}
			if result.InBothLists {
				mr.InBothLists = true
			}
			if mr.BM25Rank == 0 || result.BM25Rank < mr.BM25Rank {
				mr.BM25Rank = result.BM25Rank
			}
			if mr.VecRank == 0 || result.VecRank < mr.VecRank {
				mr.VecRank = result.VecRank
			}
		}
	}

	// Two hits → 1.1x, three → 1.2x, and so on.
	for _, mr := range scores {
		if mr.SubQueryHits > 1 {
			mr.RRFScore *= 1 + f.ConsensusBoost*float64(mr.SubQueryHits-1)
		}
	}

	results := make([]*MultiFusedResult, 0, len(scores))
	for _, r := range scores {
		results = append(results, r)
	}
	sort.Slice(results, func(i, j int) bool {
		return f.compare(results[i], results[j])
	})

	f.normalize(results)
	return results
}

// compare orders results deterministically: RRF score, then consensus,
// then both-lists membership, then BM25 score, then chunk ID.
func (f *MultiRRFFusion) compare(a, b *MultiFusedResult) bool {
	if a.RRFScore != b.RRFScore {
		return a.RRFScore > b.RRFScore
	}
	if a.SubQueryHits != b.SubQueryHits {
		return a.SubQueryHits > b.SubQueryHits
	}
	if a.InBothLists != b.InBothLists {
		return a.InBothLists
	}
	if a.BM25Score != b.BM25Score {
		return a.BM25Score > b.BM25Score
	}
	return a.ChunkID < b.ChunkID
}

// normalize divides every score by the maximum so the top result is
// 1.0. The slice is already sorted, so the maximum is the head.
func (f *MultiRRFFusion) normalize(results []*MultiFusedResult) {
	if len(results) == 0 {
		return
	}
	maxScore := results[0].RRFScore
	if maxScore == 0 {
		return
	}
	for _, r := range results {
		r.RRFScore /= maxScore
	}
}
