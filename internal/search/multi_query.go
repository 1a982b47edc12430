package search

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
)

// SearchFunc executes one hybrid query and returns its pre-enrichment
// fused results. MultiQuerySearcher depends on this narrow function
// rather than the whole Engine so it can be tested with a stub.
type SearchFunc func(ctx context.Context, query string, opts SearchOptions) ([]*FusedResult, error)

// MultiQuerySearcher rephrases a generic query into several specific
// sub-queries, runs them concurrently, and fuses the lists with a
// consensus boost. Generic queries ("Search function") match too many
// things weakly; the reformulations ("func Search", "Search method")
// each match fewer things strongly, and documents the formulations
// agree on rise to the top.
type MultiQuerySearcher struct {
	decomposer QueryDecomposer
	search     SearchFunc
	fusion     *MultiRRFFusion

	maxSubQueries int
	parallelism   int
}

// MultiQueryOption configures the MultiQuerySearcher.
type MultiQueryOption func(*MultiQuerySearcher)

// WithMaxSubQueries caps how many sub-queries one search may fan out to.
func WithMaxSubQueries(n int) MultiQueryOption {
	return func(m *MultiQuerySearcher) {
		if n > 0 {
			m.maxSubQueries = n
		}
	}
}

// WithParallelism caps concurrent sub-query execution.
func WithParallelism(n int) MultiQueryOption {
	return func(m *MultiQuerySearcher) {
		if n > 0 {
			m.parallelism = n
		}
	}
}

// NewMultiQuerySearcher wires a decomposer and a search function into a
// multi-query orchestrator with default fusion parameters.
func NewMultiQuerySearcher(decomposer QueryDecomposer, search SearchFunc, opts ...MultiQueryOption) *MultiQuerySearcher {
	m := &MultiQuerySearcher{
		decomposer:    decomposer,
		search:        search,
		fusion:        NewMultiRRFFusion(),
		maxSubQueries: 8,
		parallelism:   4,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Search runs the multi-query pipeline when the decomposer judges the
// query generic enough to benefit; otherwise it passes straight
// through to the single search.
func (m *MultiQuerySearcher) Search(ctx context.Context, query string, opts SearchOptions) ([]*MultiFusedResult, error) {
	start := time.Now()

	query = strings.TrimSpace(query)
	if query == "" {
		return nil, nil
	}

	if !m.decomposer.ShouldDecompose(query) {
		results, err := m.search(ctx, query, opts)
		if err != nil {
			return nil, err
		}
		return m.convertToMultiFused(results), nil
	}

	subQueries := m.decomposer.Decompose(query)
	if len(subQueries) > m.maxSubQueries {
		subQueries = subQueries[:m.maxSubQueries]
	}

	slog.Debug("multi_query_decomposition",
		slog.String("original", query),
		slog.Int("sub_queries", len(subQueries)))

	subResults, err := m.parallelSubSearch(ctx, subQueries, opts)
	if err != nil {
		return nil, err
	}

	fused := m.fusion.FuseMultiQuery(subResults)

	limit := opts.Limit
	if limit <= 0 {
		limit = 10
	}
	if len(fused) > limit {
		fused = fused[:limit]
	}

	slog.Debug("multi_query_search_complete",
		slog.String("query", query),
		slog.Int("sub_queries", len(subQueries)),
		slog.Int("results", len(fused)),
		slog.Duration("duration", time.Since(start)))

	return fused, nil
}

// subQueryFloorLimit is the minimum per-sub-query result count. Fusion
// needs depth to measure consensus: with the caller's small limit each
// list would truncate before overlap becomes visible.
const subQueryFloorLimit = 50

// parallelSubSearch fans the sub-queries out under bounded
// concurrency. A failing sub-query contributes an empty list rather
// than failing the whole search; only context cancellation aborts.
func (m *MultiQuerySearcher) parallelSubSearch(ctx context.Context, subQueries []SubQuery, opts SearchOptions) ([]SubQueryResult, error) {
	results := make([]SubQueryResult, len(subQueries))

	g, gctx := errgroup.WithContext(ctx)
	sem := make(chan struct{}, m.parallelism)

	var mu sync.Mutex
	var firstErr error

	for i, sq := range subQueries {
		i, sq := i, sq

		g.Go(func() error {
			select {
			case sem <- struct{}{}:
				defer func() { <-sem }()
			case <-gctx.Done():
				return gctx.Err()
			}

			subOpts := opts
			// A decomposition hint ("code", "docs") narrows the
			// sub-query unless the caller already filtered explicitly.
			if sq.Hint != "" && (subOpts.Filter == "" || subOpts.Filter == "all") {
				subOpts.Filter = sq.Hint
			}
			if subOpts.Limit < subQueryFloorLimit {
				subOpts.Limit = subQueryFloorLimit
			}

			searchResults, err := m.search(gctx, sq.Query, subOpts)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				if firstErr == nil {
					firstErr = err
				}
				results[i] = SubQueryResult{SubQuery: sq, Results: []*FusedResult{}}
				return nil
			}
			results[i] = SubQueryResult{SubQuery: sq, Results: searchResults}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	if firstErr != nil {
		slog.Warn("some sub-queries failed, continuing with partial results",
			slog.String("error", firstErr.Error()))
	}

	return results, nil
}

// convertToMultiFused lifts pass-through results into the multi-fused
// shape with a hit count of one.
func (m *MultiQuerySearcher) convertToMultiFused(results []*FusedResult) []*MultiFusedResult {
	if len(results) == 0 {
		return []*MultiFusedResult{}
	}

	multi := make([]*MultiFusedResult, len(results))
	for i, r := range results {
		multi[i] = &MultiFusedResult{
			FusedResult:  *r,
			SubQueryHits: 1,
		}
	}
	return multi
}
