package search

import (
	"context"
)

// RerankResult is one document's position and score after reranking.
type RerankResult struct {
	// Index is the document's position in the input slice.
	Index int
	// Score is the reranker's relevance score in [0, 1].
	Score float64
	// Document is the input text at Index, carried for convenience.
	Document string
}

// Reranker rescores fused candidates against the query with a stronger
// (and slower) model than the first-pass retrievers — typically a
// cross-encoder that reads query and document together. It is an
// optional adapter: the engine works without one, and callers should
// keep the candidate set small (tens of documents) to bound latency.
type Reranker interface {
	// Rerank scores documents against query and returns them sorted by
	// score descending, truncated to topK when topK > 0.
	Rerank(ctx context.Context, query string, documents []string, topK int) ([]RerankResult, error)

	// Available reports whether the backing model can serve requests.
	Available(ctx context.Context) bool

	// Close releases resources.
	Close() error
}

// NoOpReranker preserves the incoming order. It stands in when
// reranking is configured off or the real adapter is unreachable, so
// call sites never need a nil check.
type NoOpReranker struct{}

var _ Reranker = (*NoOpReranker)(nil)

// Rerank returns the documents unchanged, with strictly decreasing
// synthetic scores so downstream sorts keep the input order.
func (n *NoOpReranker) Rerank(_ context.Context, _ string, documents []string, topK int) ([]RerankResult, error) {
	results := make([]RerankResult, len(documents))
	for i, doc := range documents {
		results[i] = RerankResult{
			Index:    i,
			Score:    1.0 - float64(i)*0.01,
			Document: doc,
		}
	}

	if topK > 0 && topK < len(results) {
		results = results[:topK]
	}

	return results, nil
}

func (n *NoOpReranker) Available(_ context.Context) bool { return true }

func (n *NoOpReranker) Close() error { return nil }
