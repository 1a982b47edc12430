package search

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/codeintel-dev/codeintel/internal/codeerr"
	"github.com/codeintel-dev/codeintel/internal/store"
)

// snippetOversample widens the FTS candidate pool before the path filter and
// limit are applied, so a restrictive filter still fills the requested limit.
const snippetOversample = 3

// IndexSnippets writes documentation snippets to the metadata store and the
// snippet full-text index. The breadcrumb is folded into the indexed text so
// a query can match heading ancestry ("Install > macOS") as well as body
// prose. Without a configured snippet index only the metadata rows are
// written.
func (e *Engine) IndexSnippets(ctx context.Context, snippets []*store.InfoSnippet) error {
	if len(snippets) == 0 {
		return nil
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.metadata.SaveSnippets(ctx, snippets); err != nil {
		return fmt.Errorf("save snippets metadata: %w", err)
	}

	if e.snippets == nil {
		slog.Debug("snippet index not configured, snippets stored without FTS",
			slog.Int("count", len(snippets)))
		return nil
	}

	docs := make([]*store.Document, len(snippets))
	for i, sn := range snippets {
		content := sn.Content
		if sn.Breadcrumb != "" {
			content = sn.Breadcrumb + "\n" + content
		}
		docs[i] = &store.Document{
			ID:      sn.ID,
			Content: content,
		}
	}

	if err := e.snippets.Index(ctx, docs); err != nil {
		return fmt.Errorf("index snippets: %w", err)
	}

	return nil
}

// DeleteSnippets removes snippets from the snippet index and metadata,
// using the same best-effort FTS / authoritative-metadata split as Delete.
func (e *Engine) DeleteSnippets(ctx context.Context, snippetIDs []string) error {
	if len(snippetIDs) == 0 {
		return nil
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if e.snippets != nil {
		if err := e.snippets.Delete(ctx, snippetIDs); err != nil {
			slog.Warn("snippet FTS delete failed, orphans will remain until compaction",
				slog.String("error", err.Error()),
				slog.Int("count", len(snippetIDs)))
		}
	}

	if err := e.metadata.DeleteSnippets(ctx, snippetIDs); err != nil {
		return fmt.Errorf("delete snippets metadata: %w", err)
	}

	return nil
}

// SearchInfoSnippets searches documentation snippets by full text only.
// pathFilter, when non-empty, restricts results to files under that path
// prefix. An empty query returns no results; a missing snippet index returns
// no results rather than an error, matching the engine's stance on optional
// adapters.
func (e *Engine) SearchInfoSnippets(ctx context.Context, query string, limit int, pathFilter string) ([]*SnippetResult, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, nil
	}

	if limit < 0 {
		return nil, codeerr.New(codeerr.ErrCodeInvalidInput,
			fmt.Sprintf("limit must be non-negative, got %d", limit), nil)
	}
	if limit == 0 {
		limit = e.config.DefaultLimit
	}
	if limit > e.config.MaxLimit {
		limit = e.config.MaxLimit
	}

	e.mu.RLock()
	defer e.mu.RUnlock()

	if e.snippets == nil {
		return nil, nil
	}

	hits, err := e.snippets.Search(ctx, query, limit*snippetOversample)
	if err != nil {
		return nil, fmt.Errorf("snippet search failed: %w", err)
	}
	if len(hits) == 0 {
		return nil, nil
	}

	ids := make([]string, len(hits))
	for i, h := range hits {
		ids[i] = h.DocID
	}
	rows, err := e.metadata.GetSnippets(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("load snippet rows: %w", err)
	}
	byID := make(map[string]*store.InfoSnippet, len(rows))
	for _, sn := range rows {
		byID[sn.ID] = sn
	}

	prefix := NormalizeScope(pathFilter)
	results := make([]*SnippetResult, 0, limit)
	for _, h := range hits {
		sn, ok := byID[h.DocID]
		if !ok {
			// Orphaned FTS entry: metadata is the source of truth.
			continue
		}
		if prefix != "" && !strings.HasPrefix(NormalizeScope(sn.FilePath)+"/", prefix+"/") {
			continue
		}
		results = append(results, &SnippetResult{Snippet: sn, Score: h.Score})
		if len(results) == limit {
			break
		}
	}

	scaleSnippetRelevance(results)
	return results, nil
}
