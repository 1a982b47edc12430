package search

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/codeintel-dev/codeintel/internal/embed"
	"github.com/codeintel-dev/codeintel/internal/store"
)

func setupTestEngine(t *testing.T) *Engine {
	t.Helper()

	dataDir := t.TempDir()

	metadata, err := store.NewSQLiteStore(filepath.Join(dataDir, "metadata.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = metadata.Close() })

	bm25, err := store.NewBM25IndexWithBackend(filepath.Join(dataDir, "bm25"), store.DefaultBM25Config(), "")
	require.NoError(t, err)
	t.Cleanup(func() { _ = bm25.Close() })

	embedder := embed.NewStaticEmbedder768()
	vector, err := store.NewHNSWStore(store.DefaultVectorStoreConfig(embedder.Dimensions()))
	require.NoError(t, err)
	t.Cleanup(func() { _ = vector.Close() })

	engine, err := NewEngine(bm25, vector, embedder, metadata, DefaultConfig())
	require.NoError(t, err)
	return engine
}

func mustIndexChunk(t *testing.T, engine *Engine, c *store.Chunk) {
	t.Helper()
	require.NoError(t, engine.Index(context.Background(), []*store.Chunk{c}))
}

func TestEngine_MultiHop_FollowsReferenceToDirectlyDefinedSymbol(t *testing.T) {
	engine := setupTestEngine(t)
	ctx := context.Background()

	caller := &store.Chunk{
		ID:          "chunk-caller",
		FileID:      "file-1",
		FilePath:    "internal/app/handler.go",
		Content:     "func HandleRequest() { ValidateToken() }",
		ContentType: store.ContentTypeCode,
		Language:    "go",
		StartLine:   1,
		EndLine:     3,
		References:  []string{"ValidateToken"},
	}
	callee := &store.Chunk{
		ID:          "chunk-callee",
		FileID:      "file-2",
		FilePath:    "internal/auth/token.go",
		Content:     "func ValidateToken() bool { return true }",
		ContentType: store.ContentTypeCode,
		Language:    "go",
		StartLine:   10,
		EndLine:     12,
		Symbols: []*store.Symbol{
			{Name: "ValidateToken", Type: store.SymbolTypeFunction, StartLine: 10, EndLine: 12},
		},
	}
	mustIndexChunk(t, engine, caller)
	mustIndexChunk(t, engine, callee)

	results, err := engine.Search(ctx, "HandleRequest", SearchOptions{
		Limit:         5,
		BM25Only:      true,
		MultiHop:      true,
		MultiHopDepth: 1,
	})
	require.NoError(t, err)
	require.NotEmpty(t, results)

	var sawDirect, sawHopped bool
	for _, r := range results {
		if r.Chunk.ID == caller.ID {
			sawDirect = true
			require.False(t, r.IsMultiHop)
			require.Equal(t, 0, r.HopDepth)
		}
		if r.Chunk.ID == callee.ID {
			sawHopped = true
			require.True(t, r.IsMultiHop)
			require.Equal(t, 1, r.HopDepth)
		}
	}
	require.True(t, sawDirect, "expected the direct match to be present")
	require.True(t, sawHopped, "expected the referenced chunk to be pulled in via multi-hop")
}

func TestEngine_MultiHop_DisabledByDefault(t *testing.T) {
	engine := setupTestEngine(t)
	ctx := context.Background()

	caller := &store.Chunk{
		ID:          "chunk-caller-2",
		FileID:      "file-1",
		FilePath:    "internal/app/handler.go",
		Content:     "func HandleOther() { ValidateSession() }",
		ContentType: store.ContentTypeCode,
		Language:    "go",
		StartLine:   1,
		EndLine:     3,
		References:  []string{"ValidateSession"},
	}
	callee := &store.Chunk{
		ID:          "chunk-callee-2",
		FileID:      "file-2",
		FilePath:    "internal/auth/session.go",
		Content:     "func ValidateSession() bool { return true }",
		ContentType: store.ContentTypeCode,
		Language:    "go",
		StartLine:   20,
		EndLine:     22,
		Symbols: []*store.Symbol{
			{Name: "ValidateSession", Type: store.SymbolTypeFunction, StartLine: 20, EndLine: 22},
		},
	}
	mustIndexChunk(t, engine, caller)
	mustIndexChunk(t, engine, callee)

	results, err := engine.Search(ctx, "HandleOther", SearchOptions{Limit: 5, BM25Only: true})
	require.NoError(t, err)
	require.NotEmpty(t, results)

	for _, r := range results {
		require.NotEqual(t, callee.ID, r.Chunk.ID, "multi-hop chunk must not appear when MultiHop is disabled")
	}
}

func TestEngine_MultiHop_StopsWhenNoNewChunksAdmitted(t *testing.T) {
	engine := setupTestEngine(t)
	ctx := context.Background()

	// A chunk that references a symbol nothing defines or indexes.
	caller := &store.Chunk{
		ID:          "chunk-dangling",
		FileID:      "file-1",
		FilePath:    "internal/app/dangling.go",
		Content:     "func DoWork() { UnresolvableHelper() }",
		ContentType: store.ContentTypeCode,
		Language:    "go",
		StartLine:   1,
		EndLine:     3,
		References:  []string{"UnresolvableHelper"},
	}
	mustIndexChunk(t, engine, caller)

	results, err := engine.Search(ctx, "DoWork", SearchOptions{
		Limit:         5,
		BM25Only:      true,
		MultiHop:      true,
		MultiHopDepth: 3,
	})
	require.NoError(t, err)
	require.Len(t, results, 1)
	require.False(t, results[0].IsMultiHop)
}

func TestValidateOptions_RejectsOutOfRangeMultiHopDepth(t *testing.T) {
	err := ValidateOptions(SearchOptions{MultiHopDepth: 6})
	require.Error(t, err)

	err = ValidateOptions(SearchOptions{MultiHopDepth: -1})
	require.Error(t, err)

	err = ValidateOptions(SearchOptions{MultiHopDepth: 0})
	require.NoError(t, err)
}
