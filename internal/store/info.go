package store

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// BuildIndexInfo assembles an IndexInfo snapshot for a project's data
// directory: storage sizes on disk plus the embedder metadata recorded in
// state versus the caller's currently configured embedder.
func BuildIndexInfo(ctx context.Context, metadata MetadataStore, projectRoot, dataDir, currentModel string, currentDimensions int) (*IndexInfo, error) {
	info := &IndexInfo{
		Location:    dataDir,
		ProjectRoot: projectRoot,
	}

	indexModel, err := metadata.GetState(ctx, StateKeyIndexModel)
	if err != nil {
		return nil, fmt.Errorf("failed to read index model state: %w", err)
	}
	info.IndexModel = indexModel
	info.IndexBackend = inferBackendFromModel(indexModel)

	dimStr, err := metadata.GetState(ctx, StateKeyIndexDimension)
	if err != nil {
		return nil, fmt.Errorf("failed to read index dimension state: %w", err)
	}
	if dimStr != "" {
		fmt.Sscanf(dimStr, "%d", &info.IndexDimensions)
	}

	withEmb, withoutEmb, err := metadata.GetEmbeddingStats(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read embedding stats: %w", err)
	}
	info.ChunkCount = withEmb + withoutEmb

	snippetCount, err := metadata.CountSnippets(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count snippets: %w", err)
	}
	info.SnippetCount = snippetCount

	info.MetadataSize = getFileSize(filepath.Join(dataDir, "metadata.db"))

	bm25SQLitePath := filepath.Join(dataDir, "bm25.db")
	bm25BlevePath := filepath.Join(dataDir, "bm25.bleve")
	if size := getFileSize(bm25SQLitePath); size > 0 {
		info.BM25SizeBytes = size
	} else {
		info.BM25SizeBytes = getDirSize(bm25BlevePath)
	}

	info.VectorSizeBytes = getFileSize(filepath.Join(dataDir, "vectors.hnsw"))
	info.IndexSizeBytes = info.MetadataSize + info.BM25SizeBytes + info.VectorSizeBytes

	info.CurrentModel = currentModel
	info.CurrentBackend = inferBackendFromModel(currentModel)
	info.CurrentDimensions = currentDimensions
	info.Compatible = info.IndexModel == "" || (info.IndexModel == currentModel && info.IndexDimensions == currentDimensions)

	if fi, statErr := os.Stat(filepath.Join(dataDir, "metadata.db")); statErr == nil {
		info.UpdatedAt = fi.ModTime()
	}

	return info, nil
}

// getFileSize returns the size of a file in bytes, or 0 if it doesn't exist.
func getFileSize(path string) int64 {
	info, err := os.Stat(path)
	if err != nil {
		return 0
	}
	return info.Size()
}

// getDirSize returns the total size of all files in a directory tree.
func getDirSize(path string) int64 {
	var size int64

	_ = filepath.Walk(path, func(_ string, info os.FileInfo, err error) error {
		if err != nil {
			return nil // Skip errors
		}
		if !info.IsDir() {
			size += info.Size()
		}
		return nil
	})

	return size
}

// FormatBytes formats a byte count in human-readable form.
func FormatBytes(bytes int64) string {
	const (
		kb = 1024
		mb = kb * 1024
		gb = mb * 1024
	)

	switch {
	case bytes >= gb:
		return fmt.Sprintf("%.1f GB", float64(bytes)/float64(gb))
	case bytes >= mb:
		return fmt.Sprintf("%.1f MB", float64(bytes)/float64(mb))
	case bytes >= kb:
		return fmt.Sprintf("%.1f KB", float64(bytes)/float64(kb))
	default:
		return fmt.Sprintf("%d B", bytes)
	}
}

// FormatTime formats a timestamp for display, reporting "unknown" for the
// zero value.
func FormatTime(t time.Time) string {
	if t.IsZero() {
		return "unknown"
	}
	return t.Format("2006-01-02 15:04:05")
}

// containsAny reports whether s contains any of the given substrings.
func containsAny(s string, substrings []string) bool {
	for _, sub := range substrings {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

// inferBackendFromModel guesses an embedder backend from a model identifier,
// used when the backend itself wasn't recorded alongside the model name.
func inferBackendFromModel(model string) string {
	switch {
	case model == "static" || strings.HasPrefix(model, "static"):
		return "static"
	case strings.HasPrefix(model, "/"):
		return "mlx"
	case containsAny(model, []string{"mlx-community/", "mlx-"}):
		return "mlx"
	default:
		return "ollama"
	}
}
