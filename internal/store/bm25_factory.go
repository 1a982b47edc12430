package store

import (
	"fmt"
	"os"
	"path/filepath"
)

// BM25Backend names a keyword-index implementation.
type BM25Backend string

const (
	// BM25BackendSQLite backs BM25 with SQLite FTS5. WAL mode lets a
	// watcher process and a search process share one index file, so it
	// is the default.
	BM25BackendSQLite BM25Backend = "sqlite"

	// BM25BackendBleve backs BM25 with a Bleve v2 index. Bleve's store
	// takes an exclusive file lock, so it is single-process; kept for
	// indexes built before the SQLite backend existed.
	BM25BackendBleve BM25Backend = "bleve"
)

// NewBM25IndexWithBackend opens (or creates) a keyword index at basePath.
// The backend decides the on-disk suffix: basePath+".db" for SQLite,
// basePath+".bleve" for Bleve. An empty basePath yields an in-memory
// index, which tests rely on. An empty backend means SQLite.
func NewBM25IndexWithBackend(basePath string, config BM25Config, backend string) (BM25Index, error) {
	switch BM25Backend(backend) {
	case BM25BackendSQLite, "":
		path := ""
		if basePath != "" {
			path = basePath + ".db"
		}
		return NewSQLiteBM25Index(path, config)

	case BM25BackendBleve:
		path := ""
		if basePath != "" {
			path = basePath + ".bleve"
		}
		return NewBleveBM25Index(path, config)
	}
	return nil, fmt.Errorf("unknown BM25 backend: %s (valid options: sqlite, bleve)", backend)
}

// DetectBM25Backend reports which backend built the index already on
// disk at basePath, so re-opens keep using it rather than silently
// starting a second, empty index beside it. Empty string means no index
// exists yet.
func DetectBM25Backend(basePath string) BM25Backend {
	if fileExists(basePath + ".db") {
		return BM25BackendSQLite
	}
	if dirExists(basePath + ".bleve") {
		return BM25BackendBleve
	}
	return ""
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

func dirExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

// GetBM25IndexPath resolves the on-disk location of the keyword index
// inside an index directory for the given backend.
func GetBM25IndexPath(dataDir string, backend string) string {
	basePath := filepath.Join(dataDir, "bm25")
	if BM25Backend(backend) == BM25BackendBleve {
		return basePath + ".bleve"
	}
	return basePath + ".db"
}
