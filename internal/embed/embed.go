// Package embed defines the embedding capability surface the engine
// consumes. Concrete providers (a local inference server, a remote API)
// are external collaborators wired in by the caller; this package only
// carries the interface both sides agree on, the metadata shape callers
// report, and a deterministic hash-based double for offline use and
// tests.
package embed

import (
	"context"
	"time"
)

const (
	// DefaultBatchSize is the batch size providers are expected to handle
	// comfortably; the batcher package uses it as its flush threshold.
	DefaultBatchSize = 32

	// DefaultWarmTimeout bounds a single provider call once the model is
	// resident. Cold-start behavior is the provider's own concern.
	DefaultWarmTimeout = 120 * time.Second
)

// Embedder maps text to fixed-dimension float vectors. Implementations
// must preserve positional correspondence in EmbedBatch and return the
// same vector for the same text across calls.
type Embedder interface {
	// Embed generates the embedding for a single text.
	Embed(ctx context.Context, text string) ([]float32, error)

	// EmbedBatch generates embeddings for multiple texts, one vector per
	// input, in input order.
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)

	// Dimensions returns the fixed vector dimension.
	Dimensions() int

	// ModelName returns the model identifier.
	ModelName() string

	// Available reports whether the provider can serve requests now.
	Available(ctx context.Context) bool

	// Close releases provider resources.
	Close() error

	// SetBatchIndex positions the provider within a long indexing run,
	// letting adaptive implementations scale their per-call timeouts.
	// Stateless providers ignore it.
	SetBatchIndex(idx int)

	// SetFinalBatch marks the last batch of a run for providers that
	// boost their timeout at the end of long jobs. Stateless providers
	// ignore it.
	SetFinalBatch(isFinal bool)
}

// ProviderType names the class of backend behind an Embedder.
type ProviderType string

const (
	// ProviderStatic is the in-process hash-based double.
	ProviderStatic ProviderType = "static"

	// ProviderExternal is any caller-supplied backend this package does
	// not implement itself.
	ProviderExternal ProviderType = "external"
)

// EmbedderInfo is the metadata snapshot callers log and display.
type EmbedderInfo struct {
	Provider   ProviderType
	Model      string
	Dimensions int
	Available  bool
}

// GetInfo snapshots an embedder's identity and availability.
func GetInfo(ctx context.Context, embedder Embedder) EmbedderInfo {
	info := EmbedderInfo{
		Model:      embedder.ModelName(),
		Dimensions: embedder.Dimensions(),
		Available:  embedder.Available(ctx),
	}
	if _, ok := embedder.(*StaticEmbedder); ok {
		info.Provider = ProviderStatic
	} else {
		info.Provider = ProviderExternal
	}
	return info
}
