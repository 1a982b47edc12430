// Package batcher coalesces individual embedding requests into batches so
// callers can submit chunks one at a time while the embedder still sees
// efficient batch calls.
//
// The coalescing loop is the same shape as the watcher package's Debouncer
// (a mutex-guarded pending slice plus a time.AfterFunc flush timer),
// generalized from one trigger (elapsed window) to three: pending count,
// elapsed time, and an approximate byte budget — whichever fires first
// flushes the batch.
package batcher

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/codeintel-dev/codeintel/internal/embed"
)

// Request is a single text queued for embedding.
type Request struct {
	Text string
	// Result receives exactly one value: the embedding, or an error.
	Result chan<- Result
}

// Result is the outcome of embedding one queued request.
type Result struct {
	Vector []float32
	Err    error
}

// Config controls the three flush triggers.
type Config struct {
	MaxCount    int           // flush once this many requests are pending
	MaxWait     time.Duration // flush this long after the first pending request
	MaxBytes    int           // flush once pending text totals this many bytes
}

// DefaultConfig mirrors the embedder package's own default batch size.
func DefaultConfig() Config {
	return Config{
		MaxCount: embed.DefaultBatchSize,
		MaxWait:  50 * time.Millisecond,
		MaxBytes: 1 << 20,
	}
}

// Batcher coalesces Submit calls into embed.Embedder.EmbedBatch calls.
type Batcher struct {
	embedder embed.Embedder
	cfg      Config

	mu      sync.Mutex
	pending []Request
	bytes   int
	timer   *time.Timer
	stopped bool
}

// New creates a batcher that flushes through embedder.
func New(embedder embed.Embedder, cfg Config) *Batcher {
	return &Batcher{embedder: embedder, cfg: cfg}
}

// Batcher is itself an embed.Embedder, so it can be used anywhere one is
// expected: a drop-in decorator that coalesces whoever holds it.
var _ embed.Embedder = (*Batcher)(nil)

// Submit queues text for embedding and returns a channel that receives the
// single outcome once the batch containing it is flushed.
func (b *Batcher) Submit(text string) <-chan Result {
	ch := make(chan Result, 1)

	b.mu.Lock()
	if b.stopped {
		b.mu.Unlock()
		ch <- Result{Err: embedderClosedErr{}}
		return ch
	}

	b.pending = append(b.pending, Request{Text: text, Result: ch})
	b.bytes += len(text)

	flushNow := len(b.pending) >= b.cfg.MaxCount || (b.cfg.MaxBytes > 0 && b.bytes >= b.cfg.MaxBytes)
	if flushNow {
		batch := b.takeLocked()
		b.mu.Unlock()
		go b.flush(batch)
		return ch
	}

	if b.timer == nil {
		b.timer = time.AfterFunc(b.cfg.MaxWait, b.onTimer)
	}
	b.mu.Unlock()
	return ch
}

func (b *Batcher) onTimer() {
	b.mu.Lock()
	batch := b.takeLocked()
	b.mu.Unlock()
	if len(batch) > 0 {
		b.flush(batch)
	}
}

// takeLocked detaches the pending batch. Callers must hold b.mu.
func (b *Batcher) takeLocked() []Request {
	if b.timer != nil {
		b.timer.Stop()
		b.timer = nil
	}
	batch := b.pending
	b.pending = nil
	b.bytes = 0
	return batch
}

func (b *Batcher) flush(batch []Request) {
	if len(batch) == 0 {
		return
	}

	texts := make([]string, len(batch))
	for i, r := range batch {
		texts[i] = r.Text
	}

	ctx, cancel := context.WithTimeout(context.Background(), embed.DefaultWarmTimeout)
	defer cancel()

	vectors, err := b.embedder.EmbedBatch(ctx, texts)
	if err != nil {
		slog.Warn("embedding batch failed", slog.Int("size", len(batch)), slog.Any("err", err))
		for _, r := range batch {
			r.Result <- Result{Err: err}
		}
		return
	}

	for i, r := range batch {
		if i < len(vectors) {
			r.Result <- Result{Vector: vectors[i]}
		} else {
			r.Result <- Result{Err: shortBatchErr{}}
		}
	}
}

// EmbedBatch submits every text to the coalescing queue and waits for all
// of them to come back, preserving positional correspondence. Unlike
// Submit, which lets independent callers interleave into the same flush,
// this gives a single caller a synchronous batch-shaped call: the natural
// drop-in replacement for a raw embed.Embedder.EmbedBatch at a call site
// that wants its small, frequent requests coalesced with everyone else's.
func (b *Batcher) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	chans := make([]<-chan Result, len(texts))
	for i, t := range texts {
		chans[i] = b.Submit(t)
	}

	out := make([][]float32, len(texts))
	for i, ch := range chans {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case r := <-ch:
			if r.Err != nil {
				return nil, r.Err
			}
			out[i] = r.Vector
		}
	}
	return out, nil
}

// Embed embeds a single text through the same coalescing queue.
func (b *Batcher) Embed(ctx context.Context, text string) ([]float32, error) {
	vs, err := b.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vs[0], nil
}

// Dimensions delegates to the wrapped embedder.
func (b *Batcher) Dimensions() int { return b.embedder.Dimensions() }

// ModelName delegates to the wrapped embedder.
func (b *Batcher) ModelName() string { return b.embedder.ModelName() }

// Available delegates to the wrapped embedder.
func (b *Batcher) Available(ctx context.Context) bool { return b.embedder.Available(ctx) }

// SetBatchIndex delegates to the wrapped embedder.
func (b *Batcher) SetBatchIndex(idx int) { b.embedder.SetBatchIndex(idx) }

// SetFinalBatch delegates to the wrapped embedder.
func (b *Batcher) SetFinalBatch(isFinal bool) { b.embedder.SetFinalBatch(isFinal) }

// Flush forces any pending requests out immediately, bypassing MaxWait.
func (b *Batcher) Flush() {
	b.mu.Lock()
	batch := b.takeLocked()
	b.mu.Unlock()
	b.flush(batch)
}

// Close flushes any remaining pending requests, rejects further Submits,
// and closes the wrapped embedder.
func (b *Batcher) Close() error {
	b.mu.Lock()
	b.stopped = true
	batch := b.takeLocked()
	b.mu.Unlock()
	b.flush(batch)
	return b.embedder.Close()
}

type embedderClosedErr struct{}

func (embedderClosedErr) Error() string { return "batcher closed" }

type shortBatchErr struct{}

func (shortBatchErr) Error() string { return "embedder returned fewer vectors than requested" }
