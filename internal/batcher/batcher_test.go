package batcher

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeEmbedder struct {
	calls int32
	dims  int
}

func (f *fakeEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	vs, err := f.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vs[0], nil
}

func (f *fakeEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	atomic.AddInt32(&f.calls, 1)
	out := make([][]float32, len(texts))
	for i := range texts {
		out[i] = make([]float32, f.dims)
	}
	return out, nil
}

func (f *fakeEmbedder) Dimensions() int             { return f.dims }
func (f *fakeEmbedder) ModelName() string            { return "fake" }
func (f *fakeEmbedder) Available(ctx context.Context) bool { return true }
func (f *fakeEmbedder) Close() error                { return nil }
func (f *fakeEmbedder) SetBatchIndex(idx int)       {}
func (f *fakeEmbedder) SetFinalBatch(isFinal bool)  {}

func TestBatcher_FlushesOnMaxCount(t *testing.T) {
	// Given: a batcher with MaxCount 2 and a long wait
	e := &fakeEmbedder{dims: 4}
	b := New(e, Config{MaxCount: 2, MaxWait: time.Hour, MaxBytes: 1 << 20})

	// When: two requests are submitted
	r1 := b.Submit("a")
	r2 := b.Submit("b")

	// Then: both resolve in a single embedder call
	res1 := <-r1
	res2 := <-r2
	require.NoError(t, res1.Err)
	require.NoError(t, res2.Err)
	assert.Equal(t, int32(1), atomic.LoadInt32(&e.calls))
}

func TestBatcher_FlushesOnTimeout(t *testing.T) {
	// Given: a batcher with a short wait and a high count threshold
	e := &fakeEmbedder{dims: 4}
	b := New(e, Config{MaxCount: 100, MaxWait: 20 * time.Millisecond, MaxBytes: 1 << 20})

	// When: a single request is submitted
	r := b.Submit("solo")

	// Then: it flushes after the wait window elapses
	select {
	case res := <-r:
		require.NoError(t, res.Err)
	case <-time.After(time.Second):
		t.Fatal("batch never flushed")
	}
}

func TestBatcher_Close_FlushesPending(t *testing.T) {
	// Given: a batcher with a pending request and a long wait
	e := &fakeEmbedder{dims: 4}
	b := New(e, Config{MaxCount: 100, MaxWait: time.Hour, MaxBytes: 1 << 20})
	r := b.Submit("pending")

	// When: closing the batcher
	b.Close()

	// Then: the pending request still resolves
	res := <-r
	require.NoError(t, res.Err)

	// And: further submits are rejected
	rejected := <-b.Submit("after close")
	assert.Error(t, rejected.Err)
}
