package embed

import (
	"context"
	"hash/fnv"
	"math"
	"strings"
	"unicode"
)

// StaticEmbedder is the deterministic double behind ProviderStatic: each
// token hashes into a handful of signed buckets and the accumulated
// vector is normalized to unit length. Texts sharing tokens land near
// each other, which is all the offline path and the test suites need —
// it is not a learned model and makes no semantic claims beyond token
// overlap.
type StaticEmbedder struct {
	dims int
	name string
}

// NewStaticEmbedder returns the compact 256-dimension double.
func NewStaticEmbedder() *StaticEmbedder {
	return &StaticEmbedder{dims: 256, name: "static"}
}

// NewStaticEmbedder768 returns a 768-dimension double, matching the
// dimension of common neural embedding models so stores built against
// one can be exercised without the real provider.
func NewStaticEmbedder768() *StaticEmbedder {
	return &StaticEmbedder{dims: 768, name: "static768"}
}

// bucketsPerToken spreads each token over several dimensions so short
// texts still produce dense vectors.
const bucketsPerToken = 4

func (s *StaticEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	v := make([]float32, s.dims)
	for _, tok := range tokenizeForHash(text) {
		h := fnv.New64a()
		_, _ = h.Write([]byte(tok))
		seed := h.Sum64()
		for b := 0; b < bucketsPerToken; b++ {
			// Derive independent bucket/sign pairs from one hash.
			seed = seed*6364136223846793005 + 1442695040888963407
			idx := int(seed % uint64(s.dims))
			if seed&(1<<63) != 0 {
				v[idx]--
			} else {
				v[idx]++
			}
		}
	}

	normalizeUnit(v)
	return v, nil
}

func (s *StaticEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, text := range texts {
		v, err := s.Embed(ctx, text)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

func (s *StaticEmbedder) Dimensions() int                { return s.dims }
func (s *StaticEmbedder) ModelName() string              { return s.name }
func (s *StaticEmbedder) Available(context.Context) bool { return true }
func (s *StaticEmbedder) Close() error                   { return nil }
func (s *StaticEmbedder) SetBatchIndex(int)              {}
func (s *StaticEmbedder) SetFinalBatch(bool)             {}

// tokenizeForHash lower-cases and splits on anything that is not a
// letter or digit, dropping single-character fragments.
func tokenizeForHash(text string) []string {
	fields := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	tokens := fields[:0]
	for _, f := range fields {
		if len(f) > 1 {
			tokens = append(tokens, f)
		}
	}
	return tokens
}

// normalizeUnit scales v to unit length in place; the zero vector
// (empty input text) is left as-is.
func normalizeUnit(v []float32) {
	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	if sum == 0 {
		return
	}
	inv := 1 / math.Sqrt(sum)
	for i := range v {
		v[i] = float32(float64(v[i]) * inv)
	}
}
