package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
)

// Classifier defaults. The model is deliberately tiny: classification
// is a three-way label, and anything slower than the search itself
// defeats the purpose.
const (
	DefaultClassifierModel     = "llama3.2:1b"
	DefaultClassifierTimeout   = 2 * time.Second
	DefaultClassifierCacheSize = 10000
	DefaultOllamaHost          = "http://localhost:11434"
)

// ClassifierConfig configures the optional model-backed classifier.
type ClassifierConfig struct {
	// Model is the completion model used for classification.
	Model string

	// Timeout bounds one classification call.
	Timeout time.Duration

	// CacheSize is the LRU capacity for query → classification results.
	CacheSize int

	// OllamaHost is the completion API base URL.
	OllamaHost string
}

// DefaultClassifierConfig returns the package defaults.
func DefaultClassifierConfig() ClassifierConfig {
	return ClassifierConfig{
		Model:      DefaultClassifierModel,
		Timeout:    DefaultClassifierTimeout,
		CacheSize:  DefaultClassifierCacheSize,
		OllamaHost: DefaultOllamaHost,
	}
}

type classificationResult struct {
	queryType QueryType
	weights   Weights
}

// HybridClassifier caches classifications and answers them from the
// model classifier when one is wired, falling back to pattern matching
// when it is absent or errors. The pattern path cannot fail, so
// Classify as a whole cannot either.
type HybridClassifier struct {
	llm      *LLMClassifier
	patterns *PatternClassifier
	cache    *lru.Cache[string, classificationResult]
}

var _ Classifier = (*HybridClassifier)(nil)

// NewHybridClassifier wires an optional model classifier (nil for
// patterns-only) over the default cache size.
func NewHybridClassifier(llm *LLMClassifier) *HybridClassifier {
	return NewHybridClassifierWithConfig(llm, DefaultClassifierConfig())
}

// NewHybridClassifierWithConfig is NewHybridClassifier with an explicit
// cache size.
func NewHybridClassifierWithConfig(llm *LLMClassifier, config ClassifierConfig) *HybridClassifier {
	cacheSize := config.CacheSize
	if cacheSize <= 0 {
		cacheSize = DefaultClassifierCacheSize
	}
	cache, _ := lru.New[string, classificationResult](cacheSize)
	return &HybridClassifier{
		llm:      llm,
		patterns: NewPatternClassifier(),
		cache:    cache,
	}
}

// Classify resolves the query type and weights: cache, then model (if
// wired), then patterns.
func (h *HybridClassifier) Classify(ctx context.Context, query string) (QueryType, Weights, error) {
	cacheKey := normalizeQuery(query)
	if cacheKey == "" {
		return QueryTypeMixed, WeightsForQueryType(QueryTypeMixed), nil
	}

	if result, ok := h.cache.Get(cacheKey); ok {
		return result.queryType, result.weights, nil
	}

	if h.llm != nil {
		if qt, weights, err := h.llm.Classify(ctx, query); err == nil {
			h.cache.Add(cacheKey, classificationResult{qt, weights})
			return qt, weights, nil
		}
		// Model failure falls through to patterns.
	}

	qt, weights, err := h.patterns.Classify(ctx, query)
	if err == nil {
		h.cache.Add(cacheKey, classificationResult{qt, weights})
	}
	return qt, weights, err
}

// normalizeQuery canonicalizes a query into a cache key.
func normalizeQuery(query string) string {
	return strings.ToLower(strings.TrimSpace(query))
}

// LLMClassifier asks a completion model for the three-way label. It is
// an optional adapter behind HybridClassifier; every failure mode
// degrades to the pattern classifier, so errors here are soft.
type LLMClassifier struct {
	client *http.Client
	config ClassifierConfig
}

var _ Classifier = (*LLMClassifier)(nil)

type generateRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
	Stream bool   `json:"stream"`
}

type generateResponse struct {
	Response string `json:"response"`
	Done     bool   `json:"done"`
}

// NewLLMClassifier creates a model-backed classifier; zero-valued
// config fields get package defaults.
func NewLLMClassifier(config ClassifierConfig) *LLMClassifier {
	if config.Model == "" {
		config.Model = DefaultClassifierModel
	}
	if config.Timeout <= 0 {
		config.Timeout = DefaultClassifierTimeout
	}
	if config.OllamaHost == "" {
		config.OllamaHost = DefaultOllamaHost
	}

	return &LLMClassifier{
		client: &http.Client{Timeout: config.Timeout},
		config: config,
	}
}

const classificationPrompt = `You are a search query classifier. Classify the given query into exactly ONE of these categories:

LEXICAL - The query needs exact/keyword matching. Examples:
- Error codes: ERR_CONNECTION_REFUSED, E0001
- Function/variable names: getUserById, handle_auth
- File paths: src/auth/handler.go
- Quoted phrases: "exact match"

SEMANTIC - The query is natural language seeking meaning. Examples:
- Questions: "how does authentication work"
- Conceptual: "explain the search algorithm"
- Descriptions: "find code that handles errors"

MIXED - The query benefits from both approaches. Examples:
- Short technical terms: "useEffect cleanup"
- Ambiguous: "authentication" (could be code or concept)

Respond with ONLY one word: LEXICAL, SEMANTIC, or MIXED.

Query: %s

Classification:`

// Classify sends one completion request and parses the label out of
// whatever the model returns. On any error the MIXED defaults are
// returned alongside it, so callers that ignore the error still get a
// usable answer.
func (l *LLMClassifier) Classify(ctx context.Context, query string) (QueryType, Weights, error) {
	mixed := func(err error) (QueryType, Weights, error) {
		return QueryTypeMixed, WeightsForQueryType(QueryTypeMixed), err
	}

	query = strings.TrimSpace(query)
	if query == "" {
		return mixed(nil)
	}

	body, err := json.Marshal(generateRequest{
		Model:  l.config.Model,
		Prompt: fmt.Sprintf(classificationPrompt, query),
		Stream: false,
	})
	if err != nil {
		return mixed(fmt.Errorf("marshal request: %w", err))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		l.config.OllamaHost+"/api/generate", bytes.NewReader(body))
	if err != nil {
		return mixed(fmt.Errorf("create request: %w", err))
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := l.client.Do(req)
	if err != nil {
		return mixed(fmt.Errorf("execute request: %w", err))
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return mixed(fmt.Errorf("unexpected status %d: %s", resp.StatusCode, string(respBody)))
	}

	var result generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return mixed(fmt.Errorf("decode response: %w", err))
	}

	qt := parseClassificationResponse(result.Response)
	return qt, WeightsForQueryType(qt), nil
}

// parseClassificationResponse pulls the label out of a model response,
// tolerating surrounding chatter; an unrecognizable response is MIXED.
func parseClassificationResponse(response string) QueryType {
	response = strings.ToUpper(strings.TrimSpace(response))

	for _, candidate := range []struct {
		label string
		qt    QueryType
	}{
		{"LEXICAL", QueryTypeLexical},
		{"SEMANTIC", QueryTypeSemantic},
		{"MIXED", QueryTypeMixed},
	} {
		if response == candidate.label {
			return candidate.qt
		}
	}
	for _, candidate := range []struct {
		label string
		qt    QueryType
	}{
		{"LEXICAL", QueryTypeLexical},
		{"SEMANTIC", QueryTypeSemantic},
		{"MIXED", QueryTypeMixed},
	} {
		if strings.Contains(response, candidate.label) {
			return candidate.qt
		}
	}
	return QueryTypeMixed
}

// Available probes the completion API's model listing endpoint.
func (l *LLMClassifier) Available(ctx context.Context) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, l.config.OllamaHost+"/api/tags", nil)
	if err != nil {
		return false
	}

	resp, err := l.client.Do(req)
	if err != nil {
		return false
	}
	defer func() { _ = resp.Body.Close() }()

	return resp.StatusCode == http.StatusOK
}
