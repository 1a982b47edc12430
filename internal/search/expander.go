package search

import (
	"strings"
	"unicode"
)

// QueryExpander widens a BM25 query with code-vocabulary synonyms and
// casing variants, bridging the gap between how users phrase a search
// ("function", "delete") and how code spells it ("func", "remove",
// "Delete"). Only the keyword path uses it — embedding models handle
// paraphrase on their own, and extra terms there just add noise.
type QueryExpander struct {
	synonyms      map[string][]string
	maxExpansions int  // synonyms admitted per original term
	includeCasing bool // emit Go-style casing variants
}

// QueryExpanderOption configures the query expander.
type QueryExpanderOption func(*QueryExpander)

// WithMaxExpansions caps how many synonyms one term may contribute.
func WithMaxExpansions(n int) QueryExpanderOption {
	return func(e *QueryExpander) {
		e.maxExpansions = n
	}
}

// WithCasingVariants toggles casing-variant emission.
func WithCasingVariants(enabled bool) QueryExpanderOption {
	return func(e *QueryExpander) {
		e.includeCasing = enabled
	}
}

// WithCustomSynonyms merges caller synonyms on top of the built-in
// table.
func WithCustomSynonyms(synonyms map[string][]string) QueryExpanderOption {
	return func(e *QueryExpander) {
		for k, v := range synonyms {
			e.synonyms[k] = append(e.synonyms[k], v...)
		}
	}
}

// NewQueryExpander builds an expander over the built-in code synonym
// table.
func NewQueryExpander(opts ...QueryExpanderOption) *QueryExpander {
	e := &QueryExpander{
		synonyms:      make(map[string][]string, len(CodeSynonyms)),
		maxExpansions: 3,
		includeCasing: true,
	}
	for k, v := range CodeSynonyms {
		e.synonyms[k] = v
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Expand returns the query with synonyms and casing variants appended:
// original terms first (exact matches must keep their weight), then up
// to maxExpansions synonyms per term, then casing variants, all
// case-insensitively deduplicated.
func (e *QueryExpander) Expand(query string) string {
	terms := tokenize(query)
	if len(terms) == 0 {
		return query
	}

	seen := make(map[string]bool)
	var expanded []string
	admit := func(term string) bool {
		lower := strings.ToLower(term)
		if seen[lower] {
			return false
		}
		expanded = append(expanded, term)
		seen[lower] = true
		return true
	}

	for _, term := range terms {
		admit(term)
	}

	for _, term := range terms {
		added := 0
		for _, syn := range e.synonyms[strings.ToLower(term)] {
			if added >= e.maxExpansions {
				break
			}
			if admit(syn) {
				added++
			}
		}
	}

	if e.includeCasing {
		for _, term := range terms {
			for _, v := range generateCasingVariants(term) {
				admit(v)
			}
		}
	}

	return strings.Join(expanded, " ")
}

// ExpandToTerms is Expand returning the term slice, for callers that
// compose their own queries (multi-query search).
func (e *QueryExpander) ExpandToTerms(query string) []string {
	return tokenize(e.Expand(query))
}

// tokenize splits a query at whitespace/punctuation and then at
// identifier boundaries, so "searchFunction fast" yields
// [search Function fast].
func tokenize(query string) []string {
	var words []string
	var current strings.Builder
	for _, r := range query {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_' {
			current.WriteRune(r)
			continue
		}
		if current.Len() > 0 {
			words = append(words, current.String())
			current.Reset()
		}
	}
	if current.Len() > 0 {
		words = append(words, current.String())
	}

	var result []string
	for _, word := range words {
		result = append(result, splitCamelSnake(word)...)
	}
	return result
}

// splitCamelSnake breaks one identifier at underscore or upper-case
// boundaries (whichever the identifier uses).
func splitCamelSnake(token string) []string {
	if strings.Contains(token, "_") {
		var result []string
		for _, p := range strings.Split(token, "_") {
			if p != "" {
				result = append(result, p)
			}
		}
		return result
	}

	var parts []string
	var current strings.Builder
	for i, r := range token {
		if i > 0 && unicode.IsUpper(r) && current.Len() > 0 {
			parts = append(parts, current.String())
			current.Reset()
		}
		current.WriteRune(r)
	}
	if current.Len() > 0 {
		parts = append(parts, current.String())
	}
	return parts
}

// generateCasingVariants emits the Go-convention spellings of a term
// that differ from the original: lowercase, Title, and — for short
// terms only, where it plausibly names an abbreviation — UPPER.
func generateCasingVariants(term string) []string {
	if term == "" {
		return nil
	}

	var variants []string
	lower := strings.ToLower(term)
	if term != lower {
		variants = append(variants, lower)
	}
	if upper := strings.ToUpper(term); term != upper && len(term) <= 4 {
		variants = append(variants, upper)
	}
	if title := strings.Title(lower); term != title { //nolint:staticcheck // single words only
		variants = append(variants, title)
	}
	return variants
}
