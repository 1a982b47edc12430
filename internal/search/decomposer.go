package search

import (
	"regexp"
	"strings"
)

// SubQuery is one reformulation produced by a QueryDecomposer.
type SubQuery struct {
	// Query is the sub-query text.
	Query string

	// Weight is its influence in fusion; 1.0 is neutral.
	Weight float64

	// Hint optionally narrows the sub-query to "code" or "docs".
	Hint string
}

// QueryDecomposer decides whether a query would benefit from being run
// as several reformulations, and produces them. Implementations should
// be conservative: decomposition helps the generic queries that fail
// as written and can only hurt the specific ones that already work.
type QueryDecomposer interface {
	// ShouldDecompose reports whether Decompose would produce more than
	// a pass-through for this query.
	ShouldDecompose(query string) bool

	// Decompose returns the sub-queries; for queries that don't
	// qualify, the original query wrapped in a one-element slice.
	Decompose(query string) []SubQuery
}

// PatternDecomposer recognizes two generic-query shapes with regexes
// and rewrites them into code-shaped sub-queries: "<Noun> function"
// (the user wants a declaration, so emit signature and call-site
// spellings) and "How does <topic> work" (emit the topic's key terms
// and likely file names). Deterministic and sub-millisecond, no model
// involved.
type PatternDecomposer struct {
	nounFunctionPattern *regexp.Regexp
	howDoesWorkPattern  *regexp.Regexp
	camelCasePattern    *regexp.Regexp
	pascalCasePattern   *regexp.Regexp
	snakeCasePattern    *regexp.Regexp
	filePathPattern     *regexp.Regexp
	quotedPattern       *regexp.Regexp
}

var _ QueryDecomposer = (*PatternDecomposer)(nil)

// NewPatternDecomposer compiles the recognition patterns.
func NewPatternDecomposer() *PatternDecomposer {
	return &PatternDecomposer{
		// "Search function", "Index method", "Query func"
		nounFunctionPattern: regexp.MustCompile(`(?i)^(\w+)\s+(function|func|method)$`),

		// "How does RRF fusion work"
		howDoesWorkPattern: regexp.MustCompile(`(?i)^how\s+does\s+(.+?)\s+work$`),

		// Identifier shapes that are already specific enough.
		camelCasePattern:  regexp.MustCompile(`^[a-z]+([A-Z][a-z0-9]*)+$`),
		pascalCasePattern: regexp.MustCompile(`^([A-Z][a-z0-9]*){2,}$`),
		snakeCasePattern:  regexp.MustCompile(`^[a-z]+(_[a-z0-9]+)+$`),

		filePathPattern: regexp.MustCompile(`(?i)[\w\-\.]*[/\\][\w\-\./\\]*\.(go|ts|tsx|js|jsx|py|md|json|yaml|yml)$`),

		quotedPattern: regexp.MustCompile(`^["'].*["']$`),
	}
}

// ShouldDecompose admits only the two recognized generic shapes, and
// only when nothing about the query says "I already know what I want":
// single words, identifiers, file paths, quoted phrases, and long
// natural-language queries all pass through untouched.
func (d *PatternDecomposer) ShouldDecompose(query string) bool {
	query = strings.TrimSpace(query)
	if query == "" {
		return false
	}

	words := strings.Fields(query)
	if len(words) <= 1 {
		return false
	}
	if d.isSpecificIdentifier(query) {
		return false
	}
	if d.filePathPattern.MatchString(query) {
		return false
	}
	if d.quotedPattern.MatchString(query) {
		return false
	}
	// Long prose already plays to the semantic side's strength; the
	// "how does X work" shape is the one exception worth rewriting.
	if len(words) >= 4 && !d.howDoesWorkPattern.MatchString(query) {
		return false
	}

	return d.nounFunctionPattern.MatchString(query) ||
		d.howDoesWorkPattern.MatchString(query)
}

func (d *PatternDecomposer) isSpecificIdentifier(query string) bool {
	if strings.Contains(query, " ") {
		return false
	}
	return d.camelCasePattern.MatchString(query) ||
		d.pascalCasePattern.MatchString(query) ||
		d.snakeCasePattern.MatchString(query)
}

// Decompose rewrites a qualifying query into its sub-queries; anything
// else comes back as a single pass-through SubQuery.
func (d *PatternDecomposer) Decompose(query string) []SubQuery {
	query = strings.TrimSpace(query)

	if !d.ShouldDecompose(query) {
		return []SubQuery{{Query: query, Weight: 1.0}}
	}

	if matches := d.nounFunctionPattern.FindStringSubmatch(query); len(matches) >= 2 {
		return d.decomposeNounFunction(matches[1])
	}
	if matches := d.howDoesWorkPattern.FindStringSubmatch(query); len(matches) >= 2 {
		return d.decomposeHowDoesWork(matches[1])
	}

	return []SubQuery{{Query: query, Weight: 1.0}}
}

// decomposeNounFunction spells out the ways a declaration named after
// the noun appears in Go source, most specific first: method receiver
// line, context-taking signature, func declaration, call site, bare
// identifier. All carry the "code" hint — the user said "function".
func (d *PatternDecomposer) decomposeNounFunction(noun string) []SubQuery {
	capitalNoun := strings.Title(strings.ToLower(noun)) //nolint:staticcheck
	lowerNoun := strings.ToLower(noun)

	subQueries := []SubQuery{
		// func (e *Engine) Search( — the receiver line tokens
		{Query: ") " + capitalNoun + "(", Weight: 1.5, Hint: "code"},

		// Search(ctx context.Context — context-first Go methods
		{Query: capitalNoun + "(ctx", Weight: 1.4, Hint: "code"},

		{Query: "func " + capitalNoun, Weight: 1.2, Hint: "code"},

		// func (s *Server) — lowercase receiver spelling
		{Query: "func (" + lowerNoun, Weight: 1.1, Hint: "code"},

		{Query: capitalNoun + " method", Weight: 1.0, Hint: "code"},

		// Call sites
		{Query: capitalNoun + "(", Weight: 0.9, Hint: "code"},

		{Query: capitalNoun, Weight: 0.8, Hint: "code"},
	}

	// A couple of nouns have well-known homes in a retrieval codebase.
	switch lowerNoun {
	case "search":
		subQueries = append(subQueries,
			SubQuery{Query: "engine.go Search", Weight: 1.1, Hint: "code"},
			SubQuery{Query: "Engine Search", Weight: 1.0, Hint: "code"},
		)
	case "index":
		subQueries = append(subQueries,
			SubQuery{Query: "Coordinator", Weight: 1.0, Hint: "code"},
			SubQuery{Query: "index/", Weight: 0.9, Hint: "code"},
		)
	}

	return subQueries
}

// decomposeHowDoesWork turns the topic of a "how does X work" question
// into its content words, a likely file name per word, and a func
// pattern for the final (usually head) term.
func (d *PatternDecomposer) decomposeHowDoesWork(topic string) []SubQuery {
	words := strings.Fields(topic)
	subQueries := make([]SubQuery, 0, len(words)*2)

	for _, word := range words {
		word = strings.TrimSpace(word)
		if len(word) < 2 || isStopWord(strings.ToLower(word)) {
			continue
		}

		subQueries = append(subQueries, SubQuery{Query: word, Weight: 1.0})

		if len(word) >= 3 {
			subQueries = append(subQueries, SubQuery{
				Query:  strings.ToLower(word) + ".go",
				Weight: 1.1,
				Hint:   "code",
			})
		}
	}

	if len(words) > 0 {
		mainTerm := strings.Title(strings.ToLower(words[len(words)-1])) //nolint:staticcheck
		subQueries = append(subQueries, SubQuery{
			Query:  "func " + mainTerm,
			Weight: 1.0,
			Hint:   "code",
		})
	}

	if len(subQueries) == 0 {
		return []SubQuery{{Query: topic, Weight: 1.0}}
	}
	return subQueries
}

// isStopWord filters English function words out of topic terms.
func isStopWord(word string) bool {
	stopWords := map[string]bool{
		"the": true, "a": true, "an": true, "is": true, "are": true,
		"was": true, "were": true, "be": true, "been": true, "being": true,
		"have": true, "has": true, "had": true, "do": true, "does": true,
		"did": true, "will": true, "would": true, "could": true, "should": true,
		"may": true, "might": true, "must": true, "shall": true,
		"and": true, "but": true, "or": true, "nor": true, "for": true,
		"yet": true, "so": true, "to": true, "of": true, "in": true,
		"on": true, "at": true, "by": true, "with": true, "from": true,
		"it": true, "its": true, "this": true, "that": true, "these": true,
		"those": true, "which": true, "what": true, "who": true, "whom": true,
	}
	return stopWords[word]
}
