package store

import (
	"strings"
	"unicode"
)

// TokenizeCode turns source text into lowercase index terms. Identifiers
// are split at word, underscore, and case boundaries so a query for
// "user" reaches getUserById, user_id, and UserStore alike. Tokens
// shorter than two characters are dropped.
func TokenizeCode(text string) []string {
	var tokens []string
	appendWord := func(word string) {
		for _, part := range SplitCodeToken(word) {
			lower := strings.ToLower(part)
			if len(lower) >= 2 {
				tokens = append(tokens, lower)
			}
		}
	}

	start := -1
	for i, r := range text {
		isWordRune := r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
		if isWordRune {
			if start < 0 {
				start = i
			}
			continue
		}
		if start >= 0 {
			appendWord(text[start:i])
			start = -1
		}
	}
	if start >= 0 {
		appendWord(text[start:])
	}

	return tokens
}

// SplitCodeToken breaks one identifier at underscore boundaries, then at
// case boundaries within each piece.
func SplitCodeToken(token string) []string {
	if !strings.Contains(token, "_") {
		return SplitCamelCase(token)
	}

	var result []string
	for _, part := range strings.Split(token, "_") {
		if part != "" {
			result = append(result, SplitCamelCase(part)...)
		}
	}
	return result
}

// SplitCamelCase breaks camelCase and PascalCase identifiers at case
// transitions, keeping acronym runs whole: getUserById yields
// [get User By Id], parseHTTPRequest yields [parse HTTP Request].
func SplitCamelCase(s string) []string {
	// Empty slice, not nil, so callers can range and append uniformly.
	if s == "" {
		return []string{}
	}

	runes := []rune(s)
	var result []string
	segStart := 0

	for i := 1; i < len(runes); i++ {
		if !unicode.IsUpper(runes[i]) {
			continue
		}
		// An upper rune starts a new segment when it follows a lower rune
		// (wordBoundary) or ends an acronym run before a lower rune
		// (HTTPServer -> HTTP | Server).
		afterLower := unicode.IsLower(runes[i-1])
		beforeLower := i+1 < len(runes) && unicode.IsLower(runes[i+1])
		if afterLower || beforeLower {
			if i > segStart {
				result = append(result, string(runes[segStart:i]))
			}
			segStart = i
		}
	}
	if segStart < len(runes) {
		result = append(result, string(runes[segStart:]))
	}

	return result
}

// FilterStopWords drops tokens present in stopWords (compared
// lowercase); surviving tokens keep their original casing.
func FilterStopWords(tokens []string, stopWords map[string]struct{}) []string {
	result := make([]string, 0, len(tokens))
	for _, token := range tokens {
		if _, isStop := stopWords[strings.ToLower(token)]; !isStop {
			result = append(result, token)
		}
	}
	return result
}

// BuildStopWordMap lowers and indexes a stop-word list for O(1) lookup.
func BuildStopWordMap(stopWords []string) map[string]struct{} {
	m := make(map[string]struct{}, len(stopWords))
	for _, word := range stopWords {
		m[strings.ToLower(word)] = struct{}{}
	}
	return m
}
