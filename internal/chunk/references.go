package chunk

import "regexp"

// identifierPattern matches bare identifiers across the supported
// languages: letters/digits/underscore, not starting with a digit.
var identifierPattern = regexp.MustCompile(`\b[A-Za-z_][A-Za-z0-9_]*\b`)

// commonKeywords is a denylist of keywords/builtins shared across Go,
// TypeScript/JavaScript, and Python that would otherwise show up as noise
// in every chunk's reference list.
var commonKeywords = map[string]struct{}{
	"if": {}, "else": {}, "for": {}, "while": {}, "return": {}, "break": {},
	"continue": {}, "func": {}, "function": {}, "def": {}, "class": {},
	"import": {}, "from": {}, "package": {}, "var": {}, "let": {}, "const": {},
	"true": {}, "false": {}, "nil": {}, "null": {}, "none": {}, "True": {},
	"False": {}, "None": {}, "self": {}, "this": {}, "new": {}, "async": {},
	"await": {}, "try": {}, "except": {}, "catch": {}, "finally": {},
	"switch": {}, "case": {}, "default": {}, "interface": {}, "type": {},
	"struct": {}, "enum": {}, "export": {}, "public": {}, "private": {},
	"static": {}, "void": {}, "int": {}, "string": {}, "bool": {}, "error": {},
}

// extractReferences collects identifier names mentioned in a chunk's raw
// content that are not among the chunk's own declared symbols — a
// lightweight, AST-free approximation of "what does this chunk refer to",
// used by the search engine's multi-hop expansion to find definitions for
// names a chunk merely uses. Declared names are excluded so a chunk never
// lists itself as a reference to itself.
func extractReferences(ch *Chunk) []string {
	declared := make(map[string]struct{}, len(ch.Symbols))
	for _, s := range ch.Symbols {
		declared[s.Name] = struct{}{}
	}

	seen := make(map[string]struct{})
	var refs []string
	for _, tok := range identifierPattern.FindAllString(ch.RawContent, -1) {
		if len(tok) < 3 {
			continue
		}
		if _, isKeyword := commonKeywords[tok]; isKeyword {
			continue
		}
		if _, isDeclared := declared[tok]; isDeclared {
			continue
		}
		if _, dup := seen[tok]; dup {
			continue
		}
		seen[tok] = struct{}{}
		refs = append(refs, tok)
	}
	return refs
}
