package chunk

import (
	"strings"
)

// SymbolExtractor turns a parsed tree into the Symbol records attached
// to chunks: name, classification, line span, signature, and the doc
// comment directly above the declaration.
type SymbolExtractor struct {
	registry *LanguageRegistry
}

// NewSymbolExtractor creates an extractor over the default language
// registry.
func NewSymbolExtractor() *SymbolExtractor {
	return &SymbolExtractor{registry: DefaultRegistry()}
}

// NewSymbolExtractorWithRegistry creates an extractor over a custom
// registry, so the chunker and extractor share one registry instance.
func NewSymbolExtractorWithRegistry(registry *LanguageRegistry) *SymbolExtractor {
	return &SymbolExtractor{registry: registry}
}

// Extract walks the tree and collects a Symbol for every node whose
// type the language config classifies as a declaration.
func (e *SymbolExtractor) Extract(tree *Tree, source []byte) []*Symbol {
	// Empty slice, not nil, so callers can range and append uniformly.
	if tree == nil || tree.Root == nil {
		return []*Symbol{}
	}

	config, ok := e.registry.GetByName(tree.Language)
	if !ok {
		return []*Symbol{}
	}

	var symbols []*Symbol
	tree.Root.Walk(func(n *Node) bool {
		if symbol := e.extractSymbolFromNode(n, source, config, tree.Language); symbol != nil {
			symbols = append(symbols, symbol)
		}
		return true
	})

	return symbols
}

// classifyNode maps a node type onto a SymbolType using the language
// config's declaration lists. The lists are checked most-specific
// first so a node type appearing in several lists resolves stably.
func classifyNode(nodeType string, config *LanguageConfig) (SymbolType, bool) {
	groups := []struct {
		types   []string
		symType SymbolType
	}{
		{config.FunctionTypes, SymbolTypeFunction},
		{config.MethodTypes, SymbolTypeMethod},
		{config.ClassTypes, SymbolTypeClass},
		{config.InterfaceTypes, SymbolTypeInterface},
		{config.TypeDefTypes, SymbolTypeType},
		{config.ConstantTypes, SymbolTypeConstant},
		{config.VariableTypes, SymbolTypeVariable},
		{config.MacroTypes, SymbolTypeMacro},
	}
	for _, g := range groups {
		for _, t := range g.types {
			if nodeType == t {
				return g.symType, true
			}
		}
	}
	return "", false
}

func (e *SymbolExtractor) extractSymbolFromNode(n *Node, source []byte, config *LanguageConfig, language string) *Symbol {
	symbolType, found := classifyNode(n.Type, config)
	if !found {
		// JS/TS function values bound with const/let/var don't appear in
		// the declaration lists; they need their own detection.
		return e.extractSpecialSymbol(n, source, language)
	}

	name := e.extractName(n, source, config, language)
	if name == "" {
		return nil
	}

	return &Symbol{
		Name:       name,
		Type:       symbolType,
		StartLine:  int(n.StartPoint.Row) + 1,
		EndLine:    int(n.EndPoint.Row) + 1,
		Signature:  e.extractSignature(n, source, symbolType, language),
		DocComment: e.extractDocComment(n, source, language),
	}
}

// firstChildOfType returns the content of n's first direct child with
// the given node type, or "".
func firstChildOfType(n *Node, source []byte, nodeType string) string {
	for _, child := range n.Children {
		if child.Type == nodeType {
			return child.GetContent(source)
		}
	}
	return ""
}

// grandchildOfTypes returns the content of the first grandchild with
// grandchildType under the first child with childType, or "".
func grandchildOfTypes(n *Node, source []byte, childType, grandchildType string) string {
	for _, child := range n.Children {
		if child.Type != childType {
			continue
		}
		for _, grandchild := range child.Children {
			if grandchild.Type == grandchildType {
				return grandchild.GetContent(source)
			}
		}
	}
	return ""
}

// extractName resolves the declared name of a symbol node. The shape of
// that lookup is per-language: Go nests names inside spec nodes,
// JS/TS inside variable declarators.
func (e *SymbolExtractor) extractName(n *Node, source []byte, config *LanguageConfig, language string) string {
	switch language {
	case "go":
		return e.extractGoName(n, source)
	case "typescript", "tsx", "javascript", "jsx":
		return e.extractJSName(n, source)
	case "python":
		return firstChildOfType(n, source, "identifier")
	}
	return firstChildOfType(n, source, "identifier")
}

func (e *SymbolExtractor) extractGoName(n *Node, source []byte) string {
	switch n.Type {
	case "function_declaration":
		return firstChildOfType(n, source, "identifier")
	case "method_declaration":
		// Method names are field_identifiers, not identifiers.
		return firstChildOfType(n, source, "field_identifier")
	case "type_declaration":
		return grandchildOfTypes(n, source, "type_spec", "type_identifier")
	case "const_declaration":
		// const Name = v, or a grouped const ( ... ) block: the first
		// spec's name stands for the declaration.
		return grandchildOfTypes(n, source, "const_spec", "identifier")
	case "var_declaration":
		return grandchildOfTypes(n, source, "var_spec", "identifier")
	}
	return ""
}

func (e *SymbolExtractor) extractJSName(n *Node, source []byte) string {
	if n.Type == "lexical_declaration" || n.Type == "variable_declaration" {
		return grandchildOfTypes(n, source, "variable_declarator", "identifier")
	}
	if name := firstChildOfType(n, source, "identifier"); name != "" {
		return name
	}
	return firstChildOfType(n, source, "type_identifier")
}

// extractSpecialSymbol detects JS/TS function values bound to a
// variable (const f = () => {}, const g = function() {}) and reports
// them as functions rather than constants.
func (e *SymbolExtractor) extractSpecialSymbol(n *Node, source []byte, language string) *Symbol {
	switch language {
	case "typescript", "tsx", "javascript", "jsx":
	default:
		return nil
	}
	if n.Type != "lexical_declaration" && n.Type != "variable_declaration" {
		return nil
	}

	for _, child := range n.Children {
		if child.Type != "variable_declarator" {
			continue
		}

		var name string
		var hasFunction bool
		for _, grandchild := range child.Children {
			switch grandchild.Type {
			case "identifier":
				name = grandchild.GetContent(source)
			case "arrow_function", "function", "function_expression":
				hasFunction = true
			}
		}

		if name != "" && hasFunction {
			return &Symbol{
				Name:      name,
				Type:      SymbolTypeFunction,
				StartLine: int(n.StartPoint.Row) + 1,
				EndLine:   int(n.EndPoint.Row) + 1,
				Signature: e.extractFunctionSignature(n.GetContent(source), "javascript"),
			}
		}
	}
	return nil
}

// extractDocComment pulls the single line comment directly above a
// declaration. Multi-line comment runs are assembled by the chunker's
// own doc-comment pass; this keeps the per-symbol record to the lead
// line. Python docstrings live inside the body and are not handled
// here.
func (e *SymbolExtractor) extractDocComment(n *Node, source []byte, language string) string {
	if n.StartPoint.Row == 0 {
		return ""
	}

	lineStart := int(n.StartByte)
	for lineStart > 0 && source[lineStart-1] != '\n' {
		lineStart--
	}
	if lineStart <= 1 {
		return ""
	}

	prevLineEnd := lineStart - 1
	prevLineStart := prevLineEnd - 1
	for prevLineStart > 0 && source[prevLineStart-1] != '\n' {
		prevLineStart--
	}
	prevLine := strings.TrimSpace(string(source[prevLineStart:prevLineEnd]))

	switch language {
	case "go", "javascript", "jsx", "typescript", "tsx":
		if strings.HasPrefix(prevLine, "//") {
			return strings.TrimPrefix(prevLine, "//")
		}
	}
	return ""
}

// extractSignature produces the one-line interface of a declaration,
// which gives embeddings and result displays the symbol's shape without
// its body.
func (e *SymbolExtractor) extractSignature(n *Node, source []byte, symbolType SymbolType, language string) string {
	content := n.GetContent(source)
	if content == "" {
		return ""
	}

	switch symbolType {
	case SymbolTypeFunction, SymbolTypeMethod:
		return e.extractFunctionSignature(content, language)
	case SymbolTypeClass, SymbolTypeInterface, SymbolTypeType:
		return e.extractTypeSignature(content, language)
	}
	return ""
}

// firstLineBeforeBrace trims a declaration to its first line, cut at
// the opening brace when one is present on that line.
func firstLineBeforeBrace(content string) string {
	line := content
	if idx := strings.IndexByte(line, '\n'); idx != -1 {
		line = line[:idx]
	}
	line = strings.TrimSpace(line)
	if idx := strings.IndexByte(line, '{'); idx != -1 {
		line = strings.TrimSpace(line[:idx])
	}
	return line
}

func (e *SymbolExtractor) extractFunctionSignature(content, language string) string {
	switch language {
	case "python":
		// def name(params): — the colon line is the signature.
		line := content
		if idx := strings.IndexByte(line, '\n'); idx != -1 {
			line = line[:idx]
		}
		return strings.TrimSpace(line)
	default:
		return firstLineBeforeBrace(content)
	}
}

func (e *SymbolExtractor) extractTypeSignature(content, language string) string {
	if language == "python" {
		line := content
		if idx := strings.IndexByte(line, '\n'); idx != -1 {
			line = line[:idx]
		}
		return strings.TrimSpace(line)
	}
	return firstLineBeforeBrace(content)
}
