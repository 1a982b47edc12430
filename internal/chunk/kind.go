package chunk

// Kind classifies what a Chunk represents. Unlike SymbolType, which only
// covers tree-sitter symbols extracted from code, Kind spans every content
// type this package produces (code, data, markdown) so a single filter axis
// works across all of them.
type Kind string

const (
	KindFunction    Kind = "function"
	KindMethod      Kind = "method"
	KindInitializer Kind = "initializer"
	KindClass       Kind = "class"
	KindStruct      Kind = "struct"
	KindEnum        Kind = "enum"
	KindInterface   Kind = "interface"
	KindProtocol    Kind = "protocol"
	KindExtension   Kind = "extension"
	KindActor       Kind = "actor"
	KindMacro       Kind = "macro"
	KindTypealias   Kind = "typealias"
	KindVariable    Kind = "variable"
	KindConstant    Kind = "constant"
	KindNamespace   Kind = "namespace"
	KindField       Kind = "field"
	KindProperty    Kind = "property"
	KindModule      Kind = "module"

	KindObjCInterface      Kind = "objcInterface"
	KindObjCImplementation Kind = "objcImplementation"
	KindObjCMethod         Kind = "objcMethod"
	KindObjCProperty       Kind = "objcProperty"
	KindObjCCategory       Kind = "objcCategory"

	KindCFunction Kind = "cFunction"
	KindCStruct   Kind = "cStruct"
	KindCTypedef  Kind = "cTypedef"
	KindCMacro    Kind = "cMacro"

	KindJSONObject   Kind = "jsonObject"
	KindJSONArray    Kind = "jsonArray"
	KindYAMLMapping  Kind = "yamlMapping"
	KindYAMLSequence Kind = "yamlSequence"

	KindMarkdownSection   Kind = "markdownSection"
	KindMarkdownCodeBlock Kind = "markdownCodeBlock"

	KindComment  Kind = "comment"
	KindSection  Kind = "section"
	KindDocument Kind = "document"
	KindFile     Kind = "file"
	KindUnknown  Kind = "unknown"
)

// IsCallable reports whether the kind represents an invocable unit of code.
func (k Kind) IsCallable() bool {
	switch k {
	case KindFunction, KindMethod, KindInitializer, KindObjCMethod, KindCFunction:
		return true
	default:
		return false
	}
}

// IsTypeDeclaration reports whether the kind introduces a named type.
func (k Kind) IsTypeDeclaration() bool {
	switch k {
	case KindClass, KindStruct, KindEnum, KindProtocol, KindExtension, KindActor,
		KindTypealias, KindInterface,
		KindObjCInterface, KindObjCImplementation, KindObjCCategory,
		KindCStruct, KindCTypedef:
		return true
	default:
		return false
	}
}

// IsSwiftish reports whether the kind is characteristic of Swift's type
// system. The language registry in this package does not wire a Swift
// grammar, but the kind space is modeled for the full closed enum so a
// future Swift chunker (or a cross-language search filter) can rely on it.
func (k Kind) IsSwiftish() bool {
	switch k {
	case KindProtocol, KindExtension, KindActor, KindInitializer, KindTypealias:
		return true
	default:
		return false
	}
}

// IsObjC reports whether the kind is specific to Objective-C declarations.
func (k Kind) IsObjC() bool {
	switch k {
	case KindObjCInterface, KindObjCImplementation, KindObjCMethod, KindObjCProperty, KindObjCCategory:
		return true
	default:
		return false
	}
}

// IsC reports whether the kind is specific to C declarations.
func (k Kind) IsC() bool {
	switch k {
	case KindCFunction, KindCStruct, KindCTypedef, KindCMacro:
		return true
	default:
		return false
	}
}

// DeriveKind maps a language, the SymbolType assigned during extraction, and
// (for languages that need to disambiguate a single node type into several
// kinds) the originating AST node into a concrete Kind. node may be nil for
// callers that only have a SymbolType available, such as the line-splitting
// fallback paths.
func DeriveKind(language string, symType SymbolType, node *Node) Kind {
	switch language {
	case "go":
		return goKind(symType, node)
	case "c":
		return cKind(symType, node)
	case "cpp":
		return cppKind(symType, node)
	default:
		return genericKind(symType)
	}
}

func genericKind(symType SymbolType) Kind {
	switch symType {
	case SymbolTypeFunction:
		return KindFunction
	case SymbolTypeMethod:
		return KindMethod
	case SymbolTypeClass:
		return KindClass
	case SymbolTypeInterface:
		return KindInterface
	case SymbolTypeType:
		return KindTypealias
	case SymbolTypeVariable:
		return KindVariable
	case SymbolTypeConstant:
		return KindConstant
	case SymbolTypeMacro:
		return KindMacro
	default:
		return KindUnknown
	}
}

// goKind disambiguates Go's type_declaration node, which the language
// registry maps uniformly to SymbolTypeType, into struct/interface/typealias
// by inspecting the type_spec child's own child node type.
func goKind(symType SymbolType, node *Node) Kind {
	switch symType {
	case SymbolTypeFunction:
		return KindFunction
	case SymbolTypeMethod:
		return KindMethod
	case SymbolTypeType:
		return goTypeDeclKind(node)
	case SymbolTypeVariable:
		return KindVariable
	case SymbolTypeConstant:
		return KindConstant
	default:
		return KindUnknown
	}
}

func goTypeDeclKind(node *Node) Kind {
	if node == nil {
		return KindTypealias
	}
	spec := node.FindChildByType("type_spec")
	if spec == nil {
		return KindTypealias
	}
	if spec.FindChildByType("struct_type") != nil {
		return KindStruct
	}
	if spec.FindChildByType("interface_type") != nil {
		return KindInterface
	}
	return KindTypealias
}

func cKind(symType SymbolType, node *Node) Kind {
	switch symType {
	case SymbolTypeFunction:
		return KindCFunction
	case SymbolTypeType:
		return cTypeDeclKind(node)
	case SymbolTypeVariable:
		return KindVariable
	case SymbolTypeMacro:
		return KindCMacro
	default:
		return KindUnknown
	}
}

func cppKind(symType SymbolType, node *Node) Kind {
	switch symType {
	case SymbolTypeFunction, SymbolTypeMethod:
		return KindCFunction
	case SymbolTypeClass:
		return KindCStruct
	case SymbolTypeType:
		return cTypeDeclKind(node)
	case SymbolTypeVariable:
		return KindVariable
	case SymbolTypeMacro:
		return KindCMacro
	default:
		return KindUnknown
	}
}

// cTypeDeclKind distinguishes C/C++'s several TypeDefTypes node types, which
// (unlike Go) already name the distinction directly on the node itself.
func cTypeDeclKind(node *Node) Kind {
	if node == nil {
		return KindCTypedef
	}
	switch node.Type {
	case "struct_specifier", "union_specifier", "class_specifier":
		return KindCStruct
	case "enum_specifier":
		return KindEnum
	case "type_definition":
		return KindCTypedef
	default:
		return KindCTypedef
	}
}
