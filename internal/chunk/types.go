package chunk

import (
	"context"
	"time"
)

// Chunk size defaults (based on 2025 RAG research)
const (
	DefaultMaxChunkTokens = 512 // Optimal for 85-90% recall
	DefaultOverlapTokens  = 64  // ~12.5% overlap
	MinChunkTokens        = 100 // Minimum viable chunk
	TokensPerChar         = 4   // Rough approximation: 4 chars = 1 token
)

// ContentType represents the type of content in a chunk
type ContentType string

const (
	ContentTypeCode     ContentType = "code"
	ContentTypeMarkdown ContentType = "markdown"
	ContentTypeText     ContentType = "text"
)

// Chunk is a retrievable unit of content.
//
// ID and ContentHash are pure functions of (FilePath, RawContent) — see
// generateChunkID. Reformatting that leaves RawContent byte-identical keeps
// the same ID; any change to RawContent produces a new ID. FileHash is the
// hash of the whole file at ingestion time and is copied onto every chunk
// produced from that file, so callers can tell which chunks came from the
// same read without re-reading the file.
type Chunk struct {
	ID          string            // SHA256(file_path + ":" + ContentHash)[:16]
	ContentHash string            // SHA256(RawContent)[:16]
	FileHash    string            // SHA256(whole file content)[:16], shared by every chunk of the file
	FilePath    string            // Relative to project root
	Content     string            // Full content with context
	RawContent  string            // Just the symbol, no context (code only)
	Context     string            // Imports, package decl (code only)
	ContentType ContentType       // code, markdown, text
	Kind        Kind              // Closed classification of what this chunk represents
	Language    string            // go, typescript, python, etc.
	StartLine   int               // 1-indexed
	EndLine     int               // Inclusive
	Symbols     []*Symbol         // Functions, classes, etc.
	References  []string          // Identifier names referenced (not defined) in this chunk
	Metadata    map[string]string // Custom metadata
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// InfoSnippet is a documentation-only sibling of Chunk: prose extracted at
// section granularity (markdown headings, paragraph fallback; frontmatter
// yields no snippet)
// that carries no symbols, references, or embedding of its own. Breadcrumb
// records the heading ancestry the snippet was found under, joined the same
// way header paths are built during section parsing. ChunkID optionally
// links the snippet to a Chunk extracted from the same section (for example
// a fenced code block), when one exists.
type InfoSnippet struct {
	ID         string // SHA256(file_path + "#snippet:" + SHA256(Content)[:16])[:16]
	ChunkID    string // Optional: ID of a related Chunk carved from the same section
	FilePath   string // Relative to project root
	Content    string // Prose content of the snippet
	Breadcrumb string // " > "-joined heading ancestry, empty for no-header prose
	StartLine  int    // 1-indexed
	EndLine    int    // Inclusive
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// FileInput is input for the Chunker interface
type FileInput struct {
	Path     string // Relative path
	Content  []byte // File content
	Language string // go, typescript, python, etc.
}

// Chunker is the interface for splitting files into chunks
type Chunker interface {
	// Chunk splits a file into semantic chunks and, where the content is
	// prose rather than code, documentation-only InfoSnippets. A chunker
	// that never produces snippets (e.g. CodeChunker) always returns a nil
	// snippet slice.
	Chunk(ctx context.Context, file *FileInput) ([]*Chunk, []*InfoSnippet, error)

	// SupportedExtensions returns file extensions this chunker handles
	SupportedExtensions() []string
}

// SymbolType represents the kind of code symbol
type SymbolType string

const (
	SymbolTypeFunction  SymbolType = "function"
	SymbolTypeClass     SymbolType = "class"
	SymbolTypeInterface SymbolType = "interface"
	SymbolTypeType      SymbolType = "type"
	SymbolTypeVariable  SymbolType = "variable"
	SymbolTypeConstant  SymbolType = "constant"
	SymbolTypeMethod    SymbolType = "method"
	SymbolTypeMacro     SymbolType = "macro"
)

// Symbol represents a code symbol extracted from parsing
type Symbol struct {
	Name       string
	Type       SymbolType
	StartLine  int
	EndLine    int
	Signature  string
	DocComment string
}

// Tree represents a parsed AST
type Tree struct {
	Root     *Node
	Source   []byte
	Language string
}

// Node represents a node in the AST
type Node struct {
	Type       string
	StartByte  uint32
	EndByte    uint32
	StartPoint Point
	EndPoint   Point
	Children   []*Node
	HasError   bool
}

// Point represents a position in the source code
type Point struct {
	Row    uint32 // 0-indexed line number
	Column uint32
}

// LanguageConfig holds configuration for a supported language
type LanguageConfig struct {
	Name       string
	Extensions []string

	// Node types that indicate function declarations
	FunctionTypes []string

	// Node types that indicate class/struct definitions
	ClassTypes []string

	// Node types that indicate interface definitions
	InterfaceTypes []string

	// Node types that indicate method definitions
	MethodTypes []string

	// Node types that indicate type definitions
	TypeDefTypes []string

	// Node types that indicate constant declarations
	ConstantTypes []string

	// Node types that indicate variable declarations
	VariableTypes []string

	// Node types that indicate preprocessor macro definitions (C/C++ only)
	MacroTypes []string

	// Node type for name identifier
	NameField string
}
