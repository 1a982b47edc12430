package chunk

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// DataChunker splits structured JSON/YAML documents at top-level key
// boundaries, rather than by line count; nested keys stay inside their
// top-level key's chunk, and a root that is not a mapping becomes a single
// chunk. Each chunk's
// Metadata["kind"] records which structural role it played
// (jsonObject, jsonArray, yamlMapping, yamlSequence) for callers that
// want to filter on it, mirroring the way CodeChunker records symbol
// kinds on its chunks.
type DataChunker struct{}

// NewDataChunker creates a chunker for JSON and YAML documents.
func NewDataChunker() *DataChunker {
	return &DataChunker{}
}

// SupportedExtensions returns the file extensions this chunker handles.
func (c *DataChunker) SupportedExtensions() []string {
	return []string{".json", ".yaml", ".yml"}
}

// Chunk splits a JSON or YAML file into per-key chunks. DataChunker never
// produces InfoSnippets; the second return value is always nil.
func (c *DataChunker) Chunk(ctx context.Context, file *FileInput) ([]*Chunk, []*InfoSnippet, error) {
	var chunks []*Chunk
	var err error

	switch file.Language {
	case "json":
		chunks, err = c.chunkJSON(file)
	case "yaml":
		chunks, err = c.chunkYAML(file)
	default:
		return nil, nil, nil
	}
	if err != nil {
		return nil, nil, err
	}

	finalizeChunks(chunks, file)
	return chunks, nil, nil
}

// dataKind maps the structural role recorded in Metadata["kind"] onto the
// closed Kind enum. Scalar values have no dedicated variant and classify as
// KindUnknown.
func dataKind(kind string) Kind {
	switch kind {
	case "jsonObject":
		return KindJSONObject
	case "jsonArray":
		return KindJSONArray
	case "yamlMapping":
		return KindYAMLMapping
	case "yamlSequence":
		return KindYAMLSequence
	default:
		return KindUnknown
	}
}

func (c *DataChunker) chunkJSON(file *FileInput) ([]*Chunk, error) {
	var doc any
	if err := json.Unmarshal(file.Content, &doc); err != nil {
		return nil, fmt.Errorf("invalid JSON: %w", err)
	}

	now := time.Now()
	switch v := doc.(type) {
	case map[string]any:
		return c.chunkKeyedJSON(file, v, now), nil
	case []any:
		return []*Chunk{c.jsonChunk(file, "", v, "jsonArray", 1, now)}, nil
	default:
		return []*Chunk{c.jsonChunk(file, "", v, "jsonValue", 1, now)}, nil
	}
}

func (c *DataChunker) chunkKeyedJSON(file *FileInput, doc map[string]any, now time.Time) []*Chunk {
	keys := sortedKeys(doc)
	chunks := make([]*Chunk, 0, len(keys))
	for _, key := range keys {
		kind := "jsonValue"
		switch doc[key].(type) {
		case map[string]any:
			kind = "jsonObject"
		case []any:
			kind = "jsonArray"
		}
		chunks = append(chunks, c.jsonChunk(file, key, doc[key], kind, 1, now))
	}
	return chunks
}

func (c *DataChunker) jsonChunk(file *FileInput, key string, value any, kind string, level int, now time.Time) *Chunk {
	body, _ := json.MarshalIndent(value, "", "  ")
	label := key
	if label == "" {
		label = "$"
	}
	content := fmt.Sprintf("%s:\n%s", label, body)

	return &Chunk{
		ID:          generateChunkID(file.Path, content),
		FilePath:    file.Path,
		Content:     content,
		RawContent:  content,
		ContentType: ContentTypeText,
		Kind:        dataKind(kind),
		Language:    "json",
		StartLine:   1,
		EndLine:     strings.Count(content, "\n") + 1,
		Symbols:     []*Symbol{{Name: label, Type: SymbolTypeConstant}},
		Metadata:    map[string]string{"kind": kind, "key": label, "level": fmt.Sprint(level)},
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

func (c *DataChunker) chunkYAML(file *FileInput) ([]*Chunk, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(file.Content, &doc); err != nil {
		return nil, fmt.Errorf("invalid YAML: %w", err)
	}
	if len(doc.Content) == 0 {
		return nil, nil
	}

	now := time.Now()
	root := doc.Content[0]

	if root.Kind == yaml.MappingNode {
		return c.chunkYAMLMapping(file, root, now), nil
	}
	kind := "yamlScalar"
	if root.Kind == yaml.SequenceNode {
		kind = "yamlSequence"
	}
	return []*Chunk{c.yamlChunk(file, "$", root, kind, now)}, nil
}

func (c *DataChunker) chunkYAMLMapping(file *FileInput, mapping *yaml.Node, now time.Time) []*Chunk {
	var chunks []*Chunk
	for i := 0; i+1 < len(mapping.Content); i += 2 {
		keyNode := mapping.Content[i]
		valNode := mapping.Content[i+1]
		kind := "yamlScalar"
		switch valNode.Kind {
		case yaml.MappingNode:
			kind = "yamlMapping"
		case yaml.SequenceNode:
			kind = "yamlSequence"
		}
		chunks = append(chunks, c.yamlChunk(file, keyNode.Value, valNode, kind, now))
	}
	return chunks
}

func (c *DataChunker) yamlChunk(file *FileInput, key string, node *yaml.Node, kind string, now time.Time) *Chunk {
	body, _ := yaml.Marshal(node)
	content := fmt.Sprintf("%s:\n%s", key, body)

	return &Chunk{
		ID:          generateChunkID(file.Path, content),
		FilePath:    file.Path,
		Content:     content,
		RawContent:  content,
		ContentType: ContentTypeText,
		Kind:        dataKind(kind),
		Language:    "yaml",
		StartLine:   node.Line,
		EndLine:     node.Line + strings.Count(string(body), "\n"),
		Symbols:     []*Symbol{{Name: key, Type: SymbolTypeConstant}},
		Metadata:    map[string]string{"kind": kind, "key": key},
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

