package lsp

import (
	"net/url"
	"slices"
	"strings"
	"sync"

	"github.com/cespare/xxhash/v2"

	"github.com/leapstack-labs/leapuast/pkg/cst"
	"github.com/leapstack-labs/leapuast/pkg/uast"
)

// Document represents an open text document in the editor together with its
// parsed trees. Documents are replaced, never mutated, on change.
type Document struct {
	URI     string // Document URI (file:///path/to/Main.kt)
	Content string // Full document content
	Version int    // Version number, incremented on each change
	Lines   []int  // Byte offsets of line starts for fast position lookups
	Hash    uint64 // xxhash of Content

	Root *cst.Element // nil when the parser rejected the content
	File *uast.File
	Err  error // parse failure, if any
}

// NewDocument creates an unparsed document.
func NewDocument(uri, content string, version int) *Document {
	return &Document{
		URI:     uri,
		Content: content,
		Version: version,
		Lines:   computeLineOffsets(content),
		Hash:    xxhash.Sum64String(content),
	}
}

// DocumentStore manages open documents in memory.
type DocumentStore struct {
	mu        sync.RWMutex
	documents map[string]*Document
}

// NewDocumentStore creates a new document store.
func NewDocumentStore() *DocumentStore {
	return &DocumentStore{
		documents: make(map[string]*Document),
	}
}

// Put stores doc under its URI and returns the document it replaced, if any.
func (s *DocumentStore) Put(doc *Document) *Document {
	s.mu.Lock()
	defer s.mu.Unlock()

	prev := s.documents[doc.URI]
	s.documents[doc.URI] = doc
	return prev
}

// Close removes a document from the store and returns it.
func (s *DocumentStore) Close(uri string) *Document {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc := s.documents[uri]
	delete(s.documents, uri)
	return doc
}

// Get retrieves a document by URI.
func (s *DocumentStore) Get(uri string) *Document {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.documents[uri]
}

// Owner returns the document whose tree is root, or nil.
func (s *DocumentStore) Owner(root cst.Node) *Document {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, doc := range s.documents {
		if doc.Root != nil && cst.Node(doc.Root) == root {
			return doc
		}
	}
	return nil
}

// List returns all open document URIs in sorted order.
func (s *DocumentStore) List() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	uris := make([]string, 0, len(s.documents))
	for uri := range s.documents {
		uris = append(uris, uri)
	}
	slices.Sort(uris)
	return uris
}

// computeLineOffsets calculates byte offsets for each line start.
func computeLineOffsets(content string) []int {
	offsets := []int{0}
	for i := 0; i < len(content); i++ {
		if content[i] == '\n' {
			offsets = append(offsets, i+1)
		}
	}
	return offsets
}

// PositionToOffset converts a Position to a byte offset in the document.
func (d *Document) PositionToOffset(pos Position) int {
	if d == nil || len(d.Lines) == 0 {
		return 0
	}

	line := int(pos.Line)
	if line >= len(d.Lines) {
		return len(d.Content)
	}

	offset := d.Lines[line] + int(pos.Character)
	if offset > len(d.Content) {
		return len(d.Content)
	}
	return offset
}

// OffsetToPosition converts a byte offset to a Position.
func (d *Document) OffsetToPosition(offset int) Position {
	if d == nil || len(d.Lines) == 0 {
		return Position{}
	}
	offset = min(max(offset, 0), len(d.Content))

	line, found := slices.BinarySearch(d.Lines, offset)
	if !found {
		line--
	}
	return Position{
		Line:      uint32(line),
		Character: uint32(offset - d.Lines[line]),
	}
}

// SourcePosition converts a zero-based editor position to a one-based
// source position.
func (d *Document) SourcePosition(pos Position) cst.Position {
	return cst.Position{
		Line:   int(pos.Line) + 1,
		Column: int(pos.Character) + 1,
		Offset: d.PositionToOffset(pos),
	}
}

// editorPosition converts a one-based source position to a zero-based
// editor position. Invalid positions map to the document start.
func editorPosition(p cst.Position) Position {
	if !p.IsValid() {
		return Position{}
	}
	return Position{
		Line:      uint32(p.Line - 1),
		Character: uint32(max(p.Column-1, 0)),
	}
}

// spanRange converts a source span to an editor range.
func spanRange(span cst.Span) Range {
	return Range{Start: editorPosition(span.Start), End: editorPosition(span.End)}
}

// URIToPath converts a file:// URI to a file system path.
func URIToPath(uri string) string {
	const prefix = "file://"
	if !strings.HasPrefix(uri, prefix) {
		return uri
	}
	path := uri[len(prefix):]
	if unescaped, err := url.PathUnescape(path); err == nil {
		return unescaped
	}
	return path
}

// PathToURI converts a file system path to a file:// URI.
func PathToURI(path string) string {
	if strings.HasPrefix(path, "file://") {
		return path
	}
	return "file://" + path
}
