package lsp

import (
	"sort"
	"strings"
	"sync"

	"github.com/leapstack-labs/payjar/pkg/token"
)

// Document is an open PayJar source file.
type Document struct {
	URI     string
	Content string
	Version int

	lineStarts []int     // byte offset of each line start
	parsed     *Analysis // computed on first use, dropped on every change
}

func newDocument(uri, content string, version int) *Document {
	d := &Document{URI: uri, Version: version}
	d.setContent(content)
	return d
}

func (d *Document) setContent(content string) {
	d.Content = content
	d.parsed = nil
	d.lineStarts = []int{0}
	for i := strings.IndexByte(content, '\n'); i >= 0; {
		start := d.lineStarts[len(d.lineStarts)-1] + i + 1
		d.lineStarts = append(d.lineStarts, start)
		i = strings.IndexByte(content[start:], '\n')
	}
}

// Analysis returns the lexed and parsed form of the document content.
func (d *Document) Analysis() *Analysis {
	if d.parsed == nil {
		d.parsed = Analyze(d.Content)
	}
	return d.parsed
}

// DocumentStore holds the documents the client has open.
type DocumentStore struct {
	mu        sync.RWMutex
	documents map[string]*Document
}

// NewDocumentStore creates an empty store.
func NewDocumentStore() *DocumentStore {
	return &DocumentStore{documents: make(map[string]*Document)}
}

// Open adds a document, replacing any previous one with the same URI.
func (s *DocumentStore) Open(uri, content string, version int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.documents[uri] = newDocument(uri, content, version)
}

// Close forgets a document.
func (s *DocumentStore) Close(uri string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.documents, uri)
}

// Get returns the document for uri, or nil if it is not open.
func (s *DocumentStore) Get(uri string) *Document {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.documents[uri]
}

// Update replaces the content of an open document. Unknown URIs are ignored.
func (s *DocumentStore) Update(uri, content string, version int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if doc, ok := s.documents[uri]; ok {
		doc.Version = version
		doc.setContent(content)
	}
}

// PositionToOffset converts a line/character position to a byte offset,
// clamped to the document.
func (d *Document) PositionToOffset(pos Position) int {
	line := int(pos.Line)
	if line >= len(d.lineStarts) {
		return len(d.Content)
	}
	return min(d.lineStarts[line]+int(pos.Character), len(d.Content))
}

// OffsetToPosition converts a byte offset, clamped to the document, to a position.
func (d *Document) OffsetToPosition(offset int) Position {
	offset = max(0, min(offset, len(d.Content)))
	line := sort.SearchInts(d.lineStarts, offset+1) - 1
	return Position{
		Line:      uint32(line),
		Character: uint32(offset - d.lineStarts[line]),
	}
}

// OffsetRange converts a byte span to a Range.
func (d *Document) OffsetRange(start, end int) Range {
	return Range{Start: d.OffsetToPosition(start), End: d.OffsetToPosition(end)}
}

// TextBefore returns the content up to pos.
func (d *Document) TextBefore(pos Position) string {
	return d.Content[:d.PositionToOffset(pos)]
}

// WordAt returns the identifier or keyword under pos and its range. A cursor
// just past the end of a word still selects it. Words inside comments and
// string literals are not tokens and never match.
func (d *Document) WordAt(pos Position) (string, Range) {
	offset := d.PositionToOffset(pos)
	tokens := d.Analysis().Tokens

	// First token that ends after offset; the one before may end exactly at it.
	i := sort.Search(len(tokens), func(i int) bool { return tokens[i].End() > offset })
	for _, j := range []int{i, i - 1} {
		if j < 0 || j >= len(tokens) {
			continue
		}
		tok := tokens[j]
		if tok.Pos <= offset && offset <= tok.End() && isWord(tok) {
			return tok.Literal, d.OffsetRange(tok.Pos, tok.End())
		}
	}
	return "", Range{Start: pos, End: pos}
}

func isWord(tok token.Token) bool {
	return tok.Type == token.IDENT || token.IsKeyword(tok.Type)
}

// URIToPath converts a file:// URI to a file system path.
func URIToPath(uri string) string {
	return strings.TrimPrefix(uri, "file://")
}
