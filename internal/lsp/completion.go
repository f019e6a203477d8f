package lsp

import (
	"cmp"
	"slices"
	"strings"
)

// CompletionContextType describes what kind of completion context we're in.
type CompletionContextType int

// Completion context type constants.
const (
	ContextStatement    CompletionContextType = iota
	ContextMemberAccess                       // After "obj."
	ContextNewClass                           // After "NEW "
)

// keywordDocs documents each keyword for completion and hover.
var keywordDocs = map[string]string{
	"public":    "Starts the program header: `public class Name main(@self) { ... }`.",
	"class":     "Defines a class with `let`/`const` fields and `func` methods. A method named `init` is the constructor.",
	"main":      "Marks the program's main definition in the header.",
	"self":      "The instance a method was called on. Methods take `self` as their first parameter.",
	"innerSelf": "Alias of `self` inside the currently executing method.",
	"func":      "Defines a function, or a method inside a class body.",
	"println":   "Prints the string form of a value followed by a newline.",
	"pass":      "Does nothing.",
	"let":       "Declares a mutable variable or field.",
	"const":     "Declares a constant. Reassigning it is a runtime error.",
	"var":       "Declares a mutable variable.",
	"NEW":       "Creates an instance: `NEW ClassName(args)`.",
	"readln":    "Reads one line of input, or null when input is exhausted.",
	"return":    "Returns a value from the enclosing function or method.",
}

// keywordSnippets are inserted instead of the bare keyword when the client
// supports snippets.
var keywordSnippets = map[string]string{
	"println": "println($1);",
	"func":    "func ${1:name}($2) {\n\t$0\n}",
	"class":   "class ${1:Name} {\n\t$0\n}",
	"NEW":     "NEW ${1:ClassName}($2)",
	"readln":  "readln($1)",
	"return":  "return $1;",
	"pass":    "pass;",
}

// getCompletions returns completion items for the given position.
func (s *Server) getCompletions(params CompletionParams) []CompletionItem {
	doc := s.documents.Get(params.TextDocument.URI)
	if doc == nil {
		return nil
	}

	ctx := detectContext(doc, params.Position)
	prefix := extractPrefix(doc, params.Position)
	a := doc.Analysis()

	var items []CompletionItem
	seen := make(map[string]bool)
	add := func(item CompletionItem) {
		if seen[item.Label] || !hasPrefixFold(item.Label, prefix) {
			return
		}
		seen[item.Label] = true
		items = append(items, item)
	}

	switch ctx {
	case ContextMemberAccess:
		for _, sym := range a.Symbols {
			switch sym.Kind {
			case DeclMethod:
				if sym.Name == "init" {
					continue
				}
				add(CompletionItem{Label: sym.Name, Kind: CompletionItemKindMethod, Detail: sym.Signature()})
			case DeclField:
				add(CompletionItem{Label: sym.Name, Kind: CompletionItemKindField, Detail: sym.Signature()})
			}
		}

	case ContextNewClass:
		for _, sym := range a.Symbols {
			if sym.Kind == DeclClass {
				add(CompletionItem{Label: sym.Name, Kind: CompletionItemKindClass, Detail: sym.Signature()})
			}
		}

	default:
		for _, sym := range a.Symbols {
			switch sym.Kind {
			case DeclFunction:
				add(CompletionItem{Label: sym.Name, Kind: CompletionItemKindFunction, Detail: sym.Signature()})
			case DeclVariable, DeclParameter:
				add(CompletionItem{Label: sym.Name, Kind: CompletionItemKindVariable, Detail: sym.Signature()})
			case DeclConstant:
				add(CompletionItem{Label: sym.Name, Kind: CompletionItemKindConstant, Detail: sym.Signature()})
			}
		}
		for _, kw := range sortedKeywords() {
			item := CompletionItem{
				Label:         kw,
				Kind:          CompletionItemKindKeyword,
				Documentation: keywordDocs[kw],
			}
			if snippet, ok := keywordSnippets[kw]; ok && s.snippetSupport {
				item.InsertText = snippet
				item.InsertTextFormat = InsertTextFormatSnippet
			}
			add(item)
		}
	}

	return items
}

func sortedKeywords() []string {
	kws := make([]string, 0, len(keywordDocs))
	for kw := range keywordDocs {
		kws = append(kws, kw)
	}
	slices.SortFunc(kws, func(a, b string) int {
		return cmp.Compare(strings.ToLower(a), strings.ToLower(b))
	})
	return kws
}

func hasPrefixFold(s, prefix string) bool {
	return len(s) >= len(prefix) && strings.EqualFold(s[:len(prefix)], prefix)
}

// detectContext classifies the text before the cursor.
func detectContext(doc *Document, pos Position) CompletionContextType {
	before := doc.TextBefore(pos)

	// Skip the identifier being typed.
	i := len(before)
	for i > 0 && isIdentChar(before[i-1]) {
		i--
	}
	if i > 0 && before[i-1] == '.' {
		return ContextMemberAccess
	}

	rest := strings.TrimRight(before[:i], " \t\r\n")
	if extractIdentifierBefore(rest, len(rest)) == "NEW" {
		return ContextNewClass
	}
	return ContextStatement
}

// extractPrefix returns the partial identifier before the cursor.
func extractPrefix(doc *Document, pos Position) string {
	before := doc.TextBefore(pos)
	return extractIdentifierBefore(before, len(before))
}

// extractIdentifierBefore returns the identifier ending at pos in s.
func extractIdentifierBefore(s string, pos int) string {
	start := pos
	for start > 0 && isIdentChar(s[start-1]) {
		start--
	}
	return s[start:pos]
}

func isIdentChar(c byte) bool {
	return (c >= 'a' && c <= 'z') ||
		(c >= 'A' && c <= 'Z') ||
		(c >= '0' && c <= '9') ||
		c == '_'
}

// getHover returns documentation for the keyword or declaration under the cursor.
func (s *Server) getHover(params HoverParams) *Hover {
	doc := s.documents.Get(params.TextDocument.URI)
	if doc == nil {
		return nil
	}

	word, wordRange := doc.WordAt(params.Position)
	if word == "" {
		return nil
	}

	if docText, ok := keywordDocs[word]; ok {
		return &Hover{
			Contents: MarkupContent{Kind: MarkupKindMarkdown, Value: "**" + word + "**\n\n" + docText},
			Range:    &wordRange,
		}
	}

	symbols := doc.Analysis().Lookup(word)
	if len(symbols) == 0 {
		return nil
	}

	var b strings.Builder
	b.WriteString("```payjar\n")
	for _, sym := range symbols {
		b.WriteString(sym.Signature())
		b.WriteString("\n")
	}
	b.WriteString("```")

	return &Hover{
		Contents: MarkupContent{Kind: MarkupKindMarkdown, Value: b.String()},
		Range:    &wordRange,
	}
}

// getDefinition returns the declaration of the identifier under the cursor.
func (s *Server) getDefinition(params DefinitionParams) *Location {
	doc := s.documents.Get(params.TextDocument.URI)
	if doc == nil {
		return nil
	}

	word, _ := doc.WordAt(params.Position)
	if word == "" {
		return nil
	}

	symbols := doc.Analysis().Lookup(word)
	if len(symbols) == 0 {
		return nil
	}
	sym := symbols[0]
	return &Location{
		URI:   params.TextDocument.URI,
		Range: doc.OffsetRange(sym.Pos, sym.Pos+len(sym.Name)),
	}
}

// getDocumentSymbols returns the outline of a document: classes with their
// fields and methods, free functions and variables.
func (s *Server) getDocumentSymbols(params DocumentSymbolParams) []DocumentSymbol {
	doc := s.documents.Get(params.TextDocument.URI)
	if doc == nil {
		return nil
	}

	outline := []DocumentSymbol{}
	classes := make(map[string]int) // class name -> index in outline

	for _, sym := range doc.Analysis().Symbols {
		entry := DocumentSymbol{
			Name:           sym.Name,
			Detail:         sym.Signature(),
			Range:          doc.OffsetRange(sym.Pos, max(sym.End, sym.Pos+len(sym.Name))),
			SelectionRange: doc.OffsetRange(sym.Pos, sym.Pos+len(sym.Name)),
		}

		switch sym.Kind {
		case DeclClass:
			entry.Kind = SymbolKindClass
			classes[sym.Name] = len(outline)
			outline = append(outline, entry)
		case DeclMethod, DeclField:
			entry.Kind = SymbolKindMethod
			if sym.Kind == DeclField {
				entry.Kind = SymbolKindField
			}
			if i, ok := classes[sym.Container]; ok {
				outline[i].Children = append(outline[i].Children, entry)
			}
		case DeclFunction:
			entry.Kind = SymbolKindFunction
			outline = append(outline, entry)
		case DeclVariable:
			entry.Kind = SymbolKindVariable
			outline = append(outline, entry)
		case DeclConstant:
			entry.Kind = SymbolKindConstant
			outline = append(outline, entry)
		}
	}
	return outline
}
