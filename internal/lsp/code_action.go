package lsp

import (
	"encoding/json"
	"slices"
	"sync"
)

// Fix is a quick fix offered for a diagnostic.
type Fix struct {
	Title string
	Edits []TextEdit
}

// fixCache stores fixes for diagnostics, keyed by URI and diagnostic code.
type fixCache struct {
	mu    sync.RWMutex
	fixes map[string]map[string][]Fix // URI -> Code -> []Fix
}

func newFixCache() *fixCache {
	return &fixCache{fixes: make(map[string]map[string][]Fix)}
}

// replace swaps all cached fixes for a URI.
func (c *fixCache) replace(uri string, fixes map[string][]Fix) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if len(fixes) == 0 {
		delete(c.fixes, uri)
		return
	}
	c.fixes[uri] = fixes
}

// get retrieves fixes for a URI and diagnostic code.
func (c *fixCache) get(uri, code string) []Fix {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return c.fixes[uri][code]
}

// clearURI removes all cached fixes for a URI.
func (c *fixCache) clearURI(uri string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.fixes, uri)
}

// handleCodeAction handles the textDocument/codeAction request.
func (s *Server) handleCodeAction(msg *JSONRPCMessage) error {
	var params CodeActionParams
	if err := json.Unmarshal(msg.Params, &params); err != nil {
		s.sendResponse(msg.ID, nil, &JSONRPCError{Code: -32602, Message: err.Error()})
		return err
	}

	actions := s.getCodeActions(params)
	s.sendResponse(msg.ID, actions, nil)
	return nil
}

// getCodeActions returns quick fixes for the diagnostics in the request.
func (s *Server) getCodeActions(params CodeActionParams) []CodeAction {
	actions := []CodeAction{}

	if len(params.Context.Only) > 0 && !slices.Contains(params.Context.Only, CodeActionKindQuickFix) {
		return actions
	}

	for _, diag := range params.Context.Diagnostics {
		fixes := s.fixes.get(params.TextDocument.URI, diag.Code)
		for _, fix := range fixes {
			actions = append(actions, CodeAction{
				Title:       fix.Title,
				Kind:        CodeActionKindQuickFix,
				Diagnostics: []Diagnostic{diag},
				IsPreferred: len(fixes) == 1, // Single fix is preferred
				Edit: &WorkspaceEdit{
					Changes: map[string][]TextEdit{
						params.TextDocument.URI: fix.Edits,
					},
				},
			})
		}
	}

	return actions
}
