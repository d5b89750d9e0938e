// Package lsp implements LSP protocol handlers.
package lsp

import (
	"log"

	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/CWBudde/go-elm-lsp/internal/document"
	"github.com/CWBudde/go-elm-lsp/internal/server"
)

// DidOpen handles the textDocument/didOpen notification.
// This is sent when a document is opened in the editor.
func DidOpen(context *glsp.Context, params *protocol.DidOpenTextDocumentParams) error {
	srv := getServer("DidOpen")
	if srv == nil {
		return nil
	}

	uri := params.TextDocument.URI
	text := params.TextDocument.Text
	languageID := params.TextDocument.LanguageID
	version := int(params.TextDocument.Version)

	log.Printf("Document opened: %s (version %d, language %s, %d bytes)\n",
		uri, version, languageID, len(text))

	doc := &server.Document{
		URI:        uri,
		Text:       text,
		Version:    version,
		LanguageID: languageID,
	}
	srv.Documents().Set(uri, doc)

	// Warm the AST cache; a failed parse is not cached.
	if file := srv.ParseService().Parse(text); file != nil {
		srv.ASTCache().Put(uri, version, file)
	}

	scheduleDiagnostics(context, uri)

	return nil
}

// DidChange handles the textDocument/didChange notification. The server
// advertises full sync; ranged changes from a client are still applied.
func DidChange(context *glsp.Context, params *protocol.DidChangeTextDocumentParams) error {
	srv := getServer("DidChange")
	if srv == nil {
		return nil
	}

	uri := params.TextDocument.URI
	version := int(params.TextDocument.Version)

	doc, exists := srv.Documents().Get(uri)
	if !exists {
		log.Printf("Warning: Document not found for didChange: %s\n", uri)
		return nil
	}

	newText := doc.Text
	for i, changeInterface := range params.ContentChanges {
		change, ok := changeInterface.(protocol.TextDocumentContentChangeEvent)
		if !ok {
			if whole, ok := changeInterface.(protocol.TextDocumentContentChangeEventWhole); ok {
				newText = whole.Text
				continue
			}
			log.Printf("Warning: Invalid content change type at index %d for %s\n", i, uri)
			continue
		}

		updatedText, err := document.ApplyContentChange(newText, change)
		if err != nil {
			log.Printf("Error applying change to %s: %v\n", uri, err)
			continue
		}
		newText = updatedText
	}

	updatedDoc := &server.Document{
		URI:        uri,
		Text:       newText,
		Version:    version,
		LanguageID: doc.LanguageID,
	}
	srv.Documents().Set(uri, updatedDoc)

	if file := srv.ParseService().Parse(newText); file != nil {
		// Re-check: a latest-wins parse may return after yet another
		// change has landed.
		if current, ok := srv.Documents().Get(uri); ok && current.Version == version {
			srv.ASTCache().Put(uri, version, file)
		}
	}

	return nil
}

// DidClose handles the textDocument/didClose notification.
func DidClose(context *glsp.Context, params *protocol.DidCloseTextDocumentParams) error {
	srv := getServer("DidClose")
	if srv == nil {
		return nil
	}

	uri := params.TextDocument.URI
	srv.Documents().Delete(uri)

	log.Printf("Document closed: %s\n", uri)

	// Send empty diagnostics to clear error markers in the editor
	if context != nil && context.Notify != nil {
		context.Notify(protocol.ServerTextDocumentPublishDiagnostics, &protocol.PublishDiagnosticsParams{
			URI:         uri,
			Diagnostics: []protocol.Diagnostic{},
		})
	}

	return nil
}

// DidSave handles the textDocument/didSave notification and kicks off
// debounced compiler diagnostics.
func DidSave(context *glsp.Context, params *protocol.DidSaveTextDocumentParams) error {
	srv := getServer("DidSave")
	if srv == nil {
		return nil
	}

	scheduleDiagnostics(context, params.TextDocument.URI)
	return nil
}
