// Package lsp implements LSP protocol handlers.
package lsp

import (
	"log"

	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/CWBudde/go-elm-lsp/internal/analysis"
	"github.com/CWBudde/go-elm-lsp/internal/ast"
	"github.com/CWBudde/go-elm-lsp/internal/project"
	"github.com/CWBudde/go-elm-lsp/internal/server"
)

var (
	// serverInstance holds the global server instance
	// This is set by SetServer and accessed by handlers
	serverInstance interface{}
)

// SetServer sets the global server instance for handlers to access.
func SetServer(srv interface{}) {
	serverInstance = srv
}

func getServer(where string) *server.Server {
	srv, ok := serverInstance.(*server.Server)
	if !ok || srv == nil {
		log.Printf("Warning: server instance not available in %s", where)
		return nil
	}
	return srv
}

// toASTPosition converts an LSP position (0-based) to an AST position
// (1-based).
func toASTPosition(pos protocol.Position) ast.Position {
	return ast.Position{Line: int(pos.Line) + 1, Column: int(pos.Character) + 1}
}

// toProtocolRange converts an AST range (1-based) to an LSP range
// (0-based).
func toProtocolRange(r ast.Range) protocol.Range {
	return protocol.Range{
		Start: protocol.Position{
			Line:      protocol.UInteger(r.Start.Line - 1),
			Character: protocol.UInteger(r.Start.Column - 1),
		},
		End: protocol.Position{
			Line:      protocol.UInteger(r.End.Line - 1),
			Character: protocol.UInteger(r.End.Column - 1),
		},
	}
}

// documentAST returns the AST for an open document, consulting the
// cache before the parse service. The parse service is latest-wins, so
// the document version is re-checked before the result is cached or
// trusted; a stale or failed parse yields nil.
func documentAST(srv *server.Server, uri string) (*ast.File, *server.Document) {
	doc, exists := srv.Documents().Get(uri)
	if !exists {
		return nil, nil
	}

	if file, ok := srv.ASTCache().Get(uri, doc.Version); ok {
		return file, doc
	}

	file := srv.ParseService().Parse(doc.Text)
	if file == nil {
		return nil, doc
	}

	// The service may have served a newer snapshot; only cache when the
	// document is still at the version we read.
	current, exists := srv.Documents().Get(uri)
	if !exists || current.Version != doc.Version {
		return nil, doc
	}
	srv.ASTCache().Put(uri, doc.Version, file)
	return file, doc
}

// workspaceFor builds the analysis workspace for a document: manifest
// context plus an overlay serving open-buffer text over disk state.
func workspaceFor(srv *server.Server, uri string) *analysis.Workspace {
	path := project.URIToPath(uri)

	proj, err := project.FindManifest(path)
	if err != nil {
		proj = nil
	}

	w := analysis.NewWorkspace(proj)
	w.Overlay = func(p string) (string, bool) {
		if doc, ok := srv.Documents().Get(project.PathToURI(p)); ok {
			return doc.Text, true
		}
		return "", false
	}
	return w
}
