// Package lsp implements LSP protocol handlers.
package lsp

import (
	"log"

	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/CWBudde/go-elm-lsp/internal/project"
)

// WorkspaceSymbol handles the workspace/symbol request.
// It returns symbols across the entire workspace that match the query string.
func WorkspaceSymbol(context *glsp.Context, params *protocol.WorkspaceSymbolParams) ([]protocol.SymbolInformation, error) {
	srv := getServer("WorkspaceSymbol")
	if srv == nil {
		return nil, nil
	}

	query := params.Query
	log.Printf("WorkspaceSymbol request with query: %q\n", query)

	rootURI := srv.RootURI()
	if rootURI == "" {
		log.Println("No root URI captured; workspace symbols unavailable")
		return []protocol.SymbolInformation{}, nil
	}

	proj, err := project.FindManifest(project.URIToPath(rootURI))
	if err != nil {
		log.Printf("No manifest for workspace symbols: %v", err)
		return []protocol.SymbolInformation{}, nil
	}

	symbols := srv.SymbolIndex().Search(query, proj)
	log.Printf("Found %d workspace symbols matching query %q\n", len(symbols), query)
	return symbols, nil
}
