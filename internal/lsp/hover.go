// Package lsp implements LSP protocol handlers.
package lsp

import (
	"log"

	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/CWBudde/go-elm-lsp/internal/analysis"
)

// Hover handles the textDocument/hover request. It renders a markdown
// payload for the symbol under the cursor, from the local AST or from
// package documentation.
func Hover(context *glsp.Context, params *protocol.HoverParams) (*protocol.Hover, error) {
	srv := getServer("Hover")
	if srv == nil {
		return nil, nil
	}

	uri := params.TextDocument.URI
	position := params.Position

	file, _ := documentAST(srv, uri)
	if file == nil {
		log.Printf("No AST available for hover: %s\n", uri)
		return nil, nil
	}

	w := workspaceFor(srv, uri)

	markdown, ok := analysis.Hover(file, toASTPosition(position), w)
	if !ok {
		return nil, nil
	}

	return &protocol.Hover{
		Contents: protocol.MarkupContent{
			Kind:  protocol.MarkupKindMarkdown,
			Value: markdown,
		},
	}, nil
}
