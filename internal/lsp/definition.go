// Package lsp implements LSP protocol handlers.
package lsp

import (
	"log"

	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/CWBudde/go-elm-lsp/internal/analysis"
	"github.com/CWBudde/go-elm-lsp/internal/project"
)

// Definition handles the textDocument/definition request.
// This provides "go-to definition" functionality, allowing users to navigate
// to where a symbol is defined.
func Definition(context *glsp.Context, params *protocol.DefinitionParams) (interface{}, error) {
	srv := getServer("Definition")
	if srv == nil {
		return nil, nil
	}

	uri := params.TextDocument.URI
	position := params.Position

	log.Printf("Definition request at %s line %d, character %d\n",
		uri, position.Line, position.Character)

	file, _ := documentAST(srv, uri)
	if file == nil {
		log.Printf("No AST available for definition: %s\n", uri)
		return nil, nil
	}

	w := workspaceFor(srv, uri)

	target, ok := analysis.Definition(file, toASTPosition(position), w)
	if !ok {
		log.Printf("No definition found at %s %d:%d\n", uri, position.Line, position.Character)
		return nil, nil
	}

	targetURI := uri
	if target.Path != "" {
		targetURI = project.PathToURI(target.Path)
	}

	return &protocol.Location{
		URI:   targetURI,
		Range: toProtocolRange(target.Range),
	}, nil
}
