// Package lsp implements LSP protocol handlers.
package lsp

import (
	"log"

	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/CWBudde/go-elm-lsp/internal/analysis"
	"github.com/CWBudde/go-elm-lsp/internal/ast"
	"github.com/CWBudde/go-elm-lsp/internal/project"
)

// References handles the textDocument/references request.
// It returns locations of all references to the symbol at the given position
// across every file reachable from the project manifest.
func References(context *glsp.Context, params *protocol.ReferenceParams) ([]protocol.Location, error) {
	srv := getServer("References")
	if srv == nil {
		return []protocol.Location{}, nil
	}

	uri := params.TextDocument.URI
	position := params.Position
	includeDecl := params.Context.IncludeDeclaration

	log.Printf("References request at %s line %d, character %d (includeDeclaration=%t)\n",
		uri, position.Line, position.Character, includeDecl)

	locations := collectReferences(uri, toASTPosition(position), includeDecl)
	return locations, nil
}

// collectReferences resolves the identity at the cursor and runs the
// workspace sweep; shared by references, rename and prepareRename.
func collectReferences(uri string, pos ast.Position, includeDeclaration bool) []protocol.Location {
	srv := getServer("collectReferences")
	if srv == nil {
		return []protocol.Location{}
	}

	file, _ := documentAST(srv, uri)
	if file == nil {
		return []protocol.Location{}
	}

	w := workspaceFor(srv, uri)

	identity, ok := analysis.IdentityAt(file, pos, w)
	if !ok {
		log.Printf("No symbol identity at %s %d:%d\n", uri, pos.Line, pos.Column)
		return []protocol.Location{}
	}
	log.Printf("References target: module=%s name=%s kind=%d", identity.DefModule, identity.Name, identity.Kind)

	currentPath := project.URIToPath(uri)
	refs := analysis.References(identity, w, currentPath, file, includeDeclaration)

	locations := make([]protocol.Location, 0, len(refs))
	for _, ref := range refs {
		locations = append(locations, protocol.Location{
			URI:   project.PathToURI(ref.Path),
			Range: toProtocolRange(ref.Range),
		})
	}
	return locations
}
