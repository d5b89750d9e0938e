// Package lsp implements LSP protocol handlers.
package lsp

import (
	"errors"
	"log"
	"strings"

	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"
)

// Rename handles the textDocument/rename request. It reuses the
// reference scan and groups the resulting locations into a workspace
// edit replacing each site with the new name.
func Rename(context *glsp.Context, params *protocol.RenameParams) (*protocol.WorkspaceEdit, error) {
	srv := getServer("Rename")
	if srv == nil {
		return nil, errors.New("server instance not available")
	}

	uri := params.TextDocument.URI
	position := params.Position
	newName := params.NewName

	log.Printf("Rename request at %s line %d, character %d (newName=%s)\n",
		uri, position.Line, position.Character, newName)

	if !isValidElmName(newName) {
		return nil, errors.New("invalid name: " + newName)
	}

	locations := collectReferences(uri, toASTPosition(position), true)
	if len(locations) == 0 {
		return nil, errors.New("no renameable symbol at cursor position")
	}
	if !cursorOnReference(locations, uri, position) {
		return nil, errors.New("cursor is not on a reference to the symbol")
	}

	changes := make(map[protocol.DocumentUri][]protocol.TextEdit)
	for _, loc := range locations {
		changes[loc.URI] = append(changes[loc.URI], protocol.TextEdit{
			Range:   loc.Range,
			NewText: newName,
		})
	}

	return &protocol.WorkspaceEdit{Changes: changes}, nil
}

// PrepareRename handles textDocument/prepareRename: it confirms the
// cursor sits on a reference site and returns the range plus the text
// slice at the cursor.
func PrepareRename(context *glsp.Context, params *protocol.PrepareRenameParams) (interface{}, error) {
	srv := getServer("PrepareRename")
	if srv == nil {
		return nil, nil
	}

	uri := params.TextDocument.URI
	position := params.Position

	locations := collectReferences(uri, toASTPosition(position), true)
	rng, ok := referenceRangeAt(locations, uri, position)
	if !ok {
		return nil, nil
	}

	placeholder := ""
	if doc, exists := srv.Documents().Get(uri); exists {
		placeholder = sliceRange(doc.Text, rng)
	}

	return &prepareRenameResult{Range: rng, Placeholder: placeholder}, nil
}

// prepareRenameResult is the {range, placeholder} response variant.
type prepareRenameResult struct {
	Range       protocol.Range `json:"range"`
	Placeholder string         `json:"placeholder"`
}

func cursorOnReference(locations []protocol.Location, uri string, pos protocol.Position) bool {
	_, ok := referenceRangeAt(locations, uri, pos)
	return ok
}

func referenceRangeAt(locations []protocol.Location, uri string, pos protocol.Position) (protocol.Range, bool) {
	for _, loc := range locations {
		if loc.URI != uri {
			continue
		}
		if protocolRangeContains(loc.Range, pos) {
			return loc.Range, true
		}
	}
	return protocol.Range{}, false
}

func protocolRangeContains(r protocol.Range, pos protocol.Position) bool {
	if pos.Line < r.Start.Line || pos.Line > r.End.Line {
		return false
	}
	if pos.Line == r.Start.Line && pos.Character < r.Start.Character {
		return false
	}
	if pos.Line == r.End.Line && pos.Character > r.End.Character {
		return false
	}
	return true
}

// sliceRange extracts the text under a single-line protocol range.
func sliceRange(text string, r protocol.Range) string {
	lines := strings.Split(text, "\n")
	if int(r.Start.Line) >= len(lines) || r.Start.Line != r.End.Line {
		return ""
	}
	line := lines[r.Start.Line]
	start := int(r.Start.Character)
	end := int(r.End.Character)
	if start > len(line) {
		return ""
	}
	if end > len(line) {
		end = len(line)
	}
	return line[start:end]
}

// isValidElmName accepts lowercase- or uppercase-led identifiers; the
// target symbol decides which case is legal, the compiler the rest.
func isValidElmName(name string) bool {
	if name == "" {
		return false
	}
	for i, r := range name {
		isLetter := (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
		isDigit := r >= '0' && r <= '9'
		if i == 0 && !isLetter {
			return false
		}
		if !isLetter && !isDigit && r != '_' {
			return false
		}
	}
	return true
}
