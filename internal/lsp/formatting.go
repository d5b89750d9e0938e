// Package lsp implements LSP protocol handlers.
package lsp

import (
	"bytes"
	"log"
	"os/exec"
	"strings"

	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"
)

// elmFormatter is the external formatter invoked over stdin.
const elmFormatter = "elm-format"

// Formatting handles the textDocument/formatting request by piping the
// whole document through the external formatter and replying with a
// single edit covering the full document, or no edit when the output
// equals the current text.
func Formatting(context *glsp.Context, params *protocol.DocumentFormattingParams) ([]protocol.TextEdit, error) {
	srv := getServer("Formatting")
	if srv == nil {
		return nil, nil
	}

	uri := params.TextDocument.URI
	doc, exists := srv.Documents().Get(uri)
	if !exists {
		log.Printf("Document not found for formatting: %s\n", uri)
		return nil, nil
	}

	cmd := exec.Command(elmFormatter, "--stdin")
	cmd.Stdin = strings.NewReader(doc.Text)
	var stdout bytes.Buffer
	cmd.Stdout = &stdout

	if err := cmd.Run(); err != nil {
		if _, ok := err.(*exec.ExitError); !ok {
			reportMissingTool(context, elmFormatter)
		} else {
			log.Printf("Formatter failed for %s: %v", uri, err)
		}
		return nil, nil
	}

	formatted := stdout.String()
	if formatted == doc.Text {
		return []protocol.TextEdit{}, nil
	}

	return []protocol.TextEdit{{
		Range:   wholeDocumentRange(doc.Text),
		NewText: formatted,
	}}, nil
}

// wholeDocumentRange spans from the document start to the end of the
// final line.
func wholeDocumentRange(text string) protocol.Range {
	lines := strings.Split(text, "\n")
	lastLine := len(lines) - 1
	return protocol.Range{
		Start: protocol.Position{Line: 0, Character: 0},
		End: protocol.Position{
			Line:      protocol.UInteger(lastLine),
			Character: protocol.UInteger(len(lines[lastLine])),
		},
	}
}
