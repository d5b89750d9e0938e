package lsp

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	protocol "github.com/tliron/glsp/protocol_3_16"
)

func TestDefinitionHandlerCrossModule(t *testing.T) {
	_, uri := testServer(t)

	// Cursor on "add" in the import exposing list (0-based 2:26).
	result, err := Definition(nil, &protocol.DefinitionParams{
		TextDocumentPositionParams: protocol.TextDocumentPositionParams{
			TextDocument: protocol.TextDocumentIdentifier{URI: uri},
			Position:     position(2, 26),
		},
	})
	require.NoError(t, err)
	require.NotNil(t, result)

	location, ok := result.(*protocol.Location)
	require.True(t, ok)
	assert.True(t, strings.HasSuffix(string(location.URI), "Helpers.elm"), location.URI)
	assert.Equal(t, protocol.UInteger(4), location.Range.Start.Line, "0-based line of `add x y =`")
	assert.Equal(t, protocol.UInteger(0), location.Range.Start.Character)
}

func TestDefinitionHandlerLocalBinder(t *testing.T) {
	_, uri := testServer(t)

	// Right-hand "name" in `{ model | name = name }` (0-based 18:30).
	result, err := Definition(nil, &protocol.DefinitionParams{
		TextDocumentPositionParams: protocol.TextDocumentPositionParams{
			TextDocument: protocol.TextDocumentIdentifier{URI: uri},
			Position:     position(18, 30),
		},
	})
	require.NoError(t, err)
	require.NotNil(t, result)

	location := result.(*protocol.Location)
	assert.Equal(t, uri, string(location.URI))
	assert.Equal(t, protocol.UInteger(17), location.Range.Start.Line, "pattern binder line")
}

func TestHoverHandler(t *testing.T) {
	_, uri := testServer(t)

	hover, err := Hover(nil, &protocol.HoverParams{
		TextDocumentPositionParams: protocol.TextDocumentPositionParams{
			TextDocument: protocol.TextDocumentIdentifier{URI: uri},
			Position:     position(8, 5),
		},
	})
	require.NoError(t, err)
	require.NotNil(t, hover)

	content, ok := hover.Contents.(protocol.MarkupContent)
	require.True(t, ok)
	assert.Equal(t, protocol.MarkupKindMarkdown, content.Kind)
	assert.Contains(t, content.Value, "add : Int -> Int -> Int")
}

func TestReferencesHandlerConstructor(t *testing.T) {
	_, uri := testServer(t)

	// Cursor on "Increment" in the case pattern (0-based 14:8).
	locations, err := References(nil, &protocol.ReferenceParams{
		TextDocumentPositionParams: protocol.TextDocumentPositionParams{
			TextDocument: protocol.TextDocumentIdentifier{URI: uri},
			Position:     position(14, 8),
		},
		Context: protocol.ReferenceContext{IncludeDeclaration: true},
	})
	require.NoError(t, err)
	require.GreaterOrEqual(t, len(locations), 2)

	var inTypes, inMain bool
	for _, loc := range locations {
		if strings.HasSuffix(string(loc.URI), "Types.elm") {
			inTypes = true
		}
		if strings.HasSuffix(string(loc.URI), "Main.elm") {
			inMain = true
		}
	}
	assert.True(t, inTypes, "declaration in Types.elm: %+v", locations)
	assert.True(t, inMain, "pattern in Main.elm")
}

func TestRenameHandler(t *testing.T) {
	_, uri := testServer(t)

	// Rename `add` from its call site (0-based 8:4).
	edit, err := Rename(nil, &protocol.RenameParams{
		TextDocumentPositionParams: protocol.TextDocumentPositionParams{
			TextDocument: protocol.TextDocumentIdentifier{URI: uri},
			Position:     position(8, 4),
		},
		NewName: "plus",
	})
	require.NoError(t, err)
	require.NotNil(t, edit)

	totalEdits := 0
	for editURI, edits := range edit.Changes {
		for _, e := range edits {
			assert.Equal(t, "plus", e.NewText)
			totalEdits++
		}
		_ = editURI
	}
	// Exposing item, signature, declaration in Helpers.elm plus import
	// item and call site in Main.elm.
	assert.GreaterOrEqual(t, totalEdits, 5)
}

func TestRenameHandlerRejectsInvalidName(t *testing.T) {
	_, uri := testServer(t)

	_, err := Rename(nil, &protocol.RenameParams{
		TextDocumentPositionParams: protocol.TextDocumentPositionParams{
			TextDocument: protocol.TextDocumentIdentifier{URI: uri},
			Position:     position(8, 4),
		},
		NewName: "1bad",
	})
	assert.Error(t, err)
}

func TestPrepareRenameHandler(t *testing.T) {
	_, uri := testServer(t)

	result, err := PrepareRename(nil, &protocol.PrepareRenameParams{
		TextDocumentPositionParams: protocol.TextDocumentPositionParams{
			TextDocument: protocol.TextDocumentIdentifier{URI: uri},
			Position:     position(8, 5),
		},
	})
	require.NoError(t, err)
	require.NotNil(t, result)

	prepared, ok := result.(*prepareRenameResult)
	require.True(t, ok)
	assert.Equal(t, "add", prepared.Placeholder)

	// Off-symbol positions refuse the rename.
	result, err = PrepareRename(nil, &protocol.PrepareRenameParams{
		TextDocumentPositionParams: protocol.TextDocumentPositionParams{
			TextDocument: protocol.TextDocumentIdentifier{URI: uri},
			Position:     position(1, 0),
		},
	})
	require.NoError(t, err)
	assert.Nil(t, result)
}

func TestCompletionHandlerQualifiedAlias(t *testing.T) {
	srv, _ := testServer(t)

	aliasSource := `module UsesAlias exposing (x)

import Helpers as H


x : Int
x =
    H.
`
	aliasURI := strings.Replace(srv.Documents().List()[0], "Main.elm", "UsesAlias.elm", 1)
	require.NoError(t, DidOpen(nil, &protocol.DidOpenTextDocumentParams{
		TextDocument: protocol.TextDocumentItem{
			URI:        aliasURI,
			LanguageID: "elm",
			Version:    1,
			Text:       aliasSource,
		},
	}))

	// Cursor immediately after "H." (0-based 7:6).
	result, err := Completion(nil, &protocol.CompletionParams{
		TextDocumentPositionParams: protocol.TextDocumentPositionParams{
			TextDocument: protocol.TextDocumentIdentifier{URI: aliasURI},
			Position:     position(7, 6),
		},
	})
	require.NoError(t, err)
	require.NotNil(t, result)

	items, ok := result.([]protocol.CompletionItem)
	require.True(t, ok)

	labels := make([]string, 0, len(items))
	for _, item := range items {
		labels = append(labels, item.Label)
	}
	assert.Contains(t, labels, "add")
	assert.Contains(t, labels, "multiply")
	assert.Contains(t, labels, "greet")
}

func TestDocumentSymbolHandlerAndFallback(t *testing.T) {
	srv, uri := testServer(t)

	result, err := DocumentSymbol(nil, &protocol.DocumentSymbolParams{
		TextDocument: protocol.TextDocumentIdentifier{URI: uri},
	})
	require.NoError(t, err)

	symbols, ok := result.([]protocol.DocumentSymbol)
	require.True(t, ok)
	require.Len(t, symbols, 2)
	assert.Equal(t, "main", symbols[0].Name)
	assert.Equal(t, "update", symbols[1].Name)

	// Break the document; the last good result is served.
	require.NoError(t, DidChange(nil, &protocol.DidChangeTextDocumentParams{
		TextDocument: protocol.VersionedTextDocumentIdentifier{
			TextDocumentIdentifier: protocol.TextDocumentIdentifier{URI: uri},
			Version:                2,
		},
		ContentChanges: []interface{}{
			protocol.TextDocumentContentChangeEvent{Text: "module Main exposing ("},
		},
	}))

	result, err = DocumentSymbol(nil, &protocol.DocumentSymbolParams{
		TextDocument: protocol.TextDocumentIdentifier{URI: uri},
	})
	require.NoError(t, err)
	fallback, ok := result.([]protocol.DocumentSymbol)
	require.True(t, ok)
	assert.Len(t, fallback, 2, "last good symbols survive a broken parse")

	_ = srv
}

func TestWorkspaceSymbolHandler(t *testing.T) {
	_, _ = testServer(t)

	symbols, err := WorkspaceSymbol(nil, &protocol.WorkspaceSymbolParams{Query: "mult"})
	require.NoError(t, err)

	var found bool
	for _, s := range symbols {
		if s.Name == "multiply" {
			found = true
			assert.Equal(t, protocol.SymbolKindFunction, s.Kind)
		}
	}
	assert.True(t, found, "fuzzy query finds multiply: %+v", symbols)

	all, err := WorkspaceSymbol(nil, &protocol.WorkspaceSymbolParams{Query: ""})
	require.NoError(t, err)
	assert.Greater(t, len(all), len(symbols))
}

func TestQualifierBefore(t *testing.T) {
	cases := []struct {
		line      string
		character int
		want      string
	}{
		{"    H.", 6, "H"},
		{"    Json.Decode.", 16, "Json.Decode"},
		{"    H.ad", 8, "H"},
		{"    x = 1", 9, ""},
		{"    record.", 11, ""},
	}
	for _, tc := range cases {
		got := qualifierBefore(tc.line, 0, tc.character)
		assert.Equal(t, tc.want, got, "line %q", tc.line)
	}
}
