package lsp

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/CWBudde/go-elm-lsp/internal/project"
	"github.com/CWBudde/go-elm-lsp/internal/server"
)

const testManifest = `{
    "type": "application",
    "source-directories": [ "src" ],
    "elm-version": "0.19.1",
    "dependencies": { "direct": {}, "indirect": {} }
}`

const testMain = `module Main exposing (main, update)

import Helpers exposing (add, greet)
import Types exposing (Msg(..), Model)


main : Int
main =
    add 1 2


update : Msg -> Model -> Model
update msg model =
    case msg of
        Increment ->
            { model | count = model.count + 1 }

        SetName name ->
            { model | name = name }
`

const testHelpers = `module Helpers exposing (add, multiply, greet)


add : Int -> Int -> Int
add x y =
    x + y


multiply : Int -> Int -> Int
multiply x y =
    x * y


greet : String -> String
greet name =
    "Hello, " ++ name
`

const testTypes = `module Types exposing (Msg(..), Model)


type Msg
    = Increment
    | Decrement
    | SetName String


type alias Model =
    { count : Int
    , name : String
    }
`

// testServer installs a fresh server over a temp project and opens
// Main.elm. It returns the server and Main.elm's URI.
func testServer(t *testing.T) (*server.Server, string) {
	t.Helper()
	project.ResetManifestCache()
	t.Setenv("ELM_HOME", t.TempDir())

	root := t.TempDir()
	files := map[string]string{
		"elm.json":        testManifest,
		"src/Main.elm":    testMain,
		"src/Helpers.elm": testHelpers,
		"src/Types.elm":   testTypes,
	}
	for rel, content := range files {
		path := filepath.Join(root, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	}

	srv := server.New()
	SetServer(srv)
	t.Cleanup(func() { SetServer(nil) })

	uri := project.PathToURI(filepath.Join(root, "src", "Main.elm"))
	require.NoError(t, DidOpen(nil, &protocol.DidOpenTextDocumentParams{
		TextDocument: protocol.TextDocumentItem{
			URI:        uri,
			LanguageID: "elm",
			Version:    1,
			Text:       testMain,
		},
	}))

	rootURI := project.PathToURI(root)
	srv.SetRootURI(rootURI)

	return srv, uri
}

func position(line, character uint32) protocol.Position {
	return protocol.Position{Line: line, Character: character}
}

func TestDocumentASTUsesCache(t *testing.T) {
	srv, uri := testServer(t)

	file1, doc := documentAST(srv, uri)
	require.NotNil(t, file1)
	require.NotNil(t, doc)

	file2, _ := documentAST(srv, uri)
	require.Same(t, file1, file2, "second read served from the AST cache")
}

func TestDocumentASTVersionInvalidation(t *testing.T) {
	srv, uri := testServer(t)

	file1, _ := documentAST(srv, uri)
	require.NotNil(t, file1)

	require.NoError(t, DidChange(nil, &protocol.DidChangeTextDocumentParams{
		TextDocument: protocol.VersionedTextDocumentIdentifier{
			TextDocumentIdentifier: protocol.TextDocumentIdentifier{URI: uri},
			Version:                2,
		},
		ContentChanges: []interface{}{
			protocol.TextDocumentContentChangeEvent{Text: testMain + "\n\nextra : Int\nextra =\n    1\n"},
		},
	}))

	file2, doc := documentAST(srv, uri)
	require.NotNil(t, file2)
	require.Equal(t, 2, doc.Version)
	require.NotSame(t, file1, file2)
}
