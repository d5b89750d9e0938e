// Package integration drives the LSP handlers end-to-end over a real
// project tree, the way a client session would.
package integration

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/CWBudde/go-elm-lsp/internal/lsp"
	"github.com/CWBudde/go-elm-lsp/internal/project"
	"github.com/CWBudde/go-elm-lsp/internal/server"
)

const manifest = `{
    "type": "application",
    "source-directories": [ "src" ],
    "elm-version": "0.19.1",
    "dependencies": { "direct": {}, "indirect": {} }
}`

var sources = map[string]string{
	"src/Main.elm": `module Main exposing (main, update)

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
`,
	"src/Helpers.elm": `module Helpers exposing (add, multiply, greet)


add : Int -> Int -> Int
add x y =
    x + y


multiply : Int -> Int -> Int
multiply x y =
    x * y


greet : String -> String
greet name =
    "Hello, " ++ name
`,
	"src/Types.elm": `module Types exposing (Msg(..), Model)


type Msg
    = Increment
    | Decrement
    | SetName String


type alias Model =
    { count : Int
    , name : String
    }
`,
}

type session struct {
	srv     *server.Server
	root    string
	mainURI string
}

func startSession(t *testing.T) *session {
	t.Helper()
	project.ResetManifestCache()
	t.Setenv("ELM_HOME", t.TempDir())

	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "elm.json"), []byte(manifest), 0644))
	for rel, content := range sources {
		path := filepath.Join(root, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	}

	srv := server.New()
	lsp.SetServer(srv)
	t.Cleanup(func() { lsp.SetServer(nil) })

	rootURI := protocol.DocumentUri(project.PathToURI(root))
	result, err := lsp.Initialize(nil, &protocol.InitializeParams{RootURI: &rootURI})
	require.NoError(t, err)

	initResult, ok := result.(protocol.InitializeResult)
	require.True(t, ok)
	require.NotNil(t, initResult.ServerInfo)
	assert.Equal(t, "go-elm-lsp", initResult.ServerInfo.Name)

	mainURI := project.PathToURI(filepath.Join(root, "src", "Main.elm"))
	require.NoError(t, lsp.DidOpen(nil, &protocol.DidOpenTextDocumentParams{
		TextDocument: protocol.TextDocumentItem{
			URI:        mainURI,
			LanguageID: "elm",
			Version:    1,
			Text:       sources["src/Main.elm"],
		},
	}))

	return &session{srv: srv, root: root, mainURI: mainURI}
}

func TestSessionGotoDefinitionAcrossModules(t *testing.T) {
	s := startSession(t)

	result, err := lsp.Definition(nil, &protocol.DefinitionParams{
		TextDocumentPositionParams: protocol.TextDocumentPositionParams{
			TextDocument: protocol.TextDocumentIdentifier{URI: s.mainURI},
			Position:     protocol.Position{Line: 2, Character: 26},
		},
	})
	require.NoError(t, err)
	require.NotNil(t, result)

	location := result.(*protocol.Location)
	assert.True(t, strings.HasSuffix(string(location.URI), "Helpers.elm"))
}

func TestSessionReferencesAndRename(t *testing.T) {
	s := startSession(t)

	locations, err := lsp.References(nil, &protocol.ReferenceParams{
		TextDocumentPositionParams: protocol.TextDocumentPositionParams{
			TextDocument: protocol.TextDocumentIdentifier{URI: s.mainURI},
			Position:     protocol.Position{Line: 8, Character: 4},
		},
		Context: protocol.ReferenceContext{IncludeDeclaration: true},
	})
	require.NoError(t, err)
	require.GreaterOrEqual(t, len(locations), 5)

	edit, err := lsp.Rename(nil, &protocol.RenameParams{
		TextDocumentPositionParams: protocol.TextDocumentPositionParams{
			TextDocument: protocol.TextDocumentIdentifier{URI: s.mainURI},
			Position:     protocol.Position{Line: 8, Character: 4},
		},
		NewName: "plus",
	})
	require.NoError(t, err)
	require.NotNil(t, edit)

	edited := 0
	for _, edits := range edit.Changes {
		edited += len(edits)
	}
	assert.Equal(t, len(locations), edited, "rename edits mirror the reference set")
}

func TestSessionWorkspaceSymbols(t *testing.T) {
	s := startSession(t)
	_ = s

	symbols, err := lsp.WorkspaceSymbol(nil, &protocol.WorkspaceSymbolParams{Query: "mult"})
	require.NoError(t, err)

	found := false
	for _, symbol := range symbols {
		if symbol.Name == "multiply" {
			found = true
		}
	}
	assert.True(t, found)

	everything, err := lsp.WorkspaceSymbol(nil, &protocol.WorkspaceSymbolParams{Query: ""})
	require.NoError(t, err)
	assert.NotEmpty(t, everything)
}

func TestSessionShutdownFlag(t *testing.T) {
	s := startSession(t)

	require.False(t, s.srv.IsShuttingDown())
	require.NoError(t, lsp.Shutdown(nil))
	assert.True(t, s.srv.IsShuttingDown())
}
