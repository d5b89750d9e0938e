package analysis

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/CWBudde/go-elm-lsp/internal/ast"
	"github.com/CWBudde/go-elm-lsp/internal/elmparse"
	"github.com/CWBudde/go-elm-lsp/internal/project"
)

const fixtureManifest = `{
    "type": "application",
    "source-directories": [ "src" ],
    "elm-version": "0.19.1",
    "dependencies": { "direct": {}, "indirect": {} }
}`

const fixtureMain = `module Main exposing (main, update)

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

const fixtureHelpers = `module Helpers exposing (add, multiply, greet)


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

const fixtureTypes = `module Types exposing (Msg(..), Model)


type Msg
    = Increment
    | Decrement
    | SetName String


type alias Model =
    { count : Int
    , name : String
    }
`

// fixture is a small three-module project on disk.
type fixture struct {
	workspace *Workspace
	root      string
	mainPath  string
	mainFile  *ast.File
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	project.ResetManifestCache()
	t.Setenv("ELM_HOME", t.TempDir())

	root := t.TempDir()
	files := map[string]string{
		"elm.json":         fixtureManifest,
		"src/Main.elm":     fixtureMain,
		"src/Helpers.elm":  fixtureHelpers,
		"src/Types.elm":    fixtureTypes,
	}
	for rel, content := range files {
		path := filepath.Join(root, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	}

	proj, err := project.FindManifest(root)
	require.NoError(t, err)

	mainPath := filepath.Join(root, "src", "Main.elm")
	mainFile, err := elmparse.Parse(fixtureMain)
	require.NoError(t, err)

	return &fixture{
		workspace: NewWorkspace(proj),
		root:      root,
		mainPath:  mainPath,
		mainFile:  mainFile,
	}
}

func (f *fixture) parse(t *testing.T, rel string) *ast.File {
	t.Helper()
	file := f.workspace.ParseFile(filepath.Join(f.root, filepath.FromSlash(rel)))
	require.NotNil(t, file)
	return file
}

func writeFixtureFile(t *testing.T, f *fixture, rel, content string) {
	t.Helper()
	path := filepath.Join(f.root, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

func at(line, col int) ast.Position {
	return ast.Position{Line: line, Column: col}
}
