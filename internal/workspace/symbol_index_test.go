package workspace

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/CWBudde/go-elm-lsp/internal/project"
)

func testProject(t *testing.T) *project.Project {
	t.Helper()
	project.ResetManifestCache()
	root := t.TempDir()

	manifest := `{
    "type": "application",
    "source-directories": [ "src" ],
    "elm-version": "0.19.1",
    "dependencies": { "direct": {}, "indirect": {} }
}`
	require.NoError(t, os.WriteFile(filepath.Join(root, "elm.json"), []byte(manifest), 0644))

	source := `module Helpers exposing (add, multiply)

import List


type alias Config =
    { verbose : Bool }


type Status
    = Ready
    | Busy


port notify : String -> Cmd msg


add : Int -> Int -> Int
add x y =
    x + y


multiply : Int -> Int -> Int
multiply x y =
    x * y


add : Int
`
	require.NoError(t, os.MkdirAll(filepath.Join(root, "src"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "src", "Helpers.elm"), []byte(source), 0644))

	proj, err := project.FindManifest(root)
	require.NoError(t, err)
	return proj
}

func names(symbols []protocol.SymbolInformation) []string {
	out := make([]string, 0, len(symbols))
	for _, s := range symbols {
		out = append(out, s.Name)
	}
	return out
}

func findSymbol(symbols []protocol.SymbolInformation, name string) *protocol.SymbolInformation {
	for i := range symbols {
		if symbols[i].Name == name {
			return &symbols[i]
		}
	}
	return nil
}

func TestSearchEmptyQueryReturnsAll(t *testing.T) {
	proj := testProject(t)
	index := NewSymbolIndex()

	symbols := index.Search("", proj)

	got := names(symbols)
	assert.Contains(t, got, "Config")
	assert.Contains(t, got, "Status")
	assert.Contains(t, got, "notify")
	assert.Contains(t, got, "add")
	assert.Contains(t, got, "multiply")

	// Keywords never surface as symbols.
	assert.NotContains(t, got, "module")
	assert.NotContains(t, got, "import")
	assert.NotContains(t, got, "type")
}

func TestSearchKinds(t *testing.T) {
	proj := testProject(t)
	index := NewSymbolIndex()

	symbols := index.Search("", proj)

	require.NotNil(t, findSymbol(symbols, "Config"))
	assert.Equal(t, protocol.SymbolKindObject, findSymbol(symbols, "Config").Kind)
	assert.Equal(t, protocol.SymbolKindEnum, findSymbol(symbols, "Status").Kind)
	assert.Equal(t, protocol.SymbolKindFunction, findSymbol(symbols, "notify").Kind)
	assert.Equal(t, protocol.SymbolKindFunction, findSymbol(symbols, "add").Kind)
}

func TestSearchFuzzySubsequence(t *testing.T) {
	proj := testProject(t)
	index := NewSymbolIndex()

	assert.Contains(t, names(index.Search("mult", proj)), "multiply")
	assert.Contains(t, names(index.Search("mtp", proj)), "multiply", "subsequence matches")
	assert.Contains(t, names(index.Search("CONFIG", proj)), "Config", "case-insensitive")
	assert.Empty(t, names(index.Search("zzz", proj)))
}

func TestSearchDuplicatesEmittedOnce(t *testing.T) {
	proj := testProject(t)
	index := NewSymbolIndex()

	count := 0
	for _, name := range names(index.Search("", proj)) {
		if name == "add" {
			count++
		}
	}
	assert.Equal(t, 1, count, "first occurrence wins within a file")
}

func TestSearchCacheExpiresAfterTTL(t *testing.T) {
	proj := testProject(t)
	index := NewSymbolIndex()

	current := time.Now()
	index.SetClock(func() time.Time { return current })

	before := len(index.Search("", proj))
	require.Positive(t, before)

	// A new symbol lands on disk; within the TTL the cache still serves
	// the old extraction.
	extra := "module Extra exposing (brandNew)\n\n\nbrandNew : Int\nbrandNew =\n    7\n"
	require.NoError(t, os.WriteFile(filepath.Join(proj.ProjectFolder, "src", "Extra.elm"), []byte(extra), 0644))

	assert.Len(t, index.Search("", proj), before, "cache still warm")

	// 5 seconds later the cache has expired.
	current = current.Add(5100 * time.Millisecond)
	assert.Contains(t, names(index.Search("", proj)), "brandNew")
}

func TestFuzzyMatch(t *testing.T) {
	assert.True(t, fuzzyMatch("", "anything"))
	assert.True(t, fuzzyMatch("mult", "multiply"))
	assert.True(t, fuzzyMatch("mpl", "multiply"))
	assert.False(t, fuzzyMatch("multz", "multiply"))
}
