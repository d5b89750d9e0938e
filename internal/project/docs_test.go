package project

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const docsJSONFixture = `[
  {
    "name": "Maybe",
    "comment": " This library fills a bunch of important niches. ",
    "unions": [
      {
        "name": "Maybe",
        "comment": " Represent values that may or may not exist. ",
        "args": ["a"],
        "cases": [["Just", ["a"]], ["Nothing", []]]
      }
    ],
    "aliases": [],
    "values": [
      {
        "name": "withDefault",
        "comment": " Provide a default value. ",
        "type": "a -> Maybe.Maybe a -> a"
      }
    ],
    "binops": []
  }
]`

func TestLoadDocs(t *testing.T) {
	ResetDocsCache()
	dir := t.TempDir()
	docsPath := filepath.Join(dir, "docs.json")
	require.NoError(t, os.WriteFile(docsPath, []byte(docsJSONFixture), 0644))

	docs := LoadDocs(docsPath)
	require.Len(t, docs, 1)
	assert.Equal(t, "Maybe", docs[0].Name)

	require.Len(t, docs[0].Unions, 1)
	union := docs[0].Unions[0]
	require.Len(t, union.Cases, 2)
	assert.Equal(t, "Just", union.Cases[0].Name)
	assert.Equal(t, []string{"a"}, union.Cases[0].Args)
	assert.Equal(t, "Nothing", union.Cases[1].Name)
	assert.Empty(t, union.Cases[1].Args)

	require.Len(t, docs[0].Values, 1)
	assert.Equal(t, "withDefault", docs[0].Values[0].Name)
}

func TestLoadDocsMissingFile(t *testing.T) {
	ResetDocsCache()
	assert.Empty(t, LoadDocs(filepath.Join(t.TempDir(), "nope", "docs.json")))
}

func TestLoadDocsBrokenJSON(t *testing.T) {
	ResetDocsCache()
	dir := t.TempDir()
	docsPath := filepath.Join(dir, "docs.json")
	require.NoError(t, os.WriteFile(docsPath, []byte("[{broken"), 0644))

	assert.Empty(t, LoadDocs(docsPath))
}

func TestLoadDocsMemoized(t *testing.T) {
	ResetDocsCache()
	dir := t.TempDir()
	docsPath := filepath.Join(dir, "docs.json")
	require.NoError(t, os.WriteFile(docsPath, []byte(docsJSONFixture), 0644))

	first := LoadDocs(docsPath)
	require.NoError(t, os.Remove(docsPath))
	second := LoadDocs(docsPath)

	assert.Equal(t, first, second, "second read served from the memo")
}

func TestFindModuleDocsAcrossDependencies(t *testing.T) {
	ResetDocsCache()
	ResetManifestCache()
	home := t.TempDir()
	t.Setenv("ELM_HOME", home)

	root := t.TempDir()
	writeManifest(t, root)
	proj, err := FindManifest(root)
	require.NoError(t, err)

	corePath := proj.DocsPath(Dependency{Name: "elm/core", Version: "1.0.5"})
	require.NoError(t, os.MkdirAll(filepath.Dir(corePath), 0755))
	require.NoError(t, os.WriteFile(corePath, []byte(docsJSONFixture), 0644))

	docs := proj.FindModuleDocs("Maybe")
	require.NotNil(t, docs)
	assert.Equal(t, "Maybe", docs.Name)

	assert.Nil(t, proj.FindModuleDocs("Json.Decode"))
}
