package project

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func projectFixture(t *testing.T) *Project {
	t.Helper()
	ResetManifestCache()
	root := t.TempDir()
	writeManifest(t, root)

	files := []string{
		filepath.Join(root, "src", "Main.elm"),
		filepath.Join(root, "src", "Pages", "Home.elm"),
		filepath.Join(root, "tests", "helpers", "Fixtures.elm"),
	}
	for _, f := range files {
		require.NoError(t, os.MkdirAll(filepath.Dir(f), 0755))
		require.NoError(t, os.WriteFile(f, []byte("module X exposing (..)\n"), 0644))
	}

	proj, err := FindManifest(root)
	require.NoError(t, err)
	return proj
}

func TestResolveModuleToFile(t *testing.T) {
	proj := projectFixture(t)

	path, ok := proj.ResolveModuleToFile("Main")
	require.True(t, ok)
	assert.Equal(t, filepath.Join(proj.ProjectFolder, "src", "Main.elm"), path)

	path, ok = proj.ResolveModuleToFile("Pages.Home")
	require.True(t, ok)
	assert.Equal(t, filepath.Join(proj.ProjectFolder, "src", "Pages", "Home.elm"), path)

	// The second source directory is probed too.
	_, ok = proj.ResolveModuleToFile("Fixtures")
	assert.True(t, ok)

	// Package modules never resolve to files.
	_, ok = proj.ResolveModuleToFile("Json.Decode")
	assert.False(t, ok)
}

func TestModuleNameForFile(t *testing.T) {
	proj := projectFixture(t)

	name, ok := proj.ModuleNameForFile(filepath.Join(proj.ProjectFolder, "src", "Pages", "Home.elm"))
	require.True(t, ok)
	assert.Equal(t, "Pages.Home", name)

	_, ok = proj.ModuleNameForFile(filepath.Join(proj.ProjectFolder, "elsewhere", "X.elm"))
	assert.False(t, ok)
}

func TestElmFilesEnumeratesSourceDirectories(t *testing.T) {
	proj := projectFixture(t)

	files := proj.ElmFiles()
	assert.Len(t, files, 3)

	// elm-stuff is never swept.
	stuff := filepath.Join(proj.ProjectFolder, "src", "elm-stuff", "Gen.elm")
	require.NoError(t, os.MkdirAll(filepath.Dir(stuff), 0755))
	require.NoError(t, os.WriteFile(stuff, []byte("module Gen exposing (..)\n"), 0644))
	assert.Len(t, proj.ElmFiles(), 3)
}
