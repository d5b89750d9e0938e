// Package analysis implements the semantic engine: identity resolution,
// scope-aware navigation, hover rendering and the workspace reference
// scan, all over the ast package.
package analysis

import (
	"os"

	"github.com/CWBudde/go-elm-lsp/internal/ast"
	"github.com/CWBudde/go-elm-lsp/internal/elmparse"
	"github.com/CWBudde/go-elm-lsp/internal/project"
)

// Workspace gives the engines access to project files. Batch parses go
// straight into the backend: the reference sweep must not contend with
// the latest-wins service that serves the editor's current buffer.
type Workspace struct {
	// Project is the manifest context; nil when no elm.json was found,
	// in which case cross-file lookups degrade to same-file answers.
	Project *project.Project

	// Overlay returns the open-editor text for a path, so sweeps see
	// unsaved buffers instead of stale disk state.
	Overlay func(path string) (string, bool)

	modules map[string]*moduleEntry
}

type moduleEntry struct {
	path string
	file *ast.File
}

// NewWorkspace creates a workspace over an optional project.
func NewWorkspace(proj *project.Project) *Workspace {
	return &Workspace{
		Project: proj,
		modules: make(map[string]*moduleEntry),
	}
}

// ParseFile reads and parses one file, preferring overlay text. A read
// or parse failure yields nil; sweeps skip the file silently.
func (w *Workspace) ParseFile(path string) *ast.File {
	var source string
	if w.Overlay != nil {
		if text, ok := w.Overlay(path); ok {
			source = text
		}
	}
	if source == "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil
		}
		source = string(data)
	}

	file, err := elmparse.Parse(source)
	if err != nil {
		return nil
	}
	return file
}

// ModuleAST resolves a module name to its source file and AST, memoized
// per workspace instance. Package-only modules resolve to nil.
func (w *Workspace) ModuleAST(moduleName string) (string, *ast.File) {
	if entry, ok := w.modules[moduleName]; ok {
		return entry.path, entry.file
	}
	entry := &moduleEntry{}
	if w.Project != nil {
		if path, ok := w.Project.ResolveModuleToFile(moduleName); ok {
			entry.path = path
			entry.file = w.ParseFile(path)
		}
	}
	w.modules[moduleName] = entry
	return entry.path, entry.file
}

// Location is an internal (path, range) pair; the LSP layer converts it
// to protocol locations. An empty Path means the requesting document.
type Location struct {
	Path  string
	Range ast.Range
}
