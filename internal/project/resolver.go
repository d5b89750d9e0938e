package project

import (
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// ResolveModuleToFile translates a dotted module name to a file path by
// probing each source directory in order. Package modules do not live
// on disk and resolve to "".
func (p *Project) ResolveModuleToFile(moduleName string) (string, bool) {
	relative := strings.ReplaceAll(moduleName, ".", string(filepath.Separator)) + ".elm"
	for _, dir := range p.SourceDirectories {
		candidate := filepath.Join(dir, relative)
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			return candidate, true
		}
	}
	return "", false
}

// ModuleNameForFile inverts ResolveModuleToFile: the dotted module name
// a file would declare, judged by its path under a source directory.
func (p *Project) ModuleNameForFile(path string) (string, bool) {
	for _, dir := range p.SourceDirectories {
		rel, err := filepath.Rel(dir, path)
		if err != nil || strings.HasPrefix(rel, "..") {
			continue
		}
		rel = strings.TrimSuffix(rel, ".elm")
		return strings.ReplaceAll(rel, string(filepath.Separator), "."), true
	}
	return "", false
}

// ElmFiles enumerates every .elm file reachable from the project's
// source directories. I/O errors skip the offending entry; a sweep is
// never aborted by one unreadable file.
func (p *Project) ElmFiles() []string {
	var files []string
	seen := make(map[string]bool)
	for _, dir := range p.SourceDirectories {
		_ = filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return nil
			}
			if d.IsDir() {
				if d.Name() == "elm-stuff" || d.Name() == "node_modules" {
					return filepath.SkipDir
				}
				return nil
			}
			if filepath.Ext(path) == ".elm" && !seen[path] {
				seen[path] = true
				files = append(files, path)
			}
			return nil
		})
	}
	return files
}

// KnownModules lists every module name resolvable in this project:
// source-directory files plus the exposed modules of each dependency's
// documentation.
func (p *Project) KnownModules() []string {
	var names []string
	seen := make(map[string]bool)
	for _, file := range p.ElmFiles() {
		if name, ok := p.ModuleNameForFile(file); ok && !seen[name] {
			seen[name] = true
			names = append(names, name)
		}
	}
	for _, dep := range p.Dependencies {
		for _, mod := range LoadDocs(p.DocsPath(dep)) {
			if !seen[mod.Name] {
				seen[mod.Name] = true
				names = append(names, mod.Name)
			}
		}
	}
	return names
}
