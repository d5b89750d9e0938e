// Package project locates and reads elm.json manifests and resolves
// module names to source files and package documentation.
package project

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
)

// Dependency is one direct package dependency from the manifest.
type Dependency struct {
	// Name is the "user/package" key from elm.json.
	Name    string
	Version string
}

// User returns the publisher half of the package name.
func (d Dependency) User() string {
	if i := strings.IndexByte(d.Name, '/'); i >= 0 {
		return d.Name[:i]
	}
	return d.Name
}

// Package returns the package half of the package name.
func (d Dependency) Package() string {
	if i := strings.IndexByte(d.Name, '/'); i >= 0 {
		return d.Name[i+1:]
	}
	return ""
}

// Project is a successfully parsed elm.json.
type Project struct {
	ProjectFolder     string
	ManifestPath      string
	ElmVersion        string
	SourceDirectories []string
	Dependencies      []Dependency
}

// manifestJSON mirrors the on-disk elm.json shape.
type manifestJSON struct {
	Type              string   `json:"type"`
	SourceDirectories []string `json:"source-directories"`
	ElmVersion        string   `json:"elm-version"`
	Dependencies      struct {
		Direct map[string]string `json:"direct"`
	} `json:"dependencies"`
}

var (
	manifestMu    sync.Mutex
	manifestCache = make(map[string]*Project)
)

// FindManifest walks parent directories of filePath, inclusive, and
// returns the project for the first elm.json whose contents parse.
// Results are cached per starting directory.
func FindManifest(filePath string) (*Project, error) {
	dir := filePath
	if info, err := os.Stat(filePath); err != nil || !info.IsDir() {
		dir = filepath.Dir(filePath)
	}

	manifestMu.Lock()
	if cached, ok := manifestCache[dir]; ok {
		manifestMu.Unlock()
		return cached, nil
	}
	manifestMu.Unlock()

	for current := dir; ; {
		candidate := filepath.Join(current, "elm.json")
		if project, err := readManifest(candidate); err == nil {
			manifestMu.Lock()
			manifestCache[dir] = project
			manifestMu.Unlock()
			return project, nil
		}

		parent := filepath.Dir(current)
		if parent == current {
			return nil, fmt.Errorf("no elm.json found above %s", dir)
		}
		current = parent
	}
}

// ResetManifestCache clears cached manifests. Tests use this to keep
// temp-dir fixtures independent.
func ResetManifestCache() {
	manifestMu.Lock()
	defer manifestMu.Unlock()
	manifestCache = make(map[string]*Project)
}

func readManifest(path string) (*Project, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var raw manifestJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	folder := filepath.Dir(path)
	project := &Project{
		ProjectFolder: folder,
		ManifestPath:  path,
		ElmVersion:    raw.ElmVersion,
	}

	for _, src := range raw.SourceDirectories {
		if !filepath.IsAbs(src) {
			src = filepath.Join(folder, src)
		}
		project.SourceDirectories = append(project.SourceDirectories, filepath.Clean(src))
	}
	if len(project.SourceDirectories) == 0 {
		project.SourceDirectories = []string{folder}
	}

	// Dependency declaration order is not preserved by JSON maps; sort
	// by name so docs consultation order is stable.
	for name, version := range raw.Dependencies.Direct {
		project.Dependencies = append(project.Dependencies, Dependency{Name: name, Version: version})
	}
	sort.Slice(project.Dependencies, func(i, j int) bool {
		return project.Dependencies[i].Name < project.Dependencies[j].Name
	})

	return project, nil
}

// ElmHome returns the root of the package documentation cache: the
// ELM_HOME override, else ~/.elm, else the platform config dir.
func ElmHome() string {
	if home := os.Getenv("ELM_HOME"); home != "" {
		return home
	}
	if home, err := os.UserHomeDir(); err == nil && home != "" {
		return filepath.Join(home, ".elm")
	}
	if cfg, err := os.UserConfigDir(); err == nil {
		return filepath.Join(cfg, "elm")
	}
	return ".elm"
}

// DocsPath computes the location of the pre-rendered documentation for
// a dependency under the given project's Elm version.
func (p *Project) DocsPath(dep Dependency) string {
	return filepath.Join(ElmHome(), p.ElmVersion, "packages",
		dep.User(), dep.Package(), dep.Version, "docs.json")
}
