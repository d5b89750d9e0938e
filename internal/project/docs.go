package project

import (
	"encoding/json"
	"os"
	"sync"
)

// ModuleDocs is one module's entry in a package docs.json.
type ModuleDocs struct {
	Name    string      `json:"name"`
	Comment string      `json:"comment"`
	Unions  []DocUnion  `json:"unions"`
	Aliases []DocAlias  `json:"aliases"`
	Values  []DocValue  `json:"values"`
	Binops  []DocValue  `json:"binops"`
}

// DocUnion documents a custom type and its constructors.
type DocUnion struct {
	Name    string     `json:"name"`
	Comment string     `json:"comment"`
	Args    []string   `json:"args"`
	Cases   []DocCase  `json:"cases"`
}

// DocCase is one constructor: a ["Name", ["argType", ...]] pair on disk.
type DocCase struct {
	Name string
	Args []string
}

// UnmarshalJSON decodes the heterogeneous [name, [args]] array form.
func (c *DocCase) UnmarshalJSON(data []byte) error {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if len(raw) > 0 {
		if err := json.Unmarshal(raw[0], &c.Name); err != nil {
			return err
		}
	}
	if len(raw) > 1 {
		if err := json.Unmarshal(raw[1], &c.Args); err != nil {
			return err
		}
	}
	return nil
}

// DocAlias documents a type alias.
type DocAlias struct {
	Name    string   `json:"name"`
	Comment string   `json:"comment"`
	Args    []string `json:"args"`
	Type    string   `json:"type"`
}

// DocValue documents an exposed value or operator.
type DocValue struct {
	Name    string `json:"name"`
	Comment string `json:"comment"`
	Type    string `json:"type"`
}

var (
	docsMu    sync.Mutex
	docsCache = make(map[string][]ModuleDocs)
)

// LoadDocs reads and decodes a docs.json, memoized per path. Any I/O
// or decode failure yields an empty list, also memoized.
func LoadDocs(docsPath string) []ModuleDocs {
	docsMu.Lock()
	if cached, ok := docsCache[docsPath]; ok {
		docsMu.Unlock()
		return cached
	}
	docsMu.Unlock()

	var docs []ModuleDocs
	if data, err := os.ReadFile(docsPath); err == nil {
		if err := json.Unmarshal(data, &docs); err != nil {
			docs = nil
		}
	}

	docsMu.Lock()
	docsCache[docsPath] = docs
	docsMu.Unlock()
	return docs
}

// FindModuleDocs looks up a module's documentation across the project's
// dependencies, in dependency order; first hit wins.
func (p *Project) FindModuleDocs(moduleName string) *ModuleDocs {
	for _, dep := range p.Dependencies {
		for _, mod := range LoadDocs(p.DocsPath(dep)) {
			if mod.Name == moduleName {
				found := mod
				return &found
			}
		}
	}
	return nil
}

// ResetDocsCache clears memoized docs; used by tests.
func ResetDocsCache() {
	docsMu.Lock()
	defer docsMu.Unlock()
	docsCache = make(map[string][]ModuleDocs)
}
