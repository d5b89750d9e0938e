// Package workspace provides workspace-wide symbol indexing for global
// symbol search.
package workspace

import (
	"log"
	"os"
	"regexp"
	"strings"
	"sync"
	"time"

	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/CWBudde/go-elm-lsp/internal/project"
)

// symbolCacheTTL bounds how stale a cached extraction may get.
const symbolCacheTTL = 5 * time.Second

// maxResults caps a single search to avoid overwhelming the client.
const maxResults = 500

// SymbolEntry is one extracted top-level symbol.
type SymbolEntry struct {
	Name     string
	Kind     protocol.SymbolKind
	Location protocol.Location
}

// Extraction patterns over raw text. Symbol search favors speed over
// precision at project scale, so no AST is involved.
var (
	typeAliasPattern = regexp.MustCompile(`^type alias ([A-Z][A-Za-z0-9_]*)`)
	typePattern      = regexp.MustCompile(`^type ([A-Z][A-Za-z0-9_]*)`)
	portPattern      = regexp.MustCompile(`^port ([a-z][A-Za-z0-9_]*)`)
	functionPattern  = regexp.MustCompile(`^([a-z][A-Za-z0-9_]*)[\s:=]`)
)

// reservedWords never start a function declaration.
var reservedWords = map[string]bool{
	"module": true, "import": true, "exposing": true, "as": true,
	"if": true, "then": true, "else": true, "case": true, "of": true,
	"let": true, "in": true, "type": true, "alias": true, "port": true,
	"where": true,
}

type cachedSymbols struct {
	builtAt time.Time
	entries []SymbolEntry
}

// SymbolIndex caches per-project symbol extractions. A cache slot is
// invalidated no later than symbolCacheTTL after it was populated.
type SymbolIndex struct {
	mu    sync.Mutex
	cache map[string]*cachedSymbols
	now   func() time.Time
}

// NewSymbolIndex creates an empty index.
func NewSymbolIndex() *SymbolIndex {
	return &SymbolIndex{
		cache: make(map[string]*cachedSymbols),
		now:   time.Now,
	}
}

// Search returns the project's symbols matching query: every symbol for
// an empty query, else a case-insensitive subsequence match.
func (si *SymbolIndex) Search(query string, proj *project.Project) []protocol.SymbolInformation {
	entries := si.projectSymbols(proj)

	var results []protocol.SymbolInformation
	for _, entry := range entries {
		if query != "" && !fuzzyMatch(query, entry.Name) {
			continue
		}
		results = append(results, protocol.SymbolInformation{
			Name:     entry.Name,
			Kind:     entry.Kind,
			Location: entry.Location,
		})
		if len(results) >= maxResults {
			break
		}
	}
	return results
}

func (si *SymbolIndex) projectSymbols(proj *project.Project) []SymbolEntry {
	si.mu.Lock()
	cached, ok := si.cache[proj.ProjectFolder]
	if ok && si.now().Sub(cached.builtAt) < symbolCacheTTL {
		entries := cached.entries
		si.mu.Unlock()
		return entries
	}
	si.mu.Unlock()

	var entries []SymbolEntry
	for _, file := range proj.ElmFiles() {
		entries = append(entries, extractFile(file)...)
	}
	log.Printf("Workspace symbol extraction: %d symbols in %s", len(entries), proj.ProjectFolder)

	si.mu.Lock()
	si.cache[proj.ProjectFolder] = &cachedSymbols{builtAt: si.now(), entries: entries}
	si.mu.Unlock()
	return entries
}

// extractFile scans one file line by line. Duplicate names within a
// file are emitted once; first occurrence wins.
func extractFile(path string) []SymbolEntry {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil
	}

	uri := project.PathToURI(path)
	seen := make(map[string]bool)
	var entries []SymbolEntry

	for lineNo, line := range strings.Split(string(data), "\n") {
		name, kind, ok := classifyLine(line)
		if !ok || seen[name] {
			continue
		}
		seen[name] = true
		entries = append(entries, SymbolEntry{
			Name: name,
			Kind: kind,
			Location: protocol.Location{
				URI: uri,
				Range: protocol.Range{
					Start: protocol.Position{Line: protocol.UInteger(lineNo), Character: 0},
					End:   protocol.Position{Line: protocol.UInteger(lineNo), Character: protocol.UInteger(len(line))},
				},
			},
		})
	}
	return entries
}

func classifyLine(line string) (string, protocol.SymbolKind, bool) {
	if m := typeAliasPattern.FindStringSubmatch(line); m != nil {
		return m[1], protocol.SymbolKindObject, true
	}
	if m := typePattern.FindStringSubmatch(line); m != nil {
		return m[1], protocol.SymbolKindEnum, true
	}
	if m := portPattern.FindStringSubmatch(line); m != nil {
		return m[1], protocol.SymbolKindFunction, true
	}
	if m := functionPattern.FindStringSubmatch(line); m != nil && !reservedWords[m[1]] {
		return m[1], protocol.SymbolKindFunction, true
	}
	return "", 0, false
}

// fuzzyMatch reports whether query is a case-insensitive subsequence of
// name.
func fuzzyMatch(query, name string) bool {
	q := strings.ToLower(query)
	n := strings.ToLower(name)
	i := 0
	for _, r := range n {
		if i < len(q) && rune(q[i]) == r {
			i++
		}
	}
	return i == len(q)
}

// SetClock overrides the index clock; used by TTL tests.
func (si *SymbolIndex) SetClock(now func() time.Time) {
	si.mu.Lock()
	defer si.mu.Unlock()
	si.now = now
}
