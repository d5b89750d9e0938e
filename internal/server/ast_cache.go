package server

import (
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/CWBudde/go-elm-lsp/internal/ast"
)

// astCacheCapacity bounds the number of cached ASTs; one entry per URI.
const astCacheCapacity = 50

type astEntry struct {
	version int
	file    *ast.File
}

// ASTCache is an LRU of parsed files keyed by URI. An entry is valid
// only for the exact document version it was parsed from; a newer
// version replaces the older entry for the same URI.
type ASTCache struct {
	mu    sync.Mutex
	cache *lru.Cache[string, astEntry]
}

// NewASTCache creates the cache at its fixed capacity.
func NewASTCache() *ASTCache {
	cache, err := lru.New[string, astEntry](astCacheCapacity)
	if err != nil {
		// Only reachable with a non-positive capacity.
		panic(err)
	}
	return &ASTCache{cache: cache}
}

// Get returns the cached AST for (uri, version) and bumps its LRU
// position. A stale version is a miss.
func (c *ASTCache) Get(uri string, version int) (*ast.File, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.cache.Get(uri)
	if !ok || entry.version != version {
		return nil, false
	}
	return entry.file, true
}

// Put stores the AST for (uri, version), replacing any entry for the
// same URI and evicting the least-recently used entry over capacity.
func (c *ASTCache) Put(uri string, version int, file *ast.File) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.cache.Add(uri, astEntry{version: version, file: file})
}

// Len reports the number of live entries.
func (c *ASTCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.cache.Len()
}

// Contains reports whether any version for uri is cached, without
// disturbing LRU order.
func (c *ASTCache) Contains(uri string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.cache.Contains(uri)
}
