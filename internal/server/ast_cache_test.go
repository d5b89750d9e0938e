package server

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/CWBudde/go-elm-lsp/internal/ast"
)

func TestASTCacheVersionMatch(t *testing.T) {
	cache := NewASTCache()
	file := &ast.File{}

	cache.Put("file:///a.elm", 3, file)

	got, ok := cache.Get("file:///a.elm", 3)
	require.True(t, ok)
	assert.Same(t, file, got)

	_, ok = cache.Get("file:///a.elm", 2)
	assert.False(t, ok, "stale version must miss")
	_, ok = cache.Get("file:///a.elm", 4)
	assert.False(t, ok, "future version must miss")
	_, ok = cache.Get("file:///b.elm", 3)
	assert.False(t, ok)
}

func TestASTCacheNewerVersionReplaces(t *testing.T) {
	cache := NewASTCache()

	cache.Put("file:///a.elm", 1, &ast.File{})
	newer := &ast.File{}
	cache.Put("file:///a.elm", 2, newer)

	assert.Equal(t, 1, cache.Len(), "one entry per URI")
	_, ok := cache.Get("file:///a.elm", 1)
	assert.False(t, ok)
	got, ok := cache.Get("file:///a.elm", 2)
	require.True(t, ok)
	assert.Same(t, newer, got)
}

func TestASTCacheEvictsLeastRecentlyUsed(t *testing.T) {
	cache := NewASTCache()

	for i := 0; i < 50; i++ {
		cache.Put(fmt.Sprintf("file:///%d.elm", i), 1, &ast.File{})
	}
	require.Equal(t, 50, cache.Len())

	// Touch the oldest entry so it is no longer the eviction candidate.
	_, ok := cache.Get("file:///0.elm", 1)
	require.True(t, ok)

	// The 51st insert evicts exactly one entry: the LRU, now 1.elm.
	cache.Put("file:///50.elm", 1, &ast.File{})
	assert.Equal(t, 50, cache.Len())

	assert.True(t, cache.Contains("file:///0.elm"))
	assert.False(t, cache.Contains("file:///1.elm"))
	assert.True(t, cache.Contains("file:///50.elm"))
}
