package analysis

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIdentityAtModuleHeaderExposing(t *testing.T) {
	f := newFixture(t)

	// Cursor on "main" in the module header exposing list.
	identity, ok := IdentityAt(f.mainFile, at(1, 23), f.workspace)
	require.True(t, ok)
	assert.Equal(t, SymbolIdentity{DefModule: "Main", Name: "main", Kind: SymbolValue}, identity)
}

func TestIdentityAtImportExposing(t *testing.T) {
	f := newFixture(t)

	identity, ok := IdentityAt(f.mainFile, at(3, 27), f.workspace)
	require.True(t, ok)
	assert.Equal(t, SymbolIdentity{DefModule: "Helpers", Name: "add", Kind: SymbolValue}, identity)

	// A type item yields kind type.
	identity, ok = IdentityAt(f.mainFile, at(4, 24), f.workspace)
	require.True(t, ok)
	assert.Equal(t, SymbolIdentity{DefModule: "Types", Name: "Msg", Kind: SymbolType}, identity)
}

func TestIdentityAtDeclarationName(t *testing.T) {
	f := newFixture(t)

	identity, ok := IdentityAt(f.mainFile, at(13, 2), f.workspace)
	require.True(t, ok)
	assert.Equal(t, SymbolIdentity{DefModule: "Main", Name: "update", Kind: SymbolValue}, identity)

	// The sibling signature name resolves to the same identity.
	identity, ok = IdentityAt(f.mainFile, at(12, 3), f.workspace)
	require.True(t, ok)
	assert.Equal(t, "update", identity.Name)
	assert.Equal(t, SymbolValue, identity.Kind)
}

func TestIdentityAtTypeDeclaration(t *testing.T) {
	f := newFixture(t)
	typesFile := f.parse(t, "src/Types.elm")

	identity, ok := IdentityAt(typesFile, at(4, 6), f.workspace)
	require.True(t, ok)
	assert.Equal(t, SymbolIdentity{DefModule: "Types", Name: "Msg", Kind: SymbolType}, identity)

	identity, ok = IdentityAt(typesFile, at(5, 8), f.workspace)
	require.True(t, ok)
	assert.Equal(t, SymbolIdentity{DefModule: "Types", Name: "Increment", Kind: SymbolConstructor}, identity)
}

func TestIdentityUnqualifiedExpression(t *testing.T) {
	f := newFixture(t)

	// `add` in the body resolves to its exposing module.
	identity, ok := IdentityAt(f.mainFile, at(9, 6), f.workspace)
	require.True(t, ok)
	assert.Equal(t, SymbolIdentity{DefModule: "Helpers", Name: "add", Kind: SymbolValue}, identity)
}

func TestIdentityQualifiedThroughAlias(t *testing.T) {
	f := newFixture(t)

	caller := `module Caller exposing (run)

import Helpers as H


run : Int
run =
    H.add 3 4
`
	writeFixtureFile(t, f, "src/Caller.elm", caller)
	callerFile := f.parse(t, "src/Caller.elm")

	identity, ok := IdentityAt(callerFile, at(8, 8), f.workspace)
	require.True(t, ok)
	assert.Equal(t, SymbolIdentity{DefModule: "Helpers", Name: "add", Kind: SymbolValue}, identity)
}

func TestIdentityConstructorPattern(t *testing.T) {
	f := newFixture(t)

	identity, ok := IdentityAt(f.mainFile, at(15, 9), f.workspace)
	require.True(t, ok)
	assert.Equal(t, SymbolIdentity{DefModule: "Types", Name: "Increment", Kind: SymbolConstructor}, identity)
}

func TestIdentityOpenImportFirstMatchWins(t *testing.T) {
	f := newFixture(t)

	writeFixtureFile(t, f, "src/First.elm", `module First exposing (shared)


shared : Int
shared =
    1
`)
	writeFixtureFile(t, f, "src/Second.elm", `module Second exposing (shared)


shared : Int
shared =
    2
`)
	writeFixtureFile(t, f, "src/Open.elm", `module Open exposing (use)

import First exposing (..)
import Second exposing (..)


use : Int
use =
    shared
`)

	openFile := f.parse(t, "src/Open.elm")

	identity, ok := IdentityAt(openFile, at(9, 5), f.workspace)
	require.True(t, ok)
	assert.Equal(t, "First", identity.DefModule, "first open import in encounter order wins")
	assert.Equal(t, "shared", identity.Name)
}

func TestIdentityNoneForPureLocal(t *testing.T) {
	f := newFixture(t)

	// The right-hand `name` is a case binder; the identity resolver
	// stays conservative and returns none.
	_, ok := IdentityAt(f.mainFile, at(19, 31), f.workspace)
	assert.False(t, ok)
}
