package ast

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTrackerPreludeSeeds(t *testing.T) {
	tracker := NewImportTracker(nil)

	assert.Contains(t, tracker.ExposedBy("Just"), "Maybe")
	assert.Contains(t, tracker.ExposedBy("Nothing"), "Maybe")
	assert.Contains(t, tracker.ExposedBy("Ok"), "Result")
	assert.Contains(t, tracker.ExposedBy("Err"), "Result")
	assert.Contains(t, tracker.ExposedBy("::"), "List")
	assert.Contains(t, tracker.ExposedBy("Program"), "Platform")
	assert.Contains(t, tracker.UnknownImports, "Basics")
	assert.Equal(t, []string{"Platform.Cmd"}, tracker.ResolveAlias("Cmd"))
	assert.Equal(t, []string{"Platform.Sub"}, tracker.ResolveAlias("Sub"))
}

func TestTrackerFileImports(t *testing.T) {
	file := &File{
		Imports: []*Import{
			{ModuleName: "Helpers", Exposing: &ExposingList{
				Items: []ExposedItem{
					{Kind: ExposedValue, Name: "add"},
					{Kind: ExposedType, Name: "Config", OpenRange: &Range{}},
				},
			}},
			{ModuleName: "Html", Alias: "H"},
			{ModuleName: "Util", Exposing: &ExposingList{All: true}},
		},
	}

	tracker := NewImportTracker(file)

	assert.Equal(t, []string{"Helpers"}, tracker.ExposedBy("add"))
	assert.Equal(t, []string{"Helpers"}, tracker.ExposedBy("Config"))
	assert.Equal(t, []string{"Html"}, tracker.ResolveAlias("H"))
	assert.Contains(t, tracker.UnknownImports, "Util")
	// An unaliased qualifier denotes itself.
	assert.Equal(t, []string{"Helpers"}, tracker.ResolveAlias("Helpers"))
}

func TestTrackerPreludeSurvivesImports(t *testing.T) {
	file := &File{
		Imports: []*Import{
			{ModuleName: "MyMaybe", Exposing: &ExposingList{
				Items: []ExposedItem{{Kind: ExposedValue, Name: "Just"}},
			}},
		},
	}

	tracker := NewImportTracker(file)

	owners := tracker.ExposedBy("Just")
	require.GreaterOrEqual(t, len(owners), 2)
	assert.Equal(t, "Maybe", owners[0], "prelude seeds come first")
	assert.Contains(t, owners, "MyMaybe")
}

func TestIsPreludeModule(t *testing.T) {
	assert.True(t, IsPreludeModule("Basics"))
	assert.True(t, IsPreludeModule("Platform.Cmd"))
	assert.False(t, IsPreludeModule("Helpers"))
}
