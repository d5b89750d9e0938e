package project

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestURIToPath(t *testing.T) {
	assert.Equal(t, "/home/user/src/Main.elm", URIToPath("file:///home/user/src/Main.elm"))
	assert.Equal(t, "/home/user/my project/Main.elm", URIToPath("file:///home/user/my%20project/Main.elm"))
	assert.Equal(t, "/tmp/c#/Main.elm", URIToPath("file:///tmp/c%23/Main.elm"))
}

func TestPathToURI(t *testing.T) {
	assert.Equal(t, "file:///home/user/src/Main.elm", PathToURI("/home/user/src/Main.elm"))

	// Separators survive, spaces and '#' are escaped.
	assert.Equal(t, "file:///home/user/my%20project/Main.elm", PathToURI("/home/user/my project/Main.elm"))
	assert.Equal(t, "file:///tmp/c%23/Main.elm", PathToURI("/tmp/c#/Main.elm"))
}

func TestURIRoundTrip(t *testing.T) {
	paths := []string{
		"/home/user/src/Main.elm",
		"/tmp/with space/A.elm",
		"/tmp/with#hash/B.elm",
	}
	for _, path := range paths {
		assert.Equal(t, path, URIToPath(PathToURI(path)))
	}
}
