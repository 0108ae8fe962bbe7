package search

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPathChildDoesNotAliasParent(t *testing.T) {
	t.Parallel()

	parent := Path{2, 5}
	child := parent.Child(0)

	assert.Equal(t, Path{2, 5, 0}, child)
	assert.Equal(t, Path{2, 5}, parent)

	// A second child must not clobber the first.
	sibling := parent.Child(7)
	assert.Equal(t, Path{2, 5, 0}, child)
	assert.Equal(t, Path{2, 5, 7}, sibling)
}

func TestPathPageName(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "index", Path{}.PageName())
	assert.Equal(t, "2", Path{2}.PageName())
	assert.Equal(t, "2-5-0", Path{2, 5, 0}.PageName())

	// Encoding is collision free: [2,5] and [25] differ.
	assert.NotEqual(t, Path{2, 5}.PageName(), Path{25}.PageName())
}

func TestPathCompare(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 0, Path{2, 5}.Compare(Path{2, 5}))
	assert.Equal(t, -1, Path{}.Compare(Path{0}))
	assert.Equal(t, -1, Path{1, 2}.Compare(Path{1, 3}))
	assert.Equal(t, 1, Path{2}.Compare(Path{1, 9, 9}))
	assert.Equal(t, -1, Path{1}.Compare(Path{1, 0}))
}
