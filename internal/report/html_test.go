package report_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sumatoshi-tech/gdbsearch/internal/report"
	"github.com/Sumatoshi-tech/gdbsearch/internal/search"
)

func TestRendererWritesLinkedPages(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	source := writeSource(t, dir, "grow.c", fiveLines)
	outDir := filepath.Join(dir, "out")

	agg := report.NewAggregator()
	agg.Record(frameFor(source, 2), "", 10, 40, search.Path{}, 2)
	agg.Record(frameFor(source, 4), "", 40, 50, search.Path{}, 5)
	agg.Record(frameFor(source, 3), "", 0, 30, search.Path{2}, 1)

	renderer := &report.Renderer{Dir: outDir}
	require.NoError(t, renderer.Render(agg.Records()))

	// One page per parent path: the root page and the page one level
	// deeper at path [2].
	rootPage, readErr := os.ReadFile(filepath.Join(outDir, "index.html"))
	require.NoError(t, readErr)

	deepPage, readErr := os.ReadFile(filepath.Join(outDir, "2.html"))
	require.NoError(t, readErr)

	root := string(rootPage)

	// Findings link one level deeper, keyed by the child path.
	assert.Contains(t, root, `href="2.html"`)
	assert.Contains(t, root, `href="5.html"`)
	assert.Contains(t, root, "q = malloc(SZ);")

	// Deltas 30 and 10 of a 40 total: 18 and 6 of 25 bar cells.
	assert.Contains(t, root, strings.Repeat("#", 18)+strings.Repeat("-", 7))
	assert.Contains(t, root, strings.Repeat("#", 6)+strings.Repeat("-", 19))

	// Non-finding lines carry an empty indicator.
	assert.Contains(t, root, strings.Repeat("-", 25)+"int grow(void) {")

	assert.Contains(t, string(deepPage), "fill(p);")
}

func TestRendererStableLinkEncoding(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	source := writeSource(t, dir, "grow.c", fiveLines)
	outDir := filepath.Join(dir, "out")

	agg := report.NewAggregator()
	agg.Record(frameFor(source, 2), "", 1, 9, search.Path{2, 5}, 0)

	renderer := &report.Renderer{Dir: outDir}
	require.NoError(t, renderer.Render(agg.Records()))

	page, readErr := os.ReadFile(filepath.Join(outDir, "2-5.html"))
	require.NoError(t, readErr)
	assert.Contains(t, string(page), `href="2-5-0.html"`)
}

func TestRendererShrinkingTransitionGetsEmptyBar(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	source := writeSource(t, dir, "grow.c", fiveLines)
	outDir := filepath.Join(dir, "out")

	agg := report.NewAggregator()
	agg.Record(frameFor(source, 2), "", 100, 10, search.Path{}, 2)

	renderer := &report.Renderer{Dir: outDir}
	require.NoError(t, renderer.Render(agg.Records()))

	page, readErr := os.ReadFile(filepath.Join(outDir, "index.html"))
	require.NoError(t, readErr)

	// A value that shrank still gets its page link, behind a
	// zero-width bar.
	assert.Contains(t, string(page), `href="2.html"`)
	assert.Contains(t, string(page), strings.Repeat("-", 25)+"  p = malloc(SZ);")
}

func TestRendererNoRecordsWritesNothing(t *testing.T) {
	t.Parallel()

	outDir := filepath.Join(t.TempDir(), "out")

	renderer := &report.Renderer{Dir: outDir}
	require.NoError(t, renderer.Render(nil))

	_, statErr := os.Stat(outDir)
	assert.True(t, os.IsNotExist(statErr))
}
