package report_test

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sumatoshi-tech/gdbsearch/internal/report"
	"github.com/Sumatoshi-tech/gdbsearch/internal/search"
)

func writeSource(t *testing.T, dir, name, content string) string {
	t.Helper()

	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	return path
}

func frameFor(file string, line int) string {
	return fmt.Sprintf("#0  grow () at %s:%d", file, line)
}

const fiveLines = "int grow(void) {\n  p = malloc(SZ);\n  fill(p);\n  q = malloc(SZ);\n  return 0;\n}\n"

func TestAggregatorRecordsAndSorts(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	source := writeSource(t, dir, "grow.c", fiveLines)

	agg := report.NewAggregator()

	// Deeper finding recorded first; sorting must put the shallow
	// one ahead.
	agg.Record(frameFor(source, 4), "q = malloc(SZ);", 10, 40, search.Path{2}, 3)
	agg.Record(frameFor(source, 2), "p = malloc(SZ);", 5, 9, search.Path{}, 2)

	records := agg.Records()
	require.Len(t, records, 2)

	assert.Equal(t, 2, records[0].Line)
	assert.Equal(t, search.Path{2}, records[0].FullPath)
	assert.Equal(t, 0, records[0].Depth())
	assert.Equal(t, int64(4), records[0].Delta())

	assert.Equal(t, 4, records[1].Line)
	assert.Equal(t, search.Path{2, 3}, records[1].FullPath)
	assert.Equal(t, 1, records[1].Depth())
	assert.Equal(t, search.Path{2}, records[1].ParentPath())
}

func TestAggregatorDropsFramesWithoutLocation(t *testing.T) {
	t.Parallel()

	agg := report.NewAggregator()
	agg.Record("#0  0x00007ffff7df4090 in ?? ()", "", 1, 2, search.Path{}, 1)

	assert.Empty(t, agg.Records())
}

func TestAggregatorCachesUnreadableFiles(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	missing := filepath.Join(dir, "missing.c")

	agg := report.NewAggregator()
	agg.Record(frameFor(missing, 1), "", 1, 2, search.Path{}, 1)
	assert.Empty(t, agg.Records())

	// The file appearing later must not resurrect it: unreadability
	// is remembered from the first encounter, never retried.
	writeSource(t, dir, "missing.c", fiveLines)

	agg.Record(frameFor(missing, 1), "", 2, 3, search.Path{}, 2)
	assert.Empty(t, agg.Records())
}

func TestAggregatorReset(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	source := writeSource(t, dir, "grow.c", fiveLines)

	agg := report.NewAggregator()
	agg.Record(frameFor(source, 2), "", 1, 2, search.Path{}, 1)
	require.Len(t, agg.Records(), 1)

	agg.Reset()
	assert.Empty(t, agg.Records())

	agg.Record(frameFor(source, 2), "", 1, 2, search.Path{}, 1)
	assert.Len(t, agg.Records(), 1)
}
