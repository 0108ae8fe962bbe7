package config_test

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sumatoshi-tech/gdbsearch/internal/config"
)

func TestLoadDefaults(t *testing.T) {
	t.Parallel()

	cfg, err := config.Load("")
	require.NoError(t, err)

	assert.Equal(t, "(gdb) ", cfg.GDB.Prompt)
	assert.Equal(t, "main", cfg.GDB.Entry)
	assert.Equal(t, time.Second, cfg.GDB.ReadTimeout)
	assert.Equal(t, 8*time.Second, cfg.GDB.RunTimeout)
	assert.Equal(t, "private_mem", cfg.Search.Probe)
	assert.Equal(t, "n > p", cfg.Search.Expression)
	assert.Equal(t, 0, cfg.Search.MaxPasses)
	assert.Equal(t, "gdbsearch-report", cfg.Report.Dir)
	assert.Equal(t, 25, cfg.Report.BarLength)
}

func TestLoadFromFile(t *testing.T) {
	t.Parallel()

	configContent := `
gdb:
  prompt: "(lldb) "
  entry: "start"
  read_timeout: 250ms
  run_timeout: 30s

search:
  probe: io_rchar
  expression: "n > p + 4096"
  max_passes: 100

report:
  dir: /tmp/growth-report
  bar_length: 40
`

	tmpDir := t.TempDir()

	tmpFile, err := os.CreateTemp(tmpDir, "test-config-*.yaml")
	require.NoError(t, err)

	_, writeErr := tmpFile.WriteString(configContent)
	require.NoError(t, writeErr)

	tmpFile.Close()

	cfg, loadErr := config.Load(tmpFile.Name())
	require.NoError(t, loadErr)

	assert.Equal(t, "(lldb) ", cfg.GDB.Prompt)
	assert.Equal(t, "start", cfg.GDB.Entry)
	assert.Equal(t, 250*time.Millisecond, cfg.GDB.ReadTimeout)
	assert.Equal(t, 30*time.Second, cfg.GDB.RunTimeout)
	assert.Equal(t, "io_rchar", cfg.Search.Probe)
	assert.Equal(t, "n > p + 4096", cfg.Search.Expression)
	assert.Equal(t, 100, cfg.Search.MaxPasses)
	assert.Equal(t, "/tmp/growth-report", cfg.Report.Dir)
	assert.Equal(t, 40, cfg.Report.BarLength)
}

func TestLoadValidation(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		content string
		wantErr error
	}{
		{
			name:    "empty prompt",
			content: "gdb:\n  prompt: \"\"\n",
			wantErr: config.ErrEmptyPrompt,
		},
		{
			name:    "zero read timeout",
			content: "gdb:\n  read_timeout: 0s\n",
			wantErr: config.ErrInvalidTimeout,
		},
		{
			name:    "negative max passes",
			content: "search:\n  max_passes: -1\n",
			wantErr: config.ErrInvalidMaxPasses,
		},
		{
			name:    "zero bar length",
			content: "report:\n  bar_length: 0\n",
			wantErr: config.ErrInvalidBarLength,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			tmpFile, err := os.CreateTemp(t.TempDir(), "test-config-*.yaml")
			require.NoError(t, err)

			_, writeErr := tmpFile.WriteString(tt.content)
			require.NoError(t, writeErr)

			tmpFile.Close()

			_, loadErr := config.Load(tmpFile.Name())
			require.Error(t, loadErr)
			assert.ErrorIs(t, loadErr, tt.wantErr)
		})
	}
}

func TestLoadMissingExplicitFile(t *testing.T) {
	t.Parallel()

	_, err := config.Load("/nonexistent/gdbsearch.yaml")
	require.Error(t, err)
}
