package commands

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProbesCommandListsEveryProbe(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer

	cmd := NewProbesCommand()
	cmd.SetArgs([]string{})
	cmd.SetOut(&buf)

	require.NoError(t, cmd.Execute())

	out := buf.String()
	for _, name := range []string{"private_dirty", "private_mem", "io_rchar", "io_wchar", "fd_count"} {
		assert.Contains(t, out, name)
	}
}
