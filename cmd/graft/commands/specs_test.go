package commands_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sumatoshi-tech/graft/cmd/graft/commands"
)

func TestSpecsList(t *testing.T) {
	t.Parallel()

	ws := newWorkspace(t, "output:\n  no_color: true\n")

	out, err := execute(commands.NewSpecsCommand(), "list", "--config", ws.config, "--spec-file", ws.spec)
	require.NoError(t, err)

	assert.Contains(t, out, "validate-on-save")
	assert.Contains(t, out, "repair-on-save")
	assert.Contains(t, out, "check-on-save")
	assert.Contains(t, out, ws.spec)
	assert.Contains(t, out, "builtin")
}

func TestSpecsShow(t *testing.T) {
	t.Parallel()

	ws := newWorkspace(t, "")

	out, err := execute(commands.NewSpecsCommand(), "show", "--config", ws.config, ws.spec)
	require.NoError(t, err)
	assert.Contains(t, out, "name: check-on-save")
	assert.Contains(t, out, "# graft:check")

	out, err = execute(commands.NewSpecsCommand(), "show", "--config", ws.config, "repair-on-save")
	require.NoError(t, err)
	assert.Contains(t, out, "name: repair-on-save")

	_, err = execute(commands.NewSpecsCommand(), "show", "--config", ws.config, "nope")
	require.Error(t, err)
}

func TestSpecsValidate(t *testing.T) {
	t.Parallel()

	ws := newWorkspace(t, "")

	bad := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("name: broken\n"), 0o600))

	out, err := execute(commands.NewSpecsCommand(), "validate", "--no-color", ws.spec)
	require.NoError(t, err)
	assert.Contains(t, out, "ok   "+ws.spec+" (1 specs")

	out, err = execute(commands.NewSpecsCommand(), "validate", "--no-color", ws.spec, bad)
	require.ErrorIs(t, err, commands.ErrInvalidSpecFiles)
	assert.Contains(t, out, "FAIL "+bad)
}

func TestSpecsSchema(t *testing.T) {
	t.Parallel()

	out, err := execute(commands.NewSpecsCommand(), "schema")
	require.NoError(t, err)
	assert.Contains(t, out, "insertion_anchor_patterns")
}
