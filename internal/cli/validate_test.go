package cli

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/modinit/internal/compiler"
)

func TestValidate_Valid(t *testing.T) {
	stdout, _, err := execute(t, "validate", "testdata/kernel.cue")
	require.NoError(t, err)
	assert.Equal(t, "✓ Manifest valid (4 modules)\n", stdout)
}

func TestValidate_ValidJSON(t *testing.T) {
	stdout, _, err := execute(t, "--format", "json", "validate", "testdata/split")
	require.NoError(t, err)

	var resp struct {
		Status string           `json:"status"`
		Data   ValidationResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(stdout), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.True(t, resp.Data.Valid)
	assert.Equal(t, 2, resp.Data.Modules)
}

func TestValidate_CollectsAllErrors(t *testing.T) {
	stdout, _, err := execute(t, "--format", "json", "validate", "testdata/invalid.cue")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))

	var resp struct {
		Data ValidationResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(stdout), &resp))
	assert.False(t, resp.Data.Valid)

	codes := make([]string, len(resp.Data.Errors))
	for i, e := range resp.Data.Errors {
		codes[i] = e.Code
	}
	assert.Equal(t, []string{
		compiler.ErrDuplicateModule,
		compiler.ErrInvalidHookName,
		compiler.ErrUnknownImport,
	}, codes)
}

func TestValidate_ReportsCycles(t *testing.T) {
	stdout, _, err := execute(t, "validate", "testdata/cycle.cue")
	require.Error(t, err)
	assert.Contains(t, stdout, "✗ Validation failed")
	assert.Contains(t, stdout, "E206 modules: import cycle: A -> B -> A")
}

func TestValidate_MissingPath(t *testing.T) {
	_, _, err := execute(t, "validate", "testdata/nowhere")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}
