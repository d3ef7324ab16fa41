package harness

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScenarios_Golden(t *testing.T) {
	for _, name := range []string{
		"kernel_success",
		"kernel_vm_fails",
		"kernel_fini_fails",
		"ab_cycle",
		"abc_skip_finalize",
	} {
		t.Run(name, func(t *testing.T) {
			s, err := LoadScenario(filepath.Join("testdata", "scenarios", name+".yaml"))
			require.NoError(t, err)

			result, err := RunWithGolden(t, s)
			require.NoError(t, err)
			assert.True(t, result.Pass, "errors: %v", result.Errors)
		})
	}
}

func TestScenarios_AllPass(t *testing.T) {
	paths, err := filepath.Glob(filepath.Join("testdata", "scenarios", "*.yaml"))
	require.NoError(t, err)
	require.NotEmpty(t, paths)

	for _, path := range paths {
		t.Run(filepath.Base(path), func(t *testing.T) {
			s, err := LoadScenario(path)
			require.NoError(t, err)

			result, err := Run(s)
			require.NoError(t, err)
			assert.True(t, result.Pass, "errors: %v", result.Errors)
		})
	}
}

func TestRun_ReportsEveryMismatch(t *testing.T) {
	s, err := ParseScenario([]byte(`
name: wrong_expectations
modules:
  - name: a
    init: a_init
  - name: b
    imports: [a]
    init: b_init
expect:
  init: failed
  init_cursor: 0
  order: [b, a]
  calls: ["init:a"]
`), t.TempDir())
	require.NoError(t, err)

	result, err := Run(s)
	require.NoError(t, err)
	assert.False(t, result.Pass)
	require.Len(t, result.Errors, 4)
	assert.Contains(t, result.Errors[0], "Expectation failed: init\n")
	assert.Contains(t, result.Errors[1], "Expectation failed: init_cursor\n")
	assert.Contains(t, result.Errors[2], "Expectation failed: order\n")
	assert.Contains(t, result.Errors[3], "Expectation failed: calls\n")
}

func TestRun_Deterministic(t *testing.T) {
	s, err := LoadScenario(filepath.Join("testdata", "scenarios", "kernel_vm_fails.yaml"))
	require.NoError(t, err)

	first, err := Run(s)
	require.NoError(t, err)
	second, err := Run(s)
	require.NoError(t, err)
	assert.Equal(t, first.Record, second.Record)
}

func TestRun_UnknownFailHook(t *testing.T) {
	s, err := ParseScenario([]byte(`
name: ghost_hook
modules:
  - name: a
    init: a_init
fail: [ghost_init]
expect:
  init: success
`), t.TempDir())
	require.NoError(t, err)

	_, err = Run(s)
	assert.ErrorContains(t, err, `undeclared hook "ghost_init"`)
}

func TestRun_UnbindableManifest(t *testing.T) {
	s, err := ParseScenario([]byte(`
name: dangling
modules:
  - name: a
    imports: [ghost]
expect:
  init: success
`), t.TempDir())
	require.NoError(t, err)

	_, err = Run(s)
	assert.ErrorContains(t, err, "bind manifest")
}
