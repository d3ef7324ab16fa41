package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadManifest_File(t *testing.T) {
	res, err := LoadManifest(filepath.Join("testdata", "kernel.cue"))
	require.NoError(t, err)
	assert.Equal(t, 1, res.FileCount)
	assert.Equal(t, []string{"proc", "vm", "sched", "kmem"}, res.Manifest.Names())
}

func TestLoadManifest_PackageDirectory(t *testing.T) {
	res, err := LoadManifest(filepath.Join("testdata", "split"))
	require.NoError(t, err)
	assert.Equal(t, 2, res.FileCount)
	assert.Equal(t, []string{"kmem", "vm"}, res.Manifest.Names())

	vm, ok := res.Manifest.Lookup("vm")
	require.True(t, ok)
	assert.Equal(t, []string{"kmem"}, vm.Imports)
	assert.Equal(t, "", vm.Fini)
}

func TestLoadManifest_Errors(t *testing.T) {
	empty := t.TempDir()

	badDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(badDir, "bad.cue"), []byte("modules: [{name: 1}]\n"), 0o644))

	tests := []struct {
		name string
		path string
		code string
	}{
		{"missing", filepath.Join(empty, "nope.cue"), ErrCodeNotFound},
		{"no cue files", empty, ErrCodeNoFiles},
		{"bad shape", filepath.Join(badDir, "bad.cue"), ErrCodeBuildFailed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadManifest(tt.path)
			require.Error(t, err)
			var loadErr *LoadError
			require.ErrorAs(t, err, &loadErr)
			assert.Equal(t, tt.code, loadErr.Code)
		})
	}
}
