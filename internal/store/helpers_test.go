package store

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/roach88/modinit/internal/harness"
	"github.com/roach88/modinit/internal/ir"
	"github.com/roach88/modinit/internal/testutil"
)

// createTestStore opens a fresh journal in a temp dir.
func createTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// simulate runs m through the harness with a fixed run id.
func simulate(t *testing.T, id string, m *ir.Manifest, fail ...string) *ir.RunRecord {
	t.Helper()
	r, err := harness.Execute(m, harness.ExecOptions{
		Fail: harness.NewFailSet(fail...),
		IDs:  testutil.NewFixedIDGenerator(id),
	})
	require.NoError(t, err)
	return r
}
