package compiler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/modinit/internal/ir"
)

func manifest(mods ...ir.ModuleSpec) *ir.Manifest {
	return &ir.Manifest{Modules: mods}
}

func mod(name string, imports ...string) ir.ModuleSpec {
	return ir.ModuleSpec{Name: name, Imports: imports}
}

func TestAnalyzeCycles_Empty(t *testing.T) {
	assert.Empty(t, AnalyzeCycles(nil))
	assert.Empty(t, AnalyzeCycles(manifest()))
}

func TestAnalyzeCycles_DAG(t *testing.T) {
	m := manifest(
		mod("app", "db", "cache"),
		mod("db", "config"),
		mod("cache", "config"),
		mod("config"),
	)
	assert.Empty(t, AnalyzeCycles(m), "DAG should produce no cycle reports")
}

func TestAnalyzeCycles_TwoModules(t *testing.T) {
	reports := AnalyzeCycles(manifest(mod("A", "B"), mod("B", "A")))
	require.Len(t, reports, 1)
	assert.Equal(t, []string{"A", "B"}, reports[0].Members)
	assert.Equal(t, []string{"A", "B", "A"}, reports[0].Path)
	assert.Equal(t, "import cycle: A -> B -> A", reports[0].Message)
}

func TestAnalyzeCycles_SelfImport(t *testing.T) {
	reports := AnalyzeCycles(manifest(mod("ok"), mod("a", "a")))
	require.Len(t, reports, 1)
	assert.Equal(t, []string{"a", "a"}, reports[0].Path)
}

func TestAnalyzeCycles_ShortestPathThroughFirstMember(t *testing.T) {
	m := manifest(
		mod("a", "b"),
		mod("b", "c"),
		mod("c", "a", "b"),
	)
	reports := AnalyzeCycles(m)
	require.Len(t, reports, 1)
	assert.Equal(t, []string{"a", "b", "c"}, reports[0].Members)
	assert.Equal(t, []string{"a", "b", "c", "a"}, reports[0].Path)
}

func TestAnalyzeCycles_ReportsEveryCycleInRegistryOrder(t *testing.T) {
	m := manifest(
		mod("x"),
		mod("y", "y"),
		mod("p", "q", "x"),
		mod("q", "p"),
	)
	reports := AnalyzeCycles(m)
	require.Len(t, reports, 2)
	assert.Equal(t, []string{"y", "y"}, reports[0].Path)
	assert.Equal(t, []string{"p", "q", "p"}, reports[1].Path)
}

func TestAnalyzeCycles_IgnoresUnknownImports(t *testing.T) {
	assert.Empty(t, AnalyzeCycles(manifest(mod("a", "ghost"))))
}

func TestAnalyzeCycles_PathFollowsImports(t *testing.T) {
	m := manifest(
		mod("m0", "m1"),
		mod("m1", "m2", "m4"),
		mod("m2", "m3"),
		mod("m3", "m0"),
		mod("m4", "m0"),
	)
	reports := AnalyzeCycles(m)
	require.Len(t, reports, 1)

	path := reports[0].Path
	require.Equal(t, path[0], path[len(path)-1])
	for i := 0; i+1 < len(path); i++ {
		from, ok := m.Lookup(path[i])
		require.True(t, ok)
		assert.Contains(t, from.Imports, path[i+1])
	}
	assert.Equal(t, []string{"m0", "m1", "m4", "m0"}, path)
}
