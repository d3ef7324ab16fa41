package compiler

import (
	"errors"
	"testing"

	"cuelang.org/go/cue/cuecontext"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/modinit/internal/ir"
)

func TestCompileManifestBasic(t *testing.T) {
	ctx := cuecontext.New()
	v := ctx.CompileString(`
		modules: [
			{name: "kmem", init: "kmem_init", fini: "kmem_fini"},
			{name: "vm", imports: ["kmem"], init: "vm_init"},
			{name: "proc", imports: ["vm", "kmem", "vm"]},
		]
	`)
	require.NoError(t, v.Err())

	m, err := CompileManifest(v)
	require.NoError(t, err)

	assert.Equal(t, []ir.ModuleSpec{
		{Name: "kmem", Init: "kmem_init", Fini: "kmem_fini"},
		{Name: "vm", Imports: []string{"kmem"}, Init: "vm_init"},
		{Name: "proc", Imports: []string{"vm", "kmem", "vm"}},
	}, m.Modules)
}

func TestCompileManifestEmptyList(t *testing.T) {
	m, err := CompileSource("empty.cue", []byte(`modules: []`))
	require.NoError(t, err)
	assert.NotNil(t, m.Modules)
	assert.Empty(t, m.Modules)
}

func TestCompileManifestUsesCUEEvaluation(t *testing.T) {
	// Definitions and references resolve before compilation.
	src := `
		#base: {name: string, init: "\(name)_init"}
		_core: #base & {name: "core"}
		modules: [_core, {name: "app", imports: [_core.name]}]
	`
	m, err := CompileSource("eval.cue", []byte(src))
	require.NoError(t, err)

	require.Len(t, m.Modules, 2)
	assert.Equal(t, "core_init", m.Modules[0].Init)
	assert.Equal(t, []string{"core"}, m.Modules[1].Imports)
}

func TestCompileManifestErrors(t *testing.T) {
	tests := []struct {
		name      string
		src       string
		wantField string
	}{
		{
			name:      "missing modules",
			src:       `other: 1`,
			wantField: "modules",
		},
		{
			name:      "modules not a list",
			src:       `modules: {a: 1}`,
			wantField: "modules",
		},
		{
			name:      "entry not a struct",
			src:       `modules: ["kmem"]`,
			wantField: "modules[0]",
		},
		{
			name:      "missing name",
			src:       `modules: [{init: "x"}]`,
			wantField: "modules[0].name",
		},
		{
			name:      "unknown field",
			src:       `modules: [{name: "a", depends: ["b"]}]`,
			wantField: "modules[0].depends",
		},
		{
			name:      "imports not a list",
			src:       `modules: [{name: "a", imports: "b"}]`,
			wantField: "modules[0].imports",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := CompileSource("bad.cue", []byte(tt.src))
			require.Error(t, err)

			var ce *CompileError
			require.True(t, errors.As(err, &ce), "want *CompileError, got %T", err)
			assert.Equal(t, tt.wantField, ce.Field)
		})
	}
}

func TestCompileManifestTypeErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
	}{
		{"name not a string", `modules: [{name: 42}]`},
		{"import not a string", `modules: [{name: "a", imports: [1]}]`},
		{"hook not a string", `modules: [{name: "a", init: true}]`},
		{"syntax error", `modules: [`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := CompileSource("bad.cue", []byte(tt.src))
			assert.Error(t, err)
		})
	}
}

func TestCompileErrorFormatting(t *testing.T) {
	err := &CompileError{Field: "modules", Message: "modules is required"}
	assert.Equal(t, "modules: modules is required", err.Error())
}
