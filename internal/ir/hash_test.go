package ir

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleManifest() *Manifest {
	return &Manifest{Modules: []ModuleSpec{
		{Name: "kmem", Init: "kmem_init", Fini: "kmem_fini"},
		{Name: "vm", Imports: []string{"kmem"}, Init: "vm_init"},
	}}
}

func TestManifestHashDeterminism(t *testing.T) {
	h1, err := ManifestHash(sampleManifest())
	require.NoError(t, err)
	h2, err := ManifestHash(sampleManifest())
	require.NoError(t, err)

	assert.Equal(t, h1, h2)
	assert.Len(t, h1, 64, "SHA-256 hex is 64 characters")
}

func TestManifestHashIgnoresEmptyOptionalFields(t *testing.T) {
	m := sampleManifest()
	m.Modules[0].Imports = []string{}
	assert.Equal(t, MustManifestHash(sampleManifest()), MustManifestHash(m))
}

func TestManifestHashNormalizesNames(t *testing.T) {
	a := &Manifest{Modules: []ModuleSpec{{Name: "cafe\u0301"}}}
	b := &Manifest{Modules: []ModuleSpec{{Name: "caf\u00e9"}}}
	assert.Equal(t, MustManifestHash(a), MustManifestHash(b))
}

func TestManifestHashChangesWithContent(t *testing.T) {
	base := MustManifestHash(sampleManifest())

	reordered := sampleManifest()
	reordered.Modules[0], reordered.Modules[1] = reordered.Modules[1], reordered.Modules[0]

	renamedHook := sampleManifest()
	renamedHook.Modules[1].Init = "vm_setup"

	extraImport := sampleManifest()
	extraImport.Modules[0].Imports = []string{"vm"}

	assert.NotEqual(t, base, MustManifestHash(reordered), "registry order is significant")
	assert.NotEqual(t, base, MustManifestHash(renamedHook))
	assert.NotEqual(t, base, MustManifestHash(extraImport))
}

func TestTraceHashExcludesIdentity(t *testing.T) {
	rec := func(id string) *RunRecord {
		return &RunRecord{
			ID:           id,
			Label:        "label-" + id,
			ManifestHash: MustManifestHash(sampleManifest()),
			InitResult:   "success",
			InitCursor:   2,
			Table:        []string{"kmem", "vm"},
			Calls: []HookCall{
				{Seq: 1, Stage: StageInit, Module: "kmem", Hook: "kmem_init", OK: true},
				{Seq: 2, Stage: StageInit, Module: "vm", Hook: "vm_init", OK: false, Error: "boom"},
			},
		}
	}

	h1, err := TraceHash(rec("run-1"))
	require.NoError(t, err)
	h2, err := TraceHash(rec("run-2"))
	require.NoError(t, err)
	assert.Equal(t, h1, h2)

	changed := rec("run-1")
	changed.Calls[1].OK = true
	changed.Calls[1].Error = ""
	h3, err := TraceHash(changed)
	require.NoError(t, err)
	assert.NotEqual(t, h1, h3)
}

func TestManifestAccessors(t *testing.T) {
	m := sampleManifest()
	assert.Equal(t, []string{"kmem", "vm"}, m.Names())
	assert.Equal(t, []string{"kmem_init", "kmem_fini", "vm_init"}, m.HookNames())

	vm, ok := m.Lookup("vm")
	require.True(t, ok)
	assert.Equal(t, []string{"kmem"}, vm.Imports)

	_, ok = m.Lookup("ghost")
	assert.False(t, ok)
}

func TestRunRecordHelpers(t *testing.T) {
	r := &RunRecord{Calls: []HookCall{
		{Seq: 1, Stage: StageInit, Module: "a"},
		{Seq: 2, Stage: StageFini, Module: "a"},
		{Seq: 3, Stage: StageInit, Module: "b"},
	}}
	assert.False(t, r.Finalized())
	assert.Len(t, r.CallsIn(StageInit), 2)
	assert.Equal(t, "a", r.CallsIn(StageFini)[0].Module)

	r.FinalizeResult = "success"
	assert.True(t, r.Finalized())
}
