package testutil

import (
	"fmt"

	"github.com/roach88/modinit/internal/ir"
)

// KernelManifest is a small acyclic manifest shaped like a kernel boot:
// kmem first, then vm and sched on top of it, then proc on both.
//
// Sorted order: kmem, vm, sched, proc.
func KernelManifest() *ir.Manifest {
	return &ir.Manifest{Modules: []ir.ModuleSpec{
		{Name: "proc", Imports: []string{"vm", "sched"}, Init: "proc_init", Fini: "proc_fini"},
		{Name: "vm", Imports: []string{"kmem"}, Init: "vm_init", Fini: "vm_fini"},
		{Name: "sched", Imports: []string{"kmem"}, Init: "sched_init"},
		{Name: "kmem", Init: "kmem_init", Fini: "kmem_fini"},
	}}
}

// ABCManifest is the canonical three-module example: B imports A, C imports
// A and B. Sorted order: A, B, C.
func ABCManifest() *ir.Manifest {
	return &ir.Manifest{Modules: []ir.ModuleSpec{
		{Name: "A", Init: "a_init", Fini: "a_fini"},
		{Name: "B", Imports: []string{"A"}, Init: "b_init", Fini: "b_fini"},
		{Name: "C", Imports: []string{"A", "B"}, Init: "c_init", Fini: "c_fini"},
	}}
}

// CycleManifest has A and B importing each other.
func CycleManifest() *ir.Manifest {
	return &ir.Manifest{Modules: []ir.ModuleSpec{
		{Name: "A", Imports: []string{"B"}, Init: "a_init", Fini: "a_fini"},
		{Name: "B", Imports: []string{"A"}, Init: "b_init", Fini: "b_fini"},
	}}
}

// ChainManifest returns m0 <- m1 <- ... <- m(n-1), each importing its
// predecessor, with hooks m<i>_init and m<i>_fini.
func ChainManifest(n int) *ir.Manifest {
	m := &ir.Manifest{Modules: make([]ir.ModuleSpec, n)}
	for i := 0; i < n; i++ {
		mod := ir.ModuleSpec{
			Name: fmt.Sprintf("m%d", i),
			Init: fmt.Sprintf("m%d_init", i),
			Fini: fmt.Sprintf("m%d_fini", i),
		}
		if i > 0 {
			mod.Imports = []string{fmt.Sprintf("m%d", i-1)}
		}
		m.Modules[i] = mod
	}
	return m
}
