package engine

import (
	"fmt"
	"strings"
)

// Hook is an init or fini capability. A nil error is success; anything else
// is failure. The engine never inspects what a hook does.
type Hook func() error

// Descriptor is one module in a Registry.
//
// Descriptors are owned by the Registry for its whole lifetime. Only the
// state field is mutated, and only by Sort and Run.
type Descriptor struct {
	name    string
	imports []int // indices into Registry.modules, declaration order
	init    Hook
	fini    Hook
	state   State
}

// Name returns the module name, unique within its registry.
func (d *Descriptor) Name() string { return d.name }

// State returns the module's lifecycle state.
func (d *Descriptor) State() State { return d.state }

// HasInit reports whether the module declares an init hook.
func (d *Descriptor) HasInit() bool { return d.init != nil }

// HasFini reports whether the module declares a fini hook.
func (d *Descriptor) HasFini() bool { return d.fini != nil }

// Registry is the fixed, ordered set of modules the engine works on.
type Registry struct {
	modules []Descriptor
	byName  map[string]int
}

// Len returns the number of modules.
func (r *Registry) Len() int {
	if r == nil {
		return 0
	}
	return len(r.modules)
}

// Module returns the descriptor at index i in registry order.
func (r *Registry) Module(i int) *Descriptor {
	return &r.modules[i]
}

// Lookup returns the registry index of the named module.
func (r *Registry) Lookup(name string) (int, bool) {
	i, ok := r.byName[name]
	return i, ok
}

// Imports returns the names of the modules imported by index i,
// in declaration order and including duplicates.
func (r *Registry) Imports(i int) []string {
	d := &r.modules[i]
	names := make([]string, len(d.imports))
	for j, idx := range d.imports {
		names[j] = r.modules[idx].name
	}
	return names
}

// Module declares one module for a Builder.
type Module struct {
	Name    string
	Imports []string // module names, order significant, duplicates permitted
	Init    Hook
	Fini    Hook
}

// Builder assembles a Registry. Imports may name modules added later;
// they are resolved by Build.
type Builder struct {
	modules []Module
}

// NewBuilder returns an empty Builder.
func NewBuilder() *Builder {
	return &Builder{}
}

// Add appends a module in registry order.
func (b *Builder) Add(m Module) *Builder {
	m.Imports = append([]string(nil), m.Imports...)
	b.modules = append(b.modules, m)
	return b
}

// Build resolves import names to indices and returns the Registry.
// All modules start Uninitialized.
func (b *Builder) Build() (*Registry, error) {
	reg := &Registry{
		modules: make([]Descriptor, len(b.modules)),
		byName:  make(map[string]int, len(b.modules)),
	}

	for i, m := range b.modules {
		if strings.TrimSpace(m.Name) == "" {
			return nil, fmt.Errorf("%w: module at position %d", ErrEmptyName, i)
		}
		if prev, dup := reg.byName[m.Name]; dup {
			return nil, fmt.Errorf("%w: %q at positions %d and %d", ErrDuplicateModule, m.Name, prev, i)
		}
		reg.byName[m.Name] = i
	}

	for i, m := range b.modules {
		imports := make([]int, len(m.Imports))
		for j, name := range m.Imports {
			idx, ok := reg.byName[name]
			if !ok {
				return nil, fmt.Errorf("%w: %q imports %q", ErrUnknownImport, m.Name, name)
			}
			imports[j] = idx
		}
		reg.modules[i] = Descriptor{
			name:    m.Name,
			imports: imports,
			init:    m.Init,
			fini:    m.Fini,
			state:   Uninitialized,
		}
	}

	return reg, nil
}
