package compiler

import (
	"fmt"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/token"

	"github.com/roach88/modinit/internal/ir"
)

// moduleFields are the fields a module entry may declare.
var moduleFields = map[string]bool{
	"name":    true,
	"imports": true,
	"init":    true,
	"fini":    true,
}

// CompileManifest parses a CUE value into a Manifest.
// The value must hold a top-level modules list, e.g.:
//
//	modules: [
//		{name: "kmem", init: "kmem_init", fini: "kmem_fini"},
//		{name: "vm", imports: ["kmem"], init: "vm_init"},
//	]
//
// List order becomes registry order. CompileManifest checks shape only;
// name resolution and cycles are Validate's job.
func CompileManifest(v cue.Value) (*ir.Manifest, error) {
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}

	modsVal := v.LookupPath(cue.ParsePath("modules"))
	if !modsVal.Exists() {
		return nil, &CompileError{
			Field:   "modules",
			Message: "modules is required",
			Pos:     v.Pos(),
		}
	}
	if modsVal.IncompleteKind() != cue.ListKind {
		return nil, &CompileError{
			Field:   "modules",
			Message: "modules must be a list",
			Pos:     modsVal.Pos(),
		}
	}

	iter, err := modsVal.List()
	if err != nil {
		return nil, formatCUEError(err)
	}

	m := &ir.Manifest{Modules: []ir.ModuleSpec{}}
	for i := 0; iter.Next(); i++ {
		mod, err := parseModule(fmt.Sprintf("modules[%d]", i), iter.Value())
		if err != nil {
			return nil, err
		}
		m.Modules = append(m.Modules, mod)
	}
	return m, nil
}

// CompileSource compiles CUE source text into a Manifest. filename is used
// only for error positions.
func CompileSource(filename string, src []byte) (*ir.Manifest, error) {
	v := cuecontext.New().CompileBytes(src, cue.Filename(filename))
	return CompileManifest(v)
}

func parseModule(field string, v cue.Value) (ir.ModuleSpec, error) {
	var mod ir.ModuleSpec

	if v.IncompleteKind() != cue.StructKind {
		return mod, &CompileError{
			Field:   field,
			Message: "module entry must be a struct",
			Pos:     v.Pos(),
		}
	}

	fields, err := v.Fields()
	if err != nil {
		return mod, formatCUEError(err)
	}
	for fields.Next() {
		if label := fields.Label(); !moduleFields[label] {
			return mod, &CompileError{
				Field:   field + "." + label,
				Message: fmt.Sprintf("unknown field %q", label),
				Pos:     fields.Value().Pos(),
			}
		}
	}

	nameVal := v.LookupPath(cue.ParsePath("name"))
	if !nameVal.Exists() {
		return mod, &CompileError{
			Field:   field + ".name",
			Message: "name is required",
			Pos:     v.Pos(),
		}
	}
	if mod.Name, err = nameVal.String(); err != nil {
		return mod, formatCUEError(err)
	}

	if mod.Imports, err = parseImports(field+".imports", v.LookupPath(cue.ParsePath("imports"))); err != nil {
		return mod, err
	}
	if mod.Init, err = optionalString(v.LookupPath(cue.ParsePath("init"))); err != nil {
		return mod, err
	}
	if mod.Fini, err = optionalString(v.LookupPath(cue.ParsePath("fini"))); err != nil {
		return mod, err
	}
	return mod, nil
}

// parseImports reads an optional list of module names. Order and
// duplicates are preserved.
func parseImports(field string, v cue.Value) ([]string, error) {
	if !v.Exists() {
		return nil, nil
	}
	if v.IncompleteKind() != cue.ListKind {
		return nil, &CompileError{
			Field:   field,
			Message: "imports must be a list of module names",
			Pos:     v.Pos(),
		}
	}

	iter, err := v.List()
	if err != nil {
		return nil, formatCUEError(err)
	}
	var imports []string
	for iter.Next() {
		name, err := iter.Value().String()
		if err != nil {
			return nil, formatCUEError(err)
		}
		imports = append(imports, name)
	}
	return imports, nil
}

func optionalString(v cue.Value) (string, error) {
	if !v.Exists() {
		return "", nil
	}
	s, err := v.String()
	if err != nil {
		return "", formatCUEError(err)
	}
	return s, nil
}

// CompileError represents a compilation error with source position.
type CompileError struct {
	Field   string
	Message string
	Pos     token.Pos
}

func (e *CompileError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s",
			e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(),
			e.Field, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// formatCUEError extracts position info from CUE errors.
func formatCUEError(err error) error {
	if err == nil {
		return nil
	}

	errs := errors.Errors(err)
	if len(errs) == 0 {
		return err
	}

	first := errs[0]
	if positions := errors.Positions(first); len(positions) > 0 {
		return &CompileError{
			Field:   "cue",
			Message: first.Error(),
			Pos:     positions[0],
		}
	}
	return err
}
