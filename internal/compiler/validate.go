package compiler

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/roach88/modinit/internal/ir"
)

// Validation error codes (E200-E299)
const (
	ErrModuleNameEmpty = "E201" // module name is required
	ErrDuplicateModule = "E202" // module declared twice
	ErrUnknownImport   = "E203" // import names an undeclared module
	ErrInvalidHookName = "E204" // hook name is not an identifier
	ErrDuplicateHook   = "E205" // hook name bound to two modules or phases
	ErrImportCycle     = "E206" // modules import each other
)

// hookNamePattern accepts C-style and dotted identifiers, e.g. "kmem_init"
// or "vm.setup".
var hookNamePattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*(\.[A-Za-z_][A-Za-z0-9_]*)*$`)

// ValidationError represents a manifest validation error.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code"`
}

// Error implements the error interface.
func (e ValidationError) Error() string {
	return fmt.Sprintf("[%s] %s: %s", e.Code, e.Field, e.Message)
}

// Validate checks a compiled manifest against the registry rules.
// Returns all errors found (does not fail-fast). A manifest that passes
// binds to an engine registry and sorts without a cycle.
func Validate(m *ir.Manifest) []ValidationError {
	var errs []ValidationError

	declared := make(map[string]bool, len(m.Modules))
	for i, mod := range m.Modules {
		field := fmt.Sprintf("modules[%d].name", i)

		// E201
		if strings.TrimSpace(mod.Name) == "" {
			errs = append(errs, ValidationError{
				Field:   field,
				Message: "module name is required and must be non-empty",
				Code:    ErrModuleNameEmpty,
			})
			continue
		}

		// E202
		if declared[mod.Name] {
			errs = append(errs, ValidationError{
				Field:   field,
				Message: fmt.Sprintf("duplicate module name: %q", mod.Name),
				Code:    ErrDuplicateModule,
			})
		}
		declared[mod.Name] = true
	}

	hookOwner := make(map[string]string)
	for i, mod := range m.Modules {
		// E203
		for j, imp := range mod.Imports {
			if !declared[imp] {
				errs = append(errs, ValidationError{
					Field:   fmt.Sprintf("modules[%d].imports[%d]", i, j),
					Message: fmt.Sprintf("module %q imports undeclared module %q", mod.Name, imp),
					Code:    ErrUnknownImport,
				})
			}
		}

		for _, hook := range []struct{ phase, name string }{{"init", mod.Init}, {"fini", mod.Fini}} {
			if hook.name == "" {
				continue
			}
			field := fmt.Sprintf("modules[%d].%s", i, hook.phase)

			// E204
			if !hookNamePattern.MatchString(hook.name) {
				errs = append(errs, ValidationError{
					Field:   field,
					Message: fmt.Sprintf("invalid hook name %q", hook.name),
					Code:    ErrInvalidHookName,
				})
				continue
			}

			// E205
			owner := fmt.Sprintf("%s.%s", mod.Name, hook.phase)
			if prev, ok := hookOwner[hook.name]; ok {
				errs = append(errs, ValidationError{
					Field:   field,
					Message: fmt.Sprintf("hook %q already bound to %s", hook.name, prev),
					Code:    ErrDuplicateHook,
				})
				continue
			}
			hookOwner[hook.name] = owner
		}
	}

	// E206
	for _, c := range AnalyzeCycles(m) {
		errs = append(errs, ValidationError{
			Field:   "modules",
			Message: c.Message,
			Code:    ErrImportCycle,
		})
	}

	return errs
}
