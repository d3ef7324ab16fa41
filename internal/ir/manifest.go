package ir

// Manifest is a compiled module registry description.
// Module order is registry order, which fixes the sort's root order.
type Manifest struct {
	Modules []ModuleSpec `json:"modules"`
}

// ModuleSpec declares one module.
//
// Init and Fini name the module's hooks; an empty name means the module has
// no hook for that phase.
type ModuleSpec struct {
	Name    string   `json:"name"`
	Imports []string `json:"imports,omitempty"`
	Init    string   `json:"init,omitempty"`
	Fini    string   `json:"fini,omitempty"`
}

// Lookup returns the module named name.
func (m *Manifest) Lookup(name string) (ModuleSpec, bool) {
	for _, mod := range m.Modules {
		if mod.Name == name {
			return mod, true
		}
	}
	return ModuleSpec{}, false
}

// Names returns module names in registry order.
func (m *Manifest) Names() []string {
	names := make([]string, len(m.Modules))
	for i, mod := range m.Modules {
		names[i] = mod.Name
	}
	return names
}

// HookNames returns every declared hook name, init hooks before fini hooks
// within each module, in registry order.
func (m *Manifest) HookNames() []string {
	var hooks []string
	for _, mod := range m.Modules {
		if mod.Init != "" {
			hooks = append(hooks, mod.Init)
		}
		if mod.Fini != "" {
			hooks = append(hooks, mod.Fini)
		}
	}
	return hooks
}

// canonicalValue converts the manifest to the generic form MarshalCanonical
// accepts. Empty optional fields are omitted so that adding an explicit
// empty value does not change the hash.
func (m *Manifest) canonicalValue() map[string]any {
	mods := make([]any, len(m.Modules))
	for i, mod := range m.Modules {
		obj := map[string]any{"name": mod.Name}
		if len(mod.Imports) > 0 {
			imports := make([]any, len(mod.Imports))
			for j, imp := range mod.Imports {
				imports[j] = imp
			}
			obj["imports"] = imports
		}
		if mod.Init != "" {
			obj["init"] = mod.Init
		}
		if mod.Fini != "" {
			obj["fini"] = mod.Fini
		}
		mods[i] = obj
	}
	return map[string]any{
		"version": ManifestVersion,
		"modules": mods,
	}
}
