package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"regexp"

	"gopkg.in/yaml.v3"

	"github.com/roach88/modinit/internal/compiler"
	"github.com/roach88/modinit/internal/engine"
	"github.com/roach88/modinit/internal/ir"
)

// Scenario is one simulated initialize/finalize cycle with expectations.
type Scenario struct {
	// Name uniquely identifies this scenario and names its golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Manifest is a CUE manifest path, relative to the scenario file.
	Manifest string `yaml:"manifest,omitempty"`

	// Modules declares the manifest inline instead.
	Modules []ModuleDecl `yaml:"modules,omitempty"`

	// Fail lists hook names that fail when called.
	Fail []string `yaml:"fail,omitempty"`

	// SkipFinalize stops after initialization.
	SkipFinalize bool `yaml:"skip_finalize,omitempty"`

	// TableLimit caps the engine table when positive.
	TableLimit int `yaml:"table_limit,omitempty"`

	// RunID is the fixed run id. Empty means testutil.DefaultRunID.
	RunID string `yaml:"run_id,omitempty"`

	// Expect holds the outcome checks.
	Expect Expect `yaml:"expect"`

	baseDir string
}

// ModuleDecl is an inline manifest entry.
type ModuleDecl struct {
	Name    string   `yaml:"name"`
	Imports []string `yaml:"imports,omitempty"`
	Init    string   `yaml:"init,omitempty"`
	Fini    string   `yaml:"fini,omitempty"`
}

// Expect describes the expected outcome. Only Init is required.
type Expect struct {
	Init           string   `yaml:"init"`
	InitCursor     *int     `yaml:"init_cursor,omitempty"`
	Order          []string `yaml:"order,omitempty"`
	Cycle          []string `yaml:"cycle,omitempty"`
	Finalize       string   `yaml:"finalize,omitempty"`
	FinalizeCursor *int     `yaml:"finalize_cursor,omitempty"`
	Calls          []string `yaml:"calls,omitempty"`
}

// FinalizeSkipped is the Expect.Finalize value for "finalization never ran".
const FinalizeSkipped = "skipped"

var callPattern = regexp.MustCompile(`^(init|fini):[^!\s]+!?$`)

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed, contains
// unknown fields, or fails validation.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}
	return ParseScenario(data, filepath.Dir(path))
}

// ParseScenario parses scenario YAML. baseDir resolves a relative
// manifest path.
func ParseScenario(data []byte, baseDir string) (*Scenario, error) {
	var s Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&s); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}
	s.baseDir = baseDir

	if err := validateScenario(&s); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	return &s, nil
}

// ManifestPath returns the resolved manifest path, or "" for an inline
// manifest.
func (s *Scenario) ManifestPath() string {
	if s.Manifest == "" || filepath.IsAbs(s.Manifest) {
		return s.Manifest
	}
	return filepath.Join(s.baseDir, s.Manifest)
}

// LoadManifest compiles the scenario's manifest.
func (s *Scenario) LoadManifest() (*ir.Manifest, error) {
	if s.Manifest == "" {
		m := &ir.Manifest{Modules: make([]ir.ModuleSpec, len(s.Modules))}
		for i, d := range s.Modules {
			m.Modules[i] = ir.ModuleSpec{Name: d.Name, Imports: d.Imports, Init: d.Init, Fini: d.Fini}
		}
		return m, nil
	}

	path := s.ManifestPath()
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read manifest: %w", err)
	}
	return compiler.CompileSource(path, src)
}

func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}

	switch {
	case s.Manifest != "" && len(s.Modules) > 0:
		return fmt.Errorf("manifest and modules are mutually exclusive")
	case s.Manifest == "" && len(s.Modules) == 0:
		return fmt.Errorf("manifest or modules is required")
	case s.Manifest != "":
		if _, err := os.Stat(s.ManifestPath()); os.IsNotExist(err) {
			return fmt.Errorf("manifest file not found: %s", s.ManifestPath())
		}
	}

	for i, d := range s.Modules {
		if d.Name == "" {
			return fmt.Errorf("modules[%d]: name is required", i)
		}
	}

	return validateExpect(&s.Expect)
}

func validateExpect(e *Expect) error {
	if e.Init == "" {
		return fmt.Errorf("expect.init is required")
	}
	initResult, ok := engine.ParseResult(e.Init)
	if !ok {
		return fmt.Errorf("expect.init: unknown result %q", e.Init)
	}

	if len(e.Cycle) > 0 && initResult != engine.Cycle {
		return fmt.Errorf("expect.cycle requires expect.init: cycle")
	}
	if len(e.Order) > 0 && initResult == engine.Cycle {
		return fmt.Errorf("expect.order cannot be used with expect.init: cycle")
	}

	switch e.Finalize {
	case "", FinalizeSkipped:
	default:
		r, ok := engine.ParseResult(e.Finalize)
		if !ok || (r != engine.Success && r != engine.Failed) {
			return fmt.Errorf("expect.finalize: must be success, failed or skipped, got %q", e.Finalize)
		}
	}

	for i, c := range e.Calls {
		if !callPattern.MatchString(c) {
			return fmt.Errorf("expect.calls[%d]: %q is not <stage>:<module>[!]", i, c)
		}
	}
	return nil
}
