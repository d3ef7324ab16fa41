package cli

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/spf13/cobra"

	"github.com/roach88/modinit/internal/compiler"
	"github.com/roach88/modinit/internal/engine"
	"github.com/roach88/modinit/internal/ir"
)

// OrderOptions holds flags for the order command.
type OrderOptions struct {
	*RootOptions
	TableLimit int
}

// OrderEntry is one row of the initialization table.
type OrderEntry struct {
	Module string `json:"module"`
	Init   string `json:"init,omitempty"`
	Fini   string `json:"fini,omitempty"`
}

// OrderResult is the JSON payload of the order command.
type OrderResult struct {
	Result string       `json:"result"`
	Order  []OrderEntry `json:"order,omitempty"`
	Cycle  []string     `json:"cycle,omitempty"`
}

// NewOrderCommand creates the order command.
func NewOrderCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &OrderOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "order <manifest>",
		Short: "Print the initialization order",
		Long: `Sort the modules of a manifest and print the order they would be
initialized in, with their init and fini hooks. No hooks are run.

Finalization runs the same table bottom to top.

Examples:
  modinit order ./kernel.cue
  modinit order ./manifests/kernel --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runOrder(opts, args[0], cmd)
		},
	}

	cmd.Flags().IntVar(&opts.TableLimit, "table-limit", 0, "maximum number of modules (0 = engine default)")

	return cmd
}

func runOrder(opts *OrderOptions, path string, cmd *cobra.Command) error {
	f := newFormatter(opts.RootOptions, cmd)

	res, err := loadOrExit(f, path)
	if err != nil {
		return err
	}
	m := res.Manifest

	reg, err := buildRegistry(m)
	if err != nil {
		return reportRegistryError(f, err)
	}

	engineOpts := []engine.Option{engine.WithLogger(newLogger(opts.RootOptions, cmd.ErrOrStderr()))}
	if opts.TableLimit > 0 {
		engineOpts = append(engineOpts, engine.WithTableLimit(opts.TableLimit))
	}
	h := engine.Sort(reg, engineOpts...)

	switch h.Result() {
	case engine.Cycle:
		path := h.CyclePath()
		if f.JSON() {
			_ = f.Encode(CLIResponse{
				Status: "error",
				Data:   OrderResult{Result: h.Result().String(), Cycle: path},
				Error:  &CLIError{Code: compiler.ErrImportCycle, Message: h.Err().Error()},
			})
		} else {
			writeCycle(f.Writer, path)
		}
		return WrapExitError(ExitFailure, "cycle detected", h.Err())

	case engine.AllocationFailure:
		_ = f.Error(ErrCodeTableLimit, h.Err().Error(), nil)
		return WrapExitError(ExitFailure, "module table allocation failed", h.Err())
	}

	entries := make([]OrderEntry, h.Len())
	for i, name := range h.Names() {
		spec, _ := m.Lookup(name)
		entries[i] = OrderEntry{Module: name, Init: spec.Init, Fini: spec.Fini}
	}

	if f.JSON() {
		return f.Success(OrderResult{Result: h.Result().String(), Order: entries})
	}
	renderOrder(f.Writer, entries)
	return nil
}

// buildRegistry turns a manifest into an engine registry without hooks.
// Sorting never calls hooks, so names are all it needs.
func buildRegistry(m *ir.Manifest) (*engine.Registry, error) {
	b := engine.NewBuilder()
	for _, mod := range m.Modules {
		b.Add(engine.Module{Name: mod.Name, Imports: mod.Imports})
	}
	return b.Build()
}

// reportRegistryError maps registry construction errors to the manifest
// validation codes `modinit validate` would report. Anything else is a
// usage error, such as --fail naming a hook the manifest does not declare.
func reportRegistryError(f *OutputFormatter, err error) error {
	var code string
	switch {
	case errors.Is(err, engine.ErrEmptyName):
		code = compiler.ErrModuleNameEmpty
	case errors.Is(err, engine.ErrDuplicateModule):
		code = compiler.ErrDuplicateModule
	case errors.Is(err, engine.ErrUnknownImport):
		code = compiler.ErrUnknownImport
	default:
		_ = f.Error(ErrCodeGeneric, err.Error(), nil)
		return WrapExitError(ExitCommandError, "invalid arguments", err)
	}
	_ = f.Error(code, err.Error(), nil)
	return WrapExitError(ExitFailure, "invalid manifest", err)
}

// renderOrder prints the table as three left-aligned columns, one row per
// module in initialization order. A module without a hook shows "-".
func renderOrder(w io.Writer, entries []OrderEntry) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(plainStyle())
	t.AppendHeader(table.Row{"Module", "Initialization", "Finalization"})
	for _, e := range entries {
		t.AppendRow(table.Row{e.Module, orDash(e.Init), orDash(e.Fini)})
	}
	t.Render()
}

// writeCycle prints a cycle path, one module per line.
func writeCycle(w io.Writer, path []string) {
	var b strings.Builder
	b.WriteString("Error, cycle detected involving:\n")
	for _, name := range path {
		fmt.Fprintf(&b, "  %s\n", name)
	}
	b.WriteString("\n")
	io.WriteString(w, b.String())
}

// plainStyle is a borderless table: columns separated by two spaces,
// headers as written.
func plainStyle() table.Style {
	s := table.StyleDefault
	s.Name = "Plain"
	s.Options = table.OptionsNoBordersAndSeparators
	s.Box.PaddingLeft = ""
	s.Box.PaddingRight = "  "
	s.Format.Header = text.FormatDefault
	return s
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
