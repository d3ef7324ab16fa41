package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"go.uber.org/multierr"

	"github.com/roach88/modinit/internal/compiler"
	"github.com/roach88/modinit/internal/engine"
	"github.com/roach88/modinit/internal/harness"
	"github.com/roach88/modinit/internal/ir"
	"github.com/roach88/modinit/internal/store"
)

// RunOptions holds flags for the run command.
type RunOptions struct {
	*RootOptions
	Fail         []string
	SkipFinalize bool
	Database     string
	TableLimit   int

	// IDs overrides the run id generator (for testing).
	// If nil, harness.UUIDGenerator is used.
	IDs harness.IDGenerator
}

// NewRunCommand creates the run command.
func NewRunCommand(rootOpts *RootOptions) *cobra.Command {
	return newRunCommand(&RunOptions{RootOptions: rootOpts})
}

func newRunCommand(opts *RunOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run <manifest>",
		Short: "Simulate initialization and finalization",
		Long: `Initialize every module of a manifest in dependency order, then
finalize the initialized modules in reverse.

Hooks are simulated and succeed unless named with --fail. When a hook
fails, initialization stops; the modules already initialized are still
finalized.

With --db the run is written to a SQLite journal and can be inspected
later with 'modinit trace'.

Examples:
  modinit run ./kernel.cue
  modinit run ./kernel.cue --fail vm_init
  modinit run ./kernel.cue --db ./runs.db --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSimulation(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringArrayVar(&opts.Fail, "fail", nil, "hook that fails (repeatable)")
	cmd.Flags().BoolVar(&opts.SkipFinalize, "skip-finalize", false, "stop after initialization")
	cmd.Flags().StringVar(&opts.Database, "db", "", "journal the run to this SQLite database")
	cmd.Flags().IntVar(&opts.TableLimit, "table-limit", 0, "maximum number of modules (0 = engine default)")

	return cmd
}

func runSimulation(opts *RunOptions, path string, cmd *cobra.Command) error {
	f := newFormatter(opts.RootOptions, cmd)

	res, err := loadOrExit(f, path)
	if err != nil {
		return err
	}

	record, err := harness.Execute(res.Manifest, harness.ExecOptions{
		Fail:         harness.NewFailSet(opts.Fail...),
		SkipFinalize: opts.SkipFinalize,
		TableLimit:   opts.TableLimit,
		Label:        path,
		IDs:          opts.IDs,
		Logger:       newLogger(opts.RootOptions, cmd.ErrOrStderr()),
	})
	if err != nil {
		return reportRegistryError(f, err)
	}

	if opts.Database != "" {
		if err := journalRun(cmd.Context(), opts.Database, record); err != nil {
			_ = f.Error(ErrCodeJournal, err.Error(), nil)
			return WrapExitError(ExitCommandError, "failed to journal run", err)
		}
		f.VerboseLog("Journaled run %s to %s", record.ID, opts.Database)
	}

	outcome := runOutcome(record)
	if f.JSON() {
		resp := CLIResponse{Status: "ok", Data: record}
		if outcome != nil {
			resp.Status = "error"
			resp.Error = outcome
		}
		if err := f.Encode(resp); err != nil {
			return err
		}
	} else {
		writeRun(f.Writer, record)
	}

	if outcome != nil {
		return NewExitError(ExitFailure, outcome.Message)
	}
	return nil
}

// journalRun writes record to the journal at path.
func journalRun(ctx context.Context, path string, record *ir.RunRecord) (err error) {
	if ctx == nil {
		ctx = context.Background()
	}
	st, err := store.Open(path)
	if err != nil {
		return err
	}
	defer multierr.AppendInvoke(&err, multierr.Close(st))
	return st.WriteRun(ctx, record)
}

// runOutcome returns nil for a run where every phase succeeded.
func runOutcome(r *ir.RunRecord) *CLIError {
	switch r.InitResult {
	case engine.Cycle.String():
		return &CLIError{Code: compiler.ErrImportCycle, Message: "cycle detected", Details: r.Table}
	case engine.AllocationFailure.String():
		return &CLIError{Code: ErrCodeTableLimit, Message: "module table allocation failed"}
	case engine.Failed.String():
		return &CLIError{Code: ErrCodeHookFailed, Message: fmt.Sprintf("module '%s' failed to initialize", r.Table[r.InitCursor])}
	}
	if r.FinalizeResult == engine.Failed.String() {
		return &CLIError{Code: ErrCodeHookFailed, Message: fmt.Sprintf("module '%s' failed to finalize", r.Table[r.FinalizeCursor])}
	}
	return nil
}

// writeRun prints a run the way a boot log reads: the init calls, the
// outcome, then the fini calls.
func writeRun(w io.Writer, r *ir.RunRecord) {
	fmt.Fprintln(w, "*** Initializing modules.")
	writeCalls(w, r.CallsIn(ir.StageInit))

	switch r.InitResult {
	case engine.Cycle.String():
		writeCycle(w, r.Table)
	case engine.AllocationFailure.String():
		fmt.Fprintf(w, "Error, module table allocation failed\n")
	case engine.Failed.String():
		fmt.Fprintf(w, "Module '%s' failed to initialize\n", r.Table[r.InitCursor])
	}

	if r.Finalized() {
		fmt.Fprintln(w)
		fmt.Fprintln(w, "*** Finalizing modules.")
		writeCalls(w, r.CallsIn(ir.StageFini))
		if r.FinalizeResult == engine.Failed.String() {
			fmt.Fprintf(w, "Module '%s' failed to finalize\n", r.Table[r.FinalizeCursor])
		}
	}

	fmt.Fprintln(w)
	finalize := r.FinalizeResult
	if finalize == "" {
		finalize = "skipped"
	}
	fmt.Fprintf(w, "Run %s: init=%s finalize=%s\n", r.ID, r.InitResult, finalize)
}

func writeCalls(w io.Writer, calls []ir.HookCall) {
	for _, c := range calls {
		if c.OK {
			fmt.Fprintf(w, "  ✓ %s (%s)\n", c.Module, c.Hook)
			continue
		}
		fmt.Fprintf(w, "  ✗ %s (%s): %s\n", c.Module, c.Hook, c.Error)
	}
}
