package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/roach88/modinit/internal/ir"
	"github.com/roach88/modinit/internal/store"
)

// TraceOptions holds flags for the trace command.
type TraceOptions struct {
	*RootOptions
	Database string
	RunID    string // optional - latest run when empty
	List     bool
	Verify   bool
}

// NewTraceCommand creates the trace command.
func NewTraceCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &TraceOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "trace",
		Short: "Show a journaled run",
		Long: `Show a run recorded with 'modinit run --db'.

Prints the run outcome, the module table and every hook call in order.
Without --run the most recent run is shown.

Examples:
  modinit trace --db ./runs.db
  modinit trace --db ./runs.db --run 0192f0c4-...
  modinit trace --db ./runs.db --list
  modinit trace --db ./runs.db --verify --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTrace(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database (required)")
	_ = cmd.MarkFlagRequired("db")
	cmd.Flags().StringVar(&opts.RunID, "run", "", "run id to show (default: latest)")
	cmd.Flags().BoolVar(&opts.List, "list", false, "list journaled runs instead")
	cmd.Flags().BoolVar(&opts.Verify, "verify", false, "check the stored trace hash")

	return cmd
}

func runTrace(opts *TraceOptions, cmd *cobra.Command) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	f := newFormatter(opts.RootOptions, cmd)

	if _, err := os.Stat(opts.Database); os.IsNotExist(err) {
		msg := fmt.Sprintf("database not found: %s", opts.Database)
		_ = f.Error(ErrCodeNotFound, msg, nil)
		return NewExitError(ExitCommandError, msg)
	}

	st, err := store.Open(opts.Database)
	if err != nil {
		_ = f.Error(ErrCodeJournal, err.Error(), nil)
		return WrapExitError(ExitCommandError, "failed to open database", err)
	}
	defer st.Close()

	if opts.List {
		runs, err := st.ListRuns(ctx)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to list runs", err)
		}
		if f.JSON() {
			return f.Success(runs)
		}
		renderRuns(f.Writer, runs)
		return nil
	}

	var record *ir.RunRecord
	if opts.RunID != "" {
		record, err = st.ReadRun(ctx, opts.RunID)
	} else {
		record, err = st.LatestRun(ctx)
	}
	if errors.Is(err, store.ErrRunNotFound) {
		msg := "no runs journaled"
		if opts.RunID != "" {
			msg = fmt.Sprintf("run not found: %s", opts.RunID)
		}
		_ = f.Error(ErrCodeNotFound, msg, nil)
		return WrapExitError(ExitCommandError, msg, err)
	}
	if err != nil {
		_ = f.Error(ErrCodeJournal, err.Error(), nil)
		return WrapExitError(ExitCommandError, "failed to read run", err)
	}

	if opts.Verify {
		if err := st.VerifyRun(ctx, record.ID); err != nil {
			_ = f.Error(ErrCodeJournal, err.Error(), nil)
			return WrapExitError(ExitFailure, "trace verification failed", err)
		}
		f.VerboseLog("Trace hash verified for run %s", record.ID)
	}

	if f.JSON() {
		return f.Success(record)
	}
	renderTrace(f.Writer, record)
	return nil
}

func renderTrace(w io.Writer, r *ir.RunRecord) {
	finalize := r.FinalizeResult
	if finalize == "" {
		finalize = "skipped"
	}
	fmt.Fprintf(w, "Run:       %s\n", r.ID)
	if r.Label != "" {
		fmt.Fprintf(w, "Label:     %s\n", r.Label)
	}
	fmt.Fprintf(w, "Manifest:  %s\n", r.ManifestHash)
	fmt.Fprintf(w, "Init:      %s (cursor %d)\n", r.InitResult, r.InitCursor)
	if r.Finalized() {
		fmt.Fprintf(w, "Finalize:  %s (cursor %d)\n", finalize, r.FinalizeCursor)
	} else {
		fmt.Fprintf(w, "Finalize:  %s\n", finalize)
	}
	fmt.Fprintln(w)

	if len(r.Calls) == 0 {
		fmt.Fprintln(w, "No hook calls.")
		return
	}

	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleRounded)
	t.AppendHeader(table.Row{"Seq", "Stage", "Module", "Hook", "Result"})
	for _, c := range r.Calls {
		result := "ok"
		if !c.OK {
			result = c.Error
		}
		t.AppendRow(table.Row{c.Seq, c.Stage, c.Module, c.Hook, result})
	}
	t.Render()
}

func renderRuns(w io.Writer, runs []store.RunSummary) {
	if len(runs) == 0 {
		fmt.Fprintln(w, "No runs journaled.")
		return
	}

	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleRounded)
	t.AppendHeader(table.Row{"Run", "Label", "Init", "Finalize"})
	for _, r := range runs {
		finalize := r.FinalizeResult
		if finalize == "" {
			finalize = "skipped"
		}
		t.AppendRow(table.Row{r.ID, r.Label, r.InitResult, finalize})
	}
	t.Render()
}
