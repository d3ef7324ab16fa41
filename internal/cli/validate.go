package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/modinit/internal/compiler"
)

// ValidationResult holds validation results.
type ValidationResult struct {
	Valid   bool                       `json:"valid"`
	Modules int                        `json:"modules"`
	Errors  []compiler.ValidationError `json:"errors,omitempty"`
	Cycles  []compiler.CycleReport     `json:"cycles,omitempty"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <manifest>",
		Short: "Validate a manifest",
		Long: `Validate a module manifest without running anything.

Checks module names, imports and hook names, and reports every import
cycle in the manifest. The engine stops at the first cycle it reaches;
validate lists them all.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(rootOpts, args[0], cmd)
		},
	}

	return cmd
}

func runValidate(opts *RootOptions, path string, cmd *cobra.Command) error {
	f := newFormatter(opts, cmd)

	res, err := loadOrExit(f, path)
	if err != nil {
		return err
	}

	result := ValidationResult{
		Valid:   true,
		Modules: len(res.Manifest.Modules),
		Errors:  compiler.Validate(res.Manifest),
	}
	if len(result.Errors) > 0 {
		result.Valid = false
		result.Cycles = compiler.AnalyzeCycles(res.Manifest)
	}
	for _, c := range result.Cycles {
		f.VerboseLog("cycle members: %v", c.Members)
	}

	if result.Valid {
		if f.JSON() {
			return f.Success(result)
		}
		fmt.Fprintf(f.Writer, "✓ Manifest valid (%d modules)\n", result.Modules)
		return nil
	}

	if f.JSON() {
		if err := f.Encode(CLIResponse{
			Status: "error",
			Data:   result,
			Error:  &CLIError{Code: result.Errors[0].Code, Message: result.Errors[0].Message},
		}); err != nil {
			return err
		}
	} else {
		fmt.Fprintln(f.Writer, "✗ Validation failed")
		fmt.Fprintln(f.Writer)
		for _, e := range result.Errors {
			fmt.Fprintf(f.Writer, "  %s %s: %s\n", e.Code, e.Field, e.Message)
		}
	}

	return NewExitError(ExitFailure, fmt.Sprintf("validation failed with %d error(s)", len(result.Errors)))
}
