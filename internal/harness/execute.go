package harness

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/google/uuid"

	"github.com/roach88/modinit/internal/engine"
	"github.com/roach88/modinit/internal/ir"
	"github.com/roach88/modinit/internal/testutil"
)

// IDGenerator produces run ids.
type IDGenerator interface {
	Generate() string
}

// UUIDGenerator produces UUIDv7 run ids, which sort by creation time.
type UUIDGenerator struct{}

// Generate returns a new UUIDv7 string.
func (UUIDGenerator) Generate() string {
	return uuid.Must(uuid.NewV7()).String()
}

// ExecOptions configures Execute.
type ExecOptions struct {
	// Fail names the hooks that fail. Every name must be declared by the
	// manifest.
	Fail FailSet

	// SkipFinalize stops after initialization.
	SkipFinalize bool

	// TableLimit overrides the engine's table limit when positive.
	TableLimit int

	// Label is stored on the record, e.g. the manifest path or scenario name.
	Label string

	// IDs generates the run id. Default: UUIDGenerator.
	IDs IDGenerator

	// Clock stamps hook calls. Default: a fresh DeterministicClock.
	Clock Clock

	// Logger receives engine diagnostics. Default: discarded.
	Logger *slog.Logger
}

func (o ExecOptions) withDefaults() ExecOptions {
	if o.IDs == nil {
		o.IDs = UUIDGenerator{}
	}
	if o.Clock == nil {
		o.Clock = testutil.NewDeterministicClock()
	}
	if o.Logger == nil {
		o.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return o
}

// Execute simulates one initialize/finalize cycle of m.
//
// The manifest is bound with scripted hooks and initialized through the
// engine. Finalization follows when initialization ended in Success or
// Failed, unless SkipFinalize is set. Hook failures and cycles are outcomes
// recorded in the returned RunRecord, not errors; Execute fails only when
// the manifest cannot be bound.
func Execute(m *ir.Manifest, opts ExecOptions) (*ir.RunRecord, error) {
	opts = opts.withDefaults()

	if err := checkFailSet(m, opts.Fail); err != nil {
		return nil, err
	}

	hash, err := ir.ManifestHash(m)
	if err != nil {
		return nil, err
	}

	rec := NewRecorder(opts.Clock)
	reg, err := Bind(m, opts.Fail, rec)
	if err != nil {
		return nil, fmt.Errorf("bind manifest: %w", err)
	}

	engineOpts := []engine.Option{engine.WithLogger(opts.Logger)}
	if opts.TableLimit > 0 {
		engineOpts = append(engineOpts, engine.WithTableLimit(opts.TableLimit))
	}

	record := &ir.RunRecord{
		ID:           opts.IDs.Generate(),
		Label:        opts.Label,
		ManifestHash: hash,
	}

	// The outcome lives on the handle; the returned error repeats it.
	h, _ := engine.InitializeAll(reg, engineOpts...)
	record.InitResult = h.Result().String()
	record.InitCursor = h.Cursor()
	record.Table = h.Names()

	if !opts.SkipFinalize && (h.Result() == engine.Success || h.Result() == engine.Failed) {
		_ = engine.FinalizeAll(h)
		record.FinalizeResult = h.Result().String()
		record.FinalizeCursor = h.Cursor()
	}

	record.Calls = rec.Calls()
	return record, nil
}

func checkFailSet(m *ir.Manifest, fail FailSet) error {
	declared := make(map[string]bool)
	for _, name := range m.HookNames() {
		declared[name] = true
	}
	for name := range fail {
		if fail[name] && !declared[name] {
			return fmt.Errorf("fail set names undeclared hook %q", name)
		}
	}
	return nil
}
