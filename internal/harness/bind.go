package harness

import (
	"errors"
	"fmt"
	"sync"

	"github.com/roach88/modinit/internal/engine"
	"github.com/roach88/modinit/internal/ir"
)

// ErrScriptedFailure is wrapped by every hook failure the fail set causes.
var ErrScriptedFailure = errors.New("scripted hook failure")

// FailSet names the hooks that fail when called.
type FailSet map[string]bool

// NewFailSet builds a FailSet from hook names.
func NewFailSet(hooks ...string) FailSet {
	fs := make(FailSet, len(hooks))
	for _, h := range hooks {
		fs[h] = true
	}
	return fs
}

// Clock hands out the sequence numbers stamped on hook calls.
type Clock interface {
	Next() int64
}

// Recorder collects hook calls in call order.
type Recorder struct {
	clock Clock

	mu    sync.Mutex
	calls []ir.HookCall
}

// NewRecorder creates a recorder stamping calls with clock.
func NewRecorder(clock Clock) *Recorder {
	return &Recorder{clock: clock}
}

// Calls returns a copy of the recorded calls.
func (r *Recorder) Calls() []ir.HookCall {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]ir.HookCall, len(r.calls))
	copy(out, r.calls)
	return out
}

func (r *Recorder) record(call ir.HookCall) {
	r.mu.Lock()
	defer r.mu.Unlock()
	call.Seq = r.clock.Next()
	r.calls = append(r.calls, call)
}

// hook returns a scripted hook, or nil when name is empty.
func (r *Recorder) hook(stage, module, name string, fail bool) engine.Hook {
	if name == "" {
		return nil
	}
	return func() error {
		call := ir.HookCall{Stage: stage, Module: module, Hook: name, OK: !fail}
		if fail {
			err := fmt.Errorf("%s: %w", name, ErrScriptedFailure)
			call.Error = err.Error()
			r.record(call)
			return err
		}
		r.record(call)
		return nil
	}
}

// Bind turns a manifest into an engine registry whose hooks are scripted by
// fail and recorded by rec. Registry order follows manifest order.
func Bind(m *ir.Manifest, fail FailSet, rec *Recorder) (*engine.Registry, error) {
	b := engine.NewBuilder()
	for _, mod := range m.Modules {
		b.Add(engine.Module{
			Name:    mod.Name,
			Imports: mod.Imports,
			Init:    rec.hook(ir.StageInit, mod.Name, mod.Init, fail[mod.Init]),
			Fini:    rec.hook(ir.StageFini, mod.Name, mod.Fini, fail[mod.Fini]),
		})
	}
	return b.Build()
}
