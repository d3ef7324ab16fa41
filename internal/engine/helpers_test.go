package engine

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"
)

var errHook = errors.New("hook failed")

// callLog records hook invocations as "init:<name>" / "fini:<name>".
type callLog struct {
	calls   []string
	failing map[string]bool // keys like "init:b"
}

func newCallLog(failing ...string) *callLog {
	l := &callLog{failing: make(map[string]bool)}
	for _, f := range failing {
		l.failing[f] = true
	}
	return l
}

func (l *callLog) hook(kind, name string) Hook {
	key := kind + ":" + name
	return func() error {
		l.calls = append(l.calls, key)
		if l.failing[key] {
			return fmt.Errorf("%s: %w", key, errHook)
		}
		return nil
	}
}

func (l *callLog) count(key string) int {
	n := 0
	for _, c := range l.calls {
		if c == key {
			n++
		}
	}
	return n
}

// edge is "module imports these".
type edge struct {
	name    string
	imports []string
}

// buildRegistry creates a registry where every module has recorded
// init and fini hooks.
func buildRegistry(t *testing.T, log *callLog, mods ...edge) *Registry {
	t.Helper()
	b := NewBuilder()
	for _, m := range mods {
		b.Add(Module{
			Name:    m.name,
			Imports: m.imports,
			Init:    log.hook("init", m.name),
			Fini:    log.hook("fini", m.name),
		})
	}
	reg, err := b.Build()
	require.NoError(t, err)
	return reg
}

func quietLogger() Option {
	return WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func prefixed(kind string, names ...string) []string {
	out := make([]string, len(names))
	for i, n := range names {
		out[i] = kind + ":" + n
	}
	return out
}
