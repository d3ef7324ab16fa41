package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func chain(names ...string) []edge {
	mods := make([]edge, len(names))
	for i, name := range names {
		mods[i].name = name
		if i > 0 {
			mods[i].imports = []string{names[i-1]}
		}
	}
	return mods
}

func TestRun_InitsOnceInTableOrder(t *testing.T) {
	log := newCallLog()
	reg := buildRegistry(t, log,
		edge{"C", []string{"A", "B"}},
		edge{"B", []string{"A"}},
		edge{"A", nil},
	)

	h := Sort(reg, quietLogger())
	require.NoError(t, h.Run())

	assert.Equal(t, Success, h.Result())
	assert.Equal(t, StageRun, h.Stage())
	assert.Equal(t, h.Len(), h.Cursor())
	assert.Equal(t, prefixed("init", "A", "B", "C"), log.calls)
	for _, name := range []string{"A", "B", "C"} {
		assert.Equal(t, 1, log.count("init:"+name))
	}
	for i := 0; i < reg.Len(); i++ {
		assert.Equal(t, Initialized, reg.Module(i).State())
	}
}

func TestRun_StopsAtFirstFailure(t *testing.T) {
	names := []string{"m0", "m1", "m2", "m3", "m4"}

	for k := range names {
		t.Run(names[k], func(t *testing.T) {
			log := newCallLog("init:" + names[k])
			reg := buildRegistry(t, log, chain(names...)...)

			h := Sort(reg, quietLogger())
			err := h.Run()
			require.Error(t, err)

			assert.Equal(t, Failed, h.Result())
			assert.Equal(t, StageRun, h.Stage())
			assert.Equal(t, k, h.Cursor())
			require.NotNil(t, h.Failing())
			assert.Equal(t, names[k], h.Failing().Name())
			assert.Equal(t, Initializing, h.Failing().State())

			// [0, k] attempted exactly once, (k, N) never.
			assert.Equal(t, prefixed("init", names[:k+1]...), log.calls)

			var he *HookError
			require.ErrorAs(t, err, &he)
			assert.Equal(t, StageRun, he.Stage)
			assert.Equal(t, names[k], he.Module)
			assert.Equal(t, k, he.Index)
			assert.ErrorIs(t, err, errHook)
			assert.True(t, IsHookFailure(h.Err()))
		})
	}
}

func TestRun_ModulesWithoutInitAdvance(t *testing.T) {
	log := newCallLog()
	reg, err := NewBuilder().
		Add(Module{Name: "a"}).
		Add(Module{Name: "b", Imports: []string{"a"}, Init: log.hook("init", "b")}).
		Add(Module{Name: "c", Imports: []string{"b"}}).
		Build()
	require.NoError(t, err)

	h := Sort(reg, quietLogger())
	require.NoError(t, h.Run())
	assert.Equal(t, 3, h.Cursor())
	assert.Equal(t, []string{"init:b"}, log.calls)
}

func TestRun_RequiresSuccessfulSort(t *testing.T) {
	t.Run("after cycle", func(t *testing.T) {
		log := newCallLog()
		reg := buildRegistry(t, log, edge{"a", []string{"b"}}, edge{"b", []string{"a"}})
		h := Sort(reg, quietLogger())

		assert.ErrorIs(t, h.Run(), ErrInvalidHandle)
		assert.Equal(t, Cycle, h.Result())
		assert.Empty(t, log.calls)
	})

	t.Run("after allocation failure", func(t *testing.T) {
		log := newCallLog()
		reg := buildRegistry(t, log, edge{"a", nil})
		h := Sort(reg, quietLogger(), WithTableLimit(0))

		assert.ErrorIs(t, h.Run(), ErrInvalidHandle)
		assert.Empty(t, log.calls)
	})

	t.Run("never sorted", func(t *testing.T) {
		assert.ErrorIs(t, New(quietLogger()).Run(), ErrInvalidHandle)
	})

	t.Run("after failed run", func(t *testing.T) {
		log := newCallLog("init:a")
		reg := buildRegistry(t, log, edge{"a", nil})
		h := Sort(reg, quietLogger())
		require.Error(t, h.Run())

		assert.ErrorIs(t, h.Run(), ErrInvalidHandle)
		assert.Equal(t, 1, log.count("init:a"))
	})
}

func TestRun_SecondRunIsNoop(t *testing.T) {
	log := newCallLog()
	reg := buildRegistry(t, log, chain("a", "b")...)

	h := Sort(reg, quietLogger())
	require.NoError(t, h.Run())
	require.NoError(t, h.Run())
	assert.Equal(t, prefixed("init", "a", "b"), log.calls)
}
