package testutil

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeterministicClock_Sequence(t *testing.T) {
	clock := NewDeterministicClock()
	assert.Equal(t, int64(0), clock.Current())

	assert.Equal(t, int64(1), clock.Next())
	assert.Equal(t, int64(2), clock.Next())
	assert.Equal(t, int64(2), clock.Current())

	clock.Reset()
	assert.Equal(t, int64(0), clock.Current())
	assert.Equal(t, int64(1), clock.Next())
}

func TestDeterministicClock_ConcurrentUniqueValues(t *testing.T) {
	clock := NewDeterministicClock()
	const workers, perWorker = 50, 100

	var (
		mu   sync.Mutex
		seen = make(map[int64]bool)
		wg   sync.WaitGroup
	)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < perWorker; j++ {
				v := clock.Next()
				mu.Lock()
				seen[v] = true
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	require.Len(t, seen, workers*perWorker)
	assert.Equal(t, int64(workers*perWorker), clock.Current())
}

func TestFixedIDGenerator(t *testing.T) {
	assert.Equal(t, "run-1", NewFixedIDGenerator("run-1").Generate())
	assert.Equal(t, "run-1", NewFixedIDGenerator("run-1").Generate())
	assert.Equal(t, DefaultRunID, NewFixedIDGenerator("").Generate())
}

func TestSequentialIDGenerator(t *testing.T) {
	gen := NewSequentialIDGenerator("run")
	assert.Equal(t, "run-0001", gen.Generate())
	assert.Equal(t, "run-0002", gen.Generate())
}

func TestFixtures(t *testing.T) {
	assert.Len(t, KernelManifest().Modules, 4)
	assert.Equal(t, []string{"A", "B", "C"}, ABCManifest().Names())

	chain := ChainManifest(3)
	assert.Equal(t, []string{"m0", "m1", "m2"}, chain.Names())
	assert.Nil(t, chain.Modules[0].Imports)
	assert.Equal(t, []string{"m1"}, chain.Modules[2].Imports)
}
