package testutil

import (
	"fmt"
	"sync/atomic"
)

// DefaultRunID is what FixedIDGenerator returns when given no id.
const DefaultRunID = "test-run-default"

// FixedIDGenerator returns the same run id every time, so golden files
// for a scenario are byte-identical across runs.
type FixedIDGenerator struct {
	id string
}

// NewFixedIDGenerator creates a generator for id. If id is empty,
// Generate returns DefaultRunID.
func NewFixedIDGenerator(id string) *FixedIDGenerator {
	if id == "" {
		id = DefaultRunID
	}
	return &FixedIDGenerator{id: id}
}

// Generate returns the fixed id.
func (g *FixedIDGenerator) Generate() string {
	return g.id
}

// SequentialIDGenerator returns prefix-0001, prefix-0002, ... Journal tests
// use it to write several distinct runs whose ids still sort in order.
type SequentialIDGenerator struct {
	prefix string
	n      atomic.Int64
}

// NewSequentialIDGenerator creates a generator with the given prefix.
func NewSequentialIDGenerator(prefix string) *SequentialIDGenerator {
	return &SequentialIDGenerator{prefix: prefix}
}

// Generate returns the next id in sequence.
func (g *SequentialIDGenerator) Generate() string {
	return fmt.Sprintf("%s-%04d", g.prefix, g.n.Add(1))
}
