package testutil

import (
	"fmt"
	"sync"
)

// SequenceOpIDs generates predictable operation ids: "<prefix>-0001",
// "<prefix>-0002", and so on. It satisfies store.OpIDGenerator, so log
// output in tests does not depend on wall-clock UUIDs.
//
// Thread-safety: safe for concurrent use via internal mutex.
type SequenceOpIDs struct {
	mu     sync.Mutex
	prefix string
	n      int
}

// NewSequenceOpIDs creates a generator. An empty prefix becomes "op".
func NewSequenceOpIDs(prefix string) *SequenceOpIDs {
	if prefix == "" {
		prefix = "op"
	}
	return &SequenceOpIDs{prefix: prefix}
}

// Generate returns the next id.
func (g *SequenceOpIDs) Generate() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.n++
	return fmt.Sprintf("%s-%04d", g.prefix, g.n)
}

// Issued returns how many ids have been generated.
func (g *SequenceOpIDs) Issued() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.n
}
