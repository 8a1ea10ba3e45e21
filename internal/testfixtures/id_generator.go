package testfixtures

import (
	"fmt"
	"sync"
)

// Prefixes mirroring the identifiers SessionManager mints in production.
const (
	SessionIDPrefix = "navintern_"
	UserIDPrefix    = "user_"
)

// IDGenerator produces deterministic identifiers for tests: prefix followed
// by a counter starting at 1.
type IDGenerator struct {
	mu      sync.Mutex
	prefix  string
	counter uint64
}

// NewIDGenerator constructs a generator for prefix.
func NewIDGenerator(prefix string) *IDGenerator {
	return &IDGenerator{prefix: prefix}
}

// Next returns the next identifier in the sequence.
func (g *IDGenerator) Next() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.counter++
	return fmt.Sprintf("%s%d", g.prefix, g.counter)
}

// Issued reports how many identifiers have been handed out.
func (g *IDGenerator) Issued() uint64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.counter
}

// NextFunc exposes Next for SessionOptions.
func (g *IDGenerator) NextFunc() func() string {
	if g == nil {
		return nil
	}
	return g.Next
}
