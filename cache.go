package jsonmap

import (
	"sync"

	"github.com/sandrolain/jsonmap/pkg/parser"
	"github.com/sandrolain/jsonmap/pkg/types"
)

// Cache memoizes compiled programs by their source text.
//
// Compiled programs are immutable and hold no external resources, so the
// cache needs no invalidation and no recency bookkeeping: entries simply
// accumulate until the capacity is reached, at which point the cache resets
// and starts filling again. Real workloads compile a handful of mappings
// and reuse them forever, so a reset is rare and costs only recompilation.
//
// Safe for concurrent use by multiple goroutines.
type Cache struct {
	mu       sync.Mutex
	capacity int
	programs map[string]*types.Program
}

// NewCache creates a program cache holding up to capacity entries.
// capacity must be > 0; if <= 0, a default of 256 is used.
func NewCache(capacity int) *Cache {
	if capacity <= 0 {
		capacity = 256
	}
	return &Cache{
		capacity: capacity,
		programs: make(map[string]*types.Program, capacity),
	}
}

// Compile returns the cached program for source, compiling and storing it
// on a miss. Compilation errors are returned and never cached.
//
// Concurrent misses on the same source may compile it more than once; the
// programs are interchangeable, and one of them ends up cached.
func (c *Cache) Compile(source string, opts ...parser.CompileOption) (*types.Program, error) {
	c.mu.Lock()
	prog, ok := c.programs[source]
	c.mu.Unlock()
	if ok {
		return prog, nil
	}

	prog, err := parser.Compile(source, opts...)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	if len(c.programs) >= c.capacity {
		clear(c.programs)
	}
	c.programs[source] = prog
	c.mu.Unlock()

	return prog, nil
}

// Len returns the number of programs currently cached.
func (c *Cache) Len() int {
	c.mu.Lock()
	n := len(c.programs)
	c.mu.Unlock()
	return n
}
