package pipeline

import (
	"fmt"
	"strconv"
	"strings"
	"sync"
)

// Allocator issues node IDs of the form "<type>-<n>". Each type has its own
// counter starting at 1. Counters only grow, so an ID is never handed out
// twice within one allocator's lifetime, even after the node is deleted.
type Allocator struct {
	mu       sync.Mutex
	counters map[NodeType]int
}

// NewAllocator returns an allocator with every counter at zero. Use one per
// editing session.
func NewAllocator() *Allocator {
	return &Allocator{counters: make(map[NodeType]int)}
}

// Next returns the next ID for t.
func (a *Allocator) Next(t NodeType) (string, error) {
	if !t.Valid() {
		return "", fmt.Errorf("%w: unknown node type %q", ErrInvalidArgument, t)
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	a.counters[t]++
	return fmt.Sprintf("%s-%d", t, a.counters[t]), nil
}

// Reserve advances the counter of id's type so that later calls to Next
// never return id or anything below it. IDs not in "<type>-<n>" form are
// ignored.
func (a *Allocator) Reserve(id string) {
	i := strings.LastIndexByte(id, '-')
	if i <= 0 {
		return
	}
	t := NodeType(id[:i])
	n, err := strconv.Atoi(id[i+1:])
	if !t.Valid() || err != nil || n <= 0 {
		return
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	if n > a.counters[t] {
		a.counters[t] = n
	}
}
