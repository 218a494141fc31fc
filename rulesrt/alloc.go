package rulesrt

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
)

// ErrOutOfMemory is returned when an Allocator refuses a reservation.
var ErrOutOfMemory = errors.New("rulesrt: out of memory")

// Allocator accounts for memory handed to a resolved Endpoint. Units are
// slice elements for Alloc and bytes for Sprintf.
type Allocator interface {
	Reserve(n int) error
	Release(n int)
}

// Heap is an unbounded Allocator that tracks usage.
type Heap struct {
	inUse atomic.Int64
}

// NewHeap creates a Heap.
func NewHeap() *Heap {
	return &Heap{}
}

// Reserve always succeeds.
func (h *Heap) Reserve(n int) error {
	h.inUse.Add(int64(n))
	return nil
}

// Release returns n units.
func (h *Heap) Release(n int) {
	h.inUse.Add(-int64(n))
}

// InUse reports units currently reserved.
func (h *Heap) InUse() int {
	return int(h.inUse.Load())
}

// Budget is an Allocator with a fixed limit.
type Budget struct {
	mu    sync.Mutex
	limit int
	inUse int
}

// NewBudget creates a Budget of limit units.
func NewBudget(limit int) *Budget {
	return &Budget{limit: limit}
}

// Reserve fails with ErrOutOfMemory when n would exceed the limit.
func (b *Budget) Reserve(n int) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.inUse+n > b.limit {
		return fmt.Errorf("%w: need %d, %d of %d in use", ErrOutOfMemory, n, b.inUse, b.limit)
	}
	b.inUse += n
	return nil
}

// Release returns n units.
func (b *Budget) Release(n int) {
	b.mu.Lock()
	b.inUse -= n
	b.mu.Unlock()
}

// InUse reports units currently reserved.
func (b *Budget) InUse() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.inUse
}

// Alloc reserves and returns a slice of n elements.
func Alloc[T any](a Allocator, n int) ([]T, error) {
	if err := a.Reserve(n); err != nil {
		return nil, err
	}
	return make([]T, n), nil
}

// Free releases a slice obtained from Alloc.
func Free[T any](a Allocator, s []T) {
	a.Release(len(s))
}

// Sprintf formats into a string accounted against a.
func Sprintf(a Allocator, format string, args ...any) (string, error) {
	s := fmt.Sprintf(format, args...)
	if err := a.Reserve(len(s)); err != nil {
		return "", err
	}
	return s, nil
}

// FreeString releases a string obtained from Sprintf.
func FreeString(a Allocator, s string) {
	a.Release(len(s))
}
