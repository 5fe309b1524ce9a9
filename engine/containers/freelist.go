package containers

import (
	"errors"
	"math"
)

// Handle addresses a slot of a Freelist. The generation changes every time the
// slot is released, so a handle kept past a release no longer resolves.
type Handle struct {
	Index      uint32
	Generation uint32
}

// InvalidHandle is returned by lookups that find nothing. The zero Handle is
// never valid either, since live generations start at 1.
var InvalidHandle = Handle{Index: math.MaxUint32, Generation: 0}

var ErrFreelistFull = errors.New("freelist is full")

// IsValid reports whether the handle could refer to a live slot.
func (h Handle) IsValid() bool {
	return h.Generation != 0 && h.Index != math.MaxUint32
}

type slot[T any] struct {
	value      T
	generation uint32
	live       bool
}

// Freelist is a slot arena with generational handles. Released slots are
// recycled in LIFO order.
type Freelist[T any] struct {
	slots    []slot[T]
	free     []uint32
	used     int
	capacity int
}

// NewFreelist creates an arena holding at most capacity live values. A
// capacity of 0 means unbounded.
func NewFreelist[T any](capacity int) *Freelist[T] {
	return &Freelist[T]{
		slots:    make([]slot[T], 0, capacity),
		free:     make([]uint32, 0),
		capacity: capacity,
	}
}

// Acquire stores value in a free slot and returns its handle.
func (f *Freelist[T]) Acquire(value T) (Handle, error) {
	if f.capacity > 0 && f.used >= f.capacity {
		return InvalidHandle, ErrFreelistFull
	}

	var index uint32
	if n := len(f.free); n > 0 {
		index = f.free[n-1]
		f.free = f.free[:n-1]
	} else {
		index = uint32(len(f.slots))
		f.slots = append(f.slots, slot[T]{})
	}

	s := &f.slots[index]
	s.generation++
	if s.generation == 0 {
		// skip the reserved generation after overflow
		s.generation = 1
	}
	s.value = value
	s.live = true
	f.used++

	return Handle{Index: index, Generation: s.generation}, nil
}

// Release frees the slot behind h. It returns false if h is stale.
func (f *Freelist[T]) Release(h Handle) bool {
	s := f.lookup(h)
	if s == nil {
		return false
	}
	var zero T
	s.value = zero
	s.live = false
	f.free = append(f.free, h.Index)
	f.used--
	return true
}

// Get returns the value behind h.
func (f *Freelist[T]) Get(h Handle) (T, bool) {
	s := f.lookup(h)
	if s == nil {
		var zero T
		return zero, false
	}
	return s.value, true
}

// Len returns the number of live values.
func (f *Freelist[T]) Len() int {
	return f.used
}

// Each visits every live value in slot order.
func (f *Freelist[T]) Each(fn func(h Handle, value T)) {
	for i := range f.slots {
		s := &f.slots[i]
		if s.live {
			fn(Handle{Index: uint32(i), Generation: s.generation}, s.value)
		}
	}
}

// Clear releases every live slot. Outstanding handles become stale.
func (f *Freelist[T]) Clear() {
	for i := range f.slots {
		s := &f.slots[i]
		if s.live {
			f.Release(Handle{Index: uint32(i), Generation: s.generation})
		}
	}
}

func (f *Freelist[T]) lookup(h Handle) *slot[T] {
	if !h.IsValid() || int(h.Index) >= len(f.slots) {
		return nil
	}
	s := &f.slots[h.Index]
	if !s.live || s.generation != h.Generation {
		return nil
	}
	return s
}
