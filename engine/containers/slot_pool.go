package containers

import (
	"fmt"
	"iter"

	"github.com/spaghettifunk/anima-core/engine/core"
)

// slot holds either a live value or a link to the next free slot.
type slot[T any] struct {
	live  bool
	next  uint32
	value T
}

// SlotPool stores values of T behind stable integer handles. Freed slots are
// recycled through a LIFO free list threaded through the slot storage, so
// Emplace and Free are O(1).
//
// A dynamic pool grows without bound; a fixed pool refuses to grow past its
// capacity and only materialises slots up to its high-water mark.
//
// SlotPool is not safe for concurrent use.
type SlotPool[T any] struct {
	slots    []slot[T]
	freeHead uint32
	live     int
	capacity uint32 // 0 means dynamic
}

// NewSlotPool creates a dynamic pool.
func NewSlotPool[T any]() *SlotPool[T] {
	return &SlotPool[T]{freeHead: invalidIndex}
}

// NewFixedSlotPool creates a pool that holds at most capacity live values.
func NewFixedSlotPool[T any](capacity uint32) (*SlotPool[T], error) {
	if capacity == 0 || capacity == invalidIndex {
		return nil, fmt.Errorf("fixed slot pool capacity must be in [1, %d), got %d", invalidIndex, capacity)
	}
	return &SlotPool[T]{
		slots:    make([]slot[T], 0, capacity),
		freeHead: invalidIndex,
		capacity: capacity,
	}, nil
}

// Emplace stores v and returns its handle.
func (p *SlotPool[T]) Emplace(v T) (Handle[T], error) {
	if p.freeHead != invalidIndex {
		idx := p.freeHead
		s := &p.slots[idx]
		p.freeHead = s.next
		s.next = invalidIndex
		s.live = true
		s.value = v
		p.live++
		return Handle[T](idx), nil
	}

	n := uint32(len(p.slots))
	if p.capacity != 0 && n >= p.capacity {
		return InvalidHandle[T](), fmt.Errorf("slot pool full at %d slots: %w", p.capacity, core.ErrCapacityExceeded)
	}
	if n == invalidIndex {
		return InvalidHandle[T](), fmt.Errorf("slot pool exhausted the handle space: %w", core.ErrCapacityExceeded)
	}
	p.slots = append(p.slots, slot[T]{live: true, next: invalidIndex, value: v})
	p.live++
	return Handle[T](n), nil
}

// Free releases the slot behind h and pushes it on the free list.
func (p *SlotPool[T]) Free(h Handle[T]) error {
	s, err := p.slot(h)
	if err != nil {
		return err
	}
	var zero T
	s.value = zero
	s.live = false
	s.next = p.freeHead
	p.freeHead = uint32(h)
	p.live--
	return nil
}

// Get returns a pointer to the live value behind h. The pointer is valid
// until the next Emplace (which may grow the slot array) or Free of h.
func (p *SlotPool[T]) Get(h Handle[T]) (*T, error) {
	s, err := p.slot(h)
	if err != nil {
		return nil, err
	}
	return &s.value, nil
}

// Contains reports whether h addresses a live slot.
func (p *SlotPool[T]) Contains(h Handle[T]) bool {
	_, err := p.slot(h)
	return err == nil
}

func (p *SlotPool[T]) slot(h Handle[T]) (*slot[T], error) {
	if !h.IsValid() || uint32(h) >= uint32(len(p.slots)) {
		return nil, fmt.Errorf("slot pool handle %d (slots=%d): %w", uint32(h), len(p.slots), core.ErrInvalidHandle)
	}
	s := &p.slots[h]
	if !s.live {
		return nil, fmt.Errorf("slot pool handle %d is free: %w", uint32(h), core.ErrStaleHandle)
	}
	return s, nil
}

// SlotCount is the number of materialised slots, live or free.
func (p *SlotPool[T]) SlotCount() int {
	return len(p.slots)
}

// Len is the number of live values.
func (p *SlotPool[T]) Len() int {
	return p.live
}

// Cap returns the fixed capacity, or 0 for a dynamic pool.
func (p *SlotPool[T]) Cap() int {
	return int(p.capacity)
}

func (p *SlotPool[T]) IsFixed() bool {
	return p.capacity != 0
}

// All iterates live values in slot order.
func (p *SlotPool[T]) All() iter.Seq2[Handle[T], *T] {
	return func(yield func(Handle[T], *T) bool) {
		for i := range p.slots {
			if !p.slots[i].live {
				continue
			}
			if !yield(Handle[T](i), &p.slots[i].value) {
				return
			}
		}
	}
}

// Clear frees every slot and forgets the free list.
func (p *SlotPool[T]) Clear() {
	clear(p.slots)
	p.slots = p.slots[:0]
	p.freeHead = invalidIndex
	p.live = 0
}
