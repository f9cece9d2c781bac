package containers

import (
	"fmt"
	"iter"

	"github.com/spaghettifunk/anima-core/engine/core"
)

// SparseArray keeps values densely packed for iteration while handing out
// stable handles. A handle indexes denseIndexOf, which points into objects;
// sparseIndexOf maps each dense position back to its handle so Remove can
// swap the last value into the hole in O(1).
//
// Free sparse slots reuse their denseIndexOf cell as the free-list link.
// Iteration order is stable until the next Add or Remove.
//
// SparseArray is not safe for concurrent use.
type SparseArray[T any] struct {
	objects       []T
	denseIndexOf  []uint32
	sparseIndexOf []uint32
	freeHead      uint32
}

func NewSparseArray[T any]() *SparseArray[T] {
	return &SparseArray[T]{freeHead: invalidIndex}
}

// NewSparseArrayWithCapacity preallocates room for n values.
func NewSparseArrayWithCapacity[T any](n int) *SparseArray[T] {
	return &SparseArray[T]{
		objects:       make([]T, 0, n),
		denseIndexOf:  make([]uint32, 0, n),
		sparseIndexOf: make([]uint32, 0, n),
		freeHead:      invalidIndex,
	}
}

// Add appends v to the dense storage and returns its handle.
func (a *SparseArray[T]) Add(v T) Handle[T] {
	dense := uint32(len(a.objects))
	a.objects = append(a.objects, v)

	var sparse uint32
	if a.freeHead != invalidIndex {
		sparse = a.freeHead
		a.freeHead = a.denseIndexOf[sparse]
		a.denseIndexOf[sparse] = dense
	} else {
		sparse = uint32(len(a.denseIndexOf))
		a.denseIndexOf = append(a.denseIndexOf, dense)
	}
	a.sparseIndexOf = append(a.sparseIndexOf, sparse)
	return Handle[T](sparse)
}

// Remove deletes the value behind h, moving the last dense value into its place.
func (a *SparseArray[T]) Remove(h Handle[T]) error {
	d, err := a.dense(h)
	if err != nil {
		return err
	}
	last := uint32(len(a.objects) - 1)
	if d != last {
		moved := a.sparseIndexOf[last]
		a.objects[d] = a.objects[last]
		a.sparseIndexOf[d] = moved
		a.denseIndexOf[moved] = d
	}
	var zero T
	a.objects[last] = zero
	a.objects = a.objects[:last]
	a.sparseIndexOf = a.sparseIndexOf[:last]

	a.denseIndexOf[h] = a.freeHead
	a.freeHead = uint32(h)
	return nil
}

// Get returns a pointer into dense storage. It is invalidated by Add and Remove.
func (a *SparseArray[T]) Get(h Handle[T]) (*T, error) {
	d, err := a.dense(h)
	if err != nil {
		return nil, err
	}
	return &a.objects[d], nil
}

func (a *SparseArray[T]) Contains(h Handle[T]) bool {
	_, err := a.dense(h)
	return err == nil
}

// dense resolves h. A free sparse cell holds a free-list link, which never
// round-trips through sparseIndexOf back to h.
func (a *SparseArray[T]) dense(h Handle[T]) (uint32, error) {
	if !h.IsValid() || uint32(h) >= uint32(len(a.denseIndexOf)) {
		return 0, fmt.Errorf("sparse array handle %d (slots=%d): %w", uint32(h), len(a.denseIndexOf), core.ErrInvalidHandle)
	}
	d := a.denseIndexOf[h]
	if d >= uint32(len(a.objects)) || a.sparseIndexOf[d] != uint32(h) {
		return 0, fmt.Errorf("sparse array handle %d is free: %w", uint32(h), core.ErrStaleHandle)
	}
	return d, nil
}

func (a *SparseArray[T]) Len() int {
	return len(a.objects)
}

// Values exposes the dense storage. The slice must not be appended to.
func (a *SparseArray[T]) Values() []T {
	return a.objects
}

// HandleAt returns the handle owning dense position i.
func (a *SparseArray[T]) HandleAt(i int) Handle[T] {
	return Handle[T](a.sparseIndexOf[i])
}

// All iterates live values in dense order.
func (a *SparseArray[T]) All() iter.Seq2[Handle[T], *T] {
	return func(yield func(Handle[T], *T) bool) {
		for i := range a.objects {
			if !yield(Handle[T](a.sparseIndexOf[i]), &a.objects[i]) {
				return
			}
		}
	}
}

func (a *SparseArray[T]) Clear() {
	clear(a.objects)
	a.objects = a.objects[:0]
	a.denseIndexOf = a.denseIndexOf[:0]
	a.sparseIndexOf = a.sparseIndexOf[:0]
	a.freeHead = invalidIndex
}
