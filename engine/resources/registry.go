package resources

import (
	"fmt"
	"iter"
	"math"

	"github.com/spaghettifunk/anima-core/engine/containers"
	"github.com/spaghettifunk/anima-core/engine/core"
)

// ID identifies an entry of a Registry[T]. It is only valid for the registry
// instance that issued it.
type ID[T any] uint32

// InvalidID returns the "no resource" sentinel for IDs of T.
func InvalidID[T any]() ID[T] {
	return ID[T](math.MaxUint32)
}

func (id ID[T]) IsValid() bool {
	return uint32(id) != math.MaxUint32
}

func (id ID[T]) Index() uint32 {
	return uint32(id)
}

type entry[T any] struct {
	asset      T
	refCount   uint32
	persistent bool
}

// ReleaseFunc is invoked with the asset right before its slot is freed.
type ReleaseFunc[T any] func(id ID[T], asset T)

type Option[T any] func(*Registry[T])

// WithCapacity bounds the registry to n live entries.
func WithCapacity[T any](n uint32) Option[T] {
	return func(r *Registry[T]) {
		r.capacity = n
	}
}

// WithReleaseFunc registers the hook that destroys an asset once its last
// reference is dropped.
func WithReleaseFunc[T any](fn ReleaseFunc[T]) Option[T] {
	return func(r *Registry[T]) {
		r.onRelease = fn
	}
}

// Registry is a SlotPool whose entries carry a reference count. Entries are
// created with a count of 1 and deleted when the count drops to 0, unless
// they were created persistent.
//
// Registry is not safe for concurrent use.
type Registry[T any] struct {
	pool      *containers.SlotPool[entry[T]]
	capacity  uint32
	onRelease ReleaseFunc[T]
}

func NewRegistry[T any](opts ...Option[T]) (*Registry[T], error) {
	r := &Registry[T]{}
	for _, opt := range opts {
		opt(r)
	}
	if r.capacity == 0 {
		r.pool = containers.NewSlotPool[entry[T]]()
		return r, nil
	}
	pool, err := containers.NewFixedSlotPool[entry[T]](r.capacity)
	if err != nil {
		return nil, err
	}
	r.pool = pool
	return r, nil
}

// Emplace stores asset with a reference count of 1.
func (r *Registry[T]) Emplace(asset T) (ID[T], error) {
	return r.emplace(asset, false)
}

// EmplacePersistent stores asset so that it is never deleted by DecrementRef.
func (r *Registry[T]) EmplacePersistent(asset T) (ID[T], error) {
	return r.emplace(asset, true)
}

func (r *Registry[T]) emplace(asset T, persistent bool) (ID[T], error) {
	h, err := r.pool.Emplace(entry[T]{asset: asset, refCount: 1, persistent: persistent})
	if err != nil {
		return InvalidID[T](), err
	}
	return ID[T](h), nil
}

// IncrementRef adds a reference and returns the new count.
func (r *Registry[T]) IncrementRef(id ID[T]) (uint32, error) {
	e, err := r.entry(id)
	if err != nil {
		return 0, err
	}
	e.refCount++
	return e.refCount, nil
}

// DecrementRef drops a reference and reports whether the entry was deleted.
func (r *Registry[T]) DecrementRef(id ID[T]) (bool, error) {
	e, err := r.entry(id)
	if err != nil {
		return false, err
	}
	if e.refCount == 0 {
		return false, fmt.Errorf("registry id %d: %w", uint32(id), core.ErrRefCountUnderflow)
	}
	e.refCount--
	if e.refCount > 0 || e.persistent {
		return false, nil
	}
	if r.onRelease != nil {
		r.onRelease(id, e.asset)
	}
	if err := r.pool.Free(containers.Handle[entry[T]](id)); err != nil {
		return false, err
	}
	return true, nil
}

// Remove deletes the entry regardless of its count or persistence. The
// release hook runs as it would for a last DecrementRef.
func (r *Registry[T]) Remove(id ID[T]) error {
	e, err := r.entry(id)
	if err != nil {
		return err
	}
	if r.onRelease != nil {
		r.onRelease(id, e.asset)
	}
	return r.pool.Free(containers.Handle[entry[T]](id))
}

// Get returns a pointer to the asset; it stays valid until the entry is
// deleted or another entry is emplaced into a dynamic registry.
func (r *Registry[T]) Get(id ID[T]) (*T, error) {
	e, err := r.entry(id)
	if err != nil {
		return nil, err
	}
	return &e.asset, nil
}

func (r *Registry[T]) RefCount(id ID[T]) (uint32, error) {
	e, err := r.entry(id)
	if err != nil {
		return 0, err
	}
	return e.refCount, nil
}

func (r *Registry[T]) IsPersistent(id ID[T]) (bool, error) {
	e, err := r.entry(id)
	if err != nil {
		return false, err
	}
	return e.persistent, nil
}

func (r *Registry[T]) Contains(id ID[T]) bool {
	return r.pool.Contains(containers.Handle[entry[T]](id))
}

func (r *Registry[T]) Len() int {
	return r.pool.Len()
}

func (r *Registry[T]) Cap() int {
	return r.pool.Cap()
}

// All iterates live assets in slot order.
func (r *Registry[T]) All() iter.Seq2[ID[T], *T] {
	return func(yield func(ID[T], *T) bool) {
		for h, e := range r.pool.All() {
			if !yield(ID[T](h), &e.asset) {
				return
			}
		}
	}
}

// Clear runs the release hook on every live entry and empties the registry.
func (r *Registry[T]) Clear() {
	if r.onRelease != nil {
		for h, e := range r.pool.All() {
			r.onRelease(ID[T](h), e.asset)
		}
	}
	r.pool.Clear()
}

func (r *Registry[T]) entry(id ID[T]) (*entry[T], error) {
	return r.pool.Get(containers.Handle[entry[T]](id))
}
