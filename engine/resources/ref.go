package resources

import (
	"fmt"

	"github.com/spaghettifunk/anima-core/engine/core"
)

// Ref is a shared owner of a registry entry. Each Ref holds exactly one
// reference: Clone takes another, Release gives it back. Copying a Ref value
// does not take a reference; use Clone.
type Ref[T any] struct {
	registry *Registry[T]
	id       ID[T]
	released bool
}

// NewRef emplaces asset and returns the Ref owning its initial reference.
func NewRef[T any](r *Registry[T], asset T) (*Ref[T], error) {
	id, err := r.Emplace(asset)
	if err != nil {
		return nil, err
	}
	return &Ref[T]{registry: r, id: id}, nil
}

// Share takes a new reference on an existing entry.
func (r *Registry[T]) Share(id ID[T]) (*Ref[T], error) {
	if _, err := r.IncrementRef(id); err != nil {
		return nil, err
	}
	return &Ref[T]{registry: r, id: id}, nil
}

// Adopt wraps a reference the caller already holds (for example the initial
// reference returned by Emplace) without incrementing.
func (r *Registry[T]) Adopt(id ID[T]) (*Ref[T], error) {
	if !r.Contains(id) {
		return nil, fmt.Errorf("adopt registry id %d: %w", uint32(id), core.ErrStaleHandle)
	}
	return &Ref[T]{registry: r, id: id}, nil
}

func (ref *Ref[T]) ID() ID[T] {
	return ref.id
}

func (ref *Ref[T]) Clone() (*Ref[T], error) {
	if ref.released {
		return nil, core.ErrReleasedRef
	}
	return ref.registry.Share(ref.id)
}

func (ref *Ref[T]) Get() (*T, error) {
	if ref.released {
		return nil, core.ErrReleasedRef
	}
	return ref.registry.Get(ref.id)
}

// Release drops this Ref's reference. It reports whether the entry was
// deleted. Calling it again is a no-op.
func (ref *Ref[T]) Release() (bool, error) {
	if ref == nil || ref.released {
		return false, nil
	}
	ref.released = true
	return ref.registry.DecrementRef(ref.id)
}

func (ref *Ref[T]) Released() bool {
	return ref.released
}
