package containers

import "math"

// Handle identifies a slot in a container holding values of type T. The type
// parameter only tags the handle so handles of unrelated containers cannot be
// mixed up; the value itself is the slot index.
//
// A handle is only meaningful for the container instance that returned it.
// Once freed, the same value may be handed out again by a later allocation.
type Handle[T any] uint32

const invalidIndex uint32 = math.MaxUint32

// InvalidHandle returns the "no object" sentinel for handles of T.
func InvalidHandle[T any]() Handle[T] {
	return Handle[T](invalidIndex)
}

func (h Handle[T]) IsValid() bool {
	return uint32(h) != invalidIndex
}

// Index returns the raw slot index.
func (h Handle[T]) Index() uint32 {
	return uint32(h)
}

// Key packs h into a non-zero uint64 so 0 stays free as a null value in
// APIs that traffic in opaque 64-bit handles.
func (h Handle[T]) Key() uint64 {
	return uint64(h) + 1
}

// HandleFromKey reverses Key. It reports false for 0 and for values that
// cannot have come from Key.
func HandleFromKey[T any](key uint64) (Handle[T], bool) {
	if key == 0 || key > uint64(invalidIndex) {
		return InvalidHandle[T](), false
	}
	return Handle[T](key - 1), true
}
