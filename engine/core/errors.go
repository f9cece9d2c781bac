package core

import (
	"errors"
)

var (
	// Returned by fixed-capacity pools and registries when every slot is live.
	ErrCapacityExceeded = errors.New("capacity exceeded")
	// The handle is the invalid sentinel or outside the container's slot range.
	ErrInvalidHandle = errors.New("invalid handle")
	// The handle is in range but its slot is currently free.
	ErrStaleHandle = errors.New("stale handle")
	// Decrement requested on an entry whose reference count is already 0.
	ErrRefCountUnderflow = errors.New("reference count underflow")
	// The shared reference was already released.
	ErrReleasedRef     = errors.New("reference already released")
	ErrInvalidCommand  = errors.New("invalid command")
	ErrStreamFinalized = errors.New("command stream already finalized")
	ErrFrameAborted    = errors.New("frame aborted")
	ErrUnknownResource = errors.New("unknown resource")
	ErrInvalidConfig   = errors.New("invalid configuration")
)
