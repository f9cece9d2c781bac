package commands

import (
	"fmt"
	"math"

	"golang.org/x/exp/slices"

	"github.com/spaghettifunk/anima-core/engine/core"
)

type entry struct {
	offset uint32
	key    SortKey
}

// CommandStream collects the commands of one frame in submission order
// together with a parallel list of (offset, key) pairs. Finalize sorts the
// pairs and yields the commands in key order.
//
// CommandStream is not safe for concurrent use.
type CommandStream struct {
	commands  []Command
	entries   []entry
	ordered   []Command
	finalized bool
}

func NewCommandStream(capacity int) *CommandStream {
	return &CommandStream{
		commands: make([]Command, 0, capacity),
		entries:  make([]entry, 0, capacity),
		ordered:  make([]Command, 0, capacity),
	}
}

// Emplace validates cmd and appends it with the given key.
func (s *CommandStream) Emplace(key SortKey, cmd Command) error {
	if s.finalized {
		return core.ErrStreamFinalized
	}
	if cmd == nil {
		return fmt.Errorf("%w: nil command", core.ErrInvalidCommand)
	}
	if err := cmd.validate(); err != nil {
		return err
	}
	if uint64(len(s.commands)) >= math.MaxUint32 {
		return fmt.Errorf("command stream holds %d commands: %w", len(s.commands), core.ErrCapacityExceeded)
	}
	s.entries = append(s.entries, entry{offset: uint32(len(s.commands)), key: key})
	s.commands = append(s.commands, cmd)
	return nil
}

// Finalize orders the stream by key. Equal keys keep their submission order.
// It may be called once per recording; Reset starts a new one.
func (s *CommandStream) Finalize() ([]Command, error) {
	if s.finalized {
		return nil, core.ErrStreamFinalized
	}
	s.finalized = true

	slices.SortStableFunc(s.entries, func(a, b entry) int {
		switch {
		case a.key < b.key:
			return -1
		case a.key > b.key:
			return 1
		}
		return 0
	})

	s.ordered = s.ordered[:0]
	for _, e := range s.entries {
		s.ordered = append(s.ordered, s.commands[e.offset])
	}
	return s.ordered, nil
}

// Keys returns the keys in their current order: submission order before
// Finalize, sorted order after.
func (s *CommandStream) Keys() []SortKey {
	keys := make([]SortKey, len(s.entries))
	for i, e := range s.entries {
		keys[i] = e.key
	}
	return keys
}

func (s *CommandStream) Len() int {
	return len(s.commands)
}

func (s *CommandStream) Finalized() bool {
	return s.finalized
}

// Reset drops every command and keeps the allocated storage.
func (s *CommandStream) Reset() {
	clear(s.commands)
	clear(s.ordered)
	s.commands = s.commands[:0]
	s.entries = s.entries[:0]
	s.ordered = s.ordered[:0]
	s.finalized = false
}
