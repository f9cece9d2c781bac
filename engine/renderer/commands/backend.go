package commands

import "github.com/google/uuid"

// FrameInfo identifies the frame being submitted to a backend.
type FrameInfo struct {
	ID           uuid.UUID
	Number       uint64
	CommandCount int
}

// Backend executes an ordered command stream. Calls arrive as BeginFrame,
// then one Execute per command in sorted order, then EndFrame. Draws are
// executed against whatever program and material were last bound.
//
// When an Execute or EndFrame call fails the scheduler calls AbortFrame
// instead of continuing. The backend must drop the partial frame there so
// the next BeginFrame starts clean.
type Backend interface {
	BeginFrame(frame FrameInfo) error
	Execute(cmd Command) error
	EndFrame(frame FrameInfo) error
	AbortFrame(frame FrameInfo)
}
