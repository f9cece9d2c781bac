package commands

import (
	"errors"
	"testing"

	"github.com/spaghettifunk/anima-core/engine/core"
	"github.com/spaghettifunk/anima-core/engine/renderer/metadata"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingBackend struct {
	frames   []FrameInfo
	executed []Command
	ended    int
	aborted  []FrameInfo
	failOn   Kind
	fail     bool
}

func (b *recordingBackend) BeginFrame(frame FrameInfo) error {
	b.frames = append(b.frames, frame)
	return nil
}

func (b *recordingBackend) Execute(cmd Command) error {
	if b.fail && cmd.Kind() == b.failOn {
		return errors.New("device lost")
	}
	b.executed = append(b.executed, cmd)
	return nil
}

func (b *recordingBackend) EndFrame(FrameInfo) error {
	b.ended++
	return nil
}

func (b *recordingBackend) AbortFrame(frame FrameInfo) {
	b.aborted = append(b.aborted, frame)
}

func (b *recordingBackend) kinds() []Kind {
	var out []Kind
	for _, c := range b.executed {
		out = append(out, c.Kind())
	}
	return out
}

func recordDraws(t *testing.T, f *Frame, draws []DrawMesh) {
	t.Helper()
	begin, err := BeginPassKey(0)
	require.NoError(t, err)
	require.NoError(t, f.Record(begin, BeginPass{Pass: 0, Framebuffer: 9}))
	for i, d := range draws {
		key, err := DrawKey(0, metadata.ViewLayerWorld, d.Program, d.Material, float32(i)/float32(len(draws)), metadata.TranslucencyOpaque, 0, false)
		require.NoError(t, err)
		require.NoError(t, f.Record(key, d))
	}
	end, err := EndPassKey(0)
	require.NoError(t, err)
	require.NoError(t, f.Record(end, EndPass{Pass: 0}))
	require.NoError(t, f.Record(PresentKey(), Present{}))
}

func TestSchedulerGroupsStateChanges(t *testing.T) {
	backend := &recordingBackend{}
	s, err := NewScheduler(backend)
	require.NoError(t, err)

	// Two programs with two materials each, submitted fully interleaved.
	var draws []DrawMesh
	for i := 0; i < 8; i++ {
		program := uint16(i % 2)
		material := uint16(i % 4)
		draws = append(draws, draw(program, metadata.PipelineHandle(100+program), material, metadata.DescriptorSetHandle(200+material)))
	}

	f, err := s.BeginFrame()
	require.NoError(t, err)
	recordDraws(t, f, draws)

	report, err := s.Submit(f)
	require.NoError(t, err)
	assert.False(t, report.Aborted)
	assert.Equal(t, 11, report.Commands)
	// 2 pipeline binds + 4 material binds instead of 16 when unsorted.
	assert.Equal(t, 6, report.StateChanges)

	kinds := backend.kinds()
	assert.Equal(t, KindBeginPass, kinds[0])
	assert.Equal(t, KindEndPass, kinds[len(kinds)-2])
	assert.Equal(t, KindPresent, kinds[len(kinds)-1])
	assert.Len(t, backend.frames, 1)
	assert.Equal(t, f.ID, backend.frames[0].ID)
	assert.Equal(t, 1, backend.ended)

	var programs []uint16
	for _, c := range backend.executed {
		if d, ok := c.(DrawMesh); ok {
			programs = append(programs, d.Program)
		}
	}
	assert.Equal(t, []uint16{0, 0, 0, 0, 1, 1, 1, 1}, programs)
}

func TestSchedulerSkipsRedundantExplicitBinds(t *testing.T) {
	backend := &recordingBackend{}
	s, err := NewScheduler(backend)
	require.NoError(t, err)

	f, err := s.BeginFrame()
	require.NoError(t, err)
	key, err := StateKey(0, metadata.ViewLayerWorld, KindBindShader, 0)
	require.NoError(t, err)
	require.NoError(t, f.Record(key, BindShader{Program: 1, Pipeline: 5}))
	require.NoError(t, f.Record(key, BindShader{Program: 1, Pipeline: 5}))
	drawKey, err := DrawKey(0, metadata.ViewLayerWorld, 1, 0, 0, metadata.TranslucencyOpaque, 0, false)
	require.NoError(t, err)
	require.NoError(t, f.Record(drawKey, draw(1, 5, 0, metadata.NullHandle)))

	report, err := s.Submit(f)
	require.NoError(t, err)
	assert.Equal(t, 1, report.StateChanges)
	assert.Equal(t, []Kind{KindBindShader, KindDrawMesh}, backend.kinds())
}

func TestSchedulerAbortsFailedFrame(t *testing.T) {
	backend := &recordingBackend{}
	s, err := NewScheduler(backend, WithHistory(4))
	require.NoError(t, err)

	f, err := s.BeginFrame()
	require.NoError(t, err)
	require.NoError(t, f.Record(PresentKey(), Present{}))
	err = f.Record(0, DrawMesh{})
	require.ErrorIs(t, err, core.ErrInvalidCommand)
	assert.ErrorIs(t, f.Record(PresentKey(), Present{}), core.ErrInvalidCommand, "a failed frame stays failed")

	report, err := s.Submit(f)
	assert.ErrorIs(t, err, core.ErrFrameAborted)
	assert.ErrorIs(t, err, core.ErrInvalidCommand)
	assert.True(t, report.Aborted)
	assert.Empty(t, backend.frames, "aborted frames never reach the backend")

	// The next frame is unaffected.
	f, err = s.BeginFrame()
	require.NoError(t, err)
	assert.Equal(t, 0, f.Len())
	require.NoError(t, f.Record(PresentKey(), Present{}))
	_, err = s.Submit(f)
	require.NoError(t, err)
	assert.Len(t, backend.frames, 1)

	history := s.History()
	require.Len(t, history, 2)
	assert.True(t, history[0].Aborted)
	assert.False(t, history[1].Aborted)
	assert.Equal(t, uint64(2), s.FrameNumber())
}

func TestSchedulerFailMarksFrame(t *testing.T) {
	backend := &recordingBackend{}
	s, err := NewScheduler(backend)
	require.NoError(t, err)

	f, err := s.BeginFrame()
	require.NoError(t, err)
	f.Fail(core.ErrUnknownResource)
	_, err = s.Submit(f)
	assert.ErrorIs(t, err, core.ErrFrameAborted)
	assert.ErrorIs(t, err, core.ErrUnknownResource)
}

func TestSchedulerOneFrameAtATime(t *testing.T) {
	s, err := NewScheduler(&recordingBackend{})
	require.NoError(t, err)

	f, err := s.BeginFrame()
	require.NoError(t, err)
	_, err = s.BeginFrame()
	assert.ErrorIs(t, err, ErrFrameInProgress)

	s.Discard(f)
	_, err = s.Submit(f)
	assert.Error(t, err)

	_, err = s.BeginFrame()
	assert.NoError(t, err)
}

func TestSchedulerBackendError(t *testing.T) {
	backend := &recordingBackend{fail: true, failOn: KindPresent}
	s, err := NewScheduler(backend)
	require.NoError(t, err)

	f, err := s.BeginFrame()
	require.NoError(t, err)
	require.NoError(t, f.Record(PresentKey(), Present{}))
	report, err := s.Submit(f)
	assert.ErrorContains(t, err, "device lost")
	assert.True(t, report.Aborted)
	assert.Zero(t, backend.ended, "a failed frame is never ended")
	require.Len(t, backend.aborted, 1, "the backend is told to drop the partial frame")
	assert.Equal(t, f.ID, backend.aborted[0].ID)
	require.Len(t, s.History(), 1)
	assert.True(t, s.History()[0].Aborted)

	backend.fail = false
	f, err = s.BeginFrame()
	require.NoError(t, err, "scheduler is reusable after a backend error")
	require.NoError(t, f.Record(PresentKey(), Present{}))
	_, err = s.Submit(f)
	require.NoError(t, err)
	assert.Equal(t, 1, backend.ended)
	assert.Len(t, backend.aborted, 1)
}

func TestSchedulerClosedFrameRejectsRecording(t *testing.T) {
	backend := &recordingBackend{}
	s, err := NewScheduler(backend)
	require.NoError(t, err)

	submitted, err := s.BeginFrame()
	require.NoError(t, err)
	require.NoError(t, submitted.Record(PresentKey(), Present{}))
	_, err = s.Submit(submitted)
	require.NoError(t, err)
	assert.True(t, submitted.Closed())

	current, err := s.BeginFrame()
	require.NoError(t, err)
	assert.ErrorIs(t, submitted.Record(PresentKey(), Present{}), core.ErrStreamFinalized)
	submitted.Fail(core.ErrUnknownResource)
	assert.Equal(t, 0, current.Len(), "the open frame does not see commands recorded through an old one")
	assert.NoError(t, current.Err())

	s.Discard(current)
	assert.True(t, current.Closed())
	assert.ErrorIs(t, current.Record(PresentKey(), Present{}), core.ErrStreamFinalized)

	next, err := s.BeginFrame()
	require.NoError(t, err)
	assert.Equal(t, 0, next.Len())
}

func TestNewSchedulerRequiresBackend(t *testing.T) {
	_, err := NewScheduler(nil)
	assert.Error(t, err)
}
