package commands

import (
	"errors"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/spaghettifunk/anima-core/engine/containers"
	"github.com/spaghettifunk/anima-core/engine/core"
	"github.com/spaghettifunk/anima-core/engine/renderer/metadata"
)

// FrameReport summarises one submitted or aborted frame.
type FrameReport struct {
	ID           uuid.UUID
	Number       uint64
	Commands     int
	StateChanges int
	SortMS       float64
	Aborted      bool
}

// Frame records the commands of one frame. The first recording error marks
// the frame as failed; later records are ignored and the scheduler drops the
// frame at submit time. A frame is closed once it is submitted or discarded.
type Frame struct {
	ID     uuid.UUID
	Number uint64

	stream *CommandStream
	err    error
	closed bool
}

// Record appends cmd with key. It returns the frame's error if the frame
// has already failed, and core.ErrStreamFinalized once the frame is closed.
func (f *Frame) Record(key SortKey, cmd Command) error {
	if f.closed {
		return fmt.Errorf("frame %d is closed: %w", f.Number, core.ErrStreamFinalized)
	}
	if f.err != nil {
		return f.err
	}
	if err := f.stream.Emplace(key, cmd); err != nil {
		f.err = err
		return err
	}
	return nil
}

// Fail marks the frame as failed with err, unless it already failed or is
// closed.
func (f *Frame) Fail(err error) {
	if !f.closed && f.err == nil && err != nil {
		f.err = err
	}
}

func (f *Frame) Err() error {
	return f.err
}

// Len is the number of recorded commands, 0 once the frame is closed.
func (f *Frame) Len() int {
	if f.closed {
		return 0
	}
	return f.stream.Len()
}

func (f *Frame) Closed() bool {
	return f.closed
}

type SchedulerOption func(*Scheduler)

// WithStreamCapacity preallocates room for n commands per frame.
func WithStreamCapacity(n int) SchedulerOption {
	return func(s *Scheduler) {
		s.capacity = n
	}
}

// WithHistory keeps the last n frame reports.
func WithHistory(n int) SchedulerOption {
	return func(s *Scheduler) {
		s.historySize = n
	}
}

// Scheduler owns the per-frame command stream. One frame is open at a time:
// BeginFrame, record, Submit. The stream storage is reused across frames.
type Scheduler struct {
	backend     Backend
	stream      *CommandStream
	capacity    int
	historySize int
	history     *containers.RingQueue[FrameReport]
	frameNumber uint64
	current     *Frame
	clock       *core.Clock
	logger      *log.Logger
}

var ErrFrameInProgress = errors.New("a frame is already being recorded")

func NewScheduler(backend Backend, opts ...SchedulerOption) (*Scheduler, error) {
	if backend == nil {
		return nil, fmt.Errorf("scheduler requires a backend")
	}
	s := &Scheduler{
		backend:     backend,
		capacity:    1024,
		historySize: 120,
		clock:       core.NewClock(),
		logger:      core.Logger().With("component", "scheduler"),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.stream = NewCommandStream(s.capacity)
	s.history = containers.NewRingQueue[FrameReport](s.historySize)
	return s, nil
}

// BeginFrame opens a new frame for recording.
func (s *Scheduler) BeginFrame() (*Frame, error) {
	if s.current != nil {
		return nil, ErrFrameInProgress
	}
	s.stream.Reset()
	s.frameNumber++
	s.current = &Frame{
		ID:     uuid.New(),
		Number: s.frameNumber,
		stream: s.stream,
	}
	return s.current, nil
}

// Submit sorts the frame and executes it on the backend. A frame that failed
// while recording is logged and dropped without touching the backend; the
// returned error wraps core.ErrFrameAborted and the recording error.
func (s *Scheduler) Submit(f *Frame) (FrameReport, error) {
	if f == nil || f != s.current {
		return FrameReport{}, fmt.Errorf("submit of a frame not opened by this scheduler")
	}
	defer s.close(f)

	report := FrameReport{ID: f.ID, Number: f.Number, Commands: f.stream.Len()}
	if f.err != nil {
		report.Aborted = true
		s.history.Push(report)
		core.MetricsAbort()
		s.logger.Error("frame aborted, skipping submission", "frame", f.ID, "number", f.Number, "err", f.err)
		return report, fmt.Errorf("frame %d: %w: %w", f.Number, core.ErrFrameAborted, f.err)
	}

	s.clock.Start()
	ordered, err := f.stream.Finalize()
	if err != nil {
		return report, err
	}
	s.clock.Update()
	report.SortMS = s.clock.ElapsedMS()
	s.clock.Stop()

	info := FrameInfo{ID: f.ID, Number: f.Number, CommandCount: len(ordered)}
	if err := s.backend.BeginFrame(info); err != nil {
		return report, fmt.Errorf("backend begin frame %d: %w", f.Number, err)
	}
	changes, err := s.execute(ordered)
	report.StateChanges = changes
	if err != nil {
		return s.abort(info, report, fmt.Errorf("backend execute frame %d: %w", f.Number, err))
	}
	if err := s.backend.EndFrame(info); err != nil {
		return s.abort(info, report, fmt.Errorf("backend end frame %d: %w", f.Number, err))
	}

	s.history.Push(report)
	core.MetricsSubmission(uint32(report.Commands), report.SortMS)
	s.logger.Debug("frame submitted", "frame", f.ID, "number", f.Number, "commands", report.Commands, "state_changes", changes)
	return report, nil
}

// abort tells the backend to drop a frame that failed on the device side and
// records it as aborted.
func (s *Scheduler) abort(info FrameInfo, report FrameReport, err error) (FrameReport, error) {
	s.backend.AbortFrame(info)
	report.Aborted = true
	s.history.Push(report)
	core.MetricsAbort()
	s.logger.Error("backend failed, frame dropped", "frame", info.ID, "number", info.Number, "err", err)
	return report, err
}

func (s *Scheduler) close(f *Frame) {
	f.closed = true
	s.current = nil
	s.stream.Reset()
}

// execute hands the ordered commands to the backend, emitting a bind only
// when a draw needs a program or material other than the bound one.
func (s *Scheduler) execute(ordered []Command) (int, error) {
	var (
		pipeline   metadata.PipelineHandle
		descriptor metadata.DescriptorSetHandle
		changes    int
	)
	for _, cmd := range ordered {
		switch c := cmd.(type) {
		case BeginPass, EndPass:
			pipeline, descriptor = metadata.NullHandle, metadata.NullHandle
		case BindShader:
			if c.Pipeline == pipeline {
				continue
			}
			pipeline = c.Pipeline
			descriptor = metadata.NullHandle
			changes++
		case BindMaterial:
			if c.DescriptorSet == descriptor {
				continue
			}
			descriptor = c.DescriptorSet
			changes++
		case DrawMesh:
			if c.Pipeline != pipeline {
				if err := s.backend.Execute(BindShader{Program: c.Program, Pipeline: c.Pipeline}); err != nil {
					return changes, err
				}
				pipeline = c.Pipeline
				// A new pipeline invalidates the descriptor binding.
				descriptor = metadata.NullHandle
				changes++
			}
			if c.DescriptorSet != metadata.NullHandle && c.DescriptorSet != descriptor {
				if err := s.backend.Execute(BindMaterial{Material: c.Material, DescriptorSet: c.DescriptorSet}); err != nil {
					return changes, err
				}
				descriptor = c.DescriptorSet
				changes++
			}
		}
		if err := s.backend.Execute(cmd); err != nil {
			return changes, err
		}
	}
	return changes, nil
}

// Discard abandons an open frame without submitting it.
func (s *Scheduler) Discard(f *Frame) {
	if f != nil && f == s.current {
		s.close(f)
	}
}

// History returns the recent frame reports, oldest first.
func (s *Scheduler) History() []FrameReport {
	return s.history.Snapshot()
}

func (s *Scheduler) FrameNumber() uint64 {
	return s.frameNumber
}
