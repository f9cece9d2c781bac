package core

import "sync"

const AVG_COUNT uint8 = 30

type MetricsState struct {
	FrameAVGCounter    uint8
	MStimes            [AVG_COUNT]float64
	MSavg              float64
	Frames             int32
	AccumulatedFrameMS float64
	FPS                float64

	// Totals since MetricsInitialize.
	SubmittedFrames   uint64
	AbortedFrames     uint64
	SubmittedCommands uint64
	LastCommandCount  uint32
	LastSortMS        float64
}

var metricsMutex sync.Mutex
var metricsState *MetricsState = nil

// MetricsInitialize resets all counters.
func MetricsInitialize() error {
	metricsMutex.Lock()
	defer metricsMutex.Unlock()
	metricsState = &MetricsState{}
	return nil
}

func metrics() *MetricsState {
	if metricsState == nil {
		metricsState = &MetricsState{}
	}
	return metricsState
}

func MetricsUpdate(frameElapsedTime float64) {
	metricsMutex.Lock()
	defer metricsMutex.Unlock()
	m := metrics()

	// Calculate frame ms average
	frameMS := frameElapsedTime * 1000.0
	m.MStimes[m.FrameAVGCounter] = frameMS
	if m.FrameAVGCounter == AVG_COUNT-1 {
		m.MSavg = 0
		for i := uint8(0); i < AVG_COUNT; i++ {
			m.MSavg += m.MStimes[i]
		}
		m.MSavg /= float64(AVG_COUNT)
	}
	m.FrameAVGCounter++
	m.FrameAVGCounter %= AVG_COUNT

	// Calculate Frames per second.
	m.AccumulatedFrameMS += frameMS
	if m.AccumulatedFrameMS > 1000 {
		m.FPS = float64(m.Frames)
		m.AccumulatedFrameMS -= 1000
		m.Frames = 0
	}

	// Count all Frames.
	m.Frames++
}

// MetricsSubmission records a frame handed to the backend.
func MetricsSubmission(commandCount uint32, sortMS float64) {
	metricsMutex.Lock()
	defer metricsMutex.Unlock()
	m := metrics()
	m.SubmittedFrames++
	m.SubmittedCommands += uint64(commandCount)
	m.LastCommandCount = commandCount
	m.LastSortMS = sortMS
}

func MetricsAbort() {
	metricsMutex.Lock()
	defer metricsMutex.Unlock()
	metrics().AbortedFrames++
}

// MetricsSnapshot returns a copy of the current counters.
func MetricsSnapshot() MetricsState {
	metricsMutex.Lock()
	defer metricsMutex.Unlock()
	return *metrics()
}

func MetricsFrame() (float64, float64) {
	s := MetricsSnapshot()
	return s.FPS, s.MSavg
}
