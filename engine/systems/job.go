package systems

import (
	"fmt"
	"sync"

	"github.com/spaghettifunk/anima-core/engine/core"
)

// Job is a unit of work run on a worker goroutine. Jobs must not touch the
// registries; they hand their results back to the caller of Wait.
type Job struct {
	Name string
	Run  func() error
	// Called on the worker after Run fails.
	OnFailure func(err error)
}

// JobSystem is a fixed pool of workers draining a job queue. It is used to
// run slow, side-effect free work such as texture loading off the main loop.
type JobSystem struct {
	numWorkers int
	jobQueue   chan Job
	workers    sync.WaitGroup
	pending    sync.WaitGroup
	closed     bool
}

var ErrNoWorkers = fmt.Errorf("attempting to create worker pool with less than 1 worker")
var ErrNegativeChannelSize = fmt.Errorf("attempting to create worker pool with a negative channel size")
var ErrJobSystemClosed = fmt.Errorf("job system is shut down")

func NewJobSystem(numWorkers int, channelSize int) (*JobSystem, error) {
	if numWorkers <= 0 {
		return nil, ErrNoWorkers
	}
	if channelSize < 0 {
		return nil, ErrNegativeChannelSize
	}
	js := &JobSystem{
		numWorkers: numWorkers,
		jobQueue:   make(chan Job, channelSize),
	}
	js.start()
	return js, nil
}

func (js *JobSystem) start() {
	for i := 0; i < js.numWorkers; i++ {
		js.workers.Add(1)
		go func() {
			defer js.workers.Done()
			for job := range js.jobQueue {
				if err := job.Run(); err != nil {
					core.LogError("job '%s' failed: %s", job.Name, err)
					if job.OnFailure != nil {
						job.OnFailure(err)
					}
				}
				js.pending.Done()
			}
		}()
	}
}

/**
 * @brief Submits the provided job to be queued for execution.
 * Blocks while the queue is full.
 */
func (js *JobSystem) Submit(job Job) error {
	if js.closed {
		return ErrJobSystemClosed
	}
	if job.Run == nil {
		return fmt.Errorf("job '%s' has nothing to run", job.Name)
	}
	js.pending.Add(1)
	js.jobQueue <- job
	return nil
}

// Wait blocks until every submitted job has finished.
func (js *JobSystem) Wait() {
	js.pending.Wait()
}

/**
 * @brief Shuts the job system down. Queued jobs still run.
 */
func (js *JobSystem) Shutdown() error {
	if js.closed {
		return nil
	}
	js.closed = true
	close(js.jobQueue)
	js.workers.Wait()
	return nil
}
