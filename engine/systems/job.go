package systems

import (
	"errors"
	"fmt"
	"sync"

	"github.com/spaghettifunk/cala/engine/core"
)

// JobTask is a unit of work run on a worker goroutine. OnComplete and
// OnFailure also run on the worker, so they must only hand results over to
// the scheduler goroutine, never touch application state.
type JobTask struct {
	Name       string
	OnStart    func() error
	OnComplete func()
	OnFailure  func(err error)
}

type JobSystem struct {
	numWorkers int
	jobQueue   chan JobTask
	wg         sync.WaitGroup
	mu         sync.RWMutex
	closed     bool
	journal    *core.Journal
}

var (
	ErrNoWorkers           = fmt.Errorf("attempting to create worker pool with less than 1 worker")
	ErrNegativeChannelSize = fmt.Errorf("attempting to create worker pool with a negative channel size")
	ErrJobQueueFull        = errors.New("job queue is full")
	ErrJobSystemClosed     = errors.New("job system is shut down")
)

func NewJobSystem(journal *core.Journal, numWorkers int, channelSize int) (*JobSystem, error) {
	if numWorkers <= 0 {
		return nil, ErrNoWorkers
	}
	if channelSize < 0 {
		return nil, ErrNegativeChannelSize
	}
	if journal == nil {
		journal = core.DiscardJournal()
	}

	js := &JobSystem{
		numWorkers: numWorkers,
		jobQueue:   make(chan JobTask, channelSize),
		journal:    journal.With("component", "jobs"),
	}
	js.start()

	return js, nil
}

func (js *JobSystem) start() {
	for i := 0; i < js.numWorkers; i++ {
		js.wg.Add(1)
		go func() {
			defer js.wg.Done()
			for job := range js.jobQueue {
				js.run(job)
			}
		}()
	}
}

func (js *JobSystem) run(job JobTask) {
	if job.OnStart == nil {
		return
	}
	if err := job.OnStart(); err != nil {
		js.journal.Debug("job failed", "job", job.Name, "err", err)
		if job.OnFailure != nil {
			job.OnFailure(err)
		}
		return
	}
	if job.OnComplete != nil {
		job.OnComplete()
	}
}

// TrySubmit queues the job without blocking.
func (js *JobSystem) TrySubmit(job JobTask) error {
	js.mu.RLock()
	defer js.mu.RUnlock()
	if js.closed {
		return ErrJobSystemClosed
	}
	select {
	case js.jobQueue <- job:
		return nil
	default:
		return ErrJobQueueFull
	}
}

// Pending returns the number of queued jobs not yet picked up by a worker.
func (js *JobSystem) Pending() int {
	return len(js.jobQueue)
}

// Shutdown stops accepting jobs, lets the workers drain the queue and waits
// for them. Safe to call more than once.
func (js *JobSystem) Shutdown() error {
	js.mu.Lock()
	if js.closed {
		js.mu.Unlock()
		return nil
	}
	js.closed = true
	close(js.jobQueue)
	js.mu.Unlock()

	js.wg.Wait()
	return nil
}
