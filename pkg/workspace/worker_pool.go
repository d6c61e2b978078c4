package workspace

import (
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/gnana997/m2ls/pkg/util"
)

// FileJob is a file to be indexed by the worker pool.
type FileJob struct {
	Path  string
	JobID int
}

// ProcessFunc indexes one file. Errors are counted and logged, never fatal.
type ProcessFunc func(job FileJob) error

// WorkerPool runs a fixed number of goroutines over a job queue.
//
// Usage:
//
//	pool := NewWorkerPool(0, process, logger)
//	pool.Start()
//	for i, path := range paths {
//	    pool.Submit(FileJob{Path: path, JobID: i})
//	}
//	pool.FinishSubmitting()
//	pool.Wait()
type WorkerPool struct {
	numWorkers int
	jobs       chan FileJob
	wg         sync.WaitGroup
	process    ProcessFunc
	logger     *slog.Logger

	started    atomic.Bool
	jobsClosed atomic.Bool

	jobsSubmitted atomic.Int64
	jobsProcessed atomic.Int64
	jobsFailed    atomic.Int64
}

// NewWorkerPool creates a worker pool. numWorkers 0 uses util.GetOptimalPoolSize,
// which matches the parser pool size so workers never wait on a parser.
func NewWorkerPool(numWorkers int, process ProcessFunc, logger *slog.Logger) *WorkerPool {
	if numWorkers <= 0 {
		numWorkers = util.GetOptimalPoolSize()
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &WorkerPool{
		numWorkers: numWorkers,
		jobs:       make(chan FileJob, numWorkers*2),
		process:    process,
		logger:     logger,
	}
}

// Start spawns the workers. Must be called before Submit.
func (wp *WorkerPool) Start() {
	if !wp.started.CompareAndSwap(false, true) {
		wp.logger.Warn("worker pool already started")
		return
	}

	for i := 0; i < wp.numWorkers; i++ {
		wp.wg.Add(1)
		go wp.worker(i)
	}
}

func (wp *WorkerPool) worker(id int) {
	defer wp.wg.Done()

	for job := range wp.jobs {
		if err := wp.process(job); err != nil {
			wp.jobsFailed.Add(1)
			wp.logger.Warn("failed to index file", "worker_id", id, "path", job.Path, "error", err)
			continue
		}
		wp.jobsProcessed.Add(1)
	}
}

// Submit enqueues a job, blocking while the queue is full.
func (wp *WorkerPool) Submit(job FileJob) error {
	if wp.jobsClosed.Load() {
		return fmt.Errorf("worker pool no longer accepts jobs")
	}
	wp.jobsSubmitted.Add(1)
	wp.jobs <- job
	return nil
}

// FinishSubmitting closes the queue. Workers exit once it is drained. Idempotent.
func (wp *WorkerPool) FinishSubmitting() {
	if wp.jobsClosed.CompareAndSwap(false, true) {
		close(wp.jobs)
	}
}

// Wait blocks until every worker has exited. Call FinishSubmitting first.
func (wp *WorkerPool) Wait() {
	wp.wg.Wait()
}

// GetStats returns the pool counters.
func (wp *WorkerPool) GetStats() WorkerPoolStats {
	return WorkerPoolStats{
		NumWorkers:    wp.numWorkers,
		JobsSubmitted: wp.jobsSubmitted.Load(),
		JobsProcessed: wp.jobsProcessed.Load(),
		JobsFailed:    wp.jobsFailed.Load(),
		QueueLength:   len(wp.jobs),
	}
}

// WorkerPoolStats contains statistics about the worker pool.
type WorkerPoolStats struct {
	NumWorkers    int
	JobsSubmitted int64
	JobsProcessed int64
	JobsFailed    int64
	QueueLength   int
}
