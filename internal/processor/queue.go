// FILE: stripchess/internal/processor/queue.go
package processor

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/rs/zerolog"

	"stripchess/internal/service"
)

var (
	ErrQueueFull    = errors.New("queue is full")
	ErrShuttingDown = errors.New("queue is shutting down")
	ErrJobNotFound  = errors.New("job not found")
)

// DefaultWorkers is used when a non-positive worker count is requested
const DefaultWorkers = 2

const (
	defaultQueueSize = 100
	defaultJobLimit  = 10000
)

type JobStatus string

const (
	JobPending JobStatus = "pending"
	JobRunning JobStatus = "running"
	JobDone    JobStatus = "done"
	JobFailed  JobStatus = "failed"
)

// Analyzer runs one analysis; satisfied by *service.Service
type Analyzer interface {
	AnalyzeRecord(ctx context.Context, record string, depth int) (*service.Analysis, error)
}

// Job is a snapshot of an analysis request and its outcome
type Job struct {
	ID        string
	Record    string
	Depth     int
	Status    JobStatus
	Analysis  *service.Analysis
	Err       error
	Submitted time.Time
	Finished  time.Time
}

type jobEntry struct {
	job  Job
	done chan struct{}
}

// AnalysisQueue runs analyses on a fixed worker pool. Finished jobs stay
// queryable until evicted from a bounded registry.
type AnalysisQueue struct {
	analyzer Analyzer
	tasks    chan *jobEntry
	workers  int
	jobs     *lru.Cache[string, *jobEntry]
	mu       sync.RWMutex
	log      zerolog.Logger
	wg       sync.WaitGroup
	ctx      context.Context
	cancel   context.CancelFunc
	closed   bool
}

// NewAnalysisQueue creates a queue with specified worker count
func NewAnalysisQueue(analyzer Analyzer, workerCount int, logger zerolog.Logger) (*AnalysisQueue, error) {
	if workerCount < 1 {
		workerCount = DefaultWorkers
	}

	jobs, err := lru.New[string, *jobEntry](defaultJobLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to create job registry: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())

	q := &AnalysisQueue{
		analyzer: analyzer,
		tasks:    make(chan *jobEntry, defaultQueueSize),
		workers:  workerCount,
		jobs:     jobs,
		log:      logger.With().Str("component", "queue").Logger(),
		ctx:      ctx,
		cancel:   cancel,
	}

	q.start()
	return q, nil
}

func (q *AnalysisQueue) start() {
	for i := 0; i < q.workers; i++ {
		q.wg.Add(1)
		go q.worker(i)
	}
}

func (q *AnalysisQueue) worker(id int) {
	defer q.wg.Done()

	for {
		select {
		case entry, ok := <-q.tasks:
			if !ok {
				return
			}
			q.process(id, entry)

		case <-q.ctx.Done():
			return
		}
	}
}

func (q *AnalysisQueue) process(worker int, entry *jobEntry) {
	q.mu.Lock()
	entry.job.Status = JobRunning
	record, depth := entry.job.Record, entry.job.Depth
	q.mu.Unlock()

	analysis, err := q.analyzer.AnalyzeRecord(q.ctx, record, depth)

	q.mu.Lock()
	entry.job.Finished = time.Now().UTC()
	if err != nil {
		entry.job.Status = JobFailed
		entry.job.Err = err
	} else {
		entry.job.Status = JobDone
		entry.job.Analysis = analysis
	}
	job := entry.job
	q.mu.Unlock()
	close(entry.done)

	ev := q.log.Debug()
	if err != nil {
		ev = q.log.Warn().Err(err)
	}
	ev.Int("worker", worker).Str("job", job.ID).Str("status", string(job.Status)).Msg("analysis job finished")
}

// Submit queues an analysis and returns its job without waiting
func (q *AnalysisQueue) Submit(record string, depth int) (Job, error) {
	entry := &jobEntry{
		job: Job{
			ID:        uuid.New().String(),
			Record:    record,
			Depth:     depth,
			Status:    JobPending,
			Submitted: time.Now().UTC(),
		},
		done: make(chan struct{}),
	}

	q.mu.RLock()
	defer q.mu.RUnlock()
	if q.closed {
		return Job{}, ErrShuttingDown
	}

	q.jobs.Add(entry.job.ID, entry)
	select {
	case q.tasks <- entry:
		return entry.job, nil
	default:
		q.jobs.Remove(entry.job.ID)
		return Job{}, ErrQueueFull
	}
}

// SubmitAsync queues an analysis and invokes callback with the finished job
func (q *AnalysisQueue) SubmitAsync(record string, depth int, callback func(Job)) (string, error) {
	job, err := q.Submit(record, depth)
	if err != nil {
		return "", err
	}

	go func() {
		finished, err := q.Wait(q.ctx, job.ID)
		if err != nil {
			finished.Status = JobFailed
			finished.Err = err
		}
		callback(finished)
	}()

	return job.ID, nil
}

// Get returns the current state of a job
func (q *AnalysisQueue) Get(id string) (Job, bool) {
	entry, ok := q.jobs.Get(id)
	if !ok {
		return Job{}, false
	}
	q.mu.RLock()
	defer q.mu.RUnlock()
	return entry.job, true
}

// Wait blocks until the job finishes or ctx is done
func (q *AnalysisQueue) Wait(ctx context.Context, id string) (Job, error) {
	entry, ok := q.jobs.Get(id)
	if !ok {
		return Job{}, ErrJobNotFound
	}

	select {
	case <-entry.done:
	case <-ctx.Done():
		job, _ := q.Get(id)
		return job, ctx.Err()
	}

	q.mu.RLock()
	defer q.mu.RUnlock()
	return entry.job, nil
}

// Shutdown stops accepting jobs and lets workers drain the queue until timeout
func (q *AnalysisQueue) Shutdown(timeout time.Duration) error {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return nil
	}
	q.closed = true
	close(q.tasks)
	q.mu.Unlock()

	done := make(chan struct{})
	go func() {
		q.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		q.cancel()
		return nil
	case <-time.After(timeout):
		q.cancel()
		return fmt.Errorf("shutdown timeout exceeded")
	}
}
