package ingest

import (
	"context"
	"log/slog"
	"sync"

	ssErrors "github.com/arxiv-search/scholarsearch/pkg/errors"
	"github.com/arxiv-search/scholarsearch/pkg/logger"
)

// job is one admitted batch awaiting a background run.
type job struct {
	ctx   context.Context
	batch []RawDocument
}

// Queue is the accept-immediately front door onto a Worker. Submit never
// blocks on runBatch: it admits at most one job at a time (single-job-in-
// flight, per SPEC_FULL.md §5's single-writer discipline) and returns as
// soon as the job is either queued or rejected. The batch itself runs on a
// dedicated goroutine; its Outcome reaches the caller only through OnResult,
// never through Submit's return value — completion is observable via
// status().lastInitialized advancing past the submit time, per SPEC_FULL.md
// §6, not by blocking the submitter.
//
// This is grounded on the indexing pipeline's message-handler-over-channel
// shape (an unbuffered admission channel standing in for an external Kafka
// topic, since this module's Non-goals rule out cross-process concurrency)
// and on the analytics collector's buffered-channel-worker-with-drain-on-
// shutdown pattern for the background goroutine's lifecycle.
type Queue struct {
	worker   *Worker
	jobs     chan job
	done     chan struct{}
	logger   *slog.Logger
	onResult func(Outcome)

	mu      sync.Mutex
	running bool
}

// NewQueue starts a Queue's background goroutine bound to worker. onResult
// is invoked from that goroutine after every batch, successful or not; a nil
// onResult is a no-op. Callers typically use onResult to trigger the Cache
// Manager's reload() after a Result, leaving Failures to not touch serving
// state at all.
func NewQueue(worker *Worker, onResult func(Outcome)) *Queue {
	q := &Queue{
		worker:   worker,
		jobs:     make(chan job),
		done:     make(chan struct{}),
		logger:   logger.WithComponent("ingest-queue"),
		onResult: onResult,
	}
	go q.loop()
	return q
}

// Submit admits batch for background processing and returns immediately.
// It returns ErrWorkerBusy, wrapped as a Failure outcome, if a batch is
// already running — it never blocks waiting for the in-flight job to
// finish, and it never queues a second job behind the first.
func (q *Queue) Submit(ctx context.Context, batch []RawDocument) Outcome {
	q.mu.Lock()
	if q.running {
		q.mu.Unlock()
		q.logger.Warn("rejecting submit, worker busy")
		return Outcome{Failure: &Failure{Message: ssErrors.ErrWorkerBusy.Error()}}
	}
	q.running = true
	q.mu.Unlock()

	q.jobs <- job{ctx: ctx, batch: batch}
	return Outcome{Result: &Result{Message: "batch accepted"}}
}

// loop runs on its own goroutine for the lifetime of the Queue, processing
// at most one job at a time and reporting each Outcome to onResult.
func (q *Queue) loop() {
	for {
		select {
		case j := <-q.jobs:
			outcome := q.worker.Run(j.ctx, j.batch)
			q.mu.Lock()
			q.running = false
			q.mu.Unlock()
			if q.onResult != nil {
				q.onResult(outcome)
			}
		case <-q.done:
			return
		}
	}
}

// Close stops the background goroutine. Any job already received from jobs
// still runs to completion; Close does not wait for it.
func (q *Queue) Close() {
	close(q.done)
}
