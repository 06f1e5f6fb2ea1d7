package dispatch

import (
	"context"
	"fmt"
	"runtime"
	"sync"

	lg "github.com/Andrej220/go-utils/zlog"
	"github.com/oklog/ulid/v2"
)

// assignment binds one tracked submission to the future its worker resolves.
type assignment[T, R any] struct {
	sub submission[T, R]
	fut *Future[R]
}

// Worker is a stateless compute unit owned by a Pool. It executes one job at
// a time and resolves the job's future with either the job's value or a
// JobError wrapping the failure. A worker never retries a failed job.
type Worker[T, R any] struct {
	id   string
	jobs chan assignment[T, R]

	stopOnce sync.Once
	stopped  bool // written inside stopOnce; read under the pool's mutex
}

// NewWorker creates a worker with the given identity. An empty id is
// replaced with a fresh ULID.
func NewWorker[T, R any](id string) *Worker[T, R] {
	if id == "" {
		id = ulid.Make().String()
	}
	return &Worker[T, R]{
		id:   id,
		jobs: make(chan assignment[T, R], 1),
	}
}

// NewWorkers creates n workers with ULID identities.
func NewWorkers[T, R any](n int) []*Worker[T, R] {
	ws := make([]*Worker[T, R], n)
	for i := range ws {
		ws[i] = NewWorker[T, R]("")
	}
	return ws
}

// ID returns the worker's identity.
func (w *Worker[T, R]) ID() string { return w.id }

// assign hands a job to the worker. The pool only assigns to idle workers,
// so the buffered send never blocks.
func (w *Worker[T, R]) assign(sub submission[T, R], fut *Future[R]) {
	w.jobs <- assignment[T, R]{sub: sub, fut: fut}
}

// stop ends the worker's run loop once the in-flight assignment, if any, has
// been consumed. Idempotent.
func (w *Worker[T, R]) stop() {
	w.stopOnce.Do(func() {
		w.stopped = true
		close(w.jobs)
	})
}

// run executes assignments until the worker is stopped. Each completed
// future is announced on the pool's completions channel; the pool returns
// the worker to the idle set only after that announcement is processed, so
// at most one unprocessed completion per worker exists at any time and the
// buffered send never blocks.
func (w *Worker[T, R]) run(p *Pool[T, R], slot int) {
	defer p.wg.Done()

	if p.opts.PinWorkers {
		runtime.LockOSThread()
		defer runtime.UnlockOSThread()
		if err := pinToCPU(slot % runtime.NumCPU()); err != nil {
			lg.FromContext(context.Background()).Warn("cpu pinning failed",
				lg.String("worker_id", w.id),
				lg.Any("error", err),
			)
		}
	}

	for a := range w.jobs {
		logger := lg.FromContext(a.sub.ctx).With(
			lg.String("job_id", a.sub.jobID),
			lg.String("worker_id", w.id),
		)
		logger.Info("worker processing job")

		value, err := w.execute(a)
		a.fut.resolve(a.sub.jobID, value, err)

		p.metrics.IncExecuted()
		if err != nil {
			p.metrics.IncFailed()
			logger.Error("job failed", lg.Any("error", err))
		} else {
			logger.Info("worker finished job")
		}

		p.completions <- a.fut
	}
}

// execute runs the job function with panic recovery. Any failure is wrapped
// into a JobError carrying the job and worker identities.
func (w *Worker[T, R]) execute(a assignment[T, R]) (value R, err error) {
	defer func() {
		if r := recover(); r != nil {
			var zero R
			value = zero
			err = &JobError{
				JobID:    a.sub.jobID,
				WorkerID: w.id,
				Err:      fmt.Errorf("panic: %v", r),
			}
		}
	}()

	v, ferr := a.sub.fn(a.sub.payload)
	if ferr != nil {
		return value, &JobError{JobID: a.sub.jobID, WorkerID: w.id, Err: ferr}
	}
	return v, nil
}
