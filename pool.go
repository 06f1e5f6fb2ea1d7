package dispatch

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	lg "github.com/Andrej220/go-utils/zlog"
)

// JobFunc is the function executed by a worker for a given job payload.
// It returns the job's value or an error; the dispatcher does not retry.
type JobFunc[T, R any] func(T) (R, error)

// submission is one tracked job waiting for, or bound to, a worker.
type submission[T, R any] struct {
	fn      JobFunc[T, R]
	payload T
	jobID   string
	ctx     context.Context
}

// taskRecord ties an outstanding future back to the submission that
// produced it. The index orders concurrent submissions and is never
// exposed outside the pool.
type taskRecord[T, R any] struct {
	index  uint64
	worker *Worker[T, R]
	jobID  string
}

// futureEntry tracks the single outstanding future of one job id.
//
// Entry lifecycle: created on submission, flagged ready when the future is
// retired, deleted when the result is consumed. readyCh is closed together
// with setting ready, so callers can wait on it without holding the mutex.
type futureEntry[R any] struct {
	fut     *Future[R]
	ready   bool
	readyCh chan struct{}
}

// Pool dispatches tracked jobs across a fixed set of workers.
//
// One mutex guards the idle set, the pending queue, the task map, the
// future table, and the removal set. Waiting for completions happens outside
// the mutex; see the package documentation for the full protocol.
type Pool[T, R any] struct {
	opts    Options
	metrics MetricsPolicy

	mu            sync.Mutex
	idle          []*Worker[T, R]
	workers       []*Worker[T, R]
	pending       *fifoQueue[submission[T, R]]
	tasks         map[*Future[R]]taskRecord[T, R]
	table         map[string]*futureEntry[R]
	removal       map[string]struct{}
	nextTaskIndex uint64

	completions chan *Future[R]
	closed      chan struct{}
	stopOnce    sync.Once
	wg          sync.WaitGroup
}

// New creates a pool from a fixed ordered collection of worker handles and
// starts their run loops. The pool owns the workers for their entire
// lifetime; eviction removes a worker from circulation, it never replaces
// it.
func New[T, R any](workers []*Worker[T, R], opts Options) (*Pool[T, R], error) {
	if len(workers) == 0 {
		return nil, ErrNoWorkers
	}
	opts.FillDefaults()

	p := &Pool[T, R]{
		opts:        opts,
		metrics:     opts.Metrics,
		idle:        make([]*Worker[T, R], len(workers)),
		workers:     make([]*Worker[T, R], len(workers)),
		pending:     newFifoQueue[submission[T, R]](opts.PendingCapacity),
		tasks:       make(map[*Future[R]]taskRecord[T, R]),
		table:       make(map[string]*futureEntry[R]),
		removal:     make(map[string]struct{}),
		completions: make(chan *Future[R], len(workers)),
		closed:      make(chan struct{}),
	}
	copy(p.idle, workers)
	copy(p.workers, workers)

	for i, w := range p.workers {
		p.wg.Add(1)
		go w.run(p, i)
	}
	return p, nil
}

// Submit tracks a job under jobID and hands it to an idle worker, or queues
// it FIFO when every worker is busy. The ctx is used for logging only;
// eviction and shutdown are non-preemptive.
//
// A job id may be resubmitted only after its previous result was consumed;
// violating that returns ErrDuplicateJob.
func (p *Pool[T, R]) Submit(ctx context.Context, fn JobFunc[T, R], payload T, jobID string) error {
	if fn == nil {
		return ErrNilFunc
	}
	if ctx == nil {
		ctx = context.Background()
	}

	p.mu.Lock()
	// checked under the mutex: Shutdown stops the workers while holding it,
	// so a submission that passes here is assigned before any jobs channel
	// can close
	if p.isClosed() {
		p.mu.Unlock()
		return ErrPoolClosed
	}
	if e, ok := p.table[jobID]; ok && (e.fut != nil || e.ready) {
		p.mu.Unlock()
		return fmt.Errorf("%w: %q", ErrDuplicateJob, jobID)
	}
	p.table[jobID] = &futureEntry[R]{readyCh: make(chan struct{})}

	sub := submission[T, R]{fn: fn, payload: payload, jobID: jobID, ctx: ctx}
	queued := false
	if !p.dispatchLocked(sub) {
		p.pending.Push(sub)
		p.metrics.IncQueued()
		queued = true
	}
	depth := p.pending.Len()
	p.mu.Unlock()

	p.metrics.IncSubmitted()
	lg.FromContext(ctx).Info("job submitted",
		lg.String("job_id", jobID),
		lg.Any("queued", queued),
		lg.Int("pending", depth),
	)
	return nil
}

// dispatchLocked hands sub to an idle worker: it creates the future, records
// (taskIndex, worker, jobID) against it, and attaches the future to the job
// id's entry. Returns false when no idle worker survives eviction; the
// caller keeps the submission queued.
func (p *Pool[T, R]) dispatchLocked(sub submission[T, R]) bool {
	w := p.popIdleLocked()
	if w == nil {
		return false
	}

	fut := newFuture[R]()
	p.tasks[fut] = taskRecord[T, R]{index: p.nextTaskIndex, worker: w, jobID: sub.jobID}
	p.nextTaskIndex++
	p.table[sub.jobID].fut = fut

	w.assign(sub, fut)
	return true
}

// popIdleLocked pops idle workers until one survives the removal check.
// Flagged workers are evicted on the spot, so a submission is never lost to
// a stale worker.
func (p *Pool[T, R]) popIdleLocked() *Worker[T, R] {
	for len(p.idle) > 0 {
		n := len(p.idle) - 1
		w := p.idle[n]
		p.idle[n] = nil
		p.idle = p.idle[:n]

		if !p.shouldRetireLocked(w) {
			return w
		}
		p.evictLocked(w)
	}
	return nil
}

// shouldRetireLocked consumes the worker's removal-set membership, if any.
func (p *Pool[T, R]) shouldRetireLocked(w *Worker[T, R]) bool {
	if _, ok := p.removal[w.id]; ok {
		delete(p.removal, w.id)
		return true
	}
	return false
}

func (p *Pool[T, R]) evictLocked(w *Worker[T, R]) {
	w.stop()
	p.metrics.IncEvicted()
	lg.FromContext(context.Background()).Info("worker evicted",
		lg.String("worker_id", w.id))
}

// FlagWorkerForRemoval marks a worker for lazy eviction. The mark takes
// effect the next time the worker would return to idle; a job already in
// progress is never interrupted. Idempotent, never fails.
func (p *Pool[T, R]) FlagWorkerForRemoval(workerID string) {
	p.mu.Lock()
	p.removal[workerID] = struct{}{}
	p.mu.Unlock()

	lg.FromContext(context.Background()).Info("worker flagged for removal",
		lg.String("worker_id", workerID))
}

// retire consumes one completed future: it pops the task record, returns the
// worker to service (or evicts it), serves the head of the pending queue,
// and flags the owning job id ready. All under the mutex, so two callers can
// never double-process one completion.
func (p *Pool[T, R]) retire(fut *Future[R]) {
	p.mu.Lock()
	defer p.mu.Unlock()

	rec, ok := p.tasks[fut]
	if !ok {
		return
	}
	delete(p.tasks, fut)

	if p.shouldRetireLocked(rec.worker) {
		p.evictLocked(rec.worker)
	} else if p.isClosed() {
		// shutdown already stopped the workers; no recycling
	} else {
		p.idle = append(p.idle, rec.worker)
		p.servePendingLocked()
	}

	p.flagReadyLocked(rec.jobID)
}

// servePendingLocked dispatches the head of the pending queue. Pending
// submissions are served strictly FIFO, before a freed worker is offered to
// any other caller.
func (p *Pool[T, R]) servePendingLocked() {
	sub, ok := p.pending.Pop()
	if !ok {
		return
	}
	if !p.dispatchLocked(sub) {
		// every idle worker was consumed by eviction; keep FIFO order
		p.pending.PushFront(sub)
		return
	}
	p.metrics.DecQueued()
}

func (p *Pool[T, R]) flagReadyLocked(jobID string) {
	e, ok := p.table[jobID]
	if !ok || e.ready {
		return
	}
	e.ready = true
	close(e.readyCh)
}

// isReady reports whether jobID's result can be fetched. Unknown job ids,
// never submitted or already consumed, report false.
func (p *Pool[T, R]) isReady(jobID string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	e, ok := p.table[jobID]
	return ok && e.ready
}

// DrainOne waits up to timeout for one outstanding future to complete and
// retires it on behalf of whichever job id it belongs to. A non-positive
// timeout waits indefinitely.
//
// Returns ErrNoMoreResults when the pool has no outstanding futures, and
// ErrPollTimeout when nothing completed within the bound, unless
// tolerateTimeout is set, in which case an expired wait is a no-op nil
// return.
func (p *Pool[T, R]) DrainOne(timeout time.Duration, tolerateTimeout bool) error {
	return p.drainOne(timeout, tolerateTimeout, nil)
}

// drainOne is DrainOne with an optional ready channel: a caller waiting for
// its own job id also wakes when somebody else retires that id's completion,
// since a channel receive, unlike the bookkeeping, is consuming.
func (p *Pool[T, R]) drainOne(timeout time.Duration, tolerate bool, ready <-chan struct{}) error {
	p.mu.Lock()
	outstanding := len(p.tasks)
	p.mu.Unlock()
	if outstanding == 0 {
		return ErrNoMoreResults
	}

	if timeout <= 0 {
		select {
		case fut := <-p.completions:
			p.retire(fut)
		case <-ready:
		}
		return nil
	}

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case fut := <-p.completions:
		p.retire(fut)
		return nil
	case <-ready:
		return nil
	case <-timer.C:
		if tolerate {
			return nil
		}
		return ErrPollTimeout
	}
}

// GetResult blocks until the result for jobID is available and returns it.
// timeout bounds each individual wait for "some future completed", not the
// aggregate call.
//
// This is the cooperative half of the protocol: while it waits, the caller
// may retire completions belonging to other job ids, and it keeps polling
// until its own entry is flagged ready or the pool runs out of outstanding
// futures. A JobError is returned when the job's function failed; the pool
// itself stays fully usable.
func (p *Pool[T, R]) GetResult(jobID string, timeout time.Duration) (R, error) {
	var zero R
	for {
		p.mu.Lock()
		e, ok := p.table[jobID]
		if !ok {
			p.mu.Unlock()
			return zero, fmt.Errorf("%w: %q", ErrNoResult, jobID)
		}
		ready := e.ready
		readyCh := e.readyCh
		outstanding := len(p.tasks)
		p.mu.Unlock()

		if ready || outstanding == 0 {
			break
		}
		if err := p.drainOne(timeout, false, readyCh); err != nil {
			if errors.Is(err, ErrNoMoreResults) {
				break
			}
			return zero, err
		}
	}
	return p.fetchResult(jobID)
}

// fetchResult consumes the resolved future for jobID and deletes the entry,
// making a fresh submission for the id possible. The ready flag is flipped
// only after the future resolved, so the fields are read without further
// synchronization.
//
// A resolved future carrying a different job id is an internal-invariant
// violation and panics.
func (p *Pool[T, R]) fetchResult(jobID string) (R, error) {
	var zero R

	p.mu.Lock()
	e, ok := p.table[jobID]
	if !ok || e.fut == nil || !e.ready {
		p.mu.Unlock()
		return zero, fmt.Errorf("%w: %q", ErrNoResult, jobID)
	}
	fut := e.fut
	delete(p.table, jobID)
	p.mu.Unlock()

	if fut.jobID != jobID {
		panic(fmt.Sprintf("dispatch: result identity violation: fetched job %q, future resolved for job %q",
			jobID, fut.jobID))
	}
	if fut.err != nil {
		return zero, fut.err
	}
	return fut.value, nil
}

// Shutdown stops accepting submissions, ends every worker's run loop once
// its in-flight job finishes, and waits for the workers bounded by ctx.
// Results of jobs that completed remain retrievable via GetResult; pending
// submissions that never reached a worker are dropped.
func (p *Pool[T, R]) Shutdown(ctx context.Context) error {
	p.stopOnce.Do(func() {
		close(p.closed)
		p.mu.Lock()
		for _, w := range p.workers {
			w.stop()
		}
		p.mu.Unlock()
	})

	done := make(chan struct{})
	go func() {
		defer close(done)
		p.wg.Wait()
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Stop is a blocking Shutdown without a deadline.
func (p *Pool[T, R]) Stop() { _ = p.Shutdown(context.Background()) }

func (p *Pool[T, R]) isClosed() bool {
	select {
	case <-p.closed:
		return true
	default:
		return false
	}
}

// IdleWorkers returns the number of workers currently eligible for a job.
func (p *Pool[T, R]) IdleWorkers() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.idle)
}

// PendingJobs returns the number of submissions waiting for a free worker.
func (p *Pool[T, R]) PendingJobs() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.pending.Len()
}

// OutstandingFutures returns the number of futures not yet retired.
func (p *Pool[T, R]) OutstandingFutures() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.tasks)
}
