package dispatch

import (
	"errors"
	"fmt"
)

var (
	// ErrPoolClosed is returned by Submit after the pool has been shut down.
	ErrPoolClosed = errors.New("dispatch: pool closed")

	// ErrNilFunc is returned when a submission carries a nil job function.
	ErrNilFunc = errors.New("dispatch: job func is nil")

	// ErrNoWorkers is returned when a pool is constructed without workers.
	ErrNoWorkers = errors.New("dispatch: pool needs at least one worker")

	// ErrDuplicateJob is returned when a job id is submitted again before
	// the result of its previous submission was consumed. At most one
	// outstanding future per job id may exist at any time.
	ErrDuplicateJob = errors.New("dispatch: job id already outstanding")

	// ErrPollTimeout is returned when no outstanding future completed
	// within the wait bound and timeouts are not tolerated.
	ErrPollTimeout = errors.New("dispatch: timed out waiting for a completion")

	// ErrNoMoreResults is the control signal reporting that the pool has no
	// outstanding futures to wait on. It terminates polling loops and is
	// not a failure.
	ErrNoMoreResults = errors.New("dispatch: no more results to get")

	// ErrNoResult is returned when a result is fetched for a job id that
	// has no resolved future: the id was never submitted, its result was
	// already consumed, or the pool ran out of work before the id's entry
	// became ready.
	ErrNoResult = errors.New("dispatch: no result for job id")
)

// JobError wraps a failure raised by a job function, carrying the job id and
// the identity of the worker that executed it. It surfaces only to the
// caller fetching that job id's result; other jobs and callers are
// unaffected.
type JobError struct {
	JobID    string
	WorkerID string
	Err      error
}

func (e *JobError) Error() string {
	return fmt.Sprintf("dispatch: job %q failed on worker %s: %v", e.JobID, e.WorkerID, e.Err)
}

// Unwrap returns the original failure, for use with errors.Is and errors.As.
func (e *JobError) Unwrap() error { return e.Err }
