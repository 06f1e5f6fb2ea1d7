// Package dispatch provides a job-tracking worker-pool dispatcher: a fixed
// set of stateless workers executes externally supplied jobs identified by a
// caller-chosen job id, with per-job future tracking, FIFO backpressure when
// no worker is free, lazy worker eviction, and a cooperative polling protocol
// that lets many concurrent callers share the work of draining completions.
//
// # Architecture overview
//
// The dispatcher is composed of three loosely coupled pieces:
//
//  1. Workers
//     Each worker executes one job at a time and resolves the job's future
//     with either the job's value or a JobError wrapping the failure.
//     Workers are stateless between jobs and are owned by the pool for
//     their entire lifetime.
//
//  2. Bookkeeping (Pool)
//     The pool owns the idle-worker set, the pending-submission FIFO queue,
//     the future-to-task map, the per-job-id future table, and the removal
//     set. Submissions are handed to an idle worker immediately or queued
//     and served strictly first-in-first-out as workers free up.
//
//  3. Polling protocol
//     Any caller blocked in GetResult may observe a completed future first.
//     That caller retires it on behalf of whichever job id it belongs to:
//     it pops the task record, returns the worker to service (or evicts
//     it), serves the head of the pending queue, and flags the owning job
//     id ready. Callers loop until their own entry becomes ready.
//
// # Locking discipline
//
// One mutex guards the five shared structures listed above. The blocking
// wait for "some future completed" happens outside the mutex, on a buffered
// completions channel, so independent callers wait concurrently without
// serializing on the lock. The pop-and-update of bookkeeping state happens
// inside the mutex, so two callers can never double-process one completion
// or race a worker's return to idle against its eviction.
//
// Because a channel receive consumes the notification, each caller's wait
// also selects on its own entry's ready channel. A caller whose completion
// was drained by somebody else wakes immediately instead of waiting for an
// unrelated completion.
//
// # Eviction
//
// Eviction is lazy and non-preemptive. FlagWorkerForRemoval marks a worker
// id; the mark is consumed the next time that worker would return to idle
// (or the next time it is popped from the idle set), at which point the
// worker is retired and its goroutine stops. A job already in progress on a
// flagged worker always runs to completion. A submission that pops a flagged
// idle worker is not lost: the worker is evicted and the next idle worker is
// tried, or the submission stays queued.
//
// # Error handling
//
// The dispatcher distinguishes three kinds of failure:
//
//   - Job failures: a job function returned an error or panicked. They are
//     wrapped into a JobError and surface only to the caller fetching that
//     job id's result. Other jobs and other callers are unaffected.
//   - Poll timeouts: no future completed within the wait bound. Reported as
//     ErrPollTimeout unless the caller tolerates timeouts.
//   - Invariant violations: a fetched result carrying the wrong job id is a
//     bug in the dispatcher itself and panics rather than being returned.
//
// ErrNoMoreResults is a control signal, not a failure: it reports that the
// pool has no outstanding futures and terminates polling loops.
package dispatch
