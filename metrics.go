package dispatch

import (
	"sync/atomic"
)

// MetricsPolicy defines hooks used by the dispatcher to report submission,
// execution, queueing and eviction activity.
//
// Implementations must be safe for concurrent use.
// All methods are expected to be lightweight and non-blocking.
type MetricsPolicy interface {

	// IncSubmitted increments the tracked-submission counter.
	IncSubmitted()

	// IncExecuted increments the executed jobs counter.
	IncExecuted()

	// IncFailed increments the failed jobs counter.
	//
	// Failed jobs are also counted as executed.
	IncFailed()

	// IncQueued increments the pending-queue depth.
	IncQueued()

	// DecQueued decrements the pending-queue depth when a queued
	// submission is handed to a worker.
	DecQueued()

	// IncEvicted increments the evicted-worker counter.
	IncEvicted()
}

// AtomicMetrics is a lock-free metrics implementation backed by atomics.
//
// Writes are optimized for hot paths.
// Reads are intended for cold-path observation.
type AtomicMetrics struct {
	// executed is the total number of jobs processed.
	executed atomic.Uint64

	_ [56]byte // padding to avoid false sharing

	// queued is the current number of submissions waiting for a worker.
	queued atomic.Int64

	submitted atomic.Uint64
	failed    atomic.Uint64
	evicted   atomic.Uint64
}

// Submitted returns the total number of tracked submissions.
func (m *AtomicMetrics) Submitted() uint64 {
	return m.submitted.Load()
}

// Executed returns the total number of executed jobs.
// Intended for cold-path observation.
func (m *AtomicMetrics) Executed() uint64 {
	return m.executed.Load()
}

// Failed returns the total number of jobs that resolved with a failure.
func (m *AtomicMetrics) Failed() uint64 {
	return m.failed.Load()
}

// Queued returns the current number of queued submissions.
// Intended for cold-path observation.
func (m *AtomicMetrics) Queued() int64 {
	return m.queued.Load()
}

// Evicted returns the total number of workers removed from service.
func (m *AtomicMetrics) Evicted() uint64 {
	return m.evicted.Load()
}

// IncSubmitted increments the tracked-submission counter by one.
func (m *AtomicMetrics) IncSubmitted() {
	m.submitted.Add(1)
}

// IncExecuted increments the executed jobs counter by one.
func (m *AtomicMetrics) IncExecuted() {
	m.executed.Add(1)
}

// IncFailed increments the failed jobs counter by one.
func (m *AtomicMetrics) IncFailed() {
	m.failed.Add(1)
}

// IncQueued increments the pending-queue depth by one.
func (m *AtomicMetrics) IncQueued() {
	m.queued.Add(1)
}

// DecQueued decrements the pending-queue depth by one.
func (m *AtomicMetrics) DecQueued() {
	m.queued.Add(-1)
}

// IncEvicted increments the evicted-worker counter by one.
func (m *AtomicMetrics) IncEvicted() {
	m.evicted.Add(1)
}

//------------- NoopMetrics ----------------------------------

// NoopMetrics is a MetricsPolicy implementation that discards
// all metric updates.
//
// It can be used when metrics collection is disabled and
// zero overhead is desired.
type NoopMetrics struct{}

func (m *NoopMetrics) IncSubmitted() {}
func (m *NoopMetrics) IncExecuted()  {}
func (m *NoopMetrics) IncFailed()    {}
func (m *NoopMetrics) IncQueued()    {}
func (m *NoopMetrics) DecQueued()    {}
func (m *NoopMetrics) IncEvicted()   {}
