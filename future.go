package dispatch

// Future is a resolve-once handle to an in-flight job.
//
// The worker the future was assigned to resolves it exactly once with the
// job id and either a value or an error; done is closed on resolution. The
// pool flags the owning job id ready only after the resolved future has been
// retired under the mutex, so result fields are never read while a worker
// may still write them.
type Future[R any] struct {
	jobID string
	value R
	err   error
	done  chan struct{}
}

func newFuture[R any]() *Future[R] {
	return &Future[R]{done: make(chan struct{})}
}

// resolve publishes the result. Called exactly once, by the executing worker.
func (f *Future[R]) resolve(jobID string, value R, err error) {
	f.jobID = jobID
	f.value = value
	f.err = err
	close(f.done)
}

// Done reports whether the future has resolved.
func (f *Future[R]) Done() bool {
	select {
	case <-f.done:
		return true
	default:
		return false
	}
}
