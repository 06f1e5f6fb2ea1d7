package dispatch

// Options configure a dispatcher Pool.
//
// All zero values are replaced with sensible defaults in FillDefaults.
type Options struct {
	// Metrics receives pool activity hooks. Defaults to NoopMetrics.
	Metrics MetricsPolicy

	// PendingCapacity is the initial capacity of the pending-submission
	// queue. The queue grows when more submissions back up.
	PendingCapacity int

	// PinWorkers locks each worker goroutine to an OS thread and pins it
	// to a CPU core. Linux only; a no-op elsewhere.
	PinWorkers bool
}

func (o *Options) FillDefaults() {
	if o.Metrics == nil {
		o.Metrics = &NoopMetrics{}
	}
	if o.PendingCapacity <= 0 {
		o.PendingCapacity = defaultPendingCapacity
	}
}
