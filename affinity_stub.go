//go:build !linux

package dispatch

// CPU pinning is only supported on Linux.
func pinToCPU(int) error { return nil }
