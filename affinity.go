//go:build linux

package dispatch

import (
	"golang.org/x/sys/unix"
)

// pinToCPU restricts the calling thread to a single CPU core.
func pinToCPU(cpu int) error {
	var mask unix.CPUSet
	mask.Zero()
	mask.Set(cpu)
	return unix.SchedSetaffinity(0, &mask)
}
