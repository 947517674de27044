//go:build linux

package util

import (
	"fmt"
	"runtime"

	"golang.org/x/sys/unix"
)

// PinTo locks the calling goroutine to its OS thread and restricts that thread
// to the given CPUs. The returned func undoes the thread lock; the affinity
// stays with the thread.
func PinTo(cpus ...int) (func(), error) {
	runtime.LockOSThread()

	set := &unix.CPUSet{}
	for _, cpu := range cpus {
		set.Set(cpu)
	}

	err := unix.SchedSetaffinity(0, set)
	if err != nil {
		runtime.UnlockOSThread()
		return nil, err
	}

	verify := &unix.CPUSet{}
	err = unix.SchedGetaffinity(0, verify)
	if err != nil {
		runtime.UnlockOSThread()
		return nil, err
	}

	if verify.Count() != len(cpus) {
		runtime.UnlockOSThread()
		return nil, fmt.Errorf("could not pin to CPUs %v", cpus)
	}
	for _, cpu := range cpus {
		if !verify.IsSet(cpu) {
			runtime.UnlockOSThread()
			return nil, fmt.Errorf("could not pin to CPUs %v", cpus)
		}
	}

	return runtime.UnlockOSThread, nil
}
