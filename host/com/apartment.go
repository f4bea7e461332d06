package com

import (
	"fmt"
	"runtime"
	"sync"

	"github.com/xhd2015/dte-mcp/host/common"
)

var errApartmentStopped = fmt.Errorf("COM apartment stopped: %w", common.ErrDisconnected)

// apartment runs every call for one attachment on a single OS thread.
// COM objects obtained in an apartment may only be used from it.
type apartment struct {
	calls chan func()

	mu      sync.Mutex
	stopped bool
}

// newApartment starts the thread and runs setup on it before any call.
// The teardown returned by setup runs when the apartment stops.
func newApartment(setup func() (func(), error)) (*apartment, error) {
	a := &apartment{
		calls: make(chan func()),
	}
	started := make(chan error, 1)
	go a.loop(setup, started)
	if err := <-started; err != nil {
		return nil, err
	}
	return a, nil
}

func (a *apartment) loop(setup func() (func(), error), started chan<- error) {
	// never unlocked: the thread exits together with this goroutine
	runtime.LockOSThread()

	teardown, err := setup()
	if err != nil {
		started <- err
		return
	}
	if teardown != nil {
		defer teardown()
	}

	started <- nil
	for fn := range a.calls {
		fn()
	}
}

// do runs fn on the apartment thread and waits for it.
// After stop it returns errApartmentStopped without running fn.
func (a *apartment) do(fn func() error) error {
	done := make(chan error, 1)

	a.mu.Lock()
	if a.stopped {
		a.mu.Unlock()
		return errApartmentStopped
	}
	a.calls <- func() {
		done <- fn()
	}
	a.mu.Unlock()

	return <-done
}

// stop ends the thread. Objects still held from the apartment are
// cleaned up by the COM runtime when the thread uninitializes.
func (a *apartment) stop() {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.stopped {
		return
	}
	a.stopped = true
	close(a.calls)
}
