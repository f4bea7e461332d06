package common

import "errors"

// Automation is the capability a host backend must provide to the bridge
type Automation interface {
	// FindRunningInstance locates an already-running host registered under programID.
	// It never starts a new host.
	FindRunningInstance(programID string) (Instance, error)
}

// Instance is a live handle to one running host
type Instance interface {
	// Breakpoints returns the host's current breakpoint collection
	Breakpoints() (Collection, error)

	// Close releases the handle. The host itself keeps running.
	Close() error
}

// Collection is the host-owned set of registered breakpoints
type Collection interface {
	// Count returns the number of breakpoints at call time
	Count() (int, error)

	// Item returns the breakpoint at the host's native ordinal, which is 1-based
	Item(ordinal int) (Breakpoint, error)

	// Release drops the handle
	Release()
}

// Breakpoint exposes the properties of a single host breakpoint
type Breakpoint interface {
	File() (string, error)
	FileLine() (int, error)
	Enabled() (bool, error)

	// Release drops the handle
	Release()
}

// Backends wrap these so the bridge can classify failures without
// knowing the interop mechanism underneath.
var (
	// ErrNotRegistered means no running instance is registered under the program id
	ErrNotRegistered = errors.New("no running instance registered")

	// ErrNoResponse means the instance exists but automation calls fail
	ErrNoResponse = errors.New("host not responding")

	// ErrDisconnected means the instance went away after it was found
	ErrDisconnected = errors.New("host disconnected")

	// ErrNoSuchItem means the ordinal does not address an element
	ErrNoSuchItem = errors.New("no such item")
)
