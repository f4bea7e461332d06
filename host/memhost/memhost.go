// Package memhost is an in-process host backend. Each Host simulates one
// running IDE instance registered under a program id, with a mutable
// breakpoint list and switches for going unresponsive or terminating.
package memhost

import (
	"fmt"
	"sync"

	"github.com/xhd2015/dte-mcp/host/common"
)

// Breakpoint is the state the simulated host keeps per breakpoint
type Breakpoint struct {
	File    string
	Line    int
	Enabled bool
}

// Registry maps program ids to running hosts
type Registry struct {
	mu    sync.Mutex
	hosts map[string]*Host
}

var _ common.Automation = (*Registry)(nil)

// NewRegistry creates an empty registry
func NewRegistry() *Registry {
	return &Registry{
		hosts: make(map[string]*Host),
	}
}

// Register starts a simulated host under programID, replacing any previous one
func (r *Registry) Register(programID string, breakpoints ...Breakpoint) *Host {
	h := &Host{
		registry:    r,
		programID:   programID,
		breakpoints: append([]Breakpoint(nil), breakpoints...),
		running:     true,
	}
	r.mu.Lock()
	r.hosts[programID] = h
	r.mu.Unlock()
	return h
}

// FindRunningInstance returns a handle to the host registered under programID
func (r *Registry) FindRunningInstance(programID string) (common.Instance, error) {
	r.mu.Lock()
	h, ok := r.hosts[programID]
	r.mu.Unlock()
	if !ok {
		return nil, fmt.Errorf("%s: %w", programID, common.ErrNotRegistered)
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if h.busy {
		return nil, fmt.Errorf("%s: %w", programID, common.ErrNoResponse)
	}
	h.handles++
	return &instance{host: h}, nil
}

// Host is one simulated running instance
type Host struct {
	registry  *Registry
	programID string

	mu          sync.Mutex
	breakpoints []Breakpoint
	running     bool
	busy        bool
	handles     int
	collections int
	late        int
	calls       int
}

// SetBreakpoints replaces the host's breakpoint list
func (h *Host) SetBreakpoints(breakpoints ...Breakpoint) {
	h.mu.Lock()
	h.breakpoints = append([]Breakpoint(nil), breakpoints...)
	h.mu.Unlock()
}

// Add appends a breakpoint
func (h *Host) Add(bp Breakpoint) {
	h.mu.Lock()
	h.breakpoints = append(h.breakpoints, bp)
	h.mu.Unlock()
}

// RemoveAt deletes the breakpoint at the zero-based position
func (h *Host) RemoveAt(i int) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if i < 0 || i >= len(h.breakpoints) {
		return
	}
	h.breakpoints = append(h.breakpoints[:i], h.breakpoints[i+1:]...)
}

// SetBusy makes automation calls fail as if the host stopped answering
func (h *Host) SetBusy(busy bool) {
	h.mu.Lock()
	h.busy = busy
	h.mu.Unlock()
}

// Terminate simulates the host process exiting. Existing handles see
// ErrDisconnected on their next call.
func (h *Host) Terminate() {
	h.registry.mu.Lock()
	if h.registry.hosts[h.programID] == h {
		delete(h.registry.hosts, h.programID)
	}
	h.registry.mu.Unlock()

	h.mu.Lock()
	h.running = false
	h.mu.Unlock()
}

// OpenHandles returns the number of instance handles not yet closed
func (h *Host) OpenHandles() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.handles
}

// OpenCollections returns the number of collection handles not yet released
func (h *Host) OpenCollections() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.collections
}

// LateReleases counts collections released after their instance was closed.
// A real host has already torn those objects down by then.
func (h *Host) LateReleases() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.late
}

// Calls returns the number of automation calls served, attach excluded
func (h *Host) Calls() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.calls
}

// call checks liveness and counts one round trip. Caller must hold h.mu.
func (h *Host) call() error {
	if !h.running {
		return fmt.Errorf("%s: %w", h.programID, common.ErrDisconnected)
	}
	if h.busy {
		return fmt.Errorf("%s: %w", h.programID, common.ErrNoResponse)
	}
	h.calls++
	return nil
}

type instance struct {
	host   *Host
	closed bool
}

func (i *instance) Breakpoints() (common.Collection, error) {
	h := i.host
	h.mu.Lock()
	defer h.mu.Unlock()
	if i.closed {
		return nil, fmt.Errorf("instance closed: %w", common.ErrDisconnected)
	}
	if err := h.call(); err != nil {
		return nil, err
	}
	h.collections++
	return &collection{host: h, instance: i}, nil
}

func (i *instance) Close() error {
	i.host.mu.Lock()
	defer i.host.mu.Unlock()
	if i.closed {
		return nil
	}
	i.closed = true
	i.host.handles--
	return nil
}

// collection reads through to the live host state on every call
type collection struct {
	host     *Host
	instance *instance
	released bool
}

func (c *collection) Count() (int, error) {
	h := c.host
	h.mu.Lock()
	defer h.mu.Unlock()
	if err := h.call(); err != nil {
		return 0, err
	}
	return len(h.breakpoints), nil
}

func (c *collection) Item(ordinal int) (common.Breakpoint, error) {
	h := c.host
	h.mu.Lock()
	defer h.mu.Unlock()
	if err := h.call(); err != nil {
		return nil, err
	}
	if ordinal < 1 || ordinal > len(h.breakpoints) {
		return nil, fmt.Errorf("ordinal %d of %d: %w", ordinal, len(h.breakpoints), common.ErrNoSuchItem)
	}
	return &breakpoint{host: h, bp: h.breakpoints[ordinal-1]}, nil
}

func (c *collection) Release() {
	h := c.host
	h.mu.Lock()
	defer h.mu.Unlock()
	if c.released {
		return
	}
	c.released = true
	h.collections--
	if c.instance.closed {
		h.late++
	}
}

// breakpoint holds the values read by Item; property reads still
// require the host to be running.
type breakpoint struct {
	host *Host
	bp   Breakpoint
}

func (b *breakpoint) check() error {
	b.host.mu.Lock()
	defer b.host.mu.Unlock()
	return b.host.call()
}

func (b *breakpoint) File() (string, error) {
	if err := b.check(); err != nil {
		return "", err
	}
	return b.bp.File, nil
}

func (b *breakpoint) FileLine() (int, error) {
	if err := b.check(); err != nil {
		return 0, err
	}
	return b.bp.Line, nil
}

func (b *breakpoint) Enabled() (bool, error) {
	if err := b.check(); err != nil {
		return false, err
	}
	return b.bp.Enabled, nil
}

func (b *breakpoint) Release() {}
