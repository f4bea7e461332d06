// Package headless reads breakpoints from a running Delve headless server.
//
// The program id is the server's listen address, optionally prefixed with
// "dlv://". The server must have been started with --accept-multiclient for
// more than one session to attach, e.g.
//
//	dlv debug --headless --api-version=2 --accept-multiclient --listen=127.0.0.1:54321
package headless

import (
	"context"
	"fmt"
	"net"
	"sort"
	"strings"
	"time"

	"github.com/go-delve/delve/service/api"
	"github.com/go-delve/delve/service/rpc2"
	"github.com/xhd2015/dte-mcp/host/common"
)

// DefaultAddr is the listen address used when none is configured
const DefaultAddr = "127.0.0.1:54321"

const defaultDialTimeout = 10 * time.Second

// Automation attaches to Delve headless servers
type Automation struct {
	// DialTimeout bounds the attach; zero means 10 seconds
	DialTimeout time.Duration
}

var _ common.Automation = (*Automation)(nil)

// NewAutomation creates a headless automation backend
func NewAutomation() *Automation {
	return &Automation{}
}

// FindRunningInstance connects to the Delve server listening at programID
func (a *Automation) FindRunningInstance(programID string) (common.Instance, error) {
	addr := strings.TrimPrefix(programID, "dlv://")
	if _, _, err := net.SplitHostPort(addr); err != nil {
		return nil, fmt.Errorf("invalid address %q: %v: %w", programID, err, common.ErrNotRegistered)
	}

	timeout := a.DialTimeout
	if timeout <= 0 {
		timeout = defaultDialTimeout
	}

	client := NewClient()
	if err := client.Connect(context.Background(), addr, timeout); err != nil {
		return nil, err
	}

	// Something listening is not enough, it has to answer Delve RPCs
	if _, err := SendHeadlessClientRequest[api.GetVersionOut](client, RPCGetVersion, api.GetVersionIn{}); err != nil {
		client.Close()
		return nil, fmt.Errorf("%s did not answer GetVersion: %v: %w", addr, err, common.ErrNoResponse)
	}

	return &instance{client: client}, nil
}

type instance struct {
	client *Client
}

func (i *instance) Breakpoints() (common.Collection, error) {
	if i.client.IsClosed() {
		return nil, fmt.Errorf("client is closed: %w", common.ErrDisconnected)
	}
	return &collection{client: i.client}, nil
}

// Close drops the connection without sending Detach, which would end the
// debug session for every client.
func (i *instance) Close() error {
	return i.client.Close()
}

// collection asks Delve for the list on every call
type collection struct {
	client *Client
}

// userBreakpoints lists breakpoints set by users, ordered by ID.
// Delve's internal breakpoints (unrecovered panic, fatal throw) carry
// negative IDs and are left out.
func (c *collection) userBreakpoints() ([]*api.Breakpoint, error) {
	out, err := SendHeadlessClientRequest[rpc2.ListBreakpointsOut](c.client, RPCListBreakpoints, rpc2.ListBreakpointsIn{})
	if err != nil {
		return nil, fmt.Errorf("failed to list breakpoints: %w", err)
	}

	bps := make([]*api.Breakpoint, 0, len(out.Breakpoints))
	for _, bp := range out.Breakpoints {
		if bp == nil || bp.ID <= 0 {
			continue
		}
		bps = append(bps, bp)
	}
	sort.Slice(bps, func(i, j int) bool {
		return bps[i].ID < bps[j].ID
	})
	return bps, nil
}

func (c *collection) Count() (int, error) {
	bps, err := c.userBreakpoints()
	if err != nil {
		return 0, err
	}
	return len(bps), nil
}

func (c *collection) Item(ordinal int) (common.Breakpoint, error) {
	bps, err := c.userBreakpoints()
	if err != nil {
		return nil, err
	}
	if ordinal < 1 || ordinal > len(bps) {
		return nil, fmt.Errorf("ordinal %d of %d: %w", ordinal, len(bps), common.ErrNoSuchItem)
	}
	return breakpoint{bp: bps[ordinal-1]}, nil
}

func (c *collection) Release() {}

// breakpoint is already fully read; the getters make no further calls
type breakpoint struct {
	bp *api.Breakpoint
}

func (b breakpoint) File() (string, error) {
	return b.bp.File, nil
}

func (b breakpoint) FileLine() (int, error) {
	return b.bp.Line, nil
}

func (b breakpoint) Enabled() (bool, error) {
	return !b.bp.Disabled, nil
}

func (b breakpoint) Release() {}
