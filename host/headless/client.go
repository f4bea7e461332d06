package headless

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/xhd2015/dte-mcp/host/common"
)

// Simplified request structure for JSON-RPC
type jsonRPCRequest struct {
	Method string        `json:"method"`
	Params []interface{} `json:"params"`
	Id     int           `json:"id"`
}

// Simplified response structure for JSON-RPC.
// Delve uses net/rpc/jsonrpc, where error is a plain string or null.
type jsonRPCResponse struct {
	Result json.RawMessage `json:"result"`
	Error  interface{}     `json:"error"`
	Id     int             `json:"id"`
}

// Client talks to a Delve headless server over one connection
type Client struct {
	conn     net.Conn
	reader   *bufio.Reader
	seq      int
	isClosed bool
	addr     string
	mutex    sync.Mutex
}

// NewClient creates a new headless client
func NewClient() *Client {
	return &Client{
		seq: 1,
	}
}

// Connect connects to a headless server
func (c *Client) Connect(ctx context.Context, addr string, timeout time.Duration) error {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	c.addr = addr

	var d net.Dialer
	timeoutCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	conn, err := d.DialContext(timeoutCtx, "tcp", addr)
	if err != nil {
		var netErr net.Error
		if errors.As(err, &netErr) && netErr.Timeout() {
			return fmt.Errorf("failed to connect to headless server %s: %v: %w", addr, err, common.ErrNoResponse)
		}
		return fmt.Errorf("failed to connect to headless server %s: %v: %w", addr, err, common.ErrNotRegistered)
	}

	c.conn = conn
	c.reader = bufio.NewReader(conn)
	c.isClosed = false
	return nil
}

// Close closes the connection. The Delve server keeps running.
func (c *Client) Close() error {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	c.isClosed = true
	if c.conn != nil {
		return c.conn.Close()
	}
	return nil
}

// IsClosed returns whether the client is closed
func (c *Client) IsClosed() bool {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	return c.isClosed
}

// SendHeadlessClientRequest sends one request and decodes its result into T.
// Connection failures are reported as common.ErrDisconnected; no reconnect
// is attempted.
func SendHeadlessClientRequest[T any](c *Client, method RPCMethod, params interface{}) (T, error) {
	var result T

	c.mutex.Lock()
	defer c.mutex.Unlock()

	if c.isClosed || c.conn == nil {
		return result, fmt.Errorf("client is closed: %w", common.ErrDisconnected)
	}

	seqNum := c.seq
	c.seq++

	req := jsonRPCRequest{
		Method: string(method),
		Params: []interface{}{params},
		Id:     seqNum,
	}

	requestBytes, err := json.Marshal(req)
	if err != nil {
		return result, fmt.Errorf("failed to marshal request: %w", err)
	}
	requestBytes = append(requestBytes, '\n')

	if _, err := c.conn.Write(requestBytes); err != nil {
		c.markBrokenLocked()
		return result, fmt.Errorf("failed to send request %s: %v: %w", method, err, common.ErrDisconnected)
	}

	line, err := c.reader.ReadString('\n')
	if err != nil {
		c.markBrokenLocked()
		return result, fmt.Errorf("failed to read response to %s: %v: %w", method, err, common.ErrDisconnected)
	}

	// a reply that cannot be matched to this request leaves the stream
	// out of step, so the connection is not reused
	var resp jsonRPCResponse
	if err := json.Unmarshal([]byte(line), &resp); err != nil {
		c.markBrokenLocked()
		return result, fmt.Errorf("failed to parse response: %v: %w", err, common.ErrDisconnected)
	}

	if resp.Id != seqNum {
		c.markBrokenLocked()
		return result, fmt.Errorf("response ID %d does not match request ID %d: %w", resp.Id, seqNum, common.ErrDisconnected)
	}

	if resp.Error != nil {
		return result, fmt.Errorf("error from Delve: %v", resp.Error)
	}

	if err := json.Unmarshal(resp.Result, &result); err != nil {
		return result, fmt.Errorf("failed to unmarshal result: %w", err)
	}

	return result, nil
}

// markBrokenLocked closes a connection that failed mid-call.
// Caller must hold the mutex lock.
func (c *Client) markBrokenLocked() {
	c.isClosed = true
	if c.conn != nil {
		c.conn.Close()
	}
}
