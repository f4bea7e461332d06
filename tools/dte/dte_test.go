package dte

import (
	"context"
	"encoding/json"
	"regexp"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xhd2015/dte-mcp/host/memhost"
)

const testProgramID = "VisualStudio.DTE.16.0"

type toolServer struct {
	t   *testing.T
	s   *server.MCPServer
	reg *memhost.Registry
	sm  *SessionManager
	id  int
}

func newToolServer(t *testing.T) *toolServer {
	t.Helper()

	s := server.NewMCPServer(
		"Test Server",
		"1.0.0",
	)
	reg := memhost.NewRegistry()
	sm, err := RegisterTools(s, ToolOptions{Automation: reg})
	require.NoError(t, err)

	ts := &toolServer{t: t, s: s, reg: reg, sm: sm}
	ts.send("initialize", map[string]interface{}{
		"protocolVersion": "2024-11-05",
		"clientInfo": map[string]interface{}{
			"name":    "test-client",
			"version": "1.0.0",
		},
		"capabilities": map[string]interface{}{},
	})
	return ts
}

func (ts *toolServer) send(method string, params interface{}) json.RawMessage {
	ts.t.Helper()
	ts.id++

	req := struct {
		JSONRPC string      `json:"jsonrpc"`
		ID      int         `json:"id"`
		Method  string      `json:"method"`
		Params  interface{} `json:"params,omitempty"`
	}{
		JSONRPC: mcp.JSONRPC_VERSION,
		ID:      ts.id,
		Method:  method,
		Params:  params,
	}
	reqJSON, err := json.Marshal(req)
	require.NoError(ts.t, err, "Failed to marshal request")

	resp := ts.s.HandleMessage(context.Background(), reqJSON)
	jsonResp, ok := resp.(mcp.JSONRPCResponse)
	require.True(ts.t, ok, "Unexpected response type: %T", resp)

	result, err := json.Marshal(jsonResp.Result)
	require.NoError(ts.t, err, "Failed to marshal result")
	return result
}

// call invokes a tool and returns its text and whether it reported an error
func (ts *toolServer) call(name string, args map[string]interface{}) (string, bool) {
	ts.t.Helper()
	raw := ts.send("tools/call", map[string]interface{}{
		"name":      name,
		"arguments": args,
	})

	var result struct {
		Content []struct {
			Type string `json:"type"`
			Text string `json:"text"`
		} `json:"content"`
		IsError bool `json:"isError"`
	}
	require.NoError(ts.t, json.Unmarshal(raw, &result))
	require.Len(ts.t, result.Content, 1)
	return result.Content[0].Text, result.IsError
}

var sessionIDPattern = regexp.MustCompile(`session-\d+`)

func (ts *toolServer) attach(programID string) string {
	ts.t.Helper()
	text, isErr := ts.call("attach_host", map[string]interface{}{"program_id": programID})
	require.False(ts.t, isErr, text)
	id := sessionIDPattern.FindString(text)
	require.NotEmpty(ts.t, id, text)
	return id
}

func TestToolsRegistered(t *testing.T) {
	ts := newToolServer(t)

	raw := ts.send("tools/list", nil)
	var result struct {
		Tools []struct {
			Name        string                 `json:"name"`
			InputSchema map[string]interface{} `json:"inputSchema"`
		} `json:"tools"`
	}
	require.NoError(t, json.Unmarshal(raw, &result))

	var names []string
	for _, tool := range result.Tools {
		names = append(names, tool.Name)
	}
	assert.ElementsMatch(t, []string{
		"attach_host",
		"release_session",
		"list_host_sessions",
		"count_breakpoints",
		"list_breakpoints",
		"get_breakpoint",
	}, names)

	for _, tool := range result.Tools {
		if tool.Name != "get_breakpoint" {
			continue
		}
		properties, ok := tool.InputSchema["properties"].(map[string]interface{})
		require.True(t, ok, "Failed to get properties from schema")
		index, ok := properties["index"].(map[string]interface{})
		require.True(t, ok, "index property not found in schema")
		assert.Equal(t, "number", index["type"])
	}
}

func TestListBreakpoints(t *testing.T) {
	ts := newToolServer(t)
	ts.reg.Register(testProgramID,
		memhost.Breakpoint{File: "main.c", Line: 10, Enabled: true},
		memhost.Breakpoint{File: "util.c", Line: 42, Enabled: false},
	)

	id := ts.attach(testProgramID)

	text, isErr := ts.call("count_breakpoints", map[string]interface{}{"session_id": id})
	require.False(t, isErr, text)
	assert.Equal(t, "2 breakpoints", text)

	text, isErr = ts.call("list_breakpoints", map[string]interface{}{"session_id": id})
	require.False(t, isErr, text)
	assert.Equal(t, "Breakpoints:\n0: main.c:10 (enabled)\n1: util.c:42 (disabled)\n", text)

	text, isErr = ts.call("get_breakpoint", map[string]interface{}{"session_id": id, "index": 1})
	require.False(t, isErr, text)
	assert.Equal(t, "1: util.c:42 (disabled)\n", text)

	text, isErr = ts.call("get_breakpoint", map[string]interface{}{"session_id": id, "index": 2})
	assert.True(t, isErr)
	assert.Contains(t, text, "index out of range")
}

func TestGetBreakpointRejectsFractionalIndex(t *testing.T) {
	ts := newToolServer(t)
	host := ts.reg.Register(testProgramID,
		memhost.Breakpoint{File: "main.c", Line: 10, Enabled: true},
		memhost.Breakpoint{File: "util.c", Line: 42, Enabled: false},
	)
	id := ts.attach(testProgramID)
	calls := host.Calls()

	for _, index := range []interface{}{1.5, -0.5, 1e12, "1"} {
		text, isErr := ts.call("get_breakpoint", map[string]interface{}{"session_id": id, "index": index})
		assert.True(t, isErr, "index %v", index)
		assert.Equal(t, "invalid index parameter", text, "index %v", index)
	}
	assert.Equal(t, calls, host.Calls())
}

func TestListBreakpointsEmpty(t *testing.T) {
	ts := newToolServer(t)
	ts.reg.Register(testProgramID)
	id := ts.attach(testProgramID)

	text, isErr := ts.call("list_breakpoints", map[string]interface{}{"session_id": id})
	require.False(t, isErr, text)
	assert.Equal(t, "Breakpoints:\nNo breakpoints set.", text)
}

func TestAttachUnknownHost(t *testing.T) {
	ts := newToolServer(t)

	text, isErr := ts.call("attach_host", map[string]interface{}{"program_id": "NoSuchIDE.99"})
	assert.True(t, isErr)
	assert.Contains(t, text, "not found")
	assert.Empty(t, ts.sm.ListSessions())
}

func TestDeadSessionStaysListed(t *testing.T) {
	ts := newToolServer(t)
	host := ts.reg.Register(testProgramID, memhost.Breakpoint{File: "main.c", Line: 10, Enabled: true})
	id := ts.attach(testProgramID)

	host.Terminate()

	text, isErr := ts.call("list_breakpoints", map[string]interface{}{"session_id": id})
	assert.True(t, isErr)
	assert.Contains(t, text, "session dead")

	text, isErr = ts.call("list_host_sessions", map[string]interface{}{})
	require.False(t, isErr, text)
	assert.Contains(t, text, id)
	assert.Contains(t, text, "State: dead")

	text, isErr = ts.call("release_session", map[string]interface{}{"session_id": id})
	require.False(t, isErr, text)

	text, isErr = ts.call("list_host_sessions", map[string]interface{}{})
	require.False(t, isErr, text)
	assert.Equal(t, "No attached host sessions", text)

	_, isErr = ts.call("release_session", map[string]interface{}{"session_id": id})
	assert.True(t, isErr)
}

func TestUnknownSession(t *testing.T) {
	ts := newToolServer(t)

	text, isErr := ts.call("count_breakpoints", map[string]interface{}{"session_id": "session-1"})
	assert.True(t, isErr)
	assert.Contains(t, text, "session not found: session-1")
}

func TestListBreakpointsNoLocation(t *testing.T) {
	ts := newToolServer(t)
	ts.reg.Register(testProgramID, memhost.Breakpoint{Enabled: true})
	id := ts.attach(testProgramID)

	text, isErr := ts.call("list_breakpoints", map[string]interface{}{"session_id": id})
	require.False(t, isErr, text)
	assert.Equal(t, "Breakpoints:\n0: <no location> (enabled)\n", text)
}

func TestSessionManagerReleaseAll(t *testing.T) {
	reg := memhost.NewRegistry()
	host := reg.Register(testProgramID)
	sm := NewSessionManager(reg)

	_, err := sm.Attach(testProgramID)
	require.NoError(t, err)
	_, err = sm.Attach(testProgramID)
	require.NoError(t, err)
	assert.Len(t, sm.ListSessions(), 2)
	assert.Equal(t, 2, host.OpenHandles())

	sm.ReleaseAll()
	assert.Empty(t, sm.ListSessions())
	assert.Equal(t, 0, host.OpenHandles())
}
