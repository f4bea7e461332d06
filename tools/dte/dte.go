package dte

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/xhd2015/dte-mcp/bridge"
	"github.com/xhd2015/dte-mcp/host"
	"github.com/xhd2015/dte-mcp/host/common"
	"github.com/xhd2015/dte-mcp/log"
)

// ToolOptions contains configuration options for the breakpoint tools
type ToolOptions struct {
	// Backend names the host automation backend, see host.NewAutomation
	Backend string

	// Automation overrides Backend when set
	Automation common.Automation

	Logger log.Logger
}

// RegisterTools registers the host breakpoint tools with the MCP server
func RegisterTools(s *server.MCPServer, opts ToolOptions) (*SessionManager, error) {
	if opts.Logger == nil {
		opts.Logger = log.Discard
	}

	automation := opts.Automation
	if automation == nil {
		backend := opts.Backend
		if backend == "" {
			backend = host.DefaultBackend()
		}
		var err error
		automation, err = host.NewAutomation(backend)
		if err != nil {
			return nil, fmt.Errorf("failed to create host automation: %w", err)
		}
	}

	sessionManager := NewSessionManager(automation)

	// Register tools
	registerAttachTool(s, sessionManager, opts)
	registerReleaseTool(s, sessionManager, opts)
	registerListSessionsTool(s, sessionManager, opts)
	registerCountBreakpointsTool(s, sessionManager, opts)
	registerListBreakpointsTool(s, sessionManager, opts)
	registerGetBreakpointTool(s, sessionManager, opts)

	return sessionManager, nil
}

func logRequest(opts ToolOptions, name string, request mcp.CallToolRequest) {
	requestJson, _ := json.Marshal(request)
	opts.Logger.Infof("%s: %s", name, string(requestJson))
}

// registerAttachTool registers the attach_host tool
func registerAttachTool(s *server.MCPServer, sessionManager *SessionManager, opts ToolOptions) {
	tool := mcp.NewTool("attach_host",
		mcp.WithDescription("Attach to an already running IDE host by its program identifier. The host is never started."),
		mcp.WithString("program_id",
			mcp.Required(),
			mcp.Description("Registered program identifier, e.g. 'VisualStudio.DTE.16.0' or a Delve listen address"),
		),
	)

	s.AddTool(tool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		logRequest(opts, "attach_host", request)

		// Extract parameters
		programID, _ := request.Params.Arguments["program_id"].(string)

		session, err := sessionManager.Attach(programID)
		if err != nil {
			opts.Logger.Warnf("attach_host %q failed: %v", programID, err)
			return mcp.NewToolResultError(fmt.Sprintf("Failed to attach: %v", err)), nil
		}

		return mcp.NewToolResultText(fmt.Sprintf("Attached with session ID: %s\nProgram: %s",
			session.ID, session.ProgramID)), nil
	})
}

// registerReleaseTool registers the release_session tool
func registerReleaseTool(s *server.MCPServer, sessionManager *SessionManager, opts ToolOptions) {
	tool := mcp.NewTool("release_session",
		mcp.WithDescription("Detach from the host and forget the session"),
		mcp.WithString("session_id",
			mcp.Required(),
			mcp.Description("ID of the host session to release"),
		),
	)

	s.AddTool(tool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		logRequest(opts, "release_session", request)

		sessionID, _ := request.Params.Arguments["session_id"].(string)

		if err := sessionManager.Release(sessionID); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("Failed to release session: %v", err)), nil
		}

		return mcp.NewToolResultText(fmt.Sprintf("Session %s released", sessionID)), nil
	})
}

// registerListSessionsTool registers the list_host_sessions tool
func registerListSessionsTool(s *server.MCPServer, sessionManager *SessionManager, opts ToolOptions) {
	tool := mcp.NewTool("list_host_sessions",
		mcp.WithDescription("List attached host sessions"),
	)

	s.AddTool(tool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		logRequest(opts, "list_host_sessions", request)

		sessions := sessionManager.ListSessions()
		if len(sessions) == 0 {
			return mcp.NewToolResultText("No attached host sessions"), nil
		}

		result := "Attached host sessions:\n\n"
		for _, session := range sessions {
			result += fmt.Sprintf("ID: %s\nProgram: %s\nState: %s\n\n",
				session.ID, session.ProgramID, session.State)
		}

		return mcp.NewToolResultText(result), nil
	})
}

// registerCountBreakpointsTool registers the count_breakpoints tool
func registerCountBreakpointsTool(s *server.MCPServer, sessionManager *SessionManager, opts ToolOptions) {
	tool := mcp.NewTool("count_breakpoints",
		mcp.WithDescription("Count the breakpoints currently registered in the host"),
		mcp.WithString("session_id",
			mcp.Required(),
			mcp.Description("ID of the host session"),
		),
	)

	s.AddTool(tool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		logRequest(opts, "count_breakpoints", request)

		sessionID, _ := request.Params.Arguments["session_id"].(string)

		var count int
		err := sessionManager.WithSession(sessionID, func(session *bridge.Session) error {
			coll, n, err := bridge.Enumerate(session)
			if err != nil {
				return err
			}
			coll.Release()
			count = n
			return nil
		})
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("Failed to count breakpoints: %v", err)), nil
		}

		return mcp.NewToolResultText(fmt.Sprintf("%d breakpoints", count)), nil
	})
}

// registerListBreakpointsTool registers the list_breakpoints tool
func registerListBreakpointsTool(s *server.MCPServer, sessionManager *SessionManager, opts ToolOptions) {
	tool := mcp.NewTool("list_breakpoints",
		mcp.WithDescription("List all breakpoints of the host with file, line and enabled state"),
		mcp.WithString("session_id",
			mcp.Required(),
			mcp.Description("ID of the host session"),
		),
	)

	s.AddTool(tool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		logRequest(opts, "list_breakpoints", request)

		sessionID, _ := request.Params.Arguments["session_id"].(string)

		var result string
		err := sessionManager.WithSession(sessionID, func(session *bridge.Session) error {
			var err error
			result, err = listBreakpoints(session, opts)
			return err
		})
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("Failed to list breakpoints: %v", err)), nil
		}

		return mcp.NewToolResultText(result), nil
	})
}

// listBreakpoints formats every resolvable breakpoint. Indices that vanished
// after enumeration are reported as skipped; a later hard failure keeps the
// lines already produced.
func listBreakpoints(session *bridge.Session, opts ToolOptions) (string, error) {
	coll, count, err := bridge.Enumerate(session)
	if err != nil {
		return "", err
	}
	defer coll.Release()

	var builder strings.Builder
	builder.WriteString("Breakpoints:\n")

	if count == 0 {
		builder.WriteString("No breakpoints set.")
		return builder.String(), nil
	}

	var skipped []int
	for i := 0; i < count; i++ {
		rec, err := bridge.ResolveAt(coll, i)
		if err != nil {
			if errors.Is(err, bridge.ErrIndexOutOfRange) {
				skipped = append(skipped, i)
				continue
			}
			opts.Logger.Warnf("list_breakpoints stopped at %d: %v", i, err)
			builder.WriteString(fmt.Sprintf("Stopped at %d: %v\n", i, err))
			return builder.String(), nil
		}
		builder.WriteString(formatRecord(i, rec))
	}

	if len(skipped) > 0 {
		builder.WriteString(fmt.Sprintf("Skipped %d breakpoints removed while listing: %v\n", len(skipped), skipped))
	}
	return builder.String(), nil
}

// registerGetBreakpointTool registers the get_breakpoint tool
func registerGetBreakpointTool(s *server.MCPServer, sessionManager *SessionManager, opts ToolOptions) {
	tool := mcp.NewTool("get_breakpoint",
		mcp.WithDescription("Get one breakpoint by its zero-based index"),
		mcp.WithString("session_id",
			mcp.Required(),
			mcp.Description("ID of the host session"),
		),
		mcp.WithNumber("index",
			mcp.Required(),
			mcp.Description("Zero-based breakpoint index, below the count reported by count_breakpoints"),
		),
	)

	s.AddTool(tool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		logRequest(opts, "get_breakpoint", request)

		sessionID, _ := request.Params.Arguments["session_id"].(string)
		indexFloat, ok := request.Params.Arguments["index"].(float64)
		if !ok || indexFloat != math.Trunc(indexFloat) || indexFloat > math.MaxInt32 || indexFloat < math.MinInt32 {
			return mcp.NewToolResultError("invalid index parameter"), nil
		}
		index := int(indexFloat)

		var rec bridge.BreakpointRecord
		err := sessionManager.WithSession(sessionID, func(session *bridge.Session) error {
			coll, _, err := bridge.Enumerate(session)
			if err != nil {
				return err
			}
			defer coll.Release()

			rec, err = bridge.ResolveAt(coll, index)
			return err
		})
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("Failed to get breakpoint: %v", err)), nil
		}

		return mcp.NewToolResultText(formatRecord(index, rec)), nil
	})
}

func formatRecord(index int, rec bridge.BreakpointRecord) string {
	status := "enabled"
	if !rec.Enabled {
		status = "disabled"
	}
	if !rec.HasLocation() {
		return fmt.Sprintf("%d: <no location> (%s)\n", index, status)
	}
	return fmt.Sprintf("%d: %s:%d (%s)\n", index, rec.File, rec.Line, status)
}
