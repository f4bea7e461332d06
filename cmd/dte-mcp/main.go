package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/mark3labs/mcp-go/server"
	"github.com/xhd2015/dte-mcp/bridge"
	"github.com/xhd2015/dte-mcp/host"
	"github.com/xhd2015/dte-mcp/host/common"
	"github.com/xhd2015/dte-mcp/tools/dte"
)

// install: go install ./cmd/dte-mcp
const help = `
dte-mcp reads breakpoints from a running IDE

Usage: dte-mcp <cmd> [OPTIONS]

Available commands:
  serve                              run the MCP server on stdio (default)
  list                               print the host's breakpoints as "File Line Enabled"
  help                               show help message

Options:
  --backend <backend>                Host backend: 'com' (default on windows), 'headless' (default elsewhere) or 'mem'
                                     Also read from DTE_MCP_BACKEND
  --program <program_id>             Program identifier for list (default: VisualStudio.DTE.16.0 for com,
                                     127.0.0.1:54321 for headless)
  --help   show help message
`

func main() {
	if err := handle(os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func handle(args []string) error {
	cmd := "serve"
	if len(args) > 0 && !strings.HasPrefix(args[0], "-") {
		cmd = args[0]
		args = args[1:]
	}
	if cmd == "help" {
		fmt.Println(strings.TrimSpace(help))
		return nil
	}

	backend := os.Getenv("DTE_MCP_BACKEND")
	var programID string
	n := len(args)
	for i := 0; i < n; i++ {
		arg := args[i]
		switch arg {
		case "--backend":
			if i+1 >= n {
				return fmt.Errorf("%s requires arg", arg)
			}
			backend = args[i+1]
			i++
		case "--program":
			if i+1 >= n {
				return fmt.Errorf("%s requires arg", arg)
			}
			programID = args[i+1]
			i++
		case "-h", "--help":
			fmt.Println(strings.TrimSpace(help))
			return nil
		default:
			return fmt.Errorf("unrecognized arg: %s", arg)
		}
	}

	if backend == "" {
		backend = host.DefaultBackend()
	}
	if programID == "" {
		programID = host.DefaultProgramID(backend)
	}

	switch cmd {
	case "serve":
		return serve(backend)
	case "list":
		automation, err := host.NewAutomation(backend)
		if err != nil {
			return err
		}
		return list(automation, programID, os.Stdout, os.Stderr)
	default:
		return fmt.Errorf("unrecognized command: %s", cmd)
	}
}

// list attaches, enumerates and prints every breakpoint
func list(automation common.Automation, programID string, stdout io.Writer, stderr io.Writer) error {
	session, err := bridge.Attach(automation, programID)
	if err != nil {
		fmt.Fprintf(stderr, "Error opening DTE: %v\n", err)
		return fmt.Errorf("failed to attach to %s", programID)
	}
	defer session.Release()

	records, err := bridge.ReadAll(session)
	for _, rec := range records {
		fmt.Fprintln(stdout, rec.String())
	}
	if err != nil {
		return fmt.Errorf("failed to read breakpoints: %w", err)
	}
	return nil
}

func serve(backend string) error {
	s := server.NewMCPServer(
		"IDE Breakpoints MCP",
		"1.0.0",
		server.WithToolCapabilities(true),
	)

	// for append log to file
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return fmt.Errorf("failed to get user home directory: %w", err)
	}
	configDir := filepath.Join(homeDir, ".dte-mcp")
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	logFile := filepath.Join(configDir, "dte-mcp.log")
	file, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	defer file.Close()

	logger := &logger{
		writer: file,
	}

	// Register tools
	sessionManager, err := dte.RegisterTools(s, dte.ToolOptions{
		Backend: backend,
		Logger:  logger,
	})
	if err != nil {
		return err
	}
	defer sessionManager.ReleaseAll()

	logger.Infof("MCP Server listening on stdio, backend: %s", backend)
	if err := server.ServeStdio(s); err != nil {
		logger.Errorf("Server error: %v", err)
		return err
	}
	return nil
}
