// Package host selects a host automation backend by name
package host

import (
	"fmt"
	"runtime"

	"github.com/xhd2015/dte-mcp/host/com"
	"github.com/xhd2015/dte-mcp/host/common"
	"github.com/xhd2015/dte-mcp/host/headless"
	"github.com/xhd2015/dte-mcp/host/memhost"
)

// Backend names accepted by NewAutomation
const (
	BackendCOM      = "com"
	BackendHeadless = "headless"
	BackendMem      = "mem"
)

// DefaultBackend returns "com" on Windows and "headless" elsewhere
func DefaultBackend() string {
	if runtime.GOOS == "windows" {
		return BackendCOM
	}
	return BackendHeadless
}

// DefaultProgramID returns the program id used when none is given
func DefaultProgramID(backend string) string {
	switch backend {
	case BackendCOM:
		return com.DefaultProgramID
	case BackendHeadless:
		return headless.DefaultAddr
	default:
		return ""
	}
}

// NewAutomation creates a host automation backend by name.
// The "mem" backend starts with an empty registry.
func NewAutomation(backend string) (common.Automation, error) {
	switch backend {
	case BackendCOM:
		return com.NewAutomation(), nil
	case BackendHeadless:
		return headless.NewAutomation(), nil
	case BackendMem:
		return memhost.NewRegistry(), nil
	default:
		return nil, fmt.Errorf("unsupported backend: %s", backend)
	}
}
