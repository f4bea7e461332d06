package host

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xhd2015/dte-mcp/host/com"
	"github.com/xhd2015/dte-mcp/host/headless"
	"github.com/xhd2015/dte-mcp/host/memhost"
)

func TestNewAutomation(t *testing.T) {
	a, err := NewAutomation(BackendCOM)
	require.NoError(t, err)
	assert.IsType(t, &com.Automation{}, a)

	a, err = NewAutomation(BackendHeadless)
	require.NoError(t, err)
	assert.IsType(t, &headless.Automation{}, a)

	a, err = NewAutomation(BackendMem)
	require.NoError(t, err)
	assert.IsType(t, &memhost.Registry{}, a)

	_, err = NewAutomation("dap")
	assert.EqualError(t, err, "unsupported backend: dap")
}

func TestDefaultProgramID(t *testing.T) {
	assert.Equal(t, "VisualStudio.DTE.16.0", DefaultProgramID(BackendCOM))
	assert.Equal(t, "127.0.0.1:54321", DefaultProgramID(BackendHeadless))
	assert.Equal(t, "", DefaultProgramID(BackendMem))
}
