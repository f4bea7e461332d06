//go:build !windows

package com

import (
	"fmt"
	"runtime"

	"github.com/xhd2015/dte-mcp/host/common"
)

// Automation is unavailable outside Windows
type Automation struct{}

var _ common.Automation = (*Automation)(nil)

// NewAutomation creates a COM automation backend
func NewAutomation() *Automation {
	return &Automation{}
}

// FindRunningInstance always fails: there is no COM runtime on this platform
func (a *Automation) FindRunningInstance(programID string) (common.Instance, error) {
	return nil, fmt.Errorf("COM automation is not available on %s: %w", runtime.GOOS, common.ErrNoResponse)
}
