// Package com attaches to IDE hosts that register themselves in the COM
// running object table, such as Visual Studio's DTE ("VisualStudio.DTE.16.0").
// It is functional on Windows only.
package com

import (
	"fmt"

	"github.com/xhd2015/dte-mcp/host/common"
)

// DefaultProgramID is the Visual Studio 2019 automation object
const DefaultProgramID = "VisualStudio.DTE.16.0"

// HRESULTs that decide how a failure is reported to the bridge
const (
	hrSFalse               uint32 = 0x00000001
	hrClassNotRegistered   uint32 = 0x80040154 // REGDB_E_CLASSNOTREG
	hrUnavailable          uint32 = 0x800401E3 // MK_E_UNAVAILABLE
	hrClassString          uint32 = 0x800401F3 // CO_E_CLASSSTRING
	hrObjectNotConnected   uint32 = 0x800401FD // CO_E_OBJNOTCONNECTED
	hrCallRejected         uint32 = 0x80010001 // RPC_E_CALL_REJECTED
	hrServerDied           uint32 = 0x80010007 // RPC_E_SERVER_DIED
	hrServerDiedDNE        uint32 = 0x80010012 // RPC_E_SERVER_DIED_DNE
	hrDisconnected         uint32 = 0x80010108 // RPC_E_DISCONNECTED
	hrRetryLater           uint32 = 0x8001010A // RPC_E_SERVERCALL_RETRYLATER
	hrRPCServerUnavailable uint32 = 0x800706BA // RPC_S_SERVER_UNAVAILABLE
	hrRPCCallFailed        uint32 = 0x800706BE // RPC_S_CALL_FAILED
	hrRPCCallFailedDNE     uint32 = 0x800706BF // RPC_S_CALL_FAILED_DNE
)

// classify maps an HRESULT to the common sentinel it stands for, or nil
func classify(hr uint32) error {
	switch hr {
	case hrClassNotRegistered, hrUnavailable, hrClassString:
		return common.ErrNotRegistered
	case hrObjectNotConnected, hrServerDied, hrServerDiedDNE, hrDisconnected,
		hrRPCServerUnavailable, hrRPCCallFailed, hrRPCCallFailedDNE:
		return common.ErrDisconnected
	case hrCallRejected, hrRetryLater:
		return common.ErrNoResponse
	}
	return nil
}

// wrapHRESULT annotates err with the sentinel for hr. fallback is used when
// hr has no specific meaning; it may be nil.
func wrapHRESULT(op string, hr uint32, err error, fallback error) error {
	sentinel := classify(hr)
	if sentinel == nil {
		sentinel = fallback
	}
	if sentinel == nil {
		return fmt.Errorf("%s: 0x%08X: %w", op, hr, err)
	}
	return fmt.Errorf("%s: 0x%08X: %v: %w", op, hr, err, sentinel)
}
