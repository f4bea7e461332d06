package com

import (
	"errors"
	"fmt"

	"github.com/xhd2015/dte-mcp/host/common"
)

// toInt accepts any integer a VARIANT may decode to
func toInt(value interface{}) (int, error) {
	switch n := value.(type) {
	case int:
		return n, nil
	case int8:
		return int(n), nil
	case int16:
		return int(n), nil
	case int32:
		return int(n), nil
	case int64:
		return int(n), nil
	case uint8:
		return int(n), nil
	case uint16:
		return int(n), nil
	case uint32:
		return int(n), nil
	case uint64:
		return int(n), nil
	}
	return 0, fmt.Errorf("unexpected %T where an integer was expected", value)
}

func toBool(name string, value interface{}) (bool, error) {
	b, ok := value.(bool)
	if !ok {
		return false, fmt.Errorf("%s: unexpected %T", name, value)
	}
	return b, nil
}

func toString(value interface{}) string {
	s, _ := value.(string)
	return s
}

// itemFailure decides what a failed Breakpoints.Item call means.
// DTE reports a bad index as a generic dispatch exception, so unless the
// host is gone, Count is read again: an ordinal past it no longer exists.
func itemFailure(ordinal int, callErr error, count func() (int, error)) error {
	if errors.Is(callErr, common.ErrDisconnected) {
		return callErr
	}
	n, err := count()
	if err == nil && ordinal > n {
		return fmt.Errorf("ordinal %d of %d: %w", ordinal, n, common.ErrNoSuchItem)
	}
	return callErr
}
