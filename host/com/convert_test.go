package com

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xhd2015/dte-mcp/host/common"
)

func TestToInt(t *testing.T) {
	tests := []struct {
		value   interface{}
		want    int
		wantErr bool
	}{
		{int32(42), 42, false},
		{int16(-3), -3, false},
		{int64(1 << 40), 1 << 40, false},
		{uint32(7), 7, false},
		{uint8(255), 255, false},
		{int(10), 10, false},
		{"10", 0, true},
		{nil, 0, true},
		{float64(1), 0, true},
	}
	for _, tt := range tests {
		got, err := toInt(tt.value)
		if tt.wantErr {
			assert.Error(t, err, "value %#v", tt.value)
			continue
		}
		require.NoError(t, err, "value %#v", tt.value)
		assert.Equal(t, tt.want, got)
	}
}

func TestToBool(t *testing.T) {
	b, err := toBool("Breakpoint.Enabled", true)
	require.NoError(t, err)
	assert.True(t, b)

	_, err = toBool("Breakpoint.Enabled", int32(-1))
	assert.EqualError(t, err, "Breakpoint.Enabled: unexpected int32")

	assert.Equal(t, "main.c", toString("main.c"))
	assert.Equal(t, "", toString(nil))
}

func TestItemFailure(t *testing.T) {
	callErr := errors.New("Exception occurred.")
	countCalls := 0
	count := func(n int, err error) func() (int, error) {
		return func() (int, error) {
			countCalls++
			return n, err
		}
	}

	// ordinal beyond the current count: the element vanished
	err := itemFailure(3, callErr, count(2, nil))
	assert.True(t, errors.Is(err, common.ErrNoSuchItem))
	assert.Equal(t, 1, countCalls)

	// ordinal still within the count: some other failure
	err = itemFailure(2, callErr, count(2, nil))
	assert.Equal(t, callErr, err)

	// count itself failing keeps the original error
	err = itemFailure(3, callErr, count(0, errors.New("busy")))
	assert.Equal(t, callErr, err)

	// a dead host is not asked again
	countCalls = 0
	gone := wrapHRESULT("Breakpoints.Item", hrDisconnected, callErr, nil)
	err = itemFailure(3, gone, count(0, nil))
	assert.True(t, errors.Is(err, common.ErrDisconnected))
	assert.Equal(t, 0, countCalls)
}
