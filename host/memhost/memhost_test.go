package memhost

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xhd2015/dte-mcp/host/common"
)

func TestRegistry(t *testing.T) {
	reg := NewRegistry()
	h := reg.Register("IDE.1", Breakpoint{File: "a.go", Line: 1, Enabled: true})

	inst, err := reg.FindRunningInstance("IDE.1")
	require.NoError(t, err)
	assert.Equal(t, 1, h.OpenHandles())

	_, err = reg.FindRunningInstance("IDE.2")
	assert.True(t, errors.Is(err, common.ErrNotRegistered))

	coll, err := inst.Breakpoints()
	require.NoError(t, err)
	n, err := coll.Count()
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	bp, err := coll.Item(1)
	require.NoError(t, err)
	file, err := bp.File()
	require.NoError(t, err)
	assert.Equal(t, "a.go", file)

	_, err = coll.Item(0)
	assert.True(t, errors.Is(err, common.ErrNoSuchItem))
	_, err = coll.Item(2)
	assert.True(t, errors.Is(err, common.ErrNoSuchItem))

	require.NoError(t, inst.Close())
	require.NoError(t, inst.Close())
	assert.Equal(t, 0, h.OpenHandles())
	_, err = inst.Breakpoints()
	assert.True(t, errors.Is(err, common.ErrDisconnected))
}

func TestHostMutations(t *testing.T) {
	reg := NewRegistry()
	h := reg.Register("IDE.1")

	inst, err := reg.FindRunningInstance("IDE.1")
	require.NoError(t, err)
	coll, err := inst.Breakpoints()
	require.NoError(t, err)

	h.Add(Breakpoint{File: "a.go", Line: 1})
	h.Add(Breakpoint{File: "b.go", Line: 2})
	n, _ := coll.Count()
	assert.Equal(t, 2, n)

	h.RemoveAt(0)
	h.RemoveAt(7)
	n, _ = coll.Count()
	assert.Equal(t, 1, n)

	h.SetBreakpoints()
	n, _ = coll.Count()
	assert.Equal(t, 0, n)
	assert.Equal(t, 4, h.Calls())
}

func TestTerminate(t *testing.T) {
	reg := NewRegistry()
	h := reg.Register("IDE.1", Breakpoint{File: "a.go", Line: 1})

	inst, err := reg.FindRunningInstance("IDE.1")
	require.NoError(t, err)
	coll, err := inst.Breakpoints()
	require.NoError(t, err)
	bp, err := coll.Item(1)
	require.NoError(t, err)

	h.Terminate()

	_, err = coll.Count()
	assert.True(t, errors.Is(err, common.ErrDisconnected))
	_, err = bp.Enabled()
	assert.True(t, errors.Is(err, common.ErrDisconnected))
	_, err = reg.FindRunningInstance("IDE.1")
	assert.True(t, errors.Is(err, common.ErrNotRegistered))
}

func TestBusy(t *testing.T) {
	reg := NewRegistry()
	h := reg.Register("IDE.1")
	h.SetBusy(true)

	_, err := reg.FindRunningInstance("IDE.1")
	assert.True(t, errors.Is(err, common.ErrNoResponse))
}

func TestCollectionReleaseAfterClose(t *testing.T) {
	reg := NewRegistry()
	h := reg.Register("IDE.1")

	inst, err := reg.FindRunningInstance("IDE.1")
	require.NoError(t, err)
	early, err := inst.Breakpoints()
	require.NoError(t, err)
	late, err := inst.Breakpoints()
	require.NoError(t, err)
	assert.Equal(t, 2, h.OpenCollections())

	early.Release()
	early.Release()
	require.NoError(t, inst.Close())
	late.Release()

	assert.Equal(t, 0, h.OpenCollections())
	assert.Equal(t, 1, h.LateReleases())

	_, err = inst.Breakpoints()
	assert.True(t, errors.Is(err, common.ErrDisconnected))
}
