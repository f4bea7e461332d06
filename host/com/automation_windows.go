//go:build windows

package com

import (
	"errors"
	"fmt"

	ole "github.com/go-ole/go-ole"
	"github.com/go-ole/go-ole/oleutil"
	"github.com/xhd2015/dte-mcp/host/common"
)

// Automation finds running hosts through the COM running object table
type Automation struct{}

var _ common.Automation = (*Automation)(nil)

// NewAutomation creates a COM automation backend
func NewAutomation() *Automation {
	return &Automation{}
}

// FindRunningInstance resolves programID to a CLSID and fetches the active
// object registered for it. A host that is not running is not started.
func (a *Automation) FindRunningInstance(programID string) (common.Instance, error) {
	apt, err := newCOMApartment()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize COM: %v: %w", err, common.ErrNoResponse)
	}

	var dte *ole.IDispatch
	err = apt.do(func() error {
		clsid, err := ole.CLSIDFromProgID(programID)
		if err != nil {
			return oleError("CLSIDFromProgID "+programID, err, common.ErrNotRegistered)
		}

		unknown, err := ole.GetActiveObject(clsid, ole.IID_IUnknown)
		if err != nil {
			return oleError("GetActiveObject "+programID, err, common.ErrNotRegistered)
		}
		defer unknown.Release()

		dte, err = unknown.QueryInterface(ole.IID_IDispatch)
		if err != nil {
			return oleError("QueryInterface IDispatch", err, common.ErrNoResponse)
		}
		return nil
	})
	if err != nil {
		apt.stop()
		return nil, err
	}

	return &instance{apt: apt, dte: dte}, nil
}

type instance struct {
	apt *apartment
	dte *ole.IDispatch
}

// Breakpoints reads DTE.Debugger.Breakpoints
func (i *instance) Breakpoints() (common.Collection, error) {
	if i.dte == nil {
		return nil, fmt.Errorf("instance closed: %w", common.ErrDisconnected)
	}

	var bps *ole.IDispatch
	err := i.apt.do(func() error {
		debugger, err := dispatchProperty(i.dte, "Debugger")
		if err != nil {
			return err
		}
		defer debugger.Release()

		bps, err = dispatchProperty(debugger, "Breakpoints")
		return err
	})
	if err != nil {
		return nil, err
	}
	return &collection{apt: i.apt, disp: bps}, nil
}

func (i *instance) Close() error {
	if i.dte == nil {
		return nil
	}
	dte := i.dte
	i.dte = nil
	i.apt.do(func() error {
		dte.Release()
		return nil
	})
	i.apt.stop()
	return nil
}

type collection struct {
	apt  *apartment
	disp *ole.IDispatch
}

func (c *collection) Count() (int, error) {
	var n int
	err := c.apt.do(func() error {
		var err error
		n, err = c.count()
		return err
	})
	return n, err
}

// count must run on the apartment thread
func (c *collection) count() (int, error) {
	v, err := oleutil.GetProperty(c.disp, "Count")
	if err != nil {
		return 0, oleError("Breakpoints.Count", err, common.ErrNoResponse)
	}
	defer v.Clear()
	return variantInt(v)
}

// Item calls Breakpoints.Item(ordinal)
func (c *collection) Item(ordinal int) (common.Breakpoint, error) {
	if ordinal < 1 {
		return nil, fmt.Errorf("ordinal %d: %w", ordinal, common.ErrNoSuchItem)
	}

	var bp *ole.IDispatch
	err := c.apt.do(func() error {
		v, err := oleutil.CallMethod(c.disp, "Item", int32(ordinal))
		if err != nil {
			return itemFailure(ordinal, oleError("Breakpoints.Item", err, nil), c.count)
		}
		// the variant's reference is handed over to bp
		bp = v.ToIDispatch()
		if bp == nil {
			v.Clear()
			return fmt.Errorf("Breakpoints.Item(%d) returned no object", ordinal)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &breakpoint{apt: c.apt, disp: bp}, nil
}

func (c *collection) Release() {
	releaseOn(c.apt, c.disp)
	c.disp = nil
}

type breakpoint struct {
	apt  *apartment
	disp *ole.IDispatch
}

func (b *breakpoint) property(name string) (interface{}, error) {
	var value interface{}
	err := b.apt.do(func() error {
		v, err := oleutil.GetProperty(b.disp, name)
		if err != nil {
			return oleError("Breakpoint."+name, err, nil)
		}
		defer v.Clear()
		if v.VT == ole.VT_BSTR {
			value = v.ToString()
			return nil
		}
		value = v.Value()
		return nil
	})
	return value, err
}

func (b *breakpoint) File() (string, error) {
	value, err := b.property("File")
	if err != nil {
		return "", err
	}
	return toString(value), nil
}

func (b *breakpoint) FileLine() (int, error) {
	value, err := b.property("FileLine")
	if err != nil {
		return 0, err
	}
	return toInt(value)
}

func (b *breakpoint) Enabled() (bool, error) {
	value, err := b.property("Enabled")
	if err != nil {
		return false, err
	}
	return toBool("Breakpoint.Enabled", value)
}

func (b *breakpoint) Release() {
	releaseOn(b.apt, b.disp)
	b.disp = nil
}

// releaseOn is a no-op once the apartment stopped; CoUninitialize
// already dropped the reference.
func releaseOn(apt *apartment, disp *ole.IDispatch) {
	if disp == nil {
		return
	}
	apt.do(func() error {
		disp.Release()
		return nil
	})
}

func dispatchProperty(disp *ole.IDispatch, name string) (*ole.IDispatch, error) {
	v, err := oleutil.GetProperty(disp, name)
	if err != nil {
		return nil, oleError(name, err, common.ErrNoResponse)
	}
	child := v.ToIDispatch()
	if child == nil {
		v.Clear()
		return nil, fmt.Errorf("%s is not an object: %w", name, common.ErrNoResponse)
	}
	return child, nil
}

func variantInt(v *ole.VARIANT) (int, error) {
	return toInt(v.Value())
}

func oleError(op string, err error, fallback error) error {
	var oleErr *ole.OleError
	if errors.As(err, &oleErr) {
		return wrapHRESULT(op, uint32(oleErr.Code()), err, fallback)
	}
	if fallback == nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return fmt.Errorf("%s: %v: %w", op, err, fallback)
}
