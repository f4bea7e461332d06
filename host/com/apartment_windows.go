//go:build windows

package com

import (
	"errors"

	ole "github.com/go-ole/go-ole"
)

func newCOMApartment() (*apartment, error) {
	return newApartment(initializeCOM)
}

// initializeCOM enters a single-threaded apartment on the calling thread
func initializeCOM() (func(), error) {
	if err := ole.CoInitializeEx(0, ole.COINIT_APARTMENTTHREADED); err != nil {
		var oleErr *ole.OleError
		if !errors.As(err, &oleErr) || uint32(oleErr.Code()) != hrSFalse {
			return nil, err
		}
	}
	return ole.CoUninitialize, nil
}
