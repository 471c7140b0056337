// SPDX-FileCopyrightText: 2026 btctl Authors
//
// SPDX-License-Identifier: GPL-3.0-or-later

package bluetooth

import (
	"golang.org/x/xerrors"
)

// Validation errors are raised before any bus interaction and abort the
// whole invocation. Bus errors during a batch are collected per device in
// the Outcome slice instead.
var (
	// ErrAdapterUnavailable means the adapter is powered off, absent, or
	// the system bus cannot be reached. Fatal for the current command.
	ErrAdapterUnavailable = xerrors.New("bluetooth adapter unavailable")

	// ErrDiscoveryStart wraps a StartDiscovery failure, the session fails
	// fast without entering the scanning state.
	ErrDiscoveryStart = xerrors.New("unable to start device discovery")

	// ErrDeviceNotFound is reported per item, it does not abort the
	// remaining items of a batch.
	ErrDeviceNotFound = xerrors.New("device not found")

	// ErrNoConnectedDevices is returned by the interactive disconnect
	// flow when there is nothing to disconnect from.
	ErrNoConnectedDevices = xerrors.New("there are no connected devices")

	ErrInvalidDuration  = xerrors.New("scan duration must be between 1 and 60 seconds")
	ErrInvalidColumn    = xerrors.New("unrecognized column")
	ErrInvalidSelection = xerrors.New("invalid selection input")

	// ErrBatchFailed signals the caller that at least one per-device
	// outcome failed; the individual outcomes were already printed.
	ErrBatchFailed = xerrors.New("one or more devices failed")
)
