// SPDX-FileCopyrightText: 2026 btctl Authors
//
// SPDX-License-Identifier: GPL-3.0-or-later

package bluetooth

import (
	"fmt"
	"strings"
)

// DeviceOrigin records how a device entered the registry within one
// invocation.
type DeviceOrigin uint32

const (
	// OriginKnown marks a device object that was already registered with
	// the adapter before the scan started.
	OriginKnown DeviceOrigin = iota
	// OriginDiscovered marks a device first seen through a discovery
	// signal during the current session.
	OriginDiscovered
)

func (o DeviceOrigin) String() string {
	switch o {
	case OriginKnown:
		return "known"
	case OriginDiscovered:
		return "discovered"
	default:
		return fmt.Sprintf("Unknown(%d)", uint32(o))
	}
}

// RawDeviceProps is the strongly typed view of an org.bluez.Device1
// property bag, decoded once at the bus boundary. RSSI is only present
// while the device is actively broadcasting; Battery only for connected
// devices exposing org.bluez.Battery1.
type RawDeviceProps struct {
	Address   string
	Alias     string
	Connected bool
	Trusted   bool
	Bonded    bool
	Paired    bool
	RSSI      *int16
	Battery   *uint8
}

// DeviceChange carries the fields of a properties-changed notification.
// Nil fields were not part of the change.
type DeviceChange struct {
	Address   string
	Alias     *string
	Connected *bool
	RSSI      *int16
	Battery   *uint8
}

// DeviceEvent is one notification from the bus during a discovery
// session. Exactly one of Added and Changed is set.
type DeviceEvent struct {
	Added   *RawDeviceProps
	Changed *DeviceChange
}

// DeviceRecord is the unified per-invocation view of one device,
// deduplicated by hardware address.
type DeviceRecord struct {
	Address   string
	Alias     string
	Connected bool
	Trusted   bool
	Bonded    bool
	Paired    bool
	RSSI      *int16
	Battery   *uint8
	Origin    DeviceOrigin
}

// DisplayAlias returns the user-assigned alias, or the dash-formatted
// address when no alias is set.
func (r DeviceRecord) DisplayAlias() string {
	if r.Alias != "" {
		return r.Alias
	}
	return strings.ReplaceAll(r.Address, ":", "-")
}

func (r DeviceRecord) String() string {
	return fmt.Sprintf("device [%s] %s", r.Address, r.DisplayAlias())
}

// canonicalAddress normalizes a hardware address to the uppercase
// colon-separated form used as the identity key everywhere.
func canonicalAddress(address string) string {
	return strings.ToUpper(strings.TrimSpace(address))
}
