// SPDX-FileCopyrightText: 2026 btctl Authors
//
// SPDX-License-Identifier: GPL-3.0-or-later

/*
Package bluetooth controls the host Bluetooth adapter through the bluez5
dbus interfaces. All device state is read live from the bus on every
invocation; nothing is cached on disk.

The package is split along the command pipeline: BluezClient talks to the
bus, DeviceRegistry merges known and discovered devices into one ordered
view, DiscoverySession runs a bounded scan over the registry, and the
command functions render the result through the table/terse formatter.
*/
package bluetooth
