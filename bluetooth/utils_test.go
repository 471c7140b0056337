// SPDX-FileCopyrightText: 2026 btctl Authors
//
// SPDX-License-Identifier: GPL-3.0-or-later

package bluetooth

import (
	"testing"

	"github.com/godbus/dbus/v5"
	"github.com/stretchr/testify/assert"
)

func TestVariantHelpers(t *testing.T) {
	assert.Equal(t, "hci0", variantString(dbus.MakeVariant("hci0")))
	assert.Equal(t, "", variantString(dbus.MakeVariant(int16(-40))))
	assert.True(t, variantBool(dbus.MakeVariant(true)))
	assert.False(t, variantBool(dbus.Variant{}))
}

func TestMarshalJSON(t *testing.T) {
	rec := DeviceRecord{Address: "11:11:11:11:11:11", Alias: "One"}
	ret := marshalJSON(rec.Alias)
	assert.Equal(t, `"One"`, ret)
}

func TestDecodeDeviceProps(t *testing.T) {
	ifaces := map[string]map[string]dbus.Variant{
		bluezDeviceDBusInterface: {
			"Address":   dbus.MakeVariant("aa:bb:cc:dd:ee:ff"),
			"Alias":     dbus.MakeVariant("Buds"),
			"Connected": dbus.MakeVariant(true),
			"Paired":    dbus.MakeVariant(true),
			"RSSI":      dbus.MakeVariant(int16(-48)),
		},
		bluezBatteryDBusInterface: {
			"Percentage": dbus.MakeVariant(uint8(73)),
		},
	}
	raw, ok := decodeDeviceProps(ifaces)
	assert.True(t, ok)
	assert.Equal(t, "AA:BB:CC:DD:EE:FF", raw.Address)
	assert.Equal(t, "Buds", raw.Alias)
	assert.True(t, raw.Connected)
	// no Bonded property on this bluez, falls back to Paired
	assert.True(t, raw.Bonded)
	if assert.NotNil(t, raw.RSSI) {
		assert.Equal(t, int16(-48), *raw.RSSI)
	}
	if assert.NotNil(t, raw.Battery) {
		assert.Equal(t, uint8(73), *raw.Battery)
	}
}

func TestDecodeDevicePropsRejects(t *testing.T) {
	// not a device object
	_, ok := decodeDeviceProps(map[string]map[string]dbus.Variant{
		"org.bluez.Adapter1": {},
	})
	assert.False(t, ok)

	// device object without an address
	_, ok = decodeDeviceProps(map[string]map[string]dbus.Variant{
		bluezDeviceDBusInterface: {"Alias": dbus.MakeVariant("x")},
	})
	assert.False(t, ok)
}
