// SPDX-FileCopyrightText: 2026 btctl Authors
//
// SPDX-License-Identifier: GPL-3.0-or-later

package bluetooth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/xerrors"
)

func sampleRecords() ScanSnapshot {
	return ScanSnapshot{
		{Address: "11:11:11:11:11:11", Alias: "Dev1", Connected: false, Trusted: true},
		{Address: "22:22:22:22:22:22", Alias: "Device Two", Connected: true, Paired: true, Bonded: true, RSSI: int16Ptr(-60)},
	}
}

func TestParseColumns(t *testing.T) {
	cols, err := ParseColumns([]string{"Alias", " address ", "rssi"})
	require.NoError(t, err)
	assert.Equal(t, []Column{ColumnAlias, ColumnAddress, ColumnRSSI}, cols)

	_, err = ParseColumns([]string{"alias", "bogus"})
	assert.True(t, xerrors.Is(err, ErrInvalidColumn))

	// the synthetic selection column is not user addressable
	_, err = ParseColumns([]string{"idx"})
	assert.True(t, xerrors.Is(err, ErrInvalidColumn))
}

func TestParseStatusFlags(t *testing.T) {
	flags, err := ParseStatusFlags([]string{"connected", "Paired"})
	require.NoError(t, err)
	assert.Equal(t, []StatusFlag{StatusConnected, StatusPaired}, flags)

	_, err = ParseStatusFlags([]string{"alias"})
	assert.True(t, xerrors.Is(err, ErrInvalidColumn))
}

func TestFormatTableAlignment(t *testing.T) {
	records := ScanSnapshot{{Alias: "Dev1", Address: "11:11:11:11:11:11"}}
	out := FormatTable(records, []Column{ColumnAlias, ColumnConnected})
	assert.Equal(t, "ALIAS  CONNECTED\nDev1   false\n", out)
}

func TestFormatTableWideCell(t *testing.T) {
	out := FormatTable(sampleRecords(), []Column{ColumnAlias, ColumnRSSI})
	assert.Equal(t, "ALIAS       RSSI\nDev1        -\nDevice Two  -60\n", out)
}

func TestFormatTerse(t *testing.T) {
	out := FormatTerse(sampleRecords(), []Column{ColumnAlias, ColumnConnected, ColumnRSSI})
	assert.Equal(t, "Dev1/false/-\nDevice Two/true/-60\n", out)
}

func TestFormatEmptySnapshot(t *testing.T) {
	assert.Equal(t, "ALIAS\n", FormatTable(nil, []Column{ColumnAlias}))
	assert.Equal(t, "", FormatTerse(nil, []Column{ColumnAlias}))
}

func TestFilterByStatus(t *testing.T) {
	records := sampleRecords()

	connected := FilterByStatus(records, []StatusFlag{StatusConnected})
	require.Len(t, connected, 1)
	assert.Equal(t, "Device Two", connected[0].Alias)

	// every flag must hold
	both := FilterByStatus(records, []StatusFlag{StatusConnected, StatusTrusted})
	assert.Empty(t, both)

	// no flags, no filtering
	assert.Len(t, FilterByStatus(records, nil), 2)
}

func TestFilterIndependentOfProjection(t *testing.T) {
	// filtering on a flag that is not displayed still works
	records := FilterByStatus(sampleRecords(), []StatusFlag{StatusPaired})
	require.Len(t, records, 1)
	out := FormatTable(records, []Column{ColumnAlias, ColumnAddress})
	assert.NotContains(t, out, "PAIRED")
	assert.Contains(t, out, "Device Two")
}

func TestCellValueAliasFallback(t *testing.T) {
	rec := DeviceRecord{Address: "AA:BB:CC:DD:EE:FF"}
	assert.Equal(t, "AA-BB-CC-DD-EE-FF", cellValue(rec, ColumnAlias))
	assert.Equal(t, "AA:BB:CC:DD:EE:FF", cellValue(rec, ColumnAddress))
	assert.Equal(t, "-", cellValue(rec, ColumnRSSI))
}
