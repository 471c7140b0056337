// SPDX-FileCopyrightText: 2026 btctl Authors
//
// SPDX-License-Identifier: GPL-3.0-or-later

package bluetooth

import (
	"strconv"
	"strings"

	"golang.org/x/xerrors"
)

// Column names a projectable device field. The recognized set is fixed;
// unknown names are a configuration error, never silently ignored.
type Column string

const (
	ColumnAlias     Column = "alias"
	ColumnAddress   Column = "address"
	ColumnConnected Column = "connected"
	ColumnTrusted   Column = "trusted"
	ColumnBonded    Column = "bonded"
	ColumnPaired    Column = "paired"
	ColumnRSSI      Column = "rssi"
)

// synthetic index column, only rendered by the interactive selection
const columnIdx Column = "idx"

var columnHeaders = map[Column]string{
	ColumnAlias:     "ALIAS",
	ColumnAddress:   "ADDRESS",
	ColumnConnected: "CONNECTED",
	ColumnTrusted:   "TRUSTED",
	ColumnBonded:    "BONDED",
	ColumnPaired:    "PAIRED",
	ColumnRSSI:      "RSSI",
	columnIdx:       "IDX",
}

var (
	// DefaultListColumns is the full status listing, the default of the
	// list-devices command.
	DefaultListColumns = []Column{
		ColumnAlias, ColumnAddress, ColumnConnected,
		ColumnTrusted, ColumnBonded, ColumnPaired,
	}
	// DefaultScanColumns is the default scan projection.
	DefaultScanColumns = []Column{ColumnAlias, ColumnAddress, ColumnRSSI}
)

// ParseColumns validates a user supplied projection list.
func ParseColumns(names []string) ([]Column, error) {
	columns := make([]Column, 0, len(names))
	for _, name := range names {
		col := Column(strings.ToLower(strings.TrimSpace(name)))
		if _, ok := columnHeaders[col]; !ok || col == columnIdx {
			return nil, xerrors.Errorf("unknown column %q: %w", name, ErrInvalidColumn)
		}
		columns = append(columns, col)
	}
	return columns, nil
}

// StatusFlag names a boolean device field usable as a row filter.
type StatusFlag string

const (
	StatusConnected StatusFlag = "connected"
	StatusTrusted   StatusFlag = "trusted"
	StatusBonded    StatusFlag = "bonded"
	StatusPaired    StatusFlag = "paired"
)

// ParseStatusFlags validates a user supplied status filter list.
func ParseStatusFlags(names []string) ([]StatusFlag, error) {
	flags := make([]StatusFlag, 0, len(names))
	for _, name := range names {
		flag := StatusFlag(strings.ToLower(strings.TrimSpace(name)))
		switch flag {
		case StatusConnected, StatusTrusted, StatusBonded, StatusPaired:
			flags = append(flags, flag)
		default:
			return nil, xerrors.Errorf("%q is not a status flag: %w", name, ErrInvalidColumn)
		}
	}
	return flags, nil
}

// FilterByStatus keeps the records whose every named flag is true. The
// filtering flags are independent of the displayed columns.
func FilterByStatus(records ScanSnapshot, flags []StatusFlag) ScanSnapshot {
	if len(flags) == 0 {
		return records
	}
	filtered := make(ScanSnapshot, 0, len(records))
	for _, rec := range records {
		if statusMatches(rec, flags) {
			filtered = append(filtered, rec)
		}
	}
	return filtered
}

func statusMatches(rec DeviceRecord, flags []StatusFlag) bool {
	for _, flag := range flags {
		var value bool
		switch flag {
		case StatusConnected:
			value = rec.Connected
		case StatusTrusted:
			value = rec.Trusted
		case StatusBonded:
			value = rec.Bonded
		case StatusPaired:
			value = rec.Paired
		}
		if !value {
			return false
		}
	}
	return true
}

func cellValue(rec DeviceRecord, col Column) string {
	switch col {
	case ColumnAlias:
		return rec.DisplayAlias()
	case ColumnAddress:
		return rec.Address
	case ColumnConnected:
		return strconv.FormatBool(rec.Connected)
	case ColumnTrusted:
		return strconv.FormatBool(rec.Trusted)
	case ColumnBonded:
		return strconv.FormatBool(rec.Bonded)
	case ColumnPaired:
		return strconv.FormatBool(rec.Paired)
	case ColumnRSSI:
		if rec.RSSI == nil {
			return "-"
		}
		return strconv.Itoa(int(*rec.RSSI))
	default:
		return ""
	}
}

// FormatTable renders the projected records as an aligned table with
// uppercase headers. Column widths fit the widest cell, no truncation.
func FormatTable(records ScanSnapshot, columns []Column) string {
	header := make([]string, len(columns))
	for i, col := range columns {
		header[i] = columnHeaders[col]
	}
	rows := make([][]string, len(records))
	for i, rec := range records {
		row := make([]string, len(columns))
		for j, col := range columns {
			row[j] = cellValue(rec, col)
		}
		rows[i] = row
	}
	return renderTable(header, rows)
}

// FormatTerse renders one slash-joined line per record, no header.
// Intended for scripting.
func FormatTerse(records ScanSnapshot, columns []Column) string {
	var sb strings.Builder
	for _, rec := range records {
		values := make([]string, len(columns))
		for i, col := range columns {
			values[i] = cellValue(rec, col)
		}
		sb.WriteString(strings.Join(values, "/"))
		sb.WriteByte('\n')
	}
	return sb.String()
}

// renderTable lays out pre-built rows under a header, left aligned with
// a two space gutter; trailing padding is trimmed per line.
func renderTable(header []string, rows [][]string) string {
	widths := make([]int, len(header))
	for i, h := range header {
		widths[i] = len(h)
	}
	for _, row := range rows {
		for i, cell := range row {
			if len(cell) > widths[i] {
				widths[i] = len(cell)
			}
		}
	}

	var sb strings.Builder
	writeRow := func(cells []string) {
		var line strings.Builder
		for i, cell := range cells {
			if i > 0 {
				line.WriteString("  ")
			}
			line.WriteString(cell)
			line.WriteString(strings.Repeat(" ", widths[i]-len(cell)))
		}
		sb.WriteString(strings.TrimRight(line.String(), " "))
		sb.WriteByte('\n')
	}

	writeRow(header)
	for _, row := range rows {
		writeRow(row)
	}
	return sb.String()
}
