// SPDX-FileCopyrightText: 2026 btctl Authors
//
// SPDX-License-Identifier: GPL-3.0-or-later

package bluetooth

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"golang.org/x/xerrors"
)

// rescanInput at a selection prompt throws the current selection away
// and runs a fresh discovery session with the same settings.
const rescanInput = "r"

// errRescanRequested is internal to the interactive loop; it never
// escapes to the caller.
var errRescanRequested = xerrors.New("rescan requested")

// Selection maps the displayed 0-based indices to device addresses for
// one interactive prompt. It is rebuilt from scratch whenever a re-scan
// occurs and is never persisted.
type Selection struct {
	records ScanSnapshot
}

func NewSelection(snapshot ScanSnapshot) *Selection {
	return &Selection{records: snapshot}
}

func (s *Selection) Len() int {
	return len(s.records)
}

// Render writes the indexed listing, delegating to the table formatter
// with the synthetic IDX column in front of the projection.
func (s *Selection) Render(w io.Writer, columns []Column) error {
	header := make([]string, 0, len(columns)+1)
	header = append(header, columnHeaders[columnIdx])
	for _, col := range columns {
		header = append(header, columnHeaders[col])
	}
	rows := make([][]string, len(s.records))
	for i, rec := range s.records {
		row := make([]string, 0, len(columns)+1)
		row = append(row, fmt.Sprintf("(%d)", i))
		for _, col := range columns {
			row = append(row, cellValue(rec, col))
		}
		rows[i] = row
	}
	_, err := io.WriteString(w, renderTable(header, rows))
	return err
}

// Resolve turns a comma-separated index list into addresses, in input
// order with duplicates collapsed. The literal "r" requests a re-scan.
func (s *Selection) Resolve(input string) ([]string, error) {
	input = strings.TrimSpace(input)
	if input == rescanInput {
		return nil, errRescanRequested
	}
	if input == "" {
		return nil, xerrors.Errorf("empty selection: %w", ErrInvalidSelection)
	}

	seen := make(map[int]bool)
	var addresses []string
	for _, field := range strings.Split(input, ",") {
		field = strings.TrimSpace(field)
		idx, err := strconv.Atoi(field)
		if err != nil {
			return nil, xerrors.Errorf("%q is not an index: %w", field, ErrInvalidSelection)
		}
		if idx < 0 || idx >= len(s.records) {
			return nil, xerrors.Errorf("index %d out of range: %w", idx, ErrInvalidSelection)
		}
		if seen[idx] {
			continue
		}
		seen[idx] = true
		addresses = append(addresses, s.records[idx].Address)
	}
	return addresses, nil
}

// ApplyNameFilter keeps the records whose display alias contains the
// substring, case-sensitively. An empty substring is a no-op.
func ApplyNameFilter(snapshot ScanSnapshot, substring string) ScanSnapshot {
	if substring == "" {
		return snapshot
	}
	filtered := make(ScanSnapshot, 0, len(snapshot))
	for _, rec := range snapshot {
		if strings.Contains(rec.DisplayAlias(), substring) {
			filtered = append(filtered, rec)
		}
	}
	return filtered
}

// AliasMatch is the result of resolving one user supplied alias.
type AliasMatch struct {
	Alias   string
	Address string
	Found   bool
}

// ResolveAliases matches an alias list against the snapshot,
// case-sensitively and against the display alias, so the dash-formatted
// address fallback matches too. Unmatched aliases stay in the result in
// their input position, never silently dropped.
func ResolveAliases(snapshot ScanSnapshot, aliases []string) []AliasMatch {
	byAlias := make(map[string]string, len(snapshot))
	for _, rec := range snapshot {
		if _, ok := byAlias[rec.DisplayAlias()]; !ok {
			byAlias[rec.DisplayAlias()] = rec.Address
		}
	}
	matches := make([]AliasMatch, 0, len(aliases))
	for _, alias := range aliases {
		alias = strings.TrimSpace(alias)
		if alias == "" {
			continue
		}
		address, ok := byAlias[alias]
		matches = append(matches, AliasMatch{Alias: alias, Address: address, Found: ok})
	}
	return matches
}
