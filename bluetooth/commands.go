// SPDX-FileCopyrightText: 2026 btctl Authors
//
// SPDX-License-Identifier: GPL-3.0-or-later

package bluetooth

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"
)

// Status writes the adapter power state and the connected devices with
// their battery charge when exposed.
func Status(bus Bus, w io.Writer) error {
	powered, err := bus.AdapterPowered()
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "bluetooth: %s\n", powerStateString(powered))

	known, err := bus.ListKnownDevices()
	if err != nil {
		return err
	}
	registry := NewDeviceRegistry()
	registry.Seed(known)
	connected := FilterByStatus(registry.Snapshot(), []StatusFlag{StatusConnected})

	fmt.Fprintln(w, "connected devices:")
	for _, rec := range connected {
		if rec.Battery != nil {
			fmt.Fprintf(w, "%s/%s (batt: %d%%)\n", rec.DisplayAlias(), rec.Address, *rec.Battery)
		} else {
			fmt.Fprintf(w, "%s/%s\n", rec.DisplayAlias(), rec.Address)
		}
	}
	return nil
}

// Toggle flips the adapter power state and reports the new one.
func Toggle(bus Bus, w io.Writer) error {
	powered, err := bus.AdapterPowered()
	if err != nil {
		return err
	}
	err = bus.SetAdapterPowered(!powered)
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "bluetooth: %s\n", powerStateString(!powered))
	return nil
}

func powerStateString(powered bool) string {
	if powered {
		return "enabled"
	}
	return "disabled"
}

// ListDevicesOptions selects the projection and the row filter of a
// list-devices run. Values switches to terse output; Columns and Values
// are mutually exclusive at the CLI layer.
type ListDevicesOptions struct {
	Columns []string
	Values  []string
	Status  []string
}

// ListDevices renders the devices known to the adapter, without
// scanning.
func ListDevices(bus Bus, w io.Writer, opts ListDevicesOptions) error {
	terse := len(opts.Values) > 0
	names := opts.Columns
	if terse {
		names = opts.Values
	}
	columns := DefaultListColumns
	if len(names) > 0 {
		var err error
		columns, err = ParseColumns(names)
		if err != nil {
			return err
		}
	}
	flags, err := ParseStatusFlags(opts.Status)
	if err != nil {
		return err
	}

	known, err := bus.ListKnownDevices()
	if err != nil {
		return err
	}
	registry := NewDeviceRegistry()
	registry.Seed(known)
	records := FilterByStatus(registry.Snapshot(), flags)

	if terse {
		_, err = io.WriteString(w, FormatTerse(records, columns))
	} else {
		_, err = io.WriteString(w, FormatTable(records, columns))
	}
	return err
}

// ScanOptions configures one bounded discovery run. Interrupt, when
// non-nil, drains the session early once closed; discovery is still
// stopped cleanly.
type ScanOptions struct {
	Duration  time.Duration
	Columns   []string
	Values    []string
	Interrupt <-chan struct{}
}

// Scan runs a discovery session and renders the merged known+discovered
// snapshot.
func Scan(bus Bus, w io.Writer, opts ScanOptions) error {
	terse := len(opts.Values) > 0
	names := opts.Columns
	if terse {
		names = opts.Values
	}
	columns := DefaultScanColumns
	if len(names) > 0 {
		var err error
		columns, err = ParseColumns(names)
		if err != nil {
			return err
		}
	}

	session, err := NewDiscoverySession(bus, opts.Duration)
	if err != nil {
		return err
	}
	watchInterrupt(session, opts.Interrupt)
	snapshot, err := session.Run()
	if err != nil {
		return err
	}

	if terse {
		_, err = io.WriteString(w, FormatTerse(snapshot, columns))
	} else {
		_, err = io.WriteString(w, FormatTable(snapshot, columns))
	}
	return err
}

// ConnectOptions: with Aliases set the command is non-interactive and
// connects the named known devices directly; otherwise it scans,
// prompts, and connects the selection.
type ConnectOptions struct {
	Aliases    []string
	Duration   time.Duration
	NameFilter string
	Interrupt  <-chan struct{}
}

var selectionColumns = []Column{ColumnAlias, ColumnAddress, ColumnRSSI}

// Connect drives the connect workflow and prints one outcome line per
// device. It returns ErrBatchFailed when any outcome fell short.
func Connect(bus Bus, w io.Writer, r io.Reader, opts ConnectOptions) error {
	connector := NewConnector(bus)

	if len(opts.Aliases) > 0 {
		snapshot, err := knownSnapshot(bus)
		if err != nil {
			return err
		}
		outcomes := connectMatches(connector, ResolveAliases(snapshot, opts.Aliases))
		return writeOutcomes(w, snapshot, outcomes, "connect")
	}

	snapshot, addresses, err := selectInteractive(bus, w, r, opts,
		"Select the device(s) you wish to connect, or 'r' to re-scan: ")
	if err != nil {
		return err
	}
	outcomes := connector.ConnectMany(addresses)
	return writeOutcomes(w, snapshot, outcomes, "connect")
}

// DisconnectOptions: with Aliases set the command is non-interactive.
// Force removes each device from the adapter after disconnecting it.
type DisconnectOptions struct {
	Aliases []string
	Force   bool
}

// Disconnect drives the disconnect workflow, best effort across the
// batch, and prints one outcome line per device.
func Disconnect(bus Bus, w io.Writer, r io.Reader, opts DisconnectOptions) error {
	connector := NewConnector(bus)

	if len(opts.Aliases) > 0 {
		snapshot, err := knownSnapshot(bus)
		if err != nil {
			return err
		}
		matches := ResolveAliases(snapshot, opts.Aliases)
		outcomes := disconnectMatches(connector, matches, opts.Force)
		return writeOutcomes(w, snapshot, outcomes, disconnectVerb(opts.Force))
	}

	reader := bufio.NewReader(r)
	for {
		snapshot, err := knownSnapshot(bus)
		if err != nil {
			return err
		}
		connected := FilterByStatus(snapshot, []StatusFlag{StatusConnected})
		if len(connected) == 0 {
			return ErrNoConnectedDevices
		}
		sel := NewSelection(connected)
		err = sel.Render(w, []Column{ColumnAlias, ColumnAddress})
		if err != nil {
			return err
		}
		addresses, err := promptSelection(w, reader, sel,
			"Select the device(s) you wish to disconnect, or 'r' to refresh: ")
		if errors.Is(err, errRescanRequested) {
			continue
		}
		if err != nil {
			return err
		}
		outcomes := connector.DisconnectMany(addresses, opts.Force)
		return writeOutcomes(w, snapshot, outcomes, disconnectVerb(opts.Force))
	}
}

// knownSnapshot seeds a fresh registry from the adapter's device list,
// no scan involved.
func knownSnapshot(bus Bus) (ScanSnapshot, error) {
	known, err := bus.ListKnownDevices()
	if err != nil {
		return nil, err
	}
	registry := NewDeviceRegistry()
	registry.Seed(known)
	return registry.Snapshot(), nil
}

// selectInteractive runs scan-render-prompt until the user picks
// devices, honoring re-scan requests with the same duration and name
// filter.
func selectInteractive(bus Bus, w io.Writer, r io.Reader, opts ConnectOptions, prompt string) (ScanSnapshot, []string, error) {
	reader := bufio.NewReader(r)
	for {
		session, err := NewDiscoverySession(bus, opts.Duration)
		if err != nil {
			return nil, nil, err
		}
		watchInterrupt(session, opts.Interrupt)
		snapshot, err := session.Run()
		if err != nil {
			return nil, nil, err
		}
		filtered := ApplyNameFilter(snapshot, opts.NameFilter)
		sel := NewSelection(filtered)
		err = sel.Render(w, selectionColumns)
		if err != nil {
			return nil, nil, err
		}
		addresses, err := promptSelection(w, reader, sel, prompt)
		if errors.Is(err, errRescanRequested) {
			continue
		}
		if err != nil {
			return nil, nil, err
		}
		return snapshot, addresses, nil
	}
}

func promptSelection(w io.Writer, reader *bufio.Reader, sel *Selection, prompt string) ([]string, error) {
	_, err := io.WriteString(w, prompt)
	if err != nil {
		return nil, err
	}
	line, err := reader.ReadString('\n')
	if err != nil && (err != io.EOF || line == "") {
		return nil, fmt.Errorf("reading selection: %w", err)
	}
	return sel.Resolve(line)
}

// watchInterrupt maps an external interrupt onto the session's own
// cancellation so an interrupted scan still reaches the draining state.
// The watcher exits with the session, not with the process.
func watchInterrupt(session *DiscoverySession, interrupt <-chan struct{}) {
	if interrupt == nil {
		return
	}
	go func() {
		select {
		case <-interrupt:
			session.Cancel()
		case <-session.done:
		}
	}()
}

func disconnectVerb(force bool) string {
	if force {
		return "remove"
	}
	return "disconnect"
}

func notFoundOutcome(alias string) Outcome {
	return Outcome{Address: alias, Status: OutcomeFailed, Err: ErrDeviceNotFound}
}

func connectMatches(connector *Connector, matches []AliasMatch) []Outcome {
	outcomes := make([]Outcome, 0, len(matches))
	for _, m := range matches {
		if !m.Found {
			outcomes = append(outcomes, notFoundOutcome(m.Alias))
			continue
		}
		outcomes = append(outcomes, connector.ConnectOne(m.Address))
	}
	return outcomes
}

// disconnectMatches reports outcomes in the caller's alias order,
// interleaving not-found items with the bus results instead of hoisting
// them to the front.
func disconnectMatches(connector *Connector, matches []AliasMatch, force bool) []Outcome {
	outcomes := make([]Outcome, 0, len(matches))
	for _, m := range matches {
		if !m.Found {
			outcomes = append(outcomes, notFoundOutcome(m.Alias))
			continue
		}
		outcomes = append(outcomes, connector.DisconnectMany([]string{m.Address}, force)...)
	}
	return outcomes
}

// writeOutcomes prints one line per device and folds the batch into the
// process-level success signal.
func writeOutcomes(w io.Writer, snapshot ScanSnapshot, outcomes []Outcome, verb string) error {
	labels := make(map[string]string, len(snapshot))
	for _, rec := range snapshot {
		labels[rec.Address] = rec.DisplayAlias()
	}
	label := func(address string) string {
		if l, ok := labels[address]; ok {
			return l
		}
		return address
	}

	for _, o := range outcomes {
		switch {
		case o.Status == OutcomeSucceeded && verb == "connect":
			fmt.Fprintf(w, "connected to device %s\n", label(o.Address))
		case o.Status == OutcomeSucceeded && verb == "remove":
			fmt.Fprintf(w, "removed device %s (forced)\n", label(o.Address))
		case o.Status == OutcomeSucceeded:
			fmt.Fprintf(w, "disconnected from device %s\n", label(o.Address))
		case o.Status == OutcomeDisconnectedNotRemoved:
			fmt.Fprintf(w, "disconnected from device %s but failed to remove it: %v\n", label(o.Address), o.Err)
		case errors.Is(o.Err, ErrDeviceNotFound):
			fmt.Fprintf(w, "device %s not found\n", label(o.Address))
		default:
			fmt.Fprintf(w, "failed to %s device %s: %v\n", verb, label(o.Address), o.Err)
		}
	}
	if AnyFailed(outcomes) {
		return ErrBatchFailed
	}
	return nil
}

// SplitCommaList is the comma-separated flag convention of the CLI
// layer: surrounding space trimmed, empty items dropped.
func SplitCommaList(value string) []string {
	if strings.TrimSpace(value) == "" {
		return nil
	}
	var items []string
	for _, item := range strings.Split(value, ",") {
		item = strings.TrimSpace(item)
		if item != "" {
			items = append(items, item)
		}
	}
	return items
}
