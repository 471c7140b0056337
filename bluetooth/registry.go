// SPDX-FileCopyrightText: 2026 btctl Authors
//
// SPDX-License-Identifier: GPL-3.0-or-later

package bluetooth

// ScanSnapshot is an ordered sequence of device records. Ordering is the
// insertion order of first observation: seeded known devices first, then
// discovery signals as they arrived.
type ScanSnapshot []DeviceRecord

// DeviceRegistry holds the canonical, deduplicated device view for one
// invocation. It is owned by a single discovery session and is not safe
// for concurrent use.
type DeviceRegistry struct {
	records []DeviceRecord
	index   map[string]int
}

func NewDeviceRegistry() *DeviceRegistry {
	return &DeviceRegistry{
		index: make(map[string]int),
	}
}

// Seed populates the registry from the devices the adapter already
// exposes; records are tagged known. Seeding an address twice keeps the
// first record and merges the later fields into it.
func (r *DeviceRegistry) Seed(known []RawDeviceProps) {
	for i := range known {
		r.insertOrMerge(&known[i], OriginKnown)
	}
}

// Fold applies one bus notification. Events for unseen addresses insert
// a new record tagged discovered; events for seen addresses merge into
// the existing record without changing its origin tag or its position.
func (r *DeviceRegistry) Fold(ev DeviceEvent) {
	switch {
	case ev.Added != nil:
		r.insertOrMerge(ev.Added, OriginDiscovered)
	case ev.Changed != nil:
		r.applyChange(ev.Changed)
	}
}

func (r *DeviceRegistry) insertOrMerge(props *RawDeviceProps, origin DeviceOrigin) {
	address := canonicalAddress(props.Address)
	if address == "" {
		logger.Warning("dropping device props without address")
		return
	}
	idx, ok := r.index[address]
	if !ok {
		r.index[address] = len(r.records)
		r.records = append(r.records, DeviceRecord{
			Address:   address,
			Alias:     props.Alias,
			Connected: props.Connected,
			Trusted:   props.Trusted,
			Bonded:    props.Bonded,
			Paired:    props.Paired,
			RSSI:      props.RSSI,
			Battery:   props.Battery,
			Origin:    origin,
		})
		return
	}

	rec := &r.records[idx]
	rec.Alias = props.Alias
	rec.Connected = props.Connected
	rec.Trusted = props.Trusted
	rec.Bonded = props.Bonded
	rec.Paired = props.Paired
	if props.RSSI != nil {
		rec.RSSI = props.RSSI
	}
	if props.Battery != nil {
		rec.Battery = props.Battery
	}
}

func (r *DeviceRegistry) applyChange(change *DeviceChange) {
	address := canonicalAddress(change.Address)
	if address == "" {
		return
	}
	idx, ok := r.index[address]
	if !ok {
		// a change for a device we never saw added still proves the
		// device exists on the bus
		rec := DeviceRecord{Address: address, Origin: OriginDiscovered}
		if change.Alias != nil {
			rec.Alias = *change.Alias
		}
		if change.Connected != nil {
			rec.Connected = *change.Connected
		}
		rec.RSSI = change.RSSI
		rec.Battery = change.Battery
		r.index[address] = len(r.records)
		r.records = append(r.records, rec)
		return
	}

	rec := &r.records[idx]
	if change.Alias != nil {
		rec.Alias = *change.Alias
	}
	if change.Connected != nil {
		rec.Connected = *change.Connected
	}
	if change.RSSI != nil {
		rec.RSSI = change.RSSI
	}
	if change.Battery != nil {
		rec.Battery = change.Battery
	}
}

// AliasFor returns the display alias of a record, applying the
// dash-formatted address fallback.
func (r *DeviceRegistry) AliasFor(rec DeviceRecord) string {
	return rec.DisplayAlias()
}

// Snapshot returns a copy of the current ordered sequence. Safe to call
// between folds; the result does not alias registry state.
func (r *DeviceRegistry) Snapshot() ScanSnapshot {
	snapshot := make(ScanSnapshot, len(r.records))
	copy(snapshot, r.records)
	return snapshot
}
