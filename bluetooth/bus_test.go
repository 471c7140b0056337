// SPDX-FileCopyrightText: 2026 btctl Authors
//
// SPDX-License-Identifier: GPL-3.0-or-later

package bluetooth

// fakeBus scripts the transport for tests. Known devices and queued
// events are fixed up front; failing maps a method name to the error it
// should return. Every call is recorded in order.
type fakeBus struct {
	powered bool
	known   []RawDeviceProps
	events  []DeviceEvent
	// keepOpen leaves the event channel open so the session has to end
	// through its deadline or a cancel, not through channel close.
	keepOpen bool
	failing  map[string]error

	calls        []string
	connected    []string
	disconnected []string
	removed      []string
}

var _ Bus = (*fakeBus)(nil)

func (f *fakeBus) call(name string) error {
	f.calls = append(f.calls, name)
	return f.failing[name]
}

func (f *fakeBus) ListKnownDevices() ([]RawDeviceProps, error) {
	err := f.call("ListKnownDevices")
	if err != nil {
		return nil, err
	}
	return f.known, nil
}

func (f *fakeBus) StartDiscovery() error {
	return f.call("StartDiscovery")
}

func (f *fakeBus) StopDiscovery() error {
	return f.call("StopDiscovery")
}

// SubscribeDeviceEvents delivers the queued events and closes the
// channel, so a session folds everything and finishes without waiting
// out its full duration.
func (f *fakeBus) SubscribeDeviceEvents() (<-chan DeviceEvent, func(), error) {
	err := f.call("SubscribeDeviceEvents")
	if err != nil {
		return nil, nil, err
	}
	ch := make(chan DeviceEvent, len(f.events)+1)
	for _, ev := range f.events {
		ch <- ev
	}
	if !f.keepOpen {
		close(ch)
	}
	return ch, func() {}, nil
}

func (f *fakeBus) AdapterPowered() (bool, error) {
	err := f.call("AdapterPowered")
	if err != nil {
		return false, err
	}
	return f.powered, nil
}

func (f *fakeBus) SetAdapterPowered(powered bool) error {
	err := f.call("SetAdapterPowered")
	if err != nil {
		return err
	}
	f.powered = powered
	return nil
}

func (f *fakeBus) ConnectDevice(address string) error {
	err := f.call("ConnectDevice")
	if err == nil {
		f.connected = append(f.connected, address)
	}
	return err
}

func (f *fakeBus) DisconnectDevice(address string) error {
	err := f.call("DisconnectDevice")
	if err == nil {
		f.disconnected = append(f.disconnected, address)
	}
	return err
}

func (f *fakeBus) RemoveDevice(address string) error {
	err := f.call("RemoveDevice")
	if err == nil {
		f.removed = append(f.removed, address)
	}
	return err
}

func int16Ptr(v int16) *int16 { return &v }
func uint8Ptr(v uint8) *uint8 { return &v }
func strPtr(v string) *string { return &v }
func boolPtr(v bool) *bool    { return &v }
