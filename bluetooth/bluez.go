// SPDX-FileCopyrightText: 2026 btctl Authors
//
// SPDX-License-Identifier: GPL-3.0-or-later

package bluetooth

import (
	"sort"
	"sync"

	"github.com/godbus/dbus/v5"
	bluez "github.com/linuxdeepin/go-dbus-factory/system/org.bluez"
	"github.com/linuxdeepin/go-lib/dbusutil"
	"github.com/linuxdeepin/go-lib/dbusutil/proxy"
	"golang.org/x/xerrors"
)

const (
	bluezAdapterDBusInterface = "org.bluez.Adapter1"
	bluezDeviceDBusInterface  = "org.bluez.Device1"
	bluezBatteryDBusInterface = "org.bluez.Battery1"
)

// deviceEventChanSize matches the signal loop capacity; a full channel
// drops the event instead of blocking the signal dispatch.
const deviceEventChanSize = 100

// Bus is the transport boundary every other component is written
// against. BluezClient is the production implementation.
type Bus interface {
	ListKnownDevices() ([]RawDeviceProps, error)
	StartDiscovery() error
	StopDiscovery() error
	SubscribeDeviceEvents() (<-chan DeviceEvent, func(), error)
	AdapterPowered() (bool, error)
	SetAdapterPowered(powered bool) error
	ConnectDevice(address string) error
	DisconnectDevice(address string) error
	RemoveDevice(address string) error
}

// BluezClient wraps the org.bluez service on the system bus. It holds no
// device-merge logic; property bags are decoded into RawDeviceProps at
// this boundary and handed over as-is.
type BluezClient struct {
	conn          *dbus.Conn
	sigLoop       *dbusutil.SignalLoop
	objectManager bluez.ObjectManager
	adapter       bluez.HCI
	adapterPath   dbus.ObjectPath

	mu          sync.Mutex
	discovering bool
	events      chan DeviceEvent
	watched     []bluez.Device
}

var _ Bus = (*BluezClient)(nil)

func NewBluezClient() (*BluezClient, error) {
	sysBus, err := dbus.SystemBus()
	if err != nil {
		return nil, xerrors.Errorf("%v: %w", err, ErrAdapterUnavailable)
	}

	c := &BluezClient{
		conn:    sysBus,
		sigLoop: dbusutil.NewSignalLoop(sysBus, deviceEventChanSize),
	}
	c.sigLoop.Start()
	c.objectManager = bluez.NewObjectManager(sysBus)

	c.adapterPath, err = c.defaultAdapterPath()
	if err != nil {
		c.sigLoop.Stop()
		return nil, err
	}
	c.adapter, err = bluez.NewHCI(sysBus, c.adapterPath)
	if err != nil {
		c.sigLoop.Stop()
		return nil, xerrors.Errorf("%v: %w", err, ErrAdapterUnavailable)
	}
	logger.Debug("using adapter", c.adapterPath)
	return c, nil
}

// Close tears down any remaining subscription and stops the signal loop.
func (c *BluezClient) Close() {
	c.unsubscribeDeviceEvents()
	c.sigLoop.Stop()
}

func (c *BluezClient) defaultAdapterPath() (dbus.ObjectPath, error) {
	objects, err := c.objectManager.GetManagedObjects(0)
	if err != nil {
		return "", xerrors.Errorf("%v: %w", err, ErrAdapterUnavailable)
	}
	var paths []dbus.ObjectPath
	for path, ifaces := range objects {
		if _, ok := ifaces[bluezAdapterDBusInterface]; ok {
			paths = append(paths, path)
		}
	}
	if len(paths) == 0 {
		return "", xerrors.Errorf("no adapter object on the bus: %w", ErrAdapterUnavailable)
	}
	// deterministic pick when several radios are present, hci0 sorts first
	sort.Slice(paths, func(i, j int) bool { return paths[i] < paths[j] })
	return paths[0], nil
}

// ListKnownDevices returns every device object the adapter currently
// exposes, visible or not, in object path order.
func (c *BluezClient) ListKnownDevices() ([]RawDeviceProps, error) {
	objects, err := c.objectManager.GetManagedObjects(0)
	if err != nil {
		return nil, xerrors.Errorf("%v: %w", err, ErrAdapterUnavailable)
	}
	var paths []dbus.ObjectPath
	for path, ifaces := range objects {
		if _, ok := ifaces[bluezDeviceDBusInterface]; ok {
			paths = append(paths, path)
		}
	}
	sort.Slice(paths, func(i, j int) bool { return paths[i] < paths[j] })

	devices := make([]RawDeviceProps, 0, len(paths))
	for _, path := range paths {
		raw, ok := decodeDeviceProps(objects[path])
		if !ok {
			logger.Debug("skipping device object without address", path)
			continue
		}
		devices = append(devices, raw)
	}
	return devices, nil
}

func (c *BluezClient) AdapterPowered() (bool, error) {
	powered, err := c.adapter.Adapter().Powered().Get(0)
	if err != nil {
		return false, xerrors.Errorf("%v: %w", err, ErrAdapterUnavailable)
	}
	return powered, nil
}

func (c *BluezClient) SetAdapterPowered(powered bool) error {
	err := c.adapter.Adapter().Powered().Set(0, powered)
	if err != nil {
		return xerrors.Errorf("%v: %w", err, ErrAdapterUnavailable)
	}
	return nil
}

func (c *BluezClient) StartDiscovery() error {
	powered, err := c.AdapterPowered()
	if err != nil {
		return err
	}
	if !powered {
		return xerrors.Errorf("adapter is powered off: %w", ErrAdapterUnavailable)
	}
	err = c.adapter.Adapter().StartDiscovery(0)
	if err != nil {
		return xerrors.Errorf("%v: %w", err, ErrDiscoveryStart)
	}
	c.mu.Lock()
	c.discovering = true
	c.mu.Unlock()
	return nil
}

// StopDiscovery is idempotent: stopping when no discovery was started by
// this client is a no-op, not an error.
func (c *BluezClient) StopDiscovery() error {
	c.mu.Lock()
	wasDiscovering := c.discovering
	c.discovering = false
	c.mu.Unlock()
	if !wasDiscovering {
		return nil
	}
	err := c.adapter.Adapter().StopDiscovery(0)
	if err != nil {
		return xerrors.Errorf("unable to stop device discovery: %w", err)
	}
	return nil
}

// SubscribeDeviceEvents maps the bluez signals (InterfacesAdded plus
// per-device property changes) into one cancellable event channel scoped
// to a single discovery session. The returned func tears the stream down;
// calling it more than once is harmless.
func (c *BluezClient) SubscribeDeviceEvents() (<-chan DeviceEvent, func(), error) {
	c.mu.Lock()
	if c.events != nil {
		c.mu.Unlock()
		return nil, nil, xerrors.New("device event stream already subscribed")
	}
	events := make(chan DeviceEvent, deviceEventChanSize)
	c.events = events
	c.mu.Unlock()

	c.objectManager.InitSignalExt(c.sigLoop, true)
	_, err := c.objectManager.ConnectInterfacesAdded(func(path dbus.ObjectPath, data map[string]map[string]dbus.Variant) {
		raw, ok := decodeDeviceProps(data)
		if !ok {
			return
		}
		logger.Debug("device added", path)
		c.emit(DeviceEvent{Added: &raw})
		c.watchDevice(path, raw.Address)
	})
	if err != nil {
		c.unsubscribeDeviceEvents()
		return nil, nil, xerrors.Errorf("%v: %w", err, ErrAdapterUnavailable)
	}

	// property changes of devices already on the bus are part of the
	// stream too, e.g. RSSI updates for known-and-visible devices
	objects, err := c.objectManager.GetManagedObjects(0)
	if err != nil {
		c.unsubscribeDeviceEvents()
		return nil, nil, xerrors.Errorf("%v: %w", err, ErrAdapterUnavailable)
	}
	for path, ifaces := range objects {
		raw, ok := decodeDeviceProps(ifaces)
		if !ok {
			continue
		}
		c.watchDevice(path, raw.Address)
	}

	return events, c.unsubscribeDeviceEvents, nil
}

func (c *BluezClient) emit(ev DeviceEvent) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.events == nil {
		return
	}
	select {
	case c.events <- ev:
	default:
		logger.Warning("device event channel full, dropping event")
	}
}

func (c *BluezClient) watchDevice(path dbus.ObjectPath, address string) {
	d, err := bluez.NewDevice(c.conn, path)
	if err != nil {
		logger.Warning(err)
		return
	}
	d.InitSignalExt(c.sigLoop, true)

	err = d.Device().Alias().ConnectChanged(func(hasValue bool, value string) {
		if !hasValue {
			return
		}
		alias := value
		c.emit(DeviceEvent{Changed: &DeviceChange{Address: address, Alias: &alias}})
	})
	if err != nil {
		logger.Warning(err)
	}
	err = d.Device().RSSI().ConnectChanged(func(hasValue bool, value int16) {
		if !hasValue {
			return
		}
		rssi := value
		c.emit(DeviceEvent{Changed: &DeviceChange{Address: address, RSSI: &rssi}})
	})
	if err != nil {
		logger.Warning(err)
	}
	err = d.Device().Connected().ConnectChanged(func(hasValue bool, value bool) {
		if !hasValue {
			return
		}
		connected := value
		c.emit(DeviceEvent{Changed: &DeviceChange{Address: address, Connected: &connected}})
	})
	if err != nil {
		logger.Warning(err)
	}

	c.mu.Lock()
	c.watched = append(c.watched, d)
	c.mu.Unlock()
}

func (c *BluezClient) unsubscribeDeviceEvents() {
	c.mu.Lock()
	events := c.events
	watched := c.watched
	c.events = nil
	c.watched = nil
	c.mu.Unlock()
	if events == nil {
		return
	}
	c.objectManager.RemoveAllHandlers()
	for _, d := range watched {
		d.RemoveHandler(proxy.RemoveAllHandlers)
	}
	close(events)
}

func (c *BluezClient) devicePathByAddress(address string) (dbus.ObjectPath, error) {
	address = canonicalAddress(address)
	objects, err := c.objectManager.GetManagedObjects(0)
	if err != nil {
		return "", xerrors.Errorf("%v: %w", err, ErrAdapterUnavailable)
	}
	for path, ifaces := range objects {
		devProps, ok := ifaces[bluezDeviceDBusInterface]
		if !ok {
			continue
		}
		if canonicalAddress(variantString(devProps["Address"])) == address {
			return path, nil
		}
	}
	return "", xerrors.Errorf("%s: %w", address, ErrDeviceNotFound)
}

func (c *BluezClient) ConnectDevice(address string) error {
	path, err := c.devicePathByAddress(address)
	if err != nil {
		return err
	}
	d, err := bluez.NewDevice(c.conn, path)
	if err != nil {
		return xerrors.Errorf("unable to connect to %s: %w", address, err)
	}
	err = d.Device().Connect(0)
	if err != nil {
		return xerrors.Errorf("unable to connect to %s: %w", address, err)
	}
	return nil
}

func (c *BluezClient) DisconnectDevice(address string) error {
	path, err := c.devicePathByAddress(address)
	if err != nil {
		return err
	}
	d, err := bluez.NewDevice(c.conn, path)
	if err != nil {
		return xerrors.Errorf("unable to disconnect from %s: %w", address, err)
	}
	err = d.Device().Disconnect(0)
	if err != nil {
		return xerrors.Errorf("unable to disconnect from %s: %w", address, err)
	}
	return nil
}

func (c *BluezClient) RemoveDevice(address string) error {
	path, err := c.devicePathByAddress(address)
	if err != nil {
		return err
	}
	err = c.adapter.Adapter().RemoveDevice(0, path)
	if err != nil {
		return xerrors.Errorf("unable to remove %s: %w", address, err)
	}
	return nil
}

// decodeDeviceProps maps the loosely typed bluez property bag into
// RawDeviceProps. Objects without the Device1 interface or without an
// Address are rejected. Bonded falls back to Paired on bluez versions
// that predate the Bonded property.
func decodeDeviceProps(ifaces map[string]map[string]dbus.Variant) (RawDeviceProps, bool) {
	devProps, ok := ifaces[bluezDeviceDBusInterface]
	if !ok {
		return RawDeviceProps{}, false
	}
	raw := RawDeviceProps{
		Address:   canonicalAddress(variantString(devProps["Address"])),
		Alias:     variantString(devProps["Alias"]),
		Connected: variantBool(devProps["Connected"]),
		Trusted:   variantBool(devProps["Trusted"]),
		Paired:    variantBool(devProps["Paired"]),
	}
	if raw.Address == "" {
		return RawDeviceProps{}, false
	}
	if v, ok := devProps["Bonded"]; ok {
		raw.Bonded = variantBool(v)
	} else {
		raw.Bonded = raw.Paired
	}
	if v, ok := devProps["RSSI"]; ok {
		if rssi, ok := v.Value().(int16); ok {
			raw.RSSI = &rssi
		}
	}
	if batProps, ok := ifaces[bluezBatteryDBusInterface]; ok {
		if v, ok := batProps["Percentage"]; ok {
			if percentage, ok := v.Value().(uint8); ok {
				raw.Battery = &percentage
			}
		}
	}
	return raw, true
}
