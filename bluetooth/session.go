// SPDX-FileCopyrightText: 2026 btctl Authors
//
// SPDX-License-Identifier: GPL-3.0-or-later

package bluetooth

import (
	"fmt"
	"sync"
	"time"

	"github.com/linuxdeepin/go-lib/log"
	"golang.org/x/xerrors"
)

const (
	minScanDuration = 1 * time.Second
	maxScanDuration = 60 * time.Second
)

// how often the elapsed-duration condition is rechecked while waiting
// for events
const sessionTickInterval = 200 * time.Millisecond

type sessionState uint32

const (
	sessionIdle sessionState = iota
	sessionScanning
	sessionDraining
	sessionClosed
)

func (s sessionState) String() string {
	switch s {
	case sessionIdle:
		return "Idle"
	case sessionScanning:
		return "Scanning"
	case sessionDraining:
		return "Draining"
	case sessionClosed:
		return "Closed"
	default:
		return fmt.Sprintf("Unknown(%d)", uint32(s))
	}
}

// DiscoverySession runs one time-bounded scan: it starts discovery,
// seeds a fresh registry with the adapter's known devices, folds live
// notifications for the configured duration, then stops discovery and
// returns the snapshot. A session is single use; re-scanning means
// creating a new one.
type DiscoverySession struct {
	bus      Bus
	duration time.Duration
	registry *DeviceRegistry
	state    sessionState

	cancel     chan struct{}
	cancelOnce sync.Once
	done       chan struct{}
}

// NewDiscoverySession validates the duration bound before anything
// touches the bus.
func NewDiscoverySession(bus Bus, duration time.Duration) (*DiscoverySession, error) {
	if duration < minScanDuration || duration > maxScanDuration {
		return nil, xerrors.Errorf("scan duration %v out of range: %w", duration, ErrInvalidDuration)
	}
	return &DiscoverySession{
		bus:      bus,
		duration: duration,
		registry: NewDeviceRegistry(),
		cancel:   make(chan struct{}),
		done:     make(chan struct{}),
	}, nil
}

// Cancel asks a running session to drain early. The session still stops
// discovery and returns the snapshot accumulated so far.
func (s *DiscoverySession) Cancel() {
	s.cancelOnce.Do(func() {
		close(s.cancel)
	})
}

// Run drives the session through Idle, Scanning, Draining and Closed.
// A start failure aborts before Scanning; a stop failure during the
// drain is logged and the partial snapshot is still returned.
func (s *DiscoverySession) Run() (ScanSnapshot, error) {
	if s.state != sessionIdle {
		return nil, xerrors.Errorf("discovery session already ran (state %s)", s.state)
	}
	// done lets waiters (the interrupt watcher) stop with the session
	defer close(s.done)

	err := s.bus.StartDiscovery()
	if err != nil {
		s.state = sessionClosed
		return nil, err
	}
	s.state = sessionScanning

	events, unsubscribe, err := s.bus.SubscribeDeviceEvents()
	if err != nil {
		s.drain(nil)
		return nil, err
	}

	known, err := s.bus.ListKnownDevices()
	if err != nil {
		s.drain(unsubscribe)
		return nil, err
	}
	s.registry.Seed(known)
	logger.Debugf("scanning for %v, seeded %d known devices", s.duration, len(known))

	deadline := time.Now().Add(s.duration)
	ticker := time.NewTicker(sessionTickInterval)
	defer ticker.Stop()

loop:
	for time.Now().Before(deadline) {
		select {
		case ev, ok := <-events:
			if !ok {
				break loop
			}
			s.registry.Fold(ev)
		case <-ticker.C:
		case <-s.cancel:
			logger.Debug("scan cancelled, draining early")
			break loop
		}
	}

	s.drain(unsubscribe)
	snapshot := s.registry.Snapshot()
	if logger.GetLogLevel() == log.LevelDebug {
		logger.Debug("scan snapshot:", marshalJSON(snapshot))
	}
	return snapshot, nil
}

// drain always issues StopDiscovery so no dangling discovery is left on
// the bus, even when the session failed half way in.
func (s *DiscoverySession) drain(unsubscribe func()) {
	s.state = sessionDraining
	if unsubscribe != nil {
		unsubscribe()
	}
	err := s.bus.StopDiscovery()
	if err != nil {
		logger.Warning("stop discovery failed:", err)
	}
	s.state = sessionClosed
}
