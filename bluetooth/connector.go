// SPDX-FileCopyrightText: 2026 btctl Authors
//
// SPDX-License-Identifier: GPL-3.0-or-later

package bluetooth

import (
	"fmt"
)

// OutcomeStatus classifies the result of one per-device operation.
type OutcomeStatus uint32

const (
	OutcomeSucceeded OutcomeStatus = iota
	OutcomeFailed
	// OutcomeDisconnectedNotRemoved: the forced removal failed after the
	// disconnect already succeeded. Partial progress, distinct from a
	// plain failure.
	OutcomeDisconnectedNotRemoved
)

func (s OutcomeStatus) String() string {
	switch s {
	case OutcomeSucceeded:
		return "succeeded"
	case OutcomeFailed:
		return "failed"
	case OutcomeDisconnectedNotRemoved:
		return "disconnected but not removed"
	default:
		return fmt.Sprintf("Unknown(%d)", uint32(s))
	}
}

// Outcome is the per-device result of a batch operation. Err is set for
// everything but OutcomeSucceeded.
type Outcome struct {
	Address string
	Status  OutcomeStatus
	Err     error
}

// Connector drives connect, disconnect and forced removal against
// resolved device addresses, one bus call at a time, in caller order.
type Connector struct {
	bus Bus
}

func NewConnector(bus Bus) *Connector {
	return &Connector{bus: bus}
}

// ConnectOne attempts to connect a single device.
func (c *Connector) ConnectOne(address string) Outcome {
	err := c.bus.ConnectDevice(address)
	if err != nil {
		logger.Warningf("connect %s failed: %v", address, err)
		return Outcome{Address: address, Status: OutcomeFailed, Err: err}
	}
	return Outcome{Address: address, Status: OutcomeSucceeded}
}

// ConnectMany connects each address independently; one failure does not
// abort the remaining addresses.
func (c *Connector) ConnectMany(addresses []string) []Outcome {
	outcomes := make([]Outcome, 0, len(addresses))
	for _, address := range addresses {
		outcomes = append(outcomes, c.ConnectOne(address))
	}
	return outcomes
}

// DisconnectMany disconnects each address independently, best effort.
// With force set, a successful disconnect is followed by removing the
// device from the adapter; a removal failure after a successful
// disconnect is reported as OutcomeDisconnectedNotRemoved.
func (c *Connector) DisconnectMany(addresses []string, force bool) []Outcome {
	outcomes := make([]Outcome, 0, len(addresses))
	for _, address := range addresses {
		err := c.bus.DisconnectDevice(address)
		if err != nil {
			logger.Warningf("disconnect %s failed: %v", address, err)
			outcomes = append(outcomes, Outcome{Address: address, Status: OutcomeFailed, Err: err})
			continue
		}
		if !force {
			outcomes = append(outcomes, Outcome{Address: address, Status: OutcomeSucceeded})
			continue
		}
		err = c.bus.RemoveDevice(address)
		if err != nil {
			logger.Warningf("remove %s failed after disconnect: %v", address, err)
			outcomes = append(outcomes, Outcome{Address: address, Status: OutcomeDisconnectedNotRemoved, Err: err})
			continue
		}
		outcomes = append(outcomes, Outcome{Address: address, Status: OutcomeSucceeded})
	}
	return outcomes
}

// AnyFailed reports whether the batch fell short of full success; a
// partial forced removal counts, the user asked for more than happened.
func AnyFailed(outcomes []Outcome) bool {
	for _, o := range outcomes {
		if o.Status != OutcomeSucceeded {
			return true
		}
	}
	return false
}
