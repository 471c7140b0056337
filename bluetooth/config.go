// SPDX-FileCopyrightText: 2026 btctl Authors
//
// SPDX-License-Identifier: GPL-3.0-or-later

package bluetooth

import (
	"github.com/davecgh/go-spew/spew"
	"github.com/linuxdeepin/go-lib/log"
	"github.com/linuxdeepin/go-lib/utils"
)

// Defaults are the optional user defaults for flag values. The file is
// only ever read; this program persists no state of its own.
type Defaults struct {
	core utils.Config

	// ScanDuration in seconds, 0 means unset.
	ScanDuration uint
	// Columns is the default projection, empty means the per-command
	// defaults.
	Columns []string
}

// LoadDefaults reads the defaults file at path. A missing or broken
// file yields zero defaults; that is the common case and only worth a
// debug line.
func LoadDefaults(path string) *Defaults {
	d := &Defaults{}
	d.core.SetConfigFile(path)
	err := d.core.Load(d)
	if err != nil {
		logger.Debug("no defaults config loaded:", err)
		return d
	}
	if logger.GetLogLevel() == log.LevelDebug {
		logger.Debugf("loaded defaults from %s: %s", path, spew.Sdump(d.ScanDuration, d.Columns))
	}
	return d
}
