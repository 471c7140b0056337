// SPDX-FileCopyrightText: 2026 btctl Authors
//
// SPDX-License-Identifier: GPL-3.0-or-later

package bluetooth

import (
	"github.com/linuxdeepin/go-lib/log"
)

var logger = log.NewLogger("btctl/bluetooth")

// SetLogLevel raises or lowers the package log level, normally from the
// -v flag of the command line entry.
func SetLogLevel(level log.Priority) {
	logger.SetLogLevel(level)
}
