// SPDX-FileCopyrightText: 2026 btctl Authors
//
// SPDX-License-Identifier: GPL-3.0-or-later

package main

import (
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"btctl/bluetooth"

	"github.com/linuxdeepin/go-lib/log"
	"github.com/linuxdeepin/go-lib/xdg/basedir"
)

var logger = log.NewLogger("btctl")

const fallbackScanDuration = 5 * time.Second

func usage() {
	fmt.Fprintf(os.Stderr, `usage: btctl [-v] <command> [options] [args]

commands:
  status              show adapter power state and connected devices (default)
  toggle              flip the adapter power state
  list-devices, ls    list known devices
  scan, sc            discover nearby devices
  connect, c          connect devices, interactively or by alias
  disconnect, d       disconnect devices, interactively or by alias

global options:
  -v    verbose logging
`)
}

func main() {
	err := run(os.Args[1:])
	if err == flag.ErrHelp {
		return
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "btctl: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	global := flag.NewFlagSet("btctl", flag.ContinueOnError)
	global.Usage = usage
	verbose := global.Bool("v", false, "verbose logging")
	err := global.Parse(args)
	if err != nil {
		return err
	}
	if *verbose {
		logger.SetLogLevel(log.LevelDebug)
		bluetooth.SetLogLevel(log.LevelDebug)
	}
	args = global.Args()

	cmd := "status"
	if len(args) > 0 {
		cmd = args[0]
		args = args[1:]
	}

	defaults := bluetooth.LoadDefaults(defaultsPath())

	switch cmd {
	case "status":
		return withBus(func(bus bluetooth.Bus) error {
			return bluetooth.Status(bus, os.Stdout)
		})
	case "toggle":
		return withBus(func(bus bluetooth.Bus) error {
			return bluetooth.Toggle(bus, os.Stdout)
		})
	case "list-devices", "ls":
		return runListDevices(args, defaults)
	case "scan", "sc":
		return runScan(args, defaults)
	case "connect", "c":
		return runConnect(args, defaults)
	case "disconnect", "d":
		return runDisconnect(args)
	case "help":
		usage()
		return nil
	default:
		usage()
		return fmt.Errorf("unknown command %q", cmd)
	}
}

func runListDevices(args []string, defaults *bluetooth.Defaults) error {
	fs := flag.NewFlagSet("list-devices", flag.ContinueOnError)
	columns := fs.String("columns", "", "comma-separated columns for table output")
	values := fs.String("values", "", "comma-separated columns for terse output")
	status := fs.String("status", "", "comma-separated status filters (connected,trusted,bonded,paired)")
	err := fs.Parse(args)
	if err != nil {
		return err
	}
	opts := bluetooth.ListDevicesOptions{
		Columns: columnsOrDefault(*columns, defaults),
		Values:  bluetooth.SplitCommaList(*values),
		Status:  bluetooth.SplitCommaList(*status),
	}
	return withBus(func(bus bluetooth.Bus) error {
		return bluetooth.ListDevices(bus, os.Stdout, opts)
	})
}

func runScan(args []string, defaults *bluetooth.Defaults) error {
	fs := flag.NewFlagSet("scan", flag.ContinueOnError)
	duration := fs.Uint("duration", 0, "scan duration in seconds (1-60)")
	columns := fs.String("columns", "", "comma-separated columns for table output")
	values := fs.String("values", "", "comma-separated columns for terse output")
	err := fs.Parse(args)
	if err != nil {
		return err
	}
	opts := bluetooth.ScanOptions{
		Duration:  scanDuration(*duration, defaults),
		Columns:   columnsOrDefault(*columns, defaults),
		Values:    bluetooth.SplitCommaList(*values),
		Interrupt: interruptChan(),
	}
	return withBus(func(bus bluetooth.Bus) error {
		return bluetooth.Scan(bus, os.Stdout, opts)
	})
}

func runConnect(args []string, defaults *bluetooth.Defaults) error {
	fs := flag.NewFlagSet("connect", flag.ContinueOnError)
	duration := fs.Uint("duration", 0, "scan duration in seconds (1-60)")
	containsName := fs.String("contains-name", "", "only offer devices whose alias contains the given text")
	err := fs.Parse(args)
	if err != nil {
		return err
	}
	opts := bluetooth.ConnectOptions{
		Aliases:    fs.Args(),
		Duration:   scanDuration(*duration, defaults),
		NameFilter: *containsName,
		Interrupt:  interruptChan(),
	}
	return withBus(func(bus bluetooth.Bus) error {
		return bluetooth.Connect(bus, os.Stdout, os.Stdin, opts)
	})
}

func runDisconnect(args []string) error {
	fs := flag.NewFlagSet("disconnect", flag.ContinueOnError)
	force := fs.Bool("force", false, "remove the device after disconnecting")
	err := fs.Parse(args)
	if err != nil {
		return err
	}
	opts := bluetooth.DisconnectOptions{
		Aliases: fs.Args(),
		Force:   *force,
	}
	return withBus(func(bus bluetooth.Bus) error {
		return bluetooth.Disconnect(bus, os.Stdout, os.Stdin, opts)
	})
}

func withBus(fn func(bus bluetooth.Bus) error) error {
	client, err := bluetooth.NewBluezClient()
	if err != nil {
		return err
	}
	defer client.Close()
	return fn(client)
}

// scanDuration resolves the effective scan duration: flag, then the
// config file default, then the built-in fallback.
func scanDuration(flagSeconds uint, defaults *bluetooth.Defaults) time.Duration {
	if flagSeconds > 0 {
		return time.Duration(flagSeconds) * time.Second
	}
	if defaults.ScanDuration > 0 {
		return time.Duration(defaults.ScanDuration) * time.Second
	}
	return fallbackScanDuration
}

func columnsOrDefault(flagValue string, defaults *bluetooth.Defaults) []string {
	cols := bluetooth.SplitCommaList(flagValue)
	if len(cols) == 0 {
		cols = defaults.Columns
	}
	return cols
}

func defaultsPath() string {
	return filepath.Join(basedir.GetUserConfigDir(), "btctl", "config.json")
}

// interruptChan closes the returned channel on the first SIGINT or
// SIGTERM so an in-flight scan can drain instead of dying mid-session.
func interruptChan() <-chan struct{} {
	interrupted := make(chan struct{})
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logger.Info("received signal, stopping discovery:", sig)
		signal.Stop(sigCh)
		close(interrupted)
	}()
	return interrupted
}
