// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"errors"
	"time"

	"github.com/Thermoquad/conterm/pkg/conterm"
	"github.com/spf13/cobra"
)

var (
	// Serial connection flags
	portName string
	baudRate int

	// WebSocket connection flags
	wsURL         string
	wsUsername    string
	wsNoSSLVerify bool

	// Local terminal flag
	useStdin bool

	// Session flags
	termRows         uint
	termCols         uint
	keyTimeout       time.Duration
	escapeTimeout    time.Duration
	fixRelativeMoves bool

	// Logging flags
	logFile       string
	logMaxSize    int
	logMaxBackups int
)

var rootCmd = &cobra.Command{
	Use:   "conterm",
	Short: "Serial console key decoder and terminal tester",
	Long: `Conterm - A CLI tool for decoding and exercising serial console terminals.

Decodes the raw byte stream of a console into logical keys (printable
characters, control keys and ANSI escape sequences), records and replays
console sessions, and drives the ANSI cursor renderer against a real terminal.

Connection modes:
  Serial:    --port /dev/ttyUSB0 [--baud 115200]
  WebSocket: --url ws://host/path [--username user]
  Local:     --stdin (this terminal, in raw mode)

For WebSocket authentication, the password is read from the CONTERM_PASSWORD
environment variable, or prompted interactively if not set. The --password
flag is intentionally not provided to avoid leaking credentials in shell history.`,
	Version: "1.0.0",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return setupLogging()
	},
}

func init() {
	// Serial connection flags
	rootCmd.PersistentFlags().StringVarP(&portName, "port", "p", "", "Serial port device")
	rootCmd.PersistentFlags().IntVarP(&baudRate, "baud", "b", 115200, "Baud rate (serial only)")

	// WebSocket connection flags
	rootCmd.PersistentFlags().StringVarP(&wsURL, "url", "u", "", "WebSocket URL (ws:// or wss://)")
	rootCmd.PersistentFlags().StringVar(&wsUsername, "username", "", "Username for HTTP Basic auth")
	rootCmd.PersistentFlags().BoolVar(&wsNoSSLVerify, "no-ssl-verify", false, "Skip TLS certificate verification (wss:// only)")

	rootCmd.PersistentFlags().BoolVar(&useStdin, "stdin", false, "Use this terminal in raw mode instead of a remote console")

	// Session flags
	rootCmd.PersistentFlags().UintVar(&termRows, "rows", conterm.DefaultRows, "Terminal lines")
	rootCmd.PersistentFlags().UintVar(&termCols, "cols", conterm.DefaultCols, "Terminal columns")
	rootCmd.PersistentFlags().DurationVar(&keyTimeout, "key-timeout", conterm.DefaultKeyTimeout, "Wait for the first byte of a key")
	rootCmd.PersistentFlags().DurationVar(&escapeTimeout, "escape-timeout", conterm.DefaultEscapeTimeout, "Wait for each byte after ESC")
	rootCmd.PersistentFlags().BoolVar(&fixRelativeMoves, "fix-relative-moves", false, "Track left/right cursor moves in their real direction")

	// Logging flags
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "", "Write diagnostics to a rotating log file")
	rootCmd.PersistentFlags().IntVar(&logMaxSize, "log-max-size", 10, "Log file size in MB before rotation")
	rootCmd.PersistentFlags().IntVar(&logMaxBackups, "log-max-backups", 3, "Rotated log files to keep")
}

// sessionConfig builds the core session configuration from flags
func sessionConfig() conterm.Config {
	cfg := conterm.DefaultConfig()
	if termRows > 0 {
		cfg.Rows = termRows
	}
	if termCols > 0 {
		cfg.Cols = termCols
	}
	if keyTimeout > 0 {
		cfg.KeyTimeout = keyTimeout
	}
	if escapeTimeout > 0 {
		cfg.EscapeTimeout = escapeTimeout
	}
	cfg.CorrectRelativeMoves = fixRelativeMoves
	return cfg
}

// Exit codes
const (
	ExitOK              = 0
	ExitFailure         = 1
	ExitConnectionError = 2
)

// ExitCode maps an error returned by Execute to a process exit code
func ExitCode(err error) int {
	if err == nil {
		return ExitOK
	}
	var connErr *ConnectionError
	if errors.As(err, &connErr) {
		return ExitConnectionError
	}
	return ExitFailure
}

// Execute runs the root command
func Execute() error {
	defer closeLogging()
	return rootCmd.Execute()
}
