// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/Thermoquad/conterm/pkg/capture"
	"github.com/Thermoquad/conterm/pkg/conterm"
	"github.com/spf13/cobra"
)

var (
	replayShowIdle bool
	replaySummary  bool
)

var replayCmd = &cobra.Command{
	Use:   "replay FILE",
	Short: "Decode a recorded session offline",
	Long: `Decode a capture file written by keylog --record and print the keys it
contains, followed by statistics.

Replay runs on the recorded timing without sleeping, so a lone ESC and an
escape sequence decode exactly as they did live. The --key-timeout and
--escape-timeout flags apply, which makes replay a way to check how a
different escape timeout would have split the same input.`,
	Args: cobra.ExactArgs(1),
	RunE: runReplay,
}

func init() {
	rootCmd.AddCommand(replayCmd)
	replayCmd.Flags().BoolVar(&replayShowIdle, "show-idle", false, "Print waits that returned no key")
	replayCmd.Flags().BoolVar(&replaySummary, "summary", false, "Print a one-line summary instead of full statistics")
}

// loadCapture reads a capture file from path
func loadCapture(path string) (*capture.Capture, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open capture file %s: %v", path, err)
	}
	defer f.Close()

	c, err := capture.Load(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return c, nil
}

// replayCapture decodes c and writes one line per event to out
func replayCapture(c *capture.Capture, cfg conterm.Config, showIdle bool, out io.Writer) *conterm.Statistics {
	if c.Rows > 0 {
		cfg.Rows = c.Rows
	}
	if c.Cols > 0 {
		cfg.Cols = c.Cols
	}

	player := capture.NewPlayer(c)
	session := conterm.NewSession(player, io.Discard, cfg)
	stats := conterm.NewStatistics()
	session.Decoder.SetStatistics(stats)

	start := c.StartTime()
	for {
		ev := session.ReadKey(true)
		at := start.Add(player.Elapsed())
		if ev.IsNoData() {
			if player.Done() {
				break
			}
			if showIdle {
				fmt.Fprint(out, conterm.FormatEventAt(at, ev, session.Decoder.Raw()))
			}
			continue
		}
		fmt.Fprint(out, conterm.FormatEventAt(at, ev, session.Decoder.Raw()))
	}

	// Rates over recorded time rather than replay time
	stats.StartTime = time.Now().Add(-player.Elapsed())
	return stats
}

func runReplay(cmd *cobra.Command, args []string) error {
	c, err := loadCapture(args[0])
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Conterm - Replay\n")
	fmt.Fprintf(out, "File: %s (%d bytes over %s, recorded %s)\n\n",
		args[0], c.Len(), c.Duration(), c.StartTime().Format(time.RFC3339))

	stats := replayCapture(c, sessionConfig(), replayShowIdle, out)

	fmt.Fprintln(out)
	if replaySummary {
		fmt.Fprintln(out, stats.Summary())
		return nil
	}
	fmt.Fprint(out, stats.String())
	return nil
}
