// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"github.com/Thermoquad/conterm/pkg/capture"
	"github.com/Thermoquad/conterm/pkg/conterm"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
)

// pollInterval paces non-blocking polls so an idle console does not spin
const pollInterval = 10 * time.Millisecond

var (
	keylogNonBlocking bool
	keylogShowIdle    bool
	recordFile        string
	quitKeyName       string
)

var (
	unknownKeyStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true)
	escapeKeyStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	idleStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

var keylogCmd = &cobra.Command{
	Use:   "keylog",
	Short: "Decode and display console keystrokes",
	Long: `Continuously decode the console byte stream into keys and print one line
per key, with the raw bytes each key consumed.

Unknown escape sequences are highlighted. Use --nonblocking to poll the way a
main loop would, and --show-idle to see the polls that found no data.

With --record, every byte read is saved to a capture file that the replay
command decodes offline with the recorded timing.`,
	RunE: runKeylog,
}

func init() {
	rootCmd.AddCommand(keylogCmd)
	keylogCmd.Flags().BoolVar(&keylogNonBlocking, "nonblocking", false, "Poll without waiting for a key")
	keylogCmd.Flags().BoolVar(&keylogShowIdle, "show-idle", false, "Print polls and waits that returned no key")
	keylogCmd.Flags().StringVar(&recordFile, "record", "", "Record the session to a capture file")
	keylogCmd.Flags().StringVar(&quitKeyName, "quit-key", "ctrl+c", "Key that ends the session (empty to disable)")
}

// parseQuitKey resolves --quit-key; KeyNone disables it
func parseQuitKey(name string) (conterm.Key, error) {
	if name == "" {
		return conterm.KeyNone, nil
	}
	k, err := conterm.ParseKey(name)
	if err != nil {
		return conterm.KeyNone, fmt.Errorf("invalid --quit-key: %v", err)
	}
	return k, nil
}

// quitKeyHint names the quit key and the bytes a terminal sends for it
func quitKeyHint(k conterm.Key) string {
	if seq := conterm.EncodeKey(k); seq != nil {
		return fmt.Sprintf("%s (%s)", k, conterm.FormatRaw(seq))
	}
	return k.String()
}

// formatKeyLine renders one decoded event, highlighting what needs attention
func formatKeyLine(ev conterm.KeyEvent, raw []byte) string {
	line := conterm.FormatEvent(ev, raw)
	switch {
	case ev.Key == conterm.KeyUnknown:
		return unknownKeyStyle.Render(line[:len(line)-1]) + "\n"
	case ev.Key != conterm.KeyEscape && bytes.IndexByte(raw, conterm.ByteEsc) >= 0:
		return escapeKeyStyle.Render(line[:len(line)-1]) + "\n"
	}
	return line
}

// endOfStream reports whether err means the remote end went away cleanly
func endOfStream(err error) bool {
	return errors.Is(err, ErrConnectionClosed) || errors.Is(err, io.EOF)
}

func runKeylog(cmd *cobra.Command, args []string) error {
	quitKey, err := parseQuitKey(quitKeyName)
	if err != nil {
		return err
	}

	conn, connInfo, err := OpenConnection()
	if err != nil {
		return err
	}
	defer conn.Close()

	out := reportWriter(conn)
	cfg := sessionConfig()

	fmt.Fprintf(out, "Conterm - Key Log\n")
	fmt.Fprintf(out, "Connection: %s\n", connInfo)
	if quitKey != conterm.KeyNone {
		fmt.Fprintf(out, "Press %s to exit\n", quitKeyHint(quitKey))
	}
	fmt.Fprintln(out)

	src := newByteSource(conn)
	var input conterm.ByteSource = src
	var rec *capture.Recorder
	if recordFile != "" {
		rec = capture.NewRecorder(src, cfg.Rows, cfg.Cols)
		input = rec
	}

	session := conterm.NewSession(input, conn, cfg)
	stats := conterm.NewStatistics()
	session.Decoder.SetStatistics(stats)

	stop := watchSignals()
	defer stop.Stop()

	var readErr error
	for !stop.Raised() {
		ev := session.ReadKey(!keylogNonBlocking)
		if ev.IsNoData() {
			if err := src.Err(); err != nil {
				if !endOfStream(err) {
					readErr = err
				}
				break
			}
			if keylogShowIdle {
				line := conterm.FormatEvent(ev, session.Decoder.Raw())
				fmt.Fprintln(out, idleStyle.Render(line[:len(line)-1]))
			}
			if keylogNonBlocking {
				time.Sleep(pollInterval)
			}
			continue
		}

		fmt.Fprint(out, formatKeyLine(ev, session.Decoder.Raw()))
		if quitKey != conterm.KeyNone && ev.Key == quitKey {
			break
		}
	}

	fmt.Fprintln(out)
	fmt.Fprint(out, stats.String())

	if rec != nil {
		if err := saveCapture(recordFile, rec.Capture()); err != nil {
			return err
		}
		log.Printf("Recorded %d bytes to %s", rec.Capture().Len(), recordFile)
		fmt.Fprintf(out, "Recorded %d bytes to %s\n", rec.Capture().Len(), recordFile)
	}

	if readErr != nil {
		return fmt.Errorf("read error: %v", readErr)
	}
	return nil
}

// saveCapture writes c to path
func saveCapture(path string, c *capture.Capture) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create capture file %s: %v", path, err)
	}
	if err := c.Save(f); err != nil {
		f.Close()
		return fmt.Errorf("failed to write capture file %s: %v", path, err)
	}
	return f.Close()
}
