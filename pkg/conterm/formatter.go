// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package conterm

import (
	"fmt"
	"strings"
	"time"
)

// FormatEvent formats a key event and the bytes it consumed into a
// human-readable line
func FormatEvent(ev KeyEvent, raw []byte) string {
	return FormatEventAt(time.Now(), ev, raw)
}

// FormatEventAt is FormatEvent with an explicit timestamp
func FormatEventAt(ts time.Time, ev KeyEvent, raw []byte) string {
	timestamp := ts.Format("15:04:05.000")

	name := strings.ToUpper(ev.Key.String())
	if ev.Key == KeyRune {
		name = fmt.Sprintf("CHAR %s", ev)
	}

	return fmt.Sprintf("[%s] %-12s %s\n", timestamp, name, FormatRaw(raw))
}

// FormatRaw returns a hex dump of raw input bytes with printable bytes
// shown alongside
func FormatRaw(raw []byte) string {
	if len(raw) == 0 {
		return "(no bytes)"
	}

	var hex, text strings.Builder
	for i, b := range raw {
		if i > 0 {
			hex.WriteByte(' ')
		}
		fmt.Fprintf(&hex, "%02X", b)
		switch {
		case b == ByteEsc:
			text.WriteString("ESC")
		case isPrintable(b):
			text.WriteByte(b)
		default:
			text.WriteByte('.')
		}
	}
	return fmt.Sprintf("len=%d [%s] %q", len(raw), hex.String(), text.String())
}
