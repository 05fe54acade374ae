// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package conterm

import (
	"fmt"
	"strings"
)

// Key identifies a logical key produced by the decoder
type Key uint8

const (
	// KeyNone means no byte was available (timeout or non-blocking poll)
	KeyNone Key = iota
	// KeyUnknown is returned for any byte or sequence without a mapping
	KeyUnknown
	// KeyRune is a printable character, see KeyEvent.Char
	KeyRune

	KeyUp
	KeyDown
	KeyLeft
	KeyRight
	KeyHome
	KeyEnd
	KeyPageUp
	KeyPageDown
	KeyInsert
	KeyDelete

	KeyEnter
	KeyTab
	KeyBackspace
	KeyEscape

	KeyCtrlA
	KeyCtrlC
	KeyCtrlE
	KeyCtrlK
	KeyCtrlT
	KeyCtrlU
	KeyCtrlZ

	keyCount
)

var keyNames = [keyCount]string{
	KeyNone:      "none",
	KeyUnknown:   "unknown",
	KeyRune:      "rune",
	KeyUp:        "up",
	KeyDown:      "down",
	KeyLeft:      "left",
	KeyRight:     "right",
	KeyHome:      "home",
	KeyEnd:       "end",
	KeyPageUp:    "pgup",
	KeyPageDown:  "pgdown",
	KeyInsert:    "insert",
	KeyDelete:    "delete",
	KeyEnter:     "enter",
	KeyTab:       "tab",
	KeyBackspace: "backspace",
	KeyEscape:    "esc",
	KeyCtrlA:     "ctrl+a",
	KeyCtrlC:     "ctrl+c",
	KeyCtrlE:     "ctrl+e",
	KeyCtrlK:     "ctrl+k",
	KeyCtrlT:     "ctrl+t",
	KeyCtrlU:     "ctrl+u",
	KeyCtrlZ:     "ctrl+z",
}

// keyAliases maps alternative spellings accepted by ParseKey
var keyAliases = map[string]Key{
	"escape":   KeyEscape,
	"return":   KeyEnter,
	"cr":       KeyEnter,
	"del":      KeyDelete,
	"ins":      KeyInsert,
	"bs":       KeyBackspace,
	"pageup":   KeyPageUp,
	"pagedown": KeyPageDown,
	"pgdn":     KeyPageDown,
}

// String returns the canonical key name
func (k Key) String() string {
	if k < keyCount {
		return keyNames[k]
	}
	return fmt.Sprintf("key(%d)", uint8(k))
}

// IsNavigation reports whether k is a cursor or paging key
func (k Key) IsNavigation() bool {
	return k >= KeyUp && k <= KeyDelete
}

// IsControl reports whether k is a single-byte control key
func (k Key) IsControl() bool {
	return k >= KeyEnter && k <= KeyCtrlZ && k != KeyEscape
}

// ParseKey parses a key name as produced by Key.String.
//
// Matching is case-insensitive and accepts a few aliases:
//   - "esc", "escape"
//   - "enter", "return", "cr"
//   - "pgup", "pageup", "pgdown", "pagedown", "pgdn"
//   - control chords as "ctrl+c", "^C" or "C-c"
func ParseKey(name string) (Key, error) {
	s := strings.ToLower(strings.TrimSpace(name))
	if s == "" {
		return KeyNone, fmt.Errorf("empty key name")
	}

	if len(s) == 2 && s[0] == '^' {
		s = "ctrl+" + s[1:]
	} else if strings.HasPrefix(s, "c-") {
		s = "ctrl+" + s[2:]
	}

	for k := KeyUp; k < keyCount; k++ {
		if keyNames[k] == s {
			return k, nil
		}
	}
	if k, ok := keyAliases[s]; ok {
		return k, nil
	}
	return KeyNone, fmt.Errorf("unknown key name %q", name)
}

// KeyEvent is the result of one decode call
type KeyEvent struct {
	Key  Key
	Char byte // valid when Key == KeyRune
}

// Rune returns a printable-character event
func Rune(b byte) KeyEvent {
	return KeyEvent{Key: KeyRune, Char: b}
}

// IsNoData reports whether the event signals that no byte was available
func (e KeyEvent) IsNoData() bool {
	return e.Key == KeyNone
}

// String returns the character for printable events and the key name otherwise
func (e KeyEvent) String() string {
	if e.Key == KeyRune {
		return fmt.Sprintf("'%c'", e.Char)
	}
	return e.Key.String()
}
