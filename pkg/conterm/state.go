// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package conterm

import (
	"io"
	"time"
)

// ByteSource delivers console input one byte at a time.
//
// ReadByteTimeout waits up to timeout for a byte and reports false if none
// arrived. A zero timeout must return immediately.
type ByteSource interface {
	ReadByteTimeout(timeout time.Duration) (byte, bool)
}

// Config holds per-session settings
type Config struct {
	Rows uint
	Cols uint

	KeyTimeout    time.Duration // first byte of a key in blocking mode
	EscapeTimeout time.Duration // each continuation byte after ESC

	// CorrectRelativeMoves makes Left/Right update the shadow column in the
	// direction the cursor actually moves. When false, Right decreases and
	// Left increases the shadow column, which existing callers depend on.
	CorrectRelativeMoves bool
}

// DefaultConfig returns the configuration used when no overrides are given
func DefaultConfig() Config {
	return Config{
		Rows:          DefaultRows,
		Cols:          DefaultCols,
		KeyTimeout:    DefaultKeyTimeout,
		EscapeTimeout: DefaultEscapeTimeout,
	}
}

// State is the mutable state of one terminal session. It is owned by a
// single Session and must not be shared between goroutines.
type State struct {
	CursorX uint
	CursorY uint

	rows uint
	cols uint

	pendingLFSkip bool
}

// NewState creates session state for a terminal of the given size
func NewState(rows, cols uint) *State {
	return &State{rows: rows, cols: cols}
}

// Rows returns the configured number of terminal lines
func (s *State) Rows() uint {
	return s.rows
}

// Cols returns the configured number of terminal columns
func (s *State) Cols() uint {
	return s.cols
}

// PendingLF reports whether the last decoded key was a carriage return
// whose trailing LF has not been seen yet
func (s *State) PendingLF() bool {
	return s.pendingLFSkip
}

// Session ties a decoder and a renderer to one shared State
type Session struct {
	State    *State
	Decoder  *Decoder
	Renderer *Renderer
}

// NewSession creates a session reading from src and writing to out
func NewSession(src ByteSource, out io.Writer, cfg Config) *Session {
	if cfg.Rows == 0 {
		cfg.Rows = DefaultRows
	}
	if cfg.Cols == 0 {
		cfg.Cols = DefaultCols
	}
	state := NewState(cfg.Rows, cfg.Cols)
	return &Session{
		State:    state,
		Decoder:  NewDecoder(src, state, cfg),
		Renderer: NewRenderer(out, state, cfg),
	}
}

// ReadKey decodes the next key event
func (s *Session) ReadKey(blocking bool) KeyEvent {
	return s.Decoder.Next(blocking)
}
