// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package conterm

import (
	"bytes"
	"errors"
	"io"
	"strings"
	"testing"
)

// ============================================================
// Test Helpers
// ============================================================

func newTestRenderer(cfg Config) (*Renderer, *bytes.Buffer) {
	var out bytes.Buffer
	return NewRenderer(&out, NewState(cfg.Rows, cfg.Cols), cfg), &out
}

type failingWriter struct{ err error }

func (w failingWriter) Write(p []byte) (int, error) {
	return 0, w.err
}

type shortWriter struct{}

func (shortWriter) Write(p []byte) (int, error) {
	return len(p) / 2, nil
}

func assertCursor(t *testing.T, r *Renderer, x, y uint) {
	t.Helper()
	gx, gy := r.Cursor()
	if gx != x || gy != y {
		t.Errorf("expected cursor (%d,%d), got (%d,%d)", x, y, gx, gy)
	}
}

// ============================================================
// Screen Control Tests
// ============================================================

func TestRenderer_ClearScreen(t *testing.T) {
	r, out := newTestRenderer(DefaultConfig())
	r.state.CursorX, r.state.CursorY = 12, 7

	if err := r.ClearScreen(); err != nil {
		t.Fatalf("ClearScreen: %v", err)
	}
	if out.String() != "\x1b[2J" {
		t.Errorf("expected ESC[2J, got %q", out.String())
	}
	assertCursor(t, r, 0, 0)
}

func TestRenderer_ClearToEOL(t *testing.T) {
	r, out := newTestRenderer(DefaultConfig())
	r.state.CursorX, r.state.CursorY = 4, 2

	if err := r.ClearToEOL(); err != nil {
		t.Fatalf("ClearToEOL: %v", err)
	}
	if out.String() != "\x1b[K" {
		t.Errorf("expected ESC[K, got %q", out.String())
	}
	assertCursor(t, r, 4, 2)
}

func TestRenderer_MoveTo(t *testing.T) {
	tests := []struct {
		x, y     uint
		expected string
	}{
		{5, 3, "\x1b[3;5H"},
		{0, 0, "\x1b[0;0H"},
		{80, 25, "\x1b[25;80H"},
		{1, 120, "\x1b[120;1H"},
	}

	for _, tt := range tests {
		r, out := newTestRenderer(DefaultConfig())
		if err := r.MoveTo(tt.x, tt.y); err != nil {
			t.Fatalf("MoveTo(%d,%d): %v", tt.x, tt.y, err)
		}
		if out.String() != tt.expected {
			t.Errorf("MoveTo(%d,%d): expected %q, got %q", tt.x, tt.y, tt.expected, out.String())
		}
		assertCursor(t, r, tt.x, tt.y)
	}
}

// ============================================================
// Relative Movement Tests
// ============================================================

func TestRenderer_MoveRelativeWireFormat(t *testing.T) {
	tests := []struct {
		dir      Direction
		delta    uint
		expected string
	}{
		{DirUp, 1, "\x1b[1A"},
		{DirDown, 2, "\x1b[2B"},
		{DirRight, 10, "\x1b[10C"},
		{DirLeft, 3, "\x1b[3D"},
	}

	for _, tt := range tests {
		t.Run(tt.dir.String(), func(t *testing.T) {
			r, out := newTestRenderer(DefaultConfig())
			if err := r.MoveRelative(tt.dir, tt.delta); err != nil {
				t.Fatalf("MoveRelative: %v", err)
			}
			if out.String() != tt.expected {
				t.Errorf("expected %q, got %q", tt.expected, out.String())
			}
		})
	}
}

func TestRenderer_MoveRelativeShadow(t *testing.T) {
	r, _ := newTestRenderer(DefaultConfig())
	r.MoveTo(10, 10)

	r.Up(2)
	assertCursor(t, r, 10, 8)
	r.Down(5)
	assertCursor(t, r, 10, 13)

	// Right decreases and left increases the shadow column
	r.Right(3)
	assertCursor(t, r, 7, 13)
	r.Left(4)
	assertCursor(t, r, 11, 13)
}

func TestRenderer_MoveRelativeCorrected(t *testing.T) {
	cfg := DefaultConfig()
	cfg.CorrectRelativeMoves = true
	r, _ := newTestRenderer(cfg)
	r.MoveTo(10, 10)

	r.Right(3)
	assertCursor(t, r, 13, 10)
	r.Left(5)
	assertCursor(t, r, 8, 10)
	r.Up(1)
	assertCursor(t, r, 8, 9)
}

func TestRenderer_MoveRelativeWraps(t *testing.T) {
	r, _ := newTestRenderer(DefaultConfig())

	r.Up(1)
	_, y := r.Cursor()
	if y != ^uint(0) {
		t.Errorf("expected unsigned wraparound, got %d", y)
	}
}

func TestRenderer_InvalidDirection(t *testing.T) {
	r, out := newTestRenderer(DefaultConfig())
	if err := r.MoveRelative(Direction(9), 1); err == nil {
		t.Error("expected error for invalid direction")
	}
	if out.Len() != 0 {
		t.Errorf("nothing should be written, got %q", out.String())
	}
	assertCursor(t, r, 0, 0)
}

// ============================================================
// Character Output Tests
// ============================================================

func TestRenderer_PutChar(t *testing.T) {
	r, out := newTestRenderer(DefaultConfig())
	r.MoveTo(6, 2)
	out.Reset()

	if err := r.PutChar('x'); err != nil {
		t.Fatalf("PutChar: %v", err)
	}
	assertCursor(t, r, 6, 2)

	if err := r.PutChar('\n'); err != nil {
		t.Fatalf("PutChar: %v", err)
	}
	assertCursor(t, r, 0, 3)

	if out.String() != "x\n" {
		t.Errorf("expected %q, got %q", "x\n", out.String())
	}
}

func TestRenderer_NewlineClampsAtRows(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Rows = 3
	r, _ := newTestRenderer(cfg)

	for i := 0; i < 10; i++ {
		r.PutChar('\n')
	}
	assertCursor(t, r, 0, 3)
}

func TestRenderer_PutString(t *testing.T) {
	r, out := newTestRenderer(DefaultConfig())
	r.MoveTo(2, 2)
	out.Reset()

	if err := r.PutString([]byte("hello\nworld")); err != nil {
		t.Fatalf("PutString: %v", err)
	}
	if out.String() != "hello\nworld" {
		t.Errorf("unexpected output %q", out.String())
	}
	assertCursor(t, r, 2, 2)

	if err := r.PutString(nil); err != nil {
		t.Errorf("empty PutString should succeed, got %v", err)
	}
}

// ============================================================
// Scratch Buffer Tests
// ============================================================

func TestRenderer_SequenceTruncated(t *testing.T) {
	r, out := newTestRenderer(DefaultConfig())
	big := ^uint(0)

	r.MoveTo(big, big)
	if out.Len() > MaxANSISize-1 {
		t.Errorf("sequence of %d bytes exceeds limit %d", out.Len(), MaxANSISize-1)
	}
	if !strings.HasPrefix(out.String(), "\x1b[") {
		t.Errorf("sequence lost its introducer: %q", out.String())
	}
	assertCursor(t, r, big, big)
}

// ============================================================
// Write Failure Tests
// ============================================================

func TestRenderer_WriteError(t *testing.T) {
	errDevice := errors.New("device gone")
	cfg := DefaultConfig()
	r := NewRenderer(failingWriter{errDevice}, NewState(cfg.Rows, cfg.Cols), cfg)

	err := r.MoveTo(4, 4)
	if !errors.Is(err, errDevice) {
		t.Fatalf("expected wrapped device error, got %v", err)
	}
	// The shadow follows the request even though the write failed
	assertCursor(t, r, 4, 4)

	if err := r.PutChar('a'); !errors.Is(err, errDevice) {
		t.Errorf("expected wrapped device error, got %v", err)
	}
}

func TestRenderer_ShortWrite(t *testing.T) {
	cfg := DefaultConfig()
	r := NewRenderer(shortWriter{}, NewState(cfg.Rows, cfg.Cols), cfg)

	if err := r.ClearScreen(); !errors.Is(err, io.ErrShortWrite) {
		t.Errorf("expected io.ErrShortWrite, got %v", err)
	}
}

// ============================================================
// Session Tests
// ============================================================

func TestSession_SharedState(t *testing.T) {
	var out bytes.Buffer
	s := NewSession(scriptBytes([]byte("\r\n")), &out, Config{})

	if s.State.Rows() != DefaultRows || s.State.Cols() != DefaultCols {
		t.Errorf("expected default size, got %dx%d", s.State.Rows(), s.State.Cols())
	}

	if ev := s.ReadKey(true); ev.Key != KeyEnter {
		t.Fatalf("expected Enter, got %v", ev)
	}
	s.Renderer.PutChar('\n')

	if !s.State.PendingLF() {
		t.Error("decoder state should be visible through the session")
	}
	if x, y := s.Renderer.Cursor(); x != 0 || y != 1 {
		t.Errorf("expected cursor (0,1), got (%d,%d)", x, y)
	}
	if s.State.CursorY != 1 {
		t.Errorf("renderer should update the shared state")
	}
}
