// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package conterm

import (
	"fmt"
	"io"
	"strconv"
)

// Direction selects a relative cursor movement
type Direction uint8

const (
	DirUp Direction = iota
	DirDown
	DirRight
	DirLeft
)

// Final bytes of the relative movement sequences, indexed by Direction
var directionFinal = [...]byte{
	DirUp:    'A',
	DirDown:  'B',
	DirRight: 'C',
	DirLeft:  'D',
}

// String returns the direction name
func (d Direction) String() string {
	switch d {
	case DirUp:
		return "up"
	case DirDown:
		return "down"
	case DirRight:
		return "right"
	case DirLeft:
		return "left"
	default:
		return fmt.Sprintf("direction(%d)", uint8(d))
	}
}

// Renderer writes ANSI control sequences and tracks the cursor shadow
type Renderer struct {
	out   io.Writer
	state *State

	correctRelative bool

	seq [MaxANSISize]byte // Scratch buffer for one sequence
}

// NewRenderer creates a renderer writing to out
func NewRenderer(out io.Writer, state *State, cfg Config) *Renderer {
	return &Renderer{
		out:             out,
		state:           state,
		correctRelative: cfg.CorrectRelativeMoves,
	}
}

// Cursor returns the shadow cursor position
func (r *Renderer) Cursor() (x, y uint) {
	return r.state.CursorX, r.state.CursorY
}

// Rows returns the configured number of terminal lines
func (r *Renderer) Rows() uint {
	return r.state.rows
}

// Cols returns the configured number of terminal columns
func (r *Renderer) Cols() uint {
	return r.state.cols
}

// ClearScreen clears the screen and resets the shadow cursor to (0,0)
func (r *Renderer) ClearScreen() error {
	err := r.ansi([]byte("2J"))
	r.state.CursorX = 0
	r.state.CursorY = 0
	return err
}

// ClearToEOL clears from the cursor to the end of the line
func (r *Renderer) ClearToEOL() error {
	return r.ansi([]byte("K"))
}

// MoveTo moves the cursor to column x, row y.
// The sequence carries the row first: ESC [ y ; x H.
func (r *Renderer) MoveTo(x, y uint) error {
	var params [2*20 + 2]byte
	p := strconv.AppendUint(params[:0], uint64(y), 10)
	p = append(p, ';')
	p = strconv.AppendUint(p, uint64(x), 10)
	p = append(p, 'H')

	err := r.ansi(p)
	r.state.CursorX = x
	r.state.CursorY = y
	return err
}

// MoveRelative moves the cursor delta cells in dir and updates the shadow.
//
// Unless CorrectRelativeMoves is set, a move right decreases the shadow
// column and a move left increases it. Unsigned arithmetic wraps.
func (r *Renderer) MoveRelative(dir Direction, delta uint) error {
	if int(dir) >= len(directionFinal) {
		return fmt.Errorf("invalid direction: %v", dir)
	}

	var params [20 + 1]byte
	p := strconv.AppendUint(params[:0], uint64(delta), 10)
	p = append(p, directionFinal[dir])
	err := r.ansi(p)

	switch dir {
	case DirUp:
		r.state.CursorY -= delta
	case DirDown:
		r.state.CursorY += delta
	case DirRight:
		if r.correctRelative {
			r.state.CursorX += delta
		} else {
			r.state.CursorX -= delta
		}
	case DirLeft:
		if r.correctRelative {
			r.state.CursorX -= delta
		} else {
			r.state.CursorX += delta
		}
	}
	return err
}

// Up moves the cursor up delta lines
func (r *Renderer) Up(delta uint) error {
	return r.MoveRelative(DirUp, delta)
}

// Down moves the cursor down delta lines
func (r *Renderer) Down(delta uint) error {
	return r.MoveRelative(DirDown, delta)
}

// Right moves the cursor right delta columns
func (r *Renderer) Right(delta uint) error {
	return r.MoveRelative(DirRight, delta)
}

// Left moves the cursor left delta columns
func (r *Renderer) Left(delta uint) error {
	return r.MoveRelative(DirLeft, delta)
}

// PutChar writes one byte. A newline moves the shadow to column 0 of the
// next row, without going past the configured number of rows.
func (r *Renderer) PutChar(b byte) error {
	if b == '\n' {
		if r.state.CursorY < r.state.rows {
			r.state.CursorY++
		}
		r.state.CursorX = 0
	}
	return r.write([]byte{b})
}

// PutString writes p as-is. The shadow cursor is not updated.
func (r *Renderer) PutString(p []byte) error {
	return r.write(p)
}

// ansi writes ESC [ followed by params, truncated to fit the scratch buffer
func (r *Renderer) ansi(params []byte) error {
	seq := r.seq[:0]
	seq = append(seq, ByteEsc, csiIntroducer)
	room := MaxANSISize - 1 - len(seq)
	if len(params) > room {
		params = params[:room]
	}
	seq = append(seq, params...)
	return r.write(seq)
}

func (r *Renderer) write(p []byte) error {
	if len(p) == 0 {
		return nil
	}
	n, err := r.out.Write(p)
	if err != nil {
		return fmt.Errorf("terminal write failed after %d of %d bytes: %w", n, len(p), err)
	}
	if n < len(p) {
		return fmt.Errorf("terminal write: %d of %d bytes: %w", n, len(p), io.ErrShortWrite)
	}
	return nil
}
