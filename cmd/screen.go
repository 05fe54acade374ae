// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"fmt"
	"log"

	"github.com/Thermoquad/conterm/pkg/conterm"
	"github.com/spf13/cobra"
)

var screenQuitKeyName string

var screenCmd = &cobra.Command{
	Use:   "screen",
	Short: "Exercise the cursor renderer on the console",
	Long: `Clear the console screen and drive the cursor with the ANSI renderer.

Typed characters are echoed, arrow keys move the cursor, Enter starts a new
line, Ctrl+K clears to the end of the line and Ctrl+E clears the screen.
The bottom line shows the renderer's shadow cursor, so drift between the
shadow and the real cursor is visible as you type.

Relative left/right moves are tracked in the inverted direction unless
--fix-relative-moves is given.`,
	RunE: runScreen,
}

func init() {
	rootCmd.AddCommand(screenCmd)
	screenCmd.Flags().StringVar(&screenQuitKeyName, "quit-key", "ctrl+c", "Key that ends the session")
}

// DEC save and restore cursor
var (
	saveCursor    = []byte{conterm.ByteEsc, '7'}
	restoreCursor = []byte{conterm.ByteEsc, '8'}
)

// screenExercise applies key events to a renderer
type screenExercise struct {
	r       *conterm.Renderer
	state   *conterm.State
	quitKey conterm.Key
	last    conterm.KeyEvent
}

func newScreenExercise(r *conterm.Renderer, state *conterm.State, quitKey conterm.Key) *screenExercise {
	return &screenExercise{r: r, state: state, quitKey: quitKey}
}

// drawFrame clears the screen, prints the title and homes the cursor below it
func (s *screenExercise) drawFrame() error {
	if err := s.r.ClearScreen(); err != nil {
		return err
	}
	if err := s.r.MoveTo(1, 1); err != nil {
		return err
	}
	title := fmt.Sprintf("conterm screen %dx%d - %s quits", s.r.Cols(), s.r.Rows(), s.quitKey)
	if err := s.r.PutString([]byte(title)); err != nil {
		return err
	}
	if err := s.r.MoveTo(1, 3); err != nil {
		return err
	}
	return s.drawStatus()
}

// drawStatus writes the shadow cursor on the last row. The real cursor is
// saved and restored around the write and the shadow is left unchanged.
// The shadow may wrap, so nothing is positioned from it.
func (s *screenExercise) drawStatus() error {
	x, y := s.r.Cursor()
	status := fmt.Sprintf("cursor x=%d y=%d last=%s", x, y, s.last)
	if uint(len(status)) > s.r.Cols() {
		status = status[:s.r.Cols()]
	}

	err := s.statusLine([]byte(status))
	s.state.CursorX = x
	s.state.CursorY = y
	return err
}

func (s *screenExercise) statusLine(status []byte) error {
	if err := s.r.PutString(saveCursor); err != nil {
		return err
	}
	if err := s.r.MoveTo(1, s.r.Rows()); err != nil {
		return err
	}
	if err := s.r.ClearToEOL(); err != nil {
		return err
	}
	if err := s.r.PutString(status); err != nil {
		return err
	}
	return s.r.PutString(restoreCursor)
}

// clampRow keeps a row taken from the shadow on the screen
func (s *screenExercise) clampRow(y uint) uint {
	if y < 1 {
		return 1
	}
	if y > s.r.Rows() {
		return s.r.Rows()
	}
	return y
}

// handle applies one key and reports whether the session should end
func (s *screenExercise) handle(ev conterm.KeyEvent) (bool, error) {
	if ev.IsNoData() {
		return false, nil
	}
	if s.quitKey != conterm.KeyNone && ev.Key == s.quitKey {
		return true, nil
	}
	s.last = ev

	var err error
	switch ev.Key {
	case conterm.KeyRune:
		err = s.r.PutChar(ev.Char)
	case conterm.KeyUp:
		err = s.r.Up(1)
	case conterm.KeyDown:
		err = s.r.Down(1)
	case conterm.KeyRight:
		err = s.r.Right(1)
	case conterm.KeyLeft:
		err = s.r.Left(1)
	case conterm.KeyHome:
		_, y := s.r.Cursor()
		err = s.r.MoveTo(1, s.clampRow(y))
	case conterm.KeyEnter:
		if err = s.r.PutChar('\r'); err == nil {
			err = s.r.PutChar('\n')
		}
	case conterm.KeyBackspace:
		if err = s.r.Left(1); err == nil {
			if err = s.r.PutChar(' '); err == nil {
				err = s.r.Left(1)
			}
		}
	case conterm.KeyCtrlK:
		err = s.r.ClearToEOL()
	case conterm.KeyCtrlE:
		return false, s.drawFrame()
	}
	if err != nil {
		return false, err
	}
	return false, s.drawStatus()
}

func runScreen(cmd *cobra.Command, args []string) error {
	quitKey, err := parseQuitKey(screenQuitKeyName)
	if err != nil {
		return err
	}
	if quitKey == conterm.KeyNone {
		return fmt.Errorf("screen needs a --quit-key")
	}

	conn, connInfo, err := OpenConnection()
	if err != nil {
		return err
	}
	defer conn.Close()

	cfg := sessionConfig()
	if sc, ok := conn.(*StdioConnection); ok {
		if cols, rows, err := sc.Size(); err == nil && cols > 0 && rows > 0 {
			if !cmd.Flags().Changed("cols") {
				cfg.Cols = uint(cols)
			}
			if !cmd.Flags().Changed("rows") {
				cfg.Rows = uint(rows)
			}
		}
	}
	log.Printf("Screen exercise on %s (%dx%d)", connInfo, cfg.Cols, cfg.Rows)

	src := newByteSource(conn)
	session := conterm.NewSession(src, conn, cfg)
	ex := newScreenExercise(session.Renderer, session.State, quitKey)

	if err := ex.drawFrame(); err != nil {
		return err
	}

	stop := watchSignals()
	defer stop.Stop()

	for !stop.Raised() {
		ev := session.ReadKey(true)
		if ev.IsNoData() {
			if err := src.Err(); err != nil {
				if endOfStream(err) {
					return nil
				}
				return fmt.Errorf("read error: %v", err)
			}
			continue
		}
		done, err := ex.handle(ev)
		if err != nil {
			return err
		}
		if done {
			break
		}
	}

	// Leave the console clean
	session.Renderer.ClearScreen()
	session.Renderer.MoveTo(1, 1)
	return nil
}
