// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package capture

import "time"

// Player replays a capture as a conterm.ByteSource on a virtual clock.
//
// A read with timeout t returns the next byte if it was recorded no later
// than t after the current virtual time, moving the clock forward to it.
// Otherwise the clock advances by t and the read times out. Replays never
// sleep, and the gaps that separated keys during recording separate them
// again during replay.
type Player struct {
	frames []Frame
	frame  int
	offset int
	now    time.Duration
}

// NewPlayer creates a player positioned at the start of c
func NewPlayer(c *Capture) *Player {
	frames := make([]Frame, 0, len(c.Frames))
	for _, f := range c.Frames {
		if len(f.Data) > 0 {
			frames = append(frames, f)
		}
	}
	return &Player{frames: frames}
}

// ReadByteTimeout implements conterm.ByteSource
func (p *Player) ReadByteTimeout(timeout time.Duration) (byte, bool) {
	if p.Done() {
		p.now += timeout
		return 0, false
	}

	f := p.frames[p.frame]
	at := time.Duration(f.At) * time.Microsecond
	if at > p.now+timeout {
		p.now += timeout
		return 0, false
	}
	if at > p.now {
		p.now = at
	}

	b := f.Data[p.offset]
	p.offset++
	if p.offset >= len(f.Data) {
		p.frame++
		p.offset = 0
	}
	return b, true
}

// Done reports whether every recorded byte has been delivered
func (p *Player) Done() bool {
	return p.frame >= len(p.frames)
}

// Elapsed returns the current virtual time
func (p *Player) Elapsed() time.Duration {
	return p.now
}
