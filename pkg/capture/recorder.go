// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package capture

import (
	"time"

	"github.com/Thermoquad/conterm/pkg/conterm"
)

// Recorder passes bytes through from a source and records them
type Recorder struct {
	src     conterm.ByteSource
	now     func() time.Time
	started time.Time
	capture Capture
}

// NewRecorder starts recording bytes read from src
func NewRecorder(src conterm.ByteSource, rows, cols uint) *Recorder {
	return newRecorderWithClock(src, rows, cols, time.Now)
}

func newRecorderWithClock(src conterm.ByteSource, rows, cols uint, now func() time.Time) *Recorder {
	started := now()
	return &Recorder{
		src:     src,
		now:     now,
		started: started,
		capture: Capture{
			Version: FormatVersion,
			Rows:    rows,
			Cols:    cols,
			Started: started.UnixNano(),
		},
	}
}

// ReadByteTimeout implements conterm.ByteSource
func (r *Recorder) ReadByteTimeout(timeout time.Duration) (byte, bool) {
	b, ok := r.src.ReadByteTimeout(timeout)
	if ok {
		r.record(b)
	}
	return b, ok
}

func (r *Recorder) record(b byte) {
	at := uint64(r.now().Sub(r.started) / time.Microsecond)

	frames := r.capture.Frames
	if n := len(frames); n > 0 && frames[n-1].At == at {
		frames[n-1].Data = append(frames[n-1].Data, b)
		return
	}
	r.capture.Frames = append(frames, Frame{At: at, Data: []byte{b}})
}

// Capture returns the recording so far
func (r *Recorder) Capture() *Capture {
	return &r.capture
}
