// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

// Package capture records console input streams with their timing and
// replays them as a conterm.ByteSource.
//
// Captures are stored as CBOR maps with integer keys so that recordings
// stay compact and can be read by the same tooling as other Thermoquad
// binary formats.
package capture

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/fxamacker/cbor/v2"
)

// FormatVersion is the capture format written by Save
const FormatVersion = 1

// ErrBadCapture is returned by Load for data that is not a valid capture
var ErrBadCapture = errors.New("invalid capture")

// Frame is a run of bytes that arrived at the same instant
type Frame struct {
	At   uint64 `cbor:"1,keyasint"` // microseconds since the start of recording
	Data []byte `cbor:"2,keyasint"`
}

// Capture is a recorded console session
type Capture struct {
	Version uint    `cbor:"1,keyasint"`
	Rows    uint    `cbor:"2,keyasint,omitempty"`
	Cols    uint    `cbor:"3,keyasint,omitempty"`
	Started int64   `cbor:"4,keyasint"` // unix nanoseconds
	Frames  []Frame `cbor:"5,keyasint"`
}

// StartTime returns the wall-clock time the recording began
func (c *Capture) StartTime() time.Time {
	return time.Unix(0, c.Started)
}

// Len returns the number of recorded bytes
func (c *Capture) Len() int {
	n := 0
	for _, f := range c.Frames {
		n += len(f.Data)
	}
	return n
}

// Duration returns the offset of the last recorded frame
func (c *Capture) Duration() time.Duration {
	if len(c.Frames) == 0 {
		return 0
	}
	return time.Duration(c.Frames[len(c.Frames)-1].At) * time.Microsecond
}

// Bytes returns all recorded bytes in order
func (c *Capture) Bytes() []byte {
	out := make([]byte, 0, c.Len())
	for _, f := range c.Frames {
		out = append(out, f.Data...)
	}
	return out
}

// Save writes the capture as CBOR
func (c *Capture) Save(w io.Writer) error {
	if c.Version == 0 {
		c.Version = FormatVersion
	}
	if err := cbor.NewEncoder(w).Encode(c); err != nil {
		return fmt.Errorf("failed to encode capture: %w", err)
	}
	return nil
}

// Load reads a capture written by Save
func Load(r io.Reader) (*Capture, error) {
	var c Capture
	if err := cbor.NewDecoder(r).Decode(&c); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadCapture, err)
	}
	if c.Version != FormatVersion {
		return nil, fmt.Errorf("%w: unsupported version %d", ErrBadCapture, c.Version)
	}

	var last uint64
	for i, f := range c.Frames {
		if f.At < last {
			return nil, fmt.Errorf("%w: frame %d goes back in time", ErrBadCapture, i)
		}
		last = f.At
	}
	return &c, nil
}
