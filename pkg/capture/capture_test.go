// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package capture

import (
	"bytes"
	"testing"
	"time"

	"github.com/Thermoquad/conterm/pkg/conterm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ============================================================
// Test Helpers
// ============================================================

// fakeClock advances only when told to
type fakeClock struct {
	t time.Time
}

func (c *fakeClock) now() time.Time {
	return c.t
}

func (c *fakeClock) advance(d time.Duration) {
	c.t = c.t.Add(d)
}

// sliceSource returns queued bytes and times out when empty
type sliceSource struct {
	data []byte
}

func (s *sliceSource) ReadByteTimeout(time.Duration) (byte, bool) {
	if len(s.data) == 0 {
		return 0, false
	}
	b := s.data[0]
	s.data = s.data[1:]
	return b, true
}

func newTestCapture(frames ...Frame) *Capture {
	return &Capture{Version: FormatVersion, Rows: 25, Cols: 80, Frames: frames}
}

// ============================================================
// Recorder Tests
// ============================================================

func TestRecorder_GroupsBytesByInstant(t *testing.T) {
	clock := &fakeClock{t: time.Unix(1700000000, 0)}
	src := &sliceSource{data: []byte("\x1b[Ax")}
	rec := newRecorderWithClock(src, 25, 80, clock.now)

	for i := 0; i < 3; i++ {
		_, ok := rec.ReadByteTimeout(0)
		require.True(t, ok)
	}
	clock.advance(250 * time.Millisecond)
	b, ok := rec.ReadByteTimeout(0)
	require.True(t, ok)
	assert.Equal(t, byte('x'), b)

	_, ok = rec.ReadByteTimeout(0)
	assert.False(t, ok, "empty source should time out")

	c := rec.Capture()
	require.Len(t, c.Frames, 2)
	assert.Equal(t, uint64(0), c.Frames[0].At)
	assert.Equal(t, []byte("\x1b[A"), c.Frames[0].Data)
	assert.Equal(t, uint64(250000), c.Frames[1].At)
	assert.Equal(t, []byte("x"), c.Frames[1].Data)
	assert.Equal(t, 4, c.Len())
	assert.Equal(t, 250*time.Millisecond, c.Duration())
	assert.Equal(t, clock.t.Add(-250*time.Millisecond).UnixNano(), c.StartTime().UnixNano())
}

// ============================================================
// Serialization Tests
// ============================================================

func TestCapture_SaveLoad(t *testing.T) {
	orig := newTestCapture(
		Frame{At: 0, Data: []byte("ab")},
		Frame{At: 1500, Data: []byte{0x1b}},
	)
	orig.Started = 42

	var buf bytes.Buffer
	require.NoError(t, orig.Save(&buf))

	loaded, err := Load(&buf)
	require.NoError(t, err)
	assert.Equal(t, orig, loaded)
}

func TestCapture_SaveSetsVersion(t *testing.T) {
	c := &Capture{}
	var buf bytes.Buffer
	require.NoError(t, c.Save(&buf))
	assert.Equal(t, uint(FormatVersion), c.Version)

	_, err := Load(&buf)
	assert.NoError(t, err)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		capture *Capture
		raw     []byte
	}{
		{name: "garbage", raw: []byte{0xFF, 0x00, 0x13}},
		{name: "empty", raw: []byte{}},
		{name: "future version", capture: &Capture{Version: 99}},
		{name: "time goes backwards", capture: newTestCapture(
			Frame{At: 10, Data: []byte("a")},
			Frame{At: 5, Data: []byte("b")},
		)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data := tt.raw
			if tt.capture != nil {
				var buf bytes.Buffer
				require.NoError(t, tt.capture.Save(&buf))
				data = buf.Bytes()
			}
			_, err := Load(bytes.NewReader(data))
			assert.ErrorIs(t, err, ErrBadCapture)
		})
	}
}

// ============================================================
// Player Tests
// ============================================================

func TestPlayer_VirtualClock(t *testing.T) {
	p := NewPlayer(newTestCapture(
		Frame{At: 0, Data: []byte("a")},
		Frame{At: 100000, Data: []byte("b")}, // 100ms
	))

	b, ok := p.ReadByteTimeout(0)
	require.True(t, ok)
	assert.Equal(t, byte('a'), b)

	// Not yet due
	_, ok = p.ReadByteTimeout(40 * time.Millisecond)
	assert.False(t, ok)
	assert.Equal(t, 40*time.Millisecond, p.Elapsed())

	// Due within this window; clock jumps to the recorded instant
	b, ok = p.ReadByteTimeout(time.Second)
	require.True(t, ok)
	assert.Equal(t, byte('b'), b)
	assert.Equal(t, 100*time.Millisecond, p.Elapsed())

	assert.True(t, p.Done())
	_, ok = p.ReadByteTimeout(time.Millisecond)
	assert.False(t, ok)
}

func TestPlayer_SkipsEmptyFrames(t *testing.T) {
	p := NewPlayer(newTestCapture(
		Frame{At: 0},
		Frame{At: 10, Data: []byte("z")},
	))
	b, ok := p.ReadByteTimeout(time.Millisecond)
	require.True(t, ok)
	assert.Equal(t, byte('z'), b)
	assert.True(t, p.Done())
}

func TestPlayer_ReproducesEscapeTiming(t *testing.T) {
	// A lone ESC press, a pause, then an arrow key sent as one burst
	c := newTestCapture(
		Frame{At: 0, Data: []byte{0x1b}},
		Frame{At: 500000, Data: []byte("\x1b[A")},
		Frame{At: 900000, Data: []byte("\r\n")},
	)

	var out bytes.Buffer
	s := conterm.NewSession(NewPlayer(c), &out, conterm.DefaultConfig())

	expected := []conterm.Key{conterm.KeyEscape, conterm.KeyUp, conterm.KeyEnter, conterm.KeyNone}
	for i, want := range expected {
		ev := s.ReadKey(true)
		assert.Equal(t, want, ev.Key, "event %d", i)
	}
}

func TestRecorder_RoundTripThroughDecoder(t *testing.T) {
	clock := &fakeClock{t: time.Unix(0, 0)}
	src := &sliceSource{data: []byte("hi\x1b[3~")}
	rec := newRecorderWithClock(src, 25, 80, clock.now)

	live := conterm.NewSession(rec, &bytes.Buffer{}, conterm.DefaultConfig())
	var liveKeys []conterm.KeyEvent
	for ev := live.ReadKey(true); !ev.IsNoData(); ev = live.ReadKey(true) {
		liveKeys = append(liveKeys, ev)
	}
	require.Len(t, liveKeys, 3)

	var buf bytes.Buffer
	require.NoError(t, rec.Capture().Save(&buf))
	loaded, err := Load(&buf)
	require.NoError(t, err)

	replay := conterm.NewSession(NewPlayer(loaded), &bytes.Buffer{}, conterm.DefaultConfig())
	for i, want := range liveKeys {
		assert.Equal(t, want, replay.ReadKey(true), "event %d", i)
	}
}
