// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package conterm

import "time"

// Decoder turns console bytes into key events, one event per call
type Decoder struct {
	src   ByteSource
	state *State

	keyTimeout    time.Duration
	escapeTimeout time.Duration

	raw   []byte // Bytes consumed by the last call
	stats *Statistics
}

// NewDecoder creates a decoder reading from src and sharing state with a renderer
func NewDecoder(src ByteSource, state *State, cfg Config) *Decoder {
	if cfg.KeyTimeout <= 0 {
		cfg.KeyTimeout = DefaultKeyTimeout
	}
	if cfg.EscapeTimeout <= 0 {
		cfg.EscapeTimeout = DefaultEscapeTimeout
	}
	return &Decoder{
		src:           src,
		state:         state,
		keyTimeout:    cfg.KeyTimeout,
		escapeTimeout: cfg.EscapeTimeout,
		raw:           make([]byte, 0, 2+MaxEscapeLookahead),
	}
}

// SetStatistics attaches a statistics collector; nil detaches it
func (d *Decoder) SetStatistics(s *Statistics) {
	d.stats = s
}

// Raw returns the bytes consumed by the last call to Next, including a
// swallowed LF. The slice is reused by the next call.
func (d *Decoder) Raw() []byte {
	return d.raw
}

// Next decodes one key event.
//
// In non-blocking mode it returns KeyNone at once if no byte is waiting.
// In blocking mode it waits up to the key timeout for the first byte.
// Continuation bytes of an escape sequence are always read with the
// shorter escape timeout, whatever the mode.
func (d *Decoder) Next(blocking bool) KeyEvent {
	d.raw = d.raw[:0]
	ev := d.next(blocking)
	if d.stats != nil {
		d.stats.Record(ev, d.raw)
	}
	return ev
}

func (d *Decoder) next(blocking bool) KeyEvent {
	timeout := time.Duration(0)
	if blocking {
		timeout = d.keyTimeout
	}

	var b byte
	for {
		var ok bool
		b, ok = d.read(timeout)
		if !ok {
			return KeyEvent{Key: KeyNone}
		}

		// CR/LF: a LF directly after a reported CR is swallowed
		if d.state.pendingLFSkip {
			d.state.pendingLFSkip = false
			if b == ByteLF {
				continue
			}
		}
		break
	}

	switch {
	case isPrintable(b):
		return Rune(b)
	case b == ByteEsc:
		return KeyEvent{Key: d.escape()}
	case b == ByteCR:
		d.state.pendingLFSkip = true
		return KeyEvent{Key: KeyEnter}
	case b == ByteLF:
		return KeyEvent{Key: KeyEnter}
	}
	return KeyEvent{Key: lookupControl(b)}
}

// escape resolves the bytes following ESC. Nothing read here is pushed back.
func (d *Decoder) escape() Key {
	b, ok := d.read(d.escapeTimeout)
	if !ok {
		return KeyEscape
	}
	if b != csiIntroducer {
		return KeyUnknown
	}

	b, ok = d.read(d.escapeTimeout)
	if !ok {
		return KeyUnknown
	}

	switch {
	case b == csiSS3Prefix:
		// ESC [ O F
		b, ok = d.read(d.escapeTimeout)
		if ok && b == csiSS3End {
			return KeyEnd
		}
		return KeyUnknown

	case b >= csiFinalMin && b <= csiFinalMax:
		return lookupCSIFinal(b)

	case b >= csiDigitMin && b <= csiDigitMax:
		// ESC [ n ~
		t, ok := d.read(d.escapeTimeout)
		if !ok || t != csiTilde {
			return KeyUnknown
		}
		return lookupCSITilde(b)
	}
	return KeyUnknown
}

func (d *Decoder) read(timeout time.Duration) (byte, bool) {
	b, ok := d.src.ReadByteTimeout(timeout)
	if ok {
		d.raw = append(d.raw, b)
	}
	return b, ok
}
