// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package conterm

import (
	"bytes"
	"math/rand"
	"os"
	"strconv"
	"testing"
	"time"
)

// getFuzzRounds returns the number of fuzz rounds from FUZZ_ROUNDS env var, default 1000
func getFuzzRounds() int {
	if envRounds := os.Getenv("FUZZ_ROUNDS"); envRounds != "" {
		if rounds, err := strconv.Atoi(envRounds); err == nil && rounds > 0 {
			return rounds
		}
	}
	return 1000
}

// getFuzzSeed returns the seed from FUZZ_SEED env var, or generates one from current time
func getFuzzSeed() int64 {
	if envSeed := os.Getenv("FUZZ_SEED"); envSeed != "" {
		if seed, err := strconv.ParseInt(envSeed, 10, 64); err == nil {
			return seed
		}
	}
	return time.Now().UnixNano()
}

// newFuzzRng creates a new random number generator and logs the seed for reproducibility
func newFuzzRng(t *testing.T) *rand.Rand {
	seed := getFuzzSeed()
	t.Logf("Seed: %d (reproduce with FUZZ_SEED=%d)", seed, seed)
	return rand.New(rand.NewSource(seed))
}

// ============================================================
// Decoder Fuzz Tests
// ============================================================

// escapeAlphabet holds the bytes that steer the escape and line-ending branches
const escapeAlphabet = "[O~F123456AHU@\r\n"

// TestFuzzDecoder_RandomBytes feeds random bytes with random timeouts and
// verifies every byte is consumed exactly once with bounded look-ahead
func TestFuzzDecoder_RandomBytes(t *testing.T) {
	rounds := getFuzzRounds()
	rng := newFuzzRng(t)
	t.Logf("Running %d fuzz rounds", rounds)

	for i := 0; i < rounds; i++ {
		length := rng.Intn(256) + 1
		script := make([]int, 0, length)
		var data []byte
		for j := 0; j < length; j++ {
			if rng.Intn(8) == 0 {
				script = append(script, gap)
				continue
			}
			// Bias towards bytes that exercise the escape paths
			var b byte
			switch rng.Intn(4) {
			case 0:
				b = ByteEsc
			case 1:
				b = escapeAlphabet[rng.Intn(len(escapeAlphabet))]
			default:
				b = byte(rng.Intn(256))
			}
			script = append(script, int(b))
			data = append(data, b)
		}

		src := newScript(script...)
		d := newTestDecoder(src)

		var consumed []byte
		for calls := 0; src.remaining() > 0; calls++ {
			if calls > len(script) {
				t.Fatalf("Round %d: decoder made no progress", i)
			}
			ev := d.Next(rng.Intn(2) == 0)
			raw := d.Raw()

			if len(raw) > 2+MaxEscapeLookahead {
				t.Fatalf("Round %d: %v consumed %d bytes (% X)", i, ev, len(raw), raw)
			}
			if ev.Key == KeyNone && len(raw) > 1 {
				t.Fatalf("Round %d: no-data event consumed % X", i, raw)
			}
			if ev.Key == KeyRune && raw[len(raw)-1] != ev.Char {
				t.Fatalf("Round %d: rune %v does not match input % X", i, ev, raw)
			}
			consumed = append(consumed, raw...)
		}

		if !bytes.Equal(consumed, data) {
			t.Fatalf("Round %d: consumed bytes differ from input\n got  % X\n want % X", i, consumed, data)
		}
	}
}

// TestFuzzDecoder_RandomKeys encodes random key sequences and verifies they
// decode back to the same events
func TestFuzzDecoder_RandomKeys(t *testing.T) {
	rounds := getFuzzRounds()
	rng := newFuzzRng(t)
	t.Logf("Running %d fuzz rounds", rounds)

	for i := 0; i < rounds; i++ {
		count := rng.Intn(64) + 1
		expected := make([]KeyEvent, 0, count)
		var script []int

		for j := 0; j < count; j++ {
			var ev KeyEvent
			var seq []byte
			if rng.Intn(2) == 0 {
				ev = Rune(byte(printableMin + rng.Intn(printableMax-printableMin+1)))
				seq = []byte{ev.Char}
			} else {
				ev = KeyEvent{Key: KeyUp + Key(rng.Intn(int(keyCount-KeyUp)))}
				seq = EncodeKey(ev.Key)
			}
			expected = append(expected, ev)
			for _, b := range seq {
				script = append(script, int(b))
			}
			// A lone ESC needs silence after it; the escape look-ahead consumes it
			if ev.Key == KeyEscape {
				script = append(script, gap)
			}
		}

		d := newTestDecoder(newScript(script...))
		for j, want := range expected {
			got := d.Next(true)
			if got != want {
				t.Fatalf("Round %d: event %d: expected %v, got %v", i, j, want, got)
			}
		}
		if ev := d.Next(false); ev.Key != KeyNone {
			t.Fatalf("Round %d: trailing event %v", i, ev)
		}
	}
}
