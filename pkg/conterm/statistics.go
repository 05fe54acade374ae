// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package conterm

import (
	"fmt"
	"sort"
	"time"
)

// Statistics tracks decoded key events and input rates
type Statistics struct {
	StartTime      time.Time
	LastUpdateTime time.Time

	// Counters
	TotalEvents     uint64 // every event except KeyNone
	Printable       uint64
	Control         uint64
	Navigation      uint64
	Escapes         uint64 // standalone ESC presses
	EscapeSequences uint64 // events decoded from more than one byte starting with ESC
	Unknown         uint64
	NoData          uint64 // polls and timeouts that returned KeyNone
	BytesConsumed   uint64

	KeyCounts [keyCount]uint64

	// Rates (calculated)
	EventRate   float64 // events/sec
	UnknownRate float64 // unknown/sec
}

// NewStatistics creates a new statistics tracker
func NewStatistics() *Statistics {
	now := time.Now()
	return &Statistics{
		StartTime:      now,
		LastUpdateTime: now,
	}
}

// Record updates counters for one decoded event and the bytes it consumed
func (s *Statistics) Record(ev KeyEvent, raw []byte) {
	s.BytesConsumed += uint64(len(raw))

	if ev.Key == KeyNone {
		s.NoData++
		return
	}

	s.TotalEvents++
	if ev.Key < keyCount {
		s.KeyCounts[ev.Key]++
	}

	switch {
	case ev.Key == KeyRune:
		s.Printable++
	case ev.Key == KeyUnknown:
		s.Unknown++
	case ev.Key == KeyEscape:
		s.Escapes++
	case ev.Key.IsNavigation():
		s.Navigation++
	case ev.Key.IsControl():
		s.Control++
	}

	// Skip an LF swallowed after CR
	if len(raw) > 1 && raw[0] == ByteLF {
		raw = raw[1:]
	}
	if len(raw) > 1 && raw[0] == ByteEsc {
		s.EscapeSequences++
	}

	s.LastUpdateTime = time.Now()
}

// CalculateRates calculates event and unknown rates
func (s *Statistics) CalculateRates() {
	elapsed := time.Since(s.StartTime).Seconds()
	if elapsed > 0 {
		s.EventRate = float64(s.TotalEvents) / elapsed
		s.UnknownRate = float64(s.Unknown) / elapsed
	}
}

// KeyCount pairs a key with the number of times it was decoded
type KeyCount struct {
	Key   Key
	Count uint64
}

// TopKeys returns the n most frequent keys, most frequent first.
// Ties are ordered by key value.
func (s *Statistics) TopKeys(n int) []KeyCount {
	counts := make([]KeyCount, 0, keyCount)
	for k, c := range s.KeyCounts {
		if c > 0 {
			counts = append(counts, KeyCount{Key: Key(k), Count: c})
		}
	}
	sort.Slice(counts, func(i, j int) bool {
		if counts[i].Count != counts[j].Count {
			return counts[i].Count > counts[j].Count
		}
		return counts[i].Key < counts[j].Key
	})
	if n >= 0 && len(counts) > n {
		counts = counts[:n]
	}
	return counts
}

// Summary returns a one-line statistics summary
func (s *Statistics) Summary() string {
	s.CalculateRates()
	return fmt.Sprintf("events=%d printable=%d control=%d nav=%d esc=%d seq=%d unknown=%d bytes=%d rate=%.1f/s",
		s.TotalEvents, s.Printable, s.Control, s.Navigation, s.Escapes,
		s.EscapeSequences, s.Unknown, s.BytesConsumed, s.EventRate)
}

// String returns a formatted statistics summary
func (s *Statistics) String() string {
	s.CalculateRates()

	var unknownPercent float64
	if s.TotalEvents > 0 {
		unknownPercent = float64(s.Unknown) * 100.0 / float64(s.TotalEvents)
	}

	elapsed := time.Since(s.StartTime)

	result := fmt.Sprintf("=== Statistics (%.0f seconds) ===\n", elapsed.Seconds())
	result += fmt.Sprintf("Total Events:    %8d\n", s.TotalEvents)
	result += fmt.Sprintf("Printable:       %8d\n", s.Printable)
	result += fmt.Sprintf("Control Keys:    %8d\n", s.Control)
	result += fmt.Sprintf("Navigation Keys: %8d\n", s.Navigation)
	if s.Escapes > 0 {
		result += fmt.Sprintf("Escape Presses:  %8d\n", s.Escapes)
	}
	if s.EscapeSequences > 0 {
		result += fmt.Sprintf("Multi-byte Keys: %8d\n", s.EscapeSequences)
	}
	if s.Unknown > 0 {
		result += fmt.Sprintf("Unknown:         %8d (%.1f%%)\n", s.Unknown, unknownPercent)
	}
	result += fmt.Sprintf("Bytes Consumed:  %8d\n", s.BytesConsumed)
	result += fmt.Sprintf("Event Rate:      %8.1f keys/sec\n", s.EventRate)
	result += fmt.Sprintf("Unknown Rate:    %8.1f keys/sec\n", s.UnknownRate)
	result += "================================\n"

	return result
}

// Reset resets all statistics counters
func (s *Statistics) Reset() {
	*s = *NewStatistics()
}
