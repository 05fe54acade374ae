// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

// Package conterm provides the terminal layer for serial consoles.
//
// It decodes a raw console byte stream into logical key events with bounded
// look-ahead, and renders the small set of ANSI control sequences a line
// editor needs while keeping a shadow of the cursor position.
package conterm

import "time"

// Control bytes
const (
	ByteCtrlA     = 0x01
	ByteCtrlC     = 0x03
	ByteCtrlE     = 0x05
	ByteBackspace = 0x08
	ByteTab       = 0x09
	ByteLF        = 0x0A
	ByteCtrlK     = 0x0B
	ByteCR        = 0x0D
	ByteCtrlT     = 0x14
	ByteCtrlU     = 0x15
	ByteCtrlZ     = 0x1A
	ByteEsc       = 0x1B
	ByteDel       = 0x7F
)

// CSI framing
const (
	csiIntroducer = '[' // second byte of ESC [
	csiTilde      = '~' // terminator of ESC [ n ~
	csiSS3Prefix  = 'O' // ESC [ O F
	csiSS3End     = 'F'

	csiFinalMin = 0x40 // '@'
	csiFinalMax = 0x56 // 'V'
	csiDigitMin = '1'
	csiDigitMax = '6'
)

// Printable range (C locale isprint)
const (
	printableMin = 0x20
	printableMax = 0x7E
)

// MaxANSISize bounds the scratch buffer used to format one ANSI sequence.
// A formatted sequence is at most MaxANSISize-1 bytes long.
const MaxANSISize = 20

// MaxEscapeLookahead is the most bytes consumed after an initial ESC.
const MaxEscapeLookahead = 4

// Default terminal dimensions
const (
	DefaultRows = 25
	DefaultCols = 80
)

// Default read timeouts
const (
	// DefaultKeyTimeout bounds the wait for the first byte of a key in blocking mode.
	DefaultKeyTimeout = 1000 * time.Millisecond

	// DefaultEscapeTimeout bounds the wait for each continuation byte after ESC.
	DefaultEscapeTimeout = 50 * time.Millisecond
)
