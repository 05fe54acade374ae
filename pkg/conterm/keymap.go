// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package conterm

// csiFinalKeys maps the third byte of ESC [ x for x in 0x40-0x56.
// Bytes in range but absent here decode as KeyUnknown. 'O' is not a key
// on its own: it introduces ESC [ O F and is handled by the decoder.
var csiFinalKeys = map[byte]Key{
	0x40: KeyInsert,   // @
	0x41: KeyUp,       // A
	0x42: KeyDown,     // B
	0x43: KeyRight,    // C
	0x44: KeyLeft,     // D
	0x48: KeyHome,     // H
	0x55: KeyPageDown, // U
	0x56: KeyPageUp,   // V
}

// csiTildeKeys maps the digit of ESC [ n ~
var csiTildeKeys = map[byte]Key{
	'1': KeyHome,
	'2': KeyInsert,
	'3': KeyDelete,
	'4': KeyEnd,
	'5': KeyPageUp,
	'6': KeyPageDown,
}

// controlKeys maps single non-printable bytes outside the ESC, CR and LF paths.
// 0x7F is reported as Delete; some terminal emulators send it for Backspace.
var controlKeys = map[byte]Key{
	ByteTab:       KeyTab,
	ByteDel:       KeyDelete,
	ByteBackspace: KeyBackspace,
	ByteCtrlA:     KeyCtrlA,
	ByteCtrlC:     KeyCtrlC,
	ByteCtrlE:     KeyCtrlE,
	ByteCtrlK:     KeyCtrlK,
	ByteCtrlT:     KeyCtrlT,
	ByteCtrlU:     KeyCtrlU,
	ByteCtrlZ:     KeyCtrlZ,
}

// isPrintable matches the C locale isprint classification
func isPrintable(b byte) bool {
	return b >= printableMin && b <= printableMax
}

// lookupCSIFinal resolves the third byte of a CSI sequence in the 0x40-0x56 range
func lookupCSIFinal(b byte) Key {
	if k, ok := csiFinalKeys[b]; ok {
		return k
	}
	return KeyUnknown
}

// lookupCSITilde resolves the digit of a tilde sequence
func lookupCSITilde(digit byte) Key {
	if k, ok := csiTildeKeys[digit]; ok {
		return k
	}
	return KeyUnknown
}

// lookupControl resolves a single control byte
func lookupControl(b byte) Key {
	if k, ok := controlKeys[b]; ok {
		return k
	}
	return KeyUnknown
}

// EncodeKey returns the canonical byte sequence that decodes to k.
// It returns nil for KeyNone, KeyUnknown and KeyRune.
func EncodeKey(k Key) []byte {
	switch k {
	case KeyEnter:
		return []byte{ByteCR}
	case KeyEscape:
		return []byte{ByteEsc}
	case KeyEnd:
		return []byte{ByteEsc, csiIntroducer, csiSS3Prefix, csiSS3End}
	}
	for b, ck := range controlKeys {
		if ck == k {
			return []byte{b}
		}
	}
	for b, ck := range csiFinalKeys {
		if ck == k {
			return []byte{ByteEsc, csiIntroducer, b}
		}
	}
	return nil
}
