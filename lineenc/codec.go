// Package lineenc implements the opcode scheme a block's byte stream uses
// to hold one delta or absolute line offset per entry: a Short one-byte
// form, a Medium two-byte big-endian form, and a Long form that falls back
// to an absolute, natively-ordered T value when the delta is too large to
// encode relatively.
//
// Encode and Decode are stateless: they take a byte-relative cursor and
// return the cursor advanced past the entry they wrote or read. All state
// (the previous absolute position) lives in the caller — linestorage.
package lineenc

import (
	"unsafe"

	"github.com/kloggish/clpstore/endian"
	"github.com/kloggish/clpstore/position"
)

const (
	shortMax  = 1 << 7  // deltas below this fit the Short form
	mediumMax = 1 << 14 // deltas below this fit the Medium form

	longMarker = 0xFF  // Long form discriminator; checked before the alignment-skip pattern
	skipMask   = 0xC0  // top two bits of an alignment-skip marker
	skipBits   = 0x3F  // low six bits of an alignment-skip marker carry the skip count
	mediumBits = 0x80  // top two bits "10" tag a Medium header byte
	mediumMask = 0xC0
)

// alignPad returns the number of bytes needed to advance cursor to the next
// multiple of alignment, or 0 if it is already aligned.
func alignPad(cursor, alignment int) int {
	rem := cursor % alignment
	if rem == 0 {
		return 0
	}

	return alignment - rem
}

// Encode writes one entry — the absolute value pos, expressed relative to
// prev — into buf at cursor, choosing the narrowest form that fits, and
// returns the cursor advanced past it.
//
// Short is used when pos-prev < 128, Medium when it is < 16384 (preceded by
// a one-byte alignment-skip marker if the 16-bit word would otherwise land
// unaligned), and Long — a natively-ordered absolute T value, preceded by
// a 0xFF/pad header — otherwise.
func Encode[T position.Width](buf []byte, cursor int, prev, pos uint64) int {
	delta := pos - prev

	switch {
	case delta < shortMax:
		buf[cursor] = byte(delta)

		return cursor + 1

	case delta < mediumMax:
		if pad := alignPad(cursor, 2); pad != 0 {
			buf[cursor] = skipMask | byte(pad)
			cursor += pad
		}

		buf[cursor] = mediumBits | byte(delta>>8)
		buf[cursor+1] = byte(delta)

		return cursor + 2

	default:
		var zero T
		size := int(unsafe.Sizeof(zero))
		align := int(unsafe.Alignof(zero))

		pad := alignPad(cursor+2, align)
		buf[cursor] = longMarker
		buf[cursor+1] = byte(pad)
		cursor += 2 + pad

		endian.PutNative(buf[cursor:cursor+size], T(pos))

		return cursor + size
	}
}

// DecodeSeed reads the seed at the start of a block and returns the cursor
// positioned at the first encoded entry (sizeof(T) bytes in).
func DecodeSeed[T position.Width](block []byte) (pos uint64, cursor int) {
	var zero T
	size := int(unsafe.Sizeof(zero))

	return uint64(endian.Native[T](block[:size])), size
}

// Decode reads one entry from block at cursor, given the previous absolute
// position, and returns the new absolute position together with the
// cursor advanced past the entry.
//
// The 0xFF Long discriminator is checked before the generic "top two bits
// are 11" alignment-skip pattern, since 0xFF itself matches that pattern;
// getting this check order backwards would misparse every Long entry.
func Decode[T position.Width](block []byte, cursor int, prev uint64) (pos uint64, newCursor int) {
	b := block[cursor]

	if b&0x80 == 0 {
		// Short form.
		return prev + uint64(b), cursor + 1
	}

	if b != longMarker && b&mediumMask == skipMask {
		// Alignment-skip marker: advance and re-read the real header byte.
		cursor += int(b & skipBits)
		b = block[cursor]
	}

	cursor++

	if b&mediumMask == mediumBits {
		lo := block[cursor]
		delta := (uint64(b&0x3F) << 8) | uint64(lo)

		return prev + delta, cursor + 1
	}

	// Long form: b == 0xFF. The next byte is the pad count.
	pad := int(block[cursor])
	cursor += pad + 1

	var zero T
	size := int(unsafe.Sizeof(zero))
	value := uint64(endian.Native[T](block[cursor : cursor+size]))

	return value, cursor + size
}
