package lineenc

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/kloggish/clpstore/endian"
)

func roundTrip32(t *testing.T, offsets []uint64) {
	t.Helper()

	buf := make([]byte, 4096)
	cursor := 4
	require.GreaterOrEqual(t, len(offsets), 1)

	prev := offsets[0]
	for _, pos := range offsets[1:] {
		cursor = Encode[uint32](buf, cursor, prev, pos)
		prev = pos
	}

	cursor = 4
	got := make([]uint64, 0, len(offsets))
	got = append(got, offsets[0])
	prev = offsets[0]
	for range offsets[1:] {
		var pos uint64
		pos, cursor = Decode[uint32](buf, cursor, prev)
		got = append(got, pos)
		prev = pos
	}

	require.Equal(t, offsets, got)
}

func TestShortFormRoundTrip(t *testing.T) {
	roundTrip32(t, []uint64{0, 5, 11, 138})
}

func TestMediumFormRoundTrip(t *testing.T) {
	roundTrip32(t, []uint64{0, 200})
}

func TestMixedDeltasRoundTrip(t *testing.T) {
	roundTrip32(t, []uint64{0, 1, 127, 128, 16383, 16384 + 1, 16384 + 1 + 5000})
}

func TestShortFormEncoding(t *testing.T) {
	buf := make([]byte, 16)
	next := Encode[uint32](buf, 0, 11, 138) // delta=127
	require.Equal(t, 1, next)
	require.Equal(t, byte(127), buf[0])
	require.Zero(t, buf[0]&0x80)
}

func TestMediumFormEncodingBigEndianPattern(t *testing.T) {
	buf := make([]byte, 16)
	// cursor=0 is already 2-aligned, so no skip marker is emitted.
	next := Encode[uint32](buf, 0, 0, 200) // delta=200
	require.Equal(t, 2, next)
	require.Equal(t, byte(0x80), buf[0])
	require.Equal(t, byte(200), buf[1])
}

func TestMediumFormEncodingWithAlignmentSkip(t *testing.T) {
	buf := make([]byte, 16)
	// cursor=1 is misaligned for a 2-byte word; expect a 0xC1 skip marker.
	next := Encode[uint32](buf, 1, 0, 200)
	require.Equal(t, byte(0xC1), buf[1])
	require.Equal(t, byte(0x80), buf[2])
	require.Equal(t, byte(200), buf[3])
	require.Equal(t, 4, next)

	pos, newCursor := Decode[uint32](buf, 1, 0)
	require.Equal(t, uint64(200), pos)
	require.Equal(t, 4, newCursor)
}

func TestLongFormRoundTrip32(t *testing.T) {
	buf := make([]byte, 32)
	// Delta within uint32 range but >= 16384 still forces the Long form.
	next := Encode[uint32](buf, 0, 5, 5+70_000)
	require.Equal(t, byte(0xFF), buf[0])

	pos, newCursor := Decode[uint32](buf, 0, 5)
	require.Equal(t, uint64(5+70_000), pos)
	require.Equal(t, next, newCursor)
}

func TestLongFormRoundTrip64(t *testing.T) {
	buf := make([]byte, 32)
	next := Encode[uint64](buf, 0, 1, 5_000_000_000)
	require.Equal(t, byte(0xFF), buf[0])

	pos, newCursor := Decode[uint64](buf, 0, 1)
	require.Equal(t, uint64(5_000_000_000), pos)
	require.Equal(t, next, newCursor)
}

func TestLongFormAlignmentPadding64(t *testing.T) {
	buf := make([]byte, 32)
	// cursor=1: header occupies [1,2], value must start 8-aligned => pad so that 1+2+pad % 8 == 0
	next := Encode[uint64](buf, 1, 0, 9_000_000_000)
	pad := int(buf[2])
	require.Equal(t, byte(0xFF), buf[1])
	require.Zero(t, (1 + 2 + pad) % 8)

	pos, newCursor := Decode[uint64](buf, 1, 0)
	require.Equal(t, uint64(9_000_000_000), pos)
	require.Equal(t, next, newCursor)
}

func TestDecodeSeed(t *testing.T) {
	buf := make([]byte, 16)
	endianPutNative32(buf, 42)

	pos, cursor := DecodeSeed[uint32](buf)
	require.Equal(t, uint64(42), pos)
	require.Equal(t, 4, cursor)
}

func TestMediumDiscriminatedFromLongMarker(t *testing.T) {
	// 0xFF must never be mistaken for a Medium header even though it also
	// matches the bare "top two bits 10xxxxxx"-style check if tested loosely.
	buf := make([]byte, 32)
	Encode[uint64](buf, 0, 0, 5_000_000_000)
	require.Equal(t, byte(0xFF), buf[0])

	pos, _ := Decode[uint64](buf, 0, 0)
	require.Equal(t, uint64(5_000_000_000), pos)
}

func endianPutNative32(buf []byte, v uint32) {
	// Writes the seed in the host's byte order, which is what DecodeSeed reads.
	endian.PutNative(buf[:4], v)
}
