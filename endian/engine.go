// Package endian provides the byte-order primitives the line-position
// storage needs: native-order access for block seeds and Long-form
// absolute values, and the fixed big-endian order the Medium form is
// pinned to regardless of host.
package endian

import (
	"encoding/binary"
	"unsafe"
)

// EndianEngine combines ByteOrder and AppendByteOrder from encoding/binary
// into one interface, satisfied by both binary.LittleEndian and binary.BigEndian.
type EndianEngine interface {
	binary.ByteOrder
	binary.AppendByteOrder
}

// CheckEndianness uses a fixed integer value to determine the host's byte order.
func CheckEndianness() binary.ByteOrder {
	// 0x0100 is 256. For a little-endian system, the LSB (0x00) is first.
	// For a big-endian system, the MSB (0x01) is first.
	var i uint16 = 0x0100

	b := (*[2]byte)(unsafe.Pointer(&i))

	if b[0] == 0x01 {
		return binary.BigEndian
	}

	return binary.LittleEndian
}

func IsNativeLittleEndian() bool {
	return CheckEndianness() == binary.LittleEndian
}

func IsNativeBigEndian() bool {
	return CheckEndianness() == binary.BigEndian
}

func CompareNativeEndian(engine EndianEngine) bool {
	return engine == CheckEndianness()
}

// GetLittleEndianEngine returns the little-endian engine.
func GetLittleEndianEngine() EndianEngine {
	return binary.LittleEndian
}

// GetBigEndianEngine returns the big-endian engine.
func GetBigEndianEngine() EndianEngine {
	return binary.BigEndian
}

// NativeEngine returns the engine matching the host's byte order. Block
// seeds and Long-form absolute values are written with this engine: the
// packed stream is a transient, in-memory structure and is never expected
// to move between machines of differing endianness.
func NativeEngine() EndianEngine {
	if IsNativeBigEndian() {
		return binary.BigEndian
	}

	return binary.LittleEndian
}

// PutNative writes v into buf using the host's native byte order.
func PutNative[T ~uint32 | ~uint64](buf []byte, v T) {
	switch x := any(v).(type) {
	case uint32:
		NativeEngine().PutUint32(buf, x)
	case uint64:
		NativeEngine().PutUint64(buf, x)
	default:
		panic("endian: unsupported native width")
	}
}

// Native reads a T from buf using the host's native byte order.
func Native[T ~uint32 | ~uint64](buf []byte) T {
	var zero T
	switch any(zero).(type) {
	case uint32:
		return T(NativeEngine().Uint32(buf))
	case uint64:
		return T(NativeEngine().Uint64(buf))
	default:
		panic("endian: unsupported native width")
	}
}
