// Package endian provides byte order utilities for decoding capture files.
//
// Two byte orders are involved when reading a capture:
//
//   - Header records (tags) are always big-endian on the wire.
//   - Sample bytes are written in the producer's host byte order, which is
//     little-endian on every platform the producer commonly runs on.
//
// EndianEngine combines encoding/binary's ByteOrder and AppendByteOrder so the
// same value can be used for decoding and for building fixtures:
//
//	engine := endian.GetBigEndianEngine()
//	n := engine.Uint32(buf[0:4])
//	buf = engine.AppendUint64(buf, 42)
//
// When the sample byte order equals the host order (see CompareNativeEndian),
// samples can be copied into typed buffers without any per-element work.
//
// # Thread Safety
//
// All functions and methods in this package are safe for concurrent use.
// The returned EndianEngine instances are immutable and stateless.
package endian

import (
	"encoding/binary"
	"unsafe"
)

// EndianEngine combines ByteOrder and AppendByteOrder interfaces from encoding/binary
// into a single interface for convenient byte order operations.
type EndianEngine interface {
	binary.ByteOrder
	binary.AppendByteOrder
}

// CheckEndianness uses a fixed integer value to determine the host's byte order.
func CheckEndianness() binary.ByteOrder {
	// 0x0100 is 256. For a little-endian system, the LSB (0x00) is first.
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

// CompareNativeEndian reports whether engine matches the host byte order, which
// allows sample bytes to be reinterpreted in place.
func CompareNativeEndian(engine EndianEngine) bool {
	return engine == CheckEndianness()
}

// GetLittleEndianEngine returns the little-endian engine.
func GetLittleEndianEngine() EndianEngine {
	return binary.LittleEndian
}

// GetBigEndianEngine returns the big-endian engine used by the tag wire format.
func GetBigEndianEngine() EndianEngine {
	return binary.BigEndian
}

// GetNativeEngine returns the engine matching the host byte order.
func GetNativeEngine() EndianEngine {
	if IsNativeBigEndian() {
		return binary.BigEndian
	}

	return binary.LittleEndian
}
