// Package format defines the element encodings of capture samples, the
// conversion lattice between them, and the compression types of archived captures.
package format

import "fmt"

type (
	// DataType is the element encoding of a segment. Whether samples are complex
	// (interleaved real/imaginary pairs) is tracked separately by the header.
	DataType uint8

	CompressionType uint8
)

const (
	TypeByte   DataType = 0x0 // TypeByte is a signed 8-bit integer, reads directly to int8.
	TypeShort  DataType = 0x1 // TypeShort is a signed 16-bit integer, reads directly to int16.
	TypeInt    DataType = 0x2 // TypeInt is a signed 32-bit integer, reads directly to int32.
	TypeFloat  DataType = 0x3 // TypeFloat is an IEEE754 single, reads directly to float32.
	TypeDouble DataType = 0x4 // TypeDouble is an IEEE754 double, reads directly to float64.

	CompressionNone CompressionType = 0x1 // CompressionNone represents an uncompressed capture.
	CompressionZstd CompressionType = 0x2 // CompressionZstd represents a Zstandard archived capture.
	CompressionS2   CompressionType = 0x3 // CompressionS2 represents an S2 archived capture.
	CompressionLZ4  CompressionType = 0x4 // CompressionLZ4 represents an LZ4 block archived capture.
)

// DataTypeFromCode maps the header "type" code to a DataType.
func DataTypeFromCode(code int32) (DataType, error) {
	if code < int32(TypeByte) || code > int32(TypeDouble) {
		return 0, fmt.Errorf("data type code %d out of range", code)
	}

	return DataType(code), nil
}

// Width returns the size in bytes of one (real) element.
func (d DataType) Width() int {
	switch d {
	case TypeByte:
		return 1
	case TypeShort:
		return 2
	case TypeInt, TypeFloat:
		return 4
	case TypeDouble:
		return 8
	default:
		return 0
	}
}

// IsFloating reports whether the encoding is a floating point type.
func (d DataType) IsFloating() bool {
	return d == TypeFloat || d == TypeDouble
}

// IsValid reports whether d is one of the five supported encodings.
func (d DataType) IsValid() bool {
	return d <= TypeDouble
}

func (d DataType) String() string {
	switch d {
	case TypeByte:
		return "Byte"
	case TypeShort:
		return "Short"
	case TypeInt:
		return "Int"
	case TypeFloat:
		return "Float"
	case TypeDouble:
		return "Double"
	default:
		return "Unknown"
	}
}

func (c CompressionType) String() string {
	switch c {
	case CompressionNone:
		return "None"
	case CompressionZstd:
		return "Zstd"
	case CompressionS2:
		return "S2"
	case CompressionLZ4:
		return "LZ4"
	default:
		return "Unknown"
	}
}
