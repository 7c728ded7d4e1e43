package format

import "unsafe"

// Complex is an interleaved real/imaginary pair of integers, the in-memory layout
// of complex Byte, Short and Int samples.
type Complex[T int8 | int16 | int32] struct {
	Re T
	Im T
}

// Sample is the set of buffer element types samples can be read into.
//
// complex64 and complex128 already store real and imaginary parts interleaved,
// so they are the complex forms of Float and Double.
type Sample interface {
	int8 | int16 | int32 | float32 | float64 |
		Complex[int8] | Complex[int16] | Complex[int32] | complex64 | complex128
}

// convertible[from][to] is the element promotion lattice. Promotion is allowed
// toward wider integers and toward floating point; Double to Float is the only
// narrowing.
var convertible = [5][5]bool{
	TypeByte:   {TypeByte: true, TypeShort: true, TypeInt: true, TypeFloat: true, TypeDouble: true},
	TypeShort:  {TypeShort: true, TypeInt: true, TypeFloat: true, TypeDouble: true},
	TypeInt:    {TypeInt: true, TypeFloat: true, TypeDouble: true},
	TypeFloat:  {TypeFloat: true, TypeDouble: true},
	TypeDouble: {TypeFloat: true, TypeDouble: true},
}

// KindOf returns the encoding that T natively represents and whether T is complex.
func KindOf[T Sample]() (DataType, bool) {
	var zero T
	switch any(zero).(type) {
	case int8:
		return TypeByte, false
	case int16:
		return TypeShort, false
	case int32:
		return TypeInt, false
	case float32:
		return TypeFloat, false
	case float64:
		return TypeDouble, false
	case Complex[int8]:
		return TypeByte, true
	case Complex[int16]:
		return TypeShort, true
	case Complex[int32]:
		return TypeInt, true
	case complex64:
		return TypeFloat, true
	default: // complex128
		return TypeDouble, true
	}
}

// SizeOf returns the in-memory size of one T sample.
func SizeOf[T Sample]() int {
	var zero T
	return int(unsafe.Sizeof(zero))
}

// ConvertsToDType reports whether elements of d can be converted to elements of
// other, ignoring complexness.
func (d DataType) ConvertsToDType(other DataType) bool {
	if !d.IsValid() || !other.IsValid() {
		return false
	}

	return convertible[d][other]
}

// ReadsDirectlyTo reports whether samples of encoding d (complex or not) have
// exactly the representation of T: same width, signedness and, for complex data,
// interleaved pairs of that representation.
func ReadsDirectlyTo[T Sample](d DataType, complex bool) bool {
	kind, cplx := KindOf[T]()
	return kind == d && cplx == complex
}

// ConvertsTo reports whether samples of encoding d can be converted to T.
// Complexness must match on both sides.
func ConvertsTo[T Sample](d DataType, complex bool) bool {
	kind, cplx := KindOf[T]()
	return cplx == complex && d.ConvertsToDType(kind)
}

// SampleSize returns the encoded size of one sample of d.
func SampleSize(d DataType, complex bool) int {
	if complex {
		return 2 * d.Width()
	}

	return d.Width()
}
