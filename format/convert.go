package format

import (
	"math"
	"unsafe"

	"github.com/arloliu/grmeta/endian"
)

// Convert decodes len(dst) samples of encoding d from src into dst, promoting each
// element to T. Complexness is taken from T: a complex T consumes two elements
// per sample.
//
// The caller must ensure ConvertsTo[T](d, complex) holds and that src holds at
// least len(dst) * SampleSize(d, complex) bytes. Converting to the same type is
// allowed and only applies the byte order.
func Convert[T Sample](d DataType, engine endian.EndianEngine, src []byte, dst []T) {
	w := d.Width()

	switch out := any(dst).(type) {
	case []int8:
		convertInts(out, intDecoder(d, engine), w, src)
	case []int16:
		convertInts(out, intDecoder(d, engine), w, src)
	case []int32:
		convertInts(out, intDecoder(d, engine), w, src)
	case []float32:
		convertFloats(out, floatDecoder(d, engine), w, src)
	case []float64:
		convertFloats(out, floatDecoder(d, engine), w, src)
	case []Complex[int8]:
		convertComplexInts(out, intDecoder(d, engine), w, src)
	case []Complex[int16]:
		convertComplexInts(out, intDecoder(d, engine), w, src)
	case []Complex[int32]:
		convertComplexInts(out, intDecoder(d, engine), w, src)
	case []complex64:
		dec := floatDecoder(d, engine)
		for i := range out {
			off := 2 * i * w
			out[i] = complex(float32(dec(src[off:])), float32(dec(src[off+w:])))
		}
	case []complex128:
		dec := floatDecoder(d, engine)
		for i := range out {
			off := 2 * i * w
			out[i] = complex(dec(src[off:]), dec(src[off+w:]))
		}
	}
}

// AsBytes reinterprets a sample buffer as its underlying bytes, allowing samples
// stored in host byte order to be read straight into dst.
func AsBytes[T Sample](dst []T) []byte {
	if len(dst) == 0 {
		return nil
	}

	return unsafe.Slice((*byte)(unsafe.Pointer(unsafe.SliceData(dst))), len(dst)*SizeOf[T]())
}

func convertInts[T int8 | int16 | int32](dst []T, dec func([]byte) int64, w int, src []byte) {
	for i := range dst {
		dst[i] = T(dec(src[i*w:]))
	}
}

func convertFloats[T float32 | float64](dst []T, dec func([]byte) float64, w int, src []byte) {
	for i := range dst {
		dst[i] = T(dec(src[i*w:]))
	}
}

func convertComplexInts[T int8 | int16 | int32](dst []Complex[T], dec func([]byte) int64, w int, src []byte) {
	for i := range dst {
		off := 2 * i * w
		dst[i] = Complex[T]{Re: T(dec(src[off:])), Im: T(dec(src[off+w:]))}
	}
}

// intDecoder returns a reader of one integer element. It is only used for
// integer encodings; the lattice never converts floating point to integers.
func intDecoder(d DataType, engine endian.EndianEngine) func([]byte) int64 {
	switch d {
	case TypeByte:
		return func(b []byte) int64 { return int64(int8(b[0])) }
	case TypeShort:
		return func(b []byte) int64 { return int64(int16(engine.Uint16(b))) }
	default:
		return func(b []byte) int64 { return int64(int32(engine.Uint32(b))) }
	}
}

func floatDecoder(d DataType, engine endian.EndianEngine) func([]byte) float64 {
	switch d {
	case TypeFloat:
		return func(b []byte) float64 { return float64(math.Float32frombits(engine.Uint32(b))) }
	case TypeDouble:
		return func(b []byte) float64 { return math.Float64frombits(engine.Uint64(b)) }
	default:
		dec := intDecoder(d, engine)
		return func(b []byte) float64 { return float64(dec(b)) }
	}
}
