package pmt

import (
	"errors"
	"fmt"
	"io"
	"math"
	"unicode/utf8"

	"github.com/arloliu/grmeta/endian"
	"github.com/arloliu/grmeta/errs"
)

// maxTuplePrealloc bounds the capacity reserved from an untrusted tuple count.
const maxTuplePrealloc = 64

// Decoder reads tags from a byte stream and tracks how many bytes it consumed.
//
// Note: The Decoder is NOT thread-safe.
type Decoder struct {
	r      io.Reader
	engine endian.EndianEngine
	n      int64
	buf    [8]byte
}

// NewDecoder creates a decoder reading from r.
//
// The decoder reads exactly the bytes of each record from r, so the position of r
// after a successful Decode is the first byte following the record.
func NewDecoder(r io.Reader) *Decoder {
	return &Decoder{
		r:      r,
		engine: endian.GetBigEndianEngine(),
	}
}

// BytesRead returns the number of bytes consumed since the decoder was created.
func (d *Decoder) BytesRead() int64 {
	return d.n
}

// Decode reads one complete record.
//
// Returns:
//   - Tag: The decoded value
//   - error: ErrUnexpectedEOF if the stream ends inside the record (including at
//     its first byte), a parse error for malformed input, or the reader's error
func (d *Decoder) Decode() (Tag, error) {
	kind, err := d.readByte()
	if err != nil {
		return nil, err
	}

	return d.decodeBody(kind)
}

// DecodeOptional reads one record, reporting ok=false if the stream is cleanly
// exhausted before the first byte of the record.
//
// Returns:
//   - Tag: The decoded value (nil when ok is false)
//   - bool: false only for a clean end of stream at a record boundary
//   - error: Same conditions as Decode once the first byte has been read
func (d *Decoder) DecodeOptional() (Tag, bool, error) {
	n, err := io.ReadFull(d.r, d.buf[:1])
	if n == 0 && errors.Is(err, io.EOF) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	d.n++

	tag, err := d.decodeBody(d.buf[0])
	if err != nil {
		return nil, false, err
	}

	return tag, true, nil
}

// Parse decodes a single record from r.
func Parse(r io.Reader) (Tag, error) {
	return NewDecoder(r).Decode()
}

// ParseOptional decodes a single record from r, returning ok=false on a clean
// end of stream before the record starts.
func ParseOptional(r io.Reader) (Tag, bool, error) {
	return NewDecoder(r).DecodeOptional()
}

func (d *Decoder) decodeBody(kind byte) (Tag, error) {
	switch kind {
	case typeTrue:
		return Bool(true), nil
	case typeFalse:
		return Bool(false), nil
	case typeSymbol:
		return d.decodeSymbol()
	case typeInt32:
		b, err := d.read(4)
		if err != nil {
			return nil, err
		}

		return Int32(int32(d.engine.Uint32(b))), nil //nolint:gosec
	case typeDouble:
		b, err := d.read(8)
		if err != nil {
			return nil, err
		}

		return Double(math.Float64frombits(d.engine.Uint64(b))), nil
	case typeNull:
		return Null{}, nil
	case typePair:
		first, err := d.Decode()
		if err != nil {
			return nil, err
		}
		second, err := d.Decode()
		if err != nil {
			return nil, err
		}

		return Pair{First: first, Second: second}, nil
	case typeDict:
		return d.decodeDict()
	case typeUInt64:
		b, err := d.read(8)
		if err != nil {
			return nil, err
		}

		return UInt64(d.engine.Uint64(b)), nil
	case typeTuple:
		return d.decodeTuple()
	default:
		return nil, fmt.Errorf("%w: 0x%02x at byte %d", errs.ErrUnknownTag, kind, d.n-1)
	}
}

func (d *Decoder) decodeSymbol() (Tag, error) {
	b, err := d.read(2)
	if err != nil {
		return nil, err
	}

	size := int(d.engine.Uint16(b))
	text := make([]byte, size)
	if err := d.readInto(text); err != nil {
		return nil, err
	}

	if !utf8.Valid(text) {
		return nil, fmt.Errorf("%w: %q", errs.ErrInvalidSymbol, text)
	}

	return Symbol(text), nil
}

// decodeDict consumes the chain that follows a dict type byte.
func (d *Decoder) decodeDict() (Tag, error) {
	dict := make(Dict)
	for {
		kind, err := d.readByte()
		if err != nil {
			return nil, err
		}
		if kind != typePair {
			return nil, fmt.Errorf("%w: expected pair, got 0x%02x", errs.ErrMalformedDict, kind)
		}

		key, err := d.Decode()
		if err != nil {
			return nil, err
		}
		name, ok := key.(Symbol)
		if !ok {
			return nil, fmt.Errorf("%w: key is %s, not Symbol", errs.ErrMalformedDict, key.Kind())
		}

		value, err := d.Decode()
		if err != nil {
			return nil, err
		}
		if _, dup := dict[string(name)]; dup {
			return nil, fmt.Errorf("%w: duplicate key %q", errs.ErrMalformedDict, string(name))
		}
		dict[string(name)] = value

		next, err := d.readByte()
		if err != nil {
			return nil, err
		}
		switch next {
		case typeNull:
			return dict, nil
		case typeDict:
			continue
		default:
			return nil, fmt.Errorf("%w: unexpected continuation 0x%02x", errs.ErrMalformedDict, next)
		}
	}
}

func (d *Decoder) decodeTuple() (Tag, error) {
	b, err := d.read(4)
	if err != nil {
		return nil, err
	}

	count := d.engine.Uint32(b)
	tuple := make(Tuple, 0, min(count, maxTuplePrealloc))
	for range count {
		v, err := d.Decode()
		if err != nil {
			return nil, err
		}
		tuple = append(tuple, v)
	}

	return tuple, nil
}

func (d *Decoder) readByte() (byte, error) {
	b, err := d.read(1)
	if err != nil {
		return 0, err
	}

	return b[0], nil
}

// read fills the scratch buffer with n (<= 8) bytes.
func (d *Decoder) read(n int) ([]byte, error) {
	if err := d.readInto(d.buf[:n]); err != nil {
		return nil, err
	}

	return d.buf[:n], nil
}

func (d *Decoder) readInto(p []byte) error {
	n, err := io.ReadFull(d.r, p)
	d.n += int64(n)
	if err == nil {
		return nil
	}
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return fmt.Errorf("%w: needed %d bytes at byte %d", errs.ErrUnexpectedEOF, len(p)-n, d.n)
	}

	return err
}
