package pmt

import (
	"fmt"
	"math"

	"github.com/arloliu/grmeta/endian"
	"github.com/arloliu/grmeta/errs"
)

// Append encodes t and appends it to dst.
//
// Dictionary entries are written in sorted key order so the encoding of a given
// value is deterministic.
//
// Returns:
//   - []byte: dst with the encoded record appended
//   - error: ErrUnsupportedTag for values without a wire form (nil tags, empty
//     dictionaries, symbols longer than 65535 bytes)
func Append(dst []byte, t Tag) ([]byte, error) {
	engine := endian.GetBigEndianEngine()

	switch v := t.(type) {
	case Bool:
		if v {
			return append(dst, typeTrue), nil
		}

		return append(dst, typeFalse), nil
	case Symbol:
		if len(v) > math.MaxUint16 {
			return dst, fmt.Errorf("%w: symbol of %d bytes", errs.ErrUnsupportedTag, len(v))
		}
		dst = append(dst, typeSymbol)
		dst = engine.AppendUint16(dst, uint16(len(v)))

		return append(dst, v...), nil
	case Int32:
		dst = append(dst, typeInt32)
		return engine.AppendUint32(dst, uint32(v)), nil //nolint:gosec
	case Double:
		dst = append(dst, typeDouble)
		return engine.AppendUint64(dst, math.Float64bits(float64(v))), nil
	case Null:
		return append(dst, typeNull), nil
	case UInt64:
		dst = append(dst, typeUInt64)
		return engine.AppendUint64(dst, uint64(v)), nil
	case Pair:
		var err error
		dst = append(dst, typePair)
		if dst, err = Append(dst, v.First); err != nil {
			return dst, err
		}

		return Append(dst, v.Second)
	case Dict:
		return appendDict(dst, v)
	case Tuple:
		if uint64(len(v)) > math.MaxUint32 {
			return dst, fmt.Errorf("%w: tuple of %d elements", errs.ErrUnsupportedTag, len(v))
		}
		dst = append(dst, typeTuple)
		dst = engine.AppendUint32(dst, uint32(len(v)))
		for _, item := range v {
			var err error
			if dst, err = Append(dst, item); err != nil {
				return dst, err
			}
		}

		return dst, nil
	default:
		return dst, fmt.Errorf("%w: %T", errs.ErrUnsupportedTag, t)
	}
}

// Marshal returns the encoding of t.
func Marshal(t Tag) ([]byte, error) {
	return Append(nil, t)
}

func appendDict(dst []byte, d Dict) ([]byte, error) {
	if len(d) == 0 {
		return dst, fmt.Errorf("%w: empty dictionary", errs.ErrUnsupportedTag)
	}

	var err error
	for i, key := range d.Keys() {
		if i == 0 {
			dst = append(dst, typeDict)
		}
		dst = append(dst, typePair)
		if dst, err = Append(dst, Symbol(key)); err != nil {
			return dst, err
		}
		if dst, err = Append(dst, d[key]); err != nil {
			return dst, err
		}
		if i == len(d)-1 {
			dst = append(dst, typeNull)
		} else {
			dst = append(dst, typeDict)
		}
	}

	return dst, nil
}
