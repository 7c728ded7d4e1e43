package pmt

import (
	"maps"
	"slices"
	"strconv"
	"strings"
)

// Wire type bytes.
const (
	typeTrue   byte = 0x00
	typeFalse  byte = 0x01
	typeSymbol byte = 0x02
	typeInt32  byte = 0x03
	typeDouble byte = 0x04
	typeNull   byte = 0x06
	typePair   byte = 0x07
	typeDict   byte = 0x09
	typeUInt64 byte = 0x0b
	typeTuple  byte = 0x0c
)

// Kind identifies the variant of a Tag.
type Kind uint8

const (
	KindBool Kind = iota + 1
	KindSymbol
	KindInt32
	KindDouble
	KindNull
	KindPair
	KindDict
	KindUInt64
	KindTuple
)

func (k Kind) String() string {
	switch k {
	case KindBool:
		return "Bool"
	case KindSymbol:
		return "Symbol"
	case KindInt32:
		return "Int32"
	case KindDouble:
		return "Double"
	case KindNull:
		return "Null"
	case KindPair:
		return "Pair"
	case KindDict:
		return "Dict"
	case KindUInt64:
		return "UInt64"
	case KindTuple:
		return "Tuple"
	default:
		return "Unknown"
	}
}

// Tag is one decoded value. Tags are immutable once parsed; callers must not
// modify the maps or slices of Dict and Tuple values they receive.
type Tag interface {
	Kind() Kind
	String() string
}

type (
	Bool   bool
	Symbol string
	Int32  int32
	Double float64
	Null   struct{}
	UInt64 uint64

	// Pair holds two tags.
	Pair struct {
		First  Tag
		Second Tag
	}

	// Dict maps unique symbol names to tags.
	Dict map[string]Tag

	// Tuple is an ordered sequence of tags.
	Tuple []Tag
)

var (
	_ Tag = Bool(false)
	_ Tag = Symbol("")
	_ Tag = Int32(0)
	_ Tag = Double(0)
	_ Tag = Null{}
	_ Tag = UInt64(0)
	_ Tag = Pair{}
	_ Tag = Dict(nil)
	_ Tag = Tuple(nil)
)

func (Bool) Kind() Kind   { return KindBool }
func (Symbol) Kind() Kind { return KindSymbol }
func (Int32) Kind() Kind  { return KindInt32 }
func (Double) Kind() Kind { return KindDouble }
func (Null) Kind() Kind   { return KindNull }
func (UInt64) Kind() Kind { return KindUInt64 }
func (Pair) Kind() Kind   { return KindPair }
func (Dict) Kind() Kind   { return KindDict }
func (Tuple) Kind() Kind  { return KindTuple }

func (b Bool) String() string   { return strconv.FormatBool(bool(b)) }
func (s Symbol) String() string { return strconv.Quote(string(s)) }
func (i Int32) String() string  { return strconv.FormatInt(int64(i), 10) }
func (d Double) String() string { return strconv.FormatFloat(float64(d), 'g', -1, 64) }
func (Null) String() string     { return "null" }
func (u UInt64) String() string { return strconv.FormatUint(uint64(u), 10) }

func (p Pair) String() string {
	return "(" + tagString(p.First) + " . " + tagString(p.Second) + ")"
}

// String renders the dictionary with keys in sorted order.
func (d Dict) String() string {
	var sb strings.Builder
	sb.WriteByte('{')
	for i, k := range d.Keys() {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(strconv.Quote(k))
		sb.WriteString(": ")
		sb.WriteString(tagString(d[k]))
	}
	sb.WriteByte('}')

	return sb.String()
}

func (t Tuple) String() string {
	var sb strings.Builder
	sb.WriteByte('[')
	for i, v := range t {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(tagString(v))
	}
	sb.WriteByte(']')

	return sb.String()
}

// Keys returns the dictionary keys in sorted order.
func (d Dict) Keys() []string {
	return slices.Sorted(maps.Keys(d))
}

// Lookup returns the tag stored under key.
func (d Dict) Lookup(key string) (Tag, bool) {
	v, ok := d[key]
	return v, ok
}

func tagString(t Tag) string {
	if t == nil {
		return "<nil>"
	}

	return t.String()
}
