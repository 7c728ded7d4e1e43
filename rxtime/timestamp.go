// Package rxtime implements the reception timestamp of capture segments.
//
// A Timestamp is a signed count of whole seconds plus an unsigned binary fraction
// of a second with 64 bits of precision, relative to an arbitrary origin. This keeps
// sub-nanosecond resolution at any date, which a float64 cannot do for absolute
// epochs (as of 2025 a float64 UNIX time only resolves about 0.3µs).
//
// Arithmetic on Timestamps is exact. Floating point is used only at the last step
// of tolerance checks (AbsDiffSeconds), never to build a new Timestamp from another.
package rxtime

import (
	"math"
	"math/big"
	"math/bits"
	"strconv"
)

// productPrec is wide enough to hold an int64 times a float64 mantissa exactly.
const productPrec = 192

// Timestamp is Sec + Frac/2^64 seconds. Frac is always the non-negative part, so
// -0.25s is represented as {Sec: -1, Frac: 0.75 * 2^64}.
type Timestamp struct {
	Sec  int64
	Frac uint64
}

// New creates a Timestamp from whole seconds and a fraction in units of 2^-64 s.
func New(sec int64, frac uint64) Timestamp {
	return Timestamp{Sec: sec, Frac: frac}
}

// FromParts builds a Timestamp from the (whole seconds, fractional seconds) pair
// stored in capture headers. frac may lie outside [0, 1); it is normalized.
func FromParts(sec uint64, frac float64) Timestamp {
	whole := Timestamp{Sec: int64(sec)} //nolint:gosec

	return whole.Add(FromSeconds(frac))
}

// FromSeconds converts a floating point number of seconds, rounding toward
// negative infinity at 2^-64 s. Inputs must be finite with magnitude below 2^63;
// NaN and infinities yield the zero Timestamp.
func FromSeconds(secs float64) Timestamp {
	if math.IsNaN(secs) || math.IsInf(secs, 0) {
		return Timestamp{}
	}

	return FromProduct(1, secs)
}

// FromProduct returns k * secs, computed without intermediate rounding.
// It is used to extrapolate sample times: k samples of a given duration.
func FromProduct(k int64, secs float64) Timestamp {
	x := new(big.Float).SetPrec(productPrec).SetInt64(k)
	x.Mul(x, new(big.Float).SetPrec(productPrec).SetFloat64(secs))

	whole, _ := x.Int(nil)
	frac := new(big.Float).SetPrec(productPrec).SetInt(whole)
	frac.Sub(x, frac)
	if frac.Sign() < 0 {
		// Int truncates toward zero; move to the floor.
		whole.Sub(whole, big.NewInt(1))
		frac.Add(frac, big.NewFloat(1))
	}

	// A fraction a hair below 1 may round up to 1 at productPrec; Uint64
	// saturates it to the largest fraction instead of wrapping.
	frac.SetMantExp(frac, 64)
	f, _ := frac.Uint64()

	return Timestamp{Sec: whole.Int64(), Frac: f}
}

// Add returns t + o, carrying from the fraction into the seconds.
func (t Timestamp) Add(o Timestamp) Timestamp {
	frac, carry := bits.Add64(t.Frac, o.Frac, 0)
	return Timestamp{Sec: t.Sec + o.Sec + int64(carry), Frac: frac} //nolint:gosec
}

// Sub returns t - o, borrowing from the seconds when needed.
func (t Timestamp) Sub(o Timestamp) Timestamp {
	frac, borrow := bits.Sub64(t.Frac, o.Frac, 0)
	return Timestamp{Sec: t.Sec - o.Sec - int64(borrow), Frac: frac} //nolint:gosec
}

// Neg returns -t.
func (t Timestamp) Neg() Timestamp {
	return Timestamp{}.Sub(t)
}

// Compare returns -1, 0 or +1 depending on whether t is before, equal to or after o.
func (t Timestamp) Compare(o Timestamp) int {
	switch {
	case t.Sec < o.Sec:
		return -1
	case t.Sec > o.Sec:
		return 1
	case t.Frac < o.Frac:
		return -1
	case t.Frac > o.Frac:
		return 1
	default:
		return 0
	}
}

// Equal reports exact equality.
func (t Timestamp) Equal(o Timestamp) bool {
	return t == o
}

// Before reports whether t is strictly earlier than o.
func (t Timestamp) Before(o Timestamp) bool {
	return t.Compare(o) < 0
}

// IsNegative reports whether t lies before the origin.
func (t Timestamp) IsNegative() bool {
	return t.Sec < 0
}

// Seconds converts t to floating point seconds. Precision degrades for
// timestamps far from the origin.
func (t Timestamp) Seconds() float64 {
	return float64(t.Sec) + math.Ldexp(float64(t.Frac), -64)
}

// AbsDiffSeconds returns |t - o| in seconds. The difference is taken exactly and
// only converted to floating point at the end, so small differences between large
// timestamps keep their precision.
func (t Timestamp) AbsDiffSeconds(o Timestamp) float64 {
	d := t.Sub(o)
	if d.IsNegative() {
		d = d.Neg()
	}

	return d.Seconds()
}

// IsSameAs reports whether t and o are within tol seconds of each other.
func (t Timestamp) IsSameAs(o Timestamp, tol float64) bool {
	return t.AbsDiffSeconds(o) <= tol
}

// String formats t as decimal seconds with nanosecond resolution.
func (t Timestamp) String() string {
	neg := t.IsNegative()
	if neg {
		t = t.Neg()
	}

	nanos, _ := bits.Mul64(t.Frac, 1_000_000_000)
	s := strconv.FormatInt(t.Sec, 10) + "." + leftPad(strconv.FormatUint(nanos, 10), 9)
	if neg {
		return "-" + s
	}

	return s
}

func leftPad(s string, n int) string {
	for len(s) < n {
		s = "0" + s
	}

	return s
}
