// Package fixed64 implements the Q32.32 saturating fixed-point type that
// every kernel path uses in place of floating point. A Fixed64 is a raw
// int64 interpreted as value * 2^32; addition, subtraction and
// multiplication saturate at the int64 range and division is either
// fallible (TryDiv) or deterministically invalidated on a zero divisor
// (DivAssignDet), per the arithmetic contract in spec.md §3/§4.1.
package fixed64

import (
	"fmt"
	"math/bits"

	"github.com/tongosu/ddonirang/signal"
)

// Fixed64 is a Q32.32 fixed-point number: raw / 2^32.
type Fixed64 struct {
	raw int64
}

// ErrDivByZero is returned by TryDiv when the divisor is zero. Division
// by zero never produces a Fixed64 value; callers that need the
// signal-emitting "invalidated assignment" behavior use DivAssignDet
// instead.
var ErrDivByZero = fmt.Errorf("fixed64: division by zero")

const (
	// FracBits is the number of fractional bits (the Q32.32 scale).
	FracBits = 32
	// OneRaw is the raw representation of 1.0.
	OneRaw int64 = 1 << FracBits
)

var (
	// Zero is the additive identity.
	Zero = Fixed64{raw: 0}
	// One is 1.0.
	One = Fixed64{raw: OneRaw}
	// NegOne is -1.0.
	NegOne = Fixed64{raw: -OneRaw}
	// Min is the smallest representable Fixed64.
	Min = Fixed64{raw: minInt64}
	// Max is the largest representable Fixed64.
	Max = Fixed64{raw: maxInt64}
)

const (
	minInt64 = -1 << 63
	maxInt64 = 1<<63 - 1
)

// FromRawI64 wraps a raw int64 directly, with no scaling.
func FromRawI64(raw int64) Fixed64 {
	return Fixed64{raw: raw}
}

// RawI64 returns the underlying raw int64.
func (f Fixed64) RawI64() int64 {
	return f.raw
}

// FromI64 converts an integer to Fixed64, saturating on overflow of the
// left-shift-by-32 widening.
func FromI64(value int64) Fixed64 {
	hi, lo := bits.Mul64(uint64(absI64(value)), uint64(OneRaw))
	neg := value < 0
	return Fixed64{raw: clampWidened(hi, lo, neg)}
}

// FromI32 converts a 32-bit integer to Fixed64.
func FromI32(value int32) Fixed64 {
	return FromI64(int64(value))
}

func absI64(v int64) int64 {
	if v < 0 {
		return -v
	}
	return v
}

// clampWidened interprets (hi,lo) as a 128-bit magnitude and the sign
// as given by neg, clamping to the int64 range.
func clampWidened(hi, lo uint64, neg bool) int64 {
	if hi == 0 && lo <= uint64(maxInt64) {
		v := int64(lo)
		if neg {
			return -v
		}
		return v
	}
	if neg {
		return minInt64
	}
	return maxInt64
}

// SaturatingAdd adds two Fixed64 values, saturating at the int64 range.
func (f Fixed64) SaturatingAdd(rhs Fixed64) Fixed64 {
	return Fixed64{raw: saturatingAddI64(f.raw, rhs.raw)}
}

// SaturatingSub subtracts rhs from f, saturating at the int64 range.
func (f Fixed64) SaturatingSub(rhs Fixed64) Fixed64 {
	return Fixed64{raw: saturatingSubI64(f.raw, rhs.raw)}
}

// SaturatingMul multiplies two Fixed64 values via a widened 128-bit
// intermediate product, shifted right by FracBits and clamped.
func (f Fixed64) SaturatingMul(rhs Fixed64) Fixed64 {
	hi, lo := bits.Mul64(uint64(absI64(f.raw)), uint64(absI64(rhs.raw)))
	neg := (f.raw < 0) != (rhs.raw < 0)
	shiftedHi, shiftedLo := shiftRight128(hi, lo, FracBits)
	return Fixed64{raw: clampWidened(shiftedHi, shiftedLo, neg)}
}

// SaturatingNeg negates f, saturating (i.e. -Min becomes Max).
func (f Fixed64) SaturatingNeg() Fixed64 {
	if f.raw == minInt64 {
		return Fixed64{raw: maxInt64}
	}
	return Fixed64{raw: -f.raw}
}

// TryDiv computes f/rhs using a widened shift-then-divide, returning
// ErrDivByZero when rhs is zero instead of producing a value.
func (f Fixed64) TryDiv(rhs Fixed64) (Fixed64, error) {
	if rhs.raw == 0 {
		return Fixed64{}, ErrDivByZero
	}
	return Fixed64{raw: shiftDivClamp(f.raw, rhs.raw)}, nil
}

// shiftDivClamp computes clamp((a << FracBits) / b) using signed 128-bit
// arithmetic assembled from unsigned 64x64 widening: the magnitude of
// a<<32 is formed with bits.Mul64, then divided by |b| with bits.Div64
// (hi is guaranteed < |b| whenever the true quotient fits in 64 bits;
// otherwise the result clamps to Min/Max).
func shiftDivClamp(a, b int64) int64 {
	neg := (a < 0) != (b < 0)
	hi, lo := bits.Mul64(uint64(absI64(a)), uint64(OneRaw))
	divisor := uint64(absI64(b))
	if hi >= divisor {
		return clampWidened(1, 0, neg) // quotient overflows 64 bits: saturate
	}
	q, _ := bits.Div64(hi, lo, divisor)
	return clampWidened(0, q, neg)
}

// shiftRight128 logically right-shifts a 128-bit value (hi,lo) by n bits
// (0 <= n < 64), used by SaturatingMul's >>32 step.
func shiftRight128(hi, lo uint64, n uint) (uint64, uint64) {
	if n == 0 {
		return hi, lo
	}
	newLo := (lo >> n) | (hi << (64 - n))
	newHi := hi >> n
	return newHi, newLo
}

// DivAssignDet implements the deterministic division-assignment
// contract: on a zero divisor it leaves f unchanged ("invalidated
// assignment") and emits an ArithmeticFault on sink; otherwise it
// assigns the saturated quotient.
func (f *Fixed64) DivAssignDet(rhs Fixed64, ctx signal.FaultContext, sink signal.Sink) {
	if rhs.raw == 0 {
		sink.Emit(signal.Signal{
			Kind: signal.KindArithmeticFault,
			ArithmeticFault: &signal.ArithmeticFault{
				Ctx:  ctx,
				Kind: signal.ArithmeticFaultKind{Tag: signal.FaultDivByZero},
			},
		})
		return
	}
	f.raw = shiftDivClamp(f.raw, rhs.raw)
}

// IntPart returns the integer component (raw >> 32).
func (f Fixed64) IntPart() int64 {
	return f.raw >> FracBits
}

// FracPart returns the fractional component (raw & 0xFFFFFFFF).
func (f Fixed64) FracPart() int64 {
	return f.raw & 0xFFFFFFFF
}

// Add is the saturating `+` operator.
func (f Fixed64) Add(rhs Fixed64) Fixed64 { return f.SaturatingAdd(rhs) }

// Sub is the saturating `-` operator.
func (f Fixed64) Sub(rhs Fixed64) Fixed64 { return f.SaturatingSub(rhs) }

// Mul is the saturating `*` operator.
func (f Fixed64) Mul(rhs Fixed64) Fixed64 { return f.SaturatingMul(rhs) }

// Neg is the saturating unary `-` operator.
func (f Fixed64) Neg() Fixed64 { return f.SaturatingNeg() }

// Equal reports raw-integer equality.
func (f Fixed64) Equal(rhs Fixed64) bool { return f.raw == rhs.raw }

// Less reports raw-integer ordering.
func (f Fixed64) Less(rhs Fixed64) bool { return f.raw < rhs.raw }

// Compare returns -1/0/1 per raw-integer ordering, for sort.Slice callers.
func (f Fixed64) Compare(rhs Fixed64) int {
	switch {
	case f.raw < rhs.raw:
		return -1
	case f.raw > rhs.raw:
		return 1
	default:
		return 0
	}
}

func (f Fixed64) String() string {
	whole := f.IntPart()
	frac := f.FracPart()
	if frac < 0 {
		frac = -frac
	}
	return fmt.Sprintf("%d.%010d", whole, frac*10000000000/(1<<FracBits))
}

func saturatingAddI64(a, b int64) int64 {
	sum := a + b
	if (a > 0 && b > 0 && sum < 0) || (a < 0 && b < 0 && sum >= 0) {
		if a > 0 {
			return maxInt64
		}
		return minInt64
	}
	return sum
}

func saturatingSubI64(a, b int64) int64 {
	diff := a - b
	if ((a ^ b) & (a ^ diff)) < 0 {
		if a >= 0 {
			return maxInt64
		}
		return minInt64
	}
	return diff
}
