// Package primitive implements infrared's checked 32-bit arithmetic in its
// asymmetric integer domain. Every arithmetic operation elsewhere in the
// compiler (pointer resolution, moment packing, tempo/velocity ranges)
// routes through this package so overflow is detected in exactly one
// place.
package primitive

import (
	"math"

	"github.com/zurustar/infrared/pkg/diag"
)

// MinValue and MaxValue bound the legal integer domain. The domain is
// asymmetric: math.MinInt32 itself is never a valid *value*, only a
// transient state an accumulator could reach, matching
// original_source/primitive.h's PRIMITIVE_MININT/PRIMITIVE_MAXINT split.
const (
	MinValue int64 = math.MinInt32 + 1
	MaxValue int64 = math.MaxInt32
)

// InRange reports whether v fits the legal domain.
func InRange(v int64) bool {
	return v >= MinValue && v <= MaxValue
}

// Check converts v to int32, failing with diag.Overflow if v is out of
// the legal domain.
func Check(v int64) (int32, error) {
	if !InRange(v) {
		return 0, diag.Newf(diag.Overflow, "value %d out of range [%d, %d]", v, MinValue, MaxValue)
	}
	return int32(v), nil
}

// Add returns a+b, checked.
func Add(a, b int32) (int32, error) {
	return Check(int64(a) + int64(b))
}

// Sub returns a-b, checked.
func Sub(a, b int32) (int32, error) {
	return Check(int64(a) - int64(b))
}

// Mul returns a*b, checked.
func Mul(a, b int32) (int32, error) {
	return Check(int64(a) * int64(b))
}

// Neg returns -a, checked (relevant because MinValue's magnitude equals
// MaxValue's, so negation never overflows in this domain, but the
// dedicated entry point keeps every arithmetic op going through Check).
func Neg(a int32) (int32, error) {
	return Check(-int64(a))
}

// Div returns a/b truncated toward zero, checked; b == 0 is reported as
// diag.Range rather than diag.Overflow since it is a domain violation of
// the divisor, not a magnitude overflow.
func Div(a, b int32) (int32, error) {
	if b == 0 {
		return 0, diag.New(diag.Range, "division by zero")
	}
	return Check(int64(a) / int64(b))
}
