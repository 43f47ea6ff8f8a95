// Package moment implements infrared's packed moment integer, the single
// total-ordered time scale every other subsystem (pointer, graph, MIDI
// assembler, renderer) resolves into. A moment packs an absolute
// subquantum offset together with a moment-part tiebreaker
// (start/middle/end of moment) into one signed 32-bit integer:
//
//	m = s*3 + p,  p in {0, 1, 2}
//
// Eight subquanta make one NMF quantum; all times elsewhere in the
// compiler are expressed on this subquantum scale.
package moment

import (
	"github.com/zurustar/infrared/pkg/diag"
	"github.com/zurustar/infrared/pkg/primitive"
)

// Moment is the packed (subquantum, part) pair.
type Moment int32

// Part values, in ascending tiebreak order: Start < Middle < End.
const (
	Start  = 0
	Middle = 1
	End    = 2
)

// SubquantaPerQuantum is the fixed subdivision of one NMF quantum.
const SubquantaPerQuantum = 8

// Pack encodes subquantum/part into a Moment, failing with diag.Overflow
// if s*3+p would not fit the legal primitive-integer domain, and with
// diag.Range if part is not one of Start, Middle, End.
func Pack(subquantum int64, part int) (Moment, error) {
	if part < Start || part > End {
		return 0, diag.Newf(diag.Range, "moment part %d out of range [0,2]", part)
	}
	v := subquantum*3 + int64(part)
	packed, err := primitive.Check(v)
	if err != nil {
		return 0, err
	}
	return Moment(packed), nil
}

// MustPack is Pack but panics on error; reserved for constants built from
// literals known at compile time to be in range.
func MustPack(subquantum int64, part int) Moment {
	m, err := Pack(subquantum, part)
	if err != nil {
		panic(err)
	}
	return m
}

// Unpack decomposes a Moment back into (subquantum, part). Negative
// moments round the subquantum toward -infinity, i.e. floor division, so
// that part is always in [0, 2] regardless of sign.
func (m Moment) Unpack() (subquantum int64, part int) {
	v := int64(m)
	s := floorDiv(v, 3)
	p := v - s*3
	return s, int(p)
}

// Subquantum returns just the subquantum component of Unpack.
func (m Moment) Subquantum() int64 {
	s, _ := m.Unpack()
	return s
}

// Part returns just the moment-part component of Unpack.
func (m Moment) Part() int {
	_, p := m.Unpack()
	return p
}

// FloorDiv is integer division rounding toward -infinity, exported for
// other subsystems (the graph engine's ramp stepping) that need the same
// rounding rule this package uses internally to decompose negative
// moments.
func FloorDiv(a, b int64) int64 {
	return floorDiv(a, b)
}

func floorDiv(a, b int64) int64 {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}
