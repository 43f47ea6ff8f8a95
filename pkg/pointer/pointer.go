// Package pointer implements infrared's temporal pointer algebra: the
// compound coordinate (section, quantum offset, grace index, tilt,
// moment-part) of spec.md §3/§4.2, and its resolution to a single
// total-ordered moment.Moment.
package pointer

import (
	"github.com/zurustar/infrared/pkg/artic"
	"github.com/zurustar/infrared/pkg/diag"
	"github.com/zurustar/infrared/pkg/moment"
	"github.com/zurustar/infrared/pkg/nmf"
	"github.com/zurustar/infrared/pkg/primitive"
)

// checkedAdd and checkedMul route pointer-resolution arithmetic through
// primitive.Check so overflow is caught the same way every other
// subsystem catches it.
func checkedAdd(a, b int64) (int64, error) {
	v, err := primitive.Check(a + b)
	return int64(v), err
}

func checkedMul(a, b int64) (int64, error) {
	v, err := primitive.Check(a * b)
	return int64(v), err
}

// Pointer is the compound coordinate of spec.md §3. The zero value is
// Header, matching "a pointer is constructed as Header".
type Pointer struct {
	isHeader bool

	section       int64
	quantumOffset int64
	graceIndex    int64 // <= 0
	graceRuler    artic.Ruler
	hasGraceRuler bool
	tiltSubquanta int64
	momentPart    int64 // -1, 0, +1
}

// New returns a Header pointer.
func New() Pointer {
	return Pointer{isHeader: true}
}

// IsHeader reports whether p is the Header sentinel.
func (p Pointer) IsHeader() bool { return p.isHeader }

// Reset returns p unchanged if it is Header; Header.Reset is idempotent.
// spec.md §4.2 only defines reset on Header, so calling it on a Body
// pointer is a programmer error and panics rather than failing silently.
func (p Pointer) Reset() Pointer {
	if !p.isHeader {
		panic("pointer: Reset called on a Body pointer")
	}
	return p
}

// Jump transitions Header -> Body(offset=0, grace=0, tilt=0, moment=middle)
// when sect >= 0, or resets a Body pointer's offset/grace/tilt (moment is
// retained) to a new section.
func (p Pointer) Jump(sect int64) (Pointer, error) {
	if sect < 0 {
		return Pointer{}, diag.Newf(diag.Range, "pointer jump: section %d must be >= 0", sect)
	}
	momentPart := int64(0)
	if !p.isHeader {
		momentPart = p.momentPart
	}
	return Pointer{
		section:    sect,
		momentPart: momentPart,
	}, nil
}

// Seek moves a Body pointer to a new quantum offset, resetting grace and
// tilt; moment is retained.
func (p Pointer) Seek(offs int64) (Pointer, error) {
	if p.isHeader {
		return Pointer{}, diag.New(diag.Undefined, "pointer seek: not legal on a Header pointer")
	}
	return Pointer{
		section:       p.section,
		quantumOffset: offs,
		momentPart:    p.momentPart,
	}, nil
}

// Advance moves a Body pointer by delta quanta, same postconditions as
// Seek(offset+delta).
func (p Pointer) Advance(delta int64) (Pointer, error) {
	if p.isHeader {
		return Pointer{}, diag.New(diag.Undefined, "pointer advance: not legal on a Header pointer")
	}
	next, err := checkedAdd(p.quantumOffset, delta)
	if err != nil {
		return Pointer{}, err
	}
	return p.Seek(next)
}

// Grace attaches a Body pointer to grace slot g (<= 0); a ruler is
// required iff g < 0, and is referenced, not owned. Tilt is reset;
// moment is retained.
func (p Pointer) Grace(g int64, ruler artic.Ruler, hasRuler bool) (Pointer, error) {
	if p.isHeader {
		return Pointer{}, diag.New(diag.Undefined, "pointer grace: not legal on a Header pointer")
	}
	if g > 0 {
		return Pointer{}, diag.Newf(diag.Range, "pointer grace index %d must be <= 0", g)
	}
	if g < 0 && !hasRuler {
		return Pointer{}, diag.New(diag.Undefined, "pointer grace: negative grace index requires a ruler")
	}
	next := Pointer{
		section:       p.section,
		quantumOffset: p.quantumOffset,
		graceIndex:    g,
		momentPart:    p.momentPart,
	}
	if g < 0 {
		next.graceRuler = ruler
		next.hasGraceRuler = true
	}
	return next, nil
}

// Tilt sets the subquantum nudge applied last during resolution.
func (p Pointer) Tilt(deltaSub int64) (Pointer, error) {
	if p.isHeader {
		return Pointer{}, diag.New(diag.Undefined, "pointer tilt: not legal on a Header pointer")
	}
	next := p
	next.tiltSubquanta = deltaSub
	return next, nil
}

// Moment sets the moment-part (-1, 0, +1 for start/middle/end of moment).
func (p Pointer) Moment(part int64) (Pointer, error) {
	if p.isHeader {
		return Pointer{}, diag.New(diag.Undefined, "pointer moment: not legal on a Header pointer")
	}
	if part < -1 || part > 1 {
		return Pointer{}, diag.Newf(diag.Range, "pointer moment part %d must be in {-1,0,1}", part)
	}
	next := p
	next.momentPart = part
	return next, nil
}

// Resolve implements spec.md §4.2's six-step resolution procedure for a
// Body pointer. Calling Resolve on a Header pointer is a programmer
// error, matching Reset's panic-on-misuse convention: Header pointers are
// only legal in header-accepting contexts, which never call Resolve.
func (p Pointer) Resolve(data nmf.Data) (moment.Moment, error) {
	if p.isHeader {
		panic("pointer: Resolve called on a Header pointer")
	}

	if p.section < 0 || p.section >= data.SectionCount() {
		return 0, diag.Newf(diag.SectionRange, "pointer section %d out of range [0,%d)", p.section, data.SectionCount())
	}
	t := data.SectionBaseQuantum(p.section)

	t, err := checkedAdd(t, p.quantumOffset)
	if err != nil {
		return 0, err
	}

	t, err = checkedMul(t, 8)
	if err != nil {
		return 0, err
	}

	if p.graceIndex < 0 {
		positioned := p.graceRuler.Position(t, p.graceIndex)
		v, err := primitive.Check(positioned)
		if err != nil {
			return 0, err
		}
		t = int64(v)
	}

	t, err = checkedAdd(t, p.tiltSubquanta)
	if err != nil {
		return 0, err
	}

	return moment.Pack(t, int(p.momentPart+1))
}
