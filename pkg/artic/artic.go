// Package artic implements infrared's articulation and ruler transforms:
// the duration mapping applied to measured NMF notes, and the slot layout
// used to place unmeasured grace notes.
package artic

import "github.com/zurustar/infrared/pkg/diag"

// validDenominators enumerates the only legal articulation scale
// denominators.
var validDenominators = map[int64]bool{1: true, 2: true, 4: true, 8: true}

// Articulation is the duration transform `{scale, bumper, gap}` of
// spec.md §3. The scale is stored already normalized to eighths
// (denominator 8), matching the data model's "denominator is normalised
// to 8" requirement, so Transform never has to divide.
type Articulation struct {
	numEighths int64 // 1..8
	bumper     int64 // >= 0 subquanta
	gap        int64 // <= 0 subquanta
}

// NewArticulation validates and constructs an Articulation from its
// un-normalized scale fraction num/denom plus bumper and gap, both in
// subquanta.
func NewArticulation(num, denom, bumper, gap int64) (Articulation, error) {
	if !validDenominators[denom] {
		return Articulation{}, diag.Newf(diag.Range, "articulation denominator %d not in {1,2,4,8}", denom)
	}
	if num < 1 || num > denom {
		return Articulation{}, diag.Newf(diag.Range, "articulation numerator %d out of [1,%d]", num, denom)
	}
	if bumper < 0 {
		return Articulation{}, diag.Newf(diag.Range, "articulation bumper %d must be >= 0", bumper)
	}
	if gap > 0 {
		return Articulation{}, diag.Newf(diag.Range, "articulation gap %d must be <= 0", gap)
	}
	return Articulation{
		numEighths: num * (8 / denom),
		bumper:     bumper,
		gap:        gap,
	}, nil
}

// Default is the pipeline's default articulation: scale 1/1, bumper 8,
// gap 0 (spec.md §4.5's defaults table).
func Default() Articulation {
	a, err := NewArticulation(1, 1, 8, 0)
	if err != nil {
		panic(err) // constants are known-valid
	}
	return a
}

// Transform maps a measured NMF duration d (in quanta, d >= 1) to a
// performance duration in subquanta:
//
//	out = max(bumper, min(d * numEighths, d*8 + gap)), clamped to >= 1.
func (a Articulation) Transform(d int64) int64 {
	scaled := d * a.numEighths
	capped := d*8 + a.gap
	out := scaled
	if capped < out {
		out = capped
	}
	if a.bumper > out {
		out = a.bumper
	}
	if out < 1 {
		out = 1
	}
	return out
}
