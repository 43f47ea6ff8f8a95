package artic

import "github.com/zurustar/infrared/pkg/diag"

// Ruler is the `{slot, gap}` layout parameter for unmeasured grace notes.
type Ruler struct {
	slot int64 // > 0 subquanta
	gap  int64 // <= 0 subquanta
}

// NewRuler validates and constructs a Ruler.
func NewRuler(slot, gap int64) (Ruler, error) {
	if slot <= 0 {
		return Ruler{}, diag.Newf(diag.Range, "ruler slot %d must be > 0", slot)
	}
	if gap > 0 {
		return Ruler{}, diag.Newf(diag.Range, "ruler gap %d must be <= 0", gap)
	}
	if slot+gap <= 0 {
		return Ruler{}, diag.Newf(diag.Range, "ruler slot+gap %d must be > 0", slot+gap)
	}
	return Ruler{slot: slot, gap: gap}, nil
}

// DefaultRuler is the pipeline's default ruler: slot 48, gap 0 (spec.md
// §4.5's defaults table, also the default created lazily by an empty
// ruler stack per spec.md §3).
func DefaultRuler() Ruler {
	r, err := NewRuler(48, 0)
	if err != nil {
		panic(err)
	}
	return r
}

// Position places grace note i (i <= 0) attached to the beat at
// subquantum b: b + i*slot.
func (r Ruler) Position(b, i int64) int64 {
	return b + i*r.slot
}

// Duration returns the performance duration of a grace note placed by r:
// slot + gap.
func (r Ruler) Duration() int64 {
	return r.slot + r.gap
}

// Slot returns the slot width in subquanta.
func (r Ruler) Slot() int64 { return r.slot }

// Gap returns the gap in subquanta.
func (r Ruler) Gap() int64 { return r.gap }
