package pointer

import (
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"github.com/zurustar/infrared/pkg/nmf"
)

func seekResolve(t *testing.T, data nmf.Data, offs int64) (int32, error) {
	p, err := New().Jump(0)
	if err != nil {
		t.Fatalf("Jump: %v", err)
	}
	p, err = p.Seek(offs)
	if err != nil {
		t.Fatalf("Seek: %v", err)
	}
	m, err := p.Resolve(data)
	return int32(m), err
}

// TestProperty2_ResolutionMonotonicity is spec.md §8 property 2: fixing
// section and grace=0, seek(a) < seek(b) iff a < b once packed; adding
// positive tilt strictly increases the packed moment unless it overflows.
func TestProperty2_ResolutionMonotonicity(t *testing.T) {
	data, err := nmf.NewMemory(96, []int64{0}, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 300

	properties := gopter.NewProperties(parameters)

	properties.Property("seek(a) < seek(b) iff a < b, once resolved", prop.ForAll(
		func(a, b int64) bool {
			ma, erra := seekResolve(t, data, a)
			mb, errb := seekResolve(t, data, b)
			if erra != nil || errb != nil {
				return true // overflow is out of scope for this property
			}
			if a < b {
				return ma < mb
			}
			if a > b {
				return ma > mb
			}
			return ma == mb
		},
		gen.Int64Range(-100000, 100000),
		gen.Int64Range(-100000, 100000),
	))

	properties.Property("positive tilt strictly increases the packed moment unless it overflows", prop.ForAll(
		func(offs int64, tilt int64) bool {
			p, err := New().Jump(0)
			if err != nil {
				t.Fatalf("Jump: %v", err)
			}
			p, err = p.Seek(offs)
			if err != nil {
				t.Fatalf("Seek: %v", err)
			}
			base, err := p.Resolve(data)
			if err != nil {
				return true
			}
			tilted, err := p.Tilt(tilt)
			if err != nil {
				t.Fatalf("Tilt: %v", err)
			}
			m, err := tilted.Resolve(data)
			if err != nil {
				return true // overflow must error, which it did
			}
			return m > base
		},
		gen.Int64Range(-100000, 100000),
		gen.Int64Range(1, 1000),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}
