package moment

import (
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

// TestProperty1_RoundTrip is the gopter-driven companion to
// TestRoundTrip_Boundaries: rather than the exhaustive boundary scan, it
// samples broadly across the legal domain.
func TestProperty1_RoundTrip(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 500

	properties := gopter.NewProperties(parameters)

	properties.Property("pack(unpack(m)) == m for any legal moment", prop.ForAll(
		func(v int32) bool {
			m := Moment(v)
			s, p := m.Unpack()
			got, err := Pack(s, p)
			if err != nil {
				return false
			}
			return got == m
		},
		gen.Int32Range(MinLegal(), MaxLegal()),
	))

	properties.Property("unpacked part is always in [0,2]", prop.ForAll(
		func(v int32) bool {
			_, p := Moment(v).Unpack()
			return p >= Start && p <= End
		},
		gen.Int32(),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

// MinLegal/MaxLegal bound the legal Moment domain for generators; Moment
// shares primitive's asymmetric range.
func MinLegal() int32 { return -2147483647 }
func MaxLegal() int32 { return 2147483647 }
