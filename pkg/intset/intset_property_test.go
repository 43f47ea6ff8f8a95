package intset

import (
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

// op is one inclusion/exclusion step used by both the Set under test and
// the naive reference evaluator.
type op struct {
	Start, End int64
	Include    bool
}

func applyOps(ops []op) Set {
	s := None()
	for _, o := range ops {
		s = s.set(o.Start, o.End, o.Include)
	}
	return s
}

func naiveHas(ops []op, x int64) bool {
	included := false
	for _, o := range ops {
		if x >= o.Start && x < o.End {
			included = o.Include
		}
	}
	return included
}

func genOp() gopter.Gen {
	return gopter.CombineGens(
		gen.Int64Range(0, 40),
		gen.Int64Range(1, 20),
		gen.Bool(),
	).Map(func(vs []interface{}) op {
		start := vs[0].(int64)
		width := vs[1].(int64)
		return op{Start: start, End: start + width, Include: vs[2].(bool)}
	})
}

// TestProperty5_SetInclusion is spec.md §8 property 5: for any sequence of
// inclusion/exclusion operations yielding set S, has(S, x) equals the
// naive evaluation of the sequence for every x >= 0.
func TestProperty5_SetInclusion(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 300

	properties := gopter.NewProperties(parameters)

	properties.Property("Set.Has matches sequential naive evaluation", prop.ForAll(
		func(ops []op, x int64) bool {
			s := applyOps(ops)
			return s.Has(x) == naiveHas(ops, x)
		},
		gen.SliceOfN(10, genOp()),
		gen.Int64Range(0, 60),
	))

	properties.Property("Invert is involutive", prop.ForAll(
		func(ops []op) bool {
			s := applyOps(ops)
			twice := s.Invert().Invert()
			for x := int64(0); x < 60; x++ {
				if s.Has(x) != twice.Has(x) {
					return false
				}
			}
			return true
		},
		gen.SliceOfN(10, genOp()),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}
