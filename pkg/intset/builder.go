package intset

import "github.com/zurustar/infrared/pkg/diag"

// Builder is the single-accumulator set definition in progress for one
// compilation, the same "Begin opens, mutators accumulate, End closes"
// shape graph.Store uses for graph definitions. The zero value is not
// usable; construct with NewBuilder.
type Builder struct {
	open bool
	cur  Set
}

// NewBuilder constructs an idle Builder.
func NewBuilder() *Builder {
	return &Builder{}
}

func (b *Builder) requireOpen(op string) error {
	if !b.open {
		return diag.Newf(diag.GroupConstraint, "set %s: no definition is open", op)
	}
	return nil
}

// Begin opens a new set definition, requiring none is currently open.
// The accumulator starts at the empty set.
func (b *Builder) Begin() error {
	if b.open {
		return diag.New(diag.GroupConstraint, "set begin: a definition is already open")
	}
	b.open = true
	b.cur = None()
	return nil
}

// End closes the current definition and returns its accumulated Set.
func (b *Builder) End() (Set, error) {
	if err := b.requireOpen("end"); err != nil {
		return Set{}, err
	}
	s := b.cur
	b.open = false
	b.cur = Set{}
	return s, nil
}

// All replaces the accumulator with the set of every non-negative integer.
func (b *Builder) All() error {
	if err := b.requireOpen("all"); err != nil {
		return err
	}
	b.cur = All()
	return nil
}

// None replaces the accumulator with the empty set.
func (b *Builder) None() error {
	if err := b.requireOpen("none"); err != nil {
		return err
	}
	b.cur = None()
	return nil
}

// Invert complements the accumulator in place.
func (b *Builder) Invert() error {
	if err := b.requireOpen("invert"); err != nil {
		return err
	}
	b.cur = b.cur.Invert()
	return nil
}

// IncludeRange includes the closed range [a, b] in the accumulator.
func (b *Builder) IncludeRange(a, bound int64) error {
	if err := b.requireOpen("include"); err != nil {
		return err
	}
	b.cur = b.cur.IncludeRange(a, bound)
	return nil
}

// ExcludeRange excludes the closed range [a, b] from the accumulator.
func (b *Builder) ExcludeRange(a, bound int64) error {
	if err := b.requireOpen("exclude"); err != nil {
		return err
	}
	b.cur = b.cur.ExcludeRange(a, bound)
	return nil
}

// IncludeOpen includes [a, infinity) in the accumulator.
func (b *Builder) IncludeOpen(a int64) error {
	if err := b.requireOpen("include_from"); err != nil {
		return err
	}
	b.cur = b.cur.IncludeOpen(a)
	return nil
}

// ExcludeOpen excludes [a, infinity) from the accumulator.
func (b *Builder) ExcludeOpen(a int64) error {
	if err := b.requireOpen("exclude_from"); err != nil {
		return err
	}
	b.cur = b.cur.ExcludeOpen(a)
	return nil
}

// Union merges other into the accumulator.
func (b *Builder) Union(other Set) error {
	if err := b.requireOpen("union"); err != nil {
		return err
	}
	b.cur = b.cur.Union(other)
	return nil
}

// Intersect intersects the accumulator with other.
func (b *Builder) Intersect(other Set) error {
	if err := b.requireOpen("intersect"); err != nil {
		return err
	}
	b.cur = b.cur.Intersect(other)
	return nil
}

// Except removes other's members from the accumulator.
func (b *Builder) Except(other Set) error {
	if err := b.requireOpen("except"); err != nil {
		return err
	}
	b.cur = b.cur.Except(other)
	return nil
}
