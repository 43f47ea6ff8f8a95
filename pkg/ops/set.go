package ops

import "github.com/zurustar/infrared/pkg/interp"

// RegisterSet installs the set-construction operations: begin_set,
// end_set, all, none, invert, include, exclude, include_from,
// exclude_from, union, intersect, except.
func RegisterSet(r *Registry) error {
	adds := map[string]Func{
		"begin_set":     func(ctx *Context) error { return ctx.Sets.Begin() },
		"end_set":       opEndSet,
		"all":           func(ctx *Context) error { return ctx.Sets.All() },
		"none":          func(ctx *Context) error { return ctx.Sets.None() },
		"invert":        func(ctx *Context) error { return ctx.Sets.Invert() },
		"include":       setRange(true, false),
		"exclude":       setRange(false, false),
		"include_from":  setRange(true, true),
		"exclude_from":  setRange(false, true),
		"union":         opSetUnion,
		"intersect":     opSetIntersect,
		"except":        opSetExcept,
	}
	return addAll(r, adds)
}

func opEndSet(ctx *Context) error {
	s, err := ctx.Sets.End()
	if err != nil {
		return err
	}
	return ctx.Machine.Push(interp.NewSet(s))
}

// setRange adapts the four range-mutator operations (include, exclude,
// include_from, exclude_from) into one shape: closed ranges pop two
// bounds, open ("_from") ranges pop one.
func setRange(include, open bool) Func {
	return func(ctx *Context) error {
		if open {
			a, err := popInt(ctx)
			if err != nil {
				return err
			}
			if include {
				return ctx.Sets.IncludeOpen(a)
			}
			return ctx.Sets.ExcludeOpen(a)
		}
		b, err := popInt(ctx)
		if err != nil {
			return err
		}
		a, err := popInt(ctx)
		if err != nil {
			return err
		}
		if include {
			return ctx.Sets.IncludeRange(a, b)
		}
		return ctx.Sets.ExcludeRange(a, b)
	}
}

func opSetUnion(ctx *Context) error {
	v, err := ctx.Machine.Pop()
	if err != nil {
		return err
	}
	return ctx.Sets.Union(v.AsSet())
}

func opSetIntersect(ctx *Context) error {
	v, err := ctx.Machine.Pop()
	if err != nil {
		return err
	}
	return ctx.Sets.Intersect(v.AsSet())
}

func opSetExcept(ctx *Context) error {
	v, err := ctx.Machine.Pop()
	if err != nil {
		return err
	}
	return ctx.Sets.Except(v.AsSet())
}
