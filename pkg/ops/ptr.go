package ops

import (
	"github.com/zurustar/infrared/pkg/artic"
	"github.com/zurustar/infrared/pkg/diag"
	"github.com/zurustar/infrared/pkg/interp"
	"github.com/zurustar/infrared/pkg/pointer"
)

// RegisterConstruct installs the value-construction operations: art,
// ruler, ptr.
func RegisterConstruct(r *Registry) error {
	adds := map[string]Func{
		"art":   opArt,
		"ruler": opRuler,
		"ptr":   opPtr,
	}
	return addAll(r, adds)
}

func addAll(r *Registry, fns map[string]Func) error {
	for name, fn := range fns {
		if err := r.Add(name, fn); err != nil {
			return err
		}
	}
	return nil
}

func popInt(ctx *Context) (int64, error) {
	v, err := ctx.Machine.Pop()
	if err != nil {
		return 0, err
	}
	return v.AsInteger(), nil
}

func opArt(ctx *Context) error {
	gap, err := popInt(ctx)
	if err != nil {
		return err
	}
	bumper, err := popInt(ctx)
	if err != nil {
		return err
	}
	denom, err := popInt(ctx)
	if err != nil {
		return err
	}
	num, err := popInt(ctx)
	if err != nil {
		return err
	}
	a, err := artic.NewArticulation(num, denom, bumper, gap)
	if err != nil {
		return err
	}
	return ctx.Machine.Push(interp.NewArticulation(a))
}

func opRuler(ctx *Context) error {
	gap, err := popInt(ctx)
	if err != nil {
		return err
	}
	slot, err := popInt(ctx)
	if err != nil {
		return err
	}
	ru, err := artic.NewRuler(slot, gap)
	if err != nil {
		return err
	}
	return ctx.Machine.Push(interp.NewRuler(ru))
}

func opPtr(ctx *Context) error {
	return ctx.Machine.Push(interp.NewPointer(pointer.New()))
}

// RegisterPointer installs the pointer-arithmetic suffix operations
// (s/q/r/g/t/m, one per non-resolution transition of spec.md §4.2's
// pointer transition table), plus the ruler-stack and reset/bpm
// operations that accompany them: rpush, rpop, reset, bpm.
//
// The suffix letters are mnemonic for the transition each invokes:
// s(eek), q(uantum-jump to a section), r(elative advance), g(race),
// t(ilt), m(oment-part). Every one of them pops its integer argument
// (already on top of stack from the Numeric that dispatched it), then
// pops the Pointer it transforms, and pushes the transformed Pointer.
func RegisterPointer(r *Registry) error {
	adds := map[string]Func{
		"s": pointerOp(func(p pointer.Pointer, v int64, ctx *Context) (pointer.Pointer, error) {
			return p.Seek(v)
		}),
		"q": pointerOp(func(p pointer.Pointer, v int64, ctx *Context) (pointer.Pointer, error) {
			return p.Jump(v)
		}),
		"r": pointerOp(func(p pointer.Pointer, v int64, ctx *Context) (pointer.Pointer, error) {
			return p.Advance(v)
		}),
		"g": pointerOp(func(p pointer.Pointer, v int64, ctx *Context) (pointer.Pointer, error) {
			if v == 0 {
				return p.Grace(v, artic.Ruler{}, false)
			}
			if v > 0 {
				return pointer.Pointer{}, diag.Newf(diag.Range, "grace index %d must be <= 0", v)
			}
			return p.Grace(v, ctx.Machine.RStackCurrent(), true)
		}),
		"t": pointerOp(func(p pointer.Pointer, v int64, ctx *Context) (pointer.Pointer, error) {
			return p.Tilt(v)
		}),
		"m": pointerOp(func(p pointer.Pointer, v int64, ctx *Context) (pointer.Pointer, error) {
			return p.Moment(v)
		}),
		"rpush": opRPush,
		"rpop":  opRPop,
		"reset": opReset,
		"bpm":   opBPM,
	}
	return addAll(r, adds)
}

// pointerOp adapts a (Pointer, int64) -> (Pointer, error) transition
// into a Func: pop the integer argument, pop the Pointer, push the
// result.
func pointerOp(fn func(p pointer.Pointer, v int64, ctx *Context) (pointer.Pointer, error)) Func {
	return func(ctx *Context) error {
		v, err := popInt(ctx)
		if err != nil {
			return err
		}
		pv, err := ctx.Machine.Pop()
		if err != nil {
			return err
		}
		p2, err := fn(pv.AsPointer(), v, ctx)
		if err != nil {
			return err
		}
		return ctx.Machine.Push(interp.NewPointer(p2))
	}
}

func opRPush(ctx *Context) error {
	v, err := ctx.Machine.Pop()
	if err != nil {
		return err
	}
	return ctx.Machine.RStackPush(v.AsRuler())
}

func opRPop(ctx *Context) error {
	ru, err := ctx.Machine.RStackPop()
	if err != nil {
		return err
	}
	return ctx.Machine.Push(interp.NewRuler(ru))
}

func opReset(ctx *Context) error {
	pv, err := ctx.Machine.Pop()
	if err != nil {
		return err
	}
	return ctx.Machine.Push(interp.NewPointer(pv.AsPointer().Reset()))
}

// microsPerMinute, divided by a beats-per-minute tempo, gives the
// microseconds-per-quarter-note value spec.md's Tempo target uses.
const microsPerMinute = 60_000_000

func opBPM(ctx *Context) error {
	bpm, err := popInt(ctx)
	if err != nil {
		return err
	}
	if bpm <= 0 {
		return diag.Newf(diag.Range, "bpm %d must be positive", bpm)
	}
	micros := microsPerMinute / bpm
	return ctx.Machine.Push(interp.NewInteger(micros))
}

// resolveMoment resolves a Pointer popped from the stack into the
// (moment, head) pair every control-emitting operation needs: head is
// true, and moment is meaningless, when p is the Header sentinel.
func resolveMoment(ctx *Context, p pointer.Pointer) (t int64, head bool, err error) {
	if p.IsHeader() {
		return 0, true, nil
	}
	m, err := p.Resolve(ctx.Data)
	if err != nil {
		return 0, false, err
	}
	return int64(m), false, nil
}
