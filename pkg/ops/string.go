package ops

import (
	"github.com/zurustar/infrared/pkg/diag"
	"github.com/zurustar/infrared/pkg/interp"
)

// maxConcat bounds how many elements a single concat call may combine.
const maxConcat = 16384

// RegisterString installs the string/blob operations: concat, slice.
func RegisterString(r *Registry) error {
	adds := map[string]Func{
		"concat": opConcat,
		"slice":  opSlice,
	}
	return addAll(r, adds)
}

// opConcat pops an element count, then that many Text or Blob values
// (all of the same kind), and pushes their concatenation. The kind is
// fixed by the type of the first of those elements, the deepest one on
// the stack.
func opConcat(ctx *Context) error {
	n, err := popInt(ctx)
	if err != nil {
		return err
	}
	if n < 1 {
		return diag.Newf(diag.Range, "concat element count must be at least one, got %d", n)
	}
	if n > maxConcat {
		return diag.Newf(diag.Range, "concat element count may be at most %d, got %d", maxConcat, n)
	}

	vals := make([]interp.Value, n)
	for i := n - 1; i >= 0; i-- {
		v, err := ctx.Machine.Pop()
		if err != nil {
			return err
		}
		vals[i] = v
	}

	switch vals[0].Kind() {
	case interp.Text:
		acc := vals[0].AsText()
		for _, v := range vals[1:] {
			acc, err = ctx.Texts.Concat(acc, v.AsText())
			if err != nil {
				return err
			}
		}
		return ctx.Machine.Push(interp.NewText(acc))
	case interp.Blob:
		acc := vals[0].AsBlob()
		for _, v := range vals[1:] {
			acc, err = ctx.Blobs.Concat(acc, v.AsBlob())
			if err != nil {
				return err
			}
		}
		return ctx.Machine.Push(interp.NewBlob(acc))
	default:
		return diag.Newf(diag.Range, "concat expects text or blob values, got %v", vals[0].Kind())
	}
}

func opSlice(ctx *Context) error {
	j, err := popInt(ctx)
	if err != nil {
		return err
	}
	i, err := popInt(ctx)
	if err != nil {
		return err
	}
	v, err := ctx.Machine.Pop()
	if err != nil {
		return err
	}
	switch v.Kind() {
	case interp.Text:
		h, err := ctx.Texts.Slice(v.AsText(), int(i), int(j))
		if err != nil {
			return err
		}
		return ctx.Machine.Push(interp.NewText(h))
	case interp.Blob:
		h, err := ctx.Blobs.Slice(v.AsBlob(), int(i), int(j))
		if err != nil {
			return err
		}
		return ctx.Machine.Push(interp.NewBlob(h))
	default:
		return diag.Newf(diag.Range, "slice expects text or blob, got %v", v.Kind())
	}
}
