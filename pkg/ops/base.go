package ops

import (
	"fmt"
	"os"

	"github.com/zurustar/infrared/pkg/diag"
	"github.com/zurustar/infrared/pkg/interp"
	"github.com/zurustar/infrared/pkg/primitive"
)

// RegisterBase installs the basic, diagnostic, and arithmetic operations:
// pop, dup, print, newline, stop, add, sub, mul, div, neg.
func RegisterBase(r *Registry) error {
	adds := []struct {
		name string
		fn   Func
	}{
		{"pop", opPop},
		{"dup", opDup},
		{"print", opPrint},
		{"newline", opNewline},
		{"stop", opStop},
		{"add", binaryOp(primitive.Add)},
		{"sub", binaryOp(primitive.Sub)},
		{"mul", binaryOp(primitive.Mul)},
		{"div", binaryOp(primitive.Div)},
		{"neg", opNeg},
	}
	for _, a := range adds {
		if err := r.Add(a.name, a.fn); err != nil {
			return err
		}
	}
	return nil
}

func opPop(ctx *Context) error {
	_, err := ctx.Machine.Pop()
	return err
}

func opDup(ctx *Context) error {
	v, err := ctx.Machine.Pop()
	if err != nil {
		return err
	}
	if err := ctx.Machine.Push(v); err != nil {
		return err
	}
	return ctx.Machine.Push(v)
}

// opPrint writes a human-readable rendering of the popped value to
// stderr, prefixed with the current script line.
func opPrint(ctx *Context) error {
	v, err := ctx.Machine.Pop()
	if err != nil {
		return err
	}
	fmt.Fprintf(os.Stderr, "[line %d] %s", ctx.Line, describe(ctx, v))
	return nil
}

func describe(ctx *Context, v interp.Value) string {
	switch v.Kind() {
	case interp.Integer:
		return fmt.Sprintf("%d", v.AsInteger())
	case interp.Text:
		s, _ := ctx.Texts.Get(v.AsText())
		return s
	case interp.Blob:
		b, _ := ctx.Blobs.Get(v.AsBlob())
		return fmt.Sprintf("<blob %d bytes>", len(b))
	default:
		return fmt.Sprintf("<%v>", v.Kind())
	}
}

func opNewline(ctx *Context) error {
	fmt.Fprintln(os.Stderr)
	return nil
}

// opStop implements the script-requested abort: it always fails, with
// diag.Stop rather than a Code describing a programmer mistake.
func opStop(ctx *Context) error {
	return diag.New(diag.Stop, "script requested stop").AtLine(ctx.Line)
}

// binaryOp adapts a checked int32 primitive into a Func: pop b, pop a,
// push op(a, b).
func binaryOp(op func(a, b int32) (int32, error)) Func {
	return func(ctx *Context) error {
		bv, err := ctx.Machine.Pop()
		if err != nil {
			return err
		}
		av, err := ctx.Machine.Pop()
		if err != nil {
			return err
		}
		c, err := op(int32(av.AsInteger()), int32(bv.AsInteger()))
		if err != nil {
			return err
		}
		return ctx.Machine.Push(interp.NewInteger(int64(c)))
	}
}

func opNeg(ctx *Context) error {
	v, err := ctx.Machine.Pop()
	if err != nil {
		return err
	}
	n, err := primitive.Neg(int32(v.AsInteger()))
	if err != nil {
		return err
	}
	return ctx.Machine.Push(interp.NewInteger(int64(n)))
}
