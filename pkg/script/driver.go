package script

import (
	"strconv"

	"github.com/zurustar/infrared/pkg/diag"
	"github.com/zurustar/infrared/pkg/interp"
	"github.com/zurustar/infrared/pkg/ops"
)

// Driver consumes an entity stream and dispatches each Operation entity
// through an ops.Registry, applying the non-Operation entities (literal
// push, bank access, grouping) directly against the interpreter.
type Driver struct {
	registry *ops.Registry
}

// NewDriver constructs a Driver dispatching through registry.
func NewDriver(registry *ops.Registry) *Driver {
	return &Driver{registry: registry}
}

// atLine attaches line to err if err is a *diag.Error, else returns it
// unchanged.
func atLine(err error, line int) error {
	if err == nil {
		return nil
	}
	if de, ok := err.(*diag.Error); ok {
		return de.AtLine(line)
	}
	return err
}

func (d *Driver) call(name string, ctx *ops.Context, line int) error {
	fn, ok := d.registry.Lookup(name)
	if !ok {
		return diag.Newf(diag.Undefined, "operation %q is not registered", name).AtLine(line)
	}
	ctx.Line = line
	return atLine(fn(ctx), line)
}

// Run drives entities against ctx in order. The first entity must be
// the leading Header produced by Lex for a script's required
// "%infrared;" declaration; everything after it is applied in sequence.
func (d *Driver) Run(entities []Entity, ctx *ops.Context) error {
	if len(entities) == 0 || entities[0].Kind != Header {
		return diag.New(diag.InvalidName, "script: missing required leading %infrared; declaration")
	}

	for _, e := range entities[1:] {
		if err := d.dispatch(e, ctx); err != nil {
			return err
		}
	}
	return nil
}

func (d *Driver) dispatch(e Entity, ctx *ops.Context) error {
	switch e.Kind {
	case StringLiteral:
		h, err := ctx.Texts.Intern(e.StringValue())
		if err != nil {
			return atLine(err, e.Line)
		}
		return atLine(ctx.Machine.Push(interp.NewText(h)), e.Line)

	case Numeric:
		n, suffix, err := parseNumeric(e.Lexeme())
		if err != nil {
			return atLine(err, e.Line)
		}
		if err := ctx.Machine.Push(interp.NewInteger(n)); err != nil {
			return atLine(err, e.Line)
		}
		if suffix == 0 {
			return nil
		}
		return d.call(string(suffix), ctx, e.Line)

	case Variable:
		return atLine(ctx.Machine.Declare(e.Name(), false), e.Line)

	case Constant:
		return atLine(ctx.Machine.Declare(e.Name(), true), e.Line)

	case Assign:
		return atLine(ctx.Machine.Assign(e.Name()), e.Line)

	case Get:
		return atLine(ctx.Machine.Get(e.Name()), e.Line)

	case BeginGroup:
		return atLine(ctx.Machine.BeginGroup(), e.Line)

	case EndGroup:
		return atLine(ctx.Machine.EndGroup(), e.Line)

	case Array:
		if int64(ctx.Machine.Depth()) < e.Count() {
			return diag.Newf(diag.GroupConstraint, "array of %d elements requires %d visible values, have %d", e.Count(), e.Count(), ctx.Machine.Depth()).AtLine(e.Line)
		}
		return nil

	case Operation:
		return d.call(e.Name(), ctx, e.Line)

	default:
		return diag.Newf(diag.InvalidName, "script: unknown entity kind %d", e.Kind).AtLine(e.Line)
	}
}

// parseNumeric splits a Numeric entity's lexeme into its decimal value
// and optional trailing pointer-arithmetic suffix letter
// (s/q/r/g/t/m), returning suffix == 0 when none is present.
func parseNumeric(lexeme string) (value int64, suffix byte, err error) {
	digits := lexeme
	if n := len(lexeme); n > 0 {
		switch c := lexeme[n-1]; c {
		case 's', 'q', 'r', 'g', 't', 'm':
			suffix = c
			digits = lexeme[:n-1]
		}
	}
	if digits == "" {
		return 0, 0, diag.Newf(diag.Range, "numeric literal %q has no digits", lexeme)
	}
	n, parseErr := strconv.ParseInt(digits, 10, 64)
	if parseErr != nil {
		return 0, 0, diag.Newf(diag.Range, "numeric literal %q is not a valid integer", lexeme)
	}
	return n, suffix, nil
}
