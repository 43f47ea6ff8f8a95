package ops

import (
	"github.com/zurustar/infrared/pkg/diag"
	"github.com/zurustar/infrared/pkg/interp"
	"github.com/zurustar/infrared/pkg/moment"
)

// RegisterGraph installs the graph-construction operations: gval,
// begin_graph, end_graph, graph_const, graph_ramp, graph_ramp_log,
// graph_derive.
func RegisterGraph(r *Registry) error {
	adds := map[string]Func{
		"gval":           opGval,
		"begin_graph":    opBeginGraph,
		"end_graph":      opEndGraph,
		"graph_const":    opGraphConst,
		"graph_ramp":     graphRamp(false),
		"graph_ramp_log": graphRamp(true),
		"graph_derive":   opGraphDerive,
	}
	return addAll(r, adds)
}

// momentArg resolves a Pointer popped off the stack to a moment.Moment,
// rejecting the Header sentinel: graph definitions are always anchored
// to an actual point in the piece, never to the header.
func momentArg(ctx *Context, name string) (moment.Moment, error) {
	pv, err := ctx.Machine.Pop()
	if err != nil {
		return 0, err
	}
	t, head, err := resolveMoment(ctx, pv.AsPointer())
	if err != nil {
		return 0, err
	}
	if head {
		return 0, diag.Newf(diag.GroupConstraint, "%s: pointer must not be the header", name)
	}
	return moment.Moment(t), nil
}

func opGval(ctx *Context) error {
	v, err := popInt(ctx)
	if err != nil {
		return err
	}
	g, err := ctx.Graphs.Constant(v)
	if err != nil {
		return err
	}
	return ctx.Machine.Push(interp.NewGraph(g))
}

func opBeginGraph(ctx *Context) error {
	return ctx.Graphs.Begin()
}

func opEndGraph(ctx *Context) error {
	g, err := ctx.Graphs.End()
	if err != nil {
		return err
	}
	return ctx.Machine.Push(interp.NewGraph(g))
}

func opGraphConst(ctx *Context) error {
	v, err := popInt(ctx)
	if err != nil {
		return err
	}
	t, err := momentArg(ctx, "graph_const")
	if err != nil {
		return err
	}
	return ctx.Graphs.AddConstant(t, v)
}

func graphRamp(logFlag bool) Func {
	return func(ctx *Context) error {
		step, err := popInt(ctx)
		if err != nil {
			return err
		}
		b, err := popInt(ctx)
		if err != nil {
			return err
		}
		a, err := popInt(ctx)
		if err != nil {
			return err
		}
		name := "graph_ramp"
		if logFlag {
			name = "graph_ramp_log"
		}
		t, err := momentArg(ctx, name)
		if err != nil {
			return err
		}
		return ctx.Graphs.AddRamp(t, a, b, step, logFlag)
	}
}

func opGraphDerive(ctx *Context) error {
	max, err := popInt(ctx)
	if err != nil {
		return err
	}
	min, err := popInt(ctx)
	if err != nil {
		return err
	}
	c, err := popInt(ctx)
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
	srcStart, err := momentArg(ctx, "graph_derive")
	if err != nil {
		return err
	}
	srcv, err := ctx.Machine.Pop()
	if err != nil {
		return err
	}
	t, err := momentArg(ctx, "graph_derive")
	if err != nil {
		return err
	}
	return ctx.Graphs.AddDerived(t, srcv.AsGraph(), srcStart, num, denom, c, min, max, true)
}
