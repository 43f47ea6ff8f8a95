package ops

import (
	"github.com/zurustar/infrared/pkg/diag"
	"github.com/zurustar/infrared/pkg/interp"
	"github.com/zurustar/infrared/pkg/intset"
)

// RegisterRender installs the note-classification operations: note_art,
// note_ruler, note_graph, note_channel, note_release,
// aftertouch_enable, aftertouch_disable. Each classifies notes matching
// a (section, layer, articulation) triple of sets.
func RegisterRender(r *Registry) error {
	adds := map[string]Func{
		"note_art":           noteClass(classArt),
		"note_ruler":         noteClass(classRuler),
		"note_graph":         noteClass(classGraph),
		"note_channel":       noteClass(classChannel),
		"note_release":       noteClass(classRelease),
		"aftertouch_enable":  noteClass(classAftertouchEnable),
		"aftertouch_disable": noteClass(classAftertouchDisable),
	}
	return addAll(r, adds)
}

type noteClassKind int

const (
	classArt noteClassKind = iota
	classRuler
	classGraph
	classChannel
	classRelease
	classAftertouchEnable
	classAftertouchDisable
)

// noteClass adapts the seven note-classifier operations into one
// shape: pop the classified value (synthesized rather than popped for
// the two aftertouch operations), pop the three matching sets in
// sArt/sLayer/sSect order, and apply the classification.
func noteClass(kind noteClassKind) Func {
	return func(ctx *Context) error {
		var v interp.Value
		switch kind {
		case classAftertouchEnable:
			v = interp.NewInteger(1)
		case classAftertouchDisable:
			v = interp.NewInteger(0)
		default:
			var err error
			v, err = ctx.Machine.Pop()
			if err != nil {
				return err
			}
		}

		sArt, sLayer, sSect, err := popClassSets(ctx)
		if err != nil {
			return err
		}

		switch kind {
		case classArt:
			if v.Kind() != interp.Articulation {
				return diag.New(diag.Range, "note_art expects an articulation")
			}
			ctx.Pipeline.AddArt(sSect, sLayer, sArt, v.AsArticulation())
			return nil
		case classRuler:
			if v.Kind() != interp.Ruler {
				return diag.New(diag.Range, "note_ruler expects a ruler")
			}
			ctx.Pipeline.AddRuler(sSect, sLayer, sArt, v.AsRuler())
			return nil
		case classGraph:
			if v.Kind() != interp.Graph {
				return diag.New(diag.Range, "note_graph expects a graph")
			}
			ctx.Pipeline.AddGraph(sSect, sLayer, sArt, v.AsGraph())
			return nil
		case classChannel:
			if v.Kind() != interp.Integer {
				return diag.New(diag.Range, "note_channel expects an integer")
			}
			return ctx.Pipeline.AddChannel(sSect, sLayer, sArt, v.AsInteger())
		case classRelease:
			if v.Kind() != interp.Integer {
				return diag.New(diag.Range, "note_release expects an integer")
			}
			return ctx.Pipeline.AddRelease(sSect, sLayer, sArt, v.AsInteger())
		case classAftertouchEnable, classAftertouchDisable:
			ctx.Pipeline.AddAftertouch(sSect, sLayer, sArt, v.AsInteger() != 0)
			return nil
		default:
			return diag.New(diag.Range, "unknown note classifier")
		}
	}
}

func popClassSets(ctx *Context) (art, layer, sect intset.Set, err error) {
	av, err := ctx.Machine.Pop()
	if err != nil {
		return
	}
	lv, err := ctx.Machine.Pop()
	if err != nil {
		return
	}
	sv, err := ctx.Machine.Pop()
	if err != nil {
		return
	}
	return av.AsSet(), lv.AsSet(), sv.AsSet(), nil
}
