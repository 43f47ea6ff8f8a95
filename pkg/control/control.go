// Package control implements infrared's controller-tracking module: a
// registry mapping MIDI control targets to graphs, and a single Track
// pass that walks the registry after rendering and emits the physical
// controller messages needed to reproduce each graph's value over the
// final event range.
package control

import (
	"sort"

	"github.com/zurustar/infrared/pkg/diag"
	"github.com/zurustar/infrared/pkg/graph"
	"github.com/zurustar/infrared/pkg/midi"
	"github.com/zurustar/infrared/pkg/moment"
)

// Target names one of the seven controller kinds a graph can be bound
// to. Each target carries its own set of (channel, index) instances,
// except Tempo, which is not channel- or index-specific.
type Target int

const (
	TargetTempo Target = iota
	TargetCC7
	TargetCC14
	TargetNRPN
	TargetRPN
	TargetPressure
	TargetPitchBend
)

// index ranges for the per-target controller index, mirroring the
// original module's CONTROL_INDEX_* constants.
const (
	cc7Range1Min = 0x40
	cc7Range1Max = 0x5f
	cc7Range2Min = 0x66
	cc7Range2Max = 0x77

	cc14Min = 0x1
	cc14Max = 0x1f
	dataIdx = 0x06
	wideMax = midi.MaxWideData
	nrpnLSB = 0x62
	nrpnMSB = 0x63
	rpnLSB  = 0x64
	rpnMSB  = 0x65
	dataMSB = 0x06
	dataLSB = 0x26
)

type key struct {
	target Target
	ch     int64
	idx    int64
}

// Module holds at most one graph per (target, channel, index) instance.
// Registering the same instance again overwrites the previous graph, the
// same as a later note-classifier registration overwrites an earlier
// one in pkg/render.
type Module struct {
	entries map[key]*graph.Graph
}

// NewModule returns an empty Module.
func NewModule() *Module {
	return &Module{entries: make(map[key]*graph.Graph)}
}

// Register binds g to the given target/channel/index instance,
// validating channel and index against the target's domain. ch is
// ignored for TargetTempo; idx is ignored for every target except CC7,
// CC14, NRPN and RPN.
func (m *Module) Register(target Target, ch, idx int64, g *graph.Graph) error {
	if g == nil {
		return diag.New(diag.Undefined, "control: cannot register a nil graph")
	}

	if target != TargetTempo {
		if ch < 1 || ch > midi.MaxChannel {
			return diag.Newf(diag.Range, "controller channel %d out of range [1,%d]", ch, midi.MaxChannel)
		}
	} else {
		ch = 0
	}

	switch target {
	case TargetCC7:
		if (idx < cc7Range1Min || idx > cc7Range1Max) && (idx < cc7Range2Min || idx > cc7Range2Max) {
			return diag.Newf(diag.Range, "7-bit controller index %d out of range [%#x,%#x] or [%#x,%#x]", idx, cc7Range1Min, cc7Range1Max, cc7Range2Min, cc7Range2Max)
		}
	case TargetCC14:
		if idx < cc14Min || idx > cc14Max || idx == dataIdx {
			return diag.Newf(diag.Range, "14-bit controller index %d out of range [%#x,%#x] excluding %#x", idx, cc14Min, cc14Max, dataIdx)
		}
	case TargetNRPN, TargetRPN:
		if idx < 0 || idx > wideMax {
			return diag.Newf(diag.Range, "controller index %d out of range [0,%#x]", idx, wideMax)
		}
	default:
		idx = 0
	}

	m.entries[key{target: target, ch: ch, idx: idx}] = g
	return nil
}

// sortedKeys returns m's registered instances in (target, channel,
// index) order, the same total order the original module kept its
// sorted map array in.
func (m *Module) sortedKeys() []key {
	keys := make([]key, 0, len(m.entries))
	for k := range m.entries {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].target != keys[j].target {
			return keys[i].target < keys[j].target
		}
		if keys[i].ch != keys[j].ch {
			return keys[i].ch < keys[j].ch
		}
		return keys[i].idx < keys[j].idx
	})
	return keys
}

// Track implements the track() procedure of spec.md §4.6: for every
// registered instance, it walks the bound graph across out's final
// event range and emits whatever physical MIDI messages reproduce the
// graph's value at each change. Must be called exactly once, after
// rendering and before out.Compile.
func (m *Module) Track(out *midi.Assembler) error {
	if len(m.entries) == 0 {
		return nil
	}

	start, err := moment.Pack(out.EventRangeLower(), moment.Start)
	if err != nil {
		return err
	}
	end, err := moment.Pack(out.EventRangeUpper(), moment.End)
	if err != nil {
		return err
	}

	for _, k := range m.sortedKeys() {
		g := m.entries[k]
		if err := g.Track(start, &end, nil, func(t moment.Moment, v int64) error {
			return emit(out, k, t, v)
		}); err != nil {
			return err
		}
	}
	return nil
}

// emit writes the physical MIDI message(s) that set k's controller to v
// at moment t.
func emit(out *midi.Assembler, k key, t moment.Moment, v int64) error {
	ch := int(k.ch)
	switch k.target {
	case TargetTempo:
		if v < midi.MinTempo || v > midi.MaxTempo {
			return diag.Newf(diag.Range, "tempo graph value %d out of range [%d,%d]", v, midi.MinTempo, midi.MaxTempo)
		}
		return out.AddTempo(t, false, v)

	case TargetCC7:
		if v < 0 || v > midi.MaxDataByte {
			return diag.Newf(diag.Range, "7-bit controller graph value %d out of range [0,%d]", v, midi.MaxDataByte)
		}
		return out.AddMessage(t, false, ch, midi.Control, int(k.idx), int(v))

	case TargetCC14:
		if v < 0 || v > wideMax {
			return diag.Newf(diag.Range, "14-bit controller graph value %d out of range [0,%#x]", v, wideMax)
		}
		msb, lsb := splitWide(v)
		if err := out.AddMessage(t, false, ch, midi.Control, int(k.idx), msb); err != nil {
			return err
		}
		return out.AddMessage(t, false, ch, midi.Control, int(k.idx)+0x20, lsb)

	case TargetNRPN, TargetRPN:
		if v < 0 || v > wideMax {
			return diag.Newf(diag.Range, "controller graph value %d out of range [0,%#x]", v, wideMax)
		}
		vMSB, vLSB := splitWide(v)
		iMSB, iLSB := splitWide(k.idx)
		lsbIdx, msbIdx := nrpnLSB, nrpnMSB
		if k.target == TargetRPN {
			lsbIdx, msbIdx = rpnLSB, rpnMSB
		}
		if err := out.AddMessage(t, false, ch, midi.Control, lsbIdx, iLSB); err != nil {
			return err
		}
		if err := out.AddMessage(t, false, ch, midi.Control, msbIdx, iMSB); err != nil {
			return err
		}
		if err := out.AddMessage(t, false, ch, midi.Control, dataMSB, vMSB); err != nil {
			return err
		}
		return out.AddMessage(t, false, ch, midi.Control, dataLSB, vLSB)

	case TargetPressure:
		if v < 0 || v > midi.MaxDataByte {
			return diag.Newf(diag.Range, "channel pressure graph value %d out of range [0,%d]", v, midi.MaxDataByte)
		}
		return out.AddMessage(t, false, ch, midi.ChannelAftertouch, 0, int(v))

	case TargetPitchBend:
		if v < 0 || v > wideMax {
			return diag.Newf(diag.Range, "pitch bend graph value %d out of range [0,%#x]", v, wideMax)
		}
		return out.AddMessage(t, false, ch, midi.PitchBend, 0, int(v))

	default:
		return diag.Newf(diag.Range, "control: unknown target %d", k.target)
	}
}

// splitWide breaks a 14-bit value into its most- and least-significant
// 7-bit bytes.
func splitWide(v int64) (msb, lsb int) {
	return int((v >> 7) & 0x7f), int(v & 0x7f)
}
