package graph

import (
	"math"

	"github.com/zurustar/infrared/pkg/diag"
	"github.com/zurustar/infrared/pkg/moment"
	"github.com/zurustar/infrared/pkg/primitive"
)

// maxNodes bounds the number of materialised nodes a single graph
// definition may emit (spec.md §4.3: "Capacity <= 16,384 nodes per
// graph").
const maxNodes = 16384

type builderState int

const (
	stateIdle builderState = iota
	stateOpen
)

type regionKind int

const (
	kindConstant regionKind = iota
	kindRamp
	kindDerived
)

// region is the single buffered, not-yet-resolved curve segment a Store
// holds between Add* calls. Only one exists at a time, matching spec.md
// §4.3's "single accumulator and single region buffer" design.
type region struct {
	anchor moment.Moment
	kind   regionKind

	constVal int64

	rampA, rampB, rampStep int64
	rampLog                bool

	derivedSrc      *Graph
	derivedSrcStart moment.Moment
	derivedNum      int64
	derivedDenom    int64
	derivedC        int64
	derivedMin      int64
	derivedMax      int64
	derivedHasMax   bool
}

// Store is the process-wide graph accumulator and constant-graph
// interning cache for one compilation. The zero value is not usable;
// construct with NewStore.
type Store struct {
	state    builderState
	buffered *region

	nodes        []Node
	lastTime     moment.Moment
	hasLastTime  bool
	lastValue    int64
	hasLastValue bool

	constCache map[int64]*Graph
}

// NewStore constructs an empty graph Store.
func NewStore() *Store {
	return &Store{constCache: make(map[int64]*Graph)}
}

// Constant returns the (possibly cached) Graph for value v, bypassing
// the accumulator entirely — spec.md §4.3: "constant(v) -> Graph:
// bypasses the accumulator, uses the interning cache. Not affected by
// any open definition." Two calls with equal v return the same *Graph
// (spec.md §8 property 9).
func (s *Store) Constant(v int64) (*Graph, error) {
	if g, ok := s.constCache[v]; ok {
		return g, nil
	}
	vv, err := primitive.Check(v)
	if err != nil {
		return nil, err
	}
	g := &Graph{nodes: []Node{{T: negativeInfinity, V: vv}}}
	s.constCache[v] = g
	return g, nil
}

// Begin opens a new graph definition, requiring no definition is
// currently open, and resets the accumulator and region buffer.
func (s *Store) Begin() error {
	if s.state != stateIdle {
		return diag.New(diag.GroupConstraint, "graph begin: a definition is already open")
	}
	s.state = stateOpen
	s.buffered = nil
	s.nodes = nil
	s.hasLastTime = false
	s.hasLastValue = false
	return nil
}

// requireOpen fails unless a definition is currently open.
func (s *Store) requireOpen(op string) error {
	if s.state != stateOpen {
		return diag.Newf(diag.GroupConstraint, "graph %s: no definition is open", op)
	}
	return nil
}

// flush resolves the currently buffered region, if any, now that its
// successor (next, nil if none) is known, then installs r as the new
// buffered region. Every Add* call goes through flush so the "resolve
// the previous region once its successor moment is known" rule (spec.md
// §4.3) lives in exactly one place.
func (s *Store) flush(next *moment.Moment, r *region) error {
	if s.buffered != nil {
		if err := s.resolve(s.buffered, next); err != nil {
			return err
		}
	}
	s.buffered = r
	return nil
}

// AddConstant supplies a new constant-valued region anchored at t.
func (s *Store) AddConstant(t moment.Moment, v int64) error {
	if err := s.requireOpen("add_constant"); err != nil {
		return err
	}
	return s.flush(&t, &region{anchor: t, kind: kindConstant, constVal: v})
}

// AddRamp supplies a new ramp region anchored at t, running from a to b
// with the given subquantum step, linearly or logarithmically.
func (s *Store) AddRamp(t moment.Moment, a, b, step int64, logFlag bool) error {
	if err := s.requireOpen("add_ramp"); err != nil {
		return err
	}
	if step <= 0 {
		return diag.Newf(diag.Range, "ramp step %d must be > 0", step)
	}
	return s.flush(&t, &region{anchor: t, kind: kindRamp, rampA: a, rampB: b, rampStep: step, rampLog: logFlag})
}

// AddDerived supplies a new region anchored at t whose values are
// sampled from src starting at srcStart, scaled by num/denom, offset by
// c, and clamped to [min, max] (or [min, +inf) if hasMax is false).
func (s *Store) AddDerived(t moment.Moment, src *Graph, srcStart moment.Moment, num, denom, c, min, max int64, hasMax bool) error {
	if err := s.requireOpen("add_derived"); err != nil {
		return err
	}
	if denom == 0 {
		return diag.New(diag.Range, "derived graph denominator must be nonzero")
	}
	return s.flush(&t, &region{
		anchor: t, kind: kindDerived,
		derivedSrc: src, derivedSrcStart: srcStart,
		derivedNum: num, derivedDenom: denom, derivedC: c,
		derivedMin: min, derivedMax: max, derivedHasMax: hasMax,
	})
}

// End resolves the final buffered region (it has no successor) and
// materialises the accumulator into a Graph, closing the definition.
func (s *Store) End() (*Graph, error) {
	if err := s.requireOpen("end"); err != nil {
		return nil, err
	}
	if s.buffered != nil {
		if err := s.resolve(s.buffered, nil); err != nil {
			return nil, err
		}
	}
	if len(s.nodes) == 0 {
		return nil, diag.New(diag.EmptyGraph, "graph definition produced no nodes")
	}
	g := &Graph{nodes: append([]Node{}, s.nodes...)}
	s.state = stateIdle
	s.buffered = nil
	s.nodes = nil
	return g, nil
}

// appendNode enforces the accumulator's append rules: times must be
// strictly ascending (tracked even across suppressed appends), and a
// node whose value equals the previously *emitted* value is suppressed.
func (s *Store) appendNode(t moment.Moment, v int64) error {
	if s.hasLastTime && t <= s.lastTime {
		return diag.Newf(diag.NonChronological, "graph node time %d is not strictly after previous time %d", t, s.lastTime)
	}
	s.lastTime = t
	s.hasLastTime = true

	if s.hasLastValue && v == s.lastValue {
		return nil
	}
	if len(s.nodes) >= maxNodes {
		return diag.Newf(diag.StackOverflow, "graph exceeds %d node capacity", maxNodes)
	}
	vv, err := primitive.Check(v)
	if err != nil {
		return err
	}
	s.nodes = append(s.nodes, Node{T: t, V: vv})
	s.lastValue = v
	s.hasLastValue = true
	return nil
}

// resolve emits r's nodes into the accumulator, given r's successor
// anchor (next, nil if r is the last region in the definition).
func (s *Store) resolve(r *region, next *moment.Moment) error {
	switch r.kind {
	case kindConstant:
		return s.appendNode(r.anchor, r.constVal)
	case kindRamp:
		return s.resolveRamp(r, next)
	case kindDerived:
		return s.resolveDerived(r, next)
	default:
		panic("graph: unknown region kind")
	}
}

func (s *Store) resolveRamp(r *region, next *moment.Moment) error {
	if r.rampA == r.rampB {
		return s.appendNode(r.anchor, r.rampA)
	}
	if next == nil {
		return diag.New(diag.RampAtEnd, "ramp region has no successor to resolve against")
	}
	if err := s.appendNode(r.anchor, r.rampA); err != nil {
		return err
	}

	tSub, tPart := r.anchor.Unpack()
	nextSub := next.Subquantum()

	first := (moment.FloorDiv(tSub, r.rampStep) + 1) * r.rampStep
	for sub := first; sub < nextSub; sub += r.rampStep {
		f := float64(sub-tSub) / float64(nextSub-tSub)
		var val float64
		if r.rampLog {
			lnA := math.Log(float64(r.rampA) + 1)
			lnB := math.Log(float64(r.rampB) + 1)
			val = math.Exp(lnA+f*(lnB-lnA)) - 1
		} else {
			val = float64(r.rampA) + f*float64(r.rampB-r.rampA)
		}
		iv := int64(math.Floor(val))
		if iv < 0 {
			iv = 0
		}
		if iv > primitive.MaxValue {
			iv = primitive.MaxValue
		}
		m, err := moment.Pack(sub, tPart)
		if err != nil {
			return err
		}
		if err := s.appendNode(m, iv); err != nil {
			return err
		}
	}
	return nil
}

func (s *Store) resolveDerived(r *region, next *moment.Moment) error {
	tSub, _ := r.anchor.Unpack()
	srcStartSub, srcStartPart := r.derivedSrcStart.Unpack()

	var tEnd *moment.Moment
	if next != nil {
		nextSub := next.Subquantum()
		endSub := srcStartSub + (nextSub - tSub)
		m, err := moment.Pack(endSub, srcStartPart)
		if err != nil {
			return err
		}
		tEnd = &m
	}

	return r.derivedSrc.Track(r.derivedSrcStart, tEnd, nil, func(tcb moment.Moment, vcb int64) error {
		cbSub, cbPart := tcb.Unpack()
		newSub := tSub + (cbSub - srcStartSub)
		newMoment, err := moment.Pack(newSub, cbPart)
		if err != nil {
			return err
		}
		scaled := moment.FloorDiv(vcb*r.derivedNum, r.derivedDenom) + r.derivedC
		if scaled < r.derivedMin {
			scaled = r.derivedMin
		}
		if r.derivedHasMax && scaled > r.derivedMax {
			scaled = r.derivedMax
		}
		return s.appendNode(newMoment, scaled)
	})
}
