// Package graph implements infrared's graph engine: piecewise constant,
// linear/log-interpolated ramp, and derived value-over-time curves,
// materialised through a single buffered-region resolver (spec.md §4.3).
package graph

import "sort"

import "github.com/zurustar/infrared/pkg/moment"

// Node is one materialised (time, value) sample of a Graph.
type Node struct {
	T moment.Moment
	V int32
}

// negativeInfinity is the sentinel time a constant Graph's single node
// carries, so Query/Track treat it as defined from the start of time.
const negativeInfinity = moment.Moment(-1 << 31)

// Graph is an immutable, materialised piecewise curve: a strictly
// ascending, value-deduplicated node list. Graphs are produced by a
// Store (constant graphs directly, all others via Begin/Add*/End) and
// are otherwise read-only, matching spec.md §3's "all heap values are
// owned by their respective module stores" lifecycle.
type Graph struct {
	nodes []Node
}

// Query implements graph_query: binary search for the latest node with
// time <= t, defaulting to the first node if none qualifies.
func (g *Graph) Query(t moment.Moment) int64 {
	idx := sort.Search(len(g.nodes), func(i int) bool { return g.nodes[i].T > t }) - 1
	if idx < 0 {
		idx = 0
	}
	return int64(g.nodes[idx].V)
}

// TrackFunc is the callback contract graph_track and the controller
// module's auto-tracking (pkg/control) both drive: one call per emitted
// (time, value) sample, in ascending time order.
type TrackFunc func(t moment.Moment, v int64) error

// Track implements graph_track: emits every node whose time is > tStart
// and (if tEnd is non-nil) <= *tEnd, prefixed by one synthetic node at
// tStart carrying the value that would have been observed there —
// unless vStart is non-nil and already equals that value.
func (g *Graph) Track(tStart moment.Moment, tEnd *moment.Moment, vStart *int64, fn TrackFunc) error {
	observed := g.Query(tStart)
	if vStart == nil || *vStart != observed {
		if err := fn(tStart, observed); err != nil {
			return err
		}
	}
	idx := sort.Search(len(g.nodes), func(i int) bool { return g.nodes[i].T > tStart })
	for ; idx < len(g.nodes); idx++ {
		n := g.nodes[idx]
		if tEnd != nil && n.T > *tEnd {
			break
		}
		if err := fn(n.T, int64(n.V)); err != nil {
			return err
		}
	}
	return nil
}

// Nodes returns a copy of g's materialised node list, for tests and for
// callers (e.g. the MIDI assembler's header-event construction) that
// need to walk every sample directly rather than through Track.
func (g *Graph) Nodes() []Node {
	cp := make([]Node, len(g.nodes))
	copy(cp, g.nodes)
	return cp
}
