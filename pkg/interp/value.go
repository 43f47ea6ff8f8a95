// Package interp implements infrared's interpreter substrate: the
// tagged value stack, group stack, named bank, and ruler stack spec.md
// §3/§4.1 describe as the process-wide, single-threaded state of one
// compilation.
package interp

import (
	"github.com/zurustar/infrared/pkg/artic"
	"github.com/zurustar/infrared/pkg/graph"
	"github.com/zurustar/infrared/pkg/intset"
	"github.com/zurustar/infrared/pkg/pointer"
	"github.com/zurustar/infrared/pkg/text"
)

// Kind tags one variant of the interpreter value union.
type Kind int

const (
	// Null is the in-band marker for unused slots; it is never
	// pushable onto the value stack.
	Null Kind = iota
	Integer
	Text
	Blob
	Graph
	Set
	Articulation
	Ruler
	Pointer
)

// Value is the tagged union spec.md §3 specifies:
// { Integer, Text, Blob, Graph, Set, Articulation, Ruler, Pointer },
// plus the unconstructable Null marker. Text and Blob are handles into
// their respective stores; Graph is a store-owned pointer; the
// remaining kinds are small value types copied by value.
type Value struct {
	kind Kind

	integer int64
	text    text.Handle
	blob    text.BlobHandle
	graph   *graph.Graph
	set     intset.Set
	art     artic.Articulation
	ruler   artic.Ruler
	ptr     pointer.Pointer
}

// IsNull reports whether v is the Null marker.
func (v Value) IsNull() bool { return v.kind == Null }

// Kind returns v's tag.
func (v Value) Kind() Kind { return v.kind }

// NewInteger constructs an Integer value.
func NewInteger(n int64) Value { return Value{kind: Integer, integer: n} }

// NewText constructs a Text value from a handle into a text.Store.
func NewText(h text.Handle) Value { return Value{kind: Text, text: h} }

// NewBlob constructs a Blob value from a handle into a text.BlobStore.
func NewBlob(h text.BlobHandle) Value { return Value{kind: Blob, blob: h} }

// NewGraph constructs a Graph value.
func NewGraph(g *graph.Graph) Value { return Value{kind: Graph, graph: g} }

// NewSet constructs a Set value.
func NewSet(s intset.Set) Value { return Value{kind: Set, set: s} }

// NewArticulation constructs an Articulation value.
func NewArticulation(a artic.Articulation) Value { return Value{kind: Articulation, art: a} }

// NewRuler constructs a Ruler value.
func NewRuler(r artic.Ruler) Value { return Value{kind: Ruler, ruler: r} }

// NewPointer constructs a Pointer value.
func NewPointer(p pointer.Pointer) Value { return Value{kind: Pointer, ptr: p} }

// AsInteger returns v's payload, panicking if v is not an Integer. Every
// accessor below follows the same contract: operations (pkg/ops) are
// expected to type-check via Kind before calling, rather than each
// accessor defensively re-checking it.
func (v Value) AsInteger() int64 {
	v.mustBe(Integer)
	return v.integer
}

func (v Value) AsText() text.Handle {
	v.mustBe(Text)
	return v.text
}

func (v Value) AsBlob() text.BlobHandle {
	v.mustBe(Blob)
	return v.blob
}

func (v Value) AsGraph() *graph.Graph {
	v.mustBe(Graph)
	return v.graph
}

func (v Value) AsSet() intset.Set {
	v.mustBe(Set)
	return v.set
}

func (v Value) AsArticulation() artic.Articulation {
	v.mustBe(Articulation)
	return v.art
}

func (v Value) AsRuler() artic.Ruler {
	v.mustBe(Ruler)
	return v.ruler
}

func (v Value) AsPointer() pointer.Pointer {
	v.mustBe(Pointer)
	return v.ptr
}

func (v Value) mustBe(k Kind) {
	if v.kind != k {
		panic("interp: value kind mismatch")
	}
}
