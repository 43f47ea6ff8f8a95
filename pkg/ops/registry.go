// Package ops implements infrared's operation catalogue: one Func per
// name in spec.md §6, each a thin adapter that pops its arguments off
// the interpreter stack, calls exactly one core-module API, and pushes
// a result if the operation produces one.
package ops

import (
	"regexp"

	"github.com/zurustar/infrared/pkg/control"
	"github.com/zurustar/infrared/pkg/diag"
	"github.com/zurustar/infrared/pkg/graph"
	"github.com/zurustar/infrared/pkg/intset"
	"github.com/zurustar/infrared/pkg/interp"
	"github.com/zurustar/infrared/pkg/midi"
	"github.com/zurustar/infrared/pkg/nmf"
	"github.com/zurustar/infrared/pkg/render"
	"github.com/zurustar/infrared/pkg/text"
)

// Context bundles every core module one operation might need to touch,
// plus the current source line for diagnostics. One Context is
// constructed per compilation and threaded through every operation call
// by the script driver.
//
// This lives in pkg/ops rather than pkg/script (where spec.md §4.8
// originally placed it) because script.Driver must look operations up
// in an ops.Registry, and ops.Func must take this type as its argument —
// putting both in pkg/script would make pkg/ops import pkg/script for
// nothing pkg/ops otherwise needs, while pkg/script already needs
// pkg/ops for the registry. Keeping Context here breaks that cycle
// without changing any operation's behaviour.
type Context struct {
	Machine     *interp.Machine
	Graphs      *graph.Store
	Sets        *intset.Builder
	Pipeline    *render.Pipeline
	Controllers *control.Module
	Assembler   *midi.Assembler
	Data        nmf.Data
	Texts       *text.Store
	Blobs       *text.BlobStore

	// Line is the source line of the entity currently being
	// dispatched, set by script.Driver before every Func call.
	Line int
}

// Func is the shape of every registered operation.
type Func func(ctx *Context) error

// nameRE is the operation naming rule spec.md §6 specifies (shared with
// pkg/interp's bank naming rule, but kept local to avoid a needless
// cross-package dependency for one regular expression).
var nameRE = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9_]{0,30}$`)

// Registry maps operation names to their Funcs.
type Registry struct {
	funcs map[string]Func
}

// NewRegistry constructs an empty Registry.
func NewRegistry() *Registry {
	return &Registry{funcs: make(map[string]Func)}
}

// Add registers fn under name. Fails with diag.InvalidName if name does
// not match the naming rule, diag.DuplicateOp if name is already
// registered.
func (r *Registry) Add(name string, fn Func) error {
	if !nameRE.MatchString(name) {
		return diag.Newf(diag.InvalidName, "operation name %q does not match [A-Za-z][A-Za-z0-9_]{0,30}", name)
	}
	if _, ok := r.funcs[name]; ok {
		return diag.Newf(diag.DuplicateOp, "operation %q is already registered", name)
	}
	r.funcs[name] = fn
	return nil
}

// Lookup returns the Func registered under name, if any.
func (r *Registry) Lookup(name string) (Func, bool) {
	fn, ok := r.funcs[name]
	return fn, ok
}
