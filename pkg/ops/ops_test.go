package ops

import (
	"testing"

	"github.com/zurustar/infrared/pkg/control"
	"github.com/zurustar/infrared/pkg/diag"
	"github.com/zurustar/infrared/pkg/graph"
	"github.com/zurustar/infrared/pkg/intset"
	"github.com/zurustar/infrared/pkg/interp"
	"github.com/zurustar/infrared/pkg/midi"
	"github.com/zurustar/infrared/pkg/render"
	"github.com/zurustar/infrared/pkg/text"
)

func newTestContext(t *testing.T) (*Context, *Registry) {
	t.Helper()
	texts := text.NewStore()
	blobs := text.NewBlobStore()
	graphs := graph.NewStore()
	pipeline, err := render.NewPipeline(graphs)
	if err != nil {
		t.Fatalf("NewPipeline: %v", err)
	}
	ctx := &Context{
		Machine:     interp.New(texts, blobs),
		Graphs:      graphs,
		Sets:        intset.NewBuilder(),
		Pipeline:    pipeline,
		Controllers: control.NewModule(),
		Assembler:   midi.New(texts, blobs),
		Texts:       texts,
		Blobs:       blobs,
	}
	r := NewRegistry()
	if err := RegisterAll(r); err != nil {
		t.Fatalf("RegisterAll: %v", err)
	}
	return ctx, r
}

func run(t *testing.T, r *Registry, ctx *Context, name string) {
	t.Helper()
	fn, ok := r.Lookup(name)
	if !ok {
		t.Fatalf("operation %q not registered", name)
	}
	if err := fn(ctx); err != nil {
		t.Fatalf("%s: %v", name, err)
	}
}

func popInteger(t *testing.T, ctx *Context) int64 {
	t.Helper()
	v, err := ctx.Machine.Pop()
	if err != nil {
		t.Fatalf("pop: %v", err)
	}
	if v.Kind() != interp.Integer {
		t.Fatalf("expected Integer, got %v", v.Kind())
	}
	return v.AsInteger()
}

func TestArithmeticOps(t *testing.T) {
	ctx, r := newTestContext(t)

	push := func(n int64) {
		if err := ctx.Machine.Push(interp.NewInteger(n)); err != nil {
			t.Fatalf("push: %v", err)
		}
	}

	push(3)
	push(4)
	run(t, r, ctx, "add")
	if got := popInteger(t, ctx); got != 7 {
		t.Errorf("add: got %d, want 7", got)
	}

	push(10)
	push(3)
	run(t, r, ctx, "sub")
	if got := popInteger(t, ctx); got != 7 {
		t.Errorf("sub: got %d, want 7", got)
	}

	push(6)
	push(7)
	run(t, r, ctx, "mul")
	if got := popInteger(t, ctx); got != 42 {
		t.Errorf("mul: got %d, want 42", got)
	}

	push(20)
	push(4)
	run(t, r, ctx, "div")
	if got := popInteger(t, ctx); got != 5 {
		t.Errorf("div: got %d, want 5", got)
	}

	push(5)
	run(t, r, ctx, "neg")
	if got := popInteger(t, ctx); got != -5 {
		t.Errorf("neg: got %d, want -5", got)
	}

	push(9)
	run(t, r, ctx, "dup")
	a := popInteger(t, ctx)
	b := popInteger(t, ctx)
	if a != 9 || b != 9 {
		t.Errorf("dup: got %d, %d, want 9, 9", a, b)
	}
}

func TestStopReturnsStopDiagnostic(t *testing.T) {
	ctx, r := newTestContext(t)
	fn, ok := r.Lookup("stop")
	if !ok {
		t.Fatal("stop not registered")
	}
	ctx.Line = 12
	err := fn(ctx)
	if err == nil {
		t.Fatal("expected an error from stop")
	}
	derr, ok := err.(*diag.Error)
	if !ok || derr.Code != diag.Stop {
		t.Fatalf("stop: got %v, want a diag.Stop error", err)
	}
}

func TestBPMConvertsToMicrosPerQuarter(t *testing.T) {
	ctx, r := newTestContext(t)
	if err := ctx.Machine.Push(interp.NewInteger(120)); err != nil {
		t.Fatal(err)
	}
	run(t, r, ctx, "bpm")
	if got := popInteger(t, ctx); got != 500000 {
		t.Errorf("bpm(120): got %d, want 500000", got)
	}
}

func TestBPMRejectsNonPositive(t *testing.T) {
	ctx, r := newTestContext(t)
	fn, _ := r.Lookup("bpm")
	if err := ctx.Machine.Push(interp.NewInteger(0)); err != nil {
		t.Fatal(err)
	}
	if err := fn(ctx); err == nil {
		t.Fatal("expected an error for bpm(0)")
	}
}

func TestPointerResetReturnsToOrigin(t *testing.T) {
	ctx, r := newTestContext(t)
	run(t, r, ctx, "ptr")
	run(t, r, ctx, "reset")
	v, err := ctx.Machine.Pop()
	if err != nil {
		t.Fatal(err)
	}
	if v.Kind() != interp.Pointer {
		t.Fatalf("expected Pointer, got %v", v.Kind())
	}
	if !v.AsPointer().IsHeader() {
		t.Errorf("a freshly constructed pointer should be the Header sentinel")
	}
}

func TestSetBuilderRoundTrip(t *testing.T) {
	ctx, r := newTestContext(t)

	run(t, r, ctx, "begin_set")
	run(t, r, ctx, "all")
	push := func(n int64) {
		if err := ctx.Machine.Push(interp.NewInteger(n)); err != nil {
			t.Fatal(err)
		}
	}
	push(0)
	push(9)
	run(t, r, ctx, "exclude")
	run(t, r, ctx, "end_set")

	v, err := ctx.Machine.Pop()
	if err != nil {
		t.Fatal(err)
	}
	if v.Kind() != interp.Set {
		t.Fatalf("expected Set, got %v", v.Kind())
	}
	s := v.AsSet()
	if s.Has(5) {
		t.Errorf("5 should have been excluded")
	}
	if !s.Has(10) {
		t.Errorf("10 should still be a member")
	}
}

func TestConcatFoldsPairwise(t *testing.T) {
	ctx, r := newTestContext(t)

	ha, err := ctx.Texts.Intern("foo")
	if err != nil {
		t.Fatal(err)
	}
	hb, err := ctx.Texts.Intern("bar")
	if err != nil {
		t.Fatal(err)
	}
	hc, err := ctx.Texts.Intern("baz")
	if err != nil {
		t.Fatal(err)
	}

	if err := ctx.Machine.Push(interp.NewInteger(3)); err != nil {
		t.Fatal(err)
	}
	if err := ctx.Machine.Push(interp.NewText(ha)); err != nil {
		t.Fatal(err)
	}
	if err := ctx.Machine.Push(interp.NewText(hb)); err != nil {
		t.Fatal(err)
	}
	if err := ctx.Machine.Push(interp.NewText(hc)); err != nil {
		t.Fatal(err)
	}
	run(t, r, ctx, "concat")

	v, err := ctx.Machine.Pop()
	if err != nil {
		t.Fatal(err)
	}
	got, _ := ctx.Texts.Get(v.AsText())
	if got != "foobarbaz" {
		t.Errorf("concat: got %q, want %q", got, "foobarbaz")
	}
}
