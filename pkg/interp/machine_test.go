package interp

import (
	"testing"

	"github.com/zurustar/infrared/pkg/text"
)

func newTestMachine() *Machine {
	return New(text.NewStore(), text.NewBlobStore())
}

func TestPushPop_Basic(t *testing.T) {
	m := newTestMachine()
	if err := m.Push(NewInteger(7)); err != nil {
		t.Fatalf("Push: %v", err)
	}
	v, err := m.Pop()
	if err != nil {
		t.Fatalf("Pop: %v", err)
	}
	if v.AsInteger() != 7 {
		t.Fatalf("Pop() = %d, want 7", v.AsInteger())
	}
}

func TestPush_RejectsNull(t *testing.T) {
	m := newTestMachine()
	if err := m.Push(Value{}); err == nil {
		t.Fatal("expected error pushing Null")
	}
}

func TestPush_RejectsAbsentTextHandle(t *testing.T) {
	m := newTestMachine()
	if err := m.Push(NewText(text.Handle(99))); err == nil {
		t.Fatal("expected error pushing an absent text handle")
	}
}

func TestPop_Underflow(t *testing.T) {
	m := newTestMachine()
	if _, err := m.Pop(); err == nil {
		t.Fatal("expected StackUnderflow on empty stack")
	}
}

func TestGroup_HidesBeneathSnapshot(t *testing.T) {
	m := newTestMachine()
	if err := m.Push(NewInteger(1)); err != nil {
		t.Fatalf("Push: %v", err)
	}
	if err := m.BeginGroup(); err != nil {
		t.Fatalf("BeginGroup: %v", err)
	}
	if _, err := m.Pop(); err == nil {
		t.Fatal("expected StackUnderflow: nothing visible above the group snapshot")
	}
	if err := m.Push(NewInteger(2)); err != nil {
		t.Fatalf("Push: %v", err)
	}
	if err := m.EndGroup(); err != nil {
		t.Fatalf("EndGroup: %v", err)
	}
	v, err := m.Pop()
	if err != nil {
		t.Fatalf("Pop: %v", err)
	}
	if v.AsInteger() != 2 {
		t.Fatalf("Pop() = %d, want 2", v.AsInteger())
	}
}

func TestEndGroup_RejectsWrongVisibleCount(t *testing.T) {
	m := newTestMachine()
	if err := m.BeginGroup(); err != nil {
		t.Fatalf("BeginGroup: %v", err)
	}
	if err := m.EndGroup(); err == nil {
		t.Fatal("expected GroupConstraint: zero visible values")
	}
}

func TestDeclareGetAssign(t *testing.T) {
	m := newTestMachine()
	if err := m.Push(NewInteger(10)); err != nil {
		t.Fatalf("Push: %v", err)
	}
	if err := m.Declare("x", false); err != nil {
		t.Fatalf("Declare: %v", err)
	}
	if err := m.Get("x"); err != nil {
		t.Fatalf("Get: %v", err)
	}
	v, _ := m.Pop()
	if v.AsInteger() != 10 {
		t.Fatalf("Get(x) = %d, want 10", v.AsInteger())
	}

	if err := m.Push(NewInteger(20)); err != nil {
		t.Fatalf("Push: %v", err)
	}
	if err := m.Assign("x"); err != nil {
		t.Fatalf("Assign: %v", err)
	}
	if err := m.Get("x"); err != nil {
		t.Fatalf("Get: %v", err)
	}
	v, _ = m.Pop()
	if v.AsInteger() != 20 {
		t.Fatalf("Get(x) after Assign = %d, want 20", v.AsInteger())
	}
}

func TestDeclare_RejectsRedefinition(t *testing.T) {
	m := newTestMachine()
	m.Push(NewInteger(1))
	if err := m.Declare("x", false); err != nil {
		t.Fatalf("Declare: %v", err)
	}
	m.Push(NewInteger(2))
	if err := m.Declare("x", false); err == nil {
		t.Fatal("expected Redefinition error")
	}
}

func TestDeclare_RejectsInvalidName(t *testing.T) {
	m := newTestMachine()
	m.Push(NewInteger(1))
	if err := m.Declare("1bad", false); err == nil {
		t.Fatal("expected InvalidName error")
	}
}

func TestAssign_RejectsConstAndUndefined(t *testing.T) {
	m := newTestMachine()
	m.Push(NewInteger(1))
	if err := m.Declare("c", true); err != nil {
		t.Fatalf("Declare: %v", err)
	}
	m.Push(NewInteger(2))
	if err := m.Assign("c"); err == nil {
		t.Fatal("expected Const error")
	}
	m.Push(NewInteger(3))
	if err := m.Assign("nope"); err == nil {
		t.Fatal("expected Undefined error")
	}
}

func TestGet_Undefined(t *testing.T) {
	m := newTestMachine()
	if err := m.Get("nope"); err == nil {
		t.Fatal("expected Undefined error")
	}
}

func TestRulerStack_DefaultWhenEmpty(t *testing.T) {
	m := newTestMachine()
	r := m.RStackCurrent()
	if r.Duration() != 48 {
		t.Fatalf("default ruler duration = %d, want 48", r.Duration())
	}
	if err := m.RStackPush(r); err != nil {
		t.Fatalf("RStackPush: %v", err)
	}
	popped, err := m.RStackPop()
	if err != nil {
		t.Fatalf("RStackPop: %v", err)
	}
	if popped.Duration() != 48 {
		t.Fatalf("popped ruler duration = %d, want 48", popped.Duration())
	}
	if _, err := m.RStackPop(); err == nil {
		t.Fatal("expected StackUnderflow on empty ruler stack")
	}
}

func TestShutdown_RequiresEmptyAndClosed(t *testing.T) {
	m := newTestMachine()
	m.Push(NewInteger(1))
	if err := m.Shutdown(); err == nil {
		t.Fatal("expected error: value stack not empty")
	}
	m.Pop()
	if err := m.BeginGroup(); err != nil {
		t.Fatalf("BeginGroup: %v", err)
	}
	if err := m.Shutdown(); err == nil {
		t.Fatal("expected error: group still open")
	}
	m.Push(NewInteger(2))
	m.EndGroup()
	m.Pop()
	if err := m.Shutdown(); err != nil {
		t.Fatalf("Shutdown: %v", err)
	}
	if err := m.Push(NewInteger(1)); err == nil {
		t.Fatal("expected error: push after shutdown")
	}
}
