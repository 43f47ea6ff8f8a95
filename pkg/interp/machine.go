package interp

import (
	"regexp"

	"github.com/zurustar/infrared/pkg/artic"
	"github.com/zurustar/infrared/pkg/diag"
	"github.com/zurustar/infrared/pkg/text"
)

// Capacity limits, per spec.md §4.1's "capacity policy". Each stack/bank
// grows on demand via Go's native append up to the bound below, at
// which point the corresponding operation fails instead of growing
// further.
const (
	maxValueStack = 16384
	maxGroupStack = 1024
	maxBank       = 16384
	maxRulerStack = 1024
)

// nameRE is the bank/variable naming rule spec.md §3 specifies.
var nameRE = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9_]{0,30}$`)

// binding is one bank entry: a value plus its mutability.
type binding struct {
	value   Value
	isConst bool
}

// Machine is the interpreter core of spec.md §4.1: a value stack, a
// group stack, a named bank, and a ruler stack, all scoped to one
// compilation. The zero value is not usable; construct with New.
type Machine struct {
	textStore *text.Store
	blobStore *text.BlobStore

	stack  []Value
	groups []int // stack-length snapshots

	bank map[string]*binding

	rulers []artic.Ruler

	shutdown bool
}

// New constructs an empty Machine. textStore and blobStore are consulted
// by Push to reject handle-typed values whose handle is absent.
func New(textStore *text.Store, blobStore *text.BlobStore) *Machine {
	return &Machine{
		textStore: textStore,
		blobStore: blobStore,
		bank:      make(map[string]*binding),
	}
}

func (m *Machine) requireNotShutdown(op string) error {
	if m.shutdown {
		return diag.Newf(diag.Shutdown, "%s: machine has been shut down", op)
	}
	return nil
}

// Push appends v to the value stack. Null is never pushable; a
// handle-typed value (Text, Blob) whose handle the corresponding store
// does not recognise is rejected the same way.
func (m *Machine) Push(v Value) error {
	if err := m.requireNotShutdown("push"); err != nil {
		return err
	}
	if v.IsNull() {
		return diag.New(diag.Undefined, "push: Null is never pushable")
	}
	switch v.kind {
	case Text:
		if _, ok := m.textStore.Get(v.text); !ok {
			return diag.New(diag.Undefined, "push: text handle is absent")
		}
	case Blob:
		if _, ok := m.blobStore.Get(v.blob); !ok {
			return diag.New(diag.Undefined, "push: blob handle is absent")
		}
	}
	if len(m.stack) >= maxValueStack {
		return diag.Newf(diag.StackOverflow, "value stack exceeds %d entries", maxValueStack)
	}
	m.stack = append(m.stack, v)
	return nil
}

// visibleDepth is the number of stack entries above the topmost open
// group's snapshot (or the whole stack, if no group is open).
func (m *Machine) visibleDepth() int {
	if len(m.groups) == 0 {
		return len(m.stack)
	}
	return len(m.stack) - m.groups[len(m.groups)-1]
}

// Pop removes and returns the top value stack entry. Fails with
// StackUnderflow if fewer than one element is visible above the
// topmost open group.
func (m *Machine) Pop() (Value, error) {
	if err := m.requireNotShutdown("pop"); err != nil {
		return Value{}, err
	}
	if m.visibleDepth() < 1 {
		return Value{}, diag.New(diag.StackUnderflow, "pop: no visible value")
	}
	v := m.stack[len(m.stack)-1]
	m.stack = m.stack[:len(m.stack)-1]
	return v, nil
}

// Depth returns the number of visible value stack entries.
func (m *Machine) Depth() int { return m.visibleDepth() }

// BeginGroup pushes the current stack length onto the group stack,
// hiding everything beneath it from subsequent Pop calls.
func (m *Machine) BeginGroup() error {
	if err := m.requireNotShutdown("begin_group"); err != nil {
		return err
	}
	if len(m.groups) >= maxGroupStack {
		return diag.Newf(diag.StackOverflow, "group stack exceeds %d entries", maxGroupStack)
	}
	m.groups = append(m.groups, len(m.stack))
	return nil
}

// EndGroup requires exactly one visible element above the topmost
// group's snapshot, then closes that group.
func (m *Machine) EndGroup() error {
	if err := m.requireNotShutdown("end_group"); err != nil {
		return err
	}
	if len(m.groups) == 0 {
		return diag.New(diag.GroupConstraint, "end_group: no open group")
	}
	snapshot := m.groups[len(m.groups)-1]
	if len(m.stack) != snapshot+1 {
		return diag.Newf(diag.GroupConstraint, "end_group: expected exactly one visible value, have %d", len(m.stack)-snapshot)
	}
	m.groups = m.groups[:len(m.groups)-1]
	return nil
}

// validateName checks a bank name against spec.md §3's naming rule.
func validateName(name string) error {
	if !nameRE.MatchString(name) {
		return diag.Newf(diag.InvalidName, "name %q does not match [A-Za-z][A-Za-z0-9_]{0,30}", name)
	}
	return nil
}

// Declare pops one value and binds it under name. Fails with
// Redefinition if name is already bound.
func (m *Machine) Declare(name string, isConst bool) error {
	if err := m.requireNotShutdown("declare"); err != nil {
		return err
	}
	if err := validateName(name); err != nil {
		return err
	}
	if _, ok := m.bank[name]; ok {
		return diag.Newf(diag.Redefinition, "name %q is already bound", name)
	}
	if len(m.bank) >= maxBank {
		return diag.Newf(diag.StackOverflow, "bank exceeds %d entries", maxBank)
	}
	v, err := m.Pop()
	if err != nil {
		return err
	}
	m.bank[name] = &binding{value: v, isConst: isConst}
	return nil
}

// Get pushes the value bound to name. Fails with Undefined if unbound.
func (m *Machine) Get(name string) error {
	if err := m.requireNotShutdown("get"); err != nil {
		return err
	}
	b, ok := m.bank[name]
	if !ok {
		return diag.Newf(diag.Undefined, "name %q is not bound", name)
	}
	return m.Push(b.value)
}

// Assign pops one value and replaces name's binding. Fails with
// Const if the binding is a constant, Undefined if unbound.
func (m *Machine) Assign(name string) error {
	if err := m.requireNotShutdown("assign"); err != nil {
		return err
	}
	b, ok := m.bank[name]
	if !ok {
		return diag.Newf(diag.Undefined, "name %q is not bound", name)
	}
	if b.isConst {
		return diag.Newf(diag.Const, "name %q is constant", name)
	}
	v, err := m.Pop()
	if err != nil {
		return err
	}
	b.value = v
	return nil
}

// RStackPush pushes a ruler onto the ruler stack.
func (m *Machine) RStackPush(r artic.Ruler) error {
	if err := m.requireNotShutdown("rstack_push"); err != nil {
		return err
	}
	if len(m.rulers) >= maxRulerStack {
		return diag.Newf(diag.StackOverflow, "ruler stack exceeds %d entries", maxRulerStack)
	}
	m.rulers = append(m.rulers, r)
	return nil
}

// RStackPop pops and returns the top of the ruler stack. Fails with
// StackUnderflow if empty.
func (m *Machine) RStackPop() (artic.Ruler, error) {
	if err := m.requireNotShutdown("rstack_pop"); err != nil {
		return artic.Ruler{}, err
	}
	if len(m.rulers) == 0 {
		return artic.Ruler{}, diag.New(diag.StackUnderflow, "rstack_pop: ruler stack is empty")
	}
	r := m.rulers[len(m.rulers)-1]
	m.rulers = m.rulers[:len(m.rulers)-1]
	return r, nil
}

// RStackCurrent returns the top of the ruler stack, or a lazily created
// default ruler (slot=48, gap=0) if empty.
func (m *Machine) RStackCurrent() artic.Ruler {
	if len(m.rulers) == 0 {
		return artic.DefaultRuler()
	}
	return m.rulers[len(m.rulers)-1]
}

// Shutdown requires the value stack to be empty and all groups closed,
// then marks the machine unusable. Every operation above fails with
// diag.Shutdown once this has been called, matching spec.md §7's
// "Shutdown — any function call on a module after its shutdown".
func (m *Machine) Shutdown() error {
	if err := m.requireNotShutdown("shutdown"); err != nil {
		return err
	}
	if len(m.groups) != 0 {
		return diag.Newf(diag.GroupConstraint, "shutdown: %d group(s) still open", len(m.groups))
	}
	if len(m.stack) != 0 {
		return diag.Newf(diag.GroupConstraint, "shutdown: value stack has %d entries remaining", len(m.stack))
	}
	m.shutdown = true
	return nil
}
