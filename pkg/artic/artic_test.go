package artic

import "testing"

// TestS1 implements spec.md §8 scenario S1: articulation (1,1,8,0), transform d=1 -> 8.
func TestS1(t *testing.T) {
	a, err := NewArticulation(1, 1, 8, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := a.Transform(1); got != 8 {
		t.Fatalf("Transform(1) = %d, want 8", got)
	}
}

// TestS2 implements spec.md §8 scenario S2: ruler (48,0); position(b=0,i=-2) = -96, duration = 48.
func TestS2(t *testing.T) {
	r, err := NewRuler(48, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := r.Position(0, -2); got != -96 {
		t.Fatalf("Position(0,-2) = %d, want -96", got)
	}
	if got := r.Duration(); got != 48 {
		t.Fatalf("Duration() = %d, want 48", got)
	}
}

func TestNewArticulation_RejectsBadDenominator(t *testing.T) {
	if _, err := NewArticulation(1, 3, 0, 0); err == nil {
		t.Fatal("expected rejection of denominator 3")
	}
}

func TestNewArticulation_RejectsNumeratorOutOfRange(t *testing.T) {
	if _, err := NewArticulation(5, 4, 0, 0); err == nil {
		t.Fatal("expected rejection of numerator > denominator")
	}
	if _, err := NewArticulation(0, 4, 0, 0); err == nil {
		t.Fatal("expected rejection of numerator < 1")
	}
}

func TestNewArticulation_RejectsSignViolations(t *testing.T) {
	if _, err := NewArticulation(1, 1, -1, 0); err == nil {
		t.Fatal("expected rejection of negative bumper")
	}
	if _, err := NewArticulation(1, 1, 0, 1); err == nil {
		t.Fatal("expected rejection of positive gap")
	}
}

func TestNewRuler_RejectsInvalid(t *testing.T) {
	if _, err := NewRuler(0, 0); err == nil {
		t.Fatal("expected rejection of non-positive slot")
	}
	if _, err := NewRuler(10, 1); err == nil {
		t.Fatal("expected rejection of positive gap")
	}
	if _, err := NewRuler(4, -4); err == nil {
		t.Fatal("expected rejection of slot+gap <= 0")
	}
}

func TestDefault(t *testing.T) {
	if got := Default().Transform(1); got != 8 {
		t.Fatalf("default articulation Transform(1) = %d, want 8", got)
	}
	if got := DefaultRuler().Duration(); got != 48 {
		t.Fatalf("default ruler duration = %d, want 48", got)
	}
}
