package pointer

import (
	"testing"

	"github.com/zurustar/infrared/pkg/artic"
	"github.com/zurustar/infrared/pkg/nmf"
)

func mustMem(t *testing.T, sections []int64) *nmf.Memory {
	t.Helper()
	m, err := nmf.NewMemory(96, sections, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return m
}

// TestS3 implements spec.md §8 scenario S3: pointer on section 0 (base 0)
// with offs=1, grace=0, tilt=0, moment=0 (middle) resolves to 1*8*3+1=25.
func TestS3(t *testing.T) {
	data := mustMem(t, []int64{0})

	p := New()
	p, err := p.Jump(0)
	if err != nil {
		t.Fatalf("Jump: %v", err)
	}
	p, err = p.Seek(1)
	if err != nil {
		t.Fatalf("Seek: %v", err)
	}

	m, err := p.Resolve(data)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if int32(m) != 25 {
		t.Fatalf("Resolve() = %d, want 25", m)
	}
}

func TestJump_RejectsNegativeSection(t *testing.T) {
	if _, err := New().Jump(-1); err == nil {
		t.Fatal("expected error for negative section")
	}
}

func TestSeekAdvanceGraceTilt_RejectHeader(t *testing.T) {
	h := New()
	if _, err := h.Seek(0); err == nil {
		t.Fatal("expected error: seek on Header")
	}
	if _, err := h.Advance(1); err == nil {
		t.Fatal("expected error: advance on Header")
	}
	if _, err := h.Grace(0, artic.Ruler{}, false); err == nil {
		t.Fatal("expected error: grace on Header")
	}
	if _, err := h.Tilt(1); err == nil {
		t.Fatal("expected error: tilt on Header")
	}
	if _, err := h.Moment(0); err == nil {
		t.Fatal("expected error: moment on Header")
	}
}

func TestGrace_RequiresRulerForNegativeIndex(t *testing.T) {
	p, _ := New().Jump(0)
	if _, err := p.Grace(-1, artic.Ruler{}, false); err == nil {
		t.Fatal("expected error: negative grace index without ruler")
	}
	r := artic.DefaultRuler()
	if _, err := p.Grace(-1, r, true); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestGrace_RejectsPositiveIndex(t *testing.T) {
	p, _ := New().Jump(0)
	if _, err := p.Grace(1, artic.Ruler{}, false); err == nil {
		t.Fatal("expected error: positive grace index")
	}
}

func TestMoment_RejectsOutOfRangePart(t *testing.T) {
	p, _ := New().Jump(0)
	if _, err := p.Moment(2); err == nil {
		t.Fatal("expected error: moment part out of range")
	}
}

func TestResolve_SectionRange(t *testing.T) {
	data := mustMem(t, []int64{0})
	p, _ := New().Jump(0)
	p.section = 5 // simulate a stale pointer against a shrunk NMF
	if _, err := p.Resolve(data); err == nil {
		t.Fatal("expected SectionRange error")
	}
}

func TestResolve_GraceSitsBeforeBeat(t *testing.T) {
	data := mustMem(t, []int64{0})
	r := artic.DefaultRuler() // slot 48, gap 0

	p, _ := New().Jump(0)
	p, _ = p.Seek(1)
	p, _ = p.Grace(-1, r, true)

	m, err := p.Resolve(data)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	beat, err := New().Jump(0)
	if err != nil {
		t.Fatalf("Jump: %v", err)
	}
	beat, err = beat.Seek(1)
	if err != nil {
		t.Fatalf("Seek: %v", err)
	}
	beatMoment, err := beat.Resolve(data)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if m >= beatMoment {
		t.Fatalf("grace moment %d should precede beat moment %d", m, beatMoment)
	}
}

func TestResolve_Overflow(t *testing.T) {
	data := mustMem(t, []int64{0})
	p, _ := New().Jump(0)
	p, err := p.Seek(1 << 40)
	if err != nil {
		t.Fatalf("Seek: %v", err)
	}
	if _, err := p.Resolve(data); err == nil {
		t.Fatal("expected Overflow error")
	}
}
