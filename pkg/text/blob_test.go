package text

import "testing"

func TestBlobIntern_AllowsArbitraryBytes(t *testing.T) {
	bs := NewBlobStore()
	h, err := bs.Intern([]byte{0xF0, 0x00, 0xFF, 0x7F})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got, ok := bs.Get(h)
	if !ok || len(got) != 4 || got[0] != 0xF0 {
		t.Fatalf("Get(%d) = %v, %v", h, got, ok)
	}
}

func TestBlobIntern_CopiesInput(t *testing.T) {
	bs := NewBlobStore()
	src := []byte{1, 2, 3}
	h, _ := bs.Intern(src)
	src[0] = 99
	got, _ := bs.Get(h)
	if got[0] != 1 {
		t.Fatal("blob store must copy input, not alias it")
	}
}

func TestBlobConcatAndSlice(t *testing.T) {
	bs := NewBlobStore()
	a, _ := bs.Intern([]byte{1, 2, 3})
	b, _ := bs.Intern([]byte{4, 5})
	c, err := bs.Concat(a, b)
	if err != nil {
		t.Fatalf("concat failed: %v", err)
	}
	got, _ := bs.Get(c)
	want := []byte{1, 2, 3, 4, 5}
	if len(got) != len(want) {
		t.Fatalf("concat = %v", got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("concat[%d] = %d, want %d", i, got[i], want[i])
		}
	}

	sl, err := bs.Slice(c, 1, 4)
	if err != nil {
		t.Fatalf("slice failed: %v", err)
	}
	gotSlice, _ := bs.Get(sl)
	wantSlice := []byte{2, 3, 4}
	for i := range wantSlice {
		if gotSlice[i] != wantSlice[i] {
			t.Fatalf("slice[%d] = %d, want %d", i, gotSlice[i], wantSlice[i])
		}
	}
}
