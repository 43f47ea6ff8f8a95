package text

import "github.com/zurustar/infrared/pkg/diag"

// MaxBlobLength is the longest blob value infrared allows.
const MaxBlobLength = 1048576

// BlobHandle addresses one interned byte-blob value.
type BlobHandle int

// BlobStore owns every blob value for the lifetime of one compilation.
// Unlike Store (text), blob values carry no character-set constraint —
// they are opaque bytes, used for sysex payloads and raw meta-event data.
type BlobStore struct {
	values [][]byte
}

// NewBlobStore creates an empty blob store.
func NewBlobStore() *BlobStore {
	return &BlobStore{}
}

// Intern copies and stores b, returning its BlobHandle.
func (bs *BlobStore) Intern(b []byte) (BlobHandle, error) {
	if len(b) > MaxBlobLength {
		return 0, diag.Newf(diag.Range, "blob length %d exceeds maximum %d", len(b), MaxBlobLength)
	}
	cp := make([]byte, len(b))
	copy(cp, b)
	bs.values = append(bs.values, cp)
	return BlobHandle(len(bs.values)), nil
}

// Get returns the bytes for h, or (nil, false) if h is unknown. The
// returned slice must not be mutated by the caller.
func (bs *BlobStore) Get(h BlobHandle) ([]byte, bool) {
	if h <= 0 || int(h) > len(bs.values) {
		return nil, false
	}
	return bs.values[h-1], true
}

// Concat interns the concatenation of a and b as a new value.
func (bs *BlobStore) Concat(a, b BlobHandle) (BlobHandle, error) {
	ab, ok := bs.Get(a)
	if !ok {
		return 0, diag.New(diag.Range, "concat: invalid blob handle")
	}
	bb, ok := bs.Get(b)
	if !ok {
		return 0, diag.New(diag.Range, "concat: invalid blob handle")
	}
	joined := make([]byte, 0, len(ab)+len(bb))
	joined = append(joined, ab...)
	joined = append(joined, bb...)
	return bs.Intern(joined)
}

// Slice interns the half-open byte range [start, end) of h as a new value.
func (bs *BlobStore) Slice(h BlobHandle, start, end int) (BlobHandle, error) {
	b, ok := bs.Get(h)
	if !ok {
		return 0, diag.New(diag.Range, "slice: invalid blob handle")
	}
	if start < 0 || end > len(b) || start > end {
		return 0, diag.Newf(diag.Range, "slice [%d:%d) out of bounds for blob of length %d", start, end, len(b))
	}
	return bs.Intern(b[start:end])
}

// Len returns the length in bytes of the blob at h.
func (bs *BlobStore) Len(h BlobHandle) (int, error) {
	b, ok := bs.Get(h)
	if !ok {
		return 0, diag.New(diag.Range, "len: invalid blob handle")
	}
	return len(b), nil
}
