// Package text implements infrared's immutable text store: printable-ASCII
// strings addressed by a small integer Handle, with concat/slice producing
// new interned entries rather than mutating existing ones.
package text

import (
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"

	"github.com/zurustar/infrared/pkg/diag"
)

// MaxLength is the longest text value infrared allows.
const MaxLength = 1023

// Handle addresses one interned text value. The zero Handle is never
// returned by Store.Intern (handles start at 1) so a zero-valued Handle
// field reliably means "absent".
type Handle int

// Store owns every text value for the lifetime of one compilation.
type Store struct {
	values []string // values[h-1] is the text for Handle(h)
}

// NewStore creates an empty text store.
func NewStore() *Store {
	return &Store{}
}

// asciiEncoder validates that every byte of a string is representable in
// the plain ASCII code page. Re-used across calls since charmap encoders
// are safe for concurrent use by independent Transform calls.
var asciiEncoder = charmap.ASCII.NewEncoder()

// validate reports an error unless s is shorter than MaxLength+1 and every
// byte is printable ASCII (0x20-0x7E): printable text plus the space
// character, per the text/blob store's data-model constraint.
func validate(s string) error {
	if len(s) > MaxLength {
		return diag.Newf(diag.Range, "text length %d exceeds maximum %d", len(s), MaxLength)
	}
	if _, _, err := transform.String(asciiEncoder, s); err != nil {
		return diag.Newf(diag.Range, "text is not representable in ASCII: %v", err)
	}
	for i := 0; i < len(s); i++ {
		b := s[i]
		if b < 0x20 || b > 0x7E {
			return diag.Newf(diag.Range, "text byte 0x%02x at offset %d is not printable ASCII or space", b, i)
		}
	}
	return nil
}

// Intern validates and stores s, returning its Handle. Equal strings are
// not deduplicated (unlike graph.constant's cache) since text values are
// cheap and concat/slice would otherwise need to track provenance.
func (st *Store) Intern(s string) (Handle, error) {
	if err := validate(s); err != nil {
		return 0, err
	}
	st.values = append(st.values, s)
	return Handle(len(st.values)), nil
}

// Get returns the text for h, or ("", false) if h is not a handle this
// store issued.
func (st *Store) Get(h Handle) (string, bool) {
	if h <= 0 || int(h) > len(st.values) {
		return "", false
	}
	return st.values[h-1], true
}

// Concat interns the concatenation of a and b as a new value.
func (st *Store) Concat(a, b Handle) (Handle, error) {
	as, ok := st.Get(a)
	if !ok {
		return 0, diag.New(diag.Range, "concat: invalid text handle")
	}
	bs, ok := st.Get(b)
	if !ok {
		return 0, diag.New(diag.Range, "concat: invalid text handle")
	}
	return st.Intern(as + bs)
}

// Slice interns the half-open substring [start, end) of h as a new value.
func (st *Store) Slice(h Handle, start, end int) (Handle, error) {
	s, ok := st.Get(h)
	if !ok {
		return 0, diag.New(diag.Range, "slice: invalid text handle")
	}
	if start < 0 || end > len(s) || start > end {
		return 0, diag.Newf(diag.Range, "slice [%d:%d) out of bounds for text of length %d", start, end, len(s))
	}
	return st.Intern(s[start:end])
}

// Len returns the length in bytes of the text at h.
func (st *Store) Len(h Handle) (int, error) {
	s, ok := st.Get(h)
	if !ok {
		return 0, diag.New(diag.Range, "len: invalid text handle")
	}
	return len(s), nil
}
