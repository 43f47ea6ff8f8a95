// Package sfchunk implements just enough of the RIFF (Resource
// Interchange File Format) chunk framing to confirm that a -soundfont
// argument names a well-formed SoundFont 2 bank, before handing the
// path to an external player. It does not parse preset or sample data —
// infrared never synthesizes audio itself (spec.md §1's non-goal).
package sfchunk

import (
	"encoding/binary"
	"fmt"
	"io"
)

// chunk is one RIFF chunk: a four-byte id, a little-endian size, and
// size bytes of payload.
type chunk struct {
	id   [4]byte
	size uint32
	data []byte
}

// parse reads one chunk from r.
func (ck *chunk) parse(r io.Reader) error {
	if _, err := io.ReadFull(r, ck.id[:]); err != nil {
		return err
	}
	if err := binary.Read(r, binary.LittleEndian, &ck.size); err != nil {
		return err
	}
	ck.data = make([]byte, ck.size)
	if _, err := io.ReadFull(r, ck.data); err != nil {
		return err
	}
	return nil
}

// expect reads a chunk from r and checks its id against want.
func (ck *chunk) expect(r io.Reader, want [4]byte) error {
	if err := ck.parse(r); err != nil {
		return err
	}
	if ck.id != want {
		return fmt.Errorf("sfchunk: expected chunk id %q, got %q", want, ck.id)
	}
	return nil
}

var (
	riffID = [4]byte{'R', 'I', 'F', 'F'}
	sfbkID = [4]byte{'s', 'f', 'b', 'k'}
)

// Validate reads the outer RIFF chunk from r, header and whole payload,
// and fails unless r names a SoundFont 2 bank (form type "sfbk"). The
// sub-chunks inside the payload are not parsed.
func Validate(r io.Reader) error {
	var outer chunk
	if err := outer.expect(r, riffID); err != nil {
		return fmt.Errorf("sfchunk: not a RIFF file: %w", err)
	}
	if len(outer.data) < 4 {
		return fmt.Errorf("sfchunk: RIFF chunk too short to carry a form type")
	}
	var form [4]byte
	copy(form[:], outer.data[:4])
	if form != sfbkID {
		return fmt.Errorf("sfchunk: RIFF form type %q is not a SoundFont bank (\"sfbk\")", form)
	}
	return nil
}
