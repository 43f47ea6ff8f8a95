// Package midi implements infrared's MIDI assembler: a handle table, a
// byte-oriented message arena addressed by compact selectors, a header
// event list and a moment event list, and the compile step that sorts,
// rebases and serialises them into a Standard MIDI File format-0 track.
package midi

import (
	"github.com/zurustar/infrared/pkg/diag"
	"github.com/zurustar/infrared/pkg/moment"
	"github.com/zurustar/infrared/pkg/primitive"
	"github.com/zurustar/infrared/pkg/text"
)

// Text meta-event classes.
const (
	TextGeneral    = 1
	TextCopyright  = 2
	TextTitle      = 3
	TextInstrument = 4
	TextLyric      = 5
	TextMarker     = 6
	TextCue        = 7
)

// Meta-event type codes, matching the MIDI file specification.
const (
	metaEndOfTrack        = 0x2F
	metaTempo             = 0x51
	metaTimeSignature     = 0x58
	metaKeySignature      = 0x59
	metaSequencerSpecific = 0x7F
)

// Channel message kinds. Each value is the high nybble of the
// corresponding MIDI status byte.
const (
	NoteOff           = 0x8
	NoteOn            = 0x9
	PolyAftertouch    = 0xA
	Control           = 0xB
	Program           = 0xC
	ChannelAftertouch = 0xD
	PitchBend         = 0xE
)

// Value domain limits.
const (
	MaxChannel  = 16
	MaxDataByte = 127
	MaxWideData = 0x3FFF

	MinTempo = 1
	MaxTempo = 16777215

	MaxTimeSigNumerator = 255
	MaxTimeSigDenom     = 1024
	MaxTimeSigMetronome = 255

	MinKeySignature = -7
	MaxKeySignature = 7
)

// maxArenaOffset bounds the message arena so that every offset fits the
// selector's 24-bit field.
const maxArenaOffset = 1 << 24

// TicksPerQuarter is the SMF division field infrared always emits: one
// tick equals one subquantum.
const TicksPerQuarter = 768

// Selector is a compact, value-type reference to one message encoded in
// the arena: the high 8 bits are the MIDI status byte, the low 24 bits
// are the byte offset of the message's payload within the arena.
type Selector uint32

func makeSelector(status byte, offset int) Selector {
	return Selector(uint32(status)<<24 | uint32(offset&0xFFFFFF))
}

// Status returns the selector's status byte.
func (s Selector) Status() byte { return byte(s >> 24) }

// Offset returns the selector's arena byte offset.
func (s Selector) Offset() int { return int(s & 0xFFFFFF) }

// handleEntry is one row of the handle table: either a text or a blob
// handle, referenced indirectly (by its row index, stored in the arena)
// by both 0xFF meta-event and 0xF0/0xF7 sysex selectors.
type handleEntry struct {
	isBlob bool
	text   text.Handle
	blob   text.BlobHandle
}

// momentEvent is one entry of the moment list before compilation.
type momentEvent struct {
	eventID int64
	t       moment.Moment
	sel     Selector
}

// Assembler holds the MIDI assembler's process-wide state for one
// compilation: the handle table, the message arena, the header and
// moment event lists, and the rolling event range.
type Assembler struct {
	textStore *text.Store
	blobStore *text.BlobStore

	handles []handleEntry
	arena   []byte

	header  []Selector
	moments []momentEvent

	nextID int64

	filled bool
	lower  int64
	upper  int64

	compiled bool
}

// New constructs an empty Assembler over the given text/blob stores
// (shared with the interpreter, since meta-event payloads reference the
// same handles the script produced).
func New(textStore *text.Store, blobStore *text.BlobStore) *Assembler {
	return &Assembler{textStore: textStore, blobStore: blobStore}
}

func (a *Assembler) requireNotCompiled(op string) error {
	if a.compiled {
		return diag.Newf(diag.Shutdown, "%s: assembler already compiled", op)
	}
	return nil
}

func (a *Assembler) allocEventID() (int64, error) {
	if a.nextID >= int64(primitive.MaxValue) {
		return 0, diag.New(diag.Overflow, "event id generation overflow")
	}
	a.nextID++
	return a.nextID, nil
}

// recordEventRange extends the rolling event range to include m's
// subquantum component, per spec's "every event including null events"
// rule.
func (a *Assembler) recordEventRange(m moment.Moment) {
	t := m.Subquantum()
	if !a.filled {
		a.filled = true
		a.lower, a.upper = t, t
		return
	}
	if t < a.lower {
		a.lower = t
	}
	if t > a.upper {
		a.upper = t
	}
}

// EventRangeLower returns the current lower bound of the event range, in
// subquanta. Zero if no event has yet been added.
func (a *Assembler) EventRangeLower() int64 { return a.lower }

// EventRangeUpper returns the current upper bound of the event range, in
// subquanta. Zero if no event has yet been added.
func (a *Assembler) EventRangeUpper() int64 { return a.upper }

// dispatch appends sel to the header list (head=true, no moment
// recorded) or the moment list (head=false, fresh event id, extends the
// event range).
func (a *Assembler) dispatch(t moment.Moment, head bool, sel Selector) error {
	if head {
		a.header = append(a.header, sel)
		return nil
	}
	a.recordEventRange(t)
	id, err := a.allocEventID()
	if err != nil {
		return err
	}
	a.moments = append(a.moments, momentEvent{eventID: id, t: t, sel: sel})
	return nil
}

func (a *Assembler) appendArena(b []byte) (int, error) {
	offset := len(a.arena)
	if offset+len(b) > maxArenaOffset {
		return 0, diag.New(diag.Overflow, "MIDI message arena capacity exceeded")
	}
	a.arena = append(a.arena, b...)
	return offset, nil
}

func (a *Assembler) addBlobHandle(h text.BlobHandle) (int, error) {
	if len(a.handles) >= 1<<28 {
		return 0, diag.New(diag.Overflow, "MIDI handle table capacity exceeded")
	}
	a.handles = append(a.handles, handleEntry{isBlob: true, blob: h})
	return len(a.handles) - 1, nil
}

func (a *Assembler) addTextHandle(h text.Handle) (int, error) {
	if len(a.handles) >= 1<<28 {
		return 0, diag.New(diag.Overflow, "MIDI handle table capacity exceeded")
	}
	a.handles = append(a.handles, handleEntry{isBlob: false, text: h})
	return len(a.handles) - 1, nil
}

// addFixed appends a message with a fixed 1- or 2-byte payload (channel
// messages) and returns its selector.
func (a *Assembler) addFixed(status byte, data ...byte) (Selector, error) {
	offset, err := a.appendArena(data)
	if err != nil {
		return 0, err
	}
	return makeSelector(status, offset), nil
}

// addMetaDirect appends a 0xFF meta-event whose payload is stored
// directly in the arena (payload_format_flag = 0): type byte, then a
// varint length, then the raw bytes.
func (a *Assembler) addMetaDirect(ty int, payload []byte) (Selector, error) {
	lenBytes, err := encodeVarint(int64(len(payload)))
	if err != nil {
		return 0, err
	}
	buf := make([]byte, 0, 1+len(lenBytes)+len(payload))
	buf = append(buf, byte(ty))
	buf = append(buf, lenBytes...)
	buf = append(buf, payload...)
	offset, err := a.appendArena(buf)
	if err != nil {
		return 0, err
	}
	return makeSelector(0xFF, offset), nil
}

// addMetaHandle appends a 0xFF meta-event whose payload is referenced
// indirectly through the handle table (payload_format_flag = 1): type
// byte with the flag set, then a varint handle-table index.
func (a *Assembler) addMetaHandle(ty int, handleIndex int) (Selector, error) {
	idxBytes, err := encodeVarint(int64(handleIndex))
	if err != nil {
		return 0, err
	}
	buf := make([]byte, 0, 1+len(idxBytes))
	buf = append(buf, byte(ty|0x80))
	buf = append(buf, idxBytes...)
	offset, err := a.appendArena(buf)
	if err != nil {
		return 0, err
	}
	return makeSelector(0xFF, offset), nil
}

// addBlobMessage appends a 0xF0/0xF7 sysex message: a varint handle-table
// index pointing at the blob.
func (a *Assembler) addBlobMessage(status byte, h text.BlobHandle) (Selector, error) {
	idx, err := a.addBlobHandle(h)
	if err != nil {
		return 0, err
	}
	idxBytes, err := encodeVarint(int64(idx))
	if err != nil {
		return 0, err
	}
	offset, err := a.appendArena(idxBytes)
	if err != nil {
		return 0, err
	}
	return makeSelector(status, offset), nil
}

// AddNull adds a null event: it extends the event range (unless head)
// but emits no MIDI message.
func (a *Assembler) AddNull(t moment.Moment, head bool) error {
	if err := a.requireNotCompiled("null_event"); err != nil {
		return err
	}
	if head {
		return nil
	}
	a.recordEventRange(t)
	return nil
}

// AddText adds a text meta-event of the given class (TextGeneral ..
// TextCue) carrying the text at h.
func (a *Assembler) AddText(t moment.Moment, head bool, class int, h text.Handle) error {
	if err := a.requireNotCompiled("midi_text"); err != nil {
		return err
	}
	if class < TextGeneral || class > TextCue {
		return diag.Newf(diag.Range, "text class %d out of range [%d,%d]", class, TextGeneral, TextCue)
	}
	idx, err := a.addTextHandle(h)
	if err != nil {
		return err
	}
	sel, err := a.addMetaHandle(class, idx)
	if err != nil {
		return err
	}
	return a.dispatch(t, head, sel)
}

// AddTempo adds a Set Tempo meta-event (microseconds per quarter note).
func (a *Assembler) AddTempo(t moment.Moment, head bool, microsPerQuarter int64) error {
	if err := a.requireNotCompiled("midi_tempo"); err != nil {
		return err
	}
	if microsPerQuarter < MinTempo || microsPerQuarter > MaxTempo {
		return diag.Newf(diag.Range, "tempo %d out of range [%d,%d]", microsPerQuarter, MinTempo, MaxTempo)
	}
	buf := []byte{
		byte(microsPerQuarter >> 16),
		byte(microsPerQuarter >> 8),
		byte(microsPerQuarter),
	}
	sel, err := a.addMetaDirect(metaTempo, buf)
	if err != nil {
		return err
	}
	return a.dispatch(t, head, sel)
}

// AddTimeSig adds a Time Signature meta-event. denom must be a power of
// two.
func (a *Assembler) AddTimeSig(t moment.Moment, head bool, num, denom, metro int) error {
	if err := a.requireNotCompiled("midi_time_sig"); err != nil {
		return err
	}
	if num < 1 || num > MaxTimeSigNumerator || denom < 1 || denom > MaxTimeSigDenom {
		return diag.Newf(diag.Range, "time signature %d/%d out of range", num, denom)
	}
	if metro < 1 || metro > MaxTimeSigMetronome {
		return diag.Newf(diag.Range, "metronome rate %d out of range [1,%d]", metro, MaxTimeSigMetronome)
	}
	log2Denom := 0
	for d := denom; d > 1; d /= 2 {
		if d%2 != 0 {
			return diag.Newf(diag.Range, "time signature denominator %d is not a power of two", denom)
		}
		log2Denom++
	}
	buf := []byte{byte(num), byte(log2Denom), byte(metro), 8}
	sel, err := a.addMetaDirect(metaTimeSignature, buf)
	if err != nil {
		return err
	}
	return a.dispatch(t, head, sel)
}

// AddKeySig adds a Key Signature meta-event. count is signed (negative =
// flats, positive = sharps).
func (a *Assembler) AddKeySig(t moment.Moment, head bool, count int, minor bool) error {
	if err := a.requireNotCompiled("midi_key_sig"); err != nil {
		return err
	}
	if count < MinKeySignature || count > MaxKeySignature {
		return diag.Newf(diag.Range, "key signature count %d out of range [%d,%d]", count, MinKeySignature, MaxKeySignature)
	}
	byteCount := count
	if byteCount < 0 {
		byteCount += 256
	}
	mode := byte(0)
	if minor {
		mode = 1
	}
	sel, err := a.addMetaDirect(metaKeySignature, []byte{byte(byteCount), mode})
	if err != nil {
		return err
	}
	return a.dispatch(t, head, sel)
}

// AddCustom adds a Sequencer-Specific meta-event carrying the raw blob
// payload (everything after the length declaration).
func (a *Assembler) AddCustom(t moment.Moment, head bool, h text.BlobHandle) error {
	if err := a.requireNotCompiled("midi_custom"); err != nil {
		return err
	}
	idx, err := a.addBlobHandle(h)
	if err != nil {
		return err
	}
	sel, err := a.addMetaHandle(metaSequencerSpecific, idx)
	if err != nil {
		return err
	}
	return a.dispatch(t, head, sel)
}

// AddSystem adds a System-Exclusive message. If the blob is non-empty
// and starts with 0xF0, the main sysex status (0xF0) is used with the
// leading byte implicit; otherwise the escape status (0xF7) is used.
func (a *Assembler) AddSystem(t moment.Moment, head bool, h text.BlobHandle) error {
	if err := a.requireNotCompiled("midi_system"); err != nil {
		return err
	}
	data, ok := a.blobStore.Get(h)
	if !ok {
		return diag.New(diag.Range, "midi_system: invalid blob handle")
	}
	status := byte(0xF7)
	if len(data) > 0 && data[0] == 0xF0 {
		status = 0xF0
	}
	sel, err := a.addBlobMessage(status, h)
	if err != nil {
		return err
	}
	return a.dispatch(t, head, sel)
}

// AddMessage adds a MIDI channel message (ch is one-indexed, 1..16).
// idx is the key/controller number for NoteOff/NoteOn/PolyAftertouch/
// Control, ignored otherwise; val is the velocity/value/parameter,
// 0..127 except for PitchBend which takes 0..MaxWideData.
func (a *Assembler) AddMessage(t moment.Moment, head bool, ch int, kind int, idx int, val int) error {
	if err := a.requireNotCompiled("midi_message"); err != nil {
		return err
	}
	if ch < 1 || ch > MaxChannel {
		return diag.Newf(diag.Range, "channel %d out of range [1,%d]", ch, MaxChannel)
	}
	status := byte(kind<<4 | (ch - 1))

	var sel Selector
	var err error
	switch kind {
	case NoteOff, NoteOn, PolyAftertouch, Control:
		if idx < 0 || idx > MaxDataByte {
			return diag.Newf(diag.Range, "index %d out of range [0,%d]", idx, MaxDataByte)
		}
		if val < 0 || val > MaxDataByte {
			return diag.Newf(diag.Range, "value %d out of range [0,%d]", val, MaxDataByte)
		}
		sel, err = a.addFixed(status, byte(idx), byte(val))
	case Program, ChannelAftertouch:
		if val < 0 || val > MaxDataByte {
			return diag.Newf(diag.Range, "value %d out of range [0,%d]", val, MaxDataByte)
		}
		sel, err = a.addFixed(status, byte(val))
	case PitchBend:
		if val < 0 || val > MaxWideData {
			return diag.Newf(diag.Range, "value %d out of range [0,%d]", val, MaxWideData)
		}
		sel, err = a.addFixed(status, byte(val&0x7F), byte((val>>7)&0x7F))
	default:
		return diag.Newf(diag.Range, "unrecognised MIDI message kind %d", kind)
	}
	if err != nil {
		return err
	}
	return a.dispatch(t, head, sel)
}
