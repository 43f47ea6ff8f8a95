package midi

import (
	"encoding/binary"
	"io"
	"sort"

	"github.com/zurustar/infrared/pkg/diag"
	"github.com/zurustar/infrared/pkg/moment"
)

// statusClass returns the sort class for a status byte: 2 for note-off /
// note-on / poly-aftertouch (0x80-0xAF), 1 for everything else. Class 1
// sorts before class 2 so, e.g., a control-change at the same moment as
// a note-on is not reordered, but a note-off at time t always precedes a
// note-on at time t.
func statusClass(status byte) int {
	if status >= 0x80 && status <= 0xAF {
		return 2
	}
	return 1
}

// collapsedStatus treats every status byte in 0xF0-0xFF as equivalent for
// the third sort key, matching spec.md's tie-break rule.
func collapsedStatus(status byte) byte {
	if status >= 0xF0 {
		return 0xF0
	}
	return status
}

// eventLess implements the composite ordering key: moment, then status
// class, then (collapsed) status byte, then event id.
func eventLess(a, b momentEvent) bool {
	if a.t != b.t {
		return a.t < b.t
	}
	sa, sb := a.sel.Status(), b.sel.Status()
	ca, cb := statusClass(sa), statusClass(sb)
	if ca != cb {
		return ca < cb
	}
	csa, csb := collapsedStatus(sa), collapsedStatus(sb)
	if csa != csb {
		return csa < csb
	}
	return a.eventID < b.eventID
}

// nextRunning computes the running-status register's value after
// emitting status: the register holds the status byte when it is a
// channel message (0x80-0xEF) and is cleared otherwise.
func nextRunning(status byte) byte {
	if status >= 0x80 && status <= 0xEF {
		return status
	}
	return 0
}

// encodeMessage returns the exact bytes written for sel given the
// current running-status register (0 = none). Used by both
// runningStatusCost (the size pass) and writeMessage (the emit pass) so
// the two passes cannot diverge from one another.
func (a *Assembler) encodeMessage(sel Selector, running byte) ([]byte, error) {
	status := sel.Status()
	offset := sel.Offset()

	var out []byte
	if !(running != 0 && running == status) {
		out = append(out, status)
	}

	switch {
	case (status >= 0x80 && status <= 0xBF) || (status >= 0xE0 && status <= 0xEF):
		if offset+2 > len(a.arena) {
			return nil, diag.New(diag.Overflow, "midi: message offset out of range")
		}
		out = append(out, a.arena[offset], a.arena[offset+1])

	case status >= 0xC0 && status <= 0xDF:
		if offset+1 > len(a.arena) {
			return nil, diag.New(diag.Overflow, "midi: message offset out of range")
		}
		out = append(out, a.arena[offset])

	case status == 0xF0:
		h, _, err := decodeVarint(a.arena[offset:])
		if err != nil {
			return nil, err
		}
		entry, err := a.handleAt(h)
		if err != nil {
			return nil, err
		}
		data, ok := a.blobStore.Get(entry.blob)
		if !entry.isBlob || !ok || len(data) < 1 || data[0] != 0xF0 {
			return nil, diag.New(diag.Range, "midi: selector does not reference a valid 0xF0 sysex blob")
		}
		lenBytes, err := encodeVarint(int64(len(data) - 1))
		if err != nil {
			return nil, err
		}
		out = append(out, lenBytes...)
		out = append(out, data[1:]...)

	case status == 0xF7:
		h, _, err := decodeVarint(a.arena[offset:])
		if err != nil {
			return nil, err
		}
		entry, err := a.handleAt(h)
		if err != nil {
			return nil, err
		}
		data, ok := a.blobStore.Get(entry.blob)
		if !entry.isBlob || !ok {
			return nil, diag.New(diag.Range, "midi: selector does not reference a valid blob")
		}
		lenBytes, err := encodeVarint(int64(len(data)))
		if err != nil {
			return nil, err
		}
		out = append(out, lenBytes...)
		out = append(out, data...)

	case status == 0xFF:
		if offset >= len(a.arena) {
			return nil, diag.New(diag.Overflow, "midi: message offset out of range")
		}
		ty := a.arena[offset]
		if ty&0x80 != 0 {
			out = append(out, ty&0x7F)
			h, _, err := decodeVarint(a.arena[offset+1:])
			if err != nil {
				return nil, err
			}
			entry, err := a.handleAt(h)
			if err != nil {
				return nil, err
			}
			if entry.isBlob {
				data, ok := a.blobStore.Get(entry.blob)
				if !ok {
					return nil, diag.New(diag.Range, "midi: invalid blob handle")
				}
				lenBytes, err := encodeVarint(int64(len(data)))
				if err != nil {
					return nil, err
				}
				out = append(out, lenBytes...)
				out = append(out, data...)
			} else {
				s, ok := a.textStore.Get(entry.text)
				if !ok {
					return nil, diag.New(diag.Range, "midi: invalid text handle")
				}
				lenBytes, err := encodeVarint(int64(len(s)))
				if err != nil {
					return nil, err
				}
				out = append(out, lenBytes...)
				out = append(out, s...)
			}
		} else {
			out = append(out, ty)
			l, n, err := decodeVarint(a.arena[offset+1:])
			if err != nil {
				return nil, err
			}
			start := offset + 1 + n
			end := start + int(l)
			if end > len(a.arena) {
				return nil, diag.New(diag.Overflow, "midi: meta payload out of range")
			}
			out = append(out, a.arena[start:end]...)
		}

	default:
		return nil, diag.Newf(diag.Range, "midi: unrecognised status byte 0x%02x", status)
	}
	return out, nil
}

func (a *Assembler) handleAt(h int64) (handleEntry, error) {
	if h < 0 || int(h) >= len(a.handles) {
		return handleEntry{}, diag.New(diag.Range, "midi: invalid handle table index")
	}
	return a.handles[h], nil
}

// runningStatusCost computes the encoded byte length of sel, accounting
// for running-status suppression, without writing anything.
func (a *Assembler) runningStatusCost(sel Selector, running byte) (int, error) {
	b, err := a.encodeMessage(sel, running)
	if err != nil {
		return 0, err
	}
	return len(b), nil
}

// writeMessage writes sel's encoded bytes to w.
func (a *Assembler) writeMessage(w io.Writer, sel Selector, running byte) error {
	b, err := a.encodeMessage(sel, running)
	if err != nil {
		return err
	}
	_, err = w.Write(b)
	return err
}

// Compile sorts the moment list, appends an End-Of-Track event,
// rebases moments to delta times, and writes the MThd/MTrk chunks to
// w. May be called at most once.
func (a *Assembler) Compile(w io.Writer) error {
	if err := a.requireNotCompiled("compile"); err != nil {
		return err
	}
	a.compiled = true

	sort.SliceStable(a.moments, func(i, j int) bool { return eventLess(a.moments[i], a.moments[j]) })

	eotSel, err := a.addMetaDirect(metaEndOfTrack, nil)
	if err != nil {
		return err
	}
	eotMoment, err := moment.Pack(a.upper, moment.End)
	if err != nil {
		return err
	}
	eotID, err := a.allocEventID()
	if err != nil {
		return err
	}
	a.moments = append(a.moments, momentEvent{eventID: eotID, t: eotMoment, sel: eotSel})

	deltas := make([]int64, len(a.moments))
	prevAbs := int64(0)
	for i, ev := range a.moments {
		abs := ev.t.Subquantum() - a.lower
		if i == 0 {
			deltas[i] = abs
		} else {
			deltas[i] = abs - prevAbs
		}
		if deltas[i] < 0 || deltas[i] > maxVarint {
			return diag.Newf(diag.Overflow, "MIDI delta time %d out of range", deltas[i])
		}
		prevAbs = abs
	}

	trackLen := 0
	running := byte(0)
	for _, sel := range a.header {
		cost, err := a.runningStatusCost(sel, running)
		if err != nil {
			return err
		}
		trackLen += 1 + cost // delta(0) is always a single zero byte
		running = nextRunning(sel.Status())
	}
	for i, ev := range a.moments {
		cost, err := a.runningStatusCost(ev.sel, running)
		if err != nil {
			return err
		}
		deltaBytes, err := encodeVarint(deltas[i])
		if err != nil {
			return err
		}
		trackLen += len(deltaBytes) + cost
		running = nextRunning(ev.sel.Status())
	}

	if err := writeChunkHeaders(w, trackLen); err != nil {
		return err
	}

	running = 0
	for _, sel := range a.header {
		if err := writeVarint(w, 0); err != nil {
			return err
		}
		if err := a.writeMessage(w, sel, running); err != nil {
			return err
		}
		running = nextRunning(sel.Status())
	}
	for i, ev := range a.moments {
		if err := writeVarint(w, deltas[i]); err != nil {
			return err
		}
		if err := a.writeMessage(w, ev.sel, running); err != nil {
			return err
		}
		running = nextRunning(ev.sel.Status())
	}
	return nil
}

func writeVarint(w io.Writer, v int64) error {
	b, err := encodeVarint(v)
	if err != nil {
		return err
	}
	_, err = w.Write(b)
	return err
}

// writeChunkHeaders writes the fixed MThd chunk (format 0, one track,
// 768 ticks/quarter) followed by the MTrk chunk header with the
// precomputed track body length.
func writeChunkHeaders(w io.Writer, trackLen int) error {
	if _, err := io.WriteString(w, "MThd"); err != nil {
		return diag.Newf(diag.IO, "writing MThd: %v", err)
	}
	if err := binary.Write(w, binary.BigEndian, uint32(6)); err != nil {
		return diag.Newf(diag.IO, "writing MThd length: %v", err)
	}
	if err := binary.Write(w, binary.BigEndian, uint16(0)); err != nil {
		return diag.Newf(diag.IO, "writing format: %v", err)
	}
	if err := binary.Write(w, binary.BigEndian, uint16(1)); err != nil {
		return diag.Newf(diag.IO, "writing track count: %v", err)
	}
	if err := binary.Write(w, binary.BigEndian, uint16(TicksPerQuarter)); err != nil {
		return diag.Newf(diag.IO, "writing division: %v", err)
	}
	if _, err := io.WriteString(w, "MTrk"); err != nil {
		return diag.Newf(diag.IO, "writing MTrk: %v", err)
	}
	if trackLen < 0 || trackLen > 0xFFFFFFFF {
		return diag.Newf(diag.Overflow, "MIDI track length %d overflows a 32-bit chunk length", trackLen)
	}
	if err := binary.Write(w, binary.BigEndian, uint32(trackLen)); err != nil {
		return diag.Newf(diag.IO, "writing MTrk length: %v", err)
	}
	return nil
}
