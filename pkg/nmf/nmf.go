// Package nmf defines the opaque NMF data object spec.md §1/§6 treats as an
// external collaborator: quantised score input consumed by the temporal
// pointer and renderer packages, but never parsed here. The real (binary)
// NMF file format is out of scope; this package only specifies the reader
// interface and supplies an in-memory implementation plus a minimal
// tab-separated reference reader.
package nmf

import "github.com/zurustar/infrared/pkg/diag"

// Note is the per-note tuple Data.Note returns.
type Note struct {
	TimeQuanta     int64
	DurationQuanta int64
	PitchSemitones int64
	Articulation   int64 // opaque articulation tag chosen by the score; rendering maps it via a classifier
	Section        int64
	Layer          int64
}

// Data is the NMF data object interface spec.md §6 specifies: basis
// (quantum rate), section count, section-to-base-quantum lookup, note
// count, and a per-note accessor.
type Data interface {
	// Basis returns the quantum rate (quanta per quarter note, or
	// whatever unit the score was quantised to). Informational only —
	// no module in this repository derives timing from it directly,
	// all timing below the quantum is already in subquanta.
	Basis() int64

	// SectionCount returns the number of sections.
	SectionCount() int64

	// SectionBaseQuantum returns the quantum at which section sect
	// begins. Callers must check sect < SectionCount() themselves;
	// pkg/pointer does so and fails with diag.SectionRange.
	SectionBaseQuantum(sect int64) int64

	// NoteCount returns the number of notes.
	NoteCount() int64

	// Note returns the note at index i, 0 <= i < NoteCount().
	Note(i int64) Note
}

// Memory is a slice-backed Data implementation, built directly or by
// ReadTSV.
type Memory struct {
	basis    int64
	sections []int64 // base quantum per section, ascending
	notes    []Note
}

// NewMemory constructs a Memory from section base-quantum boundaries and a
// note list. sections must be non-decreasing; callers that only know a
// section count without boundaries should pass one entry (base 0).
func NewMemory(basis int64, sections []int64, notes []Note) (*Memory, error) {
	for i := 1; i < len(sections); i++ {
		if sections[i] < sections[i-1] {
			return nil, diag.Newf(diag.Range, "section base quanta must be non-decreasing, got %d after %d", sections[i], sections[i-1])
		}
	}
	cp := make([]int64, len(sections))
	copy(cp, sections)
	nc := make([]Note, len(notes))
	copy(nc, notes)
	return &Memory{basis: basis, sections: cp, notes: nc}, nil
}

func (m *Memory) Basis() int64       { return m.basis }
func (m *Memory) SectionCount() int64 { return int64(len(m.sections)) }
func (m *Memory) NoteCount() int64    { return int64(len(m.notes)) }

func (m *Memory) SectionBaseQuantum(sect int64) int64 {
	if sect < 0 || sect >= int64(len(m.sections)) {
		return 0
	}
	return m.sections[sect]
}

func (m *Memory) Note(i int64) Note {
	return m.notes[i]
}
