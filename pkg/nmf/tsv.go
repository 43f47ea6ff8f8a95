package nmf

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// ReadTSV reads a minimal whitespace/tab-separated NMF stand-in: a first
// line giving the basis, a second line listing section base quanta
// (space-separated, possibly a single 0), then one line per note:
//
//	t_quanta dur_quanta pitch articulation section layer
//
// Blank lines and lines starting with '#' are skipped. This is a reference
// reader for the CLI and tests, not the real (binary) NMF file format,
// which spec.md §1 places out of scope.
func ReadTSV(r io.Reader) (*Memory, error) {
	scanner := bufio.NewScanner(r)
	lines := make([]string, 0)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		lines = append(lines, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("nmf: read: %w", err)
	}
	if len(lines) < 2 {
		return nil, fmt.Errorf("nmf: expected at least a basis line and a section line")
	}

	basis, err := strconv.ParseInt(lines[0], 10, 64)
	if err != nil {
		return nil, fmt.Errorf("nmf: basis: %w", err)
	}

	sections := make([]int64, 0)
	for _, f := range strings.Fields(lines[1]) {
		v, err := strconv.ParseInt(f, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("nmf: section base quantum %q: %w", f, err)
		}
		sections = append(sections, v)
	}

	notes := make([]Note, 0, len(lines)-2)
	for lineNo, line := range lines[2:] {
		fields := strings.Fields(line)
		if len(fields) != 6 {
			return nil, fmt.Errorf("nmf: note line %d: expected 6 fields, got %d", lineNo+3, len(fields))
		}
		vals := make([]int64, 6)
		for i, f := range fields {
			v, err := strconv.ParseInt(f, 10, 64)
			if err != nil {
				return nil, fmt.Errorf("nmf: note line %d field %d: %w", lineNo+3, i, err)
			}
			vals[i] = v
		}
		notes = append(notes, Note{
			TimeQuanta:     vals[0],
			DurationQuanta: vals[1],
			PitchSemitones: vals[2],
			Articulation:   vals[3],
			Section:        vals[4],
			Layer:          vals[5],
		})
	}

	return NewMemory(basis, sections, notes)
}
