package render

import (
	"github.com/zurustar/infrared/pkg/diag"
	"github.com/zurustar/infrared/pkg/graph"
	"github.com/zurustar/infrared/pkg/midi"
	"github.com/zurustar/infrared/pkg/moment"
	"github.com/zurustar/infrared/pkg/nmf"
)

// NoteEvent is one note materialised from an NMF note, after
// classification but before Keyboard truncation and MIDI emission.
type NoteEvent struct {
	id      int64 // NMF note index, the "event_id" tie-break of spec.md §4.5
	channel int64 // 1..16
	key     int64 // 0..127
	tSub    int64 // onset, in subquanta
	durSub  int64 // >= 1

	onVelocity int64
	release    int64 // -1: note-off is a velocity-0 note-on; else 0..127
	aftertouch bool
	g          *graph.Graph

	deleted bool
}

// pitchMin and pitchMax are the NMF semitone domain spec.md §7 names
// (`pitch outside [-39,48]`); added to 60 they land in [21,108], always
// a legal MIDI key.
const (
	pitchMin = -39
	pitchMax = 48
)

// materialize converts one NMF note into a NoteEvent using the
// attributes the pipeline resolved for its (section, layer,
// articulation). Never called for a cue note (dur == 0) — those are
// dropped by Render before classification, matching importNotes' own
// "dur == 0 -> delete, skip" handling.
func materialize(id int64, n nmf.Note, attrs Attributes) (NoteEvent, error) {
	if n.PitchSemitones < pitchMin || n.PitchSemitones > pitchMax {
		return NoteEvent{}, diag.Newf(diag.Range, "note pitch %d out of range [%d,%d]", n.PitchSemitones, pitchMin, pitchMax)
	}

	tSub := n.TimeQuanta * moment.SubquantaPerQuantum
	var durSub int64
	switch {
	case n.DurationQuanta > 0:
		durSub = attrs.Art.Transform(n.DurationQuanta)
	case n.DurationQuanta < 0:
		durSub = attrs.Ruler.Duration()
		tSub = attrs.Ruler.Position(tSub, n.DurationQuanta)
	default:
		return NoteEvent{}, diag.New(diag.Range, "render: materialize called on a cue note")
	}

	onAt, err := moment.Pack(tSub, moment.Middle)
	if err != nil {
		return NoteEvent{}, err
	}
	velocity := attrs.Graph.Query(onAt)
	if velocity < 1 || velocity > 127 {
		return NoteEvent{}, diag.Newf(diag.Range, "note-on velocity %d out of range [1,127]", velocity)
	}

	return NoteEvent{
		id:         id,
		channel:    attrs.Channel,
		key:        n.PitchSemitones + 60,
		tSub:       tSub,
		durSub:     durSub,
		onVelocity: velocity,
		release:    attrs.Release,
		aftertouch: attrs.Aftertouch,
		g:          attrs.Graph,
	}, nil
}

// emit writes e's note-on, note-off and (if enabled) poly-aftertouch
// events into out.
func emit(out *midi.Assembler, e NoteEvent) error {
	onAt, err := moment.Pack(e.tSub, moment.Middle)
	if err != nil {
		return err
	}
	if err := out.AddMessage(onAt, false, int(e.channel), midi.NoteOn, int(e.key), int(e.onVelocity)); err != nil {
		return err
	}

	offAt, err := moment.Pack(e.tSub+e.durSub, moment.Start)
	if err != nil {
		return err
	}
	if e.release >= 0 {
		if err := out.AddMessage(offAt, false, int(e.channel), midi.NoteOff, int(e.key), int(e.release)); err != nil {
			return err
		}
	} else {
		if err := out.AddMessage(offAt, false, int(e.channel), midi.NoteOn, int(e.key), 0); err != nil {
			return err
		}
	}

	if e.aftertouch && e.durSub >= 2 {
		start, err := moment.Pack(e.tSub+1, moment.Start)
		if err != nil {
			return err
		}
		end, err := moment.Pack(e.tSub+e.durSub-1, moment.End)
		if err != nil {
			return err
		}
		vStart := e.onVelocity
		var trackErr error
		err = e.g.Track(start, &end, &vStart, func(t moment.Moment, v int64) error {
			if v < 1 || v > 127 {
				trackErr = diag.Newf(diag.Range, "aftertouch value %d out of range [1,127]", v)
				return trackErr
			}
			return out.AddMessage(t, false, int(e.channel), midi.PolyAftertouch, int(e.key), int(v))
		})
		if err != nil {
			return err
		}
		if trackErr != nil {
			return trackErr
		}
	}
	return nil
}

// Render implements the render phase of spec.md §5: classify and
// materialise every non-cue note in data, apply the keyboard
// non-overlap post-process unless disabled, then emit the surviving
// events into out. Called exactly once per compilation. Cue notes
// (dur == 0) never reach the classifier pipeline or the MIDI output —
// they carry no performance duration to render.
func (p *Pipeline) Render(data nmf.Data, out *midi.Assembler) error {
	count := data.NoteCount()
	events := make([]NoteEvent, 0, count)
	for i := int64(0); i < count; i++ {
		n := data.Note(i)
		if n.DurationQuanta == 0 {
			continue
		}
		attrs := p.Classify(n.Section, n.Layer+1, n.Articulation)
		ev, err := materialize(i, n, attrs)
		if err != nil {
			return err
		}
		events = append(events, ev)
	}

	if !p.keyboardDisabled {
		events = Keyboard(events)
	}

	for _, ev := range events {
		if ev.deleted {
			continue
		}
		if err := emit(out, ev); err != nil {
			return err
		}
	}
	return nil
}
