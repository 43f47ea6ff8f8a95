// Package render implements infrared's renderer pipeline: the ordered
// classifier list that maps each NMF note's (section, layer,
// articulation) to a set of performance attributes, the per-note
// materialisation into MIDI note-on/off (and poly-aftertouch) events,
// and the keyboard non-overlap post-process (spec.md §4.5).
package render

import (
	"github.com/zurustar/infrared/pkg/artic"
	"github.com/zurustar/infrared/pkg/diag"
	"github.com/zurustar/infrared/pkg/graph"
	"github.com/zurustar/infrared/pkg/intset"
)

// Kind tags which performance attribute a Classifier supplies.
type Kind int

const (
	Art Kind = iota
	Ruler
	Graph
	Channel
	Release
	Aftertouch
)

// classifier is one `(sect_set, layer_set, art_set, kind, value)` tuple.
// Only the field matching kind is meaningful.
type classifier struct {
	sectSet, layerSet, artSet intset.Set
	kind                      Kind

	art        artic.Articulation
	ruler      artic.Ruler
	g          *graph.Graph
	channel    int64
	release    int64
	aftertouch bool
}

func (c classifier) matches(sect, layer, art int64) bool {
	return c.sectSet.Has(sect) && c.layerSet.Has(layer) && c.artSet.Has(art)
}

// Attributes is the resolved set of performance attributes a note
// receives after one Classify call.
type Attributes struct {
	Art        artic.Articulation
	Ruler      artic.Ruler
	Graph      *graph.Graph
	Channel    int64
	Release    int64
	Aftertouch bool
}

// Pipeline is the ordered classifier list plus a cached default
// constant-64 velocity graph. The zero value is not usable; construct
// with NewPipeline.
type Pipeline struct {
	classifiers      []classifier
	defaultGraph     *graph.Graph
	keyboardDisabled bool
}

// NewPipeline constructs an empty pipeline, using store to intern the
// default constant-64 velocity graph (spec.md §4.5's defaults table).
func NewPipeline(store *graph.Store) (*Pipeline, error) {
	g, err := store.Constant(64)
	if err != nil {
		return nil, err
	}
	return &Pipeline{defaultGraph: g}, nil
}

// DisableKeyboardProcess turns off the keyboard non-overlap post-process
// (on by default); spec.md §9's Open Question toggle.
func (p *Pipeline) DisableKeyboardProcess() {
	p.keyboardDisabled = true
}

// AddArt registers an articulation classifier.
func (p *Pipeline) AddArt(sect, layer, artSet intset.Set, value artic.Articulation) {
	p.classifiers = append(p.classifiers, classifier{sectSet: sect, layerSet: layer, artSet: artSet, kind: Art, art: value})
}

// AddRuler registers a ruler classifier.
func (p *Pipeline) AddRuler(sect, layer, artSet intset.Set, value artic.Ruler) {
	p.classifiers = append(p.classifiers, classifier{sectSet: sect, layerSet: layer, artSet: artSet, kind: Ruler, ruler: value})
}

// AddGraph registers a velocity-graph classifier.
func (p *Pipeline) AddGraph(sect, layer, artSet intset.Set, value *graph.Graph) {
	p.classifiers = append(p.classifiers, classifier{sectSet: sect, layerSet: layer, artSet: artSet, kind: Graph, g: value})
}

// AddChannel registers a MIDI channel classifier; channel must be in
// [1,16].
func (p *Pipeline) AddChannel(sect, layer, artSet intset.Set, channel int64) error {
	if channel < 1 || channel > 16 {
		return diag.Newf(diag.Range, "note channel %d out of range [1,16]", channel)
	}
	p.classifiers = append(p.classifiers, classifier{sectSet: sect, layerSet: layer, artSet: artSet, kind: Channel, channel: channel})
	return nil
}

// AddRelease registers a note-off release-velocity classifier. release
// must be -1 (use note-on velocity 0) or in [0,127].
func (p *Pipeline) AddRelease(sect, layer, artSet intset.Set, release int64) error {
	if release < -1 || release > 127 {
		return diag.Newf(diag.Range, "note release %d out of range [-1,127]", release)
	}
	p.classifiers = append(p.classifiers, classifier{sectSet: sect, layerSet: layer, artSet: artSet, kind: Release, release: release})
	return nil
}

// AddAftertouch registers an aftertouch-enable classifier.
func (p *Pipeline) AddAftertouch(sect, layer, artSet intset.Set, enabled bool) {
	p.classifiers = append(p.classifiers, classifier{sectSet: sect, layerSet: layer, artSet: artSet, kind: Aftertouch, aftertouch: enabled})
}

// Classify folds the classifier list over (sect, layer, art) — layer
// already converted to one-based — returning the last match per kind,
// falling back to spec.md §4.5's default table for any kind with no
// match.
func (p *Pipeline) Classify(sect, layer, art int64) Attributes {
	out := Attributes{
		Art:        artic.Default(),
		Ruler:      artic.DefaultRuler(),
		Graph:      p.defaultGraph,
		Channel:    1,
		Release:    -1,
		Aftertouch: false,
	}
	for _, c := range p.classifiers {
		if !c.matches(sect, layer, art) {
			continue
		}
		switch c.kind {
		case Art:
			out.Art = c.art
		case Ruler:
			out.Ruler = c.ruler
		case Graph:
			out.Graph = c.g
		case Channel:
			out.Channel = c.channel
		case Release:
			out.Release = c.release
		case Aftertouch:
			out.Aftertouch = c.aftertouch
		}
	}
	return out
}
