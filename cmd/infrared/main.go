// Command infrared is the CLI entry point: it reads a score script and a
// quantised NMF stream and writes a Standard MIDI File, driving the
// three serial phases spec.md §5 describes (script, render, output).
package main

import (
	"bufio"
	"fmt"
	"io"
	"os"

	"github.com/zurustar/infrared/pkg/cli"
	"github.com/zurustar/infrared/pkg/control"
	"github.com/zurustar/infrared/pkg/diag"
	"github.com/zurustar/infrared/pkg/graph"
	"github.com/zurustar/infrared/pkg/interp"
	"github.com/zurustar/infrared/pkg/intset"
	"github.com/zurustar/infrared/pkg/midi"
	"github.com/zurustar/infrared/pkg/moment"
	"github.com/zurustar/infrared/pkg/nmf"
	"github.com/zurustar/infrared/pkg/ops"
	"github.com/zurustar/infrared/pkg/render"
	"github.com/zurustar/infrared/pkg/script"
	"github.com/zurustar/infrared/pkg/sfchunk"
	"github.com/zurustar/infrared/pkg/text"
)

func main() {
	args := os.Args[1:]
	if len(args) > 0 && args[0] == "preview" {
		if err := preview(args[1:]); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		return
	}

	config, err := cli.ParseArgs(args)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	if config.ShowHelp {
		cli.PrintHelp()
		return
	}

	sink, err := diag.NewSink(config.LogLevel)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	if err := run(config); err != nil {
		if de, ok := err.(*diag.Error); ok {
			sink.Fatal(de)
		} else {
			fmt.Fprintln(os.Stderr, err)
		}
		os.Exit(1)
	}
}

func run(config *cli.Config) error {
	if config.Soundfont != "" {
		if err := validateSoundfont(config.Soundfont); err != nil {
			return err
		}
	}

	out := bufio.NewWriter(os.Stdout)
	if err := compileToWriter(config, out); err != nil {
		return err
	}
	return out.Flush()
}

// validateSoundfont opens path and confirms it is a well-formed RIFF
// SoundFont bank via pkg/sfchunk, without parsing preset or sample data.
func validateSoundfont(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return diag.Newf(diag.IO, "opening soundfont: %v", err)
	}
	defer f.Close()
	if err := sfchunk.Validate(f); err != nil {
		return diag.Newf(diag.IO, "soundfont %s failed validation: %v", path, err)
	}
	return nil
}

// compileToWriter runs spec.md §5's three serial phases (script, render,
// output) and writes the resulting Standard MIDI File to w. NMF is
// always read from stdin, matching the CLI surface `<script> < nmf`.
func compileToWriter(config *cli.Config, w io.Writer) error {
	src, err := readScript(config.Script)
	if err != nil {
		return diag.Newf(diag.IO, "reading script: %v", err)
	}

	entities, err := script.Lex(src)
	if err != nil {
		return err
	}

	data, err := nmf.ReadTSV(bufio.NewReader(os.Stdin))
	if err != nil {
		return diag.Newf(diag.IO, "reading NMF input: %v", err)
	}

	texts := text.NewStore()
	blobs := text.NewBlobStore()
	graphs := graph.NewStore()
	pipeline, err := render.NewPipeline(graphs)
	if err != nil {
		return err
	}
	assembler := midi.New(texts, blobs)

	registry := ops.NewRegistry()
	if err := ops.RegisterAll(registry); err != nil {
		return err
	}

	ctx := &ops.Context{
		Machine:     interp.New(texts, blobs),
		Graphs:      graphs,
		Sets:        intset.NewBuilder(),
		Pipeline:    pipeline,
		Controllers: control.NewModule(),
		Assembler:   assembler,
		Data:        data,
		Texts:       texts,
		Blobs:       blobs,
	}

	driver := script.NewDriver(registry)
	if err := driver.Run(entities, ctx); err != nil {
		return err
	}

	if err := pipeline.Render(data, assembler); err != nil {
		return err
	}
	if err := ctx.Controllers.Track(assembler); err != nil {
		return err
	}

	if config.MapPath != "" {
		if err := writeSectionMap(config.MapPath, data, assembler.EventRangeLower()); err != nil {
			return diag.Newf(diag.IO, "writing section map: %v", err)
		}
	}

	return assembler.Compile(w)
}

// readScript returns the script source from path, or from stdin when
// path is empty or "-".
func readScript(path string) (string, error) {
	if path == "" || path == "-" {
		b, err := io.ReadAll(os.Stdin)
		return string(b), err
	}
	b, err := os.ReadFile(path)
	return string(b), err
}

// writeSectionMap writes spec.md §6's optional section map: one
// "<section_index>:<delta_ticks_from_track_origin>\n" line per NMF
// section. One subquantum equals one MIDI tick (midi.TicksPerQuarter),
// so a section's base quantum converts to ticks by the same
// SubquantaPerQuantum factor the pointer algebra uses to resolve a
// moment. origin is the assembler's event-range lower bound, the
// subquantum Compile takes as tick zero of the track.
func writeSectionMap(path string, data nmf.Data, origin int64) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	for i := int64(0); i < data.SectionCount(); i++ {
		ticks := data.SectionBaseQuantum(i)*moment.SubquantaPerQuantum - origin
		if _, err := fmt.Fprintf(w, "%d:%d\n", i, ticks); err != nil {
			return err
		}
	}
	return w.Flush()
}
