package main

import (
	"fmt"
	"os"
	"os/exec"

	"github.com/zurustar/infrared/pkg/cli"
)

// preview implements the optional `infrared preview` sub-command
// (SPEC_FULL.md §4.9): compile the script and NMF input exactly as the
// default mode does, write the result to a temporary MIDI file, and
// hand both it and a validated -soundfont to an external
// fluidsynth-style player via os/exec. infrared never synthesizes audio
// itself; this is tooling layered on top of the compiler, not part of
// it.
func preview(args []string) error {
	config, err := cli.ParseArgs(args)
	if err != nil {
		return err
	}
	if config.ShowHelp {
		cli.PrintHelp()
		return nil
	}
	if config.Soundfont == "" {
		return fmt.Errorf("infrared preview: -soundfont is required")
	}
	if err := validateSoundfont(config.Soundfont); err != nil {
		return err
	}

	tmp, err := os.CreateTemp("", "infrared-preview-*.mid")
	if err != nil {
		return fmt.Errorf("infrared preview: %w", err)
	}
	defer os.Remove(tmp.Name())
	defer tmp.Close()

	if err := compileToWriter(config, tmp); err != nil {
		return err
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("infrared preview: %w", err)
	}

	player := os.Getenv("INFRARED_PREVIEW_PLAYER")
	if player == "" {
		player = "fluidsynth"
	}
	cmd := exec.Command(player, "-i", config.Soundfont, tmp.Name())
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	return cmd.Run()
}
