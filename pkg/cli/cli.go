// Package cli parses infrared's command-line surface: spec.md §6's
// `infrared [-map <path>] [-soundfont <path>] [-log-level <level>] <script>`,
// reading NMF from stdin and writing MIDI to stdout.
package cli

import (
	"flag"
	"fmt"
	"os"
	"strings"
)

// Config holds the settings parsed from the command line.
type Config struct {
	Script    string // path to the score script; "-" or empty reads stdin
	MapPath   string // optional section-map output path (spec.md §6)
	Soundfont string // optional -soundfont path, validated by pkg/sfchunk
	LogLevel  string // debug, info, warn, error
	ShowHelp  bool
}

// ParseArgs parses args (normally os.Args[1:]) into a Config.
func ParseArgs(args []string) (*Config, error) {
	reordered := reorderArgs(args)

	fs := flag.NewFlagSet("infrared", flag.ContinueOnError)
	config := &Config{}

	fs.StringVar(&config.MapPath, "map", "", "write a section-map file to this path")
	fs.StringVar(&config.Soundfont, "soundfont", "", "validate this RIFF SoundFont before previewing")
	fs.StringVar(&config.LogLevel, "log-level", "info", "log level: debug, info, warn, error")
	fs.StringVar(&config.LogLevel, "l", "info", "log level (short form)")
	fs.BoolVar(&config.ShowHelp, "help", false, "show this help")
	fs.BoolVar(&config.ShowHelp, "h", false, "show this help (short form)")

	if err := fs.Parse(reordered); err != nil {
		return nil, err
	}

	levelSet := false
	fs.Visit(func(f *flag.Flag) {
		if f.Name == "log-level" || f.Name == "l" {
			levelSet = true
		}
	})
	if !levelSet {
		if env := os.Getenv("LOG_LEVEL"); env != "" {
			config.LogLevel = strings.ToLower(env)
		}
	}

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[config.LogLevel] {
		return nil, fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", config.LogLevel)
	}

	if fs.NArg() > 0 {
		config.Script = fs.Arg(0)
	}

	return config, nil
}

// reorderArgs moves flags (and any value they consume) before positional
// arguments, so a trailing <script> path never gets mistaken for a flag
// value.
func reorderArgs(args []string) []string {
	var flags []string
	var positional []string

	for i := 0; i < len(args); i++ {
		arg := args[i]

		if len(arg) > 0 && arg[0] == '-' {
			flags = append(flags, arg)

			if i+1 < len(args) && len(args[i+1]) > 0 && args[i+1][0] != '-' {
				if arg != "-h" && arg != "--help" {
					i++
					flags = append(flags, args[i])
				}
			}
		} else {
			positional = append(positional, arg)
		}
	}

	return append(flags, positional...)
}

// PrintHelp prints usage to stdout.
func PrintHelp() {
	fmt.Fprint(os.Stdout, `infrared - score-script + NMF -> Standard MIDI File compiler

Usage:
  infrared [options] <script> < input.nmf > output.mid

Arguments:
  script                   path to the score script ("-" reads stdin)

Options:
  -map <path>              write a section-map file (section:delta_ticks per line)
  -soundfont <path>        validate a RIFF SoundFont before previewing
  -l, --log-level <level>  log level: debug, info, warn, error (default info)
  -h, --help               show this help

Environment Variables:
  LOG_LEVEL=<level>        log level, overridden by -log-level

Examples:
  infrared score.ir < input.nmf > output.mid
  infrared -map sections.txt score.ir < input.nmf > output.mid
`)
}
