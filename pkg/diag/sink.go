package diag

import (
	"fmt"
	"log/slog"
	"os"
)

// Sink is the uniform error/warn reporting surface every module logs
// through. A compilation owns exactly one Sink.
type Sink struct {
	logger *slog.Logger
}

// NewSink builds a Sink whose logger writes to os.Stderr at the given level.
// levelName matches the CLI's -log-level flag: "debug", "info", "warn",
// "error".
func NewSink(levelName string) (*Sink, error) {
	var level slog.Level
	switch levelName {
	case "debug":
		level = slog.LevelDebug
	case "info", "":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		return nil, fmt.Errorf("invalid log level: %s", levelName)
	}
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	return &Sink{logger: slog.New(handler)}, nil
}

// Warn logs a non-fatal diagnostic. infrared has no recoverable runtime
// errors, so Warn is reserved for genuinely informational notices (e.g.
// "classifier N never matched any note") that do not themselves carry a
// diag.Code.
func (s *Sink) Warn(msg string, args ...any) {
	s.logger.Warn(msg, args...)
}

// Fatal logs err at error level and returns it unchanged, so callers can
// write `return sink.Fatal(err)` at the point a *diag.Error is produced.
func (s *Sink) Fatal(err *Error) *Error {
	s.logger.Error(err.Error(), "code", string(err.Code), "line", err.Line)
	return err
}
