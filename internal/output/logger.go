/*
PURPOSE:
  Provides a structured logger for collect-snapshot.
  Wraps slog around a charmbracelet/log handler for readable terminal output.

REQUIREMENTS:
  User-specified:
  - Status lines before and after dispatch. Not spammy.

  Implementation-discovered:
  - The collector shares stdout with the launcher, so log lines go to stderr.
  - Needs Debug (--verbose) and Info levels.

ARCHITECTURE INTEGRATION:
  - Used everywhere.

ERROR HANDLING:
  - N/A

IMPLEMENTATION RULES:
  - Callers log through the *slog.Logger API only; the handler is swappable.

USAGE:
  output.Logger.Info("message", "key", "value")

SELF-HEALING INSTRUCTIONS:
  - If colours leak into redirected output, check the charm handler's writer.

RELATED FILES:
  - internal/output/status.go

MAINTENANCE:
  - None.
*/

package output

import (
	"io"
	"log/slog"
	"os"

	charmlog "github.com/charmbracelet/log"
)

var Logger *slog.Logger

func init() {
	Logger = NewLogger(os.Stderr, false)
}

// NewLogger builds a slog.Logger that renders through charmbracelet/log.
func NewLogger(w io.Writer, verbose bool) *slog.Logger {
	level := charmlog.InfoLevel
	if verbose {
		level = charmlog.DebugLevel
	}
	handler := charmlog.NewWithOptions(w, charmlog.Options{
		Level:           level,
		Prefix:          "collect-snapshot",
		ReportTimestamp: verbose,
	})
	return slog.New(handler)
}

// SetLogger allows overriding the default logger (e.g. for testing or config changes)
func SetLogger(l *slog.Logger) {
	Logger = l
}
