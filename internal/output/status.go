package output

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Palette shared by status lines.
const (
	ColorSuccess = lipgloss.Color("#10B981")
	ColorError   = lipgloss.Color("#EF4444")
	ColorMuted   = lipgloss.Color("#6B7280")
)

var (
	SuccessStyle = lipgloss.NewStyle().Foreground(ColorSuccess)
	ErrorStyle   = lipgloss.NewStyle().Bold(true).Foreground(ColorError)
	MutedStyle   = lipgloss.NewStyle().Foreground(ColorMuted)
)

// Status writes the human-readable notifications that bracket a dispatch.
// Success lines go to Out, failures to Err.
type Status struct {
	Out io.Writer
	Err io.Writer
}

// Success prints a success line.
func (s *Status) Success(format string, args ...any) {
	fmt.Fprintln(s.Out, SuccessStyle.Render("✓ "+fmt.Sprintf(format, args...)))
}

// Failure prints a failure line.
func (s *Status) Failure(format string, args ...any) {
	fmt.Fprintln(s.Err, ErrorStyle.Render("✗ "+fmt.Sprintf(format, args...)))
}

// Plan prints the command a dry run would execute.
func (s *Status) Plan(program string, args []string) {
	fmt.Fprintln(s.Out, MutedStyle.Render("would run:"), quoteArgs(append([]string{program}, args...)))
}

func quoteArgs(argv []string) string {
	quoted := make([]string, len(argv))
	for i, a := range argv {
		if a == "" || strings.ContainsAny(a, " \t\n\"'") {
			a = strconv.Quote(a)
		}
		quoted[i] = a
	}
	return strings.Join(quoted, " ")
}
