package output

import (
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	isatty "github.com/mattn/go-isatty"
)

var (
	styleArrow   = lipgloss.NewStyle().Foreground(lipgloss.Color("63")).Bold(true)  // cyan/blue
	styleSection = lipgloss.NewStyle().Foreground(lipgloss.Color("15")).Bold(true)  // bright white
	styleDesc    = lipgloss.NewStyle().Faint(true)                                  // dim
	styleWarnLbl = lipgloss.NewStyle().Foreground(lipgloss.Color("214")).Bold(true) // yellow
	styleWarnTxt = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))            // yellow
	styleNote    = lipgloss.NewStyle().Foreground(lipgloss.Color("45")).Faint(true) // teal dim
	styleNew     = lipgloss.NewStyle().Foreground(lipgloss.Color("42")).Bold(true)  // green
	styleZero    = lipgloss.NewStyle().Faint(true)
	colorEnabled = true
)

// InitConsole configures color output based on noColor flag and TTY detection
func InitConsole(noColor bool) {
	tty := isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd())
	colorEnabled = tty && !noColor
}

func r(st lipgloss.Style, s string) string {
	if !colorEnabled {
		return s
	}
	return st.Render(s)
}

// SectionHeader returns a colored header and its optional description.
func SectionHeader(name, description string) string {
	var b strings.Builder
	arrow := r(styleArrow, "→")
	b.WriteString(fmt.Sprintf("%s %s\n", arrow, r(styleSection, name)))
	if strings.TrimSpace(description) != "" {
		b.WriteString(r(styleDesc, "  "+description))
		b.WriteByte('\n')
	}
	return b.String()
}

// Warnf returns a single-line colored warning string with a standard prefix.
func Warnf(format string, a ...interface{}) string {
	msg := fmt.Sprintf(format, a...)
	return r(styleWarnLbl, "Warning:") + " " + r(styleWarnTxt, msg)
}

// Notef returns a faint informational line.
func Notef(format string, a ...interface{}) string {
	return r(styleNote, fmt.Sprintf(format, a...))
}

// RenamePair renders "old → new"; an unchanged name is shown faint.
func RenamePair(original, renamed string) string {
	if renamed == "" || renamed == original {
		return r(styleZero, "  "+original+" (unchanged)")
	}
	return fmt.Sprintf("  %s %s %s", r(styleDesc, original), r(styleArrow, "→"), r(styleNew, renamed))
}

// FileCount returns a colored summary of how many files a script touches.
func FileCount(n int) string {
	if n <= 0 {
		return r(styleZero, "  0 file(s)")
	}
	return r(styleNew, fmt.Sprintf("  %d file(s)", n))
}

// ListNames returns a bullet list of names, faint.
func ListNames(names []string) string {
	if len(names) == 0 {
		return ""
	}
	var b strings.Builder
	for _, n := range names {
		b.WriteString(r(styleDesc, "    - "))
		b.WriteString(r(styleDesc, n))
		b.WriteByte('\n')
	}
	return b.String()
}

// ShortError condenses a multi-line error, such as an aggregated one, into
// its last meaningful line.
func ShortError(err error) string {
	if err == nil {
		return ""
	}
	s := err.Error()
	lines := strings.Split(s, "\n")
	var candidate string
	for _, ln := range lines {
		t := strings.TrimSpace(ln)
		if t == "" {
			continue
		}
		if strings.HasSuffix(t, "errors occurred:") || strings.HasSuffix(t, "error occurred:") {
			continue
		}
		candidate = strings.TrimPrefix(t, "* ")
	}
	if strings.Contains(strings.ToLower(candidate), "permission denied") {
		return "permission denied"
	}
	if candidate == "" && len(lines) > 0 {
		candidate = strings.TrimSpace(lines[0])
	}
	return candidate
}
