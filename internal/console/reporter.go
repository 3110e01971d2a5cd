// Package console prints human-readable run progress and builds the
// structured logger.
package console

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
)

const ruleWidth = 60

// Reporter writes styled progress lines. Styles degrade to plain text
// when w is not a terminal.
type Reporter struct {
	w       io.Writer
	rule    lipgloss.Style
	title   lipgloss.Style
	step    lipgloss.Style
	detail  lipgloss.Style
	success lipgloss.Style
	warn    lipgloss.Style
	fail    lipgloss.Style
}

// NewReporter creates a reporter bound to w.
func NewReporter(w io.Writer) *Reporter {
	r := lipgloss.NewRenderer(w)
	return &Reporter{
		w:       w,
		rule:    r.NewStyle().Foreground(lipgloss.Color("12")),
		title:   r.NewStyle().Bold(true).Foreground(lipgloss.Color("13")),
		step:    r.NewStyle().Foreground(lipgloss.Color("14")),
		detail:  r.NewStyle().Foreground(lipgloss.Color("5")),
		success: r.NewStyle().Foreground(lipgloss.Color("10")),
		warn:    r.NewStyle().Foreground(lipgloss.Color("11")),
		fail:    r.NewStyle().Foreground(lipgloss.Color("9")),
	}
}

func (r *Reporter) println(style lipgloss.Style, format string, args ...any) {
	fmt.Fprintln(r.w, style.Render(fmt.Sprintf(format, args...)))
}

// Banner prints a title between horizontal rules.
func (r *Reporter) Banner(title string) {
	line := strings.Repeat("=", ruleWidth)
	r.println(r.rule, "%s", line)
	r.println(r.title, "%s", title)
	r.println(r.rule, "%s", line)
}

// Step announces a pipeline stage.
func (r *Reporter) Step(format string, args ...any) { r.println(r.step, format, args...) }

// Detail prints a labelled value.
func (r *Reporter) Detail(label, value string) { r.println(r.detail, "%s: %s", label, value) }

// Success reports a finished stage.
func (r *Reporter) Success(format string, args ...any) { r.println(r.success, format, args...) }

// Warn reports a recoverable problem.
func (r *Reporter) Warn(format string, args ...any) { r.println(r.warn, format, args...) }

// Fail reports a failed stage.
func (r *Reporter) Fail(format string, args ...any) { r.println(r.fail, format, args...) }

// Elapsed prints a duration in seconds with two decimals.
func (r *Reporter) Elapsed(label string, d time.Duration) {
	r.println(r.step, "%s: %.2f seconds", label, d.Seconds())
}
