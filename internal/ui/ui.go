// Package ui prints human-facing progress and summaries to stderr. Reports
// themselves go to stdout or a file; everything here is decoration.
package ui

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/papapumpkin/fulcrum/internal/builder"
)

// Status icons.
const (
	iconDone   = "✓"
	iconFailed = "✗"
	iconStep   = "▶"
	iconWarn   = "⚠"
)

// styles holds the semantic palette used by a Printer.
type styles struct {
	title   lipgloss.Style
	step    lipgloss.Style
	success lipgloss.Style
	warn    lipgloss.Style
	danger  lipgloss.Style
	muted   lipgloss.Style
	value   lipgloss.Style
}

func newStyles(r *lipgloss.Renderer) styles {
	return styles{
		title:   r.NewStyle().Foreground(lipgloss.Color("#00BFFF")).Bold(true),
		step:    r.NewStyle().Foreground(lipgloss.Color("#5B8DEF")).Bold(true),
		success: r.NewStyle().Foreground(lipgloss.Color("#00E676")).Bold(true),
		warn:    r.NewStyle().Foreground(lipgloss.Color("#FFD700")).Bold(true),
		danger:  r.NewStyle().Foreground(lipgloss.Color("#FF5252")).Bold(true),
		muted:   r.NewStyle().Foreground(lipgloss.Color("#8C8C8C")),
		value:   r.NewStyle().Foreground(lipgloss.Color("#EEEEEE")).Bold(true),
	}
}

// Printer writes styled status lines.
type Printer struct {
	w io.Writer
	s styles
}

// New returns a Printer writing to stderr.
func New() *Printer {
	return NewWriter(os.Stderr)
}

// NewWriter returns a Printer writing to w. Colors are dropped when w is
// not a terminal.
func NewWriter(w io.Writer) *Printer {
	return &Printer{w: w, s: newStyles(lipgloss.NewRenderer(w))}
}

// Banner prints the tool name and the source being analyzed.
func (p *Printer) Banner(source string) {
	fmt.Fprintf(p.w, "%s %s\n", p.s.title.Render("fulcrum"), p.s.muted.Render("co-change centrality · "+source))
}

// Step announces a pipeline stage.
func (p *Printer) Step(name string) {
	fmt.Fprintf(p.w, "%s %s\n", p.s.step.Render(iconStep), name)
}

// BuildSummary reports how the change sets were used and the graph size.
func (p *Printer) BuildSummary(stats builder.Stats, files, pairs int) {
	fmt.Fprintf(p.w, "%s graph: %s files, %s co-change pairs %s\n",
		p.s.success.Render(iconDone),
		p.s.value.Render(humanize.Comma(int64(files))),
		p.s.value.Render(humanize.Comma(int64(pairs))),
		p.s.muted.Render(fmt.Sprintf("(%s of %s change sets admitted)",
			humanize.Comma(int64(stats.Admitted)), humanize.Comma(int64(stats.ChangeSets)))))
	if stats.Oversized > 0 {
		p.Warn(fmt.Sprintf("%s oversized change sets skipped", humanize.Comma(int64(stats.Oversized))))
	}
	if stats.InvalidRecords > 0 {
		p.Warn(fmt.Sprintf("%s invalid records dropped", humanize.Comma(int64(stats.InvalidRecords))))
	}
	if stats.Removed > 0 {
		p.Info(fmt.Sprintf("%s deleted files removed", humanize.Comma(int64(stats.Removed))))
	}
}

// Done prints the final line of a successful run.
func (p *Printer) Done(files int, elapsed time.Duration) {
	fmt.Fprintf(p.w, "%s scored %s files in %s\n",
		p.s.success.Render(iconDone),
		p.s.value.Render(humanize.Comma(int64(files))),
		elapsed.Round(time.Millisecond))
}

// Written reports a report file written to disk.
func (p *Printer) Written(path string, size int) {
	fmt.Fprintf(p.w, "%s wrote %s %s\n",
		p.s.success.Render(iconDone), path, p.s.muted.Render("("+humanize.Bytes(uint64(size))+")"))
}

// Info prints a de-emphasized line.
func (p *Printer) Info(msg string) {
	fmt.Fprintln(p.w, p.s.muted.Render(msg))
}

// Warn prints a warning line.
func (p *Printer) Warn(msg string) {
	fmt.Fprintf(p.w, "%s %s\n", p.s.warn.Render(iconWarn), msg)
}

// Error prints an error line.
func (p *Printer) Error(msg string) {
	fmt.Fprintf(p.w, "%s %s\n", p.s.danger.Render(iconFailed+" error:"), msg)
}
