package display

import (
	"fmt"
	"io"

	"github.com/fatih/color"
)

// ProgressIndicator prints one line per processed item
type ProgressIndicator struct {
	writer  io.Writer
	title   string
	total   int
	current int
}

// NewProgressIndicator creates a new progress indicator
func NewProgressIndicator(w io.Writer, title string, total int) *ProgressIndicator {
	return &ProgressIndicator{writer: w, title: title, total: total}
}

// Start displays the header message
func (p *ProgressIndicator) Start() {
	fmt.Fprintf(p.writer, "%s:\n", p.title)
}

// Step displays progress for the current item: [N/Total] name
func (p *ProgressIndicator) Step(name string) {
	p.current++
	color.New(color.FgCyan).Fprintf(p.writer, "  [%d/%d] %s\n", p.current, p.total, name)
}

// Complete displays the success line
func (p *ProgressIndicator) Complete(done int) {
	color.New(color.FgGreen).Fprint(p.writer, "✓")
	fmt.Fprintf(p.writer, " %d of %d done\n", done, p.total)
}
