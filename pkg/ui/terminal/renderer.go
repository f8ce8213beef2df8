// Package terminal provides styled terminal output
package terminal

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/openslx/slotctl/pkg/errors"
	"github.com/openslx/slotctl/pkg/ui/display"
	"github.com/openslx/slotctl/pkg/ui/styles"
)

var statusMarks = map[display.Status]string{
	display.StatusOK:      "✓",
	display.StatusPlanned: "→",
	display.StatusSkipped: "·",
	display.StatusWarning: "!",
	display.StatusError:   "✗",
	display.StatusInfo:    " ",
}

// Renderer renders views with lipgloss styles
type Renderer struct {
	output io.Writer
	styles styles.Registry
}

// New creates a new terminal renderer
func New(w io.Writer) *Renderer {
	return &Renderer{output: w, styles: styles.Default()}
}

// RenderResult renders a command report
func (r *Renderer) RenderResult(result interface{}) error {
	view, ok := display.FromResult(result)
	if !ok {
		_, err := fmt.Fprintf(r.output, "%+v\n", result)
		return err
	}
	_, err := fmt.Fprintln(r.output, r.renderView(view))
	return err
}

func (r *Renderer) renderView(view *display.View) string {
	var blocks []string

	title := r.styles.Get("Title").Render(view.Title)
	if view.DryRun {
		title = lipgloss.JoinHorizontal(lipgloss.Top, title, " ", r.styles.Get("DryRun").Render("DRY RUN"))
	}
	blocks = append(blocks, title)

	for _, section := range view.Sections {
		var b strings.Builder
		b.WriteString(r.styles.Get("Heading").Render(section.Heading))
		if section.Note != "" {
			b.WriteString("  ")
			b.WriteString(r.styles.Get("Note").Render(section.Note))
		}
		for _, row := range section.Rows {
			status := r.styles.Get(string(row.Status))
			b.WriteString("\n")
			b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top,
				status.Render(statusMarks[row.Status]),
				r.styles.Get("Label").Render(row.Label),
				r.styles.Get("Detail").Render(row.Detail),
			))
		}
		blocks = append(blocks, b.String())
	}
	return strings.Join(blocks, "\n\n")
}

// RenderError renders an error followed by its details, one per line
func (r *Renderer) RenderError(err error) error {
	var b strings.Builder
	b.WriteString(r.styles.Get("error").Render("Error:"))
	b.WriteString(" ")
	b.WriteString(err.Error())

	details := errors.GetErrorDetails(err)
	keys := make([]string, 0, len(details))
	for k := range details {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		b.WriteString("\n")
		b.WriteString(r.styles.Get("Note").Render(fmt.Sprintf("  %s: %v", k, details[k])))
	}
	_, werr := fmt.Fprintln(r.output, b.String())
	return werr
}

// RenderMessage renders a simple message
func (r *Renderer) RenderMessage(msg string) error {
	_, err := fmt.Fprintln(r.output, r.styles.Get("info").Render(msg))
	return err
}
