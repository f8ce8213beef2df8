// Package text provides plain text output without any styling
package text

import (
	"fmt"
	"io"

	"github.com/openslx/slotctl/pkg/ui/display"
)

// Renderer provides plain text output without colors or styling
type Renderer struct {
	output io.Writer
}

// New creates a new text renderer
func New(output io.Writer) *Renderer {
	return &Renderer{output: output}
}

// RenderResult renders a command report as plain text
func (r *Renderer) RenderResult(result interface{}) error {
	view, ok := display.FromResult(result)
	if !ok {
		_, err := fmt.Fprintf(r.output, "%+v\n", result)
		return err
	}
	return r.renderView(view)
}

func (r *Renderer) renderView(view *display.View) error {
	title := view.Title
	if view.DryRun {
		title += " (dry run)"
	}
	if _, err := fmt.Fprintln(r.output, title); err != nil {
		return err
	}
	for _, section := range view.Sections {
		heading := section.Heading
		if section.Note != "" {
			heading += ": " + section.Note
		}
		if _, err := fmt.Fprintf(r.output, "\n%s\n", heading); err != nil {
			return err
		}
		for _, row := range section.Rows {
			if _, err := fmt.Fprintf(r.output, "  [%-7s] %-14s %s\n", row.Status, row.Label, row.Detail); err != nil {
				return err
			}
		}
	}
	return nil
}

// RenderError renders an error as plain text
func (r *Renderer) RenderError(err error) error {
	_, werr := fmt.Fprintf(r.output, "Error: %v\n", err)
	return werr
}

// RenderMessage renders a simple message
func (r *Renderer) RenderMessage(msg string) error {
	_, err := fmt.Fprintln(r.output, msg)
	return err
}
