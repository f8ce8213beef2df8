// Package ui renders command reports for operators. Reports are turned into
// a display.View first so the terminal and text renderers share one layout;
// the JSON renderer encodes the reports themselves.
package ui

import (
	"fmt"
	"io"
	"os"

	"github.com/openslx/slotctl/pkg/ui/json"
	"github.com/openslx/slotctl/pkg/ui/terminal"
	"github.com/openslx/slotctl/pkg/ui/text"
)

// Renderer is the common interface for all output renderers
type Renderer interface {
	// RenderResult renders a command report
	RenderResult(result interface{}) error

	// RenderError renders an error with appropriate formatting
	RenderError(err error) error

	// RenderMessage renders a simple message
	RenderMessage(msg string) error
}

// NewRenderer creates a renderer for format writing to output
func NewRenderer(format Format, output io.Writer) (Renderer, error) {
	switch format {
	case FormatAuto:
		if file, ok := output.(*os.File); ok {
			return NewRenderer(DetectFormat(file), output)
		}
		return NewRenderer(FormatText, output)
	case FormatTerminal:
		return terminal.New(output), nil
	case FormatText:
		return text.New(output), nil
	case FormatJSON:
		return json.New(output), nil
	default:
		return nil, fmt.Errorf("unknown format: %v", format)
	}
}
