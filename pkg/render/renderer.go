// Package render defines the renderer contract shared by the HTML and
// terminal front ends, plus helpers for error maps, hidden inputs and theme
// configuration.
package render

import (
	"context"

	"github.com/goliatone/go-formbuilder/pkg/model"
)

// Renderer turns a form template into bytes (HTML, text, ...).
type Renderer interface {
	Name() string
	ContentType() string
	Render(ctx context.Context, tmpl model.Template, options RenderOptions) ([]byte, error)
}
