package render

import (
	theme "github.com/goliatone/go-theme"
)

// Mode selects how a template is rendered.
type Mode string

const (
	// ModeFill renders an interactive form that posts answers.
	ModeFill Mode = "fill"
	// ModePreview renders the same controls disabled, without a submit button.
	ModePreview Mode = "preview"
)

// RenderOptions carry per-request data into a renderer without changing the
// template itself.
type RenderOptions struct {
	Mode Mode
	// Action is the form's submit URL. Empty means the current URL.
	Action string
	// Method defaults to POST. Verbs other than GET and POST are sent as POST
	// with a hidden _method input.
	Method string
	// Values prefill controls, keyed by field name.
	Values map[string]any
	// Errors are field level messages keyed by field name.
	Errors map[string][]string
	// FormErrors are shown above the fields.
	FormErrors []string
	// Hidden inputs emitted inside the form.
	Hidden map[string]string
	Theme  *theme.RendererConfig
}

// Preview reports whether controls should be rendered read-only.
func (o RenderOptions) Preview() bool {
	return o.Mode == ModePreview
}
