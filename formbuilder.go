// Package formbuilder is the top-level entry point for building form
// templates, rendering them and validating submissions.
package formbuilder

import (
	"context"
	"io/fs"

	theme "github.com/goliatone/go-theme"

	"github.com/goliatone/go-formbuilder/pkg/model"
	"github.com/goliatone/go-formbuilder/pkg/orchestrator"
	"github.com/goliatone/go-formbuilder/pkg/render"
	"github.com/goliatone/go-formbuilder/pkg/renderers/vanilla"
	"github.com/goliatone/go-formbuilder/pkg/store"
	"github.com/goliatone/go-formbuilder/pkg/validation"
)

// Template is a named, ordered collection of fields.
type Template = model.Template

// Field is a single form field definition.
type Field = model.Field

// Submission is a filled-out answer map for one template.
type Submission = model.Submission

// RenderOptions carries per-request values, errors and theme settings.
type RenderOptions = render.RenderOptions

// NewOrchestrator exposes the orchestrator constructor from the top-level
// module.
func NewOrchestrator(options ...orchestrator.Option) *orchestrator.Orchestrator {
	return orchestrator.New(options...)
}

// RenderHTML renders tmpl as a standalone HTML form with the bundled
// renderer.
func RenderHTML(ctx context.Context, tmpl Template, options RenderOptions, opts ...orchestrator.Option) ([]byte, error) {
	gen := orchestrator.New(opts...)
	return gen.Generate(ctx, orchestrator.Request{
		Template:      &tmpl,
		Renderer:      vanilla.Name,
		RenderOptions: options,
	})
}

// RenderStored renders the template with id from s using the named renderer.
func RenderStored(ctx context.Context, s store.Store, id, rendererName string, opts ...orchestrator.Option) ([]byte, error) {
	gen := orchestrator.New(append([]orchestrator.Option{orchestrator.WithStore(s)}, opts...)...)
	return gen.Generate(ctx, orchestrator.Request{
		TemplateID: id,
		Renderer:   rendererName,
	})
}

// DecodeTemplates parses a JSON or YAML document holding one template or a
// list of them.
func DecodeTemplates(data []byte, format model.Format) ([]Template, error) {
	return model.DecodeTemplates(data, format)
}

// Validate checks answers against the template's field rules.
func Validate(tmpl Template, answers map[string]any) validation.Result {
	return validation.Validate(tmpl, answers)
}

// Lint reports structural problems in a template.
func Lint(tmpl Template) validation.Result {
	return validation.Lint(tmpl)
}

// WithThemeSelector passes a go-theme selector through to the orchestrator.
func WithThemeSelector(selector theme.ThemeSelector) orchestrator.Option {
	return orchestrator.WithThemeSelector(selector)
}

// EmbeddedTemplates exposes the built-in page and control templates so
// callers can reuse or override them.
func EmbeddedTemplates() fs.FS {
	return vanilla.TemplatesFS()
}

// AssetsFS exposes the bundled stylesheet for serving under the assets route.
func AssetsFS() fs.FS {
	return vanilla.AssetsFS()
}
