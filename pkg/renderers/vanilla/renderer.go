// Package vanilla renders templates as server-side HTML: the form itself
// plus the catalog, builder, filler and receipt pages around it.
package vanilla

import (
	"context"
	"errors"
	"fmt"
	"html"
	"io"
	"io/fs"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/goliatone/go-formbuilder/pkg/model"
	"github.com/goliatone/go-formbuilder/pkg/render"
	rendertemplate "github.com/goliatone/go-formbuilder/pkg/render/template"
	gotemplate "github.com/goliatone/go-formbuilder/pkg/render/template/gotemplate"
	"github.com/goliatone/go-formbuilder/pkg/renderers/vanilla/components"
	"github.com/goliatone/go-formbuilder/pkg/validation"
)

// Name is the registry name of the HTML renderer.
const Name = "vanilla"

const (
	templatePage    = "templates/page.tmpl"
	templateForm    = "templates/form.tmpl"
	templateCatalog = "templates/catalog.tmpl"
	templateBuilder = "templates/builder.tmpl"
	templateReceipt = "templates/receipt.tmpl"
)

type Option func(*config)

type config struct {
	templateFS       fs.FS
	templateDir      string
	templateRenderer rendertemplate.TemplateRenderer
	registry         *components.Registry
	logger           *log.Logger
	reload           bool
	routes           Routes
	title            string
}

// WithTemplatesFS supplies an alternate template bundle via fs.FS.
func WithTemplatesFS(files fs.FS) Option {
	return func(cfg *config) {
		if files != nil {
			cfg.templateFS = files
		}
	}
}

// WithTemplatesDir loads templates from a directory on disk. Templates missing
// from the directory fall back to the embedded bundle.
func WithTemplatesDir(path string) Option {
	return func(cfg *config) {
		cfg.templateDir = strings.TrimSpace(path)
	}
}

// WithTemplateRenderer injects a custom template renderer implementation.
func WithTemplateRenderer(renderer rendertemplate.TemplateRenderer) Option {
	return func(cfg *config) {
		if renderer != nil {
			cfg.templateRenderer = renderer
		}
	}
}

// WithComponentRegistry replaces the per-type control renderers.
func WithComponentRegistry(registry *components.Registry) Option {
	return func(cfg *config) {
		if registry != nil {
			cfg.registry = registry
		}
	}
}

func WithLogger(logger *log.Logger) Option {
	return func(cfg *config) {
		if logger != nil {
			cfg.logger = logger
		}
	}
}

// WithReload re-reads templates on every render.
func WithReload(reload bool) Option {
	return func(cfg *config) {
		cfg.reload = reload
	}
}

// WithRoutes overrides the URLs page views link and post to.
func WithRoutes(routes Routes) Option {
	return func(cfg *config) {
		cfg.routes = routes
	}
}

// WithTitle sets the site title shown in page headers.
func WithTitle(title string) Option {
	return func(cfg *config) {
		if strings.TrimSpace(title) != "" {
			cfg.title = title
		}
	}
}

type Renderer struct {
	templates rendertemplate.TemplateRenderer
	registry  *components.Registry
	logger    *log.Logger
	routes    Routes
	title     string
}

var _ render.Renderer = (*Renderer)(nil)

// New constructs the vanilla renderer applying any provided options.
func New(options ...Option) (*Renderer, error) {
	cfg := config{
		templateFS: TemplatesFS(),
		routes:     DefaultRoutes(),
		title:      "Form Builder",
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(&cfg)
	}

	renderer := cfg.templateRenderer
	if renderer == nil {
		engine, err := gotemplate.New(
			gotemplate.WithFS(cfg.templateFS),
			gotemplate.WithBaseDir(cfg.templateDir),
			gotemplate.WithExtension(".tmpl"),
			gotemplate.WithReload(cfg.reload),
		)
		if err != nil {
			return nil, fmt.Errorf("vanilla renderer: configure template renderer: %w", err)
		}
		renderer = engine
	}

	registry := cfg.registry
	if registry == nil {
		registry = components.NewDefaultRegistry()
	}
	logger := cfg.logger
	if logger == nil {
		logger = log.New(io.Discard)
	}

	return &Renderer{
		templates: renderer,
		registry:  registry,
		logger:    logger,
		routes:    cfg.routes,
		title:     cfg.title,
	}, nil
}

func (r *Renderer) Name() string {
	return Name
}

func (r *Renderer) ContentType() string {
	return "text/html; charset=utf-8"
}

// Routes returns the URLs the page views use.
func (r *Renderer) Routes() Routes {
	return r.routes
}

// Title is the site title shown in page headers.
func (r *Renderer) Title() string {
	return r.title
}

// Render returns a standalone HTML document containing the form.
func (r *Renderer) Render(ctx context.Context, tmpl model.Template, options render.RenderOptions) ([]byte, error) {
	form, stylesheets, err := r.renderForm(ctx, tmpl, options, "")
	if err != nil {
		return nil, err
	}
	return r.page(displayName(tmpl.Name), form, options, stylesheets)
}

// RenderForm returns only the form markup.
func (r *Renderer) RenderForm(ctx context.Context, tmpl model.Template, options render.RenderOptions) (string, error) {
	form, _, err := r.renderForm(ctx, tmpl, options, "")
	return form, err
}

// RenderCatalog renders the template list.
func (r *Renderer) RenderCatalog(ctx context.Context, page CatalogPage) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	entries, err := buildCatalogEntries(page.Entries, r.routes)
	if err != nil {
		return nil, fmt.Errorf("vanilla renderer: %w", err)
	}
	data := map[string]any{
		"entries":     entries,
		"new_url":     r.routes.NewTemplate,
		"receipt_url": r.routes.Receipt,
		"has_last":    page.Last != nil,
		"flash":       page.Flash,
		"error":       page.Error,
		"export_url":  r.routes.Templates + "/export",
		"import_url":  r.routes.Templates + "/import",
		"entry_count": len(entries),
	}
	body, err := r.templates.RenderTemplate(templateCatalog, data)
	if err != nil {
		return nil, fmt.Errorf("vanilla renderer: render catalog: %w", err)
	}
	return r.page("Templates", body, render.RenderOptions{}, nil)
}

// RenderBuilder renders the builder with its field editors and a disabled
// live preview of the template being built.
func (r *Renderer) RenderBuilder(ctx context.Context, page BuilderPage) ([]byte, error) {
	previewOptions := render.RenderOptions{Mode: render.ModePreview}
	preview, stylesheets, err := r.renderForm(ctx, page.Template, previewOptions, "preview-")
	if err != nil {
		return nil, err
	}
	description, err := RenderMarkdown(page.Template.Description)
	if err != nil {
		return nil, fmt.Errorf("vanilla renderer: render description: %w", err)
	}

	heading := "New template"
	if page.Editing {
		heading = "Edit template"
	}
	data := map[string]any{
		"heading":          heading,
		"name":             page.Template.Name,
		"description":      page.Template.Description,
		"description_html": description,
		"fields":           buildFieldEditors(page.Template.Fields, r.routes),
		"field_types":      fieldTypeChoices(),
		"issues":           issueMessages(page.Issues),
		"flash":            page.Flash,
		"error":            page.Error,
		"preview":          preview,
		"meta_url":         r.routes.Builder + "/meta",
		"add_url":          r.routes.Builder + "/fields",
		"save_url":         r.routes.Builder + "/save",
		"cancel_url":       r.routes.Cancel,
	}
	body, err := r.templates.RenderTemplate(templateBuilder, data)
	if err != nil {
		return nil, fmt.Errorf("vanilla renderer: render builder: %w", err)
	}
	return r.page(heading, body, render.RenderOptions{}, stylesheets)
}

// RenderFillPage renders a fillable form posting to the fill route.
func (r *Renderer) RenderFillPage(ctx context.Context, page FillPage) ([]byte, error) {
	options := page.Options
	options.Mode = render.ModeFill
	if options.Action == "" {
		options.Action = r.routes.Fill
	}
	options.Hidden = render.MergeHiddenFields(options.Hidden, render.TemplateField(page.Template.ID))

	form, stylesheets, err := r.renderForm(ctx, page.Template, options, "")
	if err != nil {
		return nil, err
	}
	var b strings.Builder
	if page.Flash != "" {
		b.WriteString(`<p class="fb-flash" role="status">`)
		b.WriteString(html.EscapeString(page.Flash))
		b.WriteString("</p>\n")
	}
	b.WriteString(form)
	b.WriteString(`<form class="fb-cancel" method="post" action="` + html.EscapeString(r.routes.Cancel) + `"><button type="submit" class="fb-button fb-button-secondary">Back to templates</button></form>` + "\n")
	return r.page(displayName(page.Template.Name), b.String(), options, stylesheets)
}

// RenderReceipt renders the answers of an accepted submission.
func (r *Renderer) RenderReceipt(ctx context.Context, page ReceiptPage) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data := map[string]any{
		"name":         displayName(page.Template.Name),
		"submission":   page.Submission.ID,
		"submitted_at": formatTime(page.Submission.SubmittedAt),
		"rows":         buildReceiptRows(page.Template, page.Submission),
		"home_url":     r.routes.Home,
	}
	body, err := r.templates.RenderTemplate(templateReceipt, data)
	if err != nil {
		return nil, fmt.Errorf("vanilla renderer: render receipt: %w", err)
	}
	return r.page("Submission received", body, render.RenderOptions{}, nil)
}

func (r *Renderer) renderForm(ctx context.Context, tmpl model.Template, options render.RenderOptions, prefix string) (string, []string, error) {
	if r.templates == nil {
		return "", nil, errors.New("vanilla renderer: template renderer is nil")
	}
	if err := ctx.Err(); err != nil {
		return "", nil, err
	}

	fields := newComponentRenderer(r.templates, r.registry, r.logger, options, prefix)
	markup := make([]string, 0, len(tmpl.Fields))
	for _, field := range tmpl.Fields {
		out, err := fields.render(tmpl.ID, field)
		if err != nil {
			return "", nil, fmt.Errorf("vanilla renderer: %w", err)
		}
		if out != "" {
			markup = append(markup, out)
		}
	}

	description, err := RenderMarkdown(tmpl.Description)
	if err != nil {
		return "", nil, fmt.Errorf("vanilla renderer: render description: %w", err)
	}
	method, override := render.FormMethod(options.Method)
	hidden := options.Hidden
	if override != "" {
		hidden = render.MergeHiddenFields(hidden, render.Hidden(render.MethodInput, override))
	}

	data := map[string]any{
		"form": map[string]any{
			"id":          tmpl.ID,
			"name":        displayName(tmpl.Name),
			"description": description,
			"action":      options.Action,
			"method":      method,
			"hidden":      render.SortedHiddenFields(hidden),
			"errors":      options.FormErrors,
			"fields":      markup,
			"preview":     options.Preview(),
			"empty":       len(markup) == 0,
		},
	}
	out, err := r.templates.RenderTemplate(templateForm, data)
	if err != nil {
		return "", nil, fmt.Errorf("vanilla renderer: render form: %w", err)
	}
	return out, fields.stylesheets(), nil
}

func (r *Renderer) page(title, body string, options render.RenderOptions, extra []string) ([]byte, error) {
	stylesheets := []string{r.routes.Assets + "/" + StylesheetName}
	stylesheets = append(stylesheets, extra...)

	data := map[string]any{
		"title":       title,
		"site":        r.title,
		"home_url":    r.routes.Home,
		"body":        body,
		"stylesheets": stylesheets,
		"theme_css":   themeCSS(options.Theme),
		"page_class":  string(ClassPage),
	}
	out, err := r.templates.RenderTemplate(templatePage, data)
	if err != nil {
		return nil, fmt.Errorf("vanilla renderer: render page: %w", err)
	}
	return []byte(out), nil
}

// ErrorsFor maps validation issues onto render options so a failed
// submission can be shown again with inline messages.
func ErrorsFor(tmpl model.Template, result validation.Result, options render.RenderOptions) render.RenderOptions {
	render.MapIssues(tmpl, result.Issues).Apply(&options)
	return options
}
