package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/log"
	theme "github.com/goliatone/go-theme"

	"github.com/goliatone/go-formbuilder/pkg/model"
	"github.com/goliatone/go-formbuilder/pkg/render"
	"github.com/goliatone/go-formbuilder/pkg/renderers/vanilla"
	"github.com/goliatone/go-formbuilder/pkg/store"
)

const defaultRendererName = vanilla.Name

// ErrTemplateRequired is returned when a request names neither a template
// nor a template id.
var ErrTemplateRequired = errors.New("orchestrator: template or template id is required")

// Option customises the orchestrator configuration.
type Option func(*Orchestrator)

// WithStore sets the store templates are looked up in by id.
func WithStore(s store.Store) Option {
	return func(o *Orchestrator) {
		if s != nil {
			o.store = s
		}
	}
}

// WithRegistry injects a renderer registry.
func WithRegistry(registry *render.Registry) Option {
	return func(o *Orchestrator) {
		o.registry = registry
	}
}

// WithDefaultRenderer overrides the renderer used when a request omits an
// explicit Renderer field.
func WithDefaultRenderer(name string) Option {
	return func(o *Orchestrator) {
		o.defaultRenderer = strings.TrimSpace(name)
	}
}

// WithDecorators registers decorators that run against a copy of the
// template before rendering.
func WithDecorators(decorators ...model.Decorator) Option {
	return func(o *Orchestrator) {
		if len(decorators) == 0 {
			return
		}
		o.decorators = append(o.decorators, decorators...)
	}
}

// WithThemeSelector resolves RenderOptions.Theme through selector when a
// request does not carry one.
func WithThemeSelector(selector theme.ThemeSelector) Option {
	return func(o *Orchestrator) {
		o.themeSelector = selector
	}
}

// WithTheme sets the theme and variant asked of the selector when a request
// does not name one.
func WithTheme(name, variant string) Option {
	return func(o *Orchestrator) {
		o.themeName = strings.TrimSpace(name)
		o.themeVariant = strings.TrimSpace(variant)
	}
}

func WithLogger(logger *log.Logger) Option {
	return func(o *Orchestrator) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// Orchestrator resolves a template, decorates a copy of it and hands it to
// the selected renderer together with the active theme.
type Orchestrator struct {
	store           store.Store
	registry        *render.Registry
	defaultRenderer string
	decorators      []model.Decorator
	themeSelector   theme.ThemeSelector
	themeName       string
	themeVariant    string
	logger          *log.Logger
	initialiseErr   error
}

// New constructs an Orchestrator. Without options it renders HTML through
// the vanilla renderer and looks templates up in an empty in-memory store.
func New(options ...Option) *Orchestrator {
	o := &Orchestrator{
		defaultRenderer: defaultRendererName,
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(o)
	}
	o.applyDefaults()
	return o
}

// Request describes a single render.
type Request struct {
	// TemplateID is looked up in the store when Template is nil.
	TemplateID string
	// Template bypasses the store.
	Template *model.Template

	// Renderer names the renderer to use. If empty, the orchestrator falls back
	// to the configured default renderer.
	Renderer string

	RenderOptions render.RenderOptions

	// ThemeName and ThemeVariant override the configured theme for this
	// request.
	ThemeName    string
	ThemeVariant string
}

// Generate renders the requested template and returns the renderer output.
func (o *Orchestrator) Generate(ctx context.Context, req Request) ([]byte, error) {
	if ctx == nil {
		return nil, errors.New("orchestrator: context is required")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := o.initialiseErr; err != nil {
		return nil, err
	}

	tmpl, err := o.resolveTemplate(ctx, req)
	if err != nil {
		return nil, err
	}
	if err := o.applyDecorators(&tmpl); err != nil {
		return nil, err
	}

	renderer, err := o.rendererFor(req.Renderer)
	if err != nil {
		return nil, err
	}

	options := req.RenderOptions
	if options.Theme == nil {
		cfg, err := o.resolveTheme(req)
		if err != nil {
			return nil, err
		}
		options.Theme = cfg
	}

	output, err := renderer.Render(ctx, tmpl, options)
	if err != nil {
		return nil, fmt.Errorf("orchestrator: render output: %w", err)
	}
	return output, nil
}

// Renderer returns the renderer a request naming name would use.
func (o *Orchestrator) Renderer(name string) (render.Renderer, error) {
	if err := o.initialiseErr; err != nil {
		return nil, err
	}
	return o.rendererFor(name)
}

// Theme resolves the configured theme, or nil when no selector is set.
func (o *Orchestrator) Theme() (*theme.RendererConfig, error) {
	return o.resolveTheme(Request{})
}

func (o *Orchestrator) resolveTemplate(ctx context.Context, req Request) (model.Template, error) {
	if req.Template != nil {
		return req.Template.Clone(), nil
	}
	id := strings.TrimSpace(req.TemplateID)
	if id == "" {
		return model.Template{}, ErrTemplateRequired
	}
	tmpl, err := o.store.Get(ctx, id)
	if err != nil {
		return model.Template{}, fmt.Errorf("orchestrator: load template %q: %w", id, err)
	}
	return tmpl.Clone(), nil
}

func (o *Orchestrator) resolveTheme(req Request) (*theme.RendererConfig, error) {
	if o.themeSelector == nil {
		return nil, nil
	}
	name := firstNonEmpty(req.ThemeName, o.themeName)
	variant := firstNonEmpty(req.ThemeVariant, o.themeVariant)
	selection, err := o.themeSelector.Select(name, variant)
	if err != nil {
		return nil, fmt.Errorf("orchestrator: select theme %q: %w", name, err)
	}
	return render.ThemeConfig(selection), nil
}

func (o *Orchestrator) rendererFor(name string) (render.Renderer, error) {
	if o.registry == nil {
		return nil, errors.New("orchestrator: renderer registry is nil")
	}

	target := name
	if target == "" {
		target = o.defaultRenderer
	}

	if target != "" {
		renderer, err := o.registry.Get(target)
		if err == nil {
			return renderer, nil
		}
		if name != "" {
			return nil, fmt.Errorf("orchestrator: renderer %q: %w", name, err)
		}
	}

	names := o.registry.List()
	if len(names) == 0 {
		return nil, errors.New("orchestrator: no renderers registered")
	}
	o.logger.Debug("default renderer unavailable", "renderer", target, "fallback", names[0])

	renderer, err := o.registry.Get(names[0])
	if err != nil {
		return nil, fmt.Errorf("orchestrator: renderer %q: %w", names[0], err)
	}
	return renderer, nil
}

func (o *Orchestrator) applyDecorators(tmpl *model.Template) error {
	for _, decorator := range o.decorators {
		if decorator == nil {
			continue
		}
		if err := decorator.Decorate(tmpl); err != nil {
			return fmt.Errorf("orchestrator: decorate template %q: %w", tmpl.ID, err)
		}
	}
	return nil
}

func (o *Orchestrator) applyDefaults() {
	if o.logger == nil {
		o.logger = log.New(io.Discard)
	}
	if o.store == nil {
		o.store = store.NewMemory()
	}
	if o.registry == nil {
		o.registry = render.NewRegistry()
		renderer, err := vanilla.New(vanilla.WithLogger(o.logger))
		if err != nil {
			o.initialiseErr = fmt.Errorf("orchestrator: default renderer: %w", err)
		} else {
			o.registry.MustRegister(renderer)
		}
	}
	if o.defaultRenderer == "" {
		o.defaultRenderer = defaultRendererName
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	return ""
}
