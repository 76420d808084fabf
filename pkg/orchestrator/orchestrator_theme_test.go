package orchestrator

import (
	"context"
	"errors"
	"testing"

	theme "github.com/goliatone/go-theme"

	"github.com/goliatone/go-formbuilder/pkg/model"
	"github.com/goliatone/go-formbuilder/pkg/render"
)

func TestOrchestrator_PassesThemeConfigToRenderer(t *testing.T) {
	manifest := &theme.Manifest{
		Name:    "acme",
		Version: "1.0.0",
		Tokens: map[string]string{
			"brand": "#123456",
		},
	}
	selection := &theme.Selection{
		Theme:    "acme",
		Variant:  "custom-variant",
		Manifest: manifest,
	}
	selector := &stubThemeSelector{selection: selection}

	renderer := &captureRenderer{}
	registry := render.NewRegistry()
	registry.MustRegister(renderer)

	orch := New(
		WithRegistry(registry),
		WithDefaultRenderer(renderer.Name()),
		WithThemeSelector(selector),
		WithTheme("configured", "light"),
	)

	_, err := orch.Generate(context.Background(), Request{
		Template:     &model.Template{ID: "t"},
		ThemeName:    "custom-theme",
		ThemeVariant: "custom-variant",
	})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	if len(selector.calls) != 1 {
		t.Fatalf("expected selector called once, got %d", len(selector.calls))
	}
	if selector.calls[0].name != "custom-theme" || selector.calls[0].variant != "custom-variant" {
		t.Fatalf("unexpected selector args: %+v", selector.calls[0])
	}

	cfg := renderer.options.Theme
	if cfg == nil {
		t.Fatalf("expected theme config passed to renderer")
	}
	if cfg.Theme != selection.Theme {
		t.Fatalf("theme name mismatch: want %s, got %s", selection.Theme, cfg.Theme)
	}
	if cfg.Variant != selection.Variant {
		t.Fatalf("theme variant mismatch: want %s, got %s", selection.Variant, cfg.Variant)
	}
	if cfg.Tokens["brand"] != "#123456" {
		t.Fatalf("tokens not propagated")
	}
	if cfg.CSSVars["--brand"] != "#123456" {
		t.Fatalf("css vars not derived from tokens")
	}
}

func TestOrchestrator_RequestThemeWins(t *testing.T) {
	selector := &stubThemeSelector{selection: &theme.Selection{Theme: "acme", Manifest: &theme.Manifest{Name: "acme"}}}
	renderer := &captureRenderer{}
	registry := render.NewRegistry()
	registry.MustRegister(renderer)

	orch := New(WithRegistry(registry), WithThemeSelector(selector), WithTheme("acme", "dark"))
	preset := &theme.RendererConfig{Theme: "inline"}
	_, err := orch.Generate(context.Background(), Request{
		Template:      &model.Template{ID: "t"},
		RenderOptions: render.RenderOptions{Theme: preset},
	})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if len(selector.calls) != 0 {
		t.Fatalf("selector should not run when options carry a theme")
	}
	if renderer.options.Theme != preset {
		t.Fatalf("expected request theme to be passed through")
	}

	if _, err := orch.Generate(context.Background(), Request{Template: &model.Template{ID: "t"}}); err != nil {
		t.Fatalf("generate: %v", err)
	}
	if selector.calls[0].name != "acme" || selector.calls[0].variant != "dark" {
		t.Fatalf("configured theme not used: %+v", selector.calls[0])
	}
}

func TestOrchestrator_ThemeSelectionError(t *testing.T) {
	boom := errors.New("no such theme")
	registry := render.NewRegistry()
	registry.MustRegister(&captureRenderer{})

	orch := New(WithRegistry(registry), WithThemeSelector(&stubThemeSelector{err: boom}))
	_, err := orch.Generate(context.Background(), Request{Template: &model.Template{ID: "t"}})
	if !errors.Is(err, boom) {
		t.Fatalf("expected selector error, got %v", err)
	}
}

func TestManifestSelectorMergesVariant(t *testing.T) {
	manifest := &theme.Manifest{
		Name:    "acme",
		Version: "1.0.0",
		Tokens: map[string]string{
			"brand": "#123456",
			"text":  "#111111",
		},
		Templates: map[string]string{
			"forms.text": "themes/acme/text.tmpl",
		},
		Assets: theme.Assets{
			Prefix: "/assets/themes/acme",
			Files: map[string]string{
				"stylesheet": "theme.css",
			},
		},
		Variants: map[string]theme.Variant{
			"dark": {
				Tokens: map[string]string{
					"brand": "#654321",
				},
				Templates: map[string]string{
					"forms.checkbox": "themes/acme/dark/checkbox.tmpl",
				},
				Assets: theme.Assets{
					Files: map[string]string{
						"logo": "logo.dark.svg",
					},
				},
			},
		},
	}

	selector, err := NewManifestSelector(manifest)
	if err != nil {
		t.Fatalf("new selector: %v", err)
	}
	selector.SetDefaults("", "dark")

	renderer := &captureRenderer{}
	registry := render.NewRegistry()
	registry.MustRegister(renderer)
	orch := New(WithRegistry(registry), WithThemeSelector(selector))

	if _, err := orch.Generate(context.Background(), Request{Template: &model.Template{ID: "t"}}); err != nil {
		t.Fatalf("generate: %v", err)
	}

	cfg := renderer.options.Theme
	if cfg == nil {
		t.Fatalf("expected theme config passed to renderer")
	}
	if cfg.Theme != "acme" || cfg.Variant != "dark" {
		t.Fatalf("unexpected selection %s/%s", cfg.Theme, cfg.Variant)
	}
	if cfg.Partials["forms.text"] != "themes/acme/text.tmpl" {
		t.Fatalf("expected base template override, got %s", cfg.Partials["forms.text"])
	}
	if cfg.Partials["forms.checkbox"] != "themes/acme/dark/checkbox.tmpl" {
		t.Fatalf("expected variant template override, got %s", cfg.Partials["forms.checkbox"])
	}
	if cfg.Tokens["brand"] != "#654321" || cfg.Tokens["text"] != "#111111" {
		t.Fatalf("tokens not merged with variant override: %v", cfg.Tokens)
	}
	if got := cfg.AssetURL("logo"); got != "/assets/themes/acme/logo.dark.svg" {
		t.Fatalf("unexpected logo asset url: %s", got)
	}
	if got := cfg.AssetURL("stylesheet"); got != "/assets/themes/acme/theme.css" {
		t.Fatalf("unexpected stylesheet asset url: %s", got)
	}

	if _, err := selector.Select("other", ""); err == nil {
		t.Fatalf("expected unknown theme error")
	}
	sel, err := selector.Select("ACME", "missing")
	if err != nil {
		t.Fatalf("select: %v", err)
	}
	if sel.Variant != "" {
		t.Fatalf("unknown variant should fall back to the base manifest, got %q", sel.Variant)
	}
}

func TestManifestSelectorRejectsDuplicates(t *testing.T) {
	_, err := NewManifestSelector(&theme.Manifest{Name: "a"}, &theme.Manifest{Name: " A "})
	if err == nil {
		t.Fatalf("expected duplicate theme error")
	}
	if _, err := NewManifestSelector(&theme.Manifest{}); err == nil {
		t.Fatalf("expected missing name error")
	}
}

type captureRenderer struct {
	options render.RenderOptions
}

func (r *captureRenderer) Name() string {
	return "capture"
}

func (r *captureRenderer) ContentType() string {
	return "text/plain"
}

func (r *captureRenderer) Render(_ context.Context, tmpl model.Template, opts render.RenderOptions) ([]byte, error) {
	r.options = opts
	return []byte(tmpl.ID), nil
}

type selectorCall struct {
	name    string
	variant string
}

type stubThemeSelector struct {
	selection *theme.Selection
	err       error
	calls     []selectorCall
}

func (s *stubThemeSelector) Select(name, variant string, _ ...theme.QueryOption) (*theme.Selection, error) {
	s.calls = append(s.calls, selectorCall{name: name, variant: variant})
	return s.selection, s.err
}
