package render_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	theme "github.com/goliatone/go-theme"

	"github.com/goliatone/go-formbuilder/pkg/render"
)

func TestThemeConfig_VariantOverrides(t *testing.T) {
	manifest := &theme.Manifest{
		Name:   "acme",
		Tokens: map[string]string{"accent": "#123456", "text": "#111111"},
		Assets: theme.Assets{
			Prefix: "/assets/themes/acme",
			Files:  map[string]string{"stylesheet": "theme.css"},
		},
		Variants: map[string]theme.Variant{
			"dark": {Tokens: map[string]string{"text": "#eeeeee"}},
		},
	}

	cfg := render.ThemeConfig(&theme.Selection{Theme: "acme", Variant: "dark", Manifest: manifest})
	if cfg == nil {
		t.Fatalf("expected config")
	}
	wantTokens := map[string]string{"accent": "#123456", "text": "#eeeeee"}
	if diff := cmp.Diff(wantTokens, cfg.Tokens); diff != "" {
		t.Fatalf("tokens mismatch (-want +got):\n%s", diff)
	}
	if cfg.CSSVars["--text"] != "#eeeeee" {
		t.Fatalf("css vars not derived from variant tokens: %v", cfg.CSSVars)
	}
	if got := cfg.AssetURL("stylesheet"); got != "/assets/themes/acme/theme.css" {
		t.Fatalf("unexpected asset url %q", got)
	}
	if got := cfg.AssetURL("missing"); got != "" {
		t.Fatalf("unknown asset should resolve to empty, got %q", got)
	}
}

func TestThemeFromTokens(t *testing.T) {
	if render.ThemeFromTokens("", "", nil) != nil {
		t.Fatalf("empty input should yield nil config")
	}
	cfg := render.ThemeFromTokens("plain", "", map[string]string{"border": "#ccc"})
	if cfg.Theme != "plain" || cfg.CSSVars["--border"] != "#ccc" {
		t.Fatalf("unexpected config: %+v", cfg)
	}
}
