package render

import (
	"path"
	"strings"

	theme "github.com/goliatone/go-theme"
)

// Theme token keys read by the HTML renderer.
const (
	TokenText       = "text"
	TokenBackground = "background"
	TokenBorder     = "border"
	TokenFontSize   = "font-size"
	TokenAccent     = "accent"
)

// ThemeConfig resolves a theme selection into renderer configuration. Variant
// tokens, templates and asset files override the manifest's own. Every token
// is also exposed as a "--<token>" CSS variable.
func ThemeConfig(selection *theme.Selection) *theme.RendererConfig {
	if selection == nil || selection.Manifest == nil {
		return nil
	}
	manifest := selection.Manifest
	name := selection.Theme
	if name == "" {
		name = manifest.Name
	}

	tokens := mergeStrings(manifest.Tokens, nil)
	partials := mergeStrings(manifest.Templates, nil)
	files := mergeStrings(manifest.Assets.Files, nil)
	prefix := manifest.Assets.Prefix
	if variant, ok := manifest.Variants[selection.Variant]; ok {
		tokens = mergeStrings(tokens, variant.Tokens)
		partials = mergeStrings(partials, variant.Templates)
		files = mergeStrings(files, variant.Assets.Files)
		if variant.Assets.Prefix != "" {
			prefix = variant.Assets.Prefix
		}
	}

	cfg := &theme.RendererConfig{
		Theme:    name,
		Variant:  selection.Variant,
		Partials: partials,
		Tokens:   tokens,
		CSSVars:  cssVars(tokens),
	}
	cfg.AssetURL = func(key string) string {
		file, ok := files[key]
		if !ok || file == "" {
			return ""
		}
		if strings.Contains(file, "://") || strings.HasPrefix(file, "/") {
			return file
		}
		return path.Join(prefix, file)
	}
	return cfg
}

// ThemeFromTokens builds renderer configuration from a flat token map, as
// read from configuration files.
func ThemeFromTokens(name, variant string, tokens map[string]string) *theme.RendererConfig {
	if name == "" && len(tokens) == 0 {
		return nil
	}
	return ThemeConfig(&theme.Selection{
		Theme:   name,
		Variant: variant,
		Manifest: &theme.Manifest{
			Name:   name,
			Tokens: mergeStrings(tokens, nil),
		},
	})
}

func mergeStrings(base, override map[string]string) map[string]string {
	if len(base) == 0 && len(override) == 0 {
		return nil
	}
	out := make(map[string]string, len(base)+len(override))
	for key, value := range base {
		out[key] = value
	}
	for key, value := range override {
		out[key] = value
	}
	return out
}

func cssVars(tokens map[string]string) map[string]string {
	if len(tokens) == 0 {
		return nil
	}
	out := make(map[string]string, len(tokens))
	for key, value := range tokens {
		out["--"+strings.TrimPrefix(key, "--")] = value
	}
	return out
}
