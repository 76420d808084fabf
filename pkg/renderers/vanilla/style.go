package vanilla

import (
	"regexp"
	"sort"
	"strings"

	theme "github.com/goliatone/go-theme"

	"github.com/goliatone/go-formbuilder/pkg/model"
	"github.com/goliatone/go-formbuilder/pkg/render"
)

// Defaults applied when neither the field nor the theme sets a value.
const (
	DefaultTextColor       = "#374151"
	DefaultBackgroundColor = "#ffffff"
	DefaultBorderColor     = "#93c5fd"
	DefaultFontSize        = "text-base"
	DefaultFontWeight      = "font-normal"
)

var (
	FontSizes   = []string{"text-xs", "text-sm", "text-base", "text-lg", "text-xl"}
	FontWeights = []string{"font-normal", "font-medium", "font-semibold", "font-bold"}
)

var (
	hexColor   = regexp.MustCompile(`^#(?:[0-9a-fA-F]{3,4}|[0-9a-fA-F]{6}|[0-9a-fA-F]{8})$`)
	funcColor  = regexp.MustCompile(`^(?:rgb|rgba|hsl|hsla)\([0-9.,%\s/]+\)$`)
	namedColor = regexp.MustCompile(`^[a-zA-Z]{3,24}$`)
	classToken = regexp.MustCompile(`^[A-Za-z0-9_:/.\-\[\]#]+$`)
	cssVarName = regexp.MustCompile(`^--[A-Za-z0-9_-]+$`)
)

// fieldStyle resolves the inline style and extra classes for a control.
// Field customization wins over theme tokens, which win over the defaults.
// Values that are not plain colors or class tokens are dropped.
func fieldStyle(custom *model.Customization, cfg *theme.RendererConfig) (string, string) {
	var c model.Customization
	if custom != nil {
		c = *custom
	}
	tokens := map[string]string{}
	if cfg != nil {
		tokens = cfg.Tokens
	}

	var (
		decls   []string
		classes []string
	)
	color := func(property string, values ...string) {
		for _, value := range values {
			value = strings.TrimSpace(value)
			if value == "" {
				continue
			}
			if safeColor(value) {
				decls = append(decls, property+": "+value)
				return
			}
			if cls := safeClasses(value); cls != "" {
				classes = append(classes, cls)
				return
			}
		}
	}
	color("color", c.Color, tokens[render.TokenText], DefaultTextColor)
	color("background-color", c.BackgroundColor, tokens[render.TokenBackground], DefaultBackgroundColor)
	color("border-color", c.BorderColor, tokens[render.TokenBorder], DefaultBorderColor)

	classes = append(classes,
		pick(FontSizes, c.FontSize, tokens[render.TokenFontSize], DefaultFontSize),
		pick(FontWeights, c.FontWeight, DefaultFontWeight),
	)
	if extra := safeClasses(c.CustomClass); extra != "" {
		classes = append(classes, extra)
	}
	return strings.Join(decls, "; "), strings.Join(classes, " ")
}

func pick(allowed []string, values ...string) string {
	for _, value := range values {
		value = strings.TrimSpace(value)
		for _, candidate := range allowed {
			if value == candidate {
				return value
			}
		}
	}
	return ""
}

func safeColor(value string) bool {
	return hexColor.MatchString(value) || funcColor.MatchString(value) || namedColor.MatchString(value)
}

// safeClasses keeps class tokens made of safe characters and drops the ones
// reserved for the renderer's own chrome.
func safeClasses(value string) string {
	var keep []string
	for _, token := range strings.Fields(value) {
		if strings.HasPrefix(token, "fb-") || !classToken.MatchString(token) {
			continue
		}
		keep = append(keep, token)
	}
	return strings.Join(keep, " ")
}

// themeCSS renders the theme's CSS variables as a :root block.
func themeCSS(cfg *theme.RendererConfig) string {
	if cfg == nil || len(cfg.CSSVars) == 0 {
		return ""
	}
	keys := make([]string, 0, len(cfg.CSSVars))
	for key := range cfg.CSSVars {
		if cssVarName.MatchString(key) && safeCSSValue(cfg.CSSVars[key]) {
			keys = append(keys, key)
		}
	}
	if len(keys) == 0 {
		return ""
	}
	sort.Strings(keys)
	var b strings.Builder
	b.WriteString(":root {")
	for _, key := range keys {
		b.WriteString(" ")
		b.WriteString(key)
		b.WriteString(": ")
		b.WriteString(cfg.CSSVars[key])
		b.WriteString(";")
	}
	b.WriteString(" }")
	return b.String()
}

func safeCSSValue(value string) bool {
	if value == "" {
		return false
	}
	return !strings.ContainsAny(value, "{};<>\\\"'") && !strings.Contains(strings.ToLower(value), "url(")
}
