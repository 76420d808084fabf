package components

import (
	"bytes"
	"fmt"
	"strings"
)

const templatePrefix = "templates/components/"

// NewDefaultRegistry returns a registry with one descriptor per built-in
// field type.
func NewDefaultRegistry() *Registry {
	registry := New()
	registry.MustRegister("text", Descriptor{
		Renderer: templateComponentRenderer("forms.text", templatePrefix+"text.tmpl"),
	})
	selectRenderer := templateComponentRenderer("forms.select", templatePrefix+"select.tmpl")
	registry.MustRegister("select", Descriptor{Renderer: selectRenderer})
	registry.MustRegister("multiselect", Descriptor{Renderer: selectRenderer})
	registry.MustRegister("checkbox", Descriptor{
		Renderer: templateComponentRenderer("forms.checkbox", templatePrefix+"checkbox.tmpl"),
	})
	registry.MustRegister("radio", Descriptor{
		Renderer: templateComponentRenderer("forms.radio", templatePrefix+"radio.tmpl"),
	})
	registry.MustRegister("image", Descriptor{
		Renderer: templateComponentRenderer("forms.image", templatePrefix+"image.tmpl"),
	})
	return registry
}

func templateComponentRenderer(partialKey, templateName string) Renderer {
	return func(buf *bytes.Buffer, control Control, data ComponentData) error {
		if data.Template == nil {
			return fmt.Errorf("components: template renderer not configured for %q", templateName)
		}
		name := templateName
		if candidate := strings.TrimSpace(data.Partials[partialKey]); candidate != "" {
			name = candidate
		}
		_, err := data.Template.RenderTemplate(name, map[string]any{"control": control}, buf)
		if err != nil {
			return fmt.Errorf("components: render %q: %w", name, err)
		}
		return nil
	}
}
