package vanilla

import (
	"bytes"
	"fmt"
	"html"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/goliatone/go-formbuilder/pkg/media"
	"github.com/goliatone/go-formbuilder/pkg/model"
	"github.com/goliatone/go-formbuilder/pkg/render"
	"github.com/goliatone/go-formbuilder/pkg/render/template"
	"github.com/goliatone/go-formbuilder/pkg/renderers/vanilla/components"
	"github.com/goliatone/go-formbuilder/pkg/validation"
)

var unsafeIDChars = regexp.MustCompile(`[^A-Za-z0-9_-]+`)

type componentRenderer struct {
	templates template.TemplateRenderer
	registry  *components.Registry
	logger    *log.Logger
	options   render.RenderOptions
	prefix    string

	used map[string]struct{}
}

func newComponentRenderer(templates template.TemplateRenderer, registry *components.Registry, logger *log.Logger, options render.RenderOptions, prefix string) *componentRenderer {
	return &componentRenderer{
		templates: templates,
		registry:  registry,
		logger:    logger,
		options:   options,
		prefix:    prefix,
		used:      make(map[string]struct{}),
	}
}

// render returns the chrome and control markup for field. Field types without
// a registered component produce no markup and a warning.
func (r *componentRenderer) render(tmplID string, field model.Field) (string, error) {
	descriptor, ok := r.registry.Descriptor(string(field.Type))
	if !ok {
		r.logger.Warn("no component for field type; field skipped", "template", tmplID, "field", field.ID, "type", field.Type)
		return "", nil
	}

	control := r.control(field)
	data := components.ComponentData{Template: r.templates}
	if r.options.Theme != nil {
		data.Partials = r.options.Theme.Partials
	}

	var buf bytes.Buffer
	if err := descriptor.Renderer(&buf, control, data); err != nil {
		return "", fmt.Errorf("render %s field %q: %w", field.Type, field.ID, err)
	}
	r.used[descriptor.Name] = struct{}{}
	return buildFieldMarkup(field, control, buf.String(), r.options.Errors[field.Name]), nil
}

func (r *componentRenderer) stylesheets() []string {
	names := make([]string, 0, len(r.used))
	for name := range r.used {
		names = append(names, name)
	}
	slices.Sort(names)
	return r.registry.Stylesheets(names)
}

func (r *componentRenderer) control(field model.Field) components.Control {
	rule := model.ValidationRule{}
	if field.Validation != nil {
		rule = *field.Validation
	}
	style, class := fieldStyle(field.Customization, r.options.Theme)
	id := controlID(r.prefix, field)
	errs := r.options.Errors[field.Name]

	control := components.Control{
		ID:          id,
		Name:        field.Name,
		Type:        string(field.Type),
		Label:       field.Label,
		Placeholder: field.Placeholder,
		Title:       rule.CustomValidation,
		Required:    field.Required(),
		Disabled:    field.IsDisabled || r.options.Preview(),
		ReadOnly:    field.IsReadOnly,
		Invalid:     len(errs) > 0,
		Class:       class,
		Style:       style,
		DescribedBy: describedBy(id, field, errs),
	}

	value, present := r.options.Values[field.Name]
	if !present && field.DefaultValue != nil {
		value, present = field.DefaultValue, true
	}

	switch field.Type {
	case model.FieldTypeText:
		control.InputType = inputType(field.DataType)
		control.Value, _ = validation.TextValue(value)
		control.Pattern = rule.Pattern
		control.MinLength = formatInt(rule.MinLength)
		control.MaxLength = formatInt(rule.MaxLength)
		if field.DataType == model.DataTypeNumber {
			control.Min = formatFloat(rule.Min)
			control.Max = formatFloat(rule.Max)
		}
	case model.FieldTypeSelect, model.FieldTypeRadio:
		selected, _ := validation.TextValue(value)
		control.Choices = choices(id, field, present, selected)
	case model.FieldTypeMultiselect:
		control.Multiple = true
		selected, _ := validation.ListValue(value)
		control.Choices = choices(id, field, present, selected...)
	case model.FieldTypeCheckbox:
		if len(field.Options) == 0 {
			control.Toggle = true
			on, _ := value.(bool)
			if s, ok := value.(string); ok {
				on = s == "on" || s == "true"
			}
			control.Choices = []components.Choice{{ID: id, Label: field.Label, Value: "on", Selected: on}}
			break
		}
		control.Multiple = true
		selected, _ := validation.ListValue(value)
		control.Choices = choices(id, field, present, selected...)
	case model.FieldTypeImage:
		control.Accept = media.AcceptAttribute(rule.AllowedFormats)
		control.MaxSize = formatFloat(rule.Max)
		if s, ok := value.(string); ok && media.IsDataURL(s) {
			thumb, err := media.Thumbnail(s, media.ThumbnailSize)
			if err != nil {
				r.logger.Debug("image preview unavailable", "field", field.ID, "error", err)
			} else {
				control.ImagePreview = thumb
			}
		}
	}
	return control
}

func choices(id string, field model.Field, present bool, selected ...string) []components.Choice {
	out := make([]components.Choice, 0, len(field.Options))
	for i, opt := range field.Options {
		isSelected := opt.Checked && !present
		if present {
			isSelected = slices.Contains(selected, opt.Value)
		}
		out = append(out, components.Choice{
			ID:          fmt.Sprintf("%s-%d", id, i),
			Label:       opt.Label,
			Value:       opt.Value,
			Description: opt.Description,
			Selected:    isSelected,
			Disabled:    opt.Disabled,
		})
	}
	return out
}

func controlID(prefix string, field model.Field) string {
	key := field.ID
	if key == "" {
		key = field.Name
	}
	return prefix + unsafeIDChars.ReplaceAllString(key, "-")
}

func describedBy(id string, field model.Field, errs []string) string {
	var ids []string
	if strings.TrimSpace(field.Description) != "" {
		ids = append(ids, id+"-description")
	}
	if strings.TrimSpace(field.HelpText) != "" {
		ids = append(ids, id+"-help")
	}
	if len(errs) > 0 {
		ids = append(ids, id+"-errors")
	}
	return strings.Join(ids, " ")
}

func inputType(dataType model.DataType) string {
	switch dataType {
	case model.DataTypeNumber, model.DataTypeEmail, model.DataTypeDate, model.DataTypeTel, model.DataTypeURL:
		return string(dataType)
	default:
		return "text"
	}
}

func formatInt(v *int) string {
	if v == nil {
		return ""
	}
	return strconv.Itoa(*v)
}

func formatFloat(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}

// groupedControl reports whether the control renders several inputs and so
// cannot be targeted by a label's for attribute.
func groupedControl(control components.Control) bool {
	return !control.Toggle && (control.Type == string(model.FieldTypeRadio) || control.Type == string(model.FieldTypeCheckbox))
}

func buildFieldMarkup(field model.Field, control components.Control, markup string, errs []string) string {
	var b strings.Builder
	b.Grow(len(markup) + 256)

	b.WriteString(`<div class="` + string(ClassField) + ` fb-field-` + html.EscapeString(control.Type))
	if control.Invalid {
		b.WriteString(" " + string(ClassInvalid))
	}
	b.WriteString(`" data-field-type="` + html.EscapeString(control.Type) + `">` + "\n")

	if label := strings.TrimSpace(field.Label); label != "" && !control.Toggle {
		if groupedControl(control) {
			b.WriteString(`  <span class="` + string(ClassLabel) + `" id="` + control.ID + `-label">`)
		} else {
			b.WriteString(`  <label class="` + string(ClassLabel) + `" for="` + control.ID + `">`)
		}
		b.WriteString(html.EscapeString(label))
		if control.Required {
			b.WriteString(`<span class="` + string(ClassRequired) + `" aria-hidden="true"> *</span>`)
		}
		if groupedControl(control) {
			b.WriteString("</span>\n")
		} else {
			b.WriteString("</label>\n")
		}
	}

	for _, line := range strings.Split(markup, "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		b.WriteString("  " + line + "\n")
	}

	if desc := strings.TrimSpace(field.Description); desc != "" {
		b.WriteString(`  <p class="` + string(ClassDescription) + `" id="` + control.ID + `-description">` + html.EscapeString(desc) + "</p>\n")
	}
	if help := strings.TrimSpace(field.HelpText); help != "" {
		b.WriteString(`  <p class="` + string(ClassHelp) + `" id="` + control.ID + `-help">` + html.EscapeString(help) + "</p>\n")
	}
	if len(errs) > 0 {
		b.WriteString(`  <ul class="` + string(ClassErrors) + `" id="` + control.ID + `-errors" role="alert">` + "\n")
		for _, msg := range errs {
			b.WriteString("    <li>" + html.EscapeString(msg) + "</li>\n")
		}
		b.WriteString("  </ul>\n")
	}
	b.WriteString("</div>\n")
	return b.String()
}
