package vanilla

import (
	"fmt"
	"net/url"
	"slices"
	"strings"
	"time"

	"github.com/goliatone/go-formbuilder/pkg/builder"
	"github.com/goliatone/go-formbuilder/pkg/catalog"
	"github.com/goliatone/go-formbuilder/pkg/media"
	"github.com/goliatone/go-formbuilder/pkg/model"
	"github.com/goliatone/go-formbuilder/pkg/render"
	"github.com/goliatone/go-formbuilder/pkg/validation"
)

// Routes are the URLs page views post to.
type Routes struct {
	Home        string
	NewTemplate string
	Templates   string
	Builder     string
	Fill        string
	Cancel      string
	Receipt     string
	Assets      string
}

// DefaultRoutes matches the routes served by the bundled HTTP server.
func DefaultRoutes() Routes {
	return Routes{
		Home:        "/",
		NewTemplate: "/templates/new",
		Templates:   "/templates",
		Builder:     "/builder",
		Fill:        "/fill",
		Cancel:      "/cancel",
		Receipt:     "/submissions/last",
		Assets:      "/assets",
	}
}

func (r Routes) templateAction(id, action string) string {
	return r.Templates + "/" + url.PathEscape(id) + "/" + action
}

func (r Routes) fieldURL(id string, parts ...string) string {
	u := r.Builder + "/fields/" + url.PathEscape(id)
	for _, part := range parts {
		u += "/" + part
	}
	return u
}

// CatalogPage is the data for the template list.
type CatalogPage struct {
	Entries []catalog.Entry
	// Last is shown as a link to the most recent receipt, when set.
	Last  *model.Submission
	Flash string
	Error string
}

// BuilderPage is the data for the builder view. Template is the builder's
// live preview.
type BuilderPage struct {
	Template model.Template
	Editing  bool
	Issues   []validation.Issue
	Flash    string
	Error    string
}

// FillPage is the data for the filler view.
type FillPage struct {
	Template model.Template
	Options  render.RenderOptions
	Flash    string
}

// ReceiptPage shows one accepted submission.
type ReceiptPage struct {
	Template   model.Template
	Submission model.Submission
}

type choiceView struct {
	Value    string
	Label    string
	Selected bool
}

type catalogEntryView struct {
	ID          string
	Name        string
	Description string
	FieldCount  int
	Updated     string
	EditURL     string
	UseURL      string
	DeleteURL   string
}

type optionEditorView struct {
	Index       int
	Label       string
	Value       string
	Description string
	Checked     bool
	Disabled    bool
	InputType   string
	UpdateURL   string
	DeleteURL   string
}

type fieldEditorView struct {
	ID          string
	Position    int
	First       bool
	Last        bool
	Type        string
	Label       string
	Name        string
	Placeholder string
	Description string
	HelpText    string
	Required    bool
	Disabled    bool
	ReadOnly    bool

	IsText     bool
	IsSelect   bool
	IsToggle   bool
	IsImage    bool
	HasOptions bool
	Multiple   bool

	DataTypes   []choiceView
	Patterns    []choiceView
	Pattern     string
	MinLength   string
	MaxLength   string
	Min         string
	Max         string
	Message     string
	MaxSize     string
	Formats     []choiceView
	OptionLines string
	Options     []optionEditorView

	Color           string
	BackgroundColor string
	BorderColor     string
	FontSizes       []choiceView
	FontWeights     []choiceView
	CustomClass     string

	UpdateURL    string
	DeleteURL    string
	MoveURL      string
	AddOptionURL string
}

type receiptRowView struct {
	Label string
	Name  string
	Text  string
	Image string
}

func buildCatalogEntries(entries []catalog.Entry, routes Routes) ([]catalogEntryView, error) {
	out := make([]catalogEntryView, 0, len(entries))
	for _, entry := range entries {
		desc, err := RenderMarkdown(entry.Description)
		if err != nil {
			return nil, fmt.Errorf("render description of %q: %w", entry.ID, err)
		}
		out = append(out, catalogEntryView{
			ID:          entry.ID,
			Name:        displayName(entry.Name),
			Description: desc,
			FieldCount:  entry.FieldCount,
			Updated:     formatTime(entry.UpdatedAt),
			EditURL:     routes.templateAction(entry.ID, "edit"),
			UseURL:      routes.templateAction(entry.ID, "use"),
			DeleteURL:   routes.templateAction(entry.ID, "delete"),
		})
	}
	return out, nil
}

func buildFieldEditors(fields []model.Field, routes Routes) []fieldEditorView {
	out := make([]fieldEditorView, 0, len(fields))
	for i, field := range fields {
		rule := model.ValidationRule{}
		if field.Validation != nil {
			rule = *field.Validation
		}
		custom := model.Customization{}
		if field.Customization != nil {
			custom = *field.Customization
		}

		view := fieldEditorView{
			ID:          field.ID,
			Position:    i + 1,
			First:       i == 0,
			Last:        i == len(fields)-1,
			Type:        string(field.Type),
			Label:       field.Label,
			Name:        field.Name,
			Placeholder: field.Placeholder,
			Description: field.Description,
			HelpText:    field.HelpText,
			Required:    field.Required(),
			Disabled:    field.IsDisabled,
			ReadOnly:    field.IsReadOnly,
			IsText:      field.Type == model.FieldTypeText,
			IsSelect:    field.Type == model.FieldTypeSelect || field.Type == model.FieldTypeMultiselect,
			IsToggle:    field.Type == model.FieldTypeCheckbox || field.Type == model.FieldTypeRadio,
			IsImage:     field.Type == model.FieldTypeImage,
			HasOptions:  field.Type.HasOptions(),
			Multiple:    field.Type == model.FieldTypeMultiselect,
			Pattern:     rule.Pattern,
			MinLength:   formatInt(rule.MinLength),
			MaxLength:   formatInt(rule.MaxLength),
			Min:         formatFloat(rule.Min),
			Max:         formatFloat(rule.Max),
			Message:     rule.CustomValidation,
			MaxSize:     formatFloat(rule.Max),

			Color:           custom.Color,
			BackgroundColor: custom.BackgroundColor,
			BorderColor:     custom.BorderColor,
			CustomClass:     custom.CustomClass,
			FontSizes:       stringChoices(FontSizes, valueOr(custom.FontSize, DefaultFontSize)),
			FontWeights:     stringChoices(FontWeights, valueOr(custom.FontWeight, DefaultFontWeight)),

			UpdateURL:    routes.fieldURL(field.ID),
			DeleteURL:    routes.fieldURL(field.ID, "delete"),
			MoveURL:      routes.fieldURL(field.ID, "move"),
			AddOptionURL: routes.fieldURL(field.ID, "options"),
		}

		for _, dt := range model.DataTypes() {
			view.DataTypes = append(view.DataTypes, choiceView{
				Value:    string(dt),
				Label:    string(dt),
				Selected: dt == field.DataType || (field.DataType == "" && dt == model.DataTypeText),
			})
		}
		for _, preset := range builder.PatternPresets() {
			view.Patterns = append(view.Patterns, choiceView{
				Value:    preset.Pattern,
				Label:    preset.Label,
				Selected: preset.Pattern == rule.Pattern,
			})
		}
		for _, format := range media.Formats() {
			view.Formats = append(view.Formats, choiceView{
				Value:    format,
				Label:    strings.ToUpper(format),
				Selected: slices.Contains(rule.AllowedFormats, format),
			})
		}

		labels := make([]string, 0, len(field.Options))
		inputType := "checkbox"
		if field.Type == model.FieldTypeRadio {
			inputType = "radio"
		}
		for idx, opt := range field.Options {
			labels = append(labels, opt.Label)
			index := fmt.Sprint(idx)
			view.Options = append(view.Options, optionEditorView{
				Index:       idx,
				Label:       opt.Label,
				Value:       opt.Value,
				Description: opt.Description,
				Checked:     opt.Checked,
				Disabled:    opt.Disabled,
				InputType:   inputType,
				UpdateURL:   routes.fieldURL(field.ID, "options", index),
				DeleteURL:   routes.fieldURL(field.ID, "options", index, "delete"),
			})
		}
		view.OptionLines = strings.Join(labels, "\n")
		out = append(out, view)
	}
	return out
}

func buildReceiptRows(tmpl model.Template, submission model.Submission) []receiptRowView {
	rows := make([]receiptRowView, 0, len(tmpl.Fields))
	seen := make(map[string]struct{}, len(tmpl.Fields))
	for _, field := range tmpl.Fields {
		value, ok := submission.Data[field.Name]
		if !ok {
			continue
		}
		seen[field.Name] = struct{}{}
		rows = append(rows, receiptRow(field.Label, field.Name, field, value))
	}
	// Answers for fields no longer in the template are still listed.
	var extra []string
	for name := range submission.Data {
		if _, ok := seen[name]; !ok {
			extra = append(extra, name)
		}
	}
	slices.Sort(extra)
	for _, name := range extra {
		rows = append(rows, receiptRow(name, name, model.Field{}, submission.Data[name]))
	}
	return rows
}

func receiptRow(label, name string, field model.Field, value any) receiptRowView {
	row := receiptRowView{Label: displayName(label), Name: name}
	if s, ok := value.(string); ok && media.IsDataURL(s) {
		if thumb, err := media.Thumbnail(s, media.ThumbnailSize); err == nil {
			row.Image = thumb
			return row
		}
		row.Text = imageSummary(s)
		return row
	}
	if list, ok := validation.ListValue(value); ok && list != nil {
		labels := make([]string, 0, len(list))
		for _, v := range list {
			labels = append(labels, optionLabel(field, v))
		}
		row.Text = strings.Join(labels, ", ")
		return row
	}
	if b, ok := value.(bool); ok {
		row.Text = "No"
		if b {
			row.Text = "Yes"
		}
		return row
	}
	if s, ok := validation.TextValue(value); ok {
		row.Text = optionLabel(field, s)
		return row
	}
	row.Text = fmt.Sprint(value)
	return row
}

// imageSummary describes an image that could not be previewed.
func imageSummary(dataURL string) string {
	mime, _, _ := media.DecodeDataURL(dataURL)
	if w, h, err := media.Dimensions(dataURL); err == nil {
		return fmt.Sprintf("%s, %dx%d", mime, w, h)
	}
	return mime
}

func optionLabel(field model.Field, value string) string {
	if opt, ok := field.Option(value); ok && opt.Label != "" {
		return opt.Label
	}
	return value
}

func fieldTypeChoices() []choiceView {
	out := make([]choiceView, 0, len(model.FieldTypes()))
	for _, ft := range model.FieldTypes() {
		out = append(out, choiceView{Value: string(ft), Label: string(ft)})
	}
	return out
}

func stringChoices(values []string, selected string) []choiceView {
	out := make([]choiceView, 0, len(values))
	for _, v := range values {
		out = append(out, choiceView{Value: v, Label: v, Selected: v == selected})
	}
	return out
}

func issueMessages(issues []validation.Issue) []string {
	out := make([]string, 0, len(issues))
	for _, issue := range issues {
		out = append(out, issue.Message)
	}
	return out
}

func displayName(name string) string {
	if strings.TrimSpace(name) == "" {
		return "Untitled"
	}
	return name
}

func valueOr(value, fallback string) string {
	if strings.TrimSpace(value) == "" {
		return fallback
	}
	return value
}

func formatTime(ts time.Time) string {
	if ts.IsZero() {
		return ""
	}
	return ts.UTC().Format("2006-01-02 15:04 UTC")
}
