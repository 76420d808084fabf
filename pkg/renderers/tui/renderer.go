package tui

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"slices"
	"sort"
	"strings"

	"github.com/AlecAivazis/survey/v2/terminal"
	"github.com/charmbracelet/log"

	"github.com/goliatone/go-formbuilder/pkg/filler"
	"github.com/goliatone/go-formbuilder/pkg/media"
	"github.com/goliatone/go-formbuilder/pkg/model"
	"github.com/goliatone/go-formbuilder/pkg/render"
	"github.com/goliatone/go-formbuilder/pkg/validation"
)

// Name is the registry name of the terminal renderer.
const Name = "tui"

// Renderer implements render.Renderer for terminal sessions. Rendering a
// template prompts for every field, in order, and returns the serialized
// answers.
type Renderer struct {
	driver            PromptDriver
	outputFormat      OutputFormat
	submitTransformer SubmitTransformer
	theme             Theme
	enforce           bool
	open              FileOpener
	logger            *log.Logger
}

var _ render.Renderer = (*Renderer)(nil)

type promptFunc func(r *Renderer, ctx context.Context, f *filler.Filler, field model.Field) error

var prompts = map[model.FieldType]promptFunc{
	model.FieldTypeText:        (*Renderer).promptText,
	model.FieldTypeSelect:      (*Renderer).promptSelect,
	model.FieldTypeRadio:       (*Renderer).promptSelect,
	model.FieldTypeMultiselect: (*Renderer).promptMultiselect,
	model.FieldTypeCheckbox:    (*Renderer).promptCheckbox,
	model.FieldTypeImage:       (*Renderer).promptImage,
}

// New constructs a TUI renderer with defaults (survey driver, JSON output).
func New(options ...Option) (*Renderer, error) {
	r := &Renderer{
		outputFormat: OutputFormatJSON,
		theme:        DefaultTheme,
		open: func(path string) (io.ReadCloser, error) {
			return os.Open(path)
		},
		logger: log.New(io.Discard),
	}

	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(r)
	}

	if r.driver == nil {
		r.driver = NewSurveyDriver(terminal.Stdio{})
	}
	if _, ok := ParseOutputFormat(string(r.outputFormat)); !ok {
		return nil, fmt.Errorf("tui: unknown output format %q", r.outputFormat)
	}
	return r, nil
}

// Name reports the renderer identifier.
func (r *Renderer) Name() string {
	return Name
}

// ContentType reports the serialization format used by Render.
func (r *Renderer) ContentType() string {
	switch r.outputFormat {
	case OutputFormatFormURLEncoded:
		return "application/x-www-form-urlencoded"
	case OutputFormatPrettyText:
		return "text/plain; charset=utf-8"
	default:
		return "application/json"
	}
}

// Render prompts for each field and returns the collected answers. Values in
// options seed the prompts; Errors and FormErrors are shown before the
// affected prompt.
func (r *Renderer) Render(ctx context.Context, tmpl model.Template, options render.RenderOptions) ([]byte, error) {
	if ctx == nil {
		return nil, errors.New("tui: context is required")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if r.driver == nil {
		return nil, errors.New("tui: prompt driver is nil")
	}

	var collected filler.Answers
	f := filler.New(tmpl, func(_ context.Context, answers filler.Answers) error {
		collected = answers
		return nil
	},
		filler.WithInitialAnswers(options.Values),
		filler.WithEnforcement(r.enforce),
		filler.WithLogger(r.logger),
	)

	if name := strings.TrimSpace(tmpl.Name); name != "" {
		if err := r.info(ctx, name); err != nil {
			return nil, err
		}
	}
	for _, msg := range options.FormErrors {
		if err := r.problem(ctx, msg); err != nil {
			return nil, err
		}
	}

	for _, field := range tmpl.Fields {
		prompt, ok := prompts[field.Type]
		if !ok {
			r.logger.Warn("no prompt for field type; field skipped", "template", tmpl.ID, "field", field.ID, "type", field.Type)
			continue
		}
		if field.IsDisabled || field.IsReadOnly {
			continue
		}
		for _, msg := range options.Errors[field.Name] {
			if err := r.problem(ctx, msg); err != nil {
				return nil, err
			}
		}
		if err := prompt(r, ctx, f, field); err != nil {
			return nil, err
		}
	}

	if err := f.Submit(ctx); err != nil {
		return nil, fmt.Errorf("tui: %w", err)
	}

	values := map[string]any(collected)
	if r.submitTransformer != nil {
		var err error
		values, err = r.submitTransformer(values)
		if err != nil {
			return nil, fmt.Errorf("tui: submit transformer: %w", err)
		}
	}
	return r.serialize(tmpl, values)
}

func (r *Renderer) promptText(ctx context.Context, f *filler.Filler, field model.Field) error {
	for {
		current, _ := f.Value(field.Name)
		def, _ := validation.TextValue(current)
		cfg := InputConfig{
			Message:     displayLabel(field),
			Default:     def,
			Help:        displayHelp(field),
			Placeholder: field.Placeholder,
		}
		if r.enforce {
			cfg.Validator = func(candidate string) error {
				return issuesError(validation.CheckField(field, candidate, true))
			}
		}
		answer, err := r.driver.Input(ctx, cfg)
		if err != nil {
			return err
		}
		if err := f.SetText(field.ID, answer); err != nil {
			return err
		}
		if ok, err := r.accepted(ctx, f, field); err != nil || ok {
			return err
		}
	}
}

func (r *Renderer) promptSelect(ctx context.Context, f *filler.Filler, field model.Field) error {
	options := enabledOptions(field)
	if len(options) == 0 {
		return fmt.Errorf("%w: %s", ErrNoChoices, field.Name)
	}
	labels := optionLabels(options)
	for {
		current, _ := f.Value(field.Name)
		selected, _ := validation.TextValue(current)
		idx, err := r.driver.Select(ctx, SelectConfig{
			Message:      displayLabel(field),
			Options:      labels,
			DefaultIndex: indexOfValue(options, selected),
			Help:         displayHelp(field),
		})
		if err != nil {
			return err
		}
		if idx < 0 || idx >= len(options) {
			if err := r.problem(ctx, fmt.Sprintf("Invalid %s selection", displayLabel(field))); err != nil {
				return err
			}
			continue
		}
		if err := f.SelectOption(field.ID, options[idx].Value); err != nil {
			return err
		}
		if ok, err := r.accepted(ctx, f, field); err != nil || ok {
			return err
		}
	}
}

func (r *Renderer) promptMultiselect(ctx context.Context, f *filler.Filler, field model.Field) error {
	return r.promptMany(ctx, f, field, func(values []string) error {
		return f.SetSelections(field.ID, values)
	})
}

func (r *Renderer) promptCheckbox(ctx context.Context, f *filler.Filler, field model.Field) error {
	if len(field.Options) == 0 {
		for {
			current, _ := f.Value(field.Name)
			checked, _ := current.(bool)
			answer, err := r.driver.Confirm(ctx, ConfirmConfig{
				Message: displayLabel(field),
				Default: checked,
				Help:    displayHelp(field),
			})
			if err != nil {
				return err
			}
			if err := f.SetChecked(field.ID, answer); err != nil {
				return err
			}
			if ok, err := r.accepted(ctx, f, field); err != nil || ok {
				return err
			}
		}
	}
	return r.promptMany(ctx, f, field, func(values []string) error {
		for _, opt := range enabledOptions(field) {
			if err := f.ToggleOption(field.ID, opt.Value, slices.Contains(values, opt.Value)); err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *Renderer) promptMany(ctx context.Context, f *filler.Filler, field model.Field, apply func([]string) error) error {
	options := enabledOptions(field)
	if len(options) == 0 {
		return fmt.Errorf("%w: %s", ErrNoChoices, field.Name)
	}
	labels := optionLabels(options)
	for {
		current, _ := f.Value(field.Name)
		selected, _ := validation.ListValue(current)
		var defaults []int
		for i, opt := range options {
			if slices.Contains(selected, opt.Value) {
				defaults = append(defaults, i)
			}
		}
		indices, err := r.driver.MultiSelect(ctx, SelectConfig{
			Message:  displayLabel(field),
			Options:  labels,
			Defaults: defaults,
			Help:     displayHelp(field),
		})
		if err != nil {
			return err
		}
		values := make([]string, 0, len(indices))
		for _, idx := range indices {
			if idx >= 0 && idx < len(options) {
				values = append(values, options[idx].Value)
			}
		}
		if err := apply(values); err != nil {
			return err
		}
		if ok, err := r.accepted(ctx, f, field); err != nil || ok {
			return err
		}
	}
}

// promptImage asks for a file path. An empty path keeps the current answer.
func (r *Renderer) promptImage(ctx context.Context, f *filler.Filler, field model.Field) error {
	help := displayHelp(field)
	if accept := media.AcceptAttribute(ruleOf(field).AllowedFormats); accept != "" && help == "" {
		help = "Accepted: " + accept
	}
	for {
		path, err := r.driver.Input(ctx, InputConfig{
			Message: displayLabel(field) + " (file path)",
			Help:    help,
		})
		if err != nil {
			return err
		}
		path = strings.TrimSpace(path)
		if path != "" {
			if err := r.readImage(ctx, f, field, path); err != nil {
				if perr := r.problem(ctx, err.Error()); perr != nil {
					return perr
				}
				continue
			}
		}
		if ok, err := r.accepted(ctx, f, field); err != nil || ok {
			return err
		}
	}
}

func (r *Renderer) readImage(ctx context.Context, f *filler.Filler, field model.Field, path string) error {
	file, err := r.open(path)
	if err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}
	defer file.Close()
	return f.ReadImage(ctx, field.ID, file)
}

// accepted prints the issues of the current answer for field. Without
// enforcement the answer is kept anyway; with it the field is asked again.
func (r *Renderer) accepted(ctx context.Context, f *filler.Filler, field model.Field) (bool, error) {
	value, present := f.Value(field.Name)
	issues := validation.CheckField(field, value, present)
	for _, issue := range issues {
		if err := r.problem(ctx, issue.Message); err != nil {
			return false, err
		}
	}
	return !r.enforce || len(issues) == 0, nil
}

func (r *Renderer) info(ctx context.Context, msg string) error {
	return r.driver.Info(ctx, r.theme.InfoPrefix+msg)
}

func (r *Renderer) problem(ctx context.Context, msg string) error {
	return r.driver.Info(ctx, r.theme.ErrorPrefix+msg)
}

func (r *Renderer) serialize(tmpl model.Template, values map[string]any) ([]byte, error) {
	switch r.outputFormat {
	case OutputFormatFormURLEncoded:
		return []byte(flattenForm(values)), nil
	case OutputFormatPrettyText:
		return []byte(prettyPrint(tmpl, values)), nil
	default:
		return json.Marshal(values)
	}
}

func issuesError(issues []validation.Issue) error {
	if len(issues) == 0 {
		return nil
	}
	return errors.New(issues[0].Message)
}

func displayLabel(field model.Field) string {
	label := field.Label
	if label == "" {
		label = field.Name
	}
	if field.Required() {
		label += " *"
	}
	return label
}

func displayHelp(field model.Field) string {
	if field.HelpText != "" {
		return field.HelpText
	}
	return field.Description
}

func ruleOf(field model.Field) model.ValidationRule {
	if field.Validation == nil {
		return model.ValidationRule{}
	}
	return *field.Validation
}

func enabledOptions(field model.Field) []model.Option {
	out := make([]model.Option, 0, len(field.Options))
	for _, opt := range field.Options {
		if !opt.Disabled {
			out = append(out, opt)
		}
	}
	return out
}

func optionLabels(options []model.Option) []string {
	out := make([]string, 0, len(options))
	for _, opt := range options {
		label := opt.Label
		if label == "" {
			label = opt.Value
		}
		out = append(out, label)
	}
	return out
}

func indexOfValue(options []model.Option, value string) int {
	for i, opt := range options {
		if opt.Value == value {
			return i
		}
	}
	return -1
}

func flattenForm(values map[string]any) string {
	flattened := url.Values{}
	for key, value := range values {
		switch v := value.(type) {
		case []string:
			for _, item := range v {
				flattened.Add(key+"[]", item)
			}
		case []any:
			for _, item := range v {
				flattened.Add(key+"[]", fmt.Sprint(item))
			}
		case nil:
			flattened.Set(key, "")
		default:
			flattened.Set(key, fmt.Sprint(v))
		}
	}
	return flattened.Encode()
}

// prettyPrint lists answers in template order, then any extra keys sorted.
// Images are summarized instead of printed.
func prettyPrint(tmpl model.Template, values map[string]any) string {
	var b strings.Builder
	seen := make(map[string]struct{}, len(values))
	for _, field := range tmpl.Fields {
		value, ok := values[field.Name]
		if !ok {
			continue
		}
		seen[field.Name] = struct{}{}
		fmt.Fprintf(&b, "%s: %s\n", displayName(field), prettyValue(field, value))
	}
	var extra []string
	for key := range values {
		if _, ok := seen[key]; !ok {
			extra = append(extra, key)
		}
	}
	sort.Strings(extra)
	for _, key := range extra {
		fmt.Fprintf(&b, "%s: %s\n", key, prettyValue(model.Field{}, values[key]))
	}
	return b.String()
}

func displayName(field model.Field) string {
	if field.Label != "" {
		return field.Label
	}
	return field.Name
}

func prettyValue(field model.Field, value any) string {
	if s, ok := value.(string); ok && media.IsDataURL(s) {
		mime, data, err := media.DecodeDataURL(s)
		if err == nil {
			return fmt.Sprintf("%s (%.1f KB)", mime, float64(len(data))/1024)
		}
	}
	if b, ok := value.(bool); ok {
		if b {
			return "yes"
		}
		return "no"
	}
	if list, ok := validation.ListValue(value); ok && list != nil {
		labels := make([]string, 0, len(list))
		for _, v := range list {
			labels = append(labels, optionLabel(field, v))
		}
		return strings.Join(labels, ", ")
	}
	if s, ok := validation.TextValue(value); ok {
		return optionLabel(field, s)
	}
	return fmt.Sprint(value)
}

func optionLabel(field model.Field, value string) string {
	if opt, ok := field.Option(value); ok && opt.Label != "" {
		return opt.Label
	}
	return value
}
