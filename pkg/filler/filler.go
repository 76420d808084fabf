// Package filler holds the answer state of one form fill. It reads a template
// without modifying it, applies typed input changes keyed by each field's
// submission name, and hands the answer map to a submit callback.
package filler

import (
	"context"
	"errors"
	"fmt"
	"io"
	"slices"
	"sync"

	"github.com/charmbracelet/log"

	"github.com/goliatone/go-formbuilder/pkg/media"
	"github.com/goliatone/go-formbuilder/pkg/model"
	"github.com/goliatone/go-formbuilder/pkg/validation"
)

var (
	// ErrFieldNotFound is returned when a field id is not part of the template.
	ErrFieldNotFound = errors.New("filler: field not found")
	// ErrTypeMismatch is returned when a typed helper does not fit the field.
	ErrTypeMismatch = errors.New("filler: helper does not apply to field type")
	// ErrUnknownOption is returned when a choice is not one of the options.
	ErrUnknownOption = errors.New("filler: unknown option")
)

// Answers maps field names to their current values.
type Answers map[string]any

// SubmitFunc receives a copy of the answers when Submit is called.
type SubmitFunc func(ctx context.Context, answers Answers) error

// Validator checks answers before submission.
type Validator interface {
	Validate(tmpl model.Template, answers map[string]any) validation.Result
}

// Option configures a Filler.
type Option func(*Filler)

// WithEnforcement makes Submit reject answers that fail validation. When off
// (the default) issues are logged and the answers are submitted anyway.
func WithEnforcement(enforce bool) Option {
	return func(f *Filler) {
		f.enforce = enforce
	}
}

// WithValidator overrides the validation registry.
func WithValidator(v Validator) Option {
	return func(f *Filler) {
		if v != nil {
			f.validator = v
		}
	}
}

// WithDefaults controls whether answers start from the template defaults
// (default values and pre-checked options). Enabled by default.
func WithDefaults(enabled bool) Option {
	return func(f *Filler) {
		f.seedDefaults = enabled
	}
}

// WithInitialAnswers seeds answers, e.g. when re-rendering a rejected
// submission.
func WithInitialAnswers(answers map[string]any) Option {
	return func(f *Filler) {
		f.initial = model.CloneAnswers(answers)
	}
}

// WithLogger routes filler diagnostics to logger.
func WithLogger(logger *log.Logger) Option {
	return func(f *Filler) {
		if logger != nil {
			f.logger = logger
		}
	}
}

// Filler tracks the answers for one template.
type Filler struct {
	mu sync.RWMutex

	template     model.Template
	answers      Answers
	onSubmit     SubmitFunc
	enforce      bool
	seedDefaults bool
	initial      map[string]any
	validator    Validator
	logger       *log.Logger
}

// New creates a filler for tmpl. The template is copied and never modified.
func New(tmpl model.Template, onSubmit SubmitFunc, options ...Option) *Filler {
	f := &Filler{
		template:     tmpl.Clone(),
		answers:      Answers{},
		onSubmit:     onSubmit,
		seedDefaults: true,
		validator:    validation.Default(),
		logger:       log.New(io.Discard),
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(f)
	}
	if f.seedDefaults {
		for _, field := range f.template.Fields {
			if value, ok := defaultAnswer(field); ok {
				f.answers[field.Name] = value
			}
		}
	}
	for key, value := range f.initial {
		f.answers[key] = value
	}
	return f
}

// Template returns a copy of the template being filled.
func (f *Filler) Template() model.Template {
	return f.template.Clone()
}

// Answers returns a copy of the current answers.
func (f *Filler) Answers() Answers {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return Answers(model.CloneAnswers(f.answers))
}

// Value returns the current answer for a field name.
func (f *Filler) Value(name string) (any, bool) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	value, ok := f.answers[name]
	return value, ok
}

// HandleInputChange stores value under the field's name. The last write wins;
// no coercion or validation happens here.
func (f *Filler) HandleInputChange(field model.Field, value any) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.answers[field.Name] = value
}

func (f *Filler) field(id string, allowed ...model.FieldType) (model.Field, error) {
	field, ok := f.template.Field(id)
	if !ok {
		return model.Field{}, fmt.Errorf("%w: %q", ErrFieldNotFound, id)
	}
	if len(allowed) > 0 && !slices.Contains(allowed, field.Type) {
		return model.Field{}, fmt.Errorf("%w: %s", ErrTypeMismatch, field.Type)
	}
	return field, nil
}

// SetText records a text answer.
func (f *Filler) SetText(id, value string) error {
	field, err := f.field(id, model.FieldTypeText)
	if err != nil {
		return err
	}
	f.HandleInputChange(field, value)
	return nil
}

// ToggleOption adds or removes value from a checkbox answer list. Values keep
// the order in which they were first checked.
func (f *Filler) ToggleOption(id, value string, checked bool) error {
	field, err := f.field(id, model.FieldTypeCheckbox)
	if err != nil {
		return err
	}
	if _, ok := field.Option(value); !ok {
		return fmt.Errorf("%w: %q", ErrUnknownOption, value)
	}

	current, _ := f.Value(field.Name)
	list, _ := validation.ListValue(current)
	next := slices.DeleteFunc(slices.Clone(list), func(existing string) bool {
		return existing == value
	})
	if checked {
		next = append(next, value)
	}
	if next == nil {
		next = []string{}
	}
	f.HandleInputChange(field, next)
	return nil
}

// SetChecked records the answer of a checkbox that has no options.
func (f *Filler) SetChecked(id string, checked bool) error {
	field, err := f.field(id, model.FieldTypeCheckbox)
	if err != nil {
		return err
	}
	if len(field.Options) > 0 {
		return fmt.Errorf("%w: checkbox has options, use ToggleOption", ErrTypeMismatch)
	}
	f.HandleInputChange(field, checked)
	return nil
}

// SelectOption records the single choice of a radio or select field. An empty
// value clears a select.
func (f *Filler) SelectOption(id, value string) error {
	field, err := f.field(id, model.FieldTypeRadio, model.FieldTypeSelect)
	if err != nil {
		return err
	}
	if value != "" {
		if _, ok := field.Option(value); !ok {
			return fmt.Errorf("%w: %q", ErrUnknownOption, value)
		}
	}
	f.HandleInputChange(field, value)
	return nil
}

// SetSelections records the choices of a multiselect field.
func (f *Filler) SetSelections(id string, values []string) error {
	field, err := f.field(id, model.FieldTypeMultiselect)
	if err != nil {
		return err
	}
	for _, value := range values {
		if _, ok := field.Option(value); !ok {
			return fmt.Errorf("%w: %q", ErrUnknownOption, value)
		}
	}
	f.HandleInputChange(field, slices.Clone(values))
	return nil
}

// ReadImage reads an uploaded file into a data URL answer. Format and size
// limits are not checked here.
func (f *Filler) ReadImage(ctx context.Context, id string, r io.Reader) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	field, err := f.field(id, model.FieldTypeImage)
	if err != nil {
		return err
	}
	dataURL, err := media.ReadDataURL(r)
	if err != nil {
		return fmt.Errorf("filler: read image %q: %w", field.Name, err)
	}
	f.HandleInputChange(field, dataURL)
	return nil
}

// Validate checks the current answers without submitting.
func (f *Filler) Validate() validation.Result {
	return f.validator.Validate(f.template, f.Answers())
}

// Submit hands a copy of the answers to the submit callback. The answers are
// kept, so Submit can be called again. With enforcement on, a failed
// validation returns a *validation.Error and the callback is skipped.
func (f *Filler) Submit(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	answers := f.Answers()

	result := f.validator.Validate(f.template, answers)
	if !result.Valid {
		for _, issue := range result.Issues {
			f.logger.Warn("answer failed validation", "template", f.template.ID, "field", issue.Field, "code", issue.Code)
		}
		if f.enforce {
			return result.Err()
		}
	}

	if f.onSubmit == nil {
		return nil
	}
	if err := f.onSubmit(ctx, answers); err != nil {
		return fmt.Errorf("filler: submit: %w", err)
	}
	return nil
}

func defaultAnswer(field model.Field) (any, bool) {
	switch field.Type {
	case model.FieldTypeCheckbox, model.FieldTypeMultiselect:
		if len(field.Options) == 0 {
			if checked, ok := field.DefaultValue.(bool); ok {
				return checked, true
			}
			return nil, false
		}
		var checked []string
		for _, opt := range field.Options {
			if opt.Checked {
				checked = append(checked, opt.Value)
			}
		}
		if len(checked) == 0 {
			if list, ok := validation.ListValue(field.DefaultValue); ok && len(list) > 0 {
				return slices.Clone(list), true
			}
			return nil, false
		}
		return checked, true
	case model.FieldTypeRadio, model.FieldTypeSelect:
		for _, opt := range field.Options {
			if opt.Checked {
				return opt.Value, true
			}
		}
		if value, ok := field.DefaultValue.(string); ok && value != "" {
			return value, true
		}
		return nil, false
	case model.FieldTypeText:
		if field.DefaultValue == nil {
			return nil, false
		}
		if text, ok := validation.TextValue(field.DefaultValue); ok && text != "" {
			return text, true
		}
		return nil, false
	default:
		return nil, false
	}
}
