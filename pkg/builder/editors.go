package builder

import (
	"errors"
	"fmt"
	"math"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"github.com/goliatone/go-formbuilder/pkg/media"
	"github.com/goliatone/go-formbuilder/pkg/model"
	"github.com/goliatone/go-formbuilder/pkg/validation"
)

var (
	// ErrInvalidPattern is returned when a text pattern does not compile.
	ErrInvalidPattern = errors.New("builder: invalid pattern")
	// ErrInvalidBounds is returned when a lower bound exceeds its upper bound.
	ErrInvalidBounds = errors.New("builder: lower bound exceeds upper bound")
	// ErrInvalidNumber is returned when numeric editor input is not a number.
	ErrInvalidNumber = errors.New("builder: not a number")
	// ErrOptionIndex is returned when an option index is out of range.
	ErrOptionIndex = errors.New("builder: option index out of range")
	// ErrUnknownFormat is returned for image formats outside jpg/png/gif.
	ErrUnknownFormat = errors.New("builder: unknown image format")
)

// PatternPreset is a named text pattern offered by the text editor.
type PatternPreset struct {
	Label   string
	Pattern string
}

var patternPresets = []PatternPreset{
	{Label: "Any text", Pattern: ""},
	{Label: "Letters only", Pattern: "[A-Za-z]+"},
	{Label: "Numbers only", Pattern: "[0-9]+"},
	{Label: "Letters and numbers", Pattern: "[A-Za-z0-9]+"},
	{Label: "Email", Pattern: `[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}`},
	{Label: "Phone (9 digits)", Pattern: "[0-9]{9}"},
	{Label: "URL", Pattern: "https?://.+"},
}

// PatternPresets lists the pattern choices of the text editor.
func PatternPresets() []PatternPreset {
	return slices.Clone(patternPresets)
}

// ParseBound converts raw numeric editor input into a bound. Blank input
// clears the bound; anything that is not a non-negative integer is rejected.
func ParseBound(raw string) (*int, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return nil, nil
	}
	n, err := strconv.Atoi(trimmed)
	if err != nil || n < 0 {
		return nil, fmt.Errorf("%w: %q", ErrInvalidNumber, raw)
	}
	return &n, nil
}

// ParseDecimal converts raw numeric editor input into a float bound. Blank
// input clears the bound.
func ParseDecimal(raw string) (*float64, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return nil, nil
	}
	n, err := strconv.ParseFloat(trimmed, 64)
	if err != nil || math.IsNaN(n) || math.IsInf(n, 0) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidNumber, raw)
	}
	return &n, nil
}

// mutate applies fn to the field with the given id after checking its type
// against allowed (empty allowed means any type).
func (b *Builder) mutate(id string, allowed []model.FieldType, fn func(*model.Field) error) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	idx := b.indexOf(id)
	if idx < 0 {
		return fmt.Errorf("%w: %q", ErrFieldNotFound, id)
	}
	field := b.fields[idx].Clone()
	if len(allowed) > 0 && !slices.Contains(allowed, field.Type) {
		return fmt.Errorf("%w: %s", ErrWrongFieldType, field.Type)
	}
	if err := fn(&field); err != nil {
		return err
	}
	b.fields[idx] = field
	return nil
}

func ensureRule(field *model.Field) *model.ValidationRule {
	if field.Validation == nil {
		field.Validation = &model.ValidationRule{}
	}
	return field.Validation
}

var textTypes = []model.FieldType{model.FieldTypeText}

// SetPattern sets the text pattern. The pattern must compile; an empty
// pattern clears it.
func (b *Builder) SetPattern(id, pattern string) error {
	if pattern != "" {
		if _, err := regexp.Compile(pattern); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidPattern, err)
		}
	}
	return b.mutate(id, textTypes, func(field *model.Field) error {
		ensureRule(field).Pattern = pattern
		return nil
	})
}

// SetLengthBounds sets minLength and maxLength together. Nil clears a bound.
func (b *Builder) SetLengthBounds(id string, minLength, maxLength *int) error {
	if minLength != nil && maxLength != nil && *minLength > *maxLength {
		return fmt.Errorf("%w: %d > %d", ErrInvalidBounds, *minLength, *maxLength)
	}
	return b.mutate(id, textTypes, func(field *model.Field) error {
		rule := ensureRule(field)
		*rule = rule.Apply(model.ValidationPatch{
			MinLength: model.SetInt(minLength),
			MaxLength: model.SetInt(maxLength),
		})
		return nil
	})
}

// SetValueBounds sets min and max for numeric text fields. Nil clears a bound.
func (b *Builder) SetValueBounds(id string, minValue, maxValue *float64) error {
	if minValue != nil && maxValue != nil && *minValue > *maxValue {
		return fmt.Errorf("%w: %v > %v", ErrInvalidBounds, *minValue, *maxValue)
	}
	return b.mutate(id, textTypes, func(field *model.Field) error {
		rule := ensureRule(field)
		*rule = rule.Apply(model.ValidationPatch{
			Min: model.SetFloat(minValue),
			Max: model.SetFloat(maxValue),
		})
		return nil
	})
}

// SetErrorMessage sets the message shown instead of the default validation
// messages.
func (b *Builder) SetErrorMessage(id, message string) error {
	return b.mutate(id, nil, func(field *model.Field) error {
		ensureRule(field).CustomValidation = strings.TrimSpace(message)
		return nil
	})
}

var selectTypes = []model.FieldType{model.FieldTypeSelect, model.FieldTypeMultiselect}

// SetMultiple switches a select field between single and multiple choice.
func (b *Builder) SetMultiple(id string, multiple bool) error {
	return b.mutate(id, selectTypes, func(field *model.Field) error {
		if multiple {
			field.Type = model.FieldTypeMultiselect
		} else {
			field.Type = model.FieldTypeSelect
		}
		return nil
	})
}

// SetOptionLabels replaces the options from one label per line. Blank lines
// are skipped and each value equals its label. Existing options keep their
// flags when their label survives.
func (b *Builder) SetOptionLabels(id string, lines []string) error {
	return b.mutate(id, nil, func(field *model.Field) error {
		if !field.Type.HasOptions() {
			return fmt.Errorf("%w: %s", ErrWrongFieldType, field.Type)
		}
		next := model.OptionsFromLabels(lines)
		for i, opt := range next {
			for _, prev := range field.Options {
				if prev.Label == opt.Label {
					next[i].Value = prev.Value
					next[i].Checked = prev.Checked
					next[i].Disabled = prev.Disabled
					next[i].Description = prev.Description
					break
				}
			}
		}
		field.Options = next
		return nil
	})
}

var toggleTypes = []model.FieldType{model.FieldTypeCheckbox, model.FieldTypeRadio}

// AddOption appends a default option ("New option", value option_<n>) to a
// checkbox or radio field, returning the new option.
func (b *Builder) AddOption(id string) (model.Option, error) {
	var added model.Option
	err := b.mutate(id, toggleTypes, func(field *model.Field) error {
		n := len(field.Options) + 1
		value := fmt.Sprintf("option_%d", n)
		for {
			if _, taken := field.Option(value); !taken {
				break
			}
			n++
			value = fmt.Sprintf("option_%d", n)
		}
		added = model.Option{Label: "New option", Value: value}
		field.Options = append(field.Options, added)
		return nil
	})
	return added, err
}

// UpdateOption merges patch into the option at index. Checking a radio option
// unchecks its siblings so at most one option is the default.
func (b *Builder) UpdateOption(id string, index int, patch model.OptionPatch) error {
	return b.mutate(id, toggleTypes, func(field *model.Field) error {
		if index < 0 || index >= len(field.Options) {
			return fmt.Errorf("%w: %d", ErrOptionIndex, index)
		}
		field.Options[index] = field.Options[index].Apply(patch)
		if field.Type == model.FieldTypeRadio && patch.Checked != nil && *patch.Checked {
			for i := range field.Options {
				if i != index {
					field.Options[i].Checked = false
				}
			}
		}
		return nil
	})
}

// RemoveOption deletes the option at index.
func (b *Builder) RemoveOption(id string, index int) error {
	return b.mutate(id, toggleTypes, func(field *model.Field) error {
		if index < 0 || index >= len(field.Options) {
			return fmt.Errorf("%w: %d", ErrOptionIndex, index)
		}
		field.Options = append(field.Options[:index], field.Options[index+1:]...)
		return nil
	})
}

var imageTypes = []model.FieldType{model.FieldTypeImage}

// SetMaxSize sets the image size limit in megabytes; nil clears it.
func (b *Builder) SetMaxSize(id string, megabytes *float64) error {
	if megabytes != nil && *megabytes <= 0 {
		return fmt.Errorf("%w: size must be positive", ErrInvalidNumber)
	}
	return b.mutate(id, imageTypes, func(field *model.Field) error {
		rule := ensureRule(field)
		*rule = rule.Apply(model.ValidationPatch{Max: model.SetFloat(megabytes)})
		return nil
	})
}

// SetImageFormat adds or removes a format from the image allow-list.
func (b *Builder) SetImageFormat(id, format string, allowed bool) error {
	mime, ok := media.MIMEForFormat(format)
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
	canonical, _ := media.FormatForMIME(mime)
	return b.mutate(id, imageTypes, func(field *model.Field) error {
		rule := ensureRule(field)
		formats := slices.DeleteFunc(slices.Clone(rule.AllowedFormats), func(existing string) bool {
			name, ok := canonicalFormat(existing)
			return ok && name == canonical
		})
		if allowed {
			formats = append(formats, canonical)
		}
		rule.AllowedFormats = sortFormats(formats)
		return nil
	})
}

// sortFormats orders known formats the way media.Formats lists them, folding
// aliases such as "jpeg". Unknown entries follow in their original order so
// Lint can still report them.
func sortFormats(formats []string) []string {
	known := make(map[string]bool, len(formats))
	var unknown []string
	for _, format := range formats {
		if name, ok := canonicalFormat(format); ok {
			known[name] = true
			continue
		}
		if !slices.Contains(unknown, format) {
			unknown = append(unknown, format)
		}
	}
	var out []string
	for _, name := range media.Formats() {
		if known[name] {
			out = append(out, name)
		}
	}
	return append(out, unknown...)
}

func canonicalFormat(format string) (string, bool) {
	mime, ok := media.MIMEForFormat(format)
	if !ok {
		return "", false
	}
	return media.FormatForMIME(mime)
}

// Lint reports authoring findings for the working template.
func (b *Builder) Lint() validation.Result {
	return validation.Lint(b.Preview())
}
