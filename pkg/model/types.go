package model

import (
	"strings"
	"time"
)

// FieldType enumerates the supported field variants.
type FieldType string

const (
	FieldTypeText        FieldType = "text"
	FieldTypeSelect      FieldType = "select"
	FieldTypeMultiselect FieldType = "multiselect"
	FieldTypeCheckbox    FieldType = "checkbox"
	FieldTypeRadio       FieldType = "radio"
	FieldTypeImage       FieldType = "image"
)

var fieldTypes = []FieldType{
	FieldTypeText,
	FieldTypeSelect,
	FieldTypeMultiselect,
	FieldTypeCheckbox,
	FieldTypeRadio,
	FieldTypeImage,
}

// FieldTypes lists every supported field type in palette order.
func FieldTypes() []FieldType {
	out := make([]FieldType, len(fieldTypes))
	copy(out, fieldTypes)
	return out
}

// ParseFieldType normalises raw input into a FieldType, reporting whether the
// value names a supported variant.
func ParseFieldType(raw string) (FieldType, bool) {
	candidate := FieldType(strings.ToLower(strings.TrimSpace(raw)))
	return candidate, candidate.Valid()
}

// Valid reports whether the type is part of the closed set.
func (t FieldType) Valid() bool {
	for _, known := range fieldTypes {
		if t == known {
			return true
		}
	}
	return false
}

// HasOptions reports whether fields of this type carry a choice list.
func (t FieldType) HasOptions() bool {
	switch t {
	case FieldTypeSelect, FieldTypeMultiselect, FieldTypeCheckbox, FieldTypeRadio:
		return true
	default:
		return false
	}
}

// DataType refines the input subtype of text fields.
type DataType string

const (
	DataTypeText   DataType = "text"
	DataTypeNumber DataType = "number"
	DataTypeEmail  DataType = "email"
	DataTypeDate   DataType = "date"
	DataTypeTel    DataType = "tel"
	DataTypeURL    DataType = "url"
)

// DataTypes lists the supported text subtypes.
func DataTypes() []DataType {
	return []DataType{DataTypeText, DataTypeNumber, DataTypeEmail, DataTypeDate, DataTypeTel, DataTypeURL}
}

// ValidationRule declares constraints on a field. Nil pointers mean the
// constraint is not set. For image fields Max is the size limit in megabytes.
type ValidationRule struct {
	Required         *bool    `json:"required,omitempty" yaml:"required,omitempty"`
	MinLength        *int     `json:"minLength,omitempty" yaml:"minLength,omitempty"`
	MaxLength        *int     `json:"maxLength,omitempty" yaml:"maxLength,omitempty"`
	Pattern          string   `json:"pattern,omitempty" yaml:"pattern,omitempty"`
	Min              *float64 `json:"min,omitempty" yaml:"min,omitempty"`
	Max              *float64 `json:"max,omitempty" yaml:"max,omitempty"`
	CustomValidation string   `json:"customValidation,omitempty" yaml:"customValidation,omitempty"`
	AllowedFormats   []string `json:"allowedFormats,omitempty" yaml:"allowedFormats,omitempty"`
}

// IsZero reports whether no constraint is set.
func (v ValidationRule) IsZero() bool {
	return v.Required == nil && v.MinLength == nil && v.MaxLength == nil &&
		v.Pattern == "" && v.Min == nil && v.Max == nil &&
		v.CustomValidation == "" && len(v.AllowedFormats) == 0
}

// Customization holds presentational overrides for a single field.
type Customization struct {
	Color           string `json:"color,omitempty" yaml:"color,omitempty"`
	BackgroundColor string `json:"backgroundColor,omitempty" yaml:"backgroundColor,omitempty"`
	BorderColor     string `json:"borderColor,omitempty" yaml:"borderColor,omitempty"`
	FontSize        string `json:"fontSize,omitempty" yaml:"fontSize,omitempty"`
	FontWeight      string `json:"fontWeight,omitempty" yaml:"fontWeight,omitempty"`
	CustomClass     string `json:"customClass,omitempty" yaml:"customClass,omitempty"`
}

// IsZero reports whether no override is set.
func (c Customization) IsZero() bool {
	return c == Customization{}
}

// Field is a single form field definition.
type Field struct {
	ID            string          `json:"id" yaml:"id"`
	Type          FieldType       `json:"type" yaml:"type"`
	Label         string          `json:"label" yaml:"label"`
	Name          string          `json:"name" yaml:"name"`
	Placeholder   string          `json:"placeholder,omitempty" yaml:"placeholder,omitempty"`
	Description   string          `json:"description,omitempty" yaml:"description,omitempty"`
	HelpText      string          `json:"helpText,omitempty" yaml:"helpText,omitempty"`
	DefaultValue  any             `json:"defaultValue,omitempty" yaml:"defaultValue,omitempty"`
	Options       []Option        `json:"options,omitempty" yaml:"options,omitempty"`
	Validation    *ValidationRule `json:"validation,omitempty" yaml:"validation,omitempty"`
	Customization *Customization  `json:"customization,omitempty" yaml:"customization,omitempty"`
	DataType      DataType        `json:"dataType,omitempty" yaml:"dataType,omitempty"`
	IsRequired    bool            `json:"isRequired,omitempty" yaml:"isRequired,omitempty"`
	IsDisabled    bool            `json:"isDisabled,omitempty" yaml:"isDisabled,omitempty"`
	IsReadOnly    bool            `json:"isReadOnly,omitempty" yaml:"isReadOnly,omitempty"`
}

// Required reports whether either required flag is set.
func (f Field) Required() bool {
	if f.IsRequired {
		return true
	}
	return f.Validation != nil && f.Validation.Required != nil && *f.Validation.Required
}

// OptionValues returns the option values in declaration order.
func (f Field) OptionValues() []string {
	if len(f.Options) == 0 {
		return nil
	}
	out := make([]string, 0, len(f.Options))
	for _, opt := range f.Options {
		out = append(out, opt.Value)
	}
	return out
}

// Option looks up an option by value.
func (f Field) Option(value string) (Option, bool) {
	for _, opt := range f.Options {
		if opt.Value == value {
			return opt, true
		}
	}
	return Option{}, false
}

// Template is a named, ordered collection of fields.
type Template struct {
	ID          string    `json:"id" yaml:"id"`
	Name        string    `json:"name" yaml:"name"`
	Description string    `json:"description,omitempty" yaml:"description,omitempty"`
	Fields      []Field   `json:"fields" yaml:"fields"`
	CreatedAt   time.Time `json:"createdAt" yaml:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt" yaml:"updatedAt"`
}

// Field looks up a field by id.
func (t Template) Field(id string) (Field, bool) {
	for _, field := range t.Fields {
		if field.ID == id {
			return field, true
		}
	}
	return Field{}, false
}

// FieldByName looks up the first field carrying the given submission key.
func (t Template) FieldByName(name string) (Field, bool) {
	for _, field := range t.Fields {
		if field.Name == name {
			return field, true
		}
	}
	return Field{}, false
}

// Submission is a filled-out answer map for one template.
type Submission struct {
	ID          string         `json:"id" yaml:"id"`
	TemplateID  string         `json:"templateId" yaml:"templateId"`
	Data        map[string]any `json:"data" yaml:"data"`
	SubmittedAt time.Time      `json:"submittedAt" yaml:"submittedAt"`
}

// Bool returns a pointer to v.
func Bool(v bool) *bool { return &v }

// Int returns a pointer to v.
func Int(v int) *int { return &v }

// Float returns a pointer to v.
func Float(v float64) *float64 { return &v }

// String returns a pointer to v.
func String(v string) *string { return &v }
