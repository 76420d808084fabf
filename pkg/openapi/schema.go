package openapi

import (
	"github.com/getkin/kin-openapi/openapi3"

	"github.com/goliatone/go-formbuilder/pkg/model"
	"github.com/goliatone/go-formbuilder/pkg/validation"
)

// Extension keys attached to every property schema.
const (
	ExtensionFieldID   = "x-field-id"
	ExtensionFieldType = "x-field-type"
)

const dataURLPattern = `^data:image/[a-z0-9.+-]+;base64,`

type propertyBuilder func(field model.Field) *openapi3.Schema

var propertyBuilders = map[model.FieldType]propertyBuilder{
	model.FieldTypeText:        textProperty,
	model.FieldTypeSelect:      singleChoiceProperty,
	model.FieldTypeRadio:       singleChoiceProperty,
	model.FieldTypeMultiselect: multiChoiceProperty,
	model.FieldTypeCheckbox:    checkboxProperty,
	model.FieldTypeImage:       imageProperty,
}

// SubmissionSchema returns the object schema of a submission for tmpl: one
// property per named field of a known type. Required fields are listed in
// Required and additionally reject empty values.
func SubmissionSchema(tmpl model.Template) *openapi3.Schema {
	schema := openapi3.NewObjectSchema()
	schema.Title = tmpl.Name
	schema.Description = tmpl.Description

	for _, field := range tmpl.Fields {
		build, ok := propertyBuilders[field.Type]
		if !ok || field.Name == "" {
			continue
		}
		if _, exists := schema.Properties[field.Name]; exists {
			continue
		}
		prop := build(field)
		prop.Title = field.Label
		if field.Description != "" {
			prop.Description = field.Description
		}
		prop.ReadOnly = field.IsReadOnly
		prop.Extensions = map[string]any{
			ExtensionFieldID:   field.ID,
			ExtensionFieldType: string(field.Type),
		}
		schema.Properties[field.Name] = openapi3.NewSchemaRef("", prop)
		if field.Required() {
			schema.Required = append(schema.Required, field.Name)
		}
	}
	return schema
}

func textProperty(field model.Field) *openapi3.Schema {
	prop := openapi3.NewStringSchema()
	rule := ruleOf(field)

	if rule.MinLength != nil && *rule.MinLength > 0 {
		prop.MinLength = uint64(*rule.MinLength)
	}
	if field.Required() && prop.MinLength == 0 {
		prop.MinLength = 1
	}
	if rule.MaxLength != nil && *rule.MaxLength >= 0 {
		maxLength := uint64(*rule.MaxLength)
		prop.MaxLength = &maxLength
	}
	if rule.Pattern != "" {
		if _, err := validation.CompilePattern(rule.Pattern); err == nil {
			prop.Pattern = "^(?:" + rule.Pattern + ")$"
		}
	}

	switch field.DataType {
	case model.DataTypeEmail:
		prop.Format = "email"
	case model.DataTypeDate:
		prop.Format = "date"
	case model.DataTypeURL:
		prop.Format = "uri"
	case model.DataTypeNumber:
		prop.Format = "number"
		if prop.Pattern == "" {
			prop.Pattern = `^\s*[-+]?(\d+\.?\d*|\.\d+)([eE][-+]?\d+)?\s*$`
		}
	case model.DataTypeTel:
		prop.Format = "tel"
	}
	return prop
}

func singleChoiceProperty(field model.Field) *openapi3.Schema {
	prop := openapi3.NewStringSchema()
	values := enabledValues(field)
	if !field.Required() {
		values = append(values, "")
	}
	prop.Enum = values
	return prop
}

func multiChoiceProperty(field model.Field) *openapi3.Schema {
	item := openapi3.NewStringSchema()
	item.Enum = enabledValues(field)
	prop := openapi3.NewArraySchema()
	prop.Items = openapi3.NewSchemaRef("", item)
	prop.UniqueItems = true
	if field.Required() {
		prop.MinItems = 1
	}
	return prop
}

func checkboxProperty(field model.Field) *openapi3.Schema {
	if len(field.Options) > 0 {
		return multiChoiceProperty(field)
	}
	prop := openapi3.NewBoolSchema()
	if field.Required() {
		prop.Enum = []any{true}
	}
	return prop
}

func imageProperty(field model.Field) *openapi3.Schema {
	prop := openapi3.NewStringSchema()
	prop.Format = "data-url"
	prop.Pattern = dataURLPattern
	return prop
}

func enabledValues(field model.Field) []any {
	values := make([]any, 0, len(field.Options)+1)
	for _, opt := range field.Options {
		if opt.Disabled {
			continue
		}
		values = append(values, opt.Value)
	}
	return values
}

func ruleOf(field model.Field) model.ValidationRule {
	if field.Validation == nil {
		return model.ValidationRule{}
	}
	return *field.Validation
}
