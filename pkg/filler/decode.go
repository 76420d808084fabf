package filler

import (
	"slices"
	"strings"

	"github.com/goliatone/go-formbuilder/pkg/model"
)

// Decoder turns the raw values posted for one field into its answer.
type Decoder func(field model.Field, values []string) any

var decoders = map[model.FieldType]Decoder{
	model.FieldTypeText:        decodeSingle,
	model.FieldTypeSelect:      decodeSingle,
	model.FieldTypeRadio:       decodeSingle,
	model.FieldTypeMultiselect: decodeList,
	model.FieldTypeCheckbox:    decodeCheckbox,
}

// DecodeValues converts posted form values into an answer for field. It
// reports false for field types that are not posted as plain values (images)
// and for unknown types.
func DecodeValues(field model.Field, values []string) (any, bool) {
	decode, ok := decoders[field.Type]
	if !ok {
		return nil, false
	}
	return decode(field, values), true
}

// ApplyValues decodes every plain-valued field of the template from lookup and
// applies it through HandleInputChange in field order.
func (f *Filler) ApplyValues(lookup func(name string) []string) {
	for _, field := range f.template.Fields {
		if field.IsDisabled || field.IsReadOnly {
			continue
		}
		value, ok := DecodeValues(field, lookup(field.Name))
		if !ok {
			continue
		}
		f.HandleInputChange(field, value)
	}
}

func decodeSingle(_ model.Field, values []string) any {
	if len(values) == 0 {
		return ""
	}
	return values[0]
}

func decodeList(_ model.Field, values []string) any {
	out := make([]string, 0, len(values))
	for _, value := range values {
		if value == "" || slices.Contains(out, value) {
			continue
		}
		out = append(out, value)
	}
	return out
}

func decodeCheckbox(field model.Field, values []string) any {
	if len(field.Options) > 0 {
		return decodeList(field, values)
	}
	for _, value := range values {
		switch strings.ToLower(strings.TrimSpace(value)) {
		case "on", "true", "1", "yes":
			return true
		}
	}
	return false
}
