package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// Option is a single choice for select, multiselect, checkbox and radio
// fields. Checked marks the option as selected by default.
type Option struct {
	Label       string `json:"label" yaml:"label"`
	Value       string `json:"value" yaml:"value"`
	Checked     bool   `json:"checked,omitempty" yaml:"checked,omitempty"`
	Disabled    bool   `json:"disabled,omitempty" yaml:"disabled,omitempty"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
}

// optionRecord mirrors Option without its custom decoders.
type optionRecord struct {
	Label       string `json:"label" yaml:"label"`
	Value       string `json:"value" yaml:"value"`
	Checked     bool   `json:"checked" yaml:"checked"`
	Disabled    bool   `json:"disabled" yaml:"disabled"`
	Description string `json:"description" yaml:"description"`
}

// NewOption builds an option whose value equals its label.
func NewOption(label string) Option {
	return Option{Label: label, Value: label}
}

// OptionsFromLabels builds options from one label per entry, skipping blanks.
func OptionsFromLabels(labels []string) []Option {
	out := make([]Option, 0, len(labels))
	for _, label := range labels {
		trimmed := strings.TrimSpace(label)
		if trimmed == "" {
			continue
		}
		out = append(out, NewOption(trimmed))
	}
	return out
}

// UnmarshalJSON accepts either a bare string or an option record.
func (o *Option) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '"' {
		var label string
		if err := json.Unmarshal(trimmed, &label); err != nil {
			return fmt.Errorf("model: decode option: %w", err)
		}
		*o = NewOption(label)
		return nil
	}
	var rec optionRecord
	if err := json.Unmarshal(trimmed, &rec); err != nil {
		return fmt.Errorf("model: decode option: %w", err)
	}
	*o = rec.normalize()
	return nil
}

// UnmarshalYAML accepts either a scalar or a mapping node.
func (o *Option) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode {
		*o = NewOption(node.Value)
		return nil
	}
	var rec optionRecord
	if err := node.Decode(&rec); err != nil {
		return fmt.Errorf("model: decode option: %w", err)
	}
	*o = rec.normalize()
	return nil
}

func (r optionRecord) normalize() Option {
	opt := Option{
		Label:       r.Label,
		Value:       r.Value,
		Checked:     r.Checked,
		Disabled:    r.Disabled,
		Description: r.Description,
	}
	if opt.Value == "" {
		opt.Value = opt.Label
	}
	if opt.Label == "" {
		opt.Label = opt.Value
	}
	return opt
}
