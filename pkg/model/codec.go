package model

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Format identifies a template document encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// FormatFromPath infers the document format from a file extension, defaulting
// to JSON.
func FormatFromPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return FormatJSON
	}
}

// ToMap converts the template into a plain key-value record using its JSON
// field names.
func (t Template) ToMap() (map[string]any, error) {
	raw, err := json.Marshal(t)
	if err != nil {
		return nil, fmt.Errorf("model: encode template: %w", err)
	}
	out := map[string]any{}
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("model: decode template record: %w", err)
	}
	return out, nil
}

// TemplateFromMap rebuilds a template from a record produced by ToMap (or any
// record using the same keys). Options may be bare strings or records.
func TemplateFromMap(record map[string]any) (Template, error) {
	raw, err := json.Marshal(record)
	if err != nil {
		return Template{}, fmt.Errorf("model: encode template record: %w", err)
	}
	var out Template
	if err := json.Unmarshal(raw, &out); err != nil {
		return Template{}, fmt.Errorf("model: decode template: %w", err)
	}
	return out, nil
}

// DecodeTemplates parses a document holding either a single template or a
// list of templates.
func DecodeTemplates(data []byte, format Format) ([]Template, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, errors.New("model: template document is empty")
	}

	switch format {
	case FormatYAML:
		var node yaml.Node
		if err := yaml.Unmarshal(trimmed, &node); err != nil {
			return nil, fmt.Errorf("model: parse yaml: %w", err)
		}
		root := &node
		if root.Kind == yaml.DocumentNode && len(root.Content) > 0 {
			root = root.Content[0]
		}
		if root.Kind == yaml.SequenceNode {
			var list []Template
			if err := root.Decode(&list); err != nil {
				return nil, fmt.Errorf("model: decode yaml templates: %w", err)
			}
			return list, nil
		}
		var single Template
		if err := root.Decode(&single); err != nil {
			return nil, fmt.Errorf("model: decode yaml template: %w", err)
		}
		return []Template{single}, nil
	default:
		if trimmed[0] == '[' {
			var list []Template
			if err := json.Unmarshal(trimmed, &list); err != nil {
				return nil, fmt.Errorf("model: decode json templates: %w", err)
			}
			return list, nil
		}
		var single Template
		if err := json.Unmarshal(trimmed, &single); err != nil {
			return nil, fmt.Errorf("model: decode json template: %w", err)
		}
		return []Template{single}, nil
	}
}

// EncodeTemplates writes templates as a list document.
func EncodeTemplates(templates []Template, format Format) ([]byte, error) {
	if templates == nil {
		templates = []Template{}
	}
	switch format {
	case FormatYAML:
		var buf bytes.Buffer
		enc := yaml.NewEncoder(&buf)
		enc.SetIndent(2)
		if err := enc.Encode(templates); err != nil {
			return nil, fmt.Errorf("model: encode yaml templates: %w", err)
		}
		if err := enc.Close(); err != nil {
			return nil, fmt.Errorf("model: encode yaml templates: %w", err)
		}
		return buf.Bytes(), nil
	default:
		out, err := json.MarshalIndent(templates, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("model: encode json templates: %w", err)
		}
		return out, nil
	}
}
