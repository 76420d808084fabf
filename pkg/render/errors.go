package render

import (
	"strings"

	"github.com/goliatone/go-formbuilder/pkg/model"
	"github.com/goliatone/go-formbuilder/pkg/validation"
)

// ErrorMapping splits error messages into field level messages keyed by field
// name and form level messages.
type ErrorMapping struct {
	Fields map[string][]string
	Form   []string
}

// Apply copies the mapping into options, merging with any errors already set.
func (m ErrorMapping) Apply(options *RenderOptions) {
	if options == nil {
		return
	}
	for name, messages := range m.Fields {
		if options.Errors == nil {
			options.Errors = make(map[string][]string, len(m.Fields))
		}
		options.Errors[name] = normalizeMessages(append(options.Errors[name], messages...))
	}
	options.FormErrors = MergeFormErrors(options.FormErrors, m.Form...)
}

// MapIssues turns validation issues into an error mapping. Issues whose field
// is not part of tmpl become form level messages.
func MapIssues(tmpl model.Template, issues []validation.Issue) ErrorMapping {
	payload := make(map[string][]string, len(issues))
	for _, issue := range issues {
		payload[issue.Field] = append(payload[issue.Field], issue.Message)
	}
	return MapErrorPayload(tmpl, payload)
}

// MergeFormErrors appends extras to existing, trimming blanks and dropping
// duplicates while keeping order.
func MergeFormErrors(existing []string, extras ...string) []string {
	combined := make([]string, 0, len(existing)+len(extras))
	combined = append(combined, existing...)
	combined = append(combined, extras...)
	return normalizeMessages(combined)
}

// MapErrorPayload maps a server error payload onto the template's field
// names. Keys may be plain names, field ids, JSON pointers ("/answers/email")
// or dotted paths ("data.email"). Unknown keys become form level messages.
func MapErrorPayload(tmpl model.Template, payload map[string][]string) ErrorMapping {
	mapping := ErrorMapping{Fields: make(map[string][]string)}
	if len(payload) == 0 {
		mapping.Fields = nil
		return mapping
	}

	lookup := make(map[string]string, len(tmpl.Fields)*2)
	for _, field := range tmpl.Fields {
		name := strings.TrimSpace(field.Name)
		if name == "" {
			continue
		}
		lookup[name] = name
		if field.ID != "" {
			if _, taken := lookup[field.ID]; !taken {
				lookup[field.ID] = name
			}
		}
	}

	for raw, messages := range payload {
		messages = normalizeMessages(messages)
		if len(messages) == 0 {
			continue
		}
		name, ok := resolveErrorKey(raw, lookup)
		if !ok {
			mapping.Form = append(mapping.Form, messages...)
			continue
		}
		mapping.Fields[name] = append(mapping.Fields[name], messages...)
	}

	if len(mapping.Fields) == 0 {
		mapping.Fields = nil
	}
	mapping.Form = normalizeMessages(mapping.Form)
	return mapping
}

func resolveErrorKey(raw string, lookup map[string]string) (string, bool) {
	if isFormLevelKey(raw) {
		return "", false
	}
	if name, ok := lookup[strings.TrimSpace(raw)]; ok {
		return name, true
	}
	segments := dropWrapperSegments(parsePathSegments(raw))
	if len(segments) == 0 {
		return "", false
	}
	name, ok := lookup[segments[0]]
	return name, ok
}

func normalizeMessages(messages []string) []string {
	if len(messages) == 0 {
		return nil
	}
	out := make([]string, 0, len(messages))
	seen := make(map[string]struct{}, len(messages))
	for _, message := range messages {
		trimmed := strings.TrimSpace(message)
		if trimmed == "" {
			continue
		}
		if _, exists := seen[trimmed]; exists {
			continue
		}
		seen[trimmed] = struct{}{}
		out = append(out, trimmed)
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

func parsePathSegments(path string) []string {
	clean := strings.TrimSpace(path)
	clean = strings.TrimLeft(clean, "#$/.")
	clean = strings.NewReplacer("[", ".", "]", "").Replace(clean)
	parts := strings.FieldsFunc(clean, func(r rune) bool {
		return r == '.' || r == '/'
	})
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		segment := strings.TrimSpace(part)
		if segment == "" {
			continue
		}
		segment = strings.ReplaceAll(segment, "~1", "/")
		segment = strings.ReplaceAll(segment, "~0", "~")
		out = append(out, segment)
	}
	return out
}

var wrapperSegments = map[string]struct{}{
	"body":    {},
	"request": {},
	"payload": {},
	"data":    {},
	"answers": {},
}

func dropWrapperSegments(segments []string) []string {
	for len(segments) > 1 {
		if _, ok := wrapperSegments[strings.ToLower(segments[0])]; !ok {
			break
		}
		segments = segments[1:]
	}
	return segments
}

func isFormLevelKey(key string) bool {
	switch strings.ToLower(strings.TrimSpace(key)) {
	case "", ".", "/", "#", "$", "form", "template", "__all__", "non_field_errors":
		return true
	default:
		return false
	}
}
