package validation

import (
	"fmt"
	"strings"

	"github.com/goliatone/go-formbuilder/pkg/media"
	"github.com/goliatone/go-formbuilder/pkg/model"
)

// Lint reports authoring mistakes in a template: missing names, duplicate
// submission keys, duplicate option values, broken patterns, inverted bounds
// and image formats no decoder supports. The builder accepts such templates; Lint only reports them.
func Lint(tmpl model.Template) Result {
	result := Result{Valid: true}

	if strings.TrimSpace(tmpl.Name) == "" {
		result.add(Issue{Code: CodeTemplateName, Message: "template name is empty"})
	}

	seenNames := make(map[string]int, len(tmpl.Fields))
	for idx, field := range tmpl.Fields {
		label := fieldLabel(field, idx)

		if !field.Type.Valid() {
			result.add(Issue{Field: field.Name, Code: CodeUnknownType, Message: fmt.Sprintf("%s: unsupported field type %q", label, field.Type)})
		}

		name := strings.TrimSpace(field.Name)
		if name == "" {
			result.add(Issue{Code: CodeFieldName, Message: fmt.Sprintf("%s: submission name is empty", label)})
		} else if first, dup := seenNames[name]; dup {
			result.add(Issue{Field: name, Code: CodeDuplicateName, Message: fmt.Sprintf("%s: name %q already used by field %d", label, name, first+1)})
		} else {
			seenNames[name] = idx
		}

		if field.Type.HasOptions() {
			result.add(lintOptions(field, label)...)
		}

		if field.Validation == nil {
			continue
		}
		r := *field.Validation
		if r.Pattern != "" {
			if _, err := CompilePattern(r.Pattern); err != nil {
				result.add(Issue{Field: field.Name, Code: CodeInvalidPattern, Message: fmt.Sprintf("%s: invalid pattern: %v", label, err)})
			}
		}
		if r.MinLength != nil && r.MaxLength != nil && *r.MinLength > *r.MaxLength {
			result.add(Issue{Field: field.Name, Code: CodeInvalidBounds, Message: fmt.Sprintf("%s: minLength %d exceeds maxLength %d", label, *r.MinLength, *r.MaxLength)})
		}
		if r.Min != nil && r.Max != nil && *r.Min > *r.Max {
			result.add(Issue{Field: field.Name, Code: CodeInvalidBounds, Message: fmt.Sprintf("%s: min %v exceeds max %v", label, *r.Min, *r.Max)})
		}
		if field.Type == model.FieldTypeImage {
			for _, format := range r.AllowedFormats {
				if _, ok := media.MIMEForFormat(format); !ok {
					result.add(Issue{Field: field.Name, Code: CodeImageFormat, Message: fmt.Sprintf("%s: unsupported image format %q", label, format)})
				}
			}
		}
	}
	return result
}

func lintOptions(field model.Field, label string) []Issue {
	if len(field.Options) == 0 {
		if field.Type == model.FieldTypeCheckbox {
			return nil
		}
		return []Issue{{Field: field.Name, Code: CodeMissingOptions, Message: fmt.Sprintf("%s: no options defined", label)}}
	}
	var issues []Issue
	seen := make(map[string]struct{}, len(field.Options))
	for _, opt := range field.Options {
		if _, dup := seen[opt.Value]; dup {
			issues = append(issues, Issue{Field: field.Name, Code: CodeDuplicateOption, Message: fmt.Sprintf("%s: option value %q is duplicated", label, opt.Value)})
			continue
		}
		seen[opt.Value] = struct{}{}
	}
	return issues
}

func fieldLabel(field model.Field, idx int) string {
	if label := strings.TrimSpace(field.Label); label != "" {
		return fmt.Sprintf("field %d (%s)", idx+1, label)
	}
	return fmt.Sprintf("field %d", idx+1)
}
