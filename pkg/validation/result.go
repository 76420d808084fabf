// Package validation checks filled answers against the constraints a template
// declares and lints templates for authoring mistakes. Each field type has its
// own checker registered in a lookup table, so a new field type only needs a
// new entry.
package validation

import (
	"fmt"
	"strings"
)

// Issue codes.
const (
	CodeRequired        = "required"
	CodeTypeMismatch    = "type_mismatch"
	CodeMinLength       = "min_length"
	CodeMaxLength       = "max_length"
	CodePattern         = "pattern"
	CodeMin             = "min"
	CodeMax             = "max"
	CodeFormat          = "format"
	CodeInvalidOption   = "invalid_option"
	CodeImageFormat     = "image_format"
	CodeImageSize       = "image_size"
	CodeUnknownType     = "unknown_type"
	CodeTemplateName    = "template_name"
	CodeFieldName       = "field_name"
	CodeDuplicateName   = "duplicate_name"
	CodeDuplicateOption = "duplicate_option"
	CodeMissingOptions  = "missing_options"
	CodeInvalidPattern  = "invalid_pattern"
	CodeInvalidBounds   = "invalid_bounds"
)

// Issue is a single finding, keyed by the field's submission name. Field is
// empty for template-level findings.
type Issue struct {
	Field   string `json:"field,omitempty"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Result collects the issues found by Validate or Lint.
type Result struct {
	Valid  bool    `json:"valid"`
	Issues []Issue `json:"issues,omitempty"`
}

func (r *Result) add(issues ...Issue) {
	if len(issues) == 0 {
		return
	}
	r.Issues = append(r.Issues, issues...)
	r.Valid = false
}

// ByField groups messages by field name; template-level messages use the empty
// key.
func (r Result) ByField() map[string][]string {
	if len(r.Issues) == 0 {
		return nil
	}
	out := make(map[string][]string)
	for _, issue := range r.Issues {
		out[issue.Field] = append(out[issue.Field], issue.Message)
	}
	return out
}

// Err returns nil when the result is valid, otherwise an *Error.
func (r Result) Err() error {
	if r.Valid {
		return nil
	}
	return &Error{Issues: r.Issues}
}

// Error wraps the issues of a failed validation.
type Error struct {
	Issues []Issue
}

func (e *Error) Error() string {
	if e == nil || len(e.Issues) == 0 {
		return "validation: failed"
	}
	parts := make([]string, 0, len(e.Issues))
	for _, issue := range e.Issues {
		if issue.Field == "" {
			parts = append(parts, issue.Message)
			continue
		}
		parts = append(parts, fmt.Sprintf("%s: %s", issue.Field, issue.Message))
	}
	return "validation: " + strings.Join(parts, "; ")
}
