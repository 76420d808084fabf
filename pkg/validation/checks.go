package validation

import (
	"fmt"
	"net/mail"
	"net/url"
	"regexp"
	"slices"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/goliatone/go-formbuilder/pkg/media"
	"github.com/goliatone/go-formbuilder/pkg/model"
)

var telPattern = regexp.MustCompile(`^\+?[0-9 ()\-]{3,}$`)

func issue(field model.Field, code, message string) Issue {
	if field.Validation != nil {
		if custom := strings.TrimSpace(field.Validation.CustomValidation); custom != "" {
			message = custom
		}
	}
	return Issue{Field: field.Name, Code: code, Message: message}
}

func required(field model.Field) []Issue {
	if !field.Required() {
		return nil
	}
	return []Issue{issue(field, CodeRequired, "this field is required")}
}

func rule(field model.Field) model.ValidationRule {
	if field.Validation == nil {
		return model.ValidationRule{}
	}
	return *field.Validation
}

// CompilePattern anchors a field pattern the way HTML pattern attributes
// match: the whole value must match.
func CompilePattern(pattern string) (*regexp.Regexp, error) {
	return regexp.Compile("^(?:" + pattern + ")$")
}

// TextValue coerces a raw text answer into a string.
func TextValue(value any) (string, bool) {
	switch v := value.(type) {
	case nil:
		return "", true
	case string:
		return v, true
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64), true
	case int:
		return strconv.Itoa(v), true
	case bool:
		return strconv.FormatBool(v), true
	default:
		return "", false
	}
}

// ListValue coerces a raw multi-value answer into a string slice.
func ListValue(value any) ([]string, bool) {
	switch v := value.(type) {
	case nil:
		return nil, true
	case []string:
		return v, true
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			s, ok := item.(string)
			if !ok {
				return nil, false
			}
			out = append(out, s)
		}
		return out, true
	default:
		return nil, false
	}
}

func checkText(field model.Field, value any, present bool) []Issue {
	text, ok := TextValue(value)
	if !ok {
		return []Issue{issue(field, CodeTypeMismatch, "expected a text value")}
	}
	if !present || strings.TrimSpace(text) == "" {
		return required(field)
	}

	r := rule(field)
	var issues []Issue

	length := utf8.RuneCountInString(text)
	if r.MinLength != nil && length < *r.MinLength {
		issues = append(issues, issue(field, CodeMinLength, fmt.Sprintf("must be at least %d characters", *r.MinLength)))
	}
	if r.MaxLength != nil && length > *r.MaxLength {
		issues = append(issues, issue(field, CodeMaxLength, fmt.Sprintf("must be at most %d characters", *r.MaxLength)))
	}
	if r.Pattern != "" {
		if re, err := CompilePattern(r.Pattern); err == nil && !re.MatchString(text) {
			issues = append(issues, issue(field, CodePattern, "does not match the required format"))
		}
	}

	switch field.DataType {
	case model.DataTypeNumber:
		n, err := strconv.ParseFloat(strings.TrimSpace(text), 64)
		if err != nil {
			issues = append(issues, issue(field, CodeFormat, "must be a number"))
			break
		}
		if r.Min != nil && n < *r.Min {
			issues = append(issues, issue(field, CodeMin, fmt.Sprintf("must be at least %v", *r.Min)))
		}
		if r.Max != nil && n > *r.Max {
			issues = append(issues, issue(field, CodeMax, fmt.Sprintf("must be at most %v", *r.Max)))
		}
	case model.DataTypeEmail:
		addr, err := mail.ParseAddress(text)
		if err != nil || addr.Address != strings.TrimSpace(text) {
			issues = append(issues, issue(field, CodeFormat, "must be a valid email address"))
		}
	case model.DataTypeDate:
		if _, err := time.Parse(time.DateOnly, strings.TrimSpace(text)); err != nil {
			issues = append(issues, issue(field, CodeFormat, "must be a date (YYYY-MM-DD)"))
		}
	case model.DataTypeTel:
		if !telPattern.MatchString(strings.TrimSpace(text)) {
			issues = append(issues, issue(field, CodeFormat, "must be a phone number"))
		}
	case model.DataTypeURL:
		u, err := url.ParseRequestURI(strings.TrimSpace(text))
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			issues = append(issues, issue(field, CodeFormat, "must be an http(s) URL"))
		}
	}
	return issues
}

func validOption(field model.Field, value string) bool {
	opt, ok := field.Option(value)
	return ok && !opt.Disabled
}

func checkSingleChoice(field model.Field, value any, present bool) []Issue {
	choice, ok := value.(string)
	if value != nil && !ok {
		return []Issue{issue(field, CodeTypeMismatch, "expected a single option value")}
	}
	if !present || choice == "" {
		return required(field)
	}
	if !validOption(field, choice) {
		return []Issue{issue(field, CodeInvalidOption, fmt.Sprintf("%q is not an available option", choice))}
	}
	return nil
}

func checkMultiChoice(field model.Field, value any, present bool) []Issue {
	choices, ok := ListValue(value)
	if !ok {
		return []Issue{issue(field, CodeTypeMismatch, "expected a list of option values")}
	}
	if !present || len(choices) == 0 {
		return required(field)
	}
	var issues []Issue
	for _, choice := range choices {
		if !validOption(field, choice) {
			issues = append(issues, issue(field, CodeInvalidOption, fmt.Sprintf("%q is not an available option", choice)))
		}
	}
	return issues
}

func checkCheckbox(field model.Field, value any, present bool) []Issue {
	if len(field.Options) > 0 {
		return checkMultiChoice(field, value, present)
	}
	checked, ok := value.(bool)
	if value != nil && !ok {
		return []Issue{issue(field, CodeTypeMismatch, "expected true or false")}
	}
	if !checked {
		return required(field)
	}
	return nil
}

func checkImage(field model.Field, value any, present bool) []Issue {
	raw, ok := value.(string)
	if value != nil && !ok {
		return []Issue{issue(field, CodeTypeMismatch, "expected an image")}
	}
	if !present || raw == "" {
		return required(field)
	}
	mime, data, err := media.DecodeDataURL(raw)
	if err != nil {
		return []Issue{issue(field, CodeTypeMismatch, "expected an image data url")}
	}

	r := rule(field)
	var issues []Issue
	format, known := media.FormatForMIME(mime)
	switch {
	case !known:
		issues = append(issues, issue(field, CodeImageFormat, fmt.Sprintf("unsupported image type %s", mime)))
	case !media.SniffMatches(mime, data):
		issues = append(issues, issue(field, CodeImageFormat, fmt.Sprintf("image content is not %s", mime)))
	case len(r.AllowedFormats) > 0 && !allowsFormat(r.AllowedFormats, format):
		issues = append(issues, issue(field, CodeImageFormat, fmt.Sprintf("allowed formats: %s", strings.Join(r.AllowedFormats, ", "))))
	}
	if r.Max != nil && float64(len(data)) > *r.Max*media.BytesPerMegabyte {
		issues = append(issues, issue(field, CodeImageSize, fmt.Sprintf("image must be at most %v MB", *r.Max)))
	}
	return issues
}

func allowsFormat(allowed []string, format string) bool {
	return slices.ContainsFunc(allowed, func(candidate string) bool {
		name := strings.ToLower(strings.TrimSpace(candidate))
		if name == "jpeg" {
			name = "jpg"
		}
		return name == format
	})
}
