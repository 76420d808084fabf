package model

// Clone returns a deep copy of the template.
func (t Template) Clone() Template {
	out := t
	if t.Fields != nil {
		out.Fields = make([]Field, len(t.Fields))
		for i, field := range t.Fields {
			out.Fields[i] = field.Clone()
		}
	}
	return out
}

// Clone returns a deep copy of the field.
func (f Field) Clone() Field {
	out := f
	out.DefaultValue = cloneValue(f.DefaultValue)
	out.Options = cloneOptions(f.Options)
	if f.Validation != nil {
		rule := f.Validation.Clone()
		out.Validation = &rule
	}
	if f.Customization != nil {
		custom := *f.Customization
		out.Customization = &custom
	}
	return out
}

// Clone returns a deep copy of the rule.
func (v ValidationRule) Clone() ValidationRule {
	out := v
	out.Required = cloneBool(v.Required)
	out.MinLength = cloneInt(v.MinLength)
	out.MaxLength = cloneInt(v.MaxLength)
	out.Min = cloneFloat(v.Min)
	out.Max = cloneFloat(v.Max)
	out.AllowedFormats = cloneStrings(v.AllowedFormats)
	return out
}

// Clone returns a deep copy of the submission.
func (s Submission) Clone() Submission {
	out := s
	if s.Data != nil {
		out.Data = CloneAnswers(s.Data)
	}
	return out
}

// CloneAnswers deep-copies an answer map.
func CloneAnswers(in map[string]any) map[string]any {
	if in == nil {
		return nil
	}
	out := make(map[string]any, len(in))
	for key, value := range in {
		out[key] = cloneValue(value)
	}
	return out
}

func cloneOptions(in []Option) []Option {
	if in == nil {
		return nil
	}
	out := make([]Option, len(in))
	copy(out, in)
	return out
}

func cloneStrings(in []string) []string {
	if in == nil {
		return nil
	}
	out := make([]string, len(in))
	copy(out, in)
	return out
}

func cloneBool(in *bool) *bool {
	if in == nil {
		return nil
	}
	v := *in
	return &v
}

func cloneInt(in *int) *int {
	if in == nil {
		return nil
	}
	v := *in
	return &v
}

func cloneFloat(in *float64) *float64 {
	if in == nil {
		return nil
	}
	v := *in
	return &v
}

func cloneValue(value any) any {
	switch v := value.(type) {
	case map[string]any:
		return CloneAnswers(v)
	case []any:
		out := make([]any, len(v))
		for i, item := range v {
			out[i] = cloneValue(item)
		}
		return out
	case []string:
		return cloneStrings(v)
	default:
		return v
	}
}
