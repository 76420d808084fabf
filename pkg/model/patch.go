package model

// FieldPatch carries a partial update for a Field. Nil members are left
// untouched; the nested Validation and Customization patches merge into the
// existing sub-records member by member.
type FieldPatch struct {
	Type          *FieldType
	Label         *string
	Name          *string
	Placeholder   *string
	Description   *string
	HelpText      *string
	DefaultValue  *any
	Options       *[]Option
	DataType      *DataType
	IsRequired    *bool
	IsDisabled    *bool
	IsReadOnly    *bool
	Validation    *ValidationPatch
	Customization *CustomizationPatch
}

// ValidationPatch is a partial ValidationRule. Double pointers let a patch
// clear a bound (set the outer pointer to a nil inner pointer).
type ValidationPatch struct {
	Required         **bool
	MinLength        **int
	MaxLength        **int
	Pattern          *string
	Min              **float64
	Max              **float64
	CustomValidation *string
	AllowedFormats   *[]string
}

// CustomizationPatch is a partial Customization.
type CustomizationPatch struct {
	Color           *string
	BackgroundColor *string
	BorderColor     *string
	FontSize        *string
	FontWeight      *string
	CustomClass     *string
}

// OptionPatch is a partial Option.
type OptionPatch struct {
	Label       *string
	Value       *string
	Checked     *bool
	Disabled    *bool
	Description *string
}

// Apply returns a copy of f with the patch merged in. The receiver is not
// modified.
func (f Field) Apply(p FieldPatch) Field {
	out := f.Clone()
	if p.Type != nil {
		out.Type = *p.Type
	}
	if p.Label != nil {
		out.Label = *p.Label
	}
	if p.Name != nil {
		out.Name = *p.Name
	}
	if p.Placeholder != nil {
		out.Placeholder = *p.Placeholder
	}
	if p.Description != nil {
		out.Description = *p.Description
	}
	if p.HelpText != nil {
		out.HelpText = *p.HelpText
	}
	if p.DefaultValue != nil {
		out.DefaultValue = cloneValue(*p.DefaultValue)
	}
	if p.Options != nil {
		out.Options = cloneOptions(*p.Options)
	}
	if p.DataType != nil {
		out.DataType = *p.DataType
	}
	if p.IsRequired != nil {
		out.IsRequired = *p.IsRequired
	}
	if p.IsDisabled != nil {
		out.IsDisabled = *p.IsDisabled
	}
	if p.IsReadOnly != nil {
		out.IsReadOnly = *p.IsReadOnly
	}
	if p.Validation != nil {
		rule := ValidationRule{}
		if out.Validation != nil {
			rule = *out.Validation
		}
		rule = rule.Apply(*p.Validation)
		out.Validation = &rule
	}
	if p.Customization != nil {
		custom := Customization{}
		if out.Customization != nil {
			custom = *out.Customization
		}
		custom = custom.Apply(*p.Customization)
		out.Customization = &custom
	}
	return out
}

// Apply merges a ValidationPatch into a copy of the rule.
func (v ValidationRule) Apply(p ValidationPatch) ValidationRule {
	out := v.Clone()
	if p.Required != nil {
		out.Required = cloneBool(*p.Required)
	}
	if p.MinLength != nil {
		out.MinLength = cloneInt(*p.MinLength)
	}
	if p.MaxLength != nil {
		out.MaxLength = cloneInt(*p.MaxLength)
	}
	if p.Pattern != nil {
		out.Pattern = *p.Pattern
	}
	if p.Min != nil {
		out.Min = cloneFloat(*p.Min)
	}
	if p.Max != nil {
		out.Max = cloneFloat(*p.Max)
	}
	if p.CustomValidation != nil {
		out.CustomValidation = *p.CustomValidation
	}
	if p.AllowedFormats != nil {
		out.AllowedFormats = cloneStrings(*p.AllowedFormats)
	}
	return out
}

// Apply merges a CustomizationPatch into a copy of the customization.
func (c Customization) Apply(p CustomizationPatch) Customization {
	if p.Color != nil {
		c.Color = *p.Color
	}
	if p.BackgroundColor != nil {
		c.BackgroundColor = *p.BackgroundColor
	}
	if p.BorderColor != nil {
		c.BorderColor = *p.BorderColor
	}
	if p.FontSize != nil {
		c.FontSize = *p.FontSize
	}
	if p.FontWeight != nil {
		c.FontWeight = *p.FontWeight
	}
	if p.CustomClass != nil {
		c.CustomClass = *p.CustomClass
	}
	return c
}

// Apply merges an OptionPatch into a copy of the option.
func (o Option) Apply(p OptionPatch) Option {
	if p.Label != nil {
		o.Label = *p.Label
	}
	if p.Value != nil {
		o.Value = *p.Value
	}
	if p.Checked != nil {
		o.Checked = *p.Checked
	}
	if p.Disabled != nil {
		o.Disabled = *p.Disabled
	}
	if p.Description != nil {
		o.Description = *p.Description
	}
	return o
}

// SetInt wraps v for a ValidationPatch bound; pass nil to clear the bound.
func SetInt(v *int) **int { return &v }

// SetFloat wraps v for a ValidationPatch bound; pass nil to clear the bound.
func SetFloat(v *float64) **float64 { return &v }

// SetBool wraps v for ValidationPatch.Required; pass nil to clear it.
func SetBool(v *bool) **bool { return &v }
