package server

import (
	"fmt"
	"net/http"
	"slices"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/goliatone/go-formbuilder/pkg/builder"
	"github.com/goliatone/go-formbuilder/pkg/media"
	"github.com/goliatone/go-formbuilder/pkg/model"
	"github.com/goliatone/go-formbuilder/pkg/renderers/vanilla"
	"github.com/goliatone/go-formbuilder/pkg/validation"
)

const checkedValue = "on"

// activeBuilder returns the open builder or redirects home.
func (s *Server) activeBuilder(c *gin.Context) (*builder.Builder, bool) {
	b, err := s.ctrl.Builder()
	if err != nil {
		if c.Request.Method == http.MethodGet {
			s.redirect(c, s.html.Routes().Home)
		} else {
			s.fail(c, err)
		}
		return nil, false
	}
	return b, true
}

func (s *Server) showBuilder(c *gin.Context) {
	b, ok := s.activeBuilder(c)
	if !ok {
		return
	}
	s.renderBuilder(c, b, http.StatusOK, "")
}

func (s *Server) renderBuilder(c *gin.Context, b *builder.Builder, status int, errMessage string) {
	page := vanilla.BuilderPage{
		Template: b.Preview(),
		Editing:  b.Editing(),
		Issues:   b.Lint().Issues,
		Flash:    s.takeFlash(),
		Error:    errMessage,
	}
	body, err := s.html.RenderBuilder(c.Request.Context(), page)
	s.htmlStatus(c, status, body, err)
}

// builderError re-renders the builder with err for input errors and fails
// otherwise.
func (s *Server) builderError(c *gin.Context, b *builder.Builder, err error) {
	status := statusFor(err)
	if status == http.StatusBadRequest || status == http.StatusNotFound {
		_ = c.Error(err)
		s.renderBuilder(c, b, status, err.Error())
		return
	}
	s.fail(c, err)
}

func (s *Server) backToBuilder(c *gin.Context) {
	s.redirect(c, s.html.Routes().Builder)
}

func (s *Server) updateMeta(c *gin.Context) {
	b, ok := s.activeBuilder(c)
	if !ok {
		return
	}
	if name, ok := c.GetPostForm("name"); ok {
		b.SetName(name)
	}
	if description, ok := c.GetPostForm("description"); ok {
		b.SetDescription(description)
	}
	s.backToBuilder(c)
}

func (s *Server) addField(c *gin.Context) {
	b, ok := s.activeBuilder(c)
	if !ok {
		return
	}
	fieldType, _ := model.ParseFieldType(c.PostForm("type"))
	if _, err := b.AddField(fieldType); err != nil {
		s.builderError(c, b, err)
		return
	}
	s.backToBuilder(c)
}

// fieldForm is the parsed settings form of one field. Numeric and pattern
// inputs are checked before anything is applied, so a bad value leaves the
// field untouched.
type fieldForm struct {
	patch model.FieldPatch

	pattern          string
	minLength        *int
	maxLength        *int
	minValue         *float64
	maxValue         *float64
	message          string
	multiple         bool
	optionLines      []string
	hasOptionLines   bool
	maxSize          *float64
	formats          []string
	hasImageSettings bool
}

func parseFieldForm(c *gin.Context, field model.Field) (fieldForm, error) {
	var form fieldForm
	patch := &form.patch

	for key, target := range map[string]**string{
		"label":       &patch.Label,
		"name":        &patch.Name,
		"placeholder": &patch.Placeholder,
		"description": &patch.Description,
		"help_text":   &patch.HelpText,
	} {
		if value, ok := c.GetPostForm(key); ok {
			value := value
			*target = &value
		}
	}
	required := c.PostForm("required") == checkedValue
	disabled := c.PostForm("disabled") == checkedValue
	readOnly := c.PostForm("read_only") == checkedValue
	patch.IsRequired = &required
	patch.IsDisabled = &disabled
	patch.IsReadOnly = &readOnly

	patch.Customization = customizationPatch(c)

	switch field.Type {
	case model.FieldTypeText:
		if raw, ok := c.GetPostForm("data_type"); ok && raw != "" {
			dataType := model.DataType(strings.ToLower(strings.TrimSpace(raw)))
			if !slices.Contains(model.DataTypes(), dataType) {
				return form, fmt.Errorf("%w: unknown data type %q", errBadRequest, raw)
			}
			patch.DataType = &dataType
		}
		form.pattern = strings.TrimSpace(c.PostForm("pattern"))
		if preset := c.PostForm("pattern_preset"); preset != "" {
			form.pattern = preset
		}
		if form.pattern != "" {
			if _, err := validation.CompilePattern(form.pattern); err != nil {
				return form, fmt.Errorf("%w: %v", builder.ErrInvalidPattern, err)
			}
		}
		var err error
		if form.minLength, err = builder.ParseBound(c.PostForm("min_length")); err != nil {
			return form, err
		}
		if form.maxLength, err = builder.ParseBound(c.PostForm("max_length")); err != nil {
			return form, err
		}
		if form.minValue, err = builder.ParseDecimal(c.PostForm("min")); err != nil {
			return form, err
		}
		if form.maxValue, err = builder.ParseDecimal(c.PostForm("max")); err != nil {
			return form, err
		}
		if form.minLength != nil && form.maxLength != nil && *form.minLength > *form.maxLength {
			return form, fmt.Errorf("%w: min length %d > max length %d", builder.ErrInvalidBounds, *form.minLength, *form.maxLength)
		}
		if form.minValue != nil && form.maxValue != nil && *form.minValue > *form.maxValue {
			return form, fmt.Errorf("%w: min %v > max %v", builder.ErrInvalidBounds, *form.minValue, *form.maxValue)
		}
		form.message = c.PostForm("message")

	case model.FieldTypeSelect, model.FieldTypeMultiselect:
		form.multiple = c.PostForm("multiple") == checkedValue
		if raw, ok := c.GetPostForm("option_lines"); ok {
			form.hasOptionLines = true
			form.optionLines = strings.Split(strings.ReplaceAll(raw, "\r\n", "\n"), "\n")
		}

	case model.FieldTypeImage:
		form.hasImageSettings = true
		var err error
		if form.maxSize, err = builder.ParseDecimal(c.PostForm("max_size")); err != nil {
			return form, err
		}
		if form.maxSize != nil && *form.maxSize <= 0 {
			return form, fmt.Errorf("%w: size must be positive", builder.ErrInvalidNumber)
		}
		form.formats = c.PostFormArray("formats")
		for _, format := range form.formats {
			if _, ok := media.MIMEForFormat(format); !ok {
				return form, fmt.Errorf("%w: %q", builder.ErrUnknownFormat, format)
			}
		}
	}
	return form, nil
}

func customizationPatch(c *gin.Context) *model.CustomizationPatch {
	patch := &model.CustomizationPatch{}
	set := false
	for key, target := range map[string]**string{
		"color":            &patch.Color,
		"background_color": &patch.BackgroundColor,
		"border_color":     &patch.BorderColor,
		"font_size":        &patch.FontSize,
		"font_weight":      &patch.FontWeight,
		"custom_class":     &patch.CustomClass,
	} {
		if value, ok := c.GetPostForm(key); ok {
			value := strings.TrimSpace(value)
			*target = &value
			set = true
		}
	}
	if !set {
		return nil
	}
	return patch
}

// apply runs the type specific editors after the generic patch.
func (f fieldForm) apply(b *builder.Builder, field model.Field) error {
	if !b.UpdateField(field.ID, f.patch) {
		return fmt.Errorf("%w: %s", builder.ErrFieldNotFound, field.ID)
	}
	switch field.Type {
	case model.FieldTypeText:
		if err := b.SetPattern(field.ID, f.pattern); err != nil {
			return err
		}
		if err := b.SetLengthBounds(field.ID, f.minLength, f.maxLength); err != nil {
			return err
		}
		if err := b.SetValueBounds(field.ID, f.minValue, f.maxValue); err != nil {
			return err
		}
		return b.SetErrorMessage(field.ID, f.message)
	case model.FieldTypeSelect, model.FieldTypeMultiselect:
		if f.hasOptionLines {
			if err := b.SetOptionLabels(field.ID, f.optionLines); err != nil {
				return err
			}
		}
		return b.SetMultiple(field.ID, f.multiple)
	case model.FieldTypeImage:
		if !f.hasImageSettings {
			return nil
		}
		if err := b.SetMaxSize(field.ID, f.maxSize); err != nil {
			return err
		}
		for _, format := range media.Formats() {
			if err := b.SetImageFormat(field.ID, format, slices.Contains(f.formats, format)); err != nil {
				return err
			}
		}
	}
	return nil
}

func (s *Server) updateField(c *gin.Context) {
	b, ok := s.activeBuilder(c)
	if !ok {
		return
	}
	id := c.Param("field")
	field, found := b.Field(id)
	if !found {
		s.builderError(c, b, fmt.Errorf("%w: %s", builder.ErrFieldNotFound, id))
		return
	}
	form, err := parseFieldForm(c, field)
	if err != nil {
		s.builderError(c, b, err)
		return
	}
	if err := form.apply(b, field); err != nil {
		s.builderError(c, b, err)
		return
	}
	s.backToBuilder(c)
}

func (s *Server) removeField(c *gin.Context) {
	b, ok := s.activeBuilder(c)
	if !ok {
		return
	}
	if !b.RemoveField(c.Param("field")) {
		s.builderError(c, b, fmt.Errorf("%w: %s", builder.ErrFieldNotFound, c.Param("field")))
		return
	}
	s.backToBuilder(c)
}

func (s *Server) moveField(c *gin.Context) {
	b, ok := s.activeBuilder(c)
	if !ok {
		return
	}
	var delta int
	switch c.PostForm("direction") {
	case "up":
		delta = -1
	case "down":
		delta = 1
	default:
		s.builderError(c, b, fmt.Errorf("%w: direction must be up or down", errBadRequest))
		return
	}
	id := c.Param("field")
	if _, found := b.Field(id); !found {
		s.builderError(c, b, fmt.Errorf("%w: %s", builder.ErrFieldNotFound, id))
		return
	}
	// Moving past either end is a no-op.
	b.MoveField(id, delta)
	s.backToBuilder(c)
}

func (s *Server) addOption(c *gin.Context) {
	b, ok := s.activeBuilder(c)
	if !ok {
		return
	}
	if _, err := b.AddOption(c.Param("field")); err != nil {
		s.builderError(c, b, err)
		return
	}
	s.backToBuilder(c)
}

func optionIndex(c *gin.Context) (int, error) {
	index, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		return 0, fmt.Errorf("%w: %q", builder.ErrOptionIndex, c.Param("index"))
	}
	return index, nil
}

func (s *Server) updateOption(c *gin.Context) {
	b, ok := s.activeBuilder(c)
	if !ok {
		return
	}
	index, err := optionIndex(c)
	if err != nil {
		s.builderError(c, b, err)
		return
	}
	var patch model.OptionPatch
	for key, target := range map[string]**string{
		"label":       &patch.Label,
		"value":       &patch.Value,
		"description": &patch.Description,
	} {
		if value, ok := c.GetPostForm(key); ok {
			value := value
			*target = &value
		}
	}
	checked := c.PostForm("checked") == checkedValue
	disabled := c.PostForm("disabled") == checkedValue
	patch.Checked = &checked
	patch.Disabled = &disabled

	if err := b.UpdateOption(c.Param("field"), index, patch); err != nil {
		s.builderError(c, b, err)
		return
	}
	s.backToBuilder(c)
}

func (s *Server) removeOption(c *gin.Context) {
	b, ok := s.activeBuilder(c)
	if !ok {
		return
	}
	index, err := optionIndex(c)
	if err != nil {
		s.builderError(c, b, err)
		return
	}
	if err := b.RemoveOption(c.Param("field"), index); err != nil {
		s.builderError(c, b, err)
		return
	}
	s.backToBuilder(c)
}

// saveTemplate persists the builder. With enforcement on, lint issues keep
// the builder open.
func (s *Server) saveTemplate(c *gin.Context) {
	b, ok := s.activeBuilder(c)
	if !ok {
		return
	}
	if lint := b.Lint(); !lint.Valid {
		for _, issue := range lint.Issues {
			s.logger.Warn("template lint", "field", issue.Field, "code", issue.Code, "message", issue.Message)
		}
		if s.enforce {
			s.renderBuilder(c, b, http.StatusUnprocessableEntity, "Fix the issues below before saving.")
			return
		}
	}
	tmpl, err := s.ctrl.Save(c.Request.Context())
	if err != nil {
		s.builderError(c, b, err)
		return
	}
	s.setFlash(fmt.Sprintf("Saved %q.", tmpl.Name))
	s.redirect(c, s.html.Routes().Home)
}
