package builder_test

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-formbuilder/pkg/builder"
	"github.com/goliatone/go-formbuilder/pkg/model"
	"github.com/goliatone/go-formbuilder/pkg/validation"
)

func TestSetPattern(t *testing.T) {
	b := newBuilder(t, nil)
	text, _ := b.AddField(model.FieldTypeText)
	radio, _ := b.AddField(model.FieldTypeRadio)

	if err := b.SetPattern(text.ID, "[a-"); !errors.Is(err, builder.ErrInvalidPattern) {
		t.Fatalf("expected ErrInvalidPattern, got %v", err)
	}
	if err := b.SetPattern(radio.ID, "[0-9]+"); !errors.Is(err, builder.ErrWrongFieldType) {
		t.Fatalf("expected ErrWrongFieldType, got %v", err)
	}
	if err := b.SetPattern("missing", "x"); !errors.Is(err, builder.ErrFieldNotFound) {
		t.Fatalf("expected ErrFieldNotFound, got %v", err)
	}

	presets := builder.PatternPresets()
	if err := b.SetPattern(text.ID, presets[4].Pattern); err != nil {
		t.Fatalf("set email preset: %v", err)
	}
	got, _ := b.Field(text.ID)
	if got.Validation == nil || got.Validation.Pattern != presets[4].Pattern {
		t.Fatalf("pattern not stored: %+v", got.Validation)
	}
}

func TestLengthBounds(t *testing.T) {
	b := newBuilder(t, nil)
	text, _ := b.AddField(model.FieldTypeText)
	_ = b.SetPattern(text.ID, "[0-9]+")

	if _, err := builder.ParseBound("abc"); !errors.Is(err, builder.ErrInvalidNumber) {
		t.Fatalf("expected ErrInvalidNumber, got %v", err)
	}
	if bound, err := builder.ParseBound("  "); err != nil || bound != nil {
		t.Fatalf("blank input should clear the bound, got %v %v", bound, err)
	}

	if err := b.SetLengthBounds(text.ID, model.Int(5), model.Int(2)); !errors.Is(err, builder.ErrInvalidBounds) {
		t.Fatalf("expected ErrInvalidBounds, got %v", err)
	}

	minLen, _ := builder.ParseBound("2")
	maxLen, _ := builder.ParseBound("8")
	if err := b.SetLengthBounds(text.ID, minLen, maxLen); err != nil {
		t.Fatalf("set bounds: %v", err)
	}
	got, _ := b.Field(text.ID)
	want := &model.ValidationRule{MinLength: model.Int(2), MaxLength: model.Int(8), Pattern: "[0-9]+"}
	if diff := cmp.Diff(want, got.Validation); diff != "" {
		t.Fatalf("validation mismatch (-want +got):\n%s", diff)
	}

	if err := b.SetLengthBounds(text.ID, nil, maxLen); err != nil {
		t.Fatalf("clear min: %v", err)
	}
	got, _ = b.Field(text.ID)
	if got.Validation.MinLength != nil || got.Validation.Pattern != "[0-9]+" {
		t.Fatalf("unexpected validation after clearing min: %+v", got.Validation)
	}
}

func TestSetMultiple(t *testing.T) {
	b := newBuilder(t, nil)
	sel, _ := b.AddField(model.FieldTypeSelect)

	if err := b.SetMultiple(sel.ID, true); err != nil {
		t.Fatalf("set multiple: %v", err)
	}
	got, _ := b.Field(sel.ID)
	if got.Type != model.FieldTypeMultiselect {
		t.Fatalf("expected multiselect, got %s", got.Type)
	}
	_ = b.SetMultiple(sel.ID, false)
	got, _ = b.Field(sel.ID)
	if got.Type != model.FieldTypeSelect {
		t.Fatalf("expected select, got %s", got.Type)
	}
}

func TestSetOptionLabels_KeepsFlags(t *testing.T) {
	b := newBuilder(t, nil)
	sel, _ := b.AddField(model.FieldTypeSelect)
	_ = b.SetOptionLabels(sel.ID, []string{"Red", "", " Green "})
	b.UpdateField(sel.ID, model.FieldPatch{Options: &[]model.Option{
		{Label: "Red", Value: "Red", Disabled: true},
		{Label: "Green", Value: "Green"},
	}})

	if err := b.SetOptionLabels(sel.ID, []string{"Red", "Blue"}); err != nil {
		t.Fatalf("set labels: %v", err)
	}
	got, _ := b.Field(sel.ID)
	want := []model.Option{{Label: "Red", Value: "Red", Disabled: true}, {Label: "Blue", Value: "Blue"}}
	if diff := cmp.Diff(want, got.Options); diff != "" {
		t.Fatalf("options mismatch (-want +got):\n%s", diff)
	}
}

func TestOptionEditors(t *testing.T) {
	b := newBuilder(t, nil)
	radio, _ := b.AddField(model.FieldTypeRadio)
	other, _ := b.AddField(model.FieldTypeCheckbox)

	for i := 0; i < 3; i++ {
		if _, err := b.AddOption(radio.ID); err != nil {
			t.Fatalf("add option: %v", err)
		}
	}
	if err := b.RemoveOption(radio.ID, 0); err != nil {
		t.Fatalf("remove option: %v", err)
	}
	added, _ := b.AddOption(radio.ID)
	if added.Value != "option_4" {
		t.Fatalf("expected unique value option_4, got %q", added.Value)
	}

	_ = b.UpdateOption(radio.ID, 0, model.OptionPatch{Label: model.String("Yes"), Checked: model.Bool(true)})
	_ = b.UpdateOption(radio.ID, 1, model.OptionPatch{Checked: model.Bool(true), Description: model.String("pick me")})

	if err := b.UpdateOption(radio.ID, 9, model.OptionPatch{}); !errors.Is(err, builder.ErrOptionIndex) {
		t.Fatalf("expected ErrOptionIndex, got %v", err)
	}

	got, _ := b.Field(radio.ID)
	want := []model.Option{
		{Label: "Yes", Value: "option_2"},
		{Label: "New option", Value: "option_3", Checked: true, Description: "pick me"},
		{Label: "New option", Value: "option_4"},
	}
	if diff := cmp.Diff(want, got.Options); diff != "" {
		t.Fatalf("options mismatch (-want +got):\n%s", diff)
	}

	untouched, _ := b.Field(other.ID)
	if len(untouched.Options) != 0 {
		t.Fatalf("editing one field's options changed another: %+v", untouched.Options)
	}
}

func TestImageEditors(t *testing.T) {
	b := newBuilder(t, nil)
	img, _ := b.AddField(model.FieldTypeImage)

	for _, format := range []string{"gif", "jpeg", "png"} {
		if err := b.SetImageFormat(img.ID, format, true); err != nil {
			t.Fatalf("allow %s: %v", format, err)
		}
	}
	_ = b.SetImageFormat(img.ID, "gif", false)
	if err := b.SetImageFormat(img.ID, "bmp", true); !errors.Is(err, builder.ErrUnknownFormat) {
		t.Fatalf("expected ErrUnknownFormat, got %v", err)
	}

	size, err := builder.ParseDecimal("2.5")
	if err != nil {
		t.Fatalf("parse size: %v", err)
	}
	if err := b.SetMaxSize(img.ID, size); err != nil {
		t.Fatalf("set size: %v", err)
	}
	if err := b.SetMaxSize(img.ID, model.Float(-1)); !errors.Is(err, builder.ErrInvalidNumber) {
		t.Fatalf("expected ErrInvalidNumber, got %v", err)
	}

	got, _ := b.Field(img.ID)
	want := &model.ValidationRule{Max: model.Float(2.5), AllowedFormats: []string{"jpg", "png"}}
	if diff := cmp.Diff(want, got.Validation); diff != "" {
		t.Fatalf("validation mismatch (-want +got):\n%s", diff)
	}
}

func TestImageEditors_KeepImportedFormats(t *testing.T) {
	tmpl := model.Template{ID: "t", Name: "Upload", Fields: []model.Field{{
		ID: "scan", Type: model.FieldTypeImage, Label: "Scan", Name: "scan",
		Validation: &model.ValidationRule{AllowedFormats: []string{"webp", "JPEG"}},
	}}}
	b := newBuilder(t, nil, builder.WithTemplate(tmpl))

	if err := b.SetImageFormat("scan", "png", true); err != nil {
		t.Fatalf("allow png: %v", err)
	}
	if err := b.SetImageFormat("scan", "jpg", false); err != nil {
		t.Fatalf("drop jpg: %v", err)
	}

	got, _ := b.Field("scan")
	if diff := cmp.Diff([]string{"png", "webp"}, got.Validation.AllowedFormats); diff != "" {
		t.Fatalf("formats mismatch (-want +got):\n%s", diff)
	}
	lint := b.Lint()
	if lint.Valid || len(lint.Issues) != 1 || lint.Issues[0].Code != validation.CodeImageFormat {
		t.Fatalf("expected one image format finding, got %+v", lint.Issues)
	}
}
