package tui

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"image"
	"image/color"
	"image/png"
	"io"
	"os"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-formbuilder/pkg/model"
	"github.com/goliatone/go-formbuilder/pkg/render"
)

type stubDriver struct {
	inputs       []string
	selectIdx    []int
	multiIdx     [][]int
	confirm      []bool
	infoMessages []string
	inputPos     int
	selectPos    int
	multiPos     int
	confirmPos   int
}

func (s *stubDriver) Input(_ context.Context, _ InputConfig) (string, error) {
	if s.inputPos >= len(s.inputs) {
		return "", errors.New("no input scripted")
	}
	val := s.inputs[s.inputPos]
	s.inputPos++
	return val, nil
}

func (s *stubDriver) Confirm(_ context.Context, _ ConfirmConfig) (bool, error) {
	if s.confirmPos >= len(s.confirm) {
		return false, errors.New("no confirm scripted")
	}
	val := s.confirm[s.confirmPos]
	s.confirmPos++
	return val, nil
}

func (s *stubDriver) Select(_ context.Context, _ SelectConfig) (int, error) {
	if s.selectPos >= len(s.selectIdx) {
		return -1, errors.New("no select scripted")
	}
	val := s.selectIdx[s.selectPos]
	s.selectPos++
	return val, nil
}

func (s *stubDriver) MultiSelect(_ context.Context, _ SelectConfig) ([]int, error) {
	if s.multiPos >= len(s.multiIdx) {
		return nil, errors.New("no multiselect scripted")
	}
	val := s.multiIdx[s.multiPos]
	s.multiPos++
	return val, nil
}

func (s *stubDriver) Info(_ context.Context, msg string) error {
	s.infoMessages = append(s.infoMessages, msg)
	return nil
}

func surveyTemplate() model.Template {
	return model.Template{
		ID:   "survey",
		Name: "Survey",
		Fields: []model.Field{
			{ID: "f1", Type: model.FieldTypeText, Label: "Name", Name: "name", IsRequired: true,
				Validation: &model.ValidationRule{MinLength: model.Int(2)}},
			{ID: "f2", Type: model.FieldTypeSelect, Label: "Country", Name: "country",
				Options: model.OptionsFromLabels([]string{"Spain", "Peru"})},
			{ID: "f3", Type: model.FieldTypeMultiselect, Label: "Topics", Name: "topics",
				Options: model.OptionsFromLabels([]string{"Go", "HTML"})},
			{ID: "f4", Type: model.FieldTypeCheckbox, Label: "Terms", Name: "terms"},
			{ID: "f5", Type: model.FieldTypeRadio, Label: "Size", Name: "size",
				Options: []model.Option{{Label: "Small", Value: "s"}, {Label: "Large", Value: "l"}}},
			{ID: "f6", Type: model.FieldTypeCheckbox, Label: "Extras", Name: "extras",
				Options: model.OptionsFromLabels([]string{"A", "B"})},
		},
	}
}

func TestRenderCollectsAnswersPerFieldType(t *testing.T) {
	driver := &stubDriver{
		inputs:    []string{"A", "Ada"},
		selectIdx: []int{1, 0},
		multiIdx:  [][]int{{0, 1}, {1}},
		confirm:   []bool{true},
	}
	r, err := New(WithPromptDriver(driver), WithEnforcement(true))
	if err != nil {
		t.Fatalf("new: %v", err)
	}

	out, err := r.Render(context.Background(), surveyTemplate(), render.RenderOptions{})
	if err != nil {
		t.Fatalf("render: %v", err)
	}

	var got map[string]any
	if err := json.Unmarshal(out, &got); err != nil {
		t.Fatalf("decode output: %v", err)
	}
	want := map[string]any{
		"name":    "Ada",
		"country": "Peru",
		"topics":  []any{"Go", "HTML"},
		"terms":   true,
		"size":    "s",
		"extras":  []any{"B"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("answers mismatch (-want +got):\n%s", diff)
	}

	wantInfo := []string{"› Survey", "✗ must be at least 2 characters"}
	if diff := cmp.Diff(wantInfo, driver.infoMessages); diff != "" {
		t.Fatalf("info messages mismatch (-want +got):\n%s", diff)
	}
}

func TestRenderFormEncodedOutput(t *testing.T) {
	tmpl := model.Template{ID: "t", Fields: []model.Field{
		{ID: "f1", Type: model.FieldTypeText, Name: "name"},
		{ID: "f2", Type: model.FieldTypeMultiselect, Name: "topics", Options: model.OptionsFromLabels([]string{"Go", "HTML"})},
	}}
	driver := &stubDriver{inputs: []string{"Ada"}, multiIdx: [][]int{{0, 1}}}
	r, err := New(WithPromptDriver(driver), WithOutputFormat(OutputFormatFormURLEncoded))
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	if r.ContentType() != "application/x-www-form-urlencoded" {
		t.Fatalf("unexpected content type %q", r.ContentType())
	}

	out, err := r.Render(context.Background(), tmpl, render.RenderOptions{})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if diff := cmp.Diff("name=Ada&topics%5B%5D=Go&topics%5B%5D=HTML", string(out)); diff != "" {
		t.Fatalf("output mismatch (-want +got):\n%s", diff)
	}
}

func TestRenderReadsImageFromPath(t *testing.T) {
	var buf bytes.Buffer
	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	img.Set(1, 1, color.RGBA{R: 255, A: 255})
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode png: %v", err)
	}

	opener := func(path string) (io.ReadCloser, error) {
		if path != "photo.png" {
			return nil, os.ErrNotExist
		}
		return io.NopCloser(bytes.NewReader(buf.Bytes())), nil
	}
	tmpl := model.Template{ID: "t", Fields: []model.Field{{
		ID: "p", Type: model.FieldTypeImage, Label: "Photo", Name: "photo", IsRequired: true,
		Validation: &model.ValidationRule{AllowedFormats: []string{"png"}},
	}}}
	driver := &stubDriver{inputs: []string{"", "missing.png", "photo.png"}}
	r, err := New(WithPromptDriver(driver), WithFileOpener(opener), WithOutputFormat(OutputFormatPrettyText), WithEnforcement(true))
	if err != nil {
		t.Fatalf("new: %v", err)
	}

	out, err := r.Render(context.Background(), tmpl, render.RenderOptions{})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if !strings.HasPrefix(string(out), "Photo: image/png (") {
		t.Fatalf("unexpected output %q", out)
	}
	if len(driver.infoMessages) != 2 {
		t.Fatalf("expected a required error and an open error, got %v", driver.infoMessages)
	}
}

func TestRenderKeepsInvalidAnswersWithoutEnforcement(t *testing.T) {
	tmpl := model.Template{ID: "t", Fields: []model.Field{
		{ID: "f1", Type: model.FieldTypeText, Label: "Name", Name: "name", IsRequired: true},
		{ID: "f2", Type: model.FieldTypeImage, Label: "Photo", Name: "photo", IsRequired: true},
	}}
	driver := &stubDriver{inputs: []string{"", ""}}
	r, err := New(WithPromptDriver(driver), WithEnforcement(false))
	if err != nil {
		t.Fatalf("new: %v", err)
	}

	out, err := r.Render(context.Background(), tmpl, render.RenderOptions{})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if diff := cmp.Diff(`{"name":""}`, string(out)); diff != "" {
		t.Fatalf("output mismatch (-want +got):\n%s", diff)
	}
	if driver.inputPos != 2 {
		t.Fatalf("expected each field to be asked once, got %d prompts", driver.inputPos)
	}
	if len(driver.infoMessages) != 2 {
		t.Fatalf("expected a required notice per field, got %v", driver.infoMessages)
	}
}

type validatingDriver struct {
	*stubDriver
	validators []func(string) error
}

func (d *validatingDriver) Input(ctx context.Context, cfg InputConfig) (string, error) {
	d.validators = append(d.validators, cfg.Validator)
	return d.stubDriver.Input(ctx, cfg)
}

func TestRenderInputValidatorFollowsEnforcement(t *testing.T) {
	tmpl := model.Template{ID: "t", Fields: []model.Field{
		{ID: "f1", Type: model.FieldTypeText, Name: "name", IsRequired: true},
	}}
	for _, enforce := range []bool{false, true} {
		driver := &validatingDriver{stubDriver: &stubDriver{inputs: []string{"Ada"}}}
		r, err := New(WithPromptDriver(driver), WithEnforcement(enforce))
		if err != nil {
			t.Fatalf("new: %v", err)
		}
		if _, err := r.Render(context.Background(), tmpl, render.RenderOptions{}); err != nil {
			t.Fatalf("render (enforce=%v): %v", enforce, err)
		}
		if len(driver.validators) != 1 {
			t.Fatalf("expected one prompt, got %d", len(driver.validators))
		}
		validator := driver.validators[0]
		if (validator != nil) != enforce {
			t.Fatalf("enforce=%v: unexpected validator presence %v", enforce, validator != nil)
		}
		if enforce && validator("") == nil {
			t.Fatalf("expected validator to reject a blank required answer")
		}
	}
}

func TestRenderSkipsUnknownAndDisabledFields(t *testing.T) {
	tmpl := model.Template{ID: "t", Fields: []model.Field{
		{ID: "sig", Type: model.FieldType("signature"), Name: "sig"},
		{ID: "locked", Type: model.FieldTypeText, Name: "locked", IsReadOnly: true, DefaultValue: "fixed"},
		{ID: "note", Type: model.FieldTypeText, Name: "note"},
	}}
	driver := &stubDriver{inputs: []string{"hi"}}
	r, err := New(WithPromptDriver(driver), WithTheme(Theme{ErrorPrefix: "! "}))
	if err != nil {
		t.Fatalf("new: %v", err)
	}

	out, err := r.Render(context.Background(), tmpl, render.RenderOptions{
		Errors:     map[string][]string{"note": {"was rejected"}},
		FormErrors: []string{"try again"},
	})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if diff := cmp.Diff(`{"locked":"fixed","note":"hi"}`, string(out)); diff != "" {
		t.Fatalf("output mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"! try again", "! was rejected"}, driver.infoMessages); diff != "" {
		t.Fatalf("info messages mismatch (-want +got):\n%s", diff)
	}
}

func TestRenderPropagatesAbort(t *testing.T) {
	r, err := New(WithPromptDriver(abortDriver{&stubDriver{}}))
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	_, err = r.Render(context.Background(), surveyTemplate(), render.RenderOptions{})
	if !errors.Is(err, ErrAborted) {
		t.Fatalf("expected ErrAborted, got %v", err)
	}
}

func TestNewRejectsUnknownOutputFormat(t *testing.T) {
	if _, err := New(WithPromptDriver(&stubDriver{}), WithOutputFormat("xml")); err == nil {
		t.Fatalf("expected error for unknown output format")
	}
}

type abortDriver struct{ *stubDriver }

func (abortDriver) Input(context.Context, InputConfig) (string, error) { return "", ErrAborted }
func (abortDriver) Info(context.Context, string) error                 { return nil }
