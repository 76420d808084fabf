// Package testsupport holds template fixtures and golden-file helpers shared
// by package tests.
package testsupport

import (
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"hash/crc32"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-formbuilder/pkg/media"
	"github.com/goliatone/go-formbuilder/pkg/model"
)

// SeedFile is the YAML fixture holding the sample templates.
const SeedFile = "templates.yaml"

// SampleTemplate returns a template with one field of every supported type.
func SampleTemplate() model.Template {
	return model.Template{
		ID:          "sample",
		Name:        "Sample",
		Description: "One field of *every* type",
		Fields: []model.Field{
			{ID: "f-name", Type: model.FieldTypeText, Label: "Name", Name: "name", IsRequired: true,
				Validation: &model.ValidationRule{MinLength: model.Int(2)}},
			{ID: "f-country", Type: model.FieldTypeSelect, Label: "Country", Name: "country",
				Options: model.OptionsFromLabels([]string{"Spain", "Peru"})},
			{ID: "f-topics", Type: model.FieldTypeMultiselect, Label: "Topics", Name: "topics",
				Options: model.OptionsFromLabels([]string{"Go", "HTML"})},
			{ID: "f-terms", Type: model.FieldTypeCheckbox, Label: "Accept terms", Name: "terms"},
			{ID: "f-size", Type: model.FieldTypeRadio, Label: "Size", Name: "size",
				Options: []model.Option{{Label: "Small", Value: "s"}, {Label: "Large", Value: "l"}}},
			{ID: "f-photo", Type: model.FieldTypeImage, Label: "Photo", Name: "photo",
				Validation: &model.ValidationRule{Max: model.Float(1), AllowedFormats: []string{"png"}}},
		},
	}
}

// Dir returns the directory holding the fixture files.
func Dir() string {
	_, file, _, ok := runtime.Caller(0)
	if !ok {
		return "testdata"
	}
	return filepath.Join(filepath.Dir(file), "testdata")
}

// Path returns the absolute path of a fixture file.
func Path(name string) string {
	return filepath.Join(Dir(), name)
}

// LoadTemplates reads a JSON or YAML template document.
func LoadTemplates(path string) ([]model.Template, error) {
	if path == "" {
		return nil, errors.New("testsupport: template path is required")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("testsupport: read templates: %w", err)
	}
	templates, err := model.DecodeTemplates(data, model.FormatFromPath(path))
	if err != nil {
		return nil, fmt.Errorf("testsupport: decode templates: %w", err)
	}
	return templates, nil
}

// MustLoadTemplates is LoadTemplates failing the test on error.
func MustLoadTemplates(t *testing.T, path string) []model.Template {
	t.Helper()

	templates, err := LoadTemplates(path)
	if err != nil {
		t.Fatalf("load templates: %v", err)
	}
	return templates
}

// PNG encodes a solid w×h image.
func PNG(t *testing.T, w, h int) []byte {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			img.Set(x, y, color.RGBA{R: 40, G: 120, B: 200, A: 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	return buf.Bytes()
}

// PNGClaimingSize returns a 1x1 PNG whose header declares w×h pixels, for
// exercising decoders that trust the header.
func PNGClaimingSize(t *testing.T, w, h uint32) []byte {
	t.Helper()
	data := PNG(t, 1, 1)
	// IHDR: length(8:12) type(12:16) width(16:20) height(20:24) ... crc(29:33)
	binary.BigEndian.PutUint32(data[16:20], w)
	binary.BigEndian.PutUint32(data[20:24], h)
	binary.BigEndian.PutUint32(data[29:33], crc32.ChecksumIEEE(data[12:29]))
	return data
}

// PNGDataURL is PNG wrapped in a data URL, the shape image answers take.
func PNGDataURL(t *testing.T, w, h int) string {
	t.Helper()
	return media.EncodeDataURL(PNG(t, w, h))
}

// CompareGolden returns a diff string if the values differ.
func CompareGolden(want, got any) string {
	return cmp.Diff(want, got)
}

// MustReadGolden reads a golden file and returns its raw bytes.
func MustReadGolden(t *testing.T, path string) []byte {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read golden: %v", err)
	}
	return data
}

// WriteMaybeGolden updates a golden file when UPDATE_GOLDENS is set. Returns
// true if the golden was written (test should exit early).
func WriteMaybeGolden(t *testing.T, path string, data []byte) bool {
	t.Helper()
	if os.Getenv("UPDATE_GOLDENS") == "" {
		return false
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir golden dir: %v", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write golden: %v", err)
	}
	return true
}

// Context returns a background context for tests.
func Context() context.Context {
	return context.Background()
}
