package gotemplate_test

import (
	"bytes"
	"embed"
	"fmt"
	"io/fs"
	"strings"
	"testing"

	"github.com/goliatone/go-formbuilder/pkg/render/template/gotemplate"
)

//go:embed testdata/templates/*.tmpl
var embedded embed.FS

func newEngine(t *testing.T, opts ...gotemplate.Option) *gotemplate.Engine {
	t.Helper()
	files, err := fs.Sub(embedded, "testdata/templates")
	if err != nil {
		t.Fatalf("sub fs: %v", err)
	}
	engine, err := gotemplate.New(append([]gotemplate.Option{gotemplate.WithFS(files)}, opts...)...)
	if err != nil {
		t.Fatalf("new engine: %v", err)
	}
	return engine
}

func TestRenderTemplate_WritesToOutputs(t *testing.T) {
	engine := newEngine(t)
	var buf bytes.Buffer
	got, err := engine.RenderTemplate("hello", map[string]any{"name": "Ada"}, &buf)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if got != "Hello Ada!\n" {
		t.Fatalf("unexpected output %q", got)
	}
	if buf.String() != got {
		t.Fatalf("writer got %q, want %q", buf.String(), got)
	}
}

func TestRenderTemplate_StructData(t *testing.T) {
	engine := newEngine(t)
	got, err := engine.RenderTemplate("hello.tmpl", struct {
		Name string `json:"name"`
	}{Name: "Grace"})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if got != "Hello Grace!\n" {
		t.Fatalf("unexpected output %q", got)
	}
}

func TestGlobalsAndDefaultFilters(t *testing.T) {
	engine := newEngine(t, gotemplate.WithGlobals(map[string]any{
		"settings": map[string]any{"env": "staging"},
	}))
	got, err := engine.RenderTemplate("globals", map[string]any{"size": 2.5})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if got != "STAGING 2.5 MB\n" {
		t.Fatalf("unexpected output %q", got)
	}
}

func TestRegisterFilter(t *testing.T) {
	engine := newEngine(t)
	if err := engine.RegisterFilter("shout", func(input any, _ any) (any, error) {
		return fmt.Sprintf("%s!", strings.ToUpper(fmt.Sprint(input))), nil
	}); err != nil {
		t.Fatalf("register filter: %v", err)
	}
	if err := engine.RegisterFilter("shout", func(any, any) (any, error) { return nil, nil }); err == nil {
		t.Fatalf("expected duplicate filter registration to fail")
	}

	got, err := engine.RenderTemplate("filter", map[string]any{"name": "ada"})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if got != "ADA!\n" {
		t.Fatalf("unexpected output %q", got)
	}
}

func TestRenderString(t *testing.T) {
	engine := newEngine(t)
	got, err := engine.RenderString("{{ a }}-{{ b|trim }}", map[string]any{"a": "x", "b": "  y "})
	if err != nil {
		t.Fatalf("render string: %v", err)
	}
	if got != "x-y" {
		t.Fatalf("unexpected output %q", got)
	}
}

func TestNewRequiresSource(t *testing.T) {
	if _, err := gotemplate.New(); err == nil {
		t.Fatalf("expected error without templates")
	}
	if newEngine(t).Has("missing") {
		t.Fatalf("missing template reported as present")
	}
}
