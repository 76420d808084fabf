package orchestrator_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-formbuilder/pkg/model"
	"github.com/goliatone/go-formbuilder/pkg/orchestrator"
	"github.com/goliatone/go-formbuilder/pkg/render"
	"github.com/goliatone/go-formbuilder/pkg/store"
)

func TestOrchestrator_AppliesDecoratorsToACopy(t *testing.T) {
	decorator := model.DecoratorFunc(func(tmpl *model.Template) error {
		tmpl.Name = strings.ToUpper(tmpl.Name)
		tmpl.Fields[0].Label = "Decorated"
		return nil
	})

	stored := model.Template{
		ID:   "signup",
		Name: "Signup",
		Fields: []model.Field{
			{ID: "f1", Type: model.FieldTypeText, Label: "Email", Name: "email"},
		},
	}
	templates := store.NewMemory(stored)
	renderer := &stubRenderer{}
	registry := render.NewRegistry()
	registry.MustRegister(renderer)

	orch := orchestrator.New(
		orchestrator.WithStore(templates),
		orchestrator.WithRegistry(registry),
		orchestrator.WithDefaultRenderer(renderer.Name()),
		orchestrator.WithDecorators(decorator),
	)

	output, err := orch.Generate(context.Background(), orchestrator.Request{TemplateID: "signup"})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if string(output) != "ok" {
		t.Fatalf("unexpected renderer output: %s", output)
	}
	if renderer.last.Name != "SIGNUP" || renderer.last.Fields[0].Label != "Decorated" {
		t.Fatalf("decorator not applied: %#v", renderer.last)
	}

	got, err := templates.Get(context.Background(), "signup")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if diff := cmp.Diff(stored, got); diff != "" {
		t.Fatalf("stored template changed (-want +got):\n%s", diff)
	}
}

func TestOrchestrator_DecoratorErrorStopsRender(t *testing.T) {
	boom := errors.New("boom")
	renderer := &stubRenderer{}
	registry := render.NewRegistry()
	registry.MustRegister(renderer)

	orch := orchestrator.New(
		orchestrator.WithRegistry(registry),
		orchestrator.WithDecorators(model.DecoratorFunc(func(*model.Template) error { return boom })),
	)
	_, err := orch.Generate(context.Background(), orchestrator.Request{Template: &model.Template{ID: "x"}})
	if !errors.Is(err, boom) {
		t.Fatalf("expected decorator error, got %v", err)
	}
	if renderer.calls != 0 {
		t.Fatalf("renderer should not run after a decorator error")
	}
}

type stubRenderer struct {
	last  model.Template
	calls int
}

func (s *stubRenderer) Name() string {
	return "stub"
}

func (s *stubRenderer) ContentType() string {
	return "text/plain"
}

func (s *stubRenderer) Render(_ context.Context, tmpl model.Template, _ render.RenderOptions) ([]byte, error) {
	s.last = tmpl
	s.calls++
	return []byte("ok"), nil
}
