package controller_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-formbuilder/pkg/builder"
	"github.com/goliatone/go-formbuilder/pkg/controller"
	"github.com/goliatone/go-formbuilder/pkg/model"
	"github.com/goliatone/go-formbuilder/pkg/store"
	"github.com/goliatone/go-formbuilder/pkg/validation"
)

var fixed = time.Date(2024, 3, 1, 9, 30, 0, 0, time.UTC)

func sequence(prefix string) func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("%s-%d", prefix, n)
	}
}

func newController(t *testing.T, s store.Store, opts ...controller.Option) *controller.Controller {
	t.Helper()
	base := []controller.Option{
		controller.WithClock(func() time.Time { return fixed }),
		controller.WithSubmissionIDs(sequence("sub")),
		controller.WithBuilderOptions(builder.WithIDGenerator(sequence("tpl"))),
	}
	return controller.New(s, append(base, opts...)...)
}

func threeTemplates() []model.Template {
	return []model.Template{
		{ID: "t1", Name: "First", Fields: []model.Field{{ID: "a", Type: model.FieldTypeText, Name: "a"}}},
		{ID: "t2", Name: "Second"},
		{ID: "t3", Name: "Third", Fields: []model.Field{{ID: "r", Type: model.FieldTypeRadio, Name: "r", Options: model.OptionsFromLabels([]string{"x", "y"})}}},
	}
}

func TestCatalogDeleteKeepsOthers(t *testing.T) {
	ctx := context.Background()
	seed := threeTemplates()
	c := newController(t, store.NewMemory(seed...))

	cat, err := c.Catalog(ctx)
	if err != nil {
		t.Fatalf("catalog: %v", err)
	}
	if err := cat.Delete(ctx, "t2"); err != nil {
		t.Fatalf("delete: %v", err)
	}

	got, _ := c.Templates(ctx)
	want := []model.Template{seed[0], seed[2]}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("templates mismatch (-want +got):\n%s", diff)
	}

	if err := c.OnDelete(ctx, "t2"); err != nil {
		t.Fatalf("deleting a missing template should be ignored, got %v", err)
	}
}

func TestCreateAndSave(t *testing.T) {
	ctx := context.Background()
	s := store.NewMemory()
	c := newController(t, s)

	if err := c.StartCreate(ctx); err != nil {
		t.Fatalf("start create: %v", err)
	}
	if c.Mode() != controller.ModeCreating {
		t.Fatalf("expected creating, got %s", c.Mode())
	}
	b, err := c.Builder()
	if err != nil {
		t.Fatalf("builder: %v", err)
	}
	b.SetName("Signup")
	if _, err := b.AddField(model.FieldTypeText); err != nil {
		t.Fatalf("add field: %v", err)
	}

	saved, err := c.Save(ctx)
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if c.Mode() != controller.ModeListing {
		t.Fatalf("expected listing after save, got %s", c.Mode())
	}
	stored, err := s.Get(ctx, saved.ID)
	if err != nil {
		t.Fatalf("stored template: %v", err)
	}
	if diff := cmp.Diff(saved, stored); diff != "" {
		t.Fatalf("stored mismatch (-want +got):\n%s", diff)
	}
	if _, err := c.Builder(); !errors.Is(err, controller.ErrWrongMode) {
		t.Fatalf("builder should be discarded after save, got %v", err)
	}
}

func TestEditUpdatesInPlace(t *testing.T) {
	ctx := context.Background()
	s := store.NewMemory(threeTemplates()...)
	c := newController(t, s)

	cat, _ := c.Catalog(ctx)
	if err := cat.Edit(ctx, "t1"); err != nil {
		t.Fatalf("edit: %v", err)
	}
	if c.Mode() != controller.ModeEditing {
		t.Fatalf("expected editing, got %s", c.Mode())
	}
	b, _ := c.Builder()
	b.SetName("First (renamed)")
	if _, err := c.Save(ctx); err != nil {
		t.Fatalf("save: %v", err)
	}

	list, _ := s.List(ctx)
	got := make([]string, 0, len(list))
	for _, tmpl := range list {
		got = append(got, tmpl.ID+":"+tmpl.Name)
	}
	want := []string{"t1:First (renamed)", "t2:Second", "t3:Third"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("store mismatch (-want +got):\n%s", diff)
	}
}

func TestFillAndSubmit(t *testing.T) {
	ctx := context.Background()
	var handled []model.Submission
	c := newController(t, store.NewMemory(threeTemplates()...),
		controller.WithSubmissionHandler(func(_ context.Context, s model.Submission) error {
			handled = append(handled, s)
			return nil
		}),
	)

	cat, _ := c.Catalog(ctx)
	if err := cat.Use(ctx, "t3"); err != nil {
		t.Fatalf("use: %v", err)
	}
	f, err := c.Filler()
	if err != nil {
		t.Fatalf("filler: %v", err)
	}
	if err := f.SelectOption("r", "y"); err != nil {
		t.Fatalf("select: %v", err)
	}

	sub, err := c.Submit(ctx)
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	want := model.Submission{ID: "sub-1", TemplateID: "t3", Data: map[string]any{"r": "y"}, SubmittedAt: fixed}
	if diff := cmp.Diff(want, sub); diff != "" {
		t.Fatalf("submission mismatch (-want +got):\n%s", diff)
	}
	if len(handled) != 1 {
		t.Fatalf("expected handler to run once, got %d", len(handled))
	}
	last, ok := c.LastSubmission()
	if !ok || last.ID != "sub-1" {
		t.Fatalf("last submission not recorded: %+v", last)
	}
	if c.Mode() != controller.ModeListing {
		t.Fatalf("expected listing after submit, got %s", c.Mode())
	}
}

func TestEnforcedSubmitStaysFilling(t *testing.T) {
	ctx := context.Background()
	tmpl := model.Template{ID: "req", Fields: []model.Field{{
		ID: "n", Type: model.FieldTypeText, Name: "n", Validation: &model.ValidationRule{Required: model.Bool(true)},
	}}}
	c := newController(t, store.NewMemory(tmpl), controller.WithEnforcement(true))

	if err := c.OnUse(ctx, tmpl); err != nil {
		t.Fatalf("use: %v", err)
	}
	_, err := c.Submit(ctx)
	var verr *validation.Error
	if !errors.As(err, &verr) {
		t.Fatalf("expected *validation.Error, got %v", err)
	}
	if c.Mode() != controller.ModeFilling {
		t.Fatalf("failed submit should keep the filler open, got %s", c.Mode())
	}
	if _, ok := c.LastSubmission(); ok {
		t.Fatalf("rejected answers must not be recorded")
	}
}

func TestModesAreExclusive(t *testing.T) {
	ctx := context.Background()
	seed := threeTemplates()
	c := newController(t, store.NewMemory(seed...))

	_ = c.StartCreate(ctx)
	_ = c.OnUse(ctx, seed[0])
	if _, err := c.Builder(); !errors.Is(err, controller.ErrWrongMode) {
		t.Fatalf("entering filling must discard the builder, got %v", err)
	}
	if _, err := c.Save(ctx); !errors.Is(err, controller.ErrWrongMode) {
		t.Fatalf("save while filling should fail, got %v", err)
	}

	_ = c.OnEdit(ctx, seed[1])
	if _, err := c.Filler(); !errors.Is(err, controller.ErrWrongMode) {
		t.Fatalf("entering editing must discard the filler, got %v", err)
	}
	if _, err := c.Submit(ctx); !errors.Is(err, controller.ErrWrongMode) {
		t.Fatalf("submit while editing should fail, got %v", err)
	}

	c.Cancel()
	if c.Mode() != controller.ModeListing {
		t.Fatalf("cancel should return to listing, got %s", c.Mode())
	}
}

func TestDeleteActiveTemplateReturnsToListing(t *testing.T) {
	ctx := context.Background()
	seed := threeTemplates()
	c := newController(t, store.NewMemory(seed...))

	_ = c.OnEdit(ctx, seed[2])
	if err := c.OnDelete(ctx, "t3"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if c.Mode() != controller.ModeListing {
		t.Fatalf("expected listing, got %s", c.Mode())
	}
}
