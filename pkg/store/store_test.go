package store_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-formbuilder/pkg/model"
	"github.com/goliatone/go-formbuilder/pkg/store"
)

func ids(templates []model.Template) []string {
	out := make([]string, 0, len(templates))
	for _, tmpl := range templates {
		out = append(out, tmpl.ID)
	}
	return out
}

func TestMemory_CRUD(t *testing.T) {
	ctx := context.Background()
	s := store.NewMemory(model.Template{ID: "1", Name: "one"})

	if err := s.Add(ctx, model.Template{ID: "2", Name: "two"}); err != nil {
		t.Fatalf("add: %v", err)
	}
	if err := s.Add(ctx, model.Template{ID: "3", Name: "three"}); err != nil {
		t.Fatalf("add: %v", err)
	}
	if err := s.Add(ctx, model.Template{ID: "2"}); !errors.Is(err, store.ErrExists) {
		t.Fatalf("expected ErrExists, got %v", err)
	}
	if err := s.Add(ctx, model.Template{Name: "anon"}); !errors.Is(err, store.ErrInvalid) {
		t.Fatalf("expected ErrInvalid, got %v", err)
	}

	if err := s.Update(ctx, model.Template{ID: "2", Name: "TWO"}); err != nil {
		t.Fatalf("update: %v", err)
	}
	if err := s.Update(ctx, model.Template{ID: "9"}); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	got, err := s.Get(ctx, "2")
	if err != nil || got.Name != "TWO" {
		t.Fatalf("get after update: %+v %v", got, err)
	}

	if err := s.Remove(ctx, "1"); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if err := s.Remove(ctx, "1"); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	list, _ := s.List(ctx)
	if diff := cmp.Diff([]string{"2", "3"}, ids(list)); diff != "" {
		t.Fatalf("ids mismatch (-want +got):\n%s", diff)
	}
}

func TestMemory_ReturnsCopies(t *testing.T) {
	ctx := context.Background()
	tmpl := model.Template{ID: "1", Fields: []model.Field{{ID: "f", Label: "Original"}}}
	s := store.NewMemory()
	_ = s.Add(ctx, tmpl)

	tmpl.Fields[0].Label = "changed after add"
	got, _ := s.Get(ctx, "1")
	got.Fields[0].Label = "changed after get"

	again, _ := s.Get(ctx, "1")
	if again.Fields[0].Label != "Original" {
		t.Fatalf("store leaked mutable state: %q", again.Fields[0].Label)
	}
}

func TestMemory_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := store.NewMemory().List(ctx); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestLoadSeedAndExport(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	path := filepath.Join(dir, "seed.yaml")
	doc := `
- id: contact
  name: Contact
  fields:
    - id: email
      type: text
      label: Email
      name: email
      dataType: email
- id: feedback
  name: Feedback
  fields:
    - id: rating
      type: radio
      label: Rating
      name: rating
      options: [good, bad]
`
	if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
		t.Fatalf("write seed: %v", err)
	}

	s := store.NewMemory(model.Template{ID: "contact", Name: "stale"})
	n, err := store.LoadSeed(ctx, s, path)
	if err != nil {
		t.Fatalf("load seed: %v", err)
	}
	if n != 2 {
		t.Fatalf("expected 2 templates, got %d", n)
	}

	contact, _ := s.Get(ctx, "contact")
	if contact.Name != "Contact" {
		t.Fatalf("seed should replace existing template, got %q", contact.Name)
	}
	feedback, _ := s.Get(ctx, "feedback")
	if diff := cmp.Diff([]string{"good", "bad"}, feedback.Fields[0].OptionValues()); diff != "" {
		t.Fatalf("options mismatch (-want +got):\n%s", diff)
	}

	data, err := store.Export(ctx, s, model.FormatJSON)
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	round, err := model.DecodeTemplates(data, model.FormatJSON)
	if err != nil {
		t.Fatalf("decode export: %v", err)
	}
	list, _ := s.List(ctx)
	if diff := cmp.Diff(list, round); diff != "" {
		t.Fatalf("export mismatch (-want +got):\n%s", diff)
	}
}
