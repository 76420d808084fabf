package components

import (
	"bytes"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func noop(*bytes.Buffer, Control, ComponentData) error { return nil }

func TestRegistryDescriptorClone(t *testing.T) {
	reg := New()
	if err := reg.Register("Text", Descriptor{Renderer: noop, Stylesheets: []string{"/a.css"}}); err != nil {
		t.Fatalf("register: %v", err)
	}

	desc, ok := reg.Descriptor("text")
	if !ok {
		t.Fatalf("descriptor not found")
	}
	desc.Stylesheets = append(desc.Stylesheets, "/mutated.css")

	original, _ := reg.Descriptor("TEXT")
	if diff := cmp.Diff([]string{"/a.css"}, original.Stylesheets); diff != "" {
		t.Fatalf("registry descriptor mutated (-want +got):\n%s", diff)
	}
}

func TestRegistryRejectsIncompleteDescriptors(t *testing.T) {
	reg := New()
	if err := reg.Register("", Descriptor{Renderer: noop}); err == nil {
		t.Fatalf("expected error for empty type")
	}
	if err := reg.Register("text", Descriptor{}); err == nil {
		t.Fatalf("expected error for nil renderer")
	}
}

func TestRegistryStylesheetsDeduplicates(t *testing.T) {
	reg := New()
	reg.MustRegister("text", Descriptor{Renderer: noop, Stylesheets: []string{"/shared.css", "/text.css"}})
	reg.MustRegister("image", Descriptor{Renderer: noop, Stylesheets: []string{"/shared.css", "/image.css"}})

	got := reg.Stylesheets([]string{"text", "image", "unknown"})
	if diff := cmp.Diff([]string{"/shared.css", "/text.css", "/image.css"}, got); diff != "" {
		t.Fatalf("stylesheets mismatch (-want +got):\n%s", diff)
	}
}

func TestDefaultRegistryCoversFieldTypes(t *testing.T) {
	want := []string{"checkbox", "image", "multiselect", "radio", "select", "text"}
	if diff := cmp.Diff(want, NewDefaultRegistry().Names()); diff != "" {
		t.Fatalf("default components mismatch (-want +got):\n%s", diff)
	}
}
