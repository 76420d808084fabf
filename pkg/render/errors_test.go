package render_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/goliatone/go-formbuilder/pkg/model"
	"github.com/goliatone/go-formbuilder/pkg/render"
	"github.com/goliatone/go-formbuilder/pkg/validation"
)

var contactForm = model.Template{
	ID: "contact",
	Fields: []model.Field{
		{ID: "f-name", Name: "name", Type: model.FieldTypeText},
		{ID: "f-email", Name: "email", Type: model.FieldTypeText},
		{ID: "f-tags", Name: "tags", Type: model.FieldTypeMultiselect},
	},
}

func TestMapErrorPayload(t *testing.T) {
	payload := map[string][]string{
		"/body/name":        {"Name is required"},
		"answers.email":     {"Email invalid", " Email invalid "},
		"$.data.tags[0]":    {"Unknown tag"},
		"f-name":            {"Too short"},
		"non_field_errors":  {"Form level error"},
		"request/unknown":   {"Falls back to form"},
		"":                  {"Unscoped"},
		"email":             {"  "},
	}

	mapped := render.MapErrorPayload(contactForm, payload)

	wantFields := map[string][]string{
		"name":  {"Name is required", "Too short"},
		"email": {"Email invalid"},
		"tags":  {"Unknown tag"},
	}
	sortStrings := cmpopts.SortSlices(func(a, b string) bool { return a < b })
	if diff := cmp.Diff(wantFields, mapped.Fields, sortStrings); diff != "" {
		t.Fatalf("field errors mismatch (-want +got):\n%s", diff)
	}
	wantForm := []string{"Falls back to form", "Form level error", "Unscoped"}
	if diff := cmp.Diff(wantForm, mapped.Form, sortStrings); diff != "" {
		t.Fatalf("form errors mismatch (-want +got):\n%s", diff)
	}
}

func TestMapIssuesApply(t *testing.T) {
	issues := []validation.Issue{
		{Field: "email", Code: validation.CodeRequired, Message: "Email is required"},
		{Field: "ghost", Code: validation.CodeRequired, Message: "Ghost field"},
	}
	opts := render.RenderOptions{
		Errors:     map[string][]string{"email": {"Server said no"}},
		FormErrors: []string{"Try again"},
	}
	render.MapIssues(contactForm, issues).Apply(&opts)

	if diff := cmp.Diff(map[string][]string{"email": {"Server said no", "Email is required"}}, opts.Errors); diff != "" {
		t.Fatalf("errors mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"Try again", "Ghost field"}, opts.FormErrors); diff != "" {
		t.Fatalf("form errors mismatch (-want +got):\n%s", diff)
	}
}

func TestMergeFormErrors(t *testing.T) {
	merged := render.MergeFormErrors([]string{" First ", "Second"}, "Second", "third", "  ")
	if diff := cmp.Diff([]string{"First", "Second", "third"}, merged); diff != "" {
		t.Fatalf("merged form errors mismatch (-want +got):\n%s", diff)
	}
}
