package openapi_test

import (
	"context"
	"encoding/json"
	"sort"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-formbuilder/pkg/model"
	"github.com/goliatone/go-formbuilder/pkg/openapi"
)

func surveyTemplate() model.Template {
	return model.Template{
		ID:   "survey 1",
		Name: "Survey",
		Fields: []model.Field{
			{ID: "f1", Type: model.FieldTypeText, Label: "Name", Name: "name", IsRequired: true,
				Validation: &model.ValidationRule{MinLength: model.Int(2), MaxLength: model.Int(10)}},
			{ID: "f2", Type: model.FieldTypeSelect, Label: "Country", Name: "country",
				Options: []model.Option{{Label: "Spain", Value: "es"}, {Label: "Peru", Value: "pe"}, {Label: "Mars", Value: "mars", Disabled: true}}},
			{ID: "f3", Type: model.FieldTypeMultiselect, Label: "Topics", Name: "topics", IsRequired: true,
				Options: model.OptionsFromLabels([]string{"Go", "HTML"})},
			{ID: "f4", Type: model.FieldTypeCheckbox, Label: "Terms", Name: "terms", IsRequired: true},
			{ID: "f5", Type: model.FieldTypeImage, Label: "Photo", Name: "photo"},
			{ID: "f6", Type: model.FieldType("signature"), Label: "Sign", Name: "sign"},
			{ID: "f7", Type: model.FieldTypeText, Label: "Code", Name: "code",
				Validation: &model.ValidationRule{Pattern: `[A-Z]{3}`}},
		},
	}
}

func TestSubmissionSchemaProperties(t *testing.T) {
	schema := openapi.SubmissionSchema(surveyTemplate())

	var names []string
	for name := range schema.Properties {
		names = append(names, name)
	}
	if diff := cmp.Diff([]string{"code", "country", "name", "photo", "terms", "topics"}, sorted(names)); diff != "" {
		t.Fatalf("properties mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"name", "topics", "terms"}, schema.Required); diff != "" {
		t.Fatalf("required mismatch (-want +got):\n%s", diff)
	}

	name := schema.Properties["name"].Value
	if name.MinLength != 2 || name.MaxLength == nil || *name.MaxLength != 10 {
		t.Fatalf("unexpected length bounds: min=%d max=%v", name.MinLength, name.MaxLength)
	}
	if name.Extensions[openapi.ExtensionFieldType] != "text" || name.Extensions[openapi.ExtensionFieldID] != "f1" {
		t.Fatalf("unexpected extensions: %v", name.Extensions)
	}
	if diff := cmp.Diff([]any{"es", "pe", ""}, schema.Properties["country"].Value.Enum); diff != "" {
		t.Fatalf("country enum mismatch (-want +got):\n%s", diff)
	}
	if got := schema.Properties["code"].Value.Pattern; got != "^(?:[A-Z]{3})$" {
		t.Fatalf("unexpected pattern %q", got)
	}
	if diff := cmp.Diff([]any{true}, schema.Properties["terms"].Value.Enum); diff != "" {
		t.Fatalf("terms enum mismatch (-want +got):\n%s", diff)
	}
}

func TestValidateSubmissionAcceptsValidAnswers(t *testing.T) {
	result, err := openapi.ValidateSubmission(surveyTemplate(), map[string]any{
		"name":    "Ada",
		"country": "pe",
		"topics":  []string{"Go"},
		"terms":   true,
		"code":    "ABC",
		"photo":   "data:image/png;base64,iVBORw0KGgo=",
	})
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if !result.Valid || len(result.Issues) != 0 {
		t.Fatalf("expected valid answers, got %+v", result.Issues)
	}
}

func TestValidateSubmissionReportsIssuesPerField(t *testing.T) {
	result, err := openapi.ValidateSubmission(surveyTemplate(), map[string]any{
		"name":    "A",
		"country": "mars",
		"topics":  []string{},
		"terms":   false,
		"code":    "abcd",
		"photo":   "not an image",
	})
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if result.Valid {
		t.Fatalf("expected invalid answers")
	}

	fields := map[string]bool{}
	for _, issue := range result.Issues {
		if issue.Code != openapi.CodeSchema {
			t.Fatalf("unexpected code %q", issue.Code)
		}
		fields[issue.Field] = true
	}
	for _, want := range []string{"name", "country", "topics", "terms", "code", "photo"} {
		if !fields[want] {
			t.Fatalf("expected an issue for %q, got %+v", want, result.Issues)
		}
	}
}

func TestValidateSubmissionMissingRequired(t *testing.T) {
	result, err := openapi.ValidateSubmission(surveyTemplate(), nil)
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if result.Valid || len(result.Issues) == 0 {
		t.Fatalf("expected missing required answers to be reported")
	}
}

func TestDocumentDescribesEveryTemplate(t *testing.T) {
	templates := []model.Template{surveyTemplate(), {ID: "contact", Name: "Contact", Fields: []model.Field{
		{ID: "c1", Type: model.FieldTypeText, Label: "Email", Name: "email", DataType: model.DataTypeEmail},
	}}}

	doc, err := openapi.Document(context.Background(), templates, openapi.DocumentOptions{Title: "Forms"})
	if err != nil {
		t.Fatalf("document: %v", err)
	}
	if doc.Info.Title != "Forms" || doc.Info.Version != "1.0.0" {
		t.Fatalf("unexpected info %+v", doc.Info)
	}
	if _, ok := doc.Components.Schemas["survey_1"]; !ok {
		t.Fatalf("expected a component for survey 1, got %v", doc.Components.Schemas)
	}
	item := doc.Paths.Find("/api/templates/contact/submissions")
	if item == nil || item.Post == nil {
		t.Fatalf("expected a submissions endpoint for contact")
	}
	if item.Post.OperationID != "submit_contact" {
		t.Fatalf("unexpected operation id %q", item.Post.OperationID)
	}

	raw, err := json.Marshal(doc)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if !strings.Contains(string(raw), `"format":"email"`) {
		t.Fatalf("expected email format in document: %s", raw)
	}
}

func TestDocumentRejectsCollidingComponentNames(t *testing.T) {
	_, err := openapi.Document(context.Background(), []model.Template{{ID: "a b"}, {ID: "a/b"}}, openapi.DocumentOptions{})
	if err == nil {
		t.Fatalf("expected component name collision error")
	}
}

func sorted(values []string) []string {
	out := append([]string(nil), values...)
	sort.Strings(out)
	return out
}
