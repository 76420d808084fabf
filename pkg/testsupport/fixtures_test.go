package testsupport

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-formbuilder/pkg/model"
	"github.com/goliatone/go-formbuilder/pkg/validation"
)

func TestSeedFixtureLints(t *testing.T) {
	templates := MustLoadTemplates(t, Path(SeedFile))

	var ids []string
	for _, tmpl := range templates {
		ids = append(ids, tmpl.ID)
		if result := validation.Lint(tmpl); !result.Valid {
			t.Fatalf("fixture %q has lint issues: %+v", tmpl.ID, result.Issues)
		}
	}
	if diff := cmp.Diff([]string{"contact", "event"}, ids); diff != "" {
		t.Fatalf("fixture ids mismatch (-want +got):\n%s", diff)
	}

	topic, ok := templates[0].FieldByName("topic")
	if !ok {
		t.Fatalf("expected a topic field")
	}
	if diff := cmp.Diff([]string{"Billing", "Support", "Other"}, topic.OptionValues()); diff != "" {
		t.Fatalf("bare string options not decoded (-want +got):\n%s", diff)
	}
}

func TestSampleTemplateCoversEveryType(t *testing.T) {
	seen := map[model.FieldType]bool{}
	for _, field := range SampleTemplate().Fields {
		seen[field.Type] = true
	}
	for _, ft := range model.FieldTypes() {
		if !seen[ft] {
			t.Fatalf("sample template lacks a %s field", ft)
		}
	}
}

func TestPNGDataURL(t *testing.T) {
	if got := PNGDataURL(t, 2, 2); !strings.HasPrefix(got, "data:image/png;base64,") {
		t.Fatalf("unexpected data url prefix %q", got[:30])
	}
}
