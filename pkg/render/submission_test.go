package render_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-formbuilder/pkg/render"
)

func TestMergeAndSortHiddenFields(t *testing.T) {
	base := map[string]string{
		" existing ": "keep",
		"":           "ignored",
	}
	merged := render.MergeHiddenFields(base,
		render.CSRFToken("_csrf", "token123"),
		render.TemplateField("tpl-1"),
		render.Hidden("version", 4),
		render.Hidden("  ", "skip"),
	)

	wantSorted := []render.HiddenField{
		{Name: "_csrf", Value: "token123"},
		{Name: "_template", Value: "tpl-1"},
		{Name: "existing", Value: "keep"},
		{Name: "version", Value: "4"},
	}
	if diff := cmp.Diff(wantSorted, render.SortedHiddenFields(merged)); diff != "" {
		t.Fatalf("sorted hidden fields mismatch (-want +got):\n%s", diff)
	}
}

func TestFormMethod(t *testing.T) {
	cases := map[string][2]string{
		"":       {"post", ""},
		"get":    {"get", ""},
		"put":    {"post", "PUT"},
		"DELETE": {"post", "DELETE"},
	}
	for in, want := range cases {
		attr, override := render.FormMethod(in)
		if attr != want[0] || override != want[1] {
			t.Fatalf("FormMethod(%q) = %q, %q; want %q, %q", in, attr, override, want[0], want[1])
		}
	}
}
