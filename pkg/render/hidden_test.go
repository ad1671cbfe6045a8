package render_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-formwizard/pkg/render"
)

func TestMergeHiddenFields(t *testing.T) {
	merged := render.MergeHiddenFields(
		map[string]string{" locale ": "es", "": "dropped"},
		render.StepField(3),
		render.SessionField("abc"),
		render.HiddenField{Name: "  ", Value: "dropped"},
		render.StepField(4),
	)

	want := map[string]string{"locale": "es", "session": "abc", "step": "4"}
	if diff := cmp.Diff(want, merged); diff != "" {
		t.Fatalf("merged mismatch (-want +got):\n%s", diff)
	}
	if got := render.MergeHiddenFields(nil); got != nil {
		t.Fatalf("empty merge = %v, want nil", got)
	}
}

func TestSortedHiddenFields(t *testing.T) {
	got := render.SortedHiddenFields(map[string]string{"step": "0", "session": "abc"})
	want := []render.HiddenField{
		{Name: "session", Value: "abc"},
		{Name: "step", Value: "0"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("sorted mismatch (-want +got):\n%s", diff)
	}
}
