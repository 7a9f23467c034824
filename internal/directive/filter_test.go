package directive

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestFilterContainsString(t *testing.T) {
	in := []any{
		map[string]any{"name": "build-docs"},
		map[string]any{"name": "test"},
	}

	got, err := NewProcessor().Filter(in, "[?contains(name,'docs')]")
	if err != nil {
		t.Fatalf("Filter: %v", err)
	}
	want := []any{map[string]any{"name": "build-docs"}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("filter mismatch (-want +got):\n%s", diff)
	}
}

func TestFilterContainsArray(t *testing.T) {
	in := []any{
		map[string]any{"tags": []any{"cli", "docs"}},
		map[string]any{"tags": []any{"web"}},
		map[string]any{"name": "no tags"},
	}

	got, err := NewProcessor().Filter(in, "[?contains(tags,'cli')]")
	if err != nil {
		t.Fatalf("Filter: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("kept %d elements, want 1", len(got))
	}
}

func TestFilterEqualityOR(t *testing.T) {
	in := []any{
		map[string]any{"kind": "cmd", "state": "new"},
		map[string]any{"kind": "doc", "state": "old"},
		map[string]any{"kind": "other", "state": "stale"},
	}

	got, err := NewProcessor().Filter(in, "[?kind=='cmd'||state=='old']")
	if err != nil {
		t.Fatalf("Filter: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("kept %d elements, want 2", len(got))
	}
}

func TestFilterUnsupportedPassesThrough(t *testing.T) {
	in := []any{1, 2, 3}

	for _, expr := range []string{
		"[?x>5]",
		"[?length(items)]",
		"not a filter at all",
	} {
		got, err := NewProcessor().Filter(in, expr)
		if err != nil {
			t.Fatalf("Filter(%q): %v", expr, err)
		}
		if diff := cmp.Diff(in, got); diff != "" {
			t.Errorf("Filter(%q) should pass through (-want +got):\n%s", expr, diff)
		}
	}
}
