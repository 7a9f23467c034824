package directive

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"harvest/internal/frontmatter"
	"harvest/internal/schema"
)

func TestNavigate(t *testing.T) {
	data := map[string]any{
		"commands": []any{
			map[string]any{"name": "a", "tags": []any{"x", "y"}},
			map[string]any{"name": "b"},
		},
		"meta": map[string]any{"owner": "docs"},
	}

	cases := []struct {
		path string
		want any
		ok   bool
	}{
		{"meta.owner", "docs", true},
		{"commands[].name", []any{"a", "b"}, true},
		{"commands[].tags", []any{"x", "y"}, true},
		{"missing", nil, false},
		{"meta.owner.deep", nil, false},
	}
	for _, tc := range cases {
		got, ok := Navigate(data, tc.path)
		if ok != tc.ok {
			t.Errorf("Navigate(%q) ok = %v, want %v", tc.path, ok, tc.ok)
			continue
		}
		if tc.ok {
			if diff := cmp.Diff(tc.want, got); diff != "" {
				t.Errorf("Navigate(%q) mismatch (-want +got):\n%s", tc.path, diff)
			}
		}
	}
}

func TestDeriveThenUniqueOrder(t *testing.T) {
	// Derivation runs before deduplication; the duplicate "x" collapses.
	node := &schema.Node{
		Kind:  schema.KindArray,
		Items: &schema.Node{Kind: schema.KindString},
		Extensions: map[string]any{
			schema.ExtDerivedFrom:   "tags",
			schema.ExtDerivedUnique: true,
		},
	}
	records := []frontmatter.Data{
		frontmatter.New(map[string]any{"tags": []any{"x", "x", "y"}}),
	}

	got, err := NewProcessor().Process(node, records)
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	if diff := cmp.Diff([]any{"x", "y"}, got); diff != "" {
		t.Errorf("output mismatch (-want +got):\n%s", diff)
	}
}

func TestUniqueIdempotent(t *testing.T) {
	p := NewProcessor()
	in := []any{"a", "b", "a", 3, 3, "b"}

	once := p.Unique(in)
	twice := p.Unique(once)
	if diff := cmp.Diff(once, twice); diff != "" {
		t.Errorf("Unique is not idempotent (-once +twice):\n%s", diff)
	}
	if diff := cmp.Diff([]any{"a", "b", 3}, once); diff != "" {
		t.Errorf("Unique result mismatch (-want +got):\n%s", diff)
	}
}

func TestUniqueKeepsContainers(t *testing.T) {
	p := NewProcessor()
	m1 := map[string]any{"k": "v"}
	m2 := map[string]any{"k": "v"}

	got := p.Unique([]any{m1, m2})
	if len(got) != 2 {
		t.Errorf("Unique collapsed container values: %v", got)
	}
}

func TestFlattenClosure(t *testing.T) {
	p := NewProcessor()
	in := []any{"a", []any{"b", []any{"c", []any{"d"}}}, "e"}

	once := p.Flatten(in)
	twice := p.Flatten(once)
	if diff := cmp.Diff(once, twice); diff != "" {
		t.Errorf("Flatten is not a closure (-once +twice):\n%s", diff)
	}
	for i, e := range once {
		if _, isArr := e.([]any); isArr {
			t.Errorf("element %d is still an array", i)
		}
	}
	if diff := cmp.Diff([]any{"a", "b", "c", "d", "e"}, once); diff != "" {
		t.Errorf("Flatten result mismatch (-want +got):\n%s", diff)
	}
}

func TestSelectRootWithoutPart(t *testing.T) {
	node := &schema.Node{Kind: schema.KindObject, Properties: map[string]*schema.Node{}}
	records := []frontmatter.Data{
		frontmatter.New(map[string]any{"a": 1}),
		frontmatter.New(map[string]any{"b": 2}),
	}

	got := NewProcessor().SelectRoot(node, records)
	if len(got) != 2 {
		t.Fatalf("collection size = %d, want 2", len(got))
	}
}

func TestSelectRootSplicesArrays(t *testing.T) {
	node := &schema.Node{
		Kind: schema.KindObject,
		Properties: map[string]*schema.Node{
			"commands": {
				Kind:       schema.KindArray,
				Items:      &schema.Node{Kind: schema.KindAny},
				Extensions: map[string]any{schema.ExtFrontmatterPart: true},
			},
		},
	}
	records := []frontmatter.Data{
		frontmatter.New(map[string]any{"commands": []any{
			map[string]any{"name": "a"},
			map[string]any{"name": "b"},
		}}),
		frontmatter.New(map[string]any{"commands": "solo"}),
	}

	got := NewProcessor().SelectRoot(node, records)
	if len(got) != 3 {
		t.Fatalf("collection size = %d, want 3 (two spliced + one scalar)", len(got))
	}
	if got[2] != "solo" {
		t.Errorf("scalar part value = %v, want solo", got[2])
	}
}
