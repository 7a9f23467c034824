package aggregate

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"harvest/internal/frontmatter"
	"harvest/internal/schema"
)

func registrySchema() *schema.Node {
	return &schema.Node{
		Kind: schema.KindObject,
		Properties: map[string]*schema.Node{
			"commands": {
				Kind:       schema.KindArray,
				Items:      &schema.Node{Kind: schema.KindAny},
				Extensions: map[string]any{schema.ExtFrontmatterPart: true},
			},
			"names": {
				Kind:  schema.KindArray,
				Items: &schema.Node{Kind: schema.KindString},
				Extensions: map[string]any{
					schema.ExtDerivedFrom:   "name",
					schema.ExtDerivedUnique: true,
				},
			},
		},
	}
}

func records(fields ...map[string]any) []frontmatter.Data {
	out := make([]frontmatter.Data, 0, len(fields))
	for _, f := range fields {
		out = append(out, frontmatter.New(f))
	}
	return out
}

func TestAggregateDerivationRules(t *testing.T) {
	recs := records(
		map[string]any{"commands": []any{
			map[string]any{"name": "a"},
			map[string]any{"name": "b"},
		}},
		map[string]any{"commands": []any{
			map[string]any{"name": "a"},
		}},
	)

	result, err := New().Aggregate(recs, registrySchema())
	if err != nil {
		t.Fatalf("Aggregate: %v", err)
	}

	names, _ := result.Frontmatter.Get("names")
	if diff := cmp.Diff([]any{"a", "b"}, names); diff != "" {
		t.Errorf("names mismatch (-want +got):\n%s", diff)
	}
	if len(result.Items) != 3 {
		t.Errorf("items = %d, want 3 command entries", len(result.Items))
	}

	meta := result.Metadata
	if meta.Strategy != StrategyDerivation {
		t.Errorf("strategy = %q, want %q", meta.Strategy, StrategyDerivation)
	}
	if !meta.HasDerivationRules || meta.DerivationRuleCount != 1 {
		t.Errorf("rule metadata = %+v", meta)
	}
	if meta.InputCount != 2 {
		t.Errorf("input count = %d, want 2", meta.InputCount)
	}
}

func TestAggregateDerivationFromRecordRoot(t *testing.T) {
	// The source path names the commands collection from the record root
	// rather than relative to its elements.
	node := registrySchema()
	node.Properties["names"].Extensions[schema.ExtDerivedFrom] = "commands[].name"

	recs := records(
		map[string]any{"commands": []any{
			map[string]any{"name": "a"},
			map[string]any{"name": "b"},
		}},
		map[string]any{"commands": []any{
			map[string]any{"name": "a"},
		}},
	)

	result, err := New().Aggregate(recs, node)
	if err != nil {
		t.Fatalf("Aggregate: %v", err)
	}
	names, _ := result.Frontmatter.Get("names")
	if diff := cmp.Diff([]any{"a", "b"}, names); diff != "" {
		t.Errorf("names mismatch (-want +got):\n%s", diff)
	}
}

func TestAggregateDerivationAppliesFilter(t *testing.T) {
	node := &schema.Node{
		Kind: schema.KindObject,
		Properties: map[string]*schema.Node{
			"kept": {
				Kind:  schema.KindArray,
				Items: &schema.Node{Kind: schema.KindAny},
				Extensions: map[string]any{
					schema.ExtDerivedFrom:    "entries",
					schema.ExtJMESPathFilter: "[?kind=='keep'||state=='keep']",
				},
			},
		},
	}
	recs := records(map[string]any{"entries": []any{
		map[string]any{"kind": "keep"},
		map[string]any{"kind": "drop"},
	}})

	result, err := New().Aggregate(recs, node)
	if err != nil {
		t.Fatalf("Aggregate: %v", err)
	}
	kept, _ := result.Frontmatter.Get("kept")
	want := []any{map[string]any{"kind": "keep"}}
	if diff := cmp.Diff(want, kept); diff != "" {
		t.Errorf("filtered field mismatch (-want +got):\n%s", diff)
	}
}

func TestAggregateDerivationAppliesFlatten(t *testing.T) {
	node := &schema.Node{
		Kind: schema.KindObject,
		Properties: map[string]*schema.Node{
			"tags": {
				Kind:  schema.KindArray,
				Items: &schema.Node{Kind: schema.KindString},
				Extensions: map[string]any{
					schema.ExtDerivedFrom:   "tags",
					schema.ExtFlattenArrays: true,
				},
			},
		},
	}
	recs := records(map[string]any{"tags": []any{[]any{"x", "y"}, "z"}})

	result, err := New().Aggregate(recs, node)
	if err != nil {
		t.Fatalf("Aggregate: %v", err)
	}
	tags, _ := result.Frontmatter.Get("tags")
	if diff := cmp.Diff([]any{"x", "y", "z"}, tags); diff != "" {
		t.Errorf("flattened field mismatch (-want +got):\n%s", diff)
	}
}

func TestAggregateStructuralMerge(t *testing.T) {
	recs := records(
		map[string]any{"title": "first", "draft": true},
		map[string]any{"title": "second"},
	)
	node := &schema.Node{Kind: schema.KindObject, Properties: map[string]*schema.Node{
		"title": {Kind: schema.KindString},
	}}

	result, err := New().Aggregate(recs, node)
	if err != nil {
		t.Fatalf("Aggregate: %v", err)
	}
	if result.Metadata.Strategy != StrategyMerge {
		t.Errorf("strategy = %q, want %q", result.Metadata.Strategy, StrategyMerge)
	}

	want := map[string]any{"title": "second", "draft": true}
	if diff := cmp.Diff(want, result.Frontmatter.AsMap()); diff != "" {
		t.Errorf("merged record mismatch (-want +got):\n%s", diff)
	}
	if len(result.Items) != 2 {
		t.Errorf("items = %d, want one per record", len(result.Items))
	}
}

func TestAggregateFrontmatterParts(t *testing.T) {
	node := &schema.Node{
		Kind: schema.KindObject,
		Properties: map[string]*schema.Node{
			"entry": {
				Kind:       schema.KindObject,
				Extensions: map[string]any{schema.ExtFrontmatterPart: true},
			},
		},
	}
	recs := records(
		map[string]any{"entry": map[string]any{"id": "one"}},
		map[string]any{"entry": map[string]any{"id": "two"}},
	)

	result, err := New().Aggregate(recs, node)
	if err != nil {
		t.Fatalf("Aggregate: %v", err)
	}
	if result.Metadata.Strategy != StrategyParts {
		t.Errorf("strategy = %q, want %q", result.Metadata.Strategy, StrategyParts)
	}

	want := []any{
		map[string]any{"entry": map[string]any{"id": "one"}},
		map[string]any{"entry": map[string]any{"id": "two"}},
	}
	if diff := cmp.Diff(want, result.Items); diff != "" {
		t.Errorf("items mismatch (-want +got):\n%s", diff)
	}
}

func TestAggregatePartMissingKeepsRecord(t *testing.T) {
	node := &schema.Node{
		Kind: schema.KindObject,
		Properties: map[string]*schema.Node{
			"entry": {
				Kind:       schema.KindObject,
				Extensions: map[string]any{schema.ExtFrontmatterPart: true},
			},
		},
	}
	recs := records(map[string]any{"other": "value"})

	result, err := New().Aggregate(recs, node)
	if err != nil {
		t.Fatalf("Aggregate: %v", err)
	}
	want := []any{map[string]any{"other": "value"}}
	if diff := cmp.Diff(want, result.Items); diff != "" {
		t.Errorf("items mismatch (-want +got):\n%s", diff)
	}
}

func TestAggregateNullPartFails(t *testing.T) {
	node := &schema.Node{
		Kind: schema.KindObject,
		Properties: map[string]*schema.Node{
			"entry": {
				Kind:       schema.KindObject,
				Extensions: map[string]any{schema.ExtFrontmatterPart: true},
			},
		},
	}
	recs := records(
		map[string]any{"entry": map[string]any{"id": "one"}},
		map[string]any{"entry": nil},
	)

	_, err := New().Aggregate(recs, node)
	var partErr *PartError
	if !errors.As(err, &partErr) {
		t.Fatalf("err = %v, want *PartError", err)
	}
	if partErr.Index != 1 {
		t.Errorf("failing index = %d, want 1", partErr.Index)
	}
}

func TestAggregateEmptyInput(t *testing.T) {
	result, err := New().Aggregate(nil, registrySchema())
	if err != nil {
		t.Fatalf("Aggregate: %v", err)
	}
	if result.Metadata.InputCount != 0 {
		t.Errorf("input count = %d, want 0", result.Metadata.InputCount)
	}
	names, _ := result.Frontmatter.Get("names")
	if diff := cmp.Diff([]any{}, names); diff != "" {
		t.Errorf("names mismatch (-want +got):\n%s", diff)
	}
}
