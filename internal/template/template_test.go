package template

import (
	"os"
	"path/filepath"
	"testing"

	"harvest/internal/schema"
)

func TestResolveTemplates(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"main.tmpl", "item.tmpl"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("{{title}}"), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	node := &schema.Node{
		Kind:       schema.KindObject,
		Extensions: map[string]any{schema.ExtTemplate: "main.tmpl"},
		Properties: map[string]*schema.Node{
			"commands": {
				Kind:  schema.KindArray,
				Items: &schema.Node{Kind: schema.KindAny},
				Extensions: map[string]any{
					schema.ExtFrontmatterPart: true,
					schema.ExtTemplate:        "item.tmpl",
				},
			},
		},
	}

	tmpl, itemsTmpl, err := NewResolver().Resolve(node, filepath.Join(dir, "schema.json"))
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if tmpl != filepath.Join(dir, "main.tmpl") {
		t.Errorf("main template = %q", tmpl)
	}
	if itemsTmpl != filepath.Join(dir, "item.tmpl") {
		t.Errorf("items template = %q", itemsTmpl)
	}
}

func TestResolveNoTemplates(t *testing.T) {
	node := &schema.Node{Kind: schema.KindObject}
	tmpl, itemsTmpl, err := NewResolver().Resolve(node, "anywhere/schema.json")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if tmpl != "" || itemsTmpl != "" {
		t.Errorf("templates = %q/%q, want empty", tmpl, itemsTmpl)
	}
}

func TestResolveMissingTemplateFile(t *testing.T) {
	node := &schema.Node{
		Kind:       schema.KindObject,
		Extensions: map[string]any{schema.ExtTemplate: "missing.tmpl"},
	}
	if _, _, err := NewResolver().Resolve(node, filepath.Join(t.TempDir(), "schema.json")); err == nil {
		t.Error("missing template file should be an error")
	}
}

func TestSubstitute(t *testing.T) {
	data := map[string]any{
		"title": "Registry",
		"count": 3,
	}
	got := Substitute("# {{title}} ({{ count }} entries){{missing}}", data)
	want := "# Registry (3 entries)"
	if got != want {
		t.Errorf("Substitute = %q, want %q", got, want)
	}
}
