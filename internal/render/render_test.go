package render

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"harvest/internal/pipeline"
)

func TestRenderJSON(t *testing.T) {
	out := filepath.Join(t.TempDir(), "registry.json")
	err := NewWriter().Render(context.Background(), pipeline.RenderRequest{
		MainData:     map[string]any{"names": []any{"a", "b"}},
		OutputPath:   out,
		OutputFormat: "json",
	})
	if err != nil {
		t.Fatalf("Render: %v", err)
	}

	raw, err := os.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}
	var got map[string]any
	if err := json.Unmarshal(raw, &got); err != nil {
		t.Fatalf("output is not valid json: %v", err)
	}
	want := map[string]any{"names": []any{"a", "b"}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("output mismatch (-want +got):\n%s", diff)
	}
}

func TestRenderYAML(t *testing.T) {
	out := filepath.Join(t.TempDir(), "registry.yaml")
	err := NewWriter().Render(context.Background(), pipeline.RenderRequest{
		MainData:     map[string]any{"title": "Registry"},
		OutputPath:   out,
		OutputFormat: "yaml",
	})
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	raw, _ := os.ReadFile(out)
	if !strings.Contains(string(raw), "title: Registry") {
		t.Errorf("yaml output = %q", raw)
	}
}

func TestRenderMarkdown(t *testing.T) {
	out := filepath.Join(t.TempDir(), "registry.md")
	err := NewWriter().Render(context.Background(), pipeline.RenderRequest{
		MainData: map[string]any{"count": 2},
		ItemsData: []any{
			map[string]any{"name": "a", "tags": []any{"x", "y"}},
			map[string]any{"name": "b"},
		},
		OutputPath:   out,
		OutputFormat: "markdown",
	})
	if err != nil {
		t.Fatalf("Render: %v", err)
	}

	text := string(mustRead(t, out))
	for _, want := range []string{
		"# registry",
		"- **count**: 2",
		"| name |",
		"| a | x, y |",
	} {
		if !strings.Contains(text, want) {
			t.Errorf("markdown output missing %q:\n%s", want, text)
		}
	}
}

func TestRenderTemplated(t *testing.T) {
	dir := t.TempDir()
	mainTmpl := filepath.Join(dir, "main.tmpl")
	itemTmpl := filepath.Join(dir, "item.tmpl")
	if err := os.WriteFile(mainTmpl, []byte("# {{title}}\n\n{{items}}\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(itemTmpl, []byte("- {{name}}"), 0o644); err != nil {
		t.Fatal(err)
	}

	out := filepath.Join(dir, "out.md")
	err := NewWriter().Render(context.Background(), pipeline.RenderRequest{
		TemplatePath:      mainTmpl,
		ItemsTemplatePath: itemTmpl,
		MainData:          map[string]any{"title": "Commands"},
		ItemsData: []any{
			map[string]any{"name": "run"},
			map[string]any{"name": "status"},
		},
		OutputPath: out,
	})
	if err != nil {
		t.Fatalf("Render: %v", err)
	}

	got := string(mustRead(t, out))
	want := "# Commands\n\n- run\n- status\n"
	if got != want {
		t.Errorf("templated output = %q, want %q", got, want)
	}
}

func TestRenderCreatesOutputDir(t *testing.T) {
	out := filepath.Join(t.TempDir(), "nested", "deep", "out.json")
	err := NewWriter().Render(context.Background(), pipeline.RenderRequest{
		MainData:     map[string]any{},
		OutputPath:   out,
		OutputFormat: "json",
	})
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if _, err := os.Stat(out); err != nil {
		t.Errorf("output file missing: %v", err)
	}
}

func mustRead(t *testing.T, path string) []byte {
	t.Helper()
	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	return raw
}
