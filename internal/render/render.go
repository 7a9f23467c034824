// Package render writes the aggregated result to disk in the requested
// output format, optionally through the schema's named templates.
package render

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"harvest/internal/format"
	"harvest/internal/pipeline"
	"harvest/internal/template"
)

// Writer is the default pipeline.Renderer: JSON, YAML, TOML, or Markdown
// serialization of the main record, or template substitution when the
// schema named templates.
type Writer struct{}

// NewWriter returns the default renderer.
func NewWriter() *Writer { return &Writer{} }

// Render writes the output document. The parent directory is created if
// missing.
func (w *Writer) Render(_ context.Context, req pipeline.RenderRequest) error {
	out, err := w.encode(req)
	if err != nil {
		return err
	}
	if dir := filepath.Dir(req.OutputPath); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("render: create output dir: %w", err)
		}
	}
	if err := os.WriteFile(req.OutputPath, out, 0644); err != nil {
		return fmt.Errorf("render: write %q: %w", req.OutputPath, err)
	}
	return nil
}

func (w *Writer) encode(req pipeline.RenderRequest) ([]byte, error) {
	if req.TemplatePath != "" || req.ItemsTemplatePath != "" {
		return w.encodeTemplated(req)
	}
	switch req.OutputFormat {
	case "yaml":
		out, err := yaml.Marshal(req.MainData)
		if err != nil {
			return nil, fmt.Errorf("render: yaml: %w", err)
		}
		return out, nil
	case "toml":
		var buf bytes.Buffer
		if err := toml.NewEncoder(&buf).Encode(req.MainData); err != nil {
			return nil, fmt.Errorf("render: toml: %w", err)
		}
		return buf.Bytes(), nil
	case "markdown":
		return w.encodeMarkdown(req)
	default:
		out, err := json.MarshalIndent(req.MainData, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("render: json: %w", err)
		}
		return append(out, '\n'), nil
	}
}

// encodeTemplated substitutes the main data into the main template. When
// an items template exists, every item is rendered through it and the
// joined result is exposed to the main template as {{items}}.
func (w *Writer) encodeTemplated(req pipeline.RenderRequest) ([]byte, error) {
	var items []string
	if req.ItemsTemplatePath != "" {
		tmpl, err := os.ReadFile(req.ItemsTemplatePath)
		if err != nil {
			return nil, fmt.Errorf("render: read items template: %w", err)
		}
		for _, item := range req.ItemsData {
			data, ok := item.(map[string]any)
			if !ok {
				data = map[string]any{"value": item}
			}
			items = append(items, template.Substitute(string(tmpl), data))
		}
	}

	if req.TemplatePath == "" {
		return []byte(strings.Join(items, "\n")), nil
	}

	tmpl, err := os.ReadFile(req.TemplatePath)
	if err != nil {
		return nil, fmt.Errorf("render: read template: %w", err)
	}
	data := make(map[string]any, len(req.MainData)+1)
	for k, v := range req.MainData {
		data[k] = v
	}
	data["items"] = strings.Join(items, "\n")
	return []byte(template.Substitute(string(tmpl), data)), nil
}

// encodeMarkdown renders the main record as a definition list and the
// items collection as a Markdown table.
func (w *Writer) encodeMarkdown(req pipeline.RenderRequest) ([]byte, error) {
	var b strings.Builder
	b.WriteString("# ")
	b.WriteString(strings.TrimSuffix(filepath.Base(req.OutputPath), filepath.Ext(req.OutputPath)))
	b.WriteString("\n\n")

	keys := make([]string, 0, len(req.MainData))
	for k := range req.MainData {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(&b, "- **%s**: %s\n", k, inlineValue(req.MainData[k]))
	}

	if len(req.ItemsData) > 0 {
		b.WriteString("\n")
		b.WriteString(itemsTable(req.ItemsData))
		b.WriteString("\n")
	}
	return []byte(b.String()), nil
}

// itemsTable lays the items out as one Markdown table: object items get a
// column per key (union, sorted), scalar items a single value column.
func itemsTable(items []any) string {
	cols := map[string]bool{}
	objects := true
	for _, item := range items {
		m, ok := item.(map[string]any)
		if !ok {
			objects = false
			break
		}
		for k := range m {
			cols[k] = true
		}
	}

	t := format.NewTable(format.Markdown)
	if !objects {
		t.Header("value")
		for _, item := range items {
			t.Row(inlineValue(item))
		}
		return t.String()
	}

	names := make([]string, 0, len(cols))
	for k := range cols {
		names = append(names, k)
	}
	sort.Strings(names)
	t.Header(names...)
	for _, item := range items {
		m := item.(map[string]any)
		row := make([]any, len(names))
		for i, name := range names {
			row[i] = inlineValue(m[name])
		}
		t.Row(row...)
	}
	return t.String()
}

func inlineValue(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case []any:
		parts := make([]string, len(t))
		for i, e := range t {
			parts[i] = inlineValue(e)
		}
		return strings.Join(parts, ", ")
	case map[string]any:
		out, _ := json.Marshal(t)
		return string(out)
	default:
		return fmt.Sprint(t)
	}
}
