package frontmatter

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// ExtractFile reads a Markdown file and parses its frontmatter block.
// A file without a recognizable block yields an empty record, not an error.
func ExtractFile(path string) (Data, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Data{}, fmt.Errorf("frontmatter: read %q: %w", path, err)
	}
	d, err := Extract(raw)
	if err != nil {
		return Data{}, fmt.Errorf("frontmatter: %q: %w", path, err)
	}
	return d, nil
}

// Extract parses the frontmatter block at the top of document content.
// Recognized fences: "---" (YAML), "+++" (TOML), and a leading "{" (JSON
// object read up to its balanced closing brace).
func Extract(content []byte) (Data, error) {
	text := strings.ReplaceAll(string(content), "\r\n", "\n")
	trimmed := strings.TrimLeft(text, "\n")

	switch {
	case strings.HasPrefix(trimmed, "---\n"):
		block, ok := fencedBlock(trimmed, "---")
		if !ok {
			return Empty(), nil
		}
		var fields map[string]any
		if err := yaml.Unmarshal([]byte(block), &fields); err != nil {
			return Data{}, fmt.Errorf("parse yaml block: %w", err)
		}
		return New(normalize(fields)), nil

	case strings.HasPrefix(trimmed, "+++\n"):
		block, ok := fencedBlock(trimmed, "+++")
		if !ok {
			return Empty(), nil
		}
		var fields map[string]any
		if err := toml.Unmarshal([]byte(block), &fields); err != nil {
			return Data{}, fmt.Errorf("parse toml block: %w", err)
		}
		return New(fields), nil

	case strings.HasPrefix(trimmed, "{"):
		var fields map[string]any
		if err := json.Unmarshal([]byte(jsonBlock(trimmed)), &fields); err != nil {
			return Data{}, fmt.Errorf("parse json block: %w", err)
		}
		return New(fields), nil
	}
	return Empty(), nil
}

// jsonBlock returns the text up to and including the brace that closes
// the leading JSON object, tracking string literals and escapes so
// braces inside values do not end the block early. An unbalanced object
// returns the whole text and fails in the JSON parser.
func jsonBlock(text string) string {
	depth := 0
	inString := false
	escaped := false
	for i := 0; i < len(text); i++ {
		switch c := text[i]; {
		case escaped:
			escaped = false
		case c == '\\' && inString:
			escaped = true
		case c == '"':
			inString = !inString
		case c == '{' && !inString:
			depth++
		case c == '}' && !inString:
			depth--
			if depth == 0 {
				return text[:i+1]
			}
		}
	}
	return text
}

// fencedBlock returns the text between an opening fence line and the next
// closing fence line. ok is false when the block is never closed.
func fencedBlock(text, fence string) (string, bool) {
	body := text[len(fence)+1:]
	end := strings.Index(body, "\n"+fence)
	if end < 0 {
		return "", false
	}
	return body[:end], true
}

// normalize rewrites yaml.v3's map[any]any containers (possible under
// nested keys) into map[string]any so downstream navigation sees one
// container shape.
func normalize(v map[string]any) map[string]any {
	out := make(map[string]any, len(v))
	for k, val := range v {
		out[k] = normalizeValue(val)
	}
	return out
}

func normalizeValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		return normalize(t)
	case map[any]any:
		out := make(map[string]any, len(t))
		for k, val := range t {
			out[fmt.Sprint(k)] = normalizeValue(val)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = normalizeValue(e)
		}
		return out
	default:
		return v
	}
}
