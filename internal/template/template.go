// Package template resolves the output templates named by a schema's
// x-template keys and performs the {{var}} substitution used when
// rendering through a template.
package template

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"

	"harvest/internal/schema"
)

var varPattern = regexp.MustCompile(`\{\{\s*([A-Za-z0-9_.-]+)\s*\}\}`)

// Resolver locates template files relative to the schema document that
// named them.
type Resolver struct{}

// NewResolver returns a template resolver.
func NewResolver() *Resolver { return &Resolver{} }

// Resolve returns the main template path (x-template on the schema root)
// and the items template path (x-template on the frontmatter-part node),
// both resolved relative to the schema file's directory. An absent
// x-template yields an empty path, which means plain serialization; a
// named template that does not exist on disk is an error.
func (r *Resolver) Resolve(resolved *schema.Node, schemaPath string) (string, string, error) {
	base := filepath.Dir(schemaPath)

	tmpl, err := resolveOne(resolved, base)
	if err != nil {
		return "", "", err
	}

	var itemsTmpl string
	if partPath, ok := schema.LocateFrontmatterPart(resolved); ok {
		if part := schema.FindNodeAt(resolved, partPath); part != nil {
			itemsTmpl, err = resolveOne(part, base)
			if err != nil {
				return "", "", err
			}
		}
	}
	return tmpl, itemsTmpl, nil
}

func resolveOne(node *schema.Node, base string) (string, error) {
	rel, ok := node.StringExtension(schema.ExtTemplate)
	if !ok || rel == "" {
		return "", nil
	}
	path := rel
	if !filepath.IsAbs(path) {
		path = filepath.Join(base, rel)
	}
	if _, err := os.Stat(path); err != nil {
		return "", fmt.Errorf("template: %q: %w", rel, err)
	}
	return path, nil
}

// Substitute replaces every {{var}} occurrence with the stringified value
// from data. Unknown variables become empty strings rather than erroring,
// so a sparse record still renders.
func Substitute(text string, data map[string]any) string {
	return varPattern.ReplaceAllStringFunc(text, func(m string) string {
		name := varPattern.FindStringSubmatch(m)[1]
		v, ok := data[name]
		if !ok || v == nil {
			return ""
		}
		return fmt.Sprint(v)
	})
}
