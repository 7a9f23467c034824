package schema

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// FileLoader serves refs from the filesystem. External refs are paths
// relative to the loader's root directory (or to the basePath handed to
// LoadFrom); internal refs (#/definitions/...) are looked up in the raw
// document the loader was created from.
type FileLoader struct {
	Root string
	doc  map[string]any
}

// NewFileLoader creates a loader rooted at the directory of the schema
// file, with the file's decoded document available for internal refs.
func NewFileLoader(schemaPath string) (*FileLoader, error) {
	data, err := os.ReadFile(schemaPath)
	if err != nil {
		return nil, fmt.Errorf("schema: read %q: %w", schemaPath, err)
	}
	var doc map[string]any
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("schema: parse %q: %w", schemaPath, err)
	}
	return &FileLoader{Root: filepath.Dir(schemaPath), doc: doc}, nil
}

// Load resolves a ref relative to the loader's root.
func (l *FileLoader) Load(ref string) (*Node, error) {
	return l.LoadFrom(ref, l.Root)
}

// LoadFrom resolves a ref relative to basePath. Internal refs are served
// from the loader's own document regardless of basePath.
func (l *FileLoader) LoadFrom(ref, basePath string) (*Node, error) {
	if strings.HasPrefix(ref, "#/") {
		return l.loadInternal(ref)
	}
	path := ref
	if !filepath.IsAbs(path) {
		path = filepath.Join(basePath, ref)
	}
	return ParseFile(path)
}

func (l *FileLoader) loadInternal(ref string) (*Node, error) {
	parts := strings.Split(strings.TrimPrefix(ref, "#/"), "/")
	var cur any = l.doc
	for _, p := range parts {
		m, ok := cur.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("ref segment %q not found", p)
		}
		cur, ok = m[p]
		if !ok {
			return nil, fmt.Errorf("ref segment %q not found", p)
		}
	}
	m, ok := cur.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("ref %q does not point at a schema object", ref)
	}
	return FromMap(m)
}

// MapLoader serves refs from an in-memory map, keyed by the full ref
// string. Used by tests and by callers that assemble schemas without a
// file repository.
type MapLoader map[string]*Node

func (l MapLoader) Load(ref string) (*Node, error) {
	n, ok := l[ref]
	if !ok {
		return nil, fmt.Errorf("unknown ref %q", ref)
	}
	return n, nil
}
