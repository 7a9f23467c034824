// Package schema models a JSON Schema document as a navigable node graph
// and resolves $ref links into a concrete tree.
//
// Nodes carry the structural shape of the schema (object properties, array
// items, refs, primitive kinds) plus an extension map holding every x-*
// key found on the node. Extension keys are instructions for the directive
// engine, not validation constraints.
package schema

import "sort"

// Kind classifies a schema node. A node is either structural
// (KindObject, KindArray, KindRef) or a leaf kind.
type Kind string

const (
	KindObject  Kind = "object"
	KindArray   Kind = "array"
	KindRef     Kind = "ref"
	KindString  Kind = "string"
	KindNumber  Kind = "number"
	KindInteger Kind = "integer"
	KindBoolean Kind = "boolean"
	KindEnum    Kind = "enum"
	KindNull    Kind = "null"
	KindAny     Kind = "any"
)

// Extension keys recognized by the directive engine.
const (
	ExtTemplate        = "x-template"
	ExtFrontmatterPart = "x-frontmatter-part"
	ExtDerivedFrom     = "x-derived-from"
	ExtDerivedUnique   = "x-derived-unique"
	ExtFlattenArrays   = "x-flatten-arrays"
	ExtJMESPathFilter  = "x-jmespath-filter"
)

// Node is one schema node. Exactly one of the structural fields is
// meaningful for a given Kind: Properties for KindObject, Items for
// KindArray, Ref for KindRef. Extensions holds all x-* keys found on
// the node regardless of its kind.
type Node struct {
	Kind        Kind
	Properties  map[string]*Node
	Items       *Node
	Ref         string
	Enum        []any
	Required    []string
	Description string
	Extensions  map[string]any
}

// IsStructural reports whether the node is an object, array, or ref.
func (n *Node) IsStructural() bool {
	return n.Kind == KindObject || n.Kind == KindArray || n.Kind == KindRef
}

// Property returns the named child of an object node.
func (n *Node) Property(name string) (*Node, bool) {
	c, ok := n.Properties[name]
	return c, ok
}

// PropertyNames returns the object node's property names in sorted order,
// so walks over the tree are deterministic.
func (n *Node) PropertyNames() []string {
	names := make([]string, 0, len(n.Properties))
	for name := range n.Properties {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Extension returns the raw value of an x-* key on this node.
func (n *Node) Extension(key string) (any, bool) {
	v, ok := n.Extensions[key]
	return v, ok
}

// BoolExtension returns true only if the extension is present and true.
func (n *Node) BoolExtension(key string) bool {
	v, ok := n.Extensions[key]
	if !ok {
		return false
	}
	b, ok := v.(bool)
	return ok && b
}

// StringExtension returns the extension value as a string. A map value
// with a "default" field holds the string for some directives
// (x-jmespath-filter), so that shape is unwrapped here too.
func (n *Node) StringExtension(key string) (string, bool) {
	v, ok := n.Extensions[key]
	if !ok {
		return "", false
	}
	switch t := v.(type) {
	case string:
		return t, true
	case map[string]any:
		if s, ok := t["default"].(string); ok {
			return s, true
		}
	}
	return "", false
}
