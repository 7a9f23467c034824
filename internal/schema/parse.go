package schema

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
)

// ParseFile reads a JSON schema document from disk and parses it into a Node tree.
func ParseFile(path string) (*Node, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("schema: read %q: %w", path, err)
	}
	return Parse(data)
}

// Parse parses JSON schema bytes into a Node tree.
func Parse(data []byte) (*Node, error) {
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("schema: parse json: %w", err)
	}
	return FromMap(raw)
}

// FromMap converts one decoded JSON object into a Node, recursing into
// properties and items. Unknown type strings map to KindAny.
func FromMap(raw map[string]any) (*Node, error) {
	node := &Node{Extensions: extractExtensions(raw)}

	if desc, ok := raw["description"].(string); ok {
		node.Description = desc
	}
	if req, ok := raw["required"].([]any); ok {
		for _, r := range req {
			if s, ok := r.(string); ok {
				node.Required = append(node.Required, s)
			}
		}
	}

	if ref, ok := raw["$ref"].(string); ok {
		node.Kind = KindRef
		node.Ref = ref
		return node, nil
	}

	if enum, ok := raw["enum"].([]any); ok {
		node.Kind = KindEnum
		node.Enum = enum
		return node, nil
	}

	typ, _ := raw["type"].(string)
	switch typ {
	case "object":
		node.Kind = KindObject
		node.Properties = map[string]*Node{}
		if props, ok := raw["properties"].(map[string]any); ok {
			for name, p := range props {
				pm, ok := p.(map[string]any)
				if !ok {
					return nil, fmt.Errorf("schema: property %q is not an object", name)
				}
				child, err := FromMap(pm)
				if err != nil {
					return nil, fmt.Errorf("schema: property %q: %w", name, err)
				}
				node.Properties[name] = child
			}
		}
	case "array":
		node.Kind = KindArray
		if items, ok := raw["items"].(map[string]any); ok {
			child, err := FromMap(items)
			if err != nil {
				return nil, fmt.Errorf("schema: items: %w", err)
			}
			node.Items = child
		} else {
			node.Items = &Node{Kind: KindAny}
		}
	case "string":
		node.Kind = KindString
	case "number":
		node.Kind = KindNumber
	case "integer":
		node.Kind = KindInteger
	case "boolean":
		node.Kind = KindBoolean
	case "null":
		node.Kind = KindNull
	case "":
		// No type: objects are recognizable by a properties key, anything
		// else is unconstrained.
		if props, ok := raw["properties"].(map[string]any); ok {
			node.Kind = KindObject
			node.Properties = map[string]*Node{}
			for name, p := range props {
				pm, ok := p.(map[string]any)
				if !ok {
					return nil, fmt.Errorf("schema: property %q is not an object", name)
				}
				child, err := FromMap(pm)
				if err != nil {
					return nil, fmt.Errorf("schema: property %q: %w", name, err)
				}
				node.Properties[name] = child
			}
		} else {
			node.Kind = KindAny
		}
	default:
		node.Kind = KindAny
	}
	return node, nil
}

func extractExtensions(raw map[string]any) map[string]any {
	var ext map[string]any
	for k, v := range raw {
		if !strings.HasPrefix(k, "x-") {
			continue
		}
		if ext == nil {
			ext = map[string]any{}
		}
		ext[k] = v
	}
	return ext
}
