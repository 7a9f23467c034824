package schema

import (
	"fmt"
	"strings"
)

// Loader resolves a $ref string to a parsed schema node. It is the only
// I/O boundary of resolution; file-backed and in-memory loaders both
// implement it.
type Loader interface {
	Load(ref string) (*Node, error)
}

// ContextLoader is an optional Loader extension for loaders that resolve
// relative refs against a base path (e.g. the directory of the schema
// file that contained the ref).
type ContextLoader interface {
	Loader
	LoadFrom(ref, basePath string) (*Node, error)
}

// CircularRefError reports a ref that is its own ancestor. Chain holds the
// visited refs in traversal order, ending with the repeated ref.
type CircularRefError struct {
	Chain []string
}

func (e *CircularRefError) Error() string {
	return fmt.Sprintf("schema: circular reference: %s", strings.Join(e.Chain, " -> "))
}

// RefError reports a ref the loader could not resolve to a valid schema.
type RefError struct {
	Ref string
	Err error
}

func (e *RefError) Error() string {
	return fmt.Sprintf("schema: resolve ref %q: %v", e.Ref, e.Err)
}

func (e *RefError) Unwrap() error { return e.Err }

// TooDeepError reports that resolution exceeded the configured depth guard.
type TooDeepError struct {
	MaxDepth int
}

func (e *TooDeepError) Error() string {
	return fmt.Sprintf("schema: resolution exceeded max depth %d", e.MaxDepth)
}

// Resolver replaces every ref node in a schema tree with the schema it
// points to. Termination is guaranteed by the visited-set rule: a ref that
// is already on the current ancestor chain is a cycle. MaxDepth, when
// positive, additionally bounds recursion depth independent of cycle
// detection.
type Resolver struct {
	Loader   Loader
	MaxDepth int
}

// NewResolver returns a Resolver using the given loader and no depth guard.
func NewResolver(loader Loader) *Resolver {
	return &Resolver{Loader: loader}
}

// Resolve returns a copy of the tree with all refs replaced. basePath is
// handed to ContextLoader implementations for relative-ref resolution.
// The visited set is scoped to this call; concurrent Resolve calls on the
// same Resolver do not share state.
func (r *Resolver) Resolve(node *Node, basePath string) (*Node, error) {
	return r.resolve(node, basePath, map[string]bool{}, nil, 0)
}

func (r *Resolver) resolve(node *Node, basePath string, visited map[string]bool, chain []string, depth int) (*Node, error) {
	if node == nil {
		return nil, nil
	}
	if r.MaxDepth > 0 && depth > r.MaxDepth {
		return nil, &TooDeepError{MaxDepth: r.MaxDepth}
	}

	switch node.Kind {
	case KindRef:
		if visited[node.Ref] {
			return nil, &CircularRefError{Chain: append(append([]string{}, chain...), node.Ref)}
		}
		target, err := r.load(node.Ref, basePath)
		if err != nil {
			if _, fileBacked := r.Loader.(ContextLoader); fileBacked && strings.HasPrefix(node.Ref, "#/") {
				// Internal definitions a file-backed loader cannot serve
				// degrade to an opaque string stub rather than failing the
				// whole resolution. In-memory loaders get no such grace:
				// their refs must resolve strictly.
				return &Node{
					Kind:        KindString,
					Description: fmt.Sprintf("unresolved reference %s", node.Ref),
					Extensions:  node.Extensions,
				}, nil
			}
			return nil, &RefError{Ref: node.Ref, Err: err}
		}
		if target == nil {
			return nil, &RefError{Ref: node.Ref, Err: fmt.Errorf("loader returned no schema")}
		}
		// The loaded subtree resolves against a copy of the visited set:
		// sibling branches may reuse this ref, only an ancestor chain
		// through it is a cycle.
		nested := copyVisited(visited)
		nested[node.Ref] = true
		resolved, err := r.resolve(target, basePath, nested, append(chain, node.Ref), depth+1)
		if err != nil {
			return nil, err
		}
		if resolved != nil && len(node.Extensions) > 0 {
			resolved = mergeExtensions(resolved, node.Extensions)
		}
		return resolved, nil

	case KindObject:
		out := &Node{
			Kind:        KindObject,
			Properties:  map[string]*Node{},
			Required:    node.Required,
			Description: node.Description,
			Extensions:  node.Extensions,
		}
		for _, name := range node.PropertyNames() {
			child, err := r.resolve(node.Properties[name], basePath, visited, chain, depth+1)
			if err != nil {
				return nil, err
			}
			out.Properties[name] = child
		}
		return out, nil

	case KindArray:
		items, err := r.resolve(node.Items, basePath, visited, chain, depth+1)
		if err != nil {
			return nil, err
		}
		return &Node{
			Kind:        KindArray,
			Items:       items,
			Description: node.Description,
			Extensions:  node.Extensions,
		}, nil

	default:
		return node, nil
	}
}

func (r *Resolver) load(ref, basePath string) (*Node, error) {
	if cl, ok := r.Loader.(ContextLoader); ok && basePath != "" {
		return cl.LoadFrom(ref, basePath)
	}
	if r.Loader == nil {
		return nil, fmt.Errorf("no loader configured")
	}
	return r.Loader.Load(ref)
}

func copyVisited(visited map[string]bool) map[string]bool {
	out := make(map[string]bool, len(visited))
	for k, v := range visited {
		out[k] = v
	}
	return out
}

// mergeExtensions layers the ref site's own x-* keys over the resolved
// target's, the ref site winning on conflict.
func mergeExtensions(node *Node, ext map[string]any) *Node {
	merged := make(map[string]any, len(node.Extensions)+len(ext))
	for k, v := range node.Extensions {
		merged[k] = v
	}
	for k, v := range ext {
		merged[k] = v
	}
	out := *node
	out.Extensions = merged
	return &out
}
