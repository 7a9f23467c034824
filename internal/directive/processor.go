package directive

import (
	"harvest/internal/frontmatter"
	"harvest/internal/schema"
)

// Processor applies the directive transform pipeline to collected
// frontmatter records. Stage order is fixed: root selection, derive,
// unique, flatten, filter. A stage whose directive is absent, or whose
// input has the wrong shape for it, is a passthrough.
type Processor struct{}

// NewProcessor returns a directive processor.
func NewProcessor() *Processor { return &Processor{} }

// Process runs the full transform order for one resolved schema node
// against the document records. The frontmatter-part root, if any, is
// located within the node's own subtree.
func (p *Processor) Process(node *schema.Node, records []frontmatter.Data) (any, error) {
	working := p.SelectRoot(node, records)

	if src, ok := node.StringExtension(schema.ExtDerivedFrom); ok {
		working = p.Derive(working, src)
	}
	if node.BoolExtension(schema.ExtDerivedUnique) {
		working = p.Unique(working)
	}
	if node.BoolExtension(schema.ExtFlattenArrays) {
		working = p.Flatten(working)
	}
	if expr, ok := node.StringExtension(schema.ExtJMESPathFilter); ok {
		filtered, err := p.Filter(working, expr)
		if err != nil {
			return nil, err
		}
		working = filtered
	}
	return working, nil
}

// SelectRoot builds the working collection. With a frontmatter-part path
// present, the sub-path is extracted from every record: array values are
// spliced one level into the collection, scalar values pushed as-is.
// Without one, every record's full field map is an element.
func (p *Processor) SelectRoot(node *schema.Node, records []frontmatter.Data) []any {
	partPath, hasPart := schema.LocateFrontmatterPart(node)

	out := []any{}
	for _, rec := range records {
		fields := rec.AsMap()
		if !hasPart {
			out = append(out, fields)
			continue
		}
		v, ok := Navigate(fields, partPath)
		if !ok {
			continue
		}
		if arr, isArr := v.([]any); isArr {
			out = append(out, arr...)
		} else {
			out = append(out, v)
		}
	}
	return out
}

// Derive replaces the collection with the values navigated from each
// element through the x-derived-from path expression. Navigated arrays
// are spread; scalars appended.
func (p *Processor) Derive(collection []any, sourcePath string) []any {
	out := []any{}
	for _, elem := range collection {
		v, ok := Navigate(elem, sourcePath)
		if !ok {
			continue
		}
		if arr, isArr := v.([]any); isArr {
			out = append(out, arr...)
		} else {
			out = append(out, v)
		}
	}
	return out
}

// Unique deduplicates with value-level set semantics: comparable values
// collapse on equality, container values (maps, slices) are kept as-is
// since only identity could distinguish them.
func (p *Processor) Unique(collection []any) []any {
	seen := map[any]bool{}
	out := make([]any, 0, len(collection))
	for _, elem := range collection {
		if !isScalar(elem) {
			out = append(out, elem)
			continue
		}
		if seen[elem] {
			continue
		}
		seen[elem] = true
		out = append(out, elem)
	}
	return out
}

func isScalar(v any) bool {
	switch v.(type) {
	case nil, string, bool, int, int64, float64:
		return true
	default:
		return false
	}
}

// Flatten recursively splices nested arrays into one flat collection.
// The result contains no array elements.
func (p *Processor) Flatten(collection []any) []any {
	out := []any{}
	for _, elem := range collection {
		if nested, ok := elem.([]any); ok {
			out = append(out, p.Flatten(nested)...)
		} else {
			out = append(out, elem)
		}
	}
	return out
}
