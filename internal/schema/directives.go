package schema

// DerivationRule maps a source path expression (x-derived-from) to the
// schema property it populates, together with the node's other transform
// directives: deduplication (x-derived-unique), array flattening
// (x-flatten-arrays), and a filter expression (x-jmespath-filter). Rules
// are extracted once per aggregation run and consumed immediately.
type DerivationRule struct {
	SourcePath  string
	TargetField string
	Unique      bool
	Flatten     bool
	Filter      string
}

// ExtractDerivationRules walks a resolved tree and collects one rule per
// node carrying x-derived-from. The target field is the property name the
// node hangs under; a rule on the root itself targets the empty field.
// Walk order follows sorted property names, so rule order is deterministic.
func ExtractDerivationRules(root *Node) []DerivationRule {
	var rules []DerivationRule
	collectRules(root, "", &rules)
	return rules
}

func collectRules(node *Node, field string, rules *[]DerivationRule) {
	if node == nil {
		return
	}
	if src, ok := node.StringExtension(ExtDerivedFrom); ok {
		rule := DerivationRule{
			SourcePath:  src,
			TargetField: field,
			Unique:      node.BoolExtension(ExtDerivedUnique),
			Flatten:     node.BoolExtension(ExtFlattenArrays),
		}
		if expr, ok := node.StringExtension(ExtJMESPathFilter); ok {
			rule.Filter = expr
		}
		*rules = append(*rules, rule)
	}
	for _, name := range node.PropertyNames() {
		collectRules(node.Properties[name], name, rules)
	}
	if node.Items != nil {
		collectRules(node.Items, field, rules)
	}
}

// LocateFrontmatterPart finds the single node flagged x-frontmatter-part
// and returns its dotted property path. The first flagged node in sorted
// walk order wins; ok is false when no node carries the flag.
func LocateFrontmatterPart(root *Node) (path string, ok bool) {
	return locatePart(root, "")
}

func locatePart(node *Node, prefix string) (string, bool) {
	if node == nil {
		return "", false
	}
	if node.BoolExtension(ExtFrontmatterPart) {
		return prefix, true
	}
	for _, name := range node.PropertyNames() {
		childPath := name
		if prefix != "" {
			childPath = prefix + "." + name
		}
		if p, ok := locatePart(node.Properties[name], childPath); ok {
			return p, true
		}
	}
	if node.Items != nil {
		if p, ok := locatePart(node.Items, prefix); ok {
			return p, true
		}
	}
	return "", false
}

// FindNodeAt navigates a dotted property path from the root, descending
// through array items transparently. Returns nil when the path does not
// exist.
func FindNodeAt(root *Node, path string) *Node {
	if path == "" {
		return root
	}
	node := root
	for _, seg := range splitPath(path) {
		for node != nil && node.Kind == KindArray {
			node = node.Items
		}
		if node == nil {
			return nil
		}
		child, ok := node.Property(seg)
		if !ok {
			return nil
		}
		node = child
	}
	return node
}

func splitPath(path string) []string {
	var out []string
	start := 0
	for i := 0; i < len(path); i++ {
		if path[i] == '.' {
			out = append(out, path[start:i])
			start = i + 1
		}
	}
	return append(out, path[start:])
}
