// Package aggregate builds the final aggregated output record from the
// per-document frontmatter records, steered by the resolved schema's
// directive set.
package aggregate

import (
	"fmt"
	"strings"
	"time"

	"harvest/internal/directive"
	"harvest/internal/frontmatter"
	"harvest/internal/schema"
)

// Strategy names reported in run metadata.
const (
	StrategyDerivation = "derivation-rules"
	StrategyMerge      = "structural-merge"
	StrategyParts      = "frontmatter-parts"
)

// Metadata describes one aggregation run. It feeds logging and the run
// history store, not correctness.
type Metadata struct {
	InputCount          int    `json:"input_count"`
	HasDerivationRules  bool   `json:"has_derivation_rules"`
	DerivationRuleCount int    `json:"derivation_rule_count"`
	Strategy            string `json:"strategy"`
	ProcessingTimeMS    int64  `json:"processing_time_ms"`
}

// Result is one pipeline run's aggregated output: the main record plus the
// per-document items collection handed to the renderer.
type Result struct {
	Frontmatter frontmatter.Data
	Items       []any
	Metadata    Metadata
}

// PartError reports a record whose frontmatter-part extraction failed.
type PartError struct {
	Index int
	Err   error
}

func (e *PartError) Error() string {
	return fmt.Sprintf("aggregate: frontmatter part of record %d: %v", e.Index, e.Err)
}

func (e *PartError) Unwrap() error { return e.Err }

// TransformError reports a record that could not be wrapped back into an
// output element.
type TransformError struct {
	Index int
	Err   error
}

func (e *TransformError) Error() string {
	return fmt.Sprintf("aggregate: transform record %d: %v", e.Index, e.Err)
}

func (e *TransformError) Unwrap() error { return e.Err }

// Aggregator orchestrates the directive processor across the whole
// document set.
type Aggregator struct {
	processor *directive.Processor
}

// New returns an Aggregator backed by a fresh directive processor.
func New() *Aggregator {
	return &Aggregator{processor: directive.NewProcessor()}
}

// Aggregate picks a strategy from the resolved schema's derivation rules
// and produces the final aggregated result. All strategies abort on the
// first record-level failure; there is no partial-record skipping here.
func (a *Aggregator) Aggregate(records []frontmatter.Data, resolved *schema.Node) (*Result, error) {
	start := time.Now()

	rules := schema.ExtractDerivationRules(resolved)
	meta := Metadata{
		InputCount:          len(records),
		HasDerivationRules:  len(rules) > 0,
		DerivationRuleCount: len(rules),
	}

	var result *Result
	var err error
	if len(rules) > 0 {
		result, err = a.withDerivationRules(records, resolved, rules)
	} else if _, ok := schema.LocateFrontmatterPart(resolved); ok {
		result, err = a.frontmatterParts(records, resolved)
	} else {
		result, err = a.structuralMerge(records)
	}
	if err != nil {
		return nil, err
	}

	meta.Strategy = result.Metadata.Strategy
	meta.ProcessingTimeMS = time.Since(start).Milliseconds()
	result.Metadata = meta
	return result, nil
}

// withDerivationRules builds each target field by running the rule's
// full transform order (derive, unique, flatten, filter) against the
// schema-selected root collection, keyed by the schema property that
// carried the rule. Source paths may be written from the record root or
// relative to the frontmatter-part elements; root-expressed paths are
// rebased onto the part before navigating.
func (a *Aggregator) withDerivationRules(records []frontmatter.Data, resolved *schema.Node, rules []schema.DerivationRule) (*Result, error) {
	partPath, _ := schema.LocateFrontmatterPart(resolved)
	root := a.processor.SelectRoot(resolved, records)

	fields := map[string]any{}
	for _, rule := range rules {
		derived := a.processor.Derive(root, relativeToPart(partPath, rule.SourcePath))
		if rule.Unique {
			derived = a.processor.Unique(derived)
		}
		if rule.Flatten {
			derived = a.processor.Flatten(derived)
		}
		if rule.Filter != "" {
			filtered, err := a.processor.Filter(derived, rule.Filter)
			if err != nil {
				return nil, err
			}
			derived = filtered
		}
		if rule.TargetField == "" {
			fields["derived"] = derived
			continue
		}
		fields[rule.TargetField] = derived
	}

	return &Result{
		Frontmatter: frontmatter.New(fields),
		Items:       root,
		Metadata:    Metadata{Strategy: StrategyDerivation},
	}, nil
}

// structuralMerge folds every record into one output record; later
// records win on key conflicts, in input order.
func (a *Aggregator) structuralMerge(records []frontmatter.Data) (*Result, error) {
	merged := map[string]any{}
	items := make([]any, 0, len(records))
	for _, rec := range records {
		fields := rec.AsMap()
		for k, v := range fields {
			merged[k] = v
		}
		items = append(items, fields)
	}
	return &Result{
		Frontmatter: frontmatter.New(merged),
		Items:       items,
		Metadata:    Metadata{Strategy: StrategyMerge},
	}, nil
}

// frontmatterParts treats each record as one element of the final items
// array. The part path is located once; a record missing the path
// contributes its full data unchanged.
func (a *Aggregator) frontmatterParts(records []frontmatter.Data, resolved *schema.Node) (*Result, error) {
	partPath, ok := schema.LocateFrontmatterPart(resolved)
	if !ok {
		return a.structuralMerge(records)
	}

	items := make([]any, 0, len(records))
	for i, rec := range records {
		fields := rec.AsMap()
		v, found := directive.Navigate(fields, partPath)
		if !found {
			items = append(items, fields)
			continue
		}
		if v == nil {
			return nil, &PartError{Index: i, Err: fmt.Errorf("part %q is null", partPath)}
		}
		wrapped, err := wrapPart(partPath, v)
		if err != nil {
			return nil, &TransformError{Index: i, Err: err}
		}
		items = append(items, wrapped)
	}

	return &Result{
		Frontmatter: frontmatter.New(map[string]any{rootKey(partPath): itemValues(items, partPath)}),
		Items:       items,
		Metadata:    Metadata{Strategy: StrategyParts},
	}, nil
}

// wrapPart rebuilds one output element keyed by the part path so each
// item keeps its schema position.
func wrapPart(partPath string, v any) (map[string]any, error) {
	if partPath == "" {
		m, ok := v.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("part value is %T, not an object", v)
		}
		return m, nil
	}
	return map[string]any{rootKey(partPath): v}, nil
}

// relativeToPart rewrites a derivation path written from the record root
// into one relative to the part-selected elements: with part "commands",
// "commands[].name" becomes "name". A path that does not start with the
// part path is already element-relative and passes through unchanged.
func relativeToPart(partPath, sourcePath string) string {
	if partPath == "" {
		return sourcePath
	}
	partSegs := strings.Split(partPath, ".")
	srcSegs := strings.Split(sourcePath, ".")
	if len(srcSegs) < len(partSegs) {
		return sourcePath
	}
	for i, p := range partSegs {
		if strings.TrimSuffix(srcSegs[i], "[]") != p {
			return sourcePath
		}
	}
	return strings.Join(srcSegs[len(partSegs):], ".")
}

func rootKey(partPath string) string {
	for i := 0; i < len(partPath); i++ {
		if partPath[i] == '.' {
			return partPath[:i]
		}
	}
	return partPath
}

// itemValues collects the part values back out of the wrapped items for
// the aggregated record.
func itemValues(items []any, partPath string) []any {
	out := make([]any, 0, len(items))
	for _, item := range items {
		if v, ok := directive.Navigate(item, rootKey(partPath)); ok {
			out = append(out, v)
		} else {
			out = append(out, item)
		}
	}
	return out
}
