package directive

import (
	"fmt"
	"regexp"
	"strings"
)

// The filter engine matches exactly two literal expression shapes.
// Any other expression leaves the collection untouched.
var (
	containsShape = regexp.MustCompile(`^\[\?contains\(([A-Za-z0-9_.-]+),\s*'([^']*)'\)\]$`)
	equalsORShape = regexp.MustCompile(`^\[\?([A-Za-z0-9_.-]+)\s*==\s*'([^']*)'\s*\|\|\s*([A-Za-z0-9_.-]+)\s*==\s*'([^']*)'\]$`)
)

// FilterError reports a filter expression that failed during evaluation.
type FilterError struct {
	Expr string
	Err  error
}

func (e *FilterError) Error() string {
	return fmt.Sprintf("directive: filter %q: %v", e.Expr, e.Err)
}

func (e *FilterError) Unwrap() error { return e.Err }

// Filter applies a supported filter expression to the collection.
// Unsupported expressions return the collection unchanged.
func (p *Processor) Filter(collection []any, expr string) (out []any, err error) {
	defer func() {
		if r := recover(); r != nil {
			out, err = nil, &FilterError{Expr: expr, Err: fmt.Errorf("%v", r)}
		}
	}()

	if m := containsShape.FindStringSubmatch(expr); m != nil {
		return filterContains(collection, m[1], m[2]), nil
	}
	if m := equalsORShape.FindStringSubmatch(expr); m != nil {
		return filterEqualsOR(collection, m[1], m[2], m[3], m[4]), nil
	}
	return collection, nil
}

// filterContains keeps elements whose field is a string containing value,
// or an array containing value.
func filterContains(collection []any, field, value string) []any {
	out := []any{}
	for _, elem := range collection {
		v, ok := Navigate(elem, field)
		if !ok {
			continue
		}
		switch t := v.(type) {
		case string:
			if strings.Contains(t, value) {
				out = append(out, elem)
			}
		case []any:
			for _, e := range t {
				if s, ok := e.(string); ok && s == value {
					out = append(out, elem)
					break
				}
			}
		}
	}
	return out
}

func filterEqualsOR(collection []any, f1, v1, f2, v2 string) []any {
	out := []any{}
	for _, elem := range collection {
		if fieldEquals(elem, f1, v1) || fieldEquals(elem, f2, v2) {
			out = append(out, elem)
		}
	}
	return out
}

func fieldEquals(elem any, field, value string) bool {
	v, ok := Navigate(elem, field)
	if !ok {
		return false
	}
	s, ok := v.(string)
	return ok && s == value
}
