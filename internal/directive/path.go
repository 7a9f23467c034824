// Package directive interprets the x-* schema extension keys as a fixed
// sequence of data transforms over collected frontmatter records.
package directive

import "strings"

// Navigate walks a dotted path over decoded frontmatter values. A segment
// suffixed with "[]" maps the remainder of the path over the elements of
// an array value, collecting the results; a mapped element that itself
// navigates to an array is spread into the collection.
func Navigate(value any, path string) (any, bool) {
	if path == "" {
		return value, true
	}
	return navigate(value, strings.Split(path, "."))
}

func navigate(value any, segs []string) (any, bool) {
	if len(segs) == 0 {
		return value, true
	}
	name, mapped := strings.CutSuffix(segs[0], "[]")

	m, ok := value.(map[string]any)
	if !ok {
		return nil, false
	}
	child, ok := m[name]
	if !ok {
		return nil, false
	}

	if !mapped {
		return navigate(child, segs[1:])
	}

	arr, ok := child.([]any)
	if !ok {
		return nil, false
	}
	out := []any{}
	for _, elem := range arr {
		v, ok := navigate(elem, segs[1:])
		if !ok {
			continue
		}
		if nested, isArr := v.([]any); isArr {
			out = append(out, nested...)
		} else {
			out = append(out, v)
		}
	}
	return out, true
}
