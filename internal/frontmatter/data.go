// Package frontmatter extracts and represents the key-value metadata block
// embedded at the top of a Markdown document.
package frontmatter

// Data is one document's parsed frontmatter. It is created once per
// document and never mutated; accessors hand out copies of container
// values' top level rather than internal references to the map itself.
type Data struct {
	fields map[string]any
}

// New wraps a parsed key-value map as an immutable record. The map is
// copied so later mutation by the caller cannot leak in.
func New(fields map[string]any) Data {
	out := make(map[string]any, len(fields))
	for k, v := range fields {
		out[k] = v
	}
	return Data{fields: out}
}

// Empty returns a record with no fields, used for documents without a
// frontmatter block.
func Empty() Data {
	return Data{fields: map[string]any{}}
}

// Get returns the value of a top-level key.
func (d Data) Get(key string) (any, bool) {
	v, ok := d.fields[key]
	return v, ok
}

// Len returns the number of top-level keys.
func (d Data) Len() int { return len(d.fields) }

// IsEmpty reports whether the record has any fields at all.
func (d Data) IsEmpty() bool { return len(d.fields) == 0 }

// AsMap returns a shallow copy of the record's fields.
func (d Data) AsMap() map[string]any {
	out := make(map[string]any, len(d.fields))
	for k, v := range d.fields {
		out[k] = v
	}
	return out
}
