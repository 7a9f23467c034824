package frontmatter

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestExtractYAML(t *testing.T) {
	doc := []byte(`---
title: Hello
tags:
  - cli
  - docs
---

# Body
`)
	d, err := Extract(doc)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	want := map[string]any{
		"title": "Hello",
		"tags":  []any{"cli", "docs"},
	}
	if diff := cmp.Diff(want, d.AsMap()); diff != "" {
		t.Errorf("fields mismatch (-want +got):\n%s", diff)
	}
}

func TestExtractTOML(t *testing.T) {
	doc := []byte(`+++
title = "Hello"
weight = 3
+++
body text
`)
	d, err := Extract(doc)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if v, _ := d.Get("title"); v != "Hello" {
		t.Errorf("title = %v", v)
	}
	if v, _ := d.Get("weight"); v != int64(3) {
		t.Errorf("weight = %v (%T), want int64(3)", v, v)
	}
}

func TestExtractJSON(t *testing.T) {
	doc := []byte(`{"title": "Hello", "draft": true}

# Body
`)
	d, err := Extract(doc)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if v, _ := d.Get("draft"); v != true {
		t.Errorf("draft = %v", v)
	}
}

func TestExtractJSONWithBlankLineAndBraces(t *testing.T) {
	doc := []byte(`{
  "title": "Hello",

  "note": "brace } inside a value",
  "draft": true
}

# Body
`)
	d, err := Extract(doc)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if v, _ := d.Get("note"); v != "brace } inside a value" {
		t.Errorf("note = %v", v)
	}
	if v, _ := d.Get("draft"); v != true {
		t.Errorf("draft = %v", v)
	}
}

func TestExtractNoFrontmatter(t *testing.T) {
	d, err := Extract([]byte("# Just a heading\n\nprose.\n"))
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if !d.IsEmpty() {
		t.Errorf("fields = %v, want empty", d.AsMap())
	}
}

func TestExtractUnclosedFence(t *testing.T) {
	d, err := Extract([]byte("---\ntitle: Broken\n\nno closing fence\n"))
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if !d.IsEmpty() {
		t.Errorf("unclosed fence should yield empty record, got %v", d.AsMap())
	}
}

func TestDataImmutability(t *testing.T) {
	src := map[string]any{"k": "v"}
	d := New(src)

	src["k"] = "mutated"
	if v, _ := d.Get("k"); v != "v" {
		t.Error("record leaked the caller's map")
	}

	out := d.AsMap()
	out["k"] = "mutated"
	if v, _ := d.Get("k"); v != "v" {
		t.Error("AsMap leaked the internal map")
	}
}
