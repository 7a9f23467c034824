// Package format renders tabular output for the CLI and the Markdown
// serializer. It wraps go-pretty behind a small project-owned interface
// so callers never touch the library's types directly.
package format

import (
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

// Mode selects the rendering style.
type Mode int

const (
	ASCII    Mode = iota // fixed-width terminal tables
	Markdown             // GitHub-flavoured Markdown tables
)

// Table accumulates rows and renders once in the configured Mode.
type Table interface {
	Header(cols ...string)
	Row(vals ...any)
	// MaxColumnWidth truncates cell content in the given 1-based column.
	MaxColumnWidth(col, width int)
	String() string
}

// NewTable returns a Table rendering in the given Mode.
func NewTable(m Mode) Table {
	w := table.NewWriter()
	if m == ASCII {
		w.SetStyle(table.StyleLight)
	}
	return &prettyTable{writer: w, mode: m}
}

type prettyTable struct {
	writer table.Writer
	mode   Mode
}

func (t *prettyTable) Header(cols ...string) {
	row := make(table.Row, len(cols))
	for i, c := range cols {
		row[i] = c
	}
	t.writer.AppendHeader(row)
}

func (t *prettyTable) Row(vals ...any) {
	row := make(table.Row, len(vals))
	copy(row, vals)
	t.writer.AppendRow(row)
}

func (t *prettyTable) MaxColumnWidth(col, width int) {
	t.writer.SetColumnConfigs([]table.ColumnConfig{
		{Number: col, WidthMax: width, Align: text.AlignLeft},
	})
}

func (t *prettyTable) String() string {
	if t.mode == Markdown {
		return t.writer.RenderMarkdown()
	}
	return t.writer.Render()
}
