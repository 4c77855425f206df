// Package layout infers columns, section headers, text blocks, and reading order from extracted document structure.
package layout

import (
	"sort"
	"strings"

	"github.com/jonathan/resume-parser/internal/extraction"
)

// Region is a horizontal span occupied by one column
type Region struct {
	XStart float64 `json:"x_start"`
	XEnd   float64 `json:"x_end"`
}

// ColumnLayout lists the column regions of one page, left to right
type ColumnLayout struct {
	Page    int      `json:"page"`
	Regions []Region `json:"regions"`
}

// Header is a candidate section header
type Header struct {
	Text     string          `json:"text"`
	Position extraction.BBox `json:"position"`
	Page     int             `json:"page"`
	Level    int             `json:"level"`
}

// Block is a contiguous run of text on one visual line
type Block struct {
	Text     string          `json:"text"`
	BBox     extraction.BBox `json:"bbox"`
	Page     int             `json:"page"`
	Column   int             `json:"column"`
	FontSize float64         `json:"font_size"`
}

// Model is the derived layout of a document. It is read-only once built.
type Model struct {
	Columns      []ColumnLayout `json:"columns"`
	Headers      []Header       `json:"headers"`
	Blocks       []Block        `json:"blocks"`
	ReadingOrder []int          `json:"reading_order"`
}

func newModel() *Model {
	return &Model{
		Columns:      []ColumnLayout{},
		Headers:      []Header{},
		Blocks:       []Block{},
		ReadingOrder: []int{},
	}
}

// HasColumns reports whether any page has more than one column region
func (m *Model) HasColumns() bool {
	return m.MaxColumns() > 1
}

// MaxColumns returns the largest number of regions found on any page
func (m *Model) MaxColumns() int {
	if m == nil {
		return 0
	}
	maxCols := 0
	for _, c := range m.Columns {
		if len(c.Regions) > maxCols {
			maxCols = len(c.Regions)
		}
	}
	return maxCols
}

// OrderedText joins block text in reading order, one block per line
func (m *Model) OrderedText() string {
	if m == nil {
		return ""
	}
	lines := make([]string, 0, len(m.ReadingOrder))
	for _, idx := range m.ReadingOrder {
		if idx >= 0 && idx < len(m.Blocks) {
			lines = append(lines, m.Blocks[idx].Text)
		}
	}
	return strings.Join(lines, "\n")
}

// ColumnText groups block text by page and then by column index, each column in
// reading order. The result has one entry per (page, column) pair seen, pages
// ascending and columns ascending within a page.
func (m *Model) ColumnText() []string {
	if m == nil {
		return nil
	}

	type key struct{ page, column int }
	cols := map[key][]string{}
	var keys []key
	for _, idx := range m.ReadingOrder {
		if idx < 0 || idx >= len(m.Blocks) {
			continue
		}
		b := m.Blocks[idx]
		if b.Column < 0 {
			continue
		}
		k := key{page: b.Page, column: b.Column}
		if _, ok := cols[k]; !ok {
			keys = append(keys, k)
		}
		cols[k] = append(cols[k], b.Text)
	}

	sort.Slice(keys, func(i, j int) bool {
		if keys[i].page != keys[j].page {
			return keys[i].page < keys[j].page
		}
		return keys[i].column < keys[j].column
	})

	out := make([]string, 0, len(keys))
	for _, k := range keys {
		out = append(out, strings.Join(cols[k], "\n"))
	}
	return out
}

// HeaderTexts returns the text of every header candidate
func (m *Model) HeaderTexts() []string {
	if m == nil {
		return nil
	}
	out := make([]string, 0, len(m.Headers))
	for _, h := range m.Headers {
		out = append(out, h.Text)
	}
	return out
}
