// Package extraction pulls positioned text, styling, tables, and images out of PDF and DOCX documents.
package extraction

import (
	"strings"

	"github.com/jonathan/resume-parser/internal/format"
)

// BBox is an axis-aligned box in top-down page coordinates (points, y grows downward)
type BBox struct {
	X0 float64 `json:"x0"`
	Y0 float64 `json:"y0"`
	X1 float64 `json:"x1"`
	Y1 float64 `json:"y1"`
}

// Width returns the horizontal extent of the box
func (b BBox) Width() float64 { return b.X1 - b.X0 }

// Height returns the vertical extent of the box
func (b BBox) Height() float64 { return b.Y1 - b.Y0 }

// Contains reports whether the point lies inside the box
func (b BBox) Contains(x, y float64) bool {
	return x >= b.X0 && x <= b.X1 && y >= b.Y0 && y <= b.Y1
}

// Word is a run of non-space glyphs sharing a baseline
type Word struct {
	Text     string  `json:"text"`
	X0       float64 `json:"x0"`
	Y0       float64 `json:"y0"`
	X1       float64 `json:"x1"`
	Y1       float64 `json:"y1"`
	FontName string  `json:"font_name"`
	FontSize float64 `json:"font_size"`
}

// Box returns the word's bounding box
func (w Word) Box() BBox {
	return BBox{X0: w.X0, Y0: w.Y0, X1: w.X1, Y1: w.Y1}
}

// Table is a row-major text grid
type Table struct {
	Page int        `json:"page"`
	Rows [][]string `json:"rows"`
}

// Image marks an embedded raster image. Box is zero when the placement could not be recovered.
type Image struct {
	Page int  `json:"page"`
	Box  BBox `json:"bbox"`
}

// Page holds the positioned content of one PDF page
type Page struct {
	Number int     `json:"number"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
	Words  []Word  `json:"words"`
	Tables []Table `json:"tables"`
	Images []Image `json:"images"`
}

// Paragraph is one DOCX paragraph with the formatting of its runs
type Paragraph struct {
	Text      string  `json:"text"`
	Style     string  `json:"style_name"`
	Bold      bool    `json:"bold"`
	Italic    bool    `json:"italic"`
	Size      float64 `json:"size"`
	Alignment string  `json:"alignment"`
	Part      string  `json:"part"` // header | body | footer
	InTable   bool    `json:"in_table"`
}

// Structure is the format-specific intermediate representation of a document.
// PDF documents populate Pages; DOCX documents populate Paragraphs and Tables.
// Content is always in original document order.
type Structure struct {
	Format     format.FileType `json:"format"`
	Pages      []Page          `json:"pages,omitempty"`
	Paragraphs []Paragraph     `json:"paragraphs,omitempty"`
	Tables     []Table         `json:"tables,omitempty"`
}

// PageCount returns the number of pages (1 for non-empty DOCX)
func (s *Structure) PageCount() int {
	if s == nil {
		return 0
	}
	if s.Format == format.PDF {
		return len(s.Pages)
	}
	if len(s.Paragraphs) > 0 || len(s.Tables) > 0 {
		return 1
	}
	return 0
}

// AllTables returns every table in the document
func (s *Structure) AllTables() []Table {
	if s == nil {
		return nil
	}
	tables := append([]Table{}, s.Tables...)
	for _, p := range s.Pages {
		tables = append(tables, p.Tables...)
	}
	return tables
}

// ImageCount returns the number of embedded images
func (s *Structure) ImageCount() int {
	if s == nil {
		return 0
	}
	n := 0
	for _, p := range s.Pages {
		n += len(p.Images)
	}
	return n
}

// FontSizes returns every observed font size (one per word or sized paragraph)
func (s *Structure) FontSizes() []float64 {
	if s == nil {
		return nil
	}
	var sizes []float64
	for _, p := range s.Pages {
		for _, w := range p.Words {
			if w.FontSize > 0 {
				sizes = append(sizes, w.FontSize)
			}
		}
	}
	for _, p := range s.Paragraphs {
		if p.Size > 0 {
			sizes = append(sizes, p.Size)
		}
	}
	return sizes
}

// Text reconstructs plain text from the structure in extraction order.
// PDF words on the same baseline are joined with spaces.
func (s *Structure) Text() string {
	if s == nil {
		return ""
	}
	var sb strings.Builder
	for _, p := range s.Paragraphs {
		if p.Text == "" {
			continue
		}
		sb.WriteString(p.Text)
		sb.WriteByte('\n')
	}
	for _, page := range s.Pages {
		for i, w := range page.Words {
			if i > 0 {
				prev := page.Words[i-1]
				if sameLine(prev, w) {
					sb.WriteByte(' ')
				} else {
					sb.WriteByte('\n')
				}
			}
			sb.WriteString(w.Text)
		}
		if len(page.Words) > 0 {
			sb.WriteByte('\n')
		}
	}
	return strings.TrimSpace(sb.String())
}

func sameLine(a, b Word) bool {
	tol := a.FontSize * 0.5
	if tol < 1 {
		tol = 1
	}
	d := a.Y1 - b.Y1
	return d < tol && d > -tol
}
