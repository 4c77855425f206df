// Package testfixtures builds small in-memory PDF and DOCX documents for tests.
package testfixtures

import (
	"fmt"
	"strings"
)

// glyphWidth is the advance width, in 1/1000 em, given to every character
const glyphWidth = 500

// PDFText is one line of text drawn with the standard font at (X, Y) in PDF space
type PDFText struct {
	X, Y float64
	Size float64
	Text string
}

// PDFRect is a stroked rectangle in PDF space
type PDFRect struct {
	X, Y, W, H float64
}

// PDFPage describes the content of one page
type PDFPage struct {
	Texts []PDFText
	Rects []PDFRect
	// Image, when set, draws a 1x1 RGB image scaled into this rectangle
	Image *PDFRect
}

// BuildPDF writes a valid PDF with correct xref offsets. All pages share a
// WinAnsi Helvetica font with explicit widths so glyph positions advance.
func BuildPDF(pages ...PDFPage) []byte {
	return buildPDF("", pages)
}

// BuildPDFInheritedBox is BuildPDF with the MediaBox declared once on the page
// tree root, width by height points, instead of on every page.
func BuildPDFInheritedBox(width, height float64, pages ...PDFPage) []byte {
	return buildPDF(fmt.Sprintf("/MediaBox [0 0 %g %g] ", width, height), pages)
}

func buildPDF(treeBox string, pages []PDFPage) []byte {
	if len(pages) == 0 {
		pages = []PDFPage{{}}
	}

	var objects []string
	add := func(body string) int {
		objects = append(objects, body)
		return len(objects)
	}

	catalog := add("") // placeholder, filled once the pages object number is known
	pagesObj := add("")

	widths := make([]string, 0, 95)
	for i := 32; i <= 126; i++ {
		widths = append(widths, fmt.Sprint(glyphWidth))
	}
	font := add(fmt.Sprintf("<< /Type /Font /Subtype /Type1 /BaseFont /Helvetica /Encoding /WinAnsiEncoding /FirstChar 32 /LastChar 126 /Widths [%s] >>",
		strings.Join(widths, " ")))

	var kids []string
	for _, p := range pages {
		var content strings.Builder
		for _, t := range p.Texts {
			size := t.Size
			if size == 0 {
				size = 11
			}
			fmt.Fprintf(&content, "BT\n/F1 %g Tf\n1 0 0 1 %g %g Tm\n(%s) Tj\nET\n", size, t.X, t.Y, escapePDF(t.Text))
		}
		for _, r := range p.Rects {
			fmt.Fprintf(&content, "%g %g %g %g re\nS\n", r.X, r.Y, r.W, r.H)
		}

		resources := fmt.Sprintf("/Font << /F1 %d 0 R >>", font)
		if p.Image != nil {
			pixel := "\xff\x00\x00"
			img := add(fmt.Sprintf("<< /Type /XObject /Subtype /Image /Width 1 /Height 1 /ColorSpace /DeviceRGB /BitsPerComponent 8 /Length %d >>\nstream\n%s\nendstream", len(pixel), pixel))
			resources += fmt.Sprintf(" /XObject << /Im1 %d 0 R >>", img)
			fmt.Fprintf(&content, "q\n%g 0 0 %g %g %g cm\n/Im1 Do\nQ\n", p.Image.W, p.Image.H, p.Image.X, p.Image.Y)
		}

		stream := content.String()
		contentObj := add(fmt.Sprintf("<< /Length %d >>\nstream\n%s\nendstream", len(stream), stream))
		pageBox := "/MediaBox [0 0 612 792] "
		if treeBox != "" {
			pageBox = ""
		}
		page := add(fmt.Sprintf("<< /Type /Page /Parent %d 0 R %s/Resources << %s >> /Contents %d 0 R >>",
			pagesObj, pageBox, resources, contentObj))
		kids = append(kids, fmt.Sprintf("%d 0 R", page))
	}

	objects[catalog-1] = fmt.Sprintf("<< /Type /Catalog /Pages %d 0 R >>", pagesObj)
	objects[pagesObj-1] = fmt.Sprintf("<< /Type /Pages %s/Kids [%s] /Count %d >>", treeBox, strings.Join(kids, " "), len(kids))

	var b strings.Builder
	b.WriteString("%PDF-1.4\n")
	offsets := make([]int, len(objects)+1)
	for i, body := range objects {
		offsets[i+1] = b.Len()
		fmt.Fprintf(&b, "%d 0 obj\n%s\nendobj\n", i+1, body)
	}

	xref := b.Len()
	fmt.Fprintf(&b, "xref\n0 %d\n", len(objects)+1)
	b.WriteString("0000000000 65535 f \n")
	for i := 1; i <= len(objects); i++ {
		fmt.Fprintf(&b, "%010d 00000 n \n", offsets[i])
	}
	fmt.Fprintf(&b, "trailer\n<< /Size %d /Root %d 0 R >>\nstartxref\n%d\n%%%%EOF\n", len(objects)+1, catalog, xref)

	return []byte(b.String())
}

func escapePDF(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, "(", `\(`)
	return strings.ReplaceAll(s, ")", `\)`)
}

// Lines lays out text lines top-down in a single column starting at (x, top)
func Lines(x, top, size float64, lines ...string) []PDFText {
	out := make([]PDFText, 0, len(lines))
	y := top
	for _, l := range lines {
		out = append(out, PDFText{X: x, Y: y, Size: size, Text: l})
		y -= size * 1.6
	}
	return out
}

// SingleColumnResume is a plain one-page resume with no tables or images
func SingleColumnResume() []byte {
	texts := []PDFText{{X: 72, Y: 740, Size: 11, Text: "Jane Doe"}}
	texts = append(texts, Lines(72, 720, 11,
		"Senior Software Engineer",
		"jane.doe@example.com | (555) 123-4567 | Austin, TX",
		"Experience",
		"- Built distributed systems serving millions of users",
		"- Led migration of monolith to services",
		"Education",
		"- BS Computer Science, University of Texas",
		"Skills",
		"- Go, Python, Kubernetes",
	)...)
	return BuildPDF(PDFPage{Texts: texts})
}

// TwoColumnResumeWithTable places a narrow sidebar next to a main column and draws a ruled 2x2 table
func TwoColumnResumeWithTable() []byte {
	var texts []PDFText
	texts = append(texts, Lines(40, 740, 10,
		"SKILLS",
		"Go and Rust programming",
		"PostgreSQL and Redis tuning",
		"Docker and Kubernetes ops",
		"Terraform infrastructure",
		"LANGUAGES",
		"English (native speaker)",
		"Spanish (professional)",
	)...)
	texts = append(texts, Lines(320, 740, 10,
		"John Smith", "Staff Engineer", "john@example.com", "EXPERIENCE",
		"Acme Corp 2019-2024", "Designed billing platform", "Reduced latency by 40%",
		"Globex 2015-2019", "Built data pipelines",
	)...)
	texts = append(texts,
		PDFText{X: 325, Y: 455, Size: 10, Text: "Degree"},
		PDFText{X: 425, Y: 455, Size: 10, Text: "Year"},
		PDFText{X: 325, Y: 435, Size: 10, Text: "MSc"},
		PDFText{X: 425, Y: 435, Size: 10, Text: "2015"},
	)
	rects := []PDFRect{
		{X: 320, Y: 450, W: 100, H: 20},
		{X: 420, Y: 450, W: 100, H: 20},
		{X: 320, Y: 430, W: 100, H: 20},
		{X: 420, Y: 430, W: 100, H: 20},
	}
	return BuildPDF(PDFPage{Texts: texts, Rects: rects})
}

// CorruptPDF carries the PDF magic but no readable structure
func CorruptPDF() []byte {
	return []byte("%PDF-1.4\n\x00\x01 this is not a real document \xff\xfe")
}
