package extraction

import (
	"strings"

	"github.com/ledongthuc/pdf"
	"github.com/tsawler/tabula/model"
	"github.com/tsawler/tabula/tables"
)

const (
	// ruled regions need at least this many drawn cells to be considered a table
	minRuledCells = 4
	// rectangles closer than this many points belong to the same ruled region
	ruledTouchTolerance = 4.0
	// the geometric detector's confidence floor inside a ruled region
	ruledMinConfidence = 0.3
)

// detectRuledTables finds regions of touching drawn rectangles and runs tabula's
// geometric detector over the words inside each one. Detection is scoped to ruled
// regions so free-flowing body text is never read as a grid.
func detectRuledTables(rects []pdf.Rect, words []Word, pageWidth, pageHeight float64, pageNum int) []Table {
	regions := ruledRegions(rects, pageHeight)
	if len(regions) == 0 {
		return []Table{}
	}

	cfg := tables.DefaultConfig()
	cfg.MinConfidence = ruledMinConfidence
	cfg.DetectMergedCells = false
	detector := tables.NewGeometricDetector()
	_ = detector.Configure(cfg)

	out := []Table{}
	for _, region := range regions {
		page := &model.Page{
			Number:   pageNum,
			Width:    pageWidth,
			Height:   pageHeight,
			RawLines: region.lines,
		}
		var inside []Word
		for _, w := range words {
			if region.box.Contains((w.X0+w.X1)/2, (w.Y0+w.Y1)/2) {
				inside = append(inside, w)
				page.RawText = append(page.RawText, toFragment(w, pageHeight))
			}
		}

		found, err := detector.Detect(page)
		if err != nil {
			continue
		}
		for _, t := range found {
			if rows := tableRows(t, inside, pageHeight); len(rows) >= 2 && len(rows[0]) >= 2 {
				out = append(out, Table{Page: pageNum, Rows: rows})
			}
		}
	}
	return out
}

type ruledRegion struct {
	box   BBox
	cells int
	lines []model.Line
}

// ruledRegions groups drawn rectangles into connected regions, in top-down coordinates
func ruledRegions(rects []pdf.Rect, pageHeight float64) []ruledRegion {
	var regions []ruledRegion
	for _, r := range rects {
		b := BBox{
			X0: minf(r.Min.X, r.Max.X),
			X1: maxf(r.Min.X, r.Max.X),
			Y0: pageHeight - maxf(r.Min.Y, r.Max.Y),
			Y1: pageHeight - minf(r.Min.Y, r.Max.Y),
		}
		// ignore hairlines and full-page backgrounds
		if b.Width() < 8 || b.Height() < 6 || b.Height() > pageHeight*0.5 {
			continue
		}

		merged := ruledRegion{box: b, cells: 1, lines: rectEdges(r)}
		kept := regions[:0]
		for _, existing := range regions {
			if touches(existing.box, merged.box) {
				merged.box = union(existing.box, merged.box)
				merged.cells += existing.cells
				merged.lines = append(merged.lines, existing.lines...)
				continue
			}
			kept = append(kept, existing)
		}
		regions = append(kept, merged)
	}

	out := regions[:0]
	for _, r := range regions {
		if r.cells >= minRuledCells {
			out = append(out, r)
		}
	}
	return out
}

// rectEdges returns the four sides of a rectangle in PDF space
func rectEdges(r pdf.Rect) []model.Line {
	x0, x1 := minf(r.Min.X, r.Max.X), maxf(r.Min.X, r.Max.X)
	y0, y1 := minf(r.Min.Y, r.Max.Y), maxf(r.Min.Y, r.Max.Y)
	corners := []model.Point{{X: x0, Y: y0}, {X: x1, Y: y0}, {X: x1, Y: y1}, {X: x0, Y: y1}}
	lines := make([]model.Line, 0, 4)
	for i := range corners {
		lines = append(lines, model.Line{Start: corners[i], End: corners[(i+1)%4], IsRect: true})
	}
	return lines
}

// toFragment converts a top-down word into a tabula fragment in PDF space
func toFragment(w Word, pageHeight float64) model.TextFragment {
	return model.TextFragment{
		Text:     w.Text,
		BBox:     model.NewBBox(w.X0, pageHeight-w.Y1, w.X1-w.X0, w.Y1-w.Y0),
		FontSize: w.FontSize,
		FontName: w.FontName,
	}
}

// tableRows reads each detected cell back from the words in reading order and
// drops the empty rows and columns the detector's text-edge grid leaves behind.
func tableRows(t *model.Table, words []Word, pageHeight float64) [][]string {
	var rows [][]string
	for _, row := range t.Rows {
		texts := make([]string, len(row))
		empty := true
		for j, cell := range row {
			if cell.BBox.IsEmpty() {
				continue
			}
			box := BBox{
				X0: cell.BBox.Left(),
				X1: cell.BBox.Right(),
				Y0: pageHeight - cell.BBox.Top(),
				Y1: pageHeight - cell.BBox.Bottom(),
			}
			texts[j] = wordsInside(words, box)
			if texts[j] != "" {
				empty = false
			}
		}
		if !empty {
			rows = append(rows, texts)
		}
	}
	if len(rows) == 0 {
		return nil
	}

	var keep []int
	for j := range rows[0] {
		for _, row := range rows {
			if j < len(row) && strings.TrimSpace(row[j]) != "" {
				keep = append(keep, j)
				break
			}
		}
	}

	out := make([][]string, 0, len(rows))
	for _, row := range rows {
		compact := make([]string, 0, len(keep))
		for _, j := range keep {
			if j < len(row) {
				compact = append(compact, row[j])
			} else {
				compact = append(compact, "")
			}
		}
		out = append(out, compact)
	}
	return out
}

func touches(a, b BBox) bool {
	return a.X0 <= b.X1+ruledTouchTolerance && b.X0 <= a.X1+ruledTouchTolerance &&
		a.Y0 <= b.Y1+ruledTouchTolerance && b.Y0 <= a.Y1+ruledTouchTolerance
}

func union(a, b BBox) BBox {
	return BBox{X0: minf(a.X0, b.X0), Y0: minf(a.Y0, b.Y0), X1: maxf(a.X1, b.X1), Y1: maxf(a.Y1, b.Y1)}
}
