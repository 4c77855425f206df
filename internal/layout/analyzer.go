package layout

import (
	"math"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"gonum.org/v1/gonum/stat"

	"github.com/jonathan/resume-parser/internal/extraction"
	"github.com/jonathan/resume-parser/internal/format"
)

const (
	// headers must be shorter than this many characters
	maxHeaderLength = 50
	// all-caps text longer than this is body text, not a header
	maxAllCapsHeaderLength = 40

	headerSizeRatio  = 1.2
	level1SizeRatio  = 1.5
	blockGapRatio    = 3.0
	lineToleranceMin = 2.0

	// blocks wider than this fraction of the page are banners, not column text
	maxColumnBlockWidth = 0.6
)

// Options tunes the analyzer
type Options struct {
	// Clustering enables column inference. When false the analyzer reports a single
	// full-width column with no headers or blocks.
	Clustering bool
	// Eps is the clustering neighborhood radius in points
	Eps float64
	// MinPoints is the minimum number of line starts that make a column
	MinPoints int
	// MinRegionWidth drops regions narrower than this fraction of the page width
	MinRegionWidth float64
}

// DefaultOptions returns the analyzer defaults
func DefaultOptions() Options {
	return Options{
		Clustering:     true,
		Eps:            15,
		MinPoints:      3,
		MinRegionWidth: 0.12,
	}
}

// Analyze derives a layout model. It never fails: missing or empty input yields an empty model.
func Analyze(s *extraction.Structure, ft format.FileType, opts Options) *Model {
	if opts.Eps <= 0 || opts.MinPoints <= 0 {
		clustering := opts.Clustering
		opts = DefaultOptions()
		opts.Clustering = clustering
	}

	m := newModel()
	if s == nil {
		return m
	}

	switch ft {
	case format.PDF:
		if !opts.Clustering {
			for _, p := range s.Pages {
				m.Columns = append(m.Columns, ColumnLayout{Page: p.Number, Regions: []Region{{XStart: 0, XEnd: p.Width}}})
			}
			return m
		}
		analyzePDF(m, s, opts)
	case format.DOCX:
		if !opts.Clustering {
			m.Columns = append(m.Columns, ColumnLayout{Page: 1, Regions: []Region{{XStart: 0, XEnd: 1}}})
			return m
		}
		analyzeDOCX(m, s)
	}

	return m
}

func analyzePDF(m *Model, s *extraction.Structure, opts Options) {
	for _, page := range s.Pages {
		blocks := formBlocks(page.Words, page.Number)
		regions := columnRegions(blocks, page.Width, opts)
		m.Columns = append(m.Columns, ColumnLayout{Page: page.Number, Regions: regions})

		for i := range blocks {
			blocks[i].Column = assignColumn(blocks[i].BBox.X0, regions, opts.Eps)
		}

		mean := meanWordSize(page.Words)
		for _, b := range blocks {
			if isHeader(b.Text, b.FontSize, mean, false) {
				m.Headers = append(m.Headers, Header{
					Text:     b.Text,
					Position: b.BBox,
					Page:     page.Number,
					Level:    headerLevel(b.FontSize, mean, ""),
				})
			}
		}

		m.Blocks = append(m.Blocks, blocks...)
	}

	m.ReadingOrder = readingOrder(m.Blocks)
}

// formBlocks groups words into visual lines by baseline, then splits each line
// wherever the horizontal gap is wider than blockGapRatio font sizes.
func formBlocks(words []extraction.Word, pageNum int) []Block {
	if len(words) == 0 {
		return nil
	}

	sorted := append([]extraction.Word(nil), words...)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Y0 != sorted[j].Y0 {
			return sorted[i].Y0 < sorted[j].Y0
		}
		return sorted[i].X0 < sorted[j].X0
	})

	var lines [][]extraction.Word
	for _, w := range sorted {
		if n := len(lines); n > 0 && onLine(lines[n-1], w) {
			lines[n-1] = append(lines[n-1], w)
			continue
		}
		lines = append(lines, []extraction.Word{w})
	}

	var blocks []Block
	for _, line := range lines {
		sort.SliceStable(line, func(i, j int) bool { return line[i].X0 < line[j].X0 })

		var seg []extraction.Word
		for _, w := range line {
			if n := len(seg); n > 0 {
				prev := seg[n-1]
				if w.X0-prev.X1 > blockGapRatio*sizeOr(prev.FontSize, 10) {
					blocks = append(blocks, makeBlock(seg, pageNum))
					seg = nil
				}
			}
			seg = append(seg, w)
		}
		if len(seg) > 0 {
			blocks = append(blocks, makeBlock(seg, pageNum))
		}
	}
	return blocks
}

// onLine reports whether w sits within tolerance of the line's top or bottom edge
func onLine(line []extraction.Word, w extraction.Word) bool {
	top, bottom := line[0].Y0, line[0].Y1
	for _, lw := range line[1:] {
		top = math.Min(top, lw.Y0)
		bottom = math.Max(bottom, lw.Y1)
	}
	tol := math.Max(lineToleranceMin, sizeOr(w.FontSize, 10)*0.3)
	return math.Abs(w.Y1-bottom) <= tol || math.Abs(w.Y0-top) <= tol
}

func makeBlock(words []extraction.Word, pageNum int) Block {
	box := words[0].Box()
	texts := make([]string, 0, len(words))
	sizes := make([]float64, 0, len(words))
	for _, w := range words {
		texts = append(texts, w.Text)
		if w.FontSize > 0 {
			sizes = append(sizes, w.FontSize)
		}
		box.X0 = math.Min(box.X0, w.X0)
		box.Y0 = math.Min(box.Y0, w.Y0)
		box.X1 = math.Max(box.X1, w.X1)
		box.Y1 = math.Max(box.Y1, w.Y1)
	}
	size := 0.0
	if len(sizes) > 0 {
		size = stat.Mean(sizes, nil)
	}
	return Block{
		Text:     strings.Join(texts, " "),
		BBox:     box,
		Page:     pageNum,
		FontSize: size,
	}
}

// columnRegions clusters block left edges and turns each cluster into a region
func columnRegions(blocks []Block, pageWidth float64, opts Options) []Region {
	fullWidth := []Region{{XStart: 0, XEnd: pageWidth}}
	if len(blocks) == 0 {
		return fullWidth
	}

	starts := make([]float64, len(blocks))
	for i, b := range blocks {
		starts[i] = b.BBox.X0
	}
	labels := dbscan1D(starts, opts.Eps, opts.MinPoints)

	// banner lines spanning most of the page do not widen a column
	type extent struct {
		region Region
		narrow bool
	}
	byCluster := map[int]*extent{}
	for i, label := range labels {
		if label == noise {
			continue
		}
		b := blocks[i].BBox
		narrow := b.X1-b.X0 <= maxColumnBlockWidth*pageWidth
		e, ok := byCluster[label]
		if !ok {
			byCluster[label] = &extent{region: Region{XStart: b.X0, XEnd: b.X1}, narrow: narrow}
			continue
		}
		e.region.XStart = math.Min(e.region.XStart, b.X0)
		switch {
		case narrow && !e.narrow:
			e.region.XEnd, e.narrow = b.X1, true
		case narrow == e.narrow:
			e.region.XEnd = math.Max(e.region.XEnd, b.X1)
		}
	}

	var regions []Region
	for _, e := range byCluster {
		if e.region.XEnd-e.region.XStart < opts.MinRegionWidth*pageWidth {
			continue
		}
		regions = append(regions, e.region)
	}
	if len(regions) == 0 {
		return fullWidth
	}

	sort.Slice(regions, func(i, j int) bool { return regions[i].XStart < regions[j].XStart })

	// a cluster starting inside its left neighbor (e.g. right-aligned dates) is the same column
	merged := []Region{regions[0]}
	for _, r := range regions[1:] {
		last := &merged[len(merged)-1]
		if r.XStart < last.XEnd {
			last.XEnd = math.Max(last.XEnd, r.XEnd)
			continue
		}
		merged = append(merged, r)
	}
	return merged
}

func assignColumn(x0 float64, regions []Region, eps float64) int {
	if len(regions) == 0 {
		return 0
	}
	for i, r := range regions {
		if x0 >= r.XStart-eps && x0 <= r.XEnd {
			return i
		}
	}
	best, bestDist := 0, math.Inf(1)
	for i, r := range regions {
		if d := math.Abs(x0 - r.XStart); d < bestDist {
			best, bestDist = i, d
		}
	}
	return best
}

// readingOrder sorts block indexes by (page, y0, x0)
func readingOrder(blocks []Block) []int {
	order := make([]int, len(blocks))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		ba, bb := blocks[order[a]], blocks[order[b]]
		if ba.Page != bb.Page {
			return ba.Page < bb.Page
		}
		if ba.BBox.Y0 != bb.BBox.Y0 {
			return ba.BBox.Y0 < bb.BBox.Y0
		}
		return ba.BBox.X0 < bb.BBox.X0
	})
	return order
}

func analyzeDOCX(m *Model, s *extraction.Structure) {
	regions := []Region{{XStart: 0, XEnd: 1}}
	// tables stand in for side-by-side content
	if len(s.Tables) > 0 {
		regions = []Region{{XStart: 0, XEnd: 0.5}, {XStart: 0.5, XEnd: 1}}
	}
	m.Columns = append(m.Columns, ColumnLayout{Page: 1, Regions: regions})

	var sizes []float64
	for _, p := range s.Paragraphs {
		if p.Size > 0 {
			sizes = append(sizes, p.Size)
		}
	}
	mean := 0.0
	if len(sizes) > 0 {
		mean = stat.Mean(sizes, nil)
	}

	for _, p := range s.Paragraphs {
		if strings.TrimSpace(p.Text) == "" {
			continue
		}
		column := 0
		if p.InTable && len(regions) > 1 {
			column = 1
		}
		m.Blocks = append(m.Blocks, Block{
			Text:     p.Text,
			Page:     1,
			Column:   column,
			FontSize: p.Size,
		})
		if isHeader(p.Text, p.Size, mean, p.Bold) {
			m.Headers = append(m.Headers, Header{
				Text:  p.Text,
				Page:  1,
				Level: headerLevel(p.Size, mean, p.Style),
			})
		}
	}

	for i := range m.Blocks {
		m.ReadingOrder = append(m.ReadingOrder, i)
	}
}

func isHeader(text string, size, mean float64, bold bool) bool {
	text = strings.TrimSpace(text)
	if text == "" || utf8.RuneCountInString(text) >= maxHeaderLength {
		return false
	}
	if mean > 0 && size > headerSizeRatio*mean {
		return true
	}
	return bold || isShortAllCaps(text)
}

func headerLevel(size, mean float64, style string) int {
	s := strings.ToLower(style)
	if s == "title" || s == "heading1" {
		return 1
	}
	if mean > 0 && size > level1SizeRatio*mean {
		return 1
	}
	return 2
}

// isShortAllCaps reports whether text has at least two letters and all of them are upper case
func isShortAllCaps(text string) bool {
	if utf8.RuneCountInString(text) > maxAllCapsHeaderLength {
		return false
	}
	letters := 0
	for _, r := range text {
		if unicode.IsLetter(r) {
			if !unicode.IsUpper(r) {
				return false
			}
			letters++
		}
	}
	return letters >= 2
}

func meanWordSize(words []extraction.Word) float64 {
	var sizes []float64
	for _, w := range words {
		if w.FontSize > 0 {
			sizes = append(sizes, w.FontSize)
		}
	}
	if len(sizes) == 0 {
		return 0
	}
	return stat.Mean(sizes, nil)
}

func sizeOr(v, fallback float64) float64 {
	if v > 0 {
		return v
	}
	return fallback
}
