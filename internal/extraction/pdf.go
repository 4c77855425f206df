package extraction

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"unicode"

	"github.com/ledongthuc/pdf"
	"github.com/rs/zerolog"

	"github.com/jonathan/resume-parser/internal/format"
)

const (
	// letter-size fallback when a page has no usable MediaBox
	defaultPageWidth  = 612.0
	defaultPageHeight = 792.0

	// a horizontal gap wider than this fraction of the font size splits a word
	wordGapRatio = 0.3
)

// PDFExtractor extracts positioned words, tables, and images from PDF files
type PDFExtractor struct {
	augmentFonts bool
	logger       zerolog.Logger
}

// NewPDFExtractor creates a PDF extractor
func NewPDFExtractor(opts Options) *PDFExtractor {
	return &PDFExtractor{
		augmentFonts: opts.AugmentFonts,
		logger:       opts.Logger.With().Str("component", "pdf_extractor").Logger(),
	}
}

// ExtractWithStructure reads every page's glyphs with ledongthuc/pdf, groups them into words,
// detects ruled tables with tabula's geometric detector, and locates images with pdfcpu.
func (e *PDFExtractor) ExtractWithStructure(ctx context.Context, data []byte) (structure *Structure, err error) {
	defer func() {
		if r := recover(); r != nil {
			structure = nil
			err = &ExtractionError{Format: "pdf", Message: "decoder panic", Cause: fmt.Errorf("%v", r)}
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, &ExtractionError{Format: "pdf", Message: "failed to open document", Cause: err}
	}

	numPages := reader.NumPage()
	if numPages <= 0 {
		return nil, &ExtractionError{Format: "pdf", Message: "document has no pages"}
	}

	structure = &Structure{Format: format.PDF, Pages: make([]Page, 0, numPages)}
	for i := 1; i <= numPages; i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		p := reader.Page(i)
		if p.V.IsNull() {
			continue
		}

		width, height := pageSize(p)
		content := p.Content()
		words := groupGlyphs(content.Text, height)

		structure.Pages = append(structure.Pages, Page{
			Number: i,
			Width:  width,
			Height: height,
			Words:  words,
			Tables: detectRuledTables(content.Rect, words, width, height, i),
			Images: []Image{},
		})
	}

	heights := make(map[int]float64, len(structure.Pages))
	for _, pg := range structure.Pages {
		heights[pg.Number] = pg.Height
	}
	if images, imgErr := locateImages(data, heights); imgErr != nil {
		e.logger.Debug().Err(imgErr).Msg("image detection skipped")
	} else {
		for idx := range structure.Pages {
			structure.Pages[idx].Images = append(structure.Pages[idx].Images, images[structure.Pages[idx].Number]...)
		}
	}

	if e.augmentFonts {
		if filled, augErr := augmentFontMetadata(data, structure); augErr != nil {
			e.logger.Debug().Err(augErr).Msg("font augmentation skipped")
		} else if filled > 0 {
			e.logger.Debug().Int("words", filled).Msg("filled missing font metadata")
		}
	}

	return structure, nil
}

// ExtractTextOnly reads row-ordered text with ledongthuc/pdf and falls back to
// pdfcpu's raw content streams when that yields nothing.
func (e *PDFExtractor) ExtractTextOnly(ctx context.Context, data []byte) (string, error) {
	text, err := plainTextByRows(data)
	if err == nil && strings.TrimSpace(text) != "" {
		return text, nil
	}
	if err != nil {
		e.logger.Debug().Err(err).Msg("row text extraction failed, trying content streams")
	}

	if ctxErr := ctx.Err(); ctxErr != nil {
		return "", ctxErr
	}

	fallback, fbErr := contentStreamText(data)
	if fbErr != nil {
		if err != nil {
			return "", &ExtractionError{Format: "pdf", Message: "no readable text", Cause: err}
		}
		return "", &ExtractionError{Format: "pdf", Message: "no readable text", Cause: fbErr}
	}
	return fallback, nil
}

func plainTextByRows(data []byte) (text string, err error) {
	defer func() {
		if r := recover(); r != nil {
			text = ""
			err = fmt.Errorf("decoder panic: %v", r)
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", err
	}

	var sb strings.Builder
	for i := 1; i <= reader.NumPage(); i++ {
		p := reader.Page(i)
		if p.V.IsNull() {
			continue
		}
		rows, err := p.GetTextByRow()
		if err != nil {
			return "", err
		}
		for _, row := range rows {
			var parts []string
			for _, t := range row.Content {
				if s := strings.TrimSpace(t.S); s != "" {
					parts = append(parts, s)
				}
			}
			if len(parts) > 0 {
				sb.WriteString(strings.Join(parts, " "))
				sb.WriteByte('\n')
			}
		}
	}
	return strings.TrimSpace(sb.String()), nil
}

// pageSize reads the page's MediaBox, inherited from the page tree when the page has none
func pageSize(p pdf.Page) (float64, float64) {
	var box pdf.Value
	for v := p.V; !v.IsNull(); v = v.Key("Parent") {
		if mb := v.Key("MediaBox"); !mb.IsNull() {
			box = mb
			break
		}
	}
	if box.Len() < 4 {
		return defaultPageWidth, defaultPageHeight
	}
	w := box.Index(2).Float64() - box.Index(0).Float64()
	h := box.Index(3).Float64() - box.Index(1).Float64()
	if w <= 0 || h <= 0 {
		return defaultPageWidth, defaultPageHeight
	}
	return w, h
}

// groupGlyphs merges per-glyph text into words and converts to top-down coordinates.
// A word ends on whitespace, a baseline change, a wide gap, or a backwards jump.
func groupGlyphs(glyphs []pdf.Text, pageHeight float64) []Word {
	var (
		words   []Word
		current *Word
		curY    float64
		curEnd  float64
		runes   []rune
	)

	flush := func() {
		if current != nil && len(runes) > 0 {
			current.Text = string(runes)
			current.X1 = curEnd
			words = append(words, *current)
		}
		current = nil
		runes = runes[:0]
	}

	for _, g := range glyphs {
		s := g.S
		if s == "" || strings.TrimFunc(s, unicode.IsSpace) == "" {
			flush()
			continue
		}

		size := g.FontSize
		if size <= 0 {
			size = 10
		}
		adv := g.W
		if adv <= 0 {
			adv = size * 0.5
		}

		if current != nil {
			tol := size * 0.5
			sameBaseline := g.Y-curY < tol && curY-g.Y < tol
			gap := g.X - curEnd
			if !sameBaseline || gap > size*wordGapRatio || gap < -size {
				flush()
			}
		}

		if current == nil {
			current = &Word{
				X0:       g.X,
				Y0:       pageHeight - (g.Y + size),
				Y1:       pageHeight - g.Y,
				FontName: g.Font,
				FontSize: g.FontSize,
			}
			curY = g.Y
		}
		if g.FontSize > current.FontSize {
			current.FontSize = g.FontSize
			current.Y0 = pageHeight - (g.Y + g.FontSize)
		}
		runes = append(runes, []rune(s)...)
		curEnd = g.X + adv
	}
	flush()

	return words
}

func wordsInside(words []Word, box BBox) string {
	var parts []string
	for _, w := range words {
		cx := (w.X0 + w.X1) / 2
		cy := (w.Y0 + w.Y1) / 2
		if box.Contains(cx, cy) {
			parts = append(parts, w.Text)
		}
	}
	return strings.Join(parts, " ")
}

func minf(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}

func maxf(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}
