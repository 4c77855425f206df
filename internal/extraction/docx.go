package extraction

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/rs/zerolog"

	"github.com/jonathan/resume-parser/internal/format"
)

const documentPart = "word/document.xml"

// maxPartBytes caps the decompressed size of any single archive part
var maxPartBytes int64 = 32 << 20

// ErrPartTooLarge is returned when an archive part decompresses past maxPartBytes
var ErrPartTooLarge = errors.New("archive part exceeds decompressed size limit")

var (
	headerPartRe = regexp.MustCompile(`^word/header\d*\.xml$`)
	footerPartRe = regexp.MustCompile(`^word/footer\d*\.xml$`)
)

// DOCXExtractor reads Office Open XML word-processing documents
type DOCXExtractor struct {
	logger zerolog.Logger
}

// NewDOCXExtractor creates a DOCX extractor
func NewDOCXExtractor(opts Options) *DOCXExtractor {
	return &DOCXExtractor{
		logger: opts.Logger.With().Str("component", "docx_extractor").Logger(),
	}
}

// ExtractWithStructure returns paragraphs in document order with header paragraphs
// prepended and footer paragraphs appended, plus every table as a text grid.
func (e *DOCXExtractor) ExtractWithStructure(ctx context.Context, data []byte) (*Structure, error) {
	archive, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, &ExtractionError{Format: "docx", Message: "failed to open archive", Cause: err}
	}

	parts := collectParts(archive)
	if parts.document == nil {
		return nil, &ExtractionError{Format: "docx", Message: documentPart + " not found in archive"}
	}

	structure := &Structure{Format: format.DOCX, Paragraphs: []Paragraph{}, Tables: []Table{}}

	for _, f := range parts.headers {
		paragraphs, _, err := parsePart(f, "header")
		if err != nil {
			e.logger.Debug().Err(err).Str("part", f.Name).Msg("skipping header part")
			continue
		}
		structure.Paragraphs = append(structure.Paragraphs, paragraphs...)
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	body, tables, err := parsePart(parts.document, "body")
	if err != nil {
		return nil, &ExtractionError{Format: "docx", Message: "failed to parse document body", Cause: err}
	}
	structure.Paragraphs = append(structure.Paragraphs, body...)
	structure.Tables = append(structure.Tables, tables...)

	for _, f := range parts.footers {
		paragraphs, _, err := parsePart(f, "footer")
		if err != nil {
			e.logger.Debug().Err(err).Str("part", f.Name).Msg("skipping footer part")
			continue
		}
		structure.Paragraphs = append(structure.Paragraphs, paragraphs...)
	}

	return structure, nil
}

// ExtractTextOnly strips markup from the document parts without building runs or tables
func (e *DOCXExtractor) ExtractTextOnly(_ context.Context, data []byte) (string, error) {
	archive, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", &ExtractionError{Format: "docx", Message: "failed to open archive", Cause: err}
	}

	parts := collectParts(archive)
	if parts.document == nil {
		return "", &ExtractionError{Format: "docx", Message: documentPart + " not found in archive"}
	}

	var ordered []*zip.File
	ordered = append(ordered, parts.headers...)
	ordered = append(ordered, parts.document)
	ordered = append(ordered, parts.footers...)

	var sb strings.Builder
	for _, f := range ordered {
		raw, err := readZipFile(f)
		if err != nil {
			if f == parts.document {
				return "", &ExtractionError{Format: "docx", Message: "failed to read document body", Cause: err}
			}
			continue
		}
		sb.WriteString(stripWordML(raw))
		sb.WriteByte('\n')
	}

	return collapseBlankLines(sb.String()), nil
}

type docxParts struct {
	document *zip.File
	headers  []*zip.File
	footers  []*zip.File
}

func collectParts(archive *zip.Reader) docxParts {
	var parts docxParts
	for _, f := range archive.File {
		switch {
		case f.Name == documentPart:
			parts.document = f
		case headerPartRe.MatchString(f.Name):
			parts.headers = append(parts.headers, f)
		case footerPartRe.MatchString(f.Name):
			parts.footers = append(parts.footers, f)
		}
	}
	sort.Slice(parts.headers, func(i, j int) bool { return parts.headers[i].Name < parts.headers[j].Name })
	sort.Slice(parts.footers, func(i, j int) bool { return parts.footers[i].Name < parts.footers[j].Name })
	return parts
}

func readZipFile(f *zip.File) ([]byte, error) {
	rc, err := openPart(f)
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return io.ReadAll(rc)
}

// openPart opens an archive entry whose reads fail with ErrPartTooLarge once
// more than maxPartBytes have been decompressed, whatever the header declares.
func openPart(f *zip.File) (io.ReadCloser, error) {
	if f.UncompressedSize64 > uint64(maxPartBytes) {
		return nil, fmt.Errorf("%s: %w", f.Name, ErrPartTooLarge)
	}
	rc, err := f.Open()
	if err != nil {
		return nil, err
	}
	return &boundedReader{rc: rc, remaining: maxPartBytes, name: f.Name}, nil
}

type boundedReader struct {
	rc        io.ReadCloser
	remaining int64
	name      string
}

func (b *boundedReader) Read(p []byte) (int, error) {
	if b.remaining <= 0 {
		// one more byte tells a part of exactly the limit from an oversized one
		var extra [1]byte
		if n, _ := b.rc.Read(extra[:]); n > 0 {
			return 0, fmt.Errorf("%s: %w", b.name, ErrPartTooLarge)
		}
		return 0, io.EOF
	}
	if int64(len(p)) > b.remaining {
		p = p[:b.remaining]
	}
	n, err := b.rc.Read(p)
	b.remaining -= int64(n)
	return n, err
}

func (b *boundedReader) Close() error { return b.rc.Close() }

// paragraphState accumulates one w:p while streaming tokens
type paragraphState struct {
	text      strings.Builder
	style     string
	alignment string
	bold      bool
	italic    bool
	size      float64

	// run-level properties of the run being read
	runBold   bool
	runItalic bool
	runSize   float64
}

// tableState accumulates nested w:tbl grids
type tableState struct {
	rows [][]string
	row  []string
	cell strings.Builder
}

// parsePart streams a WordprocessingML part and returns its paragraphs and tables
func parsePart(f *zip.File, part string) ([]Paragraph, []Table, error) {
	rc, err := openPart(f)
	if err != nil {
		return nil, nil, fmt.Errorf("open %s: %w", f.Name, err)
	}
	defer rc.Close()

	decoder := xml.NewDecoder(rc)
	var (
		paragraphs []Paragraph
		tables     []Table
		para       *paragraphState
		tblStack   []*tableState
		inRun      bool
		inRunProps bool
		inText     bool
	)

	for {
		tok, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, nil, fmt.Errorf("decode %s: %w", f.Name, err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "tbl":
				tblStack = append(tblStack, &tableState{})
			case "tr":
				if n := len(tblStack); n > 0 {
					tblStack[n-1].row = nil
				}
			case "tc":
				if n := len(tblStack); n > 0 {
					tblStack[n-1].cell.Reset()
				}
			case "p":
				para = &paragraphState{}
			case "pStyle":
				if para != nil {
					para.style = attr(t, "val")
				}
			case "jc":
				if para != nil && !inRun {
					para.alignment = attr(t, "val")
				}
			case "r":
				inRun = true
				if para != nil {
					para.runBold, para.runItalic, para.runSize = false, false, 0
				}
			case "rPr":
				inRunProps = inRun
			case "b":
				if para != nil && inRunProps && toggleOn(t) {
					para.runBold = true
				}
			case "i":
				if para != nil && inRunProps && toggleOn(t) {
					para.runItalic = true
				}
			case "sz":
				if para != nil && inRunProps {
					// w:sz is in half-points
					if v, err := strconv.ParseFloat(attr(t, "val"), 64); err == nil {
						para.runSize = v / 2
					}
				}
			case "t":
				inText = true
			case "tab":
				if para != nil && inRun {
					para.text.WriteByte('\t')
				}
			case "br", "cr":
				if para != nil && inRun {
					para.text.WriteByte(' ')
				}
			}

		case xml.CharData:
			if inText && para != nil {
				para.text.Write(t)
				if strings.TrimSpace(string(t)) != "" {
					para.bold = para.bold || para.runBold
					para.italic = para.italic || para.runItalic
					if para.size == 0 && para.runSize > 0 {
						para.size = para.runSize
					}
				}
			}

		case xml.EndElement:
			switch t.Name.Local {
			case "t":
				inText = false
			case "rPr":
				inRunProps = false
			case "r":
				inRun = false
			case "p":
				if para == nil {
					continue
				}
				text := strings.TrimSpace(para.text.String())
				if n := len(tblStack); n > 0 && text != "" {
					cell := &tblStack[n-1].cell
					if cell.Len() > 0 {
						cell.WriteByte(' ')
					}
					cell.WriteString(text)
				}
				if text != "" {
					paragraphs = append(paragraphs, Paragraph{
						Text:      text,
						Style:     para.style,
						Bold:      para.bold,
						Italic:    para.italic,
						Size:      para.size,
						Alignment: para.alignment,
						Part:      part,
						InTable:   len(tblStack) > 0,
					})
				}
				para = nil
			case "tc":
				if n := len(tblStack); n > 0 {
					ts := tblStack[n-1]
					ts.row = append(ts.row, ts.cell.String())
					ts.cell.Reset()
				}
			case "tr":
				if n := len(tblStack); n > 0 {
					ts := tblStack[n-1]
					if len(ts.row) > 0 {
						ts.rows = append(ts.rows, ts.row)
					}
					ts.row = nil
				}
			case "tbl":
				if n := len(tblStack); n > 0 {
					ts := tblStack[n-1]
					tblStack = tblStack[:n-1]
					if len(ts.rows) > 0 {
						tables = append(tables, Table{Page: 1, Rows: ts.rows})
					}
				}
			}
		}
	}

	return paragraphs, tables, nil
}

func attr(el xml.StartElement, local string) string {
	for _, a := range el.Attr {
		if a.Name.Local == local {
			return a.Value
		}
	}
	return ""
}

// toggleOn reads an OOXML on/off property; a missing val means on
func toggleOn(el xml.StartElement) bool {
	switch strings.ToLower(attr(el, "val")) {
	case "0", "false", "off", "none":
		return false
	default:
		return true
	}
}

var (
	paragraphEndRe = regexp.MustCompile(`</w:p>`)
	tabRe          = regexp.MustCompile(`<w:tab/>`)
	breakRe        = regexp.MustCompile(`<w:(?:br|cr)[^>]*/>`)
	tagRe          = regexp.MustCompile(`<[^>]+>`)
	xmlEntities    = strings.NewReplacer("&amp;", "&", "&lt;", "<", "&gt;", ">", "&quot;", `"`, "&apos;", "'")
)

func stripWordML(raw []byte) string {
	s := paragraphEndRe.ReplaceAllString(string(raw), "\n")
	s = tabRe.ReplaceAllString(s, "\t")
	s = breakRe.ReplaceAllString(s, " ")
	s = tagRe.ReplaceAllString(s, "")
	return xmlEntities.Replace(s)
}
