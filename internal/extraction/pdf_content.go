package extraction

import (
	"bytes"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

// openPDFContext parses and optimizes a PDF with pdfcpu. Optimization populates the
// per-page resource tables that ImageObjNrs reads.
func openPDFContext(data []byte) (ctx *model.Context, err error) {
	defer func() {
		if r := recover(); r != nil {
			ctx = nil
			err = fmt.Errorf("pdfcpu panic: %v", r)
		}
	}()

	conf := model.NewDefaultConfiguration()
	ctx, err = api.ReadValidateAndOptimize(bytes.NewReader(data), conf)
	if err != nil {
		return nil, fmt.Errorf("pdfcpu read: %w", err)
	}
	return ctx, nil
}

// PageCount returns the page count as reported by pdfcpu
func PageCount(data []byte) (int, error) {
	ctx, err := openPDFContext(data)
	if err != nil {
		return 0, err
	}
	return ctx.PageCount, nil
}

// locateImages returns the images drawn on each page, keyed by 1-based page number.
// Placements come from the cm matrix in effect at each Do operator; pages with more
// image objects than recovered placements get zero-box entries for the remainder.
func locateImages(data []byte, pageHeights map[int]float64) (map[int][]Image, error) {
	ctx, err := openPDFContext(data)
	if err != nil {
		return nil, err
	}

	result := make(map[int][]Image)
	for pageNr := 1; pageNr <= ctx.PageCount; pageNr++ {
		objNrs := pdfcpu.ImageObjNrs(ctx, pageNr)
		if len(objNrs) == 0 {
			continue
		}

		var boxes []BBox
		if content, err := pageContent(ctx, pageNr); err == nil {
			height, ok := pageHeights[pageNr]
			if !ok {
				height = defaultPageHeight
			}
			boxes = xobjectPlacements(content, height)
		}

		images := make([]Image, 0, len(objNrs))
		for i := range objNrs {
			img := Image{Page: pageNr}
			if i < len(boxes) {
				img.Box = boxes[i]
			}
			images = append(images, img)
		}
		result[pageNr] = images
	}
	return result, nil
}

func pageContent(ctx *model.Context, pageNr int) ([]byte, error) {
	r, err := pdfcpu.ExtractPageContent(ctx, pageNr)
	if err != nil {
		return nil, err
	}
	if r == nil {
		return nil, fmt.Errorf("page %d has no content", pageNr)
	}
	return io.ReadAll(r)
}

// xobjectPlacements walks a content stream tracking the current transformation matrix
// through q/Q/cm and records the unit-square image box at every Do.
func xobjectPlacements(content []byte, pageHeight float64) []BBox {
	type ctm [6]float64
	identity := ctm{1, 0, 0, 1, 0, 0}

	current := identity
	var stack []ctm
	var operands []string
	var boxes []BBox

	for _, tok := range strings.Fields(string(content)) {
		switch tok {
		case "q":
			stack = append(stack, current)
			operands = operands[:0]
		case "Q":
			if n := len(stack); n > 0 {
				current = stack[n-1]
				stack = stack[:n-1]
			}
			operands = operands[:0]
		case "cm":
			if m, ok := lastNumbers(operands, 6); ok {
				current = ctm{
					m[0]*current[0] + m[1]*current[2],
					m[0]*current[1] + m[1]*current[3],
					m[2]*current[0] + m[3]*current[2],
					m[2]*current[1] + m[3]*current[3],
					m[4]*current[0] + m[5]*current[2] + current[4],
					m[4]*current[1] + m[5]*current[3] + current[5],
				}
			}
			operands = operands[:0]
		case "Do":
			x0, y0 := current[4], current[5]
			x1, y1 := x0+current[0]+current[2], y0+current[1]+current[3]
			boxes = append(boxes, BBox{
				X0: minf(x0, x1),
				X1: maxf(x0, x1),
				Y0: pageHeight - maxf(y0, y1),
				Y1: pageHeight - minf(y0, y1),
			})
			operands = operands[:0]
		default:
			if isOperand(tok) {
				operands = append(operands, tok)
			} else {
				operands = operands[:0]
			}
		}
	}
	return boxes
}

func isOperand(tok string) bool {
	if strings.HasPrefix(tok, "/") {
		return true
	}
	_, err := strconv.ParseFloat(tok, 64)
	return err == nil
}

func lastNumbers(operands []string, n int) ([]float64, bool) {
	if len(operands) < n {
		return nil, false
	}
	out := make([]float64, n)
	for i, tok := range operands[len(operands)-n:] {
		v, err := strconv.ParseFloat(tok, 64)
		if err != nil {
			return nil, false
		}
		out[i] = v
	}
	return out, true
}

// pdfStringRe matches PDF string literals in parentheses
var pdfStringRe = regexp.MustCompile(`\(((?:\\.|[^\\)])*)\)`)

// contentStreamText recovers text from raw page content streams. It is a coarse reader:
// each BT..ET block and each T*, ', or Td with a vertical move becomes a new line.
func contentStreamText(data []byte) (string, error) {
	ctx, err := openPDFContext(data)
	if err != nil {
		return "", err
	}

	var sb strings.Builder
	for pageNr := 1; pageNr <= ctx.PageCount; pageNr++ {
		content, err := pageContent(ctx, pageNr)
		if err != nil || len(content) == 0 {
			continue
		}
		for _, line := range bytes.Split(content, []byte{'\n'}) {
			line = bytes.TrimSpace(line)
			switch {
			case bytes.HasSuffix(line, []byte("Tj")), bytes.HasSuffix(line, []byte("TJ")):
				for _, m := range pdfStringRe.FindAllSubmatch(line, -1) {
					sb.WriteString(decodePDFString(m[1]))
				}
			case bytes.HasSuffix(line, []byte("'")) && bytes.Contains(line, []byte("(")):
				sb.WriteByte('\n')
				for _, m := range pdfStringRe.FindAllSubmatch(line, -1) {
					sb.WriteString(decodePDFString(m[1]))
				}
			case bytes.Equal(line, []byte("T*")), bytes.Equal(line, []byte("ET")):
				sb.WriteByte('\n')
			case bytes.HasSuffix(line, []byte("Td")), bytes.HasSuffix(line, []byte("TD")):
				fields := bytes.Fields(line)
				if len(fields) >= 3 && string(fields[len(fields)-2]) != "0" {
					sb.WriteByte('\n')
				} else {
					sb.WriteByte(' ')
				}
			}
		}
		sb.WriteByte('\n')
	}

	text := collapseBlankLines(sb.String())
	if text == "" {
		return "", fmt.Errorf("no text operators found")
	}
	return text, nil
}

// decodePDFString handles the basic PDF escape sequences
func decodePDFString(raw []byte) string {
	var sb strings.Builder
	for i := 0; i < len(raw); i++ {
		if raw[i] != '\\' || i+1 >= len(raw) {
			sb.WriteByte(raw[i])
			continue
		}
		i++
		switch raw[i] {
		case 'n':
			sb.WriteByte('\n')
		case 'r':
			sb.WriteByte('\r')
		case 't':
			sb.WriteByte('\t')
		case '\\', '(', ')':
			sb.WriteByte(raw[i])
		default:
			if raw[i] < '0' || raw[i] > '7' {
				sb.WriteByte(raw[i])
				continue
			}
			val := int(raw[i] - '0')
			for k := 0; k < 2 && i+1 < len(raw) && raw[i+1] >= '0' && raw[i+1] <= '7'; k++ {
				i++
				val = val*8 + int(raw[i]-'0')
			}
			sb.WriteByte(byte(val))
		}
	}
	return sb.String()
}

func collapseBlankLines(s string) string {
	var out []string
	for _, line := range strings.Split(s, "\n") {
		line = strings.Join(strings.Fields(line), " ")
		if line != "" {
			out = append(out, line)
		}
	}
	return strings.Join(out, "\n")
}
