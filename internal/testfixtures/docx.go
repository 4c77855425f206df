package testfixtures

import (
	"archive/zip"
	"bytes"
	"fmt"
	"strings"
)

const wordNS = `xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"`

// DOCXParts are the WordprocessingML fragments placed in each package part
type DOCXParts struct {
	Body    string
	Headers []string
	Footers []string
}

// BuildDOCX zips a minimal word-processing package in memory
func BuildDOCX(parts DOCXParts) []byte {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)

	write := func(name, content string) {
		w, err := zw.Create(name)
		if err != nil {
			panic(err)
		}
		if _, err := w.Write([]byte(content)); err != nil {
			panic(err)
		}
	}

	write("[Content_Types].xml", `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types">
  <Default Extension="rels" ContentType="application/vnd.openxmlformats-package.relationships+xml"/>
  <Default Extension="xml" ContentType="application/xml"/>
  <Override PartName="/word/document.xml" ContentType="application/vnd.openxmlformats-officedocument.wordprocessingml.document.main+xml"/>
</Types>`)
	write("_rels/.rels", `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">
  <Relationship Id="rId1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/officeDocument" Target="word/document.xml"/>
</Relationships>`)
	write("word/document.xml", fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<w:document %s><w:body>%s</w:body></w:document>`, wordNS, parts.Body))

	for i, h := range parts.Headers {
		write(fmt.Sprintf("word/header%d.xml", i+1), fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?><w:hdr %s>%s</w:hdr>`, wordNS, h))
	}
	for i, f := range parts.Footers {
		write(fmt.Sprintf("word/footer%d.xml", i+1), fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?><w:ftr %s>%s</w:ftr>`, wordNS, f))
	}

	if err := zw.Close(); err != nil {
		panic(err)
	}
	return buf.Bytes()
}

// Para renders a plain paragraph
func Para(text string) string {
	return fmt.Sprintf(`<w:p><w:r><w:t xml:space="preserve">%s</w:t></w:r></w:p>`, escapeXML(text))
}

// SizedPara renders a paragraph whose run has an explicit size in points
func SizedPara(text string, points float64, bold bool) string {
	props := fmt.Sprintf(`<w:sz w:val="%d"/>`, int(points*2))
	if bold {
		props = `<w:b/>` + props
	}
	return fmt.Sprintf(`<w:p><w:r><w:rPr>%s</w:rPr><w:t>%s</w:t></w:r></w:p>`, props, escapeXML(text))
}

// StyledPara renders a paragraph with a named paragraph style and alignment
func StyledPara(text, style, align string) string {
	return fmt.Sprintf(`<w:p><w:pPr><w:pStyle w:val="%s"/><w:jc w:val="%s"/></w:pPr><w:r><w:rPr><w:i/></w:rPr><w:t>%s</w:t></w:r></w:p>`,
		style, align, escapeXML(text))
}

// TableXML renders a table from a row-major grid
func TableXML(rows [][]string) string {
	var sb strings.Builder
	sb.WriteString("<w:tbl>")
	for _, row := range rows {
		sb.WriteString("<w:tr>")
		for _, cell := range row {
			sb.WriteString("<w:tc>")
			sb.WriteString(Para(cell))
			sb.WriteString("</w:tc>")
		}
		sb.WriteString("</w:tr>")
	}
	sb.WriteString("</w:tbl>")
	return sb.String()
}

// DuplicateSectionResume has both "Employment History" and "Work Experience" headers
// with one bullet repeated across them
func DuplicateSectionResume() []byte {
	body := strings.Join([]string{
		SizedPara("Maria Garcia", 18, true),
		Para("Product Designer"),
		Para("maria.garcia@example.com"),
		Para("+1 415 555 0199"),
		SizedPara("Employment History", 13, true),
		Para("• Designed checkout flow used by 2M customers"),
		Para("• Ran weekly usability studies"),
		SizedPara("Work Experience", 13, true),
		Para("• designed checkout flow used by 2M customers"),
		Para("• Built the company design system"),
		SizedPara("Education", 13, true),
		Para("• BFA Interaction Design, CCA"),
	}, "")
	return BuildDOCX(DOCXParts{Body: body})
}

func escapeXML(s string) string {
	return strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;").Replace(s)
}
