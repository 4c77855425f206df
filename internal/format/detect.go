// Package format classifies uploaded documents by magic bytes and filename extension.
package format

import (
	"bytes"
	"path/filepath"
	"strings"
)

// FileType is the detected document format
type FileType string

const (
	// PDF is a Portable Document Format file
	PDF FileType = "pdf"
	// DOCX is an Office Open XML word-processing document
	DOCX FileType = "docx"
	// DOC is a legacy binary Word document
	DOC FileType = "doc"
	// Unknown is anything that could not be classified
	Unknown FileType = "unknown"
)

var (
	pdfMagic = []byte("%PDF")
	zipMagic = []byte("PK\x03\x04")
	// OLE2 compound file header used by legacy .doc files
	oleMagic = []byte{0xD0, 0xCF, 0x11, 0xE0}
)

// Detect returns the format of data. It never fails: anything unrecognized is Unknown.
func Detect(data []byte, filename string) FileType {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(filename), "."))

	switch {
	case bytes.HasPrefix(data, pdfMagic):
		return PDF
	case bytes.HasPrefix(data, zipMagic):
		// A zip container is only a DOCX when the name says so
		if ext == "docx" {
			return DOCX
		}
		return Unknown
	case bytes.HasPrefix(data, oleMagic) && ext == "doc":
		return DOC
	}

	return fromExtension(ext)
}

func fromExtension(ext string) FileType {
	switch ext {
	case "pdf":
		return PDF
	case "docx":
		return DOCX
	case "doc":
		return DOC
	default:
		return Unknown
	}
}

// Supported reports whether the pipeline can extract text from t
func (t FileType) Supported() bool {
	return t == PDF || t == DOCX
}

// String returns the tag as a string
func (t FileType) String() string {
	return string(t)
}
