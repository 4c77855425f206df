package format

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDetect(t *testing.T) {
	tests := []struct {
		name     string
		data     []byte
		filename string
		expected FileType
	}{
		{
			name:     "pdf magic",
			data:     []byte("%PDF-1.7\n..."),
			filename: "resume.pdf",
			expected: PDF,
		},
		{
			name:     "pdf magic wins over extension",
			data:     []byte("%PDF-1.4"),
			filename: "resume.docx",
			expected: PDF,
		},
		{
			name:     "zip with docx extension",
			data:     []byte("PK\x03\x04rest"),
			filename: "Resume.DOCX",
			expected: DOCX,
		},
		{
			name:     "zip without docx extension",
			data:     []byte("PK\x03\x04rest"),
			filename: "archive.zip",
			expected: Unknown,
		},
		{
			name:     "ole container with doc extension",
			data:     []byte{0xD0, 0xCF, 0x11, 0xE0, 0xA1, 0xB1},
			filename: "old.doc",
			expected: DOC,
		},
		{
			name:     "extension fallback pdf",
			data:     []byte("garbage"),
			filename: "scan.pdf",
			expected: PDF,
		},
		{
			name:     "extension fallback doc",
			data:     []byte("garbage"),
			filename: "old.doc",
			expected: DOC,
		},
		{
			name:     "unknown",
			data:     []byte("hello world"),
			filename: "notes.txt",
			expected: Unknown,
		},
		{
			name:     "empty input",
			data:     nil,
			filename: "",
			expected: Unknown,
		},
		{
			name:     "short input",
			data:     []byte("%P"),
			filename: "x",
			expected: Unknown,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Detect(tt.data, tt.filename))
		})
	}
}

func TestDetect_AlwaysReturnsKnownTag(t *testing.T) {
	inputs := [][]byte{nil, {}, {0}, {0xFF, 0xFE}, []byte("PK"), []byte("%PDF"), []byte("PK\x03\x04")}
	names := []string{"", "a", "a.pdf", "a.docx", "a.doc", ".", "noext."}

	valid := map[FileType]bool{PDF: true, DOCX: true, DOC: true, Unknown: true}
	for _, data := range inputs {
		for _, name := range names {
			assert.True(t, valid[Detect(data, name)], "data=%q name=%q", data, name)
		}
	}
}

func TestSupported(t *testing.T) {
	assert.True(t, PDF.Supported())
	assert.True(t, DOCX.Supported())
	assert.False(t, DOC.Supported())
	assert.False(t, Unknown.Supported())
}
