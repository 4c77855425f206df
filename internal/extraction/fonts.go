package extraction

import (
	"fmt"
	"math"
	"os"
	"sync"

	"github.com/tsawler/tabula/reader"
	"github.com/tsawler/tabula/text"
)

// fontMatchTolerance is the baseline distance, in points, within which a secondary
// fragment is considered to cover a word
const fontMatchTolerance = 2.0

// FontMetadataAvailable reports whether the font augmentation pass can run.
// tabula reads documents from disk, so the temp directory must accept writes.
// The check runs once per process.
var FontMetadataAvailable = sync.OnceValue(func() bool {
	tmp, err := os.CreateTemp("", "resume-fonts-*.pdf")
	if err != nil {
		return false
	}
	name := tmp.Name()
	_, writeErr := tmp.Write([]byte("%PDF-1.4\n"))
	closeErr := tmp.Close()
	os.Remove(name)
	return writeErr == nil && closeErr == nil
})

// augmentFontMetadata re-reads the PDF with tabula and copies font name/size onto words
// the primary reader left blank. It returns the number of words updated. Failures leave
// the structure untouched.
func augmentFontMetadata(data []byte, structure *Structure) (filled int, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("tabula panic: %v", r)
		}
	}()

	if !needsFontMetadata(structure) {
		return 0, nil
	}

	tmp, err := os.CreateTemp("", "resume-*.pdf")
	if err != nil {
		return 0, fmt.Errorf("failed to create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return 0, fmt.Errorf("failed to write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return 0, fmt.Errorf("failed to close temp file: %w", err)
	}

	r, err := reader.Open(tmp.Name())
	if err != nil {
		return 0, fmt.Errorf("failed to open with tabula: %w", err)
	}
	defer r.Close()

	count, err := r.PageCount()
	if err != nil {
		return 0, fmt.Errorf("failed to count pages: %w", err)
	}

	for i := range structure.Pages {
		page := &structure.Pages[i]
		idx := page.Number - 1
		if idx < 0 || idx >= count {
			continue
		}
		p, err := r.GetPage(idx)
		if err != nil {
			continue
		}
		fragments, err := r.ExtractTextFragments(p)
		if err != nil || len(fragments) == 0 {
			continue
		}
		filled += fillFromFragments(page, fragments)
	}

	return filled, nil
}

func needsFontMetadata(structure *Structure) bool {
	for _, p := range structure.Pages {
		for _, w := range p.Words {
			if w.FontName == "" || w.FontSize <= 0 {
				return true
			}
		}
	}
	return false
}

// fillFromFragments matches words to fragments by baseline and horizontal overlap
func fillFromFragments(page *Page, fragments []text.TextFragment) int {
	filled := 0
	for i := range page.Words {
		w := &page.Words[i]
		if w.FontName != "" && w.FontSize > 0 {
			continue
		}
		baseline := page.Height - w.Y1
		for _, f := range fragments {
			if math.Abs(f.Y-baseline) > fontMatchTolerance {
				continue
			}
			if w.X0 < f.X-fontMatchTolerance || w.X0 > f.X+f.Width+fontMatchTolerance {
				continue
			}
			if w.FontName == "" {
				w.FontName = f.FontName
			}
			if w.FontSize <= 0 && f.FontSize > 0 {
				w.FontSize = f.FontSize
				w.Y0 = w.Y1 - f.FontSize
			}
			filled++
			break
		}
	}
	return filled
}
