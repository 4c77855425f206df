// Package vision rasterizes PDF pages into images for vision-capable parsing.
package vision

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"image"
	_ "image/png" // register PNG for DecodeConfig
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

const (
	// DefaultDPI is the rasterization resolution
	DefaultDPI = 200
	// DefaultBinary is the poppler rasterizer
	DefaultBinary = "pdftoppm"
	// RenderTimeout bounds a single rasterizer invocation
	RenderTimeout = 30 * time.Second
)

// PageImage is one rendered page
type PageImage struct {
	PageNum     int    `json:"page_num"`
	ImageBase64 string `json:"image_base64"`
	Width       int    `json:"width"`
	Height      int    `json:"height"`
	MIMEType    string `json:"mime_type"`
	Data        []byte `json:"-"`
}

// PageRenderer turns PDF bytes into page images, first page first
type PageRenderer interface {
	Render(ctx context.Context, pdf []byte, maxPages int) ([]PageImage, error)
}

// Available reports whether the rasterizer binary can be found
func Available() bool {
	_, err := exec.LookPath(DefaultBinary)
	return err == nil
}

// PopplerRenderer renders pages by shelling out to pdftoppm
type PopplerRenderer struct {
	binary string
	dpi    int
	logger zerolog.Logger
}

// NewPopplerRenderer resolves the pdftoppm binary. It returns a *DependencyError
// wrapping ErrDependencyMissing when the binary is not installed.
func NewPopplerRenderer(logger zerolog.Logger) (*PopplerRenderer, error) {
	path, err := exec.LookPath(DefaultBinary)
	if err != nil {
		return nil, &DependencyError{Binary: DefaultBinary, Cause: err}
	}
	return &PopplerRenderer{
		binary: path,
		dpi:    DefaultDPI,
		logger: logger.With().Str("component", "vision_renderer").Logger(),
	}, nil
}

var pageFileRe = regexp.MustCompile(`^page-(\d+)\.png$`)

// Render rasterizes up to maxPages pages (all pages when maxPages <= 0) at the configured DPI
func (r *PopplerRenderer) Render(ctx context.Context, pdf []byte, maxPages int) ([]PageImage, error) {
	workDir, err := os.MkdirTemp("", "resume-render-*")
	if err != nil {
		return nil, &RenderError{Message: "failed to create temporary working directory", Cause: err}
	}
	defer os.RemoveAll(workDir)

	input := filepath.Join(workDir, "input.pdf")
	if err := os.WriteFile(input, pdf, 0600); err != nil {
		return nil, &RenderError{Message: "failed to write PDF to working directory", Cause: err}
	}

	ctx, cancel := context.WithTimeout(ctx, RenderTimeout)
	defer cancel()

	args := []string{"-r", strconv.Itoa(r.dpi), "-png"}
	if maxPages > 0 {
		args = append(args, "-f", "1", "-l", strconv.Itoa(maxPages))
	}
	args = append(args, input, filepath.Join(workDir, "page"))

	cmd := exec.CommandContext(ctx, r.binary, args...)
	var stderr strings.Builder
	cmd.Stderr = &stderr

	start := time.Now()
	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, &RenderError{Message: "pdftoppm failed", LogOutput: stderr.String(), Cause: err}
	}
	r.logger.Debug().Dur("elapsed", time.Since(start)).Msg("rasterized pages")

	files, err := pageFiles(workDir)
	if err != nil {
		return nil, &RenderError{Message: "failed to list rendered pages", Cause: err}
	}
	if len(files) == 0 {
		return nil, &RenderError{Message: "pdftoppm produced no pages", LogOutput: stderr.String()}
	}

	return loadPages(ctx, files)
}

type pageFile struct {
	num  int
	path string
}

// pageFiles lists rendered pages ordered by number. pdftoppm zero-pads the
// page suffix to the width of the page count, so names are parsed, not sorted lexically.
func pageFiles(dir string) ([]pageFile, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var files []pageFile
	for _, e := range entries {
		m := pageFileRe.FindStringSubmatch(e.Name())
		if m == nil {
			continue
		}
		n, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}
		files = append(files, pageFile{num: n, path: filepath.Join(dir, e.Name())})
	}
	sort.Slice(files, func(i, j int) bool { return files[i].num < files[j].num })
	return files, nil
}

// loadPages reads and encodes every rendered page concurrently
func loadPages(ctx context.Context, files []pageFile) ([]PageImage, error) {
	pages := make([]PageImage, len(files))
	g, ctx := errgroup.WithContext(ctx)

	for i, f := range files {
		i, f := i, f
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			data, err := os.ReadFile(f.path)
			if err != nil {
				return &RenderError{Message: fmt.Sprintf("failed to read page %d", f.num), Cause: err}
			}
			img, err := EncodePNG(f.num, data)
			if err != nil {
				return err
			}
			pages[i] = img
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return pages, nil
}

// EncodePNG builds a PageImage from PNG bytes, reading the dimensions from the header
func EncodePNG(pageNum int, data []byte) (PageImage, error) {
	if len(data) == 0 {
		return PageImage{}, &RenderError{Message: fmt.Sprintf("page %d is empty", pageNum)}
	}
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return PageImage{}, &RenderError{Message: fmt.Sprintf("page %d is not a valid image", pageNum), Cause: err}
	}
	return PageImage{
		PageNum:     pageNum,
		ImageBase64: base64.StdEncoding.EncodeToString(data),
		Width:       cfg.Width,
		Height:      cfg.Height,
		MIMEType:    "image/png",
		Data:        data,
	}, nil
}
