package render

import (
	"fmt"
	"image"
	"io"
	"sync"
	"time"

	"github.com/ferrytix/receipt-printer/internal/definition"
	"github.com/ferrytix/receipt-printer/internal/env"
	"github.com/ferrytix/receipt-printer/internal/fontmanager"
	"github.com/ferrytix/receipt-printer/internal/imageloader"
	"github.com/ferrytix/receipt-printer/internal/qrencoder"
	"github.com/ferrytix/receipt-printer/internal/receipt"
	"github.com/ferrytix/receipt-printer/internal/shared/logger"
	"go.uber.org/zap"
)

// Renderer turns receipt definitions into page rasters. Builds are
// serialised because font faces are shared and not safe for concurrent use.
type Renderer struct {
	mu      sync.Mutex
	builder *receipt.Builder
	fonts   *fontmanager.Manager
}

// Options selects page geometry and font files. Zero values mean defaults.
type Options struct {
	PageWidth   int
	FontRegular string
	FontBold    string
	Typography  *receipt.Typography
}

// OptionsFromEnv reads layout settings from env.Value.
func OptionsFromEnv() Options {
	return Options{
		PageWidth:   env.Value.PageWidth,
		FontRegular: env.Value.FontRegular,
		FontBold:    env.Value.FontBold,
	}
}

// New loads fonts and wires the builder.
func New(opts Options) (*Renderer, error) {
	fonts, err := fontmanager.Load(opts.FontRegular, opts.FontBold)
	if err != nil {
		return nil, fmt.Errorf("failed to load fonts: %w", err)
	}

	page := receipt.DefaultPage()
	if opts.PageWidth > 0 {
		page.Width = opts.PageWidth
	}
	typo := receipt.DefaultTypography()
	if opts.Typography != nil {
		typo = *opts.Typography
	}

	logger.Info("Renderer initialized",
		zap.Int("page_width", page.Width),
		zap.String("font_regular", opts.FontRegular),
		zap.String("font_bold", opts.FontBold))

	return &Renderer{
		builder: receipt.NewBuilder(page, typo, fonts, qrencoder.New(), imageloader.New()),
		fonts:   fonts,
	}, nil
}

// PageWidth is the width of every raster this renderer produces.
func (r *Renderer) PageWidth() int {
	return r.builder.Page().Width
}

// Render builds and composites specs into one raster.
func (r *Renderer) Render(specs []receipt.Spec) (*image.Gray, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	start := time.Now()
	doc, err := r.builder.BuildDocument(specs)
	if err != nil {
		logger.Warn("Receipt build failed", zap.Int("elements", len(specs)), zap.Error(err))
		return nil, err
	}
	img, err := doc.Render()
	if err != nil {
		return nil, err
	}

	logger.Debug("Receipt rendered",
		zap.Int("elements", len(specs)),
		zap.Int("width", img.Bounds().Dx()),
		zap.Int("height", img.Bounds().Dy()),
		zap.Duration("took", time.Since(start)))
	return img, nil
}

// RenderDefinition parses a YAML/JSON definition and renders it.
func (r *Renderer) RenderDefinition(rd io.Reader) (*image.Gray, error) {
	specs, err := definition.Parse(rd)
	if err != nil {
		return nil, err
	}
	return r.Render(specs)
}

// Close releases the cached font faces.
func (r *Renderer) Close() error {
	return r.fonts.Close()
}
