package fontmanager

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"os"
	"sync"

	"github.com/ferrytix/receipt-printer/internal/receipt"
	"github.com/ferrytix/receipt-printer/internal/shared/logger"
	"go.uber.org/zap"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
)

type faceKey struct {
	weight receipt.FontWeight
	size   float64
}

// Manager owns the regular and bold font files and caches one face per
// weight and size. font.Face is not safe for concurrent use, so every call
// holds the lock.
type Manager struct {
	mu    sync.Mutex
	fonts map[receipt.FontWeight]*opentype.Font
	faces map[faceKey]font.Face
}

// New returns a manager backed by the embedded Go fonts.
func New() *Manager {
	m, err := Load("", "")
	if err != nil {
		// the embedded fonts are known-good
		panic(err)
	}
	return m
}

// Load parses TrueType/OpenType files for both weights. An empty path selects
// the embedded Go font of that weight.
func Load(regularPath, boldPath string) (*Manager, error) {
	regular, err := parseFont(regularPath, goregular.TTF)
	if err != nil {
		return nil, err
	}
	bold, err := parseFont(boldPath, gobold.TTF)
	if err != nil {
		return nil, err
	}

	return &Manager{
		fonts: map[receipt.FontWeight]*opentype.Font{
			receipt.Regular: regular,
			receipt.Bold:    bold,
		},
		faces: make(map[faceKey]font.Face),
	}, nil
}

func parseFont(path string, fallback []byte) (*opentype.Font, error) {
	data := fallback
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, fontError(fmt.Errorf("failed to read font %s: %w", path, err))
		}
		data = b
		logger.Info("Loaded font file", zap.String("path", path), zap.Int("bytes", len(b)))
	}

	f, err := opentype.Parse(data)
	if err != nil {
		return nil, fontError(fmt.Errorf("failed to parse font %q: %w", path, err))
	}
	return f, nil
}

func fontError(err error) error {
	return &receipt.Error{Class: receipt.ClassResource, Err: receipt.ErrFontUnavailable, Cause: err}
}

// face must be called with m.mu held.
func (m *Manager) face(style receipt.TextStyle) (font.Face, error) {
	key := faceKey{weight: style.Weight, size: style.Size}
	if f, ok := m.faces[key]; ok {
		return f, nil
	}

	f, ok := m.fonts[style.Weight]
	if !ok {
		return nil, fontError(fmt.Errorf("no font for weight %s", style.Weight))
	}
	face, err := opentype.NewFace(f, &opentype.FaceOptions{
		Size:    style.Size,
		DPI:     72,
		Hinting: font.HintingFull,
	})
	if err != nil {
		return nil, fontError(fmt.Errorf("failed to create %s face at %.1fpx: %w", style.Weight, style.Size, err))
	}
	m.faces[key] = face
	return face, nil
}

// Measure returns the advance width and line height of text.
func (m *Manager) Measure(text string, style receipt.TextStyle) (image.Point, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	face, err := m.face(style)
	if err != nil {
		return image.Point{}, err
	}
	metrics := face.Metrics()
	return image.Pt(font.MeasureString(face, text).Ceil(), (metrics.Ascent + metrics.Descent).Ceil()), nil
}

// DrawText draws text with the top of its line box at pt.Y.
func (m *Manager) DrawText(dst draw.Image, pt image.Point, text string, style receipt.TextStyle, c color.Color) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	face, err := m.face(style)
	if err != nil {
		return err
	}
	d := &font.Drawer{
		Dst:  dst,
		Src:  image.NewUniform(c),
		Face: face,
		Dot:  fixed.P(pt.X, pt.Y+face.Metrics().Ascent.Ceil()),
	}
	d.DrawString(text)
	return nil
}

// Close releases every cached face.
func (m *Manager) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for k, f := range m.faces {
		if err := f.Close(); err != nil {
			return err
		}
		delete(m.faces, k)
	}
	return nil
}
