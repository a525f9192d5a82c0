package archive

import (
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/ferrytix/receipt-printer/internal/shared/logger"
	gonanoid "github.com/matoous/go-nanoid/v2"
	"go.uber.org/zap"
)

// DefaultTTL is how long a rendered receipt stays on disk.
const DefaultTTL = 10 * time.Minute

// Receipt is one rendered raster kept for preview and reprint.
type Receipt struct {
	ID        string    `json:"id"`
	Width     int       `json:"width"`
	Height    int       `json:"height"`
	Elements  int       `json:"elements"`
	CreatedAt time.Time `json:"created_at"`
	Path      string    `json:"-"`
}

// Store keeps rendered receipts as PNG files and deletes them after ttl.
type Store struct {
	dir string
	ttl time.Duration

	mu     sync.RWMutex
	items  map[string]*Receipt
	timers map[string]*time.Timer
}

// New creates a store writing into dir. ttl <= 0 selects DefaultTTL.
func New(dir string, ttl time.Duration) (*Store, error) {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create archive directory: %w", err)
	}
	return &Store{
		dir:    dir,
		ttl:    ttl,
		items:  make(map[string]*Receipt),
		timers: make(map[string]*time.Timer),
	}, nil
}

// Save writes img under a fresh nanoid and schedules its deletion.
func (s *Store) Save(img image.Image, elements int) (*Receipt, error) {
	id, err := gonanoid.New()
	if err != nil {
		return nil, fmt.Errorf("failed to generate ID: %w", err)
	}

	path := filepath.Join(s.dir, id+".png")
	if err := writePNG(path, img); err != nil {
		return nil, err
	}

	r := &Receipt{
		ID:        id,
		Width:     img.Bounds().Dx(),
		Height:    img.Bounds().Dy(),
		Elements:  elements,
		CreatedAt: time.Now(),
		Path:      path,
	}

	s.mu.Lock()
	s.items[id] = r
	s.timers[id] = time.AfterFunc(s.ttl, func() { s.Delete(id) })
	s.mu.Unlock()

	logger.Info("Receipt archived",
		zap.String("id", id),
		zap.Int("height", r.Height),
		zap.String("path", path))
	return r, nil
}

func writePNG(path string, img image.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		os.Remove(path)
		return fmt.Errorf("failed to encode receipt: %w", err)
	}
	return f.Close()
}

// Get returns a receipt that has not expired yet.
func (s *Store) Get(id string) (*Receipt, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.items[id]
	return r, ok
}

// Recent returns up to limit receipts, newest first.
func (s *Store) Recent(limit int) []*Receipt {
	s.mu.RLock()
	out := make([]*Receipt, 0, len(s.items))
	for _, r := range s.items {
		out = append(out, r)
	}
	s.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	if limit > 0 && limit < len(out) {
		out = out[:limit]
	}
	return out
}

// Delete removes a receipt and its file. Unknown ids are ignored.
func (s *Store) Delete(id string) {
	s.mu.Lock()
	r, ok := s.items[id]
	if ok {
		delete(s.items, id)
		if t := s.timers[id]; t != nil {
			t.Stop()
		}
		delete(s.timers, id)
	}
	s.mu.Unlock()

	if !ok {
		return
	}
	if err := os.Remove(r.Path); err != nil && !os.IsNotExist(err) {
		logger.Error("Failed to delete receipt image", zap.String("id", id), zap.Error(err))
		return
	}
	logger.Debug("Receipt deleted", zap.String("id", id))
}

// Close deletes every archived receipt.
func (s *Store) Close() {
	s.mu.RLock()
	ids := make([]string, 0, len(s.items))
	for id := range s.items {
		ids = append(ids, id)
	}
	s.mu.RUnlock()

	for _, id := range ids {
		s.Delete(id)
	}
}
