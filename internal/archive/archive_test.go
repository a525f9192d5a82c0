package archive

import (
	"image"
	"image/png"
	"os"
	"testing"
	"time"
)

func newTestStore(t *testing.T, ttl time.Duration) *Store {
	t.Helper()
	s, err := New(t.TempDir(), ttl)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	t.Cleanup(s.Close)
	return s
}

func TestSaveAndGet(t *testing.T) {
	s := newTestStore(t, time.Hour)

	r, err := s.Save(image.NewGray(image.Rect(0, 0, 384, 252)), 3)
	if err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if len(r.ID) != 21 {
		t.Fatalf("len(ID) = %d, want 21", len(r.ID))
	}
	if r.Width != 384 || r.Height != 252 || r.Elements != 3 {
		t.Fatalf("receipt = %+v, want 384x252 with 3 elements", r)
	}

	got, ok := s.Get(r.ID)
	if !ok || got != r {
		t.Fatalf("Get(%q) = %v, %v", r.ID, got, ok)
	}

	f, err := os.Open(r.Path)
	if err != nil {
		t.Fatalf("archived file missing: %v", err)
	}
	defer f.Close()
	cfg, err := png.DecodeConfig(f)
	if err != nil {
		t.Fatalf("archived file is not a PNG: %v", err)
	}
	if cfg.Width != 384 || cfg.Height != 252 {
		t.Fatalf("PNG size = %dx%d, want 384x252", cfg.Width, cfg.Height)
	}
}

func TestExpiry(t *testing.T) {
	s := newTestStore(t, 20*time.Millisecond)

	r, err := s.Save(image.NewGray(image.Rect(0, 0, 8, 8)), 1)
	if err != nil {
		t.Fatal(err)
	}

	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if _, ok := s.Get(r.ID); !ok {
			break
		}
		time.Sleep(10 * time.Millisecond)
	}
	if _, ok := s.Get(r.ID); ok {
		t.Fatal("receipt still present after ttl")
	}
	if _, err := os.Stat(r.Path); !os.IsNotExist(err) {
		t.Fatalf("file still present after ttl: %v", err)
	}
}

func TestRecentNewestFirst(t *testing.T) {
	s := newTestStore(t, time.Hour)

	var ids []string
	for i := 0; i < 3; i++ {
		r, err := s.Save(image.NewGray(image.Rect(0, 0, 8, 8)), i)
		if err != nil {
			t.Fatal(err)
		}
		// distinct timestamps
		r.CreatedAt = time.Now().Add(time.Duration(i) * time.Second)
		ids = append(ids, r.ID)
	}

	got := s.Recent(2)
	if len(got) != 2 {
		t.Fatalf("len(Recent(2)) = %d, want 2", len(got))
	}
	if got[0].ID != ids[2] || got[1].ID != ids[1] {
		t.Fatalf("Recent order = [%s %s], want [%s %s]", got[0].ID, got[1].ID, ids[2], ids[1])
	}
	if n := len(s.Recent(0)); n != 3 {
		t.Fatalf("len(Recent(0)) = %d, want 3", n)
	}
}

func TestDelete(t *testing.T) {
	s := newTestStore(t, time.Hour)
	r, _ := s.Save(image.NewGray(image.Rect(0, 0, 8, 8)), 1)

	s.Delete(r.ID)
	s.Delete(r.ID)
	s.Delete("unknown")

	if _, ok := s.Get(r.ID); ok {
		t.Fatal("receipt present after Delete")
	}
	if _, err := os.Stat(r.Path); !os.IsNotExist(err) {
		t.Fatalf("file present after Delete: %v", err)
	}
}
