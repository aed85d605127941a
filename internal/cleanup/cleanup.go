// Package cleanup removes uploaded manuscript files, both per request and on
// a periodic age-based schedule.
package cleanup

import (
	"log"
	"os"
	"path/filepath"
	"time"
)

// Delete removes a single uploaded file and reports whether it succeeded. A
// missing file counts as success; the request handler calls this from a defer
// and must never fail the response over it.
func Delete(path string) bool {
	if path == "" {
		return true
	}
	err := os.Remove(path)
	if err == nil || os.IsNotExist(err) {
		return true
	}
	log.Printf("Failed to delete upload %s: %v", path, err)
	return false
}

// Sweeper periodically deletes uploads older than a maximum age. It covers
// files orphaned by crashes between upload and the per-request delete.
type Sweeper struct {
	dir      string
	interval time.Duration
	maxAge   time.Duration
	now      func() time.Time
}

// NewSweeper creates a Sweeper over dir. Non-positive interval or maxAge fall
// back to 6h and 24h respectively.
func NewSweeper(dir string, interval, maxAge time.Duration) *Sweeper {
	if interval <= 0 {
		interval = 6 * time.Hour
	}
	if maxAge <= 0 {
		maxAge = 24 * time.Hour
	}
	return &Sweeper{dir: dir, interval: interval, maxAge: maxAge, now: time.Now}
}

// Run sweeps once immediately, then on every tick until stop is closed.
func (s *Sweeper) Run(stop <-chan struct{}) {
	s.SweepOnce()

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			s.SweepOnce()
		case <-stop:
			return
		}
	}
}

// SweepOnce deletes every regular file in the uploads directory whose
// modification time is older than maxAge. Subdirectories are left alone. It
// returns the number of files removed.
func (s *Sweeper) SweepOnce() int {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if !os.IsNotExist(err) {
			log.Printf("Sweep failed to read %s: %v", s.dir, err)
		}
		return 0
	}

	cutoff := s.now().Add(-s.maxAge)
	removed := 0
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		if info.ModTime().After(cutoff) {
			continue
		}
		path := filepath.Join(s.dir, entry.Name())
		if err := os.Remove(path); err != nil {
			log.Printf("Sweep failed to delete %s: %v", path, err)
			continue
		}
		removed++
	}
	if removed > 0 {
		log.Printf("Sweep removed %d stale upload(s) from %s", removed, s.dir)
	}
	return removed
}
