package watch

import (
	"crypto/sha256"
	"os"
	"path/filepath"
	"sync"

	"github.com/klauern/snippetsync/internal/logging"
)

// Echoes remembers the content of files written by a sync so the change events
// those writes cause are not taken for edits. A file counts as an echo while
// its content still hashes to what the sync wrote.
type Echoes struct {
	mu     sync.Mutex
	hashes map[string][sha256.Size]byte
}

// NewEchoes returns an empty echo filter.
func NewEchoes() *Echoes {
	return &Echoes{hashes: make(map[string][sha256.Size]byte)}
}

// Record hashes the current content of each written path. Paths that cannot
// be read are forgotten.
func (e *Echoes) Record(paths ...string) {
	e.mu.Lock()
	defer e.mu.Unlock()

	for _, path := range paths {
		if abs, err := filepath.Abs(path); err == nil {
			path = abs
		}
		sum, ok := hashFile(path)
		if !ok {
			delete(e.hashes, path)
			continue
		}
		e.hashes[path] = sum
	}
}

// Filter returns the events that are not echoes of recorded writes. Deletions
// are always kept.
func (e *Echoes) Filter(batch []FileEvent) []FileEvent {
	e.mu.Lock()
	defer e.mu.Unlock()

	kept := make([]FileEvent, 0, len(batch))
	for _, ev := range batch {
		if ev.Op != OpDelete {
			if want, ok := e.hashes[ev.Path]; ok {
				if got, ok := hashFile(ev.Path); ok && got == want {
					logging.Debug("ignoring change written by sync", logging.Path(ev.Path))
					continue
				}
			}
		}
		kept = append(kept, ev)
	}
	return kept
}

func hashFile(path string) ([sha256.Size]byte, bool) {
	// #nosec G304 - path is a snippet file the sync wrote or the watcher reported
	data, err := os.ReadFile(path)
	if err != nil {
		return [sha256.Size]byte{}, false
	}
	return sha256.Sum256(data), true
}
