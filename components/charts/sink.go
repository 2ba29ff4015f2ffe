package charts

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// Sink receives rendered chart markup keyed by container id. The renderer
// writes into a sink; transports and static builds read from it.
type Sink interface {
	Write(containerID, html string) error
	Remove(containerID string) error
}

// MemorySink keeps rendered fragments in memory for serving.
type MemorySink struct {
	mu        sync.RWMutex
	fragments map[string]string
}

// NewMemorySink creates an empty in-memory sink.
func NewMemorySink() *MemorySink {
	return &MemorySink{fragments: make(map[string]string)}
}

// Write stores the fragment for a container.
func (s *MemorySink) Write(containerID, html string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fragments[containerID] = html
	return nil
}

// Remove clears the fragment for a container.
func (s *MemorySink) Remove(containerID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.fragments, containerID)
	return nil
}

// Fragment returns the rendered markup for a container, if present.
func (s *MemorySink) Fragment(containerID string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	html, ok := s.fragments[containerID]
	return html, ok
}

// DirSink writes rendered fragments to disk as <containerID>.html, the
// static-site build output.
type DirSink struct {
	Dir string
}

// Write stores the fragment as an HTML file under the sink directory.
func (s DirSink) Write(containerID, html string) error {
	if err := os.MkdirAll(s.Dir, 0o755); err != nil {
		return fmt.Errorf("charts: mkdir %s: %w", s.Dir, err)
	}
	path := filepath.Join(s.Dir, containerID+".html")
	if err := os.WriteFile(path, []byte(html), 0o644); err != nil {
		return fmt.Errorf("charts: write fragment %s: %w", path, err)
	}
	return nil
}

// Remove deletes the fragment file if it exists.
func (s DirSink) Remove(containerID string) error {
	path := filepath.Join(s.Dir, containerID+".html")
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("charts: remove fragment %s: %w", path, err)
	}
	return nil
}
