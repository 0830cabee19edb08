package output

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"techradar/internal/radar"
)

// FileSink persists the final radar document as indented JSON. Events and
// any other writes are ignored; the file is written once, on the document
// write, so a crashed run leaves no half-finished radar behind.
type FileSink struct {
	path string
	mu   sync.Mutex
	doc  *radar.Document
}

func NewFileSink(path string) (*FileSink, error) {
	if path == "" {
		return nil, fmt.Errorf("output path required")
	}
	if ext := strings.ToLower(filepath.Ext(path)); ext != ".json" {
		return nil, fmt.Errorf("unsupported output format %q (only .json)", ext)
	}

	dir := filepath.Dir(path)
	if dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	return &FileSink{path: path}, nil
}

func (s *FileSink) Write(v any) error {
	doc, ok := v.(*radar.Document)
	if !ok {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.doc = doc

	f, err := os.Create(s.path)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	encoder := json.NewEncoder(f)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(doc); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func (s *FileSink) Close() error { return nil }
