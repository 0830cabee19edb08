package output

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"techradar/internal/radar"
)

func TestFileSinkWritesDocument(t *testing.T) {
	path := filepath.Join(t.TempDir(), "radar.json")
	s, err := NewFileSink(path)
	if err != nil {
		t.Fatalf("NewFileSink: %v", err)
	}

	if err := s.Write(Event{Type: "run.started"}); err != nil {
		t.Fatalf("Write event: %v", err)
	}
	if err := s.Write(sampleDocument()); err != nil {
		t.Fatalf("Write document: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	var decoded radar.Document
	if err := json.Unmarshal(raw, &decoded); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if len(decoded.Decisions) != 2 || decoded.TotalRepos != 10 {
		t.Fatalf("decoded document mismatch: %+v", decoded)
	}
}

func TestFileSinkRejectsUnknownExtension(t *testing.T) {
	if _, err := NewFileSink(filepath.Join(t.TempDir(), "radar.yaml")); err == nil {
		t.Fatal("expected error for non-JSON extension")
	}
}

func TestFileSinkRequiresPath(t *testing.T) {
	if _, err := NewFileSink(""); err == nil {
		t.Fatal("expected error for empty path")
	}
}

func TestFileSinkCreatesParentDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "out", "radar.json")
	s, err := NewFileSink(path)
	if err != nil {
		t.Fatalf("NewFileSink: %v", err)
	}
	if err := s.Write(sampleDocument()); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("output file missing: %v", err)
	}
}
