package checkpoint

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
)

func TestMarkScannedBatchedSaves(t *testing.T) {
	path := filepath.Join(t.TempDir(), "checkpoint.json")
	s := Open(path, false, Options{SaveInterval: 3})

	s.MarkScanned("acme/a")
	s.MarkScanned("acme/b")
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Fatal("checkpoint must not exist before the save interval is reached")
	}

	s.MarkScanned("acme/c")
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("checkpoint missing after third mark: %v", err)
	}
}

func TestSetStatsDefersPersistToSaveCadence(t *testing.T) {
	path := filepath.Join(t.TempDir(), "checkpoint.json")
	s := Open(path, false, Options{SaveInterval: 2})

	s.MarkScanned("acme/a")
	s.SetStats(Stats{ReposScanned: 1, APICalls: 4})
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Fatal("a stats update alone must not write the checkpoint")
	}

	s.SetStats(Stats{ReposScanned: 2, APICalls: 9})
	s.MarkScanned("acme/b")

	resumed := Open(path, true, Options{})
	if got := resumed.Stats(); got.APICalls != 9 || got.ReposScanned != 2 {
		t.Fatalf("batched save must carry the latest stats, got %+v", got)
	}
}

func TestMarkScannedIdempotent(t *testing.T) {
	s := Open(filepath.Join(t.TempDir(), "checkpoint.json"), false, Options{})
	s.MarkScanned("acme/a")
	s.MarkScanned("acme/a")
	if s.Count() != 1 {
		t.Fatalf("Count = %d, want 1", s.Count())
	}
	if !s.IsScanned("acme/a") {
		t.Fatal("IsScanned must report marked repo")
	}
	if s.IsScanned("acme/b") {
		t.Fatal("IsScanned must not report unmarked repo")
	}
}

func TestResumeRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "checkpoint.json")

	first := Open(path, false, Options{})
	first.Start()
	first.MarkScanned("acme/a")
	first.MarkScanned("acme/b")
	first.SetStats(Stats{ReposScanned: 2, APICalls: 7, QuotaRemaining: 4200})
	first.Finalize()

	resumed := Open(path, true, Options{})
	if !resumed.IsScanned("acme/a") || !resumed.IsScanned("acme/b") {
		t.Fatalf("resumed store missing scanned repos, count = %d", resumed.Count())
	}
	if resumed.RunID() != first.RunID() {
		t.Fatalf("resume must keep the original run ID")
	}
	if got := resumed.Stats(); got.APICalls != 7 || got.QuotaRemaining != 4200 {
		t.Fatalf("resumed stats = %+v", got)
	}
}

func TestFreshRunIgnoresExistingCheckpoint(t *testing.T) {
	path := filepath.Join(t.TempDir(), "checkpoint.json")

	first := Open(path, false, Options{})
	first.MarkScanned("acme/a")
	first.Flush()

	fresh := Open(path, false, Options{})
	if fresh.IsScanned("acme/a") {
		t.Fatal("non-resume open must not load the existing checkpoint")
	}
	if fresh.RunID() == first.RunID() {
		t.Fatal("fresh run must mint a new run ID")
	}
}

func TestCorruptCheckpointDegradesToEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "checkpoint.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}

	var warned bool
	s := Open(path, true, Options{})
	s.Warnf = func(format string, args ...any) { warned = true }
	s.load()

	if s.Count() != 0 {
		t.Fatalf("corrupt checkpoint must yield empty state, count = %d", s.Count())
	}
	if !warned {
		t.Fatal("corrupt checkpoint must be reported")
	}
}

func TestClearRemovesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "checkpoint.json")
	s := Open(path, false, Options{})
	s.MarkScanned("acme/a")
	s.Flush()

	if err := s.Clear(); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Fatal("Clear must remove the checkpoint file")
	}
	if s.Count() != 0 {
		t.Fatalf("Clear must wipe in-memory state, count = %d", s.Count())
	}
}

func TestSaveWritesValidJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "checkpoint.json")
	s := Open(path, false, Options{})
	s.Start()
	s.MarkScanned("acme/a")
	s.Finalize()

	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	var decoded map[string]any
	if err := json.Unmarshal(raw, &decoded); err != nil {
		t.Fatalf("checkpoint is not valid JSON: %v", err)
	}
	if decoded["run_id"] == "" {
		t.Fatal("run_id missing from persisted checkpoint")
	}
}

func TestDisabledStoreNeverWrites(t *testing.T) {
	path := filepath.Join(t.TempDir(), "checkpoint.json")
	s := Open(path, false, Options{Disabled: true})
	s.Start()
	s.MarkScanned("acme/a")
	s.Finalize()

	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Fatal("disabled store must not touch the filesystem")
	}
	if !s.IsScanned("acme/a") {
		t.Fatal("disabled store still tracks the in-memory set")
	}
}
