// Package checkpoint persists scan progress so an interrupted run can
// resume without re-fetching completed repositories.
package checkpoint

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
)

// Stats is the last-known run statistics snapshot carried inside the
// checkpoint record.
type Stats struct {
	ReposScanned int   `json:"repos_scanned"`
	ReposSkipped int   `json:"repos_skipped"`
	APICalls     int64 `json:"api_calls"`
	Errors       int   `json:"errors"`
	// QuotaRemaining is the last observed remote quota, -1 when unknown.
	QuotaRemaining int `json:"quota_remaining"`
}

type state struct {
	RunID        string    `json:"run_id"`
	ScannedRepos []string  `json:"scanned_repos"`
	StartTime    time.Time `json:"start_time,omitempty"`
	LastUpdate   time.Time `json:"last_update,omitempty"`
	EndTime      time.Time `json:"end_time,omitempty"`
	Stats        Stats     `json:"stats"`
}

// Store is the durable scan checkpoint. It is mutated only by the scan
// orchestrator thread; no internal locking.
type Store struct {
	path         string
	enabled      bool
	saveInterval int
	data         state
	scanned      map[string]bool
	now          func() time.Time

	// Warnf, when set, receives degradation notices (unreadable checkpoint
	// on resume, failed save).
	Warnf func(format string, args ...any)
}

// Options configures a Store.
type Options struct {
	// SaveInterval persists the checkpoint every Nth marked repository;
	// 0 selects 10. Finalize and Flush always persist regardless.
	SaveInterval int
	// Disabled turns all persistence off; the Store then only tracks the
	// in-memory scanned set.
	Disabled bool
}

// Open creates a Store backed by path. With resume true it loads the
// existing checkpoint; an unreadable file degrades to an empty checkpoint
// with a warning rather than failing the run.
func Open(path string, resume bool, opts Options) *Store {
	if opts.SaveInterval <= 0 {
		opts.SaveInterval = 10
	}
	s := &Store{
		path:         path,
		enabled:      !opts.Disabled,
		saveInterval: opts.SaveInterval,
		data:         state{RunID: uuid.NewString()},
		scanned:      make(map[string]bool),
		now:          time.Now,
	}
	if s.enabled && resume {
		s.load()
	}
	return s
}

func (s *Store) warnf(format string, args ...any) {
	if s.Warnf != nil {
		s.Warnf(format, args...)
	}
}

func (s *Store) load() {
	raw, err := os.ReadFile(s.path)
	if err != nil {
		if !os.IsNotExist(err) {
			s.warnf("could not load checkpoint: %v", err)
		}
		return
	}
	var loaded state
	if err := json.Unmarshal(raw, &loaded); err != nil {
		s.warnf("could not parse checkpoint, starting fresh: %v", err)
		return
	}
	if loaded.RunID == "" {
		loaded.RunID = s.data.RunID
	}
	s.data = loaded
	s.data.EndTime = time.Time{}
	for _, name := range loaded.ScannedRepos {
		s.scanned[name] = true
	}
}

// RunID identifies this run (or the resumed run's original ID).
func (s *Store) RunID() string { return s.data.RunID }

// Start records the run start time once and persists.
func (s *Store) Start() {
	if s.data.StartTime.IsZero() {
		s.data.StartTime = s.now()
	}
	s.save()
}

// IsScanned reports whether the repository completed a scan pass, in this
// run or a resumed one.
func (s *Store) IsScanned(fullName string) bool {
	return s.scanned[fullName]
}

// Count returns how many repositories are recorded as scanned.
func (s *Store) Count() int { return len(s.scanned) }

// MarkScanned records a completed repository. Only called after the whole
// repository finished; in-flight repositories are never marked. Persists
// every SaveInterval-th mark.
func (s *Store) MarkScanned(fullName string) {
	if s.scanned[fullName] {
		return
	}
	s.scanned[fullName] = true
	s.data.ScannedRepos = append(s.data.ScannedRepos, fullName)
	if len(s.data.ScannedRepos)%s.saveInterval == 0 {
		s.save()
	}
}

// SetStats replaces the in-memory statistics snapshot. The snapshot
// reaches disk on the MarkScanned cadence and on Flush and Finalize, so
// updating it per repository does not force a write per repository.
func (s *Store) SetStats(stats Stats) {
	s.data.Stats = stats
}

// Stats returns the last recorded statistics snapshot.
func (s *Store) Stats() Stats { return s.data.Stats }

// Flush forces a persist. Used on interruption.
func (s *Store) Flush() { s.save() }

// Finalize stamps the run end time and persists.
func (s *Store) Finalize() {
	s.data.EndTime = s.now()
	s.save()
}

// Clear wipes the in-memory state and removes the checkpoint file.
func (s *Store) Clear() error {
	s.data = state{RunID: uuid.NewString()}
	s.scanned = make(map[string]bool)
	if !s.enabled {
		return nil
	}
	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("clear checkpoint: %w", err)
	}
	return nil
}

// save writes the checkpoint atomically: a temp file in the same directory
// followed by a rename, so a crash mid-write never corrupts the previous
// checkpoint.
func (s *Store) save() {
	if !s.enabled {
		return
	}
	s.data.LastUpdate = s.now()

	raw, err := json.MarshalIndent(s.data, "", "  ")
	if err != nil {
		s.warnf("could not encode checkpoint: %v", err)
		return
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		s.warnf("could not create checkpoint directory: %v", err)
		return
	}
	tmp, err := os.CreateTemp(dir, ".checkpoint-*.json")
	if err != nil {
		s.warnf("could not save checkpoint: %v", err)
		return
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(raw); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		s.warnf("could not save checkpoint: %v", err)
		return
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		s.warnf("could not save checkpoint: %v", err)
		return
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		os.Remove(tmpName)
		s.warnf("could not save checkpoint: %v", err)
	}
}
