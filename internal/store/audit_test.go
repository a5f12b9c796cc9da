package store

import (
	"fmt"
	"path/filepath"
	"sync"
	"testing"
)

func TestAuditLogAppendOrder(t *testing.T) {
	t.Parallel()

	log := NewAuditLog(filepath.Join(t.TempDir(), "activity_log.jsonl"))

	for i := 0; i < 5; i++ {
		if err := log.Record(ActivitySaved, fmt.Sprintf("CAND_%d", i), "saved"); err != nil {
			t.Fatalf("record %d: %v", i, err)
		}
	}

	entries, err := log.Entries()
	if err != nil {
		t.Fatalf("reading entries: %v", err)
	}
	if len(entries) != 5 {
		t.Fatalf("expected 5 entries, got %d", len(entries))
	}
	for i, entry := range entries {
		if want := fmt.Sprintf("CAND_%d", i); entry.CandidateID != want {
			t.Fatalf("entry %d out of order: got %q, want %q", i, entry.CandidateID, want)
		}
		if entry.Timestamp.IsZero() {
			t.Fatalf("entry %d has no timestamp", i)
		}
	}
}

func TestAuditLogConcurrentWriters(t *testing.T) {
	t.Parallel()

	log := NewAuditLog(filepath.Join(t.TempDir(), "activity_log.jsonl"))

	const (
		writers = 50
		each    = 10
	)

	var wg sync.WaitGroup
	for w := 0; w < writers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < each; i++ {
				if err := log.Record(ActivityRetrieved, fmt.Sprintf("CAND_%d_%d", w, i), "retrieved"); err != nil {
					t.Errorf("writer %d: %v", w, err)
					return
				}
			}
		}(w)
	}
	wg.Wait()

	entries, err := log.Entries()
	if err != nil {
		t.Fatalf("reading entries: %v", err)
	}
	if len(entries) != writers*each {
		t.Fatalf("expected %d entries, got %d", writers*each, len(entries))
	}

	seen := make(map[string]bool, len(entries))
	for _, entry := range entries {
		if seen[entry.CandidateID] {
			t.Fatalf("duplicate entry %q", entry.CandidateID)
		}
		seen[entry.CandidateID] = true
	}
}

func TestAuditLogEmptyRead(t *testing.T) {
	t.Parallel()

	log := NewAuditLog(filepath.Join(t.TempDir(), "missing.jsonl"))

	entries, err := log.Entries()
	if err != nil {
		t.Fatalf("reading missing log: %v", err)
	}
	if entries != nil {
		t.Fatalf("expected no entries, got %d", len(entries))
	}
}
