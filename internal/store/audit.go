package store

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// Audit activity kinds.
const (
	ActivitySaved     = "CANDIDATE_SAVED"
	ActivitySaveError = "SAVE_ERROR"
	ActivityRetrieved = "CANDIDATE_RETRIEVED"
	ActivityDeleted   = "CANDIDATE_DELETED"
	ActivityDeleteErr = "DELETE_ERROR"
	ActivityExpired   = "OLD_DATA_DELETED"
)

// AuditEntry is one append-only record of a store mutation or access.
type AuditEntry struct {
	Timestamp   time.Time `json:"timestamp"`
	Activity    string    `json:"activity"`
	CandidateID string    `json:"candidate_id"`
	Details     string    `json:"details"`
}

// AuditLog appends entries to a JSON Lines file. The file is a single shared
// append target, so writes go through a mutex on top of O_APPEND; a
// read-rewrite discipline would lose entries under concurrent writers.
type AuditLog struct {
	path string
	mu   sync.Mutex
}

func NewAuditLog(path string) *AuditLog {
	return &AuditLog{path: path}
}

// Record appends one entry. Entries are never mutated or removed.
func (l *AuditLog) Record(activity, candidateID, details string) error {
	entry := AuditEntry{
		Timestamp:   time.Now().UTC(),
		Activity:    activity,
		CandidateID: candidateID,
		Details:     details,
	}

	line, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("marshal audit entry: %w", err)
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(l.path), 0o700); err != nil {
		return fmt.Errorf("create audit log directory: %w", err)
	}

	file, err := os.OpenFile(l.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		return fmt.Errorf("open audit log: %w", err)
	}
	defer file.Close()

	if _, err := file.Write(append(line, '\n')); err != nil {
		return fmt.Errorf("append audit entry: %w", err)
	}

	return nil
}

// Entries reads back the full log in append order.
func (l *AuditLog) Entries() ([]AuditEntry, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	file, err := os.Open(l.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("open audit log: %w", err)
	}
	defer file.Close()

	var entries []AuditEntry
	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var entry AuditEntry
		if err := json.Unmarshal(line, &entry); err != nil {
			return nil, fmt.Errorf("parse audit entry: %w", err)
		}
		entries = append(entries, entry)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read audit log: %w", err)
	}

	return entries, nil
}
