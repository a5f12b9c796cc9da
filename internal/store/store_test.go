package store

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"path/filepath"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/talentscout/assistant/internal/interview"

	"go.uber.org/zap"
)

var idFormat = regexp.MustCompile(`^CAND_\d{14}_[0-9a-f]{8}$`)

func newTestStore(t *testing.T) (*PrivacyStore, *AuditLog) {
	t.Helper()

	dir := t.TempDir()
	audit := NewAuditLog(filepath.Join(dir, "activity_log.jsonl"))
	s, err := New(Config{Dir: filepath.Join(dir, "records"), Salt: "test-salt"}, audit, zap.NewNop())
	if err != nil {
		t.Fatalf("creating store: %v", err)
	}
	return s, audit
}

func sampleRecord() *interview.CandidateRecord {
	return &interview.CandidateRecord{
		FullName:          "Jane Doe",
		Email:             "jane@x.com",
		Phone:             "555-111-2222",
		YearsOfExperience: "5",
		DesiredPositions:  "Backend Engineer",
		CurrentLocation:   "Remote",
		TechStack:         []string{"Python", "Docker"},
		TechnicalResponses: map[int]string{
			0: "first answer",
			1: "second answer",
		},
	}
}

func TestSaveHashesPIIAndAudits(t *testing.T) {
	t.Parallel()

	s, audit := newTestStore(t)

	id, err := s.Save(sampleRecord())
	if err != nil {
		t.Fatalf("save: %v", err)
	}

	if !idFormat.MatchString(id) {
		t.Fatalf("unexpected identifier format: %q", id)
	}

	record, found := s.Retrieve(id)
	if !found {
		t.Fatal("expected record to be retrievable")
	}

	data := record.Data
	for name, hash := range map[string]string{
		"full_name_hash": data.FullNameHash,
		"email_hash":     data.EmailHash,
		"phone_hash":     data.PhoneHash,
	} {
		if len(hash) != hashLength {
			t.Fatalf("%s has length %d, want %d", name, len(hash), hashLength)
		}
	}

	if data.FullNameHash == "Jane Doe" || strings.Contains(data.FullNameHash, "Jane") {
		t.Fatal("full name stored in plaintext")
	}
	if data.YearsOfExperience != "5" || data.CurrentLocation != "Remote" {
		t.Fatalf("non-PII fields must persist verbatim: %+v", data)
	}
	if data.TechnicalResponsesCount != 2 {
		t.Fatalf("expected answer count 2, got %d", data.TechnicalResponsesCount)
	}
	if record.Version != schemaVersion {
		t.Fatalf("unexpected schema version: %q", record.Version)
	}
	if _, err := time.Parse(time.RFC3339, record.Timestamp); err != nil {
		t.Fatalf("timestamp not RFC3339: %q", record.Timestamp)
	}

	entries, err := audit.Entries()
	if err != nil {
		t.Fatalf("reading audit log: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected save and retrieve audit entries, got %d", len(entries))
	}
	if entries[0].Activity != ActivitySaved || entries[0].CandidateID != id {
		t.Fatalf("unexpected first audit entry: %+v", entries[0])
	}
	if entries[1].Activity != ActivityRetrieved {
		t.Fatalf("unexpected second audit entry: %+v", entries[1])
	}
}

func TestHashDeterminismAndUniqueness(t *testing.T) {
	t.Parallel()

	s, _ := newTestStore(t)

	if s.hashPII("jane@x.com") != s.hashPII("jane@x.com") {
		t.Fatal("same input must hash identically")
	}

	other, err := New(Config{Dir: t.TempDir(), Salt: "another-salt"}, nil, zap.NewNop())
	if err != nil {
		t.Fatal(err)
	}
	if s.hashPII("jane@x.com") == other.hashPII("jane@x.com") {
		t.Fatal("different salts must yield different digests")
	}

	seen := make(map[string]string)
	for i := 0; i < 100; i++ {
		buf := make([]byte, 12)
		if _, err := rand.Read(buf); err != nil {
			t.Fatal(err)
		}
		value := hex.EncodeToString(buf)
		digest := s.hashPII(value)
		if prev, ok := seen[digest]; ok && prev != value {
			t.Fatalf("collision between %q and %q", prev, value)
		}
		seen[digest] = value
	}
}

func TestAnonymousIdentifiersAreUnique(t *testing.T) {
	t.Parallel()

	s, _ := newTestStore(t)
	s.audit = nil

	seen := make(map[string]bool, 1000)
	for i := 0; i < 1000; i++ {
		id, err := s.Save(&interview.CandidateRecord{FullName: fmt.Sprintf("candidate %d", i)})
		if err != nil {
			t.Fatalf("save %d: %v", i, err)
		}
		if !idFormat.MatchString(id) {
			t.Fatalf("identifier %q does not match format", id)
		}
		if seen[id] {
			t.Fatalf("duplicate identifier %q", id)
		}
		seen[id] = true
	}
}

func TestRetrieveNotFound(t *testing.T) {
	t.Parallel()

	s, audit := newTestStore(t)

	if record, found := s.Retrieve("CAND_00000000000000_deadbeef"); found || record != nil {
		t.Fatal("expected not-found")
	}

	entries, err := audit.Entries()
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 0 {
		t.Fatalf("not-found retrieval must not audit, got %d entries", len(entries))
	}
}

func TestDelete(t *testing.T) {
	t.Parallel()

	s, audit := newTestStore(t)

	id, err := s.Save(sampleRecord())
	if err != nil {
		t.Fatal(err)
	}

	if !s.Delete(id) {
		t.Fatal("expected delete to succeed")
	}
	if _, found := s.Retrieve(id); found {
		t.Fatal("record must be gone after delete")
	}
	if s.Delete(id) {
		t.Fatal("second delete must report nothing to do")
	}

	entries, err := audit.Entries()
	if err != nil {
		t.Fatal(err)
	}

	var deletions int
	for _, entry := range entries {
		if entry.Activity == ActivityDeleted {
			deletions++
			if !strings.Contains(entry.Details, "GDPR") {
				t.Fatalf("expected GDPR erasure detail, got %q", entry.Details)
			}
		}
	}
	if deletions != 1 {
		t.Fatalf("expected exactly one deletion audit entry, got %d", deletions)
	}
}

func TestListAllOmitsPII(t *testing.T) {
	t.Parallel()

	s, _ := newTestStore(t)

	id, err := s.Save(sampleRecord())
	if err != nil {
		t.Fatal(err)
	}

	summaries := s.ListAll()
	if len(summaries) != 1 {
		t.Fatalf("expected one summary, got %d", len(summaries))
	}
	if summaries[0].AnonymousID != id {
		t.Fatalf("unexpected identifier: %q", summaries[0].AnonymousID)
	}
	if len(summaries[0].TechStack) != 2 {
		t.Fatalf("unexpected tech stack: %v", summaries[0].TechStack)
	}
}

func TestSweepRemovesOnlyExpiredRecords(t *testing.T) {
	t.Parallel()

	s, audit := newTestStore(t)

	base := time.Now().UTC()

	s.now = func() time.Time { return base.AddDate(0, 0, -100) }
	oldID, err := s.Save(sampleRecord())
	if err != nil {
		t.Fatal(err)
	}

	s.now = func() time.Time { return base.AddDate(0, 0, -10) }
	youngID, err := s.Save(sampleRecord())
	if err != nil {
		t.Fatal(err)
	}

	s.now = func() time.Time { return base }
	if removed := s.Sweep(90); removed != 1 {
		t.Fatalf("expected 1 removal, got %d", removed)
	}

	if _, found := s.Retrieve(oldID); found {
		t.Fatal("expired record must be removed")
	}
	if _, found := s.Retrieve(youngID); !found {
		t.Fatal("young record must survive")
	}

	entries, err := audit.Entries()
	if err != nil {
		t.Fatal(err)
	}

	var expired int
	for _, entry := range entries {
		if entry.Activity == ActivityExpired {
			expired++
			if entry.CandidateID != oldID {
				t.Fatalf("expired entry names wrong record: %+v", entry)
			}
		}
	}
	if expired != 1 {
		t.Fatalf("expected one expiry audit entry, got %d", expired)
	}
}

func TestExportJSON(t *testing.T) {
	t.Parallel()

	s, _ := newTestStore(t)
	if _, err := s.Save(sampleRecord()); err != nil {
		t.Fatal(err)
	}

	out, err := s.Export("json")
	if err != nil {
		t.Fatalf("export: %v", err)
	}

	if !strings.Contains(out, `"anonymous_id"`) || !strings.Contains(out, `"technical_responses_count": 2`) {
		t.Fatalf("unexpected json export: %s", out)
	}
	if strings.Contains(out, "Jane Doe") {
		t.Fatal("plaintext PII leaked into export")
	}
}

func TestExportCSV(t *testing.T) {
	t.Parallel()

	s, _ := newTestStore(t)
	if _, err := s.Save(sampleRecord()); err != nil {
		t.Fatal(err)
	}

	out, err := s.Export("csv")
	if err != nil {
		t.Fatalf("export: %v", err)
	}

	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected header and one row, got %d lines", len(lines))
	}

	header := "anonymous_id,timestamp,full_name_hash,email_hash,phone_hash," +
		"years_of_experience,desired_positions,current_location,tech_stack,technical_responses_count"
	if lines[0] != header {
		t.Fatalf("unexpected header: %q", lines[0])
	}

	if !strings.Contains(lines[1], "Python;Docker") {
		t.Fatalf("list fields must be joined with ';': %q", lines[1])
	}
}

func TestExportEmptyStore(t *testing.T) {
	t.Parallel()

	s, _ := newTestStore(t)

	out, err := s.Export("csv")
	if err != nil {
		t.Fatal(err)
	}
	if out != "" {
		t.Fatalf("expected empty csv export, got %q", out)
	}
}
