package store

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/csv"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/talentscout/assistant/internal/interview"

	"github.com/mitchellh/mapstructure"
	"go.uber.org/zap"
)

const (
	schemaVersion = "1.0"
	idPrefix      = "CAND"
	idTimeLayout  = "20060102150405"
	// hashLength truncates PII digests to a fixed short length of hex characters.
	hashLength = 16
)

// ErrIdentifierCollision reports the extremely rare case of two saves drawing
// the same anonymous identifier within one timestamp second.
var ErrIdentifierCollision = errors.New("anonymous identifier collision")

// Config carries the storage knobs with documented defaults.
type Config struct {
	// Dir is where per-record JSON files live. Default "data/candidate_info".
	Dir string `mapstructure:"dir"`
	// Salt is mixed into every PII hash. Override it in production.
	Salt string `mapstructure:"salt"`
	// RetentionDays is the default retention window for Sweep. Default 90.
	RetentionDays int `mapstructure:"retention-days"`
	// AuditLog overrides the audit log location. Defaults to
	// activity_log.jsonl next to the data directory.
	AuditLog string `mapstructure:"audit-log"`
}

// AuditLogPath resolves the audit log location for this configuration.
func (c Config) AuditLogPath() string {
	c = c.withDefaults()
	if c.AuditLog != "" {
		return c.AuditLog
	}
	return filepath.Join(filepath.Dir(c.Dir), "activity_log.jsonl")
}

// Retention returns the configured retention window in days.
func (c Config) Retention() int {
	return c.withDefaults().RetentionDays
}

const (
	defaultDir           = "data/candidate_info"
	defaultSalt          = "talentscout-dev-salt"
	DefaultRetentionDays = 90
)

func (c Config) withDefaults() Config {
	if c.Dir == "" {
		c.Dir = defaultDir
	}
	if c.Salt == "" {
		c.Salt = defaultSalt
	}
	if c.RetentionDays <= 0 {
		c.RetentionDays = DefaultRetentionDays
	}
	return c
}

// RecordData is the payload of a persisted record: PII fields replaced by
// one-way hashes, everything else verbatim. Technical answers are reduced to
// a count and never stored.
type RecordData struct {
	FullNameHash            string   `json:"full_name_hash" mapstructure:"full_name_hash"`
	EmailHash               string   `json:"email_hash" mapstructure:"email_hash"`
	PhoneHash               string   `json:"phone_hash" mapstructure:"phone_hash"`
	YearsOfExperience       string   `json:"years_of_experience" mapstructure:"years_of_experience"`
	DesiredPositions        string   `json:"desired_positions" mapstructure:"desired_positions"`
	CurrentLocation         string   `json:"current_location" mapstructure:"current_location"`
	TechStack               []string `json:"tech_stack" mapstructure:"tech_stack"`
	TechnicalResponsesCount int      `json:"technical_responses_count" mapstructure:"technical_responses_count"`
}

// dataFields is the header order for CSV export, matching RecordData.
var dataFields = []string{
	"full_name_hash",
	"email_hash",
	"phone_hash",
	"years_of_experience",
	"desired_positions",
	"current_location",
	"tech_stack",
	"technical_responses_count",
}

// PersistedRecord is the on-disk layout of one candidate record.
type PersistedRecord struct {
	AnonymousID string     `json:"anonymous_id"`
	Timestamp   string     `json:"timestamp"`
	Data        RecordData `json:"data"`
	Version     string     `json:"version"`
}

// Summary is the PII-free listing form of a persisted record.
type Summary struct {
	AnonymousID string   `json:"anonymous_id"`
	Timestamp   string   `json:"timestamp"`
	TechStack   []string `json:"tech_stack"`
}

// PrivacyStore persists candidate records as per-identifier JSON files.
// Concurrent saves from different sessions target distinct files; the shared
// audit log serializes its own writes.
type PrivacyStore struct {
	dir    string
	salt   []byte
	audit  *AuditLog
	logger *zap.Logger
	now    func() time.Time
}

func New(cfg Config, audit *AuditLog, logger *zap.Logger) (*PrivacyStore, error) {
	cfg = cfg.withDefaults()

	if err := os.MkdirAll(cfg.Dir, 0o700); err != nil {
		return nil, fmt.Errorf("create data directory: %w", err)
	}

	if logger == nil {
		logger = zap.NewNop()
	}

	return &PrivacyStore{
		dir:    cfg.Dir,
		salt:   []byte(cfg.Salt),
		audit:  audit,
		logger: logger,
		now:    time.Now,
	}, nil
}

// Save hashes the PII fields, writes the record under a freshly generated
// anonymous identifier and returns that identifier. I/O failures come back as
// errors and are noted in the audit log; the caller decides whether to retry.
func (s *PrivacyStore) Save(record *interview.CandidateRecord) (string, error) {
	if record == nil {
		return "", errors.New("record is required")
	}

	id, err := s.newAnonymousID()
	if err != nil {
		s.logAudit(ActivitySaveError, "", err.Error())
		return "", err
	}

	persisted := PersistedRecord{
		AnonymousID: id,
		Timestamp:   s.now().UTC().Format(time.RFC3339),
		Data:        s.anonymize(record),
		Version:     schemaVersion,
	}

	if err := s.writeRecord(id, persisted); err != nil {
		s.logAudit(ActivitySaveError, "", err.Error())
		return "", err
	}

	s.logAudit(ActivitySaved, id, "Candidate information saved securely")
	return id, nil
}

func (s *PrivacyStore) writeRecord(id string, record PersistedRecord) error {
	// O_EXCL turns an identifier collision into a detectable failure instead
	// of silently overwriting another candidate's record.
	file, err := os.OpenFile(s.recordPath(id), os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o600)
	if err != nil {
		if os.IsExist(err) {
			return fmt.Errorf("%w: %s", ErrIdentifierCollision, id)
		}
		return fmt.Errorf("create record file: %w", err)
	}
	defer file.Close()

	enc := json.NewEncoder(file)
	enc.SetIndent("", "  ")
	if err := enc.Encode(record); err != nil {
		return fmt.Errorf("encode record: %w", err)
	}

	return nil
}

// Retrieve loads a persisted record. A missing or unreadable file is treated
// as not-found, never as an error.
func (s *PrivacyStore) Retrieve(id string) (*PersistedRecord, bool) {
	record, err := s.readRecord(s.recordPath(id))
	if err != nil {
		return nil, false
	}

	s.logAudit(ActivityRetrieved, id, "Candidate information retrieved")
	return record, true
}

// Delete removes a record, honoring GDPR-style erasure requests. It returns
// false when there was nothing to delete.
func (s *PrivacyStore) Delete(id string) bool {
	err := os.Remove(s.recordPath(id))
	if err != nil {
		if !os.IsNotExist(err) {
			s.logAudit(ActivityDeleteErr, id, err.Error())
			s.logger.Warn("deleting record failed", zap.String("record_id", id), zap.Error(err))
		}
		return false
	}

	s.logAudit(ActivityDeleted, id, "Candidate information deleted per GDPR request")
	return true
}

// ListAll enumerates stored records as PII-free summaries. Unreadable files
// are skipped.
func (s *PrivacyStore) ListAll() []Summary {
	var summaries []Summary
	for _, record := range s.loadAll() {
		summaries = append(summaries, Summary{
			AnonymousID: record.AnonymousID,
			Timestamp:   record.Timestamp,
			TechStack:   record.Data.TechStack,
		})
	}
	return summaries
}

// Export serializes every stored record as "json" (array of full records) or
// "csv" (one row per record, list fields joined with ";"). Unknown formats
// fall back to json.
func (s *PrivacyStore) Export(format string) (string, error) {
	records := s.loadAll()

	if strings.ToLower(strings.TrimSpace(format)) == "csv" {
		return exportCSV(records)
	}

	out, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal records: %w", err)
	}
	return string(out), nil
}

func exportCSV(records []*PersistedRecord) (string, error) {
	if len(records) == 0 {
		return "", nil
	}

	var builder strings.Builder
	w := csv.NewWriter(&builder)

	header := append([]string{"anonymous_id", "timestamp"}, dataFields...)
	if err := w.Write(header); err != nil {
		return "", fmt.Errorf("write csv header: %w", err)
	}

	for _, record := range records {
		var data map[string]any
		if err := mapstructure.Decode(record.Data, &data); err != nil {
			return "", fmt.Errorf("flatten record %s: %w", record.AnonymousID, err)
		}

		row := []string{record.AnonymousID, record.Timestamp}
		for _, field := range dataFields {
			row = append(row, flattenValue(data[field]))
		}

		if err := w.Write(row); err != nil {
			return "", fmt.Errorf("write csv row: %w", err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return "", fmt.Errorf("flush csv: %w", err)
	}

	return builder.String(), nil
}

func flattenValue(v any) string {
	switch value := v.(type) {
	case nil:
		return ""
	case string:
		return value
	case []string:
		return strings.Join(value, ";")
	case int:
		return strconv.Itoa(value)
	default:
		return fmt.Sprintf("%v", value)
	}
}

// Sweep deletes every record older than the cutoff and returns how many were
// removed. Each deletion is audited individually.
func (s *PrivacyStore) Sweep(maxAgeDays int) int {
	cutoff := s.now().UTC().AddDate(0, 0, -maxAgeDays)

	deleted := 0
	for _, path := range s.recordFiles() {
		record, err := s.readRecord(path)
		if err != nil {
			continue
		}

		stamp, err := time.Parse(time.RFC3339, record.Timestamp)
		if err != nil || !stamp.Before(cutoff) {
			continue
		}

		if err := os.Remove(path); err != nil {
			s.logger.Warn("removing expired record failed", zap.String("path", path), zap.Error(err))
			continue
		}

		deleted++
		s.logAudit(ActivityExpired, record.AnonymousID, fmt.Sprintf("Deleted data older than %d days", maxAgeDays))
	}

	return deleted
}

func (s *PrivacyStore) anonymize(record *interview.CandidateRecord) RecordData {
	return RecordData{
		FullNameHash:            s.hashPII(record.FullName),
		EmailHash:               s.hashPII(record.Email),
		PhoneHash:               s.hashPII(record.Phone),
		YearsOfExperience:       record.YearsOfExperience,
		DesiredPositions:        record.DesiredPositions,
		CurrentLocation:         record.CurrentLocation,
		TechStack:               record.TechStack,
		TechnicalResponsesCount: len(record.TechnicalResponses),
	}
}

// hashPII computes the salted one-way digest of a PII value, truncated to a
// fixed short length. The same value with the same salt always yields the
// same digest. Empty values stay empty.
func (s *PrivacyStore) hashPII(value string) string {
	if value == "" {
		return ""
	}

	digest := sha256.Sum256(append([]byte(value), s.salt...))
	return hex.EncodeToString(digest[:])[:hashLength]
}

// newAnonymousID builds an identifier from a timestamp prefix and a
// cryptographically random suffix.
func (s *PrivacyStore) newAnonymousID() (string, error) {
	suffix := make([]byte, 4)
	if _, err := rand.Read(suffix); err != nil {
		return "", fmt.Errorf("generate identifier suffix: %w", err)
	}

	return fmt.Sprintf("%s_%s_%s", idPrefix, s.now().UTC().Format(idTimeLayout), hex.EncodeToString(suffix)), nil
}

func (s *PrivacyStore) recordPath(id string) string {
	return filepath.Join(s.dir, id+".json")
}

func (s *PrivacyStore) recordFiles() []string {
	paths, err := filepath.Glob(filepath.Join(s.dir, "*.json"))
	if err != nil {
		return nil
	}
	sort.Strings(paths)
	return paths
}

func (s *PrivacyStore) loadAll() []*PersistedRecord {
	var records []*PersistedRecord
	for _, path := range s.recordFiles() {
		record, err := s.readRecord(path)
		if err != nil {
			s.logger.Warn("skipping unreadable record", zap.String("path", path), zap.Error(err))
			continue
		}
		records = append(records, record)
	}
	return records
}

func (s *PrivacyStore) readRecord(path string) (*PersistedRecord, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var record PersistedRecord
	if err := json.Unmarshal(data, &record); err != nil {
		return nil, fmt.Errorf("parse record %s: %w", filepath.Base(path), err)
	}

	return &record, nil
}

func (s *PrivacyStore) logAudit(activity, candidateID, details string) {
	if s.audit == nil {
		return
	}
	if err := s.audit.Record(activity, candidateID, details); err != nil {
		s.logger.Warn("audit log write failed",
			zap.String("activity", activity),
			zap.Error(err),
		)
	}
}
