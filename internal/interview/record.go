package interview

// CandidateRecord accumulates the structured data collected during one
// session. Name, email and phone are PII and must never be persisted in
// plaintext; the store hashes them on save.
type CandidateRecord struct {
	FullName          string
	Email             string
	Phone             string
	YearsOfExperience string
	DesiredPositions  string
	CurrentLocation   string
	TechStack         []string
	// TechnicalResponses maps the zero-based index of an issued question to
	// the candidate's free-text answer.
	TechnicalResponses map[int]string
}

func NewCandidateRecord() *CandidateRecord {
	return &CandidateRecord{
		TechnicalResponses: make(map[int]string),
	}
}

// RecordAnswer stores the answer for the question issued at the given index.
func (r *CandidateRecord) RecordAnswer(index int, answer string) {
	if r.TechnicalResponses == nil {
		r.TechnicalResponses = make(map[int]string)
	}
	r.TechnicalResponses[index] = answer
}

// Complete reports whether every required field has been collected.
func (r *CandidateRecord) Complete() bool {
	return r.FullName != "" &&
		r.Email != "" &&
		r.Phone != "" &&
		r.YearsOfExperience != "" &&
		r.DesiredPositions != "" &&
		r.CurrentLocation != "" &&
		len(r.TechStack) > 0
}
