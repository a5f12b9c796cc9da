package interview

import "github.com/talentscout/assistant/internal/ai"

// transcriptWindow caps how many transcript entries are forwarded to the
// text-generation collaborator. Older entries stay in the transcript, they are
// only dropped from the generation context.
const transcriptWindow = 6

// Session is one candidate's interaction from greeting to closing. It is
// owned by exactly one logical interaction; turns of the same session never
// execute concurrently.
type Session struct {
	id         string
	state      State
	record     *CandidateRecord
	transcript []ai.Message
	queue      QuestionQueue
}

func newSession(id string) *Session {
	return &Session{
		id:     id,
		state:  StateGreeting,
		record: NewCandidateRecord(),
	}
}

func (s *Session) ID() string { return s.id }

// State returns the current conversation state.
func (s *Session) State() State { return s.state }

// Record returns the candidate record accumulated so far.
func (s *Session) Record() *CandidateRecord { return s.record }

// Queue exposes the technical question queue.
func (s *Session) Queue() *QuestionQueue { return &s.queue }

// Transcript returns the full ordered conversation transcript.
func (s *Session) Transcript() []ai.Message { return s.transcript }

func (s *Session) appendTranscript(role, content string) {
	s.transcript = append(s.transcript, ai.Message{Role: role, Content: content})
}

// contextWindow returns the most recent transcript entries for downstream
// generation calls.
func (s *Session) contextWindow() []ai.Message {
	if len(s.transcript) <= transcriptWindow {
		return s.transcript
	}
	return s.transcript[len(s.transcript)-transcriptWindow:]
}
