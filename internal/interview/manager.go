package interview

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"unicode"

	"github.com/talentscout/assistant/internal/ai"
	"github.com/talentscout/assistant/internal/logger"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ErrSessionNotFound is returned when a turn references an unknown or already
// ended session.
var ErrSessionNotFound = errors.New("session not found")

// DefaultExitKeywords end the conversation when found anywhere in the input,
// case-insensitively.
var DefaultExitKeywords = []string{"exit", "quit", "goodbye", "bye", "leave", "end", "stop"}

const (
	defaultMinQuestions = 3
	defaultMaxQuestions = 5

	greetingTemperature float32 = 0.8
	questionTemperature float32 = 0.5
	defaultTemperature  float32 = 0.7

	// minQuestionLength filters noise lines out of generated question lists.
	minQuestionLength = 10
)

// Config carries the conversation knobs. Zero values fall back to documented
// defaults.
type Config struct {
	// ExitKeywords replaces DefaultExitKeywords when non-empty.
	ExitKeywords []string
	// MinQuestions and MaxQuestions bound the generated technical question
	// count. Defaults are 3 and 5; MaxQuestions never exceeds the queue cap.
	MinQuestions int
	MaxQuestions int
}

func (c Config) withDefaults() Config {
	if len(c.ExitKeywords) == 0 {
		c.ExitKeywords = DefaultExitKeywords
	}
	if c.MinQuestions <= 0 {
		c.MinQuestions = defaultMinQuestions
	}
	if c.MaxQuestions <= 0 || c.MaxQuestions > MaxQuestions {
		c.MaxQuestions = defaultMaxQuestions
	}
	return c
}

// RecordSink persists a finished or partially collected candidate record.
type RecordSink interface {
	Save(record *CandidateRecord) (string, error)
}

// Manager drives screening conversations. Each session is mutated strictly
// turn-by-turn; the sessions map itself is safe for concurrent use so that
// independent sessions may run in parallel.
type Manager struct {
	cfg    Config
	gen    ai.Generator
	sink   RecordSink
	logger *zap.Logger

	mu       sync.Mutex
	sessions map[string]*Session
}

func NewManager(cfg Config, gen ai.Generator, sink RecordSink, log *zap.Logger) *Manager {
	if log == nil {
		log = zap.NewNop()
	}

	return &Manager{
		cfg:      cfg.withDefaults(),
		gen:      gen,
		sink:     sink,
		logger:   log,
		sessions: make(map[string]*Session),
	}
}

// StartSession creates a new session and returns its identifier together with
// the opening greeting. The session then waits for the candidate's name.
func (m *Manager) StartSession(ctx context.Context) (string, string) {
	session := newSession(uuid.NewString())

	greeting, err := m.generate(ctx, greetingTemperature,
		ai.Message{Role: ai.RoleSystem, Content: systemPrompt},
		ai.Message{Role: ai.RoleUser, Content: greetingPrompt},
	)
	if err != nil {
		m.logger.Warn("greeting generation failed, using canned greeting",
			zap.String(logger.FieldSession, session.id), zap.Error(err))
		greeting = defaultGreeting
	}

	session.appendTranscript(ai.RoleAssistant, greeting)
	session.state = StateName

	m.mu.Lock()
	m.sessions[session.id] = session
	m.mu.Unlock()

	return session.id, greeting
}

// Session returns the live session with the given identifier, or nil.
func (m *Manager) Session(id string) *Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sessions[id]
}

// ProcessInput runs one conversation turn. The reply and shouldEnd flag are
// always valid; a non-nil error reports either an unknown session or a
// storage failure on the ending turn. Extraction misses and generation
// failures are recovered internally and never surface as errors.
func (m *Manager) ProcessInput(ctx context.Context, sessionID, input string) (string, bool, error) {
	m.mu.Lock()
	session := m.sessions[sessionID]
	m.mu.Unlock()

	if session == nil {
		return "", false, fmt.Errorf("%w: %s", ErrSessionNotFound, sessionID)
	}

	session.appendTranscript(ai.RoleUser, input)

	// The exit scan runs before any field processing and supersedes it.
	if m.isExitIntent(input) {
		session.state = StateClosing
		reply := m.closingMessage(ctx, session)
		session.state = StateEnded
		session.appendTranscript(ai.RoleAssistant, reply)
		return reply, true, m.finish(session)
	}

	var (
		reply string
		done  bool
	)

	switch session.state {
	case StateName:
		reply = handleName(session, input)
	case StateContact:
		reply = handleContact(session, input)
	case StateExperience:
		reply = handleExperience(session, input)
	case StatePosition:
		reply = handlePosition(session, input)
	case StateLocation:
		reply = handleLocation(session, input)
	case StateTechStack:
		reply = m.handleTechStack(ctx, session, input)
	case StateTechnicalQuestions:
		reply, done = m.handleTechnicalQuestion(ctx, session, input)
	default:
		reply = m.handleFallback(ctx, session, input)
	}

	session.appendTranscript(ai.RoleAssistant, reply)

	if done {
		return reply, true, m.finish(session)
	}

	return reply, false, nil
}

// isExitIntent scans the input for exit keywords. Keywords match as whole
// words so that "Backend Engineer" does not trip over "end".
func (m *Manager) isExitIntent(input string) bool {
	lowered := strings.ToLower(strings.TrimSpace(input))
	tokens := strings.FieldsFunc(lowered, func(r rune) bool {
		return !unicode.IsLetter(r)
	})

	for _, keyword := range m.cfg.ExitKeywords {
		if lowered == keyword {
			return true
		}
		for _, token := range tokens {
			if token == keyword {
				return true
			}
		}
	}
	return false
}

func handleName(s *Session, input string) string {
	name := strings.TrimSpace(input)
	s.record.FullName = name
	s.state = StateContact

	return fmt.Sprintf("Great! I've noted your name as %s. Now, could you please share your email address?", name)
}

// handleContact requires an email before a phone number is accepted, even
// when the phone arrives first. The asymmetry guides the conversation and is
// preserved for behavioral compatibility.
func handleContact(s *Session, input string) string {
	emails := ExtractEmails(input)
	phones := ExtractPhones(input)

	if s.record.Email != "" {
		if len(phones) == 0 {
			return "I couldn't find a valid phone number. Could you provide it in formats like: 123-456-7890 or (123) 456-7890?"
		}
		s.record.Phone = phones[0]
		s.state = StateExperience
		return fmt.Sprintf("Perfect! Phone saved: %s. How many years of experience do you have?", phones[0])
	}

	if len(emails) == 0 {
		return "I couldn't find a valid email address. Could you please provide your email in the format: yourname@example.com?"
	}

	s.record.Email = emails[0]

	if len(phones) > 0 {
		s.record.Phone = phones[0]
		s.state = StateExperience
		return fmt.Sprintf("Thank you! Email: %s, Phone: %s. How many years of experience do you have?", emails[0], phones[0])
	}

	return fmt.Sprintf("Got your email: %s. Could you also share your phone number?", emails[0])
}

func handleExperience(s *Session, input string) string {
	experience := strings.TrimSpace(input)
	s.record.YearsOfExperience = experience
	s.state = StatePosition

	return fmt.Sprintf("Perfect! %s years noted. What positions interest you?", experience)
}

func handlePosition(s *Session, input string) string {
	positions := strings.TrimSpace(input)
	s.record.DesiredPositions = positions
	s.state = StateLocation

	return fmt.Sprintf("Great! Interested in: %s. What's your preferred location?", positions)
}

func handleLocation(s *Session, input string) string {
	location := strings.TrimSpace(input)
	s.record.CurrentLocation = location
	s.state = StateTechStack

	return fmt.Sprintf("%s noted. Tell me about your tech stack.", location)
}

func (m *Manager) handleTechStack(ctx context.Context, s *Session, input string) string {
	techStack := ParseTechStack(input)
	s.record.TechStack = techStack

	questions := m.generateQuestions(ctx, s.id, techStack)
	s.queue.Set(questions)
	s.state = StateTechnicalQuestions

	first, _ := s.queue.Next()
	return fmt.Sprintf("Excellent! Tech stack: %s.\n\nQ1: %s", strings.Join(techStack, ", "), first)
}

func (m *Manager) handleTechnicalQuestion(ctx context.Context, s *Session, input string) (string, bool) {
	issued := s.queue.Cursor() - 1
	s.record.RecordAnswer(issued, input)

	if s.queue.HasMore() {
		next, _ := s.queue.Next()
		return fmt.Sprintf("Great answer!\n\nQ%d: %s", issued+2, next), false
	}

	s.state = StateClosing
	reply := m.closingMessage(ctx, s)
	s.state = StateEnded

	return reply, true
}

func (m *Manager) handleFallback(ctx context.Context, s *Session, input string) string {
	messages := []ai.Message{
		{Role: ai.RoleSystem, Content: systemPrompt},
		{Role: ai.RoleUser, Content: fallbackPrompt},
	}
	messages = append(messages, s.contextWindow()...)
	messages = append(messages, ai.Message{Role: ai.RoleUser, Content: fmt.Sprintf("User said: %s", input)})

	reply, err := m.generate(ctx, defaultTemperature, messages...)
	if err != nil {
		m.logger.Debug("fallback generation failed",
			zap.String(logger.FieldSession, s.id), zap.Error(err))
		return defaultFallback
	}

	return reply
}

func (m *Manager) generateQuestions(ctx context.Context, sessionID string, techStack []string) []string {
	prompt := buildQuestionsPrompt(techStack, m.cfg.MinQuestions, m.cfg.MaxQuestions)

	raw, err := m.generate(ctx, questionTemperature,
		ai.Message{Role: ai.RoleSystem, Content: "You are an expert technical interviewer."},
		ai.Message{Role: ai.RoleUser, Content: prompt},
	)
	if err != nil {
		m.logger.Warn("question generation failed, using default question",
			zap.String(logger.FieldSession, sessionID), zap.Error(err))
		return []string{defaultQuestion}
	}

	questions := parseQuestions(raw, m.cfg.MaxQuestions)
	if len(questions) == 0 {
		return []string{defaultQuestion}
	}

	return questions
}

// parseQuestions extracts question lines from the generated text, dropping
// short noise lines and capping the result.
func parseQuestions(raw string, limit int) []string {
	var questions []string
	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSpace(line)
		if len(line) > minQuestionLength {
			questions = append(questions, line)
		}
		if len(questions) == limit {
			break
		}
	}
	return questions
}

func (m *Manager) closingMessage(ctx context.Context, s *Session) string {
	if s.record.FullName == "" {
		return defaultClosing
	}

	reply, err := m.generate(ctx, defaultTemperature,
		ai.Message{Role: ai.RoleSystem, Content: systemPrompt},
		ai.Message{Role: ai.RoleUser, Content: buildClosingPrompt(s.record.FullName)},
	)
	if err != nil {
		m.logger.Debug("closing generation failed, using canned closing",
			zap.String(logger.FieldSession, s.id), zap.Error(err))
		return defaultClosing
	}

	return reply
}

// finish hands the accumulated record to the sink and discards the session.
// Partial records are persisted too; early exit never drops collected fields.
func (m *Manager) finish(s *Session) error {
	m.mu.Lock()
	delete(m.sessions, s.id)
	m.mu.Unlock()

	if m.sink == nil {
		return nil
	}

	id, err := m.sink.Save(s.record)
	if err != nil {
		m.logger.Error("saving candidate record failed",
			zap.String(logger.FieldSession, s.id), zap.Error(err))
		return fmt.Errorf("saving candidate record: %w", err)
	}

	m.logger.Info("candidate record saved",
		zap.String(logger.FieldSession, s.id),
		zap.String("record_id", id),
		zap.Bool("complete", s.record.Complete()),
	)

	return nil
}

func (m *Manager) generate(ctx context.Context, temperature float32, messages ...ai.Message) (string, error) {
	if m.gen == nil {
		return "", errors.New("no text generator configured")
	}
	return m.gen.Generate(ctx, messages, temperature)
}
