package ai

import "context"

// Message roles understood by generators.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is a single entry of a generation request.
type Message struct {
	Role    string
	Content string
}

// Generator produces free text from an ordered list of messages. Any provider
// failure is returned as an error; callers substitute their own fallbacks.
type Generator interface {
	Generate(ctx context.Context, messages []Message, temperature float32) (string, error)
	Model() string
}
