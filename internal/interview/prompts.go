package interview

import (
	"strconv"
	"strings"

	_ "embed"
)

//go:embed prompts/system.md
var systemPrompt string

//go:embed prompts/greeting.md
var greetingPrompt string

//go:embed prompts/questions.md
var questionsPromptTemplate string

//go:embed prompts/fallback.md
var fallbackPrompt string

//go:embed prompts/closing.md
var closingPromptTemplate string

// Canned replies used when the text-generation collaborator is unavailable.
const (
	defaultGreeting = "Welcome to TalentScout! I'm your AI hiring assistant. " +
		"Could you please share your full name to get started?"
	defaultClosing = "Thank you for your time! Your information has been recorded. " +
		"We'll be in touch within 2-3 business days. Have a great day!"
	defaultFallback = "Could you rephrase your answer? I'm here to help screen candidates."
	defaultQuestion = "Tell me about a challenging project you've worked on."
)

func buildQuestionsPrompt(techStack []string, minCount, maxCount int) string {
	prompt := strings.ReplaceAll(questionsPromptTemplate, "{{TECH_LIST}}", strings.Join(techStack, ", "))
	prompt = strings.ReplaceAll(prompt, "{{MIN}}", strconv.Itoa(minCount))
	return strings.ReplaceAll(prompt, "{{MAX}}", strconv.Itoa(maxCount))
}

func buildClosingPrompt(candidateName string) string {
	return strings.ReplaceAll(closingPromptTemplate, "{{CANDIDATE_NAME}}", candidateName)
}
