package interview

import (
	"regexp"
	"strings"
	"unicode"
)

var emailPattern = regexp.MustCompile(`\b[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}\b`)

// phonePatterns are tried in priority order. The first pattern that yields any
// match wins and later patterns are skipped, even when they would match
// additional numbers. Changing this to a union would alter observable output
// for existing callers.
var phonePatterns = []*regexp.Regexp{
	regexp.MustCompile(`\b\d{3}[-.]?\d{3}[-.]?\d{4}\b`),
	regexp.MustCompile(`\(\d{3}\)\s?\d{3}[-.]?\d{4}\b`),
	regexp.MustCompile(`\+?1?\s?\d{10}\b`),
}

// defaultTechnology is returned when nothing usable is found in the input.
const defaultTechnology = "General Web Development"

// technologyCatalog is the fixed, ordered list of recognized technology names.
// Output of ParseTechStack preserves this order, not input order.
var technologyCatalog = []string{
	// Programming languages
	"Python", "JavaScript", "TypeScript", "Java", "C++", "C#", "Go", "Rust", "PHP", "Ruby",
	"Kotlin", "Swift", "Scala", "Perl", "R", "MATLAB", "Dart", "Objective-C",

	// Frontend frameworks
	"React", "Vue", "Angular", "Svelte", "Next.js", "Nuxt", "jQuery",

	// Backend frameworks
	"Django", "Flask", "FastAPI", "Spring", "Express", "NestJS", "Laravel", "ASP.NET", "Rails",

	// Databases
	"PostgreSQL", "MySQL", "MongoDB", "Redis", "Cassandra", "Firebase", "DynamoDB",
	"Oracle", "SQL Server", "MariaDB", "Elasticsearch",

	// Cloud and devops
	"AWS", "GCP", "Azure", "Docker", "Kubernetes", "Linux", "Git", "Jenkins", "GitLab CI",

	// Web technologies
	"HTML", "CSS", "SCSS", "SQL", "GraphQL", "REST", "API", "WebSocket",

	// Data and ML
	"TensorFlow", "PyTorch", "Scikit-learn", "Pandas", "NumPy", "Keras",

	// Other tools
	"Apache", "Nginx", "RabbitMQ", "Kafka",
}

// catalogMatchers compiles one case-insensitive matcher per catalog entry.
// Matches are anchored on word boundaries where the name starts or ends with a
// word character, so that "Go" does not fire inside "Django".
var catalogMatchers = buildCatalogMatchers()

func buildCatalogMatchers() []*regexp.Regexp {
	matchers := make([]*regexp.Regexp, 0, len(technologyCatalog))
	for _, name := range technologyCatalog {
		expr := regexp.QuoteMeta(name)
		if isWordRune(rune(name[0])) {
			expr = `\b` + expr
		}
		if isWordRune(rune(name[len(name)-1])) {
			expr += `\b`
		}
		matchers = append(matchers, regexp.MustCompile(`(?i)`+expr))
	}
	return matchers
}

func isWordRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}

// ExtractEmails returns all email-shaped tokens in appearance order.
func ExtractEmails(text string) []string {
	return emailPattern.FindAllString(text, -1)
}

// ExtractPhones returns phone-shaped tokens from the highest-priority pattern
// that matches, in appearance order. A nil result means no pattern matched.
func ExtractPhones(text string) []string {
	for _, pattern := range phonePatterns {
		if matches := pattern.FindAllString(text, -1); len(matches) > 0 {
			return matches
		}
	}
	return nil
}

// ParseTechStack extracts known technology names from free text, preserving
// catalog order and dropping duplicates. When no catalog entry matches, the
// input is split on commas, semicolons and whitespace and tokens longer than
// two characters are kept in input order. An empty result falls back to a
// single default entry.
func ParseTechStack(text string) []string {
	var found []string
	for i, matcher := range catalogMatchers {
		if matcher.MatchString(text) && !contains(found, technologyCatalog[i]) {
			found = append(found, technologyCatalog[i])
		}
	}

	if len(found) > 0 {
		return found
	}

	tokens := strings.FieldsFunc(text, func(r rune) bool {
		return r == ',' || r == ';' || unicode.IsSpace(r)
	})
	for _, token := range tokens {
		if len(token) > 2 {
			found = append(found, token)
		}
	}

	if len(found) > 0 {
		return found
	}

	return []string{defaultTechnology}
}

func contains(list []string, value string) bool {
	for _, item := range list {
		if item == value {
			return true
		}
	}
	return false
}
