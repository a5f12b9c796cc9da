package interview

// MaxQuestions caps how many technical questions a single session may carry.
const MaxQuestions = 5

// QuestionQueue holds an ordered set of generated follow-up questions and a
// read cursor. Not safe for concurrent use; each session owns its own queue.
type QuestionQueue struct {
	questions []string
	cursor    int
}

// Set replaces the queue contents, truncating to MaxQuestions, and resets the
// cursor to the beginning.
func (q *QuestionQueue) Set(questions []string) {
	if len(questions) > MaxQuestions {
		questions = questions[:MaxQuestions]
	}
	q.questions = questions
	q.cursor = 0
}

// Next returns the question at the cursor and advances it. The second return
// value is false once the queue is exhausted.
func (q *QuestionQueue) Next() (string, bool) {
	if q.cursor >= len(q.questions) {
		return "", false
	}
	question := q.questions[q.cursor]
	q.cursor++
	return question, true
}

// HasMore reports whether unissued questions remain.
func (q *QuestionQueue) HasMore() bool {
	return q.cursor < len(q.questions)
}

// Cursor returns the index of the next question to issue.
func (q *QuestionQueue) Cursor() int {
	return q.cursor
}

// Len returns the total number of questions loaded.
func (q *QuestionQueue) Len() int {
	return len(q.questions)
}
