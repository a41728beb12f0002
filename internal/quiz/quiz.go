// Package quiz holds the fixed assessment and the pure scoring rules.
package quiz

import "github.com/stemsi/exstem-enroll/internal/model"

// ID identifies the built-in question set. Sessions store it instead of
// a copy of the questions.
const ID = "fundamentals-v1"

var questions = []model.Question{
	{ID: "1", OrderNum: 1, Prompt: "What is Python?", Options: []string{"Language", "Animal", "Car"}, Answer: "Language"},
	{ID: "2", OrderNum: 2, Prompt: "2 + 2 = ?", Options: []string{"3", "4", "5"}, Answer: "4"},
	{ID: "3", OrderNum: 3, Prompt: "Flask is a ?", Options: []string{"Framework", "Library", "IDE"}, Answer: "Framework"},
	{ID: "4", OrderNum: 4, Prompt: "HTML stands for?", Options: []string{"Hyper Text Markup Language", "Hot Mail", "Hyperlink"}, Answer: "Hyper Text Markup Language"},
	{ID: "5", OrderNum: 5, Prompt: "CSS is used for?", Options: []string{"Styling", "Programming", "Database"}, Answer: "Styling"},
	{ID: "6", OrderNum: 6, Prompt: "JS is used for?", Options: []string{"Logic", "Design", "Database"}, Answer: "Logic"},
}

// Quiz is an immutable, ordered question set.
type Quiz struct {
	id        string
	questions []model.Question
}

// Default returns the built-in six-question quiz.
func Default() Quiz {
	return Quiz{id: ID, questions: questions}
}

// Lookup resolves a stored quiz ID. Only the built-in quiz exists.
func Lookup(id string) (Quiz, bool) {
	if id != ID {
		return Quiz{}, false
	}
	return Default(), true
}

func (q Quiz) ID() string { return q.id }

// Total is the number of questions.
func (q Quiz) Total() int { return len(q.questions) }

// Questions returns a copy of the questions in order.
func (q Quiz) Questions() []model.Question {
	out := make([]model.Question, len(q.questions))
	for i, qu := range q.questions {
		qu.Options = append([]string(nil), qu.Options...)
		out[i] = qu
	}
	return out
}

// MaxAnswerLen caps a stored answer, in runes. Every option is far shorter,
// so truncation never changes a score.
const MaxAnswerLen = 256

// Collect builds an answer set from submitted values. Only IDs in the quiz
// are considered; empty values are left out and long ones are truncated to
// MaxAnswerLen.
func (q Quiz) Collect(get func(id string) string) model.AnswerSet {
	answers := make(model.AnswerSet, len(q.questions))
	for _, qu := range q.questions {
		if v := get(qu.ID); v != "" {
			answers[qu.ID] = truncate(v, MaxAnswerLen)
		}
	}
	return answers
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	i := 0
	for pos := range s {
		if i == n {
			return s[:pos]
		}
		i++
	}
	return s
}

// Score counts questions whose submitted value matches the correct answer
// exactly (case-sensitive).
func (q Quiz) Score(answers model.AnswerSet) int {
	score := 0
	for _, qu := range q.questions {
		if v, ok := answers[qu.ID]; ok && v == qu.Answer {
			score++
		}
	}
	return score
}

// Summarize produces the result sheet. Answer IDs outside the quiz do not
// count as answered.
func (q Quiz) Summarize(answers model.AnswerSet, score int) model.ResultSummary {
	answered := 0
	for _, qu := range q.questions {
		if _, ok := answers[qu.ID]; ok {
			answered++
		}
	}
	return model.ResultSummary{
		Total:      q.Total(),
		Answered:   answered,
		Unanswered: q.Total() - answered,
		Score:      score,
		Flagged:    0,
	}
}

// Selected reports whether option is the stored answer for question id.
// Used by the assessment template to pre-fill radio buttons.
func Selected(answers model.AnswerSet, id, option string) bool {
	v, ok := answers[id]
	return ok && v == option
}
