package model

// Question is a single multiple-choice item.
type Question struct {
	ID       string   `json:"id"`
	Prompt   string   `json:"question"`
	Options  []string `json:"options"`
	Answer   string   `json:"-"`
	OrderNum int      `json:"order_num"`
}

// AnswerSet maps question ID to the submitted option value. It is partial:
// unanswered questions are absent, never present with an empty value.
type AnswerSet map[string]string

// ResultSummary is the score sheet shown after submission.
type ResultSummary struct {
	Total      int `json:"total"`
	Answered   int `json:"answered"`
	Unanswered int `json:"unanswered"`
	Score      int `json:"score"`
	// Flagged is always zero; nothing in the app flags questions.
	Flagged int `json:"flagged"`
}
