package quiz

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stemsi/exstem-enroll/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func formFrom(values map[string]string) func(string) string {
	return func(id string) string { return values[id] }
}

func TestScore_Scenarios(t *testing.T) {
	q := Default()

	tests := []struct {
		name       string
		form       map[string]string
		score      int
		answered   int
		unanswered int
	}{
		{
			name: "one wrong answer",
			form: map[string]string{
				"1": "Language", "2": "4", "3": "Framework",
				"4": "Hot Mail", "5": "Styling", "6": "Logic",
			},
			score: 5, answered: 6, unanswered: 0,
		},
		{
			name:  "no answers",
			form:  map[string]string{},
			score: 0, answered: 0, unanswered: 6,
		},
		{
			name:  "case sensitive match",
			form:  map[string]string{"1": "language", "2": "4"},
			score: 1, answered: 2, unanswered: 4,
		},
		{
			name:  "unknown ids ignored",
			form:  map[string]string{"7": "Logic", "csrf": "x", "6": "Logic"},
			score: 1, answered: 1, unanswered: 5,
		},
		{
			name:  "empty values stay absent",
			form:  map[string]string{"1": "", "2": "", "3": "Framework"},
			score: 1, answered: 1, unanswered: 5,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			answers := q.Collect(formFrom(tt.form))
			score := q.Score(answers)
			sum := q.Summarize(answers, score)

			assert.Equal(t, tt.score, sum.Score)
			assert.Equal(t, tt.answered, sum.Answered)
			assert.Equal(t, tt.unanswered, sum.Unanswered)
			assert.Equal(t, 6, sum.Total)
			assert.Zero(t, sum.Flagged)
		})
	}
}

func TestCollect_NeverStoresEmptyEntries(t *testing.T) {
	answers := Default().Collect(formFrom(map[string]string{"4": ""}))
	_, ok := answers["4"]
	assert.False(t, ok)
	assert.Empty(t, answers)
}

func TestSummarize_AnsweredPlusUnansweredIsTotal(t *testing.T) {
	q := Default()
	ids := []string{"1", "2", "3", "4", "5", "6"}

	// Every subset of the six questions.
	for mask := 0; mask < 1<<len(ids); mask++ {
		answers := model.AnswerSet{}
		for i, id := range ids {
			if mask&(1<<i) != 0 {
				answers[id] = "x"
			}
		}
		score := q.Score(answers)
		sum := q.Summarize(answers, score)
		require.Equal(t, q.Total(), sum.Answered+sum.Unanswered, "mask %b", mask)
		require.LessOrEqual(t, sum.Score, q.Total())
	}
}

func TestQuestions_ReturnsCopy(t *testing.T) {
	q := Default()
	qs := q.Questions()
	qs[0].Options[0] = "Snake"
	qs[0].Answer = "Snake"

	assert.Equal(t, "Language", q.Questions()[0].Options[0])
	assert.Equal(t, 1, q.Score(model.AnswerSet{"1": "Language"}))
}

func TestLookup(t *testing.T) {
	q, ok := Lookup(ID)
	require.True(t, ok)
	assert.Equal(t, 6, q.Total())

	_, ok = Lookup("something-else")
	assert.False(t, ok)
}

func TestSelected(t *testing.T) {
	answers := model.AnswerSet{"2": "4"}
	assert.True(t, Selected(answers, "2", "4"))
	assert.False(t, Selected(answers, "2", "5"))
	assert.False(t, Selected(nil, "2", "4"))
}

func TestCollect_TruncatesLongAnswers(t *testing.T) {
	q := Default()

	answers := q.Collect(formFrom(map[string]string{
		"1": strings.Repeat("x", 40000),
		"2": strings.Repeat("ü", MaxAnswerLen+1),
		"3": "Framework",
	}))

	assert.Len(t, answers["1"], MaxAnswerLen)
	assert.Equal(t, strings.Repeat("ü", MaxAnswerLen), answers["2"])
	assert.True(t, utf8.ValidString(answers["2"]))
	assert.Equal(t, "Framework", answers["3"])
	assert.Equal(t, 1, q.Score(answers))

	for _, qu := range q.Questions() {
		for _, opt := range qu.Options {
			assert.LessOrEqual(t, utf8.RuneCountInString(opt), MaxAnswerLen)
		}
	}
}
