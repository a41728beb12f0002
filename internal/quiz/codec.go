package quiz

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/stemsi/exstem-enroll/internal/model"
)

// codecVersion is written into every encoded answer set.
const codecVersion = 1

// ErrMalformedAnswers is returned when a stored answer blob cannot be decoded.
var ErrMalformedAnswers = errors.New("malformed stored answers")

type envelope struct {
	Version int               `json:"v"`
	Answers map[string]string `json:"answers"`
}

// EncodeAnswers serializes an answer set for storage in a single cell.
func EncodeAnswers(answers model.AnswerSet) (string, error) {
	env := envelope{Version: codecVersion, Answers: map[string]string{}}
	for k, v := range answers {
		env.Answers[k] = v
	}
	raw, err := json.Marshal(env)
	if err != nil {
		return "", fmt.Errorf("encode answers: %w", err)
	}
	return string(raw), nil
}

// DecodeAnswers parses a stored blob. Blank cells and the legacy "{}" marker
// decode to an empty set.
func DecodeAnswers(raw string) (model.AnswerSet, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" || raw == "{}" {
		return model.AnswerSet{}, nil
	}

	var env envelope
	dec := json.NewDecoder(strings.NewReader(raw))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&env); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedAnswers, err)
	}
	if env.Version != codecVersion {
		return nil, fmt.Errorf("%w: unsupported version %d", ErrMalformedAnswers, env.Version)
	}

	answers := make(model.AnswerSet, len(env.Answers))
	for k, v := range env.Answers {
		if v == "" {
			continue
		}
		answers[k] = v
	}
	return answers, nil
}
