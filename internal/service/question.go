package service

import (
	"fmt"
	"strings"

	"livequiz/internal/model"
)

// Bounds on the answer window an operator may set
const (
	MinQuestionSeconds     = 5
	MaxQuestionSeconds     = 300
	DefaultQuestionSeconds = 20
)

// BuildQuestion assembles a question from operator input. options are the
// texts for A..D in order; correct is case-insensitive. An empty id lets Ask
// generate one.
func BuildQuestion(id, text string, options []string, correct string, seconds int) (*model.Question, error) {
	if len(options) != len(model.OptionKeys) {
		return nil, fmt.Errorf("%w: need exactly %d options, got %d", ErrMalformedQuestion, len(model.OptionKeys), len(options))
	}
	if seconds < MinQuestionSeconds || seconds > MaxQuestionSeconds {
		return nil, fmt.Errorf("%w: time must be between %d and %d seconds", ErrMalformedQuestion, MinQuestionSeconds, MaxQuestionSeconds)
	}

	q := &model.Question{
		ID:         strings.TrimSpace(id),
		Text:       strings.TrimSpace(text),
		Options:    make(map[string]string, len(options)),
		Correct:    strings.ToUpper(strings.TrimSpace(correct)),
		DurationMs: seconds * 1000,
	}
	for i, key := range model.OptionKeys {
		q.Options[key] = strings.TrimSpace(options[i])
	}

	if err := validateQuestion(q); err != nil {
		return nil, err
	}
	return q, nil
}
