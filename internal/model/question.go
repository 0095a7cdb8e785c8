package model

import "time"

// Option keys, in display order
var OptionKeys = []string{"A", "B", "C", "D"}

// IsValidOption reports whether key is one of A..D
func IsValidOption(key string) bool {
	for _, k := range OptionKeys {
		if k == key {
			return true
		}
	}
	return false
}

// Question is a multiple-choice question asked to the whole room
type Question struct {
	ID         string            `json:"id" bson:"id"`
	Text       string            `json:"text" bson:"text"`
	Options    map[string]string `json:"options" bson:"options"` // {"A": "Mars", "B": "Venus", ...}
	Correct    string            `json:"correct" bson:"correct"`
	DurationMs int               `json:"durationMs" bson:"durationMs"`
	AskedAt    time.Time         `json:"askedAt,omitempty" bson:"askedAt,omitempty"`
	ClosesAt   time.Time         `json:"closesAt,omitempty" bson:"closesAt,omitempty"`
}

// Duration returns the answer window as a time.Duration
func (q *Question) Duration() time.Duration {
	return time.Duration(q.DurationMs) * time.Millisecond
}

// Clone returns a copy with its own options map
func (q *Question) Clone() *Question {
	c := *q
	c.Options = make(map[string]string, len(q.Options))
	for k, v := range q.Options {
		c.Options[k] = v
	}
	return &c
}
