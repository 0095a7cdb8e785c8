package model

import "time"

// Answer is a player's pick for the current question. Correct and
// PointsAwarded stay nil until the question is revealed.
type Answer struct {
	QuestionID    string    `json:"questionId" bson:"questionId"`
	Option        string    `json:"option" bson:"option"`
	ReceivedAt    time.Time `json:"receivedAt" bson:"receivedAt"`
	ClientTs      int64     `json:"clientTs,omitempty" bson:"clientTs,omitempty"`
	Correct       *bool     `json:"correct,omitempty" bson:"correct,omitempty"`
	PointsAwarded *int      `json:"pointsAwarded,omitempty" bson:"pointsAwarded,omitempty"`
}

// IsScored reports whether reveal has fixed this answer's outcome
func (a *Answer) IsScored() bool {
	return a.Correct != nil && a.PointsAwarded != nil
}

// Clone returns a copy that shares no pointers with a
func (a *Answer) Clone() Answer {
	c := *a
	if a.Correct != nil {
		v := *a.Correct
		c.Correct = &v
	}
	if a.PointsAwarded != nil {
		v := *a.PointsAwarded
		c.PointsAwarded = &v
	}
	return c
}
