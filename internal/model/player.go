package model

import "time"

// Player represents a participant in the room
type Player struct {
	ID            string    `json:"id" bson:"id"`
	Nickname      string    `json:"nickname" bson:"nickname"`
	Connected     bool      `json:"connected" bson:"connected"`
	TotalPoints   int       `json:"totalPoints" bson:"totalPoints"`
	CurrentAnswer *Answer   `json:"currentAnswer,omitempty" bson:"currentAnswer,omitempty"`
	JoinedAt      time.Time `json:"joinedAt" bson:"joinedAt"`
	JoinSeq       int       `json:"-" bson:"-"` // tie-break when JoinedAt is equal
}

// Clone returns a deep copy safe to hand out of the game gate
func (p *Player) Clone() Player {
	c := *p
	if p.CurrentAnswer != nil {
		a := p.CurrentAnswer.Clone()
		c.CurrentAnswer = &a
	}
	return c
}

// PlayerInfo is the roster view of a player
type PlayerInfo struct {
	ID       string `json:"id"`
	Nickname string `json:"nickname"`
}
