package model

import "time"

// AnswerRecord is the archived outcome of one player's answer
type AnswerRecord struct {
	PlayerID   string    `json:"playerId" bson:"playerId"`
	Nickname   string    `json:"nickname" bson:"nickname"`
	Option     string    `json:"option" bson:"option"`
	ReceivedAt time.Time `json:"receivedAt" bson:"receivedAt"`
	ResponseMs int64     `json:"responseMs" bson:"responseMs"`
	Correct    bool      `json:"correct" bson:"correct"`
	Points     int       `json:"points" bson:"points"`
}

// RoundRecord is one revealed question with every scored answer
type RoundRecord struct {
	ID             string         `json:"id" bson:"_id,omitempty"`
	GameID         string         `json:"gameId" bson:"gameId"`
	QuestionNumber int            `json:"questionNumber" bson:"questionNumber"`
	Question       Question       `json:"question" bson:"question"`
	Answers        []AnswerRecord `json:"answers" bson:"answers"`
	RevealedAt     time.Time      `json:"revealedAt" bson:"revealedAt"`
}

// RoomEventKind identifies what changed in the room
type RoomEventKind string

const (
	EventStatusChanged RoomEventKind = "status_changed"
	EventRoundRevealed RoomEventKind = "round_revealed"
	EventReset         RoomEventKind = "reset"
)

// RoomEvent is published after a committed transition for background consumers
type RoomEvent struct {
	Kind        RoomEventKind
	Meta        RoomMeta
	Round       *RoundRecord
	Leaderboard []LeaderboardEntry
}
