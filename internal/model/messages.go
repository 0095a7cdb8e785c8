package model

import (
	"encoding/json"
	"time"
)

// MessageType is the envelope tag of a WebSocket message
type MessageType string

// Client to server
const (
	MsgJoin   MessageType = "join"
	MsgAnswer MessageType = "answer"
	MsgPing   MessageType = "ping"
)

// Server to client
const (
	MsgSession      MessageType = "session"
	MsgLobbyState   MessageType = "lobby_state"
	MsgGameStarted  MessageType = "game_started"
	MsgQuestion     MessageType = "question"
	MsgTimerTick    MessageType = "timer_tick"
	MsgAnswerAck    MessageType = "answer_ack"
	MsgAnswerResult MessageType = "answer_result"
	MsgLeaderboard  MessageType = "leaderboard"
	MsgPong         MessageType = "pong"
	MsgError        MessageType = "error"
)

// Envelope is the wire format in both directions
type Envelope struct {
	Type MessageType     `json:"type"`
	Data json.RawMessage `json:"data"`
}

// OutboundEnvelope carries a typed payload before encoding
type OutboundEnvelope struct {
	Type MessageType `json:"type"`
	Data interface{} `json:"data"`
}

type JoinMessage struct {
	Nickname string `json:"nickname"`
}

type AnswerMessage struct {
	QuestionID string `json:"questionId"`
	Option     string `json:"option"`
	ClientTs   int64  `json:"clientTs"`
}

type PingMessage struct {
	Nonce string `json:"nonce"`
}

type SessionMessage struct {
	SessionID string `json:"sessionId"`
	Token     string `json:"token"`
}

type LobbyStateMessage struct {
	Players   []PlayerInfo `json:"players"`
	GameState RoomStatus   `json:"gameState"`
}

type GameStartedMessage struct {
	StartAt time.Time `json:"startAt"`
}

type QuestionMessage struct {
	QuestionID string            `json:"questionId"`
	Text       string            `json:"text"`
	Options    map[string]string `json:"options"`
	DurationMs int               `json:"durationMs"`
	AskedAt    time.Time         `json:"askedAt"`
}

type TimerTickMessage struct {
	QuestionID  string `json:"questionId"`
	RemainingMs int64  `json:"remainingMs"`
}

type AnswerAckMessage struct {
	QuestionID string    `json:"questionId"`
	ReceivedAt time.Time `json:"receivedAt"`
}

type AnswerResultMessage struct {
	QuestionID      string `json:"questionId"`
	Correct         string `json:"correct"`
	YouCorrect      bool   `json:"youCorrect"`
	YourPointsThisQ int    `json:"yourPointsThisQ"`
}

// LeaderboardEntry is one ranked row. LastDelta is nil for players who
// did not answer the last question.
type LeaderboardEntry struct {
	ID          string `json:"id" bson:"id"`
	Nickname    string `json:"nickname" bson:"nickname"`
	TotalPoints int    `json:"totalPoints" bson:"totalPoints"`
	LastDelta   *int   `json:"lastDelta,omitempty" bson:"lastDelta,omitempty"`
}

type LeaderboardMessage struct {
	Entries        []LeaderboardEntry `json:"entries"`
	QuestionNumber int                `json:"questionNumber"`
}

type PongMessage struct {
	Nonce    string `json:"nonce"`
	ServerTs int64  `json:"serverTs"`
}

type ErrorMessage struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
}
