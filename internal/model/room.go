package model

import "time"

type RoomStatus string

const (
	RoomStatusLobby     RoomStatus = "lobby"
	RoomStatusActive    RoomStatus = "active"
	RoomStatusRevealing RoomStatus = "revealing"
)

// RoomMeta is the externally mirrored summary of the room
type RoomMeta struct {
	GameID            string     `json:"gameId"`
	Status            RoomStatus `json:"status"`
	QuestionNumber    int        `json:"questionNumber"`
	CurrentQuestionID string     `json:"currentQuestionId,omitempty"`
	ConnectedPlayers  int        `json:"connectedPlayers"`
	UpdatedAt         time.Time  `json:"updatedAt"`
}

// RoomSnapshot is a read-only view of the whole room
type RoomSnapshot struct {
	GameID          string             `json:"gameId,omitempty"`
	Status          RoomStatus         `json:"status"`
	QuestionNumber  int                `json:"questionNumber"`
	CurrentQuestion *Question          `json:"currentQuestion,omitempty"`
	History         []*Question        `json:"history"`
	Players         []Player           `json:"players"`
	Leaderboard     []LeaderboardEntry `json:"leaderboard"`
}
