package service

import (
	"errors"
	"fmt"
	"log"
	"sort"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"livequiz/internal/model"
)

const (
	MinNicknameLen = 2
	MaxNicknameLen = 20
)

// Client-facing rejections. Each is reported to the requesting session only.
var (
	ErrInvalidNickname  = &model.GameError{Code: model.CodeInvalidNickname, Message: "Nickname must be 2-20 characters"}
	ErrNicknameMismatch = &model.GameError{Code: model.CodeInvalidNickname, Message: "Nickname does not match this session"}
	ErrNicknameTaken    = &model.GameError{Code: model.CodeNicknameTaken, Message: "This nickname is already taken"}
	ErrGameInProgress   = &model.GameError{Code: model.CodeGameInProgress, Message: "Cannot join game in progress"}
	ErrInvalidQuestion  = &model.GameError{Code: model.CodeInvalidQuestion, Message: "No active question or question mismatch"}
	ErrQuestionClosed   = &model.GameError{Code: model.CodeQuestionClosed, Message: "Question is no longer accepting answers"}
	ErrAlreadyAnswered  = &model.GameError{Code: model.CodeAlreadyAnswered, Message: "You have already answered this question"}
	ErrInvalidOption    = &model.GameError{Code: model.CodeInvalidOption, Message: "Option must be A, B, C, or D"}
)

// Operator misuse and other non-client errors
var (
	ErrNotInLobby          = errors.New("game is not in lobby state")
	ErrNotActive           = errors.New("game is not active")
	ErrNoCurrentQuestion   = errors.New("no active question to reveal")
	ErrMalformedQuestion   = errors.New("malformed question")
	ErrDuplicateQuestionID = errors.New("question id already used")
	ErrUnknownPlayer       = errors.New("player has not joined")
)

// GameService owns the room: status, roster, current question, history and
// question counter. Every operation runs under a single mutex (the gate).
type GameService struct {
	mu sync.Mutex

	status         model.RoomStatus
	gameID         string
	players        map[string]*model.Player
	order          []string // session ids in join order
	current        *model.Question
	history        []*model.Question
	questionNumber int

	joinSeq     int
	questionSeq int
	usedIDs     map[string]struct{}

	broadcaster Broadcaster
	observer    RoomObserver
	now         func() time.Time
}

// NewGameService creates a room in the lobby
func NewGameService() *GameService {
	return &GameService{
		status:  model.RoomStatusLobby,
		players: make(map[string]*model.Player),
		usedIDs: make(map[string]struct{}),
		now:     time.Now,
	}
}

// SetBroadcaster sets the broadcaster for WebSocket events
func (s *GameService) SetBroadcaster(b Broadcaster) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.broadcaster = b
}

// SetObserver sets the consumer of committed room events
func (s *GameService) SetObserver(o RoomObserver) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.observer = o
}

// SetNow replaces the wall clock, used by tests
func (s *GameService) SetNow(now func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = now
}

// Join admits a new player in the lobby or reconnects a known session.
func (s *GameService) Join(sessionID, nickname string) error {
	nickname = strings.TrimSpace(nickname)
	if n := utf8.RuneCountInString(nickname); n < MinNicknameLen || n > MaxNicknameLen {
		return ErrInvalidNickname
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, p := range s.players {
		if p.ID != sessionID && strings.EqualFold(p.Nickname, nickname) {
			return ErrNicknameTaken
		}
	}

	if existing, ok := s.players[sessionID]; ok {
		if !strings.EqualFold(existing.Nickname, nickname) {
			return ErrNicknameMismatch
		}
		existing.Connected = true
		log.Printf("Player %s (%s) reconnected", existing.Nickname, sessionID)
	} else {
		if s.status != model.RoomStatusLobby {
			return ErrGameInProgress
		}
		s.joinSeq++
		s.players[sessionID] = &model.Player{
			ID:        sessionID,
			Nickname:  nickname,
			Connected: true,
			JoinedAt:  s.now(),
			JoinSeq:   s.joinSeq,
		}
		s.order = append(s.order, sessionID)
		log.Printf("Player %s (%s) joined", nickname, sessionID)
	}

	s.broadcastLobbyLocked()
	s.publishLocked(model.EventStatusChanged, nil, nil)
	return nil
}

// Start locks the lobby and opens the game
func (s *GameService) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.status != model.RoomStatusLobby {
		log.Printf("Start ignored: game is %s", s.status)
		return ErrNotInLobby
	}

	s.status = model.RoomStatusActive
	s.gameID = uuid.New().String()

	s.broadcastLocked(model.MsgGameStarted, model.GameStartedMessage{StartAt: s.now()})
	s.publishLocked(model.EventStatusChanged, nil, nil)
	log.Printf("Game %s started with %d players", s.gameID, len(s.players))
	return nil
}

// Ask makes q the current question and opens it for answers. The caller's
// question is copied; its id and timestamps are set here. The returned copy
// and question number describe the question as it was opened.
func (s *GameService) Ask(q *model.Question) (*model.Question, int, error) {
	if err := validateQuestion(q); err != nil {
		log.Printf("Ask ignored: %v", err)
		return nil, 0, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.status != model.RoomStatusActive {
		log.Printf("Ask ignored: game is %s", s.status)
		return nil, 0, ErrNotActive
	}

	q = q.Clone()
	if q.ID == "" {
		q.ID = s.nextQuestionIDLocked()
	} else if _, used := s.usedIDs[q.ID]; used {
		log.Printf("Ask ignored: question id %s already used", q.ID)
		return nil, 0, fmt.Errorf("%w: %s", ErrDuplicateQuestionID, q.ID)
	}
	s.usedIDs[q.ID] = struct{}{}

	now := s.now()
	q.AskedAt = now
	q.ClosesAt = now.Add(q.Duration())

	if s.current != nil {
		log.Printf("Question %s replaced before reveal", s.current.ID)
	}
	s.current = q
	s.questionNumber++
	for _, p := range s.players {
		p.CurrentAnswer = nil
	}

	s.broadcastLocked(model.MsgQuestion, model.QuestionMessage{
		QuestionID: q.ID,
		Text:       q.Text,
		Options:    q.Clone().Options,
		DurationMs: q.DurationMs,
		AskedAt:    q.AskedAt,
	})
	s.publishLocked(model.EventStatusChanged, nil, nil)
	log.Printf("Question %d asked: %s", s.questionNumber, q.Text)
	return q.Clone(), s.questionNumber, nil
}

// Answer records a player's option for the open question and acks the sender.
func (s *GameService) Answer(sessionID, questionID, option string, clientTs int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	player, ok := s.players[sessionID]
	if !ok {
		return ErrUnknownPlayer
	}

	q := s.current
	if q == nil || q.ID != questionID || s.status != model.RoomStatusActive {
		return ErrInvalidQuestion
	}

	now := s.now()
	if now.After(q.ClosesAt) {
		return ErrQuestionClosed
	}
	if player.CurrentAnswer != nil && player.CurrentAnswer.QuestionID == questionID {
		return ErrAlreadyAnswered
	}
	if !model.IsValidOption(option) {
		return ErrInvalidOption
	}

	player.CurrentAnswer = &model.Answer{
		QuestionID: questionID,
		Option:     option,
		ReceivedAt: now,
		ClientTs:   clientTs,
	}

	s.sendLocked(sessionID, model.MsgAnswerAck, model.AnswerAckMessage{
		QuestionID: questionID,
		ReceivedAt: now,
	})
	return nil
}

// Reveal scores the current question and publishes results.
func (s *GameService) Reveal() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.revealLocked()
}

func (s *GameService) revealLocked() error {
	q := s.current
	if q == nil {
		log.Printf("No active question to reveal")
		return ErrNoCurrentQuestion
	}

	s.status = model.RoomStatusRevealing

	type result struct {
		sessionID string
		msg       model.AnswerResultMessage
	}
	var results []result

	round := &model.RoundRecord{
		GameID:         s.gameID,
		QuestionNumber: s.questionNumber,
		Question:       *q.Clone(),
		RevealedAt:     s.now(),
	}

	for _, id := range s.order {
		p := s.players[id]
		a := p.CurrentAnswer
		if a == nil || a.QuestionID != q.ID || a.IsScored() {
			continue
		}

		correct := a.Option == q.Correct
		responseTime := a.ReceivedAt.Sub(q.AskedAt)
		points := Points(float64(responseTime)/float64(time.Millisecond), q.DurationMs, correct)

		a.Correct = &correct
		a.PointsAwarded = &points
		p.TotalPoints += points

		results = append(results, result{
			sessionID: p.ID,
			msg: model.AnswerResultMessage{
				QuestionID:      q.ID,
				Correct:         q.Correct,
				YouCorrect:      correct,
				YourPointsThisQ: points,
			},
		})
		round.Answers = append(round.Answers, model.AnswerRecord{
			PlayerID:   p.ID,
			Nickname:   p.Nickname,
			Option:     a.Option,
			ReceivedAt: a.ReceivedAt,
			ResponseMs: responseTime.Milliseconds(),
			Correct:    correct,
			Points:     points,
		})
	}

	s.history = append(s.history, q)
	s.current = nil
	s.status = model.RoomStatusActive

	for _, r := range results {
		s.sendLocked(r.sessionID, model.MsgAnswerResult, r.msg)
	}
	board := s.leaderboardLocked()
	s.broadcastLocked(model.MsgLeaderboard, model.LeaderboardMessage{
		Entries:        board,
		QuestionNumber: s.questionNumber,
	})
	s.publishLocked(model.EventRoundRevealed, round, board)

	log.Printf("Answers revealed for question %d (%d answers). Correct answer was: %s",
		s.questionNumber, len(results), q.Correct)
	return nil
}

// End publishes the final leaderboard, resets the room to the lobby and
// returns the standings it published.
func (s *GameService) End() model.LeaderboardMessage {
	s.mu.Lock()
	defer s.mu.Unlock()

	final := model.LeaderboardMessage{
		Entries:        s.leaderboardLocked(),
		QuestionNumber: s.questionNumber,
	}
	s.broadcastLocked(model.MsgLeaderboard, final)
	s.resetLocked()
	log.Printf("Game ended and reset to lobby")
	return final
}

// Reset forces the room back to the lobby, erasing points and history
func (s *GameService) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.resetLocked()
	log.Printf("Game reset to lobby state")
}

func (s *GameService) resetLocked() {
	s.status = model.RoomStatusLobby
	s.gameID = ""
	s.current = nil
	s.history = nil
	s.questionNumber = 0
	for _, p := range s.players {
		p.TotalPoints = 0
		p.CurrentAnswer = nil
	}

	s.broadcastLobbyLocked()
	s.publishLocked(model.EventReset, nil, nil)
}

// Disconnect marks the session's player as gone. The player, its points and
// any pending answer are kept.
func (s *GameService) Disconnect(sessionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.players[sessionID]
	if !ok {
		return
	}
	p.Connected = false
	log.Printf("Player %s (%s) disconnected", p.Nickname, sessionID)

	s.broadcastLobbyLocked()
	s.publishLocked(model.EventStatusChanged, nil, nil)
}

// Tick broadcasts the remaining time of the open question, or reveals it
// once its deadline has passed.
func (s *GameService) Tick() {
	s.mu.Lock()
	defer s.mu.Unlock()

	q := s.current
	if q == nil || s.status != model.RoomStatusActive {
		return
	}

	remaining := q.ClosesAt.Sub(s.now())
	if remaining > 0 {
		s.broadcastLocked(model.MsgTimerTick, model.TimerTickMessage{
			QuestionID:  q.ID,
			RemainingMs: remaining.Milliseconds(),
		})
		return
	}

	s.revealLocked()
}

// CurrentStatus returns the room status
func (s *GameService) CurrentStatus() model.RoomStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

// CurrentPlayers returns copies of every player in join order, connected or not
func (s *GameService) CurrentPlayers() []model.Player {
	s.mu.Lock()
	defer s.mu.Unlock()

	players := make([]model.Player, 0, len(s.order))
	for _, id := range s.order {
		players = append(players, s.players[id].Clone())
	}
	return players
}

// Leaderboard returns the current standings of connected players
func (s *GameService) Leaderboard() model.LeaderboardMessage {
	s.mu.Lock()
	defer s.mu.Unlock()

	return model.LeaderboardMessage{
		Entries:        s.leaderboardLocked(),
		QuestionNumber: s.questionNumber,
	}
}

// Snapshot returns a consistent copy of the whole room
func (s *GameService) Snapshot() model.RoomSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := model.RoomSnapshot{
		GameID:         s.gameID,
		Status:         s.status,
		QuestionNumber: s.questionNumber,
		History:        make([]*model.Question, 0, len(s.history)),
		Players:        make([]model.Player, 0, len(s.order)),
		Leaderboard:    s.leaderboardLocked(),
	}
	if s.current != nil {
		snap.CurrentQuestion = s.current.Clone()
	}
	for _, q := range s.history {
		snap.History = append(snap.History, q.Clone())
	}
	for _, id := range s.order {
		snap.Players = append(snap.Players, s.players[id].Clone())
	}
	return snap
}

func (s *GameService) leaderboardLocked() []model.LeaderboardEntry {
	ranked := make([]*model.Player, 0, len(s.order))
	for _, id := range s.order {
		if p := s.players[id]; p.Connected {
			ranked = append(ranked, p)
		}
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		a, b := ranked[i], ranked[j]
		if a.TotalPoints != b.TotalPoints {
			return a.TotalPoints > b.TotalPoints
		}
		if !a.JoinedAt.Equal(b.JoinedAt) {
			return a.JoinedAt.Before(b.JoinedAt)
		}
		return a.JoinSeq < b.JoinSeq
	})

	entries := make([]model.LeaderboardEntry, 0, len(ranked))
	for _, p := range ranked {
		entry := model.LeaderboardEntry{
			ID:          p.ID,
			Nickname:    p.Nickname,
			TotalPoints: p.TotalPoints,
		}
		if p.CurrentAnswer != nil && p.CurrentAnswer.PointsAwarded != nil {
			delta := *p.CurrentAnswer.PointsAwarded
			entry.LastDelta = &delta
		}
		entries = append(entries, entry)
	}
	return entries
}

func (s *GameService) broadcastLobbyLocked() {
	roster := make([]model.PlayerInfo, 0, len(s.order))
	for _, id := range s.order {
		if p := s.players[id]; p.Connected {
			roster = append(roster, model.PlayerInfo{ID: p.ID, Nickname: p.Nickname})
		}
	}

	s.broadcastLocked(model.MsgLobbyState, model.LobbyStateMessage{
		Players:   roster,
		GameState: s.status,
	})
}

func (s *GameService) nextQuestionIDLocked() string {
	for {
		s.questionSeq++
		id := fmt.Sprintf("q_%d_%s", s.questionSeq, uuid.New().String()[:8])
		if _, used := s.usedIDs[id]; !used {
			return id
		}
	}
}

func (s *GameService) broadcastLocked(msgType model.MessageType, payload interface{}) {
	if s.broadcaster == nil {
		return
	}
	s.broadcaster.BroadcastAll(msgType, payload)
}

func (s *GameService) sendLocked(sessionID string, msgType model.MessageType, payload interface{}) {
	if s.broadcaster == nil {
		return
	}
	if !s.broadcaster.SendTo(sessionID, msgType, payload) {
		log.Printf("Dropped %s for session %s", msgType, sessionID)
	}
}

func (s *GameService) publishLocked(kind model.RoomEventKind, round *model.RoundRecord, board []model.LeaderboardEntry) {
	if s.observer == nil {
		return
	}

	meta := model.RoomMeta{
		GameID:         s.gameID,
		Status:         s.status,
		QuestionNumber: s.questionNumber,
		UpdatedAt:      s.now(),
	}
	if s.current != nil {
		meta.CurrentQuestionID = s.current.ID
	}
	for _, p := range s.players {
		if p.Connected {
			meta.ConnectedPlayers++
		}
	}

	s.observer.Publish(&model.RoomEvent{
		Kind:        kind,
		Meta:        meta,
		Round:       round,
		Leaderboard: board,
	})
}

func validateQuestion(q *model.Question) error {
	if q == nil {
		return fmt.Errorf("%w: missing question", ErrMalformedQuestion)
	}
	if strings.TrimSpace(q.Text) == "" {
		return fmt.Errorf("%w: empty text", ErrMalformedQuestion)
	}
	if len(q.Options) != len(model.OptionKeys) {
		return fmt.Errorf("%w: need exactly %d options", ErrMalformedQuestion, len(model.OptionKeys))
	}
	for _, k := range model.OptionKeys {
		if strings.TrimSpace(q.Options[k]) == "" {
			return fmt.Errorf("%w: option %s is empty", ErrMalformedQuestion, k)
		}
	}
	if !model.IsValidOption(q.Correct) {
		return fmt.Errorf("%w: correct option must be A, B, C, or D", ErrMalformedQuestion)
	}
	if q.DurationMs <= 0 {
		return fmt.Errorf("%w: duration must be positive", ErrMalformedQuestion)
	}
	return nil
}
