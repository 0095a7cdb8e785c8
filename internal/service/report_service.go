package service

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"livequiz/internal/cache"
	"livequiz/internal/model"
	"livequiz/internal/repository"
)

const (
	DefaultReportBuffer  = 128
	defaultReportTimeout = 5 * time.Second
)

var (
	ErrArchiveDisabled = errors.New("round archive is not configured")
	ErrMirrorDisabled  = errors.New("leaderboard mirror is not configured")
)

// ReportService archives revealed rounds and mirrors the room to Redis.
// Events are queued by Publish and written by a single worker (Run), so the
// game never waits on storage. Any backend may be nil.
type ReportService struct {
	rounds      repository.RoundRepo
	leaderboard cache.LeaderboardCache
	rooms       cache.RoomCache

	events  chan *model.RoomEvent
	done    chan struct{}
	mu      sync.RWMutex
	closed  bool
	timeout time.Duration
}

// NewReportService creates a report service with a bounded event queue
func NewReportService(rounds repository.RoundRepo, leaderboard cache.LeaderboardCache, rooms cache.RoomCache, buffer int) *ReportService {
	if buffer <= 0 {
		buffer = DefaultReportBuffer
	}
	return &ReportService{
		rounds:      rounds,
		leaderboard: leaderboard,
		rooms:       rooms,
		events:      make(chan *model.RoomEvent, buffer),
		done:        make(chan struct{}),
		timeout:     defaultReportTimeout,
	}
}

// Publish queues ev without blocking. Events are dropped when the queue is full.
func (s *ReportService) Publish(ev *model.RoomEvent) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return
	}

	select {
	case s.events <- ev:
	default:
		log.Printf("Report queue full, dropping %s event", ev.Kind)
	}
}

// Run writes queued events until Close is called and the queue is drained
func (s *ReportService) Run(ctx context.Context) {
	defer close(s.done)

	for ev := range s.events {
		s.handle(ctx, ev)
	}

	if s.rooms != nil {
		opCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.timeout)
		if err := s.rooms.Delete(opCtx); err != nil {
			log.Printf("Failed to clear room mirror: %v", err)
		}
		cancel()
	}
	log.Println("Report worker stopped")
}

// Close stops accepting events and waits for Run to drain the queue
func (s *ReportService) Close(ctx context.Context) error {
	s.mu.Lock()
	if !s.closed {
		s.closed = true
		close(s.events)
	}
	s.mu.Unlock()

	select {
	case <-s.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *ReportService) handle(ctx context.Context, ev *model.RoomEvent) {
	opCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.timeout)
	defer cancel()

	if s.rooms != nil {
		meta := ev.Meta
		if err := s.rooms.SetMeta(opCtx, &meta); err != nil {
			log.Printf("Failed to mirror room meta: %v", err)
		}
	}

	switch ev.Kind {
	case model.EventRoundRevealed:
		if s.rounds != nil && ev.Round != nil {
			if err := s.rounds.SaveRound(opCtx, ev.Round); err != nil {
				log.Printf("Failed to archive round: %v", err)
			}
		}
		if s.leaderboard != nil {
			if err := s.leaderboard.ReplaceScores(opCtx, ev.Leaderboard); err != nil {
				log.Printf("Failed to mirror leaderboard: %v", err)
			}
		}
	case model.EventReset:
		if s.leaderboard != nil {
			if err := s.leaderboard.Clear(opCtx); err != nil {
				log.Printf("Failed to clear leaderboard mirror: %v", err)
			}
		}
	}
}

// ListRounds returns archived rounds for gameID, or every game when empty
func (s *ReportService) ListRounds(ctx context.Context, gameID string) ([]*model.RoundRecord, error) {
	if s.rounds == nil {
		return nil, ErrArchiveDisabled
	}
	return s.rounds.ListRounds(ctx, gameID)
}

// GetRound returns one archived round, or nil when it does not exist
func (s *ReportService) GetRound(ctx context.Context, gameID string, questionNumber int) (*model.RoundRecord, error) {
	if s.rounds == nil {
		return nil, ErrArchiveDisabled
	}
	return s.rounds.GetRound(ctx, gameID, questionNumber)
}

// TopLeaderboard reads the mirrored standings
func (s *ReportService) TopLeaderboard(ctx context.Context, limit int) ([]cache.LeaderboardEntry, error) {
	if s.leaderboard == nil {
		return nil, ErrMirrorDisabled
	}
	return s.leaderboard.GetTop(ctx, limit)
}

// PlayerRank returns the mirrored 1-based rank of a player, or -1
func (s *ReportService) PlayerRank(ctx context.Context, playerID string) (int64, error) {
	if s.leaderboard == nil {
		return 0, ErrMirrorDisabled
	}
	return s.leaderboard.GetRank(ctx, playerID)
}

// RoomMeta reads the mirrored room summary
func (s *ReportService) RoomMeta(ctx context.Context) (*model.RoomMeta, error) {
	if s.rooms == nil {
		return nil, ErrMirrorDisabled
	}
	return s.rooms.GetMeta(ctx)
}
