package service

import (
	"context"
	"log"
	"time"
)

// DefaultTickInterval is how often the clock reports remaining time
const DefaultTickInterval = time.Second

// Ticker is the part of GameService the clock drives
type Ticker interface {
	Tick()
}

// Clock drives timer ticks and automatic reveals. Remaining time is always
// computed from the question's absolute deadline, so missed ticks never drift.
type Clock struct {
	game     Ticker
	interval time.Duration
}

// NewClock creates a clock for game; a non-positive interval uses DefaultTickInterval
func NewClock(game Ticker, interval time.Duration) *Clock {
	if interval <= 0 {
		interval = DefaultTickInterval
	}
	return &Clock{game: game, interval: interval}
}

// Run ticks until ctx is cancelled
func (c *Clock) Run(ctx context.Context) {
	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	log.Printf("Deadline clock started (interval %s)", c.interval)
	for {
		select {
		case <-ctx.Done():
			log.Println("Deadline clock stopped")
			return
		case <-ticker.C:
			c.game.Tick()
		}
	}
}
