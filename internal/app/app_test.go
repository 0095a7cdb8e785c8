package app

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"

	"livequiz/internal/config"
	"livequiz/internal/model"
)

func testConfig() *config.Config {
	return &config.Config{
		HTTPAddr:        ":0",
		TickInterval:    10 * time.Millisecond,
		SendBuffer:      16,
		ReportBuffer:    16,
		ShutdownTimeout: time.Second,
		HostUsername:    "admin",
		HostPassword:    "secret",
		JWTSecret:       "test-secret",
		SessionTTL:      time.Hour,
		MongoDatabase:   "livequiz",
		RedisPrefix:     "quiz",
		AllowedOrigins:  []string{"*"},
	}
}

func TestNewWithoutBackends(t *testing.T) {
	a, err := New(context.Background(), testConfig())
	if err != nil {
		t.Fatal(err)
	}

	rec := httptest.NewRecorder()
	a.Router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	if rec.Code != http.StatusOK {
		t.Errorf("Expected 200, got %d", rec.Code)
	}

	ctx, cancel := context.WithCancel(context.Background())
	a.Start(ctx)
	cancel()

	closeCtx, closeCancel := context.WithTimeout(context.Background(), time.Second)
	defer closeCancel()
	if err := a.Close(closeCtx); err != nil {
		t.Errorf("Close failed: %v", err)
	}
}

func TestClockAutoRevealsAndMirrors(t *testing.T) {
	mr := miniredis.RunT(t)
	cfg := testConfig()
	cfg.RedisURI = "redis://" + mr.Addr()

	a, err := New(context.Background(), cfg)
	if err != nil {
		t.Fatal(err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	a.Start(ctx)

	if err := a.Game.Join("s1", "Alice"); err != nil {
		t.Fatal(err)
	}
	if err := a.Game.Start(); err != nil {
		t.Fatal(err)
	}
	q := &model.Question{
		ID:         "q1",
		Text:       "Pick A",
		Options:    map[string]string{"A": "a", "B": "b", "C": "c", "D": "d"},
		Correct:    "A",
		DurationMs: 50,
	}
	if _, _, err := a.Game.Ask(q); err != nil {
		t.Fatal(err)
	}
	if err := a.Game.Answer("s1", "q1", "A", 0); err != nil {
		t.Fatal(err)
	}

	deadline := time.Now().Add(2 * time.Second)
	for {
		entries, err := a.Reports.TopLeaderboard(context.Background(), 10)
		if err == nil && len(entries) == 1 && entries[0].Score > 0 {
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("Round was not auto-revealed and mirrored: %v %v", entries, err)
		}
		time.Sleep(10 * time.Millisecond)
	}

	closeCtx, closeCancel := context.WithTimeout(context.Background(), time.Second)
	defer closeCancel()
	if err := a.Close(closeCtx); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	if mr.Exists("quiz:room") {
		t.Error("Room mirror should be removed on close")
	}
}

func TestNewFailsOnUnreachableRedis(t *testing.T) {
	cfg := testConfig()
	cfg.RedisURI = "redis://127.0.0.1:1"

	if _, err := New(context.Background(), cfg); err == nil {
		t.Error("Expected error for unreachable Redis")
	}
}

func TestConsoleDrivesGame(t *testing.T) {
	a, err := New(context.Background(), testConfig())
	if err != nil {
		t.Fatal(err)
	}

	out := &bytes.Buffer{}
	if err := a.Console(out).Run(context.Background(), strings.NewReader("/start\n")); err != nil {
		t.Fatal(err)
	}
	if a.Game.CurrentStatus() != model.RoomStatusActive {
		t.Errorf("Expected active game, output:\n%s", out.String())
	}
}
