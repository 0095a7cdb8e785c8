package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"

	"livequiz/internal/model"
	"livequiz/internal/service"
)

func newCallToolRequest(name string, args map[string]any) mcp.CallToolRequest {
	return mcp.CallToolRequest{
		Params: mcp.CallToolParams{
			Name:      name,
			Arguments: args,
		},
	}
}

func resultText(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()
	if result == nil || len(result.Content) == 0 {
		t.Fatal("Expected tool result content")
	}
	text, ok := result.Content[0].(mcp.TextContent)
	if !ok {
		t.Fatalf("Expected text content, got %T", result.Content[0])
	}
	return text.Text
}

func newTestServer(t *testing.T) (*Server, *service.GameService) {
	t.Helper()
	game := service.NewGameService()
	return NewServer(game), game
}

func askArgs() map[string]any {
	return map[string]any{
		"text":         "Largest planet?",
		"option_a":     "Mars",
		"option_b":     "Jupiter",
		"option_c":     "Venus",
		"option_d":     "Earth",
		"correct":      "b",
		"time_seconds": float64(30),
	}
}

func TestStartAndAskTools(t *testing.T) {
	s, game := newTestServer(t)
	ctx := context.Background()

	if err := game.Join("s1", "Alice"); err != nil {
		t.Fatal(err)
	}

	result, err := s.handleStart(ctx, newCallToolRequest("start_game", nil))
	if err != nil || result.IsError {
		t.Fatalf("start_game failed: %v %s", err, resultText(t, result))
	}
	if game.CurrentStatus() != model.RoomStatusActive {
		t.Fatal("Expected active game")
	}

	result, _ = s.handleStart(ctx, newCallToolRequest("start_game", nil))
	if !result.IsError {
		t.Error("Second start_game should report an error")
	}

	result, _ = s.handleAsk(ctx, newCallToolRequest("ask_question", askArgs()))
	if result.IsError {
		t.Fatalf("ask_question failed: %s", resultText(t, result))
	}
	q := game.Snapshot().CurrentQuestion
	if q == nil || q.Correct != "B" || q.DurationMs != 30000 || q.Options["B"] != "Jupiter" {
		t.Errorf("Unexpected question: %+v", q)
	}
	if !strings.Contains(resultText(t, result), "Question 1") {
		t.Errorf("Unexpected text: %s", resultText(t, result))
	}
}

func TestAskToolWithConcurrentReveals(t *testing.T) {
	s, game := newTestServer(t)
	ctx := context.Background()
	if err := game.Start(); err != nil {
		t.Fatal(err)
	}

	stop := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for {
			select {
			case <-stop:
				return
			default:
				game.Reveal()
			}
		}
	}()

	for i := 1; i <= 100; i++ {
		result, _ := s.handleAsk(ctx, newCallToolRequest("ask_question", askArgs()))
		if result.IsError {
			t.Fatalf("ask_question failed: %s", resultText(t, result))
		}
		if want := fmt.Sprintf("Question %d (", i); !strings.HasPrefix(resultText(t, result), want) {
			t.Fatalf("Expected %q, got %s", want, resultText(t, result))
		}
	}
	close(stop)
	wg.Wait()
}

func TestAskToolValidation(t *testing.T) {
	s, game := newTestServer(t)
	ctx := context.Background()
	if err := game.Start(); err != nil {
		t.Fatal(err)
	}

	args := askArgs()
	delete(args, "option_d")
	result, _ := s.handleAsk(ctx, newCallToolRequest("ask_question", args))
	if !result.IsError {
		t.Error("Missing option should be rejected")
	}

	args = askArgs()
	args["time_seconds"] = float64(2)
	result, _ = s.handleAsk(ctx, newCallToolRequest("ask_question", args))
	if !result.IsError {
		t.Error("Too short window should be rejected")
	}

	args = askArgs()
	delete(args, "time_seconds")
	result, _ = s.handleAsk(ctx, newCallToolRequest("ask_question", args))
	if result.IsError {
		t.Fatalf("Default time should apply: %s", resultText(t, result))
	}
	if got := game.Snapshot().CurrentQuestion.DurationMs; got != service.DefaultQuestionSeconds*1000 {
		t.Errorf("Expected default duration, got %d", got)
	}
}

func TestRevealEndAndResetTools(t *testing.T) {
	s, game := newTestServer(t)
	ctx := context.Background()

	if err := game.Join("s1", "Alice"); err != nil {
		t.Fatal(err)
	}
	if err := game.Start(); err != nil {
		t.Fatal(err)
	}

	result, _ := s.handleReveal(ctx, newCallToolRequest("reveal_answers", nil))
	if !result.IsError {
		t.Error("Reveal without a question should be an error")
	}

	s.handleAsk(ctx, newCallToolRequest("ask_question", askArgs()))
	q := game.Snapshot().CurrentQuestion
	if err := game.Answer("s1", q.ID, "B", 0); err != nil {
		t.Fatal(err)
	}

	result, _ = s.handleReveal(ctx, newCallToolRequest("reveal_answers", nil))
	if result.IsError || !strings.Contains(resultText(t, result), "1. Alice") {
		t.Errorf("Unexpected reveal result: %s", resultText(t, result))
	}

	result, _ = s.handleEnd(ctx, newCallToolRequest("end_game", nil))
	if !strings.Contains(resultText(t, result), "Game ended") {
		t.Errorf("Unexpected end result: %s", resultText(t, result))
	}
	if game.CurrentStatus() != model.RoomStatusLobby {
		t.Error("Expected lobby after end_game")
	}

	result, _ = s.handleReset(ctx, newCallToolRequest("reset_game", nil))
	if result.IsError {
		t.Error("reset_game should not fail")
	}
}

func TestStatusAndPlayersTools(t *testing.T) {
	s, game := newTestServer(t)
	ctx := context.Background()
	if err := game.Join("s1", "Alice"); err != nil {
		t.Fatal(err)
	}

	result, _ := s.handleListPlayers(ctx, newCallToolRequest("list_players", nil))
	var players []model.Player
	if err := json.Unmarshal([]byte(resultText(t, result)), &players); err != nil {
		t.Fatalf("Invalid players JSON: %v", err)
	}
	if len(players) != 1 || players[0].Nickname != "Alice" {
		t.Errorf("Unexpected players: %+v", players)
	}

	result, _ = s.handleStatus(ctx, newCallToolRequest("game_status", nil))
	var snap model.RoomSnapshot
	if err := json.Unmarshal([]byte(resultText(t, result)), &snap); err != nil {
		t.Fatalf("Invalid status JSON: %v", err)
	}
	if snap.Status != model.RoomStatusLobby {
		t.Errorf("Unexpected status: %s", snap.Status)
	}
}

func TestServeHTTP(t *testing.T) {
	s, game := newTestServer(t)

	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/mcp", nil))
	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("Expected 405, got %d", rec.Code)
	}

	initialize := `{"jsonrpc":"2.0","id":1,"method":"initialize","params":{"protocolVersion":"2025-03-26","capabilities":{},"clientInfo":{"name":"test","version":"1.0"}}}`
	rec = httptest.NewRecorder()
	s.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/mcp", strings.NewReader(initialize)))
	if rec.Code != http.StatusOK {
		t.Fatalf("initialize failed: %d %s", rec.Code, rec.Body.String())
	}

	call := `{"jsonrpc":"2.0","id":2,"method":"tools/call","params":{"name":"start_game","arguments":{}}}`
	rec = httptest.NewRecorder()
	s.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/mcp", strings.NewReader(call)))
	if rec.Code != http.StatusOK {
		t.Fatalf("tools/call failed: %d %s", rec.Code, rec.Body.String())
	}

	var resp struct {
		Result struct {
			IsError bool `json:"isError"`
			Content []struct {
				Text string `json:"text"`
			} `json:"content"`
		} `json:"result"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Invalid response: %v", err)
	}
	if resp.Result.IsError || len(resp.Result.Content) == 0 {
		t.Fatalf("Unexpected response: %s", rec.Body.String())
	}
	if game.CurrentStatus() != model.RoomStatusActive {
		t.Error("Expected tools/call to start the game")
	}
}

func TestArgInt(t *testing.T) {
	args := map[string]interface{}{"f": float64(12), "s": "15", "bad": "x"}
	if got := argInt(args, "f", 1); got != 12 {
		t.Errorf("Expected 12, got %d", got)
	}
	if got := argInt(args, "s", 1); got != 15 {
		t.Errorf("Expected 15, got %d", got)
	}
	if got := argInt(args, "bad", 7); got != 7 {
		t.Errorf("Expected default, got %d", got)
	}
	if got := argInt(args, "missing", 9); got != 9 {
		t.Errorf("Expected default, got %d", got)
	}
}
