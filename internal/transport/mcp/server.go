package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"livequiz/internal/model"
	"livequiz/internal/service"
)

const (
	serverName    = "livequiz operator"
	serverVersion = "1.0.0"
)

// Server exposes the operator controls as MCP tools
type Server struct {
	game      *service.GameService
	mcpServer *server.MCPServer
}

// NewServer creates an MCP server bound to game
func NewServer(game *service.GameService) *Server {
	s := &Server{game: game}
	s.mcpServer = server.NewMCPServer(
		serverName,
		serverVersion,
		server.WithToolCapabilities(true),
		server.WithInstructions(`Live quiz operator controls.

FLOW:
1. Players join from the web client while the game is in the lobby.
2. start_game locks the lobby.
3. ask_question opens a question for time_seconds; the server reveals it automatically at the deadline.
4. reveal_answers closes the question early.
5. end_game publishes final standings and returns to the lobby.

Use game_status and list_players to inspect the room at any time.`),
	)
	s.registerTools()
	return s
}

// MCPServer returns the underlying server, for stdio serving
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcpServer
}

// ServeHTTP handles one JSON-RPC message per POST
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, 1<<20))
	if err != nil {
		http.Error(w, "Failed to read request", http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	response := s.mcpServer.HandleMessage(r.Context(), body)
	if response == nil {
		w.WriteHeader(http.StatusAccepted)
		return
	}

	responseData, err := json.Marshal(response)
	if err != nil {
		http.Error(w, "Failed to marshal response", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Write(responseData)
}

func (s *Server) registerTools() {
	noArgs := mcp.ToolInputSchema{
		Type:       "object",
		Properties: map[string]interface{}{},
	}

	s.mcpServer.AddTool(mcp.Tool{
		Name:        "start_game",
		Description: "Lock the lobby and start the game",
		InputSchema: noArgs,
	}, s.handleStart)

	s.mcpServer.AddTool(mcp.Tool{
		Name:        "ask_question",
		Description: "Ask a four-option multiple choice question to every player",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"text": map[string]interface{}{
					"type":        "string",
					"description": "Question text",
				},
				"option_a": map[string]interface{}{"type": "string", "description": "Text of option A"},
				"option_b": map[string]interface{}{"type": "string", "description": "Text of option B"},
				"option_c": map[string]interface{}{"type": "string", "description": "Text of option C"},
				"option_d": map[string]interface{}{"type": "string", "description": "Text of option D"},
				"correct": map[string]interface{}{
					"type":        "string",
					"enum":        []string{"A", "B", "C", "D"},
					"description": "Key of the correct option",
				},
				"time_seconds": map[string]interface{}{
					"type":        "number",
					"minimum":     service.MinQuestionSeconds,
					"maximum":     service.MaxQuestionSeconds,
					"description": fmt.Sprintf("Answer window in seconds (default %d)", service.DefaultQuestionSeconds),
				},
				"id": map[string]interface{}{
					"type":        "string",
					"description": "Optional question id; generated when omitted",
				},
			},
			Required: []string{"text", "option_a", "option_b", "option_c", "option_d", "correct"},
		},
	}, s.handleAsk)

	s.mcpServer.AddTool(mcp.Tool{
		Name:        "reveal_answers",
		Description: "Close the current question, score it and publish the leaderboard",
		InputSchema: noArgs,
	}, s.handleReveal)

	s.mcpServer.AddTool(mcp.Tool{
		Name:        "end_game",
		Description: "Publish the final leaderboard and return to the lobby",
		InputSchema: noArgs,
	}, s.handleEnd)

	s.mcpServer.AddTool(mcp.Tool{
		Name:        "reset_game",
		Description: "Return to the lobby, clearing scores and question history",
		InputSchema: noArgs,
	}, s.handleReset)

	s.mcpServer.AddTool(mcp.Tool{
		Name:        "list_players",
		Description: "List every player with connection state and points",
		InputSchema: noArgs,
	}, s.handleListPlayers)

	s.mcpServer.AddTool(mcp.Tool{
		Name:        "game_status",
		Description: "Get room status, current question and leaderboard",
		InputSchema: noArgs,
	}, s.handleStatus)
}

func (s *Server) handleStart(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if err := s.game.Start(); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("Game started with %d players", len(s.game.CurrentPlayers()))), nil
}

func (s *Server) handleAsk(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.GetArguments()

	options := []string{
		argString(args, "option_a"),
		argString(args, "option_b"),
		argString(args, "option_c"),
		argString(args, "option_d"),
	}
	seconds := argInt(args, "time_seconds", service.DefaultQuestionSeconds)

	q, err := service.BuildQuestion(argString(args, "id"), argString(args, "text"), options, argString(args, "correct"), seconds)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	asked, number, err := s.game.Ask(q)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(fmt.Sprintf("Question %d (%s) asked, closes in %ds",
		number, asked.ID, seconds)), nil
}

func (s *Server) handleReveal(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if err := s.game.Reveal(); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(formatLeaderboard(s.game.Leaderboard())), nil
}

func (s *Server) handleEnd(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	final := s.game.End()
	return mcp.NewToolResultText("Game ended.\n" + formatLeaderboard(final)), nil
}

func (s *Server) handleReset(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	s.game.Reset()
	return mcp.NewToolResultText("Game reset to lobby"), nil
}

func (s *Server) handleListPlayers(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return jsonResult(s.game.CurrentPlayers())
}

func (s *Server) handleStatus(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return jsonResult(s.game.Snapshot())
}

func jsonResult(v interface{}) (*mcp.CallToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}

func formatLeaderboard(board model.LeaderboardMessage) string {
	if len(board.Entries) == 0 {
		return "No connected players"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Leaderboard after question %d:\n", board.QuestionNumber)
	for i, e := range board.Entries {
		fmt.Fprintf(&b, "%d. %s - %d pts", i+1, e.Nickname, e.TotalPoints)
		if e.LastDelta != nil {
			fmt.Fprintf(&b, " (+%d)", *e.LastDelta)
		}
		b.WriteString("\n")
	}
	return b.String()
}

func argString(args map[string]interface{}, key string) string {
	if v, ok := args[key].(string); ok {
		return v
	}
	return ""
}

func argInt(args map[string]interface{}, key string, def int) int {
	switch v := args[key].(type) {
	case float64:
		return int(v)
	case int:
		return v
	case string:
		var n int
		if _, err := fmt.Sscanf(v, "%d", &n); err == nil {
			return n
		}
	}
	return def
}
