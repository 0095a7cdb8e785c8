package rest

import (
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"livequiz/internal/service"
	"livequiz/internal/transport/rest/handler"
	"livequiz/internal/transport/rest/middleware"
)

// Container holds all dependencies for the router
type Container struct {
	AuthService   *service.AuthService
	GameService   *service.GameService
	ReportService *service.ReportService
	WSHandler     http.Handler
	MCPHandler    http.Handler

	AllowedOrigins []string
}

// NewRouter creates the API router with all endpoints
func NewRouter(c *Container) http.Handler {
	r := mux.NewRouter()

	authHandler := handler.NewAuthHandler(c.AuthService)
	gameHandler := handler.NewGameHandler(c.GameService)
	reportHandler := handler.NewReportHandler(c.ReportService)

	authMW := middleware.NewAuthMiddleware(c.AuthService)

	// CORS middleware (apply first)
	r.Use(corsMiddleware(c.AllowedOrigins))

	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	}).Methods("GET")

	// Player sessions (public, resume token in query param)
	r.Handle("/ws", c.WSHandler).Methods("GET")

	// Operator tools over MCP (host only)
	r.Handle("/mcp", authMW.RequireHost(c.MCPHandler)).Methods("POST", "OPTIONS")

	v1 := r.PathPrefix("/v1").Subrouter()
	v1.HandleFunc("/auth/login", authHandler.Login).Methods("POST", "OPTIONS")

	hostRoutes := v1.NewRoute().Subrouter()
	hostRoutes.Use(authMW.RequireHost)

	hostRoutes.HandleFunc("/game/start", gameHandler.Start).Methods("POST", "OPTIONS")
	hostRoutes.HandleFunc("/game/questions", gameHandler.Ask).Methods("POST", "OPTIONS")
	hostRoutes.HandleFunc("/game/reveal", gameHandler.Reveal).Methods("POST", "OPTIONS")
	hostRoutes.HandleFunc("/game/end", gameHandler.End).Methods("POST", "OPTIONS")
	hostRoutes.HandleFunc("/game/reset", gameHandler.Reset).Methods("POST", "OPTIONS")
	hostRoutes.HandleFunc("/game/status", gameHandler.Status).Methods("GET", "OPTIONS")
	hostRoutes.HandleFunc("/game/players", gameHandler.Players).Methods("GET", "OPTIONS")
	hostRoutes.HandleFunc("/game/leaderboard", gameHandler.Leaderboard).Methods("GET", "OPTIONS")

	hostRoutes.HandleFunc("/reports/rounds", reportHandler.ListRounds).Methods("GET", "OPTIONS")
	hostRoutes.HandleFunc("/reports/rounds/{gameId}/{number:[0-9]+}", reportHandler.GetRound).Methods("GET", "OPTIONS")
	hostRoutes.HandleFunc("/reports/leaderboard", reportHandler.Leaderboard).Methods("GET", "OPTIONS")
	hostRoutes.HandleFunc("/reports/leaderboard/{playerId}", reportHandler.PlayerRank).Methods("GET", "OPTIONS")
	hostRoutes.HandleFunc("/reports/room", reportHandler.Room).Methods("GET", "OPTIONS")

	return r
}

func corsMiddleware(allowedOrigins []string) mux.MiddlewareFunc {
	allowAny := len(allowedOrigins) == 0
	allowed := make(map[string]bool, len(allowedOrigins))
	for _, o := range allowedOrigins {
		if o == "*" {
			allowAny = true
		}
		allowed[strings.TrimSpace(o)] = true
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")
			switch {
			case allowAny:
				w.Header().Set("Access-Control-Allow-Origin", "*")
			case allowed[origin]:
				w.Header().Set("Access-Control-Allow-Origin", origin)
				w.Header().Add("Vary", "Origin")
			}
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

			if r.Method == "OPTIONS" {
				w.WriteHeader(http.StatusOK)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
