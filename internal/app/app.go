package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"

	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"

	"livequiz/internal/cache"
	"livequiz/internal/config"
	"livequiz/internal/console"
	"livequiz/internal/repository"
	"livequiz/internal/service"
	"livequiz/internal/transport/mcp"
	"livequiz/internal/transport/rest"
	"livequiz/internal/transport/ws"
)

// App holds the wired services of one quiz server
type App struct {
	Config  *config.Config
	Game    *service.GameService
	Auth    *service.AuthService
	Reports *service.ReportService
	Clock   *service.Clock
	Hub     *ws.Hub
	MCP     *mcp.Server
	Router  http.Handler

	mongoClient *mongo.Client
	redisClient *redis.Client
}

// New connects the configured backends and wires every service
func New(ctx context.Context, cfg *config.Config) (*App, error) {
	a := &App{Config: cfg}

	var rounds repository.RoundRepo
	if cfg.MongoURI != "" {
		client, err := repository.Connect(ctx, cfg.MongoURI)
		if err != nil {
			return nil, err
		}
		a.mongoClient = client
		rounds = repository.NewRoundRepo(client.Database(cfg.MongoDatabase))
		log.Printf("Connected to MongoDB, archiving rounds to %s", cfg.MongoDatabase)
	} else {
		log.Println("MONGO_URI not set, round archive disabled")
	}

	var leaderboard cache.LeaderboardCache
	var rooms cache.RoomCache
	if cfg.RedisURI != "" {
		client, err := cache.Connect(ctx, cfg.RedisURI)
		if err != nil {
			a.closeBackends(ctx)
			return nil, err
		}
		a.redisClient = client
		leaderboard = cache.NewLeaderboardCache(client, cfg.RedisPrefix)
		rooms = cache.NewRoomCache(client, cfg.RedisPrefix)
		log.Printf("Connected to Redis, mirroring under %s:*", cfg.RedisPrefix)
	} else {
		log.Println("REDIS_URI not set, leaderboard mirror disabled")
	}

	a.Game = service.NewGameService()
	a.Auth = service.NewAuthService(cfg.HostUsername, cfg.HostPassword, cfg.JWTSecret, cfg.SessionTTL)
	a.Reports = service.NewReportService(rounds, leaderboard, rooms, cfg.ReportBuffer)
	a.Clock = service.NewClock(a.Game, cfg.TickInterval)
	a.Hub = ws.NewHub()
	a.MCP = mcp.NewServer(a.Game)

	a.Game.SetBroadcaster(a.Hub)
	a.Game.SetObserver(a.Reports)

	a.Router = rest.NewRouter(&rest.Container{
		AuthService:    a.Auth,
		GameService:    a.Game,
		ReportService:  a.Reports,
		WSHandler:      ws.NewHandler(a.Hub, a.Game, a.Auth, cfg.SendBuffer, cfg.AllowedOrigins),
		MCPHandler:     a.MCP,
		AllowedOrigins: cfg.AllowedOrigins,
	})

	return a, nil
}

// Start launches the background workers. The clock stops with ctx, the
// report worker on Close.
func (a *App) Start(ctx context.Context) {
	go a.Reports.Run(ctx)
	go a.Clock.Run(ctx)
}

// Console returns an operator console bound to the game
func (a *App) Console(out io.Writer) *console.Console {
	return console.New(a.Game, out)
}

// Close drops every player connection, drains the report worker and
// disconnects the backends
func (a *App) Close(ctx context.Context) error {
	a.Hub.CloseAll()

	var errs []error
	if err := a.Reports.Close(ctx); err != nil {
		errs = append(errs, fmt.Errorf("report worker: %w", err))
	}
	errs = append(errs, a.closeBackends(ctx)...)
	return errors.Join(errs...)
}

func (a *App) closeBackends(ctx context.Context) []error {
	var errs []error
	if a.mongoClient != nil {
		if err := a.mongoClient.Disconnect(ctx); err != nil {
			errs = append(errs, fmt.Errorf("mongo disconnect: %w", err))
		}
		a.mongoClient = nil
	}
	if a.redisClient != nil {
		if err := a.redisClient.Close(); err != nil {
			errs = append(errs, fmt.Errorf("redis close: %w", err))
		}
		a.redisClient = nil
	}
	return errs
}
