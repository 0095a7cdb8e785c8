// Command server runs the live quiz room: the player WebSocket endpoint, the
// operator REST API and MCP endpoint, and an optional operator console on stdin.
package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/mark3labs/mcp-go/server"
	"github.com/urfave/cli/v3"

	"livequiz/internal/app"
	"livequiz/internal/config"
)

const (
	appName = "livequiz"
	version = "1.0.0"
)

func main() {
	if err := godotenv.Load(); err != nil {
		if !os.IsNotExist(err) {
			log.Printf("Warning: error loading .env file: %v", err)
		}
	} else {
		log.Println("Loaded environment variables from .env file")
	}

	cmd := &cli.Command{
		Name:    appName,
		Usage:   "real-time multiplayer quiz server",
		Version: version,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "addr",
				Usage: "HTTP listen address (overrides QUIZ_HTTP_ADDR)",
			},
			&cli.BoolFlag{
				Name:  "no-console",
				Usage: "do not read operator commands from stdin",
			},
			&cli.BoolFlag{
				Name:  "mcp-stdio",
				Usage: "serve the operator MCP tools on stdin/stdout instead of the console",
			},
			&cli.BoolFlag{
				Name:  "debug",
				Usage: "log file and line numbers",
			},
		},
		Action: run,
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		log.Fatal(err)
	}
}

func run(ctx context.Context, cmd *cli.Command) error {
	if cmd.Bool("debug") {
		log.SetFlags(log.LstdFlags | log.Lshortfile)
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if addr := cmd.String("addr"); addr != "" {
		cfg.HTTPAddr = addr
	}
	if cmd.Bool("no-console") {
		cfg.Console = false
	}
	if cfg.UsingDefaultSecret() {
		log.Println("Warning: JWT_SECRET not set, using development secret")
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := app.New(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize: %w", err)
	}

	workCtx, cancelWork := context.WithCancel(context.Background())
	defer cancelWork()
	a.Start(workCtx)

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           a.Router,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		log.Printf("%s v%s listening on %s", appName, version, cfg.HTTPAddr)
		log.Printf("Host auth: username=%s", cfg.HostUsername)
		log.Println("Endpoints:")
		log.Println("  GET  /health")
		log.Println("  WS   /ws[?token=<session token>]")
		log.Println("  POST /v1/auth/login")
		log.Println("  POST /v1/game/{start,questions,reveal,end,reset}")
		log.Println("  GET  /v1/game/{status,players,leaderboard}")
		log.Println("  GET  /v1/reports/{rounds,leaderboard,room}")
		log.Println("  POST /mcp")

		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	switch {
	case cmd.Bool("mcp-stdio"):
		go func() {
			log.Println("Serving MCP tools on stdio")
			if err := server.ServeStdio(a.MCP.MCPServer()); err != nil {
				log.Printf("MCP stdio server stopped: %v", err)
			}
		}()
	case cfg.Console:
		go func() {
			if err := a.Console(os.Stdout).Run(ctx, os.Stdin); err != nil {
				log.Printf("Console stopped: %v", err)
			}
		}()
	}

	select {
	case <-ctx.Done():
		log.Println("Shutting down server...")
	case err := <-serverErr:
		log.Printf("HTTP server failed: %v", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("HTTP server shutdown error: %v", err)
	}
	cancelWork()
	if err := a.Close(shutdownCtx); err != nil {
		log.Printf("Shutdown error: %v", err)
	}

	log.Println("Server exited")
	return nil
}
