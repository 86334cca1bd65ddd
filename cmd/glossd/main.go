// CLAUDE:SUMMARY CLI entry point for glossd — annotation daemon serving the overlay API and the agent bridge.
// Command glossd is the page annotation daemon.
//
// Usage:
//
//	glossd -config glossd.yaml      # serve the overlay API from YAML config
//	glossd -mcp                     # also serve the agent bridge on stdio
//	glossd -hash-token s3cret       # print the bcrypt hash for auth.token_hash
//
// Environment overrides: GLOSS_LISTEN, GLOSS_TOKEN_HASH, GLOSS_LOG_LEVEL.
// Flags beat environment, environment beats the config file.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	_ "modernc.org/sqlite"

	"github.com/pagegloss/gloss/bridge"
	"github.com/pagegloss/gloss/capture"
	"github.com/pagegloss/gloss/config"
	"github.com/pagegloss/gloss/dbopen"
	"github.com/pagegloss/gloss/httpapi"
	"github.com/pagegloss/gloss/session"
	"github.com/pagegloss/gloss/shield"
	"github.com/pagegloss/gloss/trace"
)

var version = "dev"

func main() {
	configPath := flag.String("config", "", "path to glossd.yaml config file")
	listenAddr := flag.String("listen", "", "override the HTTP listen address")
	mcpStdio := flag.Bool("mcp", false, "serve the agent bridge on stdio")
	hashToken := flag.String("hash-token", "", "print the bcrypt hash of a token and exit")
	logLevel := flag.String("log-level", "", "log level: debug, info, warn, error")
	flag.Parse()

	if *hashToken != "" {
		h, err := shield.HashToken(*hashToken)
		if err != nil {
			fmt.Fprintln(os.Stderr, "glossd:", err)
			os.Exit(1)
		}
		fmt.Println(h)
		return
	}

	cfg := config.Default()
	if *configPath != "" {
		var err error
		cfg, err = config.LoadFile(*configPath)
		if err != nil {
			fmt.Fprintln(os.Stderr, "glossd:", err)
			os.Exit(1)
		}
	}
	cfg.Listen.Addr = env("GLOSS_LISTEN", cfg.Listen.Addr)
	cfg.Auth.TokenHash = env("GLOSS_TOKEN_HASH", cfg.Auth.TokenHash)
	cfg.Log.Level = env("GLOSS_LOG_LEVEL", cfg.Log.Level)
	if *listenAddr != "" {
		cfg.Listen.Addr = *listenAddr
	}
	if *mcpStdio {
		cfg.Bridge.Stdio = true
	}
	if *logLevel != "" {
		cfg.Log.Level = *logLevel
	}

	var level slog.Level
	switch cfg.Log.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}
	// Logs go to stderr unconditionally; stdout belongs to the MCP transport
	// when -mcp is set.
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, logger, cfg); err != nil {
		logger.Error("glossd: fatal", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, logger *slog.Logger, cfg *config.Config) error {
	// Trace DB is opened with the raw "sqlite" driver so its own writes are
	// not traced.
	storeOpts := []dbopen.Option{dbopen.WithMkdirAll()}
	if cfg.Data.Trace {
		traceDB, err := dbopen.Open(cfg.TracePath(), dbopen.WithMkdirAll())
		if err != nil {
			return fmt.Errorf("open trace db: %w", err)
		}
		defer traceDB.Close()
		traceStore := trace.NewStore(traceDB)
		if err := traceStore.Init(); err != nil {
			return fmt.Errorf("init trace db: %w", err)
		}
		trace.SetStore(traceStore)
		defer traceStore.Close()
		storeOpts = append(storeOpts, dbopen.WithTrace())
	}

	store, err := session.Open(cfg.DBPath(), storeOpts...)
	if err != nil {
		return fmt.Errorf("open session store: %w", err)
	}
	defer store.Close()
	sessions := session.NewManager(store, session.WithLogger(logger))

	apiOpts := []httpapi.Option{
		httpapi.WithLogger(logger),
		httpapi.WithOrigins(cfg.Listen.Origins),
	}

	if cfg.Capture.Enabled {
		browser := capture.NewBrowser(capture.Config{
			RemoteURL:  cfg.Capture.Remote,
			Stealth:    cfg.Capture.Stealth,
			NavTimeout: cfg.Capture.NavTimeout,
			Logger:     logger,
		})
		if err := browser.Start(ctx); err != nil {
			return fmt.Errorf("start capture browser: %w", err)
		}
		defer browser.Close()
		apiOpts = append(apiOpts, httpapi.WithBrowser(browser))
	}

	api := httpapi.New(sessions, apiOpts...)
	srv := &http.Server{
		Addr:              cfg.Listen.Addr,
		Handler:           api.Handler(cfg.Auth.TokenHash),
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	httpErr := make(chan error, 1)
	go func() {
		logger.Info("glossd: listening", "addr", cfg.Listen.Addr, "auth", cfg.Auth.TokenHash != "")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			httpErr <- err
		}
	}()

	// When the bridge runs on stdio the daemon's lifetime is tied to the
	// agent host: stdin closing means the host is gone, so shut down.
	var mcpDone chan struct{}
	if cfg.Bridge.Stdio {
		mcpSrv := mcp.NewServer(&mcp.Implementation{Name: "gloss", Version: version}, nil)
		bridge.New(sessions, bridge.WithLogger(logger)).RegisterMCP(mcpSrv)
		mcpDone = make(chan struct{})
		go func() {
			defer close(mcpDone)
			logger.Info("glossd: mcp bridge on stdio")
			if err := mcpSrv.Run(ctx, &mcp.StdioTransport{}); err != nil && ctx.Err() == nil {
				logger.Error("glossd: mcp bridge", "error", err)
			}
		}()
	}

	select {
	case <-ctx.Done():
	case <-mcpDone:
		logger.Info("glossd: mcp transport closed")
	case err := <-httpErr:
		return fmt.Errorf("http server: %w", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("glossd: shutdown", "error", err)
	}
	logger.Info("glossd: stopped")
	return nil
}

func env(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
