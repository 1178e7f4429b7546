// teamboard is the internal team dashboard API: an AI assistant message
// log plus a curated, moderated knowledge base.
package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	gormlogger "gorm.io/gorm/logger"

	"github.com/teamboard/teamboard/internal/assistant"
	"github.com/teamboard/teamboard/internal/chat"
	"github.com/teamboard/teamboard/internal/config"
	gormdb "github.com/teamboard/teamboard/internal/db/gorm"
	"github.com/teamboard/teamboard/internal/knowledge"
	"github.com/teamboard/teamboard/internal/moderation"
	"github.com/teamboard/teamboard/internal/server"
)

// Version is set at build time via ldflags.
var Version = "dev"

func main() {
	debug := flag.Bool("debug", false, "enable debug logging")
	flag.Parse()

	level := zerolog.InfoLevel
	if *debug {
		level = zerolog.DebugLevel
	}
	zerolog.SetGlobalLevel(level)
	logger := log.Output(zerolog.ConsoleWriter{Out: os.Stderr, NoColor: true})

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load configuration")
	}
	if lvl, err := zerolog.ParseLevel(cfg.LogLevel); err == nil && !*debug {
		zerolog.SetGlobalLevel(lvl)
	}

	logger.Info().
		Str("version", Version).
		Str("environment", cfg.Environment).
		Str("database", cfg.DatabasePath).
		Msg("starting teamboard")

	gormLevel := gormlogger.Silent
	if *debug {
		gormLevel = gormlogger.Info
	}
	store, err := gormdb.NewStore(gormdb.Config{
		Path:     cfg.DatabasePath,
		MaxConns: cfg.DatabaseMaxConns,
		LogLevel: gormLevel,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to open database")
	}
	defer store.Close()

	var generator chat.Generator
	var moderator moderation.Moderator
	client, err := assistant.NewClient(assistant.Config{
		APIKey:      cfg.OpenAIAPIKey,
		Model:       cfg.OpenAIModel,
		MaxTokens:   cfg.OpenAIMaxTokens,
		Temperature: cfg.OpenAITemperature,
	}, logger)
	switch {
	case errors.Is(err, assistant.ErrNotConfigured):
		logger.Warn().Msg("OPENAI_API_KEY not set, assistant disabled")
	case err != nil:
		logger.Fatal().Err(err).Msg("failed to create assistant client")
	default:
		generator = client
		if cfg.ModerationEnabled {
			moderator = client
		}
	}

	gate := moderation.NewGate(moderator, cfg.ModerationTimeout, logger)
	messageStore := gormdb.NewMessageStore(store)
	knowledgeStore := gormdb.NewKnowledgeStore(store)

	kbService := knowledge.NewService(knowledgeStore, messageStore, gate, logger)
	chatService := chat.NewService(messageStore, generator, logger)

	svc := server.New(server.Config{Environment: cfg.Environment}, kbService, chatService, logger)

	httpServer := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           svc.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info().Str("addr", cfg.Addr()).Msg("listening")
		errCh <- httpServer.ListenAndServe()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		logger.Info().Str("signal", sig.String()).Msg("shutting down")
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("server failed")
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("graceful shutdown failed")
	}
	logger.Info().Msg("stopped")
}
