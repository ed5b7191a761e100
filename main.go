package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/clipforge/backend/api"
	"github.com/clipforge/backend/config"
	"github.com/clipforge/backend/llm"
	"github.com/clipforge/backend/media"
	"github.com/clipforge/backend/relay"
	"github.com/clipforge/backend/store"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Debug().Msg("no .env file found, using environment variables")
	}

	// Load configuration
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}
	if level, err := zerolog.ParseLevel(cfg.LogLevel); err == nil {
		zerolog.SetGlobalLevel(level)
	}

	log.Info().Int("port", cfg.Port).Str("media_root", cfg.MediaRoot).Str("model", cfg.OpenAIModel).Msg("starting backend")
	if cfg.OpenAIAPIKey == "" {
		log.Warn().Msg("OPENAI_API_KEY is not set; chat requests will fail upstream authentication")
	}
	if err := os.MkdirAll(cfg.MediaRoot, 0o755); err != nil {
		log.Fatal().Err(err).Msg("failed to create media root")
	}

	// Wire components
	sessions := store.NewMemoryStore(cfg.SessionCapacity, cfg.SessionTTL)
	pacer := media.NewPacer(cfg.RateBytesPerSec, cfg.ChunkSize)
	streamer := media.NewStreamer(pacer)
	probe := media.NewProbe(cfg.MediaRoot)
	client := llm.NewClient(cfg.OpenAIBaseURL, cfg.OpenAIAPIKey, cfg.OpenAIModel, cfg.LLMTimeout)
	rl := relay.New(client, sessions, cfg.Temperature)
	h := api.NewHandler(sessions, rl, probe, streamer, pacer)

	// Create Echo server
	e := echo.New()
	e.HideBanner = true

	// Middleware
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())

	h.RegisterRoutes(e)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		addr := fmt.Sprintf(":%d", cfg.Port)
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		log.Info().Msg("shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return e.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		log.Fatal().Err(err).Msg("server error")
	}
	log.Info().Msg("backend stopped")
}
