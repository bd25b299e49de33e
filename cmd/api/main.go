package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/voxline/voxline/internal/config"
	"github.com/voxline/voxline/internal/handler"
	"github.com/voxline/voxline/internal/model/persona"
	"github.com/voxline/voxline/internal/observability"
	aiservice "github.com/voxline/voxline/internal/service/ai"
	convservice "github.com/voxline/voxline/internal/service/conv"
	"github.com/voxline/voxline/internal/service/orchestrator"
	speechservice "github.com/voxline/voxline/internal/service/speech"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		bootLogger := observability.NewLogger("info", false)
		bootLogger.Fatal().Err(err).Msg("failed to load configuration")
	}

	logger := observability.NewLogger(cfg.LogLevel, cfg.LogPretty)

	personaStore := persona.NewMemoryStore(persona.Seed())

	convSvc := convservice.NewService(personaStore, logger, cfg.SessionIdleTTL, cfg.SweepInterval)
	convSvc.StartSweeper(ctx)

	if !cfg.AIEnabled() {
		logger.Fatal().Msg("ark credentials missing: provide ARK_API_KEY (or ARK_ACCESS_KEY/ARK_SECRET_KEY) and ARK_MODEL")
	}
	chatModel, err := cfg.NewChatModel(ctx)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize chat model")
	}
	aiSvc := aiservice.NewService(chatModel, personaStore, aiservice.Options{
		Model:              cfg.ArkModel,
		MaxContextMessages: cfg.MaxContextMessages,
		Timeout:            cfg.GenerationTimeout,
	}, logger)

	speechSvc, err := speechservice.NewService(speechservice.Config{
		APIKey:          cfg.GoogleAPIKey,
		LanguageCode:    cfg.AudioLanguage,
		SampleRateHertz: cfg.AudioSampleRate,
		VoiceName:       cfg.TTSVoiceName,
		OutputDir:       cfg.OutputDir,
		ResponseTTL:     cfg.ResponseFileTTL,
		SweepPeriod:     cfg.FileSweepPeriod,
	}, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize speech service")
	}
	speechSvc.StartFileSweeper(ctx)

	orch := orchestrator.NewService(convSvc, personaStore, aiSvc, speechSvc, speechSvc, cfg.EndGraceDelay, logger)

	router := handler.NewRouter(personaStore, orch, handler.Options{
		MaxAudioBytes: cfg.AudioMaxBytes,
		OutputDir:     cfg.OutputDir,
		Logger:        logger,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	logger.Info().Str("addr", srv.Addr).Msg("voxline listening")
	if err := runServer(ctx, srv); err != nil {
		logger.Fatal().Err(err).Msg("server error")
	}
}

func runServer(ctx context.Context, srv *http.Server) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
		err := <-errCh
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
