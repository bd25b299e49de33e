package speech

import (
	"context"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
)

// Config carries the provider settings for both speech directions.
type Config struct {
	APIKey          string
	LanguageCode    string
	SampleRateHertz int
	VoiceName       string
	OutputDir       string
	ResponseTTL     time.Duration
	SweepPeriod     time.Duration
}

// Service adapts the Google Cloud Speech REST endpoints to the pipeline's
// transcribe/synthesize capabilities. One bounded call per request, no
// internal retry.
type Service struct {
	cfg        Config
	httpClient *http.Client
	logger     zerolog.Logger
}

// NewService builds the adapter. The output directory is created eagerly
// so synthesis never races directory creation.
func NewService(cfg Config, logger zerolog.Logger) (*Service, error) {
	if cfg.LanguageCode == "" {
		cfg.LanguageCode = "ro-RO"
	}
	if cfg.SampleRateHertz == 0 {
		cfg.SampleRateHertz = 16000
	}
	if cfg.OutputDir == "" {
		cfg.OutputDir = filepath.Join("uploads", "responses")
	}

	if err := os.MkdirAll(cfg.OutputDir, 0o755); err != nil {
		return nil, err
	}

	return &Service{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		logger:     logger.With().Str("component", "speech").Logger(),
	}, nil
}

// StartFileSweeper deletes synthesized responses older than the TTL on a
// fixed period, until the context is cancelled.
func (s *Service) StartFileSweeper(ctx context.Context) {
	if s.cfg.SweepPeriod <= 0 || s.cfg.ResponseTTL <= 0 {
		return
	}
	go func() {
		ticker := time.NewTicker(s.cfg.SweepPeriod)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.sweepFiles()
			}
		}
	}()
}

func (s *Service) sweepFiles() {
	entries, err := os.ReadDir(s.cfg.OutputDir)
	if err != nil {
		s.logger.Warn().Err(err).Msg("audio sweep: cannot read output dir")
		return
	}

	cutoff := time.Now().Add(-s.cfg.ResponseTTL)
	deleted := 0
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		if info.ModTime().Before(cutoff) {
			if err := os.Remove(filepath.Join(s.cfg.OutputDir, entry.Name())); err == nil {
				deleted++
			}
		}
	}
	if deleted > 0 {
		s.logger.Info().Int("deleted", deleted).Msg("audio sweep: removed stale response files")
	}
}
