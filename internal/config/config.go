package config

import (
	"context"
	"fmt"
	"time"

	"github.com/cloudwego/eino-ext/components/model/ark"
	"github.com/cloudwego/eino/components/model"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config holds all configuration for the voxline service.
type Config struct {
	// Server
	Port string `envconfig:"PORT" default:"8080"`

	// Observability
	LogLevel  string `envconfig:"LOG_LEVEL" default:"info"`
	LogPretty bool   `envconfig:"LOG_PRETTY" default:"false"`

	// Remote model (Ark)
	ArkAPIKey      string  `envconfig:"ARK_API_KEY" default:""`
	ArkAccessKey   string  `envconfig:"ARK_ACCESS_KEY" default:""`
	ArkSecretKey   string  `envconfig:"ARK_SECRET_KEY" default:""`
	ArkModel       string  `envconfig:"ARK_MODEL" default:""`
	ArkBaseURL     string  `envconfig:"ARK_BASE_URL" default:"https://ark.cn-beijing.volces.com/api/v3"`
	ArkRegion      string  `envconfig:"ARK_REGION" default:"cn-beijing"`
	ArkMaxTokens   int     `envconfig:"ARK_MAX_TOKENS" default:"500"`
	ArkTemperature float64 `envconfig:"ARK_TEMPERATURE" default:"0.7"`

	// Generation policy
	GenerationTimeout  time.Duration `envconfig:"GENERATION_TIMEOUT" default:"30s"`
	MaxContextMessages int           `envconfig:"MAX_CONTEXT_MESSAGES" default:"20"` // includes the system prompt

	// Speech providers (Google Cloud REST)
	GoogleAPIKey    string        `envconfig:"GOOGLE_CLOUD_API_KEY" default:""`
	AudioLanguage   string        `envconfig:"AUDIO_LANGUAGE_CODE" default:"ro-RO"`
	AudioSampleRate int           `envconfig:"AUDIO_SAMPLE_RATE" default:"16000"`
	TTSVoiceName    string        `envconfig:"TTS_VOICE_NAME" default:"ro-RO-Standard-A"`
	OutputDir       string        `envconfig:"OUTPUT_DIR" default:"uploads/responses"`
	AudioMaxBytes   int64         `envconfig:"AUDIO_MAX_BYTES" default:"10485760"` // 10MB upload cap
	ResponseFileTTL time.Duration `envconfig:"RESPONSE_FILE_TTL" default:"24h"`
	FileSweepPeriod time.Duration `envconfig:"FILE_SWEEP_PERIOD" default:"6h"`

	// Session lifecycle
	SessionIdleTTL time.Duration `envconfig:"SESSION_IDLE_TTL" default:"30m"`
	SweepInterval  time.Duration `envconfig:"SWEEP_INTERVAL" default:"10m"`
	EndGraceDelay  time.Duration `envconfig:"END_GRACE_DELAY" default:"5s"`
}

// Load reads configuration from a .env file (if present) and the environment.
func Load() (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	if cfg.MaxContextMessages < 2 {
		return nil, fmt.Errorf("MAX_CONTEXT_MESSAGES must allow the system prompt plus at least one turn, got %d", cfg.MaxContextMessages)
	}

	return &cfg, nil
}

// AIEnabled reports whether the required model credentials are present.
func (c *Config) AIEnabled() bool {
	return c.ArkModel != "" && (c.ArkAPIKey != "" || (c.ArkAccessKey != "" && c.ArkSecretKey != ""))
}

// NewChatModel builds the concrete remote model client from configuration.
func (c *Config) NewChatModel(ctx context.Context) (model.ChatModel, error) {
	if !c.AIEnabled() {
		return nil, fmt.Errorf("ark credentials missing: provide ARK_API_KEY (or ARK_ACCESS_KEY/ARK_SECRET_KEY) and ARK_MODEL")
	}

	temperature := float32(c.ArkTemperature)
	maxTokens := c.ArkMaxTokens

	return ark.NewChatModel(ctx, &ark.ChatModelConfig{
		BaseURL:     c.ArkBaseURL,
		Region:      c.ArkRegion,
		APIKey:      c.ArkAPIKey,
		AccessKey:   c.ArkAccessKey,
		SecretKey:   c.ArkSecretKey,
		Model:       c.ArkModel,
		MaxTokens:   &maxTokens,
		Temperature: &temperature,
	})
}
