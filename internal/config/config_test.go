package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load err: %v", err)
	}

	if cfg.Port != "8080" {
		t.Fatalf("unexpected default port: %s", cfg.Port)
	}
	if cfg.MaxContextMessages != 20 {
		t.Fatalf("unexpected context window: %d", cfg.MaxContextMessages)
	}
	if cfg.SessionIdleTTL != 30*time.Minute {
		t.Fatalf("unexpected idle TTL: %v", cfg.SessionIdleTTL)
	}
	if cfg.EndGraceDelay != 5*time.Second {
		t.Fatalf("unexpected end grace delay: %v", cfg.EndGraceDelay)
	}
	if cfg.AudioLanguage != "ro-RO" {
		t.Fatalf("unexpected audio language: %s", cfg.AudioLanguage)
	}
}

func TestLoadRejectsTinyContextWindow(t *testing.T) {
	t.Setenv("MAX_CONTEXT_MESSAGES", "1")

	if _, err := Load(); err == nil {
		t.Fatal("expected error for context window of 1")
	}
}

func TestAIEnabled(t *testing.T) {
	cfg := &Config{}
	if cfg.AIEnabled() {
		t.Fatal("empty config should not enable AI")
	}

	cfg = &Config{ArkModel: "doubao-pro", ArkAPIKey: "key"}
	if !cfg.AIEnabled() {
		t.Fatal("api key + model should enable AI")
	}

	cfg = &Config{ArkModel: "doubao-pro", ArkAccessKey: "ak", ArkSecretKey: "sk"}
	if !cfg.AIEnabled() {
		t.Fatal("ak/sk + model should enable AI")
	}
}
