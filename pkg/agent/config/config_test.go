package config

import (
	"testing"
	"time"
)

func setRequired(t *testing.T) {
	t.Helper()
	t.Setenv("LIVEKIT_URL", "wss://rooms.example.test")
	t.Setenv("LIVEKIT_API_KEY", "key")
	t.Setenv("LIVEKIT_API_SECRET", "secret")
}

func TestLoadFromEnv_Defaults(t *testing.T) {
	setRequired(t)

	cfg, err := LoadFromEnv()
	if err != nil {
		t.Fatalf("LoadFromEnv: %v", err)
	}

	if cfg.RoomName != "english-teacher-demo" {
		t.Errorf("RoomName=%q", cfg.RoomName)
	}
	if cfg.OllamaModel != "llama3" || cfg.OllamaBaseURL != "http://localhost:11434" {
		t.Errorf("ollama defaults: model=%q url=%q", cfg.OllamaModel, cfg.OllamaBaseURL)
	}
	if cfg.GeminiModel != "gemini-2.0-flash-exp" || cfg.GeminiVoice != "Puck" || cfg.GeminiTemperature != 0.8 {
		t.Errorf("gemini defaults: model=%q voice=%q temp=%v", cfg.GeminiModel, cfg.GeminiVoice, cfg.GeminiTemperature)
	}
	if cfg.AvatarStartTimeout != 30*time.Second {
		t.Errorf("AvatarStartTimeout=%v", cfg.AvatarStartTimeout)
	}
	if cfg.LivenessInterval != 30*time.Second {
		t.Errorf("LivenessInterval=%v", cfg.LivenessInterval)
	}
	if cfg.MaxRestarts != 10 {
		t.Errorf("MaxRestarts=%d", cfg.MaxRestarts)
	}
	if cfg.NormalRestartDelay != 10*time.Second || cfg.BackoffStep != 5*time.Second || cfg.BackoffCap != 60*time.Second {
		t.Errorf("restart timing: %v %v %v", cfg.NormalRestartDelay, cfg.BackoffStep, cfg.BackoffCap)
	}
	if cfg.HealthPort != 8000 {
		t.Errorf("HealthPort=%d", cfg.HealthPort)
	}
	if cfg.FallbackOnStartFailure {
		t.Errorf("FallbackOnStartFailure should default to false")
	}
	if cfg.TavusParticipantName != "English-Teacher-Avatar" {
		t.Errorf("TavusParticipantName=%q", cfg.TavusParticipantName)
	}
}

func TestLoadFromEnv_Overrides(t *testing.T) {
	setRequired(t)
	t.Setenv("PORT", "9090")
	t.Setenv("AGENT_MAX_RESTARTS", "3")
	t.Setenv("AGENT_LIVENESS_INTERVAL", "5s")
	t.Setenv("FAST_MODE", "true")
	t.Setenv("AGENT_FALLBACK_ON_START_FAILURE", "true")
	t.Setenv("GEMINI_TEMPERATURE", "0.2")

	cfg, err := LoadFromEnv()
	if err != nil {
		t.Fatalf("LoadFromEnv: %v", err)
	}
	if cfg.HealthPort != 9090 {
		t.Errorf("HealthPort=%d", cfg.HealthPort)
	}
	if cfg.MaxRestarts != 3 {
		t.Errorf("MaxRestarts=%d", cfg.MaxRestarts)
	}
	if cfg.LivenessInterval != 5*time.Second {
		t.Errorf("LivenessInterval=%v", cfg.LivenessInterval)
	}
	if !cfg.FastMode {
		t.Errorf("FastMode should be true")
	}
	if !cfg.FallbackOnStartFailure {
		t.Errorf("FallbackOnStartFailure should be true")
	}
	if cfg.GeminiTemperature != 0.2 {
		t.Errorf("GeminiTemperature=%v", cfg.GeminiTemperature)
	}
}

func TestLoadFromEnv_MissingCredentials(t *testing.T) {
	t.Setenv("LIVEKIT_URL", "")
	t.Setenv("LIVEKIT_API_KEY", "key")
	t.Setenv("LIVEKIT_API_SECRET", "secret")

	if _, err := LoadFromEnv(); err == nil {
		t.Fatalf("expected error for missing LIVEKIT_URL")
	}
}

func TestLoadFromEnv_BadDurationFallsBackToDefault(t *testing.T) {
	setRequired(t)
	t.Setenv("AGENT_LIVENESS_INTERVAL", "not-a-duration")

	cfg, err := LoadFromEnv()
	if err != nil {
		t.Fatalf("LoadFromEnv: %v", err)
	}
	if cfg.LivenessInterval != 30*time.Second {
		t.Errorf("LivenessInterval=%v, want default", cfg.LivenessInterval)
	}
}
