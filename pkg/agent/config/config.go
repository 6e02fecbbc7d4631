// Package config loads agent configuration from the environment.
//
// The credential variable names (LIVEKIT_*, GOOGLE_API_KEY, TAVUS_*,
// OLLAMA_*) match what the deployment environments already export; the
// AGENT_* knobs tune supervision behavior and rarely need changing.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

type Config struct {
	// Room server connection.
	LiveKitURL          string
	LiveKitAPIKey       string
	LiveKitAPISecret    string
	RoomName            string
	ParticipantIdentity string

	RoomHandshakeTimeout time.Duration
	RoomPingInterval     time.Duration
	RoomWriteTimeout     time.Duration

	// Conversation backends, in fallback order: local Ollama first,
	// Gemini Live second.
	OllamaModel   string
	OllamaBaseURL string
	ProbeTimeout  time.Duration

	GoogleAPIKey      string
	GeminiModel       string
	GeminiVoice       string
	GeminiTemperature float64

	// Avatar backend.
	TavusAPIKey          string
	TavusReplicaID       string
	TavusPersonaID       string
	TavusParticipantName string
	TavusBaseURL         string
	AvatarStartTimeout   time.Duration

	// Supervision.
	LivenessInterval       time.Duration
	MaxRestarts            int
	NormalRestartDelay     time.Duration
	BackoffStep            time.Duration
	BackoffCap             time.Duration
	FallbackOnStartFailure bool

	// Liveness endpoint.
	HealthPort int

	FastMode bool
	LogFile  string
	PIDFile  string
}

func LoadFromEnv() (Config, error) {
	cfg := Config{
		LiveKitURL:          os.Getenv("LIVEKIT_URL"),
		LiveKitAPIKey:       os.Getenv("LIVEKIT_API_KEY"),
		LiveKitAPISecret:    os.Getenv("LIVEKIT_API_SECRET"),
		RoomName:            envOr("AGENT_ROOM_NAME", "english-teacher-demo"),
		ParticipantIdentity: envOr("AGENT_PARTICIPANT_IDENTITY", "english-teacher-agent"),

		RoomHandshakeTimeout: envDurationOr("AGENT_ROOM_HANDSHAKE_TIMEOUT", 10*time.Second),
		RoomPingInterval:     envDurationOr("AGENT_ROOM_PING_INTERVAL", 20*time.Second),
		RoomWriteTimeout:     envDurationOr("AGENT_ROOM_WRITE_TIMEOUT", 5*time.Second),

		OllamaModel:   envOr("OLLAMA_MODEL", "llama3"),
		OllamaBaseURL: envOr("OLLAMA_BASE_URL", "http://localhost:11434"),
		ProbeTimeout:  envDurationOr("AGENT_BACKEND_PROBE_TIMEOUT", 5*time.Second),

		GoogleAPIKey:      os.Getenv("GOOGLE_API_KEY"),
		GeminiModel:       envOr("GEMINI_MODEL", "gemini-2.0-flash-exp"),
		GeminiVoice:       envOr("GEMINI_VOICE", "Puck"),
		GeminiTemperature: envFloat64Or("GEMINI_TEMPERATURE", 0.8),

		TavusAPIKey:          os.Getenv("TAVUS_API_KEY"),
		TavusReplicaID:       os.Getenv("TAVUS_REPLICA_ID"),
		TavusPersonaID:       os.Getenv("TAVUS_PERSONA_ID"),
		TavusParticipantName: envOr("TAVUS_PARTICIPANT_NAME", "English-Teacher-Avatar"),
		TavusBaseURL:         envOr("TAVUS_BASE_URL", "https://tavusapi.com"),
		AvatarStartTimeout:   envDurationOr("AGENT_AVATAR_START_TIMEOUT", 30*time.Second),

		LivenessInterval:       envDurationOr("AGENT_LIVENESS_INTERVAL", 30*time.Second),
		MaxRestarts:            envIntOr("AGENT_MAX_RESTARTS", 10),
		NormalRestartDelay:     envDurationOr("AGENT_NORMAL_RESTART_DELAY", 10*time.Second),
		BackoffStep:            envDurationOr("AGENT_BACKOFF_STEP", 5*time.Second),
		BackoffCap:             envDurationOr("AGENT_BACKOFF_CAP", 60*time.Second),
		FallbackOnStartFailure: envBoolOr("AGENT_FALLBACK_ON_START_FAILURE", false),

		HealthPort: envIntOr("PORT", 8000),

		FastMode: envBoolOr("FAST_MODE", false),
		LogFile:  envOr("AGENT_LOG_FILE", "english_teacher_agent.log"),
		PIDFile:  envOr("AGENT_PID_FILE", "agent.pid"),
	}

	if cfg.LiveKitURL == "" {
		return Config{}, fmt.Errorf("LIVEKIT_URL must be set")
	}
	if cfg.LiveKitAPIKey == "" {
		return Config{}, fmt.Errorf("LIVEKIT_API_KEY must be set")
	}
	if cfg.LiveKitAPISecret == "" {
		return Config{}, fmt.Errorf("LIVEKIT_API_SECRET must be set")
	}
	if cfg.RoomHandshakeTimeout <= 0 {
		return Config{}, fmt.Errorf("AGENT_ROOM_HANDSHAKE_TIMEOUT must be > 0")
	}
	if cfg.RoomPingInterval <= 0 {
		return Config{}, fmt.Errorf("AGENT_ROOM_PING_INTERVAL must be > 0")
	}
	if cfg.RoomWriteTimeout <= 0 {
		return Config{}, fmt.Errorf("AGENT_ROOM_WRITE_TIMEOUT must be > 0")
	}
	if cfg.ProbeTimeout <= 0 {
		return Config{}, fmt.Errorf("AGENT_BACKEND_PROBE_TIMEOUT must be > 0")
	}
	if cfg.AvatarStartTimeout <= 0 {
		return Config{}, fmt.Errorf("AGENT_AVATAR_START_TIMEOUT must be > 0")
	}
	if cfg.LivenessInterval <= 0 {
		return Config{}, fmt.Errorf("AGENT_LIVENESS_INTERVAL must be > 0")
	}
	if cfg.MaxRestarts <= 0 {
		return Config{}, fmt.Errorf("AGENT_MAX_RESTARTS must be > 0")
	}
	if cfg.NormalRestartDelay <= 0 {
		return Config{}, fmt.Errorf("AGENT_NORMAL_RESTART_DELAY must be > 0")
	}
	if cfg.BackoffStep <= 0 {
		return Config{}, fmt.Errorf("AGENT_BACKOFF_STEP must be > 0")
	}
	if cfg.BackoffCap < cfg.BackoffStep {
		return Config{}, fmt.Errorf("AGENT_BACKOFF_CAP must be >= AGENT_BACKOFF_STEP")
	}
	if cfg.HealthPort <= 0 || cfg.HealthPort > 65535 {
		return Config{}, fmt.Errorf("PORT must be a valid TCP port")
	}

	return cfg, nil
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envIntOr(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func envFloat64Or(key string, def float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return def
	}
	return f
}

func envBoolOr(key string, def bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}

func envDurationOr(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return def
	}
	return d
}
