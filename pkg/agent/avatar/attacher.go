package avatar

import (
	"context"
	"errors"
	"log/slog"
	"time"
)

// Mode is the agent's presentation mode after avatar attachment resolves.
type Mode string

const (
	ModeAvatarActive Mode = "avatar-active"
	ModeVoiceOnly    Mode = "voice-only"
)

// Config carries the avatar credentials. All four values are required for
// an attach to be attempted at all.
type Config struct {
	APIKey          string
	ReplicaID       string
	PersonaID       string
	ParticipantName string

	BaseURL      string
	StartTimeout time.Duration
}

// Starter is the started sub-session surface the attacher depends on.
type Starter interface {
	Start(ctx context.Context, roomName string) error
}

// Result is the terminal outcome of one attach. Voice-only is a valid
// outcome, not an error; QuotaExhausted marks the one cause the user
// should be told about explicitly.
type Result struct {
	Mode           Mode
	Binding        Starter
	QuotaExhausted bool
	Note           string
}

// Attacher decides whether and how to bind an avatar to the current
// attempt. NewSession defaults to the real client; tests substitute fakes.
type Attacher struct {
	Logger     *slog.Logger
	Config     Config
	NewSession func(Config) Starter
}

func defaultNewSession(cfg Config) Starter {
	opts := []Option{}
	if cfg.BaseURL != "" {
		opts = append(opts, WithBaseURL(cfg.BaseURL))
	}
	return NewClient(cfg.APIKey, opts...).NewSession(cfg.ReplicaID, cfg.PersonaID, cfg.ParticipantName)
}

// Attach runs the avatar startup under a hard deadline. The conversation
// session is never touched here; whatever happens, the caller's session
// continues unaffected.
func (a *Attacher) Attach(ctx context.Context, roomName string) Result {
	logger := a.Logger
	if logger == nil {
		logger = slog.Default()
	}
	cfg := a.Config

	if missing := missingConfig(cfg); len(missing) > 0 {
		logger.Warn("avatar configuration incomplete, running voice-only", "missing", missing)
		return Result{Mode: ModeVoiceOnly}
	}

	newSession := a.NewSession
	if newSession == nil {
		newSession = defaultNewSession
	}
	sess := newSession(cfg)

	timeout := cfg.StartTimeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	startCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	logger.Info("starting avatar session",
		"replica_id", cfg.ReplicaID, "persona_id", cfg.PersonaID)

	err := sess.Start(startCtx, roomName)
	if err == nil {
		logger.Info("avatar session ready", "mode", string(ModeAvatarActive))
		return Result{Mode: ModeAvatarActive, Binding: sess}
	}

	var statusErr *APIStatusError
	switch {
	case errors.As(err, &statusErr) && statusErr.QuotaExceeded():
		logger.Error("avatar api out of conversational credits, falling back to voice-only",
			"status", statusErr.StatusCode)
		return Result{
			Mode:           ModeVoiceOnly,
			QuotaExhausted: true,
			Note:           "The agent is running in voice-only mode due to avatar credit limitations. Add more conversational credits to enable the visual avatar.",
		}
	case errors.As(err, &statusErr):
		logger.Error("avatar api error, falling back to voice-only", "error", statusErr)
	case errors.Is(err, context.DeadlineExceeded):
		logger.Warn("avatar startup timed out, falling back to voice-only", "timeout", timeout)
	default:
		logger.Error("avatar startup failed, falling back to voice-only", "error", err)
	}
	return Result{Mode: ModeVoiceOnly}
}

func missingConfig(cfg Config) []string {
	var missing []string
	if cfg.APIKey == "" {
		missing = append(missing, "TAVUS_API_KEY")
	}
	if cfg.ReplicaID == "" {
		missing = append(missing, "TAVUS_REPLICA_ID")
	}
	if cfg.PersonaID == "" {
		missing = append(missing, "TAVUS_PERSONA_ID")
	}
	if cfg.ParticipantName == "" {
		missing = append(missing, "TAVUS_PARTICIPANT_NAME")
	}
	return missing
}
