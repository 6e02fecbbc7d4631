// Package supervisor runs one full session attempt: backend selection,
// avatar attachment, conversation start, then the liveness loop, with the
// conversation released exactly once on the way out.
package supervisor

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/plasement-ai/teachagent/pkg/agent/avatar"
	"github.com/plasement-ai/teachagent/pkg/agent/backend"
	"github.com/plasement-ai/teachagent/pkg/agent/lifecycle"
	"github.com/plasement-ai/teachagent/pkg/agent/room"
)

// Room is the narrow view of the room the supervisor samples. It never
// mutates room state.
type Room interface {
	Name() string
	ConnectionState() (room.ConnectionState, error)
}

// Attacher resolves the avatar question for one attempt.
type Attacher interface {
	Attach(ctx context.Context, roomName string) avatar.Result
}

// StartError marks a conversation that was selected but failed to start.
// It is fatal to the attempt and counts as an exceptional termination.
type StartError struct {
	Backend string
	Err     error
}

func (e *StartError) Error() string {
	return fmt.Sprintf("start conversation on %s: %v", e.Backend, e.Err)
}

func (e *StartError) Unwrap() error { return e.Err }

type Supervisor struct {
	Logger *slog.Logger
	State  *lifecycle.State

	Selector   *backend.Selector
	Candidates []backend.Candidate
	Attacher   Attacher

	Instructions     string
	LivenessInterval time.Duration

	// FallbackOnStartFailure makes a start failure advance to the next
	// candidate instead of failing the attempt.
	FallbackOnStartFailure bool
}

// RunAttempt executes one attempt against rm. A nil return is a clean end
// (disconnect, sampling error, or shutdown); an error return is exceptional
// and wraps backend.ErrNoBackendAvailable or *StartError.
func (s *Supervisor) RunAttempt(ctx context.Context, rm Room) error {
	logger := s.Logger
	if logger == nil {
		logger = slog.Default()
	}

	selector := s.Selector
	if selector == nil {
		selector = &backend.Selector{Logger: logger}
	}

	var avatarResult *avatar.Result
	from := 0
	for {
		conv, idx, err := selector.Select(ctx, s.Candidates, from)
		if err != nil {
			return fmt.Errorf("select backend: %w", err)
		}
		closer := &guardedClose{logger: logger, conv: conv}
		defer closer.close()

		// Avatar attachment happens once per attempt; the vendor-side
		// binding is room-scoped, so a backend fallback keeps it.
		if avatarResult == nil {
			res := s.attach(ctx, rm)
			avatarResult = &res
		}

		if err := conv.Start(ctx, s.Instructions, rm.Name()); err != nil {
			closer.close()
			if s.FallbackOnStartFailure && idx+1 < len(s.Candidates) {
				logger.Warn("conversation start failed, trying next candidate",
					"backend", conv.Backend(), "error", err)
				from = idx + 1
				continue
			}
			return &StartError{Backend: conv.Backend(), Err: err}
		}

		s.logActive(logger, conv.Backend(), *avatarResult)
		s.keepAlive(ctx, logger, rm)
		closer.close()
		return nil
	}
}

func (s *Supervisor) attach(ctx context.Context, rm Room) avatar.Result {
	if s.Attacher == nil {
		return avatar.Result{Mode: avatar.ModeVoiceOnly}
	}
	return s.Attacher.Attach(ctx, rm.Name())
}

func (s *Supervisor) logActive(logger *slog.Logger, backendName string, res avatar.Result) {
	if res.Mode == avatar.ModeAvatarActive {
		logger.Info("agent active with avatar", "backend", backendName)
		return
	}
	logger.Info("agent active, voice-only", "backend", backendName)
	if res.QuotaExhausted && res.Note != "" {
		logger.Info(res.Note)
	}
}

// keepAlive samples the room connection until the attempt should end. Exit
// conditions: shutdown requested, room disconnected, or a sampling error.
func (s *Supervisor) keepAlive(ctx context.Context, logger *slog.Logger, rm Room) {
	interval := s.LivenessInterval
	if interval <= 0 {
		interval = 30 * time.Second
	}
	logger.Info("session keep-alive monitoring started", "interval", interval)
	defer logger.Info("session keep-alive monitoring stopped")

	timer := time.NewTimer(interval)
	defer timer.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-timer.C:
		}

		if s.State.ShutdownRequested() {
			return
		}

		state, err := rm.ConnectionState()
		if err != nil {
			logger.Error("room connection sample failed, ending attempt", "error", err)
			return
		}
		if state == room.StateDisconnected {
			logger.Warn("room disconnected, ending attempt")
			return
		}
		logger.Debug("session health check passed")
		timer.Reset(interval)
	}
}

// guardedClose releases a conversation exactly once; close errors are
// logged, never re-raised.
type guardedClose struct {
	logger *slog.Logger
	conv   backend.Conversation
	once   sync.Once
}

func (g *guardedClose) close() {
	if g == nil || g.conv == nil {
		return
	}
	g.once.Do(func() {
		if err := g.conv.Close(); err != nil {
			g.logger.Warn("error closing conversation session", "error", err)
			return
		}
		g.logger.Info("conversation session cleaned up", "backend", g.conv.Backend())
	})
}
