package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"
)

const (
	defaultNormalDelay = 10 * time.Second
	defaultBackoffStep = 5 * time.Second
	defaultBackoffCap  = 60 * time.Second
)

// Controller drives attempts until the restart budget runs out or shutdown
// is requested. A failed attempt backs off progressively; a clean stop
// (disconnect) restarts after the short fixed delay. Both count against the
// restart budget.
type Controller struct {
	Logger     *slog.Logger
	State      *State
	RunAttempt func(ctx context.Context) error

	NormalDelay time.Duration
	BackoffStep time.Duration
	BackoffCap  time.Duration
}

// Run loops attempts until terminated. It returns nil for a shutdown or a
// budget exhausted by clean stops, and the last attempt error when the
// budget is exhausted by failures.
func (c *Controller) Run(ctx context.Context) error {
	if c.RunAttempt == nil {
		return errors.New("lifecycle: missing RunAttempt")
	}
	logger := c.Logger
	if logger == nil {
		logger = slog.Default()
	}
	state := c.State
	if state == nil {
		state = NewState(1)
	}

	normalDelay := c.NormalDelay
	if normalDelay <= 0 {
		normalDelay = defaultNormalDelay
	}
	step := c.BackoffStep
	if step <= 0 {
		step = defaultBackoffStep
	}
	capDelay := c.BackoffCap
	if capDelay <= 0 {
		capDelay = defaultBackoffCap
	}

	for {
		if state.ShutdownRequested() {
			logger.Info("shutdown requested, stopping")
			return nil
		}
		if state.Exhausted() {
			logger.Error("maximum restart attempts reached, giving up",
				"restart_count", state.RestartCount(), "max_restarts", state.MaxRestarts())
			return fmt.Errorf("lifecycle: restart budget exhausted after %d attempts", state.RestartCount())
		}

		logger.Info("starting agent attempt", "restart_count", state.RestartCount())
		err := c.RunAttempt(ctx)

		if state.ShutdownRequested() {
			logger.Info("shutdown requested, stopping")
			return nil
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}

		var delay time.Duration
		if err != nil {
			n := state.RecordRestart()
			logger.Error("agent attempt failed", "error", err,
				"restart_count", n, "max_restarts", state.MaxRestarts())
			if state.Exhausted() {
				logger.Error("maximum restart attempts reached, giving up")
				return err
			}
			delay = backoffDelay(n, step, capDelay)
			logger.Warn("restarting after failure", "delay", delay,
				"attempt", fmt.Sprintf("%d/%d", n, state.MaxRestarts()))
		} else {
			n := state.RecordRestart()
			if state.Exhausted() {
				logger.Info("restart budget exhausted after clean stop",
					"restart_count", n)
				return nil
			}
			delay = normalDelay
			logger.Info("agent stopped cleanly, restarting", "delay", delay)
		}

		if !c.waitOrShutdown(ctx, state, delay) {
			logger.Info("shutdown requested during restart delay")
			return nil
		}
	}
}

// backoffDelay is the progressive delay after failure number n, capped.
func backoffDelay(n int, step, capDelay time.Duration) time.Duration {
	d := time.Duration(n) * step
	if d > capDelay {
		return capDelay
	}
	return d
}

func (c *Controller) waitOrShutdown(ctx context.Context, state *State, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
	}
	return !state.ShutdownRequested()
}
