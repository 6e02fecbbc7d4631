package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/plasement-ai/teachagent/internal/dotenv"
	"github.com/plasement-ai/teachagent/internal/procfile"
	"github.com/plasement-ai/teachagent/pkg/agent/avatar"
	"github.com/plasement-ai/teachagent/pkg/agent/backend"
	"github.com/plasement-ai/teachagent/pkg/agent/config"
	"github.com/plasement-ai/teachagent/pkg/agent/health"
	"github.com/plasement-ai/teachagent/pkg/agent/lifecycle"
	"github.com/plasement-ai/teachagent/pkg/agent/prompt"
	"github.com/plasement-ai/teachagent/pkg/agent/room"
	"github.com/plasement-ai/teachagent/pkg/agent/supervisor"
)

// roomConn is what one attempt needs from a live room connection.
type roomConn interface {
	supervisor.Room
	Close() error
}

type agentDeps struct {
	loadConfig   func() (config.Config, error)
	connect      func(context.Context, *slog.Logger, room.Config) (roomConn, error)
	dial         backend.DialFunc
	startHealth  func(*slog.Logger, int)
	spawn        func(string, ...string) (int, error)
	signalNotify func(chan<- os.Signal, ...os.Signal)
	signalStop   func(chan<- os.Signal)
}

func defaultAgentDeps() agentDeps {
	return agentDeps{
		loadConfig: config.LoadFromEnv,
		connect: func(ctx context.Context, logger *slog.Logger, cfg room.Config) (roomConn, error) {
			return room.Connect(ctx, logger, cfg)
		},
		dial:        backend.Dial,
		startHealth: health.Serve,
		spawn:       procfile.Spawn,
		signalNotify: func(c chan<- os.Signal, sig ...os.Signal) {
			signal.Notify(c, sig...)
		},
		signalStop: signal.Stop,
	}
}

// modeOpts is how each CLI verb shapes the supervised run.
type modeOpts struct {
	name         string
	roomOverride string
	serveHealth  bool
	logToFile    bool
}

// runAgentMode is the shared body of every long-running verb: load config,
// set up logging and signals, then hand the restart loop to the lifecycle
// controller until shutdown or budget exhaustion.
func runAgentMode(ctx context.Context, stderr io.Writer, deps agentDeps, opts modeOpts) error {
	if deps.loadConfig == nil || deps.connect == nil {
		return errors.New("missing agent dependencies")
	}
	if deps.signalNotify == nil || deps.signalStop == nil {
		return errors.New("missing signal dependency")
	}

	if err := dotenv.Load(".env.local", ".env"); err != nil {
		return err
	}

	cfg, err := deps.loadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if opts.roomOverride != "" {
		cfg.RoomName = opts.roomOverride
	}

	out := stderr
	if opts.logToFile {
		f, ferr := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if ferr != nil {
			fmt.Fprintf(stderr, "teachagent: cannot open log file %s: %v\n", cfg.LogFile, ferr)
		} else {
			defer f.Close()
			out = io.MultiWriter(stderr, f)
		}
	}
	logger := slog.New(slog.NewTextHandler(out, nil))

	if cfg.FastMode {
		logger.Info("fast mode enabled, text-only responses")
	}
	if opts.serveHealth && deps.startHealth != nil {
		deps.startHealth(logger, cfg.HealthPort)
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	state := lifecycle.NewState(cfg.MaxRestarts)

	sigCh := make(chan os.Signal, 1)
	deps.signalNotify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer deps.signalStop(sigCh)
	go func() {
		select {
		case sig := <-sigCh:
			logger.Info("shutdown signal received", "signal", sig.String())
			state.RequestShutdown()
			cancel()
		case <-ctx.Done():
		}
	}()

	sup := &supervisor.Supervisor{
		Logger:     logger,
		State:      state,
		Selector:   &backend.Selector{Logger: logger, Dial: deps.dial},
		Candidates: backend.Candidates(cfg),
		Attacher: &avatar.Attacher{
			Logger: logger,
			Config: avatar.Config{
				APIKey:          cfg.TavusAPIKey,
				ReplicaID:       cfg.TavusReplicaID,
				PersonaID:       cfg.TavusPersonaID,
				ParticipantName: cfg.TavusParticipantName,
				BaseURL:         cfg.TavusBaseURL,
				StartTimeout:    cfg.AvatarStartTimeout,
			},
		},
		Instructions:           prompt.Instructions(),
		LivenessInterval:       cfg.LivenessInterval,
		FallbackOnStartFailure: cfg.FallbackOnStartFailure,
	}

	roomCfg := room.Config{
		URL:              cfg.LiveKitURL,
		APIKey:           cfg.LiveKitAPIKey,
		APISecret:        cfg.LiveKitAPISecret,
		Room:             cfg.RoomName,
		Identity:         cfg.ParticipantIdentity,
		HandshakeTimeout: cfg.RoomHandshakeTimeout,
		PingInterval:     cfg.RoomPingInterval,
		WriteTimeout:     cfg.RoomWriteTimeout,
	}

	ctl := &lifecycle.Controller{
		Logger: logger,
		State:  state,
		RunAttempt: func(ctx context.Context) error {
			rm, err := deps.connect(ctx, logger, roomCfg)
			if err != nil {
				return fmt.Errorf("connect room %q: %w", roomCfg.Room, err)
			}
			defer func() { _ = rm.Close() }()
			return sup.RunAttempt(ctx, rm)
		},
		NormalDelay: cfg.NormalRestartDelay,
		BackoffStep: cfg.BackoffStep,
		BackoffCap:  cfg.BackoffCap,
	}

	logger.Info("starting agent", "mode", opts.name, "room", cfg.RoomName)
	if err := ctl.Run(ctx); err != nil {
		return fmt.Errorf("agent terminated: %w", err)
	}
	logger.Info("agent stopped")
	return nil
}

// pidFilePath matches the config default without requiring room
// credentials; stop and status must work with nothing else configured.
func pidFilePath() string {
	if v := os.Getenv("AGENT_PID_FILE"); v != "" {
		return v
	}
	return "agent.pid"
}

// runBackground detaches a worker copy of this binary and records its PID.
func runBackground(stdout io.Writer, deps agentDeps) error {
	if deps.spawn == nil {
		return errors.New("missing spawn dependency")
	}
	exe, err := os.Executable()
	if err != nil {
		return fmt.Errorf("locate binary: %w", err)
	}
	pid, err := deps.spawn(exe, "background-worker")
	if err != nil {
		return fmt.Errorf("start background worker: %w", err)
	}
	path := pidFilePath()
	if err := procfile.Write(path, pid); err != nil {
		return fmt.Errorf("record pid %d: %w", pid, err)
	}
	fmt.Fprintf(stdout, "Agent started as background process (PID: %d)\n", pid)
	fmt.Fprintf(stdout, "Process ID saved to: %s\n", path)
	fmt.Fprintf(stdout, "To stop: teachagent stop\n")
	return nil
}

func runStop(stdout io.Writer) error {
	pid, err := procfile.Stop(pidFilePath())
	if errors.Is(err, procfile.ErrNotRunning) {
		fmt.Fprintln(stdout, "No background agent is running.")
		return nil
	}
	if err != nil {
		return err
	}
	fmt.Fprintf(stdout, "Background agent (PID: %d) stopped.\n", pid)
	return nil
}

func runStatus(stdout io.Writer) error {
	pid, err := procfile.Status(pidFilePath())
	if errors.Is(err, procfile.ErrNotRunning) {
		fmt.Fprintln(stdout, "Background agent is not running.")
		return nil
	}
	if err != nil {
		return err
	}
	fmt.Fprintf(stdout, "Background agent is running (PID: %d).\n", pid)
	return nil
}
