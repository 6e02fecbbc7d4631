// Package backend constructs the conversation session from an ordered list
// of model backends. Candidates are tried in priority order (cheap local
// server first, hosted realtime API second); the first one that constructs
// wins.
package backend

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"
)

// Kind distinguishes locally hosted model servers from hosted APIs.
type Kind string

const (
	KindLocalModel  Kind = "local"
	KindRemoteModel Kind = "remote"
)

// Candidate is one configured backend option. Immutable once listed.
type Candidate struct {
	Kind Kind
	Name string

	Model   string
	BaseURL string // local endpoint
	APIKey  string // remote credential

	Voice       string
	Temperature float64

	ProbeTimeout time.Duration
}

// Conversation is the opaque handle of an active backend-bound session.
// It is owned by exactly one attempt at a time; Close is idempotent.
type Conversation interface {
	Backend() string
	Start(ctx context.Context, instructions, roomName string) error
	Close() error
}

// ErrNoBackendAvailable is the only error the selector surfaces: every
// candidate failed to construct.
var ErrNoBackendAvailable = errors.New("no conversation backend available")

// DialFunc constructs a conversation for one candidate.
type DialFunc func(ctx context.Context, c Candidate) (Conversation, error)

// Selector tries candidates in order. Dial defaults to the real
// constructors; tests substitute their own.
type Selector struct {
	Logger *slog.Logger
	Dial   DialFunc
}

// Select returns the conversation of the first candidate (at index >= from)
// that constructs, along with its index. Construction failures are logged
// and swallowed; there are no per-candidate retries here.
func (s *Selector) Select(ctx context.Context, candidates []Candidate, from int) (Conversation, int, error) {
	logger := s.Logger
	if logger == nil {
		logger = slog.Default()
	}
	dial := s.Dial
	if dial == nil {
		dial = Dial
	}

	for i := from; i < len(candidates); i++ {
		c := candidates[i]
		if err := ctx.Err(); err != nil {
			return nil, 0, err
		}
		conv, err := dial(ctx, c)
		if err != nil {
			logger.Warn("backend candidate unavailable",
				"backend", c.Name, "kind", string(c.Kind), "error", err)
			continue
		}
		logger.Info("conversation backend selected", "backend", conv.Backend())
		return conv, i, nil
	}
	return nil, 0, ErrNoBackendAvailable
}

// Dial constructs the conversation for a candidate by kind.
func Dial(ctx context.Context, c Candidate) (Conversation, error) {
	switch c.Kind {
	case KindLocalModel:
		return dialOllama(ctx, c)
	case KindRemoteModel:
		return dialGemini(ctx, c)
	default:
		return nil, fmt.Errorf("backend: unknown candidate kind %q", c.Kind)
	}
}
