// Package room maintains the agent's connection to the real-time room
// server. The rest of the agent treats the room as opaque: it only ever
// samples the connection state and hands the room name to collaborators.
package room

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
)

// ConnectionState is the externally observable state of the room link.
type ConnectionState int32

const (
	StateDisconnected ConnectionState = iota
	StateConnected
)

func (s ConnectionState) String() string {
	switch s {
	case StateConnected:
		return "connected"
	case StateDisconnected:
		return "disconnected"
	default:
		return fmt.Sprintf("unknown(%d)", int32(s))
	}
}

// ErrClosed is returned when sampling a room handle that was closed locally.
var ErrClosed = errors.New("room: handle closed")

type Config struct {
	URL       string
	APIKey    string
	APISecret string
	Room      string
	Identity  string

	HandshakeTimeout time.Duration
	PingInterval     time.Duration
	WriteTimeout     time.Duration
	TokenTTL         time.Duration
}

// Room is a live connection to one named room. The state field is written
// only by the read/ping goroutines and Close; everyone else samples it.
type Room struct {
	name   string
	logger *slog.Logger

	conn  *websocket.Conn
	state atomic.Int32

	closed    atomic.Bool
	closeOnce sync.Once
	done      chan struct{}
}

// Connect joins the room, minting a short-lived access token from the API
// key pair. The returned Room keeps the link alive with control pings until
// the server drops it or Close is called.
func Connect(ctx context.Context, logger *slog.Logger, cfg Config) (*Room, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Room == "" {
		return nil, fmt.Errorf("room: room name must not be empty")
	}

	ttl := cfg.TokenTTL
	if ttl <= 0 {
		ttl = 6 * time.Hour
	}
	token, err := AccessToken(cfg.APIKey, cfg.APISecret, cfg.Room, cfg.Identity, ttl)
	if err != nil {
		return nil, fmt.Errorf("room: mint access token: %w", err)
	}

	endpoint, err := joinURL(cfg.URL, token)
	if err != nil {
		return nil, err
	}

	dialer := websocket.Dialer{HandshakeTimeout: cfg.HandshakeTimeout}
	conn, resp, err := dialer.DialContext(ctx, endpoint, nil)
	if err != nil {
		if resp != nil {
			return nil, fmt.Errorf("room: dial %s: status %d: %w", cfg.Room, resp.StatusCode, err)
		}
		return nil, fmt.Errorf("room: dial %s: %w", cfg.Room, err)
	}

	r := &Room{
		name:   cfg.Room,
		logger: logger.With("component", "room", "room", cfg.Room),
		conn:   conn,
		done:   make(chan struct{}),
	}
	r.state.Store(int32(StateConnected))
	r.logger.Info("room connected")

	go r.readLoop()
	go r.pingLoop(cfg.PingInterval, cfg.WriteTimeout)

	return r, nil
}

func (r *Room) Name() string {
	return r.name
}

// ConnectionState samples the link state. It never mutates anything; the
// error case is sampling a handle that was already closed locally.
func (r *Room) ConnectionState() (ConnectionState, error) {
	if r == nil {
		return StateDisconnected, errors.New("room: nil handle")
	}
	if r.closed.Load() {
		return StateDisconnected, ErrClosed
	}
	return ConnectionState(r.state.Load()), nil
}

// Close tears the connection down. Safe to call more than once.
func (r *Room) Close() error {
	if r == nil {
		return nil
	}
	r.closeOnce.Do(func() {
		r.closed.Store(true)
		r.state.Store(int32(StateDisconnected))
		deadline := time.Now().Add(time.Second)
		_ = r.conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), deadline)
		_ = r.conn.Close()
		r.logger.Info("room closed")
	})
	return nil
}

// readLoop drains inbound frames so control messages are processed. The
// agent does not interpret room signaling; media is negotiated out of band.
// A read error is the disconnect signal.
func (r *Room) readLoop() {
	defer close(r.done)
	for {
		if _, _, err := r.conn.ReadMessage(); err != nil {
			r.markDisconnected("read", err)
			return
		}
	}
}

func (r *Room) pingLoop(interval, writeTimeout time.Duration) {
	if interval <= 0 {
		interval = 20 * time.Second
	}
	if writeTimeout <= 0 {
		writeTimeout = 5 * time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-r.done:
			return
		case <-ticker.C:
		}
		deadline := time.Now().Add(writeTimeout)
		if err := r.conn.WriteControl(websocket.PingMessage, nil, deadline); err != nil {
			r.markDisconnected("ping", err)
			return
		}
	}
}

func (r *Room) markDisconnected(op string, err error) {
	if r.state.Swap(int32(StateDisconnected)) == int32(StateConnected) && !r.closed.Load() {
		r.logger.Warn("room connection lost", "op", op, "error", err)
	}
}

func joinURL(raw, token string) (string, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("room: parse server url: %w", err)
	}
	switch u.Scheme {
	case "ws", "wss":
	case "http":
		u.Scheme = "ws"
	case "https":
		u.Scheme = "wss"
	default:
		return "", fmt.Errorf("room: unsupported url scheme %q", u.Scheme)
	}
	if u.Path == "" || u.Path == "/" {
		u.Path = "/rtc"
	}
	q := u.Query()
	q.Set("access_token", token)
	q.Set("auto_subscribe", "true")
	u.RawQuery = q.Encode()
	return u.String(), nil
}
