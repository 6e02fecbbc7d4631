package room

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

// wsTestServer upgrades every request and holds connections open until the
// test closes them.
type wsTestServer struct {
	*httptest.Server

	mu    sync.Mutex
	conns []*websocket.Conn
}

func newWSTestServer(t *testing.T) *wsTestServer {
	t.Helper()
	s := &wsTestServer{}
	upgrader := websocket.Upgrader{}
	s.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("access_token") == "" {
			http.Error(w, "missing token", http.StatusUnauthorized)
			return
		}
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		s.mu.Lock()
		s.conns = append(s.conns, conn)
		s.mu.Unlock()
		go func() {
			for {
				if _, _, err := conn.ReadMessage(); err != nil {
					return
				}
			}
		}()
	}))
	t.Cleanup(s.closeAll)
	t.Cleanup(s.Close)
	return s
}

func (s *wsTestServer) closeAll() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range s.conns {
		_ = c.Close()
	}
	s.conns = nil
}

func testConfig(url string) Config {
	return Config{
		URL:              url,
		APIKey:           "key",
		APISecret:        "secret",
		Room:             "test-room",
		Identity:         "tester",
		HandshakeTimeout: 2 * time.Second,
		PingInterval:     50 * time.Millisecond,
		WriteTimeout:     time.Second,
	}
}

func waitForState(t *testing.T, r *Room, want ConnectionState) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		got, err := r.ConnectionState()
		if err == nil && got == want {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	got, err := r.ConnectionState()
	t.Fatalf("state=%v err=%v, want %v", got, err, want)
}

func TestConnect_ReportsConnected(t *testing.T) {
	srv := newWSTestServer(t)

	r, err := Connect(context.Background(), nil, testConfig(srv.URL))
	if err != nil {
		t.Fatalf("Connect: %v", err)
	}
	defer r.Close()

	if r.Name() != "test-room" {
		t.Errorf("Name=%q", r.Name())
	}
	waitForState(t, r, StateConnected)
}

func TestConnect_ServerDropMarksDisconnected(t *testing.T) {
	srv := newWSTestServer(t)

	r, err := Connect(context.Background(), nil, testConfig(srv.URL))
	if err != nil {
		t.Fatalf("Connect: %v", err)
	}
	defer r.Close()

	waitForState(t, r, StateConnected)
	srv.closeAll()
	waitForState(t, r, StateDisconnected)
}

func TestClose_IdempotentAndSamplingErrors(t *testing.T) {
	srv := newWSTestServer(t)

	r, err := Connect(context.Background(), nil, testConfig(srv.URL))
	if err != nil {
		t.Fatalf("Connect: %v", err)
	}

	if err := r.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if err := r.Close(); err != nil {
		t.Fatalf("second Close: %v", err)
	}

	if _, err := r.ConnectionState(); err == nil {
		t.Fatalf("expected sampling error after local close")
	}
}

func TestConnect_RejectsEmptyRoom(t *testing.T) {
	cfg := testConfig("wss://rooms.example.test")
	cfg.Room = ""
	if _, err := Connect(context.Background(), nil, cfg); err == nil {
		t.Fatalf("expected error for empty room name")
	}
}
