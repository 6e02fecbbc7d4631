package avatar

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestSessionStart_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/v2/conversations" {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		if got := r.Header.Get("x-api-key"); got != "test-key" {
			t.Errorf("x-api-key=%q", got)
		}

		var req createConversationRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if req.ReplicaID != "rf1" || req.PersonaID != "p1" {
			t.Errorf("request ids: %+v", req)
		}
		if req.Properties.ParticipantName != "Avatar" {
			t.Errorf("participant name=%q", req.Properties.ParticipantName)
		}
		if req.ConversationName != "demo-room" {
			t.Errorf("conversation name=%q", req.ConversationName)
		}

		_ = json.NewEncoder(w).Encode(createConversationResponse{
			ConversationID:  "c123",
			ConversationURL: "https://avatar.example.test/c123",
		})
	}))
	defer srv.Close()

	sess := NewClient("test-key", WithBaseURL(srv.URL)).NewSession("rf1", "p1", "Avatar")
	if err := sess.Start(context.Background(), "demo-room"); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if sess.ConversationID() != "c123" {
		t.Errorf("ConversationID=%q", sess.ConversationID())
	}
}

func TestSessionStart_QuotaStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "out of conversational credits", http.StatusPaymentRequired)
	}))
	defer srv.Close()

	sess := NewClient("k", WithBaseURL(srv.URL)).NewSession("rf1", "p1", "Avatar")
	err := sess.Start(context.Background(), "room")

	var statusErr *APIStatusError
	if !errors.As(err, &statusErr) {
		t.Fatalf("err=%v, want APIStatusError", err)
	}
	if !statusErr.QuotaExceeded() {
		t.Errorf("status %d should be the quota condition", statusErr.StatusCode)
	}
}

func TestSessionStart_GenericStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "internal", http.StatusInternalServerError)
	}))
	defer srv.Close()

	sess := NewClient("k", WithBaseURL(srv.URL)).NewSession("rf1", "p1", "Avatar")
	err := sess.Start(context.Background(), "room")

	var statusErr *APIStatusError
	if !errors.As(err, &statusErr) {
		t.Fatalf("err=%v, want APIStatusError", err)
	}
	if statusErr.QuotaExceeded() {
		t.Errorf("500 must not read as quota")
	}
	if sess.ConversationID() != "" {
		t.Errorf("no conversation should be recorded on failure")
	}
}

func TestSessionStart_CanceledContext(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	sess := NewClient("k", WithBaseURL(srv.URL)).NewSession("rf1", "p1", "Avatar")
	if err := sess.Start(ctx, "room"); !errors.Is(err, context.Canceled) {
		t.Fatalf("err=%v, want context.Canceled", err)
	}
}
