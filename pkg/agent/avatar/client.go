// Package avatar binds a visual rendering sub-session to the active
// conversation. Avatar startup is best-effort: every failure path degrades
// the agent to voice-only mode instead of failing the attempt.
package avatar

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// DefaultBaseURL is the default avatar API endpoint.
const DefaultBaseURL = "https://tavusapi.com"

// APIStatusError is a non-2xx reply from the avatar API. Status 402 is the
// distinguished out-of-credits condition.
type APIStatusError struct {
	StatusCode int
	Message    string
}

func (e *APIStatusError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("avatar api: status %d", e.StatusCode)
	}
	return fmt.Sprintf("avatar api: status %d: %s", e.StatusCode, e.Message)
}

// QuotaExceeded reports whether the API refused for billing reasons.
func (e *APIStatusError) QuotaExceeded() bool {
	return e.StatusCode == http.StatusPaymentRequired
}

// Client calls the avatar vendor's REST API.
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

// Option configures a Client.
type Option func(*Client)

func WithBaseURL(u string) Option {
	return func(c *Client) { c.baseURL = strings.TrimSuffix(u, "/") }
}

func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.httpClient = h }
}

func NewClient(apiKey string, opts ...Option) *Client {
	c := &Client{
		apiKey:     apiKey,
		baseURL:    DefaultBaseURL,
		httpClient: &http.Client{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Session is one avatar sub-session. It is created cheaply; the network
// work happens in Start.
type Session struct {
	client          *Client
	replicaID       string
	personaID       string
	participantName string

	conversationID  string
	conversationURL string
}

func (c *Client) NewSession(replicaID, personaID, participantName string) *Session {
	return &Session{
		client:          c,
		replicaID:       replicaID,
		personaID:       personaID,
		participantName: participantName,
	}
}

type createConversationRequest struct {
	ReplicaID        string                 `json:"replica_id"`
	PersonaID        string                 `json:"persona_id"`
	ConversationName string                 `json:"conversation_name,omitempty"`
	Properties       conversationProperties `json:"properties"`
}

type conversationProperties struct {
	ParticipantName string `json:"participant_name"`
}

type createConversationResponse struct {
	ConversationID  string `json:"conversation_id"`
	ConversationURL string `json:"conversation_url"`
}

// Start asks the avatar backend to spin up a rendering session for the
// given room. The caller bounds ctx; expiry surfaces as a context error.
func (s *Session) Start(ctx context.Context, roomName string) error {
	payload, err := json.Marshal(createConversationRequest{
		ReplicaID:        s.replicaID,
		PersonaID:        s.personaID,
		ConversationName: roomName,
		Properties:       conversationProperties{ParticipantName: s.participantName},
	})
	if err != nil {
		return fmt.Errorf("avatar: encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		s.client.baseURL+"/v2/conversations", bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("avatar: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", s.client.apiKey)

	resp, err := s.client.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("avatar: create conversation: %w", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &APIStatusError{
			StatusCode: resp.StatusCode,
			Message:    strings.TrimSpace(string(body)),
		}
	}

	var created createConversationResponse
	if err := json.Unmarshal(body, &created); err != nil {
		return fmt.Errorf("avatar: decode response: %w", err)
	}
	s.conversationID = created.ConversationID
	s.conversationURL = created.ConversationURL
	return nil
}

// ConversationID is the vendor-side identifier of the running sub-session.
// Empty until Start succeeds.
func (s *Session) ConversationID() string {
	return s.conversationID
}
