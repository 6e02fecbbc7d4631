package backend

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"google.golang.org/genai"
)

// geminiConversation runs the session on Gemini's Live API. Construction
// only validates credentials and builds the client; the realtime connect
// happens in Start, where a failure is fatal to the attempt rather than a
// reason to try another candidate.
type geminiConversation struct {
	name        string
	client      *genai.Client
	model       string
	voice       string
	temperature float64

	mu        sync.Mutex
	live      *genai.Session
	closeOnce sync.Once
	closeErr  error
}

func dialGemini(ctx context.Context, c Candidate) (Conversation, error) {
	if c.APIKey == "" {
		return nil, errors.New("gemini: GOOGLE_API_KEY is not set")
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  c.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("gemini: create client: %w", err)
	}
	return &geminiConversation{
		name:        c.Name,
		client:      client,
		model:       c.Model,
		voice:       c.Voice,
		temperature: c.Temperature,
	}, nil
}

func (g *geminiConversation) Backend() string {
	return g.name
}

func (g *geminiConversation) Start(ctx context.Context, instructions, roomName string) error {
	cfg := &genai.LiveConnectConfig{
		ResponseModalities: []genai.Modality{genai.ModalityAudio},
		SystemInstruction: &genai.Content{
			Parts: []*genai.Part{genai.NewPartFromText(instructions)},
		},
		SpeechConfig: &genai.SpeechConfig{
			VoiceConfig: &genai.VoiceConfig{
				PrebuiltVoiceConfig: &genai.PrebuiltVoiceConfig{VoiceName: g.voice},
			},
		},
		Temperature: genai.Ptr(float32(g.temperature)),
	}

	live, err := g.client.Live.Connect(ctx, g.model, cfg)
	if err != nil {
		return fmt.Errorf("gemini: live connect %s: %w", g.model, err)
	}

	g.mu.Lock()
	g.live = live
	g.mu.Unlock()

	// Service the realtime socket so server messages do not pile up. The
	// loop ends when the session closes, ours or theirs.
	go func() {
		for {
			if _, err := live.Receive(); err != nil {
				return
			}
		}
	}()
	return nil
}

func (g *geminiConversation) Close() error {
	g.closeOnce.Do(func() {
		g.mu.Lock()
		live := g.live
		g.mu.Unlock()
		if live != nil {
			g.closeErr = live.Close()
		}
	})
	return g.closeErr
}
