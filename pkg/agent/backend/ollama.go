package backend

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// ollamaConversation talks to a local Ollama server through its
// OpenAI-compatible endpoint.
type ollamaConversation struct {
	name   string
	client openai.Client
	model  string

	closeOnce sync.Once
}

// dialOllama probes the local server before committing to it: the most
// common failure mode is simply that nothing is listening.
func dialOllama(ctx context.Context, c Candidate) (Conversation, error) {
	baseURL := strings.TrimSuffix(c.BaseURL, "/")
	if !strings.HasSuffix(baseURL, "/v1") {
		baseURL += "/v1"
	}

	client := openai.NewClient(
		option.WithBaseURL(baseURL),
		option.WithAPIKey("ollama"), // the local server ignores the key but the client requires one
	)

	probeTimeout := c.ProbeTimeout
	if probeTimeout <= 0 {
		probeTimeout = 5 * time.Second
	}
	probeCtx, cancel := context.WithTimeout(ctx, probeTimeout)
	defer cancel()
	if _, err := client.Models.List(probeCtx); err != nil {
		return nil, fmt.Errorf("ollama: probe %s: %w", baseURL, err)
	}

	return &ollamaConversation{name: c.Name, client: client, model: c.Model}, nil
}

func (o *ollamaConversation) Backend() string {
	return o.name
}

// Start primes the model with the teaching instructions. A failing priming
// request means the model cannot serve the session at all.
func (o *ollamaConversation) Start(ctx context.Context, instructions, roomName string) error {
	_, err := o.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(o.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(instructions),
			openai.UserMessage(fmt.Sprintf("The session in room %q is starting. Greet the learner briefly.", roomName)),
		},
		MaxTokens: openai.Int(128),
	})
	if err != nil {
		return fmt.Errorf("ollama: start conversation with %s: %w", o.model, err)
	}
	return nil
}

func (o *ollamaConversation) Close() error {
	// Plain HTTP under the hood; nothing stateful to release server-side.
	o.closeOnce.Do(func() {})
	return nil
}
