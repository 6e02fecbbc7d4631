package backend

import "github.com/plasement-ai/teachagent/pkg/agent/config"

// Candidates builds the fallback order from configuration: the local Ollama
// server is preferred, Gemini Live is the fallback.
func Candidates(cfg config.Config) []Candidate {
	return []Candidate{
		{
			Kind:         KindLocalModel,
			Name:         "ollama",
			Model:        cfg.OllamaModel,
			BaseURL:      cfg.OllamaBaseURL,
			ProbeTimeout: cfg.ProbeTimeout,
		},
		{
			Kind:        KindRemoteModel,
			Name:        "gemini",
			Model:       cfg.GeminiModel,
			APIKey:      cfg.GoogleAPIKey,
			Voice:       cfg.GeminiVoice,
			Temperature: cfg.GeminiTemperature,
		},
	}
}
