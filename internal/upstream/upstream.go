// Package upstream forwards chat contents to a hosted generative-text API.
package upstream

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"tanya-chat/internal/config"
)

// Response is an upstream reply relayed back to the caller unchanged.
type Response struct {
	StatusCode  int
	ContentType string
	Body        []byte
}

// Relay forwards the raw contents array and returns the upstream reply.
// A non-nil error means the upstream could not be reached or read.
type Relay interface {
	Forward(ctx context.Context, contents json.RawMessage) (*Response, error)
}

// New returns the relay configured by cfg.Provider.
func New(cfg config.Config) Relay {
	httpClient := &http.Client{Timeout: cfg.UpstreamTimeout}
	if cfg.UpstreamTimeout <= 0 {
		httpClient.Timeout = 60 * time.Second
	}
	if cfg.Provider == config.ProviderOpenAI {
		return NewOpenAIRelay(cfg.OpenAIAPIKey, cfg.OpenAIBaseURL, cfg.OpenAIModel, httpClient)
	}
	return NewGeminiRelay(cfg.GeminiAPIKey, cfg.GeminiBaseURL, cfg.GeminiModel, httpClient)
}
