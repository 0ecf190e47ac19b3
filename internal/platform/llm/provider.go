// Package llm holds the language-model integration: the provider
// abstraction, the OpenRouter implementation, and the high-level client
// the patient-dialogue and evaluation services talk to.
package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog"
)

const (
	// DefaultBaseURL is the OpenRouter API root.
	DefaultBaseURL = "https://openrouter.ai/api/v1"
	// DefaultModel is used when no model is configured.
	DefaultModel = "anthropic/claude-3.5-sonnet"

	requestTimeout = 60 * time.Second
)

// ErrEmptyResponse is returned when the API answers 200 with no choices.
var ErrEmptyResponse = errors.New("llm: empty response")

// Message is one turn in a chat completion request.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// GenOptions tunes a single generation call.
type GenOptions struct {
	MaxTokens   int
	Temperature float64
}

// Provider generates a completion for a message sequence.
type Provider interface {
	Generate(ctx context.Context, messages []Message, opts GenOptions) (string, error)
}

type chatRequest struct {
	Model       string    `json:"model"`
	Messages    []Message `json:"messages"`
	MaxTokens   int       `json:"max_tokens,omitempty"`
	Temperature float64   `json:"temperature"`
}

type chatResponse struct {
	Choices []struct {
		Message Message `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// OpenRouterProvider talks to the OpenRouter chat-completions API. Any
// OpenAI-compatible endpoint works through BaseURL.
type OpenRouterProvider struct {
	apiKey  string
	model   string
	baseURL string
	client  *http.Client
	logger  zerolog.Logger
}

// NewOpenRouterProvider creates a provider. Empty model or baseURL fall
// back to the defaults.
func NewOpenRouterProvider(apiKey, model, baseURL string, logger zerolog.Logger) *OpenRouterProvider {
	if model == "" {
		model = DefaultModel
	}
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &OpenRouterProvider{
		apiKey:  apiKey,
		model:   model,
		baseURL: baseURL,
		client:  &http.Client{Timeout: requestTimeout},
		logger:  logger.With().Str("component", "llm").Logger(),
	}
}

// Generate performs one chat-completions call and returns the assistant
// message content.
func (p *OpenRouterProvider) Generate(ctx context.Context, messages []Message, opts GenOptions) (string, error) {
	payload, err := json.Marshal(chatRequest{
		Model:       p.model,
		Messages:    messages,
		MaxTokens:   opts.MaxTokens,
		Temperature: opts.Temperature,
	})
	if err != nil {
		return "", fmt.Errorf("encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+"/chat/completions", bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+p.apiKey)
	req.Header.Set("Content-Type", "application/json")

	started := time.Now()
	resp, err := p.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("llm request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		p.logger.Warn().
			Int("status", resp.StatusCode).
			Str("model", p.model).
			Msg("llm request failed")
		return "", fmt.Errorf("llm status %d: %s", resp.StatusCode, string(body))
	}

	var out chatResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}
	if out.Error != nil {
		return "", fmt.Errorf("llm error: %s", out.Error.Message)
	}
	if len(out.Choices) == 0 {
		return "", ErrEmptyResponse
	}

	p.logger.Debug().
		Str("model", p.model).
		Dur("elapsed", time.Since(started)).
		Msg("llm completion")
	return out.Choices[0].Message.Content, nil
}
