// Package llm provides a pluggable interface for hosted text-generation
// providers.
package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/goalspace/goalspace/internal/model"
)

// Message is one role-tagged entry of a generation request.
type Message struct {
	Role    model.Role `json:"role"`
	Content string     `json:"content"`
}

// Options holds per-request model parameters. Zero values fall back to the
// client's defaults.
type Options struct {
	Model       string
	Temperature float64
	MaxTokens   int
}

// Generator produces a text completion for a system instruction plus a
// message history.
type Generator interface {
	Chat(ctx context.Context, system string, messages []Message, opts Options) (string, error)
}

// --- OpenAI-compatible provider ---

// Client calls any OpenAI-compatible chat completion API (OpenAI,
// Perplexity, local gateways).
type Client struct {
	baseURL     string
	apiKey      string
	model       string
	temperature float64
	maxTokens   int
	client      *http.Client
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature,omitempty"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// NewClient creates a chat client for an OpenAI-compatible endpoint.
func NewClient(baseURL, apiKey, model string, timeout time.Duration) *Client {
	if baseURL == "" {
		baseURL = "https://api.openai.com/v1"
	}
	if model == "" {
		model = "gpt-4o-mini"
	}
	if timeout <= 0 {
		timeout = 120 * time.Second
	}
	return &Client{
		baseURL:     baseURL,
		apiKey:      apiKey,
		model:       model,
		temperature: 0.7,
		maxTokens:   2000,
		client:      &http.Client{Timeout: timeout},
	}
}

func (c *Client) Chat(ctx context.Context, system string, messages []Message, opts Options) (string, error) {
	mdl := opts.Model
	if mdl == "" {
		mdl = c.model
	}
	temperature := opts.Temperature
	if temperature == 0 {
		temperature = c.temperature
	}
	maxTokens := opts.MaxTokens
	if maxTokens == 0 {
		maxTokens = c.maxTokens
	}

	req := chatRequest{Model: mdl, Temperature: temperature, MaxTokens: maxTokens}
	if system != "" {
		req.Messages = append(req.Messages, chatMessage{Role: "system", Content: system})
	}
	for _, m := range messages {
		req.Messages = append(req.Messages, chatMessage{Role: string(m.Role), Content: m.Content})
	}

	body, _ := json.Marshal(req)
	httpReq, err := http.NewRequestWithContext(ctx, "POST", c.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("generation request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != 200 {
		b, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("generation error %d: %s", resp.StatusCode, string(b))
	}

	var result chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", err
	}
	if result.Error != nil {
		return "", fmt.Errorf("generation error: %s", result.Error.Message)
	}
	if len(result.Choices) == 0 {
		return "", fmt.Errorf("no completion returned")
	}
	return result.Choices[0].Message.Content, nil
}

// --- Factory ---

// NewFromEnv creates a generator from environment variables.
// GOALSPACE_LLM_URL: base URL override
// GOALSPACE_LLM_MODEL: model name
// OPENAI_API_KEY: bearer token
// Returns nil when no key is configured (generation disabled).
func NewFromEnv(timeout time.Duration) Generator {
	key := os.Getenv("OPENAI_API_KEY")
	url := os.Getenv("GOALSPACE_LLM_URL")
	if key == "" && url == "" {
		return nil // generation disabled
	}
	return NewClient(url, key, os.Getenv("GOALSPACE_LLM_MODEL"), timeout)
}
