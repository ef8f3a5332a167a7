package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/hmnguyen-dev/tutien-engine/pkg/narrative"
)

const (
	anthropicBaseURL = "https://api.anthropic.com/v1"
	anthropicVersion = "2023-06-01"

	DefaultAnthropicTemperature = 0.8
	DefaultAnthropicMaxTokens   = 2048
)

// AnthropicNarrator implements NarratorService against the Anthropic
// messages API.
type AnthropicNarrator struct {
	apiKey     string
	modelName  string
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
}

type anthropicRequest struct {
	Model       string              `json:"model"`
	MaxTokens   int                 `json:"max_tokens"`
	Temperature *float64            `json:"temperature,omitempty"`
	Messages    []narrative.Message `json:"messages"`
	System      string              `json:"system,omitempty"`
}

type anthropicContentBlock struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type anthropicResponse struct {
	ID         string                  `json:"id"`
	Content    []anthropicContentBlock `json:"content"`
	Model      string                  `json:"model"`
	StopReason string                  `json:"stop_reason"`
	Usage      struct {
		InputTokens  int `json:"input_tokens"`
		OutputTokens int `json:"output_tokens"`
	} `json:"usage"`
	Error *struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

func NewAnthropicNarrator(apiKey, modelName string, logger *slog.Logger) *AnthropicNarrator {
	return &AnthropicNarrator{
		apiKey:    apiKey,
		modelName: modelName,
		baseURL:   anthropicBaseURL,
		httpClient: &http.Client{
			Timeout: 120 * time.Second,
		},
		logger: logger,
	}
}

// WithBaseURL overrides the API endpoint; used by tests.
func (a *AnthropicNarrator) WithBaseURL(url string) *AnthropicNarrator {
	a.baseURL = url
	return a
}

func (a *AnthropicNarrator) GenerateTurn(ctx context.Context, prompt narrative.TurnPrompt) (*narrative.Proposal, error) {
	messages := BuildMessages(prompt)

	// The messages API takes the system prompt as a top-level field.
	var system string
	conversation := make([]narrative.Message, 0, len(messages))
	for _, m := range messages {
		if m.Role == narrative.RoleSystem {
			system = m.Content
			continue
		}
		conversation = append(conversation, m)
	}

	temperature := DefaultAnthropicTemperature
	body, err := json.Marshal(anthropicRequest{
		Model:       a.modelName,
		MaxTokens:   DefaultAnthropicMaxTokens,
		Temperature: &temperature,
		Messages:    conversation,
		System:      system,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.baseURL+"/messages", bytes.NewBuffer(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("x-api-key", a.apiKey)
	req.Header.Set("anthropic-version", anthropicVersion)
	req.Header.Set("content-type", "application/json")

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to make request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("API request failed with status %d: %s", resp.StatusCode, string(respBody))
	}

	var ar anthropicResponse
	if err := json.Unmarshal(respBody, &ar); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}
	if ar.Error != nil {
		return nil, fmt.Errorf("API error: %s", ar.Error.Message)
	}

	var text string
	for _, block := range ar.Content {
		if block.Type == "text" {
			text += block.Text
		}
	}

	a.logger.Debug("anthropic turn generated",
		"model", ar.Model,
		"input_tokens", ar.Usage.InputTokens,
		"output_tokens", ar.Usage.OutputTokens)

	return parseProposal(text)
}

func (a *AnthropicNarrator) Ping(ctx context.Context) error {
	if a.apiKey == "" {
		return fmt.Errorf("anthropic api key not configured")
	}
	return nil
}
