package services

import (
	"context"
	"fmt"
	"log/slog"

	openai "github.com/sashabaranov/go-openai"

	"github.com/hmnguyen-dev/tutien-engine/pkg/narrative"
)

// OpenAINarrator implements NarratorService on the OpenAI chat completion
// API via go-openai.
type OpenAINarrator struct {
	client    *openai.Client
	modelName string
	logger    *slog.Logger
}

func NewOpenAINarrator(apiKey, modelName string, logger *slog.Logger) *OpenAINarrator {
	return &OpenAINarrator{
		client:    openai.NewClient(apiKey),
		modelName: modelName,
		logger:    logger,
	}
}

func (o *OpenAINarrator) GenerateTurn(ctx context.Context, prompt narrative.TurnPrompt) (*narrative.Proposal, error) {
	messages := BuildMessages(prompt)
	chatMessages := make([]openai.ChatCompletionMessage, len(messages))
	for i, m := range messages {
		chatMessages[i] = openai.ChatCompletionMessage{
			Role:    m.Role,
			Content: m.Content,
		}
	}

	resp, err := o.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       o.modelName,
		Messages:    chatMessages,
		Temperature: 0.8,
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("openai chat completion failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("openai returned no choices")
	}

	o.logger.Debug("openai turn generated",
		"model", resp.Model,
		"prompt_tokens", resp.Usage.PromptTokens,
		"completion_tokens", resp.Usage.CompletionTokens)

	return parseProposal(resp.Choices[0].Message.Content)
}

func (o *OpenAINarrator) Ping(ctx context.Context) error {
	if _, err := o.client.ListModels(ctx); err != nil {
		return fmt.Errorf("openai ping failed: %w", err)
	}
	return nil
}
