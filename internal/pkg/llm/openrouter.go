// Package llm wraps the OpenRouter chat-completions API. OpenRouter speaks
// the OpenAI wire protocol, so the official client is pointed at its base URL.
package llm

import (
	"context"
	"fmt"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"go.uber.org/zap"

	"github.com/FACorreiaa/go-globetrotters/internal/pkg/config"
)

// Generator is the narrow text-generation collaborator consumed by services.
// Callers must treat every error as soft and degrade to their fallback path.
type Generator interface {
	Generate(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}

type OpenRouterClient struct {
	client openai.Client
	cfg    config.OpenRouterConfig
	logger *zap.Logger
}

var _ Generator = (*OpenRouterClient)(nil)

func NewOpenRouterClient(cfg config.OpenRouterConfig, logger *zap.Logger) *OpenRouterClient {
	client := openai.NewClient(
		option.WithAPIKey(cfg.APIKey),
		option.WithBaseURL(cfg.BaseURL),
		option.WithHeader("HTTP-Referer", cfg.SiteURL),
		option.WithHeader("X-Title", cfg.AppName),
		option.WithRequestTimeout(cfg.Timeout),
	)
	return &OpenRouterClient{
		client: client,
		cfg:    cfg,
		logger: logger,
	}
}

// Generate runs one chat completion and returns the raw reply text.
func (c *OpenRouterClient) Generate(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	if c.cfg.APIKey == "" {
		return "", fmt.Errorf("openrouter api key not configured")
	}

	completion, err := c.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model:       c.cfg.Model,
		Temperature: openai.Float(0.7),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(systemPrompt),
			openai.UserMessage(userPrompt),
		},
	})
	if err != nil {
		c.logger.Warn("OpenRouter call failed", zap.String("model", c.cfg.Model), zap.Error(err))
		return "", fmt.Errorf("openrouter completion failed: %w", err)
	}
	if len(completion.Choices) == 0 {
		return "", fmt.Errorf("openrouter returned no choices")
	}

	return completion.Choices[0].Message.Content, nil
}
