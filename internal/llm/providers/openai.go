package providers

import (
	"context"
	"fmt"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"talentloop/internal/config"
	"talentloop/internal/logging"
)

// OpenAIProvider implements the text-generation provider interface using the
// OpenAI chat completion API
type OpenAIProvider struct {
	client *openai.Client
	config *config.Config
	logger logging.Logger
}

// NewOpenAIProvider creates a new OpenAI provider instance
func NewOpenAIProvider(cfg *config.Config) *OpenAIProvider {
	return &OpenAIProvider{
		client: openai.NewClient(cfg.LLM.APIKey),
		config: cfg,
		logger: logging.GetGlobalLogger().WithField("provider", "openai"),
	}
}

// Complete sends a prompt and returns the text completion
func (op *OpenAIProvider) Complete(ctx context.Context, prompt string) (string, error) {
	startTime := time.Now()

	resp, err := op.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       op.model(),
		MaxTokens:   op.config.LLM.MaxTokens,
		Temperature: op.config.LLM.Temperature,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleUser,
				Content: prompt,
			},
		},
	})
	if err != nil {
		return "", fmt.Errorf("failed to call OpenAI API: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("empty response from OpenAI")
	}

	responseText := resp.Choices[0].Message.Content
	if strings.TrimSpace(responseText) == "" {
		return "", fmt.Errorf("no text content in OpenAI response")
	}

	op.logger.Debug("OpenAI completion finished", map[string]interface{}{
		"prompt_length":   len(prompt),
		"response_length": len(responseText),
		"processing_time": time.Since(startTime).String(),
	})

	return responseText, nil
}

// model resolves the configured model name, defaulting to gpt-4o
func (op *OpenAIProvider) model() string {
	if op.config.LLM.Model != "" {
		return op.config.LLM.Model
	}
	return openai.GPT4o
}

// IsHealthy checks if the OpenAI provider is healthy and available
func (op *OpenAIProvider) IsHealthy(ctx context.Context) error {
	if op.config.LLM.APIKey == "" {
		return fmt.Errorf("OpenAI API key not configured - set LLM_API_KEY environment variable")
	}

	_, err := op.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:     op.model(),
		MaxTokens: 5,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleUser,
				Content: "Hello",
			},
		},
	})
	if err != nil {
		return fmt.Errorf("OpenAI API health check failed: %w", err)
	}

	return nil
}

// GetProviderName returns the name of the provider
func (op *OpenAIProvider) GetProviderName() string {
	return "openai"
}
