package llm

import (
	"context"
	"errors"
	"fmt"

	"dialogcast/core"
	einollm "dialogcast/services/eino/llm"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/cloudwego/eino-ext/components/model/claude"
)

const (
	DefaultModel     = "claude-3-5-haiku-latest"
	DefaultMaxTokens = 1024
)

// Config holds the configuration for an Anthropic agent.
type Config struct {
	APIKey          string              `json:"-"`
	BaseURL         string              `json:"base_url,omitempty"`
	Model           string              `json:"model"`
	MaxTokens       int                 `json:"max_tokens,omitempty"`
	InstructionRole core.LLMMessageRole `json:"instruction_role,omitempty"`
}

// NewAnthropicLLMService builds a claude chat model and wraps it as a
// dialogue agent. Instructions default to the user role.
func NewAnthropicLLMService(ctx context.Context, config Config, logger *core.Logger) (*einollm.EinoLLMService, error) {
	if config.APIKey == "" {
		return nil, errors.New("Anthropic API key is required")
	}
	if config.Model == "" {
		config.Model = DefaultModel
	}
	if config.MaxTokens <= 0 {
		config.MaxTokens = DefaultMaxTokens
	}
	if config.InstructionRole == "" {
		config.InstructionRole = core.LLMMessageRoleUser
	}

	var baseURL *string
	if config.BaseURL != "" {
		baseURL = &config.BaseURL
	}
	chatModel, err := claude.NewChatModel(ctx, &claude.Config{
		APIKey:    config.APIKey,
		Model:     config.Model,
		BaseURL:   baseURL,
		MaxTokens: config.MaxTokens,
	})
	if err != nil {
		return nil, fmt.Errorf("init claude chat model: %w", err)
	}

	return einollm.NewEinoLLMService(chatModel, einollm.Config{
		Provider:        "anthropic",
		Model:           config.Model,
		MaxTokens:       config.MaxTokens,
		InstructionRole: config.InstructionRole,
		Classify:        ClassifyError,
	}, logger), nil
}

// ClassifyError maps Anthropic API errors to provider error kinds.
func ClassifyError(err error) core.ProviderErrorKind {
	var apiErr *anthropic.Error
	if errors.As(err, &apiErr) {
		return core.ProviderErrorKindForStatus(apiErr.StatusCode)
	}
	return core.ProviderErrorTransport
}
