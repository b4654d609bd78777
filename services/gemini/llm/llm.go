package llm

import (
	"context"
	"errors"
	"fmt"

	"dialogcast/core"
	einollm "dialogcast/services/eino/llm"

	"github.com/cloudwego/eino-ext/components/model/gemini"
	"google.golang.org/genai"
)

const DefaultModel = "gemini-2.0-flash"

// Config holds the configuration for a Gemini agent.
type Config struct {
	APIKey          string              `json:"-"`
	Model           string              `json:"model"`
	MaxTokens       int                 `json:"max_tokens,omitempty"`
	InstructionRole core.LLMMessageRole `json:"instruction_role,omitempty"`
}

// NewGeminiLLMService builds a gemini chat model over the Gemini API backend
// and wraps it as a dialogue agent.
func NewGeminiLLMService(ctx context.Context, config Config, logger *core.Logger) (*einollm.EinoLLMService, error) {
	if config.APIKey == "" {
		return nil, errors.New("Gemini API key is required")
	}
	if config.Model == "" {
		config.Model = DefaultModel
	}
	if config.InstructionRole == "" {
		config.InstructionRole = core.LLMMessageRoleSystem
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  config.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("init genai client: %w", err)
	}
	chatModel, err := gemini.NewChatModel(ctx, &gemini.Config{
		Client: client,
		Model:  config.Model,
	})
	if err != nil {
		return nil, fmt.Errorf("init gemini chat model: %w", err)
	}

	return einollm.NewEinoLLMService(chatModel, einollm.Config{
		Provider:        "gemini",
		Model:           config.Model,
		MaxTokens:       config.MaxTokens,
		InstructionRole: config.InstructionRole,
		Classify:        ClassifyError,
	}, logger), nil
}

// ClassifyError maps genai API errors to provider error kinds.
func ClassifyError(err error) core.ProviderErrorKind {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return core.ProviderErrorKindForStatus(apiErr.Code)
	}
	var apiErrPtr *genai.APIError
	if errors.As(err, &apiErrPtr) {
		return core.ProviderErrorKindForStatus(apiErrPtr.Code)
	}
	return core.ProviderErrorTransport
}
