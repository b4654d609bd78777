package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"dialogcast/core"

	"github.com/sashabaranov/go-openai"
)

// Config holds the configuration for an OpenAI (or OpenAI-compatible) agent.
type Config struct {
	// Provider names the vendor for cost reports and errors. Defaults to "openai".
	Provider        string              `json:"provider,omitempty"`
	APIKey          string              `json:"-"`
	BaseURL         string              `json:"base_url,omitempty"`
	Model           string              `json:"model"`
	MaxTokens       int                 `json:"max_tokens,omitempty"`
	Temperature     float32             `json:"temperature,omitempty"`
	InstructionRole core.LLMMessageRole `json:"instruction_role,omitempty"`
}

// OpenAILLMService is one dialogue agent backed by the chat completions API.
// It owns the agent's history in go-openai's message shape.
type OpenAILLMService struct {
	client  *openai.Client
	config  Config
	logger  *core.Logger
	history []openai.ChatCompletionMessage
}

// NewOpenAILLMService creates a new instance of OpenAILLMService
func NewOpenAILLMService(config Config, logger *core.Logger) *OpenAILLMService {
	if config.Provider == "" {
		config.Provider = "openai"
	}
	if config.Model == "" {
		config.Model = openai.GPT4oMini
	}
	if config.InstructionRole == "" {
		config.InstructionRole = core.LLMMessageRoleSystem
	}
	if logger == nil {
		logger = core.GetLogger()
	}

	clientConfig := openai.DefaultConfig(config.APIKey)
	if config.BaseURL != "" {
		clientConfig.BaseURL = config.BaseURL
	}

	return &OpenAILLMService{
		client: openai.NewClientWithConfig(clientConfig),
		config: config,
		logger: logger.With(map[string]any{"provider": config.Provider, "model": config.Model}),
	}
}

// Provider returns the vendor name.
func (s *OpenAILLMService) Provider() string {
	return s.config.Provider
}

// Instruct starts a new history holding only the persona prompt, under the
// configured instruction role.
func (s *OpenAILLMService) Instruct(prompt string) {
	s.history = []openai.ChatCompletionMessage{{
		Role:    s.convertRole(s.config.InstructionRole),
		Content: prompt,
	}}
}

// AddIncoming records the other agent's utterance.
func (s *OpenAILLMService) AddIncoming(text string) {
	s.history = append(s.history, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleUser,
		Content: text,
	})
}

// AddOwn records this agent's utterance.
func (s *OpenAILLMService) AddOwn(text string) {
	s.history = append(s.history, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleAssistant,
		Content: text,
	})
}

// History returns a provider-neutral copy of the history.
func (s *OpenAILLMService) History() []core.LLMMessage {
	out := make([]core.LLMMessage, 0, len(s.history))
	for _, msg := range s.history {
		out = append(out, core.LLMMessage{Role: core.LLMMessageRole(msg.Role), Message: msg.Content})
	}
	return out
}

// Complete sends the current history and returns the next utterance. The
// history is not modified.
func (s *OpenAILLMService) Complete(ctx context.Context) (core.LLMCompletion, error) {
	messages := make([]openai.ChatCompletionMessage, len(s.history))
	copy(messages, s.history)

	req := openai.ChatCompletionRequest{
		Model:       s.config.Model,
		Messages:    messages,
		MaxTokens:   s.config.MaxTokens,
		Temperature: s.config.Temperature,
	}

	s.logger.Debug("sending chat completion", "messages", len(messages))
	resp, err := s.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return core.LLMCompletion{}, s.wrapError(err)
	}

	if len(resp.Choices) == 0 {
		return core.LLMCompletion{}, core.NewProviderError(s.config.Provider, core.ProviderErrorMalformed,
			errors.New("response has no choices"))
	}
	text := strings.TrimSpace(resp.Choices[0].Message.Content)
	if text == "" {
		return core.LLMCompletion{}, core.NewProviderError(s.config.Provider, core.ProviderErrorMalformed,
			fmt.Errorf("empty reply (finish_reason=%s)", resp.Choices[0].FinishReason))
	}

	return core.LLMCompletion{
		Text: text,
		Usage: core.LLMUsage{
			InputTokens:  resp.Usage.PromptTokens,
			OutputTokens: resp.Usage.CompletionTokens,
		},
		Model: resp.Model,
	}, nil
}

// wrapError converts go-openai errors into a ProviderError.
func (s *OpenAILLMService) wrapError(err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return core.NewProviderError(s.config.Provider, core.ProviderErrorKindForStatus(apiErr.HTTPStatusCode), err)
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return core.NewProviderError(s.config.Provider, core.ProviderErrorKindForStatus(reqErr.HTTPStatusCode), err)
	}
	return core.NewProviderError(s.config.Provider, core.ProviderErrorTransport, err)
}

// convertRole converts core role to OpenAI role
func (s *OpenAILLMService) convertRole(role core.LLMMessageRole) string {
	switch role {
	case core.LLMMessageRoleAssistant:
		return openai.ChatMessageRoleAssistant
	case core.LLMMessageRoleSystem:
		return openai.ChatMessageRoleSystem
	default:
		return openai.ChatMessageRoleUser
	}
}
