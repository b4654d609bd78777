// Package llm adapts eino chat models into dialogue agents. The agent's
// history is kept as eino schema messages, the shape every eino model accepts.
package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"dialogcast/core"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
)

// kickoffPrompt is sent, without being stored, when the history holds only
// system instructions. Anthropic and Gemini both reject a request with no
// user turn.
const kickoffPrompt = "Begin the conversation."

// ErrorClassifier maps an SDK error to a ProviderError kind.
type ErrorClassifier func(err error) core.ProviderErrorKind

// Config holds the agent-level settings shared by eino-backed providers.
type Config struct {
	Provider        string
	Model           string
	MaxTokens       int
	InstructionRole core.LLMMessageRole
	Classify        ErrorClassifier
}

// EinoLLMService is one dialogue agent over an eino chat model.
type EinoLLMService struct {
	chatModel model.BaseChatModel
	config    Config
	logger    *core.Logger
	history   []*schema.Message
}

// NewEinoLLMService wraps chatModel. Provider-specific packages build the
// model and call this.
func NewEinoLLMService(chatModel model.BaseChatModel, config Config, logger *core.Logger) *EinoLLMService {
	if config.InstructionRole == "" {
		config.InstructionRole = core.LLMMessageRoleUser
	}
	if config.Classify == nil {
		config.Classify = func(error) core.ProviderErrorKind { return core.ProviderErrorTransport }
	}
	if logger == nil {
		logger = core.GetLogger()
	}
	return &EinoLLMService{
		chatModel: chatModel,
		config:    config,
		logger:    logger.With(map[string]any{"provider": config.Provider, "model": config.Model}),
	}
}

// Provider returns the vendor name.
func (s *EinoLLMService) Provider() string {
	return s.config.Provider
}

// Instruct starts a new history holding only the persona prompt, under the
// configured instruction role.
func (s *EinoLLMService) Instruct(prompt string) {
	s.history = []*schema.Message{{
		Role:    convertRole(s.config.InstructionRole),
		Content: prompt,
	}}
}

// AddIncoming records the other agent's utterance.
func (s *EinoLLMService) AddIncoming(text string) {
	s.history = append(s.history, schema.UserMessage(text))
}

// AddOwn records this agent's utterance.
func (s *EinoLLMService) AddOwn(text string) {
	s.history = append(s.history, schema.AssistantMessage(text, nil))
}

// History returns a provider-neutral copy of the history.
func (s *EinoLLMService) History() []core.LLMMessage {
	out := make([]core.LLMMessage, 0, len(s.history))
	for _, msg := range s.history {
		out = append(out, core.LLMMessage{Role: core.LLMMessageRole(msg.Role), Message: msg.Content})
	}
	return out
}

// Complete sends the current history and returns the next utterance. The
// history is not modified.
func (s *EinoLLMService) Complete(ctx context.Context) (core.LLMCompletion, error) {
	input := make([]*schema.Message, len(s.history), len(s.history)+1)
	copy(input, s.history)
	if !hasConversationTurn(input) {
		input = append(input, schema.UserMessage(kickoffPrompt))
	}

	var opts []model.Option
	if s.config.MaxTokens > 0 {
		opts = append(opts, model.WithMaxTokens(s.config.MaxTokens))
	}
	if s.config.Model != "" {
		opts = append(opts, model.WithModel(s.config.Model))
	}

	s.logger.Debug("sending generate request", "messages", len(input))
	out, err := s.chatModel.Generate(ctx, input, opts...)
	if err != nil {
		return core.LLMCompletion{}, core.NewProviderError(s.config.Provider, s.config.Classify(err), err)
	}
	if out == nil {
		return core.LLMCompletion{}, core.NewProviderError(s.config.Provider, core.ProviderErrorMalformed,
			errors.New("nil message in response"))
	}

	text := strings.TrimSpace(out.Content)
	if text == "" {
		return core.LLMCompletion{}, core.NewProviderError(s.config.Provider, core.ProviderErrorMalformed,
			fmt.Errorf("empty reply (finish_reason=%s)", finishReason(out)))
	}

	var usage core.LLMUsage
	if out.ResponseMeta != nil && out.ResponseMeta.Usage != nil {
		usage.InputTokens = out.ResponseMeta.Usage.PromptTokens
		usage.OutputTokens = out.ResponseMeta.Usage.CompletionTokens
	} else {
		s.logger.Warn("response carried no token usage, cost for this call is zero")
	}

	return core.LLMCompletion{Text: text, Usage: usage, Model: s.config.Model}, nil
}

func hasConversationTurn(messages []*schema.Message) bool {
	for _, msg := range messages {
		if msg.Role != schema.System {
			return true
		}
	}
	return false
}

func finishReason(msg *schema.Message) string {
	if msg.ResponseMeta == nil {
		return ""
	}
	return msg.ResponseMeta.FinishReason
}

func convertRole(role core.LLMMessageRole) schema.RoleType {
	switch role {
	case core.LLMMessageRoleSystem:
		return schema.System
	case core.LLMMessageRoleAssistant:
		return schema.Assistant
	default:
		return schema.User
	}
}
