package factories

import (
	"context"
	"fmt"
	"sort"

	"dialogcast/core"
	"dialogcast/handlers/dialogue"
	anthropicllm "dialogcast/services/anthropic/llm"
	geminillm "dialogcast/services/gemini/llm"
	openaillm "dialogcast/services/openai/llm"
)

const (
	ProviderAnthropic  = "anthropic"
	ProviderOpenAI     = "openai"
	ProviderGemini     = "gemini"
	ProviderElevenLabs = "elevenlabs"
	ProviderDeepgram   = "deepgram"
)

// openAICompatible lists providers that speak the OpenAI chat protocol and
// are served by the OpenAI service with a custom base URL.
var openAICompatible = map[string]struct {
	baseURL string
	model   string
}{
	"together":   {"https://api.together.xyz/v1", "meta-llama/Llama-3.3-70B-Instruct-Turbo"},
	"groq":       {"https://api.groq.com/openai/v1", "llama-3.3-70b-versatile"},
	"deepseek":   {"https://api.deepseek.com/v1", "deepseek-chat"},
	"openrouter": {"https://openrouter.ai/api/v1", "openai/gpt-4o"},
	"fireworks":  {"https://api.fireworks.ai/inference/v1", "accounts/fireworks/models/llama-v3p3-70b-instruct"},
	"cerebras":   {"https://api.cerebras.ai/v1", "llama-3.3-70b"},
	"xai":        {"https://api.x.ai/v1", "grok-3"},
	"mistral":    {"https://api.mistral.ai/v1", "mistral-large-latest"},
	"perplexity": {"https://api.perplexity.ai", "sonar-pro"},
}

// DialogueProviders lists every provider BuildDialogueService accepts.
func DialogueProviders() []string {
	out := []string{ProviderAnthropic, ProviderOpenAI, ProviderGemini}
	compat := make([]string, 0, len(openAICompatible))
	for name := range openAICompatible {
		compat = append(compat, name)
	}
	sort.Strings(compat)
	return append(out, compat...)
}

func IsDialogueProvider(name string) bool {
	switch name {
	case ProviderAnthropic, ProviderOpenAI, ProviderGemini:
		return true
	}
	_, ok := openAICompatible[name]
	return ok
}

// BuildDialogueService constructs the agent described by a.
func BuildDialogueService(ctx context.Context, a AgentSettings, logger *core.Logger) (dialogue.DialogueService, error) {
	if logger == nil {
		logger = core.GetLogger()
	}
	logger = logger.With(map[string]any{"agent": a.Label})

	switch a.Provider {
	case ProviderAnthropic:
		svc, err := anthropicllm.NewAnthropicLLMService(ctx, anthropicllm.Config{
			APIKey:          a.APIKey,
			BaseURL:         a.BaseURL,
			Model:           a.Model,
			MaxTokens:       a.MaxTokens,
			InstructionRole: a.InstructionRole,
		}, logger)
		if err != nil {
			return nil, err
		}
		return svc, nil
	case ProviderGemini:
		svc, err := geminillm.NewGeminiLLMService(ctx, geminillm.Config{
			APIKey:          a.APIKey,
			Model:           a.Model,
			MaxTokens:       a.MaxTokens,
			InstructionRole: a.InstructionRole,
		}, logger)
		if err != nil {
			return nil, err
		}
		return svc, nil
	case ProviderOpenAI:
		return openaillm.NewOpenAILLMService(openAIConfig(a), logger), nil
	}

	if vendor, ok := openAICompatible[a.Provider]; ok {
		return buildOpenAICompatible(openAIConfig(a), vendor.baseURL, vendor.model, logger), nil
	}
	return nil, core.NewConfigError("provider", "unknown dialogue provider %q", a.Provider)
}

func openAIConfig(a AgentSettings) openaillm.Config {
	return openaillm.Config{
		Provider:        a.Provider,
		APIKey:          a.APIKey,
		BaseURL:         a.BaseURL,
		Model:           a.Model,
		MaxTokens:       a.MaxTokens,
		Temperature:     a.Temperature,
		InstructionRole: a.InstructionRole,
	}
}

// buildOpenAICompatible creates an OpenAI-compatible LLM service, applying default
// base URL and model if not explicitly set in the config.
func buildOpenAICompatible(cfg openaillm.Config, defaultBaseURL, defaultModel string, logger *core.Logger) *openaillm.OpenAILLMService {
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = defaultModel
	}
	return openaillm.NewOpenAILLMService(cfg, logger)
}

// BuildAgents constructs both dialogue agents from settings. Keys must have
// been injected.
func BuildAgents(ctx context.Context, s *Settings, logger *core.Logger) (a, b dialogue.DialogueService, err error) {
	if a, err = BuildDialogueService(ctx, s.Dialogue.AgentA, logger); err != nil {
		return nil, nil, fmt.Errorf("agent %s: %w", s.Dialogue.AgentA.Label, err)
	}
	if b, err = BuildDialogueService(ctx, s.Dialogue.AgentB, logger); err != nil {
		return nil, nil, fmt.Errorf("agent %s: %w", s.Dialogue.AgentB.Label, err)
	}
	return a, b, nil
}
