package factories

import (
	"os"
	"strings"

	"dialogcast/core"
)

// apiKeyEnv names the environment variable holding each provider's key.
var apiKeyEnv = map[string]string{
	ProviderAnthropic:  "ANTHROPIC_API_KEY",
	ProviderOpenAI:     "OPENAI_API_KEY",
	ProviderGemini:     "GEMINI_API_KEY",
	ProviderElevenLabs: "ELEVENLABS_API_KEY",
	ProviderDeepgram:   "DEEPGRAM_API_KEY",
	"together":         "TOGETHER_API_KEY",
	"groq":             "GROQ_API_KEY",
	"deepseek":         "DEEPSEEK_API_KEY",
	"openrouter":       "OPENROUTER_API_KEY",
	"fireworks":        "FIREWORKS_API_KEY",
	"cerebras":         "CEREBRAS_API_KEY",
	"xai":              "XAI_API_KEY",
	"mistral":          "MISTRAL_API_KEY",
	"perplexity":       "PERPLEXITY_API_KEY",
}

// APIKeyEnv returns the environment variable for provider's key.
func APIKeyEnv(provider string) string {
	if env, ok := apiKeyEnv[provider]; ok {
		return env
	}
	return strings.ToUpper(provider) + "_API_KEY"
}

// APIKeys maps provider name to API key.
type APIKeys map[string]string

// APIKeysFromEnv reads every known provider key from the environment.
// Call it once, after .env has been loaded.
func APIKeysFromEnv() APIKeys {
	keys := APIKeys{}
	for provider, env := range apiKeyEnv {
		if v := strings.TrimSpace(os.Getenv(env)); v != "" {
			keys[provider] = v
		}
	}
	return keys
}

// InjectAPIKeys copies the keys each configured provider needs into s.
func (s *Settings) InjectAPIKeys(keys APIKeys) {
	s.Dialogue.AgentA.APIKey = keys[s.Dialogue.AgentA.Provider]
	s.Dialogue.AgentB.APIKey = keys[s.Dialogue.AgentB.Provider]
	s.Narration.APIKey = keys[s.Narration.Provider]
}

// RequireDialogueKeys fails, naming the variable and the agent, when an agent
// has no key.
func (s *Settings) RequireDialogueKeys() error {
	for _, a := range []AgentSettings{s.Dialogue.AgentA, s.Dialogue.AgentB} {
		if a.APIKey == "" {
			return core.NewConfigError(APIKeyEnv(a.Provider), "not set; required by %s (%s)", a.Label, a.Provider)
		}
	}
	return nil
}

// RequireNarrationKey fails when the TTS provider has no key.
func (s *Settings) RequireNarrationKey() error {
	if s.Narration.APIKey == "" {
		return core.NewConfigError(APIKeyEnv(s.Narration.Provider), "not set; required by %s text-to-speech", s.Narration.Provider)
	}
	return nil
}
