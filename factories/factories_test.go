package factories

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"dialogcast/core"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeSettings(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "dialogcast.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadSettings_DefaultsWhenNoFile(t *testing.T) {
	t.Chdir(t.TempDir())

	s, err := LoadSettings("")
	require.NoError(t, err)
	assert.Equal(t, DefaultSettings(), s)
	assert.Equal(t, 5, s.Dialogue.Turns)
	assert.Equal(t, "claude-3-5-haiku-latest", s.Dialogue.AgentA.Model)
	assert.Equal(t, core.Pricing{InputPerMillion: 0.15, OutputPerMillion: 0.60}, s.Dialogue.AgentB.Pricing)
}

func TestLoadSettings_MergesOverDefaults(t *testing.T) {
	path := writeSettings(t, `
dialogue:
  turns: 2
  language: french
  call_timeout: 30s
  agent_b:
    provider: groq
    pricing:
      input_per_million: 0.59
narration:
  provider: elevenlabs
  concurrency: 3
  encoding: ulaw
`)
	s, err := LoadSettings(path)
	require.NoError(t, err)

	assert.Equal(t, 2, s.Dialogue.Turns)
	assert.Equal(t, "french", s.Dialogue.Language)
	assert.Equal(t, 30*time.Second, s.Dialogue.CallTimeout)
	assert.Equal(t, "groq", s.Dialogue.AgentB.Provider)
	assert.Equal(t, 0.59, s.Dialogue.AgentB.Pricing.InputPerMillion)
	assert.Equal(t, 0.60, s.Dialogue.AgentB.Pricing.OutputPerMillion, "untouched fields keep defaults")
	assert.Equal(t, "Musician", s.Dialogue.AgentB.Label)
	assert.Equal(t, "Painter", s.Dialogue.AgentA.Label)
	assert.Equal(t, 3, s.Narration.Concurrency)

	cfg := s.DialogueConfig()
	assert.Contains(t, cfg.PromptA, "in french")
	assert.Contains(t, cfg.PromptB, "in french")
	assert.Equal(t, 30*time.Second, cfg.CallTimeout)

	ncfg, err := s.NarrationConfig()
	require.NoError(t, err)
	assert.Equal(t, core.ULAW, ncfg.Encoding)
	assert.Equal(t, "rachel", ncfg.Voices["Painter"])
	assert.Equal(t, "antoni", ncfg.Voices["Musician"])
}

func TestLoadSettings_Errors(t *testing.T) {
	tests := []struct {
		name  string
		body  string
		field string
	}{
		{"unknown key", "dialogue:\n  turnz: 3\n", "config"},
		{"negative turns", "dialogue:\n  turns: -1\n", "dialogue.turns"},
		{"unknown provider", "dialogue:\n  agent_a:\n    provider: nope\n", "dialogue.agent_a.provider"},
		{"same labels", "dialogue:\n  agent_b:\n    label: Painter\n", "dialogue.agent_b.label"},
		{"bad encoding", "narration:\n  encoding: mp3\n", "narration.encoding"},
		{"bad tts provider", "narration:\n  provider: cartesia\n", "narration.provider"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadSettings(writeSettings(t, tt.body))
			var cerr *core.ConfigError
			require.True(t, errors.As(err, &cerr), "got %v", err)
			assert.Equal(t, tt.field, cerr.Field)
		})
	}

	_, err := LoadSettings(filepath.Join(t.TempDir(), "missing.yaml"))
	var cerr *core.ConfigError
	assert.True(t, errors.As(err, &cerr))
}

func TestAPIKeys(t *testing.T) {
	for _, env := range apiKeyEnv {
		t.Setenv(env, "")
	}
	t.Setenv("ANTHROPIC_API_KEY", "ant-key")
	t.Setenv("OPENAI_API_KEY", " oai-key ")

	keys := APIKeysFromEnv()
	assert.Equal(t, APIKeys{ProviderAnthropic: "ant-key", ProviderOpenAI: "oai-key"}, keys)

	s := DefaultSettings()
	s.InjectAPIKeys(keys)
	require.NoError(t, s.RequireDialogueKeys())
	require.NoError(t, s.RequireNarrationKey())

	s = DefaultSettings()
	s.Dialogue.AgentB.Provider = ProviderGemini
	s.InjectAPIKeys(keys)
	err := s.RequireDialogueKeys()
	var cerr *core.ConfigError
	require.True(t, errors.As(err, &cerr))
	assert.Equal(t, "GEMINI_API_KEY", cerr.Field)
	assert.Contains(t, cerr.Message, "Musician")

	s = DefaultSettings()
	s.Narration.Provider = ProviderElevenLabs
	s.InjectAPIKeys(keys)
	err = s.RequireNarrationKey()
	require.True(t, errors.As(err, &cerr))
	assert.Equal(t, "ELEVENLABS_API_KEY", cerr.Field)
}

func TestBuildDialogueService(t *testing.T) {
	ctx := context.Background()

	svc, err := BuildDialogueService(ctx, AgentSettings{Label: "B", Provider: ProviderOpenAI, APIKey: "k"}, core.NewNopLogger())
	require.NoError(t, err)
	assert.Equal(t, "openai", svc.Provider())

	svc, err = BuildDialogueService(ctx, AgentSettings{Label: "B", Provider: "deepseek", APIKey: "k"}, core.NewNopLogger())
	require.NoError(t, err)
	assert.Equal(t, "deepseek", svc.Provider())

	svc, err = BuildDialogueService(ctx, AgentSettings{Label: "A", Provider: ProviderAnthropic, APIKey: "k"}, core.NewNopLogger())
	require.NoError(t, err)
	assert.Equal(t, "anthropic", svc.Provider())

	_, err = BuildDialogueService(ctx, AgentSettings{Label: "A", Provider: ProviderAnthropic}, core.NewNopLogger())
	assert.Error(t, err)

	_, err = BuildDialogueService(ctx, AgentSettings{Label: "A", Provider: "bogus"}, core.NewNopLogger())
	var cerr *core.ConfigError
	assert.True(t, errors.As(err, &cerr))
}

func TestDialogueProviders(t *testing.T) {
	providers := DialogueProviders()
	assert.Equal(t, []string{"anthropic", "openai", "gemini"}, providers[:3])
	assert.Len(t, providers, 3+len(openAICompatible))
	for _, p := range providers {
		assert.True(t, IsDialogueProvider(p), p)
	}
	assert.False(t, IsDialogueProvider("elevenlabs"))
}

func TestBuildSynthesizer(t *testing.T) {
	for _, provider := range NarrationProviders() {
		synth, err := BuildSynthesizer(NarrationSettings{Provider: provider, APIKey: "k"}, core.NewNopLogger())
		require.NoError(t, err)
		assert.Equal(t, provider, synth.Provider())

		pools, err := VoicesFor(provider)
		require.NoError(t, err)
		assert.Equal(t, pools, synth.Voices())

		v1, v2 := DefaultVoices(provider)
		assert.True(t, pools.Contains(v1))
		assert.True(t, pools.Contains(v2))
	}

	_, err := BuildSynthesizer(NarrationSettings{Provider: "cartesia"}, nil)
	assert.Error(t, err)
}

func TestParseEncoding(t *testing.T) {
	for name, want := range map[string]core.AudioEncodingFormat{
		"": core.PCM, "pcm16": core.PCM, "ULAW": core.ULAW, "alaw": core.ALAW,
	} {
		got, err := ParseEncoding(name)
		require.NoError(t, err)
		assert.Equal(t, want, got, name)
	}
}
