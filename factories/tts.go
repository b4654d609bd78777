package factories

import (
	"dialogcast/core"
	"dialogcast/handlers/narration"
	deepgram "dialogcast/services/deepgram/tts"
	elevenlabs "dialogcast/services/elevenlabs/tts"
	openaitts "dialogcast/services/openai/tts"
)

// NarrationProviders lists the supported TTS providers.
func NarrationProviders() []string {
	return []string{ProviderOpenAI, ProviderElevenLabs, ProviderDeepgram}
}

// VoicesFor returns the voice pools of a TTS provider.
func VoicesFor(provider string) (core.VoicePools, error) {
	switch provider {
	case ProviderOpenAI:
		return openaitts.Voices, nil
	case ProviderElevenLabs:
		return elevenlabs.Voices, nil
	case ProviderDeepgram:
		return deepgram.Voices, nil
	}
	return core.VoicePools{}, core.NewConfigError("narration.provider", "unknown TTS provider %q", provider)
}

// DefaultVoices returns the speaker 1 and speaker 2 voices used when none
// are configured.
func DefaultVoices(provider string) (string, string) {
	switch provider {
	case ProviderElevenLabs:
		return "rachel", "antoni"
	case ProviderDeepgram:
		return "aura-2-thalia-en", "aura-2-arcas-en"
	}
	return "alloy", "nova"
}

// BuildSynthesizer constructs the TTS provider selected in n.
func BuildSynthesizer(n NarrationSettings, logger *core.Logger) (narration.Synthesizer, error) {
	switch n.Provider {
	case ProviderOpenAI:
		return openaitts.NewOpenAITTS(openaitts.OpenAITTSConfig{
			APIKey:  n.APIKey,
			BaseURL: n.BaseURL,
			Model:   n.Model,
		}, logger), nil
	case ProviderElevenLabs:
		return elevenlabs.NewElevenLabsTTS(elevenlabs.ElevenLabsTTSConfig{
			APIKey:  n.APIKey,
			BaseURL: n.BaseURL,
			ModelID: n.Model,
		}, logger), nil
	case ProviderDeepgram:
		return deepgram.NewDeepgramTTS(deepgram.DeepgramTTSConfig{
			APIKey:  n.APIKey,
			BaseURL: n.BaseURL,
		}, logger), nil
	}
	return nil, core.NewConfigError("narration.provider", "unknown TTS provider %q", n.Provider)
}

// NarrationConfig builds the narration handler config. Speaker labels come
// from the dialogue agents so a transcript written by converse parses back.
func (s *Settings) NarrationConfig() (narration.NarrationHandlerConfig, error) {
	n := s.Narration
	encoding, err := ParseEncoding(n.Encoding)
	if err != nil {
		return narration.NarrationHandlerConfig{}, err
	}

	voice1, voice2 := DefaultVoices(n.Provider)
	if n.Speaker1 != "" {
		voice1 = n.Speaker1
	}
	if n.Speaker2 != "" {
		voice2 = n.Speaker2
	}

	labelA, labelB := s.Dialogue.AgentA.Label, s.Dialogue.AgentB.Label
	return narration.NarrationHandlerConfig{
		Labels:         [2]string{labelA, labelB},
		Voices:         narration.VoiceMap{labelA: voice1, labelB: voice2},
		OutputDir:      n.OutputDir,
		Concurrency:    n.Concurrency,
		Encoding:       encoding,
		SegmentTimeout: n.SegmentTimeout,
	}, nil
}
