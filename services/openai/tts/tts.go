package tts

import (
	"context"
	"errors"
	"fmt"
	"io"

	"dialogcast/core"
	"dialogcast/utils/audio"

	"github.com/sashabaranov/go-openai"
)

const (
	// SampleRate of the raw pcm response format.
	SampleRate = 24000
	Channels   = 1
)

// Voices is the fixed OpenAI voice set.
var Voices = core.VoicePools{
	Female: []string{string(openai.VoiceAlloy), string(openai.VoiceNova), string(openai.VoiceShimmer)},
	Male:   []string{string(openai.VoiceEcho), string(openai.VoiceFable), string(openai.VoiceOnyx)},
}

// OpenAITTSConfig holds configuration for the OpenAI speech endpoint.
type OpenAITTSConfig struct {
	APIKey  string  `json:"-"`
	BaseURL string  `json:"base_url,omitempty"`
	Model   string  `json:"model"`
	Speed   float64 `json:"speed,omitempty"`
}

// OpenAITTS synthesizes one segment per request as raw 24kHz mono PCM16.
type OpenAITTS struct {
	client *openai.Client
	config OpenAITTSConfig
	logger *core.Logger
}

func NewOpenAITTS(config OpenAITTSConfig, logger *core.Logger) *OpenAITTS {
	if config.Model == "" {
		config.Model = string(openai.TTSModel1)
	}
	if logger == nil {
		logger = core.GetLogger()
	}

	clientConfig := openai.DefaultConfig(config.APIKey)
	if config.BaseURL != "" {
		clientConfig.BaseURL = config.BaseURL
	}

	return &OpenAITTS{
		client: openai.NewClientWithConfig(clientConfig),
		config: config,
		logger: logger.With(map[string]any{"provider": "openai", "tts_model": config.Model}),
	}
}

func (o *OpenAITTS) Provider() string {
	return "openai"
}

func (o *OpenAITTS) Voices() core.VoicePools {
	return Voices
}

// Synthesize renders text with voice. Failures are returned as
// *core.SynthesisError.
func (o *OpenAITTS) Synthesize(ctx context.Context, text, voice string) (core.AudioClip, error) {
	if !Voices.Contains(voice) {
		return core.AudioClip{}, core.NewSynthesisError(o.Provider(), voice, fmt.Errorf("unknown voice %q", voice))
	}

	resp, err := o.client.CreateSpeech(ctx, openai.CreateSpeechRequest{
		Model:          openai.SpeechModel(o.config.Model),
		Input:          text,
		Voice:          openai.SpeechVoice(voice),
		ResponseFormat: openai.SpeechResponseFormatPcm,
		Speed:          o.config.Speed,
	})
	if err != nil {
		return core.AudioClip{}, core.NewSynthesisError(o.Provider(), voice, err)
	}
	defer resp.Close()

	data, err := io.ReadAll(resp)
	if err != nil {
		return core.AudioClip{}, core.NewSynthesisError(o.Provider(), voice, fmt.Errorf("read speech body: %w", err))
	}
	if len(data) == 0 {
		return core.AudioClip{}, core.NewSynthesisError(o.Provider(), voice, errors.New("empty audio response"))
	}
	// Some OpenAI-compatible servers answer with WAV whatever the format asked.
	clip, err := audio.ClipFromResponse(data, SampleRate, Channels)
	if err != nil {
		return core.AudioClip{}, core.NewSynthesisError(o.Provider(), voice, fmt.Errorf("decode speech body: %w", err))
	}

	o.logger.Debug("synthesized segment", "voice", voice, "bytes", len(clip.Data), "sample_rate", clip.SampleRate)
	return clip, nil
}
