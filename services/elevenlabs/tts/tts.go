package elevenlabs

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"dialogcast/core"

	"github.com/bytedance/sonic"
	"github.com/gorilla/websocket"
)

const (
	DefaultBaseURL = "wss://api.elevenlabs.io/v1/text-to-speech"
	DefaultModelID = "eleven_turbo_v2_5"

	SampleRate = 24000
	Channels   = 1
)

// VoiceIDs maps the friendly voice names to ElevenLabs voice ids.
var VoiceIDs = map[string]string{
	"rachel": "21m00Tcm4TlvDq8ikWAM",
	"domi":   "AZnzlk1XvdvUeBnXmlld",
	"bella":  "EXAVITQu4vr4xnSDxMaL",
	"antoni": "ErXwobaYiN019PkySvjV",
	"josh":   "TxGEqnHWrfWFTfGW9XjX",
	"adam":   "pNInz6obpgDQGcFmaJgB",
}

var Voices = core.VoicePools{
	Female: []string{"rachel", "domi", "bella"},
	Male:   []string{"antoni", "josh", "adam"},
}

// ElevenLabsTTSConfig holds configuration for the ElevenLabs TTS service
type ElevenLabsTTSConfig struct {
	APIKey  string `json:"-"`
	BaseURL string `json:"base_url"`
	ModelID string `json:"model_id"`

	// Voice settings
	Stability       float64 `json:"stability"`
	SimilarityBoost float64 `json:"similarity_boost"`

	// ReadTimeout bounds the wait for each server frame.
	ReadTimeout time.Duration `json:"read_timeout"`
}

// ElevenLabsTTS synthesizes one segment per stream-input socket. Each call
// dials, sends BOS, the text and EOS, then collects audio until isFinal.
type ElevenLabsTTS struct {
	config ElevenLabsTTSConfig
	logger *core.Logger
	dialer *websocket.Dialer
}

// Client messages
type (
	// BOS (Beginning of Stream) opens the input stream.
	elBOSMessage struct {
		Text             string          `json:"text"`
		VoiceSettings    elVoiceSettings `json:"voice_settings"`
		GenerationConfig elGenConfig     `json:"generation_config"`
	}

	elVoiceSettings struct {
		Stability       float64 `json:"stability"`
		SimilarityBoost float64 `json:"similarity_boost"`
	}

	elGenConfig struct {
		ChunkLengthSchedule []int `json:"chunk_length_schedule"`
	}

	elTextMessage struct {
		Text                 string `json:"text"`
		TryTriggerGeneration bool   `json:"try_trigger_generation,omitempty"`
	}
)

// Server message. Audio frames and error frames share one shape.
type elServerMessage struct {
	Audio   string `json:"audio"`
	IsFinal bool   `json:"isFinal"`
	Error   string `json:"error"`
	Message string `json:"message"`
	Code    int    `json:"code"`
}

// NewElevenLabsTTS creates a new ElevenLabs TTS service with the provided config
func NewElevenLabsTTS(config ElevenLabsTTSConfig, logger *core.Logger) *ElevenLabsTTS {
	if config.BaseURL == "" {
		config.BaseURL = DefaultBaseURL
	}
	if config.ModelID == "" {
		config.ModelID = DefaultModelID
	}
	if config.Stability == 0 {
		config.Stability = 0.5
	}
	if config.SimilarityBoost == 0 {
		config.SimilarityBoost = 0.75
	}
	if config.ReadTimeout <= 0 {
		config.ReadTimeout = 60 * time.Second
	}
	if logger == nil {
		logger = core.GetLogger()
	}

	return &ElevenLabsTTS{
		config: config,
		logger: logger.With(map[string]any{"provider": "elevenlabs", "tts_model": config.ModelID}),
		dialer: &websocket.Dialer{
			Proxy:            http.ProxyFromEnvironment,
			HandshakeTimeout: 10 * time.Second,
		},
	}
}

func (e *ElevenLabsTTS) Provider() string {
	return "elevenlabs"
}

func (e *ElevenLabsTTS) Voices() core.VoicePools {
	return Voices
}

// Synthesize renders text with the named voice. Failures are returned as
// *core.SynthesisError; there is no retry.
func (e *ElevenLabsTTS) Synthesize(ctx context.Context, text, voice string) (core.AudioClip, error) {
	voiceID, ok := VoiceIDs[voice]
	if !ok {
		return core.AudioClip{}, core.NewSynthesisError(e.Provider(), voice, fmt.Errorf("unknown voice %q", voice))
	}
	if e.config.APIKey == "" {
		return core.AudioClip{}, core.NewSynthesisError(e.Provider(), voice, errors.New("ElevenLabs API key is required"))
	}

	data, err := e.stream(ctx, voiceID, text)
	if err != nil {
		return core.AudioClip{}, core.NewSynthesisError(e.Provider(), voice, err)
	}
	if len(data)%2 != 0 {
		data = data[:len(data)-1]
	}

	e.logger.Debug("synthesized segment", "voice", voice, "bytes", len(data))
	return core.AudioClip{Data: data, SampleRate: SampleRate, Channels: Channels}, nil
}

func (e *ElevenLabsTTS) streamURL(voiceID string) string {
	q := url.Values{}
	q.Set("model_id", e.config.ModelID)
	q.Set("output_format", fmt.Sprintf("pcm_%d", SampleRate))
	return fmt.Sprintf("%s/%s/stream-input?%s", strings.TrimRight(e.config.BaseURL, "/"), voiceID, q.Encode())
}

func (e *ElevenLabsTTS) stream(ctx context.Context, voiceID, text string) ([]byte, error) {
	headers := http.Header{}
	headers.Set("xi-api-key", e.config.APIKey)

	conn, resp, err := e.dialer.DialContext(ctx, e.streamURL(voiceID), headers)
	if err != nil {
		if resp != nil {
			return nil, fmt.Errorf("dial stream-input: %w (status %d)", err, resp.StatusCode)
		}
		return nil, fmt.Errorf("dial stream-input: %w", err)
	}
	defer conn.Close()

	// Unblock reads when the caller gives up.
	stop := context.AfterFunc(ctx, func() {
		conn.SetReadDeadline(time.Now())
	})
	defer stop()

	bos := elBOSMessage{
		Text: " ",
		VoiceSettings: elVoiceSettings{
			Stability:       e.config.Stability,
			SimilarityBoost: e.config.SimilarityBoost,
		},
		GenerationConfig: elGenConfig{
			ChunkLengthSchedule: []int{120, 160, 250, 290},
		},
	}
	if err := e.sendJSON(conn, bos); err != nil {
		return nil, fmt.Errorf("send BOS: %w", err)
	}
	// The stream-input API expects text chunks to end with a space.
	if err := e.sendJSON(conn, elTextMessage{Text: text + " ", TryTriggerGeneration: true}); err != nil {
		return nil, fmt.Errorf("send text: %w", err)
	}
	if err := e.sendJSON(conn, elTextMessage{Text: ""}); err != nil {
		return nil, fmt.Errorf("send EOS: %w", err)
	}

	var audio []byte
	for {
		conn.SetReadDeadline(time.Now().Add(e.config.ReadTimeout))
		messageType, message, err := conn.ReadMessage()
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, ctxErr
			}
			if websocket.IsCloseError(err, websocket.CloseNormalClosure) && len(audio) > 0 {
				return audio, nil
			}
			return nil, fmt.Errorf("read frame: %w", err)
		}

		if messageType == websocket.BinaryMessage {
			audio = append(audio, message...)
			continue
		}

		var msg elServerMessage
		if err := sonic.Unmarshal(message, &msg); err != nil {
			return nil, fmt.Errorf("parse frame: %w", err)
		}
		if msg.Error != "" {
			return nil, fmt.Errorf("ElevenLabs error: %s: %s (code: %d)", msg.Error, msg.Message, msg.Code)
		}
		if msg.Audio != "" {
			chunk, err := base64.StdEncoding.DecodeString(msg.Audio)
			if err != nil {
				return nil, fmt.Errorf("decode audio: %w", err)
			}
			audio = append(audio, chunk...)
		}
		if msg.IsFinal {
			if len(audio) == 0 {
				return nil, errors.New("stream finished without audio")
			}
			return audio, nil
		}
	}
}

func (e *ElevenLabsTTS) sendJSON(conn *websocket.Conn, v any) error {
	payload, err := sonic.Marshal(v)
	if err != nil {
		return err
	}
	conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
	return conn.WriteMessage(websocket.TextMessage, payload)
}
