package deepgram

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
	"unicode/utf8"

	"dialogcast/core"

	"github.com/bytedance/sonic"
	"github.com/gorilla/websocket"
)

// maxCharsBeforeFlush is the character limit between flushes.
// Deepgram returns DATA-0001 (1008) if too many characters are buffered.
const maxCharsBeforeFlush = 2000

const (
	DefaultBaseURL = "wss://api.deepgram.com/v1/speak"

	SampleRate = 24000
	Channels   = 1
)

// Voices are Aura 2 model names; Deepgram selects the voice through the model.
var Voices = core.VoicePools{
	Female: []string{"aura-2-thalia-en", "aura-2-andromeda-en", "aura-2-helena-en", "aura-2-asteria-en"},
	Male:   []string{"aura-2-arcas-en", "aura-2-apollo-en", "aura-2-orion-en", "aura-2-zeus-en"},
}

// DeepgramTTSConfig holds configuration for the Deepgram TTS service
type DeepgramTTSConfig struct {
	APIKey  string `json:"-"`
	BaseURL string `json:"base_url"`

	ReadTimeout time.Duration `json:"read_timeout"`
}

// DefaultConfig returns a DeepgramTTSConfig with sensible defaults
func DefaultConfig() DeepgramTTSConfig {
	return DeepgramTTSConfig{
		BaseURL:     DefaultBaseURL,
		ReadTimeout: 60 * time.Second,
	}
}

// DeepgramTTS synthesizes one segment per speak socket: Speak and Flush for
// each chunk of text, audio collected until every flush is acknowledged.
type DeepgramTTS struct {
	config DeepgramTTSConfig
	logger *core.Logger
	dialer *websocket.Dialer
}

// Message types for Deepgram TTS WebSocket protocol
type (
	speakText struct {
		Type string `json:"type"`
		Text string `json:"text"`
	}

	speakControl struct {
		Type string `json:"type"`
	}

	// Metadata, Flushed, Warning and Error frames share one shape.
	speakServerMessage struct {
		Type        string  `json:"type"`
		RequestID   string  `json:"request_id"`
		ModelName   string  `json:"model_name"`
		SequenceID  float64 `json:"sequence_id"`
		Description string  `json:"description"`
		Code        string  `json:"code"`
	}
)

// NewDeepgramTTS creates a Deepgram TTS service. Zero fields take their
// DefaultConfig values.
func NewDeepgramTTS(config DeepgramTTSConfig, logger *core.Logger) *DeepgramTTS {
	defaults := DefaultConfig()
	if config.BaseURL == "" {
		config.BaseURL = defaults.BaseURL
	}
	if config.ReadTimeout <= 0 {
		config.ReadTimeout = defaults.ReadTimeout
	}
	if logger == nil {
		logger = core.GetLogger()
	}
	return &DeepgramTTS{
		config: config,
		logger: logger.With(map[string]any{"provider": "deepgram"}),
		dialer: &websocket.Dialer{
			Proxy:            http.ProxyFromEnvironment,
			HandshakeTimeout: 10 * time.Second,
		},
	}
}

func (d *DeepgramTTS) Provider() string {
	return "deepgram"
}

func (d *DeepgramTTS) Voices() core.VoicePools {
	return Voices
}

// Synthesize renders text with the named Aura model.
func (d *DeepgramTTS) Synthesize(ctx context.Context, text, voice string) (core.AudioClip, error) {
	if !Voices.Contains(voice) {
		return core.AudioClip{}, core.NewSynthesisError(d.Provider(), voice, fmt.Errorf("unknown voice %q", voice))
	}
	if d.config.APIKey == "" {
		return core.AudioClip{}, core.NewSynthesisError(d.Provider(), voice, errors.New("Deepgram API key is required"))
	}

	conn, err := d.establishConnection(ctx, voice)
	if err != nil {
		return core.AudioClip{}, core.NewSynthesisError(d.Provider(), voice, err)
	}
	defer conn.Close()

	data, err := d.speak(ctx, conn, text)
	if err != nil {
		return core.AudioClip{}, core.NewSynthesisError(d.Provider(), voice, err)
	}
	if len(data)%2 != 0 {
		data = data[:len(data)-1]
	}

	d.logger.Debug("synthesized segment", "voice", voice, "bytes", len(data))
	return core.AudioClip{Data: data, SampleRate: SampleRate, Channels: Channels}, nil
}

func (d *DeepgramTTS) speakURL(model string) string {
	q := url.Values{}
	q.Set("model", model)
	q.Set("encoding", "linear16")
	q.Set("sample_rate", fmt.Sprint(SampleRate))
	return d.config.BaseURL + "?" + q.Encode()
}

// establishConnection opens the speak socket for model. A failed dial fails
// the segment.
func (d *DeepgramTTS) establishConnection(ctx context.Context, model string) (*websocket.Conn, error) {
	headers := http.Header{}
	headers.Set("Authorization", "Token "+d.config.APIKey)

	conn, resp, err := d.dialer.DialContext(ctx, d.speakURL(model), headers)
	if err != nil {
		if resp != nil {
			return nil, fmt.Errorf("dial speak: %w (status %d)", err, resp.StatusCode)
		}
		return nil, fmt.Errorf("dial speak: %w", err)
	}
	return conn, nil
}

func (d *DeepgramTTS) speak(ctx context.Context, conn *websocket.Conn, text string) ([]byte, error) {
	stop := context.AfterFunc(ctx, func() {
		conn.SetReadDeadline(time.Now())
	})
	defer stop()

	chunks := splitText(text, maxCharsBeforeFlush)
	for _, chunk := range chunks {
		if err := d.sendJSON(conn, speakText{Type: "Speak", Text: chunk}); err != nil {
			return nil, fmt.Errorf("send text: %w", err)
		}
		if err := d.sendJSON(conn, speakControl{Type: "Flush"}); err != nil {
			return nil, fmt.Errorf("send flush: %w", err)
		}
	}

	var audio []byte
	flushed := 0
	for flushed < len(chunks) {
		conn.SetReadDeadline(time.Now().Add(d.config.ReadTimeout))
		messageType, message, err := conn.ReadMessage()
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, ctxErr
			}
			return nil, fmt.Errorf("read frame: %w", err)
		}

		if messageType == websocket.BinaryMessage {
			audio = append(audio, message...)
			continue
		}

		var msg speakServerMessage
		if err := sonic.Unmarshal(message, &msg); err != nil {
			return nil, fmt.Errorf("parse frame: %w", err)
		}
		switch msg.Type {
		case "Metadata":
			d.logger.Debug("speak session opened", "request_id", msg.RequestID, "model", msg.ModelName)
		case "Flushed":
			flushed++
		case "Warning":
			d.logger.Warn("Deepgram TTS warning", "code", msg.Code, "description", msg.Description)
		case "Error":
			return nil, fmt.Errorf("Deepgram error: %s (code: %s)", msg.Description, msg.Code)
		}
	}

	if err := d.sendJSON(conn, speakControl{Type: "Close"}); err != nil {
		d.logger.Debug("sending close failed", "error", err)
	}
	if len(audio) == 0 {
		return nil, errors.New("stream finished without audio")
	}
	return audio, nil
}

func (d *DeepgramTTS) sendJSON(conn *websocket.Conn, msg interface{}) error {
	data, err := sonic.Marshal(msg)
	if err != nil {
		return err
	}
	conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
	return conn.WriteMessage(websocket.TextMessage, data)
}

// splitText cuts text into pieces of at most limit runes, preferring the
// last space inside each window.
func splitText(text string, limit int) []string {
	var chunks []string
	for utf8.RuneCountInString(text) > limit {
		cut := byteOffset(text, limit)
		if i := strings.LastIndexByte(text[:cut], ' '); i > 0 {
			cut = i
		}
		chunks = append(chunks, text[:cut])
		text = strings.TrimLeft(text[cut:], " ")
	}
	if text != "" || len(chunks) == 0 {
		chunks = append(chunks, text)
	}
	return chunks
}

func byteOffset(s string, runes int) int {
	n := 0
	for i := range s {
		if n == runes {
			return i
		}
		n++
	}
	return len(s)
}
