package elevenlabs

import (
	"context"
	"encoding/base64"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"dialogcast/core"

	"github.com/bytedance/sonic"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeServer struct {
	t        *testing.T
	received []elTextMessage
	path     string
	query    string
	apiKey   string
	reply    func(conn *websocket.Conn)
}

func (f *fakeServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.path = r.URL.Path
	f.query = r.URL.RawQuery
	f.apiKey = r.Header.Get("xi-api-key")

	upgrader := websocket.Upgrader{}
	conn, err := upgrader.Upgrade(w, r, nil)
	require.NoError(f.t, err)
	defer conn.Close()

	// BOS, text, EOS
	for i := 0; i < 3; i++ {
		_, msg, err := conn.ReadMessage()
		require.NoError(f.t, err)
		var m elTextMessage
		require.NoError(f.t, sonic.Unmarshal(msg, &m))
		f.received = append(f.received, m)
	}
	f.reply(conn)
}

func startServer(t *testing.T, reply func(conn *websocket.Conn)) (*fakeServer, *ElevenLabsTTS) {
	t.Helper()
	fake := &fakeServer{t: t, reply: reply}
	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)

	synth := NewElevenLabsTTS(ElevenLabsTTSConfig{
		APIKey:      "xi-test",
		BaseURL:     "ws" + strings.TrimPrefix(srv.URL, "http"),
		ReadTimeout: 2 * time.Second,
	}, core.NewNopLogger())
	return fake, synth
}

func audioFrame(t *testing.T, data []byte, final bool) []byte {
	t.Helper()
	out, err := sonic.Marshal(elServerMessage{Audio: base64.StdEncoding.EncodeToString(data), IsFinal: final})
	require.NoError(t, err)
	return out
}

func TestSynthesize_CollectsAudioUntilFinal(t *testing.T) {
	fake, synth := startServer(t, func(conn *websocket.Conn) {
		conn.WriteMessage(websocket.TextMessage, audioFrame(t, []byte{1, 0, 2, 0}, false))
		conn.WriteMessage(websocket.TextMessage, audioFrame(t, []byte{3, 0}, false))
		conn.WriteMessage(websocket.TextMessage, []byte(`{"isFinal":true}`))
	})

	clip, err := synth.Synthesize(context.Background(), "Hello there", "rachel")
	require.NoError(t, err)

	assert.Equal(t, []byte{1, 0, 2, 0, 3, 0}, clip.Data)
	assert.Equal(t, SampleRate, clip.SampleRate)
	assert.Equal(t, 1, clip.Channels)

	assert.Equal(t, "/21m00Tcm4TlvDq8ikWAM/stream-input", fake.path)
	assert.Contains(t, fake.query, "output_format=pcm_24000")
	assert.Contains(t, fake.query, "model_id=eleven_turbo_v2_5")
	assert.Equal(t, "xi-test", fake.apiKey)

	require.Len(t, fake.received, 3)
	assert.Equal(t, " ", fake.received[0].Text)
	assert.Equal(t, "Hello there ", fake.received[1].Text)
	assert.Equal(t, "", fake.received[2].Text)
}

func TestSynthesize_ServerError(t *testing.T) {
	_, synth := startServer(t, func(conn *websocket.Conn) {
		conn.WriteMessage(websocket.TextMessage, []byte(`{"error":"quota_exceeded","message":"out of credits","code":1008}`))
	})

	_, err := synth.Synthesize(context.Background(), "hi", "adam")

	var serr *core.SynthesisError
	require.True(t, errors.As(err, &serr))
	assert.Equal(t, "elevenlabs", serr.Provider)
	assert.Equal(t, "adam", serr.Voice)
	assert.Contains(t, err.Error(), "out of credits")
}

func TestSynthesize_ClosedWithoutAudio(t *testing.T) {
	_, synth := startServer(t, func(conn *websocket.Conn) {
		conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	})

	_, err := synth.Synthesize(context.Background(), "hi", "josh")
	var serr *core.SynthesisError
	require.True(t, errors.As(err, &serr))
}

func TestSynthesize_UnknownVoice(t *testing.T) {
	synth := NewElevenLabsTTS(ElevenLabsTTSConfig{APIKey: "k"}, core.NewNopLogger())

	_, err := synth.Synthesize(context.Background(), "hi", "alloy")
	var serr *core.SynthesisError
	require.True(t, errors.As(err, &serr))
	assert.Contains(t, err.Error(), "unknown voice")
}

func TestVoices_AllHaveIDs(t *testing.T) {
	for _, v := range Voices.All() {
		assert.NotEmpty(t, VoiceIDs[v], v)
	}
	assert.Len(t, VoiceIDs, len(Voices.All()))
}
