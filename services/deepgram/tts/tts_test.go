package deepgram

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"dialogcast/core"

	"github.com/bytedance/sonic"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeSpeak answers every Flush with one binary frame and a Flushed message.
type fakeSpeak struct {
	mu       sync.Mutex
	query    string
	auth     string
	spoken   []string
	closed   bool
	onFlush  func(conn *websocket.Conn, n int)
	reject bool
}

func (f *fakeSpeak) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if f.reject {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}
	f.mu.Lock()
	f.query = r.URL.RawQuery
	f.auth = r.Header.Get("Authorization")
	f.mu.Unlock()

	conn, err := (&websocket.Upgrader{}).Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	conn.WriteMessage(websocket.TextMessage, []byte(`{"type":"Metadata","request_id":"r1","model_name":"aura-2-thalia-en"}`))
	flushes := 0
	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			return
		}
		var m speakText
		if err := sonic.Unmarshal(msg, &m); err != nil {
			return
		}
		switch m.Type {
		case "Speak":
			f.mu.Lock()
			f.spoken = append(f.spoken, m.Text)
			f.mu.Unlock()
		case "Flush":
			flushes++
			f.onFlush(conn, flushes)
		case "Close":
			f.mu.Lock()
			f.closed = true
			f.mu.Unlock()
			return
		}
	}
}

func flushWith(audio []byte) func(conn *websocket.Conn, n int) {
	return func(conn *websocket.Conn, n int) {
		conn.WriteMessage(websocket.BinaryMessage, audio)
		conn.WriteMessage(websocket.TextMessage, []byte(`{"type":"Flushed","sequence_id":0}`))
	}
}

func startServer(t *testing.T, fake *fakeSpeak) *DeepgramTTS {
	t.Helper()
	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)

	return NewDeepgramTTS(DeepgramTTSConfig{
		APIKey:      "dg-test",
		BaseURL:     "ws" + strings.TrimPrefix(srv.URL, "http"),
		ReadTimeout: 2 * time.Second,
	}, core.NewNopLogger())
}

func TestSynthesize_CollectsAudioUntilFlushed(t *testing.T) {
	fake := &fakeSpeak{onFlush: flushWith([]byte{1, 0, 2, 0, 3})}
	synth := startServer(t, fake)

	clip, err := synth.Synthesize(context.Background(), "Hello there", "aura-2-thalia-en")
	require.NoError(t, err)

	assert.Equal(t, []byte{1, 0, 2, 0}, clip.Data, "odd trailing byte is dropped")
	assert.Equal(t, SampleRate, clip.SampleRate)
	assert.Equal(t, Channels, clip.Channels)

	fake.mu.Lock()
	defer fake.mu.Unlock()
	assert.Equal(t, "Token dg-test", fake.auth)
	assert.Contains(t, fake.query, "model=aura-2-thalia-en")
	assert.Contains(t, fake.query, "encoding=linear16")
	assert.Contains(t, fake.query, "sample_rate=24000")
	assert.Equal(t, []string{"Hello there"}, fake.spoken)
}

func TestSynthesize_LongTextIsFlushedInChunks(t *testing.T) {
	fake := &fakeSpeak{onFlush: flushWith([]byte{7, 0})}
	synth := startServer(t, fake)

	text := strings.Repeat("word ", 900) // 4500 characters
	clip, err := synth.Synthesize(context.Background(), text, "aura-2-arcas-en")
	require.NoError(t, err)
	assert.Equal(t, []byte{7, 0, 7, 0, 7, 0}, clip.Data)

	fake.mu.Lock()
	defer fake.mu.Unlock()
	require.Len(t, fake.spoken, 3)
	for _, chunk := range fake.spoken {
		assert.LessOrEqual(t, len(chunk), maxCharsBeforeFlush)
	}
}

func TestSynthesize_ErrorFrame(t *testing.T) {
	fake := &fakeSpeak{onFlush: func(conn *websocket.Conn, n int) {
		conn.WriteMessage(websocket.TextMessage, []byte(`{"type":"Error","description":"bad text","code":"DATA-0001"}`))
	}}
	synth := startServer(t, fake)

	_, err := synth.Synthesize(context.Background(), "Hello", "aura-2-thalia-en")
	var synthErr *core.SynthesisError
	require.ErrorAs(t, err, &synthErr)
	assert.Equal(t, "deepgram", synthErr.Provider)
	assert.Contains(t, err.Error(), "DATA-0001")
}

func TestSynthesize_RejectedHandshake(t *testing.T) {
	synth := startServer(t, &fakeSpeak{reject: true})

	_, err := synth.Synthesize(context.Background(), "Hello", "aura-2-thalia-en")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 401")
}

func TestSynthesize_FailedDialIsNotRetried(t *testing.T) {
	var attempts atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts.Add(1)
		http.Error(w, "unavailable", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	synth := NewDeepgramTTS(DeepgramTTSConfig{
		APIKey:  "dg-test",
		BaseURL: "ws" + strings.TrimPrefix(srv.URL, "http"),
	}, core.NewNopLogger())

	_, err := synth.Synthesize(context.Background(), "Hello", "aura-2-thalia-en")
	var synthErr *core.SynthesisError
	require.ErrorAs(t, err, &synthErr)
	assert.Contains(t, err.Error(), "status 503")
	assert.Equal(t, int32(1), attempts.Load())
}

func TestSynthesize_UnknownVoice(t *testing.T) {
	synth := NewDeepgramTTS(DeepgramTTSConfig{APIKey: "k"}, core.NewNopLogger())
	_, err := synth.Synthesize(context.Background(), "Hello", "alloy")
	var synthErr *core.SynthesisError
	require.ErrorAs(t, err, &synthErr)
	assert.Equal(t, "alloy", synthErr.Voice)
}

func TestSplitText(t *testing.T) {
	assert.Equal(t, []string{""}, splitText("", 10))
	assert.Equal(t, []string{"short"}, splitText("short", 10))
	assert.Equal(t, []string{"aaaa bbbb", "cccc"}, splitText("aaaa bbbb cccc", 10))
	assert.Equal(t, []string{"aaaaaaaaaa", "aa"}, splitText("aaaaaaaaaaaa", 10))
	assert.Equal(t, []string{"ééé", "ééé"}, splitText("éééééé", 3))
}
