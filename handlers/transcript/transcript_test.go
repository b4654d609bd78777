package transcript

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var labels = []string{"Painter", "Musician"}

func TestWrite_Format(t *testing.T) {
	tr := New("Painter", "Musician")
	tr.Append("Hello there")
	tr.Append("Hi, nice to meet you")
	tr.Append("Likewise")

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, tr))

	want := "Painter: Hello there\n\nMusician: Hi, nice to meet you\n\nPainter: Likewise\n\n"
	assert.Equal(t, want, buf.String())
}

func TestWriteParse_RoundTrip(t *testing.T) {
	tr := New("Painter", "Musician")
	tr.Append("Hello there")
	tr.Append("Hi, nice to meet you")
	tr.Append("Likewise")

	dir := t.TempDir()
	now := time.Date(2024, 3, 9, 14, 5, 7, 0, time.UTC)
	path, err := WriteFile(dir, tr, now)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "conversation_20240309_140507.txt"), path)

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	segments, err := Parse(f, labels)
	require.NoError(t, err)
	assert.Equal(t, tr.Segments(), segments)
	assert.Empty(t, CheckAlternation(segments))
}

func TestWriteParse_MultiParagraphUtterance(t *testing.T) {
	tr := New("Painter", "Musician")
	tr.Append("First paragraph.\n\nSecond paragraph.")
	tr.Append("Reply\r\n  with a\tbreak")

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, tr))
	assert.Equal(t, "Painter: First paragraph. Second paragraph.\n\nMusician: Reply with a break\n\n", buf.String())

	segments := ParseString(buf.String(), labels)
	assert.Equal(t, []Segment{
		{Speaker: "Painter", Text: "First paragraph. Second paragraph."},
		{Speaker: "Musician", Text: "Reply with a break"},
	}, segments)
	assert.Empty(t, CheckAlternation(segments))
}

func TestParse_ContinuationJoinedWithSpace(t *testing.T) {
	text := "Painter: Colours\nare loud\n   today  \n\nMusician: So are\nchords\n"
	segments := ParseString(text, labels)

	assert.Equal(t, []Segment{
		{Speaker: "Painter", Text: "Colours are loud today"},
		{Speaker: "Musician", Text: "So are chords"},
	}, segments)
}

func TestParse_BlankLineRunsAreIdempotent(t *testing.T) {
	single := "Painter: one\n\nMusician: two\n"
	many := "\n\n\nPainter: one\n\n\n\n\nMusician: two\n\n\n\n"

	assert.Equal(t, ParseString(single, labels), ParseString(many, labels))
}

func TestParse_NoRecognisedPrefix(t *testing.T) {
	assert.Empty(t, ParseString("Narrator: hello\nsomething else\n", labels))
	assert.Empty(t, ParseString("", labels))
}

func TestParse_CaseSensitiveLabels(t *testing.T) {
	segments := ParseString("Painter: hi\npainter: not a speaker line\n", labels)
	assert.Equal(t, []Segment{{Speaker: "Painter", Text: "hi painter: not a speaker line"}}, segments)
}

func TestParse_LinesBeforeFirstSpeakerAreDropped(t *testing.T) {
	segments := ParseString("preamble\nmore\nPainter: hi\n", labels)
	assert.Equal(t, []Segment{{Speaker: "Painter", Text: "hi"}}, segments)
}

func TestParse_OrphanParagraphKeepsSpeaker(t *testing.T) {
	segments := ParseString("Painter: first\n\nsecond paragraph\n\nMusician: reply\n", labels)

	assert.Equal(t, []Segment{
		{Speaker: "Painter", Text: "first"},
		{Speaker: "Painter", Text: "second paragraph"},
		{Speaker: "Musician", Text: "reply"},
	}, segments)
	assert.Equal(t, []Violation{{Index: 1, Speaker: "Painter"}}, CheckAlternation(segments))
}

func TestParse_EmptySpeakerLineIsNotASegment(t *testing.T) {
	segments := ParseString("Painter:\n\nMusician: hey\n", labels)
	assert.Equal(t, []Segment{{Speaker: "Musician", Text: "hey"}}, segments)
}

func TestClassifyLine(t *testing.T) {
	tests := []struct {
		line  string
		kind  LineKind
		label string
		rest  string
	}{
		{"", LineBlank, "", ""},
		{"Painter: hi", LineSpeaker, "Painter", "hi"},
		{"Musician:hi", LineSpeaker, "Musician", "hi"},
		{"Painters: hi", LineContinuation, "", "Painters: hi"},
		{"just text", LineContinuation, "", "just text"},
	}
	for _, tt := range tests {
		t.Run(tt.kind.String()+"/"+tt.line, func(t *testing.T) {
			kind, label, rest := ClassifyLine(tt.line, labels)
			assert.Equal(t, tt.kind, kind)
			assert.Equal(t, tt.label, label)
			assert.Equal(t, tt.rest, rest)
		})
	}
}

func TestParse_CRLF(t *testing.T) {
	text := strings.ReplaceAll("Painter: a\n\nMusician: b\n", "\n", "\r\n")
	assert.Equal(t, []Segment{{"Painter", "a"}, {"Musician", "b"}}, ParseString(text, labels))
}
