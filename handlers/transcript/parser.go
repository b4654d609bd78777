package transcript

import (
	"bufio"
	"io"
	"strings"
)

// LineKind is the role a transcript line plays during parsing.
type LineKind int

const (
	// LineBlank closes the open segment. The speaker is kept, so a later
	// continuation paragraph is attributed to the same speaker.
	LineBlank LineKind = iota
	// LineSpeaker starts a new segment. The prefix match is exact and
	// case-sensitive.
	LineSpeaker
	// LineContinuation extends the open segment. Lines that match no label
	// land here rather than being rejected.
	LineContinuation
)

func (k LineKind) String() string {
	switch k {
	case LineBlank:
		return "blank"
	case LineSpeaker:
		return "speaker"
	case LineContinuation:
		return "continuation"
	default:
		return "unknown"
	}
}

// ClassifyLine classifies a trimmed line. For LineSpeaker it also returns the
// matched label and the text after the colon.
func ClassifyLine(line string, labels []string) (kind LineKind, label, rest string) {
	if line == "" {
		return LineBlank, "", ""
	}
	for _, l := range labels {
		if strings.HasPrefix(line, l+":") {
			return LineSpeaker, l, strings.TrimSpace(line[len(l)+1:])
		}
	}
	return LineContinuation, "", line
}

type segmentBuilder struct {
	labels   []string
	speaker  string
	buf      []string
	segments []Segment
}

func (b *segmentBuilder) flush() {
	if b.speaker != "" && len(b.buf) > 0 {
		b.segments = append(b.segments, Segment{Speaker: b.speaker, Text: strings.Join(b.buf, " ")})
	}
	b.buf = b.buf[:0]
}

func (b *segmentBuilder) feed(raw string) {
	kind, label, rest := ClassifyLine(strings.TrimSpace(raw), b.labels)
	switch kind {
	case LineBlank:
		b.flush()
	case LineSpeaker:
		b.flush()
		b.speaker = label
		if rest != "" {
			b.buf = append(b.buf, rest)
		}
	case LineContinuation:
		// Text before the first speaker line has no owner.
		if b.speaker != "" {
			b.buf = append(b.buf, rest)
		}
	}
}

// Parse reads a transcript and returns its segments in file order. The only
// error is a read failure; unrecognised lines never fail the parse.
func Parse(r io.Reader, labels []string) ([]Segment, error) {
	b := &segmentBuilder{labels: labels}
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for sc.Scan() {
		b.feed(sc.Text())
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	b.flush()
	return b.segments, nil
}

// ParseString parses an in-memory transcript.
func ParseString(text string, labels []string) []Segment {
	segments, _ := Parse(strings.NewReader(text), labels)
	return segments
}

// Violation is a pair of adjacent segments with the same speaker.
type Violation struct {
	Index   int // index of the second segment of the pair
	Speaker string
}

// CheckAlternation reports adjacent segments that share a speaker.
func CheckAlternation(segments []Segment) []Violation {
	var out []Violation
	for i := 1; i < len(segments); i++ {
		if segments[i].Speaker == segments[i-1].Speaker {
			out = append(out, Violation{Index: i, Speaker: segments[i].Speaker})
		}
	}
	return out
}
