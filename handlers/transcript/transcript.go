// Package transcript holds the flat text record of a dialogue: writing it
// as "<Label>: <text>" paragraphs and parsing such a file back into segments.
package transcript

import "fmt"

// Transcript is the ordered utterances of one dialogue. Speakers alternate
// starting with Labels[0].
type Transcript struct {
	Labels     [2]string
	Utterances []string
}

func New(labelA, labelB string) *Transcript {
	return &Transcript{Labels: [2]string{labelA, labelB}}
}

// Append records the next utterance.
func (t *Transcript) Append(text string) {
	t.Utterances = append(t.Utterances, text)
}

func (t *Transcript) Len() int {
	return len(t.Utterances)
}

// SpeakerOf returns the label attributed to utterance i by parity.
func (t *Transcript) SpeakerOf(i int) string {
	return t.Labels[i%2]
}

// Segments returns the transcript as labelled segments.
func (t *Transcript) Segments() []Segment {
	out := make([]Segment, len(t.Utterances))
	for i, text := range t.Utterances {
		out[i] = Segment{Speaker: t.SpeakerOf(i), Text: text}
	}
	return out
}

// Segment is one speaker's contiguous utterance.
type Segment struct {
	Speaker string
	Text    string
}

func (s Segment) String() string {
	return fmt.Sprintf("%s: %s", s.Speaker, s.Text)
}
