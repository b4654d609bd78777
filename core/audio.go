package core

import "time"

type AudioEncodingFormat int

const (
	PCM  AudioEncodingFormat = iota // 16-bit little endian linear PCM.
	ULAW                            // G.711 µ-law.
	ALAW                            // G.711 A-law.
)

func (f AudioEncodingFormat) String() string {
	switch f {
	case PCM:
		return "pcm16"
	case ULAW:
		return "ulaw"
	case ALAW:
		return "alaw"
	default:
		return "unknown"
	}
}

// AudioClip is one synthesized unit of speech held as 16-bit PCM.
type AudioClip struct {
	Data       []byte // Raw PCM16 LE samples, channels interleaved.
	SampleRate int
	Channels   int
}

// Frames returns the number of sample frames in the clip.
func (c AudioClip) Frames() int {
	if c.Channels <= 0 {
		return 0
	}
	return len(c.Data) / (2 * c.Channels)
}

// Duration is derived from the frame count and sample rate.
func (c AudioClip) Duration() time.Duration {
	if c.SampleRate <= 0 {
		return 0
	}
	return time.Duration(c.Frames()) * time.Second / time.Duration(c.SampleRate)
}

// GetDurationInSeconds returns the clip duration as float seconds.
func (c AudioClip) GetDurationInSeconds() float64 {
	if c.SampleRate <= 0 {
		return 0
	}
	return float64(c.Frames()) / float64(c.SampleRate)
}
