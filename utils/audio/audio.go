package audio

import (
	"errors"
	"fmt"

	"dialogcast/core"

	"github.com/zaf/g711"
)

// companders pairs the G.711 encoder and decoder for each companded format.
var companders = map[core.AudioEncodingFormat]struct {
	encode func([]byte) []byte
	decode func([]byte) []byte
}{
	core.ULAW: {g711.EncodeUlaw, g711.DecodeUlaw},
	core.ALAW: {g711.EncodeAlaw, g711.DecodeAlaw},
}

// EncodeG711 compands PCM16 LE bytes to one byte per sample.
func EncodeG711(pcm []byte, encoding core.AudioEncodingFormat) ([]byte, error) {
	c, ok := companders[encoding]
	if !ok {
		return nil, fmt.Errorf("%s is not a G.711 encoding", encoding)
	}
	if len(pcm)%2 != 0 {
		return nil, errors.New("PCM byte slice length must be even (16-bit samples)")
	}
	return c.encode(pcm), nil
}

// DecodeG711 expands companded bytes back to PCM16 LE.
func DecodeG711(data []byte, encoding core.AudioEncodingFormat) ([]byte, error) {
	c, ok := companders[encoding]
	if !ok {
		return nil, fmt.Errorf("%s is not a G.711 encoding", encoding)
	}
	return c.decode(data), nil
}

// ValidatePCMData checks that pcm holds whole frames for numChannels.
func ValidatePCMData(pcm []byte, numChannels int) error {
	switch {
	case len(pcm) == 0:
		return errors.New("PCM data is empty")
	case len(pcm)%2 != 0:
		return errors.New("PCM data must have even length (16-bit samples)")
	case numChannels <= 0:
		return errors.New("invalid number of channels")
	case len(pcm)%(2*numChannels) != 0:
		return errors.New("PCM data length doesn't match channel count")
	}
	return nil
}
