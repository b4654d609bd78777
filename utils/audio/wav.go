package audio

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"os"

	"dialogcast/core"
)

// WAV format tags.
const (
	wavFormatPCM  = 1
	wavFormatALaw = 6
	wavFormatULaw = 7
)

// unknownDataSize is written by streaming encoders that do not know the final
// length up front.
const unknownDataSize = 0xFFFFFFFF

// EncodeWAV renders clip as a WAV file in the given encoding. G.711 output
// carries the extended fmt chunk and the fact chunk non-PCM formats require.
func EncodeWAV(clip core.AudioClip, encoding core.AudioEncodingFormat) ([]byte, error) {
	if len(clip.Data) == 0 {
		return nil, errors.New("PCM data is empty")
	}
	if clip.Channels <= 0 || clip.Channels > 2 {
		return nil, errors.New("only mono (1) or stereo (2) channels supported")
	}
	if clip.SampleRate <= 0 {
		return nil, errors.New("sample rate must be positive")
	}
	if err := ValidatePCMData(clip.Data, clip.Channels); err != nil {
		return nil, err
	}

	var (
		payload       []byte
		formatTag     uint16
		bitsPerSample int
		err           error
	)
	switch encoding {
	case core.PCM:
		payload, formatTag, bitsPerSample = clip.Data, wavFormatPCM, 16
	case core.ULAW:
		payload, err = EncodeG711(clip.Data, encoding)
		formatTag, bitsPerSample = wavFormatULaw, 8
	case core.ALAW:
		payload, err = EncodeG711(clip.Data, encoding)
		formatTag, bitsPerSample = wavFormatALaw, 8
	default:
		return nil, fmt.Errorf("unsupported WAV encoding %s", encoding)
	}
	if err != nil {
		return nil, err
	}

	blockAlign := clip.Channels * bitsPerSample / 8
	byteRate := clip.SampleRate * blockAlign
	fmtSize := 16
	if formatTag != wavFormatPCM {
		fmtSize = 18
	}

	var buf bytes.Buffer
	buf.Grow(64 + len(payload))

	buf.WriteString("RIFF")
	binary.Write(&buf, binary.LittleEndian, uint32(0)) // patched below
	buf.WriteString("WAVE")

	buf.WriteString("fmt ")
	binary.Write(&buf, binary.LittleEndian, uint32(fmtSize))
	binary.Write(&buf, binary.LittleEndian, formatTag)
	binary.Write(&buf, binary.LittleEndian, uint16(clip.Channels))
	binary.Write(&buf, binary.LittleEndian, uint32(clip.SampleRate))
	binary.Write(&buf, binary.LittleEndian, uint32(byteRate))
	binary.Write(&buf, binary.LittleEndian, uint16(blockAlign))
	binary.Write(&buf, binary.LittleEndian, uint16(bitsPerSample))
	if formatTag != wavFormatPCM {
		binary.Write(&buf, binary.LittleEndian, uint16(0)) // cbSize

		buf.WriteString("fact")
		binary.Write(&buf, binary.LittleEndian, uint32(4))
		binary.Write(&buf, binary.LittleEndian, uint32(clip.Frames()))
	}

	buf.WriteString("data")
	binary.Write(&buf, binary.LittleEndian, uint32(len(payload)))
	buf.Write(payload)
	if len(payload)%2 != 0 {
		buf.WriteByte(0)
	}

	out := buf.Bytes()
	binary.LittleEndian.PutUint32(out[4:8], uint32(len(out)-8))
	return out, nil
}

// WriteWAVFile encodes clip and writes it to path.
func WriteWAVFile(path string, clip core.AudioClip, encoding core.AudioEncodingFormat) error {
	data, err := EncodeWAV(clip, encoding)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

func isWAV(buf []byte) bool {
	return len(buf) >= 12 && bytes.HasPrefix(buf, []byte("RIFF")) && bytes.Equal(buf[8:12], []byte("WAVE"))
}

// ClipFromResponse turns a provider audio body into a clip. A RIFF/WAVE body
// is decoded with its own format; anything else is taken as raw PCM16 at
// sampleRate and channels, a dangling odd byte dropped.
func ClipFromResponse(body []byte, sampleRate, channels int) (core.AudioClip, error) {
	if isWAV(body) {
		return DecodeWAV(body)
	}
	return core.AudioClip{Data: body[:len(body)-len(body)%2], SampleRate: sampleRate, Channels: channels}, nil
}

type wavFormat struct {
	formatTag     uint16
	channels      int
	sampleRate    int
	bitsPerSample int
}

// parseWAVChunks walks the RIFF chunk list. A data chunk whose size is the
// streaming placeholder runs to the end of the buffer.
func parseWAVChunks(buf []byte) (*wavFormat, []byte, error) {
	var format *wavFormat
	i := 12
	for i+8 <= len(buf) {
		chunkID := string(buf[i : i+4])
		chunkSize := binary.LittleEndian.Uint32(buf[i+4 : i+8])
		body := i + 8

		if chunkID == "data" {
			if chunkSize == unknownDataSize {
				return format, buf[body:], nil
			}
			next := body + int(chunkSize)
			if next > len(buf) {
				return nil, nil, errors.New("invalid WAV: data chunk exceeds buffer length")
			}
			return format, buf[body:next], nil
		}

		next := body + int(chunkSize)
		if next > len(buf) {
			break
		}
		if chunkID == "fmt " && chunkSize >= 16 {
			format = &wavFormat{
				formatTag:     binary.LittleEndian.Uint16(buf[body : body+2]),
				channels:      int(binary.LittleEndian.Uint16(buf[body+2 : body+4])),
				sampleRate:    int(binary.LittleEndian.Uint32(buf[body+4 : body+8])),
				bitsPerSample: int(binary.LittleEndian.Uint16(buf[body+14 : body+16])),
			}
		}
		// Account for padding to even boundary
		if chunkSize%2 != 0 {
			next++
		}
		i = next
	}
	return nil, nil, errors.New("invalid WAV: data chunk not found")
}

// DecodeWAV reads a WAV buffer into a PCM16 clip. PCM16 and G.711 payloads
// are accepted.
func DecodeWAV(buf []byte) (core.AudioClip, error) {
	if !isWAV(buf) {
		return core.AudioClip{}, errors.New("invalid WAV: missing RIFF/WAVE header")
	}
	format, data, err := parseWAVChunks(buf)
	if err != nil {
		return core.AudioClip{}, err
	}
	if format == nil {
		return core.AudioClip{}, errors.New("invalid WAV: fmt chunk not found before data")
	}

	clip := core.AudioClip{SampleRate: format.sampleRate, Channels: format.channels}
	switch {
	case format.formatTag == wavFormatPCM && format.bitsPerSample == 16:
		clip.Data = data[:len(data)-len(data)%2]
	case format.formatTag == wavFormatULaw:
		clip.Data, err = DecodeG711(data, core.ULAW)
	case format.formatTag == wavFormatALaw:
		clip.Data, err = DecodeG711(data, core.ALAW)
	default:
		return core.AudioClip{}, fmt.Errorf("unsupported WAV format tag %d (%d bits)", format.formatTag, format.bitsPerSample)
	}
	return clip, err
}

// ReadWAVFile loads a WAV file from disk as a PCM16 clip.
func ReadWAVFile(path string) (core.AudioClip, error) {
	buf, err := os.ReadFile(path)
	if err != nil {
		return core.AudioClip{}, err
	}
	clip, err := DecodeWAV(buf)
	if err != nil {
		return core.AudioClip{}, fmt.Errorf("%s: %w", path, err)
	}
	return clip, nil
}
