package audio

import (
	"fmt"

	"dialogcast/core"
)

// Assemble concatenates clips in order. No gap or cross-fade is inserted, so
// the result's duration is the sum of the inputs. All clips must share sample
// rate and channel count.
func Assemble(clips []core.AudioClip) (core.AudioClip, error) {
	if len(clips) == 0 {
		return core.AudioClip{}, &core.AssemblyError{Message: "nothing to assemble", Err: core.ErrNoClips}
	}

	first := clips[0]
	if first.SampleRate <= 0 || first.Channels <= 0 {
		return core.AudioClip{}, &core.AssemblyError{
			Message: fmt.Sprintf("clip 0 has invalid format (%d Hz, %d ch)", first.SampleRate, first.Channels),
		}
	}

	total := 0
	for i, clip := range clips {
		if clip.SampleRate != first.SampleRate || clip.Channels != first.Channels {
			return core.AudioClip{}, &core.AssemblyError{
				Message: fmt.Sprintf("clip %d is %d Hz/%d ch, expected %d Hz/%d ch",
					i, clip.SampleRate, clip.Channels, first.SampleRate, first.Channels),
			}
		}
		total += len(clip.Data)
	}

	data := make([]byte, 0, total)
	for _, clip := range clips {
		data = append(data, clip.Data...)
	}
	return core.AudioClip{Data: data, SampleRate: first.SampleRate, Channels: first.Channels}, nil
}

// AssembleFiles reads WAV clips from paths and assembles them in order.
func AssembleFiles(paths []string) (core.AudioClip, error) {
	clips := make([]core.AudioClip, 0, len(paths))
	for _, path := range paths {
		clip, err := ReadWAVFile(path)
		if err != nil {
			return core.AudioClip{}, &core.AssemblyError{Message: "read clip", Err: err}
		}
		clips = append(clips, clip)
	}
	return Assemble(clips)
}
