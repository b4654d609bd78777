package narration

import (
	"context"

	"dialogcast/core"
)

//go:generate go tool mockgen -source=synthesizer.go -destination=mock_synthesizer_test.go -package=narration

// Synthesizer turns one segment of text into speech. Failures are reported as
// *core.SynthesisError.
type Synthesizer interface {
	Provider() string
	// Voices lists the voices Synthesize accepts.
	Voices() core.VoicePools
	Synthesize(ctx context.Context, text, voice string) (core.AudioClip, error)
}
