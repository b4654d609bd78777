package narration

import (
	"time"

	"dialogcast/core"
)

// VoiceMap assigns a voice to each speaker label.
type VoiceMap map[string]string

// SegmentEvent reports the outcome of one segment. Err is nil on success.
type SegmentEvent struct {
	Index   int // zero-based segment index
	Total   int
	Speaker string
	Voice   string
	Err     *core.SynthesisError
}

type NarrationHandlerConfig struct {
	Labels         [2]string                // Speaker labels recognised in the transcript.
	Voices         VoiceMap                 // Voice per label, validated against the synthesizer's pools.
	OutputDir      string                   // Directory of the assembled file, created on demand.
	Concurrency    int                      // Segments synthesized at once. 1 keeps the calls sequential.
	Encoding       core.AudioEncodingFormat // Output WAV encoding.
	SegmentTimeout time.Duration            // Per-segment synthesis timeout, 0 disables it.

	// OnSegmentStart and OnSegmentDone, when set, observe progress. With
	// Concurrency > 1 they are called from several goroutines.
	OnSegmentStart func(SegmentEvent)
	OnSegmentDone  func(SegmentEvent)
}

// DefaultConfig returns a NarrationHandlerConfig for the painter and musician
// transcript with the OpenAI voices alloy and nova.
func DefaultConfig() NarrationHandlerConfig {
	return NarrationHandlerConfig{
		Labels:         [2]string{"Painter", "Musician"},
		Voices:         VoiceMap{"Painter": "alloy", "Musician": "nova"},
		OutputDir:      "audio",
		Concurrency:    1,
		Encoding:       core.PCM,
		SegmentTimeout: 2 * time.Minute,
	}
}
