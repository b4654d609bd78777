// Package narration turns a transcript file into one narrated audio file:
// parse, synthesize each segment with its speaker's voice, assemble in order.
package narration

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"dialogcast/core"
	"dialogcast/handlers/transcript"
	"dialogcast/utils/audio"

	"golang.org/x/sync/errgroup"
)

// Result summarises a narration run.
type Result struct {
	OutputPath  string
	Segments    int                    // segments parsed from the transcript
	Synthesized int                    // segments present in the output
	Failed      []*core.SynthesisError // skipped segments, in segment order
	Duration    time.Duration
}

type NarrationHandler struct {
	synth  Synthesizer
	config NarrationHandlerConfig
	logger *core.Logger
}

// NewNarrationHandler validates the voice map against synth's voices.
// Use DefaultConfig() and override only what you need.
func NewNarrationHandler(synth Synthesizer, config NarrationHandlerConfig, logger *core.Logger) (*NarrationHandler, error) {
	if synth == nil {
		return nil, errors.New("synthesizer is required")
	}
	pools := synth.Voices()
	for i, label := range config.Labels {
		if label == "" {
			return nil, core.NewConfigError("labels", "speaker label %d is empty", i+1)
		}
		voice, ok := config.Voices[label]
		if !ok || voice == "" {
			return nil, core.NewConfigError(fmt.Sprintf("speaker%d", i+1), "no voice assigned to %s", label)
		}
		if !pools.Contains(voice) {
			return nil, core.NewConfigError(fmt.Sprintf("speaker%d", i+1), "voice %q is not a %s voice (choose from %s)",
				voice, synth.Provider(), strings.Join(pools.All(), ", "))
		}
	}
	if config.Concurrency < 1 {
		config.Concurrency = 1
	}
	if config.OutputDir == "" {
		config.OutputDir = "."
	}
	if logger == nil {
		logger = core.GetLogger()
	}
	return &NarrationHandler{
		synth:  synth,
		config: config,
		logger: logger.With(map[string]any{"component": "narration", "provider": synth.Provider()}),
	}, nil
}

// OutputPath is where the narration of transcriptPath is written.
func (h *NarrationHandler) OutputPath(transcriptPath string) string {
	base := filepath.Base(transcriptPath)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	return filepath.Join(h.config.OutputDir, base+".wav")
}

// Run narrates the transcript at path.
func (h *NarrationHandler) Run(ctx context.Context, path string) (*Result, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open transcript: %w", err)
	}
	defer f.Close()

	segments, err := transcript.Parse(f, h.config.Labels[:])
	if err != nil {
		return nil, fmt.Errorf("read transcript: %w", err)
	}
	if v := transcript.CheckAlternation(segments); len(v) > 0 {
		h.logger.Warn("speakers do not alternate", "violations", len(v), "first_index", v[0].Index, "speaker", v[0].Speaker)
	}
	h.logger.Info("parsed transcript", "path", path, "segments", len(segments))

	return h.Narrate(ctx, segments, h.OutputPath(path))
}

// Narrate synthesizes segments and writes the assembled audio to outputPath.
// Failed segments are skipped; if none succeed the error is a
// *core.AssemblyError. Clip files live in a temporary directory removed
// before Narrate returns.
func (h *NarrationHandler) Narrate(ctx context.Context, segments []transcript.Segment, outputPath string) (*Result, error) {
	res := &Result{Segments: len(segments)}

	clipDir, err := os.MkdirTemp("", "dialogcast-clips-*")
	if err != nil {
		return res, fmt.Errorf("create clip dir: %w", err)
	}
	defer os.RemoveAll(clipDir)

	clipPaths := make([]string, len(segments))
	failures := make([]*core.SynthesisError, len(segments))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(h.config.Concurrency)
	for i, seg := range segments {
		g.Go(func() error {
			path, serr, err := h.synthesizeSegment(gctx, clipDir, i, len(segments), seg)
			if err != nil {
				return err
			}
			clipPaths[i] = path
			failures[i] = serr
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return res, err
	}
	if err := ctx.Err(); err != nil {
		return res, err
	}

	ordered := make([]string, 0, len(segments))
	for i := range segments {
		if failures[i] != nil {
			res.Failed = append(res.Failed, failures[i])
			continue
		}
		ordered = append(ordered, clipPaths[i])
	}
	res.Synthesized = len(ordered)

	if len(ordered) == 0 {
		return res, &core.AssemblyError{Message: "no audio clips were generated", Err: core.ErrNoClips}
	}

	out, err := audio.AssembleFiles(ordered)
	if err != nil {
		return res, err
	}
	if err := os.MkdirAll(filepath.Dir(outputPath), 0o755); err != nil {
		return res, fmt.Errorf("create output dir: %w", err)
	}
	if err := audio.WriteWAVFile(outputPath, out, h.config.Encoding); err != nil {
		return res, fmt.Errorf("write %s: %w", outputPath, err)
	}

	res.OutputPath = outputPath
	res.Duration = out.Duration()
	h.logger.Info("narration written",
		"path", outputPath,
		"synthesized", res.Synthesized,
		"failed", len(res.Failed),
		"duration", res.Duration.String(),
		"encoding", h.config.Encoding.String())
	return res, nil
}

// synthesizeSegment returns the clip path on success or a SynthesisError on
// a recoverable failure. A non-nil error is fatal to the run.
func (h *NarrationHandler) synthesizeSegment(ctx context.Context, clipDir string, i, total int, seg transcript.Segment) (string, *core.SynthesisError, error) {
	voice := h.config.Voices[seg.Speaker]
	event := SegmentEvent{Index: i, Total: total, Speaker: seg.Speaker, Voice: voice}
	if h.config.OnSegmentStart != nil {
		h.config.OnSegmentStart(event)
	}

	fail := func(err error) (string, *core.SynthesisError, error) {
		serr := asSynthesisError(h.synth.Provider(), voice, err)
		serr.Index = i
		serr.Speaker = seg.Speaker
		h.logger.Warn("skipping segment", "index", i+1, "speaker", seg.Speaker, "voice", voice, "error", serr.Err)
		event.Err = serr
		if h.config.OnSegmentDone != nil {
			h.config.OnSegmentDone(event)
		}
		return "", serr, nil
	}

	text := normalizeTextForTTS(seg.Text)
	if text == "" {
		return fail(errors.New("segment has no speakable text"))
	}

	callCtx := ctx
	if h.config.SegmentTimeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, h.config.SegmentTimeout)
		defer cancel()
	}

	h.logger.Debug("synthesizing segment", "index", i+1, "total", total, "speaker", seg.Speaker, "chars", len(text))
	clip, err := h.synth.Synthesize(callCtx, text, voice)
	if err != nil {
		if ctx.Err() != nil {
			return "", nil, ctx.Err()
		}
		return fail(err)
	}
	if len(clip.Data) == 0 {
		return fail(errors.New("empty audio clip"))
	}

	path := filepath.Join(clipDir, clipFilename(i, seg.Speaker, voice))
	if err := audio.WriteWAVFile(path, clip, core.PCM); err != nil {
		return fail(fmt.Errorf("store clip: %w", err))
	}

	if h.config.OnSegmentDone != nil {
		h.config.OnSegmentDone(event)
	}
	return path, nil, nil
}

var unsafeNameChars = regexp.MustCompile(`[^A-Za-z0-9_-]+`)

// clipFilename is derived from the segment position, so names never collide.
func clipFilename(i int, speaker, voice string) string {
	return fmt.Sprintf("%04d_%s_%s.wav", i+1,
		unsafeNameChars.ReplaceAllString(speaker, "_"),
		unsafeNameChars.ReplaceAllString(voice, "_"))
}

func asSynthesisError(provider, voice string, err error) *core.SynthesisError {
	var serr *core.SynthesisError
	if errors.As(err, &serr) {
		cp := *serr
		return &cp
	}
	return core.NewSynthesisError(provider, voice, err)
}
