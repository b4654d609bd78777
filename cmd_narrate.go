package main

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"dialogcast/core"
	"dialogcast/factories"
	"dialogcast/handlers/narration"

	"github.com/spf13/cobra"
)

func newNarrateCommand(a *app) *cobra.Command {
	var (
		speaker1, speaker2 string
		provider           string
		outputDir          string
		concurrency        int
		encoding           string
	)

	cmd := &cobra.Command{
		Use:   "narrate <transcript>",
		Short: "Convert a saved transcript into one narrated audio file",
		Long: `Narrate parses a transcript written by converse, synthesizes every
segment with its speaker's voice and joins the clips, in order, into
<output-dir>/<transcript name>.wav. Segments whose synthesis fails are skipped.`,
		Args: exactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			n := &a.settings.Narration
			if cmd.Flags().Changed("provider") {
				n.Provider = provider
				// voices from the settings file belong to the old provider
				n.Speaker1, n.Speaker2 = "", ""
			}
			if cmd.Flags().Changed("speaker1") {
				n.Speaker1 = speaker1
			}
			if cmd.Flags().Changed("speaker2") {
				n.Speaker2 = speaker2
			}
			if cmd.Flags().Changed("output-dir") {
				n.OutputDir = outputDir
			}
			if cmd.Flags().Changed("concurrency") {
				n.Concurrency = concurrency
			}
			if cmd.Flags().Changed("encoding") {
				n.Encoding = encoding
			}
			if err := a.settings.Validate(); err != nil {
				return err
			}
			return runNarrate(cmd, a, args[0])
		},
	}

	cmd.Flags().StringVar(&speaker1, "speaker1", "", "Voice for the first speaker (provider default: alloy, rachel, aura-2-thalia-en)")
	cmd.Flags().StringVar(&speaker2, "speaker2", "", "Voice for the second speaker (provider default: nova, antoni, aura-2-arcas-en)")
	cmd.Flags().StringVar(&provider, "provider", factories.ProviderOpenAI, "Text-to-speech provider: "+strings.Join(factories.NarrationProviders(), ", "))
	cmd.Flags().StringVar(&outputDir, "output-dir", "audio", "Directory for the narrated file")
	cmd.Flags().IntVar(&concurrency, "concurrency", 1, "Segments synthesized at once")
	cmd.Flags().StringVar(&encoding, "encoding", "pcm16", "Output encoding: pcm16, ulaw or alaw")
	return cmd
}

func runNarrate(cmd *cobra.Command, a *app, path string) error {
	ctx := cmd.Context()
	logger := loggerFor(cmd)
	s := a.settings

	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("transcript %s not found", path)
		}
		return err
	}

	s.InjectAPIKeys(factories.APIKeysFromEnv())
	if err := s.RequireNarrationKey(); err != nil {
		return err
	}

	synth, err := factories.BuildSynthesizer(s.Narration, logger)
	if err != nil {
		return err
	}
	cfg, err := s.NarrationConfig()
	if err != nil {
		return err
	}
	// Callbacks run on the synthesis goroutines when concurrency > 1.
	var outMu sync.Mutex
	cfg.OnSegmentStart = func(e narration.SegmentEvent) {
		outMu.Lock()
		defer outMu.Unlock()
		fmt.Fprintf(a.stdout, "Generating audio %d/%d for %s...\n", e.Index+1, e.Total, e.Speaker)
	}
	cfg.OnSegmentDone = func(e narration.SegmentEvent) {
		if e.Err == nil {
			return
		}
		outMu.Lock()
		defer outMu.Unlock()
		fmt.Fprintf(a.stdout, "Error generating audio for segment %d: %v\n", e.Index+1, e.Err.Err)
	}

	h, err := narration.NewNarrationHandler(synth, cfg, logger)
	if err != nil {
		return err
	}

	res, err := h.Run(ctx, path)
	if err != nil {
		if errors.Is(err, core.ErrNoClips) {
			fmt.Fprintln(a.stdout, "No audio clips were generated")
		}
		return err
	}

	fmt.Fprintf(a.stdout, "\nAudio saved to %s (%s, %d/%d segments)\n",
		res.OutputPath, res.Duration.Round(10*time.Millisecond), res.Synthesized, res.Segments)
	if len(res.Failed) > 0 {
		var idx []string
		for _, f := range res.Failed {
			idx = append(idx, fmt.Sprint(f.Index+1))
		}
		fmt.Fprintf(a.stdout, "Skipped segments: %s\n", strings.Join(idx, ", "))
	}
	return nil
}
