package main

import (
	"fmt"
	"time"

	"dialogcast/factories"
	"dialogcast/handlers/dialogue"
	"dialogcast/handlers/transcript"

	"github.com/bytedance/sonic"
	"github.com/spf13/cobra"
)

type converseOptions struct {
	turns         int
	language      string
	outDir        string
	reportPartial bool
	json          bool
}

func newConverseCommand(a *app) *cobra.Command {
	var opts converseOptions

	cmd := &cobra.Command{
		Use:   "converse",
		Short: "Run a dialogue between the two agents and save the transcript",
		Args:  exactArgs(0),
		RunE: func(cmd *cobra.Command, args []string) error {
			s := a.settings
			if cmd.Flags().Changed("turns") {
				s.Dialogue.Turns = opts.turns
			}
			if cmd.Flags().Changed("language") {
				s.Dialogue.Language = opts.language
			}
			if cmd.Flags().Changed("out-dir") {
				s.Dialogue.OutDir = opts.outDir
			}
			if err := s.Validate(); err != nil {
				return err
			}
			return runConverse(cmd, a, opts)
		},
	}

	cmd.Flags().IntVar(&opts.turns, "turns", 5, "Number of exchanges after the opening line")
	cmd.Flags().StringVar(&opts.language, "language", "english", "Conversation language")
	cmd.Flags().StringVar(&opts.outDir, "out-dir", ".", "Directory for the transcript file")
	cmd.Flags().BoolVar(&opts.reportPartial, "report-partial", false, "Print costs accumulated so far when the dialogue fails")
	cmd.Flags().BoolVar(&opts.json, "json", false, "Print the cost report as JSON")
	return cmd
}

func runConverse(cmd *cobra.Command, a *app, opts converseOptions) error {
	ctx := cmd.Context()
	logger := loggerFor(cmd)
	s := a.settings

	s.InjectAPIKeys(factories.APIKeysFromEnv())
	if err := s.RequireDialogueKeys(); err != nil {
		return err
	}

	agentA, agentB, err := factories.BuildAgents(ctx, s, logger)
	if err != nil {
		return err
	}

	cfg := s.DialogueConfig()
	if !opts.json {
		cfg.OnUtterance = func(u dialogue.Utterance) {
			if u.Index > 0 {
				fmt.Fprintln(a.stdout)
			}
			fmt.Fprintf(a.stdout, "%s: %s\n", u.Speaker, u.Text)
		}
	}

	h, err := dialogue.NewDialogueHandler(agentA, agentB, cfg, logger)
	if err != nil {
		return err
	}

	res, runErr := h.Run(ctx)
	if runErr != nil {
		if opts.reportPartial && res != nil {
			if err := printCostReport(a, res, "", false, opts.json); err != nil {
				logger.Error("printing partial cost report failed", "error", err)
			}
		}
		return runErr
	}

	path, err := transcript.WriteFile(s.Dialogue.OutDir, res.Transcript, time.Now())
	if err != nil {
		return err
	}
	return printCostReport(a, res, path, true, opts.json)
}

type agentCost struct {
	Label string `json:"label"`
	*dialogue.CostLedger
}

type costReport struct {
	Complete   bool        `json:"complete"`
	Transcript string      `json:"transcript,omitempty"`
	Utterances int         `json:"utterances"`
	Agents     []agentCost `json:"agents"`
	TotalUSD   float64     `json:"total_usd"`
}

func printCostReport(a *app, res *dialogue.Result, path string, complete, asJSON bool) error {
	labels := res.Transcript.Labels
	report := costReport{
		Complete:   complete,
		Transcript: path,
		Utterances: res.Transcript.Len(),
		Agents: []agentCost{
			{Label: labels[0], CostLedger: res.CostA},
			{Label: labels[1], CostLedger: res.CostB},
		},
		TotalUSD: res.TotalCost(),
	}

	if asJSON {
		out, err := sonic.ConfigDefault.MarshalIndent(report, "", "  ")
		if err != nil {
			return fmt.Errorf("encode cost report: %w", err)
		}
		fmt.Fprintln(a.stdout, string(out))
		return nil
	}

	if complete {
		fmt.Fprintln(a.stdout, "\nFinal costs:")
	} else {
		fmt.Fprintf(a.stdout, "\nCosts before failure (%d utterances):\n", report.Utterances)
	}
	for _, ac := range report.Agents {
		fmt.Fprintf(a.stdout, "%s (%s) cost: $%.4f\n", ac.Label, ac.Provider, ac.Total)
	}
	fmt.Fprintf(a.stdout, "Total cost: $%.4f\n", report.TotalUSD)
	if path != "" {
		fmt.Fprintf(a.stdout, "\nConversation saved to %s\n", path)
	}
	return nil
}

