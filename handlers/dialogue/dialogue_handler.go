// Package dialogue runs a fixed-length conversation between two agents,
// alternating strictly and accounting each agent's spend.
package dialogue

import (
	"context"
	"errors"
	"fmt"

	"dialogcast/core"
	"dialogcast/handlers/transcript"
)

// Result is the outcome of a run. On failure it holds what was produced
// before the failing call.
type Result struct {
	Transcript *transcript.Transcript
	CostA      *CostLedger
	CostB      *CostLedger
}

// TotalCost is the combined spend of both agents.
func (r *Result) TotalCost() float64 {
	return r.CostA.Total + r.CostB.Total
}

type DialogueHandler struct {
	agentA DialogueService
	agentB DialogueService
	config DialogueHandlerConfig
	logger *core.Logger
}

// NewDialogueHandler creates a handler for one conversation between a and b.
// Use DefaultConfig() and override only what you need.
func NewDialogueHandler(a, b DialogueService, config DialogueHandlerConfig, logger *core.Logger) (*DialogueHandler, error) {
	if a == nil || b == nil {
		return nil, errors.New("both dialogue agents are required")
	}
	if config.Turns < 0 {
		return nil, core.NewConfigError("turns", "must be >= 0, got %d", config.Turns)
	}
	if config.LabelA == "" || config.LabelB == "" {
		return nil, core.NewConfigError("labels", "both speaker labels are required")
	}
	if config.LabelA == config.LabelB {
		return nil, core.NewConfigError("labels", "speaker labels must differ, both are %q", config.LabelA)
	}
	if logger == nil {
		logger = core.GetLogger()
	}
	return &DialogueHandler{
		agentA: a,
		agentB: b,
		config: config,
		logger: logger.With(map[string]any{"component": "dialogue"}),
	}, nil
}

// Run produces exactly 1 + 2*Turns utterances, A first. Any failed call
// aborts the run with a *core.ProviderError; the partial Result is returned
// alongside it. Each run re-instructs both agents, so histories never carry
// over from an earlier run.
func (h *DialogueHandler) Run(ctx context.Context) (*Result, error) {
	res := &Result{
		Transcript: transcript.New(h.config.LabelA, h.config.LabelB),
		CostA:      NewCostLedger(h.agentA.Provider(), h.config.PricingA),
		CostB:      NewCostLedger(h.agentB.Provider(), h.config.PricingB),
	}

	h.agentA.Instruct(h.config.PromptA)
	h.agentB.Instruct(h.config.PromptB)

	h.logger.Info("starting dialogue",
		"turns", h.config.Turns,
		"agent_a", h.config.LabelA+"/"+h.agentA.Provider(),
		"agent_b", h.config.LabelB+"/"+h.agentB.Provider())

	last, err := h.speak(ctx, res, h.agentA, res.CostA)
	if err != nil {
		return res, err
	}
	for turn := 0; turn < h.config.Turns; turn++ {
		h.agentB.AddIncoming(last)
		if last, err = h.speak(ctx, res, h.agentB, res.CostB); err != nil {
			return res, err
		}
		h.agentA.AddIncoming(last)
		if last, err = h.speak(ctx, res, h.agentA, res.CostA); err != nil {
			return res, err
		}
	}

	h.logger.Info("dialogue finished",
		"utterances", res.Transcript.Len(),
		"cost_a", res.CostA.Total,
		"cost_b", res.CostB.Total)
	return res, nil
}

// speak makes one call for agent, then records cost, transcript entry and
// the agent's own history, in that order.
func (h *DialogueHandler) speak(ctx context.Context, res *Result, agent DialogueService, ledger *CostLedger) (string, error) {
	index := res.Transcript.Len()
	speaker := res.Transcript.SpeakerOf(index)

	callCtx := ctx
	if h.config.CallTimeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, h.config.CallTimeout)
		defer cancel()
	}

	completion, err := agent.Complete(callCtx)
	if err != nil {
		perr := asProviderError(agent.Provider(), err)
		perr.Agent = speaker
		perr.Index = index
		h.logger.Error("dialogue call failed", "speaker", speaker, "index", index, "kind", string(perr.Kind), "error", err)
		return "", perr
	}

	cost := ledger.Record(completion.Usage)
	res.Transcript.Append(completion.Text)
	agent.AddOwn(completion.Text)

	h.logger.Debug("utterance recorded",
		"speaker", speaker,
		"index", index,
		"input_tokens", completion.Usage.InputTokens,
		"output_tokens", completion.Usage.OutputTokens,
		"cost", cost)

	if h.config.OnUtterance != nil {
		h.config.OnUtterance(Utterance{
			Index:   index,
			Speaker: speaker,
			Text:    completion.Text,
			Usage:   completion.Usage,
			Cost:    cost,
		})
	}
	return completion.Text, nil
}

// asProviderError returns a copy of err's ProviderError, or wraps a foreign
// error as a transport failure.
func asProviderError(provider string, err error) *core.ProviderError {
	var perr *core.ProviderError
	if errors.As(err, &perr) {
		cp := *perr
		if cp.Provider == "" {
			cp.Provider = provider
		}
		return &cp
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return core.NewProviderError(provider, core.ProviderErrorTransport, fmt.Errorf("call aborted: %w", err))
	}
	return core.NewProviderError(provider, core.ProviderErrorTransport, err)
}
