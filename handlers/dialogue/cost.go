package dialogue

import (
	"fmt"

	"dialogcast/core"
)

// CostLedger accumulates the spend of one agent. It is written only by that
// agent's call path, so it carries no lock.
type CostLedger struct {
	Provider     string       `json:"provider"`
	Pricing      core.Pricing `json:"pricing"`
	Calls        int          `json:"calls"`
	InputTokens  int          `json:"input_tokens"`
	OutputTokens int          `json:"output_tokens"`
	Total        float64      `json:"total_usd"`
}

func NewCostLedger(provider string, pricing core.Pricing) *CostLedger {
	return &CostLedger{Provider: provider, Pricing: pricing}
}

// Record adds one successful call and returns its cost.
func (l *CostLedger) Record(usage core.LLMUsage) float64 {
	cost := l.Pricing.Cost(usage)
	l.Calls++
	l.InputTokens += usage.InputTokens
	l.OutputTokens += usage.OutputTokens
	l.Total += cost
	return cost
}

func (l *CostLedger) String() string {
	return fmt.Sprintf("%s: $%.4f (%d calls, %d in / %d out tokens)",
		l.Provider, l.Total, l.Calls, l.InputTokens, l.OutputTokens)
}
