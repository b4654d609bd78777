package core

type LLMMessageRole string

const (
	LLMMessageRoleUser      LLMMessageRole = "user"
	LLMMessageRoleAssistant LLMMessageRole = "assistant"
	LLMMessageRoleSystem    LLMMessageRole = "system"
)

// Valid reports whether r is one of the roles a dialogue history may carry.
func (r LLMMessageRole) Valid() bool {
	switch r {
	case LLMMessageRoleUser, LLMMessageRoleAssistant, LLMMessageRoleSystem:
		return true
	}
	return false
}

// LLMMessage is a provider-neutral view of one history entry, used for
// inspection and logging. Provider services keep their own typed histories.
type LLMMessage struct {
	Role    LLMMessageRole `json:"role"`
	Message string         `json:"message"`
}

// LLMUsage is the token accounting reported by a provider for one call.
type LLMUsage struct {
	InputTokens  int `json:"input_tokens"`
	OutputTokens int `json:"output_tokens"`
}

// LLMCompletion is the result of one successful provider call.
type LLMCompletion struct {
	Text  string   `json:"text"`
	Usage LLMUsage `json:"usage"`
	Model string   `json:"model,omitempty"`
}

// Pricing holds provider rates in US dollars per million tokens.
type Pricing struct {
	InputPerMillion  float64 `json:"input_per_million" yaml:"input_per_million"`
	OutputPerMillion float64 `json:"output_per_million" yaml:"output_per_million"`
}

// Cost returns the dollar cost of usage at these rates.
func (p Pricing) Cost(usage LLMUsage) float64 {
	return float64(usage.InputTokens)*p.InputPerMillion/1_000_000 +
		float64(usage.OutputTokens)*p.OutputPerMillion/1_000_000
}
