package dialogue

import (
	"time"

	"dialogcast/core"
)

// Utterance is one recorded line of the dialogue.
type Utterance struct {
	Index   int
	Speaker string
	Text    string
	Usage   core.LLMUsage
	Cost    float64
}

type DialogueHandlerConfig struct {
	Turns       int          // Number of B/A exchanges after A's opening line.
	LabelA      string       // Speaker label of agent A, who opens.
	LabelB      string       // Speaker label of agent B.
	PromptA     string       // Persona prompt given to A.
	PromptB     string       // Persona prompt given to B.
	PricingA    core.Pricing // Token rates for A's provider.
	PricingB    core.Pricing // Token rates for B's provider.
	CallTimeout time.Duration

	// OnUtterance, when set, is called after each utterance is recorded.
	OnUtterance func(Utterance)
}

// DefaultConfig returns a DialogueHandlerConfig matching the painter and
// musician podcast.
func DefaultConfig() DialogueHandlerConfig {
	roles := SetupRoles(DefaultPersonaA, DefaultPersonaB, "english")
	return DialogueHandlerConfig{
		Turns:       5,
		LabelA:      "Painter",
		LabelB:      "Musician",
		PromptA:     roles.PromptA,
		PromptB:     roles.PromptB,
		PricingA:    core.Pricing{InputPerMillion: 0.80, OutputPerMillion: 4},
		PricingB:    core.Pricing{InputPerMillion: 0.15, OutputPerMillion: 0.60},
		CallTimeout: 2 * time.Minute,
	}
}
