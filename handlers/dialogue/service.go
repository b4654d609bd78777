package dialogue

import (
	"context"

	"dialogcast/core"
)

//go:generate go tool mockgen -source=service.go -destination=mock_service_test.go -package=dialogue

// DialogueService is one conversational agent. Each implementation keeps its
// history in its own provider's message type; the orchestrator never sees it.
type DialogueService interface {
	// Provider names the vendor, used in cost reports and errors.
	Provider() string
	// Instruct discards any previous history and starts a new one holding
	// only the agent's persona prompt.
	Instruct(prompt string)
	// AddIncoming records the other agent's utterance as a user message.
	AddIncoming(text string)
	// AddOwn records this agent's utterance as an assistant message.
	AddOwn(text string)
	// Complete makes one remote call over the current history. It does not
	// modify the history.
	Complete(ctx context.Context) (core.LLMCompletion, error)
}
