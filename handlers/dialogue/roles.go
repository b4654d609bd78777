package dialogue

import "strings"

// LanguagePlaceholder is replaced by the conversation language in persona
// prompts.
const LanguagePlaceholder = "{language}"

const (
	DefaultPersonaA = "you are a female painter and is going to chat with another person in {language} don't include any tone or scene description in the chat, and don't say your gender and now start chatting"
	DefaultPersonaB = "you are a male musician and is going to chat with another person in {language}, don't say your gender and now start chatting"
)

// Roles are the two persona prompts of one conversation.
type Roles struct {
	PromptA string
	PromptB string
}

// SetupRoles substitutes language into both persona templates.
func SetupRoles(personaA, personaB, language string) Roles {
	return Roles{
		PromptA: strings.ReplaceAll(personaA, LanguagePlaceholder, language),
		PromptB: strings.ReplaceAll(personaB, LanguagePlaceholder, language),
	}
}
