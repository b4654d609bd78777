package factories

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"dialogcast/core"
	"dialogcast/handlers/dialogue"

	"gopkg.in/yaml.v3"
)

// DefaultSettingsFile is read when no --config is given and it exists.
const DefaultSettingsFile = "dialogcast.yaml"

// AgentSettings configures one side of the dialogue.
type AgentSettings struct {
	Label           string              `yaml:"label"`
	Provider        string              `yaml:"provider"`
	Model           string              `yaml:"model"`
	BaseURL         string              `yaml:"base_url,omitempty"`
	MaxTokens       int                 `yaml:"max_tokens,omitempty"`
	Temperature     float32             `yaml:"temperature,omitempty"`
	InstructionRole core.LLMMessageRole `yaml:"instruction_role,omitempty"`
	// Persona may contain {language}.
	Persona string       `yaml:"persona"`
	Pricing core.Pricing `yaml:"pricing"`

	// APIKey is injected from the environment, never read from the file.
	APIKey string `yaml:"-"`
}

type DialogueSettings struct {
	Turns       int           `yaml:"turns"`
	Language    string        `yaml:"language"`
	CallTimeout time.Duration `yaml:"call_timeout"`
	OutDir      string        `yaml:"out_dir"`
	AgentA      AgentSettings `yaml:"agent_a"`
	AgentB      AgentSettings `yaml:"agent_b"`
}

type NarrationSettings struct {
	Provider       string        `yaml:"provider"`
	// Model defaults to tts-1 for openai and eleven_turbo_v2_5 for elevenlabs.
	// Deepgram selects the model through the voice name.
	Model          string        `yaml:"model,omitempty"`
	BaseURL        string        `yaml:"base_url,omitempty"`
	// Speaker1 and Speaker2 default to the provider's DefaultVoices.
	Speaker1       string        `yaml:"speaker1,omitempty"`
	Speaker2       string        `yaml:"speaker2,omitempty"`
	OutputDir      string        `yaml:"output_dir"`
	Concurrency    int           `yaml:"concurrency"`
	Encoding       string        `yaml:"encoding"`
	SegmentTimeout time.Duration `yaml:"segment_timeout"`

	APIKey string `yaml:"-"`
}

// Settings is the top-level configuration loaded from dialogcast.yaml.
type Settings struct {
	Dialogue  DialogueSettings  `yaml:"dialogue"`
	Narration NarrationSettings `yaml:"narration"`
}

// DefaultSettings returns the painter (Claude) and musician (GPT) podcast.
func DefaultSettings() *Settings {
	return &Settings{
		Dialogue: DialogueSettings{
			Turns:       5,
			Language:    "english",
			CallTimeout: 2 * time.Minute,
			OutDir:      ".",
			AgentA: AgentSettings{
				Label:           "Painter",
				Provider:        ProviderAnthropic,
				Model:           "claude-3-5-haiku-latest",
				MaxTokens:       1024,
				InstructionRole: core.LLMMessageRoleUser,
				Persona:         dialogue.DefaultPersonaA,
				Pricing:         core.Pricing{InputPerMillion: 0.80, OutputPerMillion: 4},
			},
			AgentB: AgentSettings{
				Label:           "Musician",
				Provider:        ProviderOpenAI,
				Model:           "gpt-4o-mini",
				InstructionRole: core.LLMMessageRoleSystem,
				Persona:         dialogue.DefaultPersonaB,
				Pricing:         core.Pricing{InputPerMillion: 0.15, OutputPerMillion: 0.60},
			},
		},
		Narration: NarrationSettings{
			Provider:       ProviderOpenAI,
			OutputDir:      "audio",
			Concurrency:    1,
			Encoding:       core.PCM.String(),
			SegmentTimeout: 2 * time.Minute,
		},
	}
}

// LoadSettings reads path over DefaultSettings. An empty path falls back to
// DefaultSettingsFile when it exists, otherwise the defaults are returned.
func LoadSettings(path string) (*Settings, error) {
	settings := DefaultSettings()

	explicit := path != ""
	if !explicit {
		path = DefaultSettingsFile
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if !explicit && errors.Is(err, os.ErrNotExist) {
			return settings, nil
		}
		return nil, core.NewConfigError("config", "reading %s: %v", path, err)
	}

	if err := settings.decode(bytes.NewReader(data)); err != nil {
		return nil, core.NewConfigError("config", "parsing %s: %v", path, err)
	}
	if err := settings.Validate(); err != nil {
		return nil, err
	}
	return settings, nil
}

func (s *Settings) decode(r io.Reader) error {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(s); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

// Validate checks the values the file can get wrong.
func (s *Settings) Validate() error {
	d := s.Dialogue
	if d.Turns < 0 {
		return core.NewConfigError("dialogue.turns", "must be >= 0, got %d", d.Turns)
	}
	agents := []struct {
		name string
		AgentSettings
	}{{"dialogue.agent_a", d.AgentA}, {"dialogue.agent_b", d.AgentB}}
	for _, a := range agents {
		name := a.name
		if strings.TrimSpace(a.Label) == "" {
			return core.NewConfigError(name+".label", "is required")
		}
		if !IsDialogueProvider(a.Provider) {
			return core.NewConfigError(name+".provider", "unknown provider %q (choose from %s)",
				a.Provider, strings.Join(DialogueProviders(), ", "))
		}
		if a.InstructionRole != "" && !a.InstructionRole.Valid() {
			return core.NewConfigError(name+".instruction_role", "unknown role %q", a.InstructionRole)
		}
		if a.Pricing.InputPerMillion < 0 || a.Pricing.OutputPerMillion < 0 {
			return core.NewConfigError(name+".pricing", "rates must not be negative")
		}
	}
	if d.AgentA.Label == d.AgentB.Label {
		return core.NewConfigError("dialogue.agent_b.label", "must differ from agent_a (%q)", d.AgentA.Label)
	}

	n := s.Narration
	if _, err := VoicesFor(n.Provider); err != nil {
		return core.NewConfigError("narration.provider", "unknown provider %q (choose from %s)",
			n.Provider, strings.Join(NarrationProviders(), ", "))
	}
	if _, err := ParseEncoding(n.Encoding); err != nil {
		return err
	}
	if n.Concurrency < 1 {
		return core.NewConfigError("narration.concurrency", "must be >= 1, got %d", n.Concurrency)
	}
	return nil
}

// ParseEncoding maps an encoding name to the output format.
func ParseEncoding(name string) (core.AudioEncodingFormat, error) {
	switch strings.ToLower(name) {
	case "", "pcm", "pcm16":
		return core.PCM, nil
	case "ulaw", "mulaw", "pcmu":
		return core.ULAW, nil
	case "alaw", "pcma":
		return core.ALAW, nil
	}
	return core.PCM, core.NewConfigError("narration.encoding", "unknown encoding %q (choose from pcm16, ulaw, alaw)", name)
}

// DialogueConfig builds the orchestrator config, substituting the language
// into both personas.
func (s *Settings) DialogueConfig() dialogue.DialogueHandlerConfig {
	d := s.Dialogue
	roles := dialogue.SetupRoles(d.AgentA.Persona, d.AgentB.Persona, d.Language)
	return dialogue.DialogueHandlerConfig{
		Turns:       d.Turns,
		LabelA:      d.AgentA.Label,
		LabelB:      d.AgentB.Label,
		PromptA:     roles.PromptA,
		PromptB:     roles.PromptB,
		PricingA:    d.AgentA.Pricing,
		PricingB:    d.AgentB.Pricing,
		CallTimeout: d.CallTimeout,
	}
}

// String renders the settings as YAML. Keys are never included.
func (s *Settings) String() string {
	out, err := yaml.Marshal(s)
	if err != nil {
		return fmt.Sprintf("settings: %v", err)
	}
	return string(out)
}
