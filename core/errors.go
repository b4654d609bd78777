package core

import (
	"errors"
	"fmt"
)

// ProviderErrorKind classifies why a dialogue provider call failed.
type ProviderErrorKind string

const (
	ProviderErrorAuth      ProviderErrorKind = "auth"
	ProviderErrorRateLimit ProviderErrorKind = "rate_limit"
	ProviderErrorMalformed ProviderErrorKind = "malformed"
	ProviderErrorTransport ProviderErrorKind = "transport"
)

// ProviderError is a failed dialogue call. It is fatal to the orchestration run.
type ProviderError struct {
	Provider string
	Kind     ProviderErrorKind
	Agent    string // speaker label of the agent whose call failed, when known
	Index    int    // transcript index the call would have produced
	Err      error
}

func (e *ProviderError) Error() string {
	if e == nil {
		return ""
	}
	prefix := fmt.Sprintf("%s provider error (%s)", e.Provider, e.Kind)
	if e.Agent != "" {
		prefix = fmt.Sprintf("%s for %s at utterance %d", prefix, e.Agent, e.Index)
	}
	if e.Err == nil {
		return prefix
	}
	return fmt.Sprintf("%s: %v", prefix, e.Err)
}

func (e *ProviderError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// NewProviderError builds a ProviderError without run position; the
// orchestrator fills Agent and Index.
func NewProviderError(provider string, kind ProviderErrorKind, err error) *ProviderError {
	return &ProviderError{Provider: provider, Kind: kind, Err: err}
}

// ProviderErrorKindForStatus maps an HTTP status to an error kind.
func ProviderErrorKindForStatus(status int) ProviderErrorKind {
	switch {
	case status == 401 || status == 403:
		return ProviderErrorAuth
	case status == 429:
		return ProviderErrorRateLimit
	case status >= 200 && status < 300:
		return ProviderErrorMalformed
	default:
		return ProviderErrorTransport
	}
}

// SynthesisError is a failed text-to-speech call for one segment. Recoverable:
// the segment is skipped.
type SynthesisError struct {
	Provider string
	Voice    string
	Index    int // segment index, -1 when the caller has not set it
	Speaker  string
	Err      error
}

func (e *SynthesisError) Error() string {
	if e == nil {
		return ""
	}
	where := e.Provider
	if e.Index >= 0 && e.Speaker != "" {
		where = fmt.Sprintf("%s segment %d (%s)", e.Provider, e.Index+1, e.Speaker)
	}
	if e.Err == nil {
		return fmt.Sprintf("synthesis failed: %s voice=%s", where, e.Voice)
	}
	return fmt.Sprintf("synthesis failed: %s voice=%s: %v", where, e.Voice, e.Err)
}

func (e *SynthesisError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// NewSynthesisError builds a SynthesisError for a provider call.
func NewSynthesisError(provider, voice string, err error) *SynthesisError {
	return &SynthesisError{Provider: provider, Voice: voice, Index: -1, Err: err}
}

// ErrNoClips is the cause of an AssemblyError raised on an empty clip sequence.
var ErrNoClips = errors.New("no audio clips to assemble")

// AssemblyError means no output could be produced for a narration run.
type AssemblyError struct {
	Message string
	Err     error
}

func (e *AssemblyError) Error() string {
	if e == nil {
		return ""
	}
	if e.Err == nil {
		return "assembly failed: " + e.Message
	}
	return fmt.Sprintf("assembly failed: %s: %v", e.Message, e.Err)
}

func (e *AssemblyError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// ConfigError covers settings, flags and credentials problems detected before
// any remote call.
type ConfigError struct {
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	if e == nil {
		return ""
	}
	if e.Field == "" {
		return "config: " + e.Message
	}
	return fmt.Sprintf("config: %s: %s", e.Field, e.Message)
}

// NewConfigError builds a ConfigError.
func NewConfigError(field, format string, args ...interface{}) error {
	return &ConfigError{Field: field, Message: fmt.Sprintf(format, args...)}
}
