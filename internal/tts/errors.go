package tts

import (
	"errors"
	"fmt"
)

// Common errors for the synthesis pipeline.
var (
	// ErrNotConfigured means the engine has no usable credentials.
	ErrNotConfigured = errors.New("engine is not configured")

	// ErrEmptyText rejects a synthesis call with nothing to speak.
	ErrEmptyText = errors.New("text cannot be empty")

	// ErrInvalidVoice rejects a malformed voice identifier.
	ErrInvalidVoice = errors.New("invalid voice ID")

	// ErrUnknownEngine means a voice type names an engine that does not exist.
	ErrUnknownEngine = errors.New("unknown engine")

	// ErrExhausted means every fallback attempt for a voice type failed.
	ErrExhausted = errors.New("all synthesis attempts exhausted")
)

// ProviderError wraps a provider-side failure (non-2xx response, timeout,
// malformed payload). It advances the fallback chain; it is fatal for a
// voice type only once the chain is exhausted.
type ProviderError struct {
	Engine     string
	StatusCode int
	Err        error
}

func (e *ProviderError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s: provider returned status %d: %v", e.Engine, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("%s: provider call failed: %v", e.Engine, e.Err)
}

func (e *ProviderError) Unwrap() error { return e.Err }
