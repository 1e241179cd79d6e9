// Package tts defines the synthesis engine capability and the fallback
// orchestration that turns announcement text into audio.
package tts

import (
	"context"

	"cabincast/internal/segment"
)

// SizeLimit describes how a provider bounds request size.
type SizeLimit struct {
	// Max units per request.
	Max int

	// Size measures text in the provider's unit (bytes or runes).
	Size segment.SizeFunc
}

// Request is a single synthesis call.
type Request struct {
	// Text to speak. When Markup is set the text is wrapped in SSML by the
	// orchestrator before the call.
	Text string

	// Language is the effective language code for the request.
	Language string

	// VoiceID identifies the provider voice.
	VoiceID string

	// Markup indicates the text carries SSML.
	Markup bool

	// Context is the announcement phase ("boarding", "arrival"), used by
	// engines with per-context voice settings.
	Context string

	// Gender hints voice auto-selection for engines with a fixed catalog.
	Gender string
}

// Engine is the capability every synthesis provider exposes. Engines hold
// no cache and no mutable global state; a call's only side effect is the
// network request itself.
type Engine interface {
	// Name is the engine's stable identifier ("google", "elevenlabs", ...).
	Name() string

	// Available reports whether credentials are configured.
	Available() bool

	// ValidateVoiceID structurally checks a voice id without a network call.
	ValidateVoiceID(id string) bool

	// Limit returns the provider's request size constraint.
	Limit() SizeLimit

	// SupportsMarkup reports whether the engine accepts SSML input.
	SupportsMarkup() bool

	// Synthesize converts one within-limit piece of text to wav bytes.
	Synthesize(ctx context.Context, req Request) ([]byte, error)
}
