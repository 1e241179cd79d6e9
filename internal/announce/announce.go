// Package announce runs the full announcement pipeline: per-voice synthesis
// with fallback, static-audio caching, assembly and the radio effect chain.
package announce

import "time"

// Request describes one announcement render.
type Request struct {
	// Context is the announcement phase: "boarding" or "arrival".
	Context string

	// ICAO selects the airline profile.
	ICAO string

	// Texts maps language codes to prepared announcement text. Each text may
	// carry a dynamic part and, after the first blank line, a static part.
	Texts map[string]string

	// DestinationLanguage selects the text for the "destination" voice type.
	// Empty falls back to English.
	DestinationLanguage string
}

// Result records what a render produced.
type Result struct {
	Success bool

	// FinalPath is the finished waveform on disk.
	FinalPath string

	// VoiceTypes that made it into the final audio, in spoken order.
	VoiceTypes []string

	// EffectsApplied lists the effect stages that ran.
	EffectsApplied []string

	Duration time.Duration
	PeakDB   float64
}
