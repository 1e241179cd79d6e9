package config

import (
	"encoding/json"
	"fmt"
	"os"
)

// VoiceConfig selects an engine for a voice type and carries one voice id
// per possible engine, so a fallback to a different engine keeps a usable
// identity.
type VoiceConfig struct {
	Engine       string `json:"engine"`
	GoogleID     string `json:"google_id"`
	ElevenLabsID string `json:"elevenlabs_id"`
	OpenAIID     string `json:"openai_id"`
	Gender       string `json:"gender"`
}

// VoiceID returns the voice identifier configured for the named engine.
func (v VoiceConfig) VoiceID(engine string) string {
	switch engine {
	case "google":
		return v.GoogleID
	case "elevenlabs":
		return v.ElevenLabsID
	case "openai":
		return v.OpenAIID
	}
	return ""
}

// AirlineProfile describes one airline's announcement voices.
type AirlineProfile struct {
	// Language is the airline's native language code.
	Language string `json:"language"`

	// PriorityOrder lists voice types in spoken order.
	PriorityOrder []string `json:"priority_order"`

	// Voices maps voice type (e.g. "native", "english") to its config.
	Voices map[string]VoiceConfig `json:"tts_engines"`
}

// AirlineProfiles is the full profile file, keyed by ICAO code.
type AirlineProfiles map[string]AirlineProfile

// LoadAirlineProfiles reads the JSON profile file.
func LoadAirlineProfiles(path string) (AirlineProfiles, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read airline profiles %s: %w", path, err)
	}
	var profiles AirlineProfiles
	if err := json.Unmarshal(data, &profiles); err != nil {
		return nil, fmt.Errorf("failed to parse airline profiles %s: %w", path, err)
	}
	return profiles, nil
}

// Profile returns the profile for an ICAO code.
func (p AirlineProfiles) Profile(icao string) (AirlineProfile, error) {
	profile, ok := p[icao]
	if !ok {
		return AirlineProfile{}, fmt.Errorf("airline %s not found in profiles", icao)
	}
	if len(profile.PriorityOrder) == 0 {
		return AirlineProfile{}, fmt.Errorf("airline %s has no priority order configured", icao)
	}
	return profile, nil
}
