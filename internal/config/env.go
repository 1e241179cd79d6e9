package config

import (
	"github.com/caarlos0/env/v11"
)

// Credentials holds the provider API credentials, read from the process
// environment. Absence of a credential leaves the matching engine
// unavailable; it is not an error here.
type Credentials struct {
	GoogleAPIKey      string `env:"GOOGLE_TTS_API"`
	GoogleCredentials string `env:"GOOGLE_APPLICATION_CREDENTIALS"`
	ElevenLabsAPIKey  string `env:"ELEVEN_API_KEY"`
	OpenAIAPIKey      string `env:"OPENAI_API_KEY"`
}

// LoadCredentials parses provider credentials from the environment.
func LoadCredentials() (Credentials, error) {
	return env.ParseAs[Credentials]()
}
