package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultValidates(t *testing.T) {
	cfg := Default()
	cfg.Cache.Directory = t.TempDir()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
	if cfg.Audio.SampleRate != 24000 || cfg.Audio.Channels != 1 {
		t.Fatalf("unexpected audio defaults: %+v", cfg.Audio)
	}
	if len(cfg.Engines.Google.Strategies) != 3 {
		t.Fatalf("google strategies %d, want 3", len(cfg.Engines.Google.Strategies))
	}
}

func TestLoadOverlaysFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	body := `
audio:
  segment_gap_ms: 300
engines:
  google:
    speaking_rate: 0.95
`
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if cfg.Audio.SegmentGapMs != 300 {
		t.Errorf("segment gap %d, want 300", cfg.Audio.SegmentGapMs)
	}
	if cfg.Engines.Google.SpeakingRate != 0.95 {
		t.Errorf("speaking rate %v, want 0.95", cfg.Engines.Google.SpeakingRate)
	}
	// Untouched values keep their defaults.
	if cfg.Audio.VoiceGapMs != 1200 {
		t.Errorf("voice gap %d, want default 1200", cfg.Audio.VoiceGapMs)
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	cfg := Default()
	cfg.Audio.Channels = 5
	if err := cfg.Validate(); err == nil {
		t.Fatal("5-channel audio accepted")
	}

	cfg = Default()
	cfg.Effects.Compression.Ratio = 0.5
	if err := cfg.Validate(); err == nil {
		t.Fatal("compression ratio below 1 accepted")
	}
}

func TestAirlineProfiles(t *testing.T) {
	path := filepath.Join(t.TempDir(), "profiles.json")
	body := `{
  "THA": {
    "language": "th",
    "priority_order": ["native", "english"],
    "tts_engines": {
      "native": {"engine": "google", "google_id": "th-TH-Standard-A", "gender": "female"},
      "english": {"engine": "google", "google_id": "en-US-Chirp3-HD-Luna", "gender": "female"}
    }
  }
}`
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write profiles: %v", err)
	}

	profiles, err := LoadAirlineProfiles(path)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	profile, err := profiles.Profile("THA")
	if err != nil {
		t.Fatalf("profile lookup: %v", err)
	}
	if profile.Language != "th" {
		t.Errorf("language %q", profile.Language)
	}
	if got := profile.Voices["native"].VoiceID("google"); got != "th-TH-Standard-A" {
		t.Errorf("native voice id %q", got)
	}
	if _, err := profiles.Profile("ZZZ"); err == nil {
		t.Error("unknown airline accepted")
	}
}

func TestCredentialsFromEnv(t *testing.T) {
	t.Setenv("GOOGLE_TTS_API", "gk")
	t.Setenv("ELEVEN_API_KEY", "ek")
	t.Setenv("OPENAI_API_KEY", "ok")

	creds, err := LoadCredentials()
	if err != nil {
		t.Fatalf("load credentials: %v", err)
	}
	if creds.GoogleAPIKey != "gk" || creds.ElevenLabsAPIKey != "ek" || creds.OpenAIAPIKey != "ok" {
		t.Fatalf("credentials %+v", creds)
	}
}
