// Package config holds the pipeline configuration, airline voice profiles
// and credential loading for cabincast.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Config is the single configuration object for a pipeline run. Every
// component receives the section it needs explicitly; nothing reads
// package-level state.
type Config struct {
	// Audio holds format and gap timing settings.
	Audio AudioConfig `yaml:"audio" mapstructure:"audio"`

	// Cache holds static-audio cache settings.
	Cache CacheConfig `yaml:"cache" mapstructure:"cache"`

	// Effects holds the radio effect chain parameters.
	Effects EffectsConfig `yaml:"effects" mapstructure:"effects"`

	// Engines holds provider-specific settings.
	Engines EnginesConfig `yaml:"engines" mapstructure:"engines"`

	// Fallback holds the last-resort engine settings.
	Fallback FallbackConfig `yaml:"fallback" mapstructure:"fallback"`

	// Output holds final artifact settings.
	Output OutputConfig `yaml:"output" mapstructure:"output"`
}

// AudioConfig controls the waveform format and silence gaps.
type AudioConfig struct {
	// SampleRate of every synthesized and assembled clip, in Hz.
	SampleRate int `yaml:"sample_rate" mapstructure:"sample_rate"`

	// Channels of the final waveform (1 = mono, 2 = stereo).
	Channels int `yaml:"channels" mapstructure:"channels"`

	// SegmentGapMs is the silence between text segments of one synthesis.
	SegmentGapMs int `yaml:"segment_gap_ms" mapstructure:"segment_gap_ms"`

	// PartGapMs is the silence between the dynamic and static parts.
	PartGapMs int `yaml:"part_gap_ms" mapstructure:"part_gap_ms"`

	// VoiceGapMs is the silence between voice types in the final sequence.
	VoiceGapMs int `yaml:"voice_gap_ms" mapstructure:"voice_gap_ms"`
}

// CacheConfig controls the static-audio cache.
type CacheConfig struct {
	Enabled bool `yaml:"enabled" mapstructure:"enabled"`

	// Directory for cached static audio. Empty selects
	// ~/.cache/cabincast/tts.
	Directory string `yaml:"directory" mapstructure:"directory"`

	// TTLDays after which an entry is treated as absent and regenerated.
	TTLDays int `yaml:"ttl_days" mapstructure:"ttl_days"`
}

// EffectsConfig parameterizes the radio effect chain. Stage order is fixed;
// only participation and numbers are configurable.
type EffectsConfig struct {
	Enabled bool `yaml:"enabled" mapstructure:"enabled"`

	Highpass struct {
		Enabled bool `yaml:"enabled" mapstructure:"enabled"`
		Freq    int  `yaml:"freq" mapstructure:"freq"`
		SlopeA  int  `yaml:"slope_a" mapstructure:"slope_a"`
		SlopeB  int  `yaml:"slope_b" mapstructure:"slope_b"`
	} `yaml:"highpass" mapstructure:"highpass"`

	Lowpass struct {
		Enabled bool `yaml:"enabled" mapstructure:"enabled"`
		Freq    int  `yaml:"freq" mapstructure:"freq"`
		Slope   int  `yaml:"slope" mapstructure:"slope"`
	} `yaml:"lowpass" mapstructure:"lowpass"`

	Compression struct {
		Enabled     bool    `yaml:"enabled" mapstructure:"enabled"`
		Ratio       float64 `yaml:"ratio" mapstructure:"ratio"`
		ThresholdDB float64 `yaml:"threshold_db" mapstructure:"threshold_db"`
	} `yaml:"compression" mapstructure:"compression"`

	Saturation struct {
		Enabled bool    `yaml:"enabled" mapstructure:"enabled"`
		Amount  float64 `yaml:"amount" mapstructure:"amount"`
	} `yaml:"saturation" mapstructure:"saturation"`

	NoiseGate struct {
		Enabled     bool    `yaml:"enabled" mapstructure:"enabled"`
		ThresholdDB float64 `yaml:"threshold_db" mapstructure:"threshold_db"`
	} `yaml:"noise_gate" mapstructure:"noise_gate"`

	Noise struct {
		Enabled   bool    `yaml:"enabled" mapstructure:"enabled"`
		Amplitude float64 `yaml:"amplitude" mapstructure:"amplitude"`
		MixRatio  float64 `yaml:"mix_ratio" mapstructure:"mix_ratio"`
	} `yaml:"noise" mapstructure:"noise"`

	Loudnorm struct {
		Enabled    bool    `yaml:"enabled" mapstructure:"enabled"`
		TargetLUFS float64 `yaml:"target_lufs" mapstructure:"target_lufs"`
		PeakDB     float64 `yaml:"peak_db" mapstructure:"peak_db"`
	} `yaml:"loudnorm" mapstructure:"loudnorm"`
}

// Strategy describes one fallback attempt: whether to wrap the text in
// markup and whether to force the effective language to the voice's own.
type Strategy struct {
	Markup        bool `yaml:"markup" mapstructure:"markup"`
	ForceLanguage bool `yaml:"force_language" mapstructure:"force_language"`
}

// EnginesConfig holds per-provider settings.
type EnginesConfig struct {
	Google     GoogleConfig     `yaml:"google" mapstructure:"google"`
	ElevenLabs ElevenLabsConfig `yaml:"elevenlabs" mapstructure:"elevenlabs"`
	OpenAI     OpenAIConfig     `yaml:"openai" mapstructure:"openai"`

	// TimeoutSeconds bounds every synthesis network call.
	TimeoutSeconds int `yaml:"timeout_seconds" mapstructure:"timeout_seconds"`

	// RetryDelayMs is the fixed delay between fallback attempts.
	RetryDelayMs int `yaml:"retry_delay_ms" mapstructure:"retry_delay_ms"`

	// RequestsPerMinute rate-limits each engine's outbound calls.
	RequestsPerMinute int `yaml:"requests_per_minute" mapstructure:"requests_per_minute"`
}

// GoogleConfig holds Google Cloud TTS settings.
type GoogleConfig struct {
	// MaxBytes per request; Google limits by UTF-8 byte length.
	MaxBytes int `yaml:"max_bytes" mapstructure:"max_bytes"`

	// SpeakingRate multiplier.
	SpeakingRate float64 `yaml:"speaking_rate" mapstructure:"speaking_rate"`

	// Strategies is the ordered fallback attempt list for this engine.
	Strategies []Strategy `yaml:"strategies" mapstructure:"strategies"`
}

// ElevenLabsConfig holds ElevenLabs settings.
type ElevenLabsConfig struct {
	// MaxChars per request; ElevenLabs limits by character count.
	MaxChars int    `yaml:"max_chars" mapstructure:"max_chars"`
	ModelID  string `yaml:"model_id" mapstructure:"model_id"`

	// Voice rendering settings keyed by announcement context, with a
	// "default" entry used when a context has no override.
	VoiceSettings map[string]VoiceSettings `yaml:"voice_settings" mapstructure:"voice_settings"`

	Strategies []Strategy `yaml:"strategies" mapstructure:"strategies"`
}

// VoiceSettings mirrors the ElevenLabs voice rendering knobs.
type VoiceSettings struct {
	Stability       float64 `yaml:"stability" mapstructure:"stability" json:"stability"`
	SimilarityBoost float64 `yaml:"similarity_boost" mapstructure:"similarity_boost" json:"similarity_boost"`
	Style           float64 `yaml:"style" mapstructure:"style" json:"style"`
	SpeakerBoost    bool    `yaml:"speaker_boost" mapstructure:"speaker_boost" json:"use_speaker_boost"`
}

// OpenAIConfig holds OpenAI TTS settings.
type OpenAIConfig struct {
	MaxChars int     `yaml:"max_chars" mapstructure:"max_chars"`
	Model    string  `yaml:"model" mapstructure:"model"`
	Speed    float64 `yaml:"speed" mapstructure:"speed"`

	Strategies []Strategy `yaml:"strategies" mapstructure:"strategies"`
}

// FallbackConfig describes the last-resort engine used after a voice type's
// attempt list is exhausted.
type FallbackConfig struct {
	Enabled bool   `yaml:"enabled" mapstructure:"enabled"`
	Engine  string `yaml:"engine" mapstructure:"engine"`
	Voice   string `yaml:"voice" mapstructure:"voice"`
}

// OutputConfig describes where final artifacts land.
type OutputConfig struct {
	// Directory for the final waveform and the run-scoped temp subdirectory.
	Directory string `yaml:"directory" mapstructure:"directory"`

	// Filename of the finished announcement.
	Filename string `yaml:"filename" mapstructure:"filename"`
}

// Default returns the baseline configuration. File values override it.
func Default() *Config {
	cfg := &Config{
		Audio: AudioConfig{
			SampleRate:   24000,
			Channels:     1,
			SegmentGapMs: 500,
			PartGapMs:    700,
			VoiceGapMs:   1200,
		},
		Cache: CacheConfig{
			Enabled: true,
			TTLDays: 30,
		},
		Engines: EnginesConfig{
			Google: GoogleConfig{
				MaxBytes:     800,
				SpeakingRate: 1.1,
				Strategies: []Strategy{
					{Markup: true, ForceLanguage: true},
					{Markup: false, ForceLanguage: true},
					{Markup: false, ForceLanguage: false},
				},
			},
			ElevenLabs: ElevenLabsConfig{
				MaxChars: 2500,
				ModelID:  "eleven_multilingual_v2",
				VoiceSettings: map[string]VoiceSettings{
					"default":  {Stability: 0.4, SimilarityBoost: 0.9, Style: 0.6, SpeakerBoost: true},
					"boarding": {Stability: 0.3, SimilarityBoost: 0.9, Style: 0.7, SpeakerBoost: true},
					"arrival":  {Stability: 0.5, SimilarityBoost: 0.85, Style: 0.4, SpeakerBoost: true},
				},
				Strategies: []Strategy{
					{Markup: false, ForceLanguage: false},
				},
			},
			OpenAI: OpenAIConfig{
				MaxChars: 4000,
				Model:    "tts-1-hd",
				Speed:    1.0,
				Strategies: []Strategy{
					{Markup: false, ForceLanguage: false},
				},
			},
			TimeoutSeconds:    60,
			RetryDelayMs:      250,
			RequestsPerMinute: 50,
		},
		Fallback: FallbackConfig{
			Enabled: false,
			Engine:  "openai",
			Voice:   "alloy",
		},
		Output: OutputConfig{
			Directory: "output",
			Filename:  "final_announcement.wav",
		},
	}

	cfg.Effects.Enabled = true
	cfg.Effects.Highpass.Enabled = true
	cfg.Effects.Highpass.Freq = 800
	cfg.Effects.Highpass.SlopeA = 18
	cfg.Effects.Highpass.SlopeB = 6
	cfg.Effects.Lowpass.Enabled = true
	cfg.Effects.Lowpass.Freq = 3000
	cfg.Effects.Lowpass.Slope = 12
	cfg.Effects.Compression.Enabled = true
	cfg.Effects.Compression.Ratio = 10.0
	cfg.Effects.Compression.ThresholdDB = -12
	cfg.Effects.Saturation.Enabled = true
	cfg.Effects.Saturation.Amount = 0.20
	cfg.Effects.NoiseGate.Enabled = false
	cfg.Effects.NoiseGate.ThresholdDB = -40
	cfg.Effects.Noise.Enabled = true
	cfg.Effects.Noise.Amplitude = 0.15
	cfg.Effects.Noise.MixRatio = 0.04
	cfg.Effects.Loudnorm.Enabled = true
	cfg.Effects.Loudnorm.TargetLUFS = -14
	cfg.Effects.Loudnorm.PeakDB = -2.0

	return cfg
}

// Load reads the configuration file at path, overlaying it on defaults.
// An empty path returns the defaults unchanged.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		v := viper.New()
		v.SetConfigType("yaml")
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config %s: %w", path, err)
		}
		if err := v.Unmarshal(cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
		}
		log.Info("Loaded pipeline configuration", "path", path)
	} else {
		log.Debug("No config file given, using defaults")
	}

	if cfg.Cache.Directory == "" {
		if home, err := os.UserHomeDir(); err == nil {
			cfg.Cache.Directory = filepath.Join(home, ".cache", "cabincast", "tts")
		} else {
			cfg.Cache.Directory = filepath.Join(os.TempDir(), "cabincast-tts-cache")
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects configurations the pipeline cannot run with.
func (c *Config) Validate() error {
	if c.Audio.SampleRate <= 0 {
		return fmt.Errorf("invalid sample rate %d", c.Audio.SampleRate)
	}
	if c.Audio.Channels != 1 && c.Audio.Channels != 2 {
		return fmt.Errorf("invalid channel count %d", c.Audio.Channels)
	}
	if c.Cache.TTLDays <= 0 {
		return fmt.Errorf("invalid cache TTL %d days", c.Cache.TTLDays)
	}
	if c.Engines.Google.MaxBytes <= 0 || c.Engines.ElevenLabs.MaxChars <= 0 || c.Engines.OpenAI.MaxChars <= 0 {
		return fmt.Errorf("engine request limits must be positive")
	}
	if c.Effects.Compression.Enabled && c.Effects.Compression.Ratio <= 1.0 {
		return fmt.Errorf("compression ratio must exceed 1.0, got %v", c.Effects.Compression.Ratio)
	}
	return nil
}

// Example renders a commented example configuration file.
func Example() string {
	data, _ := yaml.Marshal(Default())
	header := `# cabincast configuration
#
# All values shown are the defaults. Remove anything you do not want to
# override. Pass the file with --config.

`
	return header + string(data)
}
