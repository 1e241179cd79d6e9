package engines

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/time/rate"

	"cabincast/internal/config"
	"cabincast/internal/segment"
	"cabincast/internal/tts"
)

const elevenLabsBaseURL = "https://api.elevenlabs.io/v1/text-to-speech"

// elevenLabsVoiceIDLen is the fixed length of ElevenLabs voice ids.
const elevenLabsVoiceIDLen = 20

// ElevenLabs synthesizes through the ElevenLabs REST API. Audio is requested
// as raw PCM at the pipeline sample rate and wrapped in a wav container
// locally.
type ElevenLabs struct {
	cfg        config.ElevenLabsConfig
	apiKey     string
	client     *http.Client
	limiter    *rate.Limiter
	sampleRate int
	logger     *log.Logger
}

// NewElevenLabs builds the engine from configuration and credentials.
func NewElevenLabs(cfg config.ElevenLabsConfig, eng config.EnginesConfig, creds config.Credentials, sampleRate int, logger *log.Logger) *ElevenLabs {
	if logger == nil {
		logger = log.Default()
	}
	e := &ElevenLabs{
		cfg:        cfg,
		apiKey:     creds.ElevenLabsAPIKey,
		client:     &http.Client{Timeout: time.Duration(eng.TimeoutSeconds) * time.Second},
		limiter:    newLimiter(eng.RequestsPerMinute),
		sampleRate: sampleRate,
		logger:     logger.With("component", "elevenlabs-tts"),
	}
	if e.apiKey == "" {
		e.logger.Warn("ElevenLabs TTS has no credentials")
	}
	return e
}

func (e *ElevenLabs) Name() string { return "elevenlabs" }

func (e *ElevenLabs) Available() bool { return e.apiKey != "" }

// ValidateVoiceID checks the fixed 20-character alphanumeric format.
func (e *ElevenLabs) ValidateVoiceID(id string) bool {
	if len(id) != elevenLabsVoiceIDLen {
		return false
	}
	for _, r := range id {
		switch {
		case r >= 'a' && r <= 'z':
		case r >= 'A' && r <= 'Z':
		case r >= '0' && r <= '9':
		default:
			return false
		}
	}
	return true
}

func (e *ElevenLabs) Limit() tts.SizeLimit {
	return tts.SizeLimit{Max: e.cfg.MaxChars, Size: segment.Runes}
}

func (e *ElevenLabs) SupportsMarkup() bool { return false }

// settingsFor picks per-context voice settings, falling back to "default".
func (e *ElevenLabs) settingsFor(announceContext string) config.VoiceSettings {
	if s, ok := e.cfg.VoiceSettings[announceContext]; ok {
		return s
	}
	if s, ok := e.cfg.VoiceSettings["default"]; ok {
		return s
	}
	return config.VoiceSettings{Stability: 0.4, SimilarityBoost: 0.9, Style: 0.6, SpeakerBoost: true}
}

func (e *ElevenLabs) Synthesize(ctx context.Context, req tts.Request) ([]byte, error) {
	if req.Text == "" {
		return nil, tts.ErrEmptyText
	}
	if !e.Available() {
		return nil, fmt.Errorf("%w: elevenlabs", tts.ErrNotConfigured)
	}
	if err := e.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	payload, err := json.Marshal(struct {
		Text          string               `json:"text"`
		ModelID       string               `json:"model_id"`
		VoiceSettings config.VoiceSettings `json:"voice_settings"`
	}{
		Text:          req.Text,
		ModelID:       e.cfg.ModelID,
		VoiceSettings: e.settingsFor(req.Context),
	})
	if err != nil {
		return nil, err
	}

	endpoint := fmt.Sprintf("%s/%s?output_format=pcm_%d", elevenLabsBaseURL, req.VoiceID, e.sampleRate)
	header := http.Header{}
	header.Set("xi-api-key", e.apiKey)

	pcm, err := postJSON(ctx, e.client, "elevenlabs", endpoint, payload, header)
	if err != nil {
		return nil, err
	}
	e.logger.Debug("ElevenLabs synthesis complete", "bytes", len(pcm), "context", req.Context)
	return pcmToWAV(pcm, e.sampleRate, 1), nil
}
