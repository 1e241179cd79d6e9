package engines

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/time/rate"

	"cabincast/internal/config"
	"cabincast/internal/segment"
	"cabincast/internal/tts"
)

const openAIEndpoint = "https://api.openai.com/v1/audio/speech"

// openAIVoices is the fixed voice catalog.
var openAIVoices = map[string]bool{
	"alloy":   true,
	"echo":    true,
	"fable":   true,
	"onyx":    true,
	"nova":    true,
	"shimmer": true,
}

// genderVoices maps a gender hint to a catalog voice for auto-selection.
var genderVoices = map[string]string{
	"female": "nova",
	"male":   "onyx",
}

// OpenAI synthesizes through the OpenAI speech API. It serves as the
// last-resort engine: no markup, a generous text limit, a small fixed voice
// catalog with gender-based auto-selection.
type OpenAI struct {
	cfg     config.OpenAIConfig
	apiKey  string
	client  *http.Client
	limiter *rate.Limiter
	logger  *log.Logger
}

// NewOpenAI builds the engine from configuration and credentials.
func NewOpenAI(cfg config.OpenAIConfig, eng config.EnginesConfig, creds config.Credentials, logger *log.Logger) *OpenAI {
	if logger == nil {
		logger = log.Default()
	}
	o := &OpenAI{
		cfg:     cfg,
		apiKey:  creds.OpenAIAPIKey,
		client:  &http.Client{Timeout: time.Duration(eng.TimeoutSeconds) * time.Second},
		limiter: newLimiter(eng.RequestsPerMinute),
		logger:  logger.With("component", "openai-tts"),
	}
	if o.apiKey == "" {
		o.logger.Warn("OpenAI TTS has no credentials")
	}
	return o
}

func (o *OpenAI) Name() string { return "openai" }

func (o *OpenAI) Available() bool { return o.apiKey != "" }

// ValidateVoiceID accepts catalog voices and the auto-selection keywords.
func (o *OpenAI) ValidateVoiceID(id string) bool {
	id = strings.ToLower(id)
	if openAIVoices[id] {
		return true
	}
	switch id {
	case "auto", "fallback", "auto_female", "auto_male", "fallback_female", "fallback_male":
		return true
	}
	return false
}

func (o *OpenAI) Limit() tts.SizeLimit {
	return tts.SizeLimit{Max: o.cfg.MaxChars, Size: segment.Runes}
}

func (o *OpenAI) SupportsMarkup() bool { return false }

// resolveVoice turns auto-selection keywords into a catalog voice using the
// gender hint. Unknown ids also fall back to the hint rather than failing.
func (o *OpenAI) resolveVoice(id, gender string) string {
	id = strings.ToLower(id)
	if openAIVoices[id] {
		return id
	}
	switch id {
	case "auto_female", "fallback_female":
		return genderVoices["female"]
	case "auto_male", "fallback_male":
		return genderVoices["male"]
	}
	if v, ok := genderVoices[strings.ToLower(gender)]; ok {
		return v
	}
	return "nova"
}

func (o *OpenAI) Synthesize(ctx context.Context, req tts.Request) ([]byte, error) {
	if req.Text == "" {
		return nil, tts.ErrEmptyText
	}
	if !o.Available() {
		return nil, fmt.Errorf("%w: openai", tts.ErrNotConfigured)
	}
	if err := o.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	voice := o.resolveVoice(req.VoiceID, req.Gender)
	payload, err := json.Marshal(struct {
		Model          string  `json:"model"`
		Input          string  `json:"input"`
		Voice          string  `json:"voice"`
		ResponseFormat string  `json:"response_format"`
		Speed          float64 `json:"speed"`
	}{
		Model:          o.cfg.Model,
		Input:          req.Text,
		Voice:          voice,
		ResponseFormat: "wav",
		Speed:          o.cfg.Speed,
	})
	if err != nil {
		return nil, err
	}

	header := http.Header{}
	header.Set("Authorization", "Bearer "+o.apiKey)

	data, err := postJSON(ctx, o.client, "openai", openAIEndpoint, payload, header)
	if err != nil {
		return nil, err
	}
	o.logger.Debug("OpenAI synthesis complete", "voice", voice, "bytes", len(data))
	return data, nil
}
