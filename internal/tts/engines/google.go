package engines

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"time"

	texttospeech "cloud.google.com/go/texttospeech/apiv1"
	"cloud.google.com/go/texttospeech/apiv1/texttospeechpb"
	"github.com/charmbracelet/log"
	"golang.org/x/time/rate"
	"google.golang.org/api/option"

	"cabincast/internal/config"
	"cabincast/internal/segment"
	"cabincast/internal/tts"
)

const googleRESTEndpoint = "https://texttospeech.googleapis.com/v1/text:synthesize"

// Voice ids look like "pt-BR-Neural2-A": a language tag followed by a
// family and variant.
var googleVoiceRe = regexp.MustCompile(`^[a-z]{2,4}-[A-Z]{2}-[A-Za-z0-9]+(-[A-Za-z0-9]+)*$`)

// Google synthesizes through Google Cloud Text-to-Speech. With a service
// account credentials file it talks to the Cloud SDK; with a bare API key it
// uses the public REST endpoint.
type Google struct {
	cfg        config.GoogleConfig
	apiKey     string
	sdk        *texttospeech.Client
	client     *http.Client
	limiter    *rate.Limiter
	sampleRate int
	logger     *log.Logger
}

// NewGoogle builds the engine from configuration and credentials. The SDK
// client is only dialed when a credentials file is configured.
func NewGoogle(ctx context.Context, cfg config.GoogleConfig, eng config.EnginesConfig, creds config.Credentials, sampleRate int, logger *log.Logger) (*Google, error) {
	if logger == nil {
		logger = log.Default()
	}
	g := &Google{
		cfg:        cfg,
		apiKey:     creds.GoogleAPIKey,
		client:     &http.Client{Timeout: time.Duration(eng.TimeoutSeconds) * time.Second},
		limiter:    newLimiter(eng.RequestsPerMinute),
		sampleRate: sampleRate,
		logger:     logger.With("component", "google-tts"),
	}

	if creds.GoogleCredentials != "" {
		sdk, err := texttospeech.NewClient(ctx, option.WithCredentialsFile(creds.GoogleCredentials))
		if err != nil {
			return nil, fmt.Errorf("failed to create google tts client: %w", err)
		}
		g.sdk = sdk
		g.logger.Info("Google TTS using Cloud SDK", "credentials", creds.GoogleCredentials)
	} else if g.apiKey != "" {
		g.logger.Info("Google TTS using REST API key")
	} else {
		g.logger.Warn("Google TTS has no credentials")
	}
	return g, nil
}

func (g *Google) Name() string { return "google" }

func (g *Google) Available() bool { return g.sdk != nil || g.apiKey != "" }

func (g *Google) ValidateVoiceID(id string) bool { return googleVoiceRe.MatchString(id) }

func (g *Google) Limit() tts.SizeLimit {
	return tts.SizeLimit{Max: g.cfg.MaxBytes, Size: segment.Bytes}
}

func (g *Google) SupportsMarkup() bool { return true }

// Close releases the SDK connection, if any.
func (g *Google) Close() error {
	if g.sdk != nil {
		return g.sdk.Close()
	}
	return nil
}

func (g *Google) Synthesize(ctx context.Context, req tts.Request) ([]byte, error) {
	if req.Text == "" {
		return nil, tts.ErrEmptyText
	}
	if !g.Available() {
		return nil, fmt.Errorf("%w: google", tts.ErrNotConfigured)
	}
	if err := g.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	if g.sdk != nil {
		return g.synthesizeSDK(ctx, req)
	}
	return g.synthesizeREST(ctx, req)
}

func (g *Google) synthesizeSDK(ctx context.Context, req tts.Request) ([]byte, error) {
	input := &texttospeechpb.SynthesisInput{}
	if req.Markup {
		input.InputSource = &texttospeechpb.SynthesisInput_Ssml{Ssml: req.Text}
	} else {
		input.InputSource = &texttospeechpb.SynthesisInput_Text{Text: req.Text}
	}

	resp, err := g.sdk.SynthesizeSpeech(ctx, &texttospeechpb.SynthesizeSpeechRequest{
		Input: input,
		Voice: &texttospeechpb.VoiceSelectionParams{
			LanguageCode: req.Language,
			Name:         req.VoiceID,
		},
		AudioConfig: &texttospeechpb.AudioConfig{
			AudioEncoding:   texttospeechpb.AudioEncoding_LINEAR16,
			SampleRateHertz: int32(g.sampleRate),
			SpeakingRate:    g.cfg.SpeakingRate,
		},
	})
	if err != nil {
		return nil, &tts.ProviderError{Engine: "google", Err: err}
	}
	return resp.AudioContent, nil
}

type googleRESTRequest struct {
	Input struct {
		Text string `json:"text,omitempty"`
		SSML string `json:"ssml,omitempty"`
	} `json:"input"`
	Voice struct {
		LanguageCode string `json:"languageCode"`
		Name         string `json:"name"`
	} `json:"voice"`
	AudioConfig struct {
		AudioEncoding   string  `json:"audioEncoding"`
		SampleRateHertz int     `json:"sampleRateHertz"`
		SpeakingRate    float64 `json:"speakingRate"`
	} `json:"audioConfig"`
}

func (g *Google) synthesizeREST(ctx context.Context, req tts.Request) ([]byte, error) {
	var body googleRESTRequest
	if req.Markup {
		body.Input.SSML = req.Text
	} else {
		body.Input.Text = req.Text
	}
	body.Voice.LanguageCode = req.Language
	body.Voice.Name = req.VoiceID
	body.AudioConfig.AudioEncoding = "LINEAR16"
	body.AudioConfig.SampleRateHertz = g.sampleRate
	body.AudioConfig.SpeakingRate = g.cfg.SpeakingRate

	payload, err := json.Marshal(body)
	if err != nil {
		return nil, err
	}

	endpoint := googleRESTEndpoint + "?key=" + url.QueryEscape(g.apiKey)
	data, err := postJSON(ctx, g.client, "google", endpoint, payload, nil)
	if err != nil {
		return nil, err
	}

	var parsed struct {
		AudioContent string `json:"audioContent"`
	}
	if err := json.Unmarshal(data, &parsed); err != nil {
		return nil, &tts.ProviderError{Engine: "google", Err: fmt.Errorf("malformed response: %w", err)}
	}
	audio, err := base64.StdEncoding.DecodeString(parsed.AudioContent)
	if err != nil {
		return nil, &tts.ProviderError{Engine: "google", Err: fmt.Errorf("bad audio encoding: %w", err)}
	}
	return audio, nil
}
