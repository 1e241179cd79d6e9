package tts

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gopxl/beep"

	"cabincast/internal/audio"
	"cabincast/internal/config"
	"cabincast/internal/segment"
)

// Job is one synthesis request as the pipeline sees it: a text in a language,
// spoken by a specific voice of a specific engine.
type Job struct {
	Engine   string
	Text     string
	Language string
	VoiceID  string
	Context  string
	Gender   string
}

// Synthesis is a successful orchestration outcome.
type Synthesis struct {
	Clip *audio.Clip

	// Engine that produced the audio; differs from the job's engine when the
	// last-resort fallback engaged.
	Engine string

	// Attempts consumed, fallback included.
	Attempts int
}

// Orchestrator walks an engine's ordered strategy list until one attempt
// produces audio, then optionally hands the job to a last-resort engine.
// Each attempt re-segments the text against the engine's own size limit and
// makes exactly one provider call per segment.
type Orchestrator struct {
	engines  map[string]Engine
	cfg      config.EnginesConfig
	fallback config.FallbackConfig
	format   beep.Format
	gap      time.Duration
	logger   *log.Logger

	// sleep is swapped out by tests.
	sleep func(context.Context, time.Duration) error
}

// NewOrchestrator wires the available engines together.
func NewOrchestrator(engines []Engine, cfg config.EnginesConfig, fallback config.FallbackConfig, audioCfg config.AudioConfig, logger *log.Logger) *Orchestrator {
	if logger == nil {
		logger = log.Default()
	}
	byName := make(map[string]Engine, len(engines))
	for _, e := range engines {
		byName[e.Name()] = e
	}
	return &Orchestrator{
		engines:  byName,
		cfg:      cfg,
		fallback: fallback,
		format:   audio.Format(audioCfg.SampleRate, audioCfg.Channels),
		gap:      time.Duration(audioCfg.SegmentGapMs) * time.Millisecond,
		logger:   logger.With("component", "orchestrator"),
		sleep:    sleepCtx,
	}
}

// Synthesize runs the job through its engine's strategy list. Attempts are
// separated by the configured retry delay; when every strategy fails and the
// fallback engine is enabled, one plain attempt runs there before giving up.
func (o *Orchestrator) Synthesize(ctx context.Context, job Job) (*Synthesis, error) {
	if job.Text == "" {
		return nil, ErrEmptyText
	}

	eng, ok := o.engines[job.Engine]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownEngine, job.Engine)
	}
	if !eng.ValidateVoiceID(job.VoiceID) {
		return nil, fmt.Errorf("%w: %q for engine %s", ErrInvalidVoice, job.VoiceID, job.Engine)
	}

	strategies := o.strategiesFor(job.Engine)
	attempts := 0
	var lastErr error

	if !eng.Available() {
		lastErr = fmt.Errorf("%w: %s", ErrNotConfigured, job.Engine)
		o.logger.Warn("Engine has no credentials, skipping to fallback", "engine", job.Engine)
	} else {
		for i, strat := range strategies {
			if i > 0 {
				if err := o.sleep(ctx, time.Duration(o.cfg.RetryDelayMs)*time.Millisecond); err != nil {
					return nil, err
				}
			}
			attempts++
			o.logger.Info("Synthesis attempt",
				"engine", job.Engine, "attempt", attempts, "of", len(strategies),
				"markup", strat.Markup, "force_language", strat.ForceLanguage)

			clip, err := o.attempt(ctx, eng, strat, job)
			if err == nil {
				return &Synthesis{Clip: clip, Engine: job.Engine, Attempts: attempts}, nil
			}
			lastErr = err
			o.logger.Warn("Synthesis attempt failed", "engine", job.Engine, "attempt", attempts, "error", err)
		}
	}

	if clip, engine, ok := o.tryFallback(ctx, job, &attempts); ok {
		return &Synthesis{Clip: clip, Engine: engine, Attempts: attempts}, nil
	}

	return nil, fmt.Errorf("%w for %s voice %s: %v", ErrExhausted, job.Engine, job.VoiceID, lastErr)
}

// attempt performs one full strategy pass: segment, synthesize each piece,
// join with the segment gap. Any failing segment fails the whole attempt.
func (o *Orchestrator) attempt(ctx context.Context, eng Engine, strat config.Strategy, job Job) (*audio.Clip, error) {
	prepared := PrepareSpokenText(job.Text)
	lang := EffectiveLanguage(job.Language, job.VoiceID, strat.ForceLanguage)
	markup := strat.Markup && eng.SupportsMarkup()

	limit := eng.Limit()
	pieces := segment.Split(prepared, limit.Max, limit.Size)
	if len(pieces) > 1 {
		o.logger.Debug("Text split for engine limit", "engine", eng.Name(), "segments", len(pieces), "limit", limit.Max)
	}

	clips := make([]*audio.Clip, 0, len(pieces))
	for _, piece := range pieces {
		text := piece
		if markup {
			text = WrapSSML(piece, o.speakingRate(eng.Name()))
		}
		data, err := eng.Synthesize(ctx, Request{
			Text:     text,
			Language: lang,
			VoiceID:  job.VoiceID,
			Markup:   markup,
			Context:  job.Context,
			Gender:   job.Gender,
		})
		if err != nil {
			return nil, err
		}
		clip, err := audio.FromWAV(data, o.format)
		if err != nil {
			return nil, &ProviderError{Engine: eng.Name(), Err: err}
		}
		clips = append(clips, clip)
	}
	return audio.ConcatSequence(clips, o.gap)
}

// tryFallback runs one plain attempt on the configured last-resort engine.
func (o *Orchestrator) tryFallback(ctx context.Context, job Job, attempts *int) (*audio.Clip, string, bool) {
	if !o.fallback.Enabled || o.fallback.Engine == job.Engine {
		return nil, "", false
	}
	eng, ok := o.engines[o.fallback.Engine]
	if !ok || !eng.Available() {
		return nil, "", false
	}

	*attempts++
	o.logger.Info("Engaging fallback engine", "engine", o.fallback.Engine, "voice", o.fallback.Voice)

	fbJob := job
	fbJob.VoiceID = o.fallback.Voice
	clip, err := o.attempt(ctx, eng, config.Strategy{}, fbJob)
	if err != nil {
		o.logger.Warn("Fallback engine failed", "engine", o.fallback.Engine, "error", err)
		return nil, "", false
	}
	return clip, o.fallback.Engine, true
}

func (o *Orchestrator) strategiesFor(engine string) []config.Strategy {
	var s []config.Strategy
	switch engine {
	case "google":
		s = o.cfg.Google.Strategies
	case "elevenlabs":
		s = o.cfg.ElevenLabs.Strategies
	case "openai":
		s = o.cfg.OpenAI.Strategies
	}
	if len(s) == 0 {
		s = []config.Strategy{{}}
	}
	return s
}

func (o *Orchestrator) speakingRate(engine string) float64 {
	if engine == "google" && o.cfg.Google.SpeakingRate > 0 {
		return o.cfg.Google.SpeakingRate
	}
	return 1.0
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
