package announce

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/gopxl/beep"

	"cabincast/internal/audio"
	"cabincast/internal/cache"
	"cabincast/internal/config"
	"cabincast/internal/effects"
	"cabincast/internal/tts"
)

var blankLineRe = regexp.MustCompile(`\n[ \t]*\n`)

// Pipeline orchestrates a full announcement render.
type Pipeline struct {
	cfg      *config.Config
	profiles config.AirlineProfiles
	orch     *tts.Orchestrator
	cache    *cache.StaticCache
	chain    *effects.Chain
	logger   *log.Logger
}

// NewPipeline wires the pipeline components together.
func NewPipeline(cfg *config.Config, profiles config.AirlineProfiles, orch *tts.Orchestrator, store *cache.StaticCache, chain *effects.Chain, logger *log.Logger) *Pipeline {
	if logger == nil {
		logger = log.Default()
	}
	return &Pipeline{
		cfg:      cfg,
		profiles: profiles,
		orch:     orch,
		cache:    store,
		chain:    chain,
		logger:   logger.With("component", "pipeline"),
	}
}

// voiceJob is one planned voice type, resolved against the airline profile.
type voiceJob struct {
	voiceType string
	engine    string
	voiceID   string
	gender    string
	language  string
	text      string
}

// Generate renders one announcement. Voice-type failures are isolated: the
// run only fails when no voice type produced audio. All intermediate
// artifacts live in a run-scoped temp directory removed on every exit path.
func (p *Pipeline) Generate(ctx context.Context, req Request) (Result, error) {
	profile, err := p.profiles.Profile(req.ICAO)
	if err != nil {
		return Result{}, err
	}
	if len(req.Texts) == 0 {
		return Result{}, fmt.Errorf("no announcement texts provided")
	}

	tempDir := filepath.Join(p.cfg.Output.Directory, ".temp", uuid.NewString())
	if err := os.MkdirAll(tempDir, 0o755); err != nil {
		return Result{}, fmt.Errorf("failed to create temp directory: %w", err)
	}
	defer func() {
		if err := os.RemoveAll(tempDir); err != nil {
			p.logger.Warn("Failed to remove temp directory", "path", tempDir, "error", err)
		}
	}()

	jobs := p.plan(profile, req)
	if len(jobs) == 0 {
		return Result{}, fmt.Errorf("airline %s has no usable voice types for this request", req.ICAO)
	}

	format := audio.Format(p.cfg.Audio.SampleRate, p.cfg.Audio.Channels)
	partGap := time.Duration(p.cfg.Audio.PartGapMs) * time.Millisecond
	voiceGap := time.Duration(p.cfg.Audio.VoiceGapMs) * time.Millisecond

	var clips []*audio.Clip
	var succeeded []string
	for _, job := range jobs {
		clip, err := p.renderVoice(ctx, job, req.Context, format, partGap, tempDir)
		if err != nil {
			p.logger.Error("Voice type failed, continuing without it",
				"voice_type", job.voiceType, "engine", job.engine, "error", err)
			continue
		}
		clips = append(clips, clip)
		succeeded = append(succeeded, job.voiceType)
	}
	if len(clips) == 0 {
		return Result{}, fmt.Errorf("no voice type produced audio for %s", req.ICAO)
	}

	assembled, err := audio.ConcatSequence(clips, voiceGap)
	if err != nil {
		return Result{}, err
	}

	final, applied := p.chain.Apply(assembled)

	if err := os.MkdirAll(p.cfg.Output.Directory, 0o755); err != nil {
		return Result{}, fmt.Errorf("failed to create output directory: %w", err)
	}
	outPath := filepath.Join(p.cfg.Output.Directory, p.cfg.Output.Filename)
	if err := final.SaveWAV(outPath); err != nil {
		return Result{}, err
	}

	result := Result{
		Success:        true,
		FinalPath:      outPath,
		VoiceTypes:     succeeded,
		EffectsApplied: applied,
		Duration:       final.Duration(),
		PeakDB:         final.PeakDB(),
	}
	p.logger.Info("Announcement rendered",
		"path", outPath,
		"voices", strings.Join(succeeded, ","),
		"duration", result.Duration.Round(time.Millisecond),
		"peak_db", fmt.Sprintf("%.1f", result.PeakDB))
	return result, nil
}

// renderVoice produces one voice type's clip: dynamic part through the
// orchestrator, static part through the cache, joined with the part gap.
func (p *Pipeline) renderVoice(ctx context.Context, job voiceJob, announceContext string, format beep.Format, partGap time.Duration, tempDir string) (*audio.Clip, error) {
	dynamic, static := splitParts(job.text)

	baseJob := tts.Job{
		Engine:   job.engine,
		Language: job.language,
		VoiceID:  job.voiceID,
		Context:  announceContext,
		Gender:   job.gender,
	}

	var dynamicClip *audio.Clip
	if dynamic != "" {
		dynJob := baseJob
		dynJob.Text = dynamic
		syn, err := p.orch.Synthesize(ctx, dynJob)
		if err != nil {
			return nil, fmt.Errorf("dynamic part: %w", err)
		}
		dynamicClip = syn.Clip
	}

	var staticClip *audio.Clip
	if static != "" {
		clip, err := p.staticPart(ctx, baseJob, static, format)
		if err != nil {
			return nil, fmt.Errorf("static part: %w", err)
		}
		staticClip = clip
	}

	var clip *audio.Clip
	switch {
	case dynamicClip != nil && staticClip != nil:
		clip = audio.ConcatWithGap(dynamicClip, staticClip, partGap)
	case dynamicClip != nil:
		clip = dynamicClip
	case staticClip != nil:
		clip = staticClip
	default:
		return nil, fmt.Errorf("voice type %s resolved to empty text", job.voiceType)
	}

	// Intermediates are kept in the run temp directory for debugging until
	// the deferred cleanup removes them.
	interPath := filepath.Join(tempDir, fmt.Sprintf("%s_%s.wav", job.voiceType, uuid.NewString()[:8]))
	if err := clip.SaveWAV(interPath); err != nil {
		p.logger.Warn("Failed to write intermediate clip", "path", interPath, "error", err)
	}
	return clip, nil
}

// staticPart returns the static clip from cache or synthesizes and stores it.
func (p *Pipeline) staticPart(ctx context.Context, baseJob tts.Job, text string, format beep.Format) (*audio.Clip, error) {
	key := cache.Key{
		Engine:   baseJob.Engine,
		Language: baseJob.Language,
		VoiceID:  baseJob.VoiceID,
		Context:  baseJob.Context,
	}
	if data, ok := p.cache.Get(key); ok {
		clip, err := audio.FromWAV(data, format)
		if err == nil {
			return clip, nil
		}
		p.logger.Warn("Cached static audio is corrupt, resynthesizing", "error", err)
	}

	job := baseJob
	job.Text = text
	syn, err := p.orch.Synthesize(ctx, job)
	if err != nil {
		return nil, err
	}

	// Store under the engine that actually produced the audio.
	key.Engine = syn.Engine
	if data, err := syn.Clip.WAVBytes(); err == nil {
		p.cache.Put(key, data)
	} else {
		p.logger.Warn("Failed to encode static clip for caching", "error", err)
	}
	return syn.Clip, nil
}

// plan resolves the airline profile into concrete voice jobs, in priority
// order. Misconfigured voice types are warned about and skipped.
func (p *Pipeline) plan(profile config.AirlineProfile, req Request) []voiceJob {
	var jobs []voiceJob
	for _, voiceType := range profile.PriorityOrder {
		vc, ok := profile.Voices[voiceType]
		if !ok {
			p.logger.Warn("Voice type missing from profile, skipping", "voice_type", voiceType)
			continue
		}
		voiceID := vc.VoiceID(vc.Engine)
		if voiceID == "" {
			p.logger.Warn("Voice type has no voice id for its engine, skipping",
				"voice_type", voiceType, "engine", vc.Engine)
			continue
		}
		language, text := resolveText(voiceType, profile, req)
		if text == "" {
			p.logger.Warn("No text available for voice type, skipping",
				"voice_type", voiceType, "language", language)
			continue
		}
		jobs = append(jobs, voiceJob{
			voiceType: voiceType,
			engine:    vc.Engine,
			voiceID:   voiceID,
			gender:    vc.Gender,
			language:  language,
			text:      text,
		})
	}
	return jobs
}

// resolveText picks the text and language a voice type speaks: english reads
// the English text, native the airline's language, destination the
// destination language when a text exists for it. Anything else takes
// English first, then the first available text.
func resolveText(voiceType string, profile config.AirlineProfile, req Request) (string, string) {
	switch voiceType {
	case "english":
		return "en", req.Texts["en"]
	case "native":
		return profile.Language, req.Texts[profile.Language]
	case "destination":
		if req.DestinationLanguage != "" {
			if text, ok := req.Texts[req.DestinationLanguage]; ok {
				return req.DestinationLanguage, text
			}
		}
		return "en", req.Texts["en"]
	}

	if text, ok := req.Texts["en"]; ok {
		return "en", text
	}
	langs := make([]string, 0, len(req.Texts))
	for lang := range req.Texts {
		langs = append(langs, lang)
	}
	sort.Strings(langs)
	if len(langs) > 0 {
		return langs[0], req.Texts[langs[0]]
	}
	return "", ""
}

// splitParts divides text into the dynamic part and the static part on the
// first blank line. Text without a blank line is entirely dynamic.
func splitParts(text string) (dynamic, static string) {
	loc := blankLineRe.FindStringIndex(text)
	if loc == nil {
		return strings.TrimSpace(text), ""
	}
	return strings.TrimSpace(text[:loc[0]]), strings.TrimSpace(text[loc[1]:])
}
