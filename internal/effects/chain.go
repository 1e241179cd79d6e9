// Package effects renders the aviation-radio character of a finished
// announcement: band-limiting, heavy compression, saturation, transmission
// noise and loudness normalization, applied once to the assembled waveform.
package effects

import (
	"errors"
	"fmt"

	"github.com/charmbracelet/log"

	"cabincast/internal/audio"
	"cabincast/internal/config"
)

// softCeilingDB is the level saturation boosts into before blending.
const softCeilingDB = -3.0

// safetyLimitDB is the final hard ceiling just under full scale.
const safetyLimitDB = -1.0

// gainClampDB bounds the loudness correction in either direction.
const gainClampDB = 12.0

// silenceFloorDB below which loudness normalization is skipped entirely.
const silenceFloorDB = -60.0

var errEmptyClip = errors.New("empty clip")

// stage is one transform in the fixed chain.
type stage struct {
	name    string
	enabled bool
	apply   func(*audio.Clip) (*audio.Clip, error)
}

// Chain applies the radio effect stages in a fixed order. Stage order is
// not configurable; participation and numeric parameters are.
type Chain struct {
	cfg    config.EffectsConfig
	logger *log.Logger
}

// NewChain builds a chain from configuration.
func NewChain(cfg config.EffectsConfig, logger *log.Logger) *Chain {
	if logger == nil {
		logger = log.Default()
	}
	return &Chain{cfg: cfg, logger: logger.With("component", "effects")}
}

// Apply runs every enabled stage over the clip and returns the processed
// clip together with the names of the stages that ran. A failing stage is
// skipped with a warning; the chain never aborts the render.
func (c *Chain) Apply(clip *audio.Clip) (*audio.Clip, []string) {
	if !c.cfg.Enabled {
		c.logger.Info("Radio effects disabled, using clean audio")
		return clip, nil
	}

	stages := []stage{
		{"highpass", c.cfg.Highpass.Enabled, c.highpass},
		{"lowpass", c.cfg.Lowpass.Enabled, c.lowpass},
		{"compression", c.cfg.Compression.Enabled && c.cfg.Compression.Ratio > 1.0, c.compress},
		{"saturation", c.cfg.Saturation.Enabled && c.cfg.Saturation.Amount > 0, c.saturate},
		{"noise_gate", c.cfg.NoiseGate.Enabled, c.noiseGate},
		{"noise", c.cfg.Noise.Enabled && c.cfg.Noise.Amplitude > 0, c.transmissionNoise},
		{"loudnorm", c.cfg.Loudnorm.Enabled, c.loudnorm},
	}

	var applied []string
	for _, s := range stages {
		if !s.enabled {
			continue
		}
		out, err := s.apply(clip)
		if err != nil {
			c.logger.Warn("Effect stage failed, skipping", "stage", s.name, "error", err)
			continue
		}
		clip = out
		applied = append(applied, s.name)
		c.logger.Debug("Applied effect stage", "stage", s.name, "peak_db", fmt.Sprintf("%.1f", clip.PeakDB()))
	}
	return clip, applied
}

// highpass removes low-frequency content with two cascaded filter passes.
func (c *Chain) highpass(clip *audio.Clip) (*audio.Clip, error) {
	if clip.Len() == 0 {
		return nil, errEmptyClip
	}
	passes := filterPasses(c.cfg.Highpass.SlopeA) + filterPasses(c.cfg.Highpass.SlopeB)
	out := clip
	for i := 0; i < passes; i++ {
		out = audio.FromStreamer(highpassStreamer(out.Streamer(), c.cfg.Highpass.Freq, out.Format()), out.Format())
	}
	return out, nil
}

// lowpass removes high-frequency content.
func (c *Chain) lowpass(clip *audio.Clip) (*audio.Clip, error) {
	if clip.Len() == 0 {
		return nil, errEmptyClip
	}
	out := clip
	for i := 0; i < filterPasses(c.cfg.Lowpass.Slope); i++ {
		out = audio.FromStreamer(lowpassStreamer(out.Streamer(), c.cfg.Lowpass.Freq, out.Format()), out.Format())
	}
	return out, nil
}

// compress reduces gain by overage x (1 - 1/ratio) when the peak exceeds
// the threshold, flattening the dynamic range.
func (c *Chain) compress(clip *audio.Clip) (*audio.Clip, error) {
	if clip.Len() == 0 {
		return nil, errEmptyClip
	}
	peak := clip.PeakDB()
	if peak <= c.cfg.Compression.ThresholdDB {
		return clip, nil
	}
	overage := peak - c.cfg.Compression.ThresholdDB
	reduction := overage * (1 - 1/c.cfg.Compression.Ratio)
	c.logger.Debug("Compression gain reduction", "db", fmt.Sprintf("%.1f", reduction))
	return gain(clip, -reduction), nil
}

// saturate boosts a copy of the signal into a soft ceiling and blends it
// back with the original to emulate harmonic distortion.
func (c *Chain) saturate(clip *audio.Clip) (*audio.Clip, error) {
	if clip.Len() == 0 {
		return nil, errEmptyClip
	}
	amount := c.cfg.Saturation.Amount

	boosted := gain(clip, amount*12)
	if over := boosted.PeakDB() - softCeilingDB; over > 0 {
		boosted = gain(boosted, -over)
	}
	return mixWeighted(clip, 1-amount, boosted, amount), nil
}

// noiseGate pulls the level down when the whole clip sits below the gate
// threshold. Disabled by default; it can swallow quiet speech.
func (c *Chain) noiseGate(clip *audio.Clip) (*audio.Clip, error) {
	if clip.Len() == 0 {
		return nil, errEmptyClip
	}
	rms := clip.RMSDB()
	if rms >= c.cfg.NoiseGate.ThresholdDB {
		return clip, nil
	}
	reduction := c.cfg.NoiseGate.ThresholdDB - rms
	if reduction > -12 {
		reduction = -12
	}
	return gain(clip, reduction), nil
}

// transmissionNoise mixes broadband noise under the voice signal at the
// configured amplitude and mix ratio.
func (c *Chain) transmissionNoise(clip *audio.Clip) (*audio.Clip, error) {
	if clip.Len() == 0 {
		return nil, errEmptyClip
	}
	level := c.cfg.Noise.Amplitude * c.cfg.Noise.MixRatio
	noise := noiseClip(clip.Len(), level, clip.Format())
	return mixWeighted(clip, 1, noise, 1), nil
}

// loudnorm peak-limits to the target ceiling, applies a clamped gain
// correction toward the target loudness, then hard-limits just under full
// scale. The loudness target approximates LUFS with a fixed dBFS offset.
func (c *Chain) loudnorm(clip *audio.Clip) (*audio.Clip, error) {
	if clip.Len() == 0 {
		return nil, errEmptyClip
	}

	if over := clip.PeakDB() - c.cfg.Loudnorm.PeakDB; over > 0 {
		clip = gain(clip, -over)
	}

	targetDB := c.cfg.Loudnorm.TargetLUFS + 14
	rms := clip.RMSDB()
	if rms > silenceFloorDB {
		correction := targetDB - rms
		if correction > gainClampDB {
			correction = gainClampDB
		}
		if correction < -gainClampDB {
			correction = -gainClampDB
		}
		clip = gain(clip, correction)
	}

	if over := clip.PeakDB() - safetyLimitDB; over > 0 {
		clip = gain(clip, -over)
	}
	return clip, nil
}

// filterPasses converts a dB/octave slope to cascaded one-pole passes.
func filterPasses(slope int) int {
	if slope <= 0 {
		return 0
	}
	passes := slope / 6
	if passes < 1 {
		passes = 1
	}
	return passes
}
