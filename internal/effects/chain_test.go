package effects

import (
	"math"
	"testing"
	"time"

	"github.com/gopxl/beep"

	"cabincast/internal/audio"
	"cabincast/internal/config"
)

func testFormat() beep.Format {
	return audio.Format(24000, 1)
}

// sine builds a test clip with a sine wave at the given frequency and peak.
func sine(d time.Duration, freq float64, peak float64, format beep.Format) *audio.Clip {
	n := format.SampleRate.N(d)
	i := 0
	s := beep.StreamerFunc(func(samples [][2]float64) (int, bool) {
		if i >= n {
			return 0, false
		}
		filled := 0
		for ; filled < len(samples) && i < n; filled++ {
			v := peak * math.Sin(2*math.Pi*freq*float64(i)/float64(format.SampleRate))
			samples[filled][0] = v
			samples[filled][1] = v
			i++
		}
		return filled, true
	})
	return audio.FromStreamer(s, format)
}

func TestLoudnorm_PeakNeverExceedsCeiling(t *testing.T) {
	cfg := config.Default().Effects
	chain := NewChain(cfg, nil)

	// A very hot clip whose peak is well above the -2 dBFS ceiling.
	clip := sine(300*time.Millisecond, 440, 0.99, testFormat())

	out, err := chain.loudnorm(clip)
	if err != nil {
		t.Fatalf("loudnorm failed: %v", err)
	}

	if peak := out.PeakDB(); peak > safetyLimitDB+0.1 {
		t.Fatalf("peak %.2f dBFS exceeds safety limit %.1f", peak, safetyLimitDB)
	}
}

func TestLoudnorm_QuietClipBoostedWithinClamp(t *testing.T) {
	cfg := config.Default().Effects
	chain := NewChain(cfg, nil)

	quiet := sine(300*time.Millisecond, 440, 0.01, testFormat())
	before := quiet.RMSDB()

	out, err := chain.loudnorm(quiet)
	if err != nil {
		t.Fatalf("loudnorm failed: %v", err)
	}

	boost := out.RMSDB() - before
	if boost <= 0 {
		t.Fatalf("quiet clip was not boosted (%.2f dB)", boost)
	}
	if boost > gainClampDB+0.5 {
		t.Fatalf("boost %.2f dB exceeds %.0f dB clamp", boost, gainClampDB)
	}
}

func TestCompression_ReducesPeakAboveThreshold(t *testing.T) {
	cfg := config.Default().Effects
	chain := NewChain(cfg, nil)

	clip := sine(200*time.Millisecond, 440, 0.9, testFormat())
	peakBefore := clip.PeakDB()
	if peakBefore <= cfg.Compression.ThresholdDB {
		t.Fatalf("test clip must exceed threshold, peak %.2f", peakBefore)
	}

	out, err := chain.compress(clip)
	if err != nil {
		t.Fatalf("compress failed: %v", err)
	}

	overage := peakBefore - cfg.Compression.ThresholdDB
	wantReduction := overage * (1 - 1/cfg.Compression.Ratio)
	got := peakBefore - out.PeakDB()
	if math.Abs(got-wantReduction) > 0.2 {
		t.Fatalf("gain reduction: got %.2f dB, want %.2f dB", got, wantReduction)
	}
}

func TestCompression_LeavesQuietClipAlone(t *testing.T) {
	cfg := config.Default().Effects
	chain := NewChain(cfg, nil)

	clip := sine(200*time.Millisecond, 440, 0.05, testFormat())
	out, err := chain.compress(clip)
	if err != nil {
		t.Fatalf("compress failed: %v", err)
	}
	if math.Abs(out.PeakDB()-clip.PeakDB()) > 0.1 {
		t.Fatal("clip below threshold must pass unchanged")
	}
}

func TestHighpass_AttenuatesBass(t *testing.T) {
	cfg := config.Default().Effects
	chain := NewChain(cfg, nil)

	// 50 Hz sits far below the 800 Hz cutoff and must lose most energy.
	bass := sine(500*time.Millisecond, 50, 0.8, testFormat())
	out, err := chain.highpass(bass)
	if err != nil {
		t.Fatalf("highpass failed: %v", err)
	}
	if drop := bass.RMSDB() - out.RMSDB(); drop < 6 {
		t.Fatalf("bass attenuated by only %.2f dB", drop)
	}
}

func TestLowpass_AttenuatesTreble(t *testing.T) {
	cfg := config.Default().Effects
	chain := NewChain(cfg, nil)

	treble := sine(500*time.Millisecond, 10000, 0.8, testFormat())
	out, err := chain.lowpass(treble)
	if err != nil {
		t.Fatalf("lowpass failed: %v", err)
	}
	if drop := treble.RMSDB() - out.RMSDB(); drop < 6 {
		t.Fatalf("treble attenuated by only %.2f dB", drop)
	}
}

func TestTransmissionNoise_BoundedLevel(t *testing.T) {
	cfg := config.Default().Effects
	chain := NewChain(cfg, nil)

	quiet := audio.Silence(300*time.Millisecond, testFormat())
	out, err := chain.transmissionNoise(quiet)
	if err != nil {
		t.Fatalf("noise failed: %v", err)
	}

	// Noise over silence must sit at amplitude x mix ratio, i.e. very low.
	ceiling := 20 * math.Log10(cfg.Noise.Amplitude*cfg.Noise.MixRatio*1.05)
	if peak := out.PeakDB(); peak > ceiling {
		t.Fatalf("noise peak %.2f dB above bound %.2f dB", peak, ceiling)
	}
	if out.Len() != quiet.Len() {
		t.Fatalf("noise changed clip length: %d != %d", out.Len(), quiet.Len())
	}
}

func TestChain_AppliesStagesInOrder(t *testing.T) {
	cfg := config.Default().Effects
	chain := NewChain(cfg, nil)

	clip := sine(300*time.Millisecond, 440, 0.8, testFormat())
	out, applied := chain.Apply(clip)

	want := []string{"highpass", "lowpass", "compression", "saturation", "noise", "loudnorm"}
	if len(applied) != len(want) {
		t.Fatalf("applied stages %v, want %v", applied, want)
	}
	for i := range want {
		if applied[i] != want[i] {
			t.Fatalf("stage order %v, want %v", applied, want)
		}
	}

	if peak := out.PeakDB(); peak > safetyLimitDB+0.1 {
		t.Fatalf("final peak %.2f dBFS above safety limit", peak)
	}
}

func TestChain_Disabled(t *testing.T) {
	cfg := config.Default().Effects
	cfg.Enabled = false
	chain := NewChain(cfg, nil)

	clip := sine(100*time.Millisecond, 440, 0.5, testFormat())
	out, applied := chain.Apply(clip)

	if len(applied) != 0 {
		t.Fatalf("disabled chain applied stages: %v", applied)
	}
	if out != clip {
		t.Fatal("disabled chain must return the input clip")
	}
}
