package effects

import (
	"math"
	"math/rand"

	"github.com/gopxl/beep"
	beepfx "github.com/gopxl/beep/effects"

	"cabincast/internal/audio"
)

// gain returns a copy of the clip with a decibel gain change applied.
func gain(clip *audio.Clip, db float64) *audio.Clip {
	s := &beepfx.Gain{
		Streamer: clip.Streamer(),
		Gain:     audio.DBToAmplitude(db) - 1,
	}
	return audio.FromStreamer(s, clip.Format())
}

// mixWeighted sums two equal-length clips with linear weights.
func mixWeighted(a *audio.Clip, wa float64, b *audio.Clip, wb float64) *audio.Clip {
	mixed := beep.Mix(
		&beepfx.Gain{Streamer: a.Streamer(), Gain: wa - 1},
		&beepfx.Gain{Streamer: b.Streamer(), Gain: wb - 1},
	)
	return audio.FromStreamer(mixed, a.Format())
}

// noiseClip produces frames of broadband noise at the given linear
// amplitude. The generator is intentionally unseeded; only its level is
// bounded.
func noiseClip(frames int, amplitude float64, format beep.Format) *audio.Clip {
	generated := 0
	s := beep.StreamerFunc(func(samples [][2]float64) (int, bool) {
		if generated >= frames {
			return 0, false
		}
		n := 0
		for ; n < len(samples) && generated < frames; n++ {
			v := (rand.Float64()*2 - 1) * amplitude
			samples[n][0] = v
			samples[n][1] = v
			generated++
		}
		return n, true
	})
	return audio.FromStreamer(s, format)
}

// lowpassStreamer is a one-pole low-pass filter at the cutoff frequency.
func lowpassStreamer(s beep.Streamer, cutoff int, format beep.Format) beep.Streamer {
	rc := 1.0 / (2 * math.Pi * float64(cutoff))
	dt := 1.0 / float64(format.SampleRate)
	alpha := dt / (rc + dt)

	var prevL, prevR float64
	return beep.StreamerFunc(func(samples [][2]float64) (int, bool) {
		n, ok := s.Stream(samples)
		for i := 0; i < n; i++ {
			prevL += alpha * (samples[i][0] - prevL)
			prevR += alpha * (samples[i][1] - prevR)
			samples[i][0] = prevL
			samples[i][1] = prevR
		}
		return n, ok
	})
}

// highpassStreamer is a one-pole high-pass filter at the cutoff frequency.
func highpassStreamer(s beep.Streamer, cutoff int, format beep.Format) beep.Streamer {
	rc := 1.0 / (2 * math.Pi * float64(cutoff))
	dt := 1.0 / float64(format.SampleRate)
	alpha := rc / (rc + dt)

	var prevInL, prevInR, prevOutL, prevOutR float64
	first := true
	return beep.StreamerFunc(func(samples [][2]float64) (int, bool) {
		n, ok := s.Stream(samples)
		for i := 0; i < n; i++ {
			inL, inR := samples[i][0], samples[i][1]
			if first {
				prevOutL, prevOutR = inL, inR
				first = false
			} else {
				prevOutL = alpha * (prevOutL + inL - prevInL)
				prevOutR = alpha * (prevOutR + inR - prevInR)
			}
			prevInL, prevInR = inL, inR
			samples[i][0] = prevOutL
			samples[i][1] = prevOutR
		}
		return n, ok
	})
}
