// Package audio provides the decoded clip type and the assembly operations
// that join synthesized pieces into a single announcement waveform.
package audio

import (
	"bytes"
	"errors"
	"fmt"
	"math"
	"os"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/wav"
)

// ErrNoAudio is returned when an assembly step receives nothing to join.
var ErrNoAudio = errors.New("no audio clips to assemble")

// resampleQuality balances speed and fidelity for rate conversion.
const resampleQuality = 4

// Clip owns a fully decoded waveform. All clips in one pipeline run share
// the same format; sources at other sample rates are resampled on load.
type Clip struct {
	buf *beep.Buffer
}

// Format returns the sample format used for the given rate and channels.
func Format(sampleRate, channels int) beep.Format {
	return beep.Format{
		SampleRate:  beep.SampleRate(sampleRate),
		NumChannels: channels,
		Precision:   2,
	}
}

// NewClip wraps a buffer as a clip.
func NewClip(buf *beep.Buffer) *Clip {
	return &Clip{buf: buf}
}

// FromStreamer drains a streamer into a clip with the target format.
func FromStreamer(s beep.Streamer, format beep.Format) *Clip {
	buf := beep.NewBuffer(format)
	buf.Append(s)
	return &Clip{buf: buf}
}

// FromWAV decodes wav bytes into a clip, resampling into the target format
// when the source rate differs.
func FromWAV(data []byte, format beep.Format) (*Clip, error) {
	streamer, srcFormat, err := wav.Decode(nopSeekCloser{bytes.NewReader(data)})
	if err != nil {
		return nil, fmt.Errorf("failed to decode wav: %w", err)
	}
	defer streamer.Close()
	return fromDecoded(streamer, srcFormat, format), nil
}

// LoadWAV reads a wav file into a clip with the target format.
func LoadWAV(path string, format beep.Format) (*Clip, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	streamer, srcFormat, err := wav.Decode(f)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to decode %s: %w", path, err)
	}
	defer streamer.Close()
	return fromDecoded(streamer, srcFormat, format), nil
}

func fromDecoded(s beep.Streamer, src, dst beep.Format) *Clip {
	if src.SampleRate != dst.SampleRate {
		s = beep.Resample(resampleQuality, src.SampleRate, dst.SampleRate, s)
	}
	buf := beep.NewBuffer(dst)
	buf.Append(s)
	return &Clip{buf: buf}
}

// SaveWAV writes the clip to a wav file.
func (c *Clip) SaveWAV(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	if err := wav.Encode(f, c.Streamer(), c.buf.Format()); err != nil {
		f.Close()
		os.Remove(path)
		return fmt.Errorf("failed to encode %s: %w", path, err)
	}
	return f.Close()
}

// WAVBytes encodes the clip to wav bytes via a scratch file; wav encoding
// needs a seekable writer to backfill the header.
func (c *Clip) WAVBytes() ([]byte, error) {
	f, err := os.CreateTemp("", "cabincast-clip-*.wav")
	if err != nil {
		return nil, err
	}
	path := f.Name()
	f.Close()
	defer os.Remove(path)

	if err := c.SaveWAV(path); err != nil {
		return nil, err
	}
	return os.ReadFile(path)
}

// Streamer returns a streamer over the whole clip.
func (c *Clip) Streamer() beep.StreamSeeker {
	return c.buf.Streamer(0, c.buf.Len())
}

// Format returns the clip's sample format.
func (c *Clip) Format() beep.Format {
	return c.buf.Format()
}

// Len returns the number of sample frames.
func (c *Clip) Len() int {
	return c.buf.Len()
}

// Duration returns the clip's play time.
func (c *Clip) Duration() time.Duration {
	return c.buf.Format().SampleRate.D(c.buf.Len())
}

// PeakDB returns the highest instantaneous level in dBFS.
func (c *Clip) PeakDB() float64 {
	peak := 0.0
	c.scan(func(l, r float64) {
		if a := math.Abs(l); a > peak {
			peak = a
		}
		if a := math.Abs(r); a > peak {
			peak = a
		}
	})
	return toDB(peak)
}

// RMSDB returns the root-mean-square level in dBFS.
func (c *Clip) RMSDB() float64 {
	var sum float64
	var n int
	c.scan(func(l, r float64) {
		m := (l + r) / 2
		sum += m * m
		n++
	})
	if n == 0 {
		return toDB(0)
	}
	return toDB(math.Sqrt(sum / float64(n)))
}

func (c *Clip) scan(fn func(l, r float64)) {
	st := c.Streamer()
	var chunk [512][2]float64
	for {
		n, ok := st.Stream(chunk[:])
		for i := 0; i < n; i++ {
			fn(chunk[i][0], chunk[i][1])
		}
		if !ok {
			return
		}
	}
}

func toDB(amplitude float64) float64 {
	if amplitude <= 0 {
		return -96
	}
	return 20 * math.Log10(amplitude)
}

// DBToAmplitude converts a decibel change to a linear amplitude factor.
func DBToAmplitude(db float64) float64 {
	return math.Pow(10, db/20)
}

// nopSeekCloser adapts an in-memory reader to the decoder's input.
type nopSeekCloser struct {
	*bytes.Reader
}

func (nopSeekCloser) Close() error { return nil }
