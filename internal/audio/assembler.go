package audio

import (
	"time"

	"github.com/gopxl/beep"
)

// ConcatWithGap joins two clips with exactly gap of silence between them.
// The result's length is len(a) + gap frames + len(b); nothing is trimmed
// or faded. Both clips must share the run's format. A nil b returns a copy
// of a unchanged (a voice type may legitimately have no static tail).
func ConcatWithGap(a, b *Clip, gap time.Duration) *Clip {
	format := a.Format()
	buf := beep.NewBuffer(format)
	buf.Append(a.Streamer())
	if b == nil {
		return &Clip{buf: buf}
	}
	if gap > 0 {
		buf.Append(beep.Silence(format.SampleRate.N(gap)))
	}
	buf.Append(b.Streamer())
	return &Clip{buf: buf}
}

// ConcatSequence folds ConcatWithGap left-to-right over an ordered clip
// list. Order is the spoken order and is preserved exactly.
func ConcatSequence(clips []*Clip, gap time.Duration) (*Clip, error) {
	if len(clips) == 0 {
		return nil, ErrNoAudio
	}
	format := clips[0].Format()
	buf := beep.NewBuffer(format)
	for i, c := range clips {
		if i > 0 && gap > 0 {
			buf.Append(beep.Silence(format.SampleRate.N(gap)))
		}
		buf.Append(c.Streamer())
	}
	return &Clip{buf: buf}, nil
}

// Silence returns a clip of the given duration in the given format.
func Silence(d time.Duration, format beep.Format) *Clip {
	buf := beep.NewBuffer(format)
	buf.Append(beep.Silence(format.SampleRate.N(d)))
	return &Clip{buf: buf}
}
