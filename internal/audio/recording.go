// Package audio provides the decoded recording model and WAV file reading.
package audio

import (
	"errors"
	"fmt"
	"time"
)

// MaxChannels is the most channels a recording may carry.
const MaxChannels = 6

// Validation errors returned by Recording.Validate.
var (
	ErrNoChannels            = errors.New("recording has no channels")
	ErrTooManyChannels       = errors.New("recording has more than 6 channels")
	ErrChannelLengthMismatch = errors.New("channels have differing sample counts")
	ErrBadSampleRate         = errors.New("sample rate must be positive")
)

// Recording is a fully decoded multi-channel recording: linear PCM samples
// normalised to roughly [-1.0, 1.0], one slice per channel. It is treated as
// immutable for the duration of an analysis.
type Recording struct {
	Channels   [][]float32
	SampleRate int
}

// Positional channel names for 1-6 channel layouts.
var channelLayouts = [MaxChannels][]string{
	{"Mono"},
	{"Left", "Right"},
	{"Left", "Right", "Centre"},
	{"Front Left", "Front Right", "Rear Left", "Rear Right"},
	{"Front Left", "Front Right", "Centre", "Rear Left", "Rear Right"},
	{"Front Left", "Front Right", "Centre", "LFE", "Rear Left", "Rear Right"},
}

// NumChannels returns the channel count.
func (r *Recording) NumChannels() int {
	return len(r.Channels)
}

// NumSamples returns the per-channel sample count (0 for an empty recording).
func (r *Recording) NumSamples() int {
	if len(r.Channels) == 0 {
		return 0
	}
	return len(r.Channels[0])
}

// Duration returns the recording length as wall-clock time.
func (r *Recording) Duration() time.Duration {
	if r.SampleRate <= 0 {
		return 0
	}
	return time.Duration(float64(r.NumSamples()) / float64(r.SampleRate) * float64(time.Second))
}

// ChannelName returns the positional name for channel index ch, e.g. "Left"
// for channel 0 of a stereo recording.
func (r *Recording) ChannelName(ch int) string {
	n := len(r.Channels)
	if n >= 1 && n <= MaxChannels && ch >= 0 && ch < n {
		return channelLayouts[n-1][ch]
	}
	return fmt.Sprintf("Channel %d", ch+1)
}

// Validate checks the call contract: 1-6 channels of equal length and a
// positive sample rate. Analysis refuses recordings that fail these checks.
func (r *Recording) Validate() error {
	if len(r.Channels) == 0 {
		return ErrNoChannels
	}
	if len(r.Channels) > MaxChannels {
		return fmt.Errorf("%w: got %d", ErrTooManyChannels, len(r.Channels))
	}
	want := len(r.Channels[0])
	for ch, samples := range r.Channels[1:] {
		if len(samples) != want {
			return fmt.Errorf("%w: channel 1 has %d, channel %d has %d",
				ErrChannelLengthMismatch, want, ch+2, len(samples))
		}
	}
	if r.SampleRate <= 0 {
		return fmt.Errorf("%w: got %d", ErrBadSampleRate, r.SampleRate)
	}
	return nil
}
