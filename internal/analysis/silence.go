package analysis

import (
	"math"
	"sort"
	"time"

	"github.com/linuxmatters/soundcheck/internal/audio"
)

// Silence segmenter constants.
const (
	// The sound/silence threshold sits this fraction of the way up from
	// the noise floor to the peak (in dB).
	silenceThresholdFraction = 0.25

	// Absolute fallback threshold for recordings whose noise floor is
	// -Inf (fully digitally silent channels).
	silenceFallbackDb = -60.0

	// Sound runs shorter than this many windows (150 ms) are ticks or
	// clicks, reabsorbed into the surrounding silence.
	minSoundWindows = 3

	// Cancellation poll interval in windows.
	silenceCancelInterval = 1000
)

// SilenceSegment is a contiguous stretch of silence. Tag is "leading" or
// "trailing" for edge silence and empty for internal segments.
type SilenceSegment struct {
	Start    time.Duration
	End      time.Duration
	Duration time.Duration
	Tag      string
}

// SilenceResult describes the silence structure of a recording.
type SilenceResult struct {
	Leading     time.Duration
	Trailing    time.Duration
	Longest     time.Duration
	Segments    []SilenceSegment // sorted by duration, descending
	ThresholdDb float64
	SoundStart  time.Duration // first sound window
	SoundEnd    time.Duration // end of last sound window
}

// analyzeSilence classifies windows as sound or silence against a threshold
// derived from the noise floor and peak, filters out sub-150 ms sound
// islands, and reports leading, trailing, and internal silence.
//
// Given identical window records the output is always identical - the
// passes are pure functions of the marks.
func analyzeSilence(rec *audio.Recording, scan *windowScan, floorDb, peakDb float64, token *Token, progress func(float64)) (*SilenceResult, error) {
	thresholdDb := silenceFallbackDb
	if !math.IsInf(floorDb, -1) && !math.IsInf(peakDb, -1) {
		thresholdDb = floorDb + silenceThresholdFraction*(peakDb-floorDb)
	}
	threshold := linearFromDb(thresholdDb)

	result := &SilenceResult{ThresholdDb: thresholdDb}
	total := rec.Duration()

	// Pass 1: mark sound windows by peak against the linear threshold.
	marks := make([]bool, len(scan.Windows))
	for w, record := range scan.Windows {
		if w%silenceCancelInterval == 0 {
			if err := checkCancel(token, "silence"); err != nil {
				return nil, err
			}
			if progress != nil && len(scan.Windows) > 0 {
				progress(0.5 * float64(w) / float64(len(scan.Windows)))
			}
		}
		marks[w] = record.Peak > threshold
	}

	// Pass 2: revert short sound islands back to silence.
	filterSoundIslands(marks)

	if err := checkCancel(token, "silence"); err != nil {
		return nil, err
	}
	if progress != nil {
		progress(0.75)
	}

	firstSound, lastSound := -1, -1
	for w, sound := range marks {
		if sound {
			if firstSound == -1 {
				firstSound = w
			}
			lastSound = w
		}
	}

	if firstSound == -1 {
		// No sound at all: the whole recording is one silence.
		result.Leading = total
		result.Longest = total
		return result, nil
	}

	rate := rec.SampleRate
	result.SoundStart = sampleTime(scan.Windows[firstSound].Start, rate)
	result.SoundEnd = sampleTime(scan.Windows[lastSound].End, rate)
	result.Leading = result.SoundStart
	result.Trailing = total - result.SoundEnd

	// Pass 3: internal silence segments between the first and last sound
	// windows, tracking the longest streak.
	longestInternal := time.Duration(0)
	runStart := -1
	for w := firstSound; w <= lastSound; w++ {
		if !marks[w] {
			if runStart == -1 {
				runStart = w
			}
			continue
		}
		if runStart != -1 {
			seg := windowSpanSegment(scan, runStart, w-1, rate)
			result.Segments = append(result.Segments, seg)
			if seg.Duration > longestInternal {
				longestInternal = seg.Duration
			}
			runStart = -1
		}
	}

	result.Longest = maxDuration(longestInternal, maxDuration(result.Leading, result.Trailing))

	if result.Leading > 0 {
		result.Segments = append(result.Segments, SilenceSegment{
			Start: 0, End: result.SoundStart, Duration: result.Leading, Tag: "leading",
		})
	}
	if result.Trailing > 0 {
		result.Segments = append(result.Segments, SilenceSegment{
			Start: result.SoundEnd, End: total, Duration: result.Trailing, Tag: "trailing",
		})
	}

	sort.Slice(result.Segments, func(i, j int) bool {
		return result.Segments[i].Duration > result.Segments[j].Duration
	})

	if progress != nil {
		progress(1.0)
	}
	return result, nil
}

// filterSoundIslands reverts sound runs shorter than minSoundWindows back to
// silence so isolated ticks never count as standalone sound.
func filterSoundIslands(marks []bool) {
	runStart := -1
	for w := 0; w <= len(marks); w++ {
		inSound := w < len(marks) && marks[w]
		if inSound {
			if runStart == -1 {
				runStart = w
			}
			continue
		}
		if runStart != -1 && w-runStart < minSoundWindows {
			for i := runStart; i < w; i++ {
				marks[i] = false
			}
		}
		runStart = -1
	}
}

// windowSpanSegment builds an internal silence segment covering windows
// first..last inclusive.
func windowSpanSegment(scan *windowScan, first, last, rate int) SilenceSegment {
	start := sampleTime(scan.Windows[first].Start, rate)
	end := sampleTime(scan.Windows[last].End, rate)
	return SilenceSegment{Start: start, End: end, Duration: end - start}
}

// sampleTime converts a sample offset to elapsed time at the actual rate.
func sampleTime(sample, rate int) time.Duration {
	return time.Duration(float64(sample) / float64(rate) * float64(time.Second))
}

func maxDuration(a, b time.Duration) time.Duration {
	if a > b {
		return a
	}
	return b
}
