// Package analysis implements the audio quality assessment engine: a
// cooperative single-flow pipeline producing objective metrics (peak level,
// noise floor, silence structure, clipping, reverberation, stereo field,
// bleed, conversational overlap) from a decoded recording.
package analysis

import (
	"fmt"
	"time"

	"github.com/linuxmatters/soundcheck/internal/audio"
)

// Depth selects how much of the pipeline runs.
type Depth int

const (
	// DepthBase runs peak, noise floor, and normalization only.
	DepthBase Depth = iota
	// DepthDeep additionally runs reverb, silence, clipping, and the
	// stereo-only analyses.
	DepthDeep
)

func (d Depth) String() string {
	if d == DepthDeep {
		return "deep"
	}
	return "base"
}

// NormalizationStatus classifies the peak level against the delivery target.
type NormalizationStatus string

const (
	Normalized NormalizationStatus = "normalized"
	TooLoud    NormalizationStatus = "too_loud"
	TooQuiet   NormalizationStatus = "too_quiet"
)

// Normalization target and tolerance.
const (
	normalizationTargetDb    = -6.0
	normalizationToleranceDb = 0.1
)

// ProgressFunc receives human-readable stage messages with a global
// completion fraction in 0..1.
type ProgressFunc func(message string, fraction float64)

// Options configures one analysis run.
type Options struct {
	Depth    Depth
	Progress ProgressFunc // optional
	Token    *Token       // optional; nil is never cancelled
}

// Result is the full assessment. Base mode fills the level fields only;
// deep mode adds the remaining sections, with the stereo-only analyses
// present on two-channel recordings.
type Result struct {
	Depth      Depth
	SampleRate int
	Channels   int
	Duration   time.Duration

	PeakDb        float64 // -Inf when every sample is zero
	Normalization NormalizationStatus
	NoiseFloor    *NoiseFloorResult

	Reverb   *ReverbResult
	Silence  *SilenceResult
	Clipping *ClippingResult
	Stereo   *StereoResult
	Bleed    *BleedResult
	Overlap  *OverlapResult
}

// Global progress bands per stage. Each stage's internal 0..1 progress is
// remapped into its band.
type progressBand struct{ lo, hi float64 }

var (
	bandPeak       = progressBand{0.00, 0.15}
	bandNoiseFloor = progressBand{0.15, 0.35}
	bandNormalize  = progressBand{0.35, 0.40}
	bandReverb     = progressBand{0.40, 0.65}
	bandSilence    = progressBand{0.65, 0.80}
	bandClipping   = progressBand{0.80, 1.00}
)

// reporter remaps a band's internal fraction onto the global scale.
func (b progressBand) reporter(progress ProgressFunc, message string) func(float64) {
	if progress == nil {
		return nil
	}
	return func(frac float64) {
		progress(message, b.lo+clamp(frac, 0, 1)*(b.hi-b.lo))
	}
}

// Analyze runs the pipeline over a decoded recording.
//
// The engine never fails on bad audio - clipped, noisy, or silent material
// produces reportable outcomes. The only analysis failure is cooperative
// cancellation, surfaced as *CancelledError with the interrupted stage name
// and no partial results. Contract violations (bad channel count, mismatched
// lengths) are rejected up front with a plain error.
func Analyze(rec *audio.Recording, opts Options) (*Result, error) {
	if err := rec.Validate(); err != nil {
		return nil, fmt.Errorf("invalid recording: %w", err)
	}

	result := &Result{
		Depth:      opts.Depth,
		SampleRate: rec.SampleRate,
		Channels:   rec.NumChannels(),
		Duration:   rec.Duration(),
	}
	sc := &scratch{}

	// Stage 1: global peak.
	peak, err := scanPeak(rec, opts.Token, bandPeak.reporter(opts.Progress, "Scanning peak level"))
	if err != nil {
		return nil, err
	}
	result.PeakDb = dbFromLinear(peak)

	// Stage 2: windowed scan feeding the noise-floor estimate. The window
	// records are kept for the silence segmenter in deep mode.
	scanReport := bandNoiseFloor.reporter(opts.Progress, "Estimating noise floor")
	scan, err := scanWindows(rec, opts.Token, scaleProgress(scanReport, 0, 0.8))
	if err != nil {
		return nil, err
	}
	result.NoiseFloor, err = estimateNoiseFloor(scan, sc, opts.Token, scaleProgress(scanReport, 0.8, 1.0))
	if err != nil {
		return nil, err
	}

	// Stage 3: normalization verdict from the peak.
	result.Normalization = classifyNormalization(result.PeakDb)
	if report := bandNormalize.reporter(opts.Progress, "Checking normalization"); report != nil {
		report(1.0)
	}

	if opts.Depth != DepthDeep {
		return result, nil
	}

	// Stage 4: reverberation.
	result.Reverb, err = estimateReverb(rec, result.NoiseFloor, sc, opts.Token,
		bandReverb.reporter(opts.Progress, "Measuring reverberation"))
	if err != nil {
		return nil, err
	}

	// Stage 5: silence structure, reusing the window records.
	result.Silence, err = analyzeSilence(rec, scan, result.NoiseFloor.OverallDb, result.PeakDb, opts.Token,
		bandSilence.reporter(opts.Progress, "Mapping silence"))
	if err != nil {
		return nil, err
	}

	// Stage 6: sample-accurate clipping.
	result.Clipping, err = analyzeClipping(rec, opts.Token,
		bandClipping.reporter(opts.Progress, "Detecting clipping"))
	if err != nil {
		return nil, err
	}

	// Stereo-only analyses share one set of 250 ms blocks and run inside
	// the terminal band; they are block-level passes over already-reduced
	// data.
	if rec.NumChannels() == 2 {
		if opts.Progress != nil {
			opts.Progress("Analyzing stereo field", 1.0)
		}
		blocks, err := computeStereoBlocks(rec, opts.Token, "stereo blocks")
		if err != nil {
			return nil, err
		}
		result.Stereo, err = classifyStereoField(blocks, opts.Token)
		if err != nil {
			return nil, err
		}
		result.Bleed, err = detectBleed(rec, blocks, opts.Token)
		if err != nil {
			return nil, err
		}
		result.Overlap, err = analyzeOverlap(blocks, result.NoiseFloor, rec.SampleRate, opts.Token)
		if err != nil {
			return nil, err
		}
	}

	if opts.Progress != nil {
		opts.Progress("Analysis complete", 1.0)
	}
	return result, nil
}

// classifyNormalization compares the peak against the -6 dB delivery target
// with a +/-0.1 dB tolerance. A -Inf peak (all-zero recording) is too quiet.
func classifyNormalization(peakDb float64) NormalizationStatus {
	switch {
	case peakDb > normalizationTargetDb+normalizationToleranceDb:
		return TooLoud
	case peakDb < normalizationTargetDb-normalizationToleranceDb:
		return TooQuiet
	default:
		return Normalized
	}
}

// scaleProgress maps a sub-range of a stage's band onto a nested callback.
func scaleProgress(report func(float64), lo, hi float64) func(float64) {
	if report == nil {
		return nil
	}
	return func(frac float64) {
		report(lo + clamp(frac, 0, 1)*(hi-lo))
	}
}
