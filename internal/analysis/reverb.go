package analysis

import (
	"math"

	"github.com/linuxmatters/soundcheck/internal/audio"
)

// Reverb (RT60) estimator constants.
const (
	// Onset detection runs over fixed 1024-sample RMS chunks.
	reverbChunkSamples = 1024

	// An onset is a chunk whose RMS exceeds the previous chunk's by this
	// ratio and whose peak clears the level gate.
	reverbOnsetRatio = 1.5

	// Level gate: onset peak must exceed noise floor by this margin, or
	// the absolute fallback when the floor is -Inf.
	reverbOnsetMarginDb   = 10.0
	reverbOnsetFallbackDb = -50.0

	// Decay measurement: scan forward in 20 ms windows until RMS falls
	// this far below the onset peak, then extrapolate to the full 60 dB.
	reverbDecayWindowMs   = 20
	reverbDecayDropDb     = 25.0
	reverbDecayMaxWindows = 1000
	reverbRT60Scale       = 60.0 / reverbDecayDropDb

	// Cancellation poll intervals.
	reverbChunkCancelInterval = 1000
	reverbOnsetCancelInterval = 100
)

// ReverbQuality buckets RT60 for spoken-voice acceptability. A calibrated
// policy, not a physical law.
type ReverbQuality string

const (
	ReverbExcellent ReverbQuality = "excellent"
	ReverbGood      ReverbQuality = "good"
	ReverbFair      ReverbQuality = "fair"
	ReverbPoor      ReverbQuality = "poor"
	ReverbVeryPoor  ReverbQuality = "very poor"
)

// RT60 bucket edges in seconds.
const (
	reverbExcellentMax = 0.3
	reverbGoodMax      = 0.6
	reverbFairMax      = 0.9
	reverbPoorMax      = 1.2
)

// ReverbResult holds RT60 estimates in seconds. Zero means no valid decay
// was measured, never NaN.
type ReverbResult struct {
	OverallRT60 float64
	ChannelRT60 []float64
	OnsetCount  int
	Quality     ReverbQuality
}

// estimateReverb detects energy onsets per channel and measures the decay
// after each: the elapsed time for RMS to fall 25 dB below the onset peak,
// scaled to the standard 60 dB figure. Channel RT60 is the median of its
// onset estimates; the overall figure is the median across all channels'
// pooled estimates.
func estimateReverb(rec *audio.Recording, floor *NoiseFloorResult, sc *scratch, token *Token, progress func(float64)) (*ReverbResult, error) {
	result := &ReverbResult{
		ChannelRT60: make([]float64, rec.NumChannels()),
	}

	decayWindow := rec.SampleRate * reverbDecayWindowMs / 1000
	if decayWindow < 1 {
		decayWindow = 1
	}

	var pooled []float64
	for ch, channel := range rec.Channels {
		estimates, err := channelDecayEstimates(channel, rec.SampleRate, decayWindow, floor.ChannelDb[ch], token, func(frac float64) {
			if progress != nil {
				progress((float64(ch) + frac) / float64(rec.NumChannels()))
			}
		})
		if err != nil {
			return nil, err
		}
		result.OnsetCount += len(estimates)
		result.ChannelRT60[ch] = sc.medianOf(estimates)
		pooled = append(pooled, estimates...)
	}

	result.OverallRT60 = sc.medianOf(pooled)
	result.Quality = reverbQuality(result.OverallRT60)

	if progress != nil {
		progress(1.0)
	}
	return result, nil
}

// channelDecayEstimates returns one RT60 estimate per measurable onset.
func channelDecayEstimates(samples []float32, rate, decayWindow int, floorDb float64, token *Token, progress func(float64)) ([]float64, error) {
	onsetGateDb := reverbOnsetFallbackDb
	if !math.IsInf(floorDb, -1) {
		onsetGateDb = floorDb + reverbOnsetMarginDb
	}
	onsetGate := linearFromDb(onsetGateDb)

	numChunks := len(samples) / reverbChunkSamples
	var estimates []float64
	var prevRMS float64
	onsets := 0

	for chunk := 0; chunk < numChunks; chunk++ {
		if chunk%reverbChunkCancelInterval == 0 {
			if err := checkCancel(token, "reverb"); err != nil {
				return nil, err
			}
			if progress != nil && numChunks > 0 {
				progress(float64(chunk) / float64(numChunks))
			}
		}

		start := chunk * reverbChunkSamples
		rms, peak, peakAt := chunkStats(samples[start : start+reverbChunkSamples])

		isOnset := prevRMS > 0 && rms > reverbOnsetRatio*prevRMS && peak > onsetGate
		prevRMS = rms
		if !isOnset {
			continue
		}

		onsets++
		if onsets%reverbOnsetCancelInterval == 0 {
			if err := checkCancel(token, "reverb"); err != nil {
				return nil, err
			}
		}

		if rt60, ok := measureDecay(samples, start+peakAt, peak, rate, decayWindow); ok {
			estimates = append(estimates, rt60)
		}
	}
	return estimates, nil
}

// chunkStats returns the RMS, absolute peak, and peak offset of a chunk.
func chunkStats(chunk []float32) (rms, peak float64, peakAt int) {
	var sumSquares float64
	for i, s := range chunk {
		v := float64(s)
		sumSquares += v * v
		if a := math.Abs(v); a > peak {
			peak = a
			peakAt = i
		}
	}
	return math.Sqrt(sumSquares / float64(len(chunk))), peak, peakAt
}

// measureDecay scans forward from the onset peak in decay windows until RMS
// drops reverbDecayDropDb below the peak, capped at reverbDecayMaxWindows
// iterations. Returns the extrapolated RT60 and whether a decay was found.
func measureDecay(samples []float32, peakAt int, peak float64, rate, decayWindow int) (float64, bool) {
	target := peak * linearFromDb(-reverbDecayDropDb)

	pos := peakAt
	for i := 0; i < reverbDecayMaxWindows; i++ {
		end := pos + decayWindow
		if end > len(samples) {
			break
		}
		var sumSquares float64
		for _, s := range samples[pos:end] {
			v := float64(s)
			sumSquares += v * v
		}
		rms := math.Sqrt(sumSquares / float64(decayWindow))
		if rms <= target {
			elapsed := float64(end-peakAt) / float64(rate)
			return elapsed * reverbRT60Scale, true
		}
		pos = end
	}
	return 0, false
}

// reverbQuality maps RT60 to the spoken-voice acceptability buckets.
func reverbQuality(rt60 float64) ReverbQuality {
	switch {
	case rt60 < reverbExcellentMax:
		return ReverbExcellent
	case rt60 < reverbGoodMax:
		return ReverbGood
	case rt60 < reverbFairMax:
		return ReverbFair
	case rt60 < reverbPoorMax:
		return ReverbPoor
	default:
		return ReverbVeryPoor
	}
}
