package analysis

import (
	"math"
	"testing"
)

func TestReverbQualityBuckets(t *testing.T) {
	tests := []struct {
		rt60 float64
		want ReverbQuality
	}{
		{0.0, ReverbExcellent},
		{0.29, ReverbExcellent},
		{0.3, ReverbGood},
		{0.59, ReverbGood},
		{0.6, ReverbFair},
		{0.89, ReverbFair},
		{0.9, ReverbPoor},
		{1.19, ReverbPoor},
		{1.2, ReverbVeryPoor},
		{3.0, ReverbVeryPoor},
	}

	for _, tt := range tests {
		if got := reverbQuality(tt.rt60); got != tt.want {
			t.Errorf("reverbQuality(%v) = %v, want %v", tt.rt60, got, tt.want)
		}
	}
}

func TestEstimateReverbSilence(t *testing.T) {
	rec := makeRecording(48000, silence(96000))
	floor := &NoiseFloorResult{
		OverallDb: math.Inf(-1),
		ChannelDb: []float64{math.Inf(-1)},
	}

	result, err := estimateReverb(rec, floor, &scratch{}, nil, nil)
	if err != nil {
		t.Fatalf("estimateReverb: %v", err)
	}
	if result.OverallRT60 != 0 {
		t.Errorf("RT60 = %v, want 0", result.OverallRT60)
	}
	if result.OnsetCount != 0 {
		t.Errorf("onsets = %d, want 0", result.OnsetCount)
	}
	if result.Quality != ReverbExcellent {
		t.Errorf("quality = %v, want %v", result.Quality, ReverbExcellent)
	}
}

// decayStaircase builds a signal stepping down stepDb every windowSize
// samples, starting at amplitude.
func decayStaircase(amplitude, stepDb float64, windowSize, windows int) []float32 {
	var out []float32
	for k := 0; k < windows; k++ {
		level := amplitude * math.Pow(10, -stepDb*float64(k)/20.0)
		out = append(out, constant(level, windowSize)...)
	}
	return out
}

func TestMeasureDecay(t *testing.T) {
	const (
		rate        = 48000
		decayWindow = 960 // 20 ms
	)

	t.Run("staircase decay", func(t *testing.T) {
		// 3 dB per 20 ms window: the 25 dB drop lands inside window 9,
		// giving an elapsed time of 10 windows (200 ms). Scaled to
		// 60 dB that is 480 ms.
		samples := decayStaircase(0.5, 3.0, decayWindow, 12)
		rt60, ok := measureDecay(samples, 0, 0.5, rate, decayWindow)
		if !ok {
			t.Fatal("measureDecay found no decay")
		}
		if !approxEqual(rt60, 0.48, 0.001) {
			t.Errorf("RT60 = %v, want 0.48", rt60)
		}
	})

	t.Run("sustained level never decays", func(t *testing.T) {
		samples := constant(0.5, decayWindow*20)
		if _, ok := measureDecay(samples, 0, 0.5, rate, decayWindow); ok {
			t.Error("measureDecay reported a decay in a sustained tone")
		}
	})

	t.Run("runs off the end", func(t *testing.T) {
		samples := constant(0.5, decayWindow/2)
		if _, ok := measureDecay(samples, 0, 0.5, rate, decayWindow); ok {
			t.Error("measureDecay reported a decay in a too-short signal")
		}
	})
}

func TestChannelDecayEstimates(t *testing.T) {
	const rate = 48000
	decayWindow := rate * reverbDecayWindowMs / 1000

	// A quiet lead-in chunk, a loud onset, then a clean 3 dB per window
	// staircase decay. One onset, RT60 around 480 ms.
	samples := concat(
		constant(0.001, reverbChunkSamples),
		decayStaircase(0.5, 3.0, decayWindow, 12),
	)

	estimates, err := channelDecayEstimates(samples, rate, decayWindow, -60.0, nil, nil)
	if err != nil {
		t.Fatalf("channelDecayEstimates: %v", err)
	}
	if len(estimates) != 1 {
		t.Fatalf("estimates = %d, want 1", len(estimates))
	}
	if !approxEqual(estimates[0], 0.48, 0.05) {
		t.Errorf("RT60 = %v, want about 0.48", estimates[0])
	}
}

func TestChannelDecayEstimatesGate(t *testing.T) {
	// A jump that clears the ratio test but stays under the level gate
	// must not count as an onset.
	samples := concat(
		constant(0.0001, reverbChunkSamples),
		constant(0.001, reverbChunkSamples*4),
	)

	estimates, err := channelDecayEstimates(samples, 48000, 960, -60.0, nil, nil)
	if err != nil {
		t.Fatalf("channelDecayEstimates: %v", err)
	}
	if len(estimates) != 0 {
		t.Errorf("estimates = %d, want 0 (below onset gate)", len(estimates))
	}
}

func TestChunkStats(t *testing.T) {
	chunk := []float32{0.1, -0.4, 0.2, 0.4}
	rms, peak, peakAt := chunkStats(chunk)

	wantRMS := math.Sqrt((0.01 + 0.16 + 0.04 + 0.16) / 4)
	if !approxEqual(rms, wantRMS, 1e-6) {
		t.Errorf("rms = %v, want %v", rms, wantRMS)
	}
	if !approxEqual(peak, 0.4, 1e-6) {
		t.Errorf("peak = %v, want 0.4", peak)
	}
	if peakAt != 1 {
		t.Errorf("peakAt = %d, want 1 (first occurrence)", peakAt)
	}
}
